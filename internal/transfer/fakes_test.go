package transfer

import (
	"context"
	"errors"
	"fmt"

	"fjacquet/budgea-salary/internal/budgea"
	"fjacquet/budgea-salary/internal/models"

	"github.com/shopspring/decimal"
)

var errLocked = &budgea.APIError{Status: 200, Code: budgea.CodeConnectionLocked, Description: "User is locked"}

type transferCall struct {
	RecipientID int64
	Amount      string
	Label       string
}

type validateCall struct {
	ID        int64
	Validated bool
}

type recipientReply struct {
	rec    models.Recipient
	fields []models.FieldDescriptor
	err    error
}

type transferReply struct {
	transfer models.Transfer
	err      error
}

// fakeAPI replays scripted replies in order and records every request.
type fakeAPI struct {
	recipients    []models.Recipient
	listErr       error
	createReplies []recipientReply
	completeReply []recipientReply
	transferReply []transferReply
	validateReply []transferReply
	getReplies    []transferReply

	createCalls   []string
	completeCalls []map[string]string
	transferCalls []transferCall
	validateCalls []validateCall
	getCalls      []int64
}

func (f *fakeAPI) ListRecipients(_ context.Context, _ models.Session, _ ...string) ([]models.Recipient, error) {
	return f.recipients, f.listErr
}

func (f *fakeAPI) CreateRecipient(_ context.Context, _ models.Session, label, iban, category string) (models.Recipient, []models.FieldDescriptor, error) {
	f.createCalls = append(f.createCalls, fmt.Sprintf("%s|%s|%s", label, iban, category))
	if len(f.createReplies) == 0 {
		return models.Recipient{}, nil, errors.New("unexpected CreateRecipient")
	}
	r := f.createReplies[0]
	f.createReplies = f.createReplies[1:]
	return r.rec, r.fields, r.err
}

func (f *fakeAPI) CompleteRecipient(_ context.Context, _ models.Session, id int64, values map[string]string) (models.Recipient, []models.FieldDescriptor, error) {
	f.completeCalls = append(f.completeCalls, values)
	if len(f.completeReply) == 0 {
		return models.Recipient{}, nil, errors.New("unexpected CompleteRecipient")
	}
	r := f.completeReply[0]
	f.completeReply = f.completeReply[1:]
	return r.rec, r.fields, r.err
}

func (f *fakeAPI) CreateTransfer(_ context.Context, _ models.Session, recipientID int64, amount decimal.Decimal, label string) (models.Transfer, error) {
	f.transferCalls = append(f.transferCalls, transferCall{RecipientID: recipientID, Amount: amount.StringFixed(2), Label: label})
	if len(f.transferReply) == 0 {
		return models.Transfer{ID: int64(100 + len(f.transferCalls)), State: "created"}, nil
	}
	r := f.transferReply[0]
	f.transferReply = f.transferReply[1:]
	return r.transfer, r.err
}

func (f *fakeAPI) ValidateTransfer(_ context.Context, _ models.Session, id int64, validated bool) (models.Transfer, error) {
	f.validateCalls = append(f.validateCalls, validateCall{ID: id, Validated: validated})
	if len(f.validateReply) == 0 {
		return models.Transfer{ID: id, State: models.TransferPending}, nil
	}
	r := f.validateReply[0]
	f.validateReply = f.validateReply[1:]
	return r.transfer, r.err
}

func (f *fakeAPI) GetTransfer(_ context.Context, _ models.Session, id int64) (models.Transfer, error) {
	f.getCalls = append(f.getCalls, id)
	if len(f.getReplies) == 0 {
		return models.Transfer{ID: id, State: models.TransferDone}, nil
	}
	r := f.getReplies[0]
	f.getReplies = f.getReplies[1:]
	return r.transfer, r.err
}

type fakeReader struct {
	texts     map[string]string
	errs      map[string]error
	bytesRead []string
}

func (f *fakeReader) ReadText(_ context.Context, path string) (string, error) {
	if err := f.errs[path]; err != nil {
		return "", err
	}
	return f.texts[path], nil
}

func (f *fakeReader) ReadBytes(path string) ([]byte, error) {
	f.bytesRead = append(f.bytesRead, path)
	return []byte("%PDF-" + path), nil
}

type fakeRecognizer struct {
	texts map[string]string
	errs  []error
	calls []string
}

func (f *fakeRecognizer) Recognize(_ context.Context, _ models.Session, filename string, _ []byte) (string, error) {
	f.calls = append(f.calls, filename)
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return "", err
		}
	}
	return f.texts[filename], nil
}

type fakeOperator struct {
	confirms   []bool
	answers    []string
	questions  []string
	asked      []string
	notices    []models.Notice
	summarized [][]models.Employee
}

func (f *fakeOperator) Confirm(question string) (bool, error) {
	f.questions = append(f.questions, question)
	if len(f.confirms) == 0 {
		return false, nil
	}
	ok := f.confirms[0]
	f.confirms = f.confirms[1:]
	return ok, nil
}

func (f *fakeOperator) Ask(label string) (string, error) {
	f.asked = append(f.asked, label)
	if len(f.answers) == 0 {
		return "", errors.New("no more answers")
	}
	a := f.answers[0]
	f.answers = f.answers[1:]
	return a, nil
}

func (f *fakeOperator) Notify(n models.Notice) {
	f.notices = append(f.notices, n)
}

func (f *fakeOperator) Summarize(employees []models.Employee) {
	f.summarized = append(f.summarized, employees)
}

func (f *fakeOperator) noticesFor(file string, level models.NoticeLevel) []string {
	var msgs []string
	for _, n := range f.notices {
		if n.File == file && n.Level == level {
			msgs = append(msgs, n.Message)
		}
	}
	return msgs
}
