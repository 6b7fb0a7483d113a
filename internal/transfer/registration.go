package transfer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fjacquet/budgea-salary/internal/logging"
	"fjacquet/budgea-salary/internal/models"
	"fjacquet/budgea-salary/internal/recipient"
)

// errDeclined is returned when the operator refuses to register a recipient.
var errDeclined = errors.New("recipient creation declined")

// resolveUnmatched handles an employee no known recipient matches. Without
// an IBAN there is nothing to register; otherwise the operator may add one.
func (o *Orchestrator) resolveUnmatched(ctx context.Context, sess models.Session, e models.Employee, recipients []models.Recipient) (models.Recipient, error) {
	o.operator.Notify(models.Notice{Level: models.NoticeWarning, File: e.Source, Message: "unable to find recipient"})

	if suggestions := recipient.Suggest(e, recipients, o.opts.AllowedCategories, o.opts.SuggestLimit); len(suggestions) > 0 {
		labels := make([]string, len(suggestions))
		for i, s := range suggestions {
			labels[i] = fmt.Sprintf("%s (%d)", s.Label, s.ID)
		}
		o.operator.Notify(models.Notice{Level: models.NoticeInfo, File: e.Source,
			Message: "similar recipients: " + strings.Join(labels, ", ")})
	}

	if !e.HasIBAN() {
		return models.Recipient{}, recipient.ErrNotFound
	}

	ok, err := o.operator.Confirm(fmt.Sprintf("Do you want to add %s as a new recipient?", e.Name))
	if err != nil {
		return models.Recipient{}, err
	}
	if !ok {
		return models.Recipient{}, errDeclined
	}
	return o.Register(ctx, sess, e)
}

// Register creates a recipient for the employee. The provider may ask for
// extra fields any number of times; each is asked to the operator and sent
// back until a complete recipient is returned. Lock errors are retried with
// the identical request.
func (o *Orchestrator) Register(ctx context.Context, sess models.Session, e models.Employee) (models.Recipient, error) {
	log := o.logger.WithFields(
		logging.F(logging.FieldFile, e.Source),
		logging.F(logging.FieldEmployee, e.Name),
		logging.F(logging.FieldRunID, sess.RunID))

	o.operator.Notify(models.Notice{Level: models.NoticeInfo, File: e.Source, Message: "Adding recipient..."})

	var (
		rec    models.Recipient
		fields []models.FieldDescriptor
	)
	err := o.policy.Do(ctx, "create_recipient", func(ctx context.Context) error {
		var err error
		rec, fields, err = o.api.CreateRecipient(ctx, sess, e.Name, e.IBAN, o.opts.NewRecipientCategory)
		return err
	})
	if err != nil {
		return models.Recipient{}, err
	}

	for len(fields) > 0 {
		values := make(map[string]string, len(fields))
		for _, f := range fields {
			label := f.Label
			if label == "" {
				label = f.Name
			}
			v, err := o.operator.Ask(label)
			if err != nil {
				return models.Recipient{}, err
			}
			values[f.Name] = v
		}

		id := rec.ID
		log.Debug("Completing recipient",
			logging.F(logging.FieldRecipientID, id),
			logging.F(logging.FieldCount, len(values)))

		var next models.Recipient
		err := o.policy.Do(ctx, "complete_recipient", func(ctx context.Context) error {
			var err error
			next, fields, err = o.api.CompleteRecipient(ctx, sess, id, values)
			return err
		})
		if err != nil {
			return models.Recipient{}, err
		}
		if next.ID == 0 {
			next.ID = id
		}
		rec = next
	}

	if rec.Label == "" {
		rec.Label = e.Name
	}
	if rec.IBAN == "" {
		rec.IBAN = e.IBAN
	}
	if rec.Category == "" {
		rec.Category = o.opts.NewRecipientCategory
	}

	log.Info("Recipient created", logging.F(logging.FieldRecipientID, rec.ID))
	return rec, nil
}
