package budgea

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path/filepath"
	"strconv"

	"fjacquet/budgea-salary/internal/currencyutils"
	"fjacquet/budgea-salary/internal/logging"
	"fjacquet/budgea-salary/internal/models"
	"fjacquet/budgea-salary/internal/recipient"

	"github.com/shopspring/decimal"
)

type tokenResponse struct {
	Token string `json:"token"`
}

type accountsResponse struct {
	Accounts []models.Account `json:"accounts"`
}

type recipientsResponse struct {
	Recipients []models.Recipient `json:"recipients"`
}

// recipientResponse is a recipient that may still need supplemental fields.
type recipientResponse struct {
	models.Recipient
	Fields []models.FieldDescriptor `json:"fields"`
}

type ocrResponse struct {
	Data string `json:"data"`
}

// Authenticate exchanges the operator's credentials for a bearer token scoped
// for transfers.
func (c *Client) Authenticate(ctx context.Context, username, password string) (string, error) {
	form := url.Values{
		"application": {c.application},
		"username":    {username},
		"password":    {password},
		"scope":       {c.scope},
	}

	var resp tokenResponse
	if err := c.postForm(ctx, models.Session{}, "/auth/token", form, &resp); err != nil {
		return "", fmt.Errorf("authentication failed: %w", err)
	}
	if resp.Token == "" {
		return "", fmt.Errorf("authentication failed: empty token")
	}
	return resp.Token, nil
}

// ListAccounts returns the accounts able to emit transfers.
func (c *Client) ListAccounts(ctx context.Context, sess models.Session) ([]models.Account, error) {
	var resp accountsResponse
	if err := c.get(ctx, sess, "/users/me/accounts?able_to_transfer=1", &resp); err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return resp.Accounts, nil
}

// ListRecipients returns the recipients of the session's account, in API
// order. When categories are given only recipients in those categories are
// returned.
func (c *Client) ListRecipients(ctx context.Context, sess models.Session, categories ...string) ([]models.Recipient, error) {
	var resp recipientsResponse
	path := fmt.Sprintf("/users/me/accounts/%d/recipients", sess.AccountID)
	if err := c.get(ctx, sess, path, &resp); err != nil {
		return nil, fmt.Errorf("failed to list recipients: %w", err)
	}

	c.logger.Debug("Recipients loaded",
		logging.F(logging.FieldAccountID, sess.AccountID),
		logging.F(logging.FieldCount, len(resp.Recipients)))

	if len(categories) == 0 {
		return resp.Recipients, nil
	}
	return recipient.Filter(resp.Recipients, categories), nil
}

// CreateRecipient registers a new recipient on the session's account. The
// provider may answer with fields to fill in before the recipient is usable;
// they are sent back with CompleteRecipient.
func (c *Client) CreateRecipient(ctx context.Context, sess models.Session, label, iban, category string) (models.Recipient, []models.FieldDescriptor, error) {
	form := url.Values{
		"label":    {label},
		"iban":     {iban},
		"category": {category},
	}

	var resp recipientResponse
	path := fmt.Sprintf("/users/me/accounts/%d/recipients", sess.AccountID)
	if err := c.postForm(ctx, sess, path, form, &resp); err != nil {
		return models.Recipient{}, nil, err
	}
	return resp.Recipient, resp.Fields, nil
}

// CompleteRecipient sends the values of the fields requested for a recipient.
func (c *Client) CompleteRecipient(ctx context.Context, sess models.Session, id int64, values map[string]string) (models.Recipient, []models.FieldDescriptor, error) {
	form := url.Values{}
	for k, v := range values {
		form.Set(k, v)
	}

	var resp recipientResponse
	path := fmt.Sprintf("/users/me/recipients/%d?all", id)
	if err := c.postForm(ctx, sess, path, form, &resp); err != nil {
		return models.Recipient{}, nil, err
	}
	return resp.Recipient, resp.Fields, nil
}

// CreateTransfer creates a transfer of amount to a recipient of the
// session's account.
func (c *Client) CreateTransfer(ctx context.Context, sess models.Session, recipientID int64, amount decimal.Decimal, label string) (models.Transfer, error) {
	form := url.Values{
		"amount": {currencyutils.FormatForm(amount)},
		"label":  {label},
	}

	var t models.Transfer
	path := fmt.Sprintf("/users/me/accounts/%d/recipients/%d/transfers", sess.AccountID, recipientID)
	if err := c.postForm(ctx, sess, path, form, &t); err != nil {
		return models.Transfer{}, err
	}
	return t, nil
}

// ValidateTransfer marks a transfer as validated, or leaves it pending when
// validated is false.
func (c *Client) ValidateTransfer(ctx context.Context, sess models.Session, id int64, validated bool) (models.Transfer, error) {
	v := 0
	if validated {
		v = 1
	}
	form := url.Values{"validated": {strconv.Itoa(v)}}

	var t models.Transfer
	if err := c.postForm(ctx, sess, fmt.Sprintf("/users/me/transfers/%d", id), form, &t); err != nil {
		return models.Transfer{}, err
	}
	return t, nil
}

// GetTransfer fetches the current state of a transfer.
func (c *Client) GetTransfer(ctx context.Context, sess models.Session, id int64) (models.Transfer, error) {
	var t models.Transfer
	if err := c.get(ctx, sess, fmt.Sprintf("/users/me/transfers/%d", id), &t); err != nil {
		return models.Transfer{}, err
	}
	return t, nil
}

// Recognize uploads a PDF to the OCR endpoint and returns the recovered text.
func (c *Client) Recognize(ctx context.Context, sess models.Session, filename string, data []byte) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename=%q`, filepath.Base(filename)))
	header.Set("Content-Type", "application/pdf")
	part, err := mw.CreatePart(header)
	if err != nil {
		return "", fmt.Errorf("failed to build OCR upload: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("failed to build OCR upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("failed to build OCR upload: %w", err)
	}

	var resp ocrResponse
	if err := c.do(ctx, sess, http.MethodPost, "/ocr", &buf, mw.FormDataContentType(), &resp); err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}
	return resp.Data, nil
}
