package transfer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fjacquet/budgea-salary/internal/budgea"
	"fjacquet/budgea-salary/internal/currencyutils"
	"fjacquet/budgea-salary/internal/logging"
	"fjacquet/budgea-salary/internal/models"
	"fjacquet/budgea-salary/internal/parsererror"
	"fjacquet/budgea-salary/internal/payslip"
	"fjacquet/budgea-salary/internal/recipient"
	"fjacquet/budgea-salary/internal/retry"
)

// DefaultLabelPrefix starts every transfer label.
const DefaultLabelPrefix = "Salaire"

// DefaultPollAttempts is the number of status checks of a processing transfer.
const DefaultPollAttempts = 12

var errStillProcessing = errors.New("transfer still processing")

// Options tune a run.
type Options struct {
	AllowedCategories    []string
	NewRecipientCategory string
	LabelPrefix          string
	// ConfirmEach asks for every transfer on top of the batch confirmation.
	ConfirmEach  bool
	SuggestLimit int
	// PollAttempts bounds the status checks of a transfer still processing
	// after validation.
	PollAttempts int
}

// DefaultOptions returns the options of a standard salary run.
func DefaultOptions() Options {
	return Options{
		AllowedCategories:    models.DefaultAllowedCategories,
		NewRecipientCategory: models.CategorySalaried,
		LabelPrefix:          DefaultLabelPrefix,
		SuggestLimit:         3,
		PollAttempts:         DefaultPollAttempts,
	}
}

// Orchestrator processes payslips one at a time. A failing document is
// reported to the operator and skipped; it never stops the batch.
type Orchestrator struct {
	api        API
	reader     DocumentReader
	recognizer Recognizer
	operator   Operator
	extractor  *payslip.Extractor
	policy     retry.Policy
	opts       Options
	logger     logging.Logger
}

// NewOrchestrator creates an orchestrator. recognizer may be nil, in which
// case documents without a usable text layer are skipped.
func NewOrchestrator(api API, reader DocumentReader, recognizer Recognizer, operator Operator,
	policy retry.Policy, opts Options, logger logging.Logger) *Orchestrator {
	if opts.LabelPrefix == "" {
		opts.LabelPrefix = DefaultLabelPrefix
	}
	if opts.NewRecipientCategory == "" {
		opts.NewRecipientCategory = models.CategorySalaried
	}
	if opts.PollAttempts <= 0 {
		opts.PollAttempts = DefaultPollAttempts
	}
	if len(opts.AllowedCategories) == 0 {
		opts.AllowedCategories = models.DefaultAllowedCategories
	}
	if policy.Retryable == nil {
		policy.Retryable = budgea.IsLocked
	}
	return &Orchestrator{
		api:        api,
		reader:     reader,
		recognizer: recognizer,
		operator:   operator,
		extractor:  payslip.NewExtractor(logger),
		policy:     policy,
		opts:       opts,
		logger:     logger,
	}
}

// Run pays the salaries of files: recipients are listed once, every document
// is prepared, the operator confirms the whole batch and the transfers are
// executed. It returns one result per document, in input order.
func (o *Orchestrator) Run(ctx context.Context, sess models.Session, files []string) ([]models.TransferResult, error) {
	recipients, err := o.api.ListRecipients(ctx, sess)
	if err != nil {
		return nil, err
	}

	employees, results := o.Prepare(ctx, sess, recipients, files)
	if err := ctx.Err(); err != nil {
		return results, err
	}
	if len(employees) == 0 {
		o.operator.Notify(models.Notice{Level: models.NoticeWarning, Message: "Nothing to transfer"})
		return results, nil
	}

	o.operator.Summarize(employees)
	ok, err := o.operator.Confirm("Do you want to execute transfers?")
	if err != nil {
		return results, err
	}
	if !ok {
		o.operator.Notify(models.Notice{Level: models.NoticeWarning, Message: "Okay, abort..."})
		for i := range results {
			if results[i].Status == models.StatusMatched {
				results[i].Status = models.StatusDeclined
			}
		}
		return results, nil
	}

	executed := o.Execute(ctx, sess, employees)
	index := make(map[string]int, len(results))
	for i, r := range results {
		index[r.File] = i
	}
	for _, r := range executed {
		if i, found := index[r.File]; found {
			results[i] = r
		}
	}
	return results, ctx.Err()
}

// Prepare reads, extracts and matches every document. It returns the
// employees ready to be paid and one result per document.
func (o *Orchestrator) Prepare(ctx context.Context, sess models.Session, recipients []models.Recipient, files []string) ([]models.Employee, []models.TransferResult) {
	var employees []models.Employee
	results := make([]models.TransferResult, 0, len(files))

	for _, file := range files {
		if ctx.Err() != nil {
			break
		}

		e, result, ok := o.prepareOne(ctx, sess, recipients, file)
		results = append(results, result)
		if ok {
			employees = append(employees, e)
		}
	}
	return employees, results
}

func (o *Orchestrator) prepareOne(ctx context.Context, sess models.Session, recipients []models.Recipient, file string) (models.Employee, models.TransferResult, bool) {
	log := o.logger.WithFields(
		logging.F(logging.FieldFile, file),
		logging.F(logging.FieldRunID, sess.RunID))

	e, stage, err := o.extract(ctx, sess, file)
	result := models.NewResult(sess.RunID, e)
	result.File = file
	if err != nil {
		o.skip(&result, stage, err)
		return e, result, false
	}

	kind := ""
	if e.OCR {
		kind = " (OCRized)"
	}
	log.Info("Payslip extracted", logging.F(logging.FieldEmployee, e.Name))
	o.operator.Notify(models.Notice{Level: models.NoticeInfo, File: file,
		Message: fmt.Sprintf("extracted %s%s", e.Name, kind)})

	r, err := recipient.Match(e, recipients, o.opts.AllowedCategories)
	if errors.Is(err, recipient.ErrNotFound) {
		r, err = o.resolveUnmatched(ctx, sess, e, recipients)
		if err != nil {
			result.Status = models.StatusUnmatched
			if errors.Is(err, errDeclined) {
				o.operator.Notify(models.Notice{Level: models.NoticeWarning, File: file, Message: "abort..."})
				return e, result, false
			}
			skipStage := parsererror.StageMatch
			if !errors.Is(err, recipient.ErrNotFound) {
				skipStage = parsererror.StageRegister
			}
			o.skip(&result, skipStage, err)
			return e, result, false
		}
	}

	e = e.WithRecipient(r)
	result = models.NewResult(sess.RunID, e)
	result.File = file
	result.Status = models.StatusMatched
	log.Info("Recipient matched",
		logging.F(logging.FieldRecipientID, r.ID),
		logging.F(logging.FieldEmployee, e.Name))
	o.operator.Notify(models.Notice{Level: models.NoticeSuccess, File: file,
		Message: fmt.Sprintf("ok, matched %s (#%d)", r.Label, r.ID)})
	return e, result, true
}

// Extract reads a single payslip without matching it. A failure is returned
// as a *parsererror.SkipError naming the stage that failed, unless ctx was
// cancelled, in which case the context error is returned.
func (o *Orchestrator) Extract(ctx context.Context, sess models.Session, file string) (models.Employee, error) {
	e, stage, err := o.extract(ctx, sess, file)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return e, ctxErr
		}
		return e, &parsererror.SkipError{FilePath: file, Stage: stage, Err: err}
	}
	return e, nil
}

// extract returns a valid employee, falling back to OCR exactly once.
func (o *Orchestrator) extract(ctx context.Context, sess models.Session, file string) (models.Employee, string, error) {
	text, err := o.reader.ReadText(ctx, file)
	if err != nil {
		var formatErr *parsererror.InvalidFormatError
		if errors.As(err, &formatErr) || ctx.Err() != nil {
			return models.Employee{Source: file}, parsererror.StageRead, err
		}
		o.logger.WithError(err).Warn("Failed to read text layer",
			logging.F(logging.FieldFile, file))
	}

	e := o.extractor.Extract(file, text)
	if e.IsValid() {
		return e, "", nil
	}

	if o.recognizer == nil {
		return e, parsererror.StageExtract, o.invalid(e, "no OCR provider configured")
	}

	data, err := o.reader.ReadBytes(file)
	if err != nil {
		return e, parsererror.StageRead, err
	}

	o.logger.Info("Text layer incomplete, running OCR",
		logging.F(logging.FieldFile, file),
		logging.F(logging.FieldField, strings.Join(e.Missing(), ",")))

	var recognized string
	err = o.policy.Do(ctx, "ocr", func(ctx context.Context) error {
		var err error
		recognized, err = o.recognizer.Recognize(ctx, sess, file, data)
		return err
	})
	if err != nil {
		return e, parsererror.StageOCR, err
	}

	e = o.extractor.Extract(file, recognized)
	e.OCR = true
	if !e.IsValid() {
		return e, parsererror.StageExtract, o.invalid(e, "fields still missing after OCR")
	}
	return e, "", nil
}

func (o *Orchestrator) invalid(e models.Employee, reason string) error {
	return &parsererror.DataExtractionError{
		FilePath:  e.Source,
		FieldName: strings.Join(e.Missing(), ","),
		Reason:    reason,
		Msg:       "unable to parse payslip",
	}
}

// skip records a dropped document and tells the operator right away.
func (o *Orchestrator) skip(result *models.TransferResult, stage string, err error) {
	skipErr := &parsererror.SkipError{FilePath: result.File, Stage: stage, Err: err}
	if result.Status == "" || result.Status == models.StatusMatched {
		result.Status = models.StatusSkipped
	}
	result.Error = err.Error()

	o.logger.WithError(err).Warn("Skipping document",
		logging.F(logging.FieldFile, result.File),
		logging.F(logging.FieldOperation, stage),
		logging.F(logging.FieldCode, budgea.Code(err)))
	o.operator.Notify(models.Notice{Level: models.NoticeError, File: result.File, Message: skipErr.Error()})
}

// Label returns the transfer label of an employee, e.g. "Salaire Jane March 2024".
func (o *Orchestrator) Label(e models.Employee) string {
	return strings.Join(strings.Fields(strings.Join([]string{o.opts.LabelPrefix, e.FirstName(), e.Period}, " ")), " ")
}

// Execute submits a transfer for each matched employee and validates it,
// leaving it pending unless the session is in force mode.
func (o *Orchestrator) Execute(ctx context.Context, sess models.Session, employees []models.Employee) []models.TransferResult {
	results := make([]models.TransferResult, 0, len(employees))
	for _, e := range employees {
		if ctx.Err() != nil {
			break
		}
		results = append(results, o.executeOne(ctx, sess, e))
	}
	return results
}

func (o *Orchestrator) executeOne(ctx context.Context, sess models.Session, e models.Employee) models.TransferResult {
	result := models.NewResult(sess.RunID, e)
	result.Status = models.StatusMatched

	if e.Recipient == nil || !e.Salary.Valid {
		o.fail(&result, errors.New("employee has no recipient or no salary"))
		return result
	}

	amount := currencyutils.FormatEUR(e.Salary.Decimal)
	if o.opts.ConfirmEach {
		ok, err := o.operator.Confirm(fmt.Sprintf("Transfer %s to %s?", amount, e.Name))
		if err != nil {
			o.fail(&result, err)
			return result
		}
		if !ok {
			result.Status = models.StatusDeclined
			return result
		}
	}

	o.operator.Notify(models.Notice{Level: models.NoticeInfo, File: e.Source,
		Message: fmt.Sprintf("Transfering %s to %s...", amount, e.Name)})

	var created models.Transfer
	label := o.Label(e)
	err := o.policy.Do(ctx, "create_transfer", func(ctx context.Context) error {
		var err error
		created, err = o.api.CreateTransfer(ctx, sess, e.Recipient.ID, e.Salary.Decimal, label)
		return err
	})
	if err != nil {
		o.fail(&result, err)
		return result
	}
	result.TransferID = created.ID
	result.State = created.State
	result.Status = models.StatusSubmitted

	var validated models.Transfer
	err = o.policy.Do(ctx, "validate_transfer", func(ctx context.Context) error {
		var err error
		validated, err = o.api.ValidateTransfer(ctx, sess, created.ID, sess.Force)
		return err
	})
	if err != nil {
		o.fail(&result, err)
		return result
	}

	if validated.State == models.TransferProcessing {
		validated = o.poll(ctx, sess, validated)
	}

	result.State = validated.State
	switch validated.State {
	case models.TransferDone:
		result.Status = models.StatusDone
	case models.TransferError:
		result.Status = models.StatusFailed
	}

	o.logger.Info("Transfer submitted",
		logging.F(logging.FieldRunID, sess.RunID),
		logging.F(logging.FieldTransferID, created.ID),
		logging.F(logging.FieldState, validated.State),
		logging.F(logging.FieldEmployee, e.Name))

	level := models.NoticeSuccess
	if result.Status == models.StatusFailed {
		level = models.NoticeError
	}
	o.operator.Notify(models.Notice{Level: level, File: e.Source,
		Message: fmt.Sprintf("done! (%s)", validated.State)})
	return result
}

// poll checks a transfer the provider is still processing until it leaves
// that state or PollAttempts checks were made. It returns the last known state.
func (o *Orchestrator) poll(ctx context.Context, sess models.Session, t models.Transfer) models.Transfer {
	retryable := func(err error) bool {
		return errors.Is(err, errStillProcessing) || o.policy.Retryable(err)
	}
	policy := retry.NewPolicy(o.policy.Delay, uint64(o.opts.PollAttempts), retryable, o.logger)

	last := t
	err := policy.Do(ctx, "get_transfer", func(ctx context.Context) error {
		current, err := o.api.GetTransfer(ctx, sess, t.ID)
		if err != nil {
			return err
		}
		last = current
		if current.State == models.TransferProcessing {
			return errStillProcessing
		}
		return nil
	})
	if err != nil {
		o.logger.WithError(err).Warn("Transfer status unknown, leaving it to the bank",
			logging.F(logging.FieldTransferID, t.ID),
			logging.F(logging.FieldState, last.State))
	}
	return last
}

func (o *Orchestrator) fail(result *models.TransferResult, err error) {
	result.Status = models.StatusFailed
	result.Error = err.Error()

	o.logger.WithError(err).Error("Transfer failed",
		logging.F(logging.FieldFile, result.File),
		logging.F(logging.FieldTransferID, result.TransferID),
		logging.F(logging.FieldCode, budgea.Code(err)))
	o.operator.Notify(models.Notice{Level: models.NoticeError, File: result.File,
		Message: "Error: " + err.Error()})
}
