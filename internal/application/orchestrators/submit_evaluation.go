package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"sort"
	"strings"
	"time"

	emailAdapter "podium/internal/adapters/email"
	"podium/internal/domain/evaluation"
	"podium/internal/domain/schema"
	domainSheet "podium/internal/domain/sheet"
	"podium/internal/domain/student"
)

// SheetStore is the sheet store slice orchestrators write through.
type SheetStore interface {
	Exists(ctx context.Context, name string) (bool, error)
	Create(ctx context.Context, name string, headers []string) error
	Headers(ctx context.Context, name string) ([]string, error)
	Append(ctx context.Context, name string, row []string) error
	ReadAll(ctx context.Context, name string) (domainSheet.Table, error)
	UpdateCell(ctx context.Context, name string, rowIndex, colIndex int, value string) error
}

// SubmitEvaluationInput carries one evaluator's answers for one presenter.
type SubmitEvaluationInput struct {
	EvaluatorName string
	PresenterName string
	SpeechType    string
	Answers       map[string]string
}

// SubmitEvaluationDeps holds dependencies for SubmitEvaluation.
type SubmitEvaluationDeps struct {
	Sheets       SheetStore
	EmailSender  emailAdapter.Sender
	NotifyEmails []string // optional per-submission notification recipients
	FromAddress  string
	Now          func() time.Time
}

// ExecuteSubmitEvaluation validates and appends a peer evaluation to the
// sheet for its speech type, creating the sheet on first submission.
// PRE: input names are non-empty after trimming
// POST: One row appended; the target sheet exists with provisioned headers
func ExecuteSubmitEvaluation(ctx context.Context, input SubmitEvaluationInput, deps SubmitEvaluationDeps) error {
	sub := evaluation.Submission{
		EvaluatorName: input.EvaluatorName,
		PresenterName: input.PresenterName,
		SpeechType:    input.SpeechType,
		Answers:       input.Answers,
	}
	if err := sub.Validate(); err != nil {
		return err
	}

	sheetName, err := submissionSheetName(ctx, deps.Sheets, sub.SpeechType)
	if err != nil {
		return err
	}

	exists, err := deps.Sheets.Exists(ctx, sheetName)
	if err != nil {
		return err
	}

	var headers []string
	if exists {
		headers, err = deps.Sheets.Headers(ctx, sheetName)
		if err != nil {
			return err
		}
	} else {
		headers = evaluation.ProvisionHeaders(sub)
		if err := deps.Sheets.Create(ctx, sheetName, headers); err != nil && !errors.Is(err, domainSheet.ErrAlreadyExists) {
			return err
		}
	}

	now := time.Now()
	if deps.Now != nil {
		now = deps.Now()
	}
	if err := deps.Sheets.Append(ctx, sheetName, evaluation.BuildRow(headers, sub, now)); err != nil {
		return err
	}

	slog.Info("evaluation_event", "event", "evaluation_submitted",
		"speech_type", sub.SpeechType, "presenter", sub.PresenterName, "sheet", sheetName)

	notifySubmission(ctx, sub, deps)
	return nil
}

// notifySubmission sends a best-effort notification email with a static
// summary of the submitted answers. Failures are logged, never surfaced to
// the evaluator.
func notifySubmission(ctx context.Context, sub evaluation.Submission, deps SubmitEvaluationDeps) {
	if deps.EmailSender == nil || len(deps.NotifyEmails) == 0 {
		return
	}

	keys := make([]string, 0, len(sub.Answers))
	for k := range sub.Answers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var htmlBody, textBody strings.Builder
	htmlBody.WriteString("<p>A new <strong>" + html.EscapeString(sub.SpeechType) + "</strong> evaluation for <strong>" +
		html.EscapeString(sub.PresenterName) + "</strong> was submitted by " + html.EscapeString(sub.EvaluatorName) + ".</p>\n")
	fmt.Fprintf(&textBody, "A new %s evaluation for %s was submitted by %s.\n\n",
		sub.SpeechType, sub.PresenterName, sub.EvaluatorName)

	if len(keys) > 0 {
		htmlBody.WriteString("<table style=\"border-collapse: collapse;\">\n")
		for _, k := range keys {
			htmlBody.WriteString("<tr><td style=\"padding: 2px 10px 2px 0;\"><strong>" + html.EscapeString(k) +
				"</strong></td><td style=\"padding: 2px 0;\">" + html.EscapeString(sub.Answers[k]) + "</td></tr>\n")
			fmt.Fprintf(&textBody, "%s: %s\n", k, sub.Answers[k])
		}
		htmlBody.WriteString("</table>\n")
	}

	_, err := deps.EmailSender.Send(ctx, emailAdapter.SendRequest{
		To:      deps.NotifyEmails,
		From:    deps.FromAddress,
		Subject: "New evaluation received for " + sub.PresenterName,
		HTML:    htmlBody.String(),
		Text:    textBody.String(),
	})
	if err != nil {
		slog.Warn("evaluation_notify_failed", "presenter", sub.PresenterName, "error", err)
	}
}

// submissionSheetName resolves the evaluation sheet for a speech type from
// the Templates mapping, generating the default name when Templates is
// missing or has no entry.
func submissionSheetName(ctx context.Context, sheets SheetStore, speechType string) (string, error) {
	table, err := sheets.ReadAll(ctx, schema.TemplatesSheet)
	if errors.Is(err, domainSheet.ErrNotFound) {
		return schema.SheetNameFor(nil, speechType), nil
	}
	if err != nil {
		return "", err
	}
	infos, err := schema.SpeechTypes(table)
	if err != nil {
		return "", err
	}
	return schema.SheetNameFor(infos, speechType), nil
}

// directoryFor loads the student directory used for feedback delivery.
func directoryFor(ctx context.Context, sheets SheetStore, fallbackTeacher string) (student.Directory, error) {
	table, err := sheets.ReadAll(ctx, student.IndexSheet)
	if errors.Is(err, domainSheet.ErrNotFound) {
		return student.FromTable(domainSheet.Table{}, fallbackTeacher), nil
	}
	if err != nil {
		return student.Directory{}, err
	}
	return student.FromTable(table, fallbackTeacher), nil
}
