package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	emailAdapter "podium/internal/adapters/email"
	"podium/internal/domain/feedback"
	"podium/internal/domain/report"
	"podium/internal/domain/schema"
	domainSheet "podium/internal/domain/sheet"
)

// Feedback delivery errors.
var (
	ErrNoRecipient   = errors.New("no deliverable address for presenter or teacher")
	ErrNoEvaluations = errors.New("presenter has no evaluations to summarise")
)

// MissingPresenterEmailNote is appended to the subject when the summary
// could only be delivered to the teacher.
const MissingPresenterEmailNote = " (Presenter email not found)"

// SendFeedbackInput carries input for sending one presenter's summary.
type SendFeedbackInput struct {
	SpeechType string
	Presenter  string
}

// SendFeedbackDeps holds dependencies for SendFeedback.
type SendFeedbackDeps struct {
	Sheets       SheetStore
	EmailSender  emailAdapter.Sender
	FromAddress  string
	ReplyTo      string
	TeacherEmail string // fallback when the Index sheet has no teacher cell
}

// ExecuteSendFeedback aggregates a presenter's evaluations and emails the
// summary. The presenter receives it directly with the teacher on Cc; when
// the roster has no address for the presenter the summary goes to the
// teacher alone with a note in the subject. No deliverable address at all
// is a failure.
// PRE: Presenter is non-empty; at least one evaluation exists
// POST: Exactly one email is sent, or an error explains why none was
func ExecuteSendFeedback(ctx context.Context, input SendFeedbackInput, deps SendFeedbackDeps) error {
	presenter := strings.TrimSpace(input.Presenter)
	if presenter == "" {
		return errors.New("presenter name is required")
	}

	rep, err := presenterReport(ctx, deps.Sheets, input.SpeechType, presenter)
	if err != nil {
		return err
	}
	if rep.EvaluationCount == 0 {
		return ErrNoEvaluations
	}

	dir, err := directoryFor(ctx, deps.Sheets, deps.TeacherEmail)
	if err != nil {
		return err
	}

	subject := report.Subject(rep.Title, presenter)
	presenterEmail := dir.FindEmail(presenter)
	teacherEmail := dir.TeacherEmail

	var to, cc []string
	switch {
	case presenterEmail != "":
		to = []string{presenterEmail}
		if teacherEmail != "" {
			cc = []string{teacherEmail}
		}
	case teacherEmail != "":
		to = []string{teacherEmail}
		subject += MissingPresenterEmailNote
	default:
		return ErrNoRecipient
	}

	html, err := report.RenderHTML(presenter, rep)
	if err != nil {
		return err
	}

	_, err = deps.EmailSender.Send(ctx, emailAdapter.SendRequest{
		To:      to,
		Cc:      cc,
		From:    deps.FromAddress,
		Subject: subject,
		HTML:    html,
		Text:    report.RenderText(presenter, rep),
		ReplyTo: deps.ReplyTo,
	})
	if err != nil {
		return err
	}

	slog.Info("feedback_event", "event", "feedback_sent",
		"presenter", presenter, "speech_type", rep.SpeechType,
		"evaluations", rep.EvaluationCount, "to", to, "cc", cc)
	return nil
}

// presenterReport aggregates all stored evaluations of one presenter for
// one speech type against the current form schema.
func presenterReport(ctx context.Context, sheets SheetStore, speechType, presenter string) (feedback.Report, error) {
	table, err := sheets.ReadAll(ctx, schema.TemplatesSheet)
	if errors.Is(err, domainSheet.ErrNotFound) {
		return feedback.Report{}, &schema.ConfigError{Reason: "Templates sheet not found"}
	}
	if err != nil {
		return feedback.Report{}, err
	}

	form, err := schema.BuildForm(speechType, table)
	if err != nil {
		return feedback.Report{}, err
	}

	infos, err := schema.SpeechTypes(table)
	if err != nil {
		return feedback.Report{}, err
	}

	evalTable, err := sheets.ReadAll(ctx, schema.SheetNameFor(infos, speechType))
	if errors.Is(err, domainSheet.ErrNotFound) {
		return feedback.Aggregate(nil, form), nil
	}
	if err != nil {
		return feedback.Report{}, err
	}

	var records []map[string]string
	for _, rec := range evalTable.Records() {
		name, _ := domainSheet.LookupFold(rec, domainSheet.HeaderPresenter)
		if strings.TrimSpace(name) != presenter {
			continue
		}
		records = append(records, rec)
	}
	return feedback.Aggregate(records, form), nil
}
