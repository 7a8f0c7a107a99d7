package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	domainSheet "podium/internal/domain/sheet"
)

// SendAllFeedbackInput carries input for the bulk send operation.
type SendAllFeedbackInput struct {
	SpeechType string
}

// SendAllResult summarises a bulk send. Failures holds one
// "presenter: reason" entry per undelivered summary.
type SendAllResult struct {
	SuccessCount int
	FailureCount int
	Failures     []string
}

// ExecuteSendAllFeedback sends a feedback summary to every presenter who
// has evaluations for the speech type. One presenter's failure never stops
// the rest; the result carries per-presenter outcomes.
// PRE: at least one evaluation sheet row exists for the speech type
// POST: One email attempted per presenter; counts reflect every attempt
func ExecuteSendAllFeedback(ctx context.Context, input SendAllFeedbackInput, deps SendFeedbackDeps) (SendAllResult, error) {
	presenters, err := presentersFor(ctx, deps.Sheets, input.SpeechType)
	if err != nil {
		return SendAllResult{}, err
	}

	var result SendAllResult
	for _, presenter := range presenters {
		err := ExecuteSendFeedback(ctx, SendFeedbackInput{
			SpeechType: input.SpeechType,
			Presenter:  presenter,
		}, deps)
		if err != nil {
			result.FailureCount++
			result.Failures = append(result.Failures, presenter+": "+err.Error())
			slog.Warn("feedback_event", "event", "feedback_send_failed",
				"presenter", presenter, "error", err)
			continue
		}
		result.SuccessCount++
	}

	slog.Info("feedback_event", "event", "feedback_send_all_done",
		"speech_type", input.SpeechType,
		"success", result.SuccessCount, "failure", result.FailureCount)
	return result, nil
}

// presentersFor lists unique presenter names in the evaluation sheet for a
// speech type, in first-submission order.
func presentersFor(ctx context.Context, sheets SheetStore, speechType string) ([]string, error) {
	sheetName, err := submissionSheetName(ctx, sheets, speechType)
	if err != nil {
		return nil, err
	}

	table, err := sheets.ReadAll(ctx, sheetName)
	if errors.Is(err, domainSheet.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	var names []string
	for i := range table.Rows {
		name := strings.TrimSpace(table.Value(i, domainSheet.HeaderPresenter))
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names, nil
}
