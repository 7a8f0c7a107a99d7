package projections

import (
	"context"
	"errors"
	"strings"

	"podium/internal/domain/feedback"
	domainSheet "podium/internal/domain/sheet"
)

// GetPresenterFeedbackQuery carries input for the feedback report projection.
type GetPresenterFeedbackQuery struct {
	SpeechType string
	Presenter  string
}

// GetPresenterFeedbackDeps holds dependencies for the feedback report projection.
type GetPresenterFeedbackDeps struct {
	Sheets SheetReader
}

// QueryGetPresenterFeedback aggregates all stored evaluations of one
// presenter for one speech type into a feedback report. The report is
// shaped by the current form schema; a presenter with no submissions
// yields a report with EvaluationCount zero.
func QueryGetPresenterFeedback(ctx context.Context, query GetPresenterFeedbackQuery, deps GetPresenterFeedbackDeps) (feedback.Report, error) {
	presenter := strings.TrimSpace(query.Presenter)
	if presenter == "" {
		return feedback.Report{}, errors.New("presenter name is required")
	}

	form, err := QueryGetForm(ctx, GetFormQuery{SpeechType: query.SpeechType}, GetFormDeps{Sheets: deps.Sheets})
	if err != nil {
		return feedback.Report{}, err
	}

	sheetName, err := resolveSheetName(ctx, deps.Sheets, query.SpeechType)
	if err != nil {
		return feedback.Report{}, err
	}

	table, err := deps.Sheets.ReadAll(ctx, sheetName)
	if errors.Is(err, domainSheet.ErrNotFound) {
		return feedback.Aggregate(nil, form), nil
	}
	if err != nil {
		return feedback.Report{}, err
	}

	var records []map[string]string
	for _, rec := range table.Records() {
		name, _ := domainSheet.LookupFold(rec, domainSheet.HeaderPresenter)
		if strings.TrimSpace(name) != presenter {
			continue
		}
		records = append(records, rec)
	}

	return feedback.Aggregate(records, form), nil
}
