package projections

import (
	"context"
	"errors"
	"strings"

	"podium/internal/domain/schema"
	domainSheet "podium/internal/domain/sheet"
)

// GetFormQuery carries input for the evaluation form projection.
type GetFormQuery struct {
	SpeechType string
}

// GetFormDeps holds dependencies for the evaluation form projection.
type GetFormDeps struct {
	Sheets SheetReader
}

// QueryGetForm builds the evaluation form for a speech type from the
// Templates sheet. A missing Templates sheet is a configuration problem,
// reported as a ConfigError rather than a storage error.
func QueryGetForm(ctx context.Context, query GetFormQuery, deps GetFormDeps) (schema.EvalForm, error) {
	speechType := strings.TrimSpace(query.SpeechType)
	if speechType == "" {
		return schema.EvalForm{}, &schema.ConfigError{Reason: "speech type is required"}
	}

	table, err := deps.Sheets.ReadAll(ctx, schema.TemplatesSheet)
	if errors.Is(err, domainSheet.ErrNotFound) {
		return schema.EvalForm{}, &schema.ConfigError{Reason: "Templates sheet not found"}
	}
	if err != nil {
		return schema.EvalForm{}, err
	}

	return schema.BuildForm(speechType, table)
}
