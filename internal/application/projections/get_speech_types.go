package projections

import (
	"context"
	"errors"

	"podium/internal/domain/schema"
	domainSheet "podium/internal/domain/sheet"
)

// GetSpeechTypesDeps holds dependencies for the speech type projection.
type GetSpeechTypesDeps struct {
	Sheets SheetReader
}

// QueryGetSpeechTypes returns the configured speech types with their
// submission sheet names, in Templates order.
func QueryGetSpeechTypes(ctx context.Context, deps GetSpeechTypesDeps) ([]schema.SpeechTypeInfo, error) {
	table, err := deps.Sheets.ReadAll(ctx, schema.TemplatesSheet)
	if errors.Is(err, domainSheet.ErrNotFound) {
		return nil, &schema.ConfigError{Reason: "Templates sheet not found"}
	}
	if err != nil {
		return nil, err
	}
	return schema.SpeechTypes(table)
}
