package projections

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"podium/internal/domain/schema"
	domainSheet "podium/internal/domain/sheet"
)

// GetPresentersQuery carries input for the presenter list projection.
type GetPresentersQuery struct {
	SpeechType string
}

// GetPresentersDeps holds dependencies for the presenter list projection.
type GetPresentersDeps struct {
	Sheets SheetReader
}

// QueryGetPresenters lists the unique presenter names that have received
// at least one evaluation of the given speech type, sorted for display.
// A missing evaluation sheet simply means nobody has been evaluated yet.
func QueryGetPresenters(ctx context.Context, query GetPresentersQuery, deps GetPresentersDeps) ([]string, error) {
	sheetName, err := resolveSheetName(ctx, deps.Sheets, query.SpeechType)
	if err != nil {
		return nil, err
	}

	table, err := deps.Sheets.ReadAll(ctx, sheetName)
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

	coll := collate.New(language.English)
	coll.SortStrings(names)
	return names, nil
}

// resolveSheetName maps a speech type to its evaluation sheet via the
// Templates mapping, falling back to the generated default name when the
// Templates sheet is absent or has no entry.
func resolveSheetName(ctx context.Context, sheets SheetReader, speechType string) (string, error) {
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
