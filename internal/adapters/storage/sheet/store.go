package sheet

import (
	"context"

	domain "podium/internal/domain/sheet"
)

// Store persists named sheets: a header row plus ordered data rows.
// Evaluation sheets are append-only; UpdateCell exists for the Settings
// and Index sheets, whose cells are edited in place.
type Store interface {
	Exists(ctx context.Context, name string) (bool, error)
	Create(ctx context.Context, name string, headers []string) error
	Headers(ctx context.Context, name string) ([]string, error)
	Append(ctx context.Context, name string, row []string) error
	ReadAll(ctx context.Context, name string) (domain.Table, error)
	UpdateCell(ctx context.Context, name string, rowIndex, colIndex int, value string) error
	List(ctx context.Context) ([]string, error)
}
