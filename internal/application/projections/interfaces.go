package projections

import (
	"context"

	domainSheet "podium/internal/domain/sheet"
)

// SheetReader is the read-only slice of the sheet store used by projections.
type SheetReader interface {
	Exists(ctx context.Context, name string) (bool, error)
	Headers(ctx context.Context, name string) ([]string, error)
	ReadAll(ctx context.Context, name string) (domainSheet.Table, error)
	List(ctx context.Context) ([]string, error)
}
