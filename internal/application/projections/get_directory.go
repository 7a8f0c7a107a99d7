package projections

import (
	"context"
	"errors"

	domainSheet "podium/internal/domain/sheet"
	"podium/internal/domain/student"
)

// GetDirectoryQuery carries input for the student directory projection.
type GetDirectoryQuery struct {
	FallbackTeacherEmail string
}

// GetDirectoryDeps holds dependencies for the student directory projection.
type GetDirectoryDeps struct {
	Sheets SheetReader
}

// QueryGetDirectory reads the Index sheet into a student directory. A
// missing Index sheet yields an empty directory with the fallback teacher
// email so feedback delivery still has an oversight recipient.
func QueryGetDirectory(ctx context.Context, query GetDirectoryQuery, deps GetDirectoryDeps) (student.Directory, error) {
	table, err := deps.Sheets.ReadAll(ctx, student.IndexSheet)
	if errors.Is(err, domainSheet.ErrNotFound) {
		return student.FromTable(domainSheet.Table{}, query.FallbackTeacherEmail), nil
	}
	if err != nil {
		return student.Directory{}, err
	}
	return student.FromTable(table, query.FallbackTeacherEmail), nil
}
