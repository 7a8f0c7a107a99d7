package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	domainSheet "podium/internal/domain/sheet"
	"podium/internal/domain/student"
)

// SaveTeacherEmailInput carries the new teacher contact address.
type SaveTeacherEmailInput struct {
	Email string
}

// SaveTeacherEmailDeps holds dependencies for SaveTeacherEmail.
type SaveTeacherEmailDeps struct {
	Sheets SheetStore
}

// ExecuteSaveTeacherEmail writes the teacher contact address into its fixed
// cell on the Index sheet, creating the sheet with a blank roster row when
// it does not exist yet.
// PRE: Email contains '@'
// POST: The Index teacher cell holds the new address
func ExecuteSaveTeacherEmail(ctx context.Context, input SaveTeacherEmailInput, deps SaveTeacherEmailDeps) error {
	email := strings.TrimSpace(input.Email)
	if email == "" {
		return errors.New("teacher email is required")
	}
	if !strings.Contains(email, "@") {
		return errors.New("teacher email must contain '@'")
	}

	exists, err := deps.Sheets.Exists(ctx, student.IndexSheet)
	if err != nil {
		return err
	}
	if !exists {
		if err := deps.Sheets.Create(ctx, student.IndexSheet, student.IndexHeaders()); err != nil && !errors.Is(err, domainSheet.ErrAlreadyExists) {
			return err
		}
		if err := deps.Sheets.Append(ctx, student.IndexSheet, []string{"", "", email}); err != nil {
			return err
		}
		slog.Info("settings_event", "event", "teacher_email_saved", "email", email)
		return nil
	}

	table, err := deps.Sheets.ReadAll(ctx, student.IndexSheet)
	if err != nil {
		return err
	}
	if len(table.Rows) == 0 {
		if err := deps.Sheets.Append(ctx, student.IndexSheet, []string{"", "", email}); err != nil {
			return err
		}
	} else if err := deps.Sheets.UpdateCell(ctx, student.IndexSheet, student.TeacherEmailRow, student.TeacherEmailCol, email); err != nil {
		return err
	}

	slog.Info("settings_event", "event", "teacher_email_saved", "email", email)
	return nil
}
