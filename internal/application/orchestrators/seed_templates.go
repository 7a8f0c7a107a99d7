package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"podium/internal/domain/schema"
	domainSheet "podium/internal/domain/sheet"
	"podium/internal/domain/student"
)

// SeedTemplatesDeps holds dependencies for the development seed.
type SeedTemplatesDeps struct {
	Sheets SheetStore
}

// templatesSeedHeaders is the full Templates column set.
var templatesSeedHeaders = []string{
	"SpeechType", "SheetName", "FormTitle", "SectionID", "SectionTitle",
	"QuestionID", "QuestionText", "QuestionType", "Options", "Required",
	"MinScore", "MaxScore", "ScoreCriteria", "DefaultValue",
}

// templatesSeedRows is a working persuasive-speech form configuration.
func templatesSeedRows() [][]string {
	const (
		st    = "persuasive"
		sheet = "Persuasive Evaluations"
		title = "Persuasive Speech Evaluation"
	)
	return [][]string{
		{st, sheet, title, "1", "Content",
			"clarityScore", "How clear was the central argument?", "rubric", "", "true", "1", "5", "Unclear|Crystal clear", ""},
		{st, sheet, title, "1", "Content",
			"evidenceScore", "How convincing was the supporting evidence?", "rubric", "", "true", "1", "5", "Weak|Compelling", ""},
		{st, sheet, title, "1", "Content",
			"strongestPart", "Which part was strongest?", "option", "Opening|Body|Closing", "true", "", "", "", ""},
		{st, sheet, title, "2", "Delivery",
			"paceScore", "How was the speaking pace?", "rubric", "", "true", "1", "5", "Too fast or slow|Just right", ""},
		{st, sheet, title, "2", "Delivery",
			"techniques", "Which techniques did the speaker use?", "checkbox", "Eye contact|Gestures|Vocal variety|Pauses", "false", "", "", "", ""},
		{st, sheet, title, "3", "Comments",
			"comments", "What feedback would you give the speaker?", "comment", "", "false", "", "", "", "No comments provided"},
	}
}

// indexSeedRows is a small sample roster; the first row carries the
// teacher email in its fixed cell.
func indexSeedRows() [][]string {
	return [][]string{
		{"John Roe", "john.roe@school.example", "teacher@school.example"},
		{"Mary Moe", "mary.moe@school.example", ""},
		{"Sam Poe", "sam.poe@school.example", ""},
	}
}

// ExecuteSeedTemplates seeds a working Templates configuration and a sample
// Index roster for development environments. Idempotent: existing sheets
// are left untouched.
// PRE: database schema exists
// POST: Templates and Index sheets exist with sample data
func ExecuteSeedTemplates(ctx context.Context, deps SeedTemplatesDeps) error {
	seeded, err := seedSheet(ctx, deps.Sheets, schema.TemplatesSheet, templatesSeedHeaders, templatesSeedRows())
	if err != nil {
		return fmt.Errorf("seed templates: %w", err)
	}
	if seeded {
		slog.Info("seed_event", "event", "templates_seeded")
	}

	seeded, err = seedSheet(ctx, deps.Sheets, student.IndexSheet, student.IndexHeaders(), indexSeedRows())
	if err != nil {
		return fmt.Errorf("seed index: %w", err)
	}
	if seeded {
		slog.Info("seed_event", "event", "index_seeded")
	}
	return nil
}

// seedSheet creates a sheet with rows unless it already exists. Returns
// true when the sheet was created.
func seedSheet(ctx context.Context, sheets SheetStore, name string, headers []string, rows [][]string) (bool, error) {
	exists, err := sheets.Exists(ctx, name)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	if err := sheets.Create(ctx, name, headers); err != nil {
		if errors.Is(err, domainSheet.ErrAlreadyExists) {
			return false, nil
		}
		return false, err
	}
	for _, row := range rows {
		if err := sheets.Append(ctx, name, row); err != nil {
			return false, err
		}
	}
	return true, nil
}
