package schema

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"podium/internal/domain/sheet"
)

// QuestionType is the closed set of question variants an evaluation form
// can carry. Anything unrecognised in the Templates sheet degrades to text.
type QuestionType string

const (
	TypeRubric   QuestionType = "rubric"
	TypeOption   QuestionType = "option"
	TypeDropdown QuestionType = "dropdown"
	TypeCheckbox QuestionType = "checkbox"
	TypeComment  QuestionType = "comment"
	TypeText     QuestionType = "text"
)

// Default rubric score bounds used when the Templates sheet leaves them blank.
const (
	DefaultMinScore = 1
	DefaultMaxScore = 5
)

// TemplatesSheet is the sheet the form configuration is read from.
const TemplatesSheet = "Templates"

// Required Templates columns. SheetName is optional for form building but
// required for the speech-type-to-sheet mapping.
var requiredColumns = []string{
	"SpeechType", "SectionID", "SectionTitle", "QuestionID", "QuestionText", "QuestionType",
}

// ConfigError reports a problem with the Templates configuration. Always
// recoverable: callers surface the reason to the operator and carry on.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "templates config: " + e.Reason
}

// Question is one form question within a section.
type Question struct {
	ID            string
	Type          QuestionType
	Text          string
	Options       []string
	Required      bool
	DefaultValue  string
	MinScore      float64
	MaxScore      float64
	ScoreCriteria []string
}

// IsChoice reports whether the question collects one-of/many-of options.
func (q Question) IsChoice() bool {
	return q.Type == TypeOption || q.Type == TypeDropdown || q.Type == TypeCheckbox
}

// Section groups questions under a titled heading.
type Section struct {
	ID        string
	Title     string
	Questions []Question
}

// EvalForm is the full evaluation form for one speech type. Sections are
// ordered numeric-id-first ascending, then lexically; questions keep the
// Templates row order.
type EvalForm struct {
	SpeechType string
	Title      string
	Sections   []Section
}

// SpeechTypeInfo pairs a speech type with the sheet its submissions land in.
type SpeechTypeInfo struct {
	Type      string
	SheetName string
}

// BuildForm assembles the evaluation form for speechType from the Templates
// table. A row with an empty QuestionID defines a section without adding a
// question, so section headers may precede their questions.
func BuildForm(speechType string, t sheet.Table) (EvalForm, error) {
	for _, col := range requiredColumns {
		if t.HeaderIndex(col) == -1 {
			return EvalForm{}, &ConfigError{Reason: "required column '" + col + "' not found"}
		}
	}

	var (
		order    []string
		sections = map[string]*Section{}
		title    string
		matched  int
	)
	titleCol := t.HeaderIndex("FormTitle")

	for i := range t.Rows {
		if strings.TrimSpace(t.Value(i, "SpeechType")) != speechType {
			continue
		}
		matched++

		// Only the first matched row may override the title; a blank cell
		// there falls through to the default.
		if matched == 1 && titleCol != -1 {
			title = strings.TrimSpace(t.Cell(i, titleCol))
		}

		sectionID := strings.TrimSpace(t.Value(i, "SectionID"))
		sec, ok := sections[sectionID]
		if !ok {
			sec = &Section{ID: sectionID, Title: strings.TrimSpace(t.Value(i, "SectionTitle"))}
			sections[sectionID] = sec
			order = append(order, sectionID)
		}

		questionID := strings.TrimSpace(t.Value(i, "QuestionID"))
		if questionID == "" {
			continue // section-only row
		}

		q := Question{
			ID:            questionID,
			Type:          parseQuestionType(t.Value(i, "QuestionType")),
			Text:          strings.TrimSpace(t.Value(i, "QuestionText")),
			Options:       ParseList(t.Value(i, "Options")),
			Required:      strings.EqualFold(strings.TrimSpace(t.Value(i, "Required")), "true"),
			DefaultValue:  t.Value(i, "DefaultValue"),
			MinScore:      parseScore(t.Value(i, "MinScore"), DefaultMinScore),
			MaxScore:      parseScore(t.Value(i, "MaxScore"), DefaultMaxScore),
			ScoreCriteria: ParseList(t.Value(i, "ScoreCriteria")),
		}
		if q.MinScore > q.MaxScore {
			return EvalForm{}, &ConfigError{Reason: "question '" + q.ID + "' has MinScore above MaxScore"}
		}
		if q.IsChoice() && len(q.Options) == 0 {
			return EvalForm{}, &ConfigError{Reason: "question '" + q.ID + "' is a choice type but has no options"}
		}
		sec.Questions = append(sec.Questions, q)
	}

	if matched == 0 {
		return EvalForm{}, &ConfigError{Reason: "no configuration found for speech type: " + speechType}
	}

	sortSectionIDs(order)
	form := EvalForm{SpeechType: speechType, Title: title}
	for _, id := range order {
		form.Sections = append(form.Sections, *sections[id])
	}
	if form.Title == "" {
		form.Title = Capitalize(speechType) + " Speech Evaluation"
	}
	return form, nil
}

// SpeechTypes reads the speech-type-to-sheet mapping from the Templates
// table, in first-seen order. Rows with a blank type or sheet name are
// skipped.
func SpeechTypes(t sheet.Table) ([]SpeechTypeInfo, error) {
	if t.HeaderIndex("SpeechType") == -1 || t.HeaderIndex("SheetName") == -1 {
		return nil, &ConfigError{Reason: "required columns 'SpeechType'/'SheetName' not found"}
	}

	seen := map[string]bool{}
	var infos []SpeechTypeInfo
	for i := range t.Rows {
		st := strings.TrimSpace(t.Value(i, "SpeechType"))
		name := strings.TrimSpace(t.Value(i, "SheetName"))
		if st == "" || name == "" || seen[st] {
			continue
		}
		seen[st] = true
		infos = append(infos, SpeechTypeInfo{Type: st, SheetName: name})
	}
	return infos, nil
}

// SheetNameFor resolves the submission sheet for a speech type, generating
// "<Type> Evaluations" when the Templates mapping has no entry.
func SheetNameFor(infos []SpeechTypeInfo, speechType string) string {
	for _, info := range infos {
		if info.Type == speechType {
			return info.SheetName
		}
	}
	return Capitalize(speechType) + " Evaluations"
}

// ParseList decodes a Templates list cell. A structured JSON array is tried
// first; on failure the cell is split on '|' with each piece trimmed and
// empties dropped. Config authors may use either format.
func ParseList(cell string) []string {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return nil
	}

	var decoded []string
	if err := json.Unmarshal([]byte(cell), &decoded); err == nil {
		return decoded
	}

	var parts []string
	for _, p := range strings.Split(cell, "|") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

// Capitalize upper-cases the first rune of s.
func Capitalize(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// parseQuestionType normalises a raw type cell into the closed variant set.
func parseQuestionType(raw string) QuestionType {
	switch QuestionType(strings.ToLower(strings.TrimSpace(raw))) {
	case TypeRubric:
		return TypeRubric
	case TypeOption:
		return TypeOption
	case TypeDropdown:
		return TypeDropdown
	case TypeCheckbox:
		return TypeCheckbox
	case TypeComment:
		return TypeComment
	default:
		return TypeText
	}
}

func parseScore(raw string, fallback float64) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return n
}

// sortSectionIDs orders section ids numeric-ascending first, then
// non-numeric ids lexically (locale-aware) among themselves.
func sortSectionIDs(ids []string) {
	coll := collate.New(language.English)
	sort.SliceStable(ids, func(i, j int) bool {
		a, aNum := parseNumericID(ids[i])
		b, bNum := parseNumericID(ids[j])
		switch {
		case aNum && bNum:
			return a < b
		case aNum:
			return true
		case bNum:
			return false
		default:
			return coll.CompareString(ids[i], ids[j]) < 0
		}
	})
}

func parseNumericID(id string) (float64, bool) {
	n, err := strconv.ParseFloat(id, 64)
	return n, err == nil
}
