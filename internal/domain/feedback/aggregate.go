package feedback

import (
	"log/slog"
	"strconv"
	"strings"

	"podium/internal/domain/evaluation"
	"podium/internal/domain/schema"
	"podium/internal/domain/sheet"
)

// NoCommentsSentinel is the placeholder some forms write for skipped comment
// fields; aggregation drops it from comment lists.
const NoCommentsSentinel = "No comments provided"

// Report is the aggregation of every stored submission for one presenter
// and speech type, shaped for rendering. Sections and questions preserve
// schema order, so the report always reflects the current form even when
// old submissions lack some fields.
type Report struct {
	Title           string
	SpeechType      string
	EvaluationCount int
	Sections        []ReportSection
}

// ReportSection is one schema section with its aggregated questions.
type ReportSection struct {
	ID        string
	Title     string
	Questions []QuestionSummary
}

// HasContent reports whether any question in the section produced scores,
// tallies, comments or responses worth rendering.
func (s ReportSection) HasContent() bool {
	for _, q := range s.Questions {
		if q.HasContent() {
			return true
		}
	}
	return false
}

// QuestionSummary is the per-question aggregation result. Exactly one of
// the derived collections is populated depending on the question type;
// all are initialised (never nil) so renderers need no nil checks.
type QuestionSummary struct {
	ID   string
	Type schema.QuestionType
	Text string

	// rubric
	Scores        []float64
	AverageScore  float64
	MinScore      float64
	MaxScore      float64
	ScoreCriteria []string

	// option / dropdown / checkbox
	Options      []string
	OptionCounts map[string]int

	// comment
	Comments []string

	// text and anything else
	Responses []string
}

// HasContent reports whether the question collected any renderable data.
func (q QuestionSummary) HasContent() bool {
	return len(q.Scores) > 0 || len(q.OptionCounts) > 0 || len(q.Comments) > 0 || len(q.Responses) > 0
}

// Aggregate summarises submissions against the form schema. It walks every
// section and question of the schema, not the submissions, collecting
// non-empty responses keyed by question id. Malformed checkbox answers are
// logged and skipped without failing the aggregation.
func Aggregate(records []map[string]string, form schema.EvalForm) Report {
	report := Report{
		Title:           form.Title,
		SpeechType:      form.SpeechType,
		EvaluationCount: len(records),
	}

	for _, sec := range form.Sections {
		rsec := ReportSection{ID: sec.ID, Title: sec.Title}
		for _, q := range sec.Questions {
			rsec.Questions = append(rsec.Questions, summarise(q, collectResponses(records, q.ID)))
		}
		report.Sections = append(report.Sections, rsec)
	}
	return report
}

// collectResponses gathers non-empty values for one question id across all
// submission records.
func collectResponses(records []map[string]string, questionID string) []string {
	var responses []string
	for _, rec := range records {
		v, ok := sheet.LookupFold(rec, questionID)
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		responses = append(responses, v)
	}
	return responses
}

func summarise(q schema.Question, responses []string) QuestionSummary {
	qs := QuestionSummary{
		ID:            q.ID,
		Type:          q.Type,
		Text:          q.Text,
		Scores:        []float64{},
		OptionCounts:  map[string]int{},
		ScoreCriteria: []string{},
		Options:       []string{},
		Comments:      []string{},
		Responses:     []string{},
	}

	switch q.Type {
	case schema.TypeRubric:
		for _, r := range responses {
			n, err := strconv.ParseFloat(strings.TrimSpace(r), 64)
			if err != nil {
				continue // "N/A" and friends are excluded from sum and count
			}
			qs.Scores = append(qs.Scores, n)
		}
		if len(qs.Scores) > 0 {
			sum := 0.0
			for _, n := range qs.Scores {
				sum += n
			}
			qs.AverageScore = sum / float64(len(qs.Scores))
		}
		qs.MinScore = q.MinScore
		qs.MaxScore = q.MaxScore
		qs.ScoreCriteria = append(qs.ScoreCriteria, q.ScoreCriteria...)

	case schema.TypeOption, schema.TypeDropdown:
		for _, r := range responses {
			qs.OptionCounts[r]++
		}
		qs.Options = append(qs.Options, q.Options...)

	case schema.TypeCheckbox:
		for _, r := range responses {
			selected, err := evaluation.DecodeCheckbox(r)
			if err != nil {
				slog.Warn("checkbox_parse_fallback", "question_id", q.ID, "raw", r, "error", err)
				continue
			}
			for _, opt := range selected {
				qs.OptionCounts[opt]++
			}
		}
		qs.Options = append(qs.Options, q.Options...)

	case schema.TypeComment:
		qs.Comments = sanitizeList(responses)

	default:
		qs.Responses = sanitizeList(responses)
	}

	return qs
}

// sanitizeList sanitizes each response and drops empties and the
// no-comments sentinel.
func sanitizeList(responses []string) []string {
	out := []string{}
	for _, r := range responses {
		s := Sanitize(r)
		if strings.TrimSpace(s) == "" || s == NoCommentsSentinel {
			continue
		}
		out = append(out, s)
	}
	return out
}
