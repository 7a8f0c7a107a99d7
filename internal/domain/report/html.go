package report

import (
	"fmt"
	"html/template"
	"sort"
	"strings"

	"podium/internal/domain/feedback"
	"podium/internal/domain/schema"
)

// view models handed to the email templates. Built in Go so the templates
// stay free of aggregation logic.

type reportView struct {
	Title           string
	Presenter       string
	EvaluationCount int
	Sections        []sectionView
}

type sectionView struct {
	Title     string
	Questions []questionView
}

type questionView struct {
	Text          string
	Kind          string
	Average       string
	Stars         string
	ScoreCount    int
	ScoreCriteria []string
	Bars          []optionBar
	Entries       []string
	Placeholder   string
}

// optionBar is one row of an option tally. Percent is of submissions that
// answered the question.
type optionBar struct {
	Label   string
	Count   int
	Percent int
}

var htmlTmpl = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #222; max-width: 640px; margin: 0 auto;">
  <h1 style="color: #1a4d80;">{{.Title}}</h1>
  <p>Feedback summary for <strong>{{.Presenter}}</strong> based on {{.EvaluationCount}} evaluation{{if ne .EvaluationCount 1}}s{{end}}.</p>
{{range .Sections}}  <h2 style="border-bottom: 2px solid #1a4d80; padding-bottom: 4px;">{{.Title}}</h2>
{{range .Questions}}  <div style="margin: 12px 0 20px 0;">
    <p style="margin: 0 0 6px 0;"><strong>{{.Text}}</strong></p>
{{if .Placeholder}}    <p style="margin: 0; color: #999;">{{.Placeholder}}</p>
{{else if eq .Kind "rubric"}}    <p style="margin: 0; font-size: 18px;">{{.Stars}} <span style="color: #555;">({{.Average}} from {{.ScoreCount}} score{{if ne .ScoreCount 1}}s{{end}})</span></p>
{{if .ScoreCriteria}}    <p style="margin: 4px 0 0 0; color: #777; font-size: 12px;">{{range $i, $c := .ScoreCriteria}}{{if $i}} &middot; {{end}}{{$c}}{{end}}</p>
{{end}}{{else if eq .Kind "options"}}    <table style="border-collapse: collapse;">
{{range .Bars}}      <tr>
        <td style="padding: 2px 10px 2px 0;">{{.Label}}</td>
        <td style="padding: 2px 10px 2px 0;"><div style="background: #1a4d80; height: 12px; width: {{.Percent}}px;"></div></td>
        <td style="padding: 2px 0; color: #555;">{{.Count}} ({{.Percent}}%)</td>
      </tr>
{{end}}    </table>
{{else}}    <ul style="margin: 0; padding-left: 20px;">
{{range .Entries}}      <li style="margin: 2px 0;">{{.}}</li>
{{end}}    </ul>
{{end}}  </div>
{{end}}{{end}}  <p style="color: #999; font-size: 12px; margin-top: 30px;">This summary was generated automatically from peer evaluations.</p>
</body>
</html>
`))

// RenderHTML renders the feedback report as a self-contained HTML email
// body. Sections whose title mentions "review" and sections with no content
// are omitted so the email only carries peer feedback worth reading.
func RenderHTML(presenter string, r feedback.Report) (string, error) {
	var b strings.Builder
	if err := htmlTmpl.Execute(&b, buildView(presenter, r)); err != nil {
		return "", fmt.Errorf("render feedback html: %w", err)
	}
	return b.String(), nil
}

func buildView(presenter string, r feedback.Report) reportView {
	view := reportView{
		Title:           r.Title,
		Presenter:       presenter,
		EvaluationCount: r.EvaluationCount,
	}
	for _, sec := range r.Sections {
		if strings.Contains(strings.ToLower(sec.Title), "review") {
			continue
		}
		if !sec.HasContent() {
			continue
		}
		// Within a content-bearing section every question appears; the
		// unanswered ones carry a per-type placeholder.
		sv := sectionView{Title: sec.Title}
		for _, q := range sec.Questions {
			sv.Questions = append(sv.Questions, buildQuestionView(q))
		}
		view.Sections = append(view.Sections, sv)
	}
	return view
}

func buildQuestionView(q feedback.QuestionSummary) questionView {
	qv := questionView{Text: q.Text}
	switch q.Type {
	case schema.TypeRubric:
		qv.Kind = "rubric"
		if len(q.Scores) == 0 {
			qv.Placeholder = "No rubric scores submitted."
			break
		}
		qv.Average = fmt.Sprintf("%.1f", q.AverageScore)
		qv.Stars = StarRating(q.AverageScore, int(q.MaxScore))
		qv.ScoreCount = len(q.Scores)
		qv.ScoreCriteria = q.ScoreCriteria
	case schema.TypeOption, schema.TypeDropdown, schema.TypeCheckbox:
		qv.Kind = "options"
		if len(q.OptionCounts) == 0 {
			qv.Placeholder = "No selections made."
			break
		}
		qv.Bars = buildBars(q.Options, q.OptionCounts)
	case schema.TypeComment:
		qv.Kind = "comments"
		if len(q.Comments) == 0 {
			qv.Placeholder = "No comments provided."
			break
		}
		qv.Entries = q.Comments
	default:
		qv.Kind = "responses"
		if len(q.Responses) == 0 {
			qv.Placeholder = "No responses provided."
			break
		}
		qv.Entries = q.Responses
	}
	return qv
}

// buildBars orders tallies by the declared option order, then appends any
// write-in values that were stored but never declared, sorted for stability.
func buildBars(declared []string, counts map[string]int) []optionBar {
	total := 0
	for _, n := range counts {
		total += n
	}

	var bars []optionBar
	seen := map[string]bool{}
	for _, opt := range declared {
		bars = append(bars, optionBar{Label: opt, Count: counts[opt], Percent: percent(counts[opt], total)})
		seen[opt] = true
	}

	var extras []string
	for label := range counts {
		if !seen[label] {
			extras = append(extras, label)
		}
	}
	sort.Strings(extras)
	for _, label := range extras {
		bars = append(bars, optionBar{Label: label, Count: counts[label], Percent: percent(counts[label], total)})
	}
	return bars
}

func percent(count, total int) int {
	if total == 0 {
		return 0
	}
	return int(float64(count)/float64(total)*100 + 0.5)
}
