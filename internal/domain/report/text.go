package report

import (
	"fmt"
	"strings"

	"podium/internal/domain/feedback"
)

// RenderText renders the feedback report as a plain text body, structurally
// mirroring the HTML version for clients that prefer or require text.
func RenderText(presenter string, r feedback.Report) string {
	view := buildView(presenter, r)

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", view.Title)
	fmt.Fprintf(&b, "Feedback summary for %s based on %d evaluation%s.\n\n",
		view.Presenter, view.EvaluationCount, plural(view.EvaluationCount))

	for _, sec := range view.Sections {
		fmt.Fprintf(&b, "%s\n%s\n", sec.Title, strings.Repeat("=", len(sec.Title)))
		for _, q := range sec.Questions {
			fmt.Fprintf(&b, "\n%s\n", q.Text)
			if q.Placeholder != "" {
				fmt.Fprintf(&b, "  %s\n", q.Placeholder)
				continue
			}
			switch q.Kind {
			case "rubric":
				fmt.Fprintf(&b, "  %s (%s from %d score%s)\n", q.Stars, q.Average, q.ScoreCount, plural(q.ScoreCount))
			case "options":
				for _, bar := range q.Bars {
					fmt.Fprintf(&b, "  %-24s %d (%d%%)\n", bar.Label, bar.Count, bar.Percent)
				}
			default:
				for _, entry := range q.Entries {
					fmt.Fprintf(&b, "  - %s\n", entry)
				}
			}
		}
		b.WriteString("\n")
	}

	b.WriteString("This summary was generated automatically from peer evaluations.\n")
	return b.String()
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

// Subject builds the feedback email subject line for a presenter.
func Subject(formTitle, presenter string) string {
	return formTitle + " - Feedback Summary for " + presenter
}
