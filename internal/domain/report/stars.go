package report

import (
	"math"
	"strings"
)

// StarRating renders an average score as a star string out of max stars.
// The fractional part maps to a half star between 0.4 and 0.6 inclusive,
// rounds up above 0.6 and drops otherwise. Remaining slots are filled with
// empty stars so every rating has the same width.
func StarRating(avg float64, max int) string {
	if max <= 0 {
		return ""
	}
	if avg < 0 {
		avg = 0
	}
	if avg > float64(max) {
		avg = float64(max)
	}

	full := int(math.Floor(avg))
	frac := avg - float64(full)

	var b strings.Builder
	b.WriteString(strings.Repeat("★", full))
	used := full
	switch {
	case frac >= 0.4 && frac <= 0.6:
		b.WriteString("½")
		used++
	case frac > 0.6:
		b.WriteString("★")
		used++
	}
	b.WriteString(strings.Repeat("☆", max-used))
	return b.String()
}
