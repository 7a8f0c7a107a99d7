package feedback_test

import (
	"testing"

	"podium/internal/domain/feedback"
)

func TestSanitize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"clean text untouched", "Great pacing and eye contact", "Great pacing and eye contact"},
		{"single word masked", "that was stupid", "that was ******"},
		{"case insensitive", "STUPID idea", "****** idea"},
		{"multiple words", "damn, what a terrible ending", "****, what a ******** ending"},
		{"word boundary respected", "her badge was badly placed", "her badge was badly placed"},
		{"empty input", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := feedback.Sanitize(tc.in); got != tc.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
