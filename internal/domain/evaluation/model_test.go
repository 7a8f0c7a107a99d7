package evaluation_test

import (
	"reflect"
	"testing"
	"time"

	"podium/internal/domain/evaluation"
)

// TestSubmission_Validate checks the required identifying trio.
func TestSubmission_Validate(t *testing.T) {
	tests := []struct {
		name    string
		sub     evaluation.Submission
		wantErr error
	}{
		{
			name: "valid",
			sub:  evaluation.Submission{EvaluatorName: "Jane Doe", PresenterName: "John Roe", SpeechType: "persuasive"},
		},
		{
			name:    "missing evaluator",
			sub:     evaluation.Submission{PresenterName: "John Roe", SpeechType: "persuasive"},
			wantErr: evaluation.ErrMissingEvaluator,
		},
		{
			name:    "blank presenter",
			sub:     evaluation.Submission{EvaluatorName: "Jane Doe", PresenterName: "  ", SpeechType: "persuasive"},
			wantErr: evaluation.ErrMissingPresenter,
		},
		{
			name:    "missing speech type",
			sub:     evaluation.Submission{EvaluatorName: "Jane Doe", PresenterName: "John Roe"},
			wantErr: evaluation.ErrMissingSpeechType,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.sub.Validate(); err != tt.wantErr {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestProvisionHeaders verifies core-first ordering and case-insensitive
// de-duplication against the core set.
func TestProvisionHeaders(t *testing.T) {
	sub := evaluation.Submission{
		EvaluatorName: "Jane Doe",
		PresenterName: "John Roe",
		SpeechType:    "persuasive",
		Answers: map[string]string{
			"bodyScore":     "4",
			"bodyComments":  "Strong opening",
			"evaluatorName": "should not duplicate the core header",
		},
	}

	headers := evaluation.ProvisionHeaders(sub)
	want := []string{"Timestamp", "EvaluatorName", "PresenterName", "SpeechType", "bodyComments", "bodyScore"}
	if !reflect.DeepEqual(headers, want) {
		t.Errorf("headers = %v, want %v", headers, want)
	}
}

// TestBuildRow verifies core fields come from dedicated submission fields
// and answers resolve case-insensitively, with absent headers left empty.
func TestBuildRow(t *testing.T) {
	sub := evaluation.Submission{
		EvaluatorName: "Jane Doe",
		PresenterName: "John Roe",
		SpeechType:    "persuasive",
		Answers:       map[string]string{"bodyScore": "4"},
	}
	now := time.Date(2026, 3, 9, 10, 30, 0, 0, time.UTC)
	headers := []string{"timestamp", "EvaluatorName", "PresenterName", "SpeechType", "BodyScore", "laterAdded"}

	row := evaluation.BuildRow(headers, sub, now)
	want := []string{"2026-03-09T10:30:00Z", "Jane Doe", "John Roe", "persuasive", "4", ""}
	if !reflect.DeepEqual(row, want) {
		t.Errorf("row = %v, want %v", row, want)
	}
}

// TestCheckboxRoundTrip tests encode/decode of checkbox answers.
func TestCheckboxRoundTrip(t *testing.T) {
	raw := evaluation.EncodeCheckbox([]string{"Ethos", "Pathos"})
	opts, err := evaluation.DecodeCheckbox(raw)
	if err != nil {
		t.Fatalf("DecodeCheckbox: %v", err)
	}
	if !reflect.DeepEqual(opts, []string{"Ethos", "Pathos"}) {
		t.Errorf("opts = %v", opts)
	}

	if _, err := evaluation.DecodeCheckbox("not json"); err == nil {
		t.Error("expected error for malformed checkbox answer")
	}
}
