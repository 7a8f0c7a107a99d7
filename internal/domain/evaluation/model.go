package evaluation

import (
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"time"

	"podium/internal/domain/sheet"
)

// Domain errors
var (
	ErrMissingEvaluator  = errors.New("evaluator name is required")
	ErrMissingPresenter  = errors.New("presenter name is required")
	ErrMissingSpeechType = errors.New("speech type is required")
)

// TimestampLayout is how append times are written into evaluation sheets.
const TimestampLayout = "2006-01-02T15:04:05Z07:00"

// Submission is one evaluator's complete answer set for one presenter and
// speech type. Answers map question ids to scalar values; checkbox answers
// are JSON-encoded arrays. Submissions are appended once and never updated.
type Submission struct {
	EvaluatorName string
	PresenterName string
	SpeechType    string
	Answers       map[string]string
}

// Validate checks the fixed required fields. Per-question requirements are
// enforced by the form; the server only insists on the identifying trio.
func (s *Submission) Validate() error {
	if strings.TrimSpace(s.EvaluatorName) == "" {
		return ErrMissingEvaluator
	}
	if strings.TrimSpace(s.PresenterName) == "" {
		return ErrMissingPresenter
	}
	if strings.TrimSpace(s.SpeechType) == "" {
		return ErrMissingSpeechType
	}
	return nil
}

// ProvisionHeaders builds the header row for a fresh evaluation sheet: the
// core fields first, then every other submission key once, de-duplicated
// case-insensitively against the core set. Answer keys are appended in
// sorted order for a stable sheet layout.
func ProvisionHeaders(s Submission) []string {
	headers := sheet.CoreHeaders()
	for _, key := range sortedKeys(s.Answers) {
		if !sheet.ContainsFold(headers, key) {
			headers = append(headers, key)
		}
	}
	return headers
}

// BuildRow constructs the cell row for an append against existing headers.
// Core fields are always computed from the dedicated submission fields
// regardless of header casing; other cells resolve by exact key, then by
// case-insensitive key, else empty.
func BuildRow(headers []string, s Submission, now time.Time) []string {
	core := map[string]string{
		sheet.HeaderTimestamp:  now.Format(TimestampLayout),
		sheet.HeaderEvaluator:  s.EvaluatorName,
		sheet.HeaderPresenter:  s.PresenterName,
		sheet.HeaderSpeechType: s.SpeechType,
	}

	row := make([]string, len(headers))
	for i, h := range headers {
		if v, ok := sheet.LookupFold(core, h); ok {
			row[i] = v
			continue
		}
		if v, ok := sheet.LookupFold(s.Answers, h); ok {
			row[i] = v
		}
	}
	return row
}

// DecodeCheckbox decodes a JSON-encoded checkbox answer into its selected
// options. Callers treat a decode failure as a recoverable parse fallback.
func DecodeCheckbox(raw string) ([]string, error) {
	var opts []string
	if err := json.Unmarshal([]byte(raw), &opts); err != nil {
		return nil, err
	}
	return opts, nil
}

// EncodeCheckbox encodes selected options as a JSON array for storage.
func EncodeCheckbox(opts []string) string {
	b, err := json.Marshal(opts)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
