package sheet

import (
	"errors"
	"strings"
)

// Core headers seeded first into every evaluation sheet, in this order.
const (
	HeaderTimestamp  = "Timestamp"
	HeaderEvaluator  = "EvaluatorName"
	HeaderPresenter  = "PresenterName"
	HeaderSpeechType = "SpeechType"
)

// CoreHeaders returns the fixed leading headers of an evaluation sheet.
func CoreHeaders() []string {
	return []string{HeaderTimestamp, HeaderEvaluator, HeaderPresenter, HeaderSpeechType}
}

// Domain errors
var (
	ErrNotFound      = errors.New("sheet not found")
	ErrEmptyName     = errors.New("sheet name cannot be empty")
	ErrNoHeaders     = errors.New("sheet must have at least one header")
	ErrAlreadyExists = errors.New("sheet already exists")
)

// Table is an in-memory snapshot of one named sheet: an ordered header row
// plus zero or more data rows. Rows never include the header row. Cells are
// plain strings; a row may be shorter than Headers, in which case the missing
// trailing cells read as empty.
type Table struct {
	Name    string
	Headers []string
	Rows    [][]string
}

// HeaderIndex returns the column index of the given header, matching first
// exactly, then case-insensitively on trimmed names. Returns -1 if absent.
func (t Table) HeaderIndex(name string) int {
	for i, h := range t.Headers {
		if h == name {
			return i
		}
	}
	want := strings.ToLower(strings.TrimSpace(name))
	for i, h := range t.Headers {
		if strings.ToLower(strings.TrimSpace(h)) == want {
			return i
		}
	}
	return -1
}

// Cell returns the value at (row, col), or "" when out of range.
func (t Table) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) || col < 0 {
		return ""
	}
	r := t.Rows[row]
	if col >= len(r) {
		return ""
	}
	return r[col]
}

// Value returns the cell in the given row under the named header.
func (t Table) Value(row int, header string) string {
	return t.Cell(row, t.HeaderIndex(header))
}

// Records converts the table into header-keyed rows. Blank headers are
// skipped, matching how evaluation rows are read back from storage.
func (t Table) Records() []map[string]string {
	records := make([]map[string]string, 0, len(t.Rows))
	for i := range t.Rows {
		rec := make(map[string]string, len(t.Headers))
		for j, h := range t.Headers {
			h = strings.TrimSpace(h)
			if h == "" {
				continue
			}
			rec[h] = t.Cell(i, j)
		}
		records = append(records, rec)
	}
	return records
}

// LookupFold finds a value in a string map by exact key first, then by
// case-insensitive trimmed comparison. Used to bridge sheet headers
// ("EvaluatorName") and submission keys ("evaluatorName").
func LookupFold(m map[string]string, key string) (string, bool) {
	if v, ok := m[key]; ok {
		return v, true
	}
	want := strings.ToLower(strings.TrimSpace(key))
	for k, v := range m {
		if strings.ToLower(strings.TrimSpace(k)) == want {
			return v, true
		}
	}
	return "", false
}

// ContainsFold reports whether list contains s under case-insensitive
// trimmed comparison.
func ContainsFold(list []string, s string) bool {
	want := strings.ToLower(strings.TrimSpace(s))
	for _, v := range list {
		if strings.ToLower(strings.TrimSpace(v)) == want {
			return true
		}
	}
	return false
}
