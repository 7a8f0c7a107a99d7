package student

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"podium/internal/domain/sheet"
)

// IndexSheet is the roster sheet name.
const IndexSheet = "Index"

// DefaultTeacherEmail is the fallback contact when the Index sheet carries
// no teacher address and no override is configured.
const DefaultTeacherEmail = "teacher@podium.example"

// Teacher contact lives in a fixed cell: first data row, third column.
const (
	TeacherEmailRow = 0
	TeacherEmailCol = 2
)

// Student is one roster entry. FullName is the join key used by
// submissions; it must be unique within the roster.
type Student struct {
	FullName string
	Email    string
}

// Directory is the loaded roster plus the teacher contact address.
// Students are sorted by full name ascending (locale-aware).
type Directory struct {
	Students     []Student
	TeacherEmail string
}

// FromTable loads a directory from the Index table. Rows with a blank name
// are skipped. The teacher email is read from the fixed cell, falling back
// to fallbackTeacher when blank, then to DefaultTeacherEmail.
func FromTable(t sheet.Table, fallbackTeacher string) Directory {
	dir := Directory{}
	for i := range t.Rows {
		name := strings.TrimSpace(t.Cell(i, 0))
		if name == "" {
			continue
		}
		dir.Students = append(dir.Students, Student{
			FullName: name,
			Email:    strings.TrimSpace(t.Cell(i, 1)),
		})
	}

	coll := collate.New(language.English)
	sort.SliceStable(dir.Students, func(i, j int) bool {
		return coll.CompareString(dir.Students[i].FullName, dir.Students[j].FullName) < 0
	})

	dir.TeacherEmail = strings.TrimSpace(t.Cell(TeacherEmailRow, TeacherEmailCol))
	if dir.TeacherEmail == "" {
		dir.TeacherEmail = strings.TrimSpace(fallbackTeacher)
	}
	if dir.TeacherEmail == "" {
		dir.TeacherEmail = DefaultTeacherEmail
	}
	return dir
}

// FindEmail returns the email for an exact (whitespace-trimmed,
// case-sensitive) full-name match, or "" when the student is unknown.
// An empty result means "no recipient", not an error.
func (d Directory) FindEmail(fullName string) string {
	want := strings.TrimSpace(fullName)
	for _, s := range d.Students {
		if s.FullName == want {
			return s.Email
		}
	}
	return ""
}

// IndexHeaders returns the headers used when seeding a fresh Index sheet.
func IndexHeaders() []string {
	return []string{"FullName", "Email", "TeacherEmail"}
}
