// Package roster lists, filters and bulk-imports students.
package roster

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/pavelanni/exitsurvey/internal/model"
)

// AllDepartments selects every department in Filter.
const AllDepartments = "ALL"

// ErrInvalidRow is returned for a CSV row that cannot become a student.
var ErrInvalidRow = errors.New("invalid roster row")

// RowError locates an invalid CSV row.
type RowError struct {
	Line   int
	Reason string
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

func (e *RowError) Is(target error) bool {
	return target == ErrInvalidRow
}

// Filter returns the students of dept (empty or ALL for every department)
// whose roll number or name contains query, ignoring case.
func Filter(students []model.Student, dept string, query string) []model.Student {
	dept = strings.ToUpper(strings.TrimSpace(dept))
	query = strings.ToLower(strings.TrimSpace(query))

	out := []model.Student{}
	for _, s := range students {
		if dept != "" && dept != AllDepartments && string(s.Department) != dept {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(s.RollNo), query) &&
			!strings.Contains(strings.ToLower(s.Name), query) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// ParseCSV reads roster rows of the form roll_no,name,department,dob[,password].
// A leading header row is skipped. The password defaults to the roll number.
func ParseCSV(r io.Reader) ([]model.Student, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var students []model.Student
	for first := true; ; first = false {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		if first && isHeader(row) {
			continue
		}
		line, _ := reader.FieldPos(0)
		if blank(row) {
			continue
		}
		if len(row) < 4 || len(row) > 5 {
			return nil, &RowError{Line: line, Reason: fmt.Sprintf("expected 4 or 5 columns, got %d", len(row))}
		}

		s := model.Student{
			RollNo: strings.TrimSpace(row[0]),
			Name:   strings.TrimSpace(row[1]),
			DOB:    strings.TrimSpace(row[3]),
		}
		if s.RollNo == "" || s.Name == "" {
			return nil, &RowError{Line: line, Reason: "roll number and name are required"}
		}
		dept, ok := model.ParseDepartment(row[2])
		if !ok {
			return nil, &RowError{Line: line, Reason: fmt.Sprintf("unknown department %q", row[2])}
		}
		s.Department = dept
		s.Password = s.RollNo
		if len(row) == 5 && strings.TrimSpace(row[4]) != "" {
			s.Password = strings.TrimSpace(row[4])
		}
		students = append(students, s)
	}
	return students, nil
}

func isHeader(row []string) bool {
	if len(row) == 0 {
		return false
	}
	h := strings.ToLower(strings.TrimSpace(row[0]))
	h = strings.NewReplacer(" ", "", "_", "", ".", "").Replace(h)
	return h == "rollno" || h == "roll"
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// Store is the roster persistence Import writes to.
type Store interface {
	UpdateStudents(ctx context.Context, fn func([]model.Student) ([]model.Student, error)) error
}

// Result reports what an import did.
type Result struct {
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
}

// Importer appends new students to the roster.
type Importer struct {
	store Store
}

func NewImporter(s Store) *Importer {
	return &Importer{store: s}
}

// Import appends the students whose roll number is not yet on the roster,
// comparing case-insensitively. Repeats within the batch keep the first.
// New students always start as not submitted.
func (im *Importer) Import(ctx context.Context, students []model.Student) (Result, error) {
	var res Result
	err := im.store.UpdateStudents(ctx, func(existing []model.Student) ([]model.Student, error) {
		res = Result{}
		seen := make(map[string]bool, len(existing)+len(students))
		for _, s := range existing {
			seen[strings.ToLower(s.RollNo)] = true
		}
		for _, s := range students {
			key := strings.ToLower(s.RollNo)
			if seen[key] {
				res.Skipped++
				continue
			}
			seen[key] = true
			s.HasSubmitted = false
			existing = append(existing, s)
			res.Added++
		}
		return existing, nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("import students: %w", err)
	}
	slog.Info("imported students", "added", res.Added, "skipped", res.Skipped)
	return res, nil
}
