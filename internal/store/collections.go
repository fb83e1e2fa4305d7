package store

import (
	"context"

	"github.com/pavelanni/exitsurvey/internal/model"
)

func emptySubmissions() []model.FeedbackSubmission {
	return []model.FeedbackSubmission{}
}

func defaultAdmin() model.AdminCredential {
	return model.DefaultAdmin
}

// Students returns the whole roster, seeding the demo roster on first use.
func (s *Store) Students(ctx context.Context) ([]model.Student, error) {
	students, _, err := loadOrSeed(ctx, s, collStudents, model.SeedStudents)
	return students, err
}

// SaveStudents replaces the whole roster.
func (s *Store) SaveStudents(ctx context.Context, students []model.Student) error {
	mu := s.locks[collStudents]
	mu.Lock()
	defer mu.Unlock()
	return s.save(ctx, collStudents, students)
}

// UpdateStudents applies fn to the roster as one serialized load-modify-save.
func (s *Store) UpdateStudents(ctx context.Context, fn func([]model.Student) ([]model.Student, error)) error {
	return update(ctx, s, collStudents, model.SeedStudents, fn)
}

// StudentByRollNo looks a student up case-insensitively. It returns nil if absent.
func (s *Store) StudentByRollNo(ctx context.Context, rollNo string) (*model.Student, error) {
	students, err := s.Students(ctx)
	if err != nil {
		return nil, err
	}
	for i := range students {
		if model.SameRollNo(students[i].RollNo, rollNo) {
			return &students[i], nil
		}
	}
	return nil, nil
}

// Submissions returns every recorded feedback submission in insertion order.
func (s *Store) Submissions(ctx context.Context) ([]model.FeedbackSubmission, error) {
	subs, _, err := loadOrSeed(ctx, s, collSubmissions, emptySubmissions)
	return subs, err
}

// SubmissionsByDepartment returns the submissions captured for one department.
func (s *Store) SubmissionsByDepartment(ctx context.Context, dept model.Department) ([]model.FeedbackSubmission, error) {
	all, err := s.Submissions(ctx)
	if err != nil {
		return nil, err
	}
	var out []model.FeedbackSubmission
	for _, f := range all {
		if f.Department == dept {
			out = append(out, f)
		}
	}
	return out, nil
}

// SaveSubmissions replaces the whole submissions collection.
func (s *Store) SaveSubmissions(ctx context.Context, subs []model.FeedbackSubmission) error {
	mu := s.locks[collSubmissions]
	mu.Lock()
	defer mu.Unlock()
	return s.save(ctx, collSubmissions, subs)
}

// UpdateSubmissions applies fn to the submissions as one serialized load-modify-save.
func (s *Store) UpdateSubmissions(ctx context.Context, fn func([]model.FeedbackSubmission) ([]model.FeedbackSubmission, error)) error {
	return update(ctx, s, collSubmissions, emptySubmissions, fn)
}

// Admin returns the administrator credential, seeding the default on first use.
func (s *Store) Admin(ctx context.Context) (model.AdminCredential, error) {
	admin, _, err := loadOrSeed(ctx, s, collAdmin, defaultAdmin)
	return admin, err
}
