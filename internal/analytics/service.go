package analytics

import (
	"context"
	"errors"
	"fmt"

	"github.com/pavelanni/exitsurvey/internal/model"
)

var (
	ErrUnknownQuestion   = errors.New("unknown question")
	ErrUnknownDepartment = errors.New("unknown department")
)

// Store is the read side the aggregator needs.
type Store interface {
	Students(ctx context.Context) ([]model.Student, error)
	Submissions(ctx context.Context) ([]model.FeedbackSubmission, error)
}

// Service loads a fresh snapshot from the store for every query.
type Service struct {
	store Store
}

func NewService(s Store) *Service {
	return &Service{store: s}
}

// Summary returns the department analytics of the whole roster.
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	students, err := s.store.Students(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("load students: %w", err)
	}
	subs, err := s.store.Submissions(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("load submissions: %w", err)
	}
	return DepartmentAnalytics(students, subs), nil
}

// QuestionStats returns the distribution of a rated question. An empty dept
// aggregates every department.
func (s *Service) QuestionStats(ctx context.Context, dept model.Department, section model.Section, questionID int) (QuestionStat, error) {
	if !section.Rated() || !knownQuestion(section, questionID) {
		return QuestionStat{}, fmt.Errorf("%w: %s/%d", ErrUnknownQuestion, section, questionID)
	}
	subs, err := s.submissions(ctx, dept)
	if err != nil {
		return QuestionStat{}, err
	}
	return QuestionStats(subs, section, questionID), nil
}

// Participation returns the yes/no counts of a participation question. An
// empty dept aggregates every department.
func (s *Service) Participation(ctx context.Context, dept model.Department, questionID int) (ParticipationStat, error) {
	if !knownQuestion(model.SectionParticipation, questionID) {
		return ParticipationStat{}, fmt.Errorf("%w: %s/%d", ErrUnknownQuestion, model.SectionParticipation, questionID)
	}
	subs, err := s.submissions(ctx, dept)
	if err != nil {
		return ParticipationStat{}, err
	}
	yes, no := ParticipationStats(subs, questionID)
	return ParticipationStat{Yes: yes, No: no}, nil
}

// Report builds the printable report of one department.
func (s *Service) Report(ctx context.Context, dept model.Department) (Report, error) {
	if _, ok := model.DepartmentNames[dept]; !ok {
		return Report{}, fmt.Errorf("%w: %q", ErrUnknownDepartment, dept)
	}
	subs, err := s.store.Submissions(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("load submissions: %w", err)
	}
	return BuildReport(dept, subs), nil
}

func (s *Service) submissions(ctx context.Context, dept model.Department) ([]model.FeedbackSubmission, error) {
	subs, err := s.store.Submissions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load submissions: %w", err)
	}
	if dept == "" {
		return subs, nil
	}
	if _, ok := model.DepartmentNames[dept]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDepartment, dept)
	}
	var out []model.FeedbackSubmission
	for _, sub := range subs {
		if sub.Department == dept {
			out = append(out, sub)
		}
	}
	return out, nil
}

func knownQuestion(section model.Section, questionID int) bool {
	for _, q := range model.QuestionsFor(section) {
		if q.ID == questionID {
			return true
		}
	}
	return false
}
