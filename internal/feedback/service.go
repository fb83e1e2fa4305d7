package feedback

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/pavelanni/exitsurvey/internal/model"
)

var (
	ErrAlreadySubmitted = errors.New("feedback already submitted")
	ErrUnknownStudent   = errors.New("student not on roster")
)

// RosterStore reads the student roster.
type RosterStore interface {
	StudentByRollNo(ctx context.Context, rollNo string) (*model.Student, error)
}

// Form is what a student fills in. Identity comes from the session.
type Form struct {
	Answers             []model.Answer `json:"answers"`
	Strengths           string         `json:"strengths"`
	Improvements        string         `json:"improvements"`
	GeneralStrengths    string         `json:"general_strengths"`
	GeneralImprovements string         `json:"general_improvements"`
	GeneralAdmin        string         `json:"general_admin"`
}

// Service gates student submissions: one per student, complete forms only.
type Service struct {
	roster   RosterStore
	recorder *Recorder

	// Serializes the submitted check with the write that flips it.
	mu sync.Mutex
}

func NewService(roster RosterStore, recorder *Recorder) *Service {
	return &Service{roster: roster, recorder: recorder}
}

// HasSubmitted reports whether the student has already recorded feedback.
func (s *Service) HasSubmitted(ctx context.Context, rollNo string) (bool, error) {
	st, err := s.roster.StudentByRollNo(ctx, rollNo)
	if err != nil {
		return false, err
	}
	if st == nil {
		return false, ErrUnknownStudent
	}
	return st.HasSubmitted, nil
}

// SubmitFor records the form on behalf of the logged-in student.
func (s *Service) SubmitFor(ctx context.Context, sess model.StudentSession, form Form) (model.FeedbackSubmission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.roster.StudentByRollNo(ctx, sess.RollNo)
	if err != nil {
		return model.FeedbackSubmission{}, fmt.Errorf("look up student: %w", err)
	}
	if st == nil {
		return model.FeedbackSubmission{}, ErrUnknownStudent
	}
	if st.HasSubmitted {
		return model.FeedbackSubmission{}, ErrAlreadySubmitted
	}

	sub := model.FeedbackSubmission{
		RollNo:              st.RollNo,
		StudentName:         st.Name,
		Department:          st.Department,
		Answers:             form.Answers,
		Strengths:           form.Strengths,
		Improvements:        form.Improvements,
		GeneralStrengths:    form.GeneralStrengths,
		GeneralImprovements: form.GeneralImprovements,
		GeneralAdmin:        form.GeneralAdmin,
	}
	if err := Validate(sub); err != nil {
		return model.FeedbackSubmission{}, err
	}
	return s.recorder.Submit(ctx, sub)
}
