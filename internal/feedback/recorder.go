package feedback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pavelanni/exitsurvey/internal/model"
)

// Store is the persistence the recorder writes to.
type Store interface {
	UpdateSubmissions(ctx context.Context, fn func([]model.FeedbackSubmission) ([]model.FeedbackSubmission, error)) error
	UpdateStudents(ctx context.Context, fn func([]model.Student) ([]model.Student, error)) error
}

// errNotOnRoster aborts the roster update when no student matches, so nothing is rewritten.
var errNotOnRoster = errors.New("roll number not on roster")

// Recorder is the single writer of submission state. It trusts its input:
// completeness is checked by Validate before Submit is called, and the
// at-most-one-submission rule is enforced by Service, not here.
type Recorder struct {
	store Store
	now   func() time.Time
	onAdd func(model.FeedbackSubmission)
}

// NewRecorder creates a Recorder. onAdd, if not nil, is called after each recorded submission.
func NewRecorder(s Store, onAdd func(model.FeedbackSubmission)) *Recorder {
	return &Recorder{store: s, now: time.Now, onAdd: onAdd}
}

// Submit appends the submission and marks its student as submitted.
// An empty ID or zero SubmittedAt is filled in.
func (r *Recorder) Submit(ctx context.Context, sub model.FeedbackSubmission) (model.FeedbackSubmission, error) {
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	if sub.SubmittedAt.IsZero() {
		sub.SubmittedAt = r.now().UTC()
	}

	err := r.store.UpdateSubmissions(ctx, func(subs []model.FeedbackSubmission) ([]model.FeedbackSubmission, error) {
		return append(subs, sub), nil
	})
	if err != nil {
		return sub, fmt.Errorf("append submission: %w", err)
	}

	err = r.store.UpdateStudents(ctx, func(students []model.Student) ([]model.Student, error) {
		for i := range students {
			if model.SameRollNo(students[i].RollNo, sub.RollNo) {
				students[i].HasSubmitted = true
				return students, nil
			}
		}
		return nil, errNotOnRoster
	})
	switch {
	case errors.Is(err, errNotOnRoster):
		slog.Warn("submission for roll number not on roster", "id", sub.ID, "roll_no", sub.RollNo)
	case err != nil:
		slog.Error("submission stored but student not marked submitted",
			"id", sub.ID, "roll_no", sub.RollNo, "error", err)
		return sub, fmt.Errorf("mark student submitted: %w", err)
	}

	slog.Info("recorded submission", "id", sub.ID, "roll_no", sub.RollNo, "department", sub.Department, "answers", len(sub.Answers))
	if r.onAdd != nil {
		r.onAdd(sub)
	}
	return sub, nil
}
