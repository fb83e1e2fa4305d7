package feedback

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/pavelanni/exitsurvey/internal/model"
)

var (
	// ErrIncompleteSubmission means a rated section is missing answers.
	ErrIncompleteSubmission = errors.New("incomplete submission")
	// ErrInvalidSubmission means the submission is malformed: unknown
	// questions, duplicate answers, or ratings outside the section's scale.
	ErrInvalidSubmission = errors.New("invalid submission")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// IncompleteError names the first section that is missing answers.
type IncompleteError struct {
	Section  model.Section
	Answered int
	Required int
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("incomplete submission: %d of %d %s questions answered", e.Answered, e.Required, e.Section)
}

func (e *IncompleteError) Is(target error) bool {
	return target == ErrIncompleteSubmission
}

// Validate checks that a submission carries exactly one well-formed answer
// for every question of every section. Sections are checked in form order.
func Validate(sub model.FeedbackSubmission) error {
	if err := validate.Struct(sub); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%w: field %s failed %q", ErrInvalidSubmission, verrs[0].Namespace(), verrs[0].Tag())
		}
		return fmt.Errorf("%w: %v", ErrInvalidSubmission, err)
	}

	for _, section := range model.Sections {
		known := make(map[int]bool)
		for _, q := range model.QuestionsFor(section) {
			known[q.ID] = true
		}
		seen := make(map[int]bool)
		for _, a := range sub.Answers {
			if a.Section != section {
				continue
			}
			if !known[a.QuestionID] {
				return fmt.Errorf("%w: unknown %s question %d", ErrInvalidSubmission, section, a.QuestionID)
			}
			if seen[a.QuestionID] {
				return fmt.Errorf("%w: duplicate answer for %s question %d", ErrInvalidSubmission, section, a.QuestionID)
			}
			if !validRating(section, a.Rating) {
				return fmt.Errorf("%w: rating %d out of range for %s question %d", ErrInvalidSubmission, a.Rating, section, a.QuestionID)
			}
			seen[a.QuestionID] = true
		}
		if len(seen) < len(known) {
			return &IncompleteError{Section: section, Answered: len(seen), Required: len(known)}
		}
	}
	return nil
}

func validRating(section model.Section, rating int) bool {
	if section.Rated() {
		return rating >= model.RatingBelowAverage && rating <= model.RatingVeryGood
	}
	return rating == model.RatingNo || rating == model.RatingYes
}
