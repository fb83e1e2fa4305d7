package store

import (
	"context"
	"fmt"
	"time"

	"github.com/pavelanni/exitsurvey/internal/model"
)

// Export snapshots the roster and every submission.
func (s *Store) Export(ctx context.Context) (model.SurveyExport, error) {
	students, err := s.Students(ctx)
	if err != nil {
		return model.SurveyExport{}, fmt.Errorf("load students: %w", err)
	}
	subs, err := s.Submissions(ctx)
	if err != nil {
		return model.SurveyExport{}, fmt.Errorf("load submissions: %w", err)
	}

	out := model.SurveyExport{
		GeneratedAt: time.Now().UTC(),
		Students:    make([]model.StudentExport, 0, len(students)),
		Submissions: subs,
	}
	for _, st := range students {
		out.Students = append(out.Students, model.StudentExport{
			RollNo:       st.RollNo,
			Name:         st.Name,
			Department:   st.Department,
			DOB:          st.DOB,
			HasSubmitted: st.HasSubmitted,
		})
	}
	return out, nil
}
