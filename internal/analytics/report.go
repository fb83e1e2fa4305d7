package analytics

import (
	"github.com/pavelanni/exitsurvey/internal/model"
)

// QuestionRow is one line of a rated section table.
type QuestionRow struct {
	Question model.Question `json:"question"`
	QuestionStat
}

// ParticipationRow is one line of the participation table.
type ParticipationRow struct {
	Question model.Question `json:"question"`
	ParticipationStat
}

// Comment holds the free-text answers of one submission.
type Comment struct {
	Strengths           string `json:"strengths"`
	Improvements        string `json:"improvements"`
	GeneralStrengths    string `json:"general_strengths"`
	GeneralImprovements string `json:"general_improvements"`
	GeneralAdmin        string `json:"general_admin"`
}

// Empty reports whether no comment field was filled in.
func (c Comment) Empty() bool {
	return c == Comment{}
}

// Report is the printable exit survey of one department.
type Report struct {
	Department     model.Department   `json:"department"`
	DepartmentName string             `json:"department_name"`
	Responses      int                `json:"responses"`
	Facilities     []QuestionRow      `json:"facilities"`
	Participation  []ParticipationRow `json:"participation"`
	Accomplishment []QuestionRow      `json:"accomplishment"`
	Comments       []Comment          `json:"comments"`
}

// BuildReport assembles the report of dept from the submissions captured for it.
// Submissions of other departments are ignored.
func BuildReport(dept model.Department, subs []model.FeedbackSubmission) Report {
	var own []model.FeedbackSubmission
	for _, sub := range subs {
		if sub.Department == dept {
			own = append(own, sub)
		}
	}

	r := Report{
		Department:     dept,
		DepartmentName: model.DepartmentNames[dept],
		Responses:      len(own),
		Facilities:     questionRows(own, model.SectionFacilities),
		Accomplishment: questionRows(own, model.SectionAccomplishment),
		Comments:       []Comment{},
	}

	for _, q := range model.ParticipationQuestions {
		yes, no := ParticipationStats(own, q.ID)
		r.Participation = append(r.Participation, ParticipationRow{
			Question:          q,
			ParticipationStat: ParticipationStat{Yes: yes, No: no},
		})
	}

	for _, sub := range own {
		c := Comment{
			Strengths:           sub.Strengths,
			Improvements:        sub.Improvements,
			GeneralStrengths:    sub.GeneralStrengths,
			GeneralImprovements: sub.GeneralImprovements,
			GeneralAdmin:        sub.GeneralAdmin,
		}
		r.Comments = append(r.Comments, c)
	}
	return r
}

func questionRows(subs []model.FeedbackSubmission, section model.Section) []QuestionRow {
	questions := model.QuestionsFor(section)
	rows := make([]QuestionRow, 0, len(questions))
	for _, q := range questions {
		rows = append(rows, QuestionRow{Question: q, QuestionStat: QuestionStats(subs, section, q.ID)})
	}
	return rows
}
