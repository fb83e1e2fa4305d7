// Package analytics derives rating histograms, participation counts and
// department summaries from the raw submission collection. Everything is
// recomputed from the slices it is given.
package analytics

import "github.com/pavelanni/exitsurvey/internal/model"

// QuestionStat is the rating distribution of one question.
// Counts is ordered best first: Counts[0] holds rating 4, Counts[3] rating 1.
type QuestionStat struct {
	Counts  [4]int  `json:"counts"`
	Average float64 `json:"average"`
}

// Total is the number of real answers in the distribution.
func (q QuestionStat) Total() int {
	return q.Counts[0] + q.Counts[1] + q.Counts[2] + q.Counts[3]
}

// ParticipationStat counts yes and no answers to a participation question.
type ParticipationStat struct {
	Yes int `json:"yes"`
	No  int `json:"no"`
}

// DepartmentSummary is the submission progress of one department.
type DepartmentSummary struct {
	Department        model.Department `json:"department"`
	Total             int              `json:"total"`
	Submitted         int              `json:"submitted"`
	Pending           int              `json:"pending"`
	FacilityAvg       float64          `json:"facility_avg"`
	AccomplishmentAvg float64          `json:"accomplishment_avg"`
}

// Summary is the institution-wide submission progress.
type Summary struct {
	Total       int                 `json:"total"`
	Submitted   int                 `json:"submitted"`
	Pending     int                 `json:"pending"`
	Departments []DepartmentSummary `json:"departments"`
}

// bucket maps a four-point rating to its index in QuestionStat.Counts.
func bucket(rating int) (int, bool) {
	if rating < model.RatingBelowAverage || rating > model.RatingVeryGood {
		return 0, false
	}
	return model.RatingVeryGood - rating, true
}

// QuestionStats computes the distribution of one rated question. Submissions
// without an answer to the question fall in no bucket and do not count
// towards the average.
func QuestionStats(subs []model.FeedbackSubmission, section model.Section, questionID int) QuestionStat {
	var stat QuestionStat
	var sum int
	for _, sub := range subs {
		a, ok := sub.Find(section, questionID)
		if !ok {
			continue
		}
		i, ok := bucket(a.Rating)
		if !ok {
			continue
		}
		stat.Counts[i]++
		sum += a.Rating
	}
	if n := stat.Total(); n > 0 {
		stat.Average = round2(sum, n)
	}
	return stat
}

// ParticipationStats counts yes (1) and no (0) answers to a participation
// question. Submissions without an answer count in neither.
func ParticipationStats(subs []model.FeedbackSubmission, questionID int) (yes, no int) {
	for _, sub := range subs {
		a, ok := sub.Find(model.SectionParticipation, questionID)
		if !ok {
			continue
		}
		switch a.Rating {
		case model.RatingYes:
			yes++
		case model.RatingNo:
			no++
		}
	}
	return yes, no
}

// DepartmentAnalytics summarizes the roster and, per department present in the
// roster, the mean facility and accomplishment rating of its submissions.
// Departments are listed in order of first appearance in the roster.
func DepartmentAnalytics(students []model.Student, subs []model.FeedbackSubmission) Summary {
	summary := Summary{Departments: []DepartmentSummary{}}
	index := make(map[model.Department]int)

	for _, st := range students {
		i, ok := index[st.Department]
		if !ok {
			i = len(summary.Departments)
			index[st.Department] = i
			summary.Departments = append(summary.Departments, DepartmentSummary{Department: st.Department})
		}
		d := &summary.Departments[i]
		d.Total++
		summary.Total++
		if st.HasSubmitted {
			d.Submitted++
			summary.Submitted++
		}
	}
	summary.Pending = summary.Total - summary.Submitted

	for i := range summary.Departments {
		d := &summary.Departments[i]
		d.Pending = d.Total - d.Submitted
		d.FacilityAvg = sectionAverage(subs, d.Department, model.SectionFacilities)
		d.AccomplishmentAvg = sectionAverage(subs, d.Department, model.SectionAccomplishment)
	}
	return summary
}

// sectionAverage is the mean of every rating in one section across a department's submissions.
func sectionAverage(subs []model.FeedbackSubmission, dept model.Department, section model.Section) float64 {
	var sum, n int
	for _, sub := range subs {
		if sub.Department != dept {
			continue
		}
		for _, a := range sub.Answers {
			if a.Section != section {
				continue
			}
			if _, ok := bucket(a.Rating); !ok {
				continue
			}
			sum += a.Rating
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return round2(sum, n)
}

// round2 returns sum/n rounded to two decimals, halves away from zero.
// It works on the integers so decimal ties such as 1.025 round up.
// sum must be non-negative and n positive.
func round2(sum, n int) float64 {
	hundredths := (200*sum + n) / (2 * n)
	return float64(hundredths) / 100
}
