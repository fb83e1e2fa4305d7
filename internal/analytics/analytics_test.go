package analytics

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/pavelanni/exitsurvey/internal/model"
)

func sub(dept model.Department, answers ...model.Answer) model.FeedbackSubmission {
	return model.FeedbackSubmission{RollNo: "R", StudentName: "N", Department: dept, Answers: answers}
}

func fac(id, rating int) model.Answer {
	return model.Answer{QuestionID: id, Section: model.SectionFacilities, Rating: rating}
}

func acc(id, rating int) model.Answer {
	return model.Answer{QuestionID: id, Section: model.SectionAccomplishment, Rating: rating}
}

func part(id, rating int) model.Answer {
	return model.Answer{QuestionID: id, Section: model.SectionParticipation, Rating: rating}
}

func TestQuestionStatsEmpty(t *testing.T) {
	for _, section := range []model.Section{model.SectionFacilities, model.SectionAccomplishment} {
		for _, q := range model.QuestionsFor(section) {
			got := QuestionStats(nil, section, q.ID)
			if got != (QuestionStat{}) {
				t.Errorf("%s/%d: expected zero stat, got %+v", section, q.ID, got)
			}
		}
	}
}

func TestQuestionStatsExample(t *testing.T) {
	subs := []model.FeedbackSubmission{
		sub(model.DeptCSE, fac(1, 4)),
		sub(model.DeptCSE, fac(1, 4)),
		sub(model.DeptIT, fac(1, 3)),
	}
	got := QuestionStats(subs, model.SectionFacilities, 1)

	want := [4]int{2, 1, 0, 0}
	if got.Counts != want {
		t.Errorf("expected counts %v, got %v", want, got.Counts)
	}
	if got.Average != 3.67 {
		t.Errorf("expected average 3.67, got %v", got.Average)
	}
}

func TestQuestionStatsBucketOrder(t *testing.T) {
	subs := []model.FeedbackSubmission{
		sub(model.DeptCSE, acc(2, 1)),
		sub(model.DeptCSE, acc(2, 2)),
		sub(model.DeptCSE, acc(2, 2)),
		sub(model.DeptCSE, acc(2, 3)),
	}
	got := QuestionStats(subs, model.SectionAccomplishment, 2)

	// Counts follow RatingLabels: Very Good, Good, Average, Below Average.
	for i, label := range model.RatingLabels {
		n := 0
		for _, s := range subs {
			if s.Answers[0].Rating == label.Rating {
				n++
			}
		}
		if got.Counts[i] != n {
			t.Errorf("bucket %d (%s): expected %d, got %d", i, label.Label, n, got.Counts[i])
		}
	}
	if got.Average != 2 {
		t.Errorf("expected average 2, got %v", got.Average)
	}
}

func TestQuestionStatsMissingAnswerExcluded(t *testing.T) {
	subs := []model.FeedbackSubmission{
		sub(model.DeptCSE, fac(1, 4)),
		sub(model.DeptCSE, fac(2, 1)),
		sub(model.DeptCSE),
	}
	got := QuestionStats(subs, model.SectionFacilities, 1)

	if got.Total() != 1 {
		t.Errorf("expected 1 counted answer, got %d", got.Total())
	}
	if got.Average != 4 {
		t.Errorf("expected average 4, got %v", got.Average)
	}
}

func TestQuestionStatsIgnoresOtherSection(t *testing.T) {
	subs := []model.FeedbackSubmission{sub(model.DeptCSE, acc(1, 4), part(1, 1))}
	got := QuestionStats(subs, model.SectionFacilities, 1)
	if got != (QuestionStat{}) {
		t.Errorf("expected zero stat, got %+v", got)
	}
}

func TestQuestionStatsOrderIndependent(t *testing.T) {
	var subs []model.FeedbackSubmission
	ratings := []int{4, 1, 3, 3, 2, 4, 4, 1, 2, 3, 4}
	for i, r := range ratings {
		if i%4 == 3 {
			subs = append(subs, sub(model.DeptMech))
			continue
		}
		subs = append(subs, sub(model.DeptMech, fac(5, r)))
	}
	want := QuestionStats(subs, model.SectionFacilities, 5)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		shuffled := append([]model.FeedbackSubmission(nil), subs...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		if got := QuestionStats(shuffled, model.SectionFacilities, 5); got != want {
			t.Fatalf("permutation %d: expected %+v, got %+v", i, want, got)
		}
	}
}

func TestParticipationStatsPartition(t *testing.T) {
	subs := []model.FeedbackSubmission{
		sub(model.DeptEEE, part(1, 1), part(2, 0)),
		sub(model.DeptEEE, part(1, 0), part(2, 0)),
		sub(model.DeptEEE, part(1, 1)),
		sub(model.DeptEEE, fac(1, 4)),
	}

	tests := []struct {
		qid      int
		yes, no  int
		complete bool
	}{
		{1, 2, 1, false},
		{2, 0, 2, false},
		{3, 0, 0, false},
	}
	for _, tt := range tests {
		yes, no := ParticipationStats(subs, tt.qid)
		if yes != tt.yes || no != tt.no {
			t.Errorf("q%d: expected yes=%d no=%d, got yes=%d no=%d", tt.qid, tt.yes, tt.no, yes, no)
		}
		if yes+no > len(subs) {
			t.Errorf("q%d: yes+no=%d exceeds cohort %d", tt.qid, yes+no, len(subs))
		}
		if (yes+no == len(subs)) != tt.complete {
			t.Errorf("q%d: equality with cohort should hold only when every submission answered", tt.qid)
		}
	}

	full := subs[:2]
	yes, no := ParticipationStats(full, 1)
	if yes+no != len(full) {
		t.Errorf("expected yes+no=%d when all answered, got %d", len(full), yes+no)
	}
}

func TestDepartmentAnalyticsSeedRoster(t *testing.T) {
	got := DepartmentAnalytics(model.SeedStudents(), nil)

	if got.Total != 10 || got.Submitted != 0 || got.Pending != 10 {
		t.Errorf("expected 10/0/10, got %d/%d/%d", got.Total, got.Submitted, got.Pending)
	}
	if len(got.Departments) != len(model.Departments) {
		t.Fatalf("expected %d departments, got %d", len(model.Departments), len(got.Departments))
	}
	for i, d := range got.Departments {
		if d.Department != model.Departments[i] {
			t.Errorf("position %d: expected %s, got %s", i, model.Departments[i], d.Department)
		}
		if d.Submitted != 0 || d.Pending != d.Total {
			t.Errorf("%s: expected nothing submitted, got %+v", d.Department, d)
		}
		if d.FacilityAvg != 0 || d.AccomplishmentAvg != 0 {
			t.Errorf("%s: expected zero averages, got %+v", d.Department, d)
		}
	}
}

func TestDepartmentAnalyticsAverages(t *testing.T) {
	students := []model.Student{
		{RollNo: "B1", Department: model.DeptIT, HasSubmitted: true},
		{RollNo: "A1", Department: model.DeptCSE, HasSubmitted: true},
		{RollNo: "A2", Department: model.DeptCSE},
		{RollNo: "B2", Department: model.DeptIT},
	}
	subs := []model.FeedbackSubmission{
		sub(model.DeptCSE, fac(1, 4), fac(2, 3), fac(3, 3), acc(1, 2), part(1, 1)),
		sub(model.DeptIT, fac(1, 1)),
		sub(model.DeptECE, fac(1, 4), acc(1, 4)),
	}

	got := DepartmentAnalytics(students, subs)

	want := Summary{
		Total: 4, Submitted: 2, Pending: 2,
		Departments: []DepartmentSummary{
			{Department: model.DeptIT, Total: 2, Submitted: 1, Pending: 1, FacilityAvg: 1, AccomplishmentAvg: 0},
			{Department: model.DeptCSE, Total: 2, Submitted: 1, Pending: 1, FacilityAvg: 3.33, AccomplishmentAvg: 2},
		},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestRound2(t *testing.T) {
	tests := []struct {
		sum, n int
		want   float64
	}{
		{0, 1, 0},
		{11, 3, 3.67},
		{10, 3, 3.33},
		{17, 8, 2.13},
		{5, 2, 2.5},
		{41, 40, 1.03},
		{201, 200, 1.01},
		{87, 40, 2.18},
		{251, 250, 1},
		{16, 4, 4},
	}
	for _, tt := range tests {
		if got := round2(tt.sum, tt.n); got != tt.want {
			t.Errorf("round2(%d, %d): expected %v, got %v", tt.sum, tt.n, tt.want, got)
		}
	}
}

func TestDepartmentAnalyticsRoundsDecimalTiesUp(t *testing.T) {
	facilities := model.QuestionsFor(model.SectionFacilities)
	students := make([]model.Student, 0, 5)
	subs := make([]model.FeedbackSubmission, 0, 5)
	for i := 0; i < 5; i++ {
		students = append(students, model.Student{RollNo: string(rune('A' + i)), Department: model.DeptCSE, HasSubmitted: true})
		var answers []model.Answer
		for _, q := range facilities {
			answers = append(answers, fac(q.ID, model.RatingBelowAverage))
		}
		subs = append(subs, sub(model.DeptCSE, answers...))
	}
	// Forty ratings summing to 41: the mean is exactly 1.025.
	subs[0].Answers[0].Rating = model.RatingAverage

	got := DepartmentAnalytics(students, subs)
	if len(got.Departments) != 1 {
		t.Fatalf("expected 1 department, got %d", len(got.Departments))
	}
	if got.Departments[0].FacilityAvg != 1.03 {
		t.Errorf("expected facility average 1.03, got %v", got.Departments[0].FacilityAvg)
	}
}

func TestBuildReport(t *testing.T) {
	subs := []model.FeedbackSubmission{
		sub(model.DeptCSE, fac(1, 4), part(1, 1), acc(8, 2)),
		sub(model.DeptIT, fac(1, 1)),
		{
			RollNo: "X", Department: model.DeptCSE,
			Answers:   []model.Answer{fac(1, 3), part(1, 0)},
			Strengths: "Labs, \"faculty\" & library", Improvements: "Wi-Fi\nin hostel",
		},
	}

	r := BuildReport(model.DeptCSE, subs)

	if r.Responses != 2 {
		t.Errorf("expected 2 responses, got %d", r.Responses)
	}
	if r.DepartmentName != "Computer Science and Engineering" {
		t.Errorf("unexpected department name %q", r.DepartmentName)
	}
	if len(r.Facilities) != len(model.FacilityQuestions) || len(r.Accomplishment) != len(model.AccomplishmentQuestions) {
		t.Fatalf("expected a row per question, got %d facilities, %d accomplishment", len(r.Facilities), len(r.Accomplishment))
	}
	if r.Facilities[0].Counts != [4]int{1, 1, 0, 0} {
		t.Errorf("expected facility 1 counts [1 1 0 0], got %v", r.Facilities[0].Counts)
	}
	if r.Facilities[0].Average != 3.5 {
		t.Errorf("expected facility 1 average 3.5, got %v", r.Facilities[0].Average)
	}
	if r.Accomplishment[7].Counts != [4]int{0, 0, 1, 0} {
		t.Errorf("expected accomplishment 8 counts [0 0 1 0], got %v", r.Accomplishment[7].Counts)
	}
	if len(r.Participation) != len(model.ParticipationQuestions) {
		t.Fatalf("expected %d participation rows, got %d", len(model.ParticipationQuestions), len(r.Participation))
	}
	if r.Participation[0].Yes != 1 || r.Participation[0].No != 1 {
		t.Errorf("expected participation 1 yes=1 no=1, got %+v", r.Participation[0].ParticipationStat)
	}
	if len(r.Comments) != 2 {
		t.Fatalf("expected 2 comment rows, got %d", len(r.Comments))
	}
	if !r.Comments[0].Empty() {
		t.Errorf("expected first comment empty, got %+v", r.Comments[0])
	}
	if r.Comments[1].Improvements != "Wi-Fi\nin hostel" {
		t.Errorf("unexpected improvements %q", r.Comments[1].Improvements)
	}
}

func TestBuildReportNoSubmissions(t *testing.T) {
	r := BuildReport(model.DeptMech, nil)
	if r.Responses != 0 || len(r.Comments) != 0 {
		t.Errorf("expected empty report, got %+v", r)
	}
	for _, row := range r.Facilities {
		if row.QuestionStat != (QuestionStat{}) {
			t.Errorf("facility %d: expected zero stat, got %+v", row.Question.ID, row.QuestionStat)
		}
	}
}
