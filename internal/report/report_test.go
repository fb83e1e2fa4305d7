package report

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/pavelanni/exitsurvey/internal/analytics"
	"github.com/pavelanni/exitsurvey/internal/model"
)

func sampleReport(comments int) analytics.Report {
	var subs []model.FeedbackSubmission
	for i := 0; i < comments; i++ {
		var answers []model.Answer
		for _, section := range model.Sections {
			for _, q := range model.QuestionsFor(section) {
				r := 1 + (i+q.ID)%4
				if !section.Rated() {
					r = (i + q.ID) % 2
				}
				answers = append(answers, model.Answer{QuestionID: q.ID, Section: section, Rating: r})
			}
		}
		subs = append(subs, model.FeedbackSubmission{
			RollNo:       "23CS01",
			Department:   model.DeptCSE,
			Answers:      answers,
			Strengths:    strings.Repeat("Supportive faculty, café and labs. ", 1+i%5),
			Improvements: "",
		})
	}
	return analytics.BuildReport(model.DeptCSE, subs)
}

func TestCSV(t *testing.T) {
	r := sampleReport(3)

	data, err := CSV(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid csv: %v", err)
	}

	want := 1 + len(model.FacilityQuestions) + len(model.ParticipationQuestions) + len(model.AccomplishmentQuestions)
	if len(records) != want {
		t.Fatalf("expected %d records, got %d", want, len(records))
	}
	if strings.Join(records[0], ",") != strings.Join(csvHeaders, ",") {
		t.Errorf("unexpected header %v", records[0])
	}

	first := records[1]
	if first[0] != "facilities" || first[1] != "1" || first[2] != model.FacilityQuestions[0].Text {
		t.Errorf("unexpected first row %v", first)
	}
	if first[9] != "3" {
		t.Errorf("expected 3 responses, got %s", first[9])
	}
	if parts := strings.Split(first[10], "."); len(parts) != 2 || len(parts[1]) != 2 {
		t.Errorf("expected two-decimal mean, got %s", first[10])
	}

	part := records[1+len(model.FacilityQuestions)]
	if part[0] != "participation" || part[3] != "" || part[7] == "" || part[8] == "" {
		t.Errorf("unexpected participation row %v", part)
	}
}

func TestCSVEmptyReport(t *testing.T) {
	data, err := CSV(analytics.BuildReport(model.DeptIT, nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid csv: %v", err)
	}
	if got := records[1][10]; got != "0.00" {
		t.Errorf("expected mean 0.00, got %s", got)
	}
}

func TestPDF(t *testing.T) {
	tests := []struct {
		name     string
		comments int
	}{
		{"no responses", 0},
		{"few responses", 3},
		{"spans pages", 60},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := PDF(sampleReport(tt.comments), Options{
				Institution: "Government Polytechnic College",
				Term:        "VI",
				Date:        time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !bytes.HasPrefix(data, []byte("%PDF-")) {
				t.Errorf("output does not start with a PDF header")
			}
			if !bytes.Contains(data[len(data)-16:], []byte("%%EOF")) {
				t.Errorf("output does not end with a PDF trailer")
			}
		})
	}
}

func TestPDFTranslatesHeadings(t *testing.T) {
	var asked []string
	_, err := PDF(sampleReport(1), Options{T: func(id string) string {
		asked = append(asked, id)
		return "x"
	}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, id := range []string{"ReportTitle", "SectionFacilities", "SectionParticipation", "SectionAccomplishment", "SignatureHOD", "SignaturePrincipal"} {
		found := false
		for _, a := range asked {
			if a == id {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("expected heading %s to be translated", id)
		}
	}
}

func TestOrDash(t *testing.T) {
	if got := orDash("  "); got != "-" {
		t.Errorf("expected '-', got %q", got)
	}
	if got := orDash("ok"); got != "ok" {
		t.Errorf("expected 'ok', got %q", got)
	}
}
