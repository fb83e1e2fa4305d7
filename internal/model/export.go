package model

import "time"

// SurveyExport is the top-level JSON structure of a full data export.
type SurveyExport struct {
	GeneratedAt time.Time            `json:"generated_at"`
	Term        string               `json:"term,omitempty"`
	Students    []StudentExport      `json:"students"`
	Submissions []FeedbackSubmission `json:"submissions"`
}

// StudentExport is a roster entry as exported. Passwords are left out.
type StudentExport struct {
	RollNo       string     `json:"roll_no"`
	Name         string     `json:"name"`
	Department   Department `json:"department"`
	DOB          string     `json:"dob"`
	HasSubmitted bool       `json:"has_submitted"`
}
