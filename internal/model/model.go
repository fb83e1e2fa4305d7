package model

import (
	"context"
	"strings"
	"time"
)

// Department is one of the fixed academic departments.
type Department string

const (
	DeptCivil Department = "CIVIL"
	DeptMech  Department = "MECH"
	DeptEEE   Department = "EEE"
	DeptECE   Department = "ECE"
	DeptCSE   Department = "CSE"
	DeptIT    Department = "IT"
)

// Departments lists every known department in display order.
var Departments = []Department{DeptCivil, DeptMech, DeptEEE, DeptECE, DeptCSE, DeptIT}

// DepartmentNames maps department codes to their full names, as printed on reports.
var DepartmentNames = map[Department]string{
	DeptCivil: "Civil Engineering",
	DeptMech:  "Mechanical Engineering",
	DeptEEE:   "Electrical and Electronics Engineering",
	DeptECE:   "Electronics and Communication Engineering",
	DeptCSE:   "Computer Science and Engineering",
	DeptIT:    "Information Technology",
}

// ParseDepartment normalizes s into a known Department.
func ParseDepartment(s string) (Department, bool) {
	d := Department(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Departments {
		if d == known {
			return d, true
		}
	}
	return "", false
}

// Student is a roster entry. RollNo is unique case-insensitively.
type Student struct {
	RollNo       string     `json:"roll_no"`
	Name         string     `json:"name"`
	Department   Department `json:"department"`
	DOB          string     `json:"dob"`
	Password     string     `json:"password"`
	HasSubmitted bool       `json:"has_submitted"`
}

// SameRollNo reports whether two roll numbers identify the same student.
func SameRollNo(a, b string) bool {
	return strings.EqualFold(a, b)
}

// AdminCredential is the single administrator login.
type AdminCredential struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Answer is a student's rating for one question.
type Answer struct {
	QuestionID int     `json:"question_id" validate:"gt=0"`
	Section    Section `json:"section" validate:"oneof=facilities participation accomplishment"`
	Rating     int     `json:"rating" validate:"gte=0,lte=4"`
}

// FeedbackSubmission is one student's completed exit survey. Immutable once recorded.
type FeedbackSubmission struct {
	ID                  string     `json:"id"`
	RollNo              string     `json:"roll_no" validate:"required"`
	StudentName         string     `json:"student_name" validate:"required"`
	Department          Department `json:"department" validate:"oneof=CIVIL MECH EEE ECE CSE IT"`
	Answers             []Answer   `json:"answers" validate:"dive"`
	Strengths           string     `json:"strengths"`
	Improvements        string     `json:"improvements"`
	GeneralStrengths    string     `json:"general_strengths"`
	GeneralImprovements string     `json:"general_improvements"`
	GeneralAdmin        string     `json:"general_admin"`
	SubmittedAt         time.Time  `json:"submitted_at"`
}

// Find returns the answer for the given section and question, if present.
func (f FeedbackSubmission) Find(section Section, questionID int) (Answer, bool) {
	for _, a := range f.Answers {
		if a.Section == section && a.QuestionID == questionID {
			return a, true
		}
	}
	return Answer{}, false
}

// Role is the kind of identity behind a session.
type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// Session is the authenticated identity of a client. It is either a
// StudentSession or an AdminSession.
type Session interface {
	Role() Role
	isSession()
}

// StudentSession carries the identity of a logged-in student.
type StudentSession struct {
	RollNo     string     `json:"roll_no"`
	Name       string     `json:"name"`
	Department Department `json:"department"`
}

func (StudentSession) Role() Role { return RoleStudent }
func (StudentSession) isSession() {}

// AdminSession carries the identity of a logged-in administrator.
type AdminSession struct {
	Username string `json:"username"`
}

func (AdminSession) Role() Role { return RoleAdmin }
func (AdminSession) isSession() {}

// AuthSession is a persisted session record keyed by its token.
type AuthSession struct {
	Token     string
	Session   Session
	CreatedAt time.Time
}

type sessionCtxKey struct{}

// ContextWithSession stores a session in the request context.
func ContextWithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionCtxKey{}, s)
}

// SessionFromContext retrieves the authenticated session from context, or nil.
func SessionFromContext(ctx context.Context) Session {
	s, _ := ctx.Value(sessionCtxKey{}).(Session)
	return s
}

// ServerConfig holds runtime parameters set via CLI flags.
type ServerConfig struct {
	BasePath      string // URL prefix for sub-path deployments
	SecureCookies bool   // Set Secure flag on cookies (disable for local dev)
	Institution   string // Printed on report headers
	Term          string
}
