package model

// Section groups the survey questions.
type Section string

const (
	SectionFacilities     Section = "facilities"
	SectionParticipation  Section = "participation"
	SectionAccomplishment Section = "accomplishment"
)

// Sections lists the rated sections in form order.
var Sections = []Section{SectionFacilities, SectionParticipation, SectionAccomplishment}

// Rated reports whether the section uses the four-point scale.
func (s Section) Rated() bool {
	return s == SectionFacilities || s == SectionAccomplishment
}

// Valid reports whether s is a known section.
func (s Section) Valid() bool {
	return s.Rated() || s == SectionParticipation
}

// Ratings on the four-point scale. Participation answers use RatingNo/RatingYes.
const (
	RatingBelowAverage = 1
	RatingAverage      = 2
	RatingGood         = 3
	RatingVeryGood     = 4

	RatingNo  = 0
	RatingYes = 1
)

// RatingLabel names a point on the four-point scale.
type RatingLabel struct {
	Rating int    `json:"rating"`
	Label  string `json:"label"`
}

// RatingLabels is ordered best to worst; QuestionStat buckets follow the same order.
var RatingLabels = []RatingLabel{
	{RatingVeryGood, "Very Good"},
	{RatingGood, "Good"},
	{RatingAverage, "Average"},
	{RatingBelowAverage, "Below Average"},
}

// Question is static reference data.
type Question struct {
	ID      int     `json:"id"`
	Section Section `json:"section"`
	Text    string  `json:"text"`
}

var FacilityQuestions = []Question{
	{1, SectionFacilities, "Classroom infrastructure and ventilation"},
	{2, SectionFacilities, "Laboratory equipment and maintenance"},
	{3, SectionFacilities, "Library resources and reading room"},
	{4, SectionFacilities, "Computer and internet facilities"},
	{5, SectionFacilities, "Drinking water and sanitation"},
	{6, SectionFacilities, "Sports and extracurricular facilities"},
	{7, SectionFacilities, "Canteen and hostel facilities"},
	{8, SectionFacilities, "Transport facilities"},
}

var ParticipationQuestions = []Question{
	{1, SectionParticipation, "Did you take part in NSS / NCC / YRC activities?"},
	{2, SectionParticipation, "Did you attend industrial visits or in-plant training?"},
	{3, SectionParticipation, "Did you participate in symposiums or technical events?"},
	{4, SectionParticipation, "Did you attend placement training programmes?"},
	{5, SectionParticipation, "Did you take part in sports or cultural competitions?"},
}

var AccomplishmentQuestions = []Question{
	{1, SectionAccomplishment, "Knowledge of basic science and engineering fundamentals"},
	{2, SectionAccomplishment, "Ability to analyse and solve engineering problems"},
	{3, SectionAccomplishment, "Ability to design and develop solutions"},
	{4, SectionAccomplishment, "Use of modern engineering tools"},
	{5, SectionAccomplishment, "Awareness of society, environment and sustainability"},
	{6, SectionAccomplishment, "Professional ethics and responsibility"},
	{7, SectionAccomplishment, "Team work and communication skills"},
	{8, SectionAccomplishment, "Interest in lifelong learning"},
}

// QuestionsFor returns the question set of a section, or nil for an unknown section.
func QuestionsFor(s Section) []Question {
	switch s {
	case SectionFacilities:
		return FacilityQuestions
	case SectionParticipation:
		return ParticipationQuestions
	case SectionAccomplishment:
		return AccomplishmentQuestions
	}
	return nil
}
