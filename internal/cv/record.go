package cv

// TemplateOld and TemplateNew are the two supported visual template variants.
// The refinement phase selects its instruction set based on this value.
const (
	TemplateOld = "old"
	TemplateNew = "new"
)

// Record is the canonical structured CV produced by the extraction phase and
// consumed by rendering/export. The extraction call and the refinement call
// both return this shape; neither mutates a record in place.
type Record struct {
	PersonalInfo PersonalInfo `json:"personalInfo"`
	Education    []Education  `json:"education"`
	Courses      []Course     `json:"courses"`
	Systems      []string     `json:"systems,omitempty"`
	Languages    []string     `json:"languages"`
	Experience   []Experience `json:"experience"`
	Analysis     *Analysis    `json:"analysis,omitempty"`
}

// PersonalInfo holds candidate identity and availability fields.
type PersonalInfo struct {
	Name         string `json:"name"`
	Availability string `json:"availability"`
	SKJ          string `json:"skj,omitempty"`
	SKJDate      string `json:"skjDate,omitempty"`
	Title        string `json:"title,omitempty"`
	CallingName  string `json:"roepnaam,omitempty"`
	Hours        string `json:"hours,omitempty"`
}

// Education is one degree entry, ordered most recent first.
type Education struct {
	Period string `json:"period"`
	Degree string `json:"degree"`
	Status string `json:"status"`
}

// Course is one training/course entry.
type Course struct {
	Period    string `json:"period,omitempty"`
	Title     string `json:"title,omitempty"`
	Institute string `json:"institute,omitempty"`
}

// Experience is one work-experience entry. Bullets is the most
// content-sensitive field in the whole record: its cardinality must never
// regress between pipeline phases.
type Experience struct {
	Period   string   `json:"period"`
	Employer string   `json:"employer"`
	Role     string   `json:"role"`
	Bullets  []string `json:"bullets"`
}

// Analysis is the optional assessment block attached by the "new" template.
type Analysis struct {
	Scores          Scores         `json:"scores"`
	Profile         *Profile       `json:"profile,omitempty"`
	Tags            []string       `json:"tags"`
	Strengths       []string       `json:"strengths,omitempty"`
	Weaknesses      []string       `json:"weaknesses,omitempty"`
	Summary         string         `json:"summary"`
	ExtendedSummary string         `json:"extendedSummary,omitempty"`
	VacancyMatches  []VacancyMatch `json:"vacancyMatches,omitempty"`
	Risks           []string       `json:"risks,omitempty"`
}

// Scores holds numeric assessment scores on a 0-100 scale.
type Scores struct {
	Overall      float64 `json:"overall"`
	Relevance    float64 `json:"relevance,omitempty"`
	SkillMatch   float64 `json:"skillMatch,omitempty"`
	Completeness float64 `json:"completeness,omitempty"`
	Consistency  float64 `json:"consistency,omitempty"`
	Professional float64 `json:"professional,omitempty"`
}

// Profile classifies the candidate for recruiter-facing views.
type Profile struct {
	Sector    string `json:"sector,omitempty"`
	Role      string `json:"role,omitempty"`
	Seniority string `json:"seniority,omitempty"`
}

// VacancyMatch scores the record against one vacancy title.
type VacancyMatch struct {
	Title string  `json:"title"`
	Score float64 `json:"score"`
}
