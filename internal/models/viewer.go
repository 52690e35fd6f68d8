package models

// Viewer identifies whose personalized timetable is being projected. The set of
// implementations is closed: StudentViewer and FacultyViewer.
type Viewer interface {
	viewer()
	Kind() ViewerKind
}

// ViewerKind names the viewer variant.
type ViewerKind string

const (
	ViewerKindStudent ViewerKind = "student"
	ViewerKindFaculty ViewerKind = "faculty"
)

// StudentViewer is a student identified by their year group qualifier.
type StudentViewer struct {
	YearGroup      string   `json:"year_group"`
	Specialization string   `json:"specialization,omitempty"`
	Subjects       []string `json:"subjects,omitempty"`
}

func (StudentViewer) viewer() {}

// Kind implements Viewer.
func (StudentViewer) Kind() ViewerKind { return ViewerKindStudent }

// EnrolledIn reports whether the student's subject list allows the subject. An empty list
// means enrolment is unknown and every subject passes.
func (v StudentViewer) EnrolledIn(subject string) bool {
	if len(v.Subjects) == 0 {
		return true
	}
	for _, s := range v.Subjects {
		if s == subject {
			return true
		}
	}
	return false
}

// FacultyViewer is a teacher identified by faculty id.
type FacultyViewer struct {
	ID string `json:"id"`
}

func (FacultyViewer) viewer() {}

// Kind implements Viewer.
func (FacultyViewer) Kind() ViewerKind { return ViewerKindFaculty }

// StudentInfo is the identity payload returned by the backend for a student session.
type StudentInfo struct {
	ID             string   `json:"id,omitempty"`
	YearGroup      string   `json:"year_group"`
	Specialization string   `json:"specialization,omitempty"`
	Subjects       []string `json:"subjects,omitempty"`
	Subgroup       string   `json:"subgroup,omitempty"`
}

// StudentValidation wraps the student identity check result.
type StudentValidation struct {
	Valid       bool         `json:"valid"`
	Message     string       `json:"message,omitempty"`
	StudentInfo *StudentInfo `json:"student_info,omitempty"`
}

// FacultyInfo is the identity payload returned by the backend for a faculty session.
type FacultyInfo struct {
	ID        string   `json:"id"`
	FirstName string   `json:"first_name,omitempty"`
	LastName  string   `json:"last_name,omitempty"`
	Position  string   `json:"position,omitempty"`
	Subjects  []string `json:"subjects,omitempty"`
}

// FacultyValidation wraps the faculty identity check result.
type FacultyValidation struct {
	Valid       bool         `json:"valid"`
	Message     string       `json:"message,omitempty"`
	FacultyInfo *FacultyInfo `json:"faculty_info,omitempty"`
}
