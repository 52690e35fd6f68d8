package projection

import (
	"errors"
	"regexp"
	"strings"

	"github.com/thilinahansana/university-scheduler-console/internal/models"
)

// DefaultSpecialization is used for the compact Semester.ClassNumber form when no
// other default is configured.
const DefaultSpecialization = "SE"

var (
	// ErrEmptyQualifier is returned for blank qualifiers.
	ErrEmptyQualifier = errors.New("qualifier is empty")
	// ErrMalformedQualifier is returned when a qualifier does not follow Semester[.Specialization[.ClassNumber]].
	ErrMalformedQualifier = errors.New("qualifier is malformed")
)

var (
	semesterPattern       = regexp.MustCompile(`^Y\d+S\d+$`)
	semesterPrefixPattern = regexp.MustCompile(`^(Y\d+S\d+)`)
	classNumberPattern    = regexp.MustCompile(`^\d+$`)
)

// Granularity is the audience size a qualifier addresses.
type Granularity string

const (
	GranularitySemester       Granularity = "semester"
	GranularitySpecialization Granularity = "specialization"
	GranularityClass          Granularity = "class"
)

// Qualifier is a parsed audience identifier such as Y1S1, Y1S1.SE or Y1S1.SE.5.
type Qualifier struct {
	Raw            string      `json:"raw"`
	Semester       string      `json:"semester"`
	Specialization string      `json:"specialization,omitempty"`
	ClassNumber    string      `json:"class_number,omitempty"`
	Granularity    Granularity `json:"granularity"`
	// Defaulted marks the compact Semester.ClassNumber form whose specialization was
	// not present in the raw value.
	Defaulted bool `json:"defaulted,omitempty"`
}

// ParseQualifier parses raw into its components. The compact form Y1S1.5 expands to
// Y1S1.<defaultSpecialization>.5.
func ParseQualifier(raw, defaultSpecialization string) (Qualifier, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Qualifier{}, ErrEmptyQualifier
	}
	if defaultSpecialization == "" {
		defaultSpecialization = DefaultSpecialization
	}

	parts := strings.Split(trimmed, ".")
	if len(parts) > 3 || !semesterPattern.MatchString(parts[0]) {
		return Qualifier{}, ErrMalformedQualifier
	}
	for _, part := range parts[1:] {
		if strings.TrimSpace(part) == "" || part != strings.TrimSpace(part) {
			return Qualifier{}, ErrMalformedQualifier
		}
	}

	q := Qualifier{Raw: raw, Semester: parts[0]}
	switch len(parts) {
	case 1:
		q.Granularity = GranularitySemester
	case 2:
		if classNumberPattern.MatchString(parts[1]) {
			q.Specialization = defaultSpecialization
			q.ClassNumber = parts[1]
			q.Granularity = GranularityClass
			q.Defaulted = true
		} else {
			q.Specialization = parts[1]
			q.Granularity = GranularitySpecialization
		}
	case 3:
		q.Specialization = parts[1]
		q.ClassNumber = parts[2]
		q.Granularity = GranularityClass
	}
	return q, nil
}

// Canonical renders the fully expanded form used for equality checks.
func (q Qualifier) Canonical() string {
	switch q.Granularity {
	case GranularitySemester:
		return q.Semester
	case GranularitySpecialization:
		return q.Semester + "." + q.Specialization
	case GranularityClass:
		return q.Semester + "." + q.Specialization + "." + q.ClassNumber
	default:
		return ""
	}
}

// SemesterPart extracts the leading Y<n>S<n> component of a possibly malformed qualifier.
func SemesterPart(raw string) string {
	match := semesterPrefixPattern.FindStringSubmatch(strings.TrimSpace(raw))
	if len(match) < 2 {
		return ""
	}
	return match[1]
}

// NewStudentViewer builds a student viewer, deriving the specialization from the year
// group when it is not supplied. Subjects are trimmed and blanks dropped.
func NewStudentViewer(yearGroup, specialization string, subjects []string, defaultSpecialization string) models.StudentViewer {
	viewer := models.StudentViewer{
		YearGroup:      strings.TrimSpace(yearGroup),
		Specialization: strings.TrimSpace(specialization),
	}
	for _, subject := range subjects {
		if subject = strings.TrimSpace(subject); subject != "" {
			viewer.Subjects = append(viewer.Subjects, subject)
		}
	}
	if viewer.Specialization == "" {
		if q, err := ParseQualifier(viewer.YearGroup, defaultSpecialization); err == nil {
			viewer.Specialization = q.Specialization
		}
	}
	return viewer
}
