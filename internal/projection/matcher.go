package projection

import (
	"strings"

	"github.com/thilinahansana/university-scheduler-console/internal/models"
)

// Rule names the matcher rule that decided an assignment.
type Rule string

const (
	RuleFacultyTeacher          Rule = "faculty_teacher"
	RuleSubjectGate             Rule = "subject_gate"
	RuleExactMatch              Rule = "exact_match"
	RuleSiblingClassExclusion   Rule = "sibling_class_exclusion"
	RuleSemesterBroadcast       Rule = "semester_broadcast"
	RuleSpecializationBroadcast Rule = "specialization_broadcast"
	RuleSharedSession           Rule = "shared_session"
	RuleNoMatch                 Rule = "no_match"
	RuleUnknownViewer           Rule = "unknown_viewer"
)

// Decision is the outcome of matching one assignment against a viewer.
type Decision struct {
	Matched bool `json:"matched"`
	Rule    Rule `json:"rule"`
}

// Matcher decides which assignments belong to a viewer.
type Matcher struct {
	// DefaultSpecialization expands compact Semester.ClassNumber qualifiers.
	DefaultSpecialization string
}

// NewMatcher builds a matcher with the given compact-form specialization.
func NewMatcher(defaultSpecialization string) Matcher {
	if strings.TrimSpace(defaultSpecialization) == "" {
		defaultSpecialization = DefaultSpecialization
	}
	return Matcher{DefaultSpecialization: strings.TrimSpace(defaultSpecialization)}
}

// Matches reports whether the assignment belongs to the viewer.
func (m Matcher) Matches(a models.Assignment, viewer models.Viewer) bool {
	return m.Explain(a, viewer).Matched
}

// Explain evaluates the matching rules in order and reports which one decided.
func (m Matcher) Explain(a models.Assignment, viewer models.Viewer) Decision {
	switch v := viewer.(type) {
	case models.FacultyViewer:
		return m.matchFaculty(a, v)
	case *models.FacultyViewer:
		if v == nil {
			return Decision{Rule: RuleUnknownViewer}
		}
		return m.matchFaculty(a, *v)
	case models.StudentViewer:
		return m.matchStudent(a, v)
	case *models.StudentViewer:
		if v == nil {
			return Decision{Rule: RuleUnknownViewer}
		}
		return m.matchStudent(a, *v)
	default:
		return Decision{Rule: RuleUnknownViewer}
	}
}

// Filter returns the assignments matching the viewer in input order.
func (m Matcher) Filter(assignments []models.Assignment, viewer models.Viewer) []models.Assignment {
	out := make([]models.Assignment, 0, len(assignments))
	for _, a := range assignments {
		if m.Matches(a, viewer) {
			out = append(out, a)
		}
	}
	return out
}

func (m Matcher) matchFaculty(a models.Assignment, v models.FacultyViewer) Decision {
	if v.ID != "" && a.Teacher.ID == v.ID {
		return Decision{Matched: true, Rule: RuleFacultyTeacher}
	}
	return Decision{Rule: RuleNoMatch}
}

func (m Matcher) matchStudent(a models.Assignment, v models.StudentViewer) Decision {
	if !v.EnrolledIn(a.Subject) {
		return Decision{Rule: RuleSubjectGate}
	}

	defaultSpec := m.defaultSpecialization()
	own, ownErr := ParseQualifier(v.YearGroup, defaultSpec)
	semester := SemesterPart(v.YearGroup)
	specialization := strings.TrimSpace(v.Specialization)
	classNumber := ""
	if ownErr == nil {
		semester = own.Semester
		classNumber = own.ClassNumber
		if specialization == "" {
			specialization = own.Specialization
		}
	}

	entries := parseSubgroups(a.Subgroups, defaultSpec)

	if a.Subgroups.Contains(v.YearGroup) {
		return Decision{Matched: true, Rule: RuleExactMatch}
	}
	if ownErr == nil && own.Granularity == GranularityClass {
		for _, e := range entries {
			if e.Granularity == GranularityClass && e.Canonical() == own.Canonical() {
				return Decision{Matched: true, Rule: RuleExactMatch}
			}
		}
	}

	if semester == "" {
		return Decision{Rule: RuleNoMatch}
	}

	if excludedAsSibling(entries, semester, specialization, classNumber) {
		return Decision{Rule: RuleSiblingClassExclusion}
	}

	for _, e := range entries {
		if e.Granularity == GranularitySemester && e.Semester == semester {
			return Decision{Matched: true, Rule: RuleSemesterBroadcast}
		}
	}

	if specialization != "" && containsSpecialization(entries, semester, specialization) {
		return Decision{Matched: true, Rule: RuleSpecializationBroadcast}
	}

	if isSharedSession(a.ActivityType) && specialization != "" {
		if containsSpecialization(entries, semester, specialization) {
			return Decision{Matched: true, Rule: RuleSharedSession}
		}
		if classNumber != "" {
			target := semester + "." + specialization + "." + classNumber
			for _, e := range entries {
				if e.Granularity == GranularityClass && e.Canonical() == target {
					return Decision{Matched: true, Rule: RuleSharedSession}
				}
			}
		}
	}

	return Decision{Rule: RuleNoMatch}
}

func (m Matcher) defaultSpecialization() string {
	if m.DefaultSpecialization == "" {
		return DefaultSpecialization
	}
	return m.DefaultSpecialization
}

// parseSubgroups drops entries that do not parse; malformed audiences never match.
func parseSubgroups(subgroups models.Subgroups, defaultSpec string) []Qualifier {
	out := make([]Qualifier, 0, len(subgroups))
	for _, raw := range subgroups {
		q, err := ParseQualifier(raw, defaultSpec)
		if err != nil {
			continue
		}
		out = append(out, q)
	}
	return out
}

// excludedAsSibling reports whether the only entries addressing the viewer's semester and
// specialization target another class. A specialization-wide entry or a viewer without a
// class number never excludes.
func excludedAsSibling(entries []Qualifier, semester, specialization, classNumber string) bool {
	if specialization == "" || classNumber == "" {
		return false
	}
	if containsSpecialization(entries, semester, specialization) {
		return false
	}
	sibling := false
	for _, e := range entries {
		if e.Granularity != GranularityClass || e.Semester != semester || e.Specialization != specialization {
			continue
		}
		if e.ClassNumber == classNumber {
			return false
		}
		sibling = true
	}
	return sibling
}

func containsSpecialization(entries []Qualifier, semester, specialization string) bool {
	for _, e := range entries {
		if e.Granularity == GranularitySpecialization && e.Semester == semester && e.Specialization == specialization {
			return true
		}
	}
	return false
}

func isSharedSession(activityType string) bool {
	return strings.Contains(activityType, "Lecture") || strings.Contains(activityType, "Tutorial")
}
