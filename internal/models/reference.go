package models

import "strings"

// Subject is a module record keyed by its code.
type Subject struct {
	Code     string `json:"code" db:"code"`
	Name     string `json:"name" db:"name"`
	LongName string `json:"long_name" db:"long_name"`
}

// Teacher is a faculty record keyed by id.
type Teacher struct {
	ID        string `json:"id" db:"id"`
	FirstName string `json:"first_name" db:"first_name"`
	LastName  string `json:"last_name" db:"last_name"`
	Position  string `json:"position" db:"position"`
}

// FullName joins first and last names.
func (t Teacher) FullName() string {
	return strings.TrimSpace(t.FirstName + " " + t.LastName)
}

// Space is a room record keyed by name.
type Space struct {
	Name     string `json:"name" db:"name"`
	LongName string `json:"long_name" db:"long_name"`
	Code     string `json:"code" db:"code"`
	Capacity int    `json:"capacity" db:"capacity"`
}

// ReferenceTables holds the lookup tables used to resolve display fields.
type ReferenceTables struct {
	Subjects []Subject `json:"subjects"`
	Teachers []Teacher `json:"teachers"`
	Spaces   []Space   `json:"spaces"`
}
