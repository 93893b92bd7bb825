package model

// Package model contains domain models/data structures shared across layers.
// Keep it free of persistence and transport concerns.

// ClassificationLevel is one code/title pair of a three-level classification.
type ClassificationLevel struct {
	Code  string `json:"code"`
	Title string `json:"title"`
}

// Classification tags a document at up to three taxonomy levels:
// group, subgroup and section.
type Classification struct {
	Group    ClassificationLevel `json:"group"`
	Subgroup ClassificationLevel `json:"subgroup"`
	Section  ClassificationLevel `json:"section"`
}

// IsZero reports whether no level is set.
func (c Classification) IsZero() bool {
	return c.Group.Code == "" && c.Subgroup.Code == "" && c.Section.Code == ""
}

// Code returns the most specific code that is set.
func (c Classification) Code() string {
	switch {
	case c.Section.Code != "":
		return c.Section.Code
	case c.Subgroup.Code != "":
		return c.Subgroup.Code
	default:
		return c.Group.Code
	}
}

// Title returns the title paired with Code.
func (c Classification) Title() string {
	switch {
	case c.Section.Code != "":
		return c.Section.Title
	case c.Subgroup.Code != "":
		return c.Subgroup.Title
	default:
		return c.Group.Title
	}
}
