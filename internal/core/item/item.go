// Package item defines the record type served by the table, the query and
// page types used to look records up, and the backend contract.
package item

import (
	"slices"
	"strings"
)

// Type is the category of an item.
type Type string

const (
	TypeA Type = "Type A"
	TypeB Type = "Type B"
	TypeC Type = "Type C"
)

// Types lists every valid Type in display order.
var Types = []Type{TypeA, TypeB, TypeC}

// Valid reports whether t is one of the known types.
func (t Type) Valid() bool {
	return slices.Contains(Types, t)
}

// Item is a single row of table data.
type Item struct {
	ID     string `json:"id" yaml:"id"`
	Title  string `json:"title" yaml:"title"`
	Agreed bool   `json:"agreed" yaml:"agreed"`
	Type   Type   `json:"type" yaml:"type"`
}

// Matches reports whether the item title contains search, ignoring case.
// An empty search matches every item.
func (it Item) Matches(search string) bool {
	if search == "" {
		return true
	}
	return strings.Contains(strings.ToLower(it.Title), strings.ToLower(search))
}

// Patch holds a partial update. Nil fields are left unchanged.
type Patch struct {
	Title  *string `json:"title,omitempty"`
	Agreed *bool   `json:"agreed,omitempty"`
	Type   *Type   `json:"type,omitempty"`
}

// IsEmpty returns true if the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Agreed == nil && p.Type == nil
}

// Apply merges the patch over it and returns the result. The ID is never changed.
func (p Patch) Apply(it Item) Item {
	if p.Title != nil {
		it.Title = *p.Title
	}
	if p.Agreed != nil {
		it.Agreed = *p.Agreed
	}
	if p.Type != nil {
		it.Type = *p.Type
	}
	return it
}

// SetTitle returns a copy of the patch with Title set.
func (p Patch) SetTitle(title string) Patch {
	p.Title = &title
	return p
}

// SetAgreed returns a copy of the patch with Agreed set.
func (p Patch) SetAgreed(agreed bool) Patch {
	p.Agreed = &agreed
	return p
}

// SetType returns a copy of the patch with Type set.
func (p Patch) SetType(t Type) Patch {
	p.Type = &t
	return p
}
