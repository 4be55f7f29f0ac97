package models

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Profile is a named viewer slot sharing one storage scope.
type Profile struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Color   string `json:"color"`
	Initial string `json:"initial"`
}

// ProfileUpdate carries the fields to change; nil fields are left alone.
type ProfileUpdate struct {
	Name    *string `json:"name,omitempty"`
	Color   *string `json:"color,omitempty"`
	Initial *string `json:"initial,omitempty"`
}

// DefaultCurrentProfileID is the active profile on a fresh install.
const DefaultCurrentProfileID = 1

// DefaultProfiles returns the four built-in profiles.
func DefaultProfiles() []Profile {
	return []Profile{
		{ID: 1, Name: "You", Color: "bg-red-500", Initial: "Y"},
		{ID: 2, Name: "Mom", Color: "bg-blue-500", Initial: "M"},
		{ID: 3, Name: "Dad", Color: "bg-green-500", Initial: "D"},
		{ID: 4, Name: "Kids", Color: "bg-yellow-500", Initial: "K"},
	}
}

// InitialOf returns the first character of name, uppercased.
func InitialOf(name string) string {
	r, _ := utf8.DecodeRuneInString(strings.TrimSpace(name))
	if r == utf8.RuneError {
		return ""
	}
	return string(unicode.ToUpper(r))
}

// Apply returns p with the non-nil fields of u applied.
func (u ProfileUpdate) Apply(p Profile) Profile {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Color != nil {
		p.Color = *u.Color
	}
	if u.Initial != nil {
		p.Initial = *u.Initial
	}
	return p
}
