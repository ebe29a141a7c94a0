package models

import "strings"

// Strain is a named plant variety.
type Strain struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex;size:100;not null" json:"name"`
}

// Initials returns the uppercased first letters of the first two words of the
// name. A single-word name yields one letter; a name with no words falls back
// to the first character of the raw string.
func (s Strain) Initials() string {
	parts := strings.Fields(s.Name)
	switch {
	case len(parts) >= 2:
		return strings.ToUpper(firstRune(parts[0]) + firstRune(parts[1]))
	case len(parts) == 1:
		return strings.ToUpper(firstRune(parts[0]))
	case s.Name != "":
		return strings.ToUpper(firstRune(s.Name))
	}
	return ""
}

func firstRune(s string) string {
	for _, r := range s {
		return string(r)
	}
	return ""
}
