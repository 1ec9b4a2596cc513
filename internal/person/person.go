package person

import (
	"fmt"
	"strings"
)

type Gender string

const (
	Unknown Gender = ""
	Male    Gender = "male"
	Female  Gender = "female"
)

// ParseGender accepts the long form used in the yaml file as well as the
// single letters typed into the console.
func ParseGender(s string) (Gender, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "male", "m":
		return Male, nil
	case "female", "f":
		return Female, nil
	case "", "?", "unknown":
		return Unknown, nil
	}
	return Unknown, fmt.Errorf("unknown gender %q", s)
}

func (g Gender) String() string {
	if g == Unknown {
		return "unknown"
	}
	return string(g)
}

// Person is identified by Name alone. ID is only metadata carried through
// the yaml file and the rendered documents.
type Person struct {
	ID     string `yaml:"id,omitempty" json:"id,omitempty"`
	Name   string `yaml:"name" json:"name"`
	Gender Gender `yaml:"gender,omitempty" json:"gender,omitempty"`
	Notes  string `yaml:"notes,omitempty" json:"notes,omitempty"`
}

func New(name string, gender Gender) *Person {
	return &Person{Name: name, Gender: gender}
}

func (p *Person) String() string { return p.Name }

// Implement list.Item interface
func (p *Person) Title() string { return p.Name }
func (p *Person) Description() string {
	if p.Notes == "" {
		return p.Gender.String()
	}
	return p.Gender.String() + " · " + p.Notes
}
func (p *Person) FilterValue() string { return p.Name }

// IsAnonymous reports whether name is a placeholder made of question marks.
func IsAnonymous(name string) bool {
	if name == "" {
		return false
	}
	return strings.Trim(name, "?") == ""
}
