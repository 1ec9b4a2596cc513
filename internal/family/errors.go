package family

import "errors"

var (
	// ErrGender is returned when a parent's gender does not fit the relation.
	ErrGender = errors.New("gender mismatch")
	// ErrGenealogical is returned for relations that cannot exist in a family tree.
	ErrGenealogical = errors.New("impossible relation")
	// ErrPersonExists is returned when a relation or person is added twice.
	ErrPersonExists = errors.New("already present")
	// ErrUnknownPerson is returned when an operation names someone not in the family.
	ErrUnknownPerson = errors.New("unknown person")
	// ErrUnknownRelation is returned when removing a relation the family does not hold.
	ErrUnknownRelation = errors.New("no such relation")
)
