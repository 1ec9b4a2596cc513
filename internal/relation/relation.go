package relation

import (
	"fmt"
)

type Kind string

const (
	Father Kind = "father"
	Mother Kind = "mother"
	Spouse Kind = "spouse"
)

// Kinds lists the relation tables in the order they are written and drawn.
var Kinds = []Kind{Father, Mother, Spouse}

func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case Father, Mother, Spouse:
		return Kind(s), nil
	}
	return "", fmt.Errorf("unknown relation type %q", s)
}

func (k Kind) IsParent() bool { return k == Father || k == Mother }

// Relation is a directed edge. Parent edges point from parent to child,
// spouse edges from the person keying the spouse table to the listed spouse.
type Relation struct {
	From string `json:"from"`
	To   string `json:"to"`
	Kind Kind   `json:"kind"`
}

func (r Relation) String() string {
	return fmt.Sprintf("%s -%s-> %s", r.From, r.Kind, r.To)
}

// Wrapper for Relation to be used in bubbles/list
type Item struct {
	Rel       Relation
	OtherName string
	Direction string // "->" or "<-"
}

// Label names the other person's role as seen from the viewed person.
func (r Item) Label() string {
	switch {
	case r.Rel.Kind == Spouse:
		return "spouse"
	case r.Direction == "<-":
		return string(r.Rel.Kind)
	default:
		return "child"
	}
}

func (r Item) Title() string {
	icon := "⚪"
	switch r.Label() {
	case "father":
		icon = "🔵"
	case "mother":
		icon = "🟠"
	case "spouse":
		icon = "💍"
	case "child":
		icon = "🟢"
	}
	return fmt.Sprintf("%s %s %s (%s)", icon, r.Direction, r.OtherName, r.Label())
}
func (r Item) Description() string { return r.Rel.String() }
func (r Item) FilterValue() string { return r.OtherName + " " + r.Label() }

// ItemFor builds the list entry for rel as seen from name.
func ItemFor(rel Relation, name string) Item {
	if rel.To == name {
		return Item{Rel: rel, OtherName: rel.From, Direction: "<-"}
	}
	return Item{Rel: rel, OtherName: rel.To, Direction: "->"}
}
