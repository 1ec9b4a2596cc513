// Package family keeps a family as a directed multigraph of persons.
//
// Edges carry a relation kind: father and mother edges point from the parent
// to the child, spouse edges from one spouse to the other. Persons are unique
// by name and keep their insertion order, so everything derived from a
// Family (files, drawings) is deterministic.
package family

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/N3moAhead/pedigree/internal/person"
	"github.com/N3moAhead/pedigree/internal/relation"
)

type Family struct {
	persons []*person.Person
	index   map[string]*person.Person
	edges   []relation.Relation
}

func New(persons ...*person.Person) *Family {
	f := &Family{index: make(map[string]*person.Person)}
	for _, p := range persons {
		f.AddPerson(p)
	}
	return f
}

// AddPerson stores p unless someone with the same name is already present.
// It returns the stored person.
func (f *Family) AddPerson(p *person.Person) *person.Person {
	if cur, ok := f.index[p.Name]; ok {
		return cur
	}
	f.persons = append(f.persons, p)
	f.index[p.Name] = p
	return p
}

func (f *Family) Has(name string) bool {
	_, ok := f.index[name]
	return ok
}

// Person returns the stored person called name, or nil.
func (f *Family) Person(name string) *person.Person {
	return f.index[name]
}

func (f *Family) Persons() []*person.Person {
	out := make([]*person.Person, len(f.persons))
	copy(out, f.persons)
	return out
}

func (f *Family) Names() []string {
	out := make([]string, len(f.persons))
	for i, p := range f.persons {
		out[i] = p.Name
	}
	return out
}

func (f *Family) Len() int { return len(f.persons) }

// Relations returns every edge in insertion order.
func (f *Family) Relations() []relation.Relation {
	out := make([]relation.Relation, len(f.edges))
	copy(out, f.edges)
	return out
}

// RelationsOf returns the edges touching name.
func (f *Family) RelationsOf(name string) []relation.Relation {
	var out []relation.Relation
	for _, e := range f.edges {
		if e.From == name || e.To == name {
			out = append(out, e)
		}
	}
	return out
}

func (f *Family) hasEdge(rel relation.Relation) bool {
	for _, e := range f.edges {
		if e == rel {
			return true
		}
	}
	return false
}

func parentKind(g person.Gender) (relation.Kind, bool) {
	switch g {
	case person.Male:
		return relation.Father, true
	case person.Female:
		return relation.Mother, true
	}
	return "", false
}

// AddChild adds the parent edge from parent to child. The parent's gender
// decides whether the edge is a father or a mother edge.
func (f *Family) AddChild(parent, child *person.Person) error {
	if cur := f.index[parent.Name]; cur != nil {
		parent = cur
	}
	kind, ok := parentKind(parent.Gender)
	if !ok {
		return fmt.Errorf("without a gender on %s, can't tell whether to add as a mother or father: %w",
			parent.Name, ErrGender)
	}
	if parent.Name == child.Name {
		return fmt.Errorf("%s can't be their own %s: %w", child.Name, kind, ErrGenealogical)
	}
	rel := relation.Relation{From: parent.Name, To: child.Name, Kind: kind}
	if f.hasEdge(rel) {
		return fmt.Errorf("%s already a child of %s: %w", child.Name, parent.Name, ErrPersonExists)
	}
	if cur := f.parent(child.Name, kind); cur != nil {
		return fmt.Errorf("%s already has a %s (%s): %w", child.Name, kind, cur.Name, ErrGenealogical)
	}
	if f.isDescendant(parent.Name, child.Name) {
		return fmt.Errorf("%s descends from %s: %w", parent.Name, child.Name, ErrGenealogical)
	}

	f.AddPerson(parent)
	f.AddPerson(child)
	f.edges = append(f.edges, rel)
	return nil
}

func (f *Family) AddChildren(parent *person.Person, children ...*person.Person) error {
	for _, child := range children {
		if err := f.AddChild(parent, child); err != nil {
			return err
		}
	}
	return nil
}

// AddMother records mother as child's mother.
func (f *Family) AddMother(child, mother *person.Person) error {
	return f.addParent(child, mother, relation.Mother)
}

// AddFather records father as child's father.
func (f *Family) AddFather(child, father *person.Person) error {
	return f.addParent(child, father, relation.Father)
}

func (f *Family) addParent(child, parent *person.Person, kind relation.Kind) error {
	if cur := f.parent(child.Name, kind); cur != nil {
		return fmt.Errorf("%s already has a %s (%s): %w", child.Name, kind, cur.Name, ErrGenealogical)
	}
	if child.Name == parent.Name {
		return fmt.Errorf("%s can't be their own %s: %w", child.Name, kind, ErrGenealogical)
	}
	if cur := f.index[parent.Name]; cur != nil {
		parent = cur
	}
	want := person.Male
	if kind == relation.Mother {
		want = person.Female
	}
	if parent.Gender != want {
		return fmt.Errorf("%s isn't %s, so can't be a %s: %w", parent.Name, want, kind, ErrGender)
	}
	return f.AddChild(parent, child)
}

func (f *Family) AddSpouse(p, spouse *person.Person) error {
	if p.Name == spouse.Name {
		return fmt.Errorf("%s can't marry themselves: %w", p.Name, ErrGenealogical)
	}
	rel := relation.Relation{From: p.Name, To: spouse.Name, Kind: relation.Spouse}
	back := relation.Relation{From: spouse.Name, To: p.Name, Kind: relation.Spouse}
	if f.hasEdge(rel) || f.hasEdge(back) {
		return fmt.Errorf("%s already a spouse of %s: %w", spouse.Name, p.Name, ErrPersonExists)
	}
	f.AddPerson(p)
	f.AddPerson(spouse)
	f.edges = append(f.edges, rel)
	return nil
}

func (f *Family) AddSpouses(p *person.Person, spouses ...*person.Person) error {
	for _, s := range spouses {
		if err := f.AddSpouse(p, s); err != nil {
			return err
		}
	}
	return nil
}

// AddFullSibling gives sibling the same father and mother as the person
// called name. Parents that are not known yet are created as anonymous
// placeholders. On error the family is left as it was.
func (f *Family) AddFullSibling(name string, sibling *person.Person) (err error) {
	saved := f.snapshot()
	defer func() {
		if err != nil {
			f.restore(saved)
		}
	}()

	if !f.Has(name) {
		return fmt.Errorf("%s isn't in the family yet: %w", name, ErrUnknownPerson)
	}
	if name == sibling.Name {
		return fmt.Errorf("%s can't be their own sibling: %w", name, ErrGenealogical)
	}
	for _, kind := range []relation.Kind{relation.Father, relation.Mother} {
		theirs := f.parent(sibling.Name, kind)
		if theirs == nil {
			continue
		}
		ours := f.parent(name, kind)
		if ours == nil || ours.Name != theirs.Name {
			return fmt.Errorf("%s already has a different %s (%s): %w",
				sibling.Name, kind, theirs.Name, ErrGenealogical)
		}
	}

	f.AddPerson(sibling)
	if f.Father(name) == nil {
		if err := f.AddFather(f.index[name], person.New(f.NewAnonymousName(), person.Male)); err != nil {
			return err
		}
	}
	if f.Mother(name) == nil {
		if err := f.AddMother(f.index[name], person.New(f.NewAnonymousName(), person.Female)); err != nil {
			return err
		}
	}
	for _, parent := range []*person.Person{f.Father(name), f.Mother(name)} {
		if f.hasEdge(relation.Relation{From: parent.Name, To: sibling.Name, Kind: kindOf(parent)}) {
			continue
		}
		if err := f.AddChild(parent, sibling); err != nil {
			return err
		}
	}
	return nil
}

type snapshot struct {
	persons []*person.Person
	edges   []relation.Relation
}

func (f *Family) snapshot() snapshot {
	return snapshot{persons: f.Persons(), edges: f.Relations()}
}

func (f *Family) restore(s snapshot) {
	f.persons = s.persons
	f.edges = s.edges
	f.index = make(map[string]*person.Person, len(s.persons))
	for _, p := range s.persons {
		f.index[p.Name] = p
	}
}

func kindOf(parent *person.Person) relation.Kind {
	k, _ := parentKind(parent.Gender)
	return k
}

// NewAnonymousName returns a string of question marks one longer than the
// longest anonymous name in the family.
func (f *Family) NewAnonymousName() string {
	longest := 0
	for _, p := range f.persons {
		if person.IsAnonymous(p.Name) && len(p.Name) > longest {
			longest = len(p.Name)
		}
	}
	return strings.Repeat("?", longest+1)
}

// Children returns the children of parent in the order they were added.
func (f *Family) Children(parent string) ([]*person.Person, error) {
	if !f.Has(parent) {
		return nil, fmt.Errorf("%s isn't in the family yet: %w", parent, ErrUnknownPerson)
	}
	var out []*person.Person
	for _, e := range f.edges {
		if e.Kind.IsParent() && e.From == parent {
			out = append(out, f.index[e.To])
		}
	}
	return out, nil
}

func (f *Family) Fathers() []*person.Person { return f.sources(relation.Father) }
func (f *Family) Mothers() []*person.Person { return f.sources(relation.Mother) }
func (f *Family) Spouses() []*person.Person { return f.sources(relation.Spouse) }

func (f *Family) sources(kind relation.Kind) []*person.Person {
	seen := make(map[string]bool)
	var out []*person.Person
	for _, e := range f.edges {
		if e.Kind == kind && !seen[e.From] {
			seen[e.From] = true
			out = append(out, f.index[e.From])
		}
	}
	return out
}

func (f *Family) Father(name string) *person.Person { return f.parent(name, relation.Father) }
func (f *Family) Mother(name string) *person.Person { return f.parent(name, relation.Mother) }

func (f *Family) parent(name string, kind relation.Kind) *person.Person {
	for _, e := range f.edges {
		if e.Kind == kind && e.To == name {
			return f.index[e.From]
		}
	}
	return nil
}

// AllSpouses returns the spouses listed under name.
func (f *Family) AllSpouses(name string) []*person.Person {
	var out []*person.Person
	for _, e := range f.edges {
		if e.Kind == relation.Spouse && e.From == name {
			out = append(out, f.index[e.To])
		}
	}
	return out
}

// Partners returns every spouse of name regardless of edge direction.
func (f *Family) Partners(name string) []*person.Person {
	var out []*person.Person
	for _, e := range f.edges {
		if e.Kind != relation.Spouse {
			continue
		}
		switch name {
		case e.From:
			out = append(out, f.index[e.To])
		case e.To:
			out = append(out, f.index[e.From])
		}
	}
	return out
}

// isDescendant reports whether name descends from ancestor.
func (f *Family) isDescendant(name, ancestor string) bool {
	seen := map[string]bool{}
	stack := []string{ancestor}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[cur] {
			continue
		}
		seen[cur] = true
		for _, e := range f.edges {
			if e.Kind.IsParent() && e.From == cur {
				if e.To == name {
					return true
				}
				stack = append(stack, e.To)
			}
		}
	}
	return false
}

// RemovePerson drops name and every edge touching them.
func (f *Family) RemovePerson(name string) error {
	if !f.Has(name) {
		return fmt.Errorf("%s isn't in the family: %w", name, ErrUnknownPerson)
	}
	delete(f.index, name)
	persons := f.persons[:0]
	for _, p := range f.persons {
		if p.Name != name {
			persons = append(persons, p)
		}
	}
	f.persons = persons
	edges := f.edges[:0]
	for _, e := range f.edges {
		if e.From != name && e.To != name {
			edges = append(edges, e)
		}
	}
	f.edges = edges
	return nil
}

// RemoveRelation drops one edge equal to rel.
func (f *Family) RemoveRelation(rel relation.Relation) error {
	for i, e := range f.edges {
		if e == rel {
			f.edges = append(f.edges[:i], f.edges[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%s: %w", rel, ErrUnknownRelation)
}

// Equal reports whether both families hold the same names and the same
// multiset of edges.
func (f *Family) Equal(other *Family) bool {
	if f.Len() != other.Len() || len(f.edges) != len(other.edges) {
		return false
	}
	for name := range f.index {
		if !other.Has(name) {
			return false
		}
	}
	counts := make(map[relation.Relation]int, len(f.edges))
	for _, e := range f.edges {
		counts[e]++
	}
	for _, e := range other.edges {
		counts[e]--
		if counts[e] < 0 {
			return false
		}
	}
	return true
}

// NodeID gives a stable identifier for name that is safe to use in DOT.
func NodeID(name string) string {
	sum := md5.Sum([]byte(name))
	return "personhash" + hex.EncodeToString(sum[:])
}
