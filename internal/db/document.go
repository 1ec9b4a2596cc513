package db

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/N3moAhead/pedigree/internal/family"
	"github.com/N3moAhead/pedigree/internal/migration"
	"github.com/N3moAhead/pedigree/internal/person"
	"github.com/N3moAhead/pedigree/internal/relation"
)

// Document is the relations file in its current schema.
type Document struct {
	Version string          `yaml:"version"`
	People  []person.Person `yaml:"people"`
	Father  Table           `yaml:"father"`
	Mother  Table           `yaml:"mother"`
	Spouse  Table           `yaml:"spouse"`
}

func Blank() *Document {
	return &Document{
		Version: migration.Latest(),
		People:  []person.Person{},
		Father:  Table{},
		Mother:  Table{},
		Spouse:  Table{},
	}
}

func (d *Document) table(kind relation.Kind) Table {
	return *d.tableRef(kind)
}

func (d *Document) tableRef(kind relation.Kind) *Table {
	switch kind {
	case relation.Father:
		return &d.Father
	case relation.Mother:
		return &d.Mother
	}
	return &d.Spouse
}

// Family builds the graph described by the document. Persons without a
// gender who are listed in the father or mother table take that gender.
func (d *Document) Family() (*family.Family, error) {
	f := family.New()
	for i := range d.People {
		p := d.People[i]
		p.Name = strings.TrimSpace(p.Name)
		if p.Name == "" {
			return nil, fmt.Errorf("people[%d]: missing name", i)
		}
		g, err := person.ParseGender(string(p.Gender))
		if err != nil {
			return nil, fmt.Errorf("people[%d] %s: %w: %w", i, p.Name, err, family.ErrGender)
		}
		p.Gender = g
		if f.Has(p.Name) {
			return nil, fmt.Errorf("people[%d]: %s listed twice: %w", i, p.Name, family.ErrPersonExists)
		}
		f.AddPerson(&p)
	}

	lookup := func(kind relation.Kind, name string) (*person.Person, error) {
		p := f.Person(name)
		if p == nil {
			return nil, fmt.Errorf("%s table: %s is not listed under people: %w", kind, name, family.ErrUnknownPerson)
		}
		return p, nil
	}

	for _, kind := range relation.Kinds {
		for _, e := range d.table(kind) {
			key, err := lookup(kind, e.Name)
			if err != nil {
				return nil, err
			}
			if kind.IsParent() {
				if err := settleGender(key, kind); err != nil {
					return nil, err
				}
			}
			for _, name := range e.Names {
				other, err := lookup(kind, name)
				if err != nil {
					return nil, err
				}
				if kind.IsParent() {
					err = f.AddChild(key, other)
				} else {
					err = f.AddSpouse(key, other)
				}
				if err != nil {
					return nil, fmt.Errorf("%s table: %w", kind, err)
				}
			}
		}
	}
	return f, nil
}

func settleGender(p *person.Person, kind relation.Kind) error {
	want := person.Male
	if kind == relation.Mother {
		want = person.Female
	}
	switch p.Gender {
	case want:
		return nil
	case person.Unknown:
		p.Gender = want
		return nil
	}
	return fmt.Errorf("%s table: %s is %s, so can't be a %s: %w", kind, p.Name, p.Gender, kind, family.ErrGender)
}

// FromFamily is the inverse of Document.Family. Persons without an id get
// one, and the id is written back to the family.
func FromFamily(f *family.Family) *Document {
	d := Blank()
	for _, p := range f.Persons() {
		if p.ID == "" {
			p.ID = uuid.New().String()
		}
		d.People = append(d.People, *p)
	}
	for _, father := range f.Fathers() {
		d.Father = append(d.Father, Entry{Name: father.Name, Names: childNames(f, father.Name)})
	}
	for _, mother := range f.Mothers() {
		d.Mother = append(d.Mother, Entry{Name: mother.Name, Names: childNames(f, mother.Name)})
	}
	for _, s := range f.Spouses() {
		var names []string
		for _, other := range f.AllSpouses(s.Name) {
			names = append(names, other.Name)
		}
		d.Spouse = append(d.Spouse, Entry{Name: s.Name, Names: names})
	}
	return d
}

func childNames(f *family.Family, parent string) []string {
	kids, _ := f.Children(parent)
	out := make([]string, len(kids))
	for i, k := range kids {
		out[i] = k.Name
	}
	return out
}
