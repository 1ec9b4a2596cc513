package render

import (
	"context"
	"embed"
	"encoding/json"
	"io"
	"text/template"

	"github.com/N3moAhead/pedigree/internal/family"
	"github.com/N3moAhead/pedigree/internal/person"
	"github.com/N3moAhead/pedigree/internal/relation"
)

//go:embed templates/family.html.tmpl
var templates embed.FS

var pageTemplate = template.Must(template.ParseFS(templates, "templates/family.html.tmpl"))

type htmlPerson struct {
	Name   string        `json:"name"`
	Gender person.Gender `json:"gender,omitempty"`
	ID     string        `json:"id,omitempty"`
}

type htmlFamily struct {
	People []htmlPerson         `json:"people"`
	Father map[string][]string `json:"father"`
	Mother map[string][]string `json:"mother"`
	Spouse map[string][]string `json:"spouse"`
}

func familyJSON(f *family.Family) ([]byte, error) {
	data := htmlFamily{
		People: []htmlPerson{},
		Father: map[string][]string{},
		Mother: map[string][]string{},
		Spouse: map[string][]string{},
	}
	for _, p := range f.Persons() {
		data.People = append(data.People, htmlPerson{Name: p.Name, Gender: p.Gender, ID: p.ID})
	}
	for _, rel := range f.Relations() {
		var table map[string][]string
		switch rel.Kind {
		case relation.Father:
			table = data.Father
		case relation.Mother:
			table = data.Mother
		default:
			table = data.Spouse
		}
		table[rel.From] = append(table[rel.From], rel.To)
	}
	// json.Marshal escapes <, > and &, so the result is safe inside <script>.
	return json.Marshal(data)
}

// HTML writes a standalone page drawing the family as a d3 force layout.
func HTML(ctx context.Context, w io.Writer, f *family.Family, opts Options) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := familyJSON(f)
	if err != nil {
		return err
	}
	return pageTemplate.Execute(w, struct {
		Title   string
		Family  string
		Palette Palette
	}{
		Title:   "family_tree",
		Family:  string(data),
		Palette: opts.Palette,
	})
}
