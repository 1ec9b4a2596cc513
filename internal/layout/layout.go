// Package layout places the persons of a family on a plane so that the
// native renderers can draw them without an external graph layout tool.
//
// Generations run top to bottom: persons without parents sit in the first
// row, every child one row below its deepest parent, and spouses share a
// row whenever that is possible. Inside a row persons start in alphabetical
// order and are then pulled under their parents. The Preference decides
// which parents pull: the father only, the mother only, or both. Keeping a
// single line straight is what makes a patrilineal or matrilineal tree come
// out without crossings along that line.
package layout

import (
	"fmt"
	"sort"
	"unicode/utf8"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/N3moAhead/pedigree/internal/family"
	"github.com/N3moAhead/pedigree/internal/relation"
)

type Preference string

const (
	Balanced    Preference = "balanced"
	Patrilineal Preference = "patrilineal"
	Matrilineal Preference = "matrilineal"
)

func ParsePreference(s string) (Preference, error) {
	switch p := Preference(s); p {
	case Balanced, Patrilineal, Matrilineal:
		return p, nil
	case "":
		return Balanced, nil
	}
	return "", fmt.Errorf("unknown layout preference %q", s)
}

// Follows reports whether parent edges of kind pull children into place.
func (p Preference) Follows(kind relation.Kind) bool {
	switch p {
	case Patrilineal:
		return kind == relation.Father
	case Matrilineal:
		return kind == relation.Mother
	}
	return kind.IsParent()
}

type Options struct {
	Preference  Preference
	CharWidth   float64
	Padding     float64
	MinBoxWidth float64
	BoxHeight   float64
	HGap        float64
	VGap        float64
	Margin      float64
	Sweeps      int
}

func DefaultOptions() Options {
	return Options{
		Preference:  Balanced,
		CharWidth:   7.5,
		Padding:     10,
		MinBoxWidth: 40,
		BoxHeight:   30,
		HGap:        20,
		VGap:        60,
		Margin:      20,
		Sweeps:      4,
	}
}

type Node struct {
	Name       string
	ID         string
	Generation int
	X, Y       float64 // top left corner
	W, H       float64
}

func (n Node) CenterX() float64 { return n.X + n.W/2 }
func (n Node) CenterY() float64 { return n.Y + n.H/2 }
func (n Node) Bottom() float64  { return n.Y + n.H }

type Edge struct {
	From, To string
	Kind     relation.Kind
}

type Layout struct {
	Nodes         []Node
	Edges         []Edge
	Width, Height float64
	Generations   int

	index map[string]int
}

// Node returns the placed node called name.
func (l *Layout) Node(name string) (Node, bool) {
	i, ok := l.index[name]
	if !ok {
		return Node{}, false
	}
	return l.Nodes[i], true
}

// Compute lays out f. The result depends only on f and opts.
func Compute(f *family.Family, opts Options) (*Layout, error) {
	if opts.Preference == "" {
		opts.Preference = Balanced
	}
	gens, err := generations(f)
	if err != nil {
		return nil, err
	}
	rows := order(f, gens, opts)

	l := &Layout{index: make(map[string]int, f.Len())}
	rowWidths := make([]float64, len(rows))
	widths := make(map[string]float64, f.Len())
	maxWidth := 0.0
	for g, row := range rows {
		for i, name := range row {
			w := float64(utf8.RuneCountInString(name))*opts.CharWidth + 2*opts.Padding
			if w < opts.MinBoxWidth {
				w = opts.MinBoxWidth
			}
			widths[name] = w
			rowWidths[g] += w
			if i > 0 {
				rowWidths[g] += opts.HGap
			}
		}
		if rowWidths[g] > maxWidth {
			maxWidth = rowWidths[g]
		}
	}

	for g, row := range rows {
		x := opts.Margin + (maxWidth-rowWidths[g])/2
		y := opts.Margin + float64(g)*(opts.BoxHeight+opts.VGap)
		for _, name := range row {
			id := family.NodeID(name)
			if p := f.Person(name); p != nil && p.ID != "" {
				id = p.ID
			}
			l.index[name] = len(l.Nodes)
			l.Nodes = append(l.Nodes, Node{
				Name:       name,
				ID:         id,
				Generation: g,
				X:          x,
				Y:          y,
				W:          widths[name],
				H:          opts.BoxHeight,
			})
			x += widths[name] + opts.HGap
		}
	}

	for _, rel := range f.Relations() {
		l.Edges = append(l.Edges, Edge{From: rel.From, To: rel.To, Kind: rel.Kind})
	}

	l.Generations = len(rows)
	l.Width = maxWidth + 2*opts.Margin
	l.Height = 2 * opts.Margin
	if len(rows) > 0 {
		l.Height += float64(len(rows))*opts.BoxHeight + float64(len(rows)-1)*opts.VGap
	}
	return l, nil
}

// generations assigns every person a row. Spouse rows are aligned only when
// the alignment settles; marriages across generations of the same line would
// otherwise push rows down forever.
func generations(f *family.Family) (map[string]int, error) {
	rels := f.Relations()
	n := f.Len()

	relax := func(gen map[string]int, withSpouses bool) bool {
		for round := 0; round <= n+1; round++ {
			changed := false
			for _, r := range rels {
				switch {
				case r.Kind.IsParent():
					if gen[r.To] < gen[r.From]+1 {
						gen[r.To] = gen[r.From] + 1
						changed = true
					}
				case withSpouses:
					if gen[r.To] < gen[r.From] {
						gen[r.To] = gen[r.From]
						changed = true
					} else if gen[r.From] < gen[r.To] {
						gen[r.From] = gen[r.To]
						changed = true
					}
				}
			}
			if !changed {
				return true
			}
		}
		return false
	}

	fresh := func() map[string]int {
		gen := make(map[string]int, n)
		for _, name := range f.Names() {
			gen[name] = 0
		}
		return gen
	}

	gen := fresh()
	if relax(gen, true) {
		return gen, nil
	}
	gen = fresh()
	if relax(gen, false) {
		return gen, nil
	}
	return nil, fmt.Errorf("parent relations form a cycle: %w", family.ErrGenealogical)
}

func order(f *family.Family, gens map[string]int, opts Options) [][]string {
	depth := 0
	for _, g := range gens {
		if g+1 > depth {
			depth = g + 1
		}
	}
	rows := make([][]string, depth)
	names := f.Names()
	collate.New(language.Und).SortStrings(names)
	for _, name := range names {
		rows[gens[name]] = append(rows[gens[name]], name)
	}

	pos := make(map[string]float64, len(names))
	index := func() {
		for _, row := range rows {
			for i, name := range row {
				pos[name] = (float64(i) + 0.5) / float64(len(row))
			}
		}
	}
	index()

	parents := make(map[string][]string)
	children := make(map[string][]string)
	for _, r := range f.Relations() {
		if r.Kind.IsParent() && opts.Preference.Follows(r.Kind) {
			parents[r.To] = append(parents[r.To], r.From)
			children[r.From] = append(children[r.From], r.To)
		}
	}

	sortRow := func(g int, by map[string][]string) {
		row := rows[g]
		keys := make(map[string]float64, len(row))
		for _, name := range row {
			keys[name] = pos[name]
			if len(by[name]) == 0 {
				continue
			}
			sum := 0.0
			for _, other := range by[name] {
				sum += pos[other]
			}
			keys[name] = sum / float64(len(by[name]))
		}
		sort.SliceStable(row, func(i, j int) bool { return keys[row[i]] < keys[row[j]] })
		rows[g] = groupSpouses(f, row)
		index()
	}

	for sweep := 0; sweep < opts.Sweeps; sweep++ {
		for g := depth - 2; g >= 0; g-- {
			sortRow(g, children)
		}
		for g := 1; g < depth; g++ {
			sortRow(g, parents)
		}
	}
	for g := range rows {
		rows[g] = groupSpouses(f, rows[g])
	}
	return rows
}

// groupSpouses moves spouses sharing a row next to each other, keeping the
// position of whoever comes first.
func groupSpouses(f *family.Family, row []string) []string {
	inRow := make(map[string]bool, len(row))
	for _, name := range row {
		inRow[name] = true
	}
	placed := make(map[string]bool, len(row))
	out := make([]string, 0, len(row))
	var place func(name string)
	place = func(name string) {
		if placed[name] {
			return
		}
		placed[name] = true
		out = append(out, name)
		for _, s := range f.Partners(name) {
			if inRow[s.Name] {
				place(s.Name)
			}
		}
	}
	for _, name := range row {
		place(name)
	}
	return out
}
