package render

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/N3moAhead/pedigree/internal/family"
	"github.com/N3moAhead/pedigree/internal/layout"
	"github.com/N3moAhead/pedigree/internal/person"
	"github.com/N3moAhead/pedigree/internal/relation"
)

// preferredWeight pulls the preferred parent edges straight in dot's layout.
const preferredWeight = 10

// DOT writes the family as a Graphviz digraph.
func DOT(ctx context.Context, w io.Writer, f *family.Family, opts Options) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	pref := opts.Layout.Preference

	fmt.Fprintln(bw, "digraph family_tree {")
	for _, name := range f.Names() {
		fmt.Fprintf(bw, "  %s [label=%s, shape=\"box\"];\n", family.NodeID(name), quote(name))
	}

	parentEdges := func(parents []*person.Person, kind relation.Kind) error {
		attrs := fmt.Sprintf("color=%s", quote(opts.Palette.Edge(kind)))
		if pref != "" && pref != layout.Balanced && pref.Follows(kind) {
			attrs += fmt.Sprintf(", weight=%d", preferredWeight)
		}
		for _, parent := range parents {
			kids, err := f.Children(parent.Name)
			if err != nil {
				return err
			}
			for _, kid := range kids {
				fmt.Fprintf(bw, "  %s -> %s [%s];\n", family.NodeID(parent.Name), family.NodeID(kid.Name), attrs)
			}
		}
		return nil
	}
	if err := parentEdges(f.Fathers(), relation.Father); err != nil {
		return err
	}
	if err := parentEdges(f.Mothers(), relation.Mother); err != nil {
		return err
	}
	for _, prime := range f.Spouses() {
		for _, spouse := range f.AllSpouses(prime.Name) {
			fmt.Fprintf(bw, "  %s -> %s [style=\"dotted\", color=%s];\n",
				family.NodeID(prime.Name), family.NodeID(spouse.Name), quote(opts.Palette.Spouse))
		}
	}
	fmt.Fprintln(bw, "}")
	return bw.Flush()
}

var dotEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

func quote(s string) string {
	return `"` + dotEscaper.Replace(s) + `"`
}
