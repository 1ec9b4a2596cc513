package render

import (
	"bufio"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/N3moAhead/pedigree/internal/family"
	"github.com/N3moAhead/pedigree/internal/layout"
	"github.com/N3moAhead/pedigree/internal/person"
	"github.com/N3moAhead/pedigree/internal/relation"
)

// SVG draws the family as a standalone SVG document.
func SVG(ctx context.Context, w io.Writer, f *family.Family, opts Options) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l, err := layout.Compute(f, opts.Layout)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	p := opts.Palette

	fmt.Fprintln(bw, `<?xml version="1.0" encoding="UTF-8"?>`)
	fmt.Fprintf(bw, `<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s" font-family="sans-serif" font-size="12">`+"\n",
		num(l.Width), num(l.Height), num(l.Width), num(l.Height))
	fmt.Fprintln(bw, "<title>family_tree</title>")

	fmt.Fprintln(bw, "<defs>")
	for _, kind := range []relation.Kind{relation.Father, relation.Mother} {
		fmt.Fprintf(bw, `  <marker id="arrow-%s" viewBox="0 0 10 10" refX="10" refY="5" markerWidth="6" markerHeight="6" orient="auto-start-reverse"><path d="M0,0L10,5L0,10z" fill="%s"/></marker>`+"\n",
			kind, p.Edge(kind))
	}
	fmt.Fprintln(bw, "</defs>")

	fmt.Fprintf(bw, `<rect width="%s" height="%s" fill="#ffffff"/>`+"\n", num(l.Width), num(l.Height))

	fmt.Fprintln(bw, `<g class="relations" fill="none" stroke-width="1.5">`)
	for _, e := range l.Edges {
		if err := ctx.Err(); err != nil {
			return err
		}
		c, ok := edgeCurve(l, e)
		if !ok {
			continue
		}
		fmt.Fprintf(bw, `  <path class="%s" d="M%s,%s C%s,%s %s,%s %s,%s" stroke="%s"`,
			e.Kind, num(c.P0.X), num(c.P0.Y), num(c.P1.X), num(c.P1.Y),
			num(c.P2.X), num(c.P2.Y), num(c.P3.X), num(c.P3.Y), p.Edge(e.Kind))
		if c.Dashed {
			fmt.Fprint(bw, ` stroke-dasharray="4,4"`)
		} else {
			fmt.Fprintf(bw, ` marker-end="url(#arrow-%s)"`, e.Kind)
		}
		fmt.Fprintln(bw, "/>")
	}
	fmt.Fprintln(bw, "</g>")

	fmt.Fprintln(bw, `<g class="people">`)
	for _, n := range l.Nodes {
		pr := f.Person(n.Name)
		gender := person.Unknown
		if pr != nil {
			gender = pr.Gender
		}
		fmt.Fprintf(bw, `  <g id="person-%s" class="person %s">`, escape(n.ID), gender.String())
		fmt.Fprintf(bw, `<title>%s</title>`, escape(n.Name))
		fmt.Fprintf(bw, `<rect x="%s" y="%s" width="%s" height="%s" rx="4" fill="%s" stroke="%s"/>`,
			num(n.X), num(n.Y), num(n.W), num(n.H), p.Node, borderColor(p, gender))
		fmt.Fprintf(bw, `<text x="%s" y="%s" text-anchor="middle" dominant-baseline="central" fill="%s">%s</text>`,
			num(n.CenterX()), num(n.CenterY()), p.Text, escape(n.Name))
		fmt.Fprintln(bw, "</g>")
	}
	fmt.Fprintln(bw, "</g>")
	fmt.Fprintln(bw, "</svg>")
	return bw.Flush()
}

func borderColor(p Palette, gender person.Gender) string {
	switch gender {
	case person.Male:
		return p.Father
	case person.Female:
		return p.Mother
	}
	return p.Text
}

func num(f float64) string {
	return fmt.Sprintf("%.1f", f)
}

func escape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
