package render

import (
	"context"
	"fmt"
	"io"
	"math"
	"sync"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/N3moAhead/pedigree/internal/family"
	"github.com/N3moAhead/pedigree/internal/layout"
	"github.com/N3moAhead/pedigree/internal/person"
)

const fontSize = 12

var (
	fontOnce   sync.Once
	fontSource *text.FontSource
	fontErr    error
)

func loadFont() (*text.FontSource, error) {
	fontOnce.Do(func() {
		fontSource, fontErr = text.NewFontSource(goregular.TTF)
	})
	return fontSource, fontErr
}

// PNG rasterises the same drawing as SVG.
func PNG(ctx context.Context, w io.Writer, f *family.Family, opts Options) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l, err := layout.Compute(f, opts.Layout)
	if err != nil {
		return err
	}
	source, err := loadFont()
	if err != nil {
		return fmt.Errorf("failed to load font: %w", err)
	}
	p := opts.Palette

	dc := gg.NewContext(int(math.Ceil(l.Width)), int(math.Ceil(l.Height)))
	defer dc.Close()
	dc.ClearWithColor(gg.Hex("#ffffff"))
	dc.SetFont(source.Face(fontSize))
	dc.SetLineWidth(1.5)

	for _, e := range l.Edges {
		if err := ctx.Err(); err != nil {
			return err
		}
		c, ok := edgeCurve(l, e)
		if !ok {
			continue
		}
		dc.SetHexColor(p.Edge(e.Kind))
		if c.Dashed {
			dc.SetDash(4, 4)
		}
		dc.MoveTo(c.P0.X, c.P0.Y)
		dc.CubicTo(c.P1.X, c.P1.Y, c.P2.X, c.P2.Y, c.P3.X, c.P3.Y)
		if err := dc.Stroke(); err != nil {
			return err
		}
		dc.ClearDash()
		if !c.Dashed {
			if err := arrowHead(dc, c); err != nil {
				return err
			}
		}
	}

	for _, n := range l.Nodes {
		gender := person.Unknown
		if pr := f.Person(n.Name); pr != nil {
			gender = pr.Gender
		}
		dc.DrawRoundedRectangle(n.X, n.Y, n.W, n.H, 4)
		dc.SetHexColor(p.Node)
		if err := dc.FillPreserve(); err != nil {
			return err
		}
		dc.SetHexColor(borderColor(p, gender))
		if err := dc.Stroke(); err != nil {
			return err
		}
		dc.SetHexColor(p.Text)
		dc.DrawStringAnchored(n.Name, n.CenterX(), n.CenterY(), 0.5, 0.35)
	}

	return dc.EncodePNG(w)
}

func arrowHead(dc *gg.Context, c curve) error {
	dx, dy := c.P3.X-c.P2.X, c.P3.Y-c.P2.Y
	length := math.Hypot(dx, dy)
	if length == 0 {
		return nil
	}
	ux, uy := dx/length, dy/length
	const size = 7
	bx, by := c.P3.X-ux*size, c.P3.Y-uy*size
	dc.MoveTo(c.P3.X, c.P3.Y)
	dc.LineTo(bx-uy*size/2, by+ux*size/2)
	dc.LineTo(bx+uy*size/2, by-ux*size/2)
	dc.ClosePath()
	return dc.Fill()
}
