package render

import (
	"github.com/N3moAhead/pedigree/internal/layout"
	"github.com/N3moAhead/pedigree/internal/relation"
)

type point struct{ X, Y float64 }

// curve is a cubic bezier from P0 to P3.
type curve struct {
	P0, P1, P2, P3 point
	Dashed         bool
}

// edgeCurve returns the drawn shape of e. Parent edges leave the bottom of
// the parent and enter the top of the child; spouses in one row are joined
// side to side.
func edgeCurve(l *layout.Layout, e layout.Edge) (curve, bool) {
	from, ok := l.Node(e.From)
	if !ok {
		return curve{}, false
	}
	to, ok := l.Node(e.To)
	if !ok {
		return curve{}, false
	}

	if e.Kind == relation.Spouse {
		c := curve{Dashed: true}
		if from.Generation == to.Generation {
			left, right := from, to
			if right.X < left.X {
				left, right = right, left
			}
			if !between(l, left, right) {
				c.P0 = point{left.X + left.W, left.CenterY()}
				c.P3 = point{right.X, right.CenterY()}
				c.P1, c.P2 = c.P0, c.P3
				return c, true
			}
			// Arc over the persons standing in between.
			c.P0 = point{left.CenterX(), left.Y}
			c.P3 = point{right.CenterX(), right.Y}
			c.P1 = point{c.P0.X, left.Y - left.H}
			c.P2 = point{c.P3.X, right.Y - right.H}
			return c, true
		}
		c.P0 = point{from.CenterX(), from.CenterY()}
		c.P3 = point{to.CenterX(), to.CenterY()}
		mid := (c.P0.X + c.P3.X) / 2
		c.P1 = point{mid, c.P0.Y}
		c.P2 = point{mid, c.P3.Y}
		return c, true
	}

	c := curve{
		P0: point{from.CenterX(), from.Bottom()},
		P3: point{to.CenterX(), to.Y},
	}
	midY := (c.P0.Y + c.P3.Y) / 2
	c.P1 = point{c.P0.X, midY}
	c.P2 = point{c.P3.X, midY}
	return c, true
}

func between(l *layout.Layout, left, right layout.Node) bool {
	for _, n := range l.Nodes {
		if n.Generation == left.Generation && n.X > left.X && n.X < right.X {
			return true
		}
	}
	return false
}
