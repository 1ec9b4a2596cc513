// Package render turns a family into output documents: Graphviz DOT, a d3
// HTML page, and natively drawn SVG and PNG files.
package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/N3moAhead/pedigree/internal/family"
	"github.com/N3moAhead/pedigree/internal/layout"
	"github.com/N3moAhead/pedigree/internal/relation"
)

// ErrUnknownFormat is returned for formats without a renderer.
var ErrUnknownFormat = errors.New("unknown output format")

// Palette holds hex colours.
type Palette struct {
	Father string
	Mother string
	Spouse string
	Node   string
	Text   string
}

func DefaultPalette() Palette {
	return Palette{
		Father: "#0000ff",
		Mother: "#ffa500",
		Spouse: "#666666",
		Node:   "#ffffff",
		Text:   "#000000",
	}
}

func (p Palette) Edge(kind relation.Kind) string {
	switch kind {
	case relation.Father:
		return p.Father
	case relation.Mother:
		return p.Mother
	}
	return p.Spouse
}

type Options struct {
	Palette Palette
	Layout  layout.Options
}

func DefaultOptions() Options {
	return Options{Palette: DefaultPalette(), Layout: layout.DefaultOptions()}
}

type Renderer interface {
	Render(ctx context.Context, w io.Writer, f *family.Family, opts Options) error
}

type RendererFunc func(ctx context.Context, w io.Writer, f *family.Family, opts Options) error

func (fn RendererFunc) Render(ctx context.Context, w io.Writer, f *family.Family, opts Options) error {
	return fn(ctx, w, f, opts)
}

var renderers = map[string]Renderer{
	"dot":  RendererFunc(DOT),
	"html": RendererFunc(HTML),
	"svg":  RendererFunc(SVG),
	"png":  RendererFunc(PNG),
}

func Lookup(format string) (Renderer, error) {
	r, ok := renderers[format]
	if !ok {
		return nil, fmt.Errorf("%q: %w", format, ErrUnknownFormat)
	}
	return r, nil
}

// Formats lists the registered format names.
func Formats() []string {
	out := make([]string, 0, len(renderers))
	for name := range renderers {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Generate writes base.<format> for every format concurrently and returns
// the written paths in the order of formats. Files of failed renderers are
// removed.
func Generate(ctx context.Context, f *family.Family, base string, formats []string, opts Options, log *zap.Logger) ([]string, error) {
	if log == nil {
		log = zap.NewNop()
	}
	for _, format := range formats {
		if _, err := Lookup(format); err != nil {
			return nil, err
		}
	}

	paths := make([]string, len(formats))
	g, ctx := errgroup.WithContext(ctx)
	for i, format := range formats {
		path := base + "." + format
		paths[i] = path
		r, _ := Lookup(format)
		g.Go(func() error {
			if err := writeFile(ctx, path, r, f, opts); err != nil {
				return fmt.Errorf("failed to write %s: %w", path, err)
			}
			log.Debug("wrote output", zap.String("path", path), zap.String("format", format))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

func writeFile(ctx context.Context, path string, r Renderer, f *family.Family, opts Options) (err error) {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(path)
		}
	}()
	return r.Render(ctx, out, f, opts)
}
