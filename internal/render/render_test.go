package render

import (
	"bytes"
	"context"
	"encoding/xml"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	ggsvg "github.com/gogpu/gg/svg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/N3moAhead/pedigree/internal/family"
	"github.com/N3moAhead/pedigree/internal/layout"
	"github.com/N3moAhead/pedigree/internal/person"
)

func smallFamily(t *testing.T) *family.Family {
	t.Helper()
	f := family.New()
	a := person.New("a", person.Male)
	d := person.New("d", person.Female)
	require.NoError(t, f.AddChildren(a, person.New("b", person.Female), person.New("c", person.Male)))
	require.NoError(t, f.AddChild(d, person.New("b", person.Female)))
	require.NoError(t, f.AddSpouse(a, d))
	return f
}

func TestDOT(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, DOT(context.Background(), &buf, smallFamily(t), DefaultOptions()))

	want := `digraph family_tree {
  personhash0cc175b9c0f1b6a831c399e269772661 [label="a", shape="box"];
  personhash92eb5ffee6ae2fec3ad71c777531578f [label="b", shape="box"];
  personhash4a8a08f09d37b73795649038408b5f33 [label="c", shape="box"];
  personhash8277e0910d750195b448797616e091ad [label="d", shape="box"];
  personhash0cc175b9c0f1b6a831c399e269772661 -> personhash92eb5ffee6ae2fec3ad71c777531578f [color="#0000ff"];
  personhash0cc175b9c0f1b6a831c399e269772661 -> personhash4a8a08f09d37b73795649038408b5f33 [color="#0000ff"];
  personhash8277e0910d750195b448797616e091ad -> personhash92eb5ffee6ae2fec3ad71c777531578f [color="#ffa500"];
  personhash0cc175b9c0f1b6a831c399e269772661 -> personhash8277e0910d750195b448797616e091ad [style="dotted", color="#666666"];
}
`
	assert.Equal(t, want, buf.String())
}

func TestDOTPreferenceWeights(t *testing.T) {
	opts := DefaultOptions()
	opts.Layout.Preference = layout.Matrilineal
	var buf bytes.Buffer
	require.NoError(t, DOT(context.Background(), &buf, smallFamily(t), opts))

	out := buf.String()
	assert.Contains(t, out, `[color="#ffa500", weight=10];`)
	assert.NotContains(t, out, `[color="#0000ff", weight=10];`)
}

func TestDOTQuotesLabels(t *testing.T) {
	f := family.New(person.New(`Jo "JJ" \ Smith`, person.Male))
	var buf bytes.Buffer
	require.NoError(t, DOT(context.Background(), &buf, f, DefaultOptions()))
	assert.Contains(t, buf.String(), `[label="Jo \"JJ\" \\ Smith", shape="box"];`)
}

func TestSVGIsWellFormed(t *testing.T) {
	f := smallFamily(t)
	f.AddPerson(person.New("<Eve & Co>", person.Female))

	var buf bytes.Buffer
	require.NoError(t, SVG(context.Background(), &buf, f, DefaultOptions()))

	dec := xml.NewDecoder(strings.NewReader(buf.String()))
	texts := 0
	for {
		tok, err := dec.Token()
		if err != nil {
			require.ErrorContains(t, err, "EOF")
			break
		}
		if se, ok := tok.(xml.StartElement); ok && se.Name.Local == "text" {
			texts++
		}
	}
	assert.Equal(t, 5, texts)

	out := buf.String()
	assert.Contains(t, out, "&lt;Eve &amp; Co&gt;")
	assert.Contains(t, out, `id="person-`+family.NodeID("a")+`"`)
	assert.Contains(t, out, `class="spouse"`)
	assert.Contains(t, out, `stroke-dasharray="4,4"`)
	assert.Contains(t, out, `marker-end="url(#arrow-father)"`)
}

func TestSVGRasterises(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, SVG(context.Background(), &buf, smallFamily(t), DefaultOptions()))

	doc, err := ggsvg.Parse(buf.Bytes())
	require.NoError(t, err)
	assert.NotEmpty(t, doc.Elements)

	img, err := ggsvg.Render(buf.Bytes(), 120, 80)
	require.NoError(t, err)
	assert.Equal(t, 120, img.Bounds().Dx())
}

func TestPNG(t *testing.T) {
	f := smallFamily(t)
	var buf bytes.Buffer
	require.NoError(t, PNG(context.Background(), &buf, f, DefaultOptions()))

	img, err := png.Decode(&buf)
	require.NoError(t, err)

	l, err := layout.Compute(f, layout.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, int(math.Ceil(l.Width)), img.Bounds().Dx())
	assert.Equal(t, int(math.Ceil(l.Height)), img.Bounds().Dy())
}

func TestHTML(t *testing.T) {
	f := smallFamily(t)
	f.Person("a").ID = "id-a"
	var buf bytes.Buffer
	require.NoError(t, HTML(context.Background(), &buf, f, DefaultOptions()))

	out := buf.String()
	assert.Contains(t, out, `"father":{"a":["b","c"]}`)
	assert.Contains(t, out, `"mother":{"d":["b"]}`)
	assert.Contains(t, out, `"spouse":{"a":["d"]}`)
	assert.Contains(t, out, `{"name":"a","gender":"male","id":"id-a"}`)
	assert.Contains(t, out, ".link.father { stroke: #0000ff; }")
}

func TestHTMLEscapesScript(t *testing.T) {
	f := family.New(person.New("</script><b>", person.Male))
	var buf bytes.Buffer
	require.NoError(t, HTML(context.Background(), &buf, f, DefaultOptions()))
	assert.NotContains(t, buf.String(), "</script><b>")
}

func TestRenderHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for _, format := range Formats() {
		r, err := Lookup(format)
		require.NoError(t, err)
		assert.ErrorIs(t, r.Render(ctx, &bytes.Buffer{}, smallFamily(t), DefaultOptions()), context.Canceled, format)
	}
}

func TestGenerate(t *testing.T) {
	base := filepath.Join(t.TempDir(), "family_tree")
	paths, err := Generate(context.Background(), smallFamily(t), base, []string{"svg", "dot", "html", "png"}, DefaultOptions(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{base + ".svg", base + ".dot", base + ".html", base + ".png"}, paths)
	for _, p := range paths {
		info, err := os.Stat(p)
		require.NoError(t, err)
		assert.Positive(t, info.Size(), p)
	}
}

func TestGenerateUnknownFormat(t *testing.T) {
	base := filepath.Join(t.TempDir(), "family_tree")
	_, err := Generate(context.Background(), smallFamily(t), base, []string{"svg", "pdf"}, DefaultOptions(), nil)
	assert.ErrorIs(t, err, ErrUnknownFormat)
	_, statErr := os.Stat(base + ".svg")
	assert.ErrorIs(t, statErr, os.ErrNotExist)
}

func TestFormats(t *testing.T) {
	assert.Equal(t, []string{"dot", "html", "png", "svg"}, Formats())
}
