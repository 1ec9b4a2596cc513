package db

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/N3moAhead/pedigree/internal/family"
	"github.com/N3moAhead/pedigree/internal/migration"
	"github.com/N3moAhead/pedigree/internal/person"
)

func TestLoadLegacyFile(t *testing.T) {
	doc, res, err := Load("testdata/legacy.yaml", nil)
	require.NoError(t, err)
	assert.True(t, res.Changed())
	assert.Equal(t, migration.Legacy, res.From)
	assert.Equal(t, migration.Latest(), doc.Version)

	f, err := doc.Family()
	require.NoError(t, err)
	assert.Equal(t, []string{"Bob", "Alice", "Carol", "Dave"}, f.Names())
	assert.Equal(t, "Bob", f.Father("Dave").Name)
	assert.Equal(t, "Alice", f.Mother("Carol").Name)
	require.Len(t, f.AllSpouses("Bob"), 1)
	for _, p := range f.Persons() {
		assert.NotEmpty(t, p.ID, p.Name)
	}
}

func TestLoadMissingTables(t *testing.T) {
	doc, _, err := Load("testdata/missing_tables.yaml", nil)
	require.NoError(t, err)
	assert.Empty(t, doc.Mother)
	assert.Empty(t, doc.Spouse)

	f, err := doc.Family()
	require.NoError(t, err)
	assert.Equal(t, "Bob", f.Father("Carol").Name)
	assert.Nil(t, f.Mother("Carol"))
}

func TestLoadMissingFile(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), "couldn't open")
}

func TestDecodeCurrentKeepsOrder(t *testing.T) {
	content := []byte(`version: 2.0.0
people:
  - name: Zed
    gender: male
    id: z1
  - name: Amy
    gender: female
  - name: Kid
father:
  Zed: [Kid]
mother:
  Amy: [Kid]
spouse: ~
`)
	doc, res, err := Decode(content, nil)
	require.NoError(t, err)
	assert.False(t, res.Changed())
	assert.Equal(t, "z1", doc.People[0].ID)
	assert.Empty(t, doc.Spouse)

	f, err := doc.Family()
	require.NoError(t, err)
	assert.Equal(t, []string{"Zed", "Amy", "Kid"}, f.Names())
}

func TestDecodeLegacyKeepsTableOrder(t *testing.T) {
	content := []byte(`---
people:
  - Zed: male
  - Amy: female
  - K1: male
  - K2: female
---
father:
  Zed: [K2, K1]
---
mother:
  Amy: [K2]
---
spouse:
  Zed: [Amy]
`)
	doc, res, err := Decode(content, nil)
	require.NoError(t, err)
	assert.True(t, res.Changed())
	assert.Equal(t, Table{{Name: "Zed", Names: []string{"K2", "K1"}}}, doc.Father)

	content = []byte(`---
people:
  - Zed: male
  - Amy: male
  - K1: male
  - K2: male
---
father:
  Zed: [K1]
  Amy: [K2]
---
mother:
---
spouse:
`)
	doc, _, err = Decode(content, nil)
	require.NoError(t, err)
	assert.Equal(t, Table{
		{Name: "Zed", Names: []string{"K1"}},
		{Name: "Amy", Names: []string{"K2"}},
	}, doc.Father)
	assert.Equal(t, Table{}, doc.Mother)

	f, err := doc.Family()
	require.NoError(t, err)
	var froms []string
	for _, rel := range f.Relations() {
		froms = append(froms, rel.From)
	}
	assert.Equal(t, []string{"Zed", "Amy"}, froms)
}

func TestDecodeEmpty(t *testing.T) {
	doc, _, err := Decode(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, migration.Latest(), doc.Version)
	assert.Empty(t, doc.People)
}

func TestDocumentFamilyErrors(t *testing.T) {
	t.Run("unknown child", func(t *testing.T) {
		doc := Blank()
		doc.People = []person.Person{{Name: "Bob", Gender: person.Male}}
		doc.Father = Table{{Name: "Bob", Names: []string{"Ghost"}}}
		_, err := doc.Family()
		assert.ErrorIs(t, err, family.ErrUnknownPerson)
		assert.Contains(t, err.Error(), "father table: Ghost")
	})

	t.Run("mother who is male", func(t *testing.T) {
		doc := Blank()
		doc.People = []person.Person{{Name: "Bob", Gender: person.Male}, {Name: "Kid"}}
		doc.Mother = Table{{Name: "Bob", Names: []string{"Kid"}}}
		_, err := doc.Family()
		assert.ErrorIs(t, err, family.ErrGender)
	})

	t.Run("duplicate person", func(t *testing.T) {
		doc := Blank()
		doc.People = []person.Person{{Name: "Bob"}, {Name: "Bob"}}
		_, err := doc.Family()
		assert.ErrorIs(t, err, family.ErrPersonExists)
	})

	t.Run("bad gender", func(t *testing.T) {
		doc := Blank()
		doc.People = []person.Person{{Name: "Bob", Gender: "robot"}}
		_, err := doc.Family()
		assert.ErrorIs(t, err, family.ErrGender)
	})
}

func TestDocumentFamilyInfersGender(t *testing.T) {
	doc := Blank()
	doc.People = []person.Person{{Name: "Pat"}, {Name: "Kid"}}
	doc.Mother = Table{{Name: "Pat", Names: []string{"Kid"}}}
	f, err := doc.Family()
	require.NoError(t, err)
	assert.Equal(t, person.Female, f.Person("Pat").Gender)
}

func TestSaveRoundTrip(t *testing.T) {
	src, _, err := Load("testdata/legacy.yaml", nil)
	require.NoError(t, err)
	want, err := src.Family()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "relations.yaml")
	store := NewStore(path, nil)
	require.NoError(t, store.Save(want))

	got, err := store.Load()
	require.NoError(t, err)
	assert.True(t, want.Equal(got))
	assert.Equal(t, want.Names(), got.Names())
	assert.Equal(t, want.Person("Carol").ID, got.Person("Carol").ID)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "version: 2.0.0")
	assert.Contains(t, string(raw), "Bob: [Carol, Dave]")
}

func TestEnsure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "relations.yaml")

	created, err := Ensure(path)
	require.NoError(t, err)
	assert.True(t, created)

	doc, _, err := Load(path, nil)
	require.NoError(t, err)
	assert.Empty(t, doc.People)

	created, err = Ensure(path)
	require.NoError(t, err)
	assert.False(t, created)

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, nil, 0644))
	created, err = Ensure(empty)
	require.NoError(t, err)
	assert.True(t, created)
}

func TestMigrateFile(t *testing.T) {
	content, err := os.ReadFile("testdata/legacy.yaml")
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "relations.yaml")
	require.NoError(t, os.WriteFile(path, content, 0644))

	res, err := MigrateFile(path, nil)
	require.NoError(t, err)
	assert.True(t, res.Changed())

	res, err = MigrateFile(path, nil)
	require.NoError(t, err)
	assert.False(t, res.Changed())
}
