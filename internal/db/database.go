package db

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/N3moAhead/pedigree/internal/family"
	"github.com/N3moAhead/pedigree/internal/migration"
	"github.com/N3moAhead/pedigree/internal/relation"
)

// Load reads a relations file of any known schema version. Older files are
// migrated in memory; the file itself is left untouched.
func Load(path string, log *zap.Logger) (*Document, migration.Result, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, migration.Result{}, fmt.Errorf("couldn't open %s: %w", path, err)
	}
	doc, res, err := Decode(content, log)
	if err != nil {
		return nil, res, fmt.Errorf("%s: %w", path, err)
	}
	return doc, res, nil
}

// Decode parses the bytes of a relations file.
func Decode(content []byte, log *zap.Logger) (*Document, migration.Result, error) {
	latest := migration.Latest()
	current := migration.Result{From: latest, To: latest}

	var docs []*yaml.Node
	dec := yaml.NewDecoder(bytes.NewReader(content))
	for {
		var node yaml.Node
		err := dec.Decode(&node)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, current, fmt.Errorf("invalid yaml: %w", err)
		}
		docs = append(docs, &node)
	}

	if len(docs) == 0 {
		return Blank(), current, nil
	}

	if len(docs) == 1 && versionOf(docs[0]) == latest {
		doc := Blank()
		if err := docs[0].Decode(doc); err != nil {
			return nil, current, fmt.Errorf("invalid relations file: %w", err)
		}
		return doc, current, nil
	}

	// Older files may be split over several documents; merge them first.
	merged := map[string]any{}
	for _, node := range docs {
		var part any
		if err := node.Decode(&part); err != nil {
			return nil, current, fmt.Errorf("invalid yaml: %w", err)
		}
		if part == nil {
			continue
		}
		m, ok := part.(map[string]any)
		if !ok {
			return nil, current, fmt.Errorf("line %d: expected a mapping at the top of the document", node.Line)
		}
		for k, v := range m {
			merged[k] = v
		}
	}

	migrated, res, err := migration.Migrate(merged, log)
	if err != nil {
		return nil, res, err
	}
	out, err := yaml.Marshal(migrated)
	if err != nil {
		return nil, res, err
	}
	doc := Blank()
	if err := yaml.Unmarshal(out, doc); err != nil {
		return nil, res, fmt.Errorf("invalid relations file: %w", err)
	}
	// The map round trip sorts table keys; read the tables again from the
	// nodes to keep the order of the file.
	for kind, node := range tableNodes(docs) {
		t := Table{}
		if err := node.Decode(&t); err != nil {
			return nil, res, fmt.Errorf("%s: %w", kind, err)
		}
		if t == nil {
			t = Table{}
		}
		*doc.tableRef(kind) = t
	}
	return doc, res, nil
}

// tableNodes finds the father, mother and spouse values of every document.
// A later document wins, as in the merge above.
func tableNodes(docs []*yaml.Node) map[relation.Kind]*yaml.Node {
	out := map[relation.Kind]*yaml.Node{}
	for _, node := range docs {
		root := node
		if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
			root = root.Content[0]
		}
		if root.Kind != yaml.MappingNode {
			continue
		}
		for i := 0; i+1 < len(root.Content); i += 2 {
			kind, err := relation.ParseKind(root.Content[i].Value)
			if err != nil {
				continue
			}
			out[kind] = root.Content[i+1]
		}
	}
	return out
}

func versionOf(node *yaml.Node) string {
	root := node
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return ""
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value == "version" {
			return root.Content[i+1].Value
		}
	}
	return ""
}

func Encode(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save writes doc through a temporary file so readers never see a half
// written file.
func Save(path string, doc *Document) error {
	content, err := Encode(doc)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

func CreateBlank(path string) error {
	return Save(path, Blank())
}

// Ensure creates a blank relations file when path is missing or empty.
func Ensure(path string) (bool, error) {
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return false, fmt.Errorf("couldn't open %s: %w", path, err)
	case info.Size() > 0:
		return false, nil
	}
	return true, CreateBlank(path)
}

// MigrateFile rewrites path in the latest schema when it is older.
func MigrateFile(path string, log *zap.Logger) (migration.Result, error) {
	doc, res, err := Load(path, log)
	if err != nil {
		return res, err
	}
	if !res.Changed() {
		return res, nil
	}
	// Validate before touching the file.
	if _, err := doc.Family(); err != nil {
		return res, fmt.Errorf("%s: %w", path, err)
	}
	return res, Save(path, doc)
}

// Store ties a family to the file it was read from.
type Store struct {
	Path string
	log  *zap.Logger
}

func NewStore(path string, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{Path: path, log: log}
}

func (s *Store) Load() (*family.Family, error) {
	doc, res, err := Load(s.Path, s.log)
	if err != nil {
		return nil, err
	}
	if res.Changed() {
		s.log.Info("read older relations file",
			zap.String("path", s.Path),
			zap.String("schema", res.From),
			zap.String("upgraded_to", res.To))
	}
	f, err := doc.Family()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Path, err)
	}
	return f, nil
}

func (s *Store) Save(f *family.Family) error {
	if err := Save(s.Path, FromFamily(f)); err != nil {
		return err
	}
	s.log.Debug("saved relations file", zap.String("path", s.Path), zap.Int("people", f.Len()))
	return nil
}
