package migration

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
)

var tables = []string{"father", "mother", "spouse"}

// migrate_0_0_0_to_1_0_0 turns the old four-document layout, already
// merged into one map, into person records and non-null tables.
func migrate_0_0_0_to_1_0_0(data map[string]any) (map[string]any, error) {
	out := map[string]any{}

	var people []any
	if raw, ok := data["people"]; ok && raw != nil {
		list, ok := raw.([]any)
		if !ok {
			return nil, fmt.Errorf("people: expected a list, got %T", raw)
		}
		for i, entry := range list {
			records, err := legacyPerson(entry)
			if err != nil {
				return nil, fmt.Errorf("people[%d]: %w", i, err)
			}
			people = append(people, records...)
		}
	}
	if people == nil {
		people = []any{}
	}
	out["people"] = people

	for _, name := range tables {
		table, err := normalizeTable(data[name])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		out[name] = table
	}
	return out, nil
}

// legacyPerson accepts both `- Alice: female` and `- {name: Alice, gender: female}`.
func legacyPerson(entry any) ([]any, error) {
	m, ok := asMap(entry)
	if !ok {
		if entry == nil {
			return nil, nil
		}
		// A bare name without gender.
		return []any{map[string]any{"name": fmt.Sprint(entry), "gender": ""}}, nil
	}
	if name, ok := m["name"]; ok && !isLegacyNamedName(m) {
		rec := map[string]any{"name": fmt.Sprint(name), "gender": str(m["gender"])}
		for k, v := range m {
			if _, done := rec[k]; !done {
				rec[k] = v
			}
		}
		return []any{rec}, nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var out []any
	for _, name := range keys {
		out = append(out, map[string]any{"name": name, "gender": str(m[name])})
	}
	return out, nil
}

// isLegacyNamedName catches `- name: male`, a person called "name".
func isLegacyNamedName(m map[string]any) bool {
	if len(m) != 1 {
		return false
	}
	switch str(m["name"]) {
	case "male", "female":
		return true
	}
	return false
}

func normalizeTable(raw any) (map[string]any, error) {
	out := map[string]any{}
	if raw == nil {
		return out, nil
	}
	m, ok := asMap(raw)
	if !ok {
		return nil, fmt.Errorf("expected a mapping, got %T", raw)
	}
	for key, val := range m {
		switch v := val.(type) {
		case nil:
			out[key] = []any{}
		case []any:
			names := make([]any, 0, len(v))
			for _, n := range v {
				if n != nil {
					names = append(names, fmt.Sprint(n))
				}
			}
			out[key] = names
		default:
			out[key] = []any{fmt.Sprint(v)}
		}
	}
	return out, nil
}

func migrate_1_0_0_to_2_0_0(data map[string]any) (map[string]any, error) {
	people, _ := data["people"].([]any)
	for i, p := range people {
		rec, ok := asMap(p)
		if !ok {
			return nil, fmt.Errorf("people[%d]: expected a record, got %T", i, p)
		}
		if id := str(rec["id"]); id == "" {
			rec["id"] = uuid.New().String()
		}
		if _, ok := rec["notes"]; !ok {
			rec["notes"] = ""
		}
		people[i] = rec
	}
	data["people"] = people
	return data, nil
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	}
	return nil, false
}

func str(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}
