package migration

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func legacyData() map[string]any {
	return map[string]any{
		"people": []any{
			map[string]any{"Bob": "male"},
			map[string]any{"Alice": "female"},
			map[string]any{"Carol": nil},
		},
		"father": map[string]any{"Bob": []any{"Carol"}},
		"mother": nil,
	}
}

func TestMigrateLegacy(t *testing.T) {
	data, res, err := Migrate(legacyData(), nil)
	require.NoError(t, err)
	assert.Equal(t, Legacy, res.From)
	assert.Equal(t, Latest(), res.To)
	assert.True(t, res.Changed())
	assert.Equal(t, "2.0.0", data["version"])

	people := data["people"].([]any)
	require.Len(t, people, 3)
	bob := people[0].(map[string]any)
	assert.Equal(t, "Bob", bob["name"])
	assert.Equal(t, "male", bob["gender"])
	_, err = uuid.Parse(bob["id"].(string))
	assert.NoError(t, err)
	assert.Equal(t, "", people[2].(map[string]any)["gender"])

	assert.Equal(t, map[string]any{"Bob": []any{"Carol"}}, data["father"])
	assert.Equal(t, map[string]any{}, data["mother"])
	assert.Equal(t, map[string]any{}, data["spouse"])
}

func TestMigrateKeepsExistingIDs(t *testing.T) {
	data := map[string]any{
		"version": "1.0.0",
		"people": []any{
			map[string]any{"name": "Ada", "gender": "female", "id": "fixed-id"},
		},
		"father": map[string]any{},
		"mother": map[string]any{},
		"spouse": map[string]any{},
	}
	data, res, err := Migrate(data, nil)
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", res.From)
	ada := data["people"].([]any)[0].(map[string]any)
	assert.Equal(t, "fixed-id", ada["id"])
	assert.Equal(t, "", ada["notes"])
}

func TestMigrateCurrentIsNoop(t *testing.T) {
	_, res, err := Migrate(map[string]any{"version": Latest(), "people": []any{}}, nil)
	require.NoError(t, err)
	assert.False(t, res.Changed())
}

func TestMigrateRejectsNewer(t *testing.T) {
	_, _, err := Migrate(map[string]any{"version": "9.1.0"}, nil)
	assert.ErrorIs(t, err, ErrNewerSchema)

	_, _, err = Migrate(map[string]any{"version": "not-a-version"}, nil)
	assert.Error(t, err)

	_, _, err = Migrate(map[string]any{"version": "1.5.0"}, nil)
	assert.ErrorContains(t, err, "no migration from schema version 1.5.0")
}

func TestLegacyPersonNamedName(t *testing.T) {
	recs, err := legacyPerson(map[string]any{"name": "male"})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, map[string]any{"name": "name", "gender": "male"}, recs[0])
}

func TestNormalizeTable(t *testing.T) {
	table, err := normalizeTable(map[string]any{
		"Bob":  "Carol",
		"Dave": nil,
		"Tom":  []any{"Ann", nil, 7},
	})
	require.NoError(t, err)
	assert.Equal(t, []any{"Carol"}, table["Bob"])
	assert.Equal(t, []any{}, table["Dave"])
	assert.Equal(t, []any{"Ann", "7"}, table["Tom"])

	_, err = normalizeTable([]any{"x"})
	assert.Error(t, err)
}
