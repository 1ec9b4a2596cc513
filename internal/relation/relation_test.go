package relation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	for _, k := range Kinds {
		got, err := ParseKind(string(k))
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	_, err := ParseKind("cousin")
	assert.Error(t, err)
}

func TestItemFor(t *testing.T) {
	rel := Relation{From: "Bob", To: "Carol", Kind: Father}

	fromChild := ItemFor(rel, "Carol")
	assert.Equal(t, "Bob", fromChild.OtherName)
	assert.Equal(t, "<-", fromChild.Direction)
	assert.Equal(t, "father", fromChild.Label())

	fromParent := ItemFor(rel, "Bob")
	assert.Equal(t, "Carol", fromParent.OtherName)
	assert.Equal(t, "child", fromParent.Label())
	assert.Contains(t, fromParent.Title(), "Carol")

	spouse := ItemFor(Relation{From: "Bob", To: "Alice", Kind: Spouse}, "Alice")
	assert.Equal(t, "spouse", spouse.Label())
}
