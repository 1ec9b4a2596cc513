package person

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGender(t *testing.T) {
	cases := map[string]Gender{
		"male":    Male,
		"M":       Male,
		"female":  Female,
		" f ":     Female,
		"":        Unknown,
		"unknown": Unknown,
	}
	for in, want := range cases {
		got, err := ParseGender(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseGender("x")
	assert.Error(t, err)
}

func TestIsAnonymous(t *testing.T) {
	assert.True(t, IsAnonymous("?"))
	assert.True(t, IsAnonymous("???"))
	assert.False(t, IsAnonymous(""))
	assert.False(t, IsAnonymous("?a?"))
}

func TestListItem(t *testing.T) {
	p := &Person{Name: "Ada", Gender: Female, Notes: "born 1815"}
	assert.Equal(t, "Ada", p.Title())
	assert.Equal(t, "Ada", p.FilterValue())
	assert.Equal(t, "female · born 1815", p.Description())
	assert.Equal(t, "unknown", (&Person{Name: "x"}).Description())
}
