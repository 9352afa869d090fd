package identifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIsNotNilAndIsUnique(t *testing.T) {
	a := New()
	b := New()

	assert.NotEqual(t, Nil, a)
	assert.NotEqual(t, a, b)
}

func TestParseRoundTrip(t *testing.T) {
	a := New()

	parsed, err := Parse(a.String())
	require.NoError(t, err)
	assert.Equal(t, a, parsed)
}

func TestParseInvalid(t *testing.T) {
	_, err := Parse("not-a-uuid")
	assert.Error(t, err)
}
