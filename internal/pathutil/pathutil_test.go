package pathutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitNormalization(t *testing.T) {
	cases := []struct {
		path string
		want []string
	}{
		{"/", nil},
		{"//", nil},
		{"/a//b", []string{"a", "b"}},
		{"/a/b", []string{"a", "b"}},
		{"a/b/c", []string{"a", "b", "c"}},
		{"", nil},
	}

	for _, c := range cases {
		got := Split(c.path)
		if len(c.want) == 0 {
			assert.Empty(t, got, c.path)
			continue
		}
		assert.Equal(t, c.want, got, c.path)
	}
}

func TestLeaf(t *testing.T) {
	assert.Equal(t, "", Leaf("/"))
	assert.Equal(t, "b", Leaf("/a/b"))
	assert.Equal(t, "b", Leaf("/a/b/"))
	assert.Equal(t, "hello", Leaf("hello"))
}

func TestSplit1(t *testing.T) {
	dir, leaf := Split1("/a/b/c")
	assert.Equal(t, "/a/b", dir)
	assert.Equal(t, "c", leaf)

	dir, leaf = Split1("/hello")
	assert.Equal(t, "/", dir)
	assert.Equal(t, "hello", leaf)

	dir, leaf = Split1("/")
	assert.Equal(t, "/", dir)
	assert.Equal(t, "", leaf)
}
