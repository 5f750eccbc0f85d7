package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Go":                    "go",
		"  C++ & Rust ":         "c-rust",
		"Programação Orientada": "programacao-orientada",
		"Node.js":               "node-js",
		"---":                   "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func TestPageNormalize(t *testing.T) {
	assert.Equal(t, Page{Limit: DefaultPageSize}, Page{}.Normalize())
	assert.Equal(t, Page{Limit: MaxPageSize, Offset: 0}, Page{Limit: 1000, Offset: -5}.Normalize())
	assert.True(t, Page{}.IsFirst())
	assert.False(t, Page{Offset: 20}.IsFirst())
}

func TestValidators(t *testing.T) {
	assert.True(t, IsValidUsername("ana.silva"))
	assert.False(t, IsValidUsername("a b"))
	assert.True(t, IsValidEmail("ana@example.com"))
	assert.False(t, IsValidEmail("ana@"))
	assert.True(t, IsValidColor("#5E6E7D"))
	assert.False(t, IsValidColor("5e6e7d"))
	assert.True(t, IsValidID(NewID()))
	assert.False(t, IsValidID("42"))
}
