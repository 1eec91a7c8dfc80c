package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		name  string
		title string
		want  string
	}{
		{"punctuation and double spaces", "Hello, World!  Test", "hello-world-test"},
		{"simple title", "My First Post", "my-first-post"},
		{"already lowercase", "already-a-slug", "already-a-slug"},
		{"leading and trailing spaces", "  Padded Title  ", "padded-title"},
		{"mixed case", "Go Is FUN", "go-is-fun"},
		{"repeated hyphens", "dash -- heavy --- title", "dash-heavy-title"},
		{"numbers kept", "Top 10 Tips for 2024", "top-10-tips-for-2024"},
		{"only punctuation", "!!!", ""},
		{"tabs and newlines", "one\ttwo\nthree", "one-two-three"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Slugify(tc.title))
		})
	}
}

func TestSlugify_Deterministic(t *testing.T) {
	title := "Hello, World!  Test"

	first := Slugify(title)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Slugify(title), "Slugify must always yield the same slug for the same title")
	}

	// Idempotent: slugifying a slug changes nothing
	assert.Equal(t, first, Slugify(first))
}
