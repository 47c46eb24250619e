package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Mastering Go: Concurrency & Channels": "mastering-go-concurrency-channels",
		"  Leading and trailing  ":             "leading-and-trailing",
		"Already-a-slug":                       "already-a-slug",
		"C++ for Gophers (2024)":               "c-for-gophers-2024",
		"Écoute: accents dropped":              "coute-accents-dropped",
		"":                                     "",
		"!!!":                                  "",
	}
	for input, want := range cases {
		assert.Equal(t, want, Slugify(input), "input %q", input)
	}
}
