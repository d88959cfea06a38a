package pagecut_test

import (
	"testing"

	"github.com/fwojciec/pagecut"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseColor(t *testing.T) {
	t.Parallel()

	t.Run("parses six digit hex", func(t *testing.T) {
		t.Parallel()

		c, ok := pagecut.ParseColor("#1A2B3C")

		require.True(t, ok)
		assert.Equal(t, pagecut.RGB{R: 26, G: 43, B: 60}, c)
	})

	t.Run("expands three digit hex by doubling nibbles", func(t *testing.T) {
		t.Parallel()

		c, ok := pagecut.ParseColor("#f80")

		require.True(t, ok)
		assert.Equal(t, pagecut.RGB{R: 0xff, G: 0x88, B: 0x00}, c)
	})

	t.Run("parses rgb function", func(t *testing.T) {
		t.Parallel()

		c, ok := pagecut.ParseColor("rgb(255, 0, 0)")

		require.True(t, ok)
		assert.Equal(t, pagecut.RGB{R: 255}, c)
	})

	t.Run("ignores alpha in rgba", func(t *testing.T) {
		t.Parallel()

		c, ok := pagecut.ParseColor("rgba(0, 128, 255, 0.4)")

		require.True(t, ok)
		assert.Equal(t, pagecut.RGB{G: 128, B: 255}, c)
	})

	t.Run("parses space separated rgb", func(t *testing.T) {
		t.Parallel()

		c, ok := pagecut.ParseColor("rgb(10 20 30 / 50%)")

		require.True(t, ok)
		assert.Equal(t, pagecut.RGB{R: 10, G: 20, B: 30}, c)
	})

	t.Run("clamps out of range channels", func(t *testing.T) {
		t.Parallel()

		c, ok := pagecut.ParseColor("rgb(300, -5, 100%)")

		require.True(t, ok)
		assert.Equal(t, pagecut.RGB{R: 255, G: 0, B: 255}, c)
	})

	t.Run("resolves named colours case-insensitively", func(t *testing.T) {
		t.Parallel()

		c, ok := pagecut.ParseColor("Red")

		require.True(t, ok)
		assert.Equal(t, pagecut.RGB{R: 255}, c)
	})

	t.Run("strips important modifier", func(t *testing.T) {
		t.Parallel()

		c, ok := pagecut.ParseColor(" blue !important;")

		require.True(t, ok)
		assert.Equal(t, pagecut.RGB{B: 255}, c)
	})

	t.Run("returns no colour for unknown tokens", func(t *testing.T) {
		t.Parallel()

		_, ok := pagecut.ParseColor("fancycolor")

		assert.False(t, ok)
	})

	t.Run("returns no colour for malformed hex", func(t *testing.T) {
		t.Parallel()

		_, ok := pagecut.ParseColor("#12345")
		assert.False(t, ok)

		_, ok = pagecut.ParseColor("#zzzzzz")
		assert.False(t, ok)
	})

	t.Run("returns no colour for empty input", func(t *testing.T) {
		t.Parallel()

		_, ok := pagecut.ParseColor("  ")

		assert.False(t, ok)
	})
}

func TestParseFontWeight(t *testing.T) {
	t.Parallel()

	assert.True(t, pagecut.ParseFontWeight("bold"))
	assert.True(t, pagecut.ParseFontWeight("BOLDER !important"))
	assert.True(t, pagecut.ParseFontWeight("700"))
	assert.True(t, pagecut.ParseFontWeight("900"))
	assert.False(t, pagecut.ParseFontWeight("400"))
	assert.False(t, pagecut.ParseFontWeight("normal"))
	assert.False(t, pagecut.ParseFontWeight(""))
}

func TestRGB_Hex(t *testing.T) {
	t.Parallel()

	c := pagecut.RGB{R: 26, G: 43, B: 60}

	assert.Equal(t, "1A2B3C", c.Hex())
	assert.Equal(t, "#1a2b3c", c.String())
}

func TestClassColorMap_Merge(t *testing.T) {
	t.Parallel()

	defaults := pagecut.ClassColorMap{"marker": {R: 1}, "quote": {B: 2}}
	page := pagecut.ClassColorMap{"marker": {G: 3}}

	merged := defaults.Merge(page)

	assert.Equal(t, pagecut.RGB{G: 3}, merged["marker"])
	assert.Equal(t, pagecut.RGB{B: 2}, merged["quote"])
	assert.Equal(t, pagecut.RGB{R: 1}, defaults["marker"], "inputs are not modified")
}
