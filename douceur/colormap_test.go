package douceur_test

import (
	"testing"

	"github.com/fwojciec/pagecut"
	"github.com/fwojciec/pagecut/douceur"
	"github.com/stretchr/testify/assert"
)

func TestColorMapper_MapColors(t *testing.T) {
	t.Parallel()

	t.Run("reads simple class rules", func(t *testing.T) {
		t.Parallel()

		css := `
.red { color: #ff0000; }
span.blue, .navy { color: rgb(0, 0, 255); font-weight: bold }
.plain { font-size: 12px }
`
		got := douceur.NewColorMapper().MapColors(css)

		assert.Equal(t, pagecut.ClassColorMap{
			"red":  {R: 255},
			"blue": {B: 255},
			"navy": {B: 255},
		}, got)
	})

	t.Run("ignores complex selectors and at-rules", func(t *testing.T) {
		t.Parallel()

		css := `
div .nested { color: red }
.a:hover { color: red }
@media (max-width: 600px) { .narrow { color: red } }
`
		got := douceur.NewColorMapper().MapColors(css)

		assert.Empty(t, got)
	})

	t.Run("later rules override unless earlier is important", func(t *testing.T) {
		t.Parallel()

		css := `
.x { color: red }
.x { color: blue }
.y { color: green !important }
.y { color: black }
`
		got := douceur.NewColorMapper().MapColors(css)

		assert.Equal(t, pagecut.RGB{B: 255}, got["x"])
		assert.Equal(t, pagecut.RGB{G: 128}, got["y"])
	})

	t.Run("returns empty map for empty stylesheet", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, douceur.NewColorMapper().MapColors("  "))
	})
}
