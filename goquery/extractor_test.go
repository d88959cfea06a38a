package goquery_test

import (
	"testing"

	"github.com/fwojciec/pagecut"
	"github.com/fwojciec/pagecut/ahocorasick"
	"github.com/fwojciec/pagecut/douceur"
	"github.com/fwojciec/pagecut/goquery"
	"github.com/fwojciec/pagecut/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const storyPage = `<!DOCTYPE html>
<html>
<head>
<title>Story | Example</title>
<link rel="stylesheet" href="/css/site.css">
<link rel="icon" href="/favicon.ico">
<style>.shout { color: #ff6600 }</style>
</head>
<body style="overflow: hidden">
<div class="gate" style="position: fixed; z-index: 1000">18歳以上ですか？ <button>はい</button></div>
<header><nav><a href="/">Home</a></nav></header>
<h1 class="pageTitle">第一話 <span style="color: red">はじまり</span></h1>
<div id="sentenceBox">
<p>最初の段落です。</p>
<!-- ad -->
<p>二番目の<span class="shout">段落</span>です。</p>
<script>track()</script>
<p>※無断転載禁止</p>
<div class="kakomiPop2">関連作品</div>
<p>ランキング</p>
</div>
<footer>copyright</footer>
</body>
</html>`

func newExtractor(t *testing.T, opts ...goquery.ExtractorOption) *goquery.Extractor {
	t.Helper()
	rules := pagecut.DefaultRules()
	e, err := goquery.NewExtractor(rules, ahocorasick.NewMatcher(rules.WarningPhrases), opts...)
	require.NoError(t, err)
	return e
}

func TestExtractor_Extract(t *testing.T) {
	t.Parallel()

	t.Run("extracts title and sanitized body", func(t *testing.T) {
		t.Parallel()

		e := newExtractor(t, goquery.WithColorMapper(douceur.NewColorMapper()))

		result, err := e.Extract(storyPage, "https://example.com/story/1")

		require.NoError(t, err)
		assert.True(t, result.Found)
		assert.Equal(t, "https://example.com/story/1", result.URL)
		assert.Equal(t, "Story | Example", result.PageTitle)
		assert.Equal(t, "第一話 はじまり", result.TitleText)
		assert.Contains(t, result.TitleHTML, `class="pageTitle"`)

		assert.Contains(t, result.BodyHTML, `<div id="sentenceBox">`)
		assert.Contains(t, result.BodyHTML, "最初の段落です。")
		assert.Contains(t, result.BodyHTML, `<br class="pagecut-blank"/>`)
		assert.NotContains(t, result.BodyHTML, "script")
		assert.NotContains(t, result.BodyHTML, "無断転載")
		assert.NotContains(t, result.BodyHTML, "関連作品")
		assert.NotContains(t, result.BodyHTML, "ランキング")
		assert.NotContains(t, result.BodyHTML, "pageTitle")
	})

	t.Run("collects stylesheets and class colours", func(t *testing.T) {
		t.Parallel()

		e := newExtractor(t, goquery.WithColorMapper(douceur.NewColorMapper()))

		result, err := e.Extract(storyPage, "https://example.com/story/1")

		require.NoError(t, err)
		assert.Contains(t, result.StyleHTML, `href="/css/site.css"`)
		assert.Contains(t, result.StyleHTML, ".shout")
		assert.NotContains(t, result.StyleHTML, "favicon")
		assert.Equal(t, pagecut.RGB{R: 255, G: 102}, result.ClassColors["shout"])
		assert.Equal(t, pagecut.RGB{R: 230, B: 51}, result.ClassColors["marker"])
	})

	t.Run("class colours are not shared between pages", func(t *testing.T) {
		t.Parallel()

		e := newExtractor(t, goquery.WithColorMapper(douceur.NewColorMapper()))

		first, err := e.Extract(storyPage, "https://example.com/story/1")
		require.NoError(t, err)
		second, err := e.Extract(`<div id="sentenceBox"><p>x</p></div>`, "https://example.com/story/2")
		require.NoError(t, err)

		assert.Contains(t, first.ClassColors, "shout")
		assert.NotContains(t, second.ClassColors, "shout")
	})

	t.Run("falls back to document title", func(t *testing.T) {
		t.Parallel()

		e := newExtractor(t)

		result, err := e.Extract(`<html><head><title>Only title</title></head><body><article>本文</article></body></html>`, "https://example.com/")

		require.NoError(t, err)
		assert.Empty(t, result.TitleHTML)
		assert.Equal(t, "Only title", result.Title())
		assert.Contains(t, result.BodyHTML, "<article>本文</article>")
	})

	t.Run("returns placeholder when nothing qualifies", func(t *testing.T) {
		t.Parallel()

		e := newExtractor(t)

		result, err := e.Extract(`<body><div><a href="/a">only links here</a></div></body>`, "https://example.com/")

		require.NoError(t, err)
		assert.False(t, result.Found)
		assert.Equal(t, pagecut.NotFoundHTML, result.BodyHTML)
		assert.Equal(t, pagecut.NoTitle, result.Title())
	})

	t.Run("uses fallback extractor when nothing qualifies", func(t *testing.T) {
		t.Parallel()

		fallback := &mock.Extractor{
			ExtractFn: func(html, pageURL string) (*pagecut.ExtractResult, error) {
				return &pagecut.ExtractResult{
					URL:      pageURL,
					BodyHTML: `<p>recovered</p><script>x()</script>`,
					Found:    true,
				}, nil
			},
		}
		e := newExtractor(t, goquery.WithFallback(fallback))

		result, err := e.Extract(`<body><div><a href="/a">only links here</a></div></body>`, "https://example.com/")

		require.NoError(t, err)
		assert.True(t, result.Found)
		assert.Equal(t, `<div class="pagecut-fallback"><p>recovered</p></div>`, result.BodyHTML)
	})

	t.Run("ignores a heading inside site chrome", func(t *testing.T) {
		t.Parallel()

		// Given a site logo h1 in the header ahead of the article heading
		page := `<body><header><h1>サイト名</h1></header>
<div id="sentenceBox"><h1>体験談の題名</h1><p>本文です。</p></div></body>`

		// When extracting
		result, err := newExtractor(t).Extract(page, "https://example.com/")

		// Then the article heading is the title
		require.NoError(t, err)
		assert.Equal(t, "体験談の題名", result.TitleText)
		assert.NotContains(t, result.BodyHTML, "体験談の題名")
	})

	t.Run("stamps inherited style onto the located block", func(t *testing.T) {
		t.Parallel()

		// Given a block whose colour and weight come from a wrapper
		page := `<body><div data-pagecut-color="rgb(204, 0, 102)" style="font-weight: bold">
<div id="sentenceBox"><p>ピンクの本文</p></div></div></body>`

		// When extracting and rendering the body on its own
		result, err := newExtractor(t).Extract(page, "https://example.com/")
		require.NoError(t, err)
		doc, err := goquery.NewRenderer().RichText(result)

		// Then the inherited style reaches the runs
		require.NoError(t, err)
		require.Len(t, doc.Blocks, 1)
		assert.Equal(t, []pagecut.Run{
			{Text: "ピンクの本文", Style: pagecut.Style{Color: &pagecut.RGB{R: 204, B: 102}, Bold: true}},
		}, doc.Blocks[0])
	})

	t.Run("keeps a colour the block declares itself", func(t *testing.T) {
		t.Parallel()

		page := `<body><div style="color: red"><div id="sentenceBox" style="color: #0000ff"><p>青</p></div></div></body>`

		result, err := newExtractor(t).Extract(page, "https://example.com/")

		require.NoError(t, err)
		assert.NotContains(t, result.BodyHTML, "data-pagecut-color")
	})

	t.Run("rejects empty input", func(t *testing.T) {
		t.Parallel()

		_, err := newExtractor(t).Extract("  ", "https://example.com/")

		require.Error(t, err)
		assert.Equal(t, pagecut.EINVALID, pagecut.ErrorCode(err))
	})
}

func TestNewExtractor_InvalidRules(t *testing.T) {
	t.Parallel()

	rules := pagecut.DefaultRules()
	rules.MaxLinkFraction = 2

	_, err := goquery.NewExtractor(rules, nil)

	require.Error(t, err)
	assert.Equal(t, pagecut.EINVALID, pagecut.ErrorCode(err))
}
