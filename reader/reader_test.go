package reader_test

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/beevik/etree"
	"github.com/fwojciec/pagecut"
	"github.com/fwojciec/pagecut/ahocorasick"
	"github.com/fwojciec/pagecut/docx"
	"github.com/fwojciec/pagecut/douceur"
	"github.com/fwojciec/pagecut/goquery"
	"github.com/fwojciec/pagecut/mock"
	"github.com/fwojciec/pagecut/reader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const storyPage = `<!DOCTYPE html>
<html>
<head><title>体験談 | Example</title></head>
<body>
<div id="sentenceBox">
<h1 class="pageTitle">テストの話</h1>
<p>一つ目の段落です。</p>
<p>二つ目の<span style="color: #ff0000">段落</span>です。</p>
<p>※無断転載を禁じます</p>
<div class="kakomiPop2">おすすめ</div>
<div>関連作品その一</div>
<div>関連作品その二</div>
</div>
</body>
</html>`

func staticFetcher(html string) *mock.Fetcher {
	return &mock.Fetcher{
		FetchFn: func(_ context.Context, _ string) (string, error) { return html, nil },
		CloseFn: func() error { return nil },
	}
}

func newPipeline(t *testing.T, fetcher pagecut.Fetcher, opts ...reader.Option) *reader.Reader {
	t.Helper()
	rules := pagecut.DefaultRules()
	extractor, err := goquery.NewExtractor(rules, ahocorasick.NewMatcher(rules.WarningPhrases),
		goquery.WithColorMapper(douceur.NewColorMapper()))
	require.NoError(t, err)
	return reader.New(fetcher, extractor, goquery.NewRenderer(), opts...)
}

func docxParagraphs(t *testing.T, data []byte) []*etree.Element {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		defer rc.Close()
		body, err := io.ReadAll(rc)
		require.NoError(t, err)
		doc := etree.NewDocument()
		require.NoError(t, doc.ReadFromBytes(body))
		return doc.FindElements("//w:body/w:p")
	}
	t.Fatal("word/document.xml missing")
	return nil
}

func TestReader_Read_EndToEnd(t *testing.T) {
	t.Parallel()

	// Given a story page with a warning line and trailing related links
	r := newPipeline(t, staticFetcher(storyPage), reader.WithExporters(docx.NewExporter()))

	// When reading it
	reading, err := r.Read(context.Background(), "https://example.com/story/1", nil)

	// Then the display keeps the two real paragraphs only
	require.NoError(t, err)
	assert.True(t, reading.Found)
	assert.Equal(t, "テストの話", reading.Title)
	assert.Contains(t, reading.HTML, "一つ目の段落です。")
	assert.Contains(t, reading.HTML, "段落</span>です。")
	assert.NotContains(t, reading.HTML, "無断転載")
	assert.NotContains(t, reading.HTML, "おすすめ")
	assert.NotContains(t, reading.HTML, "関連作品")

	// And the document holds title, spacer, and two body paragraphs
	require.Len(t, reading.Downloads, 1)
	d := reading.Downloads[0]
	require.NoError(t, d.Err)
	assert.Equal(t, "テストの話.docx", d.Filename)
	assert.Equal(t, docx.ContentType, d.ContentType)

	paragraphs := docxParagraphs(t, d.Data)
	require.Len(t, paragraphs, 4)
	assert.Equal(t, "テストの話", paragraphs[0].FindElement(".//w:t").Text())
	assert.NotNil(t, paragraphs[0].FindElement(".//w:b"))
	assert.Empty(t, paragraphs[1].ChildElements())
	assert.Equal(t, "一つ目の段落です。", paragraphs[2].FindElement(".//w:t").Text())

	runs := paragraphs[3].FindElements("w:r")
	require.Len(t, runs, 3)
	assert.Equal(t, "段落", runs[1].FindElement("w:t").Text())
	assert.Equal(t, "FF0000", runs[1].FindElement("w:rPr/w:color").SelectAttrValue("w:val", ""))
}

func TestReader_Read_ReportsStatus(t *testing.T) {
	t.Parallel()

	r := newPipeline(t, staticFetcher(storyPage))
	var statuses []pagecut.Status

	_, err := r.Read(context.Background(), "https://example.com/story/1", func(s pagecut.Status, _ string) {
		statuses = append(statuses, s)
	})

	require.NoError(t, err)
	assert.Equal(t, []pagecut.Status{
		pagecut.StatusLoading,
		pagecut.StatusAnalyzing,
		pagecut.StatusExporting,
		pagecut.StatusDone,
	}, statuses)
}

func TestReader_Read_FetchFailure(t *testing.T) {
	t.Parallel()

	// Given a fetcher that cannot reach the site
	fetcher := &mock.Fetcher{
		FetchFn: func(_ context.Context, _ string) (string, error) {
			return "", errors.New("net::ERR_NAME_NOT_RESOLVED")
		},
	}
	r := newPipeline(t, fetcher)
	var last pagecut.Status

	// When reading
	reading, err := r.Read(context.Background(), "https://example.com/story/1", func(s pagecut.Status, _ string) {
		last = s
	})

	// Then the reading fails as unavailable with no partial result
	require.Error(t, err)
	assert.Nil(t, reading)
	assert.Equal(t, pagecut.EUNAVAILABLE, pagecut.ErrorCode(err))
	assert.Equal(t, pagecut.StatusFailed, last)
	assert.ErrorContains(t, err, "ERR_NAME_NOT_RESOLVED")
}

func TestReader_Read_InvalidURL(t *testing.T) {
	t.Parallel()

	fetcher := &mock.Fetcher{
		FetchFn: func(_ context.Context, _ string) (string, error) {
			t.Fatal("fetch must not be called")
			return "", nil
		},
	}
	r := newPipeline(t, fetcher)

	for _, u := range []string{"", "   ", "example.com/story", "ftp://example.com/x"} {
		_, err := r.Read(context.Background(), u, nil)
		require.Error(t, err, u)
		assert.Equal(t, pagecut.EINVALID, pagecut.ErrorCode(err), u)
	}
}

func TestReader_Read_NotFound(t *testing.T) {
	t.Parallel()

	// Given a page that is nothing but navigation
	page := `<html><head><title>Index</title></head><body><div><a href="/a">Next story link</a></div></body></html>`
	r := newPipeline(t, staticFetcher(page), reader.WithExporters(docx.NewExporter()))

	// When reading
	reading, err := r.Read(context.Background(), "https://example.com/", nil)

	// Then the placeholder is shown and the document holds only the title
	require.NoError(t, err)
	assert.False(t, reading.Found)
	assert.Contains(t, reading.HTML, "本文が見つかりませんでした")
	require.Len(t, reading.Downloads, 1)
	require.NoError(t, reading.Downloads[0].Err)
	assert.Len(t, docxParagraphs(t, reading.Downloads[0].Data), 2)
}

func TestReader_Read_ExportFailureIsIsolated(t *testing.T) {
	t.Parallel()

	// Given one failing and one working exporter
	failing := &mock.Exporter{
		FormatFn:      func() string { return "pdf" },
		ContentTypeFn: func() string { return "application/pdf" },
		ExportFn: func(*pagecut.RichDocument) ([]byte, error) {
			return nil, errors.New("font exploded")
		},
	}
	var mu sync.Mutex
	var exported *pagecut.RichDocument
	working := &mock.Exporter{
		FormatFn:      func() string { return "txt" },
		ContentTypeFn: func() string { return "text/plain" },
		ExportFn: func(doc *pagecut.RichDocument) ([]byte, error) {
			mu.Lock()
			defer mu.Unlock()
			exported = doc
			return []byte(doc.PlainTitle()), nil
		},
	}
	r := newPipeline(t, staticFetcher(storyPage), reader.WithExporters(failing, working))

	// When reading
	reading, err := r.Read(context.Background(), "https://example.com/story/1", nil)

	// Then the reading succeeds and only the failing download carries an error
	require.NoError(t, err)
	require.Len(t, reading.Downloads, 2)
	assert.Equal(t, "pdf", reading.Downloads[0].Format)
	assert.Error(t, reading.Downloads[0].Err)
	assert.Equal(t, pagecut.EINTERNAL, pagecut.ErrorCode(reading.Downloads[0].Err))
	assert.NoError(t, reading.Downloads[1].Err)
	assert.Equal(t, "テストの話", string(reading.Downloads[1].Data))
	assert.NotEmpty(t, reading.HTML)
	require.NotNil(t, exported)
	assert.Len(t, exported.Blocks, 2)
}

func TestReader_Read_Markdown(t *testing.T) {
	t.Parallel()

	converter := &mock.Converter{
		ConvertFn: func(html string) (string, error) {
			if strings.Contains(html, "一つ目") {
				return "一つ目の段落です。\n\n二つ目の段落です。\n", nil
			}
			return "", errors.New("unexpected input")
		},
	}
	r := newPipeline(t, staticFetcher(storyPage), reader.WithConverter(converter))

	reading, err := r.Read(context.Background(), "https://example.com/story/1", nil)

	require.NoError(t, err)
	assert.Equal(t, "# テストの話\n\n一つ目の段落です。\n\n二つ目の段落です。\n", reading.Markdown)
	require.Len(t, reading.Downloads, 1)
	assert.Equal(t, "md", reading.Downloads[0].Format)
	assert.Equal(t, "テストの話.md", reading.Downloads[0].Filename)
	assert.Equal(t, reading.Markdown, string(reading.Downloads[0].Data))
}

func TestReader_Read_RichTextFailureMarksEveryDownload(t *testing.T) {
	t.Parallel()

	extractor := &mock.Extractor{
		ExtractFn: func(_, pageURL string) (*pagecut.ExtractResult, error) {
			return &pagecut.ExtractResult{URL: pageURL, TitleText: "T", BodyHTML: "<p>x</p>", Found: true}, nil
		},
	}
	renderer := &mock.Renderer{
		DisplayHTMLFn: func(*pagecut.ExtractResult) (string, error) { return "<html></html>", nil },
		RichTextFn: func(*pagecut.ExtractResult) (*pagecut.RichDocument, error) {
			return nil, pagecut.Errorf(pagecut.EINTERNAL, "broken")
		},
	}
	exporter := &mock.Exporter{
		FormatFn:      func() string { return "docx" },
		ContentTypeFn: func() string { return docx.ContentType },
		ExportFn: func(*pagecut.RichDocument) ([]byte, error) {
			t.Fatal("export must not be called")
			return nil, nil
		},
	}
	r := reader.New(staticFetcher("<html></html>"), extractor, renderer, reader.WithExporters(exporter, exporter))

	reading, err := r.Read(context.Background(), "https://example.com/", nil)

	require.NoError(t, err)
	require.Len(t, reading.Downloads, 2)
	for _, d := range reading.Downloads {
		assert.Error(t, d.Err)
	}
	assert.Equal(t, "<html></html>", reading.HTML)
}
