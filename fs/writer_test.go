package fs_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fwojciec/pagecut"
	"github.com/fwojciec/pagecut/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fetched = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func newReading() *pagecut.Reading {
	return &pagecut.Reading{
		URL:   "https://example.com/story/1",
		Title: "テストの話",
		HTML:  "<html><body>display</body></html>",
		Found: true,
		Downloads: []pagecut.Download{
			{Format: "docx", Filename: "テストの話.docx", Data: []byte("docx-bytes")},
			{Format: "pdf", Filename: "テストの話.pdf", Err: errors.New("font missing")},
			{Format: "md", Filename: "テストの話.md", Data: []byte("本文")},
		},
	}
}

func TestFormatMarkdown(t *testing.T) {
	t.Parallel()

	t.Run("formats markdown with frontmatter", func(t *testing.T) {
		t.Parallel()

		got, err := fs.FormatMarkdown(newReading(), "本文", fetched)

		require.NoError(t, err)
		assert.Equal(t, "---\nsource: https://example.com/story/1\ntitle: テストの話\nfetched: \"2026-03-14\"\n---\n\n本文", got)
	})

	t.Run("quotes titles that would break yaml", func(t *testing.T) {
		t.Parallel()

		r := newReading()
		r.Title = "Part 1: the start"

		got, err := fs.FormatMarkdown(r, "x", fetched)

		require.NoError(t, err)
		assert.Contains(t, got, "title: 'Part 1: the start'\n")
	})
}

func TestWriter_WriteReading(t *testing.T) {
	t.Parallel()

	t.Run("writes html and successful downloads", func(t *testing.T) {
		t.Parallel()

		// Given a reading whose pdf export failed
		dir := t.TempDir()
		w := fs.NewWriter(dir, fs.WithClock(func() time.Time { return fetched }))

		// When writing it
		paths, err := w.WriteReading(context.Background(), newReading())

		// Then html, docx and md are written and the pdf is skipped
		require.NoError(t, err)
		assert.Equal(t, []string{
			filepath.Join(dir, "テストの話.html"),
			filepath.Join(dir, "テストの話.docx"),
			filepath.Join(dir, "テストの話.md"),
		}, paths)
		assert.NoFileExists(t, filepath.Join(dir, "テストの話.pdf"))

		docx, err := os.ReadFile(filepath.Join(dir, "テストの話.docx"))
		require.NoError(t, err)
		assert.Equal(t, "docx-bytes", string(docx))

		md, err := os.ReadFile(filepath.Join(dir, "テストの話.md"))
		require.NoError(t, err)
		assert.Contains(t, string(md), "source: https://example.com/story/1")
		assert.Contains(t, string(md), "\n---\n\n本文")
	})

	t.Run("creates the output directory", func(t *testing.T) {
		t.Parallel()

		dir := filepath.Join(t.TempDir(), "nested", "out")
		w := fs.NewWriter(dir)

		_, err := w.WriteReading(context.Background(), newReading())

		require.NoError(t, err)
		assert.FileExists(t, filepath.Join(dir, "テストの話.html"))
	})

	t.Run("leaves no temporary files", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		w := fs.NewWriter(dir)

		_, err := w.WriteReading(context.Background(), newReading())

		require.NoError(t, err)
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Len(t, entries, 3)
	})

	t.Run("names unnamed downloads from the title", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		r := &pagecut.Reading{
			Title:     "無題",
			Downloads: []pagecut.Download{{Format: "pdf", Data: []byte("%PDF-")}},
		}

		paths, err := fs.NewWriter(dir).WriteReading(context.Background(), r)

		require.NoError(t, err)
		assert.Equal(t, []string{filepath.Join(dir, "無題.pdf")}, paths)
	})

	t.Run("stops when the context is canceled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := fs.NewWriter(t.TempDir()).WriteReading(ctx, newReading())

		require.ErrorIs(t, err, context.Canceled)
	})

	t.Run("rejects nil reading", func(t *testing.T) {
		t.Parallel()

		_, err := fs.NewWriter(t.TempDir()).WriteReading(context.Background(), nil)

		assert.Equal(t, pagecut.EINVALID, pagecut.ErrorCode(err))
	})
}
