package mock_test

import (
	"context"
	"testing"

	"github.com/fwojciec/pagecut"
	"github.com/fwojciec/pagecut/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadingWriter_WriteReading(t *testing.T) {
	t.Parallel()

	t.Run("delegates to WriteReadingFn", func(t *testing.T) {
		t.Parallel()

		var calledWith *pagecut.Reading
		w := &mock.ReadingWriter{
			WriteReadingFn: func(_ context.Context, r *pagecut.Reading) ([]string, error) {
				calledWith = r
				return []string{"story.html"}, nil
			},
		}

		reading := &pagecut.Reading{URL: "https://example.com/story", Title: "Story"}

		paths, err := w.WriteReading(context.Background(), reading)

		require.NoError(t, err)
		assert.Equal(t, []string{"story.html"}, paths)
		assert.Equal(t, reading, calledWith)
	})
}

func TestExporter_Export(t *testing.T) {
	t.Parallel()

	e := &mock.Exporter{
		FormatFn:      func() string { return "docx" },
		ContentTypeFn: func() string { return "application/octet-stream" },
		ExportFn: func(doc *pagecut.RichDocument) ([]byte, error) {
			return []byte(doc.PlainTitle()), nil
		},
	}

	data, err := e.Export(&pagecut.RichDocument{Title: []pagecut.Run{{Text: "T"}}})

	require.NoError(t, err)
	assert.Equal(t, "T", string(data))
	assert.Equal(t, "docx", e.Format())
}
