package slog_test

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/fwojciec/pagecut"
	"github.com/fwojciec/pagecut/mock"
	pcslog "github.com/fwojciec/pagecut/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingExporter_Export(t *testing.T) {
	t.Parallel()

	newInner := func(data []byte, err error) *mock.Exporter {
		return &mock.Exporter{
			FormatFn:      func() string { return "docx" },
			ContentTypeFn: func() string { return "application/test" },
			ExportFn:      func(*pagecut.RichDocument) ([]byte, error) { return data, err },
		}
	}

	t.Run("logs format and size", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		e := pcslog.NewLoggingExporter(newInner([]byte("12345"), nil), slog.New(slog.NewTextHandler(&buf, nil)))

		data, err := e.Export(&pagecut.RichDocument{Blocks: [][]pagecut.Run{{{Text: "a"}}, {{Text: "b"}}}})

		require.NoError(t, err)
		assert.Equal(t, "12345", string(data))
		assert.Equal(t, "docx", e.Format())
		assert.Equal(t, "application/test", e.ContentType())
		output := buf.String()
		assert.Contains(t, output, "msg=export")
		assert.Contains(t, output, "format=docx")
		assert.Contains(t, output, "blocks=2")
		assert.Contains(t, output, "bytes=5")
	})

	t.Run("logs error on failure", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		e := pcslog.NewLoggingExporter(newInner(nil, errors.New("disk full")), slog.New(slog.NewTextHandler(&buf, nil)))

		_, err := e.Export(&pagecut.RichDocument{})

		require.Error(t, err)
		assert.Contains(t, buf.String(), "err=\"disk full\"")
	})
}
