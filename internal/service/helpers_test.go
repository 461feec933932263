package service

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"pdf-toolbox/internal/codec"
	"pdf-toolbox/internal/domain"
	"pdf-toolbox/pkg/logger"
)

func quietLogger() domain.Logger {
	return logger.NewLoggerWithWriter("error", io.Discard)
}

func newCodec() *codec.PDFCodec {
	return codec.NewPDFCodec(quietLogger(), 256)
}

// pageWidths opens path and returns the width of every page.
func pageWidths(t *testing.T, path string) []float64 {
	t.Helper()
	doc, err := newCodec().Open(path, "")
	require.NoError(t, err)
	defer doc.Close()

	widths := make([]float64, doc.PageCount())
	for i := range widths {
		page, err := doc.Page(i)
		require.NoError(t, err)
		widths[i] = page.Width
	}
	return widths
}

func pageCount(t *testing.T, path, password string) int {
	t.Helper()
	doc, err := newCodec().Open(path, password)
	require.NoError(t, err)
	defer doc.Close()
	return doc.PageCount()
}

func requireNoFile(t *testing.T, path string) {
	t.Helper()
	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err), "expected %s not to exist", filepath.Base(path))
}

func requireWidths(t *testing.T, want, got []float64) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		require.InDelta(t, want[i], got[i], 0.5, "page %d", i+1)
	}
}
