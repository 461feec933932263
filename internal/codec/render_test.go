package codec

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdf-toolbox/internal/testpdf"
	apperrors "pdf-toolbox/pkg/errors"
	"pdf-toolbox/pkg/logger"
)

func newTestRenderer() *FitzRenderer {
	return NewFitzRenderer(logger.NewLoggerWithWriter("error", io.Discard), 0)
}

func TestFitzRenderer_RenderAndText(t *testing.T) {
	dir := t.TempDir()
	path := testpdf.WriteFile(t, dir, "in.pdf", 2)

	doc, err := newTestRenderer().Open(path)
	require.NoError(t, err)
	defer doc.Close()

	require.Equal(t, 2, doc.PageCount())

	img, err := doc.Render(0, 72)
	require.NoError(t, err)
	assert.InDelta(t, 612, img.Bounds().Dx(), 2)
	assert.InDelta(t, 792, img.Bounds().Dy(), 2)

	text, err := doc.Text(1)
	require.NoError(t, err)
	assert.Contains(t, text, "Page 2")
}

func TestFitzRenderer_OpenBytes(t *testing.T) {
	doc, err := newTestRenderer().OpenBytes(testpdf.Build(3))
	require.NoError(t, err)
	defer doc.Close()
	assert.Equal(t, 3, doc.PageCount())
}

func TestFitzRenderer_Missing(t *testing.T) {
	_, err := newTestRenderer().Open(filepath.Join(t.TempDir(), "missing.pdf"))
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeFileNotFound))
}

func TestFitzRenderer_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.pdf")
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o644))
	_, err := newTestRenderer().Open(path)
	assert.Error(t, err)
}

func TestSanitizeText(t *testing.T) {
	assert.Equal(t, "a\tb\nc", sanitizeText("a\x00\tb\n\x01c"))
}

func TestFitzDocument_StalledAfterTimeout(t *testing.T) {
	doc, err := newTestRenderer().OpenBytes(testpdf.Build(2))
	require.NoError(t, err)
	fd, ok := doc.(*fitzDocument)
	require.True(t, ok)

	// A page that outlived its timeout leaves the handle in use elsewhere.
	fd.stalled = true

	_, err = fd.Text(0)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeCodec))
	_, err = fd.Render(0, 72)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeCodec))

	// Release is deferred to the extraction goroutines, none of which remain.
	assert.NoError(t, fd.Close())
}
