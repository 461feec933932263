package codec

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdf-toolbox/internal/domain"
	"pdf-toolbox/internal/testpdf"
	apperrors "pdf-toolbox/pkg/errors"
	"pdf-toolbox/pkg/logger"
)

func newTestCodec() *PDFCodec {
	return NewPDFCodec(logger.NewLoggerWithWriter("error", io.Discard), 256)
}

func TestOpen_PageCountAndGeometry(t *testing.T) {
	dir := t.TempDir()
	path := testpdf.WriteFile(t, dir, "in.pdf", 3,
		testpdf.WithPageSizes(testpdf.Letter, testpdf.Size{Width: 300, Height: 400}),
		testpdf.WithRotation(90))

	doc, err := newTestCodec().Open(path, "")
	require.NoError(t, err)
	defer doc.Close()

	assert.Equal(t, 3, doc.PageCount())
	assert.False(t, doc.Encrypted())

	first, err := doc.Page(0)
	require.NoError(t, err)
	assert.InDelta(t, 612, first.Width, 0.5)
	assert.InDelta(t, 792, first.Height, 0.5)
	assert.Equal(t, 90, first.Rotation)

	third, err := doc.Page(2)
	require.NoError(t, err)
	assert.InDelta(t, 300, third.Width, 0.5)
	assert.InDelta(t, 400, third.Height, 0.5)

	_, err = doc.Page(3)
	assert.ErrorIs(t, err, domain.ErrPageOutOfRange)
}

func TestOpen_Errors(t *testing.T) {
	dir := t.TempDir()
	codec := newTestCodec()

	_, err := codec.Open(filepath.Join(dir, "missing.pdf"), "")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeFileNotFound))

	garbage := filepath.Join(dir, "garbage.pdf")
	require.NoError(t, os.WriteFile(garbage, []byte("not a document"), 0o644))
	_, err = codec.Open(garbage, "")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeCodec))
}

func TestOpen_DamagedEncryptedFile(t *testing.T) {
	dir := t.TempDir()
	codec := newTestCodec()

	// References an encryption dictionary but has no readable xref.
	damaged := filepath.Join(dir, "damaged.pdf")
	data := "%PDF-1.7\n1 0 obj\n<< /Filter /Standard /V 5 /R 6 >>\nendobj\ntrailer\n<< /Encrypt 1 0 R >>\n%%EOF\n"
	require.NoError(t, os.WriteFile(damaged, []byte(data), 0o644))

	_, err := codec.Open(damaged, "secret")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeCodec), "got %v", err)

	_, err = codec.Decrypted(damaged, "secret")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeCodec), "got %v", err)
}

func TestWriteFile_AssemblesPagesInOrder(t *testing.T) {
	dir := t.TempDir()
	codec := newTestCodec()
	a := testpdf.WriteFile(t, dir, "a.pdf", 2, testpdf.WithPageSizes(testpdf.Size{Width: 100, Height: 100}))
	b := testpdf.WriteFile(t, dir, "b.pdf", 3, testpdf.WithPageSizes(testpdf.Size{Width: 200, Height: 200}))

	docA, err := codec.Open(a, "")
	require.NoError(t, err)
	defer docA.Close()
	docB, err := codec.Open(b, "")
	require.NoError(t, err)
	defer docB.Close()

	out := codec.New()
	require.NoError(t, out.AddPage(docB, 2))
	require.NoError(t, out.AddPage(docA, 0))
	require.NoError(t, out.AddPage(docB, 2))
	require.NoError(t, out.AddPage(docA, 1))
	assert.Equal(t, 4, out.PageCount())

	outPath := filepath.Join(dir, "out.pdf")
	require.NoError(t, out.WriteFile(outPath, domain.WriteOptions{}))
	require.NoError(t, out.Close())

	result, err := codec.Open(outPath, "")
	require.NoError(t, err)
	defer result.Close()
	require.Equal(t, 4, result.PageCount())

	wantWidths := []float64{200, 100, 200, 100}
	for i, w := range wantWidths {
		page, err := result.Page(i)
		require.NoError(t, err)
		assert.InDelta(t, w, page.Width, 0.5, "page %d", i+1)
	}
}

func TestWriteFile_SinglePage(t *testing.T) {
	dir := t.TempDir()
	codec := newTestCodec()
	src, err := codec.Open(testpdf.WriteFile(t, dir, "in.pdf", 4), "")
	require.NoError(t, err)
	defer src.Close()

	out := codec.New()
	require.NoError(t, out.AddPage(src, 3))
	outPath := filepath.Join(dir, "one.pdf")
	require.NoError(t, out.WriteFile(outPath, domain.WriteOptions{}))

	result, err := codec.Open(outPath, "")
	require.NoError(t, err)
	defer result.Close()
	assert.Equal(t, 1, result.PageCount())
}

func TestWriteFile_EmptyDocument(t *testing.T) {
	dir := t.TempDir()
	outPath := filepath.Join(dir, "empty.pdf")

	out := newTestCodec().New()
	out.SetMetadata(domain.Metadata{Title: "Nothing (yet)"})
	require.NoError(t, out.WriteFile(outPath, domain.WriteOptions{}))

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
	assert.Contains(t, string(data), "/Count 0")
	assert.Contains(t, string(data), `/Title (Nothing \(yet\))`)
}

func TestWriteFile_Metadata(t *testing.T) {
	dir := t.TempDir()
	codec := newTestCodec()
	src, err := codec.Open(testpdf.WriteFile(t, dir, "in.pdf", 2, testpdf.WithTitle("Source"), testpdf.WithAuthor("Ada")), "")
	require.NoError(t, err)
	defer src.Close()
	assert.Equal(t, "Source", src.Metadata().Title)
	assert.Equal(t, "Ada", src.Metadata().Author)

	out := codec.New()
	require.NoError(t, out.AddPage(src, 0))
	require.NoError(t, out.AddPage(src, 1))
	out.SetMetadata(src.Metadata())
	outPath := filepath.Join(dir, "out.pdf")
	require.NoError(t, out.WriteFile(outPath, domain.WriteOptions{}))

	result, err := codec.Open(outPath, "")
	require.NoError(t, err)
	defer result.Close()
	assert.Equal(t, "Source", result.Metadata().Title)
	assert.Equal(t, "Ada", result.Metadata().Author)
}

func TestWriteFile_EncryptAndInspect(t *testing.T) {
	dir := t.TempDir()
	codec := newTestCodec()
	src, err := codec.Open(testpdf.WriteFile(t, dir, "in.pdf", 2), "")
	require.NoError(t, err)
	defer src.Close()

	out := codec.New()
	require.NoError(t, out.AddPage(src, 0))
	require.NoError(t, out.AddPage(src, 1))
	locked := filepath.Join(dir, "locked.pdf")
	require.NoError(t, out.WriteFile(locked, domain.WriteOptions{OwnerPassword: "owner", UserPassword: "user"}))

	info, err := codec.Inspect(locked)
	require.NoError(t, err)
	assert.True(t, info.Encrypted)
	assert.Equal(t, "AES-256", info.Method)
	assert.NotEmpty(t, info.FileID)

	_, err = codec.Open(locked, "wrong")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeWrongPassword))

	unlocked, err := codec.Open(locked, "user")
	require.NoError(t, err)
	defer unlocked.Close()
	assert.True(t, unlocked.Encrypted())
	assert.Equal(t, 2, unlocked.PageCount())

	plain, err := codec.Decrypted(locked, "owner")
	require.NoError(t, err)
	_, found := encryptRef(plain)
	assert.False(t, found)

	_, err = codec.Decrypted(locked, "wrong")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeWrongPassword))
}

func TestInspect_Unencrypted(t *testing.T) {
	dir := t.TempDir()
	info, err := newTestCodec().Inspect(testpdf.WriteFile(t, dir, "in.pdf", 1))
	require.NoError(t, err)
	assert.False(t, info.Encrypted)
	assert.Empty(t, info.Method)
}

func TestAddPage_ForeignDocument(t *testing.T) {
	out := newTestCodec().New()
	err := out.AddPage(foreignDocument{}, 0)
	assert.ErrorIs(t, err, domain.ErrForeignDocument)
}

func TestEncryptionConfiguration_KeyLength(t *testing.T) {
	codec := newTestCodec()
	for _, kl := range []int{40, 128, 256} {
		_, err := codec.encryptionConfiguration(domain.WriteOptions{OwnerPassword: "o", KeyLength: kl})
		assert.NoError(t, err, "key length %d", kl)
	}
	_, err := codec.encryptionConfiguration(domain.WriteOptions{OwnerPassword: "o", KeyLength: 64})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInvalidArgument))
}

type foreignDocument struct{ domain.Document }

func (foreignDocument) PageCount() int { return 1 }
