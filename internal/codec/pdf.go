// Package codec adapts the third-party document and image libraries to the
// capabilities the manipulation engines depend on.
//
// PDFCodec is backed by pdfcpu: documents are read, validated and kept in
// memory, output documents are assembled from single-page extracts that are
// merged in order when written.
package codec

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"pdf-toolbox/internal/domain"
	apperrors "pdf-toolbox/pkg/errors"
)

const defaultKeyLength = 256

// PDFCodec implements domain.DocumentCodec with pdfcpu.
type PDFCodec struct {
	logger    domain.Logger
	keyLength int
}

// NewPDFCodec creates a codec. keyLength is the default encryption key length
// (40, 128 or 256) used when WriteOptions does not set one.
func NewPDFCodec(logger domain.Logger, keyLength int) *PDFCodec {
	// pdfcpu would otherwise create a config dir in the user's home.
	api.DisableConfigDir()
	if keyLength == 0 {
		keyLength = defaultKeyLength
	}
	return &PDFCodec{logger: logger, keyLength: keyLength}
}

func (c *PDFCodec) configuration(password string) *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	conf.UserPW = password
	conf.OwnerPW = password
	return conf
}

// Open reads and validates the document at path. password is ignored for
// unencrypted documents.
func (c *PDFCodec) Open(path string, password string) (domain.Document, error) {
	data, err := readSource(path)
	if err != nil {
		return nil, err
	}

	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), c.configuration(password))
	if err != nil {
		if isWrongPassword(err) {
			return nil, apperrors.NewWrongPasswordError(path, err)
		}
		return nil, apperrors.NewCodecError(fmt.Sprintf("cannot open %s", filepath.Base(path)), err)
	}

	c.logger.Debug("Opened document", "path", path, "pages", ctx.PageCount, "encrypted", ctx.Encrypt != nil)
	return &pdfDocument{
		codec:     c,
		ctx:       ctx,
		encrypted: ctx.Encrypt != nil,
		meta:      metadataOf(ctx),
		extracted: make(map[int][]byte),
	}, nil
}

// New returns an empty output document.
func (c *PDFCodec) New() domain.Document {
	return &pdfDocument{codec: c}
}

// Inspect reports whether the document is encrypted. Documents that need a
// user password are recognized from their trailer without decrypting them.
func (c *PDFCodec) Inspect(path string) (*domain.EncryptionInfo, error) {
	data, err := readSource(path)
	if err != nil {
		return nil, err
	}

	ctx, err := api.ReadContext(bytes.NewReader(data), c.configuration(""))
	if err != nil {
		if _, encrypted := encryptRef(data); !encrypted {
			return nil, apperrors.NewCodecError(fmt.Sprintf("cannot read %s", filepath.Base(path)), err)
		}
		method, fileID := probeEncryption(data)
		return &domain.EncryptionInfo{Encrypted: true, Method: method, FileID: fileID}, nil
	}

	if ctx.Encrypt == nil {
		return &domain.EncryptionInfo{Encrypted: false}, nil
	}

	info := &domain.EncryptionInfo{Encrypted: true}
	// V4 handlers name their cipher in the crypt filter, which the raw probe reads.
	info.Method, info.FileID = probeEncryption(data)
	if ctx.E != nil && ctx.E.V != 4 {
		info.Method = encryptionMethod(ctx.E.V, ctx.E.L, false)
	}
	if ctx.E != nil && len(ctx.E.ID) > 0 {
		info.FileID = hex.EncodeToString(ctx.E.ID)
	}
	if err := api.ValidateContext(ctx); err == nil {
		meta := metadataOf(ctx)
		info.Metadata = &meta
	}
	return info, nil
}

// Decrypted returns the document bytes with encryption removed. Unencrypted
// documents are returned unchanged.
func (c *PDFCodec) Decrypted(path string, password string) ([]byte, error) {
	data, err := readSource(path)
	if err != nil {
		return nil, err
	}
	if _, encrypted := encryptRef(data); !encrypted {
		return data, nil
	}

	var buf bytes.Buffer
	if err := api.Decrypt(bytes.NewReader(data), &buf, c.configuration(password)); err != nil {
		if isWrongPassword(err) {
			return nil, apperrors.NewWrongPasswordError(path, err)
		}
		return nil, apperrors.NewCodecError(fmt.Sprintf("cannot decrypt %s", filepath.Base(path)), err)
	}
	return buf.Bytes(), nil
}

// isWrongPassword separates authentication failures from damaged files.
func isWrongPassword(err error) bool {
	return errors.Is(err, pdfcpu.ErrWrongPassword)
}

func readSource(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperrors.NewFileNotFoundError(path)
		}
		return nil, apperrors.NewCodecError(fmt.Sprintf("cannot read %s", filepath.Base(path)), err)
	}
	return data, nil
}

type pageRef struct {
	src   *pdfDocument
	index int
}

// pdfDocument is either an opened source (ctx set) or an output under
// construction (refs set).
type pdfDocument struct {
	codec     *PDFCodec
	ctx       *model.Context
	encrypted bool
	meta      domain.Metadata
	refs      []pageRef
	extracted map[int][]byte
	closed    bool
}

func (d *pdfDocument) PageCount() int {
	if d.ctx != nil {
		return d.ctx.PageCount
	}
	return len(d.refs)
}

func (d *pdfDocument) Page(index int) (domain.Page, error) {
	if d.closed {
		return domain.Page{}, domain.ErrDocumentClosed
	}
	if index < 0 || index >= d.PageCount() {
		return domain.Page{}, fmt.Errorf("page %d: %w", index+1, domain.ErrPageOutOfRange)
	}
	if d.ctx == nil {
		ref := d.refs[index]
		page, err := ref.src.Page(ref.index)
		page.Index = index
		return page, err
	}

	dims, err := d.ctx.PageDims()
	if err != nil {
		return domain.Page{}, apperrors.NewCodecError("cannot read page dimensions", err)
	}
	page := domain.Page{Index: index}
	if index < len(dims) {
		page.Width = dims[index].Width
		page.Height = dims[index].Height
	}
	if _, _, inh, err := d.ctx.PageDict(index+1, false); err == nil && inh != nil {
		page.Rotation = inh.Rotate
	}
	return page, nil
}

func (d *pdfDocument) AddPage(src domain.Document, index int) error {
	if d.closed {
		return domain.ErrDocumentClosed
	}
	source, ok := src.(*pdfDocument)
	if !ok {
		return domain.ErrForeignDocument
	}
	if index < 0 || index >= source.PageCount() {
		return fmt.Errorf("page %d: %w", index+1, domain.ErrPageOutOfRange)
	}
	if source.ctx == nil {
		d.refs = append(d.refs, source.refs[index])
		return nil
	}
	d.refs = append(d.refs, pageRef{src: source, index: index})
	return nil
}

func (d *pdfDocument) Metadata() domain.Metadata { return d.meta }

func (d *pdfDocument) SetMetadata(meta domain.Metadata) { d.meta = meta }

func (d *pdfDocument) Encrypted() bool { return d.encrypted }

func (d *pdfDocument) WriteFile(path string, opts domain.WriteOptions) error {
	if d.closed {
		return domain.ErrDocumentClosed
	}
	if err := opts.Validate(); err != nil {
		return apperrors.NewInvalidArgumentError("invalid write options", err.Error())
	}

	data, err := d.serialize(opts)
	if err != nil {
		return err
	}
	if err := WriteFileAtomic(path, data, 0o644); err != nil {
		return apperrors.NewWriteError(path, err)
	}

	d.codec.logger.Debug("Wrote document", "path", path, "pages", d.PageCount(), "bytes", len(data))
	return nil
}

func (d *pdfDocument) Close() error {
	d.closed = true
	d.ctx = nil
	d.refs = nil
	d.extracted = nil
	return nil
}

// serialize assembles the pages and applies metadata, compression and
// encryption, in that order.
func (d *pdfDocument) serialize(opts domain.WriteOptions) ([]byte, error) {
	refs := d.refs
	if d.ctx != nil {
		refs = make([]pageRef, d.ctx.PageCount)
		for i := range refs {
			refs[i] = pageRef{src: d, index: i}
		}
	}

	if len(refs) == 0 {
		return emptyDocument(d.meta), nil
	}

	data, err := mergePages(refs, d.codec.configuration(""))
	if err != nil {
		return nil, err
	}

	if !d.meta.IsZero() {
		if data, err = withMetadata(data, d.meta, d.codec.configuration("")); err != nil {
			return nil, apperrors.NewCodecError("cannot write document metadata", err)
		}
	}

	if opts.Compress {
		conf := d.codec.configuration("")
		conf.WriteObjectStream = true
		conf.WriteXRefStream = true
		var buf bytes.Buffer
		if err := api.Optimize(bytes.NewReader(data), &buf, conf); err != nil {
			return nil, apperrors.NewCodecError("cannot compress document", err)
		}
		data = buf.Bytes()
	}

	if opts.Encrypt() {
		conf, err := d.codec.encryptionConfiguration(opts)
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		if err := api.Encrypt(bytes.NewReader(data), &buf, conf); err != nil {
			return nil, apperrors.NewCodecError("cannot encrypt document", err)
		}
		data = buf.Bytes()
	}

	return data, nil
}

func (c *PDFCodec) encryptionConfiguration(opts domain.WriteOptions) (*model.Configuration, error) {
	keyLength := opts.KeyLength
	if keyLength == 0 {
		keyLength = c.keyLength
	}

	var conf *model.Configuration
	switch keyLength {
	case 40:
		conf = model.NewRC4Configuration(opts.UserPassword, opts.OwnerPassword, 40)
	case 128, 256:
		conf = model.NewAESConfiguration(opts.UserPassword, opts.OwnerPassword, keyLength)
	default:
		return nil, apperrors.NewInvalidArgumentError("unsupported encryption key length", fmt.Sprint(keyLength))
	}
	conf.ValidationMode = model.ValidationRelaxed
	return conf, nil
}

// mergePages extracts every referenced page as a single-page PDF and merges
// them in order. Each source page is extracted once.
func mergePages(refs []pageRef, conf *model.Configuration) ([]byte, error) {
	readers := make([]io.ReadSeeker, 0, len(refs))
	for _, ref := range refs {
		page, err := ref.src.extract(ref.index)
		if err != nil {
			return nil, err
		}
		readers = append(readers, bytes.NewReader(page))
	}

	if len(readers) == 1 {
		return refs[0].src.extracted[refs[0].index], nil
	}

	var buf bytes.Buffer
	if err := api.MergeRaw(readers, &buf, false, conf); err != nil {
		return nil, apperrors.NewCodecError("cannot merge pages", err)
	}
	return buf.Bytes(), nil
}

func (d *pdfDocument) extract(index int) ([]byte, error) {
	if d.closed || d.ctx == nil {
		return nil, domain.ErrDocumentClosed
	}
	if page, ok := d.extracted[index]; ok {
		return page, nil
	}

	r, err := api.ExtractPage(d.ctx, index+1)
	if err != nil {
		return nil, apperrors.NewCodecError(fmt.Sprintf("cannot extract page %d", index+1), err)
	}
	page, err := io.ReadAll(r)
	if err != nil {
		return nil, apperrors.NewCodecError(fmt.Sprintf("cannot extract page %d", index+1), err)
	}
	d.extracted[index] = page
	return page, nil
}

func metadataOf(ctx *model.Context) domain.Metadata {
	return domain.Metadata{
		Title:        ctx.XRefTable.Title,
		Author:       ctx.XRefTable.Author,
		Subject:      ctx.XRefTable.Subject,
		Keywords:     ctx.XRefTable.Keywords,
		Creator:      ctx.XRefTable.Creator,
		Producer:     ctx.XRefTable.Producer,
		CreationDate: ctx.XRefTable.CreationDate,
		ModDate:      ctx.XRefTable.ModDate,
	}
}

// encryptionMethod names a standard security handler configuration.
func encryptionMethod(v, length int, aes bool) string {
	switch {
	case v == 5:
		return "AES-256"
	case v == 4 && aes:
		return "AES-128"
	case v == 4:
		return "RC4-128"
	case v == 2 || v == 3:
		if length == 0 {
			length = 40
		}
		return fmt.Sprintf("RC4-%d", length)
	case v == 1:
		return "RC4-40"
	}
	return fmt.Sprintf("Standard V%d", v)
}
