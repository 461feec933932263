package codec

import (
	"errors"
	"fmt"
	"image"
	"strings"
	"sync"
	"time"

	"github.com/gen2brain/go-fitz"

	"pdf-toolbox/internal/domain"
	apperrors "pdf-toolbox/pkg/errors"
)

const defaultPageTimeout = 90 * time.Second

// FitzRenderer implements domain.Renderer with MuPDF through go-fitz.
type FitzRenderer struct {
	logger      domain.Logger
	pageTimeout time.Duration
}

// NewFitzRenderer creates a renderer. A page whose text extraction exceeds
// pageTimeout yields an error for that page; zero selects 90 seconds.
func NewFitzRenderer(logger domain.Logger, pageTimeout time.Duration) *FitzRenderer {
	if pageTimeout <= 0 {
		pageTimeout = defaultPageTimeout
	}
	return &FitzRenderer{logger: logger, pageTimeout: pageTimeout}
}

// Open opens the document at path for rendering.
func (r *FitzRenderer) Open(path string) (domain.RasterDocument, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, r.classify(path, err)
	}
	return &fitzDocument{doc: doc, logger: r.logger, pageTimeout: r.pageTimeout}, nil
}

// OpenBytes opens an in-memory document, typically one that was decrypted first.
func (r *FitzRenderer) OpenBytes(data []byte) (domain.RasterDocument, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, r.classify("<memory>", err)
	}
	return &fitzDocument{doc: doc, logger: r.logger, pageTimeout: r.pageTimeout}, nil
}

func (r *FitzRenderer) classify(path string, err error) error {
	switch {
	case errors.Is(err, fitz.ErrNeedsPassword):
		return apperrors.NewWrongPasswordError(path, err)
	case errors.Is(err, fitz.ErrNoSuchFile):
		return apperrors.NewFileNotFoundError(path)
	}
	return apperrors.NewCodecError("failed to open document for rendering", err)
}

// fitzDocument is used by one engine call at a time. The MuPDF handle is
// released only after every extraction goroutine has returned: once a page
// times out the document is stalled, later calls fail fast and Close hands the
// release to the last goroutine.
type fitzDocument struct {
	doc         *fitz.Document
	logger      domain.Logger
	pageTimeout time.Duration

	pending sync.WaitGroup
	stalled bool
}

var errStalled = errors.New("document abandoned after a text extraction timeout")

func (d *fitzDocument) PageCount() int {
	return d.doc.NumPage()
}

func (d *fitzDocument) Render(index int, dpi float64) (image.Image, error) {
	if d.stalled {
		return nil, apperrors.NewCodecError(fmt.Sprintf("failed to render page %d", index+1), errStalled)
	}
	img, err := d.doc.ImageDPI(index, dpi)
	if err != nil {
		return nil, apperrors.NewCodecError(fmt.Sprintf("failed to render page %d", index+1), err)
	}
	return img, nil
}

// Text extracts the text of one page. MuPDF can hang on malformed content
// streams, so extraction is abandoned after the page timeout.
func (d *fitzDocument) Text(index int) (string, error) {
	type pageResult struct {
		text string
		err  error
	}

	if d.stalled {
		return "", apperrors.NewCodecError(fmt.Sprintf("failed to extract text from page %d", index+1), errStalled)
	}

	// Buffered so an abandoned goroutine can still deliver and exit.
	resultCh := make(chan pageResult, 1)
	// The handle outlives a timeout: Close waits on pending before freeing it.
	d.pending.Add(1)
	go func() {
		defer d.pending.Done()
		t, e := d.doc.Text(index)
		resultCh <- pageResult{text: t, err: e}
	}()

	select {
	case res := <-resultCh:
		if res.err != nil {
			return "", apperrors.NewCodecError(fmt.Sprintf("failed to extract text from page %d", index+1), res.err)
		}
		return sanitizeText(res.text), nil
	case <-time.After(d.pageTimeout):
		d.stalled = true
		d.logger.Warn("Page text extraction timed out", "page", index+1, "timeout_sec", int(d.pageTimeout.Seconds()))
		return "", apperrors.NewCodecError(fmt.Sprintf("text extraction of page %d timed out", index+1), nil)
	}
}

func (d *fitzDocument) Close() error {
	if d.stalled {
		go func() {
			d.pending.Wait()
			_ = d.doc.Close()
		}()
		return nil
	}
	return d.doc.Close()
}

// sanitizeText drops NUL and other control characters except tab, newline and
// carriage return.
func sanitizeText(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r < 0x20 && r != '\t' && r != '\n' && r != '\r' {
			continue
		}
		if r == 0x7F || (r >= 0xD800 && r <= 0xDFFF) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
