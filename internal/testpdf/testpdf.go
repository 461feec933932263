// Package testpdf writes small, valid fixture documents and images for tests.
// Every page carries the text "Page N" so renderers and text extraction have
// something to find.
package testpdf

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/image/bmp"
)

// Size is a page size in points.
type Size struct {
	Width  float64
	Height float64
}

// Letter is the default page size.
var Letter = Size{Width: 612, Height: 792}

type options struct {
	sizes  []Size
	info   [][2]string
	rotate int
}

// Option customizes a fixture document.
type Option func(*options)

// WithTitle sets the Title entry of the information dictionary.
func WithTitle(title string) Option {
	return func(o *options) { o.info = append(o.info, [2]string{"Title", title}) }
}

// WithAuthor sets the Author entry of the information dictionary.
func WithAuthor(author string) Option {
	return func(o *options) { o.info = append(o.info, [2]string{"Author", author}) }
}

// WithSubject sets the Subject entry of the information dictionary.
func WithSubject(subject string) Option {
	return func(o *options) { o.info = append(o.info, [2]string{"Subject", subject}) }
}

// WithPageSizes gives page i the size sizes[i]; pages past the end use the
// last size.
func WithPageSizes(sizes ...Size) Option {
	return func(o *options) { o.sizes = sizes }
}

// WithRotation sets /Rotate on every page.
func WithRotation(degrees int) Option {
	return func(o *options) { o.rotate = degrees }
}

// Build serializes a document with the given number of pages.
func Build(pages int, opts ...Option) []byte {
	o := options{sizes: []Size{Letter}}
	for _, opt := range opts {
		opt(&o)
	}

	// 1 catalog, 2 page tree, 3 font, then a page and content stream per page.
	objects := make([]string, 3, 3+2*pages+1)
	kids := make([]string, pages)
	for i := 0; i < pages; i++ {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}
	objects[0] = "<< /Type /Catalog /Pages 2 0 R >>"
	objects[1] = fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), pages)
	objects[2] = "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>"

	for i := 0; i < pages; i++ {
		size := o.sizes[len(o.sizes)-1]
		if i < len(o.sizes) {
			size = o.sizes[i]
		}
		page := fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %s %s] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R",
			num(size.Width), num(size.Height), 5+2*i)
		if o.rotate != 0 {
			page += fmt.Sprintf(" /Rotate %d", o.rotate)
		}
		page += " >>"

		content := fmt.Sprintf("BT /F1 24 Tf 36 %s Td (Page %d) Tj ET", num(size.Height/2), i+1)
		stream := fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content)
		objects = append(objects, page, stream)
	}

	trailer := ""
	if len(o.info) > 0 {
		var b strings.Builder
		b.WriteString("<<")
		for _, kv := range o.info {
			fmt.Fprintf(&b, " /%s (%s)", kv[0], kv[1])
		}
		b.WriteString(" >>")
		objects = append(objects, b.String())
		trailer = fmt.Sprintf(" /Info %d 0 R", len(objects))
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n%\xE2\xE3\xCF\xD3\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R%s >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, trailer, xref)
	return buf.Bytes()
}

// WriteFile writes a fixture document into dir and returns its path.
func WriteFile(t testing.TB, dir, name string, pages int, opts ...Option) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, Build(pages, opts...), 0o644); err != nil {
		t.Fatalf("write fixture %s: %v", name, err)
	}
	return path
}

// Image returns a w x h image with a diagonal gradient.
func Image(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 255 / w), G: uint8(y * 255 / h), B: 128, A: 255})
		}
	}
	return img
}

// WriteImage writes a w x h image into dir, encoded by the file extension of
// name (.png, .jpg or .bmp), and returns its path.
func WriteImage(t testing.TB, dir, name string, w, h int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", name, err)
	}
	defer f.Close()

	img := Image(w, h)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png":
		err = png.Encode(f, img)
	case ".jpg", ".jpeg":
		err = jpeg.Encode(f, img, &jpeg.Options{Quality: 90})
	case ".bmp":
		err = bmp.Encode(f, img)
	default:
		t.Fatalf("unsupported fixture image extension %q", filepath.Ext(name))
	}
	if err != nil {
		t.Fatalf("encode %s: %v", name, err)
	}
	return path
}

func num(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%.2f", f)
}
