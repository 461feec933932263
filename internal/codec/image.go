package codec

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"pdf-toolbox/internal/domain"
	apperrors "pdf-toolbox/pkg/errors"
)

const defaultJPEGQuality = 90

// ImageCodec implements domain.ImageCodec with the standard image decoders
// plus golang.org/x/image, and packages images into documents with pdfcpu.
type ImageCodec struct {
	logger      domain.Logger
	jpegQuality int
}

// NewImageCodec creates an image codec.
func NewImageCodec(logger domain.Logger) *ImageCodec {
	return &ImageCodec{logger: logger, jpegQuality: defaultJPEGQuality}
}

// Probe decodes the header of the image at path.
func (c *ImageCodec) Probe(path string) (domain.ImageInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.ImageInfo{}, apperrors.NewFileNotFoundError(path)
		}
		return domain.ImageInfo{}, apperrors.NewCodecError("failed to open image", err)
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return domain.ImageInfo{}, apperrors.NewCodecError(fmt.Sprintf("unsupported image %s", filepath.Base(path)), err)
	}
	return domain.ImageInfo{Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}

// Encode writes img to w in the given format.
func (c *ImageCodec) Encode(w io.Writer, img image.Image, format domain.ImageFormat) error {
	var err error
	switch format {
	case domain.ImageFormatPNG:
		err = png.Encode(w, img)
	case domain.ImageFormatJPEG:
		err = jpeg.Encode(w, img, &jpeg.Options{Quality: c.jpegQuality})
	case domain.ImageFormatTIFF:
		err = tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	case domain.ImageFormatBMP:
		err = bmp.Encode(w, img)
	default:
		return fmt.Errorf("%s: %w", format, domain.ErrUnsupportedFormat)
	}
	if err != nil {
		return apperrors.NewCodecError(fmt.Sprintf("failed to encode %s image", format), err)
	}
	return nil
}

// ToDocument writes a document with one page per image, each page sized to
// its image. Formats pdfcpu cannot embed directly are re-encoded as PNG.
func (c *ImageCodec) ToDocument(paths []string, outputPath string) error {
	readers := make([]io.Reader, 0, len(paths))
	for _, path := range paths {
		r, err := c.embeddable(path)
		if err != nil {
			return err
		}
		readers = append(readers, r)
	}

	imp := pdfcpu.DefaultImportConfig()
	imp.Pos = types.Full

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	var buf bytes.Buffer
	if err := api.ImportImages(nil, &buf, readers, imp, conf); err != nil {
		return apperrors.NewCodecError("failed to build document from images", err)
	}
	if err := WriteFileAtomic(outputPath, buf.Bytes(), 0o644); err != nil {
		return apperrors.NewWriteError(outputPath, err)
	}

	c.logger.Debug("Wrote image document", "path", outputPath, "images", len(paths))
	return nil
}

func (c *ImageCodec) embeddable(path string) (io.Reader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperrors.NewFileNotFoundError(path)
		}
		return nil, apperrors.NewCodecError("failed to read image", err)
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, apperrors.NewCodecError(fmt.Sprintf("unsupported image %s", filepath.Base(path)), err)
	}

	switch format {
	case "png", "jpeg", "tiff", "webp":
		return bytes.NewReader(data), nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, apperrors.NewCodecError(fmt.Sprintf("failed to decode image %s", filepath.Base(path)), err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, apperrors.NewCodecError("failed to re-encode image", err)
	}
	c.logger.Debug("Re-encoded image as PNG", "path", path, "format", format)
	return &buf, nil
}
