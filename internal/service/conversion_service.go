package service

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"pdf-toolbox/internal/codec"
	"pdf-toolbox/internal/domain"
	"pdf-toolbox/internal/pagerange"
	apperrors "pdf-toolbox/pkg/errors"
)

const (
	defaultQuality      = 85
	defaultImageQuality = 70
)

// ImageExportRequest describes a document-to-images conversion. Format is one
// of png, jpeg, jpg, tiff or bmp and also names the file extension. An empty
// PageRange exports every page.
type ImageExportRequest struct {
	InputPath string
	OutputDir string
	Format    string
	DPI       float64
	PageRange string
	Password  string
}

// CompressOptions are recorded with the compressed output.
type CompressOptions struct {
	Quality      int
	ImageQuality int
}

// ConversionService converts between documents, images and text.
type ConversionService struct {
	codec    domain.DocumentCodec
	renderer domain.Renderer
	images   domain.ImageCodec
	logger   domain.Logger
}

func NewConversionService(
	codec domain.DocumentCodec,
	renderer domain.Renderer,
	images domain.ImageCodec,
	logger domain.Logger,
) *ConversionService {
	return &ConversionService{
		codec:    codec,
		renderer: renderer,
		images:   images,
		logger:   logger,
	}
}

// DocumentToImages renders the selected pages to page_{nnn}.{ext} in the
// output directory. A page that fails to render aborts the call; files
// already written stay.
func (s *ConversionService) DocumentToImages(ctx context.Context, req ImageExportRequest) domain.OperationResult {
	if err := started(ctx); err != nil {
		return failure(s.logger, "Image export not started", err, apperrors.ErrorTypeInternal)
	}

	format, ok := domain.ParseImageFormat(req.Format)
	if !ok {
		err := apperrors.NewInvalidArgumentError("unsupported image format", req.Format)
		return failure(s.logger, "Image export rejected", err, apperrors.ErrorTypeInvalidArgument)
	}
	if req.DPI <= 0 {
		err := apperrors.NewInvalidArgumentError("dpi must be positive", fmt.Sprint(req.DPI))
		return failure(s.logger, "Image export rejected", err, apperrors.ErrorTypeInvalidArgument)
	}
	ext := strings.ToLower(strings.TrimSpace(req.Format))

	selected, err := parseOptionalRange(req.PageRange)
	if err != nil {
		return failure(s.logger, "Image export rejected", err, apperrors.ErrorTypeInvalidRangeSyntax, "range", req.PageRange)
	}
	if err := checkInputs(req.InputPath); err != nil {
		return failure(s.logger, "Image export input missing", err, apperrors.ErrorTypeFileNotFound, "file", req.InputPath)
	}

	doc, err := s.openRaster(req.InputPath, req.Password)
	if err != nil {
		return failure(s.logger, "Failed to open document for rendering", err, apperrors.ErrorTypeCodec, "file", req.InputPath)
	}
	defer doc.Close()

	indices := pagerange.All(doc.PageCount())
	if selected != nil {
		indices = pagerange.SortedSet(pagerange.Clamp(selected, doc.PageCount()))
	}

	if err := ensureDir(req.OutputDir); err != nil {
		return failure(s.logger, "Failed to create output directory", err, apperrors.ErrorTypeWrite, "dir", req.OutputDir)
	}

	var outputs []string
	for _, i := range indices {
		path := filepath.Join(req.OutputDir, fmt.Sprintf("page_%03d.%s", i+1, ext))
		if err := s.renderPage(doc, i, req.DPI, format, path); err != nil {
			res := failure(s.logger, "Failed to export page", err, apperrors.ErrorTypeCodec, "page", i+1, "file", req.InputPath)
			res.Outputs = outputs
			return res
		}
		outputs = append(outputs, path)
	}

	s.logger.Info("Exported pages as images", "file", req.InputPath, "format", ext, "dpi", req.DPI, "images", len(outputs))
	res := domain.Succeeded(fmt.Sprintf("exported %d pages as %s", len(outputs), ext), outputs...)
	res.Pages = len(outputs)
	return res
}

func (s *ConversionService) renderPage(doc domain.RasterDocument, index int, dpi float64, format domain.ImageFormat, path string) error {
	img, err := doc.Render(index, dpi)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := s.images.Encode(&buf, img, format); err != nil {
		return err
	}
	if err := codec.WriteFileAtomic(path, buf.Bytes(), 0o644); err != nil {
		return apperrors.NewWriteError(path, err)
	}
	return nil
}

// ImagesToDocument writes one page per image, in order, each page sized to
// the image in points.
func (s *ConversionService) ImagesToDocument(ctx context.Context, imagePaths []string, outputPath string) domain.OperationResult {
	if err := started(ctx); err != nil {
		return failure(s.logger, "Image import not started", err, apperrors.ErrorTypeInternal)
	}
	if len(imagePaths) == 0 {
		return failure(s.logger, "Image import rejected", apperrors.NewInvalidArgumentError("no images given"), apperrors.ErrorTypeInvalidArgument)
	}
	if err := checkInputs(imagePaths...); err != nil {
		return failure(s.logger, "Image import input missing", err, apperrors.ErrorTypeFileNotFound)
	}

	if err := s.images.ToDocument(imagePaths, outputPath); err != nil {
		return failure(s.logger, "Failed to build document from images", err, apperrors.ErrorTypeCodec, "output", outputPath)
	}

	s.logger.Info("Built document from images", "images", len(imagePaths), "output", outputPath)
	res := domain.Succeeded(fmt.Sprintf("converted %d images into %s", len(imagePaths), outputPath), outputPath)
	res.Pages = len(imagePaths)
	return res
}

// DocumentToText writes the text of the selected pages to outputPath. Pages
// are written once each in ascending order, each preceded by a
// "=== Page N ===" header. A page whose text cannot be extracted fails the
// export and nothing is written.
func (s *ConversionService) DocumentToText(ctx context.Context, inputPath, outputPath, pageRange, password string) domain.OperationResult {
	if err := started(ctx); err != nil {
		return failure(s.logger, "Text export not started", err, apperrors.ErrorTypeInternal)
	}

	selected, err := parseOptionalRange(pageRange)
	if err != nil {
		return failure(s.logger, "Text export rejected", err, apperrors.ErrorTypeInvalidRangeSyntax, "range", pageRange)
	}
	if err := checkInputs(inputPath); err != nil {
		return failure(s.logger, "Text export input missing", err, apperrors.ErrorTypeFileNotFound, "file", inputPath)
	}

	doc, err := s.openRaster(inputPath, password)
	if err != nil {
		return failure(s.logger, "Failed to open document for text export", err, apperrors.ErrorTypeCodec, "file", inputPath)
	}
	defer doc.Close()

	indices := pagerange.All(doc.PageCount())
	if selected != nil {
		indices = pagerange.SortedSet(pagerange.Clamp(selected, doc.PageCount()))
	}

	var b strings.Builder
	for _, i := range indices {
		text, err := doc.Text(i)
		if err != nil {
			return failure(s.logger, "Failed to extract page text", err, apperrors.ErrorTypeCodec, "page", i+1, "file", inputPath)
		}
		fmt.Fprintf(&b, "=== Page %d ===\n%s\n\n", i+1, text)
	}

	if err := codec.WriteFileAtomic(outputPath, []byte(b.String()), 0o644); err != nil {
		return failure(s.logger, "Failed to write text", apperrors.NewWriteError(outputPath, err), apperrors.ErrorTypeWrite)
	}

	s.logger.Info("Exported text", "file", inputPath, "pages", len(indices), "output", outputPath)
	res := domain.Succeeded(fmt.Sprintf("exported text of %d pages into %s", len(indices), outputPath), outputPath)
	res.Pages = len(indices)
	return res
}

// CompressDocument rebuilds the document page by page and writes it with
// object and cross-reference streams.
func (s *ConversionService) CompressDocument(ctx context.Context, inputPath, outputPath string, opts CompressOptions) domain.OperationResult {
	if err := started(ctx); err != nil {
		return failure(s.logger, "Compression not started", err, apperrors.ErrorTypeInternal)
	}
	if opts.Quality == 0 {
		opts.Quality = defaultQuality
	}
	if opts.ImageQuality == 0 {
		opts.ImageQuality = defaultImageQuality
	}
	if opts.Quality < 1 || opts.Quality > 100 || opts.ImageQuality < 1 || opts.ImageQuality > 100 {
		err := apperrors.NewInvalidArgumentError("quality must be between 1 and 100",
			fmt.Sprintf("quality=%d image_quality=%d", opts.Quality, opts.ImageQuality))
		return failure(s.logger, "Compression rejected", err, apperrors.ErrorTypeInvalidArgument)
	}
	if err := checkInputs(inputPath); err != nil {
		return failure(s.logger, "Compression input missing", err, apperrors.ErrorTypeFileNotFound, "file", inputPath)
	}

	src, err := s.codec.Open(inputPath, "")
	if err != nil {
		return failure(s.logger, "Failed to open document for compression", err, apperrors.ErrorTypeCodec, "file", inputPath)
	}
	defer src.Close()

	out := s.codec.New()
	defer out.Close()
	if err := copyPages(out, src, allPages(src)); err != nil {
		return failure(s.logger, "Failed to copy pages", err, apperrors.ErrorTypeCodec, "file", inputPath)
	}
	out.SetMetadata(src.Metadata())

	writeOpts := domain.WriteOptions{Compress: true, Quality: opts.Quality, ImageQuality: opts.ImageQuality}
	if err := out.WriteFile(outputPath, writeOpts); err != nil {
		return failure(s.logger, "Failed to write compressed document", err, apperrors.ErrorTypeWrite, "output", outputPath)
	}

	before, after := fileSize(inputPath), fileSize(outputPath)
	s.logger.Info("Compressed document", "file", inputPath, "before", before, "after", after, "quality", opts.Quality, "image_quality", opts.ImageQuality)

	msg := fmt.Sprintf("compressed %s: %d -> %d bytes", filepath.Base(inputPath), before, after)
	if before > 0 {
		msg += fmt.Sprintf(" (%.1f%%)", float64(before-after)*100/float64(before))
	}
	res := domain.Succeeded(msg, outputPath)
	res.Pages = out.PageCount()
	return res
}

// openRaster opens a document for rendering. With a password the document is
// decrypted in memory first.
func (s *ConversionService) openRaster(path, password string) (domain.RasterDocument, error) {
	if password == "" {
		return s.renderer.Open(path)
	}
	data, err := s.codec.Decrypted(path, password)
	if err != nil {
		return nil, err
	}
	return s.renderer.OpenBytes(data)
}

// parseOptionalRange returns nil for an empty expression.
func parseOptionalRange(expr string) ([]int, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, nil
	}
	return pagerange.Parse(expr)
}

func fileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}
