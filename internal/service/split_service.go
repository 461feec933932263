package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"pdf-toolbox/internal/domain"
	"pdf-toolbox/internal/pagerange"
	apperrors "pdf-toolbox/pkg/errors"
)

// SplitService divides one document into several.
type SplitService struct {
	codec  domain.DocumentCodec
	logger domain.Logger
}

func NewSplitService(codec domain.DocumentCodec, logger domain.Logger) *SplitService {
	return &SplitService{
		codec:  codec,
		logger: logger,
	}
}

type splitPart struct {
	name    string
	indices []int
}

// SplitByPageCount writes consecutive chunks of pagesPerFile pages as
// split_{first}-{last}.pdf. The last chunk may be shorter.
func (s *SplitService) SplitByPageCount(ctx context.Context, inputPath, outputDir string, pagesPerFile int) domain.OperationResult {
	if err := started(ctx); err != nil {
		return failure(s.logger, "Split not started", err, apperrors.ErrorTypeInternal)
	}
	if pagesPerFile < 1 {
		err := apperrors.NewInvalidArgumentError("pages per file must be at least 1", strconv.Itoa(pagesPerFile))
		return failure(s.logger, "Split rejected", err, apperrors.ErrorTypeInvalidArgument)
	}

	return s.split(inputPath, outputDir, func(pageCount int) []splitPart {
		var parts []splitPart
		for start := 0; start < pageCount; start += pagesPerFile {
			end := min(start+pagesPerFile, pageCount)
			parts = append(parts, splitPart{
				name:    fmt.Sprintf("split_%d-%d.pdf", start+1, end),
				indices: pagerange.All(end)[start:],
			})
		}
		return parts
	})
}

// SplitByPageCountString parses a textual page count and splits.
func (s *SplitService) SplitByPageCountString(ctx context.Context, inputPath, outputDir, pagesPerFile string) domain.OperationResult {
	n, err := strconv.Atoi(strings.TrimSpace(pagesPerFile))
	if err != nil {
		return failure(s.logger, "Split rejected",
			apperrors.NewInvalidArgumentError("pages per file is not a number", pagesPerFile),
			apperrors.ErrorTypeInvalidArgument)
	}
	return s.SplitByPageCount(ctx, inputPath, outputDir, n)
}

// SplitByRanges writes one file per expression, named range_{i}_{expr}.pdf.
// Every expression is parsed before anything is written. An expression that
// selects no page still yields a file without pages.
func (s *SplitService) SplitByRanges(ctx context.Context, inputPath, outputDir string, exprs []string) domain.OperationResult {
	if err := started(ctx); err != nil {
		return failure(s.logger, "Split not started", err, apperrors.ErrorTypeInternal)
	}
	if len(exprs) == 0 {
		return failure(s.logger, "Split rejected", apperrors.NewInvalidArgumentError("no page ranges given"), apperrors.ErrorTypeInvalidArgument)
	}

	resolved := make([][]int, len(exprs))
	for i, expr := range exprs {
		indices, err := pagerange.Parse(expr)
		if err != nil {
			return failure(s.logger, "Split rejected", err, apperrors.ErrorTypeInvalidRangeSyntax, "range", expr)
		}
		resolved[i] = indices
	}

	return s.split(inputPath, outputDir, func(pageCount int) []splitPart {
		parts := make([]splitPart, len(exprs))
		for i, expr := range exprs {
			parts[i] = splitPart{
				name:    fmt.Sprintf("range_%d_%s.pdf", i+1, expr),
				indices: pagerange.Clamp(resolved[i], pageCount),
			}
		}
		return parts
	})
}

// split opens inputPath once and writes every part. A part that cannot be
// written is logged and skipped; the result then reports a write failure
// listing the files that were written.
func (s *SplitService) split(inputPath, outputDir string, plan func(pageCount int) []splitPart) domain.OperationResult {
	if err := checkInputs(inputPath); err != nil {
		return failure(s.logger, "Split input missing", err, apperrors.ErrorTypeFileNotFound, "file", inputPath)
	}

	src, err := s.codec.Open(inputPath, "")
	if err != nil {
		return failure(s.logger, "Failed to open split input", err, apperrors.ErrorTypeCodec, "file", inputPath)
	}
	defer src.Close()

	parts := plan(src.PageCount())
	if err := ensureDir(outputDir); err != nil {
		return failure(s.logger, "Failed to create output directory", err, apperrors.ErrorTypeWrite, "dir", outputDir)
	}

	var outputs []string
	var firstErr error
	for _, part := range parts {
		path := filepath.Join(outputDir, part.name)
		if err := s.writePart(src, part.indices, path); err != nil {
			s.logger.Error("Failed to write split part", err, "file", path)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		outputs = append(outputs, path)
		s.logger.Debug("Wrote split part", "file", path, "pages", pagerange.Format(part.indices))
	}

	if firstErr != nil {
		res := domain.Failed(firstErr, apperrors.ErrorTypeWrite)
		res.Message = fmt.Sprintf("wrote %d of %d files: %s", len(outputs), len(parts), firstErr)
		res.Outputs = outputs
		return res
	}

	s.logger.Info("Split document", "file", inputPath, "pages", src.PageCount(), "files", len(outputs), "dir", outputDir)
	res := domain.Succeeded(fmt.Sprintf("split %s into %d files", filepath.Base(inputPath), len(outputs)), outputs...)
	res.Pages = src.PageCount()
	return res
}

func (s *SplitService) writePart(src domain.Document, indices []int, path string) error {
	out := s.codec.New()
	defer out.Close()
	if err := copyPages(out, src, indices); err != nil {
		return err
	}
	return out.WriteFile(path, domain.WriteOptions{})
}

// ExtractPages writes the given 1-based pages, in order, to outputPath. Page
// numbers outside the document are skipped.
func (s *SplitService) ExtractPages(ctx context.Context, inputPath, outputPath string, pages []int) domain.OperationResult {
	if err := started(ctx); err != nil {
		return failure(s.logger, "Extract not started", err, apperrors.ErrorTypeInternal)
	}
	if err := checkInputs(inputPath); err != nil {
		return failure(s.logger, "Extract input missing", err, apperrors.ErrorTypeFileNotFound, "file", inputPath)
	}

	src, err := s.codec.Open(inputPath, "")
	if err != nil {
		return failure(s.logger, "Failed to open extract input", err, apperrors.ErrorTypeCodec, "file", inputPath)
	}
	defer src.Close()

	indices := make([]int, 0, len(pages))
	for _, p := range pages {
		indices = append(indices, p-1)
	}
	indices = pagerange.Clamp(indices, src.PageCount())

	if err := s.writePart(src, indices, outputPath); err != nil {
		return failure(s.logger, "Failed to write extracted pages", err, apperrors.ErrorTypeWrite, "output", outputPath)
	}

	s.logger.Info("Extracted pages", "file", inputPath, "pages", pagerange.Format(indices), "output", outputPath)
	res := domain.Succeeded(fmt.Sprintf("extracted %d pages into %s", len(indices), outputPath), outputPath)
	res.Pages = len(indices)
	return res
}
