package service

import (
	"context"
	"fmt"
	"path/filepath"

	"pdf-toolbox/internal/domain"
	"pdf-toolbox/internal/pagerange"
	apperrors "pdf-toolbox/pkg/errors"
)

// FileRange selects pages of one input for an ordered merge. An empty Range
// selects every page.
type FileRange struct {
	Path  string `json:"path"`
	Range string `json:"range"`
}

// MergeService combines documents into one.
type MergeService struct {
	codec  domain.DocumentCodec
	logger domain.Logger
}

func NewMergeService(codec domain.DocumentCodec, logger domain.Logger) *MergeService {
	return &MergeService{
		codec:  codec,
		logger: logger,
	}
}

// MergeAll appends every page of every input, in order, to outputPath.
func (s *MergeService) MergeAll(ctx context.Context, paths []string, outputPath string) domain.OperationResult {
	items := make([]FileRange, len(paths))
	for i, p := range paths {
		items[i] = FileRange{Path: p}
	}
	return s.merge(ctx, "merge", items, outputPath)
}

// MergeOrdered appends the selected pages of each input in the order the
// ranges resolve, duplicates included.
func (s *MergeService) MergeOrdered(ctx context.Context, items []FileRange, outputPath string) domain.OperationResult {
	return s.merge(ctx, "merge_ordered", items, outputPath)
}

func (s *MergeService) merge(ctx context.Context, op string, items []FileRange, outputPath string) domain.OperationResult {
	if err := started(ctx); err != nil {
		return failure(s.logger, "Merge not started", err, apperrors.ErrorTypeInternal, "op", op)
	}
	if len(items) == 0 {
		return failure(s.logger, "Merge rejected", apperrors.NewInvalidArgumentError("no input files"), apperrors.ErrorTypeInvalidArgument, "op", op)
	}

	// Syntax errors surface before any file is touched.
	selections := make([][]int, len(items))
	paths := make([]string, len(items))
	for i, item := range items {
		paths[i] = item.Path
		if item.Range == "" {
			continue
		}
		indices, err := pagerange.Parse(item.Range)
		if err != nil {
			return failure(s.logger, "Merge rejected", err, apperrors.ErrorTypeInvalidRangeSyntax, "op", op, "file", item.Path)
		}
		selections[i] = indices
	}
	if err := checkInputs(paths...); err != nil {
		return failure(s.logger, "Merge input missing", err, apperrors.ErrorTypeFileNotFound, "op", op)
	}

	out := s.codec.New()
	defer out.Close()
	var sources []domain.Document
	defer func() { closeAll(sources) }()

	for i, item := range items {
		doc, err := s.codec.Open(item.Path, "")
		if err != nil {
			return failure(s.logger, "Failed to open merge input", err, apperrors.ErrorTypeCodec, "op", op, "file", item.Path)
		}
		sources = append(sources, doc)

		indices := allPages(doc)
		if selections[i] != nil {
			if err := checkBounds(selections[i], doc.PageCount(), item.Path); err != nil {
				return failure(s.logger, "Merge rejected", err, apperrors.ErrorTypeInvalidArgument, "op", op, "file", item.Path)
			}
			indices = selections[i]
		}
		if err := copyPages(out, doc, indices); err != nil {
			return failure(s.logger, "Failed to copy pages", err, apperrors.ErrorTypeCodec, "op", op, "file", item.Path)
		}
		s.logger.Debug("Merge input added", "op", op, "file", item.Path, "pages", pagerange.Format(indices))
	}

	if err := out.WriteFile(outputPath, domain.WriteOptions{}); err != nil {
		return failure(s.logger, "Failed to write merged document", err, apperrors.ErrorTypeWrite, "op", op, "output", outputPath)
	}

	s.logger.Info("Merged documents", "op", op, "inputs", len(items), "pages", out.PageCount(), "output", outputPath)
	res := domain.Succeeded(fmt.Sprintf("merged %d files into %s", len(items), outputPath), outputPath)
	res.Pages = out.PageCount()
	return res
}

// checkBounds rejects any selected page the document does not have.
func checkBounds(indices []int, pages int, path string) error {
	for _, i := range indices {
		if i < 0 || i >= pages {
			return apperrors.NewInvalidArgumentError(fmt.Sprintf("page %d out of range for %s (%d pages)", i+1, filepath.Base(path), pages))
		}
	}
	return nil
}
