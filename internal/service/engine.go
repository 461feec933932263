package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"pdf-toolbox/internal/domain"
	apperrors "pdf-toolbox/pkg/errors"
)

// started rejects calls whose context is already done. Engine calls are not
// interrupted once they run.
func started(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return apperrors.NewInternalError("operation canceled", err)
	}
	return nil
}

// checkInputs verifies that every path exists before anything is opened.
func checkInputs(paths ...string) error {
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return apperrors.NewFileNotFoundError(p)
			}
			return apperrors.NewCodecError(fmt.Sprintf("cannot stat %s", p), err)
		}
		if info.IsDir() {
			return apperrors.NewInvalidArgumentError("input is a directory", p)
		}
	}
	return nil
}

func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperrors.NewWriteError(dir, err)
	}
	return nil
}

// failure logs err and turns it into a failed result.
func failure(logger domain.Logger, msg string, err error, fallback apperrors.ErrorType, fields ...interface{}) domain.OperationResult {
	logger.Error(msg, err, fields...)
	return domain.Failed(err, fallback)
}

// copyPages appends pages of src to dst in the given order.
func copyPages(dst, src domain.Document, indices []int) error {
	for _, i := range indices {
		if err := dst.AddPage(src, i); err != nil {
			return apperrors.NewCodecError(fmt.Sprintf("cannot copy page %d", i+1), err)
		}
	}
	return nil
}

func allPages(doc domain.Document) []int {
	indices := make([]int, doc.PageCount())
	for i := range indices {
		indices[i] = i
	}
	return indices
}

func closeAll(docs []domain.Document) {
	for _, d := range docs {
		_ = d.Close()
	}
}
