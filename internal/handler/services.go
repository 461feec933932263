package handler

import (
	"context"

	"pdf-toolbox/internal/domain"
	"pdf-toolbox/internal/service"
)

// MergeEngine is the merge surface the handlers call.
type MergeEngine interface {
	MergeAll(ctx context.Context, paths []string, outputPath string) domain.OperationResult
	MergeOrdered(ctx context.Context, items []service.FileRange, outputPath string) domain.OperationResult
}

// SplitEngine is the split surface the handlers call.
type SplitEngine interface {
	SplitByPageCount(ctx context.Context, inputPath, outputDir string, pagesPerFile int) domain.OperationResult
	SplitByRanges(ctx context.Context, inputPath, outputDir string, exprs []string) domain.OperationResult
	ExtractPages(ctx context.Context, inputPath, outputPath string, pages []int) domain.OperationResult
}

// ConversionEngine is the conversion surface the handlers call.
type ConversionEngine interface {
	DocumentToImages(ctx context.Context, req service.ImageExportRequest) domain.OperationResult
	ImagesToDocument(ctx context.Context, imagePaths []string, outputPath string) domain.OperationResult
	DocumentToText(ctx context.Context, inputPath, outputPath, pageRange, password string) domain.OperationResult
	CompressDocument(ctx context.Context, inputPath, outputPath string, opts service.CompressOptions) domain.OperationResult
}

// SecurityEngine is the security surface the handlers call.
type SecurityEngine interface {
	Encrypt(ctx context.Context, inputPath, outputPath, ownerPassword, userPassword string) domain.OperationResult
	Decrypt(ctx context.Context, inputPath, outputPath, password string) domain.OperationResult
	RemovePassword(ctx context.Context, inputPath, outputPath, password string) domain.OperationResult
	IsEncrypted(ctx context.Context, inputPath string) bool
	EncryptionInfo(ctx context.Context, inputPath string) (*domain.EncryptionInfo, error)
}

// InfoEngine answers document questions.
type InfoEngine interface {
	Info(ctx context.Context, inputPath, password string) (*domain.DocumentInfo, error)
}

// JobRunner dispatches and tracks background operations.
type JobRunner interface {
	Submit(operation string, fn func(context.Context) domain.OperationResult) (*domain.Job, error)
	Get(ctx context.Context, id string) (*domain.Job, error)
	List(ctx context.Context, limit int) ([]*domain.Job, error)
}
