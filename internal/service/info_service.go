package service

import (
	"context"
	"os"

	"pdf-toolbox/internal/domain"
	apperrors "pdf-toolbox/pkg/errors"
)

// InfoService answers read-only questions about documents.
type InfoService struct {
	codec  domain.DocumentCodec
	logger domain.Logger
}

func NewInfoService(codec domain.DocumentCodec, logger domain.Logger) *InfoService {
	return &InfoService{
		codec:  codec,
		logger: logger,
	}
}

// Info returns page count, size, metadata and per-page geometry.
func (s *InfoService) Info(ctx context.Context, inputPath, password string) (*domain.DocumentInfo, error) {
	if err := started(ctx); err != nil {
		return nil, err
	}
	stat, err := os.Stat(inputPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewFileNotFoundError(inputPath)
		}
		return nil, apperrors.NewCodecError("cannot stat document", err)
	}

	doc, err := s.codec.Open(inputPath, password)
	if err != nil {
		s.logger.Error("Failed to open document for info", err, "file", inputPath)
		return nil, err
	}
	defer doc.Close()

	info := &domain.DocumentInfo{
		Path:      inputPath,
		PageCount: doc.PageCount(),
		FileSize:  stat.Size(),
		Encrypted: doc.Encrypted(),
		Metadata:  doc.Metadata(),
		Pages:     make([]domain.Page, 0, doc.PageCount()),
	}
	for i := 0; i < doc.PageCount(); i++ {
		page, err := doc.Page(i)
		if err != nil {
			return nil, apperrors.NewCodecError("cannot read page geometry", err)
		}
		info.Pages = append(info.Pages, page)
	}
	return info, nil
}

// PageCount returns the number of pages of an unencrypted document.
func (s *InfoService) PageCount(ctx context.Context, inputPath string) (int, error) {
	if err := started(ctx); err != nil {
		return 0, err
	}
	if err := checkInputs(inputPath); err != nil {
		return 0, err
	}
	doc, err := s.codec.Open(inputPath, "")
	if err != nil {
		return 0, err
	}
	defer doc.Close()
	return doc.PageCount(), nil
}
