package service

import (
	"context"
	"fmt"

	"pdf-toolbox/internal/domain"
	apperrors "pdf-toolbox/pkg/errors"
)

// SecurityService adds and removes password protection. A document is either
// unencrypted or encrypted; Encrypt only accepts the former, Decrypt and
// RemovePassword need the right password for the latter.
type SecurityService struct {
	codec     domain.DocumentCodec
	logger    domain.Logger
	keyLength int
}

func NewSecurityService(codec domain.DocumentCodec, logger domain.Logger, keyLength int) *SecurityService {
	return &SecurityService{
		codec:     codec,
		logger:    logger,
		keyLength: keyLength,
	}
}

// Encrypt copies every page into an encrypted output. Without a user password
// the owner password opens the document in both roles.
func (s *SecurityService) Encrypt(ctx context.Context, inputPath, outputPath, ownerPassword, userPassword string) domain.OperationResult {
	if err := started(ctx); err != nil {
		return failure(s.logger, "Encryption not started", err, apperrors.ErrorTypeInternal)
	}
	if ownerPassword == "" {
		return failure(s.logger, "Encryption rejected", apperrors.NewInvalidArgumentError("owner password is required"), apperrors.ErrorTypeInvalidArgument)
	}
	if userPassword == "" {
		userPassword = ownerPassword
	}
	if err := checkInputs(inputPath); err != nil {
		return failure(s.logger, "Encryption input missing", err, apperrors.ErrorTypeFileNotFound, "file", inputPath)
	}

	info, err := s.codec.Inspect(inputPath)
	if err != nil {
		return failure(s.logger, "Failed to inspect document", err, apperrors.ErrorTypeCodec, "file", inputPath)
	}
	if info.Encrypted {
		return failure(s.logger, "Encryption rejected",
			apperrors.NewInvalidArgumentError("document is already encrypted", inputPath),
			apperrors.ErrorTypeInvalidArgument)
	}

	opts := domain.WriteOptions{OwnerPassword: ownerPassword, UserPassword: userPassword, KeyLength: s.keyLength}
	pages, err := s.copyDocument(inputPath, "", outputPath, opts, false)
	if err != nil {
		return failure(s.logger, "Failed to encrypt document", err, apperrors.ErrorTypeCodec, "file", inputPath)
	}

	s.logger.Info("Encrypted document", "file", inputPath, "output", outputPath, "key_length", s.keyLength)
	res := domain.Succeeded(fmt.Sprintf("encrypted %d pages into %s", pages, outputPath), outputPath)
	res.Pages = pages
	return res
}

// Decrypt writes an unencrypted copy without metadata. An unencrypted source
// is copied whatever the password.
func (s *SecurityService) Decrypt(ctx context.Context, inputPath, outputPath, password string) domain.OperationResult {
	return s.unlock(ctx, "decrypt", inputPath, outputPath, password, false)
}

// RemovePassword is Decrypt that also carries the metadata over.
func (s *SecurityService) RemovePassword(ctx context.Context, inputPath, outputPath, password string) domain.OperationResult {
	return s.unlock(ctx, "remove_password", inputPath, outputPath, password, true)
}

func (s *SecurityService) unlock(ctx context.Context, op, inputPath, outputPath, password string, keepMetadata bool) domain.OperationResult {
	if err := started(ctx); err != nil {
		return failure(s.logger, "Unlock not started", err, apperrors.ErrorTypeInternal, "op", op)
	}
	if err := checkInputs(inputPath); err != nil {
		return failure(s.logger, "Unlock input missing", err, apperrors.ErrorTypeFileNotFound, "op", op, "file", inputPath)
	}

	info, err := s.codec.Inspect(inputPath)
	if err != nil {
		return failure(s.logger, "Failed to inspect document", err, apperrors.ErrorTypeCodec, "op", op, "file", inputPath)
	}
	if !info.Encrypted {
		password = ""
	}

	pages, err := s.copyDocument(inputPath, password, outputPath, domain.WriteOptions{}, keepMetadata)
	if err != nil {
		return failure(s.logger, "Failed to unlock document", err, apperrors.ErrorTypeCodec, "op", op, "file", inputPath)
	}

	s.logger.Info("Unlocked document", "op", op, "file", inputPath, "was_encrypted", info.Encrypted, "output", outputPath)
	msg := fmt.Sprintf("decrypted %s into %s", inputPath, outputPath)
	if !info.Encrypted {
		msg = fmt.Sprintf("%s is not encrypted; copied into %s", inputPath, outputPath)
	}
	res := domain.Succeeded(msg, outputPath)
	res.Pages = pages
	return res
}

func (s *SecurityService) copyDocument(inputPath, password, outputPath string, opts domain.WriteOptions, keepMetadata bool) (int, error) {
	src, err := s.codec.Open(inputPath, password)
	if err != nil {
		return 0, err
	}
	defer src.Close()

	out := s.codec.New()
	defer out.Close()
	if err := copyPages(out, src, allPages(src)); err != nil {
		return 0, err
	}
	if keepMetadata {
		out.SetMetadata(src.Metadata())
	}
	if err := out.WriteFile(outputPath, opts); err != nil {
		return 0, err
	}
	return out.PageCount(), nil
}

// IsEncrypted reports false for files that are missing or unreadable.
func (s *SecurityService) IsEncrypted(ctx context.Context, inputPath string) bool {
	info, err := s.EncryptionInfo(ctx, inputPath)
	if err != nil {
		s.logger.Warn("Cannot determine encryption state", "file", inputPath, "error", err)
		return false
	}
	return info.Encrypted
}

// EncryptionInfo describes how a document is protected.
func (s *SecurityService) EncryptionInfo(ctx context.Context, inputPath string) (*domain.EncryptionInfo, error) {
	if err := started(ctx); err != nil {
		return nil, err
	}
	if err := checkInputs(inputPath); err != nil {
		return nil, err
	}
	return s.codec.Inspect(inputPath)
}
