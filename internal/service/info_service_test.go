package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdf-toolbox/internal/testpdf"
	apperrors "pdf-toolbox/pkg/errors"
)

func TestInfo(t *testing.T) {
	dir := t.TempDir()
	src := testpdf.WriteFile(t, dir, "src.pdf", 2,
		testpdf.WithTitle("Manual"),
		testpdf.WithPageSizes(sizes(300, 400)...),
		testpdf.WithRotation(90))

	info, err := NewInfoService(newCodec(), quietLogger()).Info(context.Background(), src, "")

	require.NoError(t, err)
	assert.Equal(t, src, info.Path)
	assert.Equal(t, 2, info.PageCount)
	assert.Positive(t, info.FileSize)
	assert.False(t, info.Encrypted)
	assert.Equal(t, "Manual", info.Metadata.Title)
	require.Len(t, info.Pages, 2)
	assert.Equal(t, 1, info.Pages[1].Index)
	assert.InDelta(t, 400, info.Pages[1].Width, 0.5)
	assert.Equal(t, 90, info.Pages[0].Rotation)
}

func TestInfo_Errors(t *testing.T) {
	dir := t.TempDir()
	svc := NewInfoService(newCodec(), quietLogger())

	_, err := svc.Info(context.Background(), filepath.Join(dir, "missing.pdf"), "")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeFileNotFound))

	src := testpdf.WriteFile(t, dir, "src.pdf", 1)
	locked := filepath.Join(dir, "locked.pdf")
	require.True(t, newSecurityService().Encrypt(context.Background(), src, locked, "owner", "user").Success)

	_, err = svc.Info(context.Background(), locked, "wrong")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeWrongPassword))

	info, err := svc.Info(context.Background(), locked, "user")
	require.NoError(t, err)
	assert.True(t, info.Encrypted)
	assert.Equal(t, 1, info.PageCount)
}

func TestPageCount(t *testing.T) {
	dir := t.TempDir()
	src := testpdf.WriteFile(t, dir, "src.pdf", 7)
	svc := NewInfoService(newCodec(), quietLogger())

	n, err := svc.PageCount(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = svc.PageCount(ctx, src)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInternal))
}
