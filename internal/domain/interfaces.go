package domain

import (
	"context"
	"image"
	"io"
)

// Document is an open page-stream document. It is owned by the engine call that
// opened or created it and must be closed by that call.
type Document interface {
	PageCount() int
	Page(index int) (Page, error)
	// AddPage appends page index of src. src must come from the same codec.
	AddPage(src Document, index int) error
	Metadata() Metadata
	SetMetadata(meta Metadata)
	Encrypted() bool
	// WriteFile writes the assembled document to path. Nothing is written to
	// path unless the whole document was serialized successfully.
	WriteFile(path string, opts WriteOptions) error
	Close() error
}

// DocumentCodec opens and creates documents.
type DocumentCodec interface {
	Open(path string, password string) (Document, error)
	New() Document
	// Inspect reports encryption state without requiring a password.
	Inspect(path string) (*EncryptionInfo, error)
	// Decrypted returns the unencrypted bytes of the document at path.
	Decrypted(path string, password string) ([]byte, error)
}

// RasterDocument gives page-level rendering and text access.
type RasterDocument interface {
	PageCount() int
	Render(index int, dpi float64) (image.Image, error)
	Text(index int) (string, error)
	Close() error
}

// Renderer opens documents for rasterization and text extraction.
type Renderer interface {
	Open(path string) (RasterDocument, error)
	OpenBytes(data []byte) (RasterDocument, error)
}

// ImageCodec reads and writes raster images and packages them into documents.
type ImageCodec interface {
	Probe(path string) (ImageInfo, error)
	Encode(w io.Writer, img image.Image, format ImageFormat) error
	// ToDocument writes one page per image, in order, at native image size.
	ToDocument(paths []string, outputPath string) error
}

// OperationRepository persists job records.
type OperationRepository interface {
	Save(ctx context.Context, job *Job) error
	Get(ctx context.Context, id string) (*Job, error)
	List(ctx context.Context, limit int) ([]*Job, error)
}

// TokenValidator validates bearer tokens for the HTTP API.
type TokenValidator interface {
	ValidateToken(token string) (*SupabaseUser, error)
}

// Logger defines the interface for logging operations
type Logger interface {
	Info(msg string, fields ...interface{})
	Error(msg string, err error, fields ...interface{})
	Debug(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
}

// Config defines the interface for configuration management
type Config interface {
	GetServerPort() string
	GetWorkspaceDir() string
	GetMaxFileSize() int64
	GetLogLevel() string
	GetDefaultDPI() int
	GetDefaultImageFormat() string
	GetEncryptionKeyLength() int
	GetAllowedOrigins() []string
	GetSupabaseURL() string
	GetSupabaseKey() string
	GetOperationHistoryTable() string
	GetRequireAuth() bool
}
