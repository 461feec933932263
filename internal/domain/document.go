package domain

import "strings"

// Page describes one page of a document. Width and Height are in PDF points.
type Page struct {
	Index    int     `json:"index"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Rotation int     `json:"rotation"`
}

// Metadata is the document information dictionary.
type Metadata struct {
	Title        string `json:"title,omitempty"`
	Author       string `json:"author,omitempty"`
	Subject      string `json:"subject,omitempty"`
	Keywords     string `json:"keywords,omitempty"`
	Creator      string `json:"creator,omitempty"`
	Producer     string `json:"producer,omitempty"`
	CreationDate string `json:"creation_date,omitempty"`
	ModDate      string `json:"mod_date,omitempty"`
}

// IsZero reports whether no field is set.
func (m Metadata) IsZero() bool {
	return m == Metadata{}
}

// WriteOptions control how a document is serialized.
type WriteOptions struct {
	// OwnerPassword set means the output is encrypted.
	OwnerPassword string
	UserPassword  string
	KeyLength     int

	Compress     bool
	Quality      int
	ImageQuality int
}

// Encrypt reports whether the options request an encrypted output.
func (o WriteOptions) Encrypt() bool {
	return o.OwnerPassword != ""
}

// Validate checks the options for combinations no writer can honor.
func (o WriteOptions) Validate() error {
	if o.UserPassword != "" && o.OwnerPassword == "" {
		return &ValidationError{Field: "owner_password", Message: "required when a user password is set"}
	}
	switch o.KeyLength {
	case 0, 40, 128, 256:
	default:
		return &ValidationError{Field: "key_length", Message: "must be 40, 128 or 256"}
	}
	if o.Quality < 0 || o.Quality > 100 {
		return &ValidationError{Field: "quality", Message: "must be between 0 and 100"}
	}
	if o.ImageQuality < 0 || o.ImageQuality > 100 {
		return &ValidationError{Field: "image_quality", Message: "must be between 0 and 100"}
	}
	return nil
}

// EncryptionInfo is the answer to an encryption-state query.
type EncryptionInfo struct {
	Encrypted bool      `json:"encrypted"`
	Method    string    `json:"encryption_method,omitempty"`
	FileID    string    `json:"file_id,omitempty"`
	Metadata  *Metadata `json:"metadata,omitempty"`
}

// DocumentInfo summarizes a document on disk.
type DocumentInfo struct {
	Path      string   `json:"path"`
	PageCount int      `json:"pages"`
	FileSize  int64    `json:"file_size"`
	Encrypted bool     `json:"encrypted"`
	Metadata  Metadata `json:"metadata"`
	Pages     []Page   `json:"page_info"`
}

// ImageFormat is a raster output format.
type ImageFormat string

const (
	ImageFormatPNG  ImageFormat = "png"
	ImageFormatJPEG ImageFormat = "jpeg"
	ImageFormatTIFF ImageFormat = "tiff"
	ImageFormatBMP  ImageFormat = "bmp"
)

// ParseImageFormat maps a user-supplied format name to an ImageFormat.
func ParseImageFormat(s string) (ImageFormat, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "png":
		return ImageFormatPNG, true
	case "jpeg", "jpg":
		return ImageFormatJPEG, true
	case "tiff", "tif":
		return ImageFormatTIFF, true
	case "bmp":
		return ImageFormatBMP, true
	}
	return "", false
}

// ImageInfo is what probing an image file yields.
type ImageInfo struct {
	Format string
	Width  int
	Height int
}
