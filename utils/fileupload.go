package utils

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"mime/multipart"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

const (
	// MaxFileSize is 5MB in bytes
	MaxFileSize = 5 * 1024 * 1024
	// DefaultExtension is used when the original name has none
	DefaultExtension = "jpg"
)

var (
	uploadTypePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,32}$`)
	extensionPattern  = regexp.MustCompile(`^[a-z0-9]{1,8}$`)

	// stored files are served by extension, so only image and PDF extensions are kept
	allowedExtensions = map[string]bool{
		"jpg": true, "jpeg": true, "png": true, "gif": true, "webp": true,
		"bmp": true, "heic": true, "heif": true, "tif": true, "tiff": true, "pdf": true,
	}

	// markup types can carry script when served from the API origin
	markupTypes = []string{"image/svg+xml", "text/html", "text/xml"}
)

// FileUploadError represents a file upload validation error
type FileUploadError struct {
	Code    string
	Message string
}

func (e *FileUploadError) Error() string {
	return e.Message
}

// ValidateUploadType checks the form "type" field, which becomes the file name prefix
func ValidateUploadType(kind string) error {
	if kind == "" {
		return &FileUploadError{Code: "MISSING_FILE_TYPE", Message: "File type not specified"}
	}
	if !uploadTypePattern.MatchString(kind) {
		return &FileUploadError{Code: "INVALID_FILE_TYPE", Message: "File type may only contain letters, digits, '-' and '_'"}
	}
	return nil
}

// ValidateContentType accepts images and PDF documents, except SVG
func ValidateContentType(contentType string) error {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	if ct == "image/svg+xml" {
		return errInvalidFormat()
	}
	if strings.HasPrefix(ct, "image/") || ct == "application/pdf" {
		return nil
	}
	return errInvalidFormat()
}

// ValidateContent sniffs content and rejects markup whatever type the client declared
func ValidateContent(content []byte) error {
	for m := mimetype.Detect(content); m != nil; m = m.Parent() {
		for _, markup := range markupTypes {
			if m.Is(markup) {
				return errInvalidFormat()
			}
		}
	}
	return nil
}

func errInvalidFormat() error {
	return &FileUploadError{Code: "INVALID_FILE_FORMAT", Message: "Only images and PDF files are allowed"}
}

// ReadUploadedFile reads the whole file into memory and then enforces MaxFileSize
func ReadUploadedFile(fileHeader *multipart.FileHeader) ([]byte, error) {
	src, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	content, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}

	if len(content) > MaxFileSize {
		return nil, &FileUploadError{
			Code:    "FILE_TOO_LARGE",
			Message: fmt.Sprintf("File size exceeds maximum allowed size of %d MB", MaxFileSize/(1024*1024)),
		}
	}
	return content, nil
}

// GenerateFileName builds "<type>_<unixMillis>_<random>.<ext>" from the upload type and original name
func GenerateFileName(kind, originalName string, now time.Time) (string, error) {
	suffix, err := randomSuffix(11)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s_%d_%s.%s", kind, now.UnixMilli(), suffix, FileExtension(originalName)), nil
}

// FileExtension returns the lowercase image or PDF extension of name without the dot,
// or DefaultExtension
func FileExtension(name string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filepath.Base(name)), "."))
	if !extensionPattern.MatchString(ext) || !allowedExtensions[ext] {
		return DefaultExtension
	}
	return ext
}

const suffixAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

func randomSuffix(n int) (string, error) {
	var b strings.Builder
	max := big.NewInt(int64(len(suffixAlphabet)))
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate file name: %w", err)
		}
		b.WriteByte(suffixAlphabet[idx.Int64()])
	}
	return b.String(), nil
}
