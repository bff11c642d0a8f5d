package utils

import (
	"bytes"
	"mime/multipart"
	"net/textproto"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestFileHeader builds a real multipart.FileHeader holding content
func createTestFileHeader(t *testing.T, filename, contentType string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := writer.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	reader := multipart.NewReader(body, writer.Boundary())
	form, err := reader.ReadForm(int64(len(content)) + 1024)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	require.Len(t, form.File["file"], 1)
	return form.File["file"][0]
}

func TestValidateContentType(t *testing.T) {
	tests := []struct {
		contentType string
		wantErr     bool
	}{
		{"image/png", false},
		{"image/jpeg", false},
		{"IMAGE/WEBP", false},
		{"application/pdf", false},
		{"image/jpeg; charset=binary", false},
		{"text/plain", true},
		{"image/svg+xml", true},
		{"Image/SVG+XML; charset=utf-8", true},
		{"application/zip", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			err := ValidateContentType(tt.contentType)
			if tt.wantErr {
				require.Error(t, err)
				uploadErr, ok := err.(*FileUploadError)
				require.True(t, ok)
				assert.Equal(t, "INVALID_FILE_FORMAT", uploadErr.Code)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateContent(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
		wantErr bool
	}{
		{"png", []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), false},
		{"jpeg", []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00"), false},
		{"pdf", []byte("%PDF-1.4\n"), false},
		{"opaque bytes", []byte("fake png content"), false},
		{"svg", []byte(`<svg xmlns="http://www.w3.org/2000/svg"><script>alert(1)</script></svg>`), true},
		{"svg with xml declaration", []byte(`<?xml version="1.0"?><svg xmlns="http://www.w3.org/2000/svg"></svg>`), true},
		{"html", []byte(`<!DOCTYPE html><html><body><script>alert(1)</script></body></html>`), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateContent(tt.content)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, "INVALID_FILE_FORMAT", err.(*FileUploadError).Code)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateUploadType(t *testing.T) {
	assert.NoError(t, ValidateUploadType("glasses"))
	assert.NoError(t, ValidateUploadType("GLASSES_PHOTO"))

	err := ValidateUploadType("")
	require.Error(t, err)
	assert.Equal(t, "MISSING_FILE_TYPE", err.(*FileUploadError).Code)

	err = ValidateUploadType("../etc")
	require.Error(t, err)
	assert.Equal(t, "INVALID_FILE_TYPE", err.(*FileUploadError).Code)
}

func TestReadUploadedFile_Success(t *testing.T) {
	content := []byte("fake png content")
	fileHeader := createTestFileHeader(t, "photo.png", "image/png", content)

	got, err := ReadUploadedFile(fileHeader)
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestReadUploadedFile_TooLarge(t *testing.T) {
	content := bytes.Repeat([]byte("a"), MaxFileSize+1)
	fileHeader := createTestFileHeader(t, "large.png", "image/png", content)

	_, err := ReadUploadedFile(fileHeader)
	require.Error(t, err)
	uploadErr, ok := err.(*FileUploadError)
	require.True(t, ok)
	assert.Equal(t, "FILE_TOO_LARGE", uploadErr.Code)
	assert.Contains(t, uploadErr.Message, "5 MB")
}

func TestReadUploadedFile_ExactlyMaxSize(t *testing.T) {
	content := bytes.Repeat([]byte("a"), MaxFileSize)
	fileHeader := createTestFileHeader(t, "max.png", "image/png", content)

	got, err := ReadUploadedFile(fileHeader)
	require.NoError(t, err)
	assert.Len(t, got, MaxFileSize)
}

func TestGenerateFileName(t *testing.T) {
	now := time.UnixMilli(1700000000123)

	name, err := GenerateFileName("glasses", "My Photo.JPG", now)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^glasses_1700000000123_[a-z0-9]{11}\.jpg$`), name)

	other, err := GenerateFileName("glasses", "My Photo.JPG", now)
	require.NoError(t, err)
	assert.NotEqual(t, name, other, "random suffix should differ")
}

func TestFileExtension(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"photo.png", "png"},
		{"scan.PDF", "pdf"},
		{"noext", "jpg"},
		{"weird.ex$t", "jpg"},
		{"../../etc/passwd.txt", "jpg"},
		{"page.html", "jpg"},
		{"vector.svg", "jpg"},
		{"photo.webp", "webp"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FileExtension(tt.name))
		})
	}
}
