package services

import (
	"context"
	"mime/multipart"
	"path/filepath"
	"time"

	"github.com/kendall-kelly/otica-api/utils"
)

// UploadResult describes a stored upload
type UploadResult struct {
	URL          string `json:"url"`
	FileName     string `json:"fileName"`
	OriginalName string `json:"originalName"`
	Size         int64  `json:"size"`
	Type         string `json:"type"`
}

// UploadService validates uploaded files, names them and hands them to storage
type UploadService struct {
	storage StorageInterface
	now     func() time.Time
}

// NewUploadService creates an upload service on storage
func NewUploadService(storage StorageInterface) *UploadService {
	return &UploadService{storage: storage, now: time.Now}
}

// Upload checks the type field and content type, reads the file, enforces the size
// limit and stores it as <kind>_<unixMillis>_<random>.<ext>. Validation failures are
// returned as *utils.FileUploadError.
func (s *UploadService) Upload(ctx context.Context, fileHeader *multipart.FileHeader, kind string) (*UploadResult, error) {
	if err := utils.ValidateUploadType(kind); err != nil {
		return nil, err
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if err := utils.ValidateContentType(contentType); err != nil {
		return nil, err
	}

	content, err := utils.ReadUploadedFile(fileHeader)
	if err != nil {
		return nil, err
	}
	if err := utils.ValidateContent(content); err != nil {
		return nil, err
	}

	name, err := utils.GenerateFileName(kind, fileHeader.Filename, s.now())
	if err != nil {
		return nil, err
	}

	url, err := s.storage.Save(ctx, name, contentType, content)
	if err != nil {
		return nil, err
	}

	return &UploadResult{
		URL:          url,
		FileName:     name,
		OriginalName: filepath.Base(fileHeader.Filename),
		Size:         int64(len(content)),
		Type:         contentType,
	}, nil
}
