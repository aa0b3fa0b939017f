package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/platefull/backend/config"
)

// ImageStore persists decoded image bytes and returns a public URL.
type ImageStore interface {
	Upload(ctx context.Context, data []byte, key, contentType string) (string, error)
}

// S3ImageStore stores images in an S3 bucket.
type S3ImageStore struct {
	s3Config *config.S3Config
}

func NewS3ImageStore(s3Config *config.S3Config) *S3ImageStore {
	return &S3ImageStore{s3Config: s3Config}
}

func (s *S3ImageStore) Upload(ctx context.Context, data []byte, key, contentType string) (string, error) {
	_, err := s.s3Config.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Config.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.s3Config.BucketName, key), nil
}

// DiskImageStore writes images under a media directory, served by the
// router at baseURL. Used when no S3 bucket is configured.
type DiskImageStore struct {
	Dir     string
	BaseURL string
}

func NewDiskImageStore(dir, baseURL string) *DiskImageStore {
	return &DiskImageStore{Dir: dir, BaseURL: baseURL}
}

func (s *DiskImageStore) Upload(ctx context.Context, data []byte, key, contentType string) (string, error) {
	path := filepath.Join(s.Dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return strings.TrimSuffix(s.BaseURL, "/") + "/" + key, nil
}

// ImageService decodes inline base64 image payloads and hands them to
// the configured store.
type ImageService struct {
	store ImageStore
}

func NewImageService(store ImageStore) *ImageService {
	return &ImageService{store: store}
}

// SaveBase64 accepts a "data:image/<ext>;base64,<payload>" string,
// stores the decoded bytes under prefix with a generated filename
// carrying the extension, and returns the stored URL.
func (s *ImageService) SaveBase64(ctx context.Context, payload, prefix string) (string, error) {
	if !strings.HasPrefix(payload, "data:image/") {
		return "", NewValidationError("Invalid image payload.")
	}
	parts := strings.SplitN(payload, ";base64,", 2)
	if len(parts) != 2 {
		return "", NewValidationError("Invalid image payload.")
	}
	ext := strings.TrimPrefix(parts[0], "data:image/")
	if ext == "" {
		return "", NewValidationError("Invalid image payload.")
	}

	data, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return "", NewValidationError("Invalid image payload.")
	}

	key := fmt.Sprintf("%s/%s.%s", prefix, uuid.New(), ext)
	url, err := s.store.Upload(ctx, data, key, "image/"+ext)
	if err != nil {
		return "", NewInternalError(err.Error())
	}
	return url, nil
}
