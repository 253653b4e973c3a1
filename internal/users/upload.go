// internal/users/upload.go
// Profile photo storage backends

package users

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
)

// Uploader stores a profile photo and returns its public URL
type Uploader interface {
	Upload(ctx context.Context, userID string, data []byte, contentType string) (string, error)
}

var extByContentType = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// AllowedContentType reports whether a photo content type is accepted
func AllowedContentType(ct string) bool {
	_, ok := extByContentType[ct]
	return ok
}

// S3Uploader stores photos in an S3 bucket
type S3Uploader struct {
	client *s3.S3
	bucket string
	region string
}

// NewS3Uploader creates an S3-backed uploader
func NewS3Uploader(bucket, region string) (*S3Uploader, error) {
	sess, err := session.NewSession(&aws.Config{Region: aws.String(region)})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}
	return &S3Uploader{client: s3.New(sess), bucket: bucket, region: region}, nil
}

func (u *S3Uploader) Upload(ctx context.Context, userID string, data []byte, contentType string) (string, error) {
	key := fmt.Sprintf("profiles/%s/%s%s", userID, uuid.NewString(), extByContentType[contentType])

	_, err := u.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.bucket, u.region, key), nil
}

// LocalUploader stores photos on local disk, for development
type LocalUploader struct {
	baseDir string
}

// NewLocalUploader creates a disk-backed uploader rooted at baseDir
func NewLocalUploader(baseDir string) (*LocalUploader, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &LocalUploader{baseDir: baseDir}, nil
}

func (u *LocalUploader) Upload(_ context.Context, userID string, data []byte, contentType string) (string, error) {
	dir := filepath.Join(u.baseDir, "profiles", userID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create user dir: %w", err)
	}

	name := uuid.NewString() + extByContentType[contentType]
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return fmt.Sprintf("/uploads/profiles/%s/%s", userID, name), nil
}
