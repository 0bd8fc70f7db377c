package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

var ErrUnsupportedImage = errors.New("unsupported image type")

var imageExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// MediaStore keeps uploaded post images. Save returns the relative path stored on the post.
type MediaStore interface {
	Save(ctx context.Context, originalName string, body io.Reader) (string, error)
	Delete(ctx context.Context, key string) error
}

// NewImageKey builds a unique object key under prefix that keeps the original extension.
func NewImageKey(prefix, originalName string) (string, string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	contentType, ok := imageExtensions[ext]
	if !ok {
		return "", "", fmt.Errorf("%w: %q", ErrUnsupportedImage, ext)
	}
	return path.Join(prefix, uuid.NewString()+ext), contentType, nil
}

// LocalMediaStore writes images below a directory on disk.
type LocalMediaStore struct {
	root   string
	prefix string
}

func NewLocalMediaStore(root, prefix string) *LocalMediaStore {
	return &LocalMediaStore{root: root, prefix: prefix}
}

func (s *LocalMediaStore) Save(_ context.Context, originalName string, body io.Reader) (string, error) {
	key, _, err := NewImageKey(s.prefix, originalName)
	if err != nil {
		return "", err
	}

	target := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("create media dir: %w", err)
	}

	f, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("create media file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, body); err != nil {
		return "", fmt.Errorf("write media file: %w", err)
	}

	return key, nil
}

func (s *LocalMediaStore) Delete(_ context.Context, key string) error {
	if key == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(key)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// ObjectStorage is the part of the S3 client the store needs.
type ObjectStorage interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3MediaStore uploads images to a bucket.
type S3MediaStore struct {
	client ObjectStorage
	bucket string
	prefix string
}

func NewS3MediaStore(client ObjectStorage, bucket, prefix string) *S3MediaStore {
	return &S3MediaStore{client: client, bucket: bucket, prefix: prefix}
}

func (s *S3MediaStore) Save(ctx context.Context, originalName string, body io.Reader) (string, error) {
	key, contentType, err := NewImageKey(s.prefix, originalName)
	if err != nil {
		return "", err
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}

	return key, nil
}

func (s *S3MediaStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return err
}
