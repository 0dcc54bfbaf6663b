package storage

import (
	"context"
	"time"
)

// ServiceConfig holds the configuration required to connect to the storage service.
type ServiceConfig struct {
	S3BucketName      string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
}

// AvatarStorage defines the public interface for the avatar object store.
type AvatarStorage interface {
	// PresignUpload generates a pre-signed URL for uploading an avatar.
	PresignUpload(
		ctx context.Context,
		key string,
		mimeType string,
		fileSize int64,
		duration time.Duration,
	) (string, error)

	// PresignDownload generates a pre-signed URL for fetching an avatar.
	PresignDownload(ctx context.Context, key string, duration time.Duration) (string, error)

	// Delete removes the object specified by the given key.
	Delete(ctx context.Context, key string) error

	// Metadata retrieves the object's content type and size.
	Metadata(ctx context.Context, key string) (map[string]string, error)
}

// NewAvatarStorage is the factory function for AvatarStorage.
// It initializes and returns a concrete implementation based on the provided configuration.
func NewAvatarStorage(cfg ServiceConfig) (AvatarStorage, error) {
	// Currently, only S3 compatible implementations are supported.
	return newS3Client(cfg)
}
