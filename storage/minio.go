// Package storage is the file transport: raw upload bytes go into MinIO
// object storage and come back as URL-addressable file metadata. The
// tracker only ever stores that metadata, never the bytes.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"Tracklab/config"
	"Tracklab/logger"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

var (
	minioClient *minio.Client
	bucket      string
	publicURL   string
)

// InitMinio initializes the MinIO client and makes sure the bucket exists.
func InitMinio(cfg *config.Config) error {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
		Region: cfg.MinioRegion,
	})
	if err != nil {
		return fmt.Errorf("failed to create MinIO client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", cfg.MinioBucket, err)
	}
	if !exists {
		err = client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{
			Region: cfg.MinioRegion,
		})
		if err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", cfg.MinioBucket, err)
		}
		logger.Info("bucket created", logger.String("bucket", cfg.MinioBucket))
	}

	minioClient = client
	bucket = cfg.MinioBucket
	publicURL = cfg.MinioPublicURL
	logger.Info("MinIO client initialized",
		logger.String("endpoint", cfg.MinioEndpoint),
		logger.String("bucket", cfg.MinioBucket))
	return nil
}

// GetMinioClient returns the MinIO client instance.
func GetMinioClient() *minio.Client {
	return minioClient
}

// UploadResult describes a stored object in the shape the tracker
// attaches to a song as file metadata.
type UploadResult struct {
	Name       string `json:"name"`
	URL        string `json:"url"`
	Size       int64  `json:"size"`
	MimeType   string `json:"mimeType"`
	ExternalID string `json:"externalId"`
}

// Upload stores the given bytes under a fresh object key and returns the
// resulting metadata.
func Upload(ctx context.Context, name string, reader io.Reader, size int64, contentType string) (*UploadResult, error) {
	if minioClient == nil {
		return nil, fmt.Errorf("MinIO client not initialized")
	}

	objectKey := path.Join("uploads", uuid.NewString(), name)
	info, err := minioClient.PutObject(ctx, bucket, objectKey, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload %s: %w", name, err)
	}

	logger.Info("file uploaded",
		logger.String("object", objectKey),
		logger.Int64("size", info.Size))

	return &UploadResult{
		Name:       name,
		URL:        publicURL + "/" + objectKey,
		Size:       info.Size,
		MimeType:   contentType,
		ExternalID: objectKey,
	}, nil
}

// List returns the objects stored under the given key prefix.
func List(ctx context.Context, prefix string) ([]minio.ObjectInfo, error) {
	if minioClient == nil {
		return nil, fmt.Errorf("MinIO client not initialized")
	}
	var objects []minio.ObjectInfo
	for object := range minioClient.ListObjects(ctx, bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if object.Err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", object.Err)
		}
		objects = append(objects, object)
	}
	return objects, nil
}

// Remove deletes a stored object by the external id recorded on a file.
func Remove(ctx context.Context, externalID string) error {
	if minioClient == nil {
		return fmt.Errorf("MinIO client not initialized")
	}
	if err := minioClient.RemoveObject(ctx, bucket, externalID, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove object %s: %w", externalID, err)
	}
	return nil
}
