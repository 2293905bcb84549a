package util

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/minio/minio-go/v7"
)

// Object keys always use forward slashes regardless of the host OS.

func GetProjectObjectPrefix(projectId string) string {
	return fmt.Sprintf("projects/%s", projectId)
}

func ToProjectImageObjectPath(projectId string, filename string) string {
	return path.Join(GetProjectObjectPrefix(projectId), "images", filepath.Base(filename))
}

func ToProjectExportObjectPath(projectId string, filename string) string {
	return path.Join(GetProjectObjectPrefix(projectId), "exports", filepath.Base(filename))
}

func CreateBucketIfNotExists(ctx context.Context, s3 *minio.Client, bucketName string) error {
	exists, err := s3.BucketExists(ctx, bucketName)
	if err != nil {
		return err
	}

	if !exists {
		err = s3.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{})
		if err != nil {
			return err
		}
	}

	return nil
}

type FileUploadOptions struct {
	// Full object key, e.g. "projects/123/images/abc.png"
	ObjectName string
	Bucket     string
	S3         *minio.Client
}

// uploads a file from a local path to S3
func UploadFileToS3ByPath(ctx context.Context, filePath string, fuo *FileUploadOptions) (minio.UploadInfo, error) {
	if err := CreateBucketIfNotExists(ctx, fuo.S3, fuo.Bucket); err != nil {
		return minio.UploadInfo{}, fmt.Errorf("failed to create bucket: %w", err)
	}

	objectName := fuo.ObjectName
	if objectName == "" {
		objectName = filepath.Base(filePath)
	}

	contentType, err := detectContentType(filePath)
	if err != nil {
		return minio.UploadInfo{}, err
	}

	info, err := fuo.S3.FPutObject(
		ctx,
		fuo.Bucket,
		objectName,
		filePath,
		minio.PutObjectOptions{
			ContentType: contentType,
		},
	)
	if err != nil {
		return minio.UploadInfo{}, fmt.Errorf("failed to upload file to S3: %w", err)
	}

	return info, nil
}

func RemoveS3Object(ctx context.Context, s3 *minio.Client, bucket string, objectName string) error {
	return s3.RemoveObject(ctx, bucket, objectName, minio.RemoveObjectOptions{})
}

// RemoveS3ObjectsWithPrefix deletes every object under prefix and returns the first failure.
func RemoveS3ObjectsWithPrefix(ctx context.Context, s3 *minio.Client, bucket string, prefix string) error {
	objects := s3.ListObjects(ctx, bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})

	for result := range s3.RemoveObjects(ctx, bucket, objects, minio.RemoveObjectsOptions{}) {
		if result.Err != nil {
			return fmt.Errorf("failed to remove %s: %w", result.ObjectName, result.Err)
		}
	}

	return nil
}

func PresignedGetObjectURL(ctx context.Context, s3 *minio.Client, bucket string, objectName string, ttl time.Duration) (string, error) {
	u, err := s3.PresignedGetObject(ctx, bucket, objectName, ttl, nil)
	if err != nil {
		return "", fmt.Errorf("failed to presign %s: %w", objectName, err)
	}
	return u.String(), nil
}

// Determines the content type of a file at the given path
func detectContentType(filePath string) (string, error) {
	// 1) Try extension-based lookup
	contentType := mime.TypeByExtension(filepath.Ext(filePath))
	if contentType != "" {
		return contentType, nil
	}

	// 2) Fall back to sniffing the first 512 bytes
	file, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open file for content type detection: %w", err)
	}
	defer file.Close()

	buf := make([]byte, 512)
	n, err := file.Read(buf)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read file for content type detection: %w", err)
	}

	return http.DetectContentType(buf[:n]), nil
}
