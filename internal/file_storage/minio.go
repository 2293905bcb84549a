package filestorage

import (
	"context"
	"fmt"
	"time"

	"github.com/SeakMengs/OpenSight/internal/config"
	"github.com/SeakMengs/OpenSight/internal/util"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

func NewMinioClient(cfg *config.MinioConfig) (*minio.Client, error) {
	return minio.New(cfg.ENDPOINT, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.ACCESS_KEY, cfg.SECRET_KEY, ""),
		Secure: cfg.USE_SSL,
		Region: "us-east-1",
	})
}

// Mirror copies project files to an S3 compatible bucket. Local storage stays the
// source of truth, the bucket only holds copies for sharing and backup.
type Mirror struct {
	s3         *minio.Client
	bucket     string
	presignTTL time.Duration
	logger     *zap.SugaredLogger
}

// NewMirror returns nil when MinIO is disabled. All methods are no-ops on a nil Mirror.
func NewMirror(cfg config.MinioConfig, logger *zap.SugaredLogger) (*Mirror, error) {
	if !cfg.ENABLED {
		return nil, nil
	}

	client, err := NewMinioClient(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &Mirror{s3: client, bucket: cfg.BUCKET, presignTTL: cfg.PresignTTL, logger: logger}, nil
}

func (m *Mirror) Enabled() bool {
	return m != nil
}

// UploadImage copies a stored image to projects/<projectId>/images/<file>.
func (m *Mirror) UploadImage(ctx context.Context, projectID, localPath string) error {
	if m == nil {
		return nil
	}

	info, err := util.UploadFileToS3ByPath(ctx, localPath, &util.FileUploadOptions{
		ObjectName: util.ToProjectImageObjectPath(projectID, localPath),
		Bucket:     m.bucket,
		S3:         m.s3,
	})
	if err != nil {
		return err
	}

	m.logger.Debugf("Mirrored image %s to %s/%s (%d bytes)", localPath, info.Bucket, info.Key, info.Size)
	return nil
}

func (m *Mirror) RemoveImage(ctx context.Context, projectID, fileName string) error {
	if m == nil {
		return nil
	}

	return util.RemoveS3Object(ctx, m.s3, m.bucket, util.ToProjectImageObjectPath(projectID, fileName))
}

func (m *Mirror) RemoveProject(ctx context.Context, projectID string) error {
	if m == nil {
		return nil
	}

	return util.RemoveS3ObjectsWithPrefix(ctx, m.s3, m.bucket, util.GetProjectObjectPrefix(projectID)+"/")
}

// PublishArchive uploads a dataset archive and returns a presigned download URL.
func (m *Mirror) PublishArchive(ctx context.Context, projectID, archivePath, objectFileName string) (string, error) {
	if m == nil {
		return "", fmt.Errorf("object storage is disabled")
	}

	objectName := util.ToProjectExportObjectPath(projectID, objectFileName)
	if _, err := util.UploadFileToS3ByPath(ctx, archivePath, &util.FileUploadOptions{
		ObjectName: objectName,
		Bucket:     m.bucket,
		S3:         m.s3,
	}); err != nil {
		return "", err
	}

	return util.PresignedGetObjectURL(ctx, m.s3, m.bucket, objectName, m.presignTTL)
}
