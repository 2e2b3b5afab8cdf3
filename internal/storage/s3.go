// Package storage uploads collected path sets to remote storage targets.
package storage

import (
	"context"
	"path"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/EsotericSoftware/wildcard/internal/config"
	"github.com/EsotericSoftware/wildcard/pkg/fsx"
	"github.com/EsotericSoftware/wildcard/pkg/logx"
	"github.com/EsotericSoftware/wildcard/pkg/paths"
)

// s3Client abstracts the MinIO client to the few calls the uploader needs,
// which also allows mocking in tests.
type s3Client interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)

	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error

	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)

	FPutObject(ctx context.Context, bucketName, objectName, filePath string, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// minioClientWrapper adapts the concrete MinIO client to the s3Client interface.
type minioClientWrapper struct {
	client *minio.Client
}

func (m *minioClientWrapper) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	return m.client.BucketExists(ctx, bucketName)
}

func (m *minioClientWrapper) MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error {
	return m.client.MakeBucket(ctx, bucketName, opts)
}

func (m *minioClientWrapper) StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error) {
	return m.client.StatObject(ctx, bucketName, objectName, opts)
}

func (m *minioClientWrapper) FPutObject(ctx context.Context, bucketName, objectName, filePath string, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	return m.client.FPutObject(ctx, bucketName, objectName, filePath, opts)
}

// S3 uploads files to an S3-compatible bucket, mapping each entry's relative
// name to an object name under the configured prefix so the directory
// structure is preserved in the bucket.
type S3 struct {
	id            string
	client        s3Client
	cfg           config.BucketConfig
	fs            afero.Fs
	bucketChecked bool
}

// NewS3 creates a new S3 uploader from the bucket configuration.
func NewS3(cfg config.BucketConfig) (*S3, error) {
	if err := config.ValidateBucketConfig(cfg); err != nil {
		return nil, err
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:      credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:     cfg.UseSSL,
		MaxRetries: cfg.MaxRetries,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create minio client")
	}

	return &S3{
		id:     "s3-" + uuid.NewString()[:8],
		client: &minioClientWrapper{client: client},
		cfg:    cfg,
		fs:     afero.NewOsFs(),
	}, nil
}

// Info returns a unique identifier for the uploader instance.
func (s *S3) Info() string {
	return s.id
}

// ensureBucketExists checks that the bucket exists, creating it when missing.
func (s *S3) ensureBucketExists(ctx context.Context) error {
	if s.bucketChecked {
		return nil
	}

	exists, err := s.client.BucketExists(ctx, s.cfg.Bucket)
	if err != nil {
		return errors.Wrap(err, "failed to check bucket")
	}

	if !exists {
		logx.As().Info().
			Str("uploader", s.id).
			Str("bucket", s.cfg.Bucket).
			Msg("Bucket does not exist, creating it")
		if err := s.client.MakeBucket(ctx, s.cfg.Bucket, minio.MakeBucketOptions{Region: s.cfg.Region}); err != nil {
			return errors.Wrap(err, "failed to create bucket")
		}
	}

	s.bucketChecked = true
	return nil
}

// uploadFile syncs one local file with the bucket. Objects already present
// with an identical MD5 checksum are skipped.
func (s *S3) uploadFile(ctx context.Context, localPath, objectName string) error {
	localChecksum, err := fsx.FileMD5(s.fs, localPath)
	if err != nil {
		return errors.Wrap(err, "failed to calculate local checksum")
	}

	attr, err := s.client.StatObject(ctx, s.cfg.Bucket, objectName, minio.StatObjectOptions{})
	if err == nil && localChecksum == attr.ETag {
		logx.As().Info().
			Str("uploader", s.id).
			Str("src", localPath).
			Str("object", objectName).
			Str("md5", attr.ETag).
			Msg("Object already exists in bucket, skipping upload")
		return nil
	}

	info, err := s.client.FPutObject(ctx, s.cfg.Bucket, objectName, localPath, minio.PutObjectOptions{
		SendContentMd5: true,
	})
	if err != nil {
		return errors.Wrap(err, "failed to upload file to S3")
	}

	logx.As().Info().
		Str("uploader", s.id).
		Str("src", localPath).
		Str("object", info.Key).
		Str("md5", info.ETag).
		Int64("size", info.Size).
		Msg("File uploaded to bucket")

	return nil
}

// UploadPaths uploads every file entry of the collection to the bucket. One
// entry failing never stops the remaining entries; the per-item outcomes are
// returned as a report.
func (s *S3) UploadPaths(ctx context.Context, p *paths.Paths) *paths.Report {
	report := &paths.Report{}

	if err := s.ensureBucketExists(ctx); err != nil {
		for _, e := range p.Entries() {
			report.Add(e.Absolute(), "", err)
		}
		return report
	}

	for _, e := range p.Entries() {
		if ctx.Err() != nil {
			break
		}

		objectName := path.Join(s.cfg.Prefix, e.Name)
		if err := s.uploadFile(ctx, e.Absolute(), objectName); err != nil {
			logx.As().Error().Err(err).
				Str("uploader", s.id).
				Str("src", e.Absolute()).
				Str("object", objectName).
				Msg("Failed to upload file")
			report.Add(e.Absolute(), objectName, err)
			continue
		}
		report.Add(e.Absolute(), objectName, nil)
	}

	return report
}
