// Package storage provides the S3-compatible object store used for original
// uploads and re-hosted generated renderings.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"

	"github.com/yardsketch/yardsketch-engine/pkg/apperrors"
	"github.com/yardsketch/yardsketch-engine/pkg/config"
)

// ObjectStore stores binary objects under namespaced keys and returns
// durable, publicly retrievable URLs.
type ObjectStore interface {
	// Upload writes body under key with the given content type, marks the
	// object publicly retrievable, and returns its durable URL.
	Upload(ctx context.Context, key, contentType string, body []byte) (string, error)
}

// S3Store implements ObjectStore against AWS S3 or any S3-compatible service.
type S3Store struct {
	client        *s3.Client
	bucket        string
	region        string
	publicBaseURL string
	logger        *zap.Logger
}

// NewS3Store creates an object store from storage configuration.
// Returns a ConfigurationError if the bucket is not configured.
func NewS3Store(ctx context.Context, cfg *config.StorageConfig, logger *zap.Logger) (*S3Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load storage credentials: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Store{
		client:        client,
		bucket:        cfg.Bucket,
		region:        cfg.Region,
		publicBaseURL: strings.TrimSuffix(cfg.PublicBaseURL, "/"),
		logger:        logger.Named("storage"),
	}, nil
}

// Upload writes body to the bucket under key with public-read access and
// returns the object's durable URL.
func (s *S3Store) Upload(ctx context.Context, key, contentType string, body []byte) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
		ACL:         types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		s.logger.Error("object upload failed",
			zap.String("key", key),
			zap.Error(err))
		return "", &apperrors.StorageError{Op: "upload", Key: key, Cause: err}
	}

	url := s.objectURL(key)
	s.logger.Debug("object uploaded",
		zap.String("key", key),
		zap.Int("bytes", len(body)),
		zap.String("url", url))
	return url, nil
}

// objectURL derives the public URL of a stored object. A configured
// public base URL (CDN front) wins over the standard S3 form.
func (s *S3Store) objectURL(key string) string {
	if s.publicBaseURL != "" {
		return fmt.Sprintf("%s/%s", s.publicBaseURL, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}

// Ensure S3Store implements ObjectStore at compile time.
var _ ObjectStore = (*S3Store)(nil)
