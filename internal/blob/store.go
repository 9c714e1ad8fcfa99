package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	appconfig "photo-market/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog"
)

// ErrNotFound is returned when the requested key does not exist.
var ErrNotFound = errors.New("blob not found")

// Store abstracts the two media buckets. Derivatives go to the public
// bucket and are directly browsable; originals go to the private bucket
// and are only ever exposed through short-lived signed URLs.
type Store interface {
	// PutPublic writes a derivative to the public bucket.
	PutPublic(ctx context.Context, key string, body []byte, contentType string) error

	// PutPrivate writes an original to the private bucket.
	PutPrivate(ctx context.Context, key string, body []byte, contentType string) error

	// GetPrivate reads an original from the private bucket.
	GetPrivate(ctx context.Context, key string) ([]byte, error)

	// PublicURL returns the browsable URL of a public-bucket key.
	PublicURL(key string) string

	// SignedGetURL issues a time-limited signed URL for a private-bucket
	// key, hinting the browser to save it under the given filename.
	SignedGetURL(ctx context.Context, key string, ttl time.Duration, filename string) (string, error)
}

// s3Store implements Store against AWS S3.
type s3Store struct {
	client        *s3.Client
	presigner     *s3.PresignClient
	publicBucket  string
	privateBucket string
	region        string
	logger        zerolog.Logger
}

// NewS3Store creates a new S3-backed blob store.
func NewS3Store(ctx context.Context, cfg appconfig.S3Config, logger zerolog.Logger) (Store, error) {
	logger = logger.With().Str("component", "s3-store").Logger()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		logger.Error().Err(err).Msg("failed to load AWS configuration")
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	client := s3.NewFromConfig(awsCfg)

	logger.Info().
		Str("public_bucket", cfg.PublicBucket).
		Str("private_bucket", cfg.PrivateBucket).
		Str("region", cfg.Region).
		Msg("S3 store initialised")

	return &s3Store{
		client:        client,
		presigner:     s3.NewPresignClient(client),
		publicBucket:  cfg.PublicBucket,
		privateBucket: cfg.PrivateBucket,
		region:        cfg.Region,
		logger:        logger,
	}, nil
}

func (s *s3Store) put(ctx context.Context, bucket, key string, body []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("bucket", bucket).
			Str("key", key).
			Msg("failed to put object")
		return fmt.Errorf("failed to put object (bucket=%s, key=%s): %w", bucket, key, err)
	}

	s.logger.Debug().
		Str("bucket", bucket).
		Str("key", key).
		Int("size", len(body)).
		Msg("object stored")

	return nil
}

func (s *s3Store) PutPublic(ctx context.Context, key string, body []byte, contentType string) error {
	return s.put(ctx, s.publicBucket, key, body, contentType)
}

func (s *s3Store) PutPrivate(ctx context.Context, key string, body []byte, contentType string) error {
	return s.put(ctx, s.privateBucket, key, body, contentType)
}

func (s *s3Store) GetPrivate(ctx context.Context, key string) ([]byte, error) {
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.privateBucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, ErrNotFound
		}
		s.logger.Error().
			Err(err).
			Str("bucket", s.privateBucket).
			Str("key", key).
			Msg("failed to get object")
		return nil, fmt.Errorf("failed to get object (bucket=%s, key=%s): %w", s.privateBucket, key, err)
	}
	defer result.Body.Close()

	body, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read object body %s: %w", key, err)
	}

	return body, nil
}

func (s *s3Store) PublicURL(key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.publicBucket, s.region, key)
}

func (s *s3Store) SignedGetURL(ctx context.Context, key string, ttl time.Duration, filename string) (string, error) {
	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket:                     aws.String(s.privateBucket),
		Key:                        aws.String(key),
		ResponseContentDisposition: aws.String(fmt.Sprintf("attachment; filename=%q", filename)),
	}, func(o *s3.PresignOptions) {
		o.Expires = ttl
	})
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("key", key).
			Msg("failed to presign download URL")
		return "", fmt.Errorf("failed to presign download URL for %s: %w", key, err)
	}

	return req.URL, nil
}
