package s3

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// Storage stores uploaded files in an S3-compatible bucket (AWS or minio).
type Storage struct {
	client     *awss3.Client
	uploader   *manager.Uploader
	downloader *manager.Downloader
	bucket     string
	publicURL  string
}

type Config struct {
	// Endpoint is the host URL, e.g. "http://127.0.0.1:9000" for minio.
	// Empty means the AWS default resolver.
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	// PublicURL is the base for browser-facing object links. Falls back to
	// "<endpoint>/<bucket>" when empty.
	PublicURL string
}

func New(cfg Config) (*Storage, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket name is required")
	}

	client := awss3.NewFromConfig(aws.Config{Region: cfg.Region}, func(o *awss3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
		if cfg.AccessKey != "" {
			o.Credentials = credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")
		}
	})

	publicURL := strings.TrimRight(cfg.PublicURL, "/")
	if publicURL == "" {
		publicURL = strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	}

	return &Storage{
		client:     client,
		uploader:   manager.NewUploader(client),
		downloader: manager.NewDownloader(client),
		bucket:     cfg.Bucket,
		publicURL:  publicURL,
	}, nil
}

func (s *Storage) Upload(ctx context.Context, key, contentType string, data io.Reader) (string, error) {
	input := &awss3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   data,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := s.uploader.Upload(ctx, input); err != nil {
		return "", fmt.Errorf("upload object %s: %w", key, err)
	}
	return s.publicURL + "/" + key, nil
}

func (s *Storage) Download(ctx context.Context, key string) ([]byte, error) {
	buffer := manager.NewWriteAtBuffer([]byte{})
	_, err := s.downloader.Download(ctx, buffer, &awss3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("download object %s: %w", key, err)
	}
	return buffer.Bytes(), nil
}

func (s *Storage) Remove(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	objectIDs := make([]types.ObjectIdentifier, 0, len(keys))
	for _, key := range keys {
		objectIDs = append(objectIDs, types.ObjectIdentifier{Key: aws.String(key)})
	}
	output, err := s.client.DeleteObjects(ctx, &awss3.DeleteObjectsInput{
		Bucket: aws.String(s.bucket),
		Delete: &types.Delete{Objects: objectIDs},
	})
	if err != nil {
		return fmt.Errorf("delete objects: %w", err)
	}
	if len(output.Errors) > 0 {
		first := output.Errors[0]
		return fmt.Errorf("delete object %s: %s", aws.ToString(first.Key), aws.ToString(first.Message))
	}
	return nil
}
