package services

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/kendall-kelly/otica-api/config"
)

// S3API is the subset of the S3 client used for uploads
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Storage stores uploads in an S3 bucket under the uploads/ prefix
type S3Storage struct {
	client    S3API
	bucket    string
	publicURL string
}

// NewS3Storage builds an S3 client from the AWS settings in cfg. Static credentials
// are used when set, otherwise the default AWS credential chain applies.
func NewS3Storage(ctx context.Context, cfg *config.Config) (*S3Storage, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.AWSRegion)}
	if cfg.AWSAccessKeyID != "" && cfg.AWSSecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AWSAccessKeyID,
			cfg.AWSSecretAccessKey,
			"",
		)))
	}

	awsConfig, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	publicURL := cfg.AWSS3PublicURL
	if publicURL == "" {
		publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.AWSS3Bucket, cfg.AWSRegion)
	}
	return NewS3StorageWithClient(s3.NewFromConfig(awsConfig), cfg.AWSS3Bucket, publicURL), nil
}

// NewS3StorageWithClient wraps an existing client
func NewS3StorageWithClient(client S3API, bucket, publicURL string) *S3Storage {
	return &S3Storage{client: client, bucket: bucket, publicURL: publicURL}
}

func (s *S3Storage) key(name string) string {
	return "uploads/" + name
}

// Save uploads content and returns its public URL
func (s *S3Storage) Save(ctx context.Context, name, contentType string, content []byte) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key(name)),
		Body:        bytes.NewReader(content),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}
	return s.publicURL + "/" + s.key(name), nil
}

