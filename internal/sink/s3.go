package sink

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/KAWAHARA-souta/alma-sbom/internal/models"
)

const s3Scheme = "s3://"

// S3Options configure the S3 client. Empty fields fall back to the default
// AWS credential chain and region.
type S3Options struct {
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

// PutObjectAPI is the part of the S3 client the sink needs.
type PutObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3 uploads a document as a single object.
type S3 struct {
	client PutObjectAPI
	bucket string
	key    string
}

// ParseS3URL splits s3://bucket/key.
func ParseS3URL(location string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(location, s3Scheme)
	if !ok {
		return "", "", models.NewError(models.ErrConfiguration, "output-file", "not an S3 URL: %q", location)
	}
	bucket, key, _ = strings.Cut(rest, "/")
	if bucket == "" || key == "" || strings.HasSuffix(key, "/") {
		return "", "", models.NewError(models.ErrConfiguration, "output-file", "S3 URL %q must name a bucket and an object key", location)
	}
	return bucket, key, nil
}

// NewS3 creates an S3 sink from the default AWS configuration
func NewS3(ctx context.Context, bucket, key string, opts S3Options) (*S3, error) {
	var loadOpts []func(*config.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(opts.Region))
	}
	if opts.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, &models.SBOMError{Type: models.ErrConfiguration, Subject: "s3", Err: fmt.Errorf("failed to load AWS config: %w", err)}
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			// path-style addressing for MinIO and other S3-compatible stores
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	return NewS3WithClient(client, bucket, key), nil
}

// NewS3WithClient creates an S3 sink around an existing client
func NewS3WithClient(client PutObjectAPI, bucket, key string) *S3 {
	return &S3{client: client, bucket: bucket, key: key}
}

// Put implements Sink.
func (s *S3) Put(ctx context.Context, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return &models.SBOMError{Type: models.ErrFileOp, Subject: s.Location(), Err: fmt.Errorf("failed to upload: %w", err)}
	}
	return nil
}

// Location implements Sink.
func (s *S3) Location() string {
	return s3Scheme + s.bucket + "/" + s.key
}
