package finder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/watzon/tessera/internal/config"
)

// ErrInvalidS3Config is returned when required S3 settings are missing.
var ErrInvalidS3Config = errors.New("invalid S3 configuration")

// S3 finds templates in an S3 bucket. Roots are key prefixes inside
// the configured bucket, so a theme chain can live entirely in object
// storage.
type S3 struct {
	client *s3.Client
	bucket string
}

// NewS3 creates an S3-backed finder.
func NewS3(ctx context.Context, cfg config.S3Config) (*S3, error) {
	if cfg.Region == "" {
		return nil, fmt.Errorf("%w: region is required", ErrInvalidS3Config)
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("%w: bucket is required", ErrInvalidS3Config)
	}
	if cfg.AccessKeyID == "" {
		return nil, fmt.Errorf("%w: access_key_id is required", ErrInvalidS3Config)
	}
	if cfg.SecretAccessKey == "" {
		return nil, fmt.Errorf("%w: secret_access_key is required", ErrInvalidS3Config)
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	clientOpts := []func(*s3.Options){
		func(o *s3.Options) {
			o.UsePathStyle = cfg.ForcePathStyle
		},
	}

	if cfg.Endpoint != "" {
		clientOpts = append(clientOpts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}

	return &S3{
		client: s3.NewFromConfig(awsCfg, clientOpts...),
		bucket: cfg.Bucket,
	}, nil
}

func (f *S3) Exists(ctx context.Context, root, name string) (bool, error) {
	_, err := f.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(f.bucket),
		Key:    aws.String(f.key(root, name)),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, fmt.Errorf("checking template %q in %q: %w", name, root, err)
	}

	return true, nil
}

func (f *S3) Read(ctx context.Context, root, name string) ([]byte, error) {
	resp, err := f.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(f.bucket),
		Key:    aws.String(f.key(root, name)),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, fmt.Errorf("%w: %q in %q", ErrNotFound, name, root)
		}
		return nil, fmt.Errorf("getting template %q in %q: %w", name, root, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading template %q in %q: %w", name, root, err)
	}

	return data, nil
}

func (f *S3) key(root, name string) string {
	return path.Join(root, name)
}
