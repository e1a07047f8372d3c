// Package publish uploads run outputs to an S3-compatible bucket.
package publish

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"chatsynth/internal/config"
	"chatsynth/internal/logging"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ErrNoBucket is returned when publishing is enabled without a bucket.
var ErrNoBucket = errors.New("publish: bucket is not configured")

// PutObjectAPI is the subset of the S3 client used by the publisher.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Publisher copies local files into a bucket under a common prefix.
type Publisher struct {
	client PutObjectAPI
	bucket string
	prefix string
}

// New returns a publisher over an existing client.
func New(client PutObjectAPI, bucket, prefix string) *Publisher {
	return &Publisher{client: client, bucket: bucket, prefix: prefix}
}

// NewS3Publisher builds an S3 client from cfg. Static credentials are used
// when both keys are set, otherwise the default AWS credential chain.
func NewS3Publisher(ctx context.Context, cfg config.PublishConfig) (*Publisher, error) {
	if cfg.Bucket == "" {
		return nil, ErrNoBucket
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	logging.Get(logging.CategoryPublish).Debug("S3 client ready for bucket %s (endpoint=%q)", cfg.Bucket, cfg.Endpoint)
	return New(client, cfg.Bucket, cfg.Prefix), nil
}

// ObjectKey returns the key a local file is stored under for a run.
func (p *Publisher) ObjectKey(runID, localPath string) string {
	return path.Join(p.prefix, runID, filepath.Base(localPath))
}

// Upload puts every file under <prefix>/<runID>/<basename> and returns the
// keys written. It stops at the first failure; keys uploaded before it are
// still returned.
func (p *Publisher) Upload(ctx context.Context, runID string, paths ...string) ([]string, error) {
	timer := logging.StartTimer(logging.CategoryPublish, "Upload")
	defer timer.Stop()

	keys := make([]string, 0, len(paths))
	for _, local := range paths {
		key := p.ObjectKey(runID, local)
		if err := p.put(ctx, key, local); err != nil {
			return keys, err
		}
		keys = append(keys, key)
	}

	logging.Publish("Uploaded %d files to s3://%s/%s", len(keys), p.bucket, path.Join(p.prefix, runID))
	return keys, nil
}

func (p *Publisher) put(ctx context.Context, key, local string) error {
	f, err := os.Open(local)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", local, err)
	}
	defer f.Close()

	_, err = p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(ContentType(local)),
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s to %s: %w", local, key, err)
	}
	return nil
}

// outputTypes covers the files a run writes; the system MIME table does not
// always know them.
var outputTypes = map[string]string{
	".csv": "text/csv; charset=utf-8",
	".txt": "text/plain; charset=utf-8",
}

// ContentType guesses a MIME type from the file extension.
func ContentType(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ct, ok := outputTypes[ext]; ok {
		return ct
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
