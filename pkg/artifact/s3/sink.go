// Package s3 persists export artifacts to an S3-compatible bucket (AWS S3 or
// MinIO).
package s3

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/matzehuels/pedigree/pkg/artifact"
	"github.com/matzehuels/pedigree/pkg/errors"
)

// Config holds connection settings. Credentials come from the default AWS
// chain (environment, shared config, instance role).
type Config struct {
	Bucket    string
	Region    string
	Endpoint  string // optional; set for MinIO and other S3-compatible stores
	PathStyle bool
	Prefix    string // key prefix, e.g. "exports/"
}

type putAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Sink implements artifact.Sink on a single bucket.
type Sink struct {
	client putAPI
	bucket string
	prefix string
}

var _ artifact.Sink = (*Sink)(nil)

// New creates a sink from cfg.
func New(ctx context.Context, cfg Config) (*Sink, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return &Sink{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

// Put uploads a under <prefix><name>, overwriting an existing object, and
// returns its s3:// URI.
func (s *Sink) Put(ctx context.Context, a *artifact.Artifact) (string, error) {
	if err := errors.ValidateArtifactName(a.Name); err != nil {
		return "", err
	}
	key := path.Join(s.prefix, a.Name)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(a.Data),
		ContentType: aws.String(a.ContentType),
		Metadata: map[string]string{
			"export-id": a.ID,
			"format":    a.Format,
		},
	})
	if err != nil {
		return "", fmt.Errorf("put s3://%s/%s: %w", s.bucket, key, err)
	}
	return fmt.Sprintf("s3://%s/%s", s.bucket, key), nil
}
