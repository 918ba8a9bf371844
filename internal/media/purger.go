// Package media removes a deleted account's uploaded media (profile photos,
// vehicle documents) from object storage. Purging is always best-effort:
// deletion of the account proceeds whether or not the purge succeeds.
package media

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// Config holds object storage connection parameters.
type Config struct {
	Region       string
	AccessKey    string
	SecretKey    string
	BaseEndpoint string
	Bucket       string
}

// s3API is the subset of the S3 client the purger uses.
type s3API interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	DeleteObjects(ctx context.Context, params *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
}

// Purger deletes every object under a user's media prefix.
type Purger struct {
	client s3API
	bucket string
}

// NewPurger builds an S3-backed purger from static credentials and an
// optional custom endpoint (MinIO and friends).
func NewPurger(ctx context.Context, cfg Config) (*Purger, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.BaseEndpoint)
		}
		o.UsePathStyle = true
	})

	return &Purger{client: client, bucket: cfg.Bucket}, nil
}

// UserPrefix returns the object key prefix holding email's media.
func UserPrefix(email string) string {
	return fmt.Sprintf("users/%s/", email)
}

// PurgeUserMedia deletes all objects under the user's prefix and returns how
// many were removed.
func (p *Purger) PurgeUserMedia(ctx context.Context, email string) (int, error) {
	prefix := UserPrefix(email)
	deleted := 0

	var continuation *string
	for {
		page, err := p.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(p.bucket),
			Prefix:            aws.String(prefix),
			ContinuationToken: continuation,
		})
		if err != nil {
			return deleted, fmt.Errorf("failed to list user media: %w", err)
		}

		if len(page.Contents) > 0 {
			ids := make([]s3types.ObjectIdentifier, 0, len(page.Contents))
			for _, obj := range page.Contents {
				ids = append(ids, s3types.ObjectIdentifier{Key: obj.Key})
			}
			out, err := p.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
				Bucket: aws.String(p.bucket),
				Delete: &s3types.Delete{Objects: ids, Quiet: aws.Bool(true)},
			})
			if err != nil {
				return deleted, fmt.Errorf("failed to delete user media: %w", err)
			}
			deleted += len(ids) - len(out.Errors)
		}

		if page.IsTruncated == nil || !*page.IsTruncated {
			break
		}
		continuation = page.NextContinuationToken
	}

	return deleted, nil
}
