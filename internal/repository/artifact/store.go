package artifact

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/oshokin/greengrass-home-assistant/internal/cloud"
	"github.com/oshokin/greengrass-home-assistant/internal/logger"
)

// API is the S3 subset used by the store.
type API interface {
	ListBuckets(ctx context.Context, params *s3.ListBucketsInput, optFns ...func(*s3.Options)) (*s3.ListBucketsOutput, error)
	CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Store uploads artifacts to one bucket.
type Store struct {
	api    API
	bucket string
	region string
}

// NewStore creates a store for bucket in region.
func NewStore(api API, bucket, region string) *Store {
	return &Store{
		api:    api,
		bucket: bucket,
		region: region,
	}
}

// Name returns the bucket name.
func (s *Store) Name() string {
	return s.bucket
}

// EnsureExists creates the bucket unless the account already owns it.
func (s *Store) EnsureExists(ctx context.Context) error {
	exists, err := s.exists(ctx)
	if err != nil {
		return err
	}

	if exists {
		logger.InfoKV(ctx, "Artifact bucket already exists", "bucket", s.bucket)
		return nil
	}

	input := &s3.CreateBucketInput{
		Bucket: aws.String(s.bucket),
	}

	if cloud.NeedsLocationConstraint(s.region) {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(s.region),
		}
	}

	logger.InfoKV(ctx, "Creating artifact bucket", "bucket", s.bucket, "region", s.region)

	if _, err = s.api.CreateBucket(ctx, input); err != nil {
		return fmt.Errorf("create bucket %s: %w", s.bucket, err)
	}

	return nil
}

// Upload puts the file at path into the bucket under key.
func (s *Store) Upload(ctx context.Context, path, key string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open artifact: %w", err)
	}

	defer file.Close()

	logger.InfoKV(ctx, "Uploading artifact", "bucket", s.bucket, "key", key)

	if _, err = s.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   file,
	}); err != nil {
		return fmt.Errorf("upload %s to %s: %w", key, s.bucket, err)
	}

	return nil
}

func (s *Store) exists(ctx context.Context) (bool, error) {
	paginator := s3.NewListBucketsPaginator(s.api, new(s3.ListBucketsInput))

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return false, fmt.Errorf("list buckets: %w", err)
		}

		for _, bucket := range page.Buckets {
			if aws.ToString(bucket.Name) == s.bucket {
				return true, nil
			}
		}
	}

	return false, nil
}
