package imagestore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsCfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Store stores images in an S3 bucket. Stored objects are addressed by
// their key and exposed through the bucket's public URL.
type S3Store struct {
	client   *s3.Client
	bucket   string
	baseURL  string
	kmsKeyID string
}

// LoadAWSConfig loads the AWS configuration, pointing at a custom endpoint if
// AWS_ENDPOINT_URL is set (e.g. a localstack instance during development).
func LoadAWSConfig(ctx context.Context, region string) (aws.Config, error) {
	endpoint := os.Getenv("AWS_ENDPOINT_URL")
	if endpoint == "" {
		return awsCfg.LoadDefaultConfig(ctx, awsCfg.WithRegion(region))
	}
	resolver := aws.EndpointResolverWithOptionsFunc(func(service, r string, _ ...any) (aws.Endpoint, error) {
		return aws.Endpoint{
			URL:               endpoint,
			HostnameImmutable: true,
			PartitionID:       "aws",
		}, nil
	})
	return awsCfg.LoadDefaultConfig(ctx, awsCfg.WithRegion(region), awsCfg.WithEndpointResolverWithOptions(resolver))
}

// NewS3Store creates an S3Store for the given bucket. baseURL is the public
// prefix under which stored keys are reachable, e.g.
// "https://my-bucket.s3.eu-west-1.amazonaws.com". kmsKeyID selects the KMS
// key for server side encryption; empty uses the account's default key.
func NewS3Store(cfg aws.Config, bucket, baseURL, kmsKeyID string) *S3Store {
	return &S3Store{
		client:   s3.NewFromConfig(cfg),
		bucket:   bucket,
		baseURL:  baseURL,
		kmsKeyID: kmsKeyID,
	}
}

func (s *S3Store) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyImage
	}
	if len(data) > MaxImageSize {
		return "", fmt.Errorf("image of %d bytes exceeds limit", len(data))
	}
	if contentType == "" {
		contentType = ContentTypeJPEG
	}

	in := &s3.PutObjectInput{
		Bucket:               aws.String(s.bucket),
		Key:                  aws.String(key),
		Body:                 bytes.NewReader(data),
		ContentType:          aws.String(contentType),
		ServerSideEncryption: types.ServerSideEncryptionAwsKms,
	}
	if s.kmsKeyID != "" {
		in.SSEKMSKeyId = aws.String(s.kmsKeyID)
	}
	_, err := s.client.PutObject(ctx, in)
	if err != nil {
		return "", fmt.Errorf("put s3 object %s: %w", key, err)
	}

	return s.baseURL + "/" + key, nil
}

func (s *S3Store) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, ErrImageNotFound
		}
		return nil, fmt.Errorf("get s3 object %s: %w", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read s3 object %s: %w", key, err)
	}
	return data, nil
}
