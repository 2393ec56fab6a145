// Package store is the durable home for property gallery images: an
// object store with prefix listing, per-key put and delete, and a
// stable public read URL per key.
package store

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// PropertyPrefix returns the object-store namespace for one property's
// images. Every stored gallery key lives under this prefix.
func PropertyPrefix(slug string) string {
	return fmt.Sprintf("properties/%s/", slug)
}

// ObjectStore abstracts the bucket operations the sync pipeline and
// the listings read path need.
type ObjectStore interface {
	// List returns every object key under the prefix.
	List(ctx context.Context, prefix string) ([]string, error)

	// Put writes an object with the given content type as metadata.
	Put(ctx context.Context, key string, body []byte, contentType string) error

	// Delete removes a single object.
	Delete(ctx context.Context, key string) error

	// PublicURL returns the stable read URL for a key.
	PublicURL(key string) string
}

// S3API is the subset of *s3.Client methods used by S3Store.
type S3API interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store implements ObjectStore against any S3-compatible bucket,
// including Cloudflare R2 via its S3 endpoint.
type S3Store struct {
	client    S3API
	bucket    string
	publicURL string
}

// NewS3Store returns an ObjectStore backed by the given bucket.
// publicURL is the base under which objects are served to readers.
func NewS3Store(client S3API, bucket, publicURL string) *S3Store {
	return &S3Store{
		client:    client,
		bucket:    bucket,
		publicURL: strings.TrimSuffix(publicURL, "/"),
	}
}

// List returns all keys under the prefix, following continuation
// tokens until the bucket reports none.
func (s *S3Store) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	var continuation *string

	for {
		out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			Prefix:            aws.String(prefix),
			ContinuationToken: continuation,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list objects under %q: %w", prefix, err)
		}

		for _, obj := range out.Contents {
			if obj.Key != nil {
				keys = append(keys, *obj.Key)
			}
		}

		if out.IsTruncated == nil || !*out.IsTruncated {
			break
		}
		continuation = out.NextContinuationToken
	}

	return keys, nil
}

// Put writes the object bytes with the original content type preserved
// as metadata.
func (s *S3Store) Put(ctx context.Context, key string, body []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to put object %q: %w", key, err)
	}
	return nil
}

// Delete removes one object. Objects are independent keys, not an
// atomic unit; callers decide how to react to a failed delete.
func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object %q: %w", key, err)
	}
	return nil
}

// PublicURL joins the configured public base URL with the key.
func (s *S3Store) PublicURL(key string) string {
	return s.publicURL + "/" + strings.TrimPrefix(key, "/")
}
