package store

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

type fakeS3Client struct {
	objects      map[string]string // key -> content type
	pageSize     int
	listErr      error
	putErr       error
	deleteErr    error
	listRequests int
}

func (f *fakeS3Client) ListObjectsV2(_ context.Context, input *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.listRequests++
	if f.listErr != nil {
		return nil, f.listErr
	}

	var matched []string
	for key := range f.objects {
		if strings.HasPrefix(key, aws.ToString(input.Prefix)) {
			matched = append(matched, key)
		}
	}
	// Stable order so continuation offsets line up across calls.
	sort.Strings(matched)

	start := 0
	if tok := aws.ToString(input.ContinuationToken); tok != "" {
		fmt.Sscanf(tok, "%d", &start)
	}
	end := len(matched)
	if f.pageSize > 0 && start+f.pageSize < end {
		end = start + f.pageSize
	}

	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(end < len(matched))}
	for _, key := range matched[start:end] {
		out.Contents = append(out.Contents, s3types.Object{Key: aws.String(key)})
	}
	if end < len(matched) {
		out.NextContinuationToken = aws.String(fmt.Sprintf("%d", end))
	}
	return out, nil
}

func (f *fakeS3Client) PutObject(_ context.Context, input *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	io.Copy(io.Discard, input.Body)
	f.objects[aws.ToString(input.Key)] = aws.ToString(input.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3Client) DeleteObject(_ context.Context, input *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	delete(f.objects, aws.ToString(input.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3Store_ListFollowsContinuationTokens(t *testing.T) {
	client := &fakeS3Client{
		pageSize: 2,
		objects: map[string]string{
			"properties/elm-house/image-1.jpg": "image/jpeg",
			"properties/elm-house/image-2.png": "image/png",
			"properties/elm-house/image-3.gif": "image/gif",
			"properties/oak-flat/image-1.jpg":  "image/jpeg",
		},
	}
	s := NewS3Store(client, "bucket", "https://img.example.com")

	keys, err := s.List(context.Background(), "properties/elm-house/")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(keys) != 3 {
		t.Fatalf("expected 3 keys, got %d: %v", len(keys), keys)
	}
	if client.listRequests < 2 {
		t.Errorf("expected pagination across requests, got %d request(s)", client.listRequests)
	}
	for _, key := range keys {
		if !strings.HasPrefix(key, "properties/elm-house/") {
			t.Errorf("key %q escaped the prefix", key)
		}
	}
}

func TestS3Store_PutPreservesContentType(t *testing.T) {
	client := &fakeS3Client{objects: map[string]string{}}
	s := NewS3Store(client, "bucket", "https://img.example.com")

	err := s.Put(context.Background(), "properties/elm-house/image-1.webp", []byte("data"), "image/webp")
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if ct := client.objects["properties/elm-house/image-1.webp"]; ct != "image/webp" {
		t.Errorf("stored content type = %q, want image/webp", ct)
	}
}

func TestS3Store_Delete(t *testing.T) {
	client := &fakeS3Client{objects: map[string]string{
		"properties/elm-house/image-1.jpg": "image/jpeg",
	}}
	s := NewS3Store(client, "bucket", "https://img.example.com")

	if err := s.Delete(context.Background(), "properties/elm-house/image-1.jpg"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if len(client.objects) != 0 {
		t.Errorf("expected bucket empty after delete, got %v", client.objects)
	}
}

func TestS3Store_PublicURL(t *testing.T) {
	tests := []struct {
		base string
		key  string
		want string
	}{
		{"https://img.example.com", "properties/elm-house/image-1.jpg", "https://img.example.com/properties/elm-house/image-1.jpg"},
		{"https://img.example.com/", "properties/elm-house/image-1.jpg", "https://img.example.com/properties/elm-house/image-1.jpg"},
	}
	for _, tt := range tests {
		s := NewS3Store(&fakeS3Client{}, "bucket", tt.base)
		if got := s.PublicURL(tt.key); got != tt.want {
			t.Errorf("PublicURL(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestPropertyPrefix(t *testing.T) {
	if got := PropertyPrefix("elm-house"); got != "properties/elm-house/" {
		t.Errorf("PropertyPrefix = %q, want properties/elm-house/", got)
	}
}
