package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// GCSStore keeps blobs as objects under the uploads/ prefix of a bucket.
type GCSStore struct {
	client *gcs.Client
	bucket string
}

// NewGCSStore creates a storage client for bucket.
func NewGCSStore(ctx context.Context, bucket string, opts ...option.ClientOption) (*GCSStore, error) {
	opts = append(opts, option.WithScopes(gcs.ScopeReadWrite))
	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &GCSStore{client: client, bucket: bucket}, nil
}

func objectKey(name string) string {
	return "uploads/" + name
}

// Put uploads r as a new object. An existing object is never overwritten.
func (s *GCSStore) Put(ctx context.Context, name, contentType string, r io.Reader) error {
	obj := s.client.Bucket(s.bucket).Object(objectKey(name))

	_, err := obj.Attrs(ctx)
	switch {
	case err == nil:
		return ErrBlobExists
	case !errors.Is(err, gcs.ErrObjectNotExist):
		return fmt.Errorf("failed to stat object: %w", err)
	}

	w := obj.If(gcs.Conditions{DoesNotExist: true}).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write data to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && gerr.Code == http.StatusPreconditionFailed {
			return fmt.Errorf("object %s was created concurrently: %w", name, err)
		}
		return fmt.Errorf("failed to close GCS writer: %w", err)
	}
	return nil
}

// PublicURL is where an uploaded object can be fetched by browsers.
func (s *GCSStore) PublicURL(name string) string {
	return publicURL(s.bucket, name)
}

func publicURL(bucket, name string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, objectKey(name))
}

// Close releases the storage client
func (s *GCSStore) Close() error {
	return s.client.Close()
}
