package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	gcs "cloud.google.com/go/storage"
)

const gcsScheme = "gs://"

// Service opens inputs and creates outputs by location.
// A location is either a local path or a gs://bucket/object URI.
type Service interface {
	Open(ctx context.Context, location string) (io.ReadCloser, error)
	Create(ctx context.Context, location string) (io.WriteCloser, error)
}

// IsGCSURI reports whether location names a Cloud Storage object.
func IsGCSURI(location string) bool {
	return strings.HasPrefix(location, gcsScheme)
}

// ParseGCSURI splits "gs://bucket/path/to/file.csv" into bucket and object.
func ParseGCSURI(uri string) (bucket, object string, err error) {
	if !IsGCSURI(uri) {
		return "", "", fmt.Errorf("invalid GCS URI: %s", uri)
	}
	parts := strings.SplitN(strings.TrimPrefix(uri, gcsScheme), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid GCS URI (no object path): %s", uri)
	}
	return parts[0], parts[1], nil
}

// Router dispatches gs:// locations to Cloud Storage and everything else to
// the local filesystem. The Cloud Storage client is created on first use.
type Router struct {
	mu     sync.Mutex
	client *gcs.Client
}

// NewRouter creates a Router. It does not contact Cloud Storage until a gs:// location is used.
func NewRouter() *Router {
	return &Router{}
}

// Open opens location for reading.
func (r *Router) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	if !IsGCSURI(location) {
		f, err := os.Open(location)
		if err != nil {
			return nil, fmt.Errorf("open %q: %w", location, err)
		}
		return f, nil
	}

	bucket, object, err := ParseGCSURI(location)
	if err != nil {
		return nil, err
	}
	client, err := r.gcsClient(ctx)
	if err != nil {
		return nil, err
	}
	rc, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("open GCS object reader %s/%s: %w", bucket, object, err)
	}
	return rc, nil
}

// Create opens location for writing, replacing any existing content.
// For Cloud Storage the object is finalized when the writer is closed.
func (r *Router) Create(ctx context.Context, location string) (io.WriteCloser, error) {
	if !IsGCSURI(location) {
		if dir := filepath.Dir(location); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create directory %q: %w", dir, err)
			}
		}
		f, err := os.Create(location)
		if err != nil {
			return nil, fmt.Errorf("create %q: %w", location, err)
		}
		return f, nil
	}

	bucket, object, err := ParseGCSURI(location)
	if err != nil {
		return nil, err
	}
	client, err := r.gcsClient(ctx)
	if err != nil {
		return nil, err
	}
	w := client.Bucket(bucket).Object(object).NewWriter(ctx)
	w.ContentType = "text/csv"
	return w, nil
}

// Close releases the Cloud Storage client if one was created.
func (r *Router) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.client == nil {
		return nil
	}
	err := r.client.Close()
	r.client = nil
	return err
}

func (r *Router) gcsClient(ctx context.Context) (*gcs.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.client != nil {
		return r.client, nil
	}
	// Application Default Credentials (gcloud auth application-default login).
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	r.client = client
	return client, nil
}

var _ Service = (*Router)(nil)
