package keystore

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

const gcsScheme = "gs://"

// Reader loads private key material by path.
type Reader interface {
	ReadKey(ctx context.Context, path string) ([]byte, error)
}

// Local reads keys from the local filesystem.
type Local struct{}

// ReadKey reads the file at path.
func (Local) ReadKey(_ context.Context, path string) ([]byte, error) {
	return os.ReadFile(path)
}

// GCS reads keys stored as Cloud Storage objects, addressed as gs://bucket/object.
type GCS struct {
	client  *storage.Client
	timeout time.Duration
}

// NewGCS creates a Cloud Storage key reader. An empty credentialsFile uses
// Application Default Credentials.
func NewGCS(ctx context.Context, credentialsFile string) (*GCS, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating storage client: %w", err)
	}
	return &GCS{
		client:  client,
		timeout: 30 * time.Second,
	}, nil
}

// ReadKey downloads the object at path.
func (g *GCS) ReadKey(ctx context.Context, path string) ([]byte, error) {
	bucket, object, err := ParseGCSPath(path)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	reader, err := g.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer reader.Close()

	return io.ReadAll(reader)
}

// Close closes the storage client.
func (g *GCS) Close() error {
	return g.client.Close()
}

// ParseGCSPath splits gs://bucket/object into its parts.
func ParseGCSPath(path string) (bucket, object string, err error) {
	rest, ok := strings.CutPrefix(path, gcsScheme)
	if !ok {
		return "", "", fmt.Errorf("not a gs:// path: %q", path)
	}
	bucket, object, ok = strings.Cut(rest, "/")
	if !ok || bucket == "" || object == "" {
		return "", "", fmt.Errorf("gs:// path needs bucket and object: %q", path)
	}
	return bucket, object, nil
}

// IsGCSPath reports whether path addresses a Cloud Storage object.
func IsGCSPath(path string) bool {
	return strings.HasPrefix(path, gcsScheme)
}

// Auto dispatches gs:// paths to Cloud Storage and everything else to the
// local filesystem. The storage client is only created on first gs:// read.
type Auto struct {
	CredentialsFile string

	local Local
	mu    sync.Mutex
	gcs   *GCS
}

// ReadKey reads the key from wherever path points.
func (a *Auto) ReadKey(ctx context.Context, path string) ([]byte, error) {
	if !IsGCSPath(path) {
		return a.local.ReadKey(ctx, path)
	}

	gcs, err := a.gcsReader(ctx)
	if err != nil {
		return nil, err
	}
	return gcs.ReadKey(ctx, path)
}

// Close releases the storage client if one was created.
func (a *Auto) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.gcs == nil {
		return nil
	}
	err := a.gcs.Close()
	a.gcs = nil
	return err
}

func (a *Auto) gcsReader(ctx context.Context) (*GCS, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.gcs != nil {
		return a.gcs, nil
	}
	gcs, err := NewGCS(ctx, a.CredentialsFile)
	if err != nil {
		return nil, err
	}
	a.gcs = gcs
	return gcs, nil
}
