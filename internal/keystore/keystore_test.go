package keystore

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func TestParseGCSPath(t *testing.T) {
	tests := []struct {
		path       string
		wantBucket string
		wantObject string
		wantErr    bool
	}{
		{path: "gs://keys/AuthKey_ABC.p8", wantBucket: "keys", wantObject: "AuthKey_ABC.p8"},
		{path: "gs://keys/apple/music/AuthKey.p8", wantBucket: "keys", wantObject: "apple/music/AuthKey.p8"},
		{path: "gs://keys", wantErr: true},
		{path: "gs://keys/", wantErr: true},
		{path: "gs:///AuthKey.p8", wantErr: true},
		{path: "/local/AuthKey.p8", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			bucket, object, err := ParseGCSPath(tt.path)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got bucket=%q object=%q", bucket, object)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if bucket != tt.wantBucket || object != tt.wantObject {
				t.Errorf("got (%q, %q), want (%q, %q)", bucket, object, tt.wantBucket, tt.wantObject)
			}
		})
	}
}

func TestAutoReadsLocalFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "AuthKey.p8")
	if err := os.WriteFile(path, []byte("key material"), 0600); err != nil {
		t.Fatal(err)
	}

	a := &Auto{}
	defer a.Close()

	data, err := a.ReadKey(context.Background(), path)
	if err != nil {
		t.Fatalf("ReadKey failed: %v", err)
	}
	if string(data) != "key material" {
		t.Errorf("ReadKey = %q", data)
	}
	if a.gcs != nil {
		t.Error("storage client created for a local path")
	}
}

func TestAutoMissingLocalFile(t *testing.T) {
	a := &Auto{}
	_, err := a.ReadKey(context.Background(), filepath.Join(t.TempDir(), "missing.p8"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected fs.ErrNotExist, got %v", err)
	}
}
