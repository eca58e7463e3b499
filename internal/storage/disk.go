package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LocalUploader writes objects to a directory on the local filesystem laid
// out as <baseDir>/<bucket>/<objectName>, which mirrors the path of the
// direct public URL. Public access is a file mode change.
type LocalUploader struct {
	baseDir string
	bucket  string
}

// NewLocalUploader creates a LocalUploader that writes objects under
// baseDir/bucket. The directory is created if it does not already exist.
func NewLocalUploader(baseDir, bucket string) (*LocalUploader, error) {
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("storage: failed to resolve absolute path for %q: %w", baseDir, err)
	}
	if err := os.MkdirAll(filepath.Join(abs, bucket), 0o755); err != nil {
		return nil, fmt.Errorf("storage: failed to create local bucket directory %q: %w", bucket, err)
	}
	return &LocalUploader{baseDir: abs, bucket: bucket}, nil
}

// Upload writes content to baseDir/bucket/objectName, creating any
// intermediate directories as needed. The file is private to the owner until
// MakePublic is called. Content type and cache control have no on-disk
// representation and are ignored.
func (u *LocalUploader) Upload(_ context.Context, req *UploadRequest) (*UploadResult, error) {
	dest := u.path(req.ObjectName)

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return nil, fmt.Errorf("storage: failed to create directory for %q: %w", req.ObjectName, err)
	}

	f, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, fmt.Errorf("storage: failed to create file %q: %w", dest, err)
	}
	defer f.Close()

	n, err := io.Copy(f, req.Content)
	if err != nil {
		return nil, fmt.Errorf("storage: failed to write file %q: %w", dest, err)
	}

	return &UploadResult{
		ObjectName: req.ObjectName,
		Size:       n,
	}, nil
}

// MakePublic makes the object world-readable.
func (u *LocalUploader) MakePublic(_ context.Context, objectName string) error {
	if err := os.Chmod(u.path(objectName), 0o644); err != nil {
		return fmt.Errorf("storage: failed to make %q public: %w", objectName, err)
	}
	return nil
}

func (u *LocalUploader) path(objectName string) string {
	return filepath.Join(u.baseDir, u.bucket, filepath.FromSlash(objectName))
}
