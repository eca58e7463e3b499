// Package storage provides an abstraction for publishing static bundles to an
// object store and making them publicly readable. The GCS implementation is
// the production backend (Firebase Storage buckets are GCS buckets); the
// interface allows a local directory backend for dry runs and testing.
package storage

import (
	"context"
	"io"
)

const (
	// ContentTypeHTML is the content type of every published bundle.
	ContentTypeHTML = "text/html"

	// DefaultCacheControl bounds how long clients and CDNs may cache a
	// bundle, so that republishing the same name becomes visible within an
	// hour.
	DefaultCacheControl = "public, max-age=3600"
)

// Uploader persists objects to a storage backend. Upload and MakePublic are
// separate operations: a successful upload does not imply the object can be
// read anonymously.
type Uploader interface {
	Upload(ctx context.Context, req *UploadRequest) (*UploadResult, error)
	MakePublic(ctx context.Context, objectName string) error
}

type UploadRequest struct {
	// ObjectName is the object path within the configured bucket.
	ObjectName string

	// Content is the data to be uploaded.
	Content io.Reader

	// ContentType is the MIME type of the content, e.g. "text/html".
	ContentType string

	// CacheControl is stored as the object's Cache-Control metadata.
	CacheControl string
}

// UploadResult is the outcome of a successful upload.
type UploadResult struct {
	// ObjectName is the object path within the configured bucket.
	ObjectName string

	// Size is the number of bytes written.
	Size int64
}
