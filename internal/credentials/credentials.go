// Package credentials decides whether automated publishing is possible by
// probing for a service-account key on the local filesystem.
//
// A missing key is not an error: Resolve reports Unauthenticated and the
// caller falls back to manual instructions. A key that exists but cannot be
// parsed is an operator mistake and is returned as an error wrapping
// ErrMalformed.
package credentials

import (
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"google.golang.org/api/option"
)

// DefaultPath is the well-known location of the service-account key,
// relative to the working directory.
const DefaultPath = "service-account.json"

// ErrMalformed is wrapped by every error caused by a present but unusable
// credential artifact.
var ErrMalformed = errors.New("malformed credential artifact")

// Credentials authenticate to the object store and name the bucket to publish
// into. The zero value is not usable.
type Credentials struct {
	ProjectID   string
	ClientEmail string
	Bucket      string

	// raw is the full key file; it carries the signing material and is only
	// ever handed to the storage client.
	raw []byte
}

// ClientOptions returns the options that authenticate a Google Cloud client
// with these credentials.
func (c *Credentials) ClientOptions() []option.ClientOption {
	return []option.ClientOption{option.WithAuthCredentialsJSON(option.ServiceAccount, c.raw)}
}

// String identifies the credentials without revealing signing material.
func (c *Credentials) String() string {
	return fmt.Sprintf("%s (project %s, bucket %s)", c.ClientEmail, c.ProjectID, c.Bucket)
}

// GoString keeps %#v from dumping the key.
func (c *Credentials) GoString() string {
	return "credentials.Credentials{" + c.String() + "}"
}

// Result is either Authenticated or Unauthenticated.
type Result interface {
	isResult()
}

// Authenticated means a usable key was found.
type Authenticated struct {
	Credentials *Credentials
}

// Unauthenticated means no key exists at Path.
type Unauthenticated struct {
	Path string
}

func (Authenticated) isResult()   {}
func (Unauthenticated) isResult() {}

// Resolver probes a single credential artifact path.
type Resolver struct {
	// Path is the key file location. Defaults to DefaultPath.
	Path string

	// Bucket overrides the target bucket. When empty the project's default
	// Firebase Storage bucket is used.
	Bucket string
}

// serviceAccount holds the fields of a Google service-account key that the
// publisher relies on.
type serviceAccount struct {
	Type        string `json:"type"`
	ProjectID   string `json:"project_id"`
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
}

// Resolve probes the artifact path. It has no side effects.
func (r *Resolver) Resolve() (Result, error) {
	path := r.Path
	if path == "" {
		path = DefaultPath
	}

	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Unauthenticated{Path: path}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("credentials: %w: cannot stat %q: %v", ErrMalformed, path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("credentials: %w: %q is a directory", ErrMalformed, path)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("credentials: %w: cannot read %q: %v", ErrMalformed, path, err)
	}

	creds, err := parse(raw, r.Bucket)
	if err != nil {
		return nil, fmt.Errorf("credentials: %w: %q: %v", ErrMalformed, path, err)
	}
	return Authenticated{Credentials: creds}, nil
}

func parse(raw []byte, bucket string) (*Credentials, error) {
	var sa serviceAccount
	if err := json.Unmarshal(raw, &sa); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	if sa.Type != "service_account" {
		return nil, fmt.Errorf("unsupported key type %q, want %q", sa.Type, "service_account")
	}
	if sa.ClientEmail == "" {
		return nil, errors.New("missing client_email")
	}
	if block, _ := pem.Decode([]byte(sa.PrivateKey)); block == nil {
		return nil, errors.New("private_key is not a PEM block")
	}

	if bucket == "" {
		if sa.ProjectID == "" {
			return nil, errors.New("missing project_id and no bucket configured")
		}
		bucket = DefaultBucket(sa.ProjectID)
	}

	return &Credentials{
		ProjectID:   sa.ProjectID,
		ClientEmail: sa.ClientEmail,
		Bucket:      bucket,
		raw:         raw,
	}, nil
}

// DefaultBucket returns the default Firebase Storage bucket of a project.
func DefaultBucket(projectID string) string {
	return projectID + ".appspot.com"
}
