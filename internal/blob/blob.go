// Package blob stores uploaded exercise videos on the local filesystem or an
// S3-compatible bucket.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Driver identifies a blob storage backend.
type Driver string

const (
	DriverFilesystem Driver = "fs"
	DriverS3         Driver = "s3"
	DriverMemory     Driver = "memory"
)

var (
	// ErrNotFound is returned when a key does not exist.
	ErrNotFound = errors.New("blob not found")
	// ErrExists is returned by Put when the key is already taken.
	ErrExists = errors.New("blob already exists")
	// ErrNoPublicURL is returned by URL when the backend has no permanent
	// address for a blob.
	ErrNoPublicURL = errors.New("blob has no public url")
)

// PutOptions specifies optional parameters for Put.
type PutOptions struct {
	ContentType string
}

// Info describes a stored blob.
type Info struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size_bytes"`
	ContentType  string    `json:"content_type,omitempty"`
	LastModified time.Time `json:"last_modified"`
}

// Store is a create-only object store.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, opts PutOptions) (Info, error)
	Get(ctx context.Context, key string) (Info, io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	// URL returns a permanent link clients can fetch the blob from, or
	// ErrNoPublicURL.
	URL(ctx context.Context, key string) (string, error)
	Driver() Driver
}

// Presigner is implemented by stores that can issue short-lived direct
// download links.
type Presigner interface {
	PresignGet(ctx context.Context, key string) (string, error)
}

// VideoKey builds the storage key for an exercise clip:
// {athlete}/{exercise}/{unix_ms}_{filename}.
func VideoKey(athleteID, exerciseID uuid.UUID, at time.Time, filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == ' ' || r < 0x20:
			return '_'
		}
		return r
	}, name)
	if name == "." || name == "" || name == ".." {
		name = "video"
	}
	return fmt.Sprintf("%s/%s/%d_%s", athleteID, exerciseID, at.UnixMilli(), name)
}

// KeyOwner returns the athlete ID a video key belongs to.
func KeyOwner(key string) (uuid.UUID, bool) {
	first, _, ok := strings.Cut(key, "/")
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(first)
	return id, err == nil
}

// sanitizeKey rejects empty, absolute and traversing keys.
func sanitizeKey(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("empty key")
	}
	if strings.HasPrefix(key, "/") {
		return "", fmt.Errorf("invalid absolute key")
	}
	for _, part := range strings.Split(key, "/") {
		if part == ".." {
			return "", fmt.Errorf("invalid key traversal")
		}
	}
	return path.Clean(key), nil
}

// Config selects and configures a backend.
type Config struct {
	Driver Driver
	// Dir is the filesystem root.
	Dir string
	// PublicBaseURL prefixes keys when building URLs. When empty, the S3
	// driver has no permanent URLs and downloads go through PresignGet.
	PublicBaseURL string
	S3            S3Config
}

// Open constructs the configured backend.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Driver {
	case DriverFilesystem, "":
		return NewFilesystem(cfg.Dir, cfg.PublicBaseURL)
	case DriverS3:
		return NewS3(ctx, cfg.S3, cfg.PublicBaseURL)
	case DriverMemory:
		return NewMemory(cfg.PublicBaseURL), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %q", cfg.Driver)
	}
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + key
}
