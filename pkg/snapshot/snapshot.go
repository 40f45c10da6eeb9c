// Package snapshot stores the rendered HTML of committed trees.
//
// A Store is a flat key/value space. FileStore keeps one file per key,
// RedisStore keeps keys with an expiry and S3Store keeps objects under a
// bucket prefix. Recorder is a fiber.Observer that writes a snapshot after
// every commit.
package snapshot

import (
	"context"
	"strings"

	"github.com/vango-dev/loom/internal/config"
	lerrors "github.com/vango-dev/loom/internal/errors"
)

var (
	// ErrNotFound is returned by Get for a missing key.
	ErrNotFound = lerrors.Sentinel("E401")

	// ErrStore wraps backend failures.
	ErrStore = lerrors.Sentinel("E402")
)

// Store persists snapshots by key.
type Store interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
}

func notFound(key string) error {
	return lerrors.New("E401").WithDetailf("no snapshot for %q", key)
}

func storeError(op, key string, err error) error {
	return lerrors.New("E402").WithOp(op).WithDetailf("key %q", key).Wrap(err)
}

// checkKey rejects keys that could escape a file or prefix namespace.
func checkKey(key string) error {
	if key == "" || key == "." || key == ".." ||
		strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return lerrors.New("E402").WithDetailf("invalid snapshot key %q", key)
	}
	return nil
}

// OpenOption configures Open.
type OpenOption func(*openOptions)

type openOptions struct {
	s3 S3API
}

// WithS3Client sets the client used by the s3 backend. Without it Open
// builds one with NewS3Client.
func WithS3Client(c S3API) OpenOption {
	return func(o *openOptions) {
		o.s3 = c
	}
}

// Open returns the store selected by cfg.Snapshot.Backend, or nil for the
// none backend.
func Open(cfg *config.Config, opts ...OpenOption) (Store, error) {
	var o openOptions
	for _, opt := range opts {
		opt(&o)
	}
	sc := cfg.Snapshot
	switch sc.Backend {
	case "", config.BackendNone:
		return nil, nil
	case config.BackendFile:
		return NewFileStore(cfg.SnapshotDir())
	case config.BackendRedis:
		return NewRedisStore(sc.RedisAddr, WithTTL(sc.TTL)), nil
	case config.BackendS3:
		client := o.s3
		if client == nil {
			c, err := NewS3Client(context.Background(), sc.S3Region)
			if err != nil {
				return nil, err
			}
			client = c
		}
		return NewS3Store(client, sc.S3Bucket, sc.S3Prefix), nil
	default:
		return nil, lerrors.New("E203").WithDetailf("unknown snapshot backend %q", sc.Backend)
	}
}
