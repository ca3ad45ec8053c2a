// Package mediastore turns stored object keys (book covers, profile photos)
// into URLs a browser can load. Uploading is handled elsewhere.
package mediastore

import (
	"context"
	"strings"

	"github.com/bookcross/bookcross/pkg/config"
	"github.com/pkg/errors"
)

type Resolver interface {
	URL(ctx context.Context, key string) (string, error)
}

// New returns an S3 resolver when a bucket is configured, and a resolver for
// the static media prefix otherwise.
func New(ctx context.Context, cfg *config.Config) (Resolver, error) {
	if cfg.S3Bucket == "" {
		return NewLocalResolver(cfg.MediaURL), nil
	}
	r, err := NewS3Resolver(ctx, S3Options{
		Bucket:          cfg.S3Bucket,
		Region:          cfg.S3Region,
		Endpoint:        cfg.S3Endpoint,
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretAccessKey,
		Expiry:          cfg.S3URLExpiry,
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return r, nil
}

type LocalResolver struct {
	prefix string
}

func NewLocalResolver(prefix string) *LocalResolver {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &LocalResolver{prefix}
}

func (r *LocalResolver) URL(_ context.Context, key string) (string, error) {
	return r.prefix + strings.TrimPrefix(key, "/"), nil
}
