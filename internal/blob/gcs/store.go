package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/yungbote/stoplight-backend/internal/blob"
)

// Store reads workbooks from a Google Cloud Storage bucket.
type Store struct {
	client *storage.Client
	bucket string
}

type Config struct {
	Bucket string
	// EmulatorHost points the client at a fake-gcs-server style emulator.
	EmulatorHost string
}

func New(ctx context.Context, cfg Config) (*Store, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("gcs bucket required")
	}
	var opts []option.ClientOption
	if host := strings.TrimRight(strings.TrimSpace(cfg.EmulatorHost), "/"); host != "" {
		_ = os.Setenv("STORAGE_EMULATOR_HOST", host)
		opts = append(opts, option.WithoutAuthentication())
	} else {
		opts = append(opts, option.WithScopes(storage.ScopeReadOnly))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gcs client: %w", err)
	}
	return &Store{client: client, bucket: cfg.Bucket}, nil
}

func (s *Store) Driver() blob.Driver { return blob.DriverGCS }

func (s *Store) Close() error { return s.client.Close() }

func (s *Store) Get(ctx context.Context, key string) (blob.Info, io.ReadCloser, error) {
	k, err := blob.CleanKey(key)
	if err != nil {
		return blob.Info{}, nil, err
	}
	r, err := s.client.Bucket(s.bucket).Object(k).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, storage.ErrBucketNotExist) {
		return blob.Info{}, nil, fmt.Errorf("%w: %s", blob.ErrNotFound, key)
	}
	if err != nil {
		return blob.Info{}, nil, err
	}
	info := blob.Info{
		Key:          k,
		Size:         r.Attrs.Size,
		ContentType:  r.Attrs.ContentType,
		LastModified: r.Attrs.LastModified,
	}
	return info, r, nil
}

func (s *Store) List(ctx context.Context, prefix string) ([]blob.Info, error) {
	it := s.client.Bucket(s.bucket).Objects(ctx, &storage.Query{Prefix: prefix})
	var out []blob.Info
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, blob.Info{
			Key:          attrs.Name,
			Size:         attrs.Size,
			ContentType:  attrs.ContentType,
			ETag:         attrs.Etag,
			LastModified: attrs.Updated,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}
