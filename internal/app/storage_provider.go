package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/yungbote/stoplight-backend/internal/blob"
	"github.com/yungbote/stoplight-backend/internal/blob/fs"
	"github.com/yungbote/stoplight-backend/internal/blob/gcs"
	"github.com/yungbote/stoplight-backend/internal/blob/memory"
	"github.com/yungbote/stoplight-backend/internal/blob/s3"
	"github.com/yungbote/stoplight-backend/internal/config"
	"github.com/yungbote/stoplight-backend/internal/platform/logger"
)

type StorageProviderBootstrapErrorCode string

const (
	StorageProviderBootstrapErrorInvalidDriver StorageProviderBootstrapErrorCode = "invalid_driver"
	StorageProviderBootstrapErrorMissingBucket StorageProviderBootstrapErrorCode = "missing_bucket"
	StorageProviderBootstrapErrorConnectFailed StorageProviderBootstrapErrorCode = "connect_failed"
)

type StorageProviderBootstrapError struct {
	Code   StorageProviderBootstrapErrorCode
	Driver string
	Cause  error
}

func (e *StorageProviderBootstrapError) Error() string {
	if e == nil {
		return "source storage bootstrap failed"
	}
	return fmt.Sprintf("source storage bootstrap failed (code=%s driver=%q): %v", e.Code, e.Driver, e.Cause)
}

func (e *StorageProviderBootstrapError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// resolveStore opens the workbook store named by cfg.Driver. The returned
// closer is never nil.
func resolveStore(ctx context.Context, log *logger.Logger, cfg config.SourceConfig) (blob.Store, func() error, error) {
	noop := func() error { return nil }
	log.Info("Selecting source storage provider",
		"driver", cfg.Driver,
		"root", cfg.Root,
		"bucket", cfg.Bucket,
		"prefix", cfg.Prefix,
	)

	fail := func(code StorageProviderBootstrapErrorCode, err error) (blob.Store, func() error, error) {
		bootErr := &StorageProviderBootstrapError{Code: code, Driver: cfg.Driver, Cause: err}
		log.Error("Source storage provider bootstrap failed", "driver", cfg.Driver, "error_code", code, "error", err)
		return nil, noop, bootErr
	}

	switch blob.Driver(cfg.Driver) {
	case blob.DriverFilesystem, "":
		st, err := fs.New(cfg.Root)
		if err != nil {
			return fail(StorageProviderBootstrapErrorConnectFailed, err)
		}
		return st, noop, nil
	case blob.DriverMemory:
		return memory.New(), noop, nil
	case blob.DriverS3:
		if cfg.Bucket == "" {
			return fail(StorageProviderBootstrapErrorMissingBucket, errors.New("s3 bucket required"))
		}
		st, err := s3.New(ctx, s3.Config{
			Region:    cfg.Region,
			Bucket:    cfg.Bucket,
			Endpoint:  cfg.Endpoint,
			PathStyle: cfg.PathStyle,
		})
		if err != nil {
			return fail(StorageProviderBootstrapErrorConnectFailed, err)
		}
		return st, noop, nil
	case blob.DriverGCS:
		if cfg.Bucket == "" {
			return fail(StorageProviderBootstrapErrorMissingBucket, errors.New("gcs bucket required"))
		}
		st, err := gcs.New(ctx, gcs.Config{Bucket: cfg.Bucket, EmulatorHost: cfg.Endpoint})
		if err != nil {
			return fail(StorageProviderBootstrapErrorConnectFailed, err)
		}
		return st, st.Close, nil
	default:
		return fail(StorageProviderBootstrapErrorInvalidDriver, fmt.Errorf("unsupported source driver %q", cfg.Driver))
	}
}
