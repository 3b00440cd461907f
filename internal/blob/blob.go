// Package blob selects the asset blob backend and re-exports its contract.
package blob

import (
	"context"
	"fmt"
	"os"

	"globewidget/internal/blob/core"
	"globewidget/internal/infra/blob/fs"
	"globewidget/internal/infra/blob/memory"
	"globewidget/internal/infra/blob/s3"
)

type (
	// Driver identifies a blob backend driver.
	Driver = core.Driver
	// PutOptions configures a blob write.
	PutOptions = core.PutOptions
	// SignedURLOptions configures URL pre-signing.
	SignedURLOptions = core.SignedURLOptions
	// Info describes stored blob metadata.
	Info = core.Info
	// Store is the interface for blob storage backends.
	Store = core.Store
)

const (
	DriverFilesystem = core.DriverFilesystem
	DriverS3         = core.DriverS3
	DriverMemory     = core.DriverMemory
)

var (
	ErrUnsupported = core.ErrUnsupported
	ErrExists      = core.ErrExists
	ErrNotFound    = core.ErrNotFound
)

// Open selects a Store implementation using environment variables.
//
//	GLOBEWIDGET_BLOB_DRIVER: fs|s3|memory (default fs)
//	GLOBEWIDGET_BLOB_FS_ROOT: directory root when driver=fs (default ./assets)
//	GLOBEWIDGET_BLOB_FS_BASE_URL: public URL the fs root is served under
//	GLOBEWIDGET_BLOB_S3_*: see s3.OpenFromEnv
func Open(ctx context.Context) (Store, error) {
	driver := os.Getenv("GLOBEWIDGET_BLOB_DRIVER")
	if driver == "" {
		driver = string(DriverFilesystem)
	}
	switch Driver(driver) {
	case DriverFilesystem:
		var opts []fs.Option
		if base := os.Getenv("GLOBEWIDGET_BLOB_FS_BASE_URL"); base != "" {
			opts = append(opts, fs.WithBaseURL(base))
		}
		store, err := fs.New(os.Getenv("GLOBEWIDGET_BLOB_FS_ROOT"), opts...)
		if err != nil {
			return nil, err
		}
		return store, nil
	case DriverS3:
		store, err := s3.OpenFromEnv(ctx)
		if err != nil {
			return nil, err
		}
		return store, nil
	case DriverMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %s", driver)
	}
}
