// Package blob re-exports core blob abstractions for stable external imports
// and selects a backend from configuration.
package blob

import (
	"github.com/katalvlaran/anndata/blob/core"
)

type (
	// Driver identifies a blob backend driver.
	Driver = core.Driver
	// PutOptions configures a blob write.
	PutOptions = core.PutOptions
	// Info describes stored blob metadata.
	Info = core.Info
	// Store is the interface for blob storage backends.
	Store = core.Store
)

const (
	// DriverFilesystem is the local filesystem driver.
	DriverFilesystem = core.DriverFilesystem
	// DriverS3 is the S3-compatible driver.
	DriverS3 = core.DriverS3
	// DriverMemory is the in-memory test driver.
	DriverMemory = core.DriverMemory
)

var (
	// ErrNotFound indicates an absent key.
	ErrNotFound = core.ErrNotFound
	// ErrInvalidKey indicates a key that cannot be mapped to storage.
	ErrInvalidKey = core.ErrInvalidKey
)
