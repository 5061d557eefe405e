// Package vft contains the domain contracts shared by the virtual file tree
// and the storage backends that persist it.
package vft

import (
	"context"
	"io"
	"time"

	"github.com/brettbedarf/vft/filesystem"
)

// StorageAdapter persists the entries of one tree and the content of its
// external files. The tree itself never calls an adapter: the owning layer
// (see the vfs package) decides when to sync.
type StorageAdapter interface {
	// Mount connects to the backing store and prepares it for use
	Mount(ctx context.Context) error

	// Unmount releases everything acquired by Mount
	Unmount(ctx context.Context) error

	// Sync applies a batch of inserted/updated entries and deleted inodes to
	// the remote index
	Sync(ctx context.Context, upserts []filesystem.Entry, deletes []string) error

	// Upload stores the content of an external file
	Upload(ctx context.Context, inode string, r io.Reader, size int64) error

	// Download opens the content of an external file. Caller must close it.
	Download(ctx context.Context, inode string) (io.ReadCloser, error)

	// History lists the stored versions of an entry, newest first
	History(ctx context.Context, inode string) ([]Version, error)

	// Restore makes a previous version current again
	Restore(ctx context.Context, inode, version string) error

	Info(ctx context.Context) (*StorageInfo, error)
}

// AdapterConfig carries the settings every adapter receives. Specific adapters
// read their own options from Options.
type AdapterConfig struct {
	StorageID string         `json:"storage_id" yaml:"storage_id"`
	Options   map[string]any `json:"options,omitempty" yaml:"options,omitempty"`
}

// AdapterFactory creates a concrete [StorageAdapter] from its configuration
type AdapterFactory func(cfg AdapterConfig) (StorageAdapter, error)

// Middleware wraps an adapter, e.g. for caching or logging
type Middleware func(next StorageAdapter) StorageAdapter

// Version describes one stored revision of an entry
type Version struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Size      uint64    `json:"size"` // in KB
}

// StorageInfo reports usage of the backing store
type StorageInfo struct {
	Entries int    `json:"entries"`
	Size    uint64 `json:"size"` // in KB
	Quota   uint64 `json:"quota,omitempty"`
}
