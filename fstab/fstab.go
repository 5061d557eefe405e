// Package fstab keeps track of the mounted virtual file trees by storage id.
package fstab

import (
	"fmt"
	"slices"

	"github.com/brettbedarf/vft/vfs"
	"github.com/brettbedarf/vft/internal/util"
	"github.com/puzpuzpuz/xsync/v4"
)

// Table maps storage ids to their VFS. It is safe for concurrent use.
type Table struct {
	entries *xsync.Map[string, *vfs.VFS]
}

func New() *Table {
	return &Table{entries: xsync.NewMap[string, *vfs.VFS]()}
}

// Register adds v under id. An id can only be registered once.
func (t *Table) Register(id string, v *vfs.VFS) error {
	logger := util.GetLogger("Fstab.Register")
	if v == nil {
		return fmt.Errorf("cannot register nil vfs for %s", id)
	}
	if _, loaded := t.entries.LoadOrStore(id, v); loaded {
		return fmt.Errorf("storage %s is already registered", id)
	}
	logger.Debug().Str("storageID", id).Msg("Registered")
	return nil
}

// Mount creates a VFS from cfg and registers it under its storage id.
func (t *Table) Mount(cfg vfs.Config) (*vfs.VFS, error) {
	v, err := vfs.New(cfg)
	if err != nil {
		return nil, err
	}
	if err := t.Register(v.StorageID(), v); err != nil {
		return nil, err
	}
	return v, nil
}

func (t *Table) Get(id string) (*vfs.VFS, bool) {
	return t.entries.Load(id)
}

// Unregister removes id and returns the VFS that was registered under it.
func (t *Table) Unregister(id string) (*vfs.VFS, bool) {
	v, ok := t.entries.LoadAndDelete(id)
	if ok {
		util.GetLogger("Fstab.Unregister").Debug().Str("storageID", id).Msg("Unregistered")
	}
	return v, ok
}

// IDs returns the registered storage ids in sorted order
func (t *Table) IDs() []string {
	ids := make([]string, 0, t.entries.Size())
	t.entries.Range(func(id string, _ *vfs.VFS) bool {
		ids = append(ids, id)
		return true
	})
	slices.Sort(ids)
	return ids
}

func (t *Table) Len() int {
	return t.entries.Size()
}

func (t *Table) Clear() {
	t.entries.Clear()
}
