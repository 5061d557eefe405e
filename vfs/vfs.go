// Package vfs hosts a virtual file tree for concurrent callers and binds it to
// an optional storage adapter.
package vfs

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/brettbedarf/vft"
	"github.com/brettbedarf/vft/filesystem"
	"github.com/brettbedarf/vft/internal/ident"
	"github.com/brettbedarf/vft/internal/pathutil"
	"github.com/brettbedarf/vft/internal/util"
)

// Config describes how to build a [VFS]. Every field is optional.
type Config struct {
	StorageID     string // generated when empty
	Adapter       vft.AdapterFactory
	AdapterConfig vft.AdapterConfig // StorageID defaults to the VFS storage id
	Middleware    []vft.Middleware  // Middleware[0] is the outermost wrapper
}

// Info combines the in-memory tree summary with the storage backend's
type Info struct {
	Memory  filesystem.Info  `json:"memory"`
	Storage *vft.StorageInfo `json:"storage,omitempty"`
}

// VFS serializes access to one [filesystem.Tree]; all methods are safe for
// concurrent use.
type VFS struct {
	mu        sync.RWMutex
	tree      *filesystem.Tree
	storageID string
	adapter   vft.StorageAdapter
}

func New(cfg Config) (*VFS, error) {
	logger := util.GetLogger("VFS.New")

	storageID := cfg.StorageID
	if storageID == "" {
		storageID = ident.New()
	} else if !ident.Valid(storageID) {
		return nil, fmt.Errorf("invalid storage id: %s", storageID)
	}

	v := &VFS{tree: filesystem.New(), storageID: storageID}
	if cfg.Adapter != nil {
		adapterCfg := cfg.AdapterConfig
		if adapterCfg.StorageID == "" {
			adapterCfg.StorageID = storageID
		}
		adapter, err := createAdapter(cfg.Adapter, adapterCfg, cfg.Middleware)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage adapter: %w", err)
		}
		v.adapter = adapter
	}

	logger.Debug().Str("storageID", storageID).Bool("adapter", v.adapter != nil).Msg("Created VFS")
	return v, nil
}

// createAdapter builds the adapter and wraps it so that middleware[0] sees
// calls first.
func createAdapter(factory vft.AdapterFactory, cfg vft.AdapterConfig, middleware []vft.Middleware) (vft.StorageAdapter, error) {
	adapter, err := factory(cfg)
	if err != nil {
		return nil, err
	}
	for i := len(middleware) - 1; i >= 0; i-- {
		adapter = middleware[i](adapter)
	}
	return adapter, nil
}

func (v *VFS) StorageID() string {
	return v.storageID
}

// Adapter returns the configured storage adapter, or nil
func (v *VFS) Adapter() vft.StorageAdapter {
	return v.adapter
}

// Info reports the tree summary and, when an adapter is configured, the
// storage summary.
func (v *VFS) Info(ctx context.Context) (Info, error) {
	v.mu.RLock()
	info := Info{Memory: v.tree.Info()}
	v.mu.RUnlock()

	if v.adapter == nil {
		return info, nil
	}
	storage, err := v.adapter.Info(ctx)
	if err != nil {
		return info, fmt.Errorf("failed to get storage info: %w", err)
	}
	info.Storage = storage
	return info, nil
}

func (v *VFS) Root() string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.tree.Root()
}

func (v *VFS) Size() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.tree.Size()
}

func (v *VFS) Has(inode string) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.tree.Has(inode)
}

func (v *VFS) Get(inode string) (filesystem.Entry, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.tree.Get(inode)
}

func (v *VFS) Add(c filesystem.Candidate) (filesystem.Entry, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.tree.Add(c)
}

func (v *VFS) Set(inode string, patch filesystem.Candidate) (filesystem.Entry, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.tree.Set(inode, patch)
}

func (v *VFS) Move(inode, newParent string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.tree.Move(inode, newParent)
}

func (v *VFS) Delete(inode string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.tree.Delete(inode)
}

func (v *VFS) List(inode string) ([]string, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.tree.List(inode)
}

func (v *VFS) Path(inode string) (string, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.tree.Path(inode)
}

func (v *VFS) Inode(p string) (string, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.tree.Inode(p)
}

// Walk runs [filesystem.Tree.Walk] under the read lock.
// fn must not call back into v.
func (v *VFS) Walk(inode string, fn filesystem.WalkFunc) error {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.tree.Walk(inode, fn)
}

// MkdirAll creates every missing directory of p and returns the inode of the
// last one. It is equivalent to `mkdir -p`: existing directories are reused
// and an existing leaf is not an error. Surrounding blanks of each segment are
// ignored, as they are for entry names. On failure no directory is left
// behind.
func (v *VFS) MkdirAll(p string) (string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	inode, _, err := v.mkdirAll(p, pathutil.Segments(p))
	return inode, err
}

// AddPath adds c at path p, creating missing parent directories first. The
// name and parent of c are taken from p. Either the entry and its parents are
// all added, or nothing is.
func (v *VFS) AddPath(p string, c filesystem.Candidate) (filesystem.Entry, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	segs := pathutil.Segments(p)
	if len(segs) == 0 {
		return filesystem.Entry{}, fmt.Errorf("%w: cannot add the root by path", filesystem.ErrInvalidEntry)
	}
	name := strings.TrimSpace(segs[len(segs)-1])
	if name == ".." {
		return filesystem.Entry{}, fmt.Errorf("%w: path %s escapes the root", filesystem.ErrInvalidEntry, p)
	}

	parent, created, err := v.mkdirAll(p, segs[:len(segs)-1])
	if err != nil {
		return filesystem.Entry{}, err
	}
	c.Name = &name
	c.Parent = &parent
	e, err := v.tree.Add(c)
	if err != nil {
		v.rollback(created)
		return filesystem.Entry{}, err
	}
	return e, nil
}

// mkdirAll walks segs from the root, creating what is missing, and returns the
// last directory plus the inodes it created in creation order.
func (v *VFS) mkdirAll(p string, segs []string) (string, []string, error) {
	logger := util.GetLogger("VFS.MkdirAll")

	cur, curPath := v.tree.Root(), "/"
	var created []string
	fail := func(err error) (string, []string, error) {
		v.rollback(created)
		return "", nil, err
	}
	for _, name := range segs {
		name = strings.TrimSpace(name)
		if name == ".." {
			return fail(fmt.Errorf("%w: path %s escapes the root", filesystem.ErrInvalidEntry, p))
		}
		curPath = pathutil.Join(curPath, name)
		next, err := v.tree.Inode(curPath)
		if err == nil {
			e, _ := v.tree.Get(next)
			if !e.IsDir() || e.IsSymlink() {
				return fail(fmt.Errorf("%w: %s is not a directory", filesystem.ErrNotDirectory, name))
			}
			cur = next
			continue
		}
		e, err := v.tree.Add(filesystem.Candidate{
			Name:   util.Pointer(name),
			Parent: util.Pointer(cur),
			Kind:   util.Pointer(filesystem.KindDirectory),
		})
		if err != nil {
			return fail(err)
		}
		cur = e.Inode
		created = append(created, cur)
	}
	if len(created) > 0 {
		logger.Debug().Str("path", p).Int("created", len(created)).Msg("Created directories")
	}
	return cur, created, nil
}

// rollback deletes directories created by mkdirAll, deepest first
func (v *VFS) rollback(created []string) {
	for _, inode := range slices.Backward(created) {
		if err := v.tree.Delete(inode); err != nil {
			util.GetLogger("VFS.rollback").Warn().Err(err).Str("inode", inode).Msg("Failed to remove directory")
		}
	}
}
