// Package mount exposes a snapshot of a virtual file tree as a read-only FUSE
// filesystem.
package mount

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/brettbedarf/vft/config"
	"github.com/brettbedarf/vft/filesystem"
	"github.com/brettbedarf/vft/internal/util"
)

const (
	fileMode = 0o444
	dirMode  = 0o555
)

// Source is the part of a tree a mount reads from. Both *filesystem.Tree and
// *vfs.VFS satisfy it.
type Source interface {
	Root() string
	Walk(inode string, fn filesystem.WalkFunc) error
}

// Options configures a mount
type Options struct {
	config.MountOptions
	LogLvl       util.LogLevel
	AttrTimeout  time.Duration
	EntryTimeout time.Duration
}

// OptionsFromConfig converts the runtime config into mount options
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		MountOptions: cfg.MountOptions,
		LogLvl:       cfg.LogLvl,
		AttrTimeout:  time.Duration(cfg.AttrTimeout * float64(time.Second)),
		EntryTimeout: time.Duration(cfg.EntryTimeout * float64(time.Second)),
	}
}

// node is one entry of the mount plan; parents always precede children
type node struct {
	Inode   string
	Parent  string
	Name    string
	Path    string
	Variant filesystem.Variant
	Data    []byte // file content or symlink target
	Mtime   time.Time
}

// buildPlan snapshots src below its root in pre-order. Entries whose name
// cannot appear in a directory listing are left out together with their
// subtree.
func buildPlan(src Source) (string, []node, error) {
	var plan []node
	rootInode := src.Root()
	skipped := map[string]bool{}
	err := src.Walk(rootInode, func(p string, e filesystem.Entry) error {
		if e.Inode == rootInode {
			return nil
		}
		if skipped[e.Parent] || !validName(e.Name) {
			skipped[e.Inode] = true
			return nil
		}
		n := node{Inode: e.Inode, Parent: e.Parent, Name: e.Name, Path: p, Variant: e.Variant(), Mtime: e.Timestamp}
		switch n.Variant {
		case filesystem.VariantSymlink:
			n.Data = []byte(e.Link)
		case filesystem.VariantFile:
			n.Data = []byte(e.Text)
		}
		plan = append(plan, n)
		return nil
	})
	if err != nil {
		return "", nil, fmt.Errorf("failed to snapshot tree: %w", err)
	}
	if len(skipped) > 0 {
		util.GetLogger("Mount.Plan").Warn().Int("skipped", len(skipped)).Msg("Entries with unmountable names left out")
	}
	return rootInode, plan, nil
}

func validName(name string) bool {
	return name != "." && name != ".." && !strings.ContainsAny(name, "/\x00")
}

// root materializes the plan when the kernel attaches the filesystem
type root struct {
	fs.Inode
	inode string
	plan  []node
}

var _ fs.NodeOnAdder = (*root)(nil)

func (r *root) OnAdd(ctx context.Context) {
	logger := util.GetLogger("Mount.OnAdd")

	dirs := map[string]*fs.Inode{r.inode: &r.Inode}
	for _, n := range r.plan {
		parent, ok := dirs[n.Parent]
		if !ok {
			logger.Warn().Str("path", n.Path).Msg("Parent missing from plan")
			continue
		}

		var attr fuse.Attr
		attr.SetTimes(&n.Mtime, &n.Mtime, &n.Mtime)

		var child *fs.Inode
		switch n.Variant {
		case filesystem.VariantDirectory:
			child = parent.NewPersistentInode(ctx, &fs.Inode{}, fs.StableAttr{Mode: fuse.S_IFDIR})
			dirs[n.Inode] = child
		case filesystem.VariantSymlink:
			attr.Mode = fileMode
			child = parent.NewPersistentInode(ctx, &fs.MemSymlink{Attr: attr, Data: n.Data}, fs.StableAttr{Mode: fuse.S_IFLNK})
		default:
			attr.Mode = fileMode
			child = parent.NewPersistentInode(ctx, &fs.MemRegularFile{Attr: attr, Data: n.Data}, fs.StableAttr{Mode: fuse.S_IFREG})
		}
		parent.AddChild(n.Name, child, false)
	}
	logger.Debug().Int("entries", len(r.plan)).Msg("Populated mount")
}

// Server is a running mount
type Server struct {
	server     *fuse.Server
	mountPoint string
}

// Mount snapshots src and serves it read-only at mountPoint. Later changes to
// src are not visible in the mount.
func Mount(mountPoint string, src Source, opts Options) (*Server, error) {
	logger := util.GetLogger("Mount")

	rootInode, plan, err := buildPlan(src)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(mountPoint, dirMode); err != nil {
		return nil, fmt.Errorf("create mount point: %w", err)
	}

	fsOpts := &fs.Options{
		MountOptions: fuse.MountOptions{
			FsName: opts.FsName,
			Name:   opts.Name,
			Debug:  opts.Debug || opts.LogLvl == util.TraceLevel,
			Logger: util.NewLogLogger("Fuse", opts.LogLvl),
		},
		AttrTimeout:  &opts.AttrTimeout,
		EntryTimeout: &opts.EntryTimeout,
	}
	srv, err := fs.Mount(mountPoint, &root{inode: rootInode, plan: plan}, fsOpts)
	if err != nil {
		return nil, fmt.Errorf("mount: %w", err)
	}

	logger.Info().Str("mountPoint", mountPoint).Int("entries", len(plan)).Msg("Mounted")
	return &Server{server: srv, mountPoint: mountPoint}, nil
}

func (s *Server) MountPoint() string {
	return s.mountPoint
}

// Wait blocks until the filesystem is unmounted
func (s *Server) Wait() {
	s.server.Wait()
}

func (s *Server) Unmount() error {
	if err := s.server.Unmount(); err != nil {
		return fmt.Errorf("unmount %s: %w", s.mountPoint, err)
	}
	util.GetLogger("Mount").Info().Str("mountPoint", s.mountPoint).Msg("Unmounted")
	return nil
}
