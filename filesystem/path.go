package filesystem

import (
	"slices"
	"strings"

	"github.com/brettbedarf/vft/internal/pathutil"
)

// Inode resolves a path to an inode. The path is normalized first, so
// `a\\b\..\b\c.txt` and "/a/b/c.txt" resolve alike.
//
// Resolution stops at the first symlink on the way: its inode is returned and
// any remaining segments are left unresolved. Links are never followed.
func (t *Tree) Inode(p string) (string, error) {
	if pathutil.IsRoot(p) {
		return t.root, nil
	}

	cur := t.index[t.root]
	for _, seg := range pathutil.Segments(p) {
		if !cur.IsDir() {
			return "", errf(ErrNotFound, "failed to retrieve inode at %q for path %s: %s is a file", seg, p, cur.Name)
		}
		child := t.childNamed(cur, seg, "")
		if child == nil {
			return "", errf(ErrNotFound, "failed to retrieve inode at %q for path %s", seg, p)
		}
		if child.IsSymlink() {
			return child.Inode, nil
		}
		cur = child
	}
	return cur.Inode, nil
}

// Path builds the absolute path of an inode by walking up its parents; the
// root is "/".
//
// For an entry whose ancestor was deleted the partial path up to the first
// missing ancestor is returned together with an ErrNotFound error.
func (t *Tree) Path(inode string) (string, error) {
	if !t.Has(inode) {
		return "", errf(ErrNotFound, "failed to retrieve entry for inode %s", inode)
	}

	names := make([]string, 0, 8)
	cur := inode
	for hops := 0; cur != ""; hops++ {
		if hops == MaxDepth {
			return "", errf(ErrInvalidEntry, "path of %s exceeds %d levels", inode, MaxDepth)
		}
		e, ok := t.index[cur]
		if !ok {
			slices.Reverse(names)
			return strings.Join(names, "/"), errf(ErrNotFound, "detached entry %s: ancestor %s is missing", inode, cur)
		}
		names = append(names, e.Name)
		cur = e.Parent
	}

	slices.Reverse(names)
	if p := strings.Join(names, "/"); p != "" {
		return p, nil
	}
	return "/", nil
}

// WalkFunc is called for every entry visited by [Tree.Walk]. Returning a
// non-nil error stops the walk and is returned by Walk.
type WalkFunc func(path string, e Entry) error

// Walk visits the subtree rooted at inode depth-first in children order,
// starting with inode itself.
func (t *Tree) Walk(inode string, fn WalkFunc) error {
	start, err := t.Path(inode)
	if err != nil {
		return err
	}
	return t.walk(t.index[inode], start, 0, fn)
}

func (t *Tree) walk(e *Entry, p string, depth int, fn WalkFunc) error {
	if depth >= MaxDepth {
		return errf(ErrInvalidEntry, "walk below %s exceeds %d levels", p, MaxDepth)
	}
	if err := fn(p, e.Clone()); err != nil {
		return err
	}
	for _, inode := range e.Children {
		child, ok := t.index[inode]
		if !ok {
			continue
		}
		if err := t.walk(child, childPath(p, child.Name), depth+1, fn); err != nil {
			return err
		}
	}
	return nil
}

func childPath(parent, name string) string {
	if parent == "/" {
		return "/" + name
	}
	return parent + "/" + name
}
