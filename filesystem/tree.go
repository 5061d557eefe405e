// Package filesystem implements the virtual file tree: a flat index of
// entries keyed by inode with parent/children references stored as inodes.
package filesystem

import (
	"maps"
	"slices"
	"time"

	"github.com/brettbedarf/vft/internal/ident"
	"github.com/brettbedarf/vft/internal/util"
)

// AllEntries passed to [Tree.List] lists every inode in the tree
const AllEntries = ""

// Tree owns every entry of one virtual file tree.
//
// NOTE: Tree is not safe for concurrent use. Hosts sharing a tree between
// goroutines must serialize all calls, see the vfs package.
type Tree struct {
	index     map[string]*Entry
	root      string
	usedBytes uint64 // grows on Add/Set, never shrinks (reset by a root replacement)
}

// New returns a tree holding only a fresh root directory
func New() *Tree {
	t := &Tree{}
	t.format(ident.New())
	return t
}

func (t *Tree) format(rootInode string) *Entry {
	root := &Entry{
		Inode:     rootInode,
		Kind:      KindDirectory,
		Name:      "",
		Children:  []string{},
		Meta:      map[string]any{},
		Timestamp: time.Now().UTC(),
	}
	t.index = map[string]*Entry{rootInode: root}
	t.root = rootInode
	t.usedBytes = 0
	return root
}

// Root returns the inode of the root directory
func (t *Tree) Root() string {
	return t.root
}

// Size returns the number of entries
func (t *Tree) Size() int {
	return len(t.index)
}

// Info returns the entry count and the accumulated content size in KB.
func (t *Tree) Info() Info {
	return Info{
		Entries: len(t.index),
		Size:    util.CeilDiv(t.usedBytes, KB),
	}
}

func (t *Tree) Has(inode string) bool {
	_, ok := t.index[inode]
	return ok
}

// Get returns a copy of the entry
func (t *Tree) Get(inode string) (Entry, error) {
	e, ok := t.index[inode]
	if !ok {
		return Entry{}, errf(ErrNotFound, "failed to retrieve entry for inode %s", inode)
	}
	return e.Clone(), nil
}

// Add completes the candidate with defaults, validates it and attaches it to
// its parent. The inode is generated unless supplied.
//
// A candidate without a parent replaces the root: the whole tree is discarded
// and a new empty root is installed.
func (t *Tree) Add(c Candidate) (Entry, error) {
	logger := util.GetLogger("Tree.Add")

	if c.IsZero() {
		return Entry{}, errf(ErrInvalidEntry, "empty entry")
	}
	if c.Inode == nil || *c.Inode == "" {
		c.Inode = util.Pointer(ident.New())
	}
	if err := checkDirFields(&c); err != nil {
		return Entry{}, err
	}

	if c.Parent == nil || *c.Parent == "" {
		return t.replaceRoot(&c)
	}

	if t.Has(*c.Inode) {
		return Entry{}, errf(ErrInvalidEntry, "inode already exists: %s", *c.Inode)
	}
	e, err := build(&c)
	if err != nil {
		return Entry{}, err
	}
	parent, err := t.attachable(e.Parent, e.Name, e.Inode, 1)
	if err != nil {
		return Entry{}, err
	}

	parent.Children = append(parent.Children, e.Inode)
	t.index[e.Inode] = &e
	t.usedBytes += entryBytes(&e)

	logger.Debug().Str("inode", e.Inode).Str("parent", e.Parent).Str("name", e.Name).
		Stringer("variant", e.Variant()).Msg("Added entry")
	return e.Clone(), nil
}

func (t *Tree) replaceRoot(c *Candidate) (Entry, error) {
	logger := util.GetLogger("Tree.replaceRoot")

	if c.Name != nil {
		switch *c.Name {
		case "", "/", `\`:
		default:
			return Entry{}, errf(ErrInvalidEntry, "can not add root entry, invalid name: %q", *c.Name)
		}
	}
	if c.Kind != nil && *c.Kind != KindDirectory {
		return Entry{}, errf(ErrInvalidEntry, "can not add root entry, invalid type: %q", *c.Kind)
	}
	if !ident.Valid(*c.Inode) {
		return Entry{}, errf(ErrInvalidEntry, "invalid inode: %s", *c.Inode)
	}

	prev := len(t.index)
	root := t.format(*c.Inode)
	logger.Info().Str("root", root.Inode).Int("discarded", prev).Msg("Replaced root")
	return root.Clone(), nil
}

// attachable returns the directory named by parentInode if an entry called
// name spanning levels generations can be attached to it. self is ignored
// when checking sibling names.
//
// No attached entry ends up more than MaxDepth entries away from the top of
// its parent chain, so every reachable entry has a path.
func (t *Tree) attachable(parentInode, name, self string, levels int) (*Entry, error) {
	parent, ok := t.index[parentInode]
	if !ok {
		return nil, errf(ErrNotFound, "parent not found: %s", parentInode)
	}
	if !parent.IsDir() || parent.IsSymlink() {
		return nil, notDirectoryf("invalid parent type: %s", parentInode)
	}
	if t.childNamed(parent, name, self) != nil {
		return nil, errf(ErrInvalidEntry, "an entry named %q already exists in %s", name, parentInode)
	}
	if t.depth(parentInode)+levels > MaxDepth {
		return nil, errf(ErrInvalidEntry, "attaching %q below %s exceeds %d levels", name, parentInode, MaxDepth)
	}
	return parent, nil
}

// depth counts the entries on the parent chain of inode, inode included.
// Counting stops past MaxDepth.
func (t *Tree) depth(inode string) int {
	n := 0
	for cur := inode; cur != "" && n <= MaxDepth; n++ {
		e, ok := t.index[cur]
		if !ok {
			break
		}
		cur = e.Parent
	}
	return n
}

// height counts the generations of the subtree rooted at e, e included.
// Counting stops past MaxDepth.
func (t *Tree) height(e *Entry) int {
	return t.heightFrom(e, 1)
}

func (t *Tree) heightFrom(e *Entry, level int) int {
	if level > MaxDepth {
		return level
	}
	h := level
	for _, inode := range e.Children {
		if child, ok := t.index[inode]; ok {
			h = max(h, t.heightFrom(child, level+1))
		}
	}
	return h
}

// childNamed returns the child of dir called name, skipping the inode skip
func (t *Tree) childNamed(dir *Entry, name, skip string) *Entry {
	for _, inode := range dir.Children {
		if inode == skip {
			continue
		}
		if child, ok := t.index[inode]; ok && child.Name == name {
			return child
		}
	}
	return nil
}

// Set applies a partial update to name, text, meta, link or size and
// revalidates the whole entry. Inode, type, children, timestamp and external
// are read-only. The timestamp is refreshed.
func (t *Tree) Set(inode string, patch Candidate) (Entry, error) {
	logger := util.GetLogger("Tree.Set")

	old, ok := t.index[inode]
	if !ok {
		return Entry{}, errf(ErrNotFound, "failed to retrieve entry for setting on inode %s", inode)
	}
	if err := checkReadOnly(old, &patch); err != nil {
		return Entry{}, err
	}

	merged := Candidate{
		Inode:     &old.Inode,
		Kind:      &old.Kind,
		Name:      &old.Name,
		Meta:      old.Meta,
		External:  &old.External,
		Timestamp: util.Pointer(time.Now().UTC()),
	}
	if old.Parent != "" {
		merged.Parent = &old.Parent
	}
	if old.Children != nil {
		merged.Children = &old.Children
	}
	if old.Kind == KindFile && !old.IsSymlink() {
		merged.Text = &old.Text
	}
	if old.IsSymlink() {
		merged.Link = &old.Link
	}
	if old.Size > 0 {
		merged.Size = &old.Size
	}

	if patch.Name != nil {
		merged.Name = patch.Name
	}
	if patch.Text != nil {
		merged.Text = patch.Text
	}
	if patch.Meta != nil {
		merged.Meta = patch.Meta
	}
	if patch.Link != nil {
		merged.Link = patch.Link
	}
	if patch.Size != nil {
		merged.Size = patch.Size
	}

	e, err := build(&merged)
	if err != nil {
		return Entry{}, err
	}
	if e.Name != old.Name && old.Parent != "" {
		if parent, ok := t.index[old.Parent]; ok && t.childNamed(parent, e.Name, inode) != nil {
			return Entry{}, errf(ErrInvalidEntry, "an entry named %q already exists in %s", e.Name, old.Parent)
		}
	}
	if old.Children != nil {
		e.Children = old.Children
	}

	t.index[inode] = &e
	t.usedBytes += entryBytes(&e)

	logger.Debug().Str("inode", inode).Str("name", e.Name).Msg("Updated entry")
	return e.Clone(), nil
}

func checkReadOnly(old *Entry, patch *Candidate) error {
	if patch.Inode != nil && *patch.Inode != old.Inode {
		return errf(ErrReadOnly, `the property "inode" is read-only, delete and create a new entry instead`)
	}
	if patch.Kind != nil && *patch.Kind != old.Kind {
		return errf(ErrReadOnly, `the property "type" is read-only`)
	}
	if patch.Children != nil && len(*patch.Children) != len(old.Children) {
		return errf(ErrReadOnly, `the property "children" is read-only`)
	}
	if patch.Timestamp != nil && !patch.Timestamp.Equal(old.Timestamp) {
		return errf(ErrReadOnly, `the property "timestamp" is read-only, it is updated automatically`)
	}
	if patch.External != nil && *patch.External != old.External {
		return errf(ErrReadOnly, `the property "external" is read-only`)
	}
	if patch.Text != nil && *patch.Text != old.Text && old.External && (patch.Size == nil || *patch.Size == 0) {
		return errf(ErrReadOnly, `the property "text" of an external entry can only change together with its size`)
	}
	return nil
}

// Move re-attaches an entry under another directory. Descendants follow
// implicitly since they only reference their own parent.
func (t *Tree) Move(inode, newParent string) error {
	logger := util.GetLogger("Tree.Move")

	e, ok := t.index[inode]
	if !ok {
		return errf(ErrNotFound, "failed to retrieve entry for moving on inode %s", inode)
	}
	if e.Parent == newParent {
		return nil
	}
	if e.IsRoot() {
		return errf(ErrInvalidEntry, "the root directory can not be moved")
	}
	oldParent, ok := t.index[e.Parent]
	if !ok {
		return errf(ErrNotFound, "failed to retrieve current parent for moving on inode %s", inode)
	}
	for cur, hops := newParent, 0; cur != "" && hops <= len(t.index); hops++ {
		if cur == inode {
			return errf(ErrInvalidEntry, "can not move %s into itself or one of its descendants", inode)
		}
		next, ok := t.index[cur]
		if !ok {
			break
		}
		cur = next.Parent
	}
	target, err := t.attachable(newParent, e.Name, inode, t.height(e))
	if err != nil {
		return err
	}

	oldParent.Children = slices.DeleteFunc(oldParent.Children, func(c string) bool { return c == inode })
	e.Parent = newParent
	target.Children = append(target.Children, inode)

	logger.Debug().Str("inode", inode).Str("from", oldParent.Inode).Str("to", newParent).Msg("Moved entry")
	return nil
}

// Delete removes an entry from its parent and from the index. Descendants of a
// deleted directory are not removed: they stay addressable by inode but can no
// longer be reached from the root.
func (t *Tree) Delete(inode string) error {
	logger := util.GetLogger("Tree.Delete")

	e, ok := t.index[inode]
	if !ok {
		return errf(ErrNotFound, "failed to retrieve entry for deleting on inode %s", inode)
	}
	if e.IsRoot() {
		return errf(ErrInvalidEntry, "the root directory can not be deleted, add a new root instead")
	}
	if parent, ok := t.index[e.Parent]; ok {
		parent.Children = slices.DeleteFunc(parent.Children, func(c string) bool { return c == inode })
	}
	delete(t.index, inode)

	logger.Debug().Str("inode", inode).Int("orphaned", len(e.Children)).Msg("Deleted entry")
	return nil
}

// List returns the ordered children of a directory, or every inode in the tree
// for [AllEntries].
func (t *Tree) List(inode string) ([]string, error) {
	if inode == AllEntries {
		return slices.Sorted(maps.Keys(t.index)), nil
	}
	e, ok := t.index[inode]
	if !ok {
		return nil, errf(ErrNotFound, "failed to retrieve entry for listing on inode %s", inode)
	}
	if !e.IsDir() {
		return nil, notDirectoryf("invalid entry type for listing: %s", e.Kind)
	}
	children := slices.Clone(e.Children)
	if children == nil {
		children = []string{}
	}
	return children, nil
}
