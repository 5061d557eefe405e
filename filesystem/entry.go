package filesystem

import (
	"slices"
	"time"
)

const (
	// MaxNameLength is the maximum number of characters in an entry name
	MaxNameLength = 80
	// MaxLinkLength is the maximum number of characters in a symlink target
	MaxLinkLength = 80
	// MaxDepth bounds parent traversal when building paths
	MaxDepth = 255
	// KB is the size unit of [Entry.Size] and [Info.Size]
	KB = 1024
)

// Kind is the stored type of an entry. Symlinks are files or directories
// carrying a Link.
type Kind string

const (
	KindFile      Kind = "file"
	KindDirectory Kind = "directory"
)

// Variant is the tagged view of an entry, see [Entry.Variant].
type Variant int

const (
	VariantFile Variant = iota
	VariantDirectory
	VariantSymlink
)

func (v Variant) String() string {
	switch v {
	case VariantDirectory:
		return "directory"
	case VariantSymlink:
		return "symlink"
	default:
		return "file"
	}
}

// Entry is one node of the tree. Entries handed out by a [Tree] are copies;
// mutating them has no effect on the tree.
type Entry struct {
	Inode     string         `json:"inode" yaml:"inode"`
	Kind      Kind           `json:"type" yaml:"type"`
	Name      string         `json:"name" yaml:"name"`
	Parent    string         `json:"parent,omitempty" yaml:"parent,omitempty"`     // empty only for the root
	Children  []string       `json:"children,omitempty" yaml:"children,omitempty"` // nil unless a plain directory
	Meta      map[string]any `json:"meta" yaml:"meta"`
	Timestamp time.Time      `json:"timestamp" yaml:"timestamp"` // UTC, managed by the tree
	External  bool           `json:"external" yaml:"external"`   // content lives in an external store
	Text      string         `json:"text,omitempty" yaml:"text,omitempty"`
	Link      string         `json:"link,omitempty" yaml:"link,omitempty"` // storage-id/inode
	Size      uint64         `json:"size" yaml:"size"`                     // in KB, 0 for directories and symlinks
}

// IsDir reports whether the entry is stored as a directory, symlink or not.
func (e *Entry) IsDir() bool {
	return e.Kind == KindDirectory
}

// IsSymlink reports whether the entry carries a link.
func (e *Entry) IsSymlink() bool {
	return e.Link != ""
}

// IsRoot reports whether the entry has no parent
func (e *Entry) IsRoot() bool {
	return e.Parent == ""
}

func (e *Entry) Variant() Variant {
	switch {
	case e.IsSymlink():
		return VariantSymlink
	case e.IsDir():
		return VariantDirectory
	default:
		return VariantFile
	}
}

// Clone returns a copy that shares no children list or meta with e.
// Nested maps and slices in meta are copied too.
func (e *Entry) Clone() Entry {
	c := *e
	if e.Children != nil {
		c.Children = slices.Clone(e.Children)
	}
	if e.Meta != nil {
		c.Meta = cloneMeta(e.Meta)
	}
	return c
}

// cloneMeta deep-copies the map and slice containers produced by JSON and
// YAML decoding. Other values are copied as they are.
func cloneMeta(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneMetaValue(v)
	}
	return out
}

func cloneMetaValue(v any) any {
	switch v := v.(type) {
	case map[string]any:
		return cloneMeta(v)
	case []any:
		out := make([]any, len(v))
		for i, x := range v {
			out[i] = cloneMetaValue(x)
		}
		return out
	default:
		return v
	}
}

// Candidate is a partial entry passed to [Tree.Add] and [Tree.Set]. Nil fields
// are absent and get defaults (Add) or keep the stored value (Set).
type Candidate struct {
	Inode     *string        `json:"inode,omitempty" yaml:"inode,omitempty"`
	Kind      *Kind          `json:"type,omitempty" yaml:"type,omitempty"`
	Name      *string        `json:"name,omitempty" yaml:"name,omitempty"`
	Parent    *string        `json:"parent,omitempty" yaml:"parent,omitempty"`
	Children  *[]string      `json:"children,omitempty" yaml:"children,omitempty"`
	Meta      map[string]any `json:"meta,omitempty" yaml:"meta,omitempty"`
	Timestamp *time.Time     `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
	External  *bool          `json:"external,omitempty" yaml:"external,omitempty"`
	Text      *string        `json:"text,omitempty" yaml:"text,omitempty"`
	Link      *string        `json:"link,omitempty" yaml:"link,omitempty"`
	Size      *uint64        `json:"size,omitempty" yaml:"size,omitempty"`
}

// IsZero reports whether no field is set
func (c *Candidate) IsZero() bool {
	return c.Inode == nil && c.Kind == nil && c.Name == nil && c.Parent == nil &&
		c.Children == nil && c.Meta == nil && c.Timestamp == nil && c.External == nil &&
		c.Text == nil && c.Link == nil && c.Size == nil
}

// Info summarizes a tree
type Info struct {
	Entries int    `json:"entries" yaml:"entries"`
	Size    uint64 `json:"size" yaml:"size"` // in KB
}
