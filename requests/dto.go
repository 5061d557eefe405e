package requests

import (
	"time"

	"github.com/brettbedarf/vft/filesystem"
)

// NodeDefinitionDTO is the file representation of one node to create.
// Unset fields take the defaults of [filesystem.Tree.Add]; parent directories
// of Path are created as needed.
type NodeDefinitionDTO struct {
	Path      string           `json:"path" yaml:"path"`
	Type      *filesystem.Kind `json:"type,omitempty" yaml:"type,omitempty"`   // "file" or "directory"
	Inode     *string          `json:"inode,omitempty" yaml:"inode,omitempty"` // Optional inode to enable linking at definition time
	Text      *string          `json:"text,omitempty" yaml:"text,omitempty"`
	Link      *string          `json:"link,omitempty" yaml:"link,omitempty"` // storage-id/inode
	External  *bool            `json:"external,omitempty" yaml:"external,omitempty"`
	Size      *uint64          `json:"size,omitempty" yaml:"size,omitempty"` // in KB, required for external files
	Meta      map[string]any   `json:"meta,omitempty" yaml:"meta,omitempty"`
	Timestamp *time.Time       `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
}

// Candidate converts the definition into an entry candidate. Name and parent
// follow from Path when the candidate is added.
func (d *NodeDefinitionDTO) Candidate() filesystem.Candidate {
	return filesystem.Candidate{
		Inode:     d.Inode,
		Kind:      d.Type,
		Text:      d.Text,
		Link:      d.Link,
		External:  d.External,
		Size:      d.Size,
		Meta:      d.Meta,
		Timestamp: d.Timestamp,
	}
}

// isDir reports whether the definition describes a plain directory, applying
// the same kind inference as the tree.
func (d *NodeDefinitionDTO) isDir() bool {
	if d.Link != nil && *d.Link != "" {
		return false
	}
	kind := filesystem.KindFile
	if d.Text == nil {
		kind = filesystem.KindDirectory
	}
	return valueOrDefault(d.Type, kind) == filesystem.KindDirectory
}

func valueOrDefault[T any](ptr *T, defaultVal T) T {
	if ptr != nil {
		return *ptr
	}
	return defaultVal
}
