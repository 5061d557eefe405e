package filesystem

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/brettbedarf/vft/internal/contenttype"
	"github.com/brettbedarf/vft/internal/ident"
	"github.com/brettbedarf/vft/internal/util"
)

func isSet(s *string) bool { return s != nil && *s != "" }
func isTrue(b *bool) bool  { return b != nil && *b }

// checkDirFields rejects content fields on a candidate that asks to be a directory
func checkDirFields(c *Candidate) error {
	if c.Kind == nil || *c.Kind != KindDirectory {
		return nil
	}
	if isTrue(c.External) {
		return errf(ErrInvalidEntry, "a directory can not be marked external")
	}
	if isSet(c.Text) {
		return errf(ErrInvalidEntry, "a directory can not contain text")
	}
	return nil
}

// build turns a candidate into a complete, validated entry. It does not look at
// the tree: parent existence and sibling names are checked on attach.
func build(c *Candidate) (Entry, error) {
	if c.Inode == nil || *c.Inode == "" {
		return Entry{}, errf(ErrInvalidEntry, "no inode provided")
	}
	if !ident.Valid(*c.Inode) {
		return Entry{}, errf(ErrInvalidEntry, "invalid inode: %s", *c.Inode)
	}
	if err := checkDirFields(c); err != nil {
		return Entry{}, err
	}

	kind := KindFile
	switch {
	case c.Kind != nil:
		kind = *c.Kind
	case c.Text == nil:
		kind = KindDirectory
	}
	if kind != KindFile && kind != KindDirectory {
		return Entry{}, errf(ErrInvalidEntry, "invalid type: %q", kind)
	}

	if c.Name == nil {
		return Entry{}, errf(ErrInvalidEntry, "no name provided")
	}
	name := strings.TrimSpace(*c.Name)
	if n := utf8.RuneCountInString(name); n == 0 || n > MaxNameLength {
		return Entry{}, errf(ErrInvalidEntry, "invalid name length: %q", *c.Name)
	}

	meta := cloneMeta(c.Meta)
	if meta == nil {
		meta = map[string]any{}
	}
	timestamp := time.Now().UTC()
	if c.Timestamp != nil {
		timestamp = c.Timestamp.UTC()
	}
	parent := ""
	if c.Parent != nil {
		parent = *c.Parent
	}

	e := Entry{
		Inode:     *c.Inode,
		Kind:      kind,
		Name:      name,
		Parent:    parent,
		Meta:      meta,
		Timestamp: timestamp,
	}

	if c.Link != nil && *c.Link != "" {
		link, err := checkLink(c)
		if err != nil {
			return Entry{}, err
		}
		e.Link = link
		return e, nil
	}

	if kind == KindFile {
		e.External = !contenttype.IsTextFile(name)
		if c.External != nil {
			e.External = *c.External
		}
		if c.Text != nil {
			e.Text = *c.Text
		}
	}

	if e.External {
		if c.Size == nil || *c.Size == 0 {
			return Entry{}, errf(ErrInvalidEntry, "external files must have a size: %s", name)
		}
		e.Size = *c.Size
	} else {
		e.Size = util.CeilDiv(uint64(len(e.Text)), KB)
	}

	if kind == KindDirectory {
		e.Children = []string{}
	}
	return e, nil
}

// checkLink validates the symlink fields of a candidate and returns the trimmed link
func checkLink(c *Candidate) (string, error) {
	link := strings.TrimSpace(*c.Link)
	if link == "" {
		return "", errf(ErrInvalidEntry, "invalid link: %q", *c.Link)
	}
	if utf8.RuneCountInString(link) > MaxLinkLength {
		return "", errf(ErrInvalidEntry, "invalid link length: %q", *c.Link)
	}
	if isSet(c.Text) {
		return "", errf(ErrInvalidEntry, "a symlink can not contain text")
	}
	if isTrue(c.External) {
		return "", errf(ErrInvalidEntry, "a symlink can not be marked external")
	}
	if c.Children != nil {
		return "", errf(ErrInvalidEntry, "a symlink can not contain children")
	}
	storageID, target, ok := strings.Cut(link, "/")
	if !ok || !ident.Valid(storageID) || !ident.Valid(target) {
		return "", errf(ErrInvalidEntry, "invalid link: %q", link)
	}
	return link, nil
}

// entryBytes is what an entry adds to the tree's running byte total
func entryBytes(e *Entry) uint64 {
	switch {
	case e.IsSymlink(), e.IsDir():
		return 0
	case e.External:
		return e.Size * KB
	default:
		return uint64(len(e.Text))
	}
}
