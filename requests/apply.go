package requests

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/brettbedarf/vft/filesystem"
	"github.com/brettbedarf/vft/internal/pathutil"
	"github.com/brettbedarf/vft/internal/util"
	"github.com/brettbedarf/vft/vfs"
)

// DefinitionError reports why one definition could not be applied
type DefinitionError struct {
	Index int
	Path  string
	Err   error
}

func (e *DefinitionError) Error() string {
	return fmt.Sprintf("definition %d (%s): %v", e.Index, e.Path, e.Err)
}

func (e *DefinitionError) Unwrap() error {
	return e.Err
}

// Result summarizes an [Apply] run
type Result struct {
	Added   int // entries created, including missing parent directories
	Skipped int // directory definitions that already existed
	Errors  []*DefinitionError
}

// Err combines all definition errors, or returns nil
func (r Result) Err() error {
	var merr *multierror.Error
	for _, e := range r.Errors {
		merr = multierror.Append(merr, e)
	}
	return merr.ErrorOrNil()
}

// Apply adds every definition to v in order. A failing definition does not
// stop the run; its error is collected in the result.
func Apply(v *vfs.VFS, defs []NodeDefinitionDTO) Result {
	logger := util.GetLogger("Requests.Apply")

	var res Result
	before := v.Size()
	for i := range defs {
		skipped, err := apply(v, &defs[i])
		if err != nil {
			logger.Debug().Err(err).Str("path", defs[i].Path).Msg("Definition rejected")
			res.Errors = append(res.Errors, &DefinitionError{Index: i, Path: defs[i].Path, Err: err})
			continue
		}
		if skipped {
			res.Skipped++
		}
	}
	// Failed definitions leave nothing behind, so the difference counts created parents too
	res.Added = v.Size() - before

	logger.Info().Int("added", res.Added).Int("skipped", res.Skipped).Int("failed", len(res.Errors)).Msg("Applied definitions")
	return res
}

func apply(v *vfs.VFS, def *NodeDefinitionDTO) (bool, error) {
	segs := pathutil.Segments(def.Path)
	if len(segs) == 0 {
		return false, fmt.Errorf("%w: cannot define the root", filesystem.ErrInvalidEntry)
	}
	for i, seg := range segs {
		segs[i] = strings.TrimSpace(seg)
		if segs[i] == "." || segs[i] == ".." {
			return false, fmt.Errorf("%w: invalid path segment in %s", filesystem.ErrInvalidEntry, def.Path)
		}
	}
	p := pathutil.Join(append([]string{pathutil.Separator}, segs...)...)

	if inode, err := v.Inode(p); err == nil {
		e, err := v.Get(inode)
		if err == nil && def.isDir() && e.IsDir() && !e.IsSymlink() && def.Inode == nil {
			return true, nil
		}
		return false, fmt.Errorf("%w: %s already exists", filesystem.ErrInvalidEntry, def.Path)
	}

	if _, err := v.AddPath(p, def.Candidate()); err != nil {
		return false, err
	}
	return false, nil
}

// Export describes every entry below the root of v as definitions that
// [Apply] recreates with the same inodes.
func Export(v *vfs.VFS) ([]NodeDefinitionDTO, error) {
	var defs []NodeDefinitionDTO
	err := v.Walk(v.Root(), func(p string, e filesystem.Entry) error {
		if e.IsRoot() {
			return nil
		}
		defs = append(defs, definitionOf(p, e))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return defs, nil
}

func definitionOf(p string, e filesystem.Entry) NodeDefinitionDTO {
	ts := e.Timestamp
	def := NodeDefinitionDTO{
		Path:      p,
		Type:      util.Pointer(e.Kind),
		Inode:     util.Pointer(e.Inode),
		Timestamp: &ts,
	}
	if len(e.Meta) > 0 {
		def.Meta = e.Meta
	}
	switch {
	case e.IsSymlink():
		def.Link = util.Pointer(e.Link)
	case !e.IsDir():
		def.Text = util.Pointer(e.Text)
		def.External = util.Pointer(e.External)
		if e.External {
			def.Size = util.Pointer(e.Size)
		}
	}
	return def
}
