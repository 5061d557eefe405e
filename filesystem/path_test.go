package filesystem

import (
	"errors"
	"strings"
	"testing"

	"github.com/brettbedarf/vft/internal/ident"
	"github.com/brettbedarf/vft/internal/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTree_PathAndInode(t *testing.T) {
	t.Parallel()

	tree := New()
	folder1 := addDir(t, tree, tree.Root(), "a")
	folder2 := addDir(t, tree, folder1.Inode, "b")
	file, err := tree.Add(Candidate{Name: util.Pointer("c.txt"), Parent: &folder2.Inode, Kind: util.Pointer(KindFile)})
	require.NoError(t, err)

	assert.Equal(t, "/a/b/c.txt", mustPath(t, tree, file.Inode))
	assert.Equal(t, "/a", mustPath(t, tree, folder1.Inode))
	assert.Equal(t, "/a/b", mustPath(t, tree, folder2.Inode))
	assert.Equal(t, "/", mustPath(t, tree, tree.Root()))

	for _, inode := range []string{tree.Root(), folder1.Inode, folder2.Inode, file.Inode} {
		assert.Equal(t, inode, mustInode(t, tree, mustPath(t, tree, inode)), "round trip for %s", inode)
	}

	assert.Equal(t, file.Inode, mustInode(t, tree, `a\\b\..\b\c.txt`))
	assert.Equal(t, file.Inode, mustInode(t, tree, "//a/./b//c.txt"))
	assert.Equal(t, folder2.Inode, mustInode(t, tree, "/a/b/"))
}

func TestTree_Inode_Root(t *testing.T) {
	t.Parallel()

	tree := New()
	for _, p := range []string{"", " ", "/", `\`, "//"} {
		assert.Equal(t, tree.Root(), mustInode(t, tree, p), "path %q", p)
	}
}

func TestTree_Inode_NotFound(t *testing.T) {
	t.Parallel()

	tree := New()
	a := addDir(t, tree, tree.Root(), "a")
	addFile(t, tree, a.Inode, "f.txt", "x")

	for _, p := range []string{"/missing", "/a/missing", "/a/f.txt/f.txt", "/a/f.txt/deeper", "../a"} {
		_, err := tree.Inode(p)
		assert.ErrorIs(t, err, ErrNotFound, "path %q", p)
	}
}

func TestTree_Inode_StopsAtSymlink(t *testing.T) {
	t.Parallel()

	tree := New()
	folder1 := addDir(t, tree, tree.Root(), "a")
	folder2 := addDir(t, tree, folder1.Inode, "b")
	link, err := tree.Add(Candidate{Name: util.Pointer("c"), Parent: &folder2.Inode, Kind: util.Pointer(KindDirectory), Link: util.Pointer(testLink)})
	require.NoError(t, err)
	assert.Equal(t, testLink, link.Link)

	inode := mustInode(t, tree, "/a/b/c/d/e.txt")
	assert.Equal(t, link.Inode, inode)
	assert.Equal(t, "/a/b/c", mustPath(t, tree, inode))

	got, err := tree.Get(inode)
	require.NoError(t, err)
	assert.Equal(t, testLink, got.Link)

	assert.Equal(t, link.Inode, mustInode(t, tree, "/a/b/c"))
}

func TestTree_Path_Errors(t *testing.T) {
	t.Parallel()

	tree := New()
	_, err := tree.Path(ident.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTree_Path_DepthBound(t *testing.T) {
	t.Parallel()

	t.Run("DeepestAttachable", func(t *testing.T) {
		t.Parallel()

		tree := New()
		last := addChain(t, tree, tree.Root(), MaxDepth-1)
		p := mustPath(t, tree, last.Inode)
		assert.Equal(t, MaxDepth-1, strings.Count(p, "/"))
		assert.Equal(t, last.Inode, mustInode(t, tree, p))

		var visited int
		require.NoError(t, tree.Walk(tree.Root(), func(string, Entry) error {
			visited++
			return nil
		}))
		assert.Equal(t, MaxDepth, visited)
	})

	t.Run("CorruptChain", func(t *testing.T) {
		t.Parallel()

		tree := New()
		last := addChain(t, tree, tree.Root(), MaxDepth-1)
		// hang the root below the deepest entry to fake an overlong chain
		tree.index[tree.root].Parent = last.Inode
		_, err := tree.Path(last.Inode)
		assert.ErrorIs(t, err, ErrInvalidEntry)
	})
}

func TestTree_Walk(t *testing.T) {
	t.Parallel()

	tree := New()
	a := addDir(t, tree, tree.Root(), "a")
	addFile(t, tree, a.Inode, "x.txt", "")
	addDir(t, tree, a.Inode, "b")
	addFile(t, tree, tree.Root(), "z.txt", "")

	var paths []string
	err := tree.Walk(tree.Root(), func(p string, e Entry) error {
		paths = append(paths, p)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"/", "/a", "/a/x.txt", "/a/b", "/z.txt"}, paths)

	paths = nil
	require.NoError(t, tree.Walk(a.Inode, func(p string, _ Entry) error {
		paths = append(paths, p)
		return nil
	}))
	assert.Equal(t, []string{"/a", "/a/x.txt", "/a/b"}, paths)

	stop := errors.New("stop")
	err = tree.Walk(tree.Root(), func(p string, _ Entry) error {
		if p == "/a/x.txt" {
			return stop
		}
		return nil
	})
	assert.ErrorIs(t, err, stop)
}
