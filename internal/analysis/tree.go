package analysis

import (
	"strings"

	"github.com/repolens/repolens/internal/domain"
)

// BuildTree converts a flat file listing into a nested directory tree.
// It is a pure transformation: the same input always yields the same tree.
//
// A path that names a file at a segment previously created as a directory
// (or vice versa) reflects an upstream data inconsistency; it resolves
// last-write-wins rather than failing the analysis.
func BuildTree(entries []domain.FileEntry) *domain.TreeNode {
	root := domain.NewDir()
	for _, e := range entries {
		insert(root, e)
	}
	return root
}

func insert(root *domain.TreeNode, e domain.FileEntry) {
	path := strings.Trim(e.Path, "/")
	if path == "" {
		return
	}

	segments := strings.Split(path, "/")
	node := root
	for i, seg := range segments {
		last := i == len(segments)-1
		if last {
			if e.IsDir {
				if child, ok := node.Children[seg]; ok && !child.File {
					return // existing directory keeps its children
				}
				node.Children[seg] = domain.NewDir()
			} else {
				node.Children[seg] = domain.NewFile(e.Size)
			}
			return
		}

		child, ok := node.Children[seg]
		if !ok || child.File {
			child = domain.NewDir()
			node.Children[seg] = child
		}
		node = child
	}
}
