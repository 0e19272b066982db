// Package filetree derives the hierarchical folder/file view shown in the
// studio sidebar from the flat path list of a file set. The flat list is
// the source of truth; the tree is a rebuildable index, recomputed whenever
// the set changes.
package filetree

import (
	"sort"
	"strings"

	"github.com/ashwanth2007/TheVibeCoders/internal/vfs"
)

// Kind distinguishes files from folders.
type Kind string

const (
	KindFile   Kind = "file"
	KindFolder Kind = "folder"
)

// Node is one entry in the projected tree. Folders carry children; files
// never do. Path is the full path from the project root.
type Node struct {
	Name     string  `json:"name"`
	Path     string  `json:"path"`
	Kind     Kind    `json:"kind"`
	Children []*Node `json:"children,omitempty"`
}

// Project builds the ordered forest for a file set. At every level folders
// sort before files, then case-sensitive alphabetical, so repeated
// projection of the same set never reshuffles entries. Duplicate paths
// collapse into one node.
func Project(fs vfs.FileSet) []*Node {
	root := &Node{Kind: KindFolder}
	index := map[string]*Node{"": root}

	for _, f := range fs {
		segments := strings.Split(f.Path, "/")
		parentPath := ""
		for i, seg := range segments {
			childPath := seg
			if parentPath != "" {
				childPath = parentPath + "/" + seg
			}
			last := i == len(segments)-1

			if existing, ok := index[childPath]; ok {
				if !last {
					// A later, deeper path promotes a file node into a
					// folder rather than duplicating it.
					existing.Kind = KindFolder
					parentPath = childPath
				}
				continue
			}

			kind := KindFolder
			if last {
				kind = KindFile
			}
			node := &Node{Name: seg, Path: childPath, Kind: kind}
			parent := index[parentPath]
			parent.Children = append(parent.Children, node)
			index[childPath] = node
			if !last {
				parentPath = childPath
			}
		}
	}

	sortChildren(root)
	return root.Children
}

func sortChildren(n *Node) {
	sort.SliceStable(n.Children, func(i, j int) bool {
		a, b := n.Children[i], n.Children[j]
		if a.Kind != b.Kind {
			return a.Kind == KindFolder
		}
		return a.Name < b.Name
	})
	for _, c := range n.Children {
		if c.Kind == KindFolder {
			sortChildren(c)
		}
	}
}

// Find resolves a path in the projected forest. Returns nil when no node
// exists at that path.
func Find(forest []*Node, path string) *Node {
	for _, n := range forest {
		if n.Path == path {
			return n
		}
		if n.Kind == KindFolder && strings.HasPrefix(path, n.Path+"/") {
			if found := Find(n.Children, path); found != nil {
				return found
			}
		}
	}
	return nil
}

// CountNodes counts every node in the forest, folders included.
func CountNodes(forest []*Node) int {
	count := 0
	for _, n := range forest {
		count++
		count += CountNodes(n.Children)
	}
	return count
}
