// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VaultShare Contributors

package account

import (
	"sort"

	"github.com/samber/oops"
)

// FolderIndex is a derived view over a flat set of folders. Parent and
// child relationships are looked up by id; the index never holds
// ownership edges, so cyclic references cannot leak into the data
// structure itself.
type FolderIndex struct {
	byID     map[string]*Folder
	children map[string][]*Folder
	roots    []*Folder
}

// NewFolderIndex builds an index from a flat folder list, typically the
// result of listing one workspace's folders.
func NewFolderIndex(folders []Folder) *FolderIndex {
	ix := &FolderIndex{
		byID:     make(map[string]*Folder, len(folders)),
		children: make(map[string][]*Folder),
	}
	for i := range folders {
		f := &folders[i]
		ix.byID[f.ID] = f
	}
	for i := range folders {
		f := &folders[i]
		if f.ParentFolderID == nil {
			ix.roots = append(ix.roots, f)
			continue
		}
		ix.children[*f.ParentFolderID] = append(ix.children[*f.ParentFolderID], f)
	}
	for _, siblings := range ix.children {
		sort.Slice(siblings, func(a, b int) bool { return siblings[a].Name < siblings[b].Name })
	}
	sort.Slice(ix.roots, func(a, b int) bool { return ix.roots[a].Name < ix.roots[b].Name })
	return ix
}

// Folder returns the folder with the given id.
func (ix *FolderIndex) Folder(id string) (*Folder, bool) {
	f, ok := ix.byID[id]
	return f, ok
}

// Roots returns folders without a parent, sorted by name.
func (ix *FolderIndex) Roots() []*Folder {
	return ix.roots
}

// Children returns the direct subfolders of a folder, sorted by name.
func (ix *FolderIndex) Children(id string) []*Folder {
	return ix.children[id]
}

// Path returns the chain from the root down to the given folder. It
// fails when the folder is unknown, a parent reference dangles, or the
// parent links form a cycle.
func (ix *FolderIndex) Path(id string) ([]*Folder, error) {
	f, ok := ix.byID[id]
	if !ok {
		return nil, oops.Code("FOLDER_UNKNOWN").With("folder_id", id).Errorf("folder %s not in index", id)
	}

	var reversed []*Folder
	seen := make(map[string]bool)
	for f != nil {
		if seen[f.ID] {
			return nil, oops.Code("FOLDER_CYCLE").With("folder_id", f.ID).Errorf("folder parent links form a cycle")
		}
		seen[f.ID] = true
		reversed = append(reversed, f)
		if f.ParentFolderID == nil {
			break
		}
		parent, ok := ix.byID[*f.ParentFolderID]
		if !ok {
			return nil, oops.Code("FOLDER_DANGLING_PARENT").
				With("folder_id", f.ID).
				With("parent_folder_id", *f.ParentFolderID).
				Errorf("parent folder not in index")
		}
		f = parent
	}

	path := make([]*Folder, len(reversed))
	for i, node := range reversed {
		path[len(reversed)-1-i] = node
	}
	return path, nil
}

// IsDescendant reports whether folder id sits below ancestorID (or is
// it). Used to reject moves that would create a cycle.
func (ix *FolderIndex) IsDescendant(id, ancestorID string) bool {
	if id == ancestorID {
		return true
	}
	f, ok := ix.byID[id]
	if !ok {
		return false
	}
	seen := make(map[string]bool)
	for f.ParentFolderID != nil && !seen[f.ID] {
		seen[f.ID] = true
		parent, ok := ix.byID[*f.ParentFolderID]
		if !ok {
			return false
		}
		if parent.ID == ancestorID {
			return true
		}
		f = parent
	}
	return false
}
