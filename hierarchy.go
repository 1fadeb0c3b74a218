package h5json

import (
	"fmt"
	gopath "path"
)

// LinkClass identifies a link variant on a group.
type LinkClass string

const (
	LinkHard     LinkClass = "H5L_TYPE_HARD"
	LinkSoft     LinkClass = "H5L_TYPE_SOFT"
	LinkExternal LinkClass = "H5L_TYPE_EXTERNAL"
)

// Link is one named edge declared on a group. Collection and ID are populated
// for hard links, H5Path (and File for external links) otherwise.
type Link struct {
	Class      LinkClass
	Title      string
	Collection string
	ID         string
	H5Path     string
	File       string
}

// PathEntry pairs an object identifier with its reconstructed full path.
type PathEntry struct {
	ID   string `json:"id"`
	Path string `json:"path"`
}

// GroupPaths reconstructs the full path of every group reachable from the
// document root over hard links: depth-first, pre-order, children in
// link-declaration order. Soft and external links are never followed.
func GroupPaths(doc *Document) ([]PathEntry, error) {
	groups, _, err := walkHierarchy(doc)
	return groups, err
}

// DatasetPaths reconstructs the full path of every dataset reachable from the
// document root over hard links, in the group visit order of GroupPaths.
func DatasetPaths(doc *Document) ([]PathEntry, error) {
	_, datasets, err := walkHierarchy(doc)
	return datasets, err
}

func walkHierarchy(doc *Document) (groups, datasets []PathEntry, err error) {
	if doc == nil || doc.Root == "" {
		return nil, nil, failAt(Root().Field("root"), CodeMissingRequiredField, "root key missing", nil)
	}
	w := &hierarchyWalker{doc: doc, visited: map[string]struct{}{}}
	w.groups = append(w.groups, PathEntry{ID: doc.Root, Path: "/"})
	if err := w.walk(doc.Root, "/"); err != nil {
		return nil, nil, err
	}
	return w.groups, w.datasets, nil
}

type hierarchyWalker struct {
	doc      *Document
	groups   []PathEntry
	datasets []PathEntry
	visited  map[string]struct{}
}

func (w *hierarchyWalker) walk(gid, path string) error {
	// A hard-link cycle among groups would otherwise recurse forever; the
	// producer is expected not to create one, but untrusted input gets a guard.
	if _, seen := w.visited[gid]; seen {
		return failAt(Root().Field("groups").Field(gid), CodeCyclicHierarchy,
			fmt.Sprintf("%s: hard-link cycle through group", gid), map[string]any{"id": gid, "path": path})
	}
	w.visited[gid] = struct{}{}

	group, ok := w.doc.Groups[gid]
	if !ok {
		return failAt(Root().Field("groups").Field(gid), CodeMissingRequiredField,
			fmt.Sprintf("%s: group missing from the groups collection", gid), map[string]any{"id": gid})
	}
	linksVal, present := group["links"]
	if !present {
		return nil
	}
	links, ok := asSequence(linksVal)
	if !ok {
		return nil
	}
	at := Root().Field("groups").Field(gid).Field("links")
	for i, lv := range links {
		link, err := parseLink(lv, at.Index(i))
		if err != nil {
			return err
		}
		if link.Class != LinkHard {
			continue
		}
		switch link.Collection {
		case CollectionDatasets:
			w.datasets = append(w.datasets, PathEntry{ID: link.ID, Path: gopath.Join(path, link.Title)})
		case CollectionGroups:
			child := PathEntry{ID: link.ID, Path: gopath.Join(path, link.Title)}
			w.groups = append(w.groups, child)
			if err := w.walk(child.ID, child.Path); err != nil {
				return err
			}
		}
	}
	return nil
}

// parseLink validates one loose link entry. Hard links must name their target
// collection and identifier.
func parseLink(v any, at Pointer) (Link, error) {
	l, ok := v.(map[string]any)
	if !ok {
		return Link{}, failAt(at, CodeMissingRequiredField, "link entry must be a mapping", nil)
	}
	clsVal, ok := l["class"]
	if !ok {
		return Link{}, failAt(at.Field("class"), CodeMissingRequiredField, "link class missing", nil)
	}
	cls, _ := clsVal.(string)
	title, _ := l["title"].(string)
	if title == "" {
		return Link{}, failAt(at.Field("title"), CodeMissingRequiredField, "link title missing", nil)
	}
	link := Link{Class: LinkClass(cls), Title: title}
	if link.Class == LinkHard {
		link.Collection, _ = l["collection"].(string)
		link.ID, _ = l["id"].(string)
		if link.Collection == "" {
			return Link{}, failAt(at.Field("collection"), CodeMissingRequiredField, "hard link collection missing", nil)
		}
		if link.ID == "" {
			return Link{}, failAt(at.Field("id"), CodeMissingRequiredField, "hard link target id missing", nil)
		}
		return link, nil
	}
	link.H5Path, _ = l["h5path"].(string)
	link.File, _ = l["file"].(string)
	return link, nil
}
