package h5json

import (
	"strconv"
	"strings"
)

// Pointer builds JSON Pointer paths in a chain-safe way. The zero value is the
// document root ("/").
type Pointer struct {
	parts []string
}

// Root returns the document-root pointer.
func Root() Pointer { return Pointer{} }

// At parses a rendered pointer back into a Pointer. Empty segments are dropped.
func At(path string) Pointer {
	if path == "" || path == "/" {
		return Root()
	}
	parts := []string{}
	for _, p := range strings.Split(path, "/") {
		if p == "" {
			continue
		}
		parts = append(parts, p)
	}
	return Pointer{parts: parts}
}

// Field appends an object member segment, escaping '~' -> '~0' and '/' -> '~1'
// per RFC 6901.
func (p Pointer) Field(name string) Pointer {
	if name == "" {
		return p
	}
	esc := strings.ReplaceAll(strings.ReplaceAll(name, "~", "~0"), "/", "~1")
	return Pointer{parts: append(append([]string{}, p.parts...), esc)}
}

// Index appends an array index segment.
func (p Pointer) Index(i int) Pointer {
	return Pointer{parts: append(append([]string{}, p.parts...), strconv.Itoa(i))}
}

// String renders the pointer. The root renders as "/".
func (p Pointer) String() string {
	if len(p.parts) == 0 {
		return "/"
	}
	return "/" + strings.Join(p.parts, "/")
}
