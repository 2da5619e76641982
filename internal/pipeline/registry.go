package pipeline

import (
	"maps"
	"path"
	"slices"
	"strings"
)

// Handler selects how a reference is resolved. The set is closed: the
// Rewriter switches over these values and has no open-ended registration.
type Handler int

const (
	// HandlerPassthrough leaves the reference untouched. Used for source
	// files referenced for illustration only.
	HandlerPassthrough Handler = iota + 1
	// HandlerEncode reads the file and inlines it as a data URI.
	HandlerEncode
	// HandlerRenderDiagram renders a diagram to PNG, then inlines it.
	HandlerRenderDiagram
)

// String returns the handler name used in logs and doctor output.
func (h Handler) String() string {
	switch h {
	case HandlerPassthrough:
		return "passthrough"
	case HandlerEncode:
		return "encode"
	case HandlerRenderDiagram:
		return "render-diagram"
	default:
		return "unknown"
	}
}

// Registry maps file extensions (without the dot) to handlers.
// A Registry is immutable once built; the zero value has no entries.
type Registry struct {
	handlers map[string]Handler
}

// DefaultRegistry returns the built-in extension table.
func DefaultRegistry() *Registry {
	return NewRegistry(map[string]Handler{
		"py":     HandlerPassthrough,
		"drawio": HandlerRenderDiagram,
		"jpg":    HandlerEncode,
		"png":    HandlerEncode,
	})
}

// NewRegistry builds a Registry from a copy of handlers.
func NewRegistry(handlers map[string]Handler) *Registry {
	return &Registry{handlers: maps.Clone(handlers)}
}

// Lookup returns the handler registered for ext.
func (r *Registry) Lookup(ext string) (Handler, bool) {
	if r == nil {
		return 0, false
	}
	h, ok := r.handlers[ext]
	return h, ok
}

// Extensions returns the registered extensions in sorted order.
func (r *Registry) Extensions() []string {
	if r == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(r.handlers))
}

// Extension returns the substring after the final "." of the target's last
// path element, or "" when there is none. Query strings and fragments are
// not stripped. Matching is case-sensitive unless foldCase is set.
func Extension(target string, foldCase bool) string {
	base := path.Base(strings.ReplaceAll(target, `\`, "/"))
	idx := strings.LastIndex(base, ".")
	if idx < 0 || idx == len(base)-1 {
		return ""
	}
	ext := base[idx+1:]
	if foldCase {
		ext = strings.ToLower(ext)
	}
	return ext
}
