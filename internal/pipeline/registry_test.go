package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// ---------------------------------------------------------------------------
// TestRegistry - Built-in handler table
// ---------------------------------------------------------------------------

func TestDefaultRegistry_Lookup(t *testing.T) {
	t.Parallel()

	tests := []struct {
		ext    string
		want   Handler
		wantOK bool
	}{
		{ext: "png", want: HandlerEncode, wantOK: true},
		{ext: "jpg", want: HandlerEncode, wantOK: true},
		{ext: "drawio", want: HandlerRenderDiagram, wantOK: true},
		{ext: "py", want: HandlerPassthrough, wantOK: true},
		{ext: "PNG", wantOK: false},
		{ext: "svg", wantOK: false},
		{ext: "", wantOK: false},
	}

	reg := DefaultRegistry()
	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			t.Parallel()

			got, ok := reg.Lookup(tt.ext)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestRegistry_Extensions(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"drawio", "jpg", "png", "py"}, DefaultRegistry().Extensions())
}

func TestNewRegistry_CopiesInput(t *testing.T) {
	t.Parallel()

	src := map[string]Handler{"gif": HandlerEncode}
	reg := NewRegistry(src)
	src["bmp"] = HandlerEncode
	delete(src, "gif")

	_, ok := reg.Lookup("gif")
	assert.True(t, ok, "registry lost an entry when the source map changed")
	_, ok = reg.Lookup("bmp")
	assert.False(t, ok, "registry picked up an entry added after construction")
}

func TestRegistry_NilLookup(t *testing.T) {
	t.Parallel()

	var reg *Registry
	_, ok := reg.Lookup("png")
	assert.False(t, ok)
	assert.Nil(t, reg.Extensions())
}

func TestHandler_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "passthrough", HandlerPassthrough.String())
	assert.Equal(t, "encode", HandlerEncode.String())
	assert.Equal(t, "render-diagram", HandlerRenderDiagram.String())
	assert.Equal(t, "unknown", Handler(0).String())
}

// ---------------------------------------------------------------------------
// TestExtension - Dispatch key extraction
// ---------------------------------------------------------------------------

func TestExtension(t *testing.T) {
	t.Parallel()

	tests := []struct {
		target   string
		foldCase bool
		want     string
	}{
		{target: "img/x.png", want: "png"},
		{target: "a/b.c.drawio", want: "drawio"},
		{target: "IMG.PNG", want: "PNG"},
		{target: "IMG.PNG", foldCase: true, want: "png"},
		{target: "noext", want: ""},
		{target: "dir.d/file", want: ""},
		{target: "trailing.", want: ""},
		{target: `win\dir\pic.jpg`, want: "jpg"},
		{target: "https://example.com/a.png", want: "png"},
	}

	for _, tt := range tests {
		got := Extension(tt.target, tt.foldCase)
		assert.Equal(t, tt.want, got, "Extension(%q, %v)", tt.target, tt.foldCase)
	}
}
