package pipeline

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/afero"
)

// Sentinel errors for asset resolution. Both are recovered by the Rewriter.
var (
	ErrAssetNotFound = errors.New("asset file not found")
	ErrAssetRead     = errors.New("failed to read asset file")
)

// DefaultMediaType is declared for every inlined asset unless media type
// detection is enabled.
const DefaultMediaType = "image/png"

// ResolvedAsset is the inline substitute for a Reference.
type ResolvedAsset struct {
	MediaType    string
	Payload      string // base64, standard encoding
	SourceTarget string // target as written in the source
}

// DataURI returns the data: URI that replaces the reference target.
func (a *ResolvedAsset) DataURI() string {
	return "data:" + a.MediaType + ";base64," + a.Payload
}

// AssetEncoder reads image files and encodes them as data URIs.
type AssetEncoder struct {
	Fs              afero.Fs
	DetectMediaType bool // sniff bytes instead of always declaring image/png
}

// NewAssetEncoder creates an AssetEncoder over the OS filesystem.
func NewAssetEncoder() *AssetEncoder {
	return &AssetEncoder{Fs: afero.NewOsFs()}
}

// ResolvePath resolves target against baseDir. Absolute targets are returned
// as-is. baseDir is the directory of the input document, never the output
// directory.
func ResolvePath(target, baseDir string) string {
	if filepath.IsAbs(target) {
		return target
	}
	return filepath.Join(baseDir, filepath.FromSlash(target))
}

// Encode reads the file at path and returns it as an asset keyed by target.
func (e *AssetEncoder) Encode(target, path string) (*ResolvedAsset, error) {
	data, err := afero.ReadFile(e.fs(), path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s: %w", ErrAssetNotFound, path, err)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrAssetRead, path, err)
	}

	return &ResolvedAsset{
		MediaType:    e.mediaType(data),
		Payload:      base64.StdEncoding.EncodeToString(data),
		SourceTarget: target,
	}, nil
}

// mediaType returns the declared type for data. Detection only accepts
// image types; anything else falls back to image/png.
func (e *AssetEncoder) mediaType(data []byte) string {
	if !e.DetectMediaType {
		return DefaultMediaType
	}
	detected := mimetype.Detect(data).String()
	if mt, _, _ := strings.Cut(detected, ";"); strings.HasPrefix(mt, "image/") {
		return mt
	}
	return DefaultMediaType
}

func (e *AssetEncoder) fs() afero.Fs {
	if e.Fs == nil {
		return afero.NewOsFs()
	}
	return e.Fs
}
