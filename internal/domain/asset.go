package domain

import (
	"path/filepath"
	"strings"
)

// ImageAsset is a single image in the batch working set. Identity is the
// flattened base name of the archive entry it was extracted from.
type ImageAsset struct {
	// Filename is the base name, including extension.
	Filename string

	// Data holds the bytes that will be sent to the provider. The normalizer
	// replaces them in place when the image is downsized.
	Data []byte

	// Subtype is the MIME subtype inferred from the extension ("jpeg",
	// "png", ...). Normalization may change it to "jpeg".
	Subtype string

	// Normalized reports whether Data was replaced by a downsized re-encode.
	Normalized bool

	// Original keeps the pre-normalization bytes when the caller asked for
	// originals in the output archive. Nil otherwise.
	Original []byte

	// DecodeErr records a normalization decode failure. The orchestrator
	// turns it into that image's terminal failure instead of spending
	// provider attempts on bytes known to be undecodable.
	DecodeErr error
}

// CaptionName returns the caption file name for the asset: the base name with
// its image extension replaced by ".txt".
func (a *ImageAsset) CaptionName() string {
	ext := filepath.Ext(a.Filename)
	return strings.TrimSuffix(a.Filename, ext) + ".txt"
}

// SubtypeForFilename infers the MIME subtype from a file extension. "jpg" is
// reported as "jpeg" since providers reject the former.
func SubtypeForFilename(name string) string {
	sub := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if sub == "jpg" {
		sub = "jpeg"
	}
	return sub
}
