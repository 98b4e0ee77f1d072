package archive

import (
	"context"
	"fmt"
	"path"
	"strings"

	"captioner/internal/domain"
	"captioner/internal/infra"
	"captioner/internal/storage"
	pkgzip "captioner/pkg/zip"
)

// SupportedExtensions lists the image types accepted from the input archive.
var SupportedExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".webp"}

const (
	macMetadataDir     = "__MACOSX"
	resourceForkPrefix = "._"
)

// Collision records two archive entries that flattened to the same base name.
// The later entry's bytes win; the earlier ones are overwritten.
type Collision struct {
	Filename string
	Previous string
	Entry    string
}

// Result is the extracted working set.
type Result struct {
	Assets     []*domain.ImageAsset
	Collisions []Collision
}

// Extractor turns an input archive into a flat working set on the scratch
// store.
type Extractor struct {
	Store      *storage.FileStore
	Logger     infra.Logger
	Extensions []string
}

// Extract reads the archive, keeps entries whose extension matches the
// accepted set, drops archive-metadata entries, and flattens every qualifying
// entry to its base name. Zero qualifying entries is not an error.
func (e *Extractor) Extract(ctx context.Context, raw []byte) (*Result, error) {
	entries, err := pkgzip.ReadAll(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrArchive, err)
	}

	extensions := e.Extensions
	if len(extensions) == 0 {
		extensions = SupportedExtensions
	}

	result := &Result{}
	sources := map[string]string{}
	index := map[string]int{}
	for _, entry := range entries {
		if !acceptedExtension(entry.Filename, extensions) {
			continue
		}
		if isArchiveMetadata(entry.Filename) {
			continue
		}
		base := path.Base(entry.Filename)
		asset := &domain.ImageAsset{
			Filename: base,
			Data:     entry.Data,
			Subtype:  domain.SubtypeForFilename(base),
		}
		if previous, seen := sources[base]; seen {
			collision := Collision{Filename: base, Previous: previous, Entry: entry.Filename}
			result.Collisions = append(result.Collisions, collision)
			e.Logger.Warn().
				Str("filename", base).
				Str("previous", previous).
				Str("entry", entry.Filename).
				Msg("extract: duplicate base name, keeping later entry")
			result.Assets[index[base]] = asset
		} else {
			index[base] = len(result.Assets)
			result.Assets = append(result.Assets, asset)
		}
		sources[base] = entry.Filename
		if e.Store != nil {
			if _, err := e.Store.Write(ctx, base, entry.Data); err != nil {
				return nil, fmt.Errorf("%w: stage %s: %v", domain.ErrArchive, base, err)
			}
		}
	}
	return result, nil
}

func acceptedExtension(name string, extensions []string) bool {
	lower := strings.ToLower(name)
	for _, ext := range extensions {
		if strings.HasSuffix(lower, strings.ToLower(ext)) {
			return true
		}
	}
	return false
}

// isArchiveMetadata reports whether the entry belongs to the macOS resource
// fork directory or carries its hidden-file marker prefix.
func isArchiveMetadata(name string) bool {
	clean := strings.Trim(path.Clean(name), "/")
	for _, segment := range strings.Split(clean, "/") {
		if segment == macMetadataDir {
			return true
		}
	}
	return strings.HasPrefix(path.Base(clean), resourceForkPrefix)
}
