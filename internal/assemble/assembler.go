package assemble

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"captioner/internal/domain"
	"captioner/internal/infra"
	pkgzip "captioner/pkg/zip"
)

// ManifestName is the tabular manifest entry inside the output archive.
const ManifestName = "captions.csv"

// Output is the packaged batch outcome.
type Output struct {
	Archive []byte
	Rows    []domain.ManifestRow
}

// Assembler packages caption results into the output archive: one .txt per
// succeeded image, the manifest, and optionally the original image bytes
// under their original names. Failed images appear in neither the manifest
// nor the archive.
type Assembler struct {
	IncludeOriginals bool
	Logger           infra.Logger
}

// Build writes the manifest and caption files and returns the zipped archive.
// Results arrive in working-set order; the manifest keeps that order.
func (a *Assembler) Build(assets []*domain.ImageAsset, results []domain.CaptionResult) (*Output, error) {
	byName := make(map[string]*domain.ImageAsset, len(assets))
	for _, asset := range assets {
		byName[asset.Filename] = asset
	}

	manifest := &bytes.Buffer{}
	cw := csv.NewWriter(manifest)
	if err := cw.Write([]string{"caption", "image_file"}); err != nil {
		return nil, fmt.Errorf("assemble: write manifest header: %w", err)
	}

	var entries []pkgzip.Asset
	var rows []domain.ManifestRow
	captionNames := make(map[string]string, len(results))
	for _, result := range results {
		if !result.Succeeded() {
			continue
		}
		asset, ok := byName[result.Filename]
		if !ok {
			return nil, fmt.Errorf("assemble: result for unknown image %s", result.Filename)
		}
		if err := cw.Write([]string{result.Caption, result.Filename}); err != nil {
			return nil, fmt.Errorf("assemble: write manifest row for %s: %w", result.Filename, err)
		}
		rows = append(rows, domain.ManifestRow{Caption: result.Caption, ImageFile: result.Filename})
		// Same stem with different extensions maps to the same caption name;
		// later images fall back to the full image name to keep archive entry
		// names unique.
		name := asset.CaptionName()
		if previous, taken := captionNames[name]; taken {
			name = asset.Filename + ".txt"
			a.Logger.Warn().
				Str("filename", asset.Filename).
				Str("previous", previous).
				Str("caption_file", name).
				Msg("assemble: caption name collision, using full image name")
		}
		captionNames[name] = asset.Filename
		entries = append(entries, pkgzip.Asset{Filename: name, Data: []byte(result.Caption)})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, fmt.Errorf("assemble: flush manifest: %w", err)
	}

	if a.IncludeOriginals {
		for _, result := range results {
			if !result.Succeeded() {
				continue
			}
			asset := byName[result.Filename]
			original := asset.Original
			if original == nil {
				original = asset.Data
			}
			entries = append(entries, pkgzip.Asset{Filename: asset.Filename, Data: original})
		}
	}

	archive, err := pkgzip.ArchiveAssets(append([]pkgzip.Asset{{Filename: ManifestName, Data: manifest.Bytes()}}, entries...))
	if err != nil {
		return nil, fmt.Errorf("assemble: package archive: %w", err)
	}
	a.Logger.Debug().
		Int("captions", len(rows)).
		Bool("originals", a.IncludeOriginals).
		Msg("assemble: archive packaged")
	return &Output{Archive: archive, Rows: rows}, nil
}
