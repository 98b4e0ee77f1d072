package zip

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"strings"
)

// Asset is one file carried in or out of an archive.
type Asset struct {
	Filename string
	Data     []byte
}

// ReadAll decodes a zip archive and returns every regular file entry with its
// full path and contents. Directory entries are skipped.
func ReadAll(raw []byte) ([]Asset, error) {
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	var assets []Asset
	for _, entry := range zr.File {
		if entry.FileInfo().IsDir() || strings.HasSuffix(entry.Name, "/") {
			continue
		}
		rc, err := entry.Open()
		if err != nil {
			return nil, fmt.Errorf("open entry %s: %w", entry.Name, err)
		}
		data, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read entry %s: %w", entry.Name, err)
		}
		assets = append(assets, Asset{Filename: entry.Name, Data: data})
	}
	return assets, nil
}

// ArchiveAssets packages the assets into a single zip archive. Entry names
// are expected to be unique; the archive is returned as raw bytes.
func ArchiveAssets(assets []Asset) ([]byte, error) {
	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	for _, asset := range assets {
		w, err := zw.Create(asset.Filename)
		if err != nil {
			return nil, fmt.Errorf("create entry %s: %w", asset.Filename, err)
		}
		if _, err := w.Write(asset.Data); err != nil {
			return nil, fmt.Errorf("write entry %s: %w", asset.Filename, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize archive: %w", err)
	}
	return buf.Bytes(), nil
}
