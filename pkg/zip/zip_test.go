package zip

import (
	"archive/zip"
	"bytes"
	"testing"
)

func buildArchive(t *testing.T, entries []Asset) []byte {
	t.Helper()
	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	for _, entry := range entries {
		w, err := zw.Create(entry.Filename)
		if err != nil {
			t.Fatalf("create %s: %v", entry.Filename, err)
		}
		if _, err := w.Write(entry.Data); err != nil {
			t.Fatalf("write %s: %v", entry.Filename, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close archive: %v", err)
	}
	return buf.Bytes()
}

func TestReadAllReturnsFileEntries(t *testing.T) {
	raw := buildArchive(t, []Asset{
		{Filename: "a.png", Data: []byte("alpha")},
		{Filename: "nested/b.png", Data: []byte("beta")},
	})

	assets, err := ReadAll(raw)
	if err != nil {
		t.Fatalf("ReadAll returned error: %v", err)
	}
	if len(assets) != 2 {
		t.Fatalf("len(assets) = %d, want 2", len(assets))
	}
	if assets[0].Filename != "a.png" || string(assets[0].Data) != "alpha" {
		t.Fatalf("first entry = %q/%q", assets[0].Filename, assets[0].Data)
	}
	if assets[1].Filename != "nested/b.png" || string(assets[1].Data) != "beta" {
		t.Fatalf("second entry = %q/%q", assets[1].Filename, assets[1].Data)
	}
}

func TestReadAllSkipsDirectories(t *testing.T) {
	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	if _, err := zw.Create("folder/"); err != nil {
		t.Fatalf("create directory entry: %v", err)
	}
	w, err := zw.Create("folder/c.png")
	if err != nil {
		t.Fatalf("create file entry: %v", err)
	}
	if _, err := w.Write([]byte("gamma")); err != nil {
		t.Fatalf("write file entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close archive: %v", err)
	}

	assets, err := ReadAll(buf.Bytes())
	if err != nil {
		t.Fatalf("ReadAll returned error: %v", err)
	}
	if len(assets) != 1 || assets[0].Filename != "folder/c.png" {
		t.Fatalf("assets = %#v, want only folder/c.png", assets)
	}
}

func TestReadAllRejectsInvalidArchive(t *testing.T) {
	if _, err := ReadAll([]byte("not a zip")); err == nil {
		t.Fatal("ReadAll accepted invalid bytes")
	}
}

func TestArchiveAssetsRoundTrip(t *testing.T) {
	in := []Asset{
		{Filename: "captions.csv", Data: []byte("caption,image_file\n")},
		{Filename: "a.txt", Data: []byte("a caption")},
	}
	raw, err := ArchiveAssets(in)
	if err != nil {
		t.Fatalf("ArchiveAssets returned error: %v", err)
	}
	out, err := ReadAll(raw)
	if err != nil {
		t.Fatalf("ReadAll returned error: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("len(out) = %d, want %d", len(out), len(in))
	}
	for i := range in {
		if out[i].Filename != in[i].Filename || !bytes.Equal(out[i].Data, in[i].Data) {
			t.Fatalf("entry %d = %q/%q, want %q/%q", i, out[i].Filename, out[i].Data, in[i].Filename, in[i].Data)
		}
	}
}
