package util

import (
	"os"
	"path/filepath"
	"testing"
)

func TestObjectPaths(t *testing.T) {
	if got := ToProjectImageObjectPath("p1", "/data/p1/images/a.png"); got != "projects/p1/images/a.png" {
		t.Errorf("unexpected image key %s", got)
	}
	if got := ToProjectExportObjectPath("p1", "dataset.zip"); got != "projects/p1/exports/dataset.zip" {
		t.Errorf("unexpected export key %s", got)
	}
}

func TestDetectContentType(t *testing.T) {
	dir := t.TempDir()

	pngPath := filepath.Join(dir, "a.png")
	if err := os.WriteFile(pngPath, []byte("not really a png"), 0644); err != nil {
		t.Fatal(err)
	}
	if ct, err := detectContentType(pngPath); err != nil || ct != "image/png" {
		t.Errorf("expected image/png from the extension, got %q (%v)", ct, err)
	}

	noExt := filepath.Join(dir, "blob")
	if err := os.WriteFile(noExt, []byte("plain text"), 0644); err != nil {
		t.Fatal(err)
	}
	if ct, err := detectContentType(noExt); err != nil || ct != "text/plain; charset=utf-8" {
		t.Errorf("expected sniffed text, got %q (%v)", ct, err)
	}
}
