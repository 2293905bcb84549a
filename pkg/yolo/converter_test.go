package yolo

import (
	"bytes"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

type fixture struct {
	projectDir string
	images     map[string]string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, ImagesDirName), 0755); err != nil {
		t.Fatal(err)
	}

	return &fixture{projectDir: dir, images: map[string]string{}}
}

func (f *fixture) addImage(t *testing.T, id, filename string, w, h int) {
	t.Helper()

	out, err := os.Create(filepath.Join(f.projectDir, ImagesDirName, filename))
	if err != nil {
		t.Fatal(err)
	}
	defer out.Close()

	if err := png.Encode(out, image.NewGray(image.Rect(0, 0, w, h))); err != nil {
		t.Fatal(err)
	}
	f.images[id] = filename
}

func (f *fixture) addAnnotations(t *testing.T, id string, anns []Annotation) {
	t.Helper()

	dir := filepath.Join(f.projectDir, LabelsDirName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}

	data, err := json.Marshal(anns)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, id+AnnotationFileExt), data, 0644); err != nil {
		t.Fatal(err)
	}
}

func (f *fixture) datasetPath(parts ...string) string {
	return filepath.Join(append([]string{f.projectDir, DatasetDirName}, parts...)...)
}

func readString(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read %s: %v", path, err)
	}
	return string(data)
}

// snapshot maps every file under dir to its content.
func snapshot(t *testing.T, dir string) map[string][]byte {
	t.Helper()

	files := map[string][]byte{}
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		files[rel] = data
		return nil
	})
	if err != nil {
		t.Fatalf("Failed to walk %s: %v", dir, err)
	}
	return files
}

func TestConvertWritesNormalizedLabel(t *testing.T) {
	f := newFixture(t)
	f.addImage(t, "img-1", "img-1.png", 200, 100)
	f.addAnnotations(t, "img-1", []Annotation{{ID: "a", X: 0, Y: 0, Width: 100, Height: 50, Label: "dog"}})

	result, err := Convert(Options{ProjectDir: f.projectDir, Classes: []string{"cat", "dog"}, Images: f.images})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, split := range []string{"train", "val"} {
		got := readString(t, f.datasetPath(split, LabelsDirName, "img-1.txt"))
		if got != "1 0.25 0.25 0.5 0.5" {
			t.Errorf("%s label: expected %q, got %q", split, "1 0.25 0.25 0.5 0.5", got)
		}
	}

	if result.Images != 1 || result.Labels != 1 || result.Train != 1 || result.Val != 1 {
		t.Errorf("unexpected result: %+v", result)
	}
	if result.ManifestPath != f.datasetPath(ManifestFileName) {
		t.Errorf("unexpected manifest path %s", result.ManifestPath)
	}
}

func TestConvertDropsUnknownLabelsOnly(t *testing.T) {
	f := newFixture(t)
	f.addImage(t, "img-1", "img-1.png", 200, 100)
	f.addAnnotations(t, "img-1", []Annotation{
		{ID: "a", X: 0, Y: 0, Width: 100, Height: 50, Label: "unicorn"},
		{ID: "b", X: 100, Y: 50, Width: 100, Height: 50, Label: "cat"},
	})

	result, err := Convert(Options{ProjectDir: f.projectDir, Classes: []string{"cat", "dog"}, Images: f.images})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := readString(t, f.datasetPath("train", LabelsDirName, "img-1.txt"))
	if got != "0 0.75 0.75 0.5 0.5" {
		t.Errorf("expected only the cat line, got %q", got)
	}
	if result.Labels != 1 {
		t.Errorf("expected 1 label, got %d", result.Labels)
	}
}

func TestConvertWithoutLabelsDirectory(t *testing.T) {
	f := newFixture(t)
	f.addImage(t, "img-1", "img-1.png", 200, 100)

	result, err := Convert(Options{ProjectDir: f.projectDir, Classes: []string{"cat"}, Images: f.images})
	if !errors.Is(err, ErrNothingToConvert) {
		t.Fatalf("expected ErrNothingToConvert, got %v", err)
	}
	if result != nil {
		t.Errorf("expected no result, got %+v", result)
	}
	if _, err := os.Stat(f.datasetPath(ManifestFileName)); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected no manifest, stat error: %v", err)
	}
}

func TestConvertIsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.addImage(t, "img-1", "img-1.png", 200, 100)
	f.addImage(t, "img-2", "img-2.png", 640, 480)
	f.addAnnotations(t, "img-1", []Annotation{{ID: "a", X: 10, Y: 10, Width: 30, Height: 40, Label: "cat"}})
	f.addAnnotations(t, "img-2", []Annotation{
		{ID: "b", X: 600, Y: 400, Width: 100, Height: 100, Label: "dog"},
		{ID: "c", X: 1, Y: 2, Width: 3, Height: 4, Label: "cat"},
	})

	opts := Options{ProjectDir: f.projectDir, Classes: []string{"cat", "dog"}, Images: f.images}

	if _, err := Convert(opts); err != nil {
		t.Fatalf("first run: %v", err)
	}
	first := snapshot(t, f.datasetPath())

	if _, err := Convert(opts); err != nil {
		t.Fatalf("second run: %v", err)
	}
	second := snapshot(t, f.datasetPath())

	if !reflect.DeepEqual(first, second) {
		t.Error("expected byte-identical datasets across runs")
	}
}

func TestConvertRemovesStaleFiles(t *testing.T) {
	f := newFixture(t)
	f.addImage(t, "img-1", "img-1.png", 200, 100)
	f.addAnnotations(t, "img-1", []Annotation{{ID: "a", Width: 10, Height: 10, Label: "cat"}})

	stale := f.datasetPath("train", ImagesDirName, "stale.png")
	if err := os.MkdirAll(filepath.Dir(stale), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(stale, []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Convert(Options{ProjectDir: f.projectDir, Classes: []string{"cat"}, Images: f.images}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := os.Stat(stale); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected stale file to be removed, stat error: %v", err)
	}
}

func TestConvertDuplicatesTrainIntoVal(t *testing.T) {
	f := newFixture(t)
	for i, id := range []string{"a", "b", "c"} {
		f.addImage(t, id, id+".png", 100+i*10, 80)
		f.addAnnotations(t, id, []Annotation{{ID: id, X: 5, Y: 5, Width: 20, Height: 20, Label: "cat"}})
	}

	if _, err := Convert(Options{ProjectDir: f.projectDir, Classes: []string{"cat"}, Images: f.images}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	train := snapshot(t, f.datasetPath("train"))
	val := snapshot(t, f.datasetPath("val"))

	if len(train) != 6 {
		t.Fatalf("expected 3 images and 3 labels in train, got %d files", len(train))
	}
	for name, content := range train {
		other, ok := val[name]
		if !ok {
			t.Errorf("missing val counterpart for %s", name)
			continue
		}
		if !bytes.Equal(content, other) {
			t.Errorf("val counterpart of %s differs", name)
		}
	}
}

func TestConvertSkipsUnresolvableImages(t *testing.T) {
	f := newFixture(t)
	f.addImage(t, "good", "good.png", 200, 100)
	f.addAnnotations(t, "good", []Annotation{{ID: "a", Width: 10, Height: 10, Label: "cat"}})

	// annotation for an image that was never registered
	f.addAnnotations(t, "orphan", []Annotation{{ID: "b", Width: 10, Height: 10, Label: "cat"}})

	// registered but the file is gone
	f.images["gone"] = "gone.png"
	f.addAnnotations(t, "gone", []Annotation{{ID: "c", Width: 10, Height: 10, Label: "cat"}})

	// registered but not an image
	if err := os.WriteFile(filepath.Join(f.projectDir, ImagesDirName, "broken.jpg"), []byte("nope"), 0644); err != nil {
		t.Fatal(err)
	}
	f.images["broken"] = "broken.jpg"
	f.addAnnotations(t, "broken", []Annotation{{ID: "d", Width: 10, Height: 10, Label: "cat"}})

	result, err := Convert(Options{ProjectDir: f.projectDir, Classes: []string{"cat"}, Images: f.images})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Images != 1 {
		t.Errorf("expected 1 converted image, got %d", result.Images)
	}

	reasons := map[string]SkipReason{}
	for _, s := range result.Skipped {
		reasons[s.ImageID] = s.Reason
	}
	expected := map[string]SkipReason{
		"orphan": SkipUnknownImage,
		"gone":   SkipMissingImage,
		"broken": SkipUndecodable,
	}
	if !reflect.DeepEqual(reasons, expected) {
		t.Errorf("expected skipped %v, got %v", expected, reasons)
	}

	if _, err := os.Stat(f.datasetPath("train", ImagesDirName, "broken.jpg")); !errors.Is(err, os.ErrNotExist) {
		t.Error("undecodable image should not be copied into the dataset")
	}
}

func TestConvertSkipsTruncatedImage(t *testing.T) {
	f := newFixture(t)
	f.addImage(t, "a", "a.png", 200, 100)
	f.addAnnotations(t, "a", []Annotation{{ID: "1", X: 0, Y: 0, Width: 100, Height: 50, Label: "dog"}})

	path := filepath.Join(f.projectDir, ImagesDirName, "a.png")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	// keep the signature and IHDR chunk, drop the pixel data
	if err := os.WriteFile(path, data[:40], 0644); err != nil {
		t.Fatal(err)
	}

	result, err := Convert(Options{ProjectDir: f.projectDir, Classes: []string{"cat", "dog"}, Images: f.images})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Images != 0 || result.Labels != 0 {
		t.Errorf("expected nothing converted, got %d images and %d labels", result.Images, result.Labels)
	}
	expected := []Skipped{{ImageID: "a", Reason: SkipUndecodable}}
	if !reflect.DeepEqual(result.Skipped, expected) {
		t.Errorf("expected skipped %v, got %v", expected, result.Skipped)
	}

	for _, split := range []string{"train", "val"} {
		if _, err := os.Stat(f.datasetPath(split, LabelsDirName, "a.txt")); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("truncated image should not get a %s label file", split)
		}
		if _, err := os.Stat(f.datasetPath(split, ImagesDirName, "a.png")); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("truncated image should not be copied into %s", split)
		}
	}
}

func TestConvertWritesManifest(t *testing.T) {
	f := newFixture(t)
	f.addImage(t, "img-1", "img-1.png", 200, 100)
	f.addAnnotations(t, "img-1", []Annotation{{ID: "a", Width: 10, Height: 10, Label: "cat"}})

	result, err := Convert(Options{ProjectDir: f.projectDir, Classes: []string{"cat", "dog"}, Images: f.images})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	m, err := ReadManifest(result.ManifestPath)
	if err != nil {
		t.Fatalf("Failed to read manifest: %v", err)
	}

	if m.Path != result.DatasetDir || !filepath.IsAbs(m.Path) {
		t.Errorf("expected absolute dataset path %s, got %s", result.DatasetDir, m.Path)
	}
	if m.Train != "train/images" || m.Val != "val/images" {
		t.Errorf("unexpected split paths: %s, %s", m.Train, m.Val)
	}
	if !reflect.DeepEqual(m.Names, map[int]string{0: "cat", 1: "dog"}) {
		t.Errorf("unexpected names: %v", m.Names)
	}
}

func TestConvertRejectsDuplicateClasses(t *testing.T) {
	f := newFixture(t)

	if _, err := Convert(Options{ProjectDir: f.projectDir, Classes: []string{"cat", "cat"}}); !errors.Is(err, ErrDuplicateClass) {
		t.Errorf("expected ErrDuplicateClass, got %v", err)
	}
}

func TestConvertHoldsOutValidationImages(t *testing.T) {
	f := newFixture(t)
	ids := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"}
	for _, id := range ids {
		f.addImage(t, id, id+".png", 64, 64)
		f.addAnnotations(t, id, []Annotation{{ID: id, Width: 8, Height: 8, Label: "cat"}})
	}

	opts := Options{ProjectDir: f.projectDir, Classes: []string{"cat"}, Images: f.images, ValRatio: 0.2, Seed: 42}
	result, err := Convert(opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Train != 8 || result.Val != 2 {
		t.Errorf("expected 8 train and 2 val images, got %d and %d", result.Train, result.Val)
	}

	train := snapshot(t, f.datasetPath("train", ImagesDirName))
	val := snapshot(t, f.datasetPath("val", ImagesDirName))
	for name := range val {
		if _, ok := train[name]; ok {
			t.Errorf("%s is in both splits", name)
		}
	}

	first := snapshot(t, f.datasetPath())
	if _, err := Convert(opts); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !reflect.DeepEqual(first, snapshot(t, f.datasetPath())) {
		t.Error("expected the same split for the same seed")
	}
}
