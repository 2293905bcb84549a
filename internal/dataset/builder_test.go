package dataset

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/SeakMengs/OpenSight/internal/config"
	filestorage "github.com/SeakMengs/OpenSight/internal/file_storage"
	"github.com/SeakMengs/OpenSight/pkg/yolo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeCatalog map[string]string

func (f fakeCatalog) FileNameMap(ctx context.Context, tx *gorm.DB, projectID string) (map[string]string, error) {
	return f, nil
}

func newTestBuilder(t *testing.T, catalog fakeCatalog) (*Builder, *filestorage.LocalStorage) {
	t.Helper()

	storage, err := filestorage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	return NewBuilder(catalog, storage, config.DatasetConfig{}, zap.NewNop().Sugar()), storage
}

func addImage(t *testing.T, storage *filestorage.LocalStorage, projectID, fileName string, w, h int) {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, w, h))))
	_, err := storage.SaveImage(projectID, fileName, &buf)
	require.NoError(t, err)
}

func TestBuildUsesSavedClasses(t *testing.T) {
	builder, storage := newTestBuilder(t, fakeCatalog{"img": "img.png"})

	addImage(t, storage, "p1", "img.png", 200, 100)
	require.NoError(t, storage.SaveClasses("p1", []string{"cat", "dog"}))
	require.NoError(t, storage.SaveAnnotations("p1", "img", []yolo.Annotation{
		{ID: "1", X: 0, Y: 0, Width: 100, Height: 50, Label: "dog"},
	}))

	result, err := builder.Build(context.Background(), "p1", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Images)
	assert.Equal(t, 1, result.Labels)

	label, err := os.ReadFile(filepath.Join(storage.DatasetDir("p1"), "train", "labels", "img.txt"))
	require.NoError(t, err)
	assert.Equal(t, "1 0.25 0.25 0.5 0.5", string(label))

	manifest, err := yolo.ReadManifest(result.ManifestPath)
	require.NoError(t, err)
	assert.Equal(t, map[int]string{0: "cat", 1: "dog"}, manifest.Names)
}

func TestBuildExplicitClassesOverrideSaved(t *testing.T) {
	builder, storage := newTestBuilder(t, fakeCatalog{"img": "img.png"})

	addImage(t, storage, "p1", "img.png", 200, 100)
	require.NoError(t, storage.SaveClasses("p1", []string{"cat", "dog"}))
	require.NoError(t, storage.SaveAnnotations("p1", "img", []yolo.Annotation{
		{ID: "1", X: 0, Y: 0, Width: 100, Height: 50, Label: "dog"},
		{ID: "2", X: 0, Y: 0, Width: 100, Height: 50, Label: "cat"},
	}))

	result, err := builder.Build(context.Background(), "p1", []string{"dog"})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Labels)

	label, err := os.ReadFile(filepath.Join(storage.DatasetDir("p1"), "val", "labels", "img.txt"))
	require.NoError(t, err)
	assert.Equal(t, "0 0.25 0.25 0.5 0.5", string(label))
}

func TestBuildWithoutClasses(t *testing.T) {
	builder, _ := newTestBuilder(t, fakeCatalog{})

	_, err := builder.Build(context.Background(), "p1", nil)
	assert.ErrorIs(t, err, ErrNoClasses)
}

func TestBuildWithCorruptClassList(t *testing.T) {
	builder, storage := newTestBuilder(t, fakeCatalog{})

	require.NoError(t, storage.EnsureProject("p1"))
	require.NoError(t, os.WriteFile(storage.ClassesPath("p1"), []byte("{not json"), 0644))

	_, err := builder.ResolveClasses("p1", nil)
	assert.ErrorIs(t, err, ErrNoClasses)

	_, err = builder.Build(context.Background(), "p1", nil)
	assert.ErrorIs(t, err, ErrNoClasses)

	classes, err := builder.ResolveClasses("p1", []string{"cat"})
	require.NoError(t, err)
	assert.Equal(t, []string{"cat"}, classes)
}

func TestBuildWithoutAnnotations(t *testing.T) {
	builder, _ := newTestBuilder(t, fakeCatalog{})

	_, err := builder.Build(context.Background(), "p1", []string{"cat"})
	assert.True(t, errors.Is(err, yolo.ErrNothingToConvert))
}

func TestArchive(t *testing.T) {
	builder, storage := newTestBuilder(t, fakeCatalog{"img": "img.png"})

	addImage(t, storage, "p1", "img.png", 10, 10)
	require.NoError(t, storage.SaveAnnotations("p1", "img", []yolo.Annotation{
		{ID: "1", Width: 5, Height: 5, Label: "cat"},
	}))

	_, err := builder.Build(context.Background(), "p1", []string{"cat"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, builder.Archive("p1", &buf))

	r, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	var names []string
	for _, f := range r.File {
		names = append(names, f.Name)
	}
	sort.Strings(names)

	assert.Equal(t, []string{
		"data.yaml",
		"train/images/img.png",
		"train/labels/img.txt",
		"val/images/img.png",
		"val/labels/img.txt",
	}, names)
}

func TestArchiveToFile(t *testing.T) {
	builder, storage := newTestBuilder(t, fakeCatalog{"img": "img.png"})

	addImage(t, storage, "p1", "img.png", 10, 10)
	require.NoError(t, storage.SaveAnnotations("p1", "img", []yolo.Annotation{
		{ID: "1", Width: 5, Height: 5, Label: "cat"},
	}))

	_, err := builder.Build(context.Background(), "p1", []string{"cat"})
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "p1.zip")
	require.NoError(t, builder.ArchiveToFile("p1", out))

	r, err := zip.OpenReader(out)
	require.NoError(t, err)
	defer r.Close()

	assert.Len(t, r.File, 5)
}
