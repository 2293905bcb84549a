package filestorage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/SeakMengs/OpenSight/pkg/yolo"
)

var (
	ErrNotFound  = errors.New("file not found")
	ErrInvalidID = errors.New("invalid id")
)

// LocalStorage lays out one directory per project under root:
//
//	<root>/<projectId>/images/<uuid><ext>
//	<root>/<projectId>/labels/<imageId>.json
//	<root>/<projectId>/classes.json
//	<root>/<projectId>/dataset/
type LocalStorage struct {
	root string
}

func NewLocalStorage(root string) (*LocalStorage, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve storage root %s: %w", root, err)
	}

	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage root %s: %w", abs, err)
	}

	return &LocalStorage{root: abs}, nil
}

func (s *LocalStorage) Root() string {
	return s.root
}

func (s *LocalStorage) ProjectDir(projectID string) string {
	return filepath.Join(s.root, projectID)
}

func (s *LocalStorage) ImagesDir(projectID string) string {
	return filepath.Join(s.ProjectDir(projectID), yolo.ImagesDirName)
}

func (s *LocalStorage) LabelsDir(projectID string) string {
	return filepath.Join(s.ProjectDir(projectID), yolo.LabelsDirName)
}

func (s *LocalStorage) DatasetDir(projectID string) string {
	return filepath.Join(s.ProjectDir(projectID), yolo.DatasetDirName)
}

func (s *LocalStorage) ClassesPath(projectID string) string {
	return filepath.Join(s.ProjectDir(projectID), yolo.ClassesFileName)
}

func (s *LocalStorage) ImagePath(projectID, fileName string) string {
	return filepath.Join(s.ImagesDir(projectID), fileName)
}

func (s *LocalStorage) AnnotationPath(projectID, imageID string) string {
	return filepath.Join(s.LabelsDir(projectID), imageID+yolo.AnnotationFileExt)
}

// EnsureProject creates the images directory of a new project.
func (s *LocalStorage) EnsureProject(projectID string) error {
	if err := validateID(projectID); err != nil {
		return err
	}

	return os.MkdirAll(s.ImagesDir(projectID), 0755)
}

func (s *LocalStorage) RemoveProject(projectID string) error {
	if err := validateID(projectID); err != nil {
		return err
	}

	return os.RemoveAll(s.ProjectDir(projectID))
}

// SaveImage streams r into the project's images directory and returns the number of bytes written.
func (s *LocalStorage) SaveImage(projectID, fileName string, r io.Reader) (int64, error) {
	if err := validateID(projectID, fileName); err != nil {
		return 0, err
	}

	dir := s.ImagesDir(projectID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, fmt.Errorf("failed to create images directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+fileName+".tmp-*")
	if err != nil {
		return 0, err
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return 0, fmt.Errorf("failed to write image: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return 0, err
	}

	if err := os.Rename(tmp.Name(), filepath.Join(dir, fileName)); err != nil {
		return 0, err
	}

	return n, nil
}

// ResolveImage returns the path of a stored image, or ErrNotFound when it is not on disk.
func (s *LocalStorage) ResolveImage(projectID, fileName string) (string, error) {
	if err := validateID(projectID, fileName); err != nil {
		return "", err
	}

	path := s.ImagePath(projectID, fileName)
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, fileName)
		}
		return "", err
	}

	if info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrNotFound, fileName)
	}

	return path, nil
}

// RemoveImage deletes the stored file. A missing file is not an error.
func (s *LocalStorage) RemoveImage(projectID, fileName string) error {
	if err := validateID(projectID, fileName); err != nil {
		return err
	}

	return removeIfExists(s.ImagePath(projectID, fileName))
}

// GetAnnotations returns ErrNotFound when the image has never been annotated.
func (s *LocalStorage) GetAnnotations(projectID, imageID string) ([]yolo.Annotation, error) {
	if err := validateID(projectID, imageID); err != nil {
		return nil, err
	}

	annotations := []yolo.Annotation{}
	if err := readJSON(s.AnnotationPath(projectID, imageID), &annotations); err != nil {
		return nil, err
	}

	if annotations == nil {
		annotations = []yolo.Annotation{}
	}

	return annotations, nil
}

// SaveAnnotations replaces the annotation file of an image.
func (s *LocalStorage) SaveAnnotations(projectID, imageID string, annotations []yolo.Annotation) error {
	if err := validateID(projectID, imageID); err != nil {
		return err
	}

	if annotations == nil {
		annotations = []yolo.Annotation{}
	}

	return writeJSON(s.AnnotationPath(projectID, imageID), annotations)
}

func (s *LocalStorage) RemoveAnnotations(projectID, imageID string) error {
	if err := validateID(projectID, imageID); err != nil {
		return err
	}

	return removeIfExists(s.AnnotationPath(projectID, imageID))
}

// GetClasses returns ErrNotFound when no class list has been saved yet.
func (s *LocalStorage) GetClasses(projectID string) ([]string, error) {
	if err := validateID(projectID); err != nil {
		return nil, err
	}

	classes := []string{}
	if err := readJSON(s.ClassesPath(projectID), &classes); err != nil {
		return nil, err
	}

	if classes == nil {
		classes = []string{}
	}

	return classes, nil
}

func (s *LocalStorage) SaveClasses(projectID string, classes []string) error {
	if err := validateID(projectID); err != nil {
		return err
	}

	if classes == nil {
		classes = []string{}
	}

	return writeJSON(s.ClassesPath(projectID), classes)
}

// ids become path segments, so anything that could escape the project directory is rejected
func validateID(ids ...string) error {
	for _, id := range ids {
		if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) || strings.ContainsRune(id, 0) {
			return fmt.Errorf("%w: %q", ErrInvalidID, id)
		}
	}
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, filepath.Base(path))
		}
		return err
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", filepath.Base(path), err)
	}

	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	return writeFileAtomic(path, data)
}

// writeFileAtomic writes to a temp file in the same directory and renames it over path,
// so readers never observe a partially written file.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}

	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), path)
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
