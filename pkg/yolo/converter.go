package yolo

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/SeakMengs/OpenSight/pkg/imageutil"
	"go.uber.org/zap"
)

var (
	// ErrNothingToConvert is returned when the project has no labels directory.
	ErrNothingToConvert = errors.New("no annotations to convert")
	ErrDuplicateClass   = errors.New("duplicate class name")
)

type Options struct {
	// Project storage root, e.g. /data/<projectId>. Images and labels are read from
	// its images/ and labels/ directories and the dataset is written to dataset/.
	ProjectDir string
	// Ordered class list, the position of a name is its class index.
	Classes []string
	// Image id to stored filename (relative to images/), usually sourced from the database.
	Images map[string]string
	// Fraction of images held out for validation. Zero duplicates every image into both splits.
	ValRatio float64
	Seed     uint64
	Logger   *zap.SugaredLogger
}

type SkipReason string

const (
	SkipUnknownImage SkipReason = "image is not registered"
	SkipMissingImage SkipReason = "image file is missing"
	SkipUndecodable  SkipReason = "image could not be decoded"
)

type Skipped struct {
	ImageID string     `json:"imageId"`
	Reason  SkipReason `json:"reason"`
}

type Result struct {
	DatasetDir   string    `json:"datasetDir"`
	ManifestPath string    `json:"manifestPath"`
	Images       int       `json:"images"`
	Labels       int       `json:"labels"`
	Train        int       `json:"train"`
	Val          int       `json:"val"`
	Skipped      []Skipped `json:"skipped"`
}

type candidate struct {
	imageID   string
	labelPath string
	imagePath string
	filename  string
}

// Convert rebuilds the project's dataset directory from its annotation files and returns
// where the manifest was written. The previous dataset is always removed first, so the
// output only reflects the current annotations. ErrNothingToConvert is returned when the
// project has no labels directory.
func Convert(opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	classIndex, err := ClassIndex(opts.Classes)
	if err != nil {
		return nil, err
	}

	datasetDir, err := filepath.Abs(filepath.Join(opts.ProjectDir, DatasetDirName))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve dataset directory: %w", err)
	}

	if err := os.RemoveAll(datasetDir); err != nil {
		return nil, fmt.Errorf("failed to clear dataset directory: %w", err)
	}

	for _, split := range allSplits {
		for _, dir := range []string{ImagesDirName, LabelsDirName} {
			if err := os.MkdirAll(filepath.Join(datasetDir, string(split), dir), 0755); err != nil {
				return nil, fmt.Errorf("failed to create dataset directory: %w", err)
			}
		}
	}

	labelsDir := filepath.Join(opts.ProjectDir, LabelsDirName)
	entries, err := os.ReadDir(labelsDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Infof("No labels found in %s", labelsDir)
			return nil, ErrNothingToConvert
		}
		return nil, fmt.Errorf("failed to read labels directory: %w", err)
	}

	result := &Result{
		DatasetDir:   datasetDir,
		ManifestPath: filepath.Join(datasetDir, ManifestFileName),
		Skipped:      []Skipped{},
	}

	candidates := resolveCandidates(entries, labelsDir, filepath.Join(opts.ProjectDir, ImagesDirName), opts.Images, result, logger)

	ids := make([]string, 0, len(candidates))
	for _, c := range candidates {
		ids = append(ids, c.imageID)
	}
	splits := AssignSplits(ids, opts.ValRatio, opts.Seed)

	for _, c := range candidates {
		width, height, err := imageutil.DecodedDimensions(c.imagePath)
		if err != nil {
			logger.Warnf("Skip image %s, failed to decode %s: %v", c.imageID, c.imagePath, err)
			result.Skipped = append(result.Skipped, Skipped{ImageID: c.imageID, Reason: SkipUndecodable})
			continue
		}

		annotations, err := readAnnotations(c.labelPath)
		if err != nil {
			return nil, err
		}

		lines, err := LabelLines(annotations, classIndex, width, height)
		if err != nil {
			return nil, err
		}
		content := []byte(strings.Join(lines, "\n"))
		labelName := strings.TrimSuffix(c.filename, filepath.Ext(c.filename)) + LabelFileExt

		for _, split := range splits[c.imageID] {
			if err := copyFile(c.imagePath, filepath.Join(datasetDir, string(split), ImagesDirName, c.filename)); err != nil {
				return nil, fmt.Errorf("failed to copy image %s: %w", c.imageID, err)
			}
			if err := os.WriteFile(filepath.Join(datasetDir, string(split), LabelsDirName, labelName), content, 0644); err != nil {
				return nil, fmt.Errorf("failed to write label file for image %s: %w", c.imageID, err)
			}

			if split == SplitTrain {
				result.Train++
			} else {
				result.Val++
			}
		}

		result.Images++
		result.Labels += len(lines)
	}

	if err := NewManifest(datasetDir, opts.Classes).Write(result.ManifestPath); err != nil {
		return nil, err
	}

	logger.Infof("Dataset written to %s: %d images, %d labels, %d skipped", datasetDir, result.Images, result.Labels, len(result.Skipped))
	return result, nil
}

// Annotation files whose image cannot be found are recorded as skipped.
func resolveCandidates(entries []os.DirEntry, labelsDir, imagesDir string, images map[string]string, result *Result, logger *zap.SugaredLogger) []candidate {
	candidates := make([]candidate, 0, len(entries))

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != AnnotationFileExt {
			continue
		}

		imageID := strings.TrimSuffix(entry.Name(), AnnotationFileExt)
		filename, ok := images[imageID]
		if !ok || filename == "" {
			logger.Warnf("Skip annotation file %s, image %s is not registered", entry.Name(), imageID)
			result.Skipped = append(result.Skipped, Skipped{ImageID: imageID, Reason: SkipUnknownImage})
			continue
		}

		filename = filepath.Base(filename)
		imagePath := filepath.Join(imagesDir, filename)
		if info, err := os.Stat(imagePath); err != nil || info.IsDir() {
			logger.Warnf("Skip annotation file %s, image file %s not found", entry.Name(), imagePath)
			result.Skipped = append(result.Skipped, Skipped{ImageID: imageID, Reason: SkipMissingImage})
			continue
		}

		candidates = append(candidates, candidate{
			imageID:   imageID,
			labelPath: filepath.Join(labelsDir, entry.Name()),
			imagePath: imagePath,
			filename:  filename,
		})
	}

	return candidates
}

func readAnnotations(path string) ([]Annotation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read annotation file: %w", err)
	}

	var annotations []Annotation
	if err := json.Unmarshal(data, &annotations); err != nil {
		return nil, fmt.Errorf("failed to decode annotation file %s: %w", filepath.Base(path), err)
	}

	return annotations, nil
}
