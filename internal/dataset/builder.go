package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/SeakMengs/OpenSight/internal/config"
	filestorage "github.com/SeakMengs/OpenSight/internal/file_storage"
	"github.com/SeakMengs/OpenSight/internal/util"
	"github.com/SeakMengs/OpenSight/pkg/yolo"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrNoClasses = errors.New("no classes to build the dataset with")

// ImageCatalog is the source of truth for which images belong to a project.
type ImageCatalog interface {
	FileNameMap(ctx context.Context, tx *gorm.DB, projectID string) (map[string]string, error)
}

// Builder produces the detector dataset of a project from its stored annotations.
// Callers are expected to hold the project lock.
type Builder struct {
	images  ImageCatalog
	storage *filestorage.LocalStorage
	cfg     config.DatasetConfig
	logger  *zap.SugaredLogger
}

func NewBuilder(images ImageCatalog, storage *filestorage.LocalStorage, cfg config.DatasetConfig, logger *zap.SugaredLogger) *Builder {
	return &Builder{images: images, storage: storage, cfg: cfg, logger: logger}
}

// ResolveClasses returns classes when non-empty, the project's saved class list otherwise.
func (b *Builder) ResolveClasses(projectID string, classes []string) ([]string, error) {
	if len(classes) > 0 {
		return classes, nil
	}

	// an unreadable class list counts as no class list
	saved, err := b.storage.GetClasses(projectID)
	if err != nil && !errors.Is(err, filestorage.ErrNotFound) {
		b.logger.Errorf("Failed to read class list of project %s: %v", projectID, err)
		saved = nil
	}

	if len(saved) == 0 {
		return nil, ErrNoClasses
	}

	return saved, nil
}

// Build regenerates <project>/dataset. yolo.ErrNothingToConvert is returned when the
// project has no annotations yet.
func (b *Builder) Build(ctx context.Context, projectID string, classes []string) (*yolo.Result, error) {
	classes, err := b.ResolveClasses(projectID, classes)
	if err != nil {
		return nil, err
	}

	images, err := b.images.FileNameMap(ctx, nil, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load images of project %s: %w", projectID, err)
	}

	b.logger.Infof("Build dataset for project %s with %d classes and %d images", projectID, len(classes), len(images))

	return yolo.Convert(yolo.Options{
		ProjectDir: b.storage.ProjectDir(projectID),
		Classes:    classes,
		Images:     images,
		ValRatio:   b.cfg.ValRatio,
		Seed:       b.cfg.SplitSeed,
		Logger:     b.logger,
	})
}

// Archive zips the last built dataset of a project into w.
func (b *Builder) Archive(projectID string, w io.Writer) error {
	return util.ZipDir(b.storage.DatasetDir(projectID), w)
}

// ArchiveToFile writes the last built dataset of a project to a zip file at path.
func (b *Builder) ArchiveToFile(projectID string, path string) error {
	return util.ZipDirToFile(b.storage.DatasetDir(projectID), path)
}
