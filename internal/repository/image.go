package repository

import (
	"context"

	constant "github.com/SeakMengs/OpenSight/internal/constant"
	"github.com/SeakMengs/OpenSight/internal/model"
	"gorm.io/gorm"
)

type ImageRepository struct {
	*baseRepository
}

func (ir ImageRepository) Create(ctx context.Context, tx *gorm.DB, image *model.Image) (*model.Image, error) {
	ir.logger.Debugf("Create image with data: %v \n", image)

	db := ir.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	if err := db.WithContext(ctx).Model(&model.Image{}).Create(image).Error; err != nil {
		return image, err
	}

	return image, nil
}

// GetById scopes the lookup to the project so ids from another project are reported as not found.
func (ir ImageRepository) GetById(ctx context.Context, tx *gorm.DB, projectID, imageID string) (*model.Image, error) {
	ir.logger.Debugf("Get image %s of project %s \n", imageID, projectID)

	db := ir.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var image model.Image
	if err := db.WithContext(ctx).Model(&model.Image{}).
		Where("id = ? AND project_id = ?", imageID, projectID).
		First(&image).Error; err != nil {
		return nil, err
	}

	return &image, nil
}

func (ir ImageRepository) ListByProject(ctx context.Context, tx *gorm.DB, projectID string) ([]model.Image, error) {
	ir.logger.Debugf("List images of project %s \n", projectID)

	db := ir.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	images := []model.Image{}
	if err := db.WithContext(ctx).Model(&model.Image{}).
		Where("project_id = ?", projectID).
		Order("created_at ASC, id ASC").
		Find(&images).Error; err != nil {
		return nil, err
	}

	return images, nil
}

// FileNameMap maps image id to stored file name for every image of the project.
// The dataset converter only considers annotation files whose id appears here.
func (ir ImageRepository) FileNameMap(ctx context.Context, tx *gorm.DB, projectID string) (map[string]string, error) {
	images, err := ir.ListByProject(ctx, tx, projectID)
	if err != nil {
		return nil, err
	}

	out := make(map[string]string, len(images))
	for _, image := range images {
		out[image.ID] = image.FilePath
	}

	return out, nil
}

func (ir ImageRepository) Delete(ctx context.Context, tx *gorm.DB, projectID, imageID string) error {
	ir.logger.Debugf("Delete image %s of project %s \n", imageID, projectID)

	db := ir.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	result := db.WithContext(ctx).Where("id = ? AND project_id = ?", imageID, projectID).Delete(&model.Image{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
