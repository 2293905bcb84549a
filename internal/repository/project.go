package repository

import (
	"context"
	"strings"

	constant "github.com/SeakMengs/OpenSight/internal/constant"
	"github.com/SeakMengs/OpenSight/internal/model"
	"gorm.io/gorm"
)

type ProjectRepository struct {
	*baseRepository
}

func (pr ProjectRepository) Create(ctx context.Context, tx *gorm.DB, project *model.Project) (*model.Project, error) {
	pr.logger.Debugf("Create project with data: %v \n", project)

	db := pr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	if err := db.WithContext(ctx).Model(&model.Project{}).Create(project).Error; err != nil {
		return project, err
	}

	if project.Images == nil {
		project.Images = []model.Image{}
	}

	return project, nil
}

// GetById returns the project with its images ordered by upload time.
// gorm.ErrRecordNotFound is returned when no such project exists.
func (pr ProjectRepository) GetById(ctx context.Context, tx *gorm.DB, projectID string) (*model.Project, error) {
	pr.logger.Debugf("Get project by id: %s \n", projectID)

	db := pr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var project model.Project
	if err := db.WithContext(ctx).Model(&model.Project{}).
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("images.created_at ASC, images.id ASC")
		}).
		Where("id = ?", projectID).
		First(&project).Error; err != nil {
		return nil, err
	}

	if project.Images == nil {
		project.Images = []model.Image{}
	}

	return &project, nil
}

func (pr ProjectRepository) Exists(ctx context.Context, tx *gorm.DB, projectID string) (bool, error) {
	pr.logger.Debugf("Check project exists with id: %s \n", projectID)

	db := pr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var count int64
	if err := db.WithContext(ctx).Model(&model.Project{}).Where("id = ?", projectID).Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}

// List returns one page of projects, newest first, each with its images, and the total number of
// projects matching search. search is a case-insensitive substring of the name.
func (pr ProjectRepository) List(ctx context.Context, tx *gorm.DB, search string, page, pageSize uint) ([]model.Project, int64, error) {
	pr.logger.Debugf("List projects with search: %s, page: %d, pageSize: %d \n", search, page, pageSize)

	db := pr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	query := db.WithContext(ctx).Model(&model.Project{})
	if search = strings.TrimSpace(search); search != "" {
		query = query.Where("LOWER(projects.name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	// count and find each get their own statement
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	projects := []model.Project{}
	if err := query.
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("images.created_at ASC, images.id ASC")
		}).
		Order("projects.created_at DESC, projects.id ASC").
		Offset(int((page - 1) * pageSize)).
		Limit(int(pageSize)).
		Find(&projects).Error; err != nil {
		return nil, 0, err
	}

	for i := range projects {
		if projects[i].Images == nil {
			projects[i].Images = []model.Image{}
		}
	}

	return projects, total, nil
}

type UpdateProjectParams struct {
	Name        *string
	Description *string
}

func (pr ProjectRepository) Update(ctx context.Context, tx *gorm.DB, projectID string, params UpdateProjectParams) error {
	pr.logger.Debugf("Update project %s with params: %v \n", projectID, params)

	db := pr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	updates := map[string]any{}
	if params.Name != nil {
		updates["name"] = strings.TrimSpace(*params.Name)
	}
	if params.Description != nil {
		updates["description"] = *params.Description
	}

	if len(updates) == 0 {
		return nil
	}

	result := db.WithContext(ctx).Model(&model.Project{}).Where("id = ?", projectID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// Delete removes the project together with its images and training runs.
func (pr ProjectRepository) Delete(ctx context.Context, tx *gorm.DB, projectID string) error {
	pr.logger.Debugf("Delete project with id: %s \n", projectID)

	db := pr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	return pr.withTx(db.WithContext(ctx), func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", projectID).Delete(&model.Image{}).Error; err != nil {
			return err
		}

		if err := tx.Where("project_id = ?", projectID).Delete(&model.TrainingRun{}).Error; err != nil {
			return err
		}

		result := tx.Where("id = ?", projectID).Delete(&model.Project{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return nil
	})
}
