package repository

import (
	"context"

	constant "github.com/SeakMengs/OpenSight/internal/constant"
	"github.com/SeakMengs/OpenSight/internal/model"
	"gorm.io/gorm"
)

type TrainingRunRepository struct {
	*baseRepository
}

func (tr TrainingRunRepository) Create(ctx context.Context, tx *gorm.DB, run *model.TrainingRun) (*model.TrainingRun, error) {
	tr.logger.Debugf("Create training run for project %s \n", run.ProjectID)

	db := tr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	if err := db.WithContext(ctx).Model(&model.TrainingRun{}).Create(run).Error; err != nil {
		return run, err
	}

	return run, nil
}

// Save writes every column of run, including zero values.
func (tr TrainingRunRepository) Save(ctx context.Context, tx *gorm.DB, run *model.TrainingRun) error {
	tr.logger.Debugf("Save training run %s with status %s \n", run.ID, run.Status)

	db := tr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	return db.WithContext(ctx).Save(run).Error
}

func (tr TrainingRunRepository) ListByProject(ctx context.Context, tx *gorm.DB, projectID string) ([]model.TrainingRun, error) {
	tr.logger.Debugf("List training runs of project %s \n", projectID)

	db := tr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	runs := []model.TrainingRun{}
	if err := db.WithContext(ctx).Model(&model.TrainingRun{}).
		Where("project_id = ?", projectID).
		Order("created_at DESC, id DESC").
		Find(&runs).Error; err != nil {
		return nil, err
	}

	return runs, nil
}
