package controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/SeakMengs/OpenSight/internal/constant"
	"github.com/SeakMengs/OpenSight/internal/dataset"
	"github.com/SeakMengs/OpenSight/internal/detector"
	"github.com/SeakMengs/OpenSight/internal/model"
	"github.com/SeakMengs/OpenSight/internal/util"
	"github.com/gin-gonic/gin"
)

type TrainingController struct {
	*baseController
}

const ErrNothingToTrain = "project has no annotations to train on"

// StartTraining builds the dataset and fine-tunes the detector on it. The request blocks
// until the detector reports back, holding the project lock the whole time.
func (tc TrainingController) StartTraining(ctx *gin.Context) {
	type Request struct {
		Classes   []string `json:"classes" form:"classes" binding:"omitempty,uniqueStr,dive,strNotEmpty"`
		Epochs    int      `json:"epochs" form:"epochs" binding:"omitempty,gte=1,lte=1000"`
		ImageSize int      `json:"imageSize" form:"imageSize" binding:"omitempty,gte=32,lte=4096"`
		BaseModel string   `json:"baseModel" form:"baseModel" binding:"omitempty,strNotEmpty"`
	}
	var body Request

	projectId := ctx.Param("projectId")

	if err := bindOptionalJSON(ctx, &body); err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err), nil)
		return
	}

	if !tc.requireProject(ctx, projectId) {
		return
	}

	release, ok := tc.lockProject(ctx, projectId)
	if !ok {
		return
	}
	defer release()

	classes, err := tc.app.Dataset.ResolveClasses(projectId, body.Classes)
	if err != nil {
		if errors.Is(err, dataset.ErrNoClasses) {
			util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid classes", util.GenerateErrorMessages(err, "classes"), nil)
			return
		}
		tc.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to read classes", util.GenerateErrorMessages(err), nil)
		return
	}

	result, ok := tc.buildDataset(ctx, projectId, classes)
	if !ok {
		return
	}
	if result == nil || result.Images == 0 {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Nothing to train on", util.GenerateErrorMessages(errors.New(ErrNothingToTrain), "projectId"), nil)
		return
	}

	cfg := tc.app.Config.Detector
	run := &model.TrainingRun{
		ProjectID:    projectId,
		Status:       constant.TrainingStatusPending,
		Classes:      classes,
		Epochs:       firstPositive(body.Epochs, cfg.Epochs),
		ImageSize:    firstPositive(body.ImageSize, cfg.ImageSize),
		Model:        cfg.BaseModel,
		Device:       cfg.Device,
		RequestedBy:  operatorName(ctx),
		ManifestPath: result.ManifestPath,
	}
	if body.BaseModel != "" {
		run.Model = body.BaseModel
	}

	if _, err := tc.app.Repository.TrainingRun.Create(ctx, nil, run); err != nil {
		tc.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to create training run", util.GenerateErrorMessages(err), nil)
		return
	}

	tc.app.Logger.Infof("Training run %s of project %s requested by %s", run.ID, projectId, run.RequestedBy)

	startedAt := time.Now().UTC()
	run.Status = constant.TrainingStatusRunning
	run.StartedAt = &startedAt
	if err := tc.app.Repository.TrainingRun.Save(ctx, nil, run); err != nil {
		tc.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to update training run", util.GenerateErrorMessages(err), nil)
		return
	}

	// a client that stops waiting must not abort a run the detector already started
	trainCtx := context.WithoutCancel(ctx.Request.Context())

	trained, trainErr := tc.app.Detector.Train(trainCtx, detector.TrainRequest{
		Data:      run.ManifestPath,
		Epochs:    run.Epochs,
		ImageSize: run.ImageSize,
		Device:    run.Device,
		Model:     run.Model,
		Project:   projectId,
		Name:      run.ID,
	})

	finishedAt := time.Now().UTC()
	run.FinishedAt = &finishedAt
	if trainErr != nil {
		run.Status = constant.TrainingStatusFailed
		run.Error = trainErr.Error()
	} else {
		run.Status = constant.TrainingStatusCompleted
		run.WeightsPath = trained.WeightsPath
		run.Metrics = trained.Metrics
	}

	if err := tc.app.Repository.TrainingRun.Save(trainCtx, nil, run); err != nil {
		tc.app.Logger.Errorf("Failed to record result of training run %s: %v", run.ID, err)
	}

	if trainErr != nil {
		tc.app.Logger.Errorf("Training run %s of project %s failed: %v", run.ID, projectId, trainErr)

		code := http.StatusInternalServerError
		if errors.Is(trainErr, detector.ErrUnavailable) {
			code = http.StatusServiceUnavailable
		}
		util.ResponseFailed(ctx, code, "Training failed", util.GenerateErrorMessages(trainErr, "detector"), gin.H{"run": run})
		return
	}

	tc.app.Logger.Infof("Training run %s of project %s completed, weights at %s", run.ID, projectId, run.WeightsPath)
	util.ResponseSuccess(ctx, gin.H{
		"run": run,
	})
}

func (tc TrainingController) GetTrainingRuns(ctx *gin.Context) {
	projectId := ctx.Param("projectId")

	if !tc.requireProject(ctx, projectId) {
		return
	}

	runs, err := tc.app.Repository.TrainingRun.ListByProject(ctx, nil, projectId)
	if err != nil {
		tc.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to get training runs", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"runs": runs,
	})
}

func firstPositive(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}
