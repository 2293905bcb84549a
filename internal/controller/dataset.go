package controller

import (
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/SeakMengs/OpenSight/internal/dataset"
	"github.com/SeakMengs/OpenSight/internal/util"
	"github.com/SeakMengs/OpenSight/pkg/yolo"
	"github.com/gin-gonic/gin"
)

type DatasetController struct {
	*baseController
}

const ErrNothingToExport = "project has no annotations to export"

// buildDataset runs the converter and writes the error response itself. ok is false when a
// response was written. result is nil with ok true when there was nothing to convert.
func (b *baseController) buildDataset(ctx *gin.Context, projectId string, classes []string) (*yolo.Result, bool) {
	result, err := b.app.Dataset.Build(ctx, projectId, classes)
	if err != nil {
		switch {
		case errors.Is(err, yolo.ErrNothingToConvert):
			return nil, true
		case errors.Is(err, dataset.ErrNoClasses), errors.Is(err, yolo.ErrDuplicateClass):
			util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid classes", util.GenerateErrorMessages(err, "classes"), nil)
		default:
			b.app.Logger.Errorf("Failed to build dataset of project %s: %v", projectId, err)
			util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to build dataset", util.GenerateErrorMessages(err), nil)
		}
		return nil, false
	}

	return result, true
}

func (dc DatasetController) BuildDataset(ctx *gin.Context) {
	type Request struct {
		// Empty means the project's saved class list
		Classes []string `json:"classes" form:"classes" binding:"omitempty,uniqueStr,dive,strNotEmpty"`
	}
	var body Request

	projectId := ctx.Param("projectId")

	if err := bindOptionalJSON(ctx, &body); err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err), nil)
		return
	}

	if !dc.requireProject(ctx, projectId) {
		return
	}

	release, ok := dc.lockProject(ctx, projectId)
	if !ok {
		return
	}
	defer release()

	result, ok := dc.buildDataset(ctx, projectId, body.Classes)
	if !ok {
		return
	}

	if result == nil {
		util.ResponseSuccess(ctx, gin.H{
			"produced": false,
		})
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"produced":     true,
		"manifestPath": result.ManifestPath,
		"images":       result.Images,
		"labels":       result.Labels,
		"train":        result.Train,
		"val":          result.Val,
		"skipped":      result.Skipped,
	})
}

// ExportDataset rebuilds the dataset and hands it out as a zip archive. With object storage
// enabled the archive is uploaded and a presigned link is returned instead of the bytes.
func (dc DatasetController) ExportDataset(ctx *gin.Context) {
	projectId := ctx.Param("projectId")
	classes := ctx.QueryArray("classes")

	if !dc.requireProject(ctx, projectId) {
		return
	}

	release, ok := dc.lockProject(ctx, projectId)
	if !ok {
		return
	}
	defer release()

	result, ok := dc.buildDataset(ctx, projectId, classes)
	if !ok {
		return
	}

	if result == nil {
		util.ResponseFailed(ctx, http.StatusNotFound, "Nothing to export", util.GenerateErrorMessages(errors.New(ErrNothingToExport), "projectId"), nil)
		return
	}

	fileName := fmt.Sprintf("%s-dataset.zip", projectId)

	if dc.app.Mirror.Enabled() {
		// a fresh object per export keeps links handed out earlier valid until they expire
		suffix, err := util.GenerateNChar(8)
		if err != nil {
			dc.app.Logger.Error(err)
			util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to create archive", util.GenerateErrorMessages(err), nil)
			return
		}
		dc.publishArchive(ctx, projectId, fmt.Sprintf("%s-dataset-%s.zip", projectId, suffix))
		return
	}

	ctx.Header("Content-Type", "application/zip")
	ctx.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, fileName))
	ctx.Status(http.StatusOK)

	// headers are already sent, a failure here can only be logged
	if err := dc.app.Dataset.Archive(projectId, ctx.Writer); err != nil {
		dc.app.Logger.Errorf("Failed to stream dataset archive of project %s: %v", projectId, err)
	}
}

func (dc DatasetController) publishArchive(ctx *gin.Context, projectId, fileName string) {
	tmp, err := util.CreateTemp("dataset-*.zip")
	if err != nil {
		dc.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to create archive", util.GenerateErrorMessages(err), nil)
		return
	}
	defer os.Remove(tmp.Name())

	archiveErr := dc.app.Dataset.Archive(projectId, tmp)
	if closeErr := tmp.Close(); archiveErr == nil {
		archiveErr = closeErr
	}
	if archiveErr != nil {
		dc.app.Logger.Error(archiveErr)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to create archive", util.GenerateErrorMessages(archiveErr), nil)
		return
	}

	url, err := dc.app.Mirror.PublishArchive(ctx, projectId, tmp.Name(), fileName)
	if err != nil {
		dc.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusBadGateway, "Failed to upload archive", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"url":       url,
		"fileName":  fileName,
		"expiresIn": int(dc.app.Config.Minio.PresignTTL.Seconds()),
	})
}
