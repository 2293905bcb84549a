package controller

import (
	"errors"
	"net/http"

	"github.com/SeakMengs/OpenSight/internal/detector"
	"github.com/SeakMengs/OpenSight/internal/util"
	"github.com/gin-gonic/gin"
)

type DetectionController struct {
	*baseController
}

// Predict runs the detector on a stored image and returns its boxes as annotation proposals.
// Nothing is saved, the client decides which proposals to keep.
func (dc DetectionController) Predict(ctx *gin.Context) {
	projectId := ctx.Param("projectId")

	image, ok := dc.findImage(ctx, projectId, ctx.Param("imageId"))
	if !ok {
		return
	}

	path, ok := dc.resolveImageFile(ctx, projectId, image.FilePath)
	if !ok {
		return
	}

	detections, err := dc.app.Detector.Predict(ctx.Request.Context(), path)
	if err != nil {
		dc.app.Logger.Errorf("Prediction on image %s failed: %v", image.ID, err)
		if errors.Is(err, detector.ErrUnavailable) {
			util.ResponseFailed(ctx, http.StatusServiceUnavailable, "Detector unavailable", util.GenerateErrorMessages(err, "detector"), nil)
			return
		}
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Prediction failed", util.GenerateErrorMessages(err), nil)
		return
	}

	annotations, err := detector.Proposals(detections, dc.app.Config.Detector.MinConfidence)
	if err != nil {
		dc.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Prediction failed", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"annotations": annotations,
	})
}
