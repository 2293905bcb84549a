package controller

import (
	"errors"
	"net/http"

	filestorage "github.com/SeakMengs/OpenSight/internal/file_storage"
	"github.com/SeakMengs/OpenSight/internal/util"
	"github.com/SeakMengs/OpenSight/pkg/yolo"
	"github.com/gin-gonic/gin"
)

type AnnotationController struct {
	*baseController
}

// GetAnnotations answers with an empty list when the image has no annotation file yet
// or when the file cannot be read.
func (ac AnnotationController) GetAnnotations(ctx *gin.Context) {
	projectId := ctx.Param("projectId")
	imageId := ctx.Param("imageId")

	if _, ok := ac.findImage(ctx, projectId, imageId); !ok {
		return
	}

	annotations, err := ac.app.Storage.GetAnnotations(projectId, imageId)
	if err != nil {
		if !errors.Is(err, filestorage.ErrNotFound) {
			ac.app.Logger.Errorf("Failed to read annotations of image %s: %v", imageId, err)
		}
		annotations = []yolo.Annotation{}
	}

	util.ResponseSuccess(ctx, gin.H{
		"annotations": annotations,
	})
}

// SaveAnnotations replaces every annotation of the image with the request body.
func (ac AnnotationController) SaveAnnotations(ctx *gin.Context) {
	projectId := ctx.Param("projectId")
	imageId := ctx.Param("imageId")

	var body []yolo.Annotation
	if err := ctx.ShouldBindJSON(&body); err != nil {
		ac.app.Logger.Debugf("Invalid annotations for image %s: %v", imageId, err)
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid annotations", util.GenerateErrorMessages(err), nil)
		return
	}

	if _, ok := ac.findImage(ctx, projectId, imageId); !ok {
		return
	}

	release, ok := ac.lockProject(ctx, projectId)
	if !ok {
		return
	}
	defer release()

	if err := ac.app.Storage.SaveAnnotations(projectId, imageId, body); err != nil {
		ac.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to save annotations", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"count": len(body),
	})
}
