package controller

import (
	"errors"
	"net/http"
	"strings"

	filestorage "github.com/SeakMengs/OpenSight/internal/file_storage"
	"github.com/SeakMengs/OpenSight/internal/util"
	"github.com/gin-gonic/gin"
)

type ClassController struct {
	*baseController
}

func (cc ClassController) GetClasses(ctx *gin.Context) {
	projectId := ctx.Param("projectId")

	if !cc.requireProject(ctx, projectId) {
		return
	}

	classes, err := cc.app.Storage.GetClasses(projectId)
	if err != nil {
		if !errors.Is(err, filestorage.ErrNotFound) {
			cc.app.Logger.Errorf("Failed to read classes of project %s: %v", projectId, err)
		}
		classes = []string{}
	}

	util.ResponseSuccess(ctx, gin.H{
		"classes": classes,
	})
}

// SaveClasses stores the ordered class list. The position of a name is its class index
// in generated datasets, so reordering changes the meaning of trained models.
func (cc ClassController) SaveClasses(ctx *gin.Context) {
	type Request struct {
		Classes []string `json:"classes" form:"classes" binding:"required,uniqueStr,dive,strNotEmpty,cmax=100"`
	}
	var body Request

	projectId := ctx.Param("projectId")

	if err := ctx.ShouldBindJSON(&body); err != nil {
		cc.app.Logger.Debugf("Invalid classes for project %s: %v", projectId, err)
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid classes", util.GenerateErrorMessages(err), nil)
		return
	}

	if !cc.requireProject(ctx, projectId) {
		return
	}

	classes := make([]string, len(body.Classes))
	for i, c := range body.Classes {
		classes[i] = strings.TrimSpace(c)
	}

	release, ok := cc.lockProject(ctx, projectId)
	if !ok {
		return
	}
	defer release()

	if err := cc.app.Storage.SaveClasses(projectId, classes); err != nil {
		cc.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to save classes", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"count": len(classes),
	})
}
