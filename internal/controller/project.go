package controller

import (
	"errors"
	"net/http"

	"github.com/SeakMengs/OpenSight/internal/model"
	"github.com/SeakMengs/OpenSight/internal/repository"
	"github.com/SeakMengs/OpenSight/internal/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ProjectController struct {
	*baseController
}

func (pc ProjectController) CreateProject(ctx *gin.Context) {
	type Request struct {
		Name        string  `json:"name" form:"name" binding:"required,strNotEmpty,cmax=100"`
		Description *string `json:"description" form:"description" binding:"omitempty,cmax=2000"`
	}
	var body Request

	if err := ctx.ShouldBind(&body); err != nil {
		pc.app.Logger.Debugf("Invalid create project request: %v", err)
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err), nil)
		return
	}

	project, err := pc.app.Repository.Project.Create(ctx, nil, &model.Project{
		Name:        body.Name,
		Description: body.Description,
	})
	if err != nil {
		pc.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to create project", util.GenerateErrorMessages(err), nil)
		return
	}

	if err := pc.app.Storage.EnsureProject(project.ID); err != nil {
		pc.app.Logger.Errorf("Failed to create storage for project %s: %v", project.ID, err)

		if delErr := pc.app.Repository.Project.Delete(ctx, nil, project.ID); delErr != nil {
			pc.app.Logger.Errorf("Failed to roll back project %s: %v", project.ID, delErr)
		}

		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to create project storage", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseCreated(ctx, gin.H{
		"project": project,
	})
}

func (pc ProjectController) GetProjectList(ctx *gin.Context) {
	page, pageSize := util.ParsePagination(ctx)
	search := ctx.Query("search")

	projects, total, err := pc.app.Repository.Project.List(ctx, nil, search, page, pageSize)
	if err != nil {
		pc.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to get projects", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"projects":  projects,
		"total":     total,
		"page":      page,
		"pageSize":  pageSize,
		"totalPage": util.CalculateTotalPage(total, pageSize),
	})
}

func (pc ProjectController) GetProjectById(ctx *gin.Context) {
	projectId := ctx.Param("projectId")

	project, err := pc.app.Repository.Project.GetById(ctx, nil, projectId)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.ResponseFailed(ctx, http.StatusNotFound, "Project not found", util.GenerateErrorMessages(errors.New(ErrProjectNotFound), "projectId"), nil)
			return
		}

		pc.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to get project", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"project": project,
	})
}

func (pc ProjectController) UpdateProject(ctx *gin.Context) {
	type Request struct {
		Name        *string `json:"name" form:"name" binding:"omitempty,strNotEmpty,cmax=100"`
		Description *string `json:"description" form:"description" binding:"omitempty,cmax=2000"`
	}
	var body Request

	projectId := ctx.Param("projectId")

	if err := ctx.ShouldBind(&body); err != nil {
		pc.app.Logger.Debugf("Invalid update project request: %v", err)
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err), nil)
		return
	}

	err := pc.app.Repository.Project.Update(ctx, nil, projectId, repository.UpdateProjectParams{
		Name:        body.Name,
		Description: body.Description,
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.ResponseFailed(ctx, http.StatusNotFound, "Project not found", util.GenerateErrorMessages(errors.New(ErrProjectNotFound), "projectId"), nil)
			return
		}

		pc.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to update project", util.GenerateErrorMessages(err), nil)
		return
	}

	pc.GetProjectById(ctx)
}

// DeleteProject removes the records first, then everything the project stored on disk and in the bucket.
func (pc ProjectController) DeleteProject(ctx *gin.Context) {
	projectId := ctx.Param("projectId")

	if !pc.requireProject(ctx, projectId) {
		return
	}

	release, ok := pc.lockProject(ctx, projectId)
	if !ok {
		return
	}
	defer release()

	if err := pc.app.Repository.Project.Delete(ctx, nil, projectId); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.ResponseFailed(ctx, http.StatusNotFound, "Project not found", util.GenerateErrorMessages(errors.New(ErrProjectNotFound), "projectId"), nil)
			return
		}

		pc.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to delete project", util.GenerateErrorMessages(err), nil)
		return
	}

	if err := pc.app.Storage.RemoveProject(projectId); err != nil {
		pc.app.Logger.Errorf("Failed to remove storage of project %s: %v", projectId, err)
	}

	if err := pc.app.Mirror.RemoveProject(ctx, projectId); err != nil {
		pc.app.Logger.Errorf("Failed to remove mirrored objects of project %s: %v", projectId, err)
	}

	util.ResponseSuccess(ctx, nil)
}
