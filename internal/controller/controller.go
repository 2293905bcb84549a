package controller

import (
	"errors"
	"io"
	"net/http"

	appcontext "github.com/SeakMengs/OpenSight/internal/app_context"
	"github.com/SeakMengs/OpenSight/internal/auth"
	filestorage "github.com/SeakMengs/OpenSight/internal/file_storage"
	"github.com/SeakMengs/OpenSight/internal/lock"
	"github.com/SeakMengs/OpenSight/internal/middleware"
	"github.com/SeakMengs/OpenSight/internal/model"
	"github.com/SeakMengs/OpenSight/internal/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type baseController struct {
	app *appcontext.Application
}

type Controller struct {
	Index      *IndexController
	Project    *ProjectController
	Image      *ImageController
	Annotation *AnnotationController
	Class      *ClassController
	Detection  *DetectionController
	Dataset    *DatasetController
	Training   *TrainingController
}

func newBaseController(app *appcontext.Application) *baseController {
	return &baseController{app: app}
}

func NewController(app *appcontext.Application) *Controller {
	bc := newBaseController(app)

	return &Controller{
		Index:      &IndexController{baseController: bc},
		Project:    &ProjectController{baseController: bc},
		Image:      &ImageController{baseController: bc},
		Annotation: &AnnotationController{baseController: bc},
		Class:      &ClassController{baseController: bc},
		Detection:  &DetectionController{baseController: bc},
		Dataset:    &DatasetController{baseController: bc},
		Training:   &TrainingController{baseController: bc},
	}
}

const (
	ErrProjectNotFound  = "project not found"
	ErrImageNotFound    = "image not found"
	ErrProjectBusy      = "another operation is running on this project, try again later"
	ErrImageFileMissing = "image file is missing from storage"
)

// requireProject writes a 404 and returns false when the project does not exist.
func (b *baseController) requireProject(ctx *gin.Context, projectId string) bool {
	exists, err := b.app.Repository.Project.Exists(ctx, nil, projectId)
	if err != nil {
		b.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to get project", util.GenerateErrorMessages(err), nil)
		return false
	}

	if !exists {
		util.ResponseFailed(ctx, http.StatusNotFound, "Project not found", util.GenerateErrorMessages(errors.New(ErrProjectNotFound), "projectId"), nil)
		return false
	}

	return true
}

// findImage writes a 404 and returns false when the image is not part of the project.
func (b *baseController) findImage(ctx *gin.Context, projectId, imageId string) (*model.Image, bool) {
	image, err := b.app.Repository.Image.GetById(ctx, nil, projectId, imageId)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.ResponseFailed(ctx, http.StatusNotFound, "Image not found", util.GenerateErrorMessages(errors.New(ErrImageNotFound), "imageId"), nil)
			return nil, false
		}

		b.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to get image", util.GenerateErrorMessages(err), nil)
		return nil, false
	}

	return image, true
}

// lockProject takes the project lock without waiting. A busy project is reported as 409.
// The caller must invoke the returned release func when ok is true.
func (b *baseController) lockProject(ctx *gin.Context, projectId string) (func(), bool) {
	release, err := b.app.Locker.Acquire(ctx, lock.ProjectKey(projectId))
	if err != nil {
		if errors.Is(err, lock.ErrLocked) {
			util.ResponseFailed(ctx, http.StatusConflict, "Project is busy", util.GenerateErrorMessages(errors.New(ErrProjectBusy), "projectId"), nil)
			return nil, false
		}

		b.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to lock project", util.GenerateErrorMessages(err), nil)
		return nil, false
	}

	return release, true
}

// resolveImageFile writes a 404 and returns false when the stored file is gone.
func (b *baseController) resolveImageFile(ctx *gin.Context, projectId, fileName string) (string, bool) {
	path, err := b.app.Storage.ResolveImage(projectId, fileName)
	if err != nil {
		if errors.Is(err, filestorage.ErrNotFound) || errors.Is(err, filestorage.ErrInvalidID) {
			util.ResponseFailed(ctx, http.StatusNotFound, "Image file missing", util.GenerateErrorMessages(errors.New(ErrImageFileMissing), "file"), nil)
			return "", false
		}

		b.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to read image", util.GenerateErrorMessages(err), nil)
		return "", false
	}

	return path, true
}

// bindOptionalJSON binds a JSON body when one is present. An empty body leaves out untouched.
func bindOptionalJSON(ctx *gin.Context, out any) error {
	if ctx.Request.Body == nil || ctx.Request.ContentLength == 0 {
		return nil
	}

	if err := ctx.ShouldBindJSON(out); err != nil && !errors.Is(err, io.EOF) {
		return err
	}

	return nil
}

func operatorName(ctx *gin.Context) string {
	if v, ok := ctx.Get(middleware.OperatorContextKey); ok {
		if operator, ok := v.(auth.JWTPayload); ok && operator.Name != "" {
			return operator.Name
		}
	}
	return "anonymous"
}
