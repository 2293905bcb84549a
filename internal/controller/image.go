package controller

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/SeakMengs/OpenSight/internal/model"
	"github.com/SeakMengs/OpenSight/internal/util"
	"github.com/SeakMengs/OpenSight/pkg/imageutil"
	"github.com/gin-gonic/gin"
)

type ImageController struct {
	*baseController
}

const (
	ErrImageFileRequired    = "image file is required"
	ErrImageTooLarge        = "image must be at most %d bytes, got %d"
	ErrImageTypeNotAllowed  = "image type %s is not allowed, allowed types are %s"
	ErrInvalidThumbnailSize = "size must be an integer between 1 and %d"
)

func (ic ImageController) UploadImage(ctx *gin.Context) {
	projectId := ctx.Param("projectId")

	if !ic.requireProject(ctx, projectId) {
		return
	}

	file, err := ctx.FormFile("file")
	if err != nil {
		ic.app.Logger.Debugf("No image uploaded: %v", err)
		util.ResponseFailed(ctx, http.StatusBadRequest, "No image uploaded", util.GenerateErrorMessages(errors.New(ErrImageFileRequired), "file"), nil)
		return
	}

	uploadCfg := ic.app.Config.Upload
	if uploadCfg.MaxSize > 0 && file.Size > uploadCfg.MaxSize {
		util.ResponseFailed(ctx, http.StatusRequestEntityTooLarge, "Image too large", util.GenerateErrorMessages(fmt.Errorf(ErrImageTooLarge, uploadCfg.MaxSize, file.Size), "file"), nil)
		return
	}

	if !util.IsAllowedExtension(file.Filename, uploadCfg.AllowedExtensions) {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid image type", util.GenerateErrorMessages(fmt.Errorf(ErrImageTypeNotAllowed, file.Filename, strings.Join(uploadCfg.AllowedExtensions, ", ")), "file"), nil)
		return
	}

	storedName := util.NewStoredFileName(file.Filename)

	src, err := file.Open()
	if err != nil {
		ic.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusBadRequest, "Failed to read uploaded image", util.GenerateErrorMessages(err, "file"), nil)
		return
	}
	defer src.Close()

	size, err := ic.app.Storage.SaveImage(projectId, storedName, src)
	if err != nil {
		ic.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to store image", util.GenerateErrorMessages(err), nil)
		return
	}

	imagePath := ic.app.Storage.ImagePath(projectId, storedName)
	image := &model.Image{
		BaseModel: model.BaseModel{ID: util.StripExt(storedName)},
		ProjectID: projectId,
		FileName:  file.Filename,
		FilePath:  storedName,
		FileSize:  size,
	}

	// dimensions are informational, an image whose header cannot be read is still accepted
	if w, h, err := imageutil.Dimensions(imagePath); err == nil {
		image.Width, image.Height = &w, &h
	} else {
		ic.app.Logger.Warnf("Failed to read dimensions of %s: %v", file.Filename, err)
	}

	image, err = ic.app.Repository.Image.Create(ctx, nil, image)
	if err != nil {
		ic.app.Logger.Error(err)
		if rmErr := ic.app.Storage.RemoveImage(projectId, storedName); rmErr != nil {
			ic.app.Logger.Errorf("Failed to remove orphaned image %s: %v", storedName, rmErr)
		}
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to save image", util.GenerateErrorMessages(err), nil)
		return
	}

	if err := ic.app.Mirror.UploadImage(ctx, projectId, imagePath); err != nil {
		ic.app.Logger.Errorf("Failed to mirror image %s: %v", storedName, err)
	}

	util.ResponseCreated(ctx, gin.H{
		"image": image,
	})
}

func (ic ImageController) GetImageList(ctx *gin.Context) {
	projectId := ctx.Param("projectId")

	if !ic.requireProject(ctx, projectId) {
		return
	}

	images, err := ic.app.Repository.Image.ListByProject(ctx, nil, projectId)
	if err != nil {
		ic.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to get images", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"images": images,
	})
}

func (ic ImageController) GetImageById(ctx *gin.Context) {
	image, ok := ic.findImage(ctx, ctx.Param("projectId"), ctx.Param("imageId"))
	if !ok {
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"image": image,
	})
}

// DeleteImage also removes the image's annotation file so no orphan reaches the next dataset build.
func (ic ImageController) DeleteImage(ctx *gin.Context) {
	projectId := ctx.Param("projectId")
	imageId := ctx.Param("imageId")

	image, ok := ic.findImage(ctx, projectId, imageId)
	if !ok {
		return
	}

	release, ok := ic.lockProject(ctx, projectId)
	if !ok {
		return
	}
	defer release()

	if err := ic.app.Repository.Image.Delete(ctx, nil, projectId, imageId); err != nil {
		ic.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to delete image", util.GenerateErrorMessages(err), nil)
		return
	}

	if err := ic.app.Storage.RemoveImage(projectId, image.FilePath); err != nil {
		ic.app.Logger.Errorf("Failed to remove image file %s: %v", image.FilePath, err)
	}

	if err := ic.app.Storage.RemoveAnnotations(projectId, imageId); err != nil {
		ic.app.Logger.Errorf("Failed to remove annotations of image %s: %v", imageId, err)
	}

	if err := ic.app.Mirror.RemoveImage(ctx, projectId, image.FilePath); err != nil {
		ic.app.Logger.Errorf("Failed to remove mirrored image %s: %v", image.FilePath, err)
	}

	util.ResponseSuccess(ctx, nil)
}

func (ic ImageController) GetThumbnail(ctx *gin.Context) {
	projectId := ctx.Param("projectId")

	size := imageutil.DefaultThumbnailSize
	if raw := ctx.Query("size"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > imageutil.MaxThumbnailSize {
			util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid thumbnail size", util.GenerateErrorMessages(fmt.Errorf(ErrInvalidThumbnailSize, imageutil.MaxThumbnailSize), "size"), nil)
			return
		}
		size = v
	}

	image, ok := ic.findImage(ctx, projectId, ctx.Param("imageId"))
	if !ok {
		return
	}

	path, ok := ic.resolveImageFile(ctx, projectId, image.FilePath)
	if !ok {
		return
	}

	thumb, err := imageutil.Thumbnail(path, size)
	if err != nil {
		ic.app.Logger.Warnf("Failed to create thumbnail of %s: %v", image.FilePath, err)
		util.ResponseFailed(ctx, http.StatusUnprocessableEntity, "Failed to create thumbnail", util.GenerateErrorMessages(err, "file"), nil)
		return
	}

	ctx.Header("Content-Type", "image/jpeg")
	ctx.Header("Cache-Control", "private, max-age=3600")
	ctx.Status(http.StatusOK)
	if err := imageutil.EncodeJPEG(ctx.Writer, thumb); err != nil {
		ic.app.Logger.Errorf("Failed to write thumbnail of %s: %v", image.FilePath, err)
	}
}

// ServeImageFile serves the original stored file, e.g. /static/<projectId>/images/<uuid>.png
func (ic ImageController) ServeImageFile(ctx *gin.Context) {
	path, ok := ic.resolveImageFile(ctx, ctx.Param("projectId"), ctx.Param("filename"))
	if !ok {
		return
	}

	ctx.File(path)
}
