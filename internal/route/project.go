package route

import (
	"github.com/SeakMengs/OpenSight/internal/controller"
	"github.com/SeakMengs/OpenSight/internal/middleware"
	"github.com/gin-gonic/gin"
)

func V1_Projects(r *gin.RouterGroup, pc *controller.ProjectController, ic *controller.ImageController, ac *controller.AnnotationController, cc *controller.ClassController, middleware *middleware.Middleware) {
	v1 := r.Group("/v1/projects")
	v1.Use(middleware.AuthMiddleware)
	{
		v1.POST("", pc.CreateProject)
		v1.GET("", pc.GetProjectList)
		v1.GET("/:projectId", pc.GetProjectById)
		v1.PUT("/:projectId", pc.UpdateProject)
		v1.DELETE("/:projectId", pc.DeleteProject)

		v1.POST("/:projectId/images", ic.UploadImage)
		v1.GET("/:projectId/images", ic.GetImageList)
		v1.GET("/:projectId/images/:imageId", ic.GetImageById)
		v1.DELETE("/:projectId/images/:imageId", ic.DeleteImage)
		v1.GET("/:projectId/images/:imageId/thumbnail", ic.GetThumbnail)

		v1.GET("/:projectId/images/:imageId/annotations", ac.GetAnnotations)
		v1.POST("/:projectId/images/:imageId/annotations", ac.SaveAnnotations)

		v1.GET("/:projectId/classes", cc.GetClasses)
		v1.POST("/:projectId/classes", cc.SaveClasses)
	}
}
