package route

import (
	"github.com/SeakMengs/OpenSight/internal/controller"
	"github.com/SeakMengs/OpenSight/internal/middleware"
	"github.com/gin-gonic/gin"
)

func V1_AI(r *gin.RouterGroup, dc *controller.DetectionController, dsc *controller.DatasetController, tc *controller.TrainingController, middleware *middleware.Middleware) {
	v1 := r.Group("/v1/projects")
	v1.Use(middleware.AuthMiddleware)
	{
		v1.POST("/:projectId/images/:imageId/predict", dc.Predict)

		v1.POST("/:projectId/dataset", dsc.BuildDataset)
		v1.GET("/:projectId/dataset/export", dsc.ExportDataset)

		v1.POST("/:projectId/train", tc.StartTraining)
		v1.GET("/:projectId/train", tc.GetTrainingRuns)
	}
}
