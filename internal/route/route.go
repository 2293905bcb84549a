package route

import (
	"github.com/SeakMengs/OpenSight/internal/controller"
	"github.com/SeakMengs/OpenSight/internal/middleware"
	"github.com/gin-gonic/gin"
)

// Register mounts every route of the api on r.
func Register(r *gin.Engine, c *controller.Controller, m *middleware.Middleware) {
	Health(r, c.Index)
	Static(r, c.Image, m)

	rApi := r.Group("/api")

	V1_Projects(rApi, c.Project, c.Image, c.Annotation, c.Class, m)
	V1_AI(rApi, c.Detection, c.Dataset, c.Training, m)
}
