package route

import (
	"github.com/SeakMengs/OpenSight/internal/controller"
	"github.com/SeakMengs/OpenSight/internal/middleware"
	"github.com/gin-gonic/gin"
)

// Static serves stored images read-only. Browsers cannot attach headers to <img> requests,
// so the auth middleware also accepts ?token=.
func Static(r gin.IRouter, ic *controller.ImageController, middleware *middleware.Middleware) {
	static := r.Group("/static")
	static.Use(middleware.AuthMiddleware)
	{
		static.GET("/:projectId/images/:filename", ic.ServeImageFile)
	}
}

func Health(r gin.IRouter, ic *controller.IndexController) {
	r.GET("/", ic.Index)
	r.GET("/health", ic.Health)
	r.GET("/healthz", ic.Health)
}
