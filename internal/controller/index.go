package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/SeakMengs/OpenSight/internal/util"
	"github.com/gin-gonic/gin"
)

type IndexController struct {
	*baseController
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
	DB        string    `json:"db"`
	Detector  string    `json:"detector"`
}

func (ic IndexController) Index(ctx *gin.Context) {
	util.ResponseSuccess(ctx, gin.H{
		"message": "Welcome to the " + util.GetAppName() + " api",
		"version": util.GetAppVersion(),
	})
}

// Health reports "healthy" as long as the database answers. The detector is optional,
// only prediction and training depend on it.
func (ic IndexController) Health(ctx *gin.Context) {
	dbStatus := "down"
	if sqlDB, err := ic.app.Repository.DB.DB(); err == nil {
		pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 1*time.Second)
		defer cancel()

		if err := sqlDB.PingContext(pingCtx); err == nil {
			dbStatus = "up"
		} else {
			ic.app.Logger.Warnf("Database health check failed: %v", err)
		}
	}

	detectorStatus := "disabled"
	if ic.app.Detector != nil {
		detectorCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
		defer cancel()

		if err := ic.app.Detector.Health(detectorCtx); err == nil {
			detectorStatus = "up"
		} else {
			ic.app.Logger.Debugf("Detector health check failed: %v", err)
			detectorStatus = "down"
		}
	}

	status, code := "healthy", http.StatusOK
	if dbStatus != "up" {
		status, code = "unhealthy", http.StatusServiceUnavailable
	}

	ctx.JSON(code, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC(),
		Service:   util.GetAppName(),
		Version:   util.GetAppVersion(),
		DB:        dbStatus,
		Detector:  detectorStatus,
	})
}
