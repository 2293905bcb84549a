package appcontext

import (
	"github.com/SeakMengs/OpenSight/internal/auth"
	"github.com/SeakMengs/OpenSight/internal/config"
	"github.com/SeakMengs/OpenSight/internal/dataset"
	"github.com/SeakMengs/OpenSight/internal/detector"
	filestorage "github.com/SeakMengs/OpenSight/internal/file_storage"
	"github.com/SeakMengs/OpenSight/internal/lock"
	"github.com/SeakMengs/OpenSight/internal/repository"
	"go.uber.org/zap"
)

// Application contains core dependencies for the app.
type Application struct {
	// Config holds application settings provided from .env file.
	Config *config.Config

	Logger *zap.SugaredLogger

	// Repository provides access to project, image and training run records.
	Repository *repository.Repository

	// Storage holds images, annotation files, class lists and generated datasets on disk.
	Storage *filestorage.LocalStorage

	// Mirror copies files to MinIO. Nil when object storage is disabled.
	Mirror *filestorage.Mirror

	// Locker guards per-project writes (annotations, classes, dataset builds, training).
	Locker lock.Locker

	Detector detector.Detector

	Dataset *dataset.Builder

	// JWTService verifies operator tokens. Only consulted when auth is enabled.
	JWTService auth.JWTInterface
}
