// Command convert rebuilds the detector dataset of one project without going through the api.
//
//	go run ./cmd/convert -project <projectId> [-classes cat,dog] [-val-ratio 0.2] [-zip out.zip]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/SeakMengs/OpenSight/internal/config"
	"github.com/SeakMengs/OpenSight/internal/database"
	"github.com/SeakMengs/OpenSight/internal/dataset"
	"github.com/SeakMengs/OpenSight/internal/env"
	filestorage "github.com/SeakMengs/OpenSight/internal/file_storage"
	"github.com/SeakMengs/OpenSight/internal/lock"
	"github.com/SeakMengs/OpenSight/internal/repository"
	"github.com/SeakMengs/OpenSight/internal/util"
	"github.com/SeakMengs/OpenSight/pkg/yolo"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type options struct {
	projectID string
	classes   []string
	zipPath   string
}

func init() {
	env.LoadEnv(".env")
}

func main() {
	projectID := flag.String("project", "", "id of the project to convert")
	classList := flag.String("classes", "", "comma separated class names, defaults to the project's saved classes")
	valRatio := flag.Float64("val-ratio", -1, "fraction of images held out for validation, defaults to DATASET_VAL_RATIO")
	zipPath := flag.String("zip", "", "also write the dataset as a zip archive to this path")
	flag.Parse()

	if *projectID == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.GetConfig()
	if *valRatio >= 0 {
		cfg.Dataset.ValRatio = *valRatio
	}

	var classes []string
	for _, c := range strings.Split(*classList, ",") {
		if c = strings.TrimSpace(c); c != "" {
			classes = append(classes, c)
		}
	}

	logger := util.NewLogger(cfg.ENV)

	// os.Exit skips deferred calls, so run returns before anything exits
	err := run(cfg, logger, options{projectID: *projectID, classes: classes, zipPath: *zipPath})
	if err != nil {
		logger.Error(err)
	}
	logger.Sync()

	if err != nil {
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *zap.SugaredLogger, opts options) error {
	db, err := database.ConnectReturnGormDB(cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if sqlDb, err := db.DB(); err == nil {
		defer sqlDb.Close()
	}

	storage, err := filestorage.NewLocalStorage(cfg.Storage.PATH)
	if err != nil {
		return err
	}

	repo := repository.NewRepository(db, logger)
	builder := dataset.NewBuilder(repo.Image, storage, cfg.Dataset, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	exists, err := repo.Project.Exists(ctx, nil, opts.projectID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("project %s not found", opts.projectID)
	}

	// share the api's lock when it runs with redis, otherwise the build only guards itself
	var locker lock.Locker = lock.NewLocalLocker()
	if cfg.Redis.ENABLED {
		client := redis.NewClient(&redis.Options{Addr: cfg.Redis.ADDR, Password: cfg.Redis.PASSWORD, DB: cfg.Redis.DB})
		defer client.Close()
		locker = lock.NewRedisLocker(client, cfg.Redis.LockTTL, logger)
	}

	return convert(ctx, locker, builder, opts, logger)
}

// convert builds the dataset under the project lock. The lock is released on every return path.
func convert(ctx context.Context, locker lock.Locker, builder *dataset.Builder, opts options, logger *zap.SugaredLogger) error {
	release, err := locker.Acquire(ctx, lock.ProjectKey(opts.projectID))
	if err != nil {
		return fmt.Errorf("failed to lock project %s: %w", opts.projectID, err)
	}
	defer release()

	result, err := builder.Build(ctx, opts.projectID, opts.classes)
	if err != nil {
		if errors.Is(err, yolo.ErrNothingToConvert) {
			logger.Infof("Project %s has no annotations, nothing to convert", opts.projectID)
			return nil
		}
		return fmt.Errorf("failed to convert project %s: %w", opts.projectID, err)
	}

	logger.Infof("Dataset written to %s: %d images, %d labels, %d train, %d val, %d skipped",
		result.ManifestPath, result.Images, result.Labels, result.Train, result.Val, len(result.Skipped))
	for _, s := range result.Skipped {
		logger.Warnf("Skipped %s: %s", s.ImageID, s.Reason)
	}

	if opts.zipPath != "" {
		if err := builder.ArchiveToFile(opts.projectID, opts.zipPath); err != nil {
			return fmt.Errorf("failed to write archive %s: %w", opts.zipPath, err)
		}
		logger.Infof("Archive written to %s", opts.zipPath)
	}

	return nil
}
