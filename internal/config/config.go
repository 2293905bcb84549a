package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/SeakMengs/OpenSight/internal/env"
)

type Config struct {
	Port        string
	ENV         string
	DB          DatabaseConfig
	RateLimiter RateLimiterConfig
	Storage     StorageConfig
	Upload      UploadConfig
	Minio       MinioConfig
	Redis       RedisConfig
	Detector    DetectorConfig
	Dataset     DatasetConfig
	Auth        AuthConfig
}

type RateLimiterConfig struct {
	RequestsPerTimeFrame int
	TimeFrame            time.Duration
	Enabled              bool
}

type AuthConfig struct {
	// Bearer token auth is enabled only when a secret is configured
	JWT_SECRET string
	TokenTTL   time.Duration
}

type DatabaseConfig struct {
	DB_HOST      string
	DB_PORT      string
	DB_DATABASE  string
	DB_USERNAME  string
	DB_PASSWORD  string
	DB_SSLMODE   string
	MaxOpenConns int
	MaxIdleConns int
	MaxIdleTime  string
}

type StorageConfig struct {
	// Root directory holding one sub directory per project
	PATH string
}

type UploadConfig struct {
	MaxSize           int64
	AllowedExtensions []string
}

type MinioConfig struct {
	ENABLED    bool
	ENDPOINT   string
	ACCESS_KEY string
	SECRET_KEY string
	BUCKET     string
	USE_SSL    bool
	PresignTTL time.Duration
}

type RedisConfig struct {
	ENABLED  bool
	ADDR     string
	PASSWORD string
	DB       int
	LockTTL  time.Duration
}

type DetectorConfig struct {
	URL           string
	Device        string
	BaseModel     string
	Timeout       time.Duration
	TrainTimeout  time.Duration
	MinConfidence float64
	Epochs        int
	ImageSize     int
}

type DatasetConfig struct {
	// Zero keeps every image in both train and val
	ValRatio  float64
	SplitSeed uint64
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.ENV, "production")
}

func (c Config) AuthEnabled() bool {
	return c.Auth.JWT_SECRET != ""
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		c.DB_HOST, c.DB_USERNAME, c.DB_PASSWORD, c.DB_DATABASE, c.DB_PORT, c.DB_SSLMODE)
}

func GetConfig() Config {
	rateLimiteTimeFrame, err := time.ParseDuration(env.GetString("RATE_LIMIT_TIME_FRAME", "1m"))
	if err != nil {
		rateLimiteTimeFrame = 60 * time.Second
	}

	return Config{
		Port: env.GetString("PORT", "8000"),
		ENV:  env.GetString("ENV", "development"),
		DB: DatabaseConfig{
			DB_HOST:      env.GetString("DB_HOST", "127.0.0.1"),
			DB_PORT:      env.GetString("DB_PORT", "5432"),
			DB_USERNAME:  env.GetString("DB_USERNAME", "postgres"),
			DB_PASSWORD:  env.GetString("DB_PASSWORD", ""),
			DB_DATABASE:  env.GetString("DB_DATABASE", "opensight"),
			DB_SSLMODE:   env.GetString("DB_SSLMODE", "disable"),
			MaxOpenConns: env.GetInt("DB_MAX_OPEN_CONNS", 30),
			MaxIdleConns: env.GetInt("DB_MAX_IDLE_CONNS", 30),
			MaxIdleTime:  env.GetString("DB_MAX_IDLE_TIME", "15m"),
		},
		// By default if not specified, we allow 5000 requests per minute on all routes
		RateLimiter: RateLimiterConfig{
			RequestsPerTimeFrame: env.GetInt("RATE_LIMIT_REQUESTS_PER_TIME_FRAME", 5000),
			TimeFrame:            rateLimiteTimeFrame,
			Enabled:              env.GetBool("RATE_LIMIT_ENABLED", true),
		},
		Storage: StorageConfig{
			PATH: env.GetString("STORAGE_PATH", "/data"),
		},
		Upload: UploadConfig{
			// 50MB
			MaxSize:           env.GetInt64("UPLOAD_MAX_SIZE", 50<<20),
			AllowedExtensions: splitList(env.GetString("UPLOAD_ALLOWED_EXTENSIONS", ".jpg,.jpeg,.png,.bmp,.webp,.tif,.tiff,.gif")),
		},
		Minio: MinioConfig{
			ENABLED:    env.GetBool("MINIO_ENABLED", false),
			ENDPOINT:   env.GetString("MINIO_ENDPOINT", "127.0.0.1:9000"),
			ACCESS_KEY: env.GetString("MINIO_ACCESS_KEY", ""),
			SECRET_KEY: env.GetString("MINIO_SECRET_KEY", ""),
			BUCKET:     env.GetString("MINIO_BUCKET", "opensight"),
			USE_SSL:    env.GetBool("MINIO_USE_SSL", false),
			PresignTTL: env.GetDuration("MINIO_PRESIGN_TTL", time.Hour),
		},
		Redis: RedisConfig{
			ENABLED:  env.GetBool("REDIS_ENABLED", false),
			ADDR:     env.GetString("REDIS_ADDR", "127.0.0.1:6379"),
			PASSWORD: env.GetString("REDIS_PASSWORD", ""),
			DB:       env.GetInt("REDIS_DB", 0),
			// Training holds the project lock for the whole run
			LockTTL: env.GetDuration("REDIS_LOCK_TTL", 3*time.Hour),
		},
		Detector: DetectorConfig{
			URL:           strings.TrimRight(env.GetString("DETECTOR_URL", "http://127.0.0.1:5000"), "/"),
			Device:        env.GetString("DETECTOR_DEVICE", "auto"),
			BaseModel:     env.GetString("DETECTOR_BASE_MODEL", "yolov8n.pt"),
			Timeout:       env.GetDuration("DETECTOR_TIMEOUT", time.Minute),
			TrainTimeout:  env.GetDuration("DETECTOR_TRAIN_TIMEOUT", 2*time.Hour),
			MinConfidence: env.GetFloat("DETECTOR_MIN_CONFIDENCE", 0),
			Epochs:        env.GetInt("DETECTOR_EPOCHS", 50),
			ImageSize:     env.GetInt("DETECTOR_IMAGE_SIZE", 640),
		},
		Dataset: DatasetConfig{
			ValRatio:  env.GetFloat("DATASET_VAL_RATIO", 0),
			SplitSeed: env.GetUint64("DATASET_SPLIT_SEED", 42),
		},
		Auth: AuthConfig{
			JWT_SECRET: env.GetString("AUTH_JWT_SECRET", ""),
			TokenTTL:   env.GetDuration("AUTH_TOKEN_TTL", 30*24*time.Hour),
		},
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
