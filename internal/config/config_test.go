package config

import (
	"testing"
	"time"
)

func TestGetConfigDefaults(t *testing.T) {
	t.Setenv("ENV", "")
	t.Setenv("STORAGE_PATH", "")
	t.Setenv("DATASET_VAL_RATIO", "")

	cfg := GetConfig()

	if cfg.Storage.PATH != "/data" {
		t.Errorf("expected default storage path /data, got %s", cfg.Storage.PATH)
	}
	if cfg.Dataset.ValRatio != 0 {
		t.Errorf("expected duplicated train/val by default, got ratio %v", cfg.Dataset.ValRatio)
	}
	if cfg.IsProduction() {
		t.Error("expected development mode by default")
	}
}

func TestGetConfigOverrides(t *testing.T) {
	t.Setenv("ENV", "Production")
	t.Setenv("STORAGE_PATH", "/srv/opensight")
	t.Setenv("DETECTOR_URL", "http://detector:5000/")
	t.Setenv("DATASET_VAL_RATIO", "0.2")
	t.Setenv("DATASET_SPLIT_SEED", "7")
	t.Setenv("RATE_LIMIT_TIME_FRAME", "not-a-duration")
	t.Setenv("UPLOAD_ALLOWED_EXTENSIONS", " .PNG, .jpg ,,")
	t.Setenv("AUTH_JWT_SECRET", "secret")

	cfg := GetConfig()

	if !cfg.IsProduction() {
		t.Error("expected production mode")
	}
	if cfg.Storage.PATH != "/srv/opensight" {
		t.Errorf("unexpected storage path %s", cfg.Storage.PATH)
	}
	if cfg.Detector.URL != "http://detector:5000" {
		t.Errorf("expected trailing slash to be trimmed, got %s", cfg.Detector.URL)
	}
	if cfg.Dataset.ValRatio != 0.2 || cfg.Dataset.SplitSeed != 7 {
		t.Errorf("unexpected dataset config %+v", cfg.Dataset)
	}
	if cfg.RateLimiter.TimeFrame != 60*time.Second {
		t.Errorf("expected fallback time frame, got %v", cfg.RateLimiter.TimeFrame)
	}
	if len(cfg.Upload.AllowedExtensions) != 2 || cfg.Upload.AllowedExtensions[0] != ".png" || cfg.Upload.AllowedExtensions[1] != ".jpg" {
		t.Errorf("unexpected extensions %v", cfg.Upload.AllowedExtensions)
	}
	if !cfg.AuthEnabled() {
		t.Error("expected auth to be enabled when a secret is set")
	}
}
