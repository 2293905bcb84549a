package util

import (
	"strings"

	"github.com/SeakMengs/OpenSight/internal/constant"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger returns a JSON logger in production and a colored console logger otherwise.
func NewLogger(env string) *zap.SugaredLogger {
	var cfg zap.Config

	if strings.EqualFold(env, "production") {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	return zap.Must(cfg.Build()).Sugar().Named(strings.ToLower(constant.APP_NAME))
}
