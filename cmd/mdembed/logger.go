package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/alnah/go-mdembed/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// newLogger builds the diagnostics logger written to w. Console output drops
// timestamps; JSON output keeps them for log collectors.
func newLogger(w io.Writer, cfg config.LoggingConfig) (*zap.SugaredLogger, error) {
	levelName := cfg.Level
	if levelName == "" {
		levelName = "warn"
	}
	level, err := zapcore.ParseLevel(strings.ToLower(levelName))
	if err != nil {
		return nil, fmt.Errorf("%w: logging.level: %v", config.ErrInvalidValue, err)
	}

	encCfg := zap.NewProductionEncoderConfig()
	var enc zapcore.Encoder
	if strings.EqualFold(cfg.Format, "json") {
		encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.TimeKey = ""
		encCfg.CallerKey = ""
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	core := zapcore.NewCore(enc, zapcore.AddSync(w), level)
	return zap.New(core).Sugar(), nil
}
