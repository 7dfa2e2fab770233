package logger

import (
	"io"
	"os"
	"time"

	"github.com/ogurasousui/daily-report/internal/platform/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New は設定に従って zap.Logger を構築します。返却される関数はバッファをフラッシュします。
func New(cfg config.LogConfig) (*zap.Logger, func()) {
	return NewWithWriter(cfg, os.Stdout)
}

// NewWithWriter はコンソール出力先を指定して zap.Logger を構築します。
func NewWithWriter(cfg config.LogConfig, stdout io.Writer) (*zap.Logger, func()) {
	var lvl zapcore.Level
	if err := lvl.Set(cfg.Level); err != nil {
		lvl = zapcore.InfoLevel
	}

	enc := newEncoder(cfg.JSON)
	cores := []zapcore.Core{zapcore.NewCore(enc, zapcore.AddSync(stdout), lvl)}

	var rotator *lumberjack.Logger
	if cfg.File != "" {
		rotator = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		}
		// ファイルは常に JSON で出力する
		cores = append(cores, zapcore.NewCore(newEncoder(true), zapcore.AddSync(rotator), lvl))
	}

	core := zapcore.NewSamplerWithOptions(zapcore.NewTee(cores...), time.Second, 100, 100)

	opts := []zap.Option{zap.AddCaller()}
	if !cfg.JSON {
		opts = append(opts, zap.Development())
	}

	l := zap.New(core, opts...)
	return l, func() {
		_ = l.Sync()
		if rotator != nil {
			_ = rotator.Close()
		}
	}
}

func newEncoder(json bool) zapcore.Encoder {
	if json {
		encCfg := zap.NewProductionEncoderConfig()
		encCfg.TimeKey = "ts"
		encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		encCfg.EncodeCaller = zapcore.ShortCallerEncoder
		return zapcore.NewJSONEncoder(encCfg)
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000")
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	encCfg.EncodeCaller = zapcore.ShortCallerEncoder
	return zapcore.NewConsoleEncoder(encCfg)
}
