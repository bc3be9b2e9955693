package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/example/gostore/internal/config"
)

// level 全局日志级别，配置热更新时通过 SetLevel 修改
var level = zap.NewAtomicLevelAt(zapcore.InfoLevel)

// Init 根据配置构建 zap 日志并替换全局 logger，之后统一通过 zap.L() 使用
func Init(cfg *config.LogConfig) (*zap.Logger, error) {
	var zc zap.Config
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}

	if err := SetLevel(cfg.Level); err != nil {
		return nil, err
	}
	zc.Level = level

	l, err := zc.Build()
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(l)
	return l, nil
}

// SetLevel 运行时调整日志级别，空字符串表示 info
func SetLevel(s string) error {
	lvl := zapcore.InfoLevel
	if s != "" {
		if err := lvl.UnmarshalText([]byte(s)); err != nil {
			return err
		}
	}
	level.SetLevel(lvl)
	return nil
}

// Level 当前日志级别
func Level() zapcore.Level {
	return level.Level()
}
