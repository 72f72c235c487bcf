// Package logger 构建全局 zerolog 日志器
//
// 各系统通过 For("CombatSystem") 获取带 system 字段的子日志器，
// 取代旧代码中的 "[SystemName] ..." 前缀约定。
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	mu   sync.RWMutex
	root = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		With().Timestamp().Logger().
		Level(zerolog.InfoLevel)
)

// New 替换根日志器
//
// 参数：
//   - w: 输出目标；nil 时丢弃所有日志
//   - level: 最低输出级别
func New(w io.Writer, level zerolog.Level) zerolog.Logger {
	if w == nil {
		w = io.Discard
	}
	l := zerolog.New(w).With().Timestamp().Logger().Level(level)
	mu.Lock()
	root = l
	mu.Unlock()
	return l
}

// NewConsole 使用人类可读的控制台格式替换根日志器
func NewConsole(w io.Writer, level zerolog.Level) zerolog.Logger {
	return New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}, level)
}

// For 返回带 system 字段的子日志器
func For(system string) zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return root.With().Str("system", system).Logger()
}

// ParseLevel 解析级别字符串（如 SHOOTER_LOG_LEVEL 的值），无法识别时返回 fallback
func ParseLevel(s string, fallback zerolog.Level) zerolog.Level {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return fallback
	}
	level, err := zerolog.ParseLevel(s)
	if err != nil {
		return fallback
	}
	return level
}

// LevelFromEnv 读取 SHOOTER_LOG_LEVEL 环境变量
func LevelFromEnv(fallback zerolog.Level) zerolog.Level {
	return ParseLevel(os.Getenv("SHOOTER_LOG_LEVEL"), fallback)
}
