// Package logging 提供基于 zap 的结构化日志与 Gin 请求日志中间件。
package logging

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// RequestIDHeader 是请求 ID 的传递头。
const RequestIDHeader = "X-Request-ID"

const requestIDContextKey = "__request_id"

const maxSnippetRunes = 1024

var global atomic.Pointer[zap.Logger]

func init() {
	global.Store(zap.NewNop())
}

// New 按级别构造生产配置的 logger，级别无法识别时返回错误。
func New(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	parsed := zapcore.InfoLevel
	if trimmed := strings.TrimSpace(level); trimmed != "" {
		if err := parsed.UnmarshalText([]byte(strings.ToLower(trimmed))); err != nil {
			return nil, fmt.Errorf("parse log level %q: %w", level, err)
		}
	}
	cfg.Level = zap.NewAtomicLevelAt(parsed)
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

// SetLogger 替换全局 logger；传入 nil 时恢复为空实现。
func SetLogger(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	global.Store(logger)
}

// L 返回当前全局 logger。
func L() *zap.Logger {
	return global.Load()
}

// Snippet 截断过长的文本，用于在日志中输出模型请求与响应。
func Snippet(content string) string {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "<empty>"
	}
	if utf8.RuneCountInString(trimmed) <= maxSnippetRunes {
		return trimmed
	}
	return string([]rune(trimmed)[:maxSnippetRunes]) + "…(truncated)"
}

// RequestID 为每个请求分配 ID，优先沿用客户端传入的值。
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(RequestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDContextKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// RequestIDFrom 读取中间件写入的请求 ID。
func RequestIDFrom(c *gin.Context) string {
	return c.GetString(requestIDContextKey)
}

// Middleware 记录每个请求的方法、路径、状态码与耗时。
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", RequestIDFrom(c)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch {
		case status >= 500:
			L().Error("request", fields...)
		case status >= 400:
			L().Warn("request", fields...)
		default:
			L().Info("request", fields...)
		}
	}
}
