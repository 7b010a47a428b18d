package service

import (
	"unicode/utf8"

	"github.com/moodline/internal/logging"
	"go.uber.org/zap"
)

// logAIExchange 用于输出 AI 请求与响应的关键信息，方便排查模型行为。
func logAIExchange(kind, phase, content string) {
	logging.L().Debug("ai exchange",
		zap.String("kind", kind),
		zap.String("phase", phase),
		zap.Int("runes", utf8.RuneCountInString(content)),
		zap.String("content", logging.Snippet(content)),
	)
}
