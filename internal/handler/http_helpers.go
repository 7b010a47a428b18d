package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/moodline/internal/diary"
	"github.com/moodline/internal/failure"
	"github.com/moodline/internal/logging"
	"github.com/moodline/internal/service"
	"go.uber.org/zap"
)

type errorBody struct {
	ErrorCode string `json:"errorCode"`
	Reason    string `json:"reason"`
}

func respondSuccess(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "message": "", "data": data})
}

func respondError(c *gin.Context, status int, code, message string) {
	respondErrorWithReason(c, status, code, message, message)
}

func respondErrorWithReason(c *gin.Context, status int, code, message, reason string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"message": message,
		"error":   errorBody{ErrorCode: code, Reason: reason},
	})
}

func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondErrorWithReason(c, http.StatusBadRequest, "INVALID_REQUEST", "요청 형식이 올바르지 않아요.", err.Error())
		return false
	}
	return true
}

func parseIntQuery(c *gin.Context, key string, fallback int) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

// handleDiaryError 将业务错误映射为 HTTP 状态码与错误码。
func handleDiaryError(c *gin.Context, err error) {
	var rejected *diary.RejectedError
	switch {
	case errors.As(err, &rejected):
		respondErrorWithReason(c, http.StatusBadRequest, "INVALID_ENTRY", rejected.Reason.Message(), string(rejected.Reason))
	case errors.Is(err, service.ErrInvalidEntry):
		respondErrorWithReason(c, http.StatusBadRequest, "INVALID_ENTRY", "입력값이 올바르지 않아요.", err.Error())
	case errors.Is(err, service.ErrEntryExists):
		respondError(c, http.StatusConflict, "ENTRY_EXISTS", "오늘은 이미 일기를 작성했어요.")
	case errors.Is(err, service.ErrEntryNotFound):
		respondError(c, http.StatusNotFound, "ENTRY_NOT_FOUND", "해당 날짜의 일기가 없어요.")
	case errors.Is(err, service.ErrAIAPIKeyMissing):
		respondErrorWithReason(c, http.StatusServiceUnavailable, "ANALYZER_UNAVAILABLE", failure.Analysis.Message(), err.Error())
	case errors.Is(err, service.ErrAnalysisFailed):
		logging.L().Warn("analysis failed", zap.Error(err), zap.String("request_id", logging.RequestIDFrom(c)))
		respondErrorWithReason(c, http.StatusBadGateway, "ANALYSIS_FAILED", failure.Analysis.Message(), err.Error())
	case errors.Is(err, service.ErrLoginRequired), errors.Is(err, service.ErrTossLogin), errors.Is(err, service.ErrMemberNotFound):
		respondErrorWithReason(c, http.StatusUnauthorized, "LOGIN_REQUIRED", failure.Login.Message(), err.Error())
	default:
		logging.L().Error("request failed", zap.Error(err), zap.String("request_id", logging.RequestIDFrom(c)))
		kind := failure.Classify(err)
		respondErrorWithReason(c, http.StatusInternalServerError, "INTERNAL_ERROR", kind.Message(), string(kind))
	}
}
