package client

import (
	"fmt"
	"net/http"

	"github.com/moodline/internal/failure"
)

// APIError 是服务端返回的失败响应。
type APIError struct {
	Status  int
	Code    string
	Reason  string
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("moodline api %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("moodline api %d %s", e.Status, e.Code)
}

// FailureKind 按状态码与错误码归类。
func (e *APIError) FailureKind() failure.Kind {
	switch {
	case e.Status == http.StatusUnauthorized:
		return failure.Login
	case e.Code == "ANALYSIS_FAILED" || e.Code == "ANALYZER_UNAVAILABLE":
		return failure.Analysis
	case e.Status == http.StatusBadGateway || e.Status == http.StatusServiceUnavailable || e.Status == http.StatusGatewayTimeout:
		return failure.Network
	default:
		return failure.Generic
	}
}

// IsConflict 表示当天已写过日记。
func (e *APIError) IsConflict() bool {
	return e.Status == http.StatusConflict
}
