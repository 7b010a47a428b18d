package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/moodline/internal/service"
)

// HealthCheck 提供监控系统使用的健康检查端点。
func (a *API) HealthCheck(c *gin.Context) {
	sqlDB, err := a.db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "database handle unavailable",
		})
		return
	}

	if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "error",
			"message": "database unreachable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"database": "up",
	})
}

type systemSettingsRequest struct {
	OpenAIAPIKey string `json:"openaiApiKey"`
	OpenAIModel  string `json:"openaiModel"`
	Prompt       string `json:"prompt"`
}

type aiTestRequest struct {
	APIKey string `json:"apiKey"`
}

// GetSystemSettings 返回当前分析设置，API Key 只返回掩码。
func (a *API) GetSystemSettings(c *gin.Context) {
	settings, err := a.system.GetSettings()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "SETTINGS_ERROR", "获取系统设置失败")
		return
	}

	respondSuccess(c, http.StatusOK, systemSettingsPayload(settings))
}

// UpdateSystemSettings 保存分析设置，回传的掩码 Key 不会覆盖已保存的值。
func (a *API) UpdateSystemSettings(c *gin.Context) {
	var payload systemSettingsRequest
	if !bindJSON(c, &payload) {
		return
	}

	settings, err := a.system.UpdateSettings(service.AnalyzerSettingsInput{
		OpenAIAPIKey: payload.OpenAIAPIKey,
		OpenAIModel:  payload.OpenAIModel,
		Prompt:       payload.Prompt,
	})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "SETTINGS_ERROR", "保存系统设置失败")
		return
	}

	respondSuccess(c, http.StatusOK, systemSettingsPayload(settings))
}

func systemSettingsPayload(settings service.AnalyzerSettings) gin.H {
	return gin.H{
		"openaiApiKey": service.MaskSecret(settings.OpenAIAPIKey),
		"openaiModel":  settings.OpenAIModel,
		"prompt":       settings.Prompt,
	}
}

// TestAIConnection 测试 OpenAI API Key 的连通性，未提供时使用已保存的设置。
func (a *API) TestAIConnection(c *gin.Context) {
	var payload aiTestRequest
	if !bindJSON(c, &payload) {
		return
	}

	if err := a.system.TestAIConnection(c.Request.Context(), payload.APIKey); err != nil {
		switch {
		case errors.Is(err, service.ErrAIAPIKeyMissing):
			respondError(c, http.StatusBadRequest, "API_KEY_MISSING", "请填写有效的 AI API Key")
		default:
			respondErrorWithReason(c, http.StatusBadGateway, "AI_UNREACHABLE", "AI 接口连接失败", err.Error())
		}
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"message": "AI 接口连接正常"})
}
