package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/moodline/internal/db"
	openai "github.com/sashabaranov/go-openai"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AnalyzerSettings 描述情绪分析所需的可配置项。
type AnalyzerSettings struct {
	OpenAIAPIKey string
	OpenAIModel  string
	Prompt       string
}

// AnalyzerSettingsInput 用于更新分析设置。模型与提示词为空时回退到默认值；
// API Key 为空或等于当前掩码时保持原值不变。
type AnalyzerSettingsInput struct {
	OpenAIAPIKey string
	OpenAIModel  string
	Prompt       string
}

// SystemSettingService 提供系统设置的读取与更新能力。
// 数据库中未保存的项回退到启动时传入的默认值（通常来自环境变量）。
type SystemSettingService struct {
	db            *gorm.DB
	defaults      AnalyzerSettings
	httpClient    httpDoer
	openAIBaseURL string
}

// NewSystemSettingService 构造 SystemSettingService。
func NewSystemSettingService(gdb *gorm.DB, defaults AnalyzerSettings) *SystemSettingService {
	if strings.TrimSpace(defaults.OpenAIModel) == "" {
		defaults.OpenAIModel = defaultAnalyzerModel
	}
	if strings.TrimSpace(defaults.Prompt) == "" {
		defaults.Prompt = defaultAnalyzerSystemPrompt
	}
	return &SystemSettingService{
		db:       gdb,
		defaults: defaults,
	}
}

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

var settingKeys = []string{
	db.SettingKeyOpenAIAPIKey,
	db.SettingKeyOpenAIModel,
	db.SettingKeyAnalyzerPrompt,
}

// GetSettings 读取系统设置，如未设置将返回默认值。
func (s *SystemSettingService) GetSettings() (AnalyzerSettings, error) {
	result := s.defaults

	var records []db.SystemSetting
	if err := s.db.Where("key IN ?", settingKeys).Find(&records).Error; err != nil {
		return result, fmt.Errorf("load system settings: %w", err)
	}

	for _, record := range records {
		value := strings.TrimSpace(record.Value)
		if value == "" {
			continue
		}
		switch record.Key {
		case db.SettingKeyOpenAIAPIKey:
			result.OpenAIAPIKey = value
		case db.SettingKeyOpenAIModel:
			result.OpenAIModel = value
		case db.SettingKeyAnalyzerPrompt:
			result.Prompt = value
		}
	}

	return result, nil
}

// UpdateSettings 保存系统设置并返回合并默认值后的结果。
func (s *SystemSettingService) UpdateSettings(input AnalyzerSettingsInput) (AnalyzerSettings, error) {
	current, err := s.GetSettings()
	if err != nil {
		return AnalyzerSettings{}, err
	}

	values := map[string]string{
		db.SettingKeyOpenAIModel:    strings.TrimSpace(input.OpenAIModel),
		db.SettingKeyAnalyzerPrompt: strings.TrimSpace(input.Prompt),
	}
	if key := strings.TrimSpace(input.OpenAIAPIKey); !isUnchangedSecret(key, current.OpenAIAPIKey) {
		values[db.SettingKeyOpenAIAPIKey] = key
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		for _, key := range settingKeys {
			value, ok := values[key]
			if !ok {
				continue
			}
			if err := upsertSetting(tx, key, value); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return AnalyzerSettings{}, fmt.Errorf("update system settings: %w", err)
	}

	return s.GetSettings()
}

// MaskSecret 只保留密钥首尾几位，用于在管理接口中回显。
func MaskSecret(secret string) string {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return ""
	}
	runes := []rune(secret)
	if len(runes) <= 8 {
		return strings.Repeat("*", len(runes))
	}
	return string(runes[:3]) + strings.Repeat("*", len(runes)-7) + string(runes[len(runes)-4:])
}

// 表单回传空值或掩码时视为未修改
func isUnchangedSecret(submitted, current string) bool {
	if submitted == "" {
		return true
	}
	return current != "" && submitted != current && submitted == MaskSecret(current)
}

func upsertSetting(tx *gorm.DB, key, value string) error {
	setting := db.SystemSetting{Key: key, Value: value}
	if err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"value":      value,
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		}),
	}).Create(&setting).Error; err != nil {
		return fmt.Errorf("upsert setting %s: %w", key, err)
	}
	return nil
}

// SetHTTPClient 替换用于访问第三方服务的 HTTP 客户端，主要面向测试场景。
func (s *SystemSettingService) SetHTTPClient(client httpDoer) {
	s.httpClient = client
}

// SetOpenAIBaseURL 覆盖 OpenAI API 的基础地址，便于测试或自定义代理。
func (s *SystemSettingService) SetOpenAIBaseURL(base string) {
	s.openAIBaseURL = strings.TrimRight(strings.TrimSpace(base), "/")
}

// TestAIConnection 调用模型列表接口验证 API Key 的有效性；apiKey 为空或为掩码时使用当前设置。
func (s *SystemSettingService) TestAIConnection(ctx context.Context, apiKey string) error {
	key := strings.TrimSpace(apiKey)
	settings, err := s.GetSettings()
	if err != nil {
		return err
	}
	if isUnchangedSecret(key, settings.OpenAIAPIKey) {
		key = settings.OpenAIAPIKey
	}
	if key == "" {
		return ErrAIAPIKeyMissing
	}

	client := newOpenAIClient(key, s.openAIBaseURL, s.httpClient)
	if _, err := client.ListModels(ctx); err != nil {
		return fmt.Errorf("%w: list models: %w", ErrAnalysisFailed, err)
	}
	return nil
}

func newOpenAIClient(apiKey, baseURL string, httpClient httpDoer) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if httpClient != nil {
		cfg.HTTPClient = httpClient
	}
	return openai.NewClientWithConfig(cfg)
}
