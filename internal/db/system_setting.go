package db

import "gorm.io/gorm"

// SystemSetting 存储后台可配置的系统级键值对。
type SystemSetting struct {
	gorm.Model
	Key   string `gorm:"size:100;uniqueIndex;not null"`
	Value string `gorm:"type:text"`
}

// TableName 自定义表名以保持命名一致。
func (SystemSetting) TableName() string {
	return "system_settings"
}

const (
	// SettingKeyOpenAIAPIKey 表示 OpenAI API Key。
	SettingKeyOpenAIAPIKey = "openai_api_key"
	// SettingKeyOpenAIModel 表示分析所使用的模型名称。
	SettingKeyOpenAIModel = "openai_model"
	// SettingKeyAnalyzerPrompt 表示情绪分析的系统提示词。
	SettingKeyAnalyzerPrompt = "analyzer_prompt"
)
