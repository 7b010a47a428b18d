package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/moodline/internal/diary"
	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
)

// Analysis 是情绪分析的结果。
type Analysis struct {
	Score       int    `json:"score"`
	Description string `json:"description"`
}

// Analyzer 将一行日记转换为情绪分数与鼓励文案，便于在业务层注入不同实现。
type Analyzer interface {
	Analyze(ctx context.Context, text string) (Analysis, error)
}

const (
	defaultAnalyzerModel       = "gpt-4o-mini"
	defaultAnalyzerTimeout     = 60 * time.Second
	maxAnalysisDescriptionRune = 300
)

const defaultAnalyzerSystemPrompt = `당신은 사용자의 하루 일기를 분석하여 감정 점수를 산출하는 AI입니다.
또한 점수를 매긴 이유를 설명하고, 사용자에게 따뜻한 조언, 위로, 또는 응원의 메시지를 전달해주세요. 최대 100자 이내로 작성해주세요.

규칙:
점수는 0~100 사이의 양의 정수입니다.
5점 또는 10점 단위 점수를 사용하지 마십시오.
반올림, 구간화, 등급화를 절대 하지 마십시오.
점수는 연속적인 값처럼 분포해야 합니다.

절차:
1. 내부적으로 감정 상태를 0.0~1.0 사이의 실수로 계산합니다.
2. 해당 값을 0~100 범위의 정수로 변환합니다.
3. 자연스러운 정수를 선택하며 반올림 규칙은 사용하지 않습니다.
4. 사용자에게 전하는 조언, 위로, 또는 응원의 메시지는 한글로 작성해주세요.`

var analysisSchema = jsonschema.Definition{
	Type: jsonschema.Object,
	Properties: map[string]jsonschema.Definition{
		"score": {
			Type:        jsonschema.Integer,
			Description: "감정 점수 (0-100)",
		},
		"description": {
			Type:        jsonschema.String,
			Description: "점수에 대한 설명과 사용자에게 전하는 조언/위로/응원 메시지",
		},
	},
	Required:             []string{"score", "description"},
	AdditionalProperties: false,
}

// OpenAIAnalyzer 基于 Chat Completions 的 JSON Schema 输出计算情绪分数。
type OpenAIAnalyzer struct {
	settings *SystemSettingService
	http     httpDoer
	baseURL  string
	timeout  time.Duration
}

// NewOpenAIAnalyzer 构造默认的 OpenAIAnalyzer，API Key、模型与提示词从系统设置读取。
func NewOpenAIAnalyzer(settings *SystemSettingService, baseURL string, timeout time.Duration) *OpenAIAnalyzer {
	if timeout <= 0 {
		timeout = defaultAnalyzerTimeout
	}
	return &OpenAIAnalyzer{
		settings: settings,
		baseURL:  strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		timeout:  timeout,
	}
}

// SetHTTPClient 覆盖默认 HTTP 客户端，主要用于测试。
func (a *OpenAIAnalyzer) SetHTTPClient(client httpDoer) {
	a.http = client
}

// SetBaseURL 覆盖默认的 OpenAI API 地址。
func (a *OpenAIAnalyzer) SetBaseURL(base string) {
	a.baseURL = strings.TrimRight(strings.TrimSpace(base), "/")
}

// Analyze 调用模型为一行日记打分。未配置 API Key 时返回 ErrAIAPIKeyMissing。
func (a *OpenAIAnalyzer) Analyze(ctx context.Context, text string) (Analysis, error) {
	settings, err := a.settings.GetSettings()
	if err != nil {
		return Analysis{}, fmt.Errorf("读取系统设置失败: %w", err)
	}
	apiKey := strings.TrimSpace(settings.OpenAIAPIKey)
	if apiKey == "" {
		return Analysis{}, ErrAIAPIKeyMissing
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	logAIExchange("SCORE", "prompt", text)

	client := newOpenAIClient(apiKey, a.baseURL, a.http)
	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: settings.OpenAIModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: strings.TrimSpace(settings.Prompt)},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "diary_score",
				Schema: &analysisSchema,
				Strict: true,
			},
		},
	})
	if err != nil {
		return Analysis{}, fmt.Errorf("%w: %w", ErrAnalysisFailed, err)
	}
	if len(resp.Choices) == 0 {
		return Analysis{}, fmt.Errorf("%w: empty choices", ErrAnalysisFailed)
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	logAIExchange("SCORE", "response", content)

	return parseAnalysis(content)
}

func parseAnalysis(content string) (Analysis, error) {
	if content == "" {
		return Analysis{}, fmt.Errorf("%w: empty content", ErrAnalysisFailed)
	}

	var raw struct {
		Score       *json.Number `json:"score"`
		Description string       `json:"description"`
	}
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return Analysis{}, fmt.Errorf("%w: decode content: %w", ErrAnalysisFailed, err)
	}
	if raw.Score == nil {
		return Analysis{}, fmt.Errorf("%w: missing score", ErrAnalysisFailed)
	}
	score, err := raw.Score.Int64()
	if err != nil {
		return Analysis{}, fmt.Errorf("%w: score %s is not an integer", ErrAnalysisFailed, raw.Score.String())
	}
	if !diary.ValidScore(int(score)) {
		return Analysis{}, fmt.Errorf("%w: score %d out of range", ErrAnalysisFailed, score)
	}

	return Analysis{
		Score:       int(score),
		Description: truncateRunes(strings.TrimSpace(raw.Description), maxAnalysisDescriptionRune),
	}, nil
}

func truncateRunes(input string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(input)
	if len(runes) <= limit {
		return input
	}
	return string(runes[:limit])
}
