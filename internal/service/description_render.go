package service

import (
	"bytes"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
)

var (
	strictPolicy      = bluemonday.StrictPolicy()
	descriptionPolicy = bluemonday.UGCPolicy()
	descriptionMarkup = goldmark.New()
)

// sanitizeText 去除模型或客户端提交文本中的全部 HTML，保留纯文本。
func sanitizeText(input string) string {
	cleaned := strictPolicy.Sanitize(strings.TrimSpace(input))
	return strings.TrimSpace(html.UnescapeString(cleaned))
}

// RenderDescription 将鼓励文案按 Markdown 渲染为安全的 HTML 片段，供详情视图展示。
func RenderDescription(description string) string {
	description = strings.TrimSpace(description)
	if description == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := descriptionMarkup.Convert([]byte(description), &buf); err != nil {
		return html.EscapeString(description)
	}
	return strings.TrimSpace(descriptionPolicy.Sanitize(buf.String()))
}
