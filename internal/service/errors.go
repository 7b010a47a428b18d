package service

import (
	"errors"

	"github.com/moodline/internal/failure"
)

var (
	// ErrEntryNotFound 在指定日期没有日记时返回
	ErrEntryNotFound = errors.New("diary entry not found")
	// ErrEntryExists 表示该日期已写过日记，日记只追加不覆盖
	ErrEntryExists = errors.New("diary entry already exists for date")
	// ErrInvalidEntry 表示日记内容、日期或分数不合法
	ErrInvalidEntry = errors.New("invalid diary entry")
	// ErrMemberNotFound 表示 userKey 对应的用户不存在
	ErrMemberNotFound = errors.New("member not found")

	// ErrLoginRequired 表示请求缺少有效的用户凭证。
	ErrLoginRequired = failure.New(failure.Login, "login required")
	// ErrTossLogin 表示宿主 App 登录流程失败。
	ErrTossLogin = failure.New(failure.Login, "toss login failed")
	// ErrAnalysisFailed 表示情绪分析调用失败或返回了无法使用的结果。
	ErrAnalysisFailed = failure.New(failure.Analysis, "diary analysis failed")
	// ErrAIAPIKeyMissing 表示未提供必需的 AI 平台 API Key。
	ErrAIAPIKeyMissing = failure.New(failure.Analysis, "api key is required")
)
