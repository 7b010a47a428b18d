package diary

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// MaxLength 一行日记允许的最大字符数（按原始输入计算）。
	MaxLength = 50
	// MinLength 去除空白后至少需要的字符数。
	MinLength = 3
	// MaxRepeatedChars 同一字符连续出现达到该次数即视为刷屏。
	MaxRepeatedChars = 10
)

// ReasonCode 标识输入被拒绝的具体原因。
type ReasonCode string

const (
	ReasonNone                ReasonCode = ""
	ReasonEmpty               ReasonCode = "empty"
	ReasonLineBreak           ReasonCode = "line_break_not_allowed"
	ReasonTooLong             ReasonCode = "too_long"
	ReasonWhitespaceOnly      ReasonCode = "whitespace_only"
	ReasonTooShort            ReasonCode = "too_short"
	ReasonJamoOnly            ReasonCode = "jamo_only"
	ReasonExcessiveRepetition ReasonCode = "excessive_repetition"
)

// Message 返回面向用户的提示文案。
func (r ReasonCode) Message() string {
	switch r {
	case ReasonEmpty:
		return "내용을 입력해주세요."
	case ReasonLineBreak:
		return "줄바꿈은 입력할 수 없어요."
	case ReasonTooLong:
		return fmt.Sprintf("최대 %d자까지 입력할 수 있어요.", MaxLength)
	case ReasonWhitespaceOnly:
		return "공백만 입력할 수 없어요."
	case ReasonTooShort:
		return fmt.Sprintf("공백을 제외하고 최소 %d자 이상 입력해주세요.", MinLength)
	case ReasonJamoOnly:
		return "자음이나 모음만 입력할 수 없어요."
	case ReasonExcessiveRepetition:
		return fmt.Sprintf("동일한 문자를 %d자 이상 반복할 수 없어요.", MaxRepeatedChars)
	default:
		return ""
	}
}

// ValidationResult 是 Validate 的返回值，Accepted 为 false 时 Reason 必定非空。
type ValidationResult struct {
	Accepted bool       `json:"accepted"`
	Reason   ReasonCode `json:"reason,omitempty"`
}

// Err 在被拒绝时返回携带原因的错误，便于服务层向上包装。
func (r ValidationResult) Err() error {
	if r.Accepted {
		return nil
	}
	return &RejectedError{Reason: r.Reason}
}

// RejectedError 表示一行日记未通过校验。
type RejectedError struct {
	Reason ReasonCode
}

func (e *RejectedError) Error() string {
	return "validation rejected: " + string(e.Reason)
}

func accept() ValidationResult { return ValidationResult{Accepted: true} }

func reject(reason ReasonCode) ValidationResult {
	return ValidationResult{Reason: reason}
}

// Validate 按固定优先级检查一行日记，命中第一条规则即返回。
// 空值、换行、长度针对原始输入；其余内容检查针对 Trim 之后的文本。
func Validate(text string) ValidationResult {
	if text == "" {
		return reject(ReasonEmpty)
	}
	if strings.ContainsAny(text, "\n\r") {
		return reject(ReasonLineBreak)
	}
	if utf8.RuneCountInString(text) > MaxLength {
		return reject(ReasonTooLong)
	}

	trimmed := Trim(text)
	if trimmed == "" {
		return reject(ReasonWhitespaceOnly)
	}
	if countNonSpace(trimmed) < MinLength {
		return reject(ReasonTooShort)
	}
	if hasOnlyJamo(trimmed) {
		return reject(ReasonJamoOnly)
	}
	if hasExcessiveRepetition(trimmed) {
		return reject(ReasonExcessiveRepetition)
	}
	return accept()
}

// CanSubmit 是 Validate(text).Accepted 的简写。
func CanSubmit(text string) bool {
	return Validate(text).Accepted
}

// Trim 去除首尾空白（含全角空格与 BOM）。
func Trim(text string) string {
	return strings.TrimFunc(text, isSpace)
}

// CharacterCount 返回原始输入的字符数。
func CharacterCount(text string) int {
	return utf8.RuneCountInString(text)
}

// CharacterCountDisplay 生成 "34 / 50" 形式的计数文案。
func CharacterCountDisplay(text string) string {
	return fmt.Sprintf("%d / %d", CharacterCount(text), MaxLength)
}

func isSpace(r rune) bool {
	return unicode.IsSpace(r) || r == '\uFEFF'
}

func countNonSpace(text string) int {
	n := 0
	for _, r := range text {
		if !isSpace(r) {
			n++
		}
	}
	return n
}

func isCompleteHangul(r rune) bool {
	return r >= '가' && r <= '힣'
}

// ㄱ-ㅎ 与 ㅏ-ㅣ 两段兼容字母
func isJamo(r rune) bool {
	return (r >= 'ㄱ' && r <= 'ㅎ') || (r >= 'ㅏ' && r <= 'ㅣ')
}

func hasOnlyJamo(text string) bool {
	var jamo bool
	for _, r := range text {
		if isCompleteHangul(r) {
			return false
		}
		if isJamo(r) {
			jamo = true
		}
	}
	return jamo
}

func hasExcessiveRepetition(text string) bool {
	var (
		prev  rune
		count int
	)
	for i, r := range []rune(text) {
		if i > 0 && r == prev {
			count++
		} else {
			count = 1
		}
		if count >= MaxRepeatedChars {
			return true
		}
		prev = r
	}
	return false
}
