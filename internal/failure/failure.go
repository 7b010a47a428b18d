// Package failure 将外围层（登录、分析、网络）的错误归类，并给出面向用户的提示。
package failure

import (
	"context"
	"errors"
	"net"
	"strings"
)

// Kind 是错误的大类。
type Kind string

const (
	Login    Kind = "login"
	Analysis Kind = "analysis"
	Network  Kind = "network"
	Generic  Kind = "generic"
)

// Message 返回与类别对应的用户提示。
func (k Kind) Message() string {
	switch k {
	case Login:
		return "로그인이 필요해요."
	case Analysis:
		return "일기 분석에 실패했어요. 다시 시도해주세요."
	case Network:
		return "네트워크 연결을 확인해주세요."
	default:
		return "저장에 실패했어요. 다시 시도해주세요."
	}
}

// Error 是带类别的哨兵错误，可被 errors.Is 精确匹配。
type Error struct {
	Kind Kind
	msg  string
}

// New 构造带类别的错误。
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, msg: msg}
}

func (e *Error) Error() string { return e.msg }

// FailureKind 实现 Classifier。
func (e *Error) FailureKind() Kind { return e.Kind }

// Classifier 由能够自行声明类别的错误实现。
type Classifier interface {
	FailureKind() Kind
}

var substrings = []struct {
	kind    Kind
	needles []string
}{
	{kind: Login, needles: []string{"로그인", "login", "unauthorized"}},
	{kind: Analysis, needles: []string{"gpt", "openai", "analy"}},
	{kind: Network, needles: []string{"네트워크", "network", "connection refused", "timeout"}},
}

// Classify 先按错误链上声明的类别判断，再退回到错误信息的子串匹配。
func Classify(err error) Kind {
	if err == nil {
		return Generic
	}

	var classifier Classifier
	if errors.As(err, &classifier) {
		return classifier.FailureKind()
	}

	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return Network
	}

	msg := strings.ToLower(err.Error())
	for _, rule := range substrings {
		for _, needle := range rule.needles {
			if strings.Contains(msg, strings.ToLower(needle)) {
				return rule.kind
			}
		}
	}
	return Generic
}
