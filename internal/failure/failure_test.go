package failure

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	sentinel := New(Analysis, "analyzer returned garbage")

	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "nil", err: nil, want: Generic},
		{name: "declared", err: fmt.Errorf("write diary: %w", sentinel), want: Analysis},
		{name: "declared wins over text", err: fmt.Errorf("network hiccup: %w", New(Login, "x")), want: Login},
		{name: "net error", err: &net.OpError{Op: "dial", Err: errors.New("boom")}, want: Network},
		{name: "deadline", err: fmt.Errorf("call: %w", context.DeadlineExceeded), want: Network},
		{name: "korean login", err: errors.New("로그인이 필요합니다."), want: Login},
		{name: "gpt text", err: errors.New("GPT API 오류: 500"), want: Analysis},
		{name: "korean network", err: errors.New("네트워크 연결을 확인해주세요."), want: Network},
		{name: "other", err: errors.New("disk full"), want: Generic},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestSentinelIdentity(t *testing.T) {
	t.Parallel()

	a := New(Login, "login required")
	b := New(Login, "login required")
	assert.True(t, errors.Is(fmt.Errorf("wrap: %w", a), a))
	assert.False(t, errors.Is(a, b))
	assert.Equal(t, "로그인이 필요해요.", Login.Message())
	assert.NotEqual(t, Generic.Message(), Network.Message())
}
