package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/moodline/internal/db"
	"github.com/moodline/internal/logging"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	// MockAuthorizationCode 是浏览器开发环境下使用的占位授权码，仅在模拟登录模式下有意义。
	MockAuthorizationCode = "MOCK_AUTH_CODE_FOR_DEVELOPMENT"
	// ReferrerSandbox 表示沙箱环境。
	ReferrerSandbox = "SANDBOX"
	// ReferrerDefault 表示正式环境。
	ReferrerDefault = "DEFAULT"

	// SandboxUserKey 是模拟登录时分配的固定 userKey。
	SandboxUserKey int64 = 1

	generateTokenPath = "/api-partner/v1/apps-in-toss/user/oauth2/generate-token"
	loginMePath       = "/api-partner/v1/apps-in-toss/user/oauth2/login-me"
)

// TossTokens 是授权码换取的访问令牌。
type TossTokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
	TokenType    string `json:"tokenType"`
}

type tossError struct {
	ErrorCode string `json:"errorCode"`
	Reason    string `json:"reason"`
}

type tossEnvelope[T any] struct {
	ResultType string     `json:"resultType"`
	Success    *T         `json:"success"`
	Error      *tossError `json:"error"`
}

type tossUserInfo struct {
	UserKey int64 `json:"userKey"`
}

// TossAuthService 负责用宿主 App 的授权码换取 userKey，并登记为 Member。
type TossAuthService struct {
	db      *gorm.DB
	http    httpDoer
	baseURL string
	mock    bool
}

// NewTossAuthService 构造 TossAuthService；mock 为 true 时所有登录都落到沙箱用户。
func NewTossAuthService(gdb *gorm.DB, baseURL string, mock bool) *TossAuthService {
	return &TossAuthService{
		db:      gdb,
		http:    &http.Client{Timeout: 15 * time.Second},
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		mock:    mock,
	}
}

// SetHTTPClient 覆盖默认 HTTP 客户端，主要用于测试。
func (s *TossAuthService) SetHTTPClient(client httpDoer) {
	if client == nil {
		s.http = &http.Client{Timeout: 15 * time.Second}
		return
	}
	s.http = client
}

// Login 依次完成换取令牌、查询用户信息与登记 Member。
func (s *TossAuthService) Login(ctx context.Context, authorizationCode, referrer string) (*db.Member, error) {
	code := strings.TrimSpace(authorizationCode)
	referrer = strings.ToUpper(strings.TrimSpace(referrer))
	if referrer == "" {
		referrer = ReferrerDefault
	}
	if code == "" {
		return nil, fmt.Errorf("%w: authorization code is required", ErrTossLogin)
	}

	if s.mock {
		logging.L().Info("mock login", zap.String("referrer", referrer))
		return s.upsertMember(SandboxUserKey, ReferrerSandbox)
	}

	tokens, err := s.generateToken(ctx, code, referrer)
	if err != nil {
		return nil, err
	}

	userKey, err := s.loginMe(ctx, tokens.AccessToken)
	if err != nil {
		return nil, err
	}

	logging.L().Info("toss login", zap.Int64("user_key", userKey), zap.String("referrer", referrer))
	return s.upsertMember(userKey, referrer)
}

// FindMember 根据 userKey 查找已登录过的用户。
func (s *TossAuthService) FindMember(userKey int64) (*db.Member, error) {
	var member db.Member
	if err := s.db.Where("user_key = ?", userKey).First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("find member: %w", err)
	}
	return &member, nil
}

func (s *TossAuthService) generateToken(ctx context.Context, code, referrer string) (TossTokens, error) {
	body, err := json.Marshal(map[string]string{"authorizationCode": code, "referrer": referrer})
	if err != nil {
		return TossTokens{}, fmt.Errorf("构造请求失败: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+generateTokenPath, bytes.NewReader(body))
	if err != nil {
		return TossTokens{}, fmt.Errorf("create generate-token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var envelope tossEnvelope[TossTokens]
	if err := s.do(req, &envelope); err != nil {
		return TossTokens{}, err
	}
	if err := envelopeError(envelope.ResultType, envelope.Success == nil, envelope.Error); err != nil {
		return TossTokens{}, err
	}
	if strings.TrimSpace(envelope.Success.AccessToken) == "" {
		return TossTokens{}, fmt.Errorf("%w: empty access token", ErrTossLogin)
	}
	return *envelope.Success, nil
}

func (s *TossAuthService) loginMe(ctx context.Context, accessToken string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+loginMePath, nil)
	if err != nil {
		return 0, fmt.Errorf("create login-me request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	var envelope tossEnvelope[tossUserInfo]
	if err := s.do(req, &envelope); err != nil {
		return 0, err
	}
	if err := envelopeError(envelope.ResultType, envelope.Success == nil, envelope.Error); err != nil {
		return 0, err
	}
	if envelope.Success.UserKey == 0 {
		return 0, fmt.Errorf("%w: empty user key", ErrTossLogin)
	}
	return envelope.Success.UserKey, nil
}

func (s *TossAuthService) do(req *http.Request, dst any) error {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "moodline/1.0")

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("请求登录接口失败: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("读取登录接口响应失败: %w", err)
	}
	if err := json.Unmarshal(respBody, dst); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return fmt.Errorf("%w: %s", ErrTossLogin, resp.Status)
		}
		return fmt.Errorf("%w: decode response: %w", ErrTossLogin, err)
	}
	return nil
}

func envelopeError(resultType string, missing bool, detail *tossError) error {
	if resultType != "FAIL" && !missing {
		return nil
	}
	if detail != nil && strings.TrimSpace(detail.Reason) != "" {
		return fmt.Errorf("%w: %s (%s)", ErrTossLogin, detail.Reason, detail.ErrorCode)
	}
	return fmt.Errorf("%w: result %s", ErrTossLogin, resultType)
}

func (s *TossAuthService) upsertMember(userKey int64, referrer string) (*db.Member, error) {
	member := db.Member{UserKey: userKey, Referrer: referrer}
	if err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"referrer", "updated_at"}),
	}).Create(&member).Error; err != nil {
		return nil, fmt.Errorf("upsert member: %w", err)
	}

	if err := s.db.Where("user_key = ?", userKey).First(&member).Error; err != nil {
		return nil, fmt.Errorf("reload member: %w", err)
	}
	return &member, nil
}
