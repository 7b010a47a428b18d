package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/moodline/internal/db"
	"github.com/moodline/internal/failure"
	"github.com/moodline/internal/service"
)

const (
	sessionUserKey   = "user_key"
	memberContextKey = "__member"
)

type tossLoginRequest struct {
	AuthorizationCode string `json:"authorizationCode" binding:"required"`
	Referrer          string `json:"referrer"`
}

// TossLogin 用宿主 App 下发的授权码登录，返回 userKey 并写入会话。
func (a *API) TossLogin(c *gin.Context) {
	var req tossLoginRequest
	if !bindJSON(c, &req) {
		return
	}

	member, err := a.auth.Login(c.Request.Context(), req.AuthorizationCode, req.Referrer)
	if err != nil {
		handleDiaryError(c, err)
		return
	}

	session := sessions.Default(c)
	session.Set(sessionUserKey, member.UserKey)
	if err := session.Save(); err != nil {
		respondError(c, http.StatusInternalServerError, "SESSION_ERROR", "会话保存失败")
		return
	}

	respondSuccess(c, http.StatusOK, member.UserKey)
}

// Logout 清除会话中的 userKey
func (a *API) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		respondError(c, http.StatusInternalServerError, "SESSION_ERROR", "会话保存失败")
		return
	}
	respondSuccess(c, http.StatusOK, nil)
}

// MemberRequired 从 Authorization 头或会话中解析 userKey，并加载对应的 Member。
func (a *API) MemberRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		userKey, ok := userKeyFromRequest(c)
		if !ok {
			respondErrorWithReason(c, http.StatusUnauthorized, "LOGIN_REQUIRED", failure.Login.Message(), service.ErrLoginRequired.Error())
			return
		}

		member, err := a.auth.FindMember(userKey)
		if err != nil {
			if errors.Is(err, service.ErrMemberNotFound) {
				respondErrorWithReason(c, http.StatusUnauthorized, "LOGIN_REQUIRED", failure.Login.Message(), err.Error())
				return
			}
			handleDiaryError(c, err)
			return
		}

		c.Set(memberContextKey, member)
		c.Next()
	}
}

func userKeyFromRequest(c *gin.Context) (int64, bool) {
	if header := strings.TrimSpace(c.GetHeader("Authorization")); header != "" {
		header = strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		key, err := strconv.ParseInt(header, 10, 64)
		if err != nil || key <= 0 {
			return 0, false
		}
		return key, true
	}

	switch value := sessions.Default(c).Get(sessionUserKey).(type) {
	case int64:
		return value, value > 0
	default:
		return 0, false
	}
}

func currentMember(c *gin.Context) *db.Member {
	if value, ok := c.Get(memberContextKey); ok {
		if member, ok := value.(*db.Member); ok {
			return member
		}
	}
	return nil
}
