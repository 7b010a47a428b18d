package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/moodline/internal/db"
)

const adminContextKey = "__admin_username"

// AdminRequired 使用 HTTP Basic 认证校验后台管理员。
func (a *API) AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		username, password, ok := c.Request.BasicAuth()
		if !ok {
			c.Header("WWW-Authenticate", `Basic realm="moodline admin"`)
			respondError(c, http.StatusUnauthorized, "ADMIN_REQUIRED", "需要管理员登录")
			return
		}

		// 验证密码
		user, err := db.Authenticate(a.db, username, password)
		if err != nil {
			c.Header("WWW-Authenticate", `Basic realm="moodline admin"`)
			respondError(c, http.StatusUnauthorized, "ADMIN_REQUIRED", "用户名或密码错误")
			return
		}

		c.Set(adminContextKey, user.Username)
		c.Next()
	}
}
