package router

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/moodline/internal/handler"
	"github.com/moodline/internal/logging"
)

const sessionName = "moodline_session"

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(api *handler.API, sessionSecret string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), logging.RequestID(), logging.Middleware())

	// 配置会话中间件
	store := cookie.NewStore([]byte(sessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   60 * 60 * 24 * 30,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, store))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})
	r.GET("/healthz", api.HealthCheck)

	auth := r.Group("/api/auth")
	{
		auth.POST("/toss/token", api.TossLogin)
		auth.POST("/logout", api.Logout)
	}

	// 需要登录的日记接口
	v1 := r.Group("/api/v1")
	v1.Use(api.MemberRequired())
	{
		v1.GET("/scores", api.ListScores)
		v1.GET("/scores/:date", api.GetScore)
		v1.POST("/scores", api.CreateScore)

		v1.POST("/validate", api.ValidateLine)
		v1.POST("/analyze", api.AnalyzeLine)
		v1.POST("/diary", api.WriteDiary)
		v1.GET("/today", api.Today)
		v1.GET("/stats", api.Stats)
	}

	// 后台管理路由
	admin := r.Group("/api/admin")
	admin.Use(api.AdminRequired())
	{
		admin.GET("/settings", api.GetSystemSettings)
		admin.PUT("/settings", api.UpdateSystemSettings)
		admin.POST("/settings/test", api.TestAIConnection)
	}

	return r
}
