package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/moodline/internal/config"
	"github.com/moodline/internal/db"
	"github.com/moodline/internal/handler"
	"github.com/moodline/internal/logging"
	"github.com/moodline/internal/router"
	"github.com/moodline/internal/service"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	logging.SetLogger(logger)

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}
	gin.SetMode(cfg.GinMode)

	// 初始化数据库
	if err := db.Init(cfg.DatabasePath); err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	if err := db.EnsureUser(db.DB, cfg.SuperRootUserName, cfg.SuperRootPassword); err != nil {
		logger.Fatal("failed to ensure admin user", zap.Error(err))
	}

	system := service.NewSystemSettingService(db.DB, service.AnalyzerSettings{
		OpenAIAPIKey: cfg.OpenAIAPIKey,
		OpenAIModel:  cfg.OpenAIModel,
	})
	system.SetOpenAIBaseURL(cfg.OpenAIBaseURL)

	analyzer := service.NewOpenAIAnalyzer(system, cfg.OpenAIBaseURL, cfg.AnalyzerTimeout)
	diaries := service.NewDiaryService(db.DB, analyzer).WithLocation(cfg.Location())
	auth := service.NewTossAuthService(db.DB, cfg.TossAPIBaseURL, cfg.TossAuthMock)

	api := handler.NewAPI(db.DB, diaries, auth, system)
	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router.SetupRouter(api, cfg.SessionSecret),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server listening",
			zap.String("addr", cfg.ListenAddr),
			zap.String("timezone", cfg.Timezone),
			zap.Bool("toss_auth_mock", cfg.TossAuthMock),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("failed to run server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
