package handler

import (
	"github.com/moodline/internal/service"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db      *gorm.DB
	diaries *service.DiaryService
	auth    *service.TossAuthService
	system  *service.SystemSettingService
}

// NewAPI constructs a handler set with shared services.
func NewAPI(db *gorm.DB, diaries *service.DiaryService, auth *service.TossAuthService, system *service.SystemSettingService) *API {
	return &API{
		db:      db,
		diaries: diaries,
		auth:    auth,
		system:  system,
	}
}

// DB exposes the underlying gorm instance.
func (a *API) DB() *gorm.DB {
	return a.db
}
