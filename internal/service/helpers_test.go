package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/moodline/internal/db"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fakeHTTPClient struct {
	handler func(*http.Request) (*http.Response, error)
}

func (f fakeHTTPClient) Do(req *http.Request) (*http.Response, error) {
	if f.handler == nil {
		return nil, errors.New("no handler configured")
	}
	return f.handler(req)
}

func jsonResponse(status int, payload any) *http.Response {
	buf, _ := json.Marshal(payload)
	header := make(http.Header)
	header.Set("Content-Type", "application/json")
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Body:       io.NopCloser(bytes.NewReader(buf)),
		Header:     header,
	}
}

func setupServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := db.Open(sqlite.Open(filepath.Join(t.TempDir(), "service.db")), logger.Silent)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return gdb
}

func createTestMember(t *testing.T, gdb *gorm.DB, userKey int64) db.Member {
	t.Helper()
	member := db.Member{UserKey: userKey, Referrer: ReferrerDefault}
	if err := gdb.Create(&member).Error; err != nil {
		t.Fatalf("failed to create member: %v", err)
	}
	return member
}

type fakeAnalyzer struct {
	result   Analysis
	err      error
	calls    int
	lastText string
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, text string) (Analysis, error) {
	f.calls++
	f.lastText = text
	if f.err != nil {
		return Analysis{}, f.err
	}
	return f.result, nil
}
