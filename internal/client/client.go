// Package client 是 moodline REST 接口的 Go 客户端，带按月缓存。
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/moodline/internal/diary"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultCacheTTL 是月度数据的缓存时长。
	DefaultCacheTTL = 5 * time.Minute
	// MockAuthorizationCode 是开发环境的占位授权码，只有服务端开启 TOSS_AUTH_MOCK 时才能登录。
	MockAuthorizationCode = "MOCK_AUTH_CODE_FOR_DEVELOPMENT"
)

// ErrNotLoggedIn 表示尚未设置 userKey。
var ErrNotLoggedIn = errors.New("login required: user key is not set")

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type monthKey struct {
	year  int
	month int
}

type cachedMonth struct {
	entries   []diary.Entry
	expiresAt time.Time
}

// cacheStamp 标记发起请求时的缓存版本，失效或切换用户后旧请求的结果不再写回。
type cacheStamp struct {
	epoch uint64
	gen   uint64
}

// Analysis 是评分接口的返回值。
type Analysis struct {
	Score       int    `json:"score"`
	Description string `json:"description"`
}

// Client 访问 moodline 服务端。并发安全。
type Client struct {
	baseURL string
	http    httpDoer
	ttl     time.Duration
	now     func() time.Time

	mu      sync.Mutex
	userKey int64
	months  map[monthKey]cachedMonth
	gens    map[monthKey]uint64
	epoch   uint64
	flights singleflight.Group
}

// Option 用于定制 Client。
type Option func(*Client)

// WithHTTPClient 替换底层 HTTP 客户端。
func WithHTTPClient(doer httpDoer) Option {
	return func(c *Client) {
		if doer != nil {
			c.http = doer
		}
	}
}

// WithCacheTTL 设置月度缓存时长，<=0 表示不缓存。
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) { c.ttl = ttl }
}

// WithClock 主要用于测试缓存过期。
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// WithUserKey 使用已知的 userKey，跳过登录。
func WithUserKey(userKey int64) Option {
	return func(c *Client) { c.userKey = userKey }
}

// New 构造 Client。
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    &http.Client{Timeout: 90 * time.Second},
		ttl:     DefaultCacheTTL,
		now:     time.Now,
		months:  make(map[monthKey]cachedMonth),
		gens:    make(map[monthKey]uint64),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// UserKey 返回当前登录用户
func (c *Client) UserKey() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userKey
}

// Login 用授权码登录并记住 userKey。切换用户时清空缓存。
func (c *Client) Login(ctx context.Context, authorizationCode, referrer string) (int64, error) {
	var userKey int64
	body := map[string]string{"authorizationCode": authorizationCode, "referrer": referrer}
	if err := c.do(ctx, http.MethodPost, "/api/auth/toss/token", body, false, &userKey); err != nil {
		return 0, err
	}

	c.mu.Lock()
	if c.userKey != userKey {
		c.months = make(map[monthKey]cachedMonth)
		c.epoch++
	}
	c.userKey = userKey
	c.mu.Unlock()
	return userKey, nil
}

// MonthlyEntries 返回某月的日记（month 为 0-11），按日期升序。
// 同一月份的并发请求只会发出一次。
func (c *Client) MonthlyEntries(ctx context.Context, year, month int) ([]diary.Entry, error) {
	if month < 0 || month > 11 {
		return nil, fmt.Errorf("month %d out of range 0-11", month)
	}
	key := monthKey{year: year, month: month}
	if entries, ok := c.cached(key); ok {
		return entries, nil
	}

	stamp := c.stamp(key)
	flightKey := fmt.Sprintf("%d-%d/%d.%d", year, month, stamp.epoch, stamp.gen)
	result, err, _ := c.flights.Do(flightKey, func() (any, error) {
		if entries, ok := c.cached(key); ok {
			return entries, nil
		}

		var entries []diary.Entry
		path := "/api/v1/scores?" + url.Values{
			"month": {strconv.Itoa(month + 1)},
			"year":  {strconv.Itoa(year)},
		}.Encode()
		if err := c.do(ctx, http.MethodGet, path, nil, true, &entries); err != nil {
			return nil, err
		}

		entries = diary.BucketForMonth(entries, year, month).Entries
		c.store(key, stamp, entries)
		return entries, nil
	})
	if err != nil {
		return nil, err
	}
	return slices.Clone(result.([]diary.Entry)), nil
}

// YearEntries 并发拉取一整年的数据，键为 0-11 的月份。
func (c *Client) YearEntries(ctx context.Context, year int) (map[int][]diary.Entry, error) {
	results := make([][]diary.Entry, 12)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for month := range 12 {
		g.Go(func() error {
			entries, err := c.MonthlyEntries(gctx, year, month)
			if err != nil {
				return fmt.Errorf("month %d: %w", month+1, err)
			}
			results[month] = entries
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byMonth := make(map[int][]diary.Entry, 12)
	for month, entries := range results {
		byMonth[month] = entries
	}
	return byMonth, nil
}

// Save 追加保存一条已评分的日记，并使对应月份的缓存失效。
func (c *Client) Save(ctx context.Context, entry diary.Entry) (diary.Entry, error) {
	body := map[string]any{
		"date":        entry.Date,
		"line":        entry.Line,
		"score":       entry.Score,
		"description": entry.Description,
	}
	var saved diary.Entry
	err := c.do(ctx, http.MethodPost, "/api/v1/scores", body, true, &saved)
	c.invalidateDate(entry.Date)
	if err != nil {
		return diary.Entry{}, err
	}
	return saved, nil
}

// Write 让服务端完成今日日记的评分与保存。
func (c *Client) Write(ctx context.Context, line string) (diary.Entry, error) {
	var saved diary.Entry
	if err := c.do(ctx, http.MethodPost, "/api/v1/diary", map[string]string{"line": line}, true, &saved); err != nil {
		return diary.Entry{}, err
	}
	c.invalidateDate(saved.Date)
	return saved, nil
}

// Analyze 只评分，不保存。
func (c *Client) Analyze(ctx context.Context, line string) (Analysis, error) {
	var analysis Analysis
	if err := c.do(ctx, http.MethodPost, "/api/v1/analyze", map[string]string{"line": line}, true, &analysis); err != nil {
		return Analysis{}, err
	}
	return analysis, nil
}

// Invalidate 丢弃某月（0-11）的缓存，进行中的请求结果也不会再写回。
func (c *Client) Invalidate(year, month int) {
	key := monthKey{year: year, month: month}
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.months, key)
	c.gens[key]++
}

func (c *Client) invalidateDate(date string) {
	at, err := diary.ParseDate(date)
	if err != nil {
		return
	}
	c.Invalidate(at.Year(), int(at.Month())-1)
}

func (c *Client) cached(key monthKey) ([]diary.Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, ok := c.months[key]
	if !ok {
		return nil, false
	}
	if !c.now().Before(item.expiresAt) {
		delete(c.months, key)
		return nil, false
	}
	return slices.Clone(item.entries), true
}

func (c *Client) stamp(key monthKey) cacheStamp {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cacheStamp{epoch: c.epoch, gen: c.gens[key]}
}

func (c *Client) store(key monthKey, stamp cacheStamp, entries []diary.Entry) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if stamp != (cacheStamp{epoch: c.epoch, gen: c.gens[key]}) {
		return
	}
	c.months[key] = cachedMonth{entries: slices.Clone(entries), expiresAt: c.now().Add(c.ttl)}
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		ErrorCode string `json:"errorCode"`
		Reason    string `json:"reason"`
	} `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, body any, authenticated bool, dst any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authenticated {
		userKey := c.UserKey()
		if userKey == 0 {
			return ErrNotLoggedIn
		}
		req.Header.Set("Authorization", strconv.FormatInt(userKey, 10))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return &APIError{Status: resp.StatusCode, Code: http.StatusText(resp.StatusCode)}
		}
		return fmt.Errorf("decode response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest || !env.Success {
		apiErr := &APIError{Status: resp.StatusCode, Message: env.Message}
		if env.Error != nil {
			apiErr.Code = env.Error.ErrorCode
			apiErr.Reason = env.Error.Reason
		}
		return apiErr
	}

	if dst == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, dst); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}
