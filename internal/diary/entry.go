// Package diary 提供一行日记的纯函数核心：输入校验与按月聚合。
// 包内不做任何 I/O，可在任意 goroutine 中并发调用。
package diary

import (
	"fmt"
	"time"
)

// DateLayout 是日期的规范格式。
const DateLayout = "2006-01-02"

// Entry 对应某一天的一条日记，同一用户同一天至多一条。
type Entry struct {
	Date        string `json:"date"`
	Line        string `json:"line"`
	Score       int    `json:"score"`
	Description string `json:"description,omitempty"`
}

// Day 返回条目所在的月内日期（1 起）。
func (e Entry) Day() int {
	return mustParseDate(e.Date).Day()
}

// ParseDate 解析规范格式日期，结果位于 UTC。
func ParseDate(value string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", value, err)
	}
	return t, nil
}

// FormatDate 将时间格式化为规范日期字符串。
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// 上游提供的日期格式错误属于契约违例，直接 panic。
func mustParseDate(value string) time.Time {
	t, err := ParseDate(value)
	if err != nil {
		panic(fmt.Sprintf("diary: malformed entry date: %v", err))
	}
	return t
}

// ValidScore 判断分数是否落在 [0,100]。
func ValidScore(score int) bool {
	return score >= 0 && score <= 100
}
