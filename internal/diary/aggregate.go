package diary

import (
	"fmt"
	"iter"
	"slices"
	"time"
)

// MonthBucket 是某个自然月内的日记集合，按日期升序排列。
// Month 为 0 起的月份索引（0 = 一月）。
type MonthBucket struct {
	Year    int
	Month   int
	Entries []Entry
}

// CalendarGrid 描述 7 列月历的排版参数。
type CalendarGrid struct {
	DaysInMonth        int `json:"days_in_month"`
	FirstWeekdayOffset int `json:"first_weekday_offset"`
}

// GraphPoint 是折线图上的一个点，坐标已映射到绘图区域。
type GraphPoint struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Date  string  `json:"date"`
	Score int     `json:"score"`
}

// BucketForMonth 过滤出落在 (year, month) 内的条目并按日期稳定升序排序。
// month 为 0 起索引；与 REST 接口交互时需要 +1。
func BucketForMonth(entries []Entry, year, month int) MonthBucket {
	checkMonth(month)

	type dated struct {
		at    time.Time
		entry Entry
	}

	matched := make([]dated, 0, len(entries))
	for _, entry := range entries {
		at := mustParseDate(entry.Date)
		if at.Year() == year && int(at.Month())-1 == month {
			matched = append(matched, dated{at: at, entry: entry})
		}
	}

	slices.SortStableFunc(matched, func(a, b dated) int {
		return a.at.Compare(b.at)
	})

	bucket := MonthBucket{Year: year, Month: month, Entries: make([]Entry, 0, len(matched))}
	for _, item := range matched {
		bucket.Entries = append(bucket.Entries, item.entry)
	}
	return bucket
}

// ByDay 返回以月内日期为键的索引，供月历逐格查找。
func (b MonthBucket) ByDay() map[int]Entry {
	days := make(map[int]Entry, len(b.Entries))
	for _, entry := range b.Entries {
		days[entry.Day()] = entry
	}
	return days
}

// Latest 返回当月最后一条日记。
func (b MonthBucket) Latest() (Entry, bool) {
	if len(b.Entries) == 0 {
		return Entry{}, false
	}
	return b.Entries[len(b.Entries)-1], true
}

// DateFor 生成当月第 day 天的规范日期字符串。
func (b MonthBucket) DateFor(day int) string {
	return FormatDate(time.Date(b.Year, time.Month(b.Month+1), day, 0, 0, 0, 0, time.UTC))
}

// Grid 是 CalendarGrid(b.Year, b.Month) 的简写。
func (b MonthBucket) Grid() CalendarGrid {
	return CalendarGridFor(b.Year, b.Month)
}

// CalendarGridFor 计算当月天数及 1 号是星期几（0 = 星期日）。
func CalendarGridFor(year, month int) CalendarGrid {
	checkMonth(month)
	first := time.Date(year, time.Month(month+1), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return CalendarGrid{
		DaysInMonth:        last.Day(),
		FirstWeekdayOffset: int(first.Weekday()),
	}
}

// GraphPoints 将当月条目映射为折线图坐标。返回的序列可重复遍历，每次遍历互不影响。
// 横轴按日期线性分布，纵轴按分数线性分布且高分在上。
func GraphPoints(bucket MonthBucket, daysInMonth int, plotWidth, plotHeight, padding float64) iter.Seq[GraphPoint] {
	if daysInMonth < 1 {
		panic(fmt.Sprintf("diary: days in month must be positive, got %d", daysInMonth))
	}
	innerWidth := plotWidth - 2*padding
	innerHeight := plotHeight - 2*padding

	return func(yield func(GraphPoint) bool) {
		for _, entry := range bucket.Entries {
			x := padding
			if daysInMonth > 1 {
				x = padding + float64(entry.Day()-1)/float64(daysInMonth-1)*innerWidth
			}
			y := plotHeight - padding - float64(entry.Score)/100*innerHeight
			if !yield(GraphPoint{X: x, Y: y, Date: entry.Date, Score: entry.Score}) {
				return
			}
		}
	}
}

// EntryForDate 按规范日期精确查找，找不到时返回 false。
func EntryForDate(entries []Entry, date string) (Entry, bool) {
	for _, entry := range entries {
		if entry.Date == date {
			return entry, true
		}
	}
	return Entry{}, false
}

func checkMonth(month int) {
	if month < 0 || month > 11 {
		panic(fmt.Sprintf("diary: month index out of range: %d", month))
	}
}
