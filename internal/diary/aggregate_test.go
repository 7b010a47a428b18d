package diary

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func novemberEntries() []Entry {
	return []Entry{
		{Date: "2025-11-30", Line: "마무리 잘 했다", Score: 90},
		{Date: "2025-10-31", Line: "할로윈", Score: 55},
		{Date: "2025-11-01", Line: "새 달 시작", Score: 40},
		{Date: "2024-11-15", Line: "작년 오늘", Score: 10},
		{Date: "2025-11-15", Line: "보통의 하루", Score: 70},
		{Date: "2025-12-01", Line: "겨울", Score: 65},
	}
}

func TestBucketForMonth(t *testing.T) {
	t.Parallel()

	bucket := BucketForMonth(novemberEntries(), 2025, 10)

	assert.Equal(t, 2025, bucket.Year)
	assert.Equal(t, 10, bucket.Month)
	require.Len(t, bucket.Entries, 3)

	dates := make([]string, 0, len(bucket.Entries))
	for _, entry := range bucket.Entries {
		dates = append(dates, entry.Date)
	}
	assert.Equal(t, []string{"2025-11-01", "2025-11-15", "2025-11-30"}, dates)
	assert.Equal(t, []int{40, 70, 90}, []int{bucket.Entries[0].Score, bucket.Entries[1].Score, bucket.Entries[2].Score})
}

func TestBucketForMonthIsIdempotent(t *testing.T) {
	t.Parallel()

	entries := novemberEntries()
	first := BucketForMonth(entries, 2025, 10)
	second := BucketForMonth(entries, 2025, 10)
	assert.Equal(t, first, second)

	// 输入切片不被重排
	assert.Equal(t, "2025-11-30", entries[0].Date)
}

func TestBucketForMonthEmpty(t *testing.T) {
	t.Parallel()

	bucket := BucketForMonth(novemberEntries(), 2025, 1)
	assert.Empty(t, bucket.Entries)
	_, ok := bucket.Latest()
	assert.False(t, ok)
}

func TestBucketForMonthPanicsOnMalformedDate(t *testing.T) {
	t.Parallel()

	entries := []Entry{{Date: "2025/11/01", Score: 10}}
	assert.Panics(t, func() { BucketForMonth(entries, 2025, 10) })
	assert.Panics(t, func() { BucketForMonth(nil, 2025, 12) })
}

func TestBucketHelpers(t *testing.T) {
	t.Parallel()

	bucket := BucketForMonth(novemberEntries(), 2025, 10)

	byDay := bucket.ByDay()
	require.Len(t, byDay, 3)
	assert.Equal(t, 70, byDay[15].Score)
	_, ok := byDay[2]
	assert.False(t, ok)

	latest, ok := bucket.Latest()
	require.True(t, ok)
	assert.Equal(t, "2025-11-30", latest.Date)

	assert.Equal(t, "2025-11-07", bucket.DateFor(7))
	assert.Equal(t, CalendarGrid{DaysInMonth: 30, FirstWeekdayOffset: 6}, bucket.Grid())
}

func TestCalendarGridFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		year  int
		month int
		want  CalendarGrid
	}{
		{name: "november 2025 starts saturday", year: 2025, month: 10, want: CalendarGrid{DaysInMonth: 30, FirstWeekdayOffset: 6}},
		{name: "leap february", year: 2024, month: 1, want: CalendarGrid{DaysInMonth: 29, FirstWeekdayOffset: 4}},
		{name: "common february", year: 2025, month: 1, want: CalendarGrid{DaysInMonth: 28, FirstWeekdayOffset: 6}},
		{name: "century non leap", year: 1900, month: 1, want: CalendarGrid{DaysInMonth: 28, FirstWeekdayOffset: 4}},
		{name: "june 2025 starts sunday", year: 2025, month: 5, want: CalendarGrid{DaysInMonth: 30, FirstWeekdayOffset: 0}},
		{name: "december", year: 2025, month: 11, want: CalendarGrid{DaysInMonth: 31, FirstWeekdayOffset: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CalendarGridFor(tt.year, tt.month))
		})
	}
}

func TestGraphPoints(t *testing.T) {
	t.Parallel()

	bucket := BucketForMonth(novemberEntries(), 2025, 10)
	points := slices.Collect(GraphPoints(bucket, 30, 300, 200, 20))
	require.Len(t, points, 3)

	assert.InDelta(t, 20, points[0].X, 1e-9)
	assert.InDelta(t, 20+14.0/29.0*260, points[1].X, 1e-9)
	assert.InDelta(t, 280, points[2].X, 1e-9)

	assert.InDelta(t, 200-20-0.4*160, points[0].Y, 1e-9)
	assert.InDelta(t, 200-20-0.7*160, points[1].Y, 1e-9)
	assert.InDelta(t, 200-20-0.9*160, points[2].Y, 1e-9)

	for i := 1; i < len(points); i++ {
		assert.Greater(t, points[i].X, points[i-1].X)
		assert.Less(t, points[i].Y, points[i-1].Y)
	}
	assert.Equal(t, "2025-11-15", points[1].Date)
	assert.Equal(t, 70, points[1].Score)
}

func TestGraphPointsIsRestartable(t *testing.T) {
	t.Parallel()

	seq := GraphPoints(BucketForMonth(novemberEntries(), 2025, 10), 30, 300, 200, 20)
	assert.Equal(t, slices.Collect(seq), slices.Collect(seq))

	var first []GraphPoint
	for point := range seq {
		first = append(first, point)
		break
	}
	require.Len(t, first, 1)
	assert.Equal(t, "2025-11-01", first[0].Date)
}

func TestGraphPointsSingleDayMonth(t *testing.T) {
	t.Parallel()

	bucket := MonthBucket{Year: 2025, Month: 10, Entries: []Entry{{Date: "2025-11-01", Score: 100}}}
	points := slices.Collect(GraphPoints(bucket, 1, 300, 200, 20))
	require.Len(t, points, 1)
	assert.Equal(t, 20.0, points[0].X)
	assert.Equal(t, 20.0, points[0].Y)
}

func TestEntryForDate(t *testing.T) {
	t.Parallel()

	entries := novemberEntries()
	entry, ok := EntryForDate(entries, "2025-11-15")
	require.True(t, ok)
	assert.Equal(t, entries[4], entry)

	_, ok = EntryForDate(entries, "2025-11-16")
	assert.False(t, ok)

	_, ok = EntryForDate(nil, "2025-11-16")
	assert.False(t, ok)
}

func TestBandFor(t *testing.T) {
	t.Parallel()

	cases := map[int]Band{0: BandLow, 30: BandLow, 31: BandFair, 50: BandFair, 51: BandGood, 70: BandGood, 71: BandGreat, 100: BandGreat}
	for score, want := range cases {
		assert.Equal(t, want, BandFor(score), "score %d", score)
	}
}

func TestParseDate(t *testing.T) {
	t.Parallel()

	at, err := ParseDate("2025-11-15")
	require.NoError(t, err)
	assert.Equal(t, "2025-11-15", FormatDate(at))

	_, err = ParseDate("2025-13-01")
	assert.Error(t, err)
	assert.True(t, ValidScore(0))
	assert.True(t, ValidScore(100))
	assert.False(t, ValidScore(101))
	assert.False(t, ValidScore(-1))
}
