package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/moodline/internal/diary"
)

const (
	graphWidth   = 300
	graphHeight  = 200
	graphPadding = 20
)

var weekdayLabels = []string{"일", "월", "화", "수", "목", "금", "토"}

// renderCalendar 以周日开头输出月历，每周两行：日期与分数。
func renderCalendar(w io.Writer, bucket diary.MonthBucket) {
	grid := bucket.Grid()
	byDay := bucket.ByDay()

	fmt.Fprintf(w, "%d년 %d월\n", bucket.Year, bucket.Month+1)
	for _, label := range weekdayLabels {
		fmt.Fprintf(w, " %s ", label)
	}
	fmt.Fprintln(w)

	cells := grid.FirstWeekdayOffset + grid.DaysInMonth
	for weekStart := 0; weekStart < cells; weekStart += 7 {
		var days, scores strings.Builder
		for i := weekStart; i < weekStart+7; i++ {
			day := i - grid.FirstWeekdayOffset + 1
			if day < 1 || day > grid.DaysInMonth {
				days.WriteString("    ")
				scores.WriteString("    ")
				continue
			}
			fmt.Fprintf(&days, "%3d ", day)
			if entry, ok := byDay[day]; ok {
				fmt.Fprintf(&scores, "%3d ", entry.Score)
			} else {
				scores.WriteString("  · ")
			}
		}
		fmt.Fprintln(w, strings.TrimRight(days.String(), " "))
		fmt.Fprintln(w, strings.TrimRight(scores.String(), " "))
	}
}

// renderGraph 输出折线图各点在 300x200 画布上的坐标。
func renderGraph(w io.Writer, bucket diary.MonthBucket) {
	grid := bucket.Grid()
	fmt.Fprintf(w, "그래프 (%dx%d, padding %d)\n", graphWidth, graphHeight, graphPadding)
	count := 0
	for point := range diary.GraphPoints(bucket, grid.DaysInMonth, graphWidth, graphHeight, graphPadding) {
		fmt.Fprintf(w, "  %s  %3d점  x=%6.1f y=%6.1f\n", point.Date, point.Score, point.X, point.Y)
		count++
	}
	if count == 0 {
		fmt.Fprintln(w, "  기록이 없어요.")
	}
}

func renderEntry(w io.Writer, entry diary.Entry) {
	fmt.Fprintf(w, "%s  %d점 (%s)\n", entry.Date, entry.Score, diary.BandFor(entry.Score))
	fmt.Fprintf(w, "  %s\n", entry.Line)
	if entry.Description != "" {
		fmt.Fprintf(w, "  %s\n", entry.Description)
	}
}
