package handler

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/moodline/internal/diary"
	"github.com/moodline/internal/service"
)

// 折线图画布尺寸
const (
	graphWidth   = 300
	graphHeight  = 200
	graphPadding = 20
)

type calendarCell struct {
	Day   int        `json:"day"`
	Date  string     `json:"date"`
	Score *int       `json:"score,omitempty"`
	Band  diary.Band `json:"band,omitempty"`
}

type selectedEntry struct {
	entryPayload
	DescriptionHTML string `json:"descriptionHtml"`
}

type statsPayload struct {
	Year     int                `json:"year"`
	Month    int                `json:"month"`
	Grid     diary.CalendarGrid `json:"grid"`
	Cells    []calendarCell     `json:"cells"`
	Points   []diary.GraphPoint `json:"points"`
	Width    int                `json:"width"`
	Height   int                `json:"height"`
	Padding  int                `json:"padding"`
	Selected *selectedEntry     `json:"selected,omitempty"`
	Count    int                `json:"count"`
	Average  float64            `json:"average"`
}

// Stats 返回月历格子、折线图坐标与选中（默认最近一条）日记。
func (a *API) Stats(c *gin.Context) {
	member := currentMember(c)
	today, _ := diary.ParseDate(a.diaries.Today())

	year, err := parseIntQuery(c, "year", today.Year())
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_YEAR", "year 형식이 올바르지 않아요.")
		return
	}
	month, err := parseIntQuery(c, "month", int(today.Month()))
	if err != nil || month < 1 || month > 12 {
		respondError(c, http.StatusBadRequest, "INVALID_MONTH", "month는 1에서 12 사이여야 해요.")
		return
	}

	entries, err := a.diaries.ListMonth(member.ID, year, month)
	if err != nil {
		handleDiaryError(c, err)
		return
	}

	bucket := diary.BucketForMonth(entries, year, month-1)
	grid := bucket.Grid()
	byDay := bucket.ByDay()

	cells := make([]calendarCell, 0, grid.DaysInMonth)
	total := 0
	for day := 1; day <= grid.DaysInMonth; day++ {
		cell := calendarCell{Day: day, Date: bucket.DateFor(day)}
		if entry, ok := byDay[day]; ok {
			score := entry.Score
			cell.Score = &score
			cell.Band = diary.BandFor(score)
			total += score
		}
		cells = append(cells, cell)
	}

	points := slices.Collect(diary.GraphPoints(bucket, grid.DaysInMonth, graphWidth, graphHeight, graphPadding))
	if points == nil {
		points = []diary.GraphPoint{}
	}

	payload := statsPayload{
		Year:    year,
		Month:   month,
		Grid:    grid,
		Cells:   cells,
		Points:  points,
		Width:   graphWidth,
		Height:  graphHeight,
		Padding: graphPadding,
		Count:   len(bucket.Entries),
	}
	if payload.Count > 0 {
		payload.Average = float64(total) / float64(payload.Count)
	}

	var selected diary.Entry
	var found bool
	if date := c.Query("date"); date != "" {
		selected, found = diary.EntryForDate(bucket.Entries, date)
	} else {
		selected, found = bucket.Latest()
	}
	if found {
		payload.Selected = &selectedEntry{
			entryPayload:    toEntryPayload(selected),
			DescriptionHTML: service.RenderDescription(selected.Description),
		}
	}

	respondSuccess(c, http.StatusOK, payload)
}
