package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/moodline/internal/diary"
	"github.com/moodline/internal/service"
)

type entryPayload struct {
	Date        string `json:"date"`
	Line        string `json:"line"`
	Score       int    `json:"score"`
	Description string `json:"description"`
}

type createEntryRequest struct {
	Date        string `json:"date" binding:"required"`
	Line        string `json:"line"`
	Score       *int   `json:"score" binding:"required"`
	Description string `json:"description"`
}

type lineRequest struct {
	Line string `json:"line"`
}

func toEntryPayload(entry diary.Entry) entryPayload {
	return entryPayload{
		Date:        entry.Date,
		Line:        entry.Line,
		Score:       entry.Score,
		Description: entry.Description,
	}
}

// ListScores 返回某月的全部日记，month 为 1-12，year 缺省为今年。
func (a *API) ListScores(c *gin.Context) {
	member := currentMember(c)
	today, _ := diary.ParseDate(a.diaries.Today())

	month, err := parseIntQuery(c, "month", 0)
	if err != nil || month < 1 || month > 12 {
		respondError(c, http.StatusBadRequest, "INVALID_MONTH", "month는 1에서 12 사이여야 해요.")
		return
	}
	year, err := parseIntQuery(c, "year", today.Year())
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_YEAR", "year 형식이 올바르지 않아요.")
		return
	}

	entries, err := a.diaries.ListMonth(member.ID, year, month)
	if err != nil {
		handleDiaryError(c, err)
		return
	}

	items := make([]entryPayload, 0, len(entries))
	for _, entry := range entries {
		items = append(items, toEntryPayload(entry))
	}
	respondSuccess(c, http.StatusOK, items)
}

// GetScore 返回指定日期的日记
func (a *API) GetScore(c *gin.Context) {
	entry, err := a.diaries.Get(currentMember(c).ID, c.Param("date"))
	if err != nil {
		handleDiaryError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, toEntryPayload(entry))
}

// CreateScore 追加保存一条已评分的日记。
func (a *API) CreateScore(c *gin.Context) {
	var req createEntryRequest
	if !bindJSON(c, &req) {
		return
	}

	entry, err := a.diaries.Create(currentMember(c).ID, service.EntryInput{
		Date:        strings.TrimSpace(req.Date),
		Line:        req.Line,
		Score:       *req.Score,
		Description: req.Description,
	})
	if err != nil {
		handleDiaryError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, toEntryPayload(entry))
}

// ValidateLine 返回输入校验结果与字数显示
func (a *API) ValidateLine(c *gin.Context) {
	var req lineRequest
	if !bindJSON(c, &req) {
		return
	}

	result := diary.Validate(req.Line)
	respondSuccess(c, http.StatusOK, gin.H{
		"accepted":  result.Accepted,
		"reason":    result.Reason,
		"message":   result.Reason.Message(),
		"count":     diary.CharacterCount(req.Line),
		"display":   diary.CharacterCountDisplay(req.Line),
		"canSubmit": diary.CanSubmit(req.Line),
	})
}

// AnalyzeLine 对一行日记评分，但不保存。
func (a *API) AnalyzeLine(c *gin.Context) {
	var req lineRequest
	if !bindJSON(c, &req) {
		return
	}

	analysis, err := a.diaries.Analyze(c.Request.Context(), req.Line)
	if err != nil {
		handleDiaryError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, analysis)
}

// WriteDiary 完成今日日记的校验、评分与保存。
func (a *API) WriteDiary(c *gin.Context) {
	var req lineRequest
	if !bindJSON(c, &req) {
		return
	}

	entry, err := a.diaries.Write(c.Request.Context(), currentMember(c).ID, req.Line)
	if err != nil {
		handleDiaryError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, toEntryPayload(entry))
}

// Today 返回今天的日期以及是否已经写过。
func (a *API) Today(c *gin.Context) {
	today := a.diaries.Today()
	written, err := a.diaries.HasEntryOn(currentMember(c).ID, today)
	if err != nil {
		handleDiaryError(c, err)
		return
	}

	payload := gin.H{"date": today, "written": written}
	if written {
		if entry, err := a.diaries.Get(currentMember(c).ID, today); err == nil {
			payload["entry"] = toEntryPayload(entry)
		}
	}
	respondSuccess(c, http.StatusOK, payload)
}
