package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/moodline/internal/db"
	"github.com/moodline/internal/diary"
	"github.com/moodline/internal/logging"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// EntryInput 定义保存一行日记时的输入。
type EntryInput struct {
	Date        string
	Line        string
	Score       int
	Description string
}

// DiaryService 负责日记的查询与追加写入，不提供修改与删除。
type DiaryService struct {
	db       *gorm.DB
	analyzer Analyzer
	now      func() time.Time
	location *time.Location
}

// NewDiaryService 构造 DiaryService，analyzer 为 nil 时 Write/Analyze 不可用。
func NewDiaryService(gdb *gorm.DB, analyzer Analyzer) *DiaryService {
	return &DiaryService{
		db:       gdb,
		analyzer: analyzer,
		now:      time.Now,
		location: time.Local,
	}
}

// WithClock 允许在测试中固定“今天”。
func (s *DiaryService) WithClock(now func() time.Time) *DiaryService {
	if now != nil {
		s.now = now
	}
	return s
}

// WithLocation 指定计算“今天”所用的时区。
func (s *DiaryService) WithLocation(loc *time.Location) *DiaryService {
	if loc != nil {
		s.location = loc
	}
	return s
}

// Today 返回当前时区下今天的规范日期。
func (s *DiaryService) Today() string {
	return diary.FormatDate(s.now().In(s.location))
}

// ListMonth 返回某月的全部日记，month 为 1-12。
func (s *DiaryService) ListMonth(memberID uint, year, month int) ([]diary.Entry, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("%w: month %d out of range", ErrInvalidEntry, month)
	}

	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	next := first.AddDate(0, 1, 0)

	var records []db.DiaryEntry
	if err := s.db.Where("member_id = ?", memberID).
		Where("date >= ? AND date < ?", diary.FormatDate(first), diary.FormatDate(next)).
		Order("date ASC").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list diary entries: %w", err)
	}

	entries := make([]diary.Entry, 0, len(records))
	for _, record := range records {
		entries = append(entries, toEntry(record))
	}
	return diary.BucketForMonth(entries, year, month-1).Entries, nil
}

// Get 返回指定日期的日记
func (s *DiaryService) Get(memberID uint, date string) (diary.Entry, error) {
	if _, err := canonicalDate(date); err != nil {
		return diary.Entry{}, err
	}

	var record db.DiaryEntry
	if err := s.db.Where("member_id = ? AND date = ?", memberID, date).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return diary.Entry{}, ErrEntryNotFound
		}
		return diary.Entry{}, fmt.Errorf("get diary entry: %w", err)
	}
	return toEntry(record), nil
}

// HasEntryOn 判断指定日期是否已经写过日记
func (s *DiaryService) HasEntryOn(memberID uint, date string) (bool, error) {
	var count int64
	if err := s.db.Model(&db.DiaryEntry{}).
		Where("member_id = ? AND date = ?", memberID, date).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("count diary entries: %w", err)
	}
	return count > 0, nil
}

// Create 追加一条日记。内容需通过校验，同一天重复写入返回 ErrEntryExists。
func (s *DiaryService) Create(memberID uint, input EntryInput) (diary.Entry, error) {
	date, err := canonicalDate(input.Date)
	if err != nil {
		return diary.Entry{}, err
	}
	if result := diary.Validate(input.Line); !result.Accepted {
		return diary.Entry{}, fmt.Errorf("%w: %w", ErrInvalidEntry, result.Err())
	}
	if !diary.ValidScore(input.Score) {
		return diary.Entry{}, fmt.Errorf("%w: score %d out of range", ErrInvalidEntry, input.Score)
	}

	exists, err := s.HasEntryOn(memberID, date)
	if err != nil {
		return diary.Entry{}, err
	}
	if exists {
		return diary.Entry{}, ErrEntryExists
	}

	record := db.DiaryEntry{
		MemberID:    memberID,
		Date:        date,
		Line:        diary.Trim(input.Line),
		Score:       input.Score,
		Description: truncateRunes(sanitizeText(input.Description), maxAnalysisDescriptionRune),
	}
	if err := s.db.Create(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return diary.Entry{}, ErrEntryExists
		}
		return diary.Entry{}, fmt.Errorf("create diary entry: %w", err)
	}

	logging.L().Info("diary entry created",
		zap.Uint("member_id", memberID),
		zap.String("date", record.Date),
		zap.Int("score", record.Score),
	)
	return toEntry(record), nil
}

// Analyze 校验后调用分析器，被拒绝的内容不会发往外部服务。
func (s *DiaryService) Analyze(ctx context.Context, line string) (Analysis, error) {
	if result := diary.Validate(line); !result.Accepted {
		return Analysis{}, fmt.Errorf("%w: %w", ErrInvalidEntry, result.Err())
	}
	if s.analyzer == nil {
		return Analysis{}, fmt.Errorf("%w: analyzer not configured", ErrAnalysisFailed)
	}
	return s.analyzer.Analyze(ctx, diary.Trim(line))
}

// Write 完成“校验 → 分析 → 保存”的今日写入流程。今天已写过时不会调用分析器。
func (s *DiaryService) Write(ctx context.Context, memberID uint, line string) (diary.Entry, error) {
	today := s.Today()

	exists, err := s.HasEntryOn(memberID, today)
	if err != nil {
		return diary.Entry{}, err
	}
	if exists {
		return diary.Entry{}, ErrEntryExists
	}

	analysis, err := s.Analyze(ctx, line)
	if err != nil {
		return diary.Entry{}, err
	}

	return s.Create(memberID, EntryInput{
		Date:        today,
		Line:        line,
		Score:       analysis.Score,
		Description: analysis.Description,
	})
}

func canonicalDate(value string) (string, error) {
	parsed, err := diary.ParseDate(value)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidEntry, err)
	}
	if formatted := diary.FormatDate(parsed); formatted != value {
		return "", fmt.Errorf("%w: date %q is not canonical", ErrInvalidEntry, value)
	}
	return value, nil
}

func toEntry(record db.DiaryEntry) diary.Entry {
	return diary.Entry{
		Date:        record.Date,
		Line:        record.Line,
		Score:       record.Score,
		Description: record.Description,
	}
}
