package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/moodline/internal/diary"
)

func TestDiaryServiceCreateAndListMonth(t *testing.T) {
	gdb := setupServiceTestDB(t)
	member := createTestMember(t, gdb, 1001)
	other := createTestMember(t, gdb, 2002)
	svc := NewDiaryService(gdb, nil)

	inputs := []EntryInput{
		{Date: "2025-11-30", Line: "마무리 잘 했다", Score: 90},
		{Date: "2025-11-01", Line: "  새 달 시작  ", Score: 40, Description: "<i>좋은</i> 출발이에요"},
		{Date: "2025-10-31", Line: "할로윈 파티", Score: 55},
		{Date: "2025-11-15", Line: "보통의 하루", Score: 70},
	}
	for _, input := range inputs {
		if _, err := svc.Create(member.ID, input); err != nil {
			t.Fatalf("Create(%s) returned error: %v", input.Date, err)
		}
	}
	if _, err := svc.Create(other.ID, EntryInput{Date: "2025-11-02", Line: "남의 일기", Score: 10}); err != nil {
		t.Fatalf("Create for other member returned error: %v", err)
	}

	entries, err := svc.ListMonth(member.ID, 2025, 11)
	if err != nil {
		t.Fatalf("ListMonth returned error: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}

	wantDates := []string{"2025-11-01", "2025-11-15", "2025-11-30"}
	for i, entry := range entries {
		if entry.Date != wantDates[i] {
			t.Fatalf("entry %d: expected %s, got %s", i, wantDates[i], entry.Date)
		}
	}
	if entries[0].Line != "새 달 시작" {
		t.Fatalf("expected trimmed line, got %q", entries[0].Line)
	}
	if entries[0].Description != "좋은 출발이에요" {
		t.Fatalf("expected sanitized description, got %q", entries[0].Description)
	}

	if _, err := svc.ListMonth(member.ID, 2025, 13); !errors.Is(err, ErrInvalidEntry) {
		t.Fatalf("expected ErrInvalidEntry for month 13, got %v", err)
	}
}

func TestDiaryServiceCreateIsAppendOnly(t *testing.T) {
	gdb := setupServiceTestDB(t)
	member := createTestMember(t, gdb, 1001)
	svc := NewDiaryService(gdb, nil)

	if _, err := svc.Create(member.ID, EntryInput{Date: "2025-11-01", Line: "첫 기록", Score: 50}); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	_, err := svc.Create(member.ID, EntryInput{Date: "2025-11-01", Line: "덮어쓰기", Score: 99})
	if !errors.Is(err, ErrEntryExists) {
		t.Fatalf("expected ErrEntryExists, got %v", err)
	}

	entry, err := svc.Get(member.ID, "2025-11-01")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if entry.Line != "첫 기록" || entry.Score != 50 {
		t.Fatalf("entry should be unchanged, got %+v", entry)
	}
}

func TestDiaryServiceCreateRejectsInvalidInput(t *testing.T) {
	gdb := setupServiceTestDB(t)
	member := createTestMember(t, gdb, 1001)
	svc := NewDiaryService(gdb, nil)

	cases := []struct {
		name  string
		input EntryInput
	}{
		{name: "jamo", input: EntryInput{Date: "2025-11-01", Line: "ㅋㅋㅋㅋ", Score: 10}},
		{name: "score", input: EntryInput{Date: "2025-11-01", Line: "좋은 하루", Score: 101}},
		{name: "negative score", input: EntryInput{Date: "2025-11-01", Line: "좋은 하루", Score: -1}},
		{name: "date format", input: EntryInput{Date: "2025/11/01", Line: "좋은 하루", Score: 10}},
		{name: "non canonical date", input: EntryInput{Date: "2025-11-1", Line: "좋은 하루", Score: 10}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Create(member.ID, tc.input); !errors.Is(err, ErrInvalidEntry) {
				t.Fatalf("expected ErrInvalidEntry, got %v", err)
			}
		})
	}

	_, err := svc.Create(member.ID, EntryInput{Date: "2025-11-01", Line: "ab", Score: 10})
	var rejected *diary.RejectedError
	if !errors.As(err, &rejected) || rejected.Reason != diary.ReasonTooShort {
		t.Fatalf("expected too_short rejection, got %v", err)
	}
}

func TestDiaryServiceGetNotFound(t *testing.T) {
	gdb := setupServiceTestDB(t)
	member := createTestMember(t, gdb, 1001)
	svc := NewDiaryService(gdb, nil)

	if _, err := svc.Get(member.ID, "2025-11-02"); !errors.Is(err, ErrEntryNotFound) {
		t.Fatalf("expected ErrEntryNotFound, got %v", err)
	}
	ok, err := svc.HasEntryOn(member.ID, "2025-11-02")
	if err != nil || ok {
		t.Fatalf("expected no entry, got ok=%v err=%v", ok, err)
	}
}

func TestDiaryServiceWrite(t *testing.T) {
	gdb := setupServiceTestDB(t)
	member := createTestMember(t, gdb, 1001)

	seoul := time.FixedZone("KST", 9*60*60)
	// UTC 기준으로는 아직 11월 14일이지만 KST로는 15일
	now := time.Date(2025, 11, 14, 16, 30, 0, 0, time.UTC)
	analyzer := &fakeAnalyzer{result: Analysis{Score: 67, Description: "오늘도 수고했어요"}}
	svc := NewDiaryService(gdb, analyzer).
		WithClock(func() time.Time { return now }).
		WithLocation(seoul)

	entry, err := svc.Write(context.Background(), member.ID, "  산책하고 커피 마셨다 ")
	if err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	if entry.Date != "2025-11-15" {
		t.Fatalf("expected KST date, got %s", entry.Date)
	}
	if entry.Score != 67 || entry.Description != "오늘도 수고했어요" {
		t.Fatalf("unexpected entry: %+v", entry)
	}
	if analyzer.lastText != "산책하고 커피 마셨다" {
		t.Fatalf("expected trimmed text to be analyzed, got %q", analyzer.lastText)
	}

	if _, err := svc.Write(context.Background(), member.ID, "두 번째 기록"); !errors.Is(err, ErrEntryExists) {
		t.Fatalf("expected ErrEntryExists, got %v", err)
	}
	if analyzer.calls != 1 {
		t.Fatalf("analyzer should not run for an existing day, calls=%d", analyzer.calls)
	}
}

func TestDiaryServiceWriteSanitizesDescriptionOnce(t *testing.T) {
	gdb := setupServiceTestDB(t)
	now := time.Date(2025, 11, 15, 9, 0, 0, 0, time.UTC)

	cases := []struct {
		name        string
		userKey     int64
		description string
		want        string
	}{
		{name: "markup stripped", userKey: 2001, description: "<b>오늘</b>도 수고했어요", want: "오늘도 수고했어요"},
		{name: "escaped text kept as text", userKey: 2002, description: "&lt;b&gt;x", want: "<b>x"},
		{name: "long text truncated", userKey: 2003, description: strings.Repeat("좋", maxAnalysisDescriptionRune+5), want: strings.Repeat("좋", maxAnalysisDescriptionRune)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			member := createTestMember(t, gdb, tc.userKey)
			analyzer := &fakeAnalyzer{result: Analysis{Score: 50, Description: tc.description}}
			svc := NewDiaryService(gdb, analyzer).
				WithClock(func() time.Time { return now }).
				WithLocation(time.UTC)

			entry, err := svc.Write(context.Background(), member.ID, "산책하고 커피 마셨다")
			if err != nil {
				t.Fatalf("Write returned error: %v", err)
			}
			if entry.Description != tc.want {
				t.Fatalf("expected description %q, got %q", tc.want, entry.Description)
			}

			stored, err := svc.Get(member.ID, entry.Date)
			if err != nil {
				t.Fatalf("Get returned error: %v", err)
			}
			if stored.Description != tc.want {
				t.Fatalf("expected stored description %q, got %q", tc.want, stored.Description)
			}
		})
	}
}

func TestDiaryServiceWriteSkipsAnalyzerForRejectedText(t *testing.T) {
	gdb := setupServiceTestDB(t)
	member := createTestMember(t, gdb, 1001)
	analyzer := &fakeAnalyzer{result: Analysis{Score: 10}}
	svc := NewDiaryService(gdb, analyzer)

	if _, err := svc.Write(context.Background(), member.ID, "ㅠㅠㅠㅠ"); !errors.Is(err, ErrInvalidEntry) {
		t.Fatalf("expected ErrInvalidEntry, got %v", err)
	}
	if analyzer.calls != 0 {
		t.Fatalf("analyzer should not be called, calls=%d", analyzer.calls)
	}
}

func TestDiaryServiceWritePropagatesAnalyzerFailure(t *testing.T) {
	gdb := setupServiceTestDB(t)
	member := createTestMember(t, gdb, 1001)
	analyzer := &fakeAnalyzer{err: ErrAnalysisFailed}
	svc := NewDiaryService(gdb, analyzer)

	if _, err := svc.Write(context.Background(), member.ID, "오늘은 비가 왔다"); !errors.Is(err, ErrAnalysisFailed) {
		t.Fatalf("expected ErrAnalysisFailed, got %v", err)
	}
	ok, err := svc.HasEntryOn(member.ID, svc.Today())
	if err != nil || ok {
		t.Fatalf("nothing should be persisted, ok=%v err=%v", ok, err)
	}
}
