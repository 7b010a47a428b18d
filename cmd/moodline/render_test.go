package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/moodline/internal/diary"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func novemberBucket() diary.MonthBucket {
	return diary.BucketForMonth([]diary.Entry{
		{Date: "2025-11-30", Line: "마무리 잘 했다", Score: 90, Description: "멋진 한 달이었어요"},
		{Date: "2025-11-01", Line: "새 달 시작", Score: 40},
		{Date: "2025-11-15", Line: "보통의 하루", Score: 70},
	}, 2025, 10)
}

func TestRenderCalendar(t *testing.T) {
	var buf bytes.Buffer
	renderCalendar(&buf, novemberBucket())

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.GreaterOrEqual(t, len(lines), 4)
	assert.Equal(t, "2025년 11월", lines[0])

	// 2025-11-01 是周六，第一周只有一天
	assert.Equal(t, strings.Repeat("    ", 6)+"  1", lines[2])
	assert.Equal(t, strings.Repeat("    ", 6)+" 40", lines[3])

	// 30 天 + 6 个空位 = 6 周
	assert.Len(t, lines, 2+6*2)
	assert.Equal(t, " 30", lines[len(lines)-2])
	assert.Equal(t, " 90", lines[len(lines)-1])
}

func TestRenderGraph(t *testing.T) {
	var buf bytes.Buffer
	renderGraph(&buf, novemberBucket())

	out := buf.String()
	assert.Contains(t, out, "2025-11-01   40점  x=  20.0 y= 116.0")
	assert.Contains(t, out, "2025-11-30   90점  x= 280.0 y=  36.0")

	buf.Reset()
	renderGraph(&buf, diary.BucketForMonth(nil, 2025, 1))
	assert.Contains(t, buf.String(), "기록이 없어요.")
}

func TestCheckCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)

	require.NoError(t, runCheck(cmd, []string{"오늘은", "맑음"}))
	assert.Contains(t, out.String(), "6 / 50")

	out.Reset()
	err := runCheck(cmd, []string{"ㅋㅋㅋ"})
	require.Error(t, err)
	assert.Equal(t, diary.ReasonJamoOnly.Message(), describeError(err))
}
