package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/moodline/internal/client"
	"github.com/moodline/internal/diary"
	"github.com/moodline/internal/failure"
	"github.com/spf13/cobra"
)

type cliConfig struct {
	Server  string        `env:"MOODLINE_SERVER" envDefault:"http://localhost:8080"`
	UserKey int64         `env:"MOODLINE_USER_KEY"`
	Timeout time.Duration `env:"MOODLINE_TIMEOUT" envDefault:"90s"`
}

var (
	cfg          cliConfig
	statsYear    int
	statsMonth   int
	statsGraph   bool
	loginCode    string
	loginReferer string
)

var rootCmd = &cobra.Command{
	Use:           "moodline",
	Short:         "한 줄 일기를 쓰고 월별 감정 통계를 확인합니다",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var checkCmd = &cobra.Command{
	Use:   "check [line]",
	Short: "서버에 보내지 않고 입력을 검사합니다",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCheck,
}

var writeCmd = &cobra.Command{
	Use:   "write [line]",
	Short: "오늘의 한 줄 일기를 저장합니다",
	Long: `입력을 검사한 뒤 서버에서 감정 점수를 매기고 저장합니다.
하루에 한 번만 쓸 수 있으며 저장된 일기는 수정하거나 삭제할 수 없습니다.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWrite,
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "인가 코드로 로그인하고 userKey를 출력합니다",
	RunE:  runLogin,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "월별 달력과 감정 그래프를 출력합니다",
	Example: `  moodline stats --year 2025 --month 11
  moodline stats --graph`,
	RunE: runStats,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfg.Server, "server", "", "moodline 서버 주소 (MOODLINE_SERVER)")
	rootCmd.PersistentFlags().Int64Var(&cfg.UserKey, "user-key", 0, "로그인된 userKey (MOODLINE_USER_KEY)")
	rootCmd.PersistentFlags().DurationVar(&cfg.Timeout, "timeout", 0, "요청 제한 시간")

	now := time.Now()
	statsCmd.Flags().IntVar(&statsYear, "year", now.Year(), "연도")
	statsCmd.Flags().IntVar(&statsMonth, "month", int(now.Month()), "월 (1-12)")
	statsCmd.Flags().BoolVar(&statsGraph, "graph", false, "그래프 좌표도 함께 출력")

	loginCmd.Flags().StringVar(&loginCode, "code", client.MockAuthorizationCode, "인가 코드")
	loginCmd.Flags().StringVar(&loginReferer, "referrer", "SANDBOX", "DEFAULT 또는 SANDBOX")

	rootCmd.AddCommand(checkCmd, writeCmd, loginCmd, statsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, describeError(err))
		os.Exit(1)
	}
}

// loadConfig 合并环境变量与命令行参数，命令行优先。
func loadConfig() (cliConfig, error) {
	var fromEnv cliConfig
	if err := env.Parse(&fromEnv); err != nil {
		return cliConfig{}, fmt.Errorf("parse environment: %w", err)
	}
	merged := fromEnv
	if strings.TrimSpace(cfg.Server) != "" {
		merged.Server = strings.TrimSpace(cfg.Server)
	}
	if cfg.UserKey != 0 {
		merged.UserKey = cfg.UserKey
	}
	if cfg.Timeout > 0 {
		merged.Timeout = cfg.Timeout
	}
	if merged.Timeout <= 0 {
		merged.Timeout = 90 * time.Second
	}
	return merged, nil
}

func newClient() (*client.Client, context.Context, context.CancelFunc, error) {
	conf, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), conf.Timeout)
	return client.New(conf.Server, client.WithUserKey(conf.UserKey)), ctx, cancel, nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	line := strings.Join(args, " ")
	out := cmd.OutOrStdout()

	result := diary.Validate(line)
	fmt.Fprintf(out, "글자 수: %s\n", diary.CharacterCountDisplay(line))
	if !result.Accepted {
		return &diary.RejectedError{Reason: result.Reason}
	}
	fmt.Fprintln(out, "저장할 수 있어요.")
	return nil
}

func runWrite(cmd *cobra.Command, args []string) error {
	line := strings.Join(args, " ")
	if result := diary.Validate(line); !result.Accepted {
		return result.Err()
	}

	c, ctx, cancel, err := newClient()
	if err != nil {
		return err
	}
	defer cancel()

	entry, err := c.Write(ctx, line)
	if err != nil {
		return err
	}

	renderEntry(cmd.OutOrStdout(), entry)
	return nil
}

func runLogin(cmd *cobra.Command, args []string) error {
	c, ctx, cancel, err := newClient()
	if err != nil {
		return err
	}
	defer cancel()

	userKey, err := c.Login(ctx, loginCode, loginReferer)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "userKey: %d\nexport MOODLINE_USER_KEY=%d\n", userKey, userKey)
	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	if statsMonth < 1 || statsMonth > 12 {
		return fmt.Errorf("--month must be between 1 and 12, got %d", statsMonth)
	}

	c, ctx, cancel, err := newClient()
	if err != nil {
		return err
	}
	defer cancel()

	entries, err := c.MonthlyEntries(ctx, statsYear, statsMonth-1)
	if err != nil {
		return err
	}

	bucket := diary.BucketForMonth(entries, statsYear, statsMonth-1)
	out := cmd.OutOrStdout()
	renderCalendar(out, bucket)
	if statsGraph {
		fmt.Fprintln(out)
		renderGraph(out, bucket)
	}
	if latest, ok := bucket.Latest(); ok {
		fmt.Fprintln(out)
		renderEntry(out, latest)
	}
	return nil
}

func describeError(err error) string {
	var rejected *diary.RejectedError
	if errors.As(err, &rejected) {
		return rejected.Reason.Message()
	}
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.IsConflict() {
		return "오늘은 이미 일기를 작성했어요."
	}
	kind := failure.Classify(err)
	if kind == failure.Generic {
		return err.Error()
	}
	return fmt.Sprintf("%s (%v)", kind.Message(), err)
}
