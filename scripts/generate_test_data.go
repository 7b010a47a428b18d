package main

import (
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/moodline/internal/config"
	"github.com/moodline/internal/db"
	"github.com/moodline/internal/diary"
	"github.com/moodline/internal/service"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var sampleLines = []string{
	"아침에 산책하고 커피 마셨다",
	"회의가 길어서 조금 지쳤다",
	"친구랑 오랜만에 저녁을 먹었다",
	"비가 와서 집에서 책을 읽었다",
	"운동을 다녀와서 개운하다",
	"일이 잘 안 풀려서 속상했다",
	"퇴근길에 노을이 예뻤다",
	"새로운 카페를 발견했다",
	"감기 기운이 있어서 일찍 잤다",
	"가족과 통화하고 마음이 따뜻해졌다",
}

var sampleDescriptions = []string{
	"작은 여유가 하루를 **따뜻하게** 만들었네요.",
	"지친 하루였지만 잘 버텨냈어요. 오늘은 푹 쉬어요.",
	"소중한 사람과의 시간은 큰 힘이 되죠.",
	"",
}

type seedOptions struct {
	UserKey int64
	Year    int
	Month   int
	Days    int
	Seed    uint64
}

// 测试数据生成器
func main() {
	if err := newSeedCommand().Execute(); err != nil {
		log.Fatal(err)
	}
}

func newSeedCommand() *cobra.Command {
	var (
		opts      seedOptions
		dbPath    string
		adminUser string
		adminPass string
	)

	cmd := &cobra.Command{
		Use:           "generate_test_data",
		Short:         "为指定用户生成一个月的测试日记",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("配置加载失败: %w", err)
			}

			now := time.Now().In(cfg.Location())
			if !cmd.Flags().Changed("year") {
				opts.Year = now.Year()
			}
			if !cmd.Flags().Changed("month") {
				opts.Month = int(now.Month())
			}
			if strings.TrimSpace(dbPath) == "" {
				dbPath = cfg.DatabasePath
			}

			if err := db.Init(dbPath); err != nil {
				return fmt.Errorf("数据库初始化失败: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "开始生成测试数据...")

			if err := db.EnsureUser(db.DB, adminUser, adminPass); err != nil {
				return fmt.Errorf("创建管理员失败: %w", err)
			}

			created, skipped, err := seedMonth(db.DB, opts)
			if err != nil {
				return fmt.Errorf("生成日记失败: %w", err)
			}

			fmt.Fprintln(out, "测试数据生成完成！")
			fmt.Fprintf(out, "userKey: %d\n", opts.UserKey)
			fmt.Fprintf(out, "%d-%02d: 新增 %d 条，跳过 %d 条已存在的日记\n", opts.Year, opts.Month, created, skipped)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.Int64Var(&opts.UserKey, "user-key", service.SandboxUserKey, "要写入的 userKey")
	flags.IntVar(&opts.Year, "year", 0, "年份，默认今年")
	flags.IntVar(&opts.Month, "month", 0, "月份 (1-12)，默认本月")
	flags.IntVar(&opts.Days, "days", 20, "生成的天数上限")
	flags.Uint64Var(&opts.Seed, "seed", 42, "随机种子")
	flags.StringVar(&dbPath, "db", "", "数据库路径，默认读取 DATABASE_PATH")
	flags.StringVar(&adminUser, "admin-user", "admin", "管理员用户名")
	flags.StringVar(&adminPass, "admin-pass", "", "管理员密码，留空则不创建")
	return cmd
}

// seedMonth 为指定用户在某月随机挑选若干天写入日记，已存在的日期保持不变。
func seedMonth(gdb *gorm.DB, opts seedOptions) (created, skipped int, err error) {
	if opts.Month < 1 || opts.Month > 12 {
		return 0, 0, fmt.Errorf("month %d out of range", opts.Month)
	}

	member := db.Member{UserKey: opts.UserKey, Referrer: service.ReferrerSandbox}
	if err := gdb.Clauses(clause.OnConflict{DoNothing: true}).Create(&member).Error; err != nil {
		return 0, 0, fmt.Errorf("create member: %w", err)
	}
	if err := gdb.Where("user_key = ?", opts.UserKey).First(&member).Error; err != nil {
		return 0, 0, fmt.Errorf("load member: %w", err)
	}

	grid := diary.CalendarGridFor(opts.Year, opts.Month-1)
	rng := rand.New(rand.NewPCG(opts.Seed, uint64(opts.Year*100+opts.Month)))
	days := rng.Perm(grid.DaysInMonth)
	if opts.Days < len(days) {
		days = days[:max(opts.Days, 0)]
	}

	diaries := service.NewDiaryService(gdb, nil)
	for _, offset := range days {
		date := diary.FormatDate(time.Date(opts.Year, time.Month(opts.Month), offset+1, 0, 0, 0, 0, time.UTC))
		_, err := diaries.Create(member.ID, service.EntryInput{
			Date:        date,
			Line:        sampleLines[rng.IntN(len(sampleLines))],
			Score:       rng.IntN(101),
			Description: sampleDescriptions[rng.IntN(len(sampleDescriptions))],
		})
		switch {
		case err == nil:
			created++
		case errors.Is(err, service.ErrEntryExists):
			skipped++
		default:
			return created, skipped, fmt.Errorf("create %s: %w", date, err)
		}
	}
	return created, skipped, nil
}
