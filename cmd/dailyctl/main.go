// dailyctl は日報システムの管理用 CLI です。結果は JSON で標準出力に書き出します。
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/ogurasousui/daily-report/internal/adapters/repository/postgres"
	"github.com/ogurasousui/daily-report/internal/core/employee"
	"github.com/ogurasousui/daily-report/internal/core/report"
	"github.com/ogurasousui/daily-report/internal/platform/config"
	pg "github.com/ogurasousui/daily-report/internal/platform/db/postgres"
	"github.com/ogurasousui/daily-report/internal/platform/logger"
	"github.com/ogurasousui/daily-report/internal/platform/password"
	"go.uber.org/zap"
)

const usage = `usage: dailyctl [-config path] <command> [flags]

commands:
  employee list|show|create|update|destroy
  report   list|show|create|update
  like     add|remove|toggle
  login`

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("dailyctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "path to config file (defaults to CONFIG_PATH env or assets/local.yaml)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(stderr, usage)
		return 2
	}

	cfg, err := config.Load(effectiveConfigPath(*configPath))
	if err != nil {
		fmt.Fprintf(stderr, "failed to load config: %v\n", err)
		return 1
	}

	// JSON 出力と混ざらないようログは標準エラーへ
	logr, closeLog := logger.NewWithWriter(cfg.Log, stderr)
	defer closeLog()

	pool, err := pg.NewPool(ctx, cfg.Database)
	if err != nil {
		logr.Error("failed to initialize database pool", zap.Error(err))
		return 1
	}
	defer pool.Close()

	tx := pg.NewTransactionManager(pool, logr)
	a := &app{
		employees: employee.NewService(
			postgres.NewEmployeeRepository(pool),
			password.NewHasher(),
			nil,
			tx,
			employee.WithLogger(logr),
		),
		reports: report.NewService(
			postgres.NewReportRepository(pool),
			postgres.NewLikeRepository(pool),
			nil,
			tx,
			report.WithLogger(logr),
		),
		pepper:   cfg.App.Pepper,
		pageSize: cfg.App.PageSize,
		out:      stdout,
		errOut:   stderr,
	}

	return exitCode(a.dispatch(ctx, fs.Args()), stderr)
}

func effectiveConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv("CONFIG_PATH"); env != "" {
		return env
	}
	return "assets/local.yaml"
}

var (
	errUsage      = errors.New("invalid usage")
	errValidation = errors.New("validation failed")
	errNotFound   = errors.New("not found")
)

func exitCode(err error, stderr io.Writer) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errValidation):
		return 3
	case errors.Is(err, errUsage):
		fmt.Fprintf(stderr, "%v\n%s\n", err, usage)
		return 2
	default:
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
}
