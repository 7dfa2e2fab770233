package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/ogurasousui/daily-report/internal/adapters/repository/postgres"
	"github.com/ogurasousui/daily-report/internal/core/employee"
	"github.com/ogurasousui/daily-report/internal/core/report"
	"github.com/ogurasousui/daily-report/internal/platform/config"
	pg "github.com/ogurasousui/daily-report/internal/platform/db/postgres"
	"github.com/ogurasousui/daily-report/internal/platform/logger"
	"github.com/ogurasousui/daily-report/internal/platform/metrics"
	"github.com/ogurasousui/daily-report/internal/platform/password"
	"github.com/ogurasousui/daily-report/internal/platform/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "assets/local.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, closeLog := logger.New(cfg.Log)
	defer closeLog()

	dbPool, err := pg.NewPool(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to initialize database pool", zap.Error(err))
	}
	defer dbPool.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder, err := metrics.NewRecorder(reg)
	if err != nil {
		logr.Fatal("failed to register metrics", zap.Error(err))
	}

	// サービスを組み立てて配線を検証する。業務 API の公開は dailyctl が担う。
	txManager := pg.NewTransactionManager(dbPool, logr)
	employeeSvc := employee.NewService(
		postgres.NewEmployeeRepository(dbPool),
		password.NewHasher(),
		nil,
		txManager,
		employee.WithLogger(logr),
		employee.WithMetrics(recorder),
	)
	reportSvc := report.NewService(
		postgres.NewReportRepository(dbPool),
		postgres.NewLikeRepository(dbPool),
		nil,
		txManager,
		report.WithLogger(logr),
		report.WithMetrics(recorder),
	)
	if err := logCounts(ctx, logr, employeeSvc, reportSvc); err != nil {
		logr.Warn("failed to read initial counts", zap.Error(err))
	}

	grpcServer := server.New(cfg.Server.ListenAddr, dbPool, cfg.Server.HealthInterval, logr)
	metricsServer := &http.Server{
		Addr:              cfg.Server.MetricsAddr,
		Handler:           metricsMux(reg),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return grpcServer.Run(gctx)
	})
	g.Go(func() error {
		logr.Info("metrics listening", zap.String("addr", cfg.Server.MetricsAddr))
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return metricsServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logr.Fatal("server stopped with error", zap.Error(err))
	}
	logr.Info("server stopped gracefully")
}

func metricsMux(reg *prometheus.Registry) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	return mux
}

func logCounts(ctx context.Context, logr *zap.Logger, employees employee.UseCase, reports report.UseCase) error {
	activeEmployees, err := employees.CountEmployees(ctx)
	if err != nil {
		return err
	}
	totalReports, err := reports.CountReports(ctx)
	if err != nil {
		return err
	}
	logr.Info("store ready",
		zap.Int64("active_employees", activeEmployees),
		zap.Int64("reports", totalReports),
	)
	return nil
}
