package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName はヘルスチェックで公開するサービス名です。
const ServiceName = "daily_report"

const (
	defaultProbeInterval = 10 * time.Second
	probeTimeout         = 3 * time.Second
)

// Pinger はデータベース疎通確認の抽象です。*pgxpool.Pool が満たします。
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server は gRPC サーバーのライフサイクルを管理します。
// データベースへの疎通に応じてヘルスステータスを切り替えます。
type Server struct {
	listenAddr string
	grpcServer *grpc.Server
	health     *health.Server
	pinger     Pinger
	interval   time.Duration
	logger     *zap.Logger

	mu      sync.Mutex
	serving bool
}

// New は指定されたアドレスで待ち受ける gRPC サーバーを構築します。
func New(listenAddr string, pinger Pinger, interval time.Duration, logger *zap.Logger, opts ...grpc.ServerOption) *Server {
	if interval <= 0 {
		interval = defaultProbeInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	srv := grpc.NewServer(opts...)
	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	reflection.Register(srv)

	// 初回の疎通確認までは NOT_SERVING
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)

	return &Server{
		listenAddr: listenAddr,
		grpcServer: srv,
		health:     hs,
		pinger:     pinger,
		interval:   interval,
		logger:     logger,
	}
}

// Run はサーバーを起動し、コンテキストがキャンセルされると GracefulStop します。
func (s *Server) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.listenAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.listenAddr, err)
	}
	return s.Serve(ctx, lis)
}

// Serve は既存のリスナーでサーバーを起動します。
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	s.Probe(ctx)

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				s.health.Shutdown()
				s.grpcServer.GracefulStop()
				return
			case <-ticker.C:
				s.Probe(ctx)
			}
		}
	}()

	s.logger.Info("gRPC server listening", zap.String("addr", lis.Addr().String()))
	if err := s.grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("serve gRPC: %w", err)
	}

	return nil
}

// Probe はデータベースへ疎通確認を行い、結果をヘルスステータスに反映します。
func (s *Server) Probe(ctx context.Context) {
	status := healthpb.HealthCheckResponse_SERVING
	var pingErr error
	if s.pinger != nil {
		pingCtx, cancel := context.WithTimeout(ctx, probeTimeout)
		pingErr = s.pinger.Ping(pingCtx)
		cancel()
	}
	if pingErr != nil {
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	serving := status == healthpb.HealthCheckResponse_SERVING
	if serving != s.serving {
		if serving {
			s.logger.Info("database reachable, serving")
		} else {
			s.logger.Warn("database unreachable, not serving", zap.Error(pingErr))
		}
		s.serving = serving
	}

	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}

// GracefulStop はサーバーを安全に停止します。
func (s *Server) GracefulStop() {
	s.health.Shutdown()
	s.grpcServer.GracefulStop()
}
