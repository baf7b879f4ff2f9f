package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	v1 "github.com/PaulBabatuyi/surepay-gRPC/api/surepay/v1"
	"github.com/PaulBabatuyi/surepay-gRPC/internal/auth"
	"github.com/PaulBabatuyi/surepay-gRPC/internal/blob"
	"github.com/PaulBabatuyi/surepay-gRPC/internal/config"
	"github.com/PaulBabatuyi/surepay-gRPC/internal/data"
	"github.com/PaulBabatuyi/surepay-gRPC/internal/db"
	"github.com/PaulBabatuyi/surepay-gRPC/internal/identity"
	"github.com/PaulBabatuyi/surepay-gRPC/internal/lifecycle"
	"github.com/PaulBabatuyi/surepay-gRPC/internal/logger"
	"github.com/PaulBabatuyi/surepay-gRPC/internal/metrics"
	"github.com/PaulBabatuyi/surepay-gRPC/internal/middleware"
	"github.com/PaulBabatuyi/surepay-gRPC/internal/session"
	"github.com/PaulBabatuyi/surepay-gRPC/internal/thread"
	"github.com/redis/go-redis/v9"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}
	log := logger.Init(cfg.LogLevel, cfg.LogFormat)

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	// Graceful shutdown on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		return fmt.Errorf("connect to DB: %w", err)
	}
	defer func() {
		_ = dbClient.Close(context.Background())
	}()
	if err := dbClient.CreateIndexes(ctx); err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}

	m := metrics.New()

	users := data.NewUsersStore(dbClient.UsersCollection())
	accounts := data.NewAccountsStore(dbClient.AccountsCollection())
	msgs := data.NewMessagesStore(dbClient.MessagesCollection())
	txns := data.NewTransactionsStore(dbClient.TransactionsCollection())

	var jwtMgr *auth.JWTManager
	if len(cfg.JWTKeys) > 0 {
		jwtMgr = auth.NewJWTManagerFromKeys(cfg.JWTKeys, cfg.JWTActiveKid, cfg.TokenTTL)
	} else {
		jwtMgr = auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	}

	// Without Redis every notification and revocation stays in this process.
	var broker thread.Broker = thread.NewHub()
	var denylist auth.Denylist = auth.NewMemoryDenylist()
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("parse REDIS_URL: %w", err)
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		rb, err := thread.NewRedisBroker(ctx, rdb, log)
		if err != nil {
			return fmt.Errorf("subscribe thread channels: %w", err)
		}
		defer rb.Close()
		broker = rb
		denylist = auth.NewRedisDenylist(rdb)
		log.Info("redis enabled for thread notifications and token revocation")
	}

	syncer := thread.NewSyncer(msgs, broker, log, m)

	provider := identity.NewProvider(accounts, jwtMgr, identity.LogMailer{Log: log}, cfg.VerifyURL)
	sessions := session.NewRegistry(func() *session.Gate {
		return session.NewGate(provider, users, cfg.RequireEmailVerification, log)
	})
	go sessions.Run(ctx, time.Minute)

	bookings := lifecycle.NewEngine[*data.Booking]("booking", data.NewBookingsStore(dbClient.BookingsCollection()), log)
	requests := lifecycle.NewEngine[*data.Request]("request", data.NewRequestsStore(dbClient.RequestsCollection()), log)
	bookings.OnTransition(countTransitions[*data.Booking](m, bookings.Kind()))
	requests.OnTransition(countTransitions[*data.Request](m, requests.Kind()))
	if cfg.NotifyOnTransition {
		bookings.OnTransition(notifyOwner[*data.Booking](syncer, bookings.Kind()))
		requests.OnTransition(notifyOwner[*data.Request](syncer, requests.Kind()))
	}

	uploader := blob.NewUploader(blob.Config{
		URL:          cfg.UploadURL,
		Preset:       cfg.UploadPreset,
		MaxDimension: cfg.UploadMaxDimension,
		Timeout:      cfg.UploadTimeout,
	})

	serving, stopServing := context.WithCancel(context.Background())
	defer stopServing()
	srv := newServer(serverDeps{
		Lifetime:     serving,
		Verifier:     provider,
		Sessions:     sessions,
		Tokens:       jwtMgr,
		Denylist:     denylist,
		Bookings:     bookings,
		Requests:     requests,
		Chat:         syncer,
		Uploader:     uploader,
		Transactions: txns,
		Metrics:      m,
		Log:          log,
	})

	// small burst to allow a couple of quick retries
	limiterStore := middleware.NewLimiterStore(cfg.RateLimitRPM, 3, time.Minute)
	defer limiterStore.Stop()

	var serverOpts []grpc.ServerOption
	if cfg.TLSEnabled() {
		creds, err := credentials.NewServerTLSFromFile(cfg.TLSCert, cfg.TLSKey)
		if err != nil {
			return fmt.Errorf("load TLS certs: %w", err)
		}
		serverOpts = append(serverOpts, grpc.Creds(creds))
	}

	authn := &authenticator{tokens: jwtMgr, denylist: denylist, sessions: sessions}
	grpcServer, healthSrv := newGRPCServer(srv, authn, limiterStore, log, m, serverOpts...)

	lis, err := net.Listen("tcp", ":"+cfg.Port)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	httpSrv := &http.Server{
		Addr:              cfg.MetricsAddr,
		Handler:           opsHandler(m, dbClient),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 2)
	go func() {
		log.Info("gRPC server listening", "addr", lis.Addr().String(), "tls", cfg.TLSEnabled())
		errCh <- grpcServer.Serve(lis)
	}()
	go func() {
		log.Info("metrics server listening", "addr", cfg.MetricsAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		log.Error("server failed", "err", err)
	}

	log.Info("shutting down")
	healthSrv.Shutdown()
	stopServing()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	_ = httpSrv.Shutdown(shutdownCtx)
	if !stopGRPC(grpcServer, shutdownTimeout) {
		log.Warn("gRPC drain timed out; connections closed", "timeout", shutdownTimeout)
	}
	return nil
}

const shutdownTimeout = 10 * time.Second

// stopGRPC drains in-flight RPCs and forces the server closed if they are
// still running after timeout. It reports whether the drain finished in time.
func stopGRPC(s *grpc.Server, timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		s.GracefulStop()
		close(done)
	}()

	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-done:
		return true
	case <-t.C:
		s.Stop()
		<-done
		return false
	}
}

// newGRPCServer builds the server with the interceptor chain
// logging -> rate limiter -> auth, SurePayService and the health service.
func newGRPCServer(srv *Server, authn *authenticator, limiter *middleware.LimiterStore, log *slog.Logger, m *metrics.Metrics, opts ...grpc.ServerOption) (*grpc.Server, *health.Server) {
	opts = append(opts,
		grpc.ChainUnaryInterceptor(
			middleware.LoggingUnaryInterceptor(log, m),
			middleware.RateLimitUnaryInterceptor(limiter, rateLimitedMethods),
			authUnaryInterceptor(authn),
		),
		grpc.ChainStreamInterceptor(
			middleware.LoggingStreamInterceptor(log, m),
			authStreamInterceptor(authn),
		),
	)
	grpcServer := grpc.NewServer(opts...)
	registerService(grpcServer, srv)

	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthSrv)
	healthSrv.SetServingStatus(v1.ServiceName, healthpb.HealthCheckResponse_SERVING)
	return grpcServer, healthSrv
}

// pinger is the DB liveness check behind /healthz.
type pinger interface {
	Ping(ctx context.Context) error
}

// opsHandler serves /metrics and /healthz.
func opsHandler(m *metrics.Metrics, db pinger) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			http.Error(w, "db unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	})
	return mux
}
