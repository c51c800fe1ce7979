package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/hitoshi/postgraph/internal/config"
	"github.com/hitoshi/postgraph/internal/gql"
	"github.com/hitoshi/postgraph/internal/handler"
	"github.com/hitoshi/postgraph/internal/logger"
	"github.com/hitoshi/postgraph/internal/metrics"
	"github.com/hitoshi/postgraph/internal/middleware"
	"github.com/hitoshi/postgraph/internal/mutation"
	"github.com/hitoshi/postgraph/internal/relation"
	"github.com/hitoshi/postgraph/internal/security"
	"github.com/hitoshi/postgraph/internal/seed"
	"github.com/hitoshi/postgraph/internal/store"
	"github.com/hitoshi/postgraph/internal/worker/audit"
)

// Init はアプリケーションの初期化を行う。
// 設定ファイル・環境変数・フラグの順にConfigを読み込み、構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer, flags Flags) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w, logger.Options{})

	// 2. 設定ファイルと環境変数から設定を読み込む
	cfg, err := config.Load(flags.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 3. フラグで上書きする
	if flags.Port != "" {
		cfg.ServerPort = flags.Port
	}
	if flags.SeedFile != "" {
		cfg.SeedFile = flags.SeedFile
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 4. 設定に従ってログを再構成する
	logger.SetupDefault(w, logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドとフラグを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd, rest := ParseCommand(args)
	flags, err := ParseFlags(cmd, rest, os.Stderr)
	if err != nil {
		return err
	}

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := flags.Port
		if port == "" {
			port = os.Getenv("SERVER_PORT")
		}
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w, flags)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
	)

	return runServe(cfg)
}

// Server はワイヤリング済みのHTTPハンドラーとその依存関係を保持する。
type Server struct {
	Handler     http.Handler
	Store       *store.Store
	Seeded      seed.Summary
	Audit       *audit.Job
	rateLimiter *middleware.RateLimiter
}

// Close はバックグラウンドで動作するリソースを解放する。
func (s *Server) Close() {
	s.rateLimiter.Stop()
}

// NewServer は全依存関係をワイヤリングし、HTTPハンドラーを構成する。
// cfg.SeedFileが指定されている場合はストアにシードデータを投入する。
func NewServer(ctx context.Context, cfg *config.Config, log *slog.Logger) (*Server, error) {
	if log == nil {
		log = slog.Default()
	}

	// 1. ストアとメトリクス
	st := store.New()
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(reg)

	// 2. ドメインサービス
	mutations := mutation.NewService(st, log, collector)
	queries := relation.NewResolver(st)

	var summary seed.Summary
	if cfg.SeedFile != "" {
		f, err := seed.LoadFile(cfg.SeedFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load seed file: %w", err)
		}
		summary, err = seed.Apply(ctx, mutations, f)
		if err != nil {
			return nil, fmt.Errorf("failed to apply seed: %w", err)
		}
		log.Info("seed data loaded",
			slog.String("file", cfg.SeedFile),
			slog.Int("users", summary.Users),
			slog.Int("posts", summary.Posts),
			slog.Int("comments", summary.Comments),
		)
	}

	// 3. セキュリティ
	sanitizer := security.NewNopSanitizer()
	if cfg.SanitizeContent {
		sanitizer = security.NewContentSanitizer()
	}

	// 4. GraphQL
	gqlHandler, err := gql.NewHandler(gql.NewResolver(queries, mutations, sanitizer, log), cfg.GraphQLMaxDepth, st)
	if err != nil {
		return nil, fmt.Errorf("failed to build graphql schema: %w", err)
	}

	// 5. ルーター
	rl := middleware.NewRateLimiter(middleware.NewRateLimiterConfig(cfg.RateLimitGeneral, cfg.RateLimitMutation))
	router := handler.NewRouter(&handler.RouterDeps{
		Logger:            log,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rl,
		HTTPMetrics:       collector,
		GraphQLHandler:    gqlHandler,
		MetricsHandler:    metrics.Handler(reg),
		Queries:           queries,
		Mutations:         mutations,
		Sanitizer:         sanitizer,
	})

	return &Server{
		Handler:     router,
		Store:       st,
		Seeded:      summary,
		Audit:       audit.NewJob(st, log, collector),
		rateLimiter: rl,
	}, nil
}

// runServe はAPIサーバーモードで起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	srv, err := NewServer(context.Background(), cfg, slog.Default())
	if err != nil {
		return err
	}
	defer srv.Close()

	// 整合性検査ジョブをバックグラウンドで起動
	auditCtx, stopAudit := context.WithCancel(context.Background())
	defer stopAudit()
	if cfg.AuditInterval > 0 {
		go srv.Audit.Start(auditCtx, cfg.AuditInterval)
	}

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      srv.Handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	listenErr := make(chan error, 1)

	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			listenErr <- err
		}
	}()

	select {
	case err := <-listenErr:
		return fmt.Errorf("server listen error: %w", err)
	case <-stop:
	}
	slog.Info("shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}
