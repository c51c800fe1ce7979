package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/hitoshi/postgraph/internal/middleware"
	"github.com/hitoshi/postgraph/internal/security"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	HTTPMetrics       middleware.HTTPMetrics

	// エンドポイント
	GraphQLHandler http.Handler
	MetricsHandler http.Handler

	// サービス
	Queries   QueryServiceInterface
	Mutations MutationServiceInterface
	Sanitizer security.ContentSanitizerService
}

// NewRouter は全エンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RequestID → Recovery → Logging → Metrics → CORS → SecurityHeaders → RateLimit(General)
//
// /health と /metrics はレート制限の外に配置する。
// REST の書き込み系エンドポイントには書き込み専用のレート制限を追加する。
func NewRouter(deps *RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(logger))
	if deps.HTTPMetrics != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.HTTPMetrics))
	}
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewSecurityHeadersMiddleware())

	r.Get("/health", healthHandler)
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	userHandler := NewUserHandler(deps.Queries, deps.Mutations, logger)
	postHandler := NewPostHandler(deps.Queries, deps.Mutations, deps.Sanitizer, logger)
	commentHandler := NewCommentHandler(deps.Queries, deps.Mutations, deps.Sanitizer, logger)
	writeLimit := deps.RateLimiter.MutationMiddleware()

	r.Group(func(r chi.Router) {
		r.Use(deps.RateLimiter.GeneralMiddleware())

		if deps.GraphQLHandler != nil {
			r.Method(http.MethodPost, "/graphql", deps.GraphQLHandler)
		}

		r.Route("/api/users", func(r chi.Router) {
			r.Get("/", userHandler.ListUsers)
			r.With(writeLimit).Post("/", userHandler.CreateUser)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", userHandler.GetUser)
				r.With(writeLimit).Patch("/", userHandler.UpdateUser)
				r.With(writeLimit).Delete("/", userHandler.DeleteUser)
				r.Get("/posts", userHandler.ListUserPosts)
				r.Get("/comments", userHandler.ListUserComments)
			})
		})

		r.Route("/api/posts", func(r chi.Router) {
			r.Get("/", postHandler.ListPosts)
			r.With(writeLimit).Post("/", postHandler.CreatePost)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", postHandler.GetPost)
				r.With(writeLimit).Patch("/", postHandler.UpdatePost)
				r.With(writeLimit).Delete("/", postHandler.DeletePost)
				r.Get("/author", postHandler.GetPostAuthor)
				r.Get("/comments", postHandler.ListPostComments)
			})
		})

		r.Route("/api/comments", func(r chi.Router) {
			r.Get("/", commentHandler.ListComments)
			r.With(writeLimit).Post("/", commentHandler.CreateComment)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", commentHandler.GetComment)
				r.With(writeLimit).Patch("/", commentHandler.UpdateComment)
				r.With(writeLimit).Delete("/", commentHandler.DeleteComment)
				r.Get("/author", commentHandler.GetCommentAuthor)
				r.Get("/post", commentHandler.GetCommentPost)
			})
		})
	})

	return r
}

// healthHandler はヘルスチェックに応答する。ストアはプロセス内にあるため常にokを返す。
func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
