package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/postgraph/internal/middleware"
	"github.com/hitoshi/postgraph/internal/model"
	"github.com/hitoshi/postgraph/internal/security"
)

// PostHandler は記事関連のHTTPハンドラー。
type PostHandler struct {
	queries   QueryServiceInterface
	mutations MutationServiceInterface
	sanitizer security.ContentSanitizerService
	logger    *slog.Logger
}

// NewPostHandler はPostHandlerを生成する。sanitizerがnilの場合は入力を変更しない。
// loggerがnilの場合はslog.Default()を使用する。
func NewPostHandler(queries QueryServiceInterface, mutations MutationServiceInterface, sanitizer security.ContentSanitizerService, logger *slog.Logger) *PostHandler {
	if sanitizer == nil {
		sanitizer = security.NewNopSanitizer()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostHandler{
		queries:   queries,
		mutations: mutations,
		sanitizer: sanitizer,
		logger:    logger,
	}
}

// createPostRequest は記事作成のリクエストボディ。
type createPostRequest struct {
	Title     *string `json:"title"`
	Body      *string `json:"body"`
	Published *bool   `json:"published"`
	Author    *string `json:"author"`
}

// updatePostRequest は記事更新のリクエストボディ。
type updatePostRequest struct {
	Title     optional[string] `json:"title"`
	Body      optional[string] `json:"body"`
	Published optional[bool]   `json:"published"`
}

// ListPosts は記事一覧を返す。queryパラメータでタイトルと本文を絞り込む。
// GET /api/posts
func (h *PostHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	posts := h.queries.Posts(r.Context(), r.URL.Query().Get("query"))
	writeJSON(w, http.StatusOK, toPostResponses(posts))
}

// GetPost は記事を1件返す。
// GET /api/posts/{id}
func (h *PostHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	p := h.queries.Post(r.Context(), chi.URLParam(r, "id"))
	if p == nil {
		handleServiceError(w, h.logger, model.NewPostNotFoundError())
		return
	}
	writeJSON(w, http.StatusOK, toPostResponse(*p))
}

// CreatePost は記事を作成する。
// POST /api/posts
func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req createPostRequest
	if !decodeBody(w, r, &req) {
		return
	}
	switch {
	case req.Title == nil:
		middleware.WriteBadRequest(w, "title is required")
		return
	case req.Body == nil:
		middleware.WriteBadRequest(w, "body is required")
		return
	case req.Published == nil:
		middleware.WriteBadRequest(w, "published is required")
		return
	case req.Author == nil:
		middleware.WriteBadRequest(w, "author is required")
		return
	}

	in := h.sanitizer.CreatePost(model.CreatePostInput{
		Title:     *req.Title,
		Body:      *req.Body,
		Published: *req.Published,
		Author:    *req.Author,
	})
	p, err := h.mutations.CreatePost(r.Context(), in)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPostResponse(*p))
}

// UpdatePost はリクエストに含まれるフィールドのみを更新する。
// PATCH /api/posts/{id}
func (h *PostHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	var req updatePostRequest
	if !decodeBody(w, r, &req) {
		return
	}

	in := h.sanitizer.UpdatePost(model.UpdatePostInput{
		Title:     req.Title.field(),
		Body:      req.Body.field(),
		Published: req.Published.field(),
	})
	p, err := h.mutations.UpdatePost(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toPostResponse(*p))
}

// DeletePost は記事とそのコメントを削除し、削除した記事を返す。
// DELETE /api/posts/{id}
func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	p, err := h.mutations.DeletePost(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toPostResponse(*p))
}

// GetPostAuthor は記事の著者を返す。
// GET /api/posts/{id}/author
func (h *PostHandler) GetPostAuthor(w http.ResponseWriter, r *http.Request) {
	p := h.queries.Post(r.Context(), chi.URLParam(r, "id"))
	if p == nil {
		handleServiceError(w, h.logger, model.NewPostNotFoundError())
		return
	}
	u, err := h.queries.PostAuthor(r.Context(), *p)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(u))
}

// ListPostComments は記事へのコメント一覧を返す。
// GET /api/posts/{id}/comments
func (h *PostHandler) ListPostComments(w http.ResponseWriter, r *http.Request) {
	p := h.queries.Post(r.Context(), chi.URLParam(r, "id"))
	if p == nil {
		handleServiceError(w, h.logger, model.NewPostNotFoundError())
		return
	}
	writeJSON(w, http.StatusOK, toCommentResponses(h.queries.PostComments(r.Context(), *p)))
}
