package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/postgraph/internal/middleware"
	"github.com/hitoshi/postgraph/internal/model"
	"github.com/hitoshi/postgraph/internal/security"
)

// CommentHandler はコメント関連のHTTPハンドラー。
type CommentHandler struct {
	queries   QueryServiceInterface
	mutations MutationServiceInterface
	sanitizer security.ContentSanitizerService
	logger    *slog.Logger
}

// NewCommentHandler はCommentHandlerを生成する。sanitizerがnilの場合は入力を変更しない。
// loggerがnilの場合はslog.Default()を使用する。
func NewCommentHandler(queries QueryServiceInterface, mutations MutationServiceInterface, sanitizer security.ContentSanitizerService, logger *slog.Logger) *CommentHandler {
	if sanitizer == nil {
		sanitizer = security.NewNopSanitizer()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CommentHandler{
		queries:   queries,
		mutations: mutations,
		sanitizer: sanitizer,
		logger:    logger,
	}
}

type createCommentRequest struct {
	Text   *string `json:"text"`
	Author *string `json:"author"`
	Post   *string `json:"post"`
}

type updateCommentRequest struct {
	Text optional[string] `json:"text"`
}

// ListComments はコメント一覧を返す。
// GET /api/comments
func (h *CommentHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toCommentResponses(h.queries.Comments(r.Context())))
}

// GetComment はコメントを1件返す。
// GET /api/comments/{id}
func (h *CommentHandler) GetComment(w http.ResponseWriter, r *http.Request) {
	c := h.queries.Comment(r.Context(), chi.URLParam(r, "id"))
	if c == nil {
		handleServiceError(w, h.logger, model.NewCommentNotFoundError())
		return
	}
	writeJSON(w, http.StatusOK, toCommentResponse(*c))
}

// CreateComment は公開済み記事にコメントを作成する。
// POST /api/comments
func (h *CommentHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	var req createCommentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	switch {
	case req.Text == nil:
		middleware.WriteBadRequest(w, "text is required")
		return
	case req.Author == nil:
		middleware.WriteBadRequest(w, "author is required")
		return
	case req.Post == nil:
		middleware.WriteBadRequest(w, "post is required")
		return
	}

	in := h.sanitizer.CreateComment(model.CreateCommentInput{
		Text:   *req.Text,
		Author: *req.Author,
		Post:   *req.Post,
	})
	c, err := h.mutations.CreateComment(r.Context(), in)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCommentResponse(*c))
}

// UpdateComment はコメント本文を更新する。
// PATCH /api/comments/{id}
func (h *CommentHandler) UpdateComment(w http.ResponseWriter, r *http.Request) {
	var req updateCommentRequest
	if !decodeBody(w, r, &req) {
		return
	}

	in := h.sanitizer.UpdateComment(model.UpdateCommentInput{Text: req.Text.field()})
	c, err := h.mutations.UpdateComment(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toCommentResponse(*c))
}

// DeleteComment はコメントを削除し、削除したコメントを返す。
// DELETE /api/comments/{id}
func (h *CommentHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	c, err := h.mutations.DeleteComment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toCommentResponse(*c))
}

// GetCommentAuthor はコメントの著者を返す。
// GET /api/comments/{id}/author
func (h *CommentHandler) GetCommentAuthor(w http.ResponseWriter, r *http.Request) {
	c := h.queries.Comment(r.Context(), chi.URLParam(r, "id"))
	if c == nil {
		handleServiceError(w, h.logger, model.NewCommentNotFoundError())
		return
	}
	u, err := h.queries.CommentAuthor(r.Context(), *c)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(u))
}

// GetCommentPost はコメント対象の記事を返す。
// GET /api/comments/{id}/post
func (h *CommentHandler) GetCommentPost(w http.ResponseWriter, r *http.Request) {
	c := h.queries.Comment(r.Context(), chi.URLParam(r, "id"))
	if c == nil {
		handleServiceError(w, h.logger, model.NewCommentNotFoundError())
		return
	}
	p, err := h.queries.CommentPost(r.Context(), *c)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toPostResponse(p))
}
