package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/postgraph/internal/middleware"
	"github.com/hitoshi/postgraph/internal/model"
)

// UserHandler はユーザー関連のHTTPハンドラー。
type UserHandler struct {
	queries   QueryServiceInterface
	mutations MutationServiceInterface
	logger    *slog.Logger
}

// NewUserHandler はUserHandlerを生成する。loggerがnilの場合はslog.Default()を使用する。
func NewUserHandler(queries QueryServiceInterface, mutations MutationServiceInterface, logger *slog.Logger) *UserHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserHandler{
		queries:   queries,
		mutations: mutations,
		logger:    logger,
	}
}

const ageRangeMessage = "age must be a 32-bit integer"

// createUserRequest はユーザー作成のリクエストボディ。
type createUserRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Age   *int    `json:"age"`
}

// updateUserRequest はユーザー更新のリクエストボディ。ageのnullは年齢の削除を意味する。
type updateUserRequest struct {
	Name  optional[string] `json:"name"`
	Email optional[string] `json:"email"`
	Age   optional[int]    `json:"age"`
}

// ListUsers はユーザー一覧を返す。queryパラメータで名前を絞り込む。
// GET /api/users
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users := h.queries.Users(r.Context(), r.URL.Query().Get("query"))
	writeJSON(w, http.StatusOK, toUserResponses(users))
}

// GetUser はユーザーを1件返す。
// GET /api/users/{id}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	u := h.queries.User(r.Context(), chi.URLParam(r, "id"))
	if u == nil {
		handleServiceError(w, h.logger, model.NewUserNotFoundError())
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(*u))
}

// CreateUser はユーザーを作成する。
// POST /api/users
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == nil {
		middleware.WriteBadRequest(w, "name is required")
		return
	}
	if req.Email == nil {
		middleware.WriteBadRequest(w, "email is required")
		return
	}
	if !model.ValidAge(req.Age) {
		middleware.WriteBadRequest(w, ageRangeMessage)
		return
	}

	u, err := h.mutations.CreateUser(r.Context(), model.CreateUserInput{
		Name:  *req.Name,
		Email: *req.Email,
		Age:   req.Age,
	})
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserResponse(*u))
}

// UpdateUser はリクエストに含まれるフィールドのみを更新する。
// PATCH /api/users/{id}
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !model.ValidAge(req.Age.Value) {
		middleware.WriteBadRequest(w, ageRangeMessage)
		return
	}

	u, err := h.mutations.UpdateUser(r.Context(), chi.URLParam(r, "id"), model.UpdateUserInput{
		Name:  req.Name.field(),
		Email: req.Email.field(),
		Age:   req.Age.nullableField(),
	})
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(*u))
}

// DeleteUser はユーザーと関連する記事・コメントを削除し、削除したユーザーを返す。
// DELETE /api/users/{id}
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.mutations.DeleteUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(*u))
}

// ListUserPosts はユーザーが著者の記事一覧を返す。
// GET /api/users/{id}/posts
func (h *UserHandler) ListUserPosts(w http.ResponseWriter, r *http.Request) {
	u := h.queries.User(r.Context(), chi.URLParam(r, "id"))
	if u == nil {
		handleServiceError(w, h.logger, model.NewUserNotFoundError())
		return
	}
	writeJSON(w, http.StatusOK, toPostResponses(h.queries.UserPosts(r.Context(), *u)))
}

// ListUserComments はユーザーが書いたコメント一覧を返す。
// GET /api/users/{id}/comments
func (h *UserHandler) ListUserComments(w http.ResponseWriter, r *http.Request) {
	u := h.queries.User(r.Context(), chi.URLParam(r, "id"))
	if u == nil {
		handleServiceError(w, h.logger, model.NewUserNotFoundError())
		return
	}
	writeJSON(w, http.StatusOK, toCommentResponses(h.queries.UserComments(r.Context(), *u)))
}
