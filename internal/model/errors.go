// Package model はドメインモデルを定義する。
package model

import (
	"errors"
	"fmt"
)

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
// MessageはGraphQLクライアントとの互換性のため既存の文言を維持する。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: validation, not_found, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeEmailTaken         = "EMAIL_TAKEN"
	ErrCodeUserNotFound       = "USER_NOT_FOUND"
	ErrCodePostNotFound       = "POST_NOT_FOUND"
	ErrCodeCommentNotFound    = "COMMENT_NOT_FOUND"
	ErrCodeAuthorNotFound     = "AUTHOR_NOT_FOUND"
	ErrCodeUserOrPostNotFound = "USER_OR_POST_NOT_FOUND"
	ErrCodeInvalidRequest     = "INVALID_REQUEST"
)

// NewEmailTakenError はメールアドレス重複エラーを生成する。
func NewEmailTakenError() *APIError {
	return &APIError{
		Code:     ErrCodeEmailTaken,
		Message:  "Email taken",
		Category: "validation",
		Action:   "別のメールアドレスを指定してください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "User not found",
		Category: "not_found",
		Action:   "ユーザーIDを確認してください。",
	}
}

// NewAuthorNotFoundError は記事作成時に著者が存在しない場合のエラーを生成する。
// 文言はUserNotFoundと同一だが、コードで区別する。
func NewAuthorNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeAuthorNotFound,
		Message:  "User not found",
		Category: "validation",
		Action:   "著者のユーザーIDを確認してください。",
	}
}

// NewPostNotFoundError は記事が見つからない場合のエラーを生成する。
func NewPostNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodePostNotFound,
		Message:  "Post not found",
		Category: "not_found",
		Action:   "記事IDを確認してください。",
	}
}

// NewCommentNotFoundError はコメントが見つからない場合のエラーを生成する。
func NewCommentNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeCommentNotFound,
		Message:  "Comment not found",
		Category: "not_found",
		Action:   "コメントIDを確認してください。",
	}
}

// NewUserOrPostNotFoundError はコメント作成時のユーザー不在・記事不在・記事非公開を
// 区別せずに1つのエラーとして生成する。
func NewUserOrPostNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserOrPostNotFound,
		Message:  "Unable to find user and post",
		Category: "validation",
		Action:   "ユーザーIDと公開済みの記事IDを確認してください。",
	}
}

// NewInvalidRequestError はリクエスト内容が不正な場合のエラーを生成する。
func NewInvalidRequestError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  fmt.Sprintf("invalid request: %s", reason),
		Category: "validation",
		Action:   "正しいJSON形式でリクエストしてください。",
	}
}

// HasCode はerrがAPIErrorであり、指定コードを持つかを判定する。
func HasCode(err error, code string) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == code
	}
	return false
}
