// Package invariant はミューテーション反映前に評価する読み取り専用の述語を提供する。
// いずれもストアを変更せず、結果をboolで返す。ドメインエラーへの変換は呼び出し側が行う。
package invariant

import (
	"github.com/hitoshi/postgraph/internal/store"
)

// EmailAvailable はexcludingUserID以外のユーザーがemailを保持していない場合にtrueを返す。
// excludingUserIDが空の場合は全ユーザーが対象になる。
func EmailAvailable(r store.Reader, email, excludingUserID string) bool {
	holder, ok := r.UserIDByEmail(email)
	if !ok {
		return true
	}
	return excludingUserID != "" && holder == excludingUserID
}

// UserExists は指定IDのユーザーが存在する場合にtrueを返す。
func UserExists(r store.Reader, id string) bool {
	_, ok := r.User(id)
	return ok
}

// PostExists は指定IDの記事が存在する場合にtrueを返す。
func PostExists(r store.Reader, id string) bool {
	_, ok := r.Post(id)
	return ok
}

// PublishedPostExists は指定IDの記事が存在し、かつ公開済みの場合にtrueを返す。
func PublishedPostExists(r store.Reader, id string) bool {
	p, ok := r.Post(id)
	return ok && p.Published
}

// CommentExists は指定IDのコメントが存在する場合にtrueを返す。
func CommentExists(r store.Reader, id string) bool {
	_, ok := r.Comment(id)
	return ok
}

// CanComment はコメント作成の前提条件をまとめて評価する。
// ユーザー不在と記事不在・非公開を区別しない。
func CanComment(r store.Reader, authorID, postID string) bool {
	return UserExists(r, authorID) && PublishedPostExists(r, postID)
}
