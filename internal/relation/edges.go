// Package relation はグラフ走査時のエッジを読み取り時に都度計算する。
//
// 逆参照はレコードに保持せず、ストアの外部キーインデックスから毎回引き直す。
// 呼び出し間のキャッシュは持たない。
package relation

import (
	"errors"
	"fmt"

	"github.com/hitoshi/postgraph/internal/model"
	"github.com/hitoshi/postgraph/internal/store"
)

// ErrDanglingReference は外部キーの参照先が存在しない場合のエラー。
// 不変条件が破れていることを示す内部エラーで、利用者向けのドメインエラーではない。
var ErrDanglingReference = errors.New("relation: dangling reference")

// UserPosts はユーザーが著者の記事を返す。
func UserPosts(r store.Reader, u model.User) []model.Post {
	return r.PostsByAuthor(u.ID)
}

// UserComments はユーザーが著者のコメントを返す。
func UserComments(r store.Reader, u model.User) []model.Comment {
	return r.CommentsByAuthor(u.ID)
}

// PostAuthor は記事の著者を返す。
func PostAuthor(r store.Reader, p model.Post) (model.User, error) {
	u, ok := r.User(p.Author)
	if !ok {
		return model.User{}, fmt.Errorf("%w: post %s -> user %s", ErrDanglingReference, p.ID, p.Author)
	}
	return u, nil
}

// PostComments は記事へのコメントを返す。
func PostComments(r store.Reader, p model.Post) []model.Comment {
	return r.CommentsByPost(p.ID)
}

// CommentAuthor はコメントの著者を返す。
func CommentAuthor(r store.Reader, c model.Comment) (model.User, error) {
	u, ok := r.User(c.Author)
	if !ok {
		return model.User{}, fmt.Errorf("%w: comment %s -> user %s", ErrDanglingReference, c.ID, c.Author)
	}
	return u, nil
}

// CommentPost はコメント対象の記事を返す。
func CommentPost(r store.Reader, c model.Comment) (model.Post, error) {
	p, ok := r.Post(c.Post)
	if !ok {
		return model.Post{}, fmt.Errorf("%w: comment %s -> post %s", ErrDanglingReference, c.ID, c.Post)
	}
	return p, nil
}
