package relation

import (
	"context"
	"strings"

	"github.com/hitoshi/postgraph/internal/model"
	"github.com/hitoshi/postgraph/internal/store"
)

// Resolver は共有ストアに対してルートクエリとエッジ解決を行う。
//
// ctxにstore.WithSnapshotのスナップショットがある場合、ルートクエリ（Users/Posts/Comments）が
// 共有ロックを取得し、以降のエッジ解決は同じ状態を読む。1回のGraphQLクエリ全体が
// 途中で確定したミューテーションの影響を受けない。
// スナップショットがない場合、各メソッドはそれぞれ独立したViewで実行される。
type Resolver struct {
	store *store.Store
}

// NewResolver はResolverを生成する。
func NewResolver(s *store.Store) *Resolver {
	return &Resolver{store: s}
}

// Users は全ユーザーを返す。queryが空でない場合は名前に部分一致（大文字小文字を区別しない）するものに絞り込む。
func (r *Resolver) Users(ctx context.Context, query string) []model.User {
	var out []model.User
	r.store.Pin(ctx)
	r.store.ViewContext(ctx, func(rd store.Reader) {
		out = filter(rd.Users(), query, func(u model.User) []string {
			return []string{u.Name}
		})
	})
	return out
}

// Posts は全記事を返す。queryが空でない場合はタイトルまたは本文に部分一致するものに絞り込む。
func (r *Resolver) Posts(ctx context.Context, query string) []model.Post {
	var out []model.Post
	r.store.Pin(ctx)
	r.store.ViewContext(ctx, func(rd store.Reader) {
		out = filter(rd.Posts(), query, func(p model.Post) []string {
			return []string{p.Title, p.Body}
		})
	})
	return out
}

// Comments は全コメントを返す。
func (r *Resolver) Comments(ctx context.Context) []model.Comment {
	var out []model.Comment
	r.store.Pin(ctx)
	r.store.ViewContext(ctx, func(rd store.Reader) {
		out = rd.Comments()
	})
	return out
}

// User は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *Resolver) User(ctx context.Context, id string) *model.User {
	var out *model.User
	r.store.ViewContext(ctx, func(rd store.Reader) {
		if u, ok := rd.User(id); ok {
			out = &u
		}
	})
	return out
}

// Post は指定IDの記事を取得する。見つからない場合はnilを返す。
func (r *Resolver) Post(ctx context.Context, id string) *model.Post {
	var out *model.Post
	r.store.ViewContext(ctx, func(rd store.Reader) {
		if p, ok := rd.Post(id); ok {
			out = &p
		}
	})
	return out
}

// Comment は指定IDのコメントを取得する。見つからない場合はnilを返す。
func (r *Resolver) Comment(ctx context.Context, id string) *model.Comment {
	var out *model.Comment
	r.store.ViewContext(ctx, func(rd store.Reader) {
		if c, ok := rd.Comment(id); ok {
			out = &c
		}
	})
	return out
}

// UserPosts はユーザーが著者の記事を返す。
func (r *Resolver) UserPosts(ctx context.Context, u model.User) []model.Post {
	var out []model.Post
	r.store.ViewContext(ctx, func(rd store.Reader) {
		out = UserPosts(rd, u)
	})
	return out
}

// UserComments はユーザーが著者のコメントを返す。
func (r *Resolver) UserComments(ctx context.Context, u model.User) []model.Comment {
	var out []model.Comment
	r.store.ViewContext(ctx, func(rd store.Reader) {
		out = UserComments(rd, u)
	})
	return out
}

// PostAuthor は記事の著者を返す。
func (r *Resolver) PostAuthor(ctx context.Context, p model.Post) (model.User, error) {
	var (
		out model.User
		err error
	)
	r.store.ViewContext(ctx, func(rd store.Reader) {
		out, err = PostAuthor(rd, p)
	})
	return out, err
}

// PostComments は記事へのコメントを返す。
func (r *Resolver) PostComments(ctx context.Context, p model.Post) []model.Comment {
	var out []model.Comment
	r.store.ViewContext(ctx, func(rd store.Reader) {
		out = PostComments(rd, p)
	})
	return out
}

// CommentAuthor はコメントの著者を返す。
func (r *Resolver) CommentAuthor(ctx context.Context, c model.Comment) (model.User, error) {
	var (
		out model.User
		err error
	)
	r.store.ViewContext(ctx, func(rd store.Reader) {
		out, err = CommentAuthor(rd, c)
	})
	return out, err
}

// CommentPost はコメント対象の記事を返す。
func (r *Resolver) CommentPost(ctx context.Context, c model.Comment) (model.Post, error) {
	var (
		out model.Post
		err error
	)
	r.store.ViewContext(ctx, func(rd store.Reader) {
		out, err = CommentPost(rd, c)
	})
	return out, err
}

func filter[T any](rows []T, query string, fields func(T) []string) []T {
	if query == "" {
		return rows
	}
	q := strings.ToLower(query)
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		for _, f := range fields(row) {
			if strings.Contains(strings.ToLower(f), q) {
				out = append(out, row)
				break
			}
		}
	}
	return out
}
