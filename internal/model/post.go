// Package model はドメインモデルを定義する。
package model

// Post はユーザーが投稿した記事を表す。
// AuthorはUser.IDを参照する外部キー。
type Post struct {
	ID        string
	Title     string
	Body      string
	Published bool
	Author    string
}

// Comment は公開済み記事に付けられたコメントを表す。
// AuthorはUser.ID、PostはPost.IDを参照する外部キー。
type Comment struct {
	ID     string
	Text   string
	Author string
	Post   string
}

// CreatePostInput は記事作成の入力。
type CreatePostInput struct {
	Title     string
	Body      string
	Published bool
	Author    string
}

// UpdatePostInput は記事の部分更新の入力。
type UpdatePostInput struct {
	Title     Field[string]
	Body      Field[string]
	Published Field[bool]
}

// CreateCommentInput はコメント作成の入力。
type CreateCommentInput struct {
	Text   string
	Author string
	Post   string
}

// UpdateCommentInput はコメントの部分更新の入力。Textのみ変更できる。
type UpdateCommentInput struct {
	Text Field[string]
}
