// Package security はアプリケーションのセキュリティ機能を提供する。
//
// ContentSanitizer は記事・コメントの入力テキストをサニタイズし、
// 保存されたコンテンツを表示するクライアントをXSSから保護する。
// bluemondayライブラリを使用した許可リストベースのポリシーで、
// 安全なタグと属性のみを通過させる。
package security

import (
	"github.com/microcosm-cc/bluemonday"

	"github.com/hitoshi/postgraph/internal/model"
)

// ContentSanitizerService は入力サニタイズ機能のインターフェースを定義する。
// GraphQLおよびREST層でミューテーション呼び出し前に使用される。
type ContentSanitizerService interface {
	// Sanitize は記事本文向けにHTMLをサニタイズする。
	// 許可タグ（p, br, a, ul, ol, li, blockquote, pre, code, strong, em）のみを通過させる。
	// 空文字列の入力には空文字列を返す。同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(rawHTML string) string
	// StripTags は全てのタグを除去する。タイトルやコメントに使用する。
	StripTags(raw string) string

	CreatePost(in model.CreatePostInput) model.CreatePostInput
	UpdatePost(in model.UpdatePostInput) model.UpdatePostInput
	CreateComment(in model.CreateCommentInput) model.CreateCommentInput
	UpdateComment(in model.UpdateCommentInput) model.UpdateCommentInput
}

// contentSanitizer はContentSanitizerServiceの実装。
// bluemondayのポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type contentSanitizer struct {
	body   *bluemonday.Policy
	strict *bluemonday.Policy
}

// NewContentSanitizer はContentSanitizerServiceの新しいインスタンスを生成する。
// 本文用ポリシーの内容:
//   - 許可タグ: p, br, a, ul, ol, li, blockquote, pre, code, strong, em
//   - 禁止タグ: script, iframe, style および全てのon*イベント属性
//   - aタグ: 絶対URLのみ、target="_blank" と rel="noopener noreferrer" を自動付与
func NewContentSanitizer() ContentSanitizerService {
	p := bluemonday.NewPolicy()

	p.AllowElements(
		"p", "br", "ul", "ol", "li",
		"blockquote", "pre", "code",
		"strong", "em",
	)

	p.AllowAttrs("href").OnElements("a")
	p.AllowStandardURLs()
	p.AllowRelativeURLs(false)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	p.RequireNoReferrerOnLinks(true)

	return &contentSanitizer{
		body:   p,
		strict: bluemonday.StrictPolicy(),
	}
}

// Sanitize は記事本文向けにHTMLをサニタイズする。
func (s *contentSanitizer) Sanitize(rawHTML string) string {
	return s.body.Sanitize(rawHTML)
}

// StripTags は全てのタグを除去する。
func (s *contentSanitizer) StripTags(raw string) string {
	return s.strict.Sanitize(raw)
}

// CreatePost は記事作成入力のタイトルと本文をサニタイズする。
func (s *contentSanitizer) CreatePost(in model.CreatePostInput) model.CreatePostInput {
	in.Title = s.StripTags(in.Title)
	in.Body = s.Sanitize(in.Body)
	return in
}

// UpdatePost は記事更新入力のうち指定されたフィールドのみをサニタイズする。
func (s *contentSanitizer) UpdatePost(in model.UpdatePostInput) model.UpdatePostInput {
	if in.Title.Set {
		in.Title.Value = s.StripTags(in.Title.Value)
	}
	if in.Body.Set {
		in.Body.Value = s.Sanitize(in.Body.Value)
	}
	return in
}

// CreateComment はコメント作成入力の本文をサニタイズする。
func (s *contentSanitizer) CreateComment(in model.CreateCommentInput) model.CreateCommentInput {
	in.Text = s.StripTags(in.Text)
	return in
}

// UpdateComment はコメント更新入力の本文が指定されていればサニタイズする。
func (s *contentSanitizer) UpdateComment(in model.UpdateCommentInput) model.UpdateCommentInput {
	if in.Text.Set {
		in.Text.Value = s.StripTags(in.Text.Value)
	}
	return in
}

// nopSanitizer は入力を変更しないContentSanitizerService。
type nopSanitizer struct{}

// NewNopSanitizer はサニタイズを行わないContentSanitizerServiceを返す。
// SANITIZE_CONTENTが無効な場合に使用する。
func NewNopSanitizer() ContentSanitizerService { return nopSanitizer{} }

func (nopSanitizer) Sanitize(rawHTML string) string { return rawHTML }
func (nopSanitizer) StripTags(raw string) string    { return raw }
func (nopSanitizer) CreatePost(in model.CreatePostInput) model.CreatePostInput {
	return in
}
func (nopSanitizer) UpdatePost(in model.UpdatePostInput) model.UpdatePostInput {
	return in
}
func (nopSanitizer) CreateComment(in model.CreateCommentInput) model.CreateCommentInput {
	return in
}
func (nopSanitizer) UpdateComment(in model.UpdateCommentInput) model.UpdateCommentInput {
	return in
}
