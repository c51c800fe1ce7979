// Package cascade は親エンティティ削除時に一緒に削除すべき従属レコードの閉包を計算する。
//
// 処理は2段階で行う。
//  1. Plan*で削除前の状態に対して削除対象IDの閉包を求める。
//  2. Applyで各コレクションから削除する。
//
// 閉包は必ず削除前の状態で計算する。コレクション間の削除順序に制約はない。
package cascade

import (
	"github.com/hitoshi/postgraph/internal/model"
	"github.com/hitoshi/postgraph/internal/store"
)

// Plan はコレクションごとの削除対象IDの集合。
type Plan struct {
	Users    map[string]struct{}
	Posts    map[string]struct{}
	Comments map[string]struct{}
}

func newPlan() *Plan {
	return &Plan{
		Users:    make(map[string]struct{}),
		Posts:    make(map[string]struct{}),
		Comments: make(map[string]struct{}),
	}
}

// PlanUserDeletion はユーザー削除の閉包を計算する。
//   - ユーザー本人
//   - ユーザーが著者の全記事
//   - それらの記事への全コメント
//   - ユーザーが著者の全コメント（対象記事を問わない）
//
// 2つのコメント集合は和集合として扱う。
func PlanUserDeletion(r store.Reader, userID string) *Plan {
	p := newPlan()
	p.Users[userID] = struct{}{}

	for _, post := range r.PostsByAuthor(userID) {
		p.addPost(r, post.ID)
	}
	for _, c := range r.CommentsByAuthor(userID) {
		p.Comments[c.ID] = struct{}{}
	}
	return p
}

// PlanPostDeletion は記事削除の閉包（記事本体とその全コメント）を計算する。
func PlanPostDeletion(r store.Reader, postID string) *Plan {
	p := newPlan()
	p.addPost(r, postID)
	return p
}

// PlanCommentDeletion はコメント削除の閉包を計算する。従属レコードはない。
func PlanCommentDeletion(commentID string) *Plan {
	p := newPlan()
	p.Comments[commentID] = struct{}{}
	return p
}

func (p *Plan) addPost(r store.Reader, postID string) {
	p.Posts[postID] = struct{}{}
	for _, c := range r.CommentsByPost(postID) {
		p.Comments[c.ID] = struct{}{}
	}
}

// Result はApplyで実際に削除されたレコード。
type Result struct {
	Users    []model.User
	Posts    []model.Post
	Comments []model.Comment
}

// Apply は計画に含まれるレコードを削除する。
// 計画の計算と同じUpdate内で呼び出すこと。
func (p *Plan) Apply(tx *store.Txn) Result {
	var res Result
	if len(p.Comments) > 0 {
		res.Comments = tx.RemoveCommentsWhere(func(c model.Comment) bool {
			_, ok := p.Comments[c.ID]
			return ok
		})
	}
	if len(p.Posts) > 0 {
		res.Posts = tx.RemovePostsWhere(func(post model.Post) bool {
			_, ok := p.Posts[post.ID]
			return ok
		})
	}
	if len(p.Users) > 0 {
		res.Users = tx.RemoveUsersWhere(func(u model.User) bool {
			_, ok := p.Users[u.ID]
			return ok
		})
	}
	return res
}

// Size は計画に含まれるレコードの総数を返す。
func (p *Plan) Size() int {
	return len(p.Users) + len(p.Posts) + len(p.Comments)
}
