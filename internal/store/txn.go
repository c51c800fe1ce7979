package store

import (
	"github.com/hitoshi/postgraph/internal/model"
)

// Txn はUpdateのコールバックに渡される書き込みハンドル。
// 読み取りはReaderと同じメソッドで行える。
// 参照整合性の検査は呼び出し側（invariant、cascade）の責務で、Txn自身は行わない。
type Txn struct {
	*state
}

// AppendUser はユーザーを末尾に追加する。
func (tx *Txn) AppendUser(u model.User) (model.User, error) {
	if err := tx.issue(u.ID); err != nil {
		return model.User{}, err
	}
	row := u.Clone()
	tx.users.insert(row.ID, &row)
	tx.emails[row.Email] = row.ID
	return row.Clone(), nil
}

// AppendPost は記事を末尾に追加する。
func (tx *Txn) AppendPost(p model.Post) (model.Post, error) {
	if err := tx.issue(p.ID); err != nil {
		return model.Post{}, err
	}
	row := p
	tx.posts.insert(row.ID, &row)
	tx.postsByAuthor.add(row.Author, row.ID)
	return row, nil
}

// AppendComment はコメントを末尾に追加する。
func (tx *Txn) AppendComment(c model.Comment) (model.Comment, error) {
	if err := tx.issue(c.ID); err != nil {
		return model.Comment{}, err
	}
	row := c
	tx.comments.insert(row.ID, &row)
	tx.commentsByAuthor.add(row.Author, row.ID)
	tx.commentsByPost.add(row.Post, row.ID)
	return row, nil
}

// PatchUser は指定ユーザーをその場で更新し、更新後のコピーを返す。
// IDはfnが書き換えても元に戻す。メールアドレスのインデックスは追従する。
func (tx *Txn) PatchUser(id string, fn func(u *model.User)) (model.User, bool) {
	row, ok := tx.users.get(id)
	if !ok {
		return model.User{}, false
	}
	oldEmail := row.Email
	fn(row)
	row.ID = id
	*row = row.Clone()

	if row.Email != oldEmail {
		if tx.emails[oldEmail] == id {
			delete(tx.emails, oldEmail)
		}
		tx.emails[row.Email] = id
	}
	return row.Clone(), true
}

// PatchPost は指定記事をその場で更新し、更新後のコピーを返す。
// IDと著者は変更できない。
func (tx *Txn) PatchPost(id string, fn func(p *model.Post)) (model.Post, bool) {
	row, ok := tx.posts.get(id)
	if !ok {
		return model.Post{}, false
	}
	author := row.Author
	fn(row)
	row.ID = id
	row.Author = author
	return *row, true
}

// PatchComment は指定コメントをその場で更新し、更新後のコピーを返す。
// ID・著者・記事は変更できない。
func (tx *Txn) PatchComment(id string, fn func(c *model.Comment)) (model.Comment, bool) {
	row, ok := tx.comments.get(id)
	if !ok {
		return model.Comment{}, false
	}
	author, post := row.Author, row.Post
	fn(row)
	row.ID = id
	row.Author = author
	row.Post = post
	return *row, true
}

// RemoveUsersWhere はpredを満たすユーザーをすべて削除し、削除したレコードを作成順で返す。
// 一致判定をすべて終えてから削除するため、途中までの削除は発生しない。
func (tx *Txn) RemoveUsersWhere(pred func(u model.User) bool) []model.User {
	var removed []model.User
	ids := make(map[string]struct{})
	tx.users.each(func(u *model.User) {
		if pred(u.Clone()) {
			removed = append(removed, u.Clone())
			ids[u.ID] = struct{}{}
		}
	})
	for _, u := range removed {
		if tx.emails[u.Email] == u.ID {
			delete(tx.emails, u.Email)
		}
	}
	tx.users.deleteAll(ids)
	return removed
}

// RemovePostsWhere はpredを満たす記事をすべて削除し、削除したレコードを作成順で返す。
func (tx *Txn) RemovePostsWhere(pred func(p model.Post) bool) []model.Post {
	var removed []model.Post
	ids := make(map[string]struct{})
	tx.posts.each(func(p *model.Post) {
		if pred(*p) {
			removed = append(removed, *p)
			ids[p.ID] = struct{}{}
		}
	})
	for _, p := range removed {
		tx.postsByAuthor.remove(p.Author, p.ID)
	}
	tx.posts.deleteAll(ids)
	return removed
}

// RemoveCommentsWhere はpredを満たすコメントをすべて削除し、削除したレコードを作成順で返す。
func (tx *Txn) RemoveCommentsWhere(pred func(c model.Comment) bool) []model.Comment {
	var removed []model.Comment
	ids := make(map[string]struct{})
	tx.comments.each(func(c *model.Comment) {
		if pred(*c) {
			removed = append(removed, *c)
			ids[c.ID] = struct{}{}
		}
	})
	for _, c := range removed {
		tx.commentsByAuthor.remove(c.Author, c.ID)
		tx.commentsByPost.remove(c.Post, c.ID)
	}
	tx.comments.deleteAll(ids)
	return removed
}

// compile-time interface check
var _ Reader = (*Txn)(nil)
