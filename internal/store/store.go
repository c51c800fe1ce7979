// Package store はユーザー・記事・コメントの3コレクションを保持するインメモリストアを提供する。
//
// 3コレクションは1つのsync.RWMutexで保護される。
// 読み取りはView、書き込みはUpdateを通じて行い、Updateのコールバック内では
// 前提条件の検査・カスケード計算・反映が他のリクエストから不可分に見える。
//
// 外部キーごとの逆引きインデックス（著者→記事、著者→コメント、記事→コメント）は
// 追加・削除のたびに差分で更新される。
package store

import (
	"errors"
	"fmt"
	"sync"

	"github.com/hitoshi/postgraph/internal/model"
)

// ErrDuplicateID は既存または削除済みのIDでレコードを追加しようとした場合のエラー。
var ErrDuplicateID = errors.New("store: id already issued")

// Reader はストアの読み取り操作。
// View/Updateのコールバック内でのみ有効で、コールバック外に持ち出してはならない。
// 返されるレコードはすべてコピーであり、変更してもストアには影響しない。
type Reader interface {
	// User は指定IDのユーザーを返す。
	User(id string) (model.User, bool)
	// Post は指定IDの記事を返す。
	Post(id string) (model.Post, bool)
	// Comment は指定IDのコメントを返す。
	Comment(id string) (model.Comment, bool)

	// UserIDByEmail はメールアドレスを保持するユーザーのIDを返す。
	UserIDByEmail(email string) (string, bool)

	// Users は全ユーザーを作成順に返す。
	Users() []model.User
	// Posts は全記事を作成順に返す。
	Posts() []model.Post
	// Comments は全コメントを作成順に返す。
	Comments() []model.Comment

	// PostsByAuthor は指定ユーザーが著者の記事を作成順に返す。
	PostsByAuthor(userID string) []model.Post
	// CommentsByAuthor は指定ユーザーが著者のコメントを作成順に返す。
	CommentsByAuthor(userID string) []model.Comment
	// CommentsByPost は指定記事へのコメントを作成順に返す。
	CommentsByPost(postID string) []model.Comment

	// Counts は各コレクションの件数を返す。
	Counts() Counts
}

// Counts は各コレクションの件数。
type Counts struct {
	Users    int
	Posts    int
	Comments int
}

// Store はプロセス存続期間中に共有される唯一のインメモリストア。
type Store struct {
	mu sync.RWMutex
	st *state
}

// New は空のStoreを生成する。
func New() *Store {
	return &Store{st: newState()}
}

// View は共有ロックを取得してfnを実行する。
// 複数のViewは並行に実行できるが、Updateとは並行しない。
func (s *Store) View(fn func(r Reader)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.st)
}

// Update は排他ロックを取得してfnを実行し、fnの戻り値をそのまま返す。
//
// fnは検査をすべて終えてから書き込みを行うこと。エラーを返す時点で
// 書き込み済みの変更は取り消されない。
func (s *Store) Update(fn func(tx *Txn) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&Txn{state: s.st})
}

// state は3コレクションとインデックスの実体。
type state struct {
	users    *table[model.User]
	posts    *table[model.Post]
	comments *table[model.Comment]

	emails           map[string]string
	postsByAuthor    fkIndex
	commentsByAuthor fkIndex
	commentsByPost   fkIndex

	// issued は発行済みIDの集合。削除後も保持し、再利用を防ぐ。
	issued map[string]struct{}
}

func newState() *state {
	return &state{
		users:            newTable[model.User](),
		posts:            newTable[model.Post](),
		comments:         newTable[model.Comment](),
		emails:           make(map[string]string),
		postsByAuthor:    make(fkIndex),
		commentsByAuthor: make(fkIndex),
		commentsByPost:   make(fkIndex),
		issued:           make(map[string]struct{}),
	}
}

func (st *state) User(id string) (model.User, bool) {
	u, ok := st.users.get(id)
	if !ok {
		return model.User{}, false
	}
	return u.Clone(), true
}

func (st *state) Post(id string) (model.Post, bool) {
	p, ok := st.posts.get(id)
	if !ok {
		return model.Post{}, false
	}
	return *p, true
}

func (st *state) Comment(id string) (model.Comment, bool) {
	c, ok := st.comments.get(id)
	if !ok {
		return model.Comment{}, false
	}
	return *c, true
}

func (st *state) UserIDByEmail(email string) (string, bool) {
	id, ok := st.emails[email]
	return id, ok
}

func (st *state) Users() []model.User {
	out := make([]model.User, 0, st.users.len())
	st.users.each(func(u *model.User) {
		out = append(out, u.Clone())
	})
	return out
}

func (st *state) Posts() []model.Post {
	out := make([]model.Post, 0, st.posts.len())
	st.posts.each(func(p *model.Post) {
		out = append(out, *p)
	})
	return out
}

func (st *state) Comments() []model.Comment {
	out := make([]model.Comment, 0, st.comments.len())
	st.comments.each(func(c *model.Comment) {
		out = append(out, *c)
	})
	return out
}

func (st *state) PostsByAuthor(userID string) []model.Post {
	ids := st.postsByAuthor.lookup(userID)
	out := make([]model.Post, 0, len(ids))
	for _, id := range ids {
		if p, ok := st.posts.get(id); ok {
			out = append(out, *p)
		}
	}
	return out
}

func (st *state) CommentsByAuthor(userID string) []model.Comment {
	return st.commentsFor(st.commentsByAuthor.lookup(userID))
}

func (st *state) CommentsByPost(postID string) []model.Comment {
	return st.commentsFor(st.commentsByPost.lookup(postID))
}

func (st *state) commentsFor(ids []string) []model.Comment {
	out := make([]model.Comment, 0, len(ids))
	for _, id := range ids {
		if c, ok := st.comments.get(id); ok {
			out = append(out, *c)
		}
	}
	return out
}

func (st *state) Counts() Counts {
	return Counts{
		Users:    st.users.len(),
		Posts:    st.posts.len(),
		Comments: st.comments.len(),
	}
}

func (st *state) issue(id string) error {
	if id == "" {
		return fmt.Errorf("store: empty id")
	}
	if _, ok := st.issued[id]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateID, id)
	}
	st.issued[id] = struct{}{}
	return nil
}

// compile-time interface check
var _ Reader = (*state)(nil)
