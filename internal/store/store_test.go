package store

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hitoshi/postgraph/internal/model"
)

func intPtr(v int) *int { return &v }

// seedStore はテスト用にユーザー2名・記事2件・コメント3件を投入したStoreを返す。
func seedStore(t *testing.T) *Store {
	t.Helper()
	s := New()
	err := s.Update(func(tx *Txn) error {
		if _, err := tx.AppendUser(model.User{ID: "u1", Name: "Andrew", Email: "andrew@example.com", Age: intPtr(27)}); err != nil {
			return err
		}
		if _, err := tx.AppendUser(model.User{ID: "u2", Name: "Sarah", Email: "sarah@example.com"}); err != nil {
			return err
		}
		if _, err := tx.AppendPost(model.Post{ID: "p1", Title: "GraphQL 101", Body: "intro", Published: true, Author: "u1"}); err != nil {
			return err
		}
		if _, err := tx.AppendPost(model.Post{ID: "p2", Title: "Draft", Author: "u2"}); err != nil {
			return err
		}
		if _, err := tx.AppendComment(model.Comment{ID: "c1", Text: "nice", Author: "u2", Post: "p1"}); err != nil {
			return err
		}
		if _, err := tx.AppendComment(model.Comment{ID: "c2", Text: "thanks", Author: "u1", Post: "p1"}); err != nil {
			return err
		}
		_, err := tx.AppendComment(model.Comment{ID: "c3", Text: "self", Author: "u2", Post: "p2"})
		return err
	})
	require.NoError(t, err)
	return s
}

func TestStore_AppendAndLookup(t *testing.T) {
	s := seedStore(t)

	s.View(func(r Reader) {
		u, ok := r.User("u1")
		require.True(t, ok)
		assert.Equal(t, "Andrew", u.Name)
		require.NotNil(t, u.Age)
		assert.Equal(t, 27, *u.Age)

		id, ok := r.UserIDByEmail("sarah@example.com")
		assert.True(t, ok)
		assert.Equal(t, "u2", id)

		_, ok = r.Post("missing")
		assert.False(t, ok)

		assert.Equal(t, Counts{Users: 2, Posts: 2, Comments: 3}, r.Counts())
	})
}

func TestStore_InsertionOrder(t *testing.T) {
	s := seedStore(t)

	s.View(func(r Reader) {
		var ids []string
		for _, c := range r.Comments() {
			ids = append(ids, c.ID)
		}
		assert.Equal(t, []string{"c1", "c2", "c3"}, ids)

		ids = nil
		for _, c := range r.CommentsByAuthor("u2") {
			ids = append(ids, c.ID)
		}
		assert.Equal(t, []string{"c1", "c3"}, ids)
	})
}

func TestStore_ReturnsCopies(t *testing.T) {
	s := seedStore(t)

	s.View(func(r Reader) {
		u, _ := r.User("u1")
		u.Name = "changed"
		*u.Age = 99
	})

	s.View(func(r Reader) {
		u, _ := r.User("u1")
		assert.Equal(t, "Andrew", u.Name)
		assert.Equal(t, 27, *u.Age)
	})
}

func TestStore_DuplicateIDRejected(t *testing.T) {
	s := seedStore(t)

	err := s.Update(func(tx *Txn) error {
		_, err := tx.AppendPost(model.Post{ID: "p1", Author: "u1"})
		return err
	})
	assert.True(t, errors.Is(err, ErrDuplicateID))
}

func TestStore_RemovedIDNotReused(t *testing.T) {
	s := seedStore(t)

	err := s.Update(func(tx *Txn) error {
		removed := tx.RemoveCommentsWhere(func(c model.Comment) bool { return c.ID == "c1" })
		require.Len(t, removed, 1)
		_, err := tx.AppendComment(model.Comment{ID: "c1", Author: "u1", Post: "p1"})
		return err
	})
	assert.ErrorIs(t, err, ErrDuplicateID)
}

func TestTxn_PatchUserMaintainsEmailIndex(t *testing.T) {
	s := seedStore(t)

	err := s.Update(func(tx *Txn) error {
		u, ok := tx.PatchUser("u1", func(u *model.User) {
			u.ID = "hijack"
			u.Email = "new@example.com"
			u.Age = nil
		})
		require.True(t, ok)
		assert.Equal(t, "u1", u.ID)
		assert.Nil(t, u.Age)
		return nil
	})
	require.NoError(t, err)

	s.View(func(r Reader) {
		_, ok := r.UserIDByEmail("andrew@example.com")
		assert.False(t, ok)
		id, ok := r.UserIDByEmail("new@example.com")
		assert.True(t, ok)
		assert.Equal(t, "u1", id)
	})
}

func TestTxn_PatchPostKeepsAuthor(t *testing.T) {
	s := seedStore(t)

	err := s.Update(func(tx *Txn) error {
		p, ok := tx.PatchPost("p2", func(p *model.Post) {
			p.Published = true
			p.Author = "u1"
		})
		require.True(t, ok)
		assert.True(t, p.Published)
		assert.Equal(t, "u2", p.Author)

		_, ok = tx.PatchPost("missing", func(*model.Post) {})
		assert.False(t, ok)
		return nil
	})
	require.NoError(t, err)
}

func TestTxn_PatchCommentKeepsReferences(t *testing.T) {
	s := seedStore(t)

	err := s.Update(func(tx *Txn) error {
		c, ok := tx.PatchComment("c1", func(c *model.Comment) {
			c.Text = "edited"
			c.Post = "p2"
			c.Author = "u1"
		})
		require.True(t, ok)
		assert.Equal(t, "edited", c.Text)
		assert.Equal(t, "p1", c.Post)
		assert.Equal(t, "u2", c.Author)
		return nil
	})
	require.NoError(t, err)
}

func TestTxn_RemoveUpdatesIndexes(t *testing.T) {
	s := seedStore(t)

	err := s.Update(func(tx *Txn) error {
		removed := tx.RemovePostsWhere(func(p model.Post) bool { return p.Author == "u1" })
		assert.Len(t, removed, 1)
		tx.RemoveCommentsWhere(func(c model.Comment) bool { return c.Post == "p1" })
		tx.RemoveUsersWhere(func(u model.User) bool { return u.ID == "u1" })
		return nil
	})
	require.NoError(t, err)

	s.View(func(r Reader) {
		assert.Empty(t, r.PostsByAuthor("u1"))
		assert.Empty(t, r.CommentsByPost("p1"))
		assert.Empty(t, r.CommentsByAuthor("u1"))
		_, ok := r.UserIDByEmail("andrew@example.com")
		assert.False(t, ok)

		comments := r.CommentsByAuthor("u2")
		require.Len(t, comments, 1)
		assert.Equal(t, "c3", comments[0].ID)
		assert.Equal(t, Counts{Users: 1, Posts: 1, Comments: 1}, r.Counts())
	})
}

func TestTxn_RemoveNoMatch(t *testing.T) {
	s := seedStore(t)

	err := s.Update(func(tx *Txn) error {
		removed := tx.RemoveUsersWhere(func(model.User) bool { return false })
		assert.Empty(t, removed)
		return nil
	})
	require.NoError(t, err)

	s.View(func(r Reader) {
		assert.Equal(t, 2, r.Counts().Users)
	})
}

func TestStore_ConcurrentReadersAndWriter(t *testing.T) {
	s := seedStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.View(func(r Reader) {
				c := r.Counts()
				assert.Equal(t, c.Posts, len(r.Posts()))
			})
		}()
		go func(n int) {
			defer wg.Done()
			_ = s.Update(func(tx *Txn) error {
				_, err := tx.AppendPost(model.Post{ID: "extra-" + string(rune('a'+n)), Author: "u1"})
				return err
			})
		}(i)
	}
	wg.Wait()

	s.View(func(r Reader) {
		assert.Equal(t, 10, r.Counts().Posts)
		assert.Len(t, r.PostsByAuthor("u1"), 9)
	})
}
