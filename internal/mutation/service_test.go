package mutation

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hitoshi/postgraph/internal/model"
	"github.com/hitoshi/postgraph/internal/relation"
	"github.com/hitoshi/postgraph/internal/store"
)

// recorder はMetricsRecorderのテスト用実装。
type recorder struct {
	mu       sync.Mutex
	outcomes map[string][]string
	removed  map[string]int
	counts   [3]int
}

func newRecorder() *recorder {
	return &recorder{outcomes: make(map[string][]string), removed: make(map[string]int)}
}

func (r *recorder) RecordMutation(op, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes[op] = append(r.outcomes[op], outcome)
}

func (r *recorder) RecordCascadeRemoved(entity string, count int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removed[entity] += count
}

func (r *recorder) SetEntityCounts(users, posts, comments int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts = [3]int{users, posts, comments}
}

// newTestService は連番IDを発行するServiceを返す。
func newTestService(t *testing.T) (*Service, *store.Store, *recorder) {
	t.Helper()
	s := store.New()
	rec := newRecorder()
	svc := NewService(s, nil, rec)
	var n int
	svc.newID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	return svc, s, rec
}

func intPtr(v int) *int { return &v }

func mustUser(t *testing.T, svc *Service, name, email string) *model.User {
	t.Helper()
	u, err := svc.CreateUser(context.Background(), model.CreateUserInput{Name: name, Email: email})
	require.NoError(t, err)
	return u
}

func mustPost(t *testing.T, svc *Service, author string, published bool) *model.Post {
	t.Helper()
	p, err := svc.CreatePost(context.Background(), model.CreatePostInput{
		Title: "title", Body: "body", Published: published, Author: author,
	})
	require.NoError(t, err)
	return p
}

func mustComment(t *testing.T, svc *Service, author, post string) *model.Comment {
	t.Helper()
	c, err := svc.CreateComment(context.Background(), model.CreateCommentInput{
		Text: "text", Author: author, Post: post,
	})
	require.NoError(t, err)
	return c
}

func counts(s *store.Store) store.Counts {
	var c store.Counts
	s.View(func(r store.Reader) { c = r.Counts() })
	return c
}

func TestCreateUser(t *testing.T) {
	svc, _, rec := newTestService(t)
	ctx := context.Background()

	u, err := svc.CreateUser(ctx, model.CreateUserInput{Name: "Andrew", Email: "a@example.com", Age: intPtr(27)})
	require.NoError(t, err)
	assert.Equal(t, "id-1", u.ID)
	assert.Equal(t, "Andrew", u.Name)
	require.NotNil(t, u.Age)
	assert.Equal(t, 27, *u.Age)

	_, err = svc.CreateUser(ctx, model.CreateUserInput{Name: "Other", Email: "a@example.com"})
	assert.True(t, model.HasCode(err, model.ErrCodeEmailTaken))
	assert.EqualError(t, err, "[EMAIL_TAKEN] Email taken")

	assert.Equal(t, []string{"success", model.ErrCodeEmailTaken}, rec.outcomes[OpCreateUser])
	assert.Equal(t, [3]int{1, 0, 0}, rec.counts)
}

func TestCreateUser_DefaultIDsAreUnique(t *testing.T) {
	svc := NewService(store.New(), nil, nil)
	ctx := context.Background()

	a, err := svc.CreateUser(ctx, model.CreateUserInput{Name: "a", Email: "a@example.com"})
	require.NoError(t, err)
	b, err := svc.CreateUser(ctx, model.CreateUserInput{Name: "b", Email: "b@example.com"})
	require.NoError(t, err)

	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestUpdateUser_Email(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	a := mustUser(t, svc, "A", "a@example.com")
	b := mustUser(t, svc, "B", "b@example.com")

	_, err := svc.UpdateUser(ctx, a.ID, model.UpdateUserInput{Email: model.Present("b@example.com")})
	assert.True(t, model.HasCode(err, model.ErrCodeEmailTaken))

	got, err := svc.UpdateUser(ctx, a.ID, model.UpdateUserInput{Email: model.Present("a@example.com")})
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", got.Email)

	got, err = svc.UpdateUser(ctx, b.ID, model.UpdateUserInput{Email: model.Present("new@example.com")})
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", got.Email)

	// 解放されたメールアドレスは再利用できる
	_, err = svc.CreateUser(ctx, model.CreateUserInput{Name: "C", Email: "b@example.com"})
	assert.NoError(t, err)
}

func TestUpdateUser_PartialFields(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	u, err := svc.CreateUser(ctx, model.CreateUserInput{Name: "A", Email: "a@example.com", Age: intPtr(30)})
	require.NoError(t, err)

	got, err := svc.UpdateUser(ctx, u.ID, model.UpdateUserInput{Name: model.Present("Renamed")})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	assert.Equal(t, "a@example.com", got.Email)
	require.NotNil(t, got.Age)
	assert.Equal(t, 30, *got.Age)

	got, err = svc.UpdateUser(ctx, u.ID, model.UpdateUserInput{Age: model.Present[*int](nil)})
	require.NoError(t, err)
	assert.Nil(t, got.Age)
	assert.Equal(t, "Renamed", got.Name)
}

func TestUpdateUser_NotFoundBeforeEmailCheck(t *testing.T) {
	svc, _, _ := newTestService(t)
	mustUser(t, svc, "A", "a@example.com")

	_, err := svc.UpdateUser(context.Background(), "missing", model.UpdateUserInput{Email: model.Present("a@example.com")})
	assert.True(t, model.HasCode(err, model.ErrCodeUserNotFound))
}

func TestDeleteUser_Cascade(t *testing.T) {
	svc, s, rec := newTestService(t)
	ctx := context.Background()
	u1 := mustUser(t, svc, "one", "one@example.com")
	u2 := mustUser(t, svc, "two", "two@example.com")
	p1 := mustPost(t, svc, u1.ID, true)
	p2 := mustPost(t, svc, u2.ID, true)
	mustComment(t, svc, u2.ID, p1.ID)
	mustComment(t, svc, u1.ID, p2.ID)
	c3 := mustComment(t, svc, u2.ID, p2.ID)

	deleted, err := svc.DeleteUser(ctx, u1.ID)
	require.NoError(t, err)
	assert.Equal(t, u1.ID, deleted.ID)

	s.View(func(r store.Reader) {
		users := r.Users()
		require.Len(t, users, 1)
		assert.Equal(t, u2.ID, users[0].ID)

		posts := r.Posts()
		require.Len(t, posts, 1)
		assert.Equal(t, p2.ID, posts[0].ID)

		comments := r.Comments()
		require.Len(t, comments, 1)
		assert.Equal(t, c3.ID, comments[0].ID)
	})

	assert.Equal(t, 1, rec.removed["user"])
	assert.Equal(t, 1, rec.removed["post"])
	assert.Equal(t, 2, rec.removed["comment"])
	assert.Equal(t, [3]int{1, 1, 1}, rec.counts)

	_, err = svc.DeleteUser(ctx, u1.ID)
	assert.True(t, model.HasCode(err, model.ErrCodeUserNotFound))
}

func TestDeletePost_Cascade(t *testing.T) {
	svc, s, _ := newTestService(t)
	ctx := context.Background()
	u := mustUser(t, svc, "one", "one@example.com")
	p1 := mustPost(t, svc, u.ID, true)
	p2 := mustPost(t, svc, u.ID, true)
	mustComment(t, svc, u.ID, p1.ID)
	mustComment(t, svc, u.ID, p1.ID)
	kept := mustComment(t, svc, u.ID, p2.ID)

	deleted, err := svc.DeletePost(ctx, p1.ID)
	require.NoError(t, err)
	assert.Equal(t, p1.ID, deleted.ID)

	s.View(func(r store.Reader) {
		comments := r.Comments()
		require.Len(t, comments, 1)
		assert.Equal(t, kept.ID, comments[0].ID)
	})

	_, err = svc.DeletePost(ctx, p1.ID)
	assert.True(t, model.HasCode(err, model.ErrCodePostNotFound))
}

func TestCreatePost_AuthorMustExist(t *testing.T) {
	svc, s, rec := newTestService(t)

	_, err := svc.CreatePost(context.Background(), model.CreatePostInput{Title: "t", Author: "ghost"})
	assert.True(t, model.HasCode(err, model.ErrCodeAuthorNotFound))
	assert.EqualError(t, err, "[AUTHOR_NOT_FOUND] User not found")
	assert.Equal(t, 0, counts(s).Posts)
	assert.Equal(t, []string{model.ErrCodeAuthorNotFound}, rec.outcomes[OpCreatePost])
}

func TestCreateComment_Preconditions(t *testing.T) {
	svc, s, _ := newTestService(t)
	ctx := context.Background()
	u := mustUser(t, svc, "one", "one@example.com")
	published := mustPost(t, svc, u.ID, true)
	draft := mustPost(t, svc, u.ID, false)

	tests := []struct {
		name   string
		author string
		post   string
	}{
		{"unpublished post", u.ID, draft.ID},
		{"missing post", u.ID, "ghost"},
		{"missing author", "ghost", published.ID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateComment(ctx, model.CreateCommentInput{Text: "x", Author: tt.author, Post: tt.post})
			assert.True(t, model.HasCode(err, model.ErrCodeUserOrPostNotFound))
			assert.EqualError(t, err, "[USER_OR_POST_NOT_FOUND] Unable to find user and post")
		})
	}
	assert.Equal(t, 0, counts(s).Comments)
}

func TestUpdatePost_UnpublishKeepsComments(t *testing.T) {
	svc, s, _ := newTestService(t)
	ctx := context.Background()
	u := mustUser(t, svc, "one", "one@example.com")
	p := mustPost(t, svc, u.ID, true)
	mustComment(t, svc, u.ID, p.ID)

	got, err := svc.UpdatePost(ctx, p.ID, model.UpdatePostInput{Published: model.Present(false)})
	require.NoError(t, err)
	assert.False(t, got.Published)
	assert.Equal(t, "title", got.Title)
	assert.Equal(t, "body", got.Body)
	assert.Equal(t, 1, counts(s).Comments)

	_, err = svc.CreateComment(ctx, model.CreateCommentInput{Text: "late", Author: u.ID, Post: p.ID})
	assert.True(t, model.HasCode(err, model.ErrCodeUserOrPostNotFound))

	_, err = svc.UpdatePost(ctx, "ghost", model.UpdatePostInput{Title: model.Present("x")})
	assert.True(t, model.HasCode(err, model.ErrCodePostNotFound))
}

func TestCommentLifecycle(t *testing.T) {
	svc, s, _ := newTestService(t)
	ctx := context.Background()
	u := mustUser(t, svc, "one", "one@example.com")
	p := mustPost(t, svc, u.ID, true)
	c := mustComment(t, svc, u.ID, p.ID)

	unchanged, err := svc.UpdateComment(ctx, c.ID, model.UpdateCommentInput{})
	require.NoError(t, err)
	assert.Equal(t, "text", unchanged.Text)

	edited, err := svc.UpdateComment(ctx, c.ID, model.UpdateCommentInput{Text: model.Present("edited")})
	require.NoError(t, err)
	assert.Equal(t, "edited", edited.Text)

	deleted, err := svc.DeleteComment(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited", deleted.Text)
	assert.Equal(t, 0, counts(s).Comments)

	_, err = svc.DeleteComment(ctx, c.ID)
	assert.True(t, model.HasCode(err, model.ErrCodeCommentNotFound))
	_, err = svc.UpdateComment(ctx, c.ID, model.UpdateCommentInput{Text: model.Present("x")})
	assert.True(t, model.HasCode(err, model.ErrCodeCommentNotFound))
}

// TestEndToEnd はユーザー作成から削除までの一連の操作で記事が連鎖削除されることを確認する。
func TestEndToEnd(t *testing.T) {
	svc, s, _ := newTestService(t)
	res := relation.NewResolver(s)
	ctx := context.Background()

	u, err := svc.CreateUser(ctx, model.CreateUserInput{Name: "sasman", Email: "sasman@example.com"})
	require.NoError(t, err)
	p1, err := svc.CreatePost(ctx, model.CreatePostInput{Title: "hello", Body: "world", Published: true, Author: u.ID})
	require.NoError(t, err)

	posts := res.UserPosts(ctx, *u)
	require.Len(t, posts, 1)
	assert.Equal(t, p1.ID, posts[0].ID)

	_, err = svc.DeleteUser(ctx, u.ID)
	require.NoError(t, err)

	for _, p := range res.Posts(ctx, "") {
		assert.NotEqual(t, p1.ID, p.ID)
	}
	assert.Empty(t, res.Users(ctx, "sasman"))
}

func TestConcurrentCreateUser_SameEmail(t *testing.T) {
	svc := NewService(store.New(), nil, nil)
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.CreateUser(ctx, model.CreateUserInput{Name: "x", Email: "same@example.com"}); err == nil {
				mu.Lock()
				success++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, success)
}
