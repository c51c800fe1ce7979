// Package mutation はユーザー・記事・コメントの書き込み操作を提供する。
//
// 各操作は1回のstore.Update内で「前提条件の検査 → カスケード計画 → 反映」を行う。
// 検査はすべて書き込み前に完了するため、失敗時にストアが部分的に変更されることはない。
package mutation

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/hitoshi/postgraph/internal/cascade"
	"github.com/hitoshi/postgraph/internal/invariant"
	"github.com/hitoshi/postgraph/internal/model"
	"github.com/hitoshi/postgraph/internal/store"
)

// 操作名。ログとメトリクスのラベルに使用する。
const (
	OpCreateUser    = "createUser"
	OpDeleteUser    = "deleteUser"
	OpUpdateUser    = "updateUser"
	OpCreatePost    = "createPost"
	OpDeletePost    = "deletePost"
	OpUpdatePost    = "updatePost"
	OpCreateComment = "createComment"
	OpDeleteComment = "deleteComment"
	OpUpdateComment = "updateComment"
)

// MetricsRecorder はミューテーションの結果を記録するインターフェース。
type MetricsRecorder interface {
	RecordMutation(op, outcome string)
	RecordCascadeRemoved(entity string, count int)
	SetEntityCounts(users, posts, comments int)
}

// Service はミューテーションハンドラーのサービス層。
type Service struct {
	store   *store.Store
	logger  *slog.Logger
	metrics MetricsRecorder
	newID   func() string
}

// NewService はServiceの新しいインスタンスを生成する。
// loggerがnilの場合はslog.Default()を使用する。metricsはnilでもよい。
func NewService(s *store.Store, logger *slog.Logger, metrics MetricsRecorder) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:   s,
		logger:  logger,
		metrics: metrics,
		newID:   uuid.NewString,
	}
}

// CreateUser はユーザーを作成する。
func (s *Service) CreateUser(ctx context.Context, in model.CreateUserInput) (*model.User, error) {
	var created model.User
	err := s.store.Update(func(tx *store.Txn) error {
		if !invariant.EmailAvailable(tx, in.Email, "") {
			return model.NewEmailTakenError()
		}
		u, err := tx.AppendUser(model.User{
			ID:    s.newID(),
			Name:  in.Name,
			Email: in.Email,
			Age:   in.Age,
		})
		if err != nil {
			return err
		}
		created = u
		return nil
	})
	s.finish(OpCreateUser, err)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// DeleteUser はユーザーを削除する。
// ユーザーの記事、その記事へのコメント、ユーザーのコメントも同時に削除する。
func (s *Service) DeleteUser(ctx context.Context, id string) (*model.User, error) {
	var (
		deleted model.User
		res     cascade.Result
	)
	err := s.store.Update(func(tx *store.Txn) error {
		u, ok := tx.User(id)
		if !ok {
			return model.NewUserNotFoundError()
		}
		plan := cascade.PlanUserDeletion(tx, id)
		res = plan.Apply(tx)
		deleted = u
		return nil
	})
	s.finish(OpDeleteUser, err)
	if err != nil {
		return nil, err
	}
	s.logCascade(OpDeleteUser, id, res)
	return &deleted, nil
}

// UpdateUser はユーザーの入力に含まれるフィールドのみを更新する。
// メールアドレスが指定された場合、他のユーザーが使用していないことを検査する。
// 自分自身の現在のメールアドレスへの更新は成功する。
func (s *Service) UpdateUser(ctx context.Context, id string, in model.UpdateUserInput) (*model.User, error) {
	var updated model.User
	err := s.store.Update(func(tx *store.Txn) error {
		if _, ok := tx.User(id); !ok {
			return model.NewUserNotFoundError()
		}
		if email, ok := in.Email.Get(); ok && !invariant.EmailAvailable(tx, email, id) {
			return model.NewEmailTakenError()
		}
		updated, _ = tx.PatchUser(id, func(u *model.User) {
			if v, ok := in.Name.Get(); ok {
				u.Name = v
			}
			if v, ok := in.Email.Get(); ok {
				u.Email = v
			}
			if v, ok := in.Age.Get(); ok {
				u.Age = v
			}
		})
		return nil
	})
	s.finish(OpUpdateUser, err)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// CreatePost は記事を作成する。著者のユーザーが存在しなければならない。
func (s *Service) CreatePost(ctx context.Context, in model.CreatePostInput) (*model.Post, error) {
	var created model.Post
	err := s.store.Update(func(tx *store.Txn) error {
		if !invariant.UserExists(tx, in.Author) {
			return model.NewAuthorNotFoundError()
		}
		p, err := tx.AppendPost(model.Post{
			ID:        s.newID(),
			Title:     in.Title,
			Body:      in.Body,
			Published: in.Published,
			Author:    in.Author,
		})
		if err != nil {
			return err
		}
		created = p
		return nil
	})
	s.finish(OpCreatePost, err)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// DeletePost は記事とその記事への全コメントを削除する。
func (s *Service) DeletePost(ctx context.Context, id string) (*model.Post, error) {
	var (
		deleted model.Post
		res     cascade.Result
	)
	err := s.store.Update(func(tx *store.Txn) error {
		p, ok := tx.Post(id)
		if !ok {
			return model.NewPostNotFoundError()
		}
		res = cascade.PlanPostDeletion(tx, id).Apply(tx)
		deleted = p
		return nil
	})
	s.finish(OpDeletePost, err)
	if err != nil {
		return nil, err
	}
	s.logCascade(OpDeletePost, id, res)
	return &deleted, nil
}

// UpdatePost は記事の入力に含まれるフィールドのみを更新する。
// 非公開に変更しても既存のコメントは削除しない。
func (s *Service) UpdatePost(ctx context.Context, id string, in model.UpdatePostInput) (*model.Post, error) {
	var updated model.Post
	err := s.store.Update(func(tx *store.Txn) error {
		p, ok := tx.PatchPost(id, func(p *model.Post) {
			if v, ok := in.Title.Get(); ok {
				p.Title = v
			}
			if v, ok := in.Body.Get(); ok {
				p.Body = v
			}
			if v, ok := in.Published.Get(); ok {
				p.Published = v
			}
		})
		if !ok {
			return model.NewPostNotFoundError()
		}
		updated = p
		return nil
	})
	s.finish(OpUpdatePost, err)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// CreateComment はコメントを作成する。
// 著者が存在し、かつ対象記事が存在して公開済みでなければならない。
// いずれかを満たさない場合は区別せずUserOrPostNotFoundを返す。
func (s *Service) CreateComment(ctx context.Context, in model.CreateCommentInput) (*model.Comment, error) {
	var created model.Comment
	err := s.store.Update(func(tx *store.Txn) error {
		if !invariant.CanComment(tx, in.Author, in.Post) {
			return model.NewUserOrPostNotFoundError()
		}
		c, err := tx.AppendComment(model.Comment{
			ID:     s.newID(),
			Text:   in.Text,
			Author: in.Author,
			Post:   in.Post,
		})
		if err != nil {
			return err
		}
		created = c
		return nil
	})
	s.finish(OpCreateComment, err)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// DeleteComment はコメントを削除する。
func (s *Service) DeleteComment(ctx context.Context, id string) (*model.Comment, error) {
	var deleted model.Comment
	err := s.store.Update(func(tx *store.Txn) error {
		c, ok := tx.Comment(id)
		if !ok {
			return model.NewCommentNotFoundError()
		}
		cascade.PlanCommentDeletion(id).Apply(tx)
		deleted = c
		return nil
	})
	s.finish(OpDeleteComment, err)
	if err != nil {
		return nil, err
	}
	return &deleted, nil
}

// UpdateComment はコメント本文が入力に含まれる場合のみ更新する。
func (s *Service) UpdateComment(ctx context.Context, id string, in model.UpdateCommentInput) (*model.Comment, error) {
	var updated model.Comment
	err := s.store.Update(func(tx *store.Txn) error {
		c, ok := tx.PatchComment(id, func(c *model.Comment) {
			if v, ok := in.Text.Get(); ok {
				c.Text = v
			}
		})
		if !ok {
			return model.NewCommentNotFoundError()
		}
		updated = c
		return nil
	})
	s.finish(OpUpdateComment, err)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// finish は操作結果をメトリクスに記録する。
func (s *Service) finish(op string, err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordMutation(op, outcome(err))
	if err == nil {
		var c store.Counts
		s.store.View(func(r store.Reader) {
			c = r.Counts()
		})
		s.metrics.SetEntityCounts(c.Users, c.Posts, c.Comments)
	}
}

// logCascade はカスケード削除の件数をログとメトリクスに記録する。
func (s *Service) logCascade(op, id string, res cascade.Result) {
	s.logger.Info("cascade delete completed",
		slog.String("op", op),
		slog.String("id", id),
		slog.Int("users", len(res.Users)),
		slog.Int("posts", len(res.Posts)),
		slog.Int("comments", len(res.Comments)),
	)
	if s.metrics == nil {
		return
	}
	s.metrics.RecordCascadeRemoved("user", len(res.Users))
	s.metrics.RecordCascadeRemoved("post", len(res.Posts))
	s.metrics.RecordCascadeRemoved("comment", len(res.Comments))
}

// outcome はエラーからメトリクス用の結果ラベルを求める。
func outcome(err error) string {
	if err == nil {
		return "success"
	}
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return "internal"
}
