package gql

import (
	"context"
	"log/slog"

	"github.com/graph-gophers/graphql-go"

	"github.com/hitoshi/postgraph/internal/model"
	"github.com/hitoshi/postgraph/internal/security"
)

// QueryService はクエリとエッジ解決のインターフェース。relation.Resolverが実装する。
type QueryService interface {
	Users(ctx context.Context, query string) []model.User
	Posts(ctx context.Context, query string) []model.Post
	Comments(ctx context.Context) []model.Comment
	UserPosts(ctx context.Context, u model.User) []model.Post
	UserComments(ctx context.Context, u model.User) []model.Comment
	PostAuthor(ctx context.Context, p model.Post) (model.User, error)
	PostComments(ctx context.Context, p model.Post) []model.Comment
	CommentAuthor(ctx context.Context, c model.Comment) (model.User, error)
	CommentPost(ctx context.Context, c model.Comment) (model.Post, error)
}

// MutationService はミューテーションのインターフェース。mutation.Serviceが実装する。
type MutationService interface {
	CreateUser(ctx context.Context, in model.CreateUserInput) (*model.User, error)
	DeleteUser(ctx context.Context, id string) (*model.User, error)
	UpdateUser(ctx context.Context, id string, in model.UpdateUserInput) (*model.User, error)
	CreatePost(ctx context.Context, in model.CreatePostInput) (*model.Post, error)
	DeletePost(ctx context.Context, id string) (*model.Post, error)
	UpdatePost(ctx context.Context, id string, in model.UpdatePostInput) (*model.Post, error)
	CreateComment(ctx context.Context, in model.CreateCommentInput) (*model.Comment, error)
	DeleteComment(ctx context.Context, id string) (*model.Comment, error)
	UpdateComment(ctx context.Context, id string, in model.UpdateCommentInput) (*model.Comment, error)
}

// Resolver はQueryとMutationのルートリゾルバー。
type Resolver struct {
	queries   QueryService
	mutations MutationService
	sanitizer security.ContentSanitizerService
	logger    *slog.Logger
}

// NewResolver はResolverを生成する。
// sanitizerがnilの場合は入力を変更しない。loggerがnilの場合はslog.Default()を使用する。
func NewResolver(q QueryService, m MutationService, sanitizer security.ContentSanitizerService, logger *slog.Logger) *Resolver {
	if sanitizer == nil {
		sanitizer = security.NewNopSanitizer()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		queries:   q,
		mutations: m,
		sanitizer: sanitizer,
		logger:    logger,
	}
}

// --- Query ---

// Users はusersクエリを解決する。
func (r *Resolver) Users(ctx context.Context, args struct{ Query *string }) []*userResolver {
	return r.users(r.queries.Users(ctx, deref(args.Query)))
}

// Posts はpostsクエリを解決する。
func (r *Resolver) Posts(ctx context.Context, args struct{ Query *string }) []*postResolver {
	return r.posts(r.queries.Posts(ctx, deref(args.Query)))
}

// Comments はcommentsクエリを解決する。
func (r *Resolver) Comments(ctx context.Context) []*commentResolver {
	return r.comments(r.queries.Comments(ctx))
}

// --- Mutation ---

type updateUserInput struct {
	Name  graphql.NullString
	Email graphql.NullString
	Age   graphql.NullInt
}

type createPostInput struct {
	Title     string
	Body      string
	Published bool
	Author    graphql.ID
}

type updatePostInput struct {
	Title     graphql.NullString
	Body      graphql.NullString
	Published graphql.NullBool
}

type createCommentInput struct {
	Text   string
	Author graphql.ID
	Post   graphql.ID
}

type updateCommentInput struct {
	Text graphql.NullString
}

// CreateUser はcreateUserミューテーションを解決する。
func (r *Resolver) CreateUser(ctx context.Context, args struct {
	Name  string
	Email string
	Age   *int32
}) (*userResolver, error) {
	in := model.CreateUserInput{Name: args.Name, Email: args.Email}
	if args.Age != nil {
		age := int(*args.Age)
		in.Age = &age
	}
	u, err := r.mutations.CreateUser(ctx, in)
	if err != nil {
		return nil, r.toGraphQLError("createUser", err)
	}
	return r.user(*u), nil
}

// DeleteUser はdeleteUserミューテーションを解決する。
func (r *Resolver) DeleteUser(ctx context.Context, args struct{ ID graphql.ID }) (*userResolver, error) {
	u, err := r.mutations.DeleteUser(ctx, string(args.ID))
	if err != nil {
		return nil, r.toGraphQLError("deleteUser", err)
	}
	return r.user(*u), nil
}

// UpdateUser はupdateUserミューテーションを解決する。
func (r *Resolver) UpdateUser(ctx context.Context, args struct {
	ID   graphql.ID
	Data updateUserInput
}) (*userResolver, error) {
	in := model.UpdateUserInput{
		Name:  stringField(args.Data.Name),
		Email: stringField(args.Data.Email),
		Age:   ageField(args.Data.Age),
	}
	u, err := r.mutations.UpdateUser(ctx, string(args.ID), in)
	if err != nil {
		return nil, r.toGraphQLError("updateUser", err)
	}
	return r.user(*u), nil
}

// CreatePost はcreatePostミューテーションを解決する。
func (r *Resolver) CreatePost(ctx context.Context, args struct{ Data createPostInput }) (*postResolver, error) {
	in := r.sanitizer.CreatePost(model.CreatePostInput{
		Title:     args.Data.Title,
		Body:      args.Data.Body,
		Published: args.Data.Published,
		Author:    string(args.Data.Author),
	})
	p, err := r.mutations.CreatePost(ctx, in)
	if err != nil {
		return nil, r.toGraphQLError("createPost", err)
	}
	return r.post(*p), nil
}

// DeletePost はdeletePostミューテーションを解決する。
func (r *Resolver) DeletePost(ctx context.Context, args struct{ ID graphql.ID }) (*postResolver, error) {
	p, err := r.mutations.DeletePost(ctx, string(args.ID))
	if err != nil {
		return nil, r.toGraphQLError("deletePost", err)
	}
	return r.post(*p), nil
}

// UpdatePost はupdatePostミューテーションを解決する。
func (r *Resolver) UpdatePost(ctx context.Context, args struct {
	ID   graphql.ID
	Data updatePostInput
}) (*postResolver, error) {
	in := r.sanitizer.UpdatePost(model.UpdatePostInput{
		Title:     stringField(args.Data.Title),
		Body:      stringField(args.Data.Body),
		Published: boolField(args.Data.Published),
	})
	p, err := r.mutations.UpdatePost(ctx, string(args.ID), in)
	if err != nil {
		return nil, r.toGraphQLError("updatePost", err)
	}
	return r.post(*p), nil
}

// CreateComment はcreateCommentミューテーションを解決する。
func (r *Resolver) CreateComment(ctx context.Context, args struct{ Data createCommentInput }) (*commentResolver, error) {
	in := r.sanitizer.CreateComment(model.CreateCommentInput{
		Text:   args.Data.Text,
		Author: string(args.Data.Author),
		Post:   string(args.Data.Post),
	})
	c, err := r.mutations.CreateComment(ctx, in)
	if err != nil {
		return nil, r.toGraphQLError("createComment", err)
	}
	return r.comment(*c), nil
}

// DeleteComment はdeleteCommentミューテーションを解決する。
func (r *Resolver) DeleteComment(ctx context.Context, args struct{ ID graphql.ID }) (*commentResolver, error) {
	c, err := r.mutations.DeleteComment(ctx, string(args.ID))
	if err != nil {
		return nil, r.toGraphQLError("deleteComment", err)
	}
	return r.comment(*c), nil
}

// UpdateComment はupdateCommentミューテーションを解決する。
func (r *Resolver) UpdateComment(ctx context.Context, args struct {
	ID   graphql.ID
	Data updateCommentInput
}) (*commentResolver, error) {
	in := r.sanitizer.UpdateComment(model.UpdateCommentInput{Text: stringField(args.Data.Text)})
	c, err := r.mutations.UpdateComment(ctx, string(args.ID), in)
	if err != nil {
		return nil, r.toGraphQLError("updateComment", err)
	}
	return r.comment(*c), nil
}

// stringField は必須文字列フィールドの部分更新値を変換する。明示的なnullは未指定として扱う。
func stringField(v graphql.NullString) model.Field[string] {
	if !v.Set || v.Value == nil {
		return model.Absent[string]()
	}
	return model.Present(*v.Value)
}

func boolField(v graphql.NullBool) model.Field[bool] {
	if !v.Set || v.Value == nil {
		return model.Absent[bool]()
	}
	return model.Present(*v.Value)
}

// ageField は年齢の部分更新値を変換する。明示的なnullは値の削除として扱う。
func ageField(v graphql.NullInt) model.Field[*int] {
	if !v.Set {
		return model.Absent[*int]()
	}
	if v.Value == nil {
		return model.Present[*int](nil)
	}
	age := int(*v.Value)
	return model.Present(&age)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
