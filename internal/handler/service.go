package handler

import (
	"context"

	"github.com/hitoshi/postgraph/internal/gql"
	"github.com/hitoshi/postgraph/internal/model"
)

// QueryServiceInterface はRESTハンドラーが必要とする読み取りサービスのインターフェース。
// GraphQLのQueryServiceに単一エンティティの参照を加えたもの。
type QueryServiceInterface interface {
	gql.QueryService
	User(ctx context.Context, id string) *model.User
	Post(ctx context.Context, id string) *model.Post
	Comment(ctx context.Context, id string) *model.Comment
}

// MutationServiceInterface はRESTハンドラーが必要とする書き込みサービスのインターフェース。
type MutationServiceInterface interface {
	gql.MutationService
}
