package gql

import (
	"errors"
	"log/slog"

	"github.com/hitoshi/postgraph/internal/model"
)

// ErrCodeInternal はドメインエラー以外の失敗に付与するエラーコード。
const ErrCodeInternal = "INTERNAL"

// resolverError はGraphQLレスポンスのerrors要素として返すエラー。
// extensionsにエラーコードとカテゴリを含める。
type resolverError struct {
	code     string
	category string
	message  string
}

func (e *resolverError) Error() string { return e.message }

// Extensions はgraphql-goがレスポンスのextensionsに出力する値を返す。
func (e *resolverError) Extensions() map[string]interface{} {
	return map[string]interface{}{
		"code":     e.code,
		"category": e.category,
	}
}

// toGraphQLError はサービス層のエラーをGraphQLエラーに変換する。
// APIErrorはメッセージをそのまま返し、それ以外は内部エラーとしてログに記録する。
func (r *Resolver) toGraphQLError(op string, err error) error {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		return &resolverError{
			code:     apiErr.Code,
			category: apiErr.Category,
			message:  apiErr.Message,
		}
	}

	r.logger.Error("graphql resolver failed",
		slog.String("op", op),
		slog.String("error", err.Error()),
	)
	return &resolverError{
		code:     ErrCodeInternal,
		category: "system",
		message:  "internal error",
	}
}
