package gql

import (
	"context"
	"fmt"
	"net/http"

	"github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/relay"
)

// Snapshotter はリクエスト単位の読み取りスナップショットを提供する。store.Storeが実装する。
type Snapshotter interface {
	WithSnapshot(ctx context.Context) (context.Context, func())
}

// NewHandler はスキーマを解析してPOST /graphql用のHTTPハンドラーを返す。
// maxDepthが正の場合はクエリのネスト深さを制限する。
// snapsが指定された場合、クエリ操作はルートフィールドからエッジまで同じ状態を読む。
func NewHandler(r *Resolver, maxDepth int, snaps Snapshotter) (http.Handler, error) {
	var opts []graphql.SchemaOpt
	if maxDepth > 0 {
		opts = append(opts, graphql.MaxDepth(maxDepth))
	}
	schema, err := graphql.ParseSchema(Schema, r, opts...)
	if err != nil {
		return nil, fmt.Errorf("parse graphql schema: %w", err)
	}

	h := &relay.Handler{Schema: schema}
	if snaps == nil {
		return h, nil
	}
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		ctx, release := snaps.WithSnapshot(req.Context())
		defer release()
		h.ServeHTTP(w, req.WithContext(ctx))
	}), nil
}
