package handler

import (
	"bytes"
	"encoding/json"

	"github.com/hitoshi/postgraph/internal/model"
)

// optional はPATCHボディのフィールドの有無とnullを区別してデコードする。
// フィールドが省略された場合はSetがfalseのまま残る。
type optional[T any] struct {
	Set   bool
	Value *T
}

// UnmarshalJSON はフィールドが存在した場合に呼ばれる。nullの場合はValueをnilのままにする。
func (o *optional[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	if bytes.Equal(b, []byte("null")) {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// field は必須フィールドの部分更新値に変換する。nullは未指定として扱う。
func (o optional[T]) field() model.Field[T] {
	if !o.Set || o.Value == nil {
		return model.Absent[T]()
	}
	return model.Present(*o.Value)
}

// nullableField はnullを値の削除として扱う部分更新値に変換する。
func (o optional[T]) nullableField() model.Field[*T] {
	if !o.Set {
		return model.Absent[*T]()
	}
	return model.Present(o.Value)
}
