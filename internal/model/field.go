package model

// Field は部分更新入力の1フィールドを表す。
// Setは入力にフィールドが含まれていたかどうかを示し、
// 「未指定」と「明示的なnull」を区別するために値とは独立して保持する。
type Field[T any] struct {
	Set   bool
	Value T
}

// Present は指定値をセット済みのFieldを返す。
func Present[T any](v T) Field[T] {
	return Field[T]{Set: true, Value: v}
}

// Absent は未指定のFieldを返す。
func Absent[T any]() Field[T] {
	return Field[T]{}
}

// Get は値とセット有無を返す。
func (f Field[T]) Get() (T, bool) {
	return f.Value, f.Set
}
