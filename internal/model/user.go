// Package model はドメインモデルを定義する。
package model

import "math"

// 年齢として受け付ける範囲。GraphQLのInt型（32ビット符号付き整数）で表現できる値に限る。
const (
	MinAge = math.MinInt32
	MaxAge = math.MaxInt32
)

// ValidAge は年齢がMinAge以上MaxAge以下かを返す。nilは未設定として有効。
func ValidAge(age *int) bool {
	return age == nil || (*age >= MinAge && *age <= MaxAge)
}

// User はサービス利用ユーザーを表す。
// Emailはユーザー間で一意でなければならない。
type User struct {
	ID    string
	Name  string
	Email string
	Age   *int
}

// CreateUserInput はユーザー作成の入力。
type CreateUserInput struct {
	Name  string
	Email string
	Age   *int
}

// UpdateUserInput はユーザーの部分更新の入力。
// Setがfalseのフィールドは既存の値を維持する。
// Ageは値がnilでSetがtrueの場合、年齢を未設定に戻す。
type UpdateUserInput struct {
	Name  Field[string]
	Email Field[string]
	Age   Field[*int]
}

// Clone はポインタフィールドを複製したコピーを返す。
func (u User) Clone() User {
	if u.Age != nil {
		age := *u.Age
		u.Age = &age
	}
	return u
}
