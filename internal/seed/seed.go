// Package seed は起動時に投入する初期データをYAMLファイルから読み込む。
//
// 記事・コメントの参照先はファイル内で定義したキーで指定する。
// IDは投入時にミューテーションサービスが発行するため、ファイルには書かない。
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hitoshi/postgraph/internal/model"
)

// File はシードファイルの内容。
type File struct {
	Users    []User    `yaml:"users"`
	Posts    []Post    `yaml:"posts"`
	Comments []Comment `yaml:"comments"`
}

// User はシードファイル内のユーザー定義。
type User struct {
	Key   string `yaml:"key"`
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
	Age   *int   `yaml:"age"`
}

// Post はシードファイル内の記事定義。Authorはユーザーのキー。
type Post struct {
	Key       string `yaml:"key"`
	Title     string `yaml:"title"`
	Body      string `yaml:"body"`
	Published bool   `yaml:"published"`
	Author    string `yaml:"author"`
}

// Comment はシードファイル内のコメント定義。AuthorとPostはそれぞれのキー。
type Comment struct {
	Text   string `yaml:"text"`
	Author string `yaml:"author"`
	Post   string `yaml:"post"`
}

// Mutator はシード投入に使用する作成操作。
type Mutator interface {
	CreateUser(ctx context.Context, in model.CreateUserInput) (*model.User, error)
	CreatePost(ctx context.Context, in model.CreatePostInput) (*model.Post, error)
	CreateComment(ctx context.Context, in model.CreateCommentInput) (*model.Comment, error)
}

// Summary は投入したレコード数。
type Summary struct {
	Users    int
	Posts    int
	Comments int
}

// Parse はYAMLを読み込みキー参照を検証する。未知のフィールドはエラーにする。
func Parse(r io.Reader) (*File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// LoadFile はpathのシードファイルを読み込む。
func LoadFile(path string) (*File, error) {
	fp, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer fp.Close()
	return Parse(fp)
}

func (f *File) validate() error {
	users := make(map[string]struct{}, len(f.Users))
	for i, u := range f.Users {
		if u.Key == "" {
			return fmt.Errorf("seed: users[%d]: key is required", i)
		}
		if _, dup := users[u.Key]; dup {
			return fmt.Errorf("seed: users[%d]: duplicate key %q", i, u.Key)
		}
		if !model.ValidAge(u.Age) {
			return fmt.Errorf("seed: users[%d]: age %d out of range", i, *u.Age)
		}
		users[u.Key] = struct{}{}
	}

	posts := make(map[string]struct{}, len(f.Posts))
	for i, p := range f.Posts {
		if p.Key == "" {
			return fmt.Errorf("seed: posts[%d]: key is required", i)
		}
		if _, dup := posts[p.Key]; dup {
			return fmt.Errorf("seed: posts[%d]: duplicate key %q", i, p.Key)
		}
		if _, ok := users[p.Author]; !ok {
			return fmt.Errorf("seed: posts[%d]: unknown author %q", i, p.Author)
		}
		posts[p.Key] = struct{}{}
	}

	for i, c := range f.Comments {
		if _, ok := users[c.Author]; !ok {
			return fmt.Errorf("seed: comments[%d]: unknown author %q", i, c.Author)
		}
		if _, ok := posts[c.Post]; !ok {
			return fmt.Errorf("seed: comments[%d]: unknown post %q", i, c.Post)
		}
	}
	return nil
}

// Apply はユーザー・記事・コメントの順にミューテーション経由で投入する。
// 作成時の検査（メール重複、非公開記事へのコメント等）はそのまま適用され、
// 最初に失敗した時点で中断する。
func Apply(ctx context.Context, m Mutator, f *File) (Summary, error) {
	var sum Summary
	userIDs := make(map[string]string, len(f.Users))
	postIDs := make(map[string]string, len(f.Posts))

	for _, u := range f.Users {
		created, err := m.CreateUser(ctx, model.CreateUserInput{Name: u.Name, Email: u.Email, Age: u.Age})
		if err != nil {
			return sum, fmt.Errorf("seed user %q: %w", u.Key, err)
		}
		userIDs[u.Key] = created.ID
		sum.Users++
	}

	for _, p := range f.Posts {
		created, err := m.CreatePost(ctx, model.CreatePostInput{
			Title:     p.Title,
			Body:      p.Body,
			Published: p.Published,
			Author:    userIDs[p.Author],
		})
		if err != nil {
			return sum, fmt.Errorf("seed post %q: %w", p.Key, err)
		}
		postIDs[p.Key] = created.ID
		sum.Posts++
	}

	for i, c := range f.Comments {
		_, err := m.CreateComment(ctx, model.CreateCommentInput{
			Text:   c.Text,
			Author: userIDs[c.Author],
			Post:   postIDs[c.Post],
		})
		if err != nil {
			return sum, fmt.Errorf("seed comment %d: %w", i, err)
		}
		sum.Comments++
	}
	return sum, nil
}
