package security

import (
	"strings"
	"testing"

	"github.com/hitoshi/postgraph/internal/model"
)

// TestSanitize_AllowedTags は許可タグが正しく通過することを検証する。
func TestSanitize_AllowedTags(t *testing.T) {
	sanitizer := NewContentSanitizer()

	tests := []struct {
		name         string
		input        string
		wantContains []string
	}{
		{
			name:         "pタグが許可される",
			input:        "<p>テスト段落</p>",
			wantContains: []string{"<p>テスト段落</p>"},
		},
		{
			name:         "ulタグとliタグが許可される",
			input:        "<ul><li>項目1</li><li>項目2</li></ul>",
			wantContains: []string{"<ul>", "<li>項目1</li>", "</ul>"},
		},
		{
			name:         "preとcodeが許可される",
			input:        "<pre><code>go test</code></pre>",
			wantContains: []string{"<pre><code>go test</code></pre>"},
		},
		{
			name:         "aタグにtargetとrelが付与される",
			input:        `<a href="https://example.com">リンク</a>`,
			wantContains: []string{`href="https://example.com"`, `target="_blank"`, "noopener", "noreferrer"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizer.Sanitize(tt.input)
			for _, want := range tt.wantContains {
				if !strings.Contains(got, want) {
					t.Errorf("Sanitize(%q) = %q, want to contain %q", tt.input, got, want)
				}
			}
		})
	}
}

// TestSanitize_DangerousContentRemoved は危険なタグと属性が除去されることを検証する。
func TestSanitize_DangerousContentRemoved(t *testing.T) {
	sanitizer := NewContentSanitizer()

	tests := []struct {
		name        string
		input       string
		wantMissing []string
	}{
		{"scriptタグが除去される", "<p>ok</p><script>alert(1)</script>", []string{"<script", "alert(1)"}},
		{"iframeタグが除去される", `<iframe src="https://evil.example"></iframe>`, []string{"<iframe"}},
		{"onclick属性が除去される", `<p onclick="alert(1)">x</p>`, []string{"onclick"}},
		{"javascriptスキームが除去される", `<a href="javascript:alert(1)">x</a>`, []string{"javascript:"}},
		{"相対URLが除去される", `<a href="/local">x</a>`, []string{`href="/local"`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizer.Sanitize(tt.input)
			for _, bad := range tt.wantMissing {
				if strings.Contains(got, bad) {
					t.Errorf("Sanitize(%q) = %q, should not contain %q", tt.input, got, bad)
				}
			}
		})
	}
}

// TestSanitize_Idempotent は同一入力に対して常に同一出力を返すことを検証する。
func TestSanitize_Idempotent(t *testing.T) {
	sanitizer := NewContentSanitizer()
	input := `<p>a<script>x</script><a href="https://example.com">b</a></p>`

	first := sanitizer.Sanitize(input)
	second := sanitizer.Sanitize(first)
	if first != second {
		t.Errorf("Sanitize is not idempotent: %q != %q", first, second)
	}
	if sanitizer.Sanitize("") != "" {
		t.Error("empty input should return empty string")
	}
}

// TestStripTags はタグが全て除去されテキストが残ることを検証する。
func TestStripTags(t *testing.T) {
	sanitizer := NewContentSanitizer()

	got := sanitizer.StripTags("<strong>Hello</strong> world<script>x</script>")
	if strings.Contains(got, "<") {
		t.Errorf("StripTags should remove all tags, got %q", got)
	}
	if !strings.Contains(got, "Hello") || !strings.Contains(got, "world") {
		t.Errorf("StripTags should keep text, got %q", got)
	}
}

// TestSanitizeInputs は入力構造体の該当フィールドのみがサニタイズされることを検証する。
func TestSanitizeInputs(t *testing.T) {
	sanitizer := NewContentSanitizer()

	post := sanitizer.CreatePost(model.CreatePostInput{
		Title:     "<em>Title</em>",
		Body:      "<p>Body</p><script>x</script>",
		Published: true,
		Author:    "u1",
	})
	if post.Title != "Title" {
		t.Errorf("Title = %q, want %q", post.Title, "Title")
	}
	if post.Body != "<p>Body</p>" {
		t.Errorf("Body = %q, want %q", post.Body, "<p>Body</p>")
	}
	if !post.Published || post.Author != "u1" {
		t.Error("non-text fields should be preserved")
	}

	upd := sanitizer.UpdatePost(model.UpdatePostInput{Body: model.Present("<b>x</b>")})
	if upd.Title.Set {
		t.Error("absent Title should stay absent")
	}
	if upd.Body.Value != "x" {
		t.Errorf("Body = %q, want %q", upd.Body.Value, "x")
	}

	c := sanitizer.CreateComment(model.CreateCommentInput{Text: "<i>hi</i>", Author: "u1", Post: "p1"})
	if c.Text != "hi" {
		t.Errorf("Text = %q, want %q", c.Text, "hi")
	}

	uc := sanitizer.UpdateComment(model.UpdateCommentInput{})
	if uc.Text.Set {
		t.Error("absent Text should stay absent")
	}
}

// TestNopSanitizer は入力が変更されないことを検証する。
func TestNopSanitizer(t *testing.T) {
	s := NewNopSanitizer()
	in := model.CreatePostInput{Title: "<em>t</em>", Body: "<script>x</script>"}

	if got := s.CreatePost(in); got != in {
		t.Errorf("CreatePost = %+v, want %+v", got, in)
	}
	if got := s.Sanitize("<script>x</script>"); got != "<script>x</script>" {
		t.Errorf("Sanitize = %q", got)
	}
}
