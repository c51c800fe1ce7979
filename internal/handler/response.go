package handler

import "github.com/hitoshi/postgraph/internal/model"

// userResponse はユーザー情報のAPIレスポンス。
type userResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Age   *int   `json:"age"`
}

// postResponse は記事情報のAPIレスポンス。
type postResponse struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	Published bool   `json:"published"`
	Author    string `json:"author"`
}

// commentResponse はコメント情報のAPIレスポンス。
type commentResponse struct {
	ID     string `json:"id"`
	Text   string `json:"text"`
	Author string `json:"author"`
	Post   string `json:"post"`
}

func toUserResponse(u model.User) userResponse {
	return userResponse{ID: u.ID, Name: u.Name, Email: u.Email, Age: u.Age}
}

func toPostResponse(p model.Post) postResponse {
	return postResponse{ID: p.ID, Title: p.Title, Body: p.Body, Published: p.Published, Author: p.Author}
}

func toCommentResponse(c model.Comment) commentResponse {
	return commentResponse{ID: c.ID, Text: c.Text, Author: c.Author, Post: c.Post}
}

func toUserResponses(us []model.User) []userResponse {
	out := make([]userResponse, 0, len(us))
	for _, u := range us {
		out = append(out, toUserResponse(u))
	}
	return out
}

func toPostResponses(ps []model.Post) []postResponse {
	out := make([]postResponse, 0, len(ps))
	for _, p := range ps {
		out = append(out, toPostResponse(p))
	}
	return out
}

func toCommentResponses(cs []model.Comment) []commentResponse {
	out := make([]commentResponse, 0, len(cs))
	for _, c := range cs {
		out = append(out, toCommentResponse(c))
	}
	return out
}
