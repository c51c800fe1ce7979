package gql

import (
	"context"

	"github.com/graph-gophers/graphql-go"

	"github.com/hitoshi/postgraph/internal/model"
)

type userResolver struct {
	root *Resolver
	u    model.User
}

func (r *Resolver) user(u model.User) *userResolver {
	return &userResolver{root: r, u: u}
}

func (r *Resolver) users(us []model.User) []*userResolver {
	out := make([]*userResolver, 0, len(us))
	for _, u := range us {
		out = append(out, r.user(u))
	}
	return out
}

func (u *userResolver) ID() graphql.ID { return graphql.ID(u.u.ID) }
func (u *userResolver) Name() string   { return u.u.Name }
func (u *userResolver) Email() string  { return u.u.Email }

func (u *userResolver) Age() *int32 {
	if u.u.Age == nil {
		return nil
	}
	age := int32(*u.u.Age)
	return &age
}

func (u *userResolver) Posts(ctx context.Context) []*postResolver {
	return u.root.posts(u.root.queries.UserPosts(ctx, u.u))
}

func (u *userResolver) Comments(ctx context.Context) []*commentResolver {
	return u.root.comments(u.root.queries.UserComments(ctx, u.u))
}

type postResolver struct {
	root *Resolver
	p    model.Post
}

func (r *Resolver) post(p model.Post) *postResolver {
	return &postResolver{root: r, p: p}
}

func (r *Resolver) posts(ps []model.Post) []*postResolver {
	out := make([]*postResolver, 0, len(ps))
	for _, p := range ps {
		out = append(out, r.post(p))
	}
	return out
}

func (p *postResolver) ID() graphql.ID  { return graphql.ID(p.p.ID) }
func (p *postResolver) Title() string   { return p.p.Title }
func (p *postResolver) Body() string    { return p.p.Body }
func (p *postResolver) Published() bool { return p.p.Published }

func (p *postResolver) Author(ctx context.Context) (*userResolver, error) {
	u, err := p.root.queries.PostAuthor(ctx, p.p)
	if err != nil {
		return nil, p.root.toGraphQLError("Post.author", err)
	}
	return p.root.user(u), nil
}

func (p *postResolver) Comments(ctx context.Context) []*commentResolver {
	return p.root.comments(p.root.queries.PostComments(ctx, p.p))
}

type commentResolver struct {
	root *Resolver
	c    model.Comment
}

func (r *Resolver) comment(c model.Comment) *commentResolver {
	return &commentResolver{root: r, c: c}
}

func (r *Resolver) comments(cs []model.Comment) []*commentResolver {
	out := make([]*commentResolver, 0, len(cs))
	for _, c := range cs {
		out = append(out, r.comment(c))
	}
	return out
}

func (c *commentResolver) ID() graphql.ID { return graphql.ID(c.c.ID) }
func (c *commentResolver) Text() string   { return c.c.Text }

func (c *commentResolver) Author(ctx context.Context) (*userResolver, error) {
	u, err := c.root.queries.CommentAuthor(ctx, c.c)
	if err != nil {
		return nil, c.root.toGraphQLError("Comment.author", err)
	}
	return c.root.user(u), nil
}

func (c *commentResolver) Post(ctx context.Context) (*postResolver, error) {
	p, err := c.root.queries.CommentPost(ctx, c.c)
	if err != nil {
		return nil, c.root.toGraphQLError("Comment.post", err)
	}
	return c.root.post(p), nil
}
