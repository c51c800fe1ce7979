// Package gql はgraph-gophers/graphql-goを用いてGraphQLスキーマをクエリ・ミューテーション層に結び付ける。
package gql

// Schema はGraphQLスキーマ定義。
const Schema = `
schema {
	query: Query
	mutation: Mutation
}

type Query {
	users(query: String): [User!]!
	posts(query: String): [Post!]!
	comments: [Comment!]!
}

type Mutation {
	createUser(name: String!, email: String!, age: Int): User!
	deleteUser(id: ID!): User!
	updateUser(id: ID!, data: UpdateUserInput!): User!
	createPost(data: CreatePostInput!): Post!
	deletePost(id: ID!): Post!
	updatePost(id: ID!, data: UpdatePostInput!): Post!
	createComment(data: CreateCommentInput!): Comment!
	deleteComment(id: ID!): Comment!
	updateComment(id: ID!, data: UpdateCommentInput!): Comment!
}

input UpdateUserInput {
	name: String
	email: String
	age: Int
}

input CreatePostInput {
	title: String!
	body: String!
	published: Boolean!
	author: ID!
}

input UpdatePostInput {
	title: String
	body: String
	published: Boolean
}

input CreateCommentInput {
	text: String!
	author: ID!
	post: ID!
}

input UpdateCommentInput {
	text: String
}

type User {
	id: ID!
	name: String!
	email: String!
	age: Int
	posts: [Post!]!
	comments: [Comment!]!
}

type Post {
	id: ID!
	title: String!
	body: String!
	published: Boolean!
	author: User!
	comments: [Comment!]!
}

type Comment {
	id: ID!
	text: String!
	author: User!
	post: Post!
}
`
