// Copyright (c) 2026 Vitalink. All rights reserved.
// Author: dev@vitalink.health

// Package social implements the community feed: member posts, comments, and
// the polymorphic like/dislike reactions shared with the CMS catalog.
package social

import "time"

// Post is one feed entry.
//
// The author's display nickname is denormalized onto the row so feed reads
// never join the users table and renamed accounts keep their historic byline.
type Post struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	Nickname   string    `json:"nickname"`
	Image      string    `json:"image"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	CreateDate time.Time `json:"create_date"`
	UpdateDate time.Time `json:"update_date"`

	// Aggregates filled on reads, never stored.
	Likes    int `json:"likes"`
	Dislikes int `json:"dislikes"`
	Comments int `json:"comments"`
}

// Comment is one member comment under a post.
type Comment struct {
	ID         int64     `json:"id"`
	PostID     int64     `json:"post_id"`
	UserID     int64     `json:"user_id"`
	Nickname   string    `json:"nickname"`
	Content    string    `json:"content"`
	CreateDate time.Time `json:"create_date"`

	Likes    int `json:"likes"`
	Dislikes int `json:"dislikes"`
}

// TargetType selects which entity family a reaction points at.
type TargetType int

const (
	TargetPost TargetType = iota
	TargetArticle
	TargetGood
	TargetComment
)

// Valid reports whether the value is a known target family.
func (t TargetType) Valid() bool {
	return t >= TargetPost && t <= TargetComment
}

// ReactionValue is the member's stance on a target.
type ReactionValue int

const (
	// ReactionNone is a toggled-off reaction; the row is kept.
	ReactionNone ReactionValue = iota
	ReactionLike
	ReactionDislike
)

// Reaction is one member's stance on one target. At most one row exists per
// (user, target type, target id).
type Reaction struct {
	ID         int64         `json:"id"`
	UserID     int64         `json:"user_id"`
	TargetType TargetType    `json:"type"`
	TargetID   int64         `json:"relation_id"`
	Value      ReactionValue `json:"value"`
	CreateDate time.Time     `json:"create_date"`
	UpdateDate time.Time     `json:"update_date"`
}
