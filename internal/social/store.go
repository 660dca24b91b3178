// Copyright (c) 2026 Vitalink. All rights reserved.
// Author: dev@vitalink.health

package social

import "context"

// PostRepository defines the data access contract for feed posts.
type PostRepository interface {
	// FindByID returns the post with the given ID.
	//
	// Returns [apperr.NotFound] if the post does not exist.
	FindByID(ctx context.Context, id int64) (*Post, error)

	// Create persists a new post and assigns its ID.
	Create(ctx context.Context, post *Post) error

	// Update persists changes to an existing post.
	Update(ctx context.Context, post *Post) error

	// Delete removes the post row. Comments and reactions are removed by the
	// service-level cascade, not here.
	Delete(ctx context.Context, postID int64) error

	// List returns posts newest first.
	List(ctx context.Context, limit, offset int) ([]*Post, int, error)

	// ListByUser returns the member's own posts newest first.
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*Post, int, error)

	// ListIDsByUser returns every post ID the member authored. Used by the
	// delete cascade.
	ListIDsByUser(ctx context.Context, userID int64) ([]int64, error)
}

// CommentRepository defines the data access contract for post comments.
type CommentRepository interface {
	// FindByID returns the comment with the given ID.
	//
	// Returns [apperr.NotFound] if the comment does not exist.
	FindByID(ctx context.Context, id int64) (*Comment, error)

	// Create persists a new comment and assigns its ID.
	Create(ctx context.Context, comment *Comment) error

	// Delete removes one comment row.
	Delete(ctx context.Context, commentID int64) error

	// ListByPost returns the post's comments oldest first.
	ListByPost(ctx context.Context, postID int64) ([]*Comment, error)

	// ListIDsByPost returns every comment ID under the post. Used by the
	// delete cascade to clean comment reactions.
	ListIDsByPost(ctx context.Context, postID int64) ([]int64, error)

	// DeleteByPost removes every comment under the post.
	DeleteByPost(ctx context.Context, postID int64) error

	// DeleteByUser removes every comment the member wrote.
	DeleteByUser(ctx context.Context, userID int64) error
}

// ReactionRepository defines the data access contract for reactions.
type ReactionRepository interface {
	// Find returns the member's reaction row on a target.
	//
	// Returns [apperr.NotFound] if the member never reacted to it.
	Find(ctx context.Context, userID int64, targetType TargetType, targetID int64) (*Reaction, error)

	// Create persists a new reaction row and assigns its ID.
	Create(ctx context.Context, reaction *Reaction) error

	// UpdateValue changes the stance of an existing row.
	UpdateValue(ctx context.Context, reactionID int64, value ReactionValue) error

	// Count returns the live like and dislike totals of a target.
	Count(ctx context.Context, targetType TargetType, targetID int64) (likes, dislikes int, err error)

	// DeleteByTarget removes every reaction row pointing at a target.
	DeleteByTarget(ctx context.Context, targetType TargetType, targetID int64) error

	// DeleteByUser removes every reaction the member made.
	DeleteByUser(ctx context.Context, userID int64) error
}
