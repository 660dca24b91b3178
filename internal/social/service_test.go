// Copyright (c) 2026 Vitalink. All rights reserved.
// Author: dev@vitalink.health

package social

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalink/vitalink/internal/platform/apperr"
)

type fakePostRepo struct {
	nextID int64
	posts  map[int64]*Post
}

func (r *fakePostRepo) FindByID(_ context.Context, id int64) (*Post, error) {
	if post, ok := r.posts[id]; ok {
		copied := *post
		return &copied, nil
	}
	return nil, apperr.NotFound("Post")
}

func (r *fakePostRepo) Create(_ context.Context, post *Post) error {
	r.nextID++
	post.ID = r.nextID
	copied := *post
	r.posts[post.ID] = &copied
	return nil
}

func (r *fakePostRepo) Update(_ context.Context, post *Post) error {
	copied := *post
	r.posts[post.ID] = &copied
	return nil
}

func (r *fakePostRepo) Delete(_ context.Context, postID int64) error {
	delete(r.posts, postID)
	return nil
}

func (r *fakePostRepo) List(context.Context, int, int) ([]*Post, int, error) {
	var posts []*Post
	for _, post := range r.posts {
		copied := *post
		posts = append(posts, &copied)
	}
	return posts, len(posts), nil
}

func (r *fakePostRepo) ListByUser(_ context.Context, userID int64, _, _ int) ([]*Post, int, error) {
	var posts []*Post
	for _, post := range r.posts {
		if post.UserID == userID {
			copied := *post
			posts = append(posts, &copied)
		}
	}
	return posts, len(posts), nil
}

func (r *fakePostRepo) ListIDsByUser(_ context.Context, userID int64) ([]int64, error) {
	var ids []int64
	for _, post := range r.posts {
		if post.UserID == userID {
			ids = append(ids, post.ID)
		}
	}
	return ids, nil
}

type fakeCommentRepo struct {
	nextID   int64
	comments map[int64]*Comment
}

func (r *fakeCommentRepo) FindByID(_ context.Context, id int64) (*Comment, error) {
	if comment, ok := r.comments[id]; ok {
		copied := *comment
		return &copied, nil
	}
	return nil, apperr.NotFound("Comment")
}

func (r *fakeCommentRepo) Create(_ context.Context, comment *Comment) error {
	r.nextID++
	comment.ID = r.nextID
	copied := *comment
	r.comments[comment.ID] = &copied
	return nil
}

func (r *fakeCommentRepo) Delete(_ context.Context, commentID int64) error {
	delete(r.comments, commentID)
	return nil
}

func (r *fakeCommentRepo) ListByPost(_ context.Context, postID int64) ([]*Comment, error) {
	var comments []*Comment
	for _, comment := range r.comments {
		if comment.PostID == postID {
			copied := *comment
			comments = append(comments, &copied)
		}
	}
	return comments, nil
}

func (r *fakeCommentRepo) ListIDsByPost(_ context.Context, postID int64) ([]int64, error) {
	var ids []int64
	for _, comment := range r.comments {
		if comment.PostID == postID {
			ids = append(ids, comment.ID)
		}
	}
	return ids, nil
}

func (r *fakeCommentRepo) DeleteByPost(_ context.Context, postID int64) error {
	for id, comment := range r.comments {
		if comment.PostID == postID {
			delete(r.comments, id)
		}
	}
	return nil
}

func (r *fakeCommentRepo) DeleteByUser(_ context.Context, userID int64) error {
	for id, comment := range r.comments {
		if comment.UserID == userID {
			delete(r.comments, id)
		}
	}
	return nil
}

type fakeReactionRepo struct {
	nextID    int64
	reactions map[int64]*Reaction
}

func (r *fakeReactionRepo) Find(_ context.Context, userID int64, targetType TargetType, targetID int64) (*Reaction, error) {
	for _, reaction := range r.reactions {
		if reaction.UserID == userID && reaction.TargetType == targetType && reaction.TargetID == targetID {
			copied := *reaction
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("Reaction")
}

func (r *fakeReactionRepo) Create(_ context.Context, reaction *Reaction) error {
	r.nextID++
	reaction.ID = r.nextID
	copied := *reaction
	r.reactions[reaction.ID] = &copied
	return nil
}

func (r *fakeReactionRepo) UpdateValue(_ context.Context, reactionID int64, value ReactionValue) error {
	r.reactions[reactionID].Value = value
	return nil
}

func (r *fakeReactionRepo) Count(_ context.Context, targetType TargetType, targetID int64) (int, int, error) {
	var likes, dislikes int
	for _, reaction := range r.reactions {
		if reaction.TargetType != targetType || reaction.TargetID != targetID {
			continue
		}
		switch reaction.Value {
		case ReactionLike:
			likes++
		case ReactionDislike:
			dislikes++
		}
	}
	return likes, dislikes, nil
}

func (r *fakeReactionRepo) DeleteByTarget(_ context.Context, targetType TargetType, targetID int64) error {
	for id, reaction := range r.reactions {
		if reaction.TargetType == targetType && reaction.TargetID == targetID {
			delete(r.reactions, id)
		}
	}
	return nil
}

func (r *fakeReactionRepo) DeleteByUser(_ context.Context, userID int64) error {
	for id, reaction := range r.reactions {
		if reaction.UserID == userID {
			delete(r.reactions, id)
		}
	}
	return nil
}

type stubCatalog struct {
	articles map[int64]bool
	goods    map[int64]bool
}

func (c *stubCatalog) ArticleExists(_ context.Context, id int64) (bool, error) {
	return c.articles[id], nil
}

func (c *stubCatalog) GoodExists(_ context.Context, id int64) (bool, error) {
	return c.goods[id], nil
}

type socialFixture struct {
	service   *Service
	posts     *fakePostRepo
	comments  *fakeCommentRepo
	reactions *fakeReactionRepo
	catalog   *stubCatalog
}

func newSocialFixture() *socialFixture {
	posts := &fakePostRepo{posts: map[int64]*Post{}}
	comments := &fakeCommentRepo{comments: map[int64]*Comment{}}
	reactions := &fakeReactionRepo{reactions: map[int64]*Reaction{}}
	catalog := &stubCatalog{articles: map[int64]bool{}, goods: map[int64]bool{}}

	return &socialFixture{
		service:   NewService(posts, comments, reactions, catalog),
		posts:     posts,
		comments:  comments,
		reactions: reactions,
		catalog:   catalog,
	}
}

// ── Posts ────────────────────────────────────────────────────────────────────

func TestSavePostCreateOrUpdate(t *testing.T) {
	fixture := newSocialFixture()

	created, err := fixture.service.SavePost(context.Background(), 1, PostInput{
		Title: "Morning run", Content: "10k before breakfast",
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	// A nonzero ID routes to update.
	updated, err := fixture.service.SavePost(context.Background(), 1, PostInput{
		ID: created.ID, Title: "Morning run (edited)", Content: "10k before breakfast",
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Morning run (edited)", fixture.posts.posts[created.ID].Title)
}

func TestSavePostRejectsForeignPost(t *testing.T) {
	fixture := newSocialFixture()

	created, err := fixture.service.SavePost(context.Background(), 1, PostInput{
		Title: "Mine", Content: "body",
	})
	require.NoError(t, err)

	_, err = fixture.service.SavePost(context.Background(), 2, PostInput{
		ID: created.ID, Title: "Hijacked", Content: "body",
	})
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
}

func TestAddCommentRequiresPost(t *testing.T) {
	fixture := newSocialFixture()

	_, err := fixture.service.AddComment(context.Background(), 1, CommentInput{
		PostID: 99, Content: "nice",
	})
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
}

func TestDeletePostCascades(t *testing.T) {
	fixture := newSocialFixture()

	post, err := fixture.service.SavePost(context.Background(), 1, PostInput{Title: "t", Content: "c"})
	require.NoError(t, err)

	comment, err := fixture.service.AddComment(context.Background(), 2, CommentInput{PostID: post.ID, Content: "hi"})
	require.NoError(t, err)

	_, err = fixture.service.React(context.Background(), 2, TargetPost, post.ID, ReactionLike)
	require.NoError(t, err)
	_, err = fixture.service.React(context.Background(), 1, TargetComment, comment.ID, ReactionLike)
	require.NoError(t, err)

	require.NoError(t, fixture.service.DeletePost(context.Background(), 1, post.ID))

	assert.Empty(t, fixture.posts.posts)
	assert.Empty(t, fixture.comments.comments)
	assert.Empty(t, fixture.reactions.reactions)
}

// ── Reactions ────────────────────────────────────────────────────────────────

func TestReactToggleSemantics(t *testing.T) {
	fixture := newSocialFixture()
	post, err := fixture.service.SavePost(context.Background(), 1, PostInput{Title: "t", Content: "c"})
	require.NoError(t, err)

	// First like is recorded.
	result, err := fixture.service.React(context.Background(), 2, TargetPost, post.ID, ReactionLike)
	require.NoError(t, err)
	assert.Equal(t, ReactionLike, result.Value)
	assert.Equal(t, 1, result.Likes)

	// Same stance again toggles off but keeps the row.
	result, err = fixture.service.React(context.Background(), 2, TargetPost, post.ID, ReactionLike)
	require.NoError(t, err)
	assert.Equal(t, ReactionNone, result.Value)
	assert.Equal(t, 0, result.Likes)
	assert.Len(t, fixture.reactions.reactions, 1)

	// A dislike replaces the toggled-off stance.
	result, err = fixture.service.React(context.Background(), 2, TargetPost, post.ID, ReactionDislike)
	require.NoError(t, err)
	assert.Equal(t, ReactionDislike, result.Value)
	assert.Equal(t, 0, result.Likes)
	assert.Equal(t, 1, result.Dislikes)

	// And a like replaces the dislike directly.
	result, err = fixture.service.React(context.Background(), 2, TargetPost, post.ID, ReactionLike)
	require.NoError(t, err)
	assert.Equal(t, ReactionLike, result.Value)
	assert.Equal(t, 1, result.Likes)
	assert.Equal(t, 0, result.Dislikes)
}

func TestReactChecksPolymorphicTarget(t *testing.T) {
	fixture := newSocialFixture()

	_, err := fixture.service.React(context.Background(), 1, TargetArticle, 42, ReactionLike)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)

	fixture.catalog.articles[42] = true
	result, err := fixture.service.React(context.Background(), 1, TargetArticle, 42, ReactionLike)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Likes)
}

func TestReactRejectsBadInput(t *testing.T) {
	fixture := newSocialFixture()

	_, err := fixture.service.React(context.Background(), 1, TargetType(9), 1, ReactionLike)
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)

	_, err = fixture.service.React(context.Background(), 1, TargetPost, 1, ReactionNone)
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
}

func TestPurgeUserDataRemovesEverything(t *testing.T) {
	fixture := newSocialFixture()

	post, err := fixture.service.SavePost(context.Background(), 1, PostInput{Title: "t", Content: "c"})
	require.NoError(t, err)
	_, err = fixture.service.AddComment(context.Background(), 1, CommentInput{PostID: post.ID, Content: "self"})
	require.NoError(t, err)
	_, err = fixture.service.React(context.Background(), 1, TargetPost, post.ID, ReactionLike)
	require.NoError(t, err)

	require.NoError(t, fixture.service.PurgeUserData(context.Background(), 1))

	assert.Empty(t, fixture.posts.posts)
	assert.Empty(t, fixture.comments.comments)
	assert.Empty(t, fixture.reactions.reactions)
}
