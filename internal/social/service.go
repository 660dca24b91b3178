// Copyright (c) 2026 Vitalink. All rights reserved.
// Author: dev@vitalink.health

// Community feed use cases: posting, commenting, and reacting.
package social

import (
	"context"
	"fmt"

	"github.com/vitalink/vitalink/internal/platform/apperr"
	"github.com/vitalink/vitalink/internal/platform/validate"
)

// CatalogResolver reports whether a CMS catalog entity exists. Reactions may
// point at articles and goods, which live outside this domain; the resolver
// keeps the polymorphic edge honest without coupling the feed to CMS storage.
type CatalogResolver interface {
	ArticleExists(ctx context.Context, articleID int64) (bool, error)
	GoodExists(ctx context.Context, goodID int64) (bool, error)
}

// Service implements the community feed use cases.
type Service struct {
	posts     PostRepository
	comments  CommentRepository
	reactions ReactionRepository
	catalog   CatalogResolver
}

// NewService constructs the social [Service] with its dependencies.
func NewService(
	posts PostRepository,
	comments CommentRepository,
	reactions ReactionRepository,
	catalog CatalogResolver,
) *Service {
	return &Service{
		posts:     posts,
		comments:  comments,
		reactions: reactions,
		catalog:   catalog,
	}
}

// # Posts

// PostInput carries a post to save. ID 0 means "create"; any other ID means
// "update that post", which only its author may do.
type PostInput struct {
	ID       int64  `json:"id"`
	Nickname string `json:"nickname"`
	Image    string `json:"image"`
	Title    string `json:"title"`
	Content  string `json:"content"`
}

// SavePost creates or updates a feed post following the ID convention.
func (service *Service) SavePost(ctx context.Context, userID int64, input PostInput) (*Post, error) {
	validator := &validate.Validator{}
	validator.
		Required("title", input.Title).
		MaxLen("title", input.Title, 200).
		Required("content", input.Content).
		MaxLen("nickname", input.Nickname, 30)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	if input.ID == 0 {
		post := &Post{
			UserID:   userID,
			Nickname: input.Nickname,
			Image:    input.Image,
			Title:    input.Title,
			Content:  input.Content,
		}
		if err := service.posts.Create(ctx, post); err != nil {
			return nil, fmt.Errorf("social_service_post_create_failed: %w", err)
		}
		return post, nil
	}

	post, err := service.posts.FindByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if post.UserID != userID {
		return nil, apperr.Forbidden("You can only edit your own posts")
	}

	post.Nickname = input.Nickname
	post.Image = input.Image
	post.Title = input.Title
	post.Content = input.Content
	if err := service.posts.Update(ctx, post); err != nil {
		return nil, fmt.Errorf("social_service_post_update_failed: %w", err)
	}

	return post, nil
}

// Feed returns the public feed newest first, decorated with reaction and
// comment totals.
func (service *Service) Feed(ctx context.Context, limit, offset int) ([]*Post, int, error) {
	posts, total, err := service.posts.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	if err := service.decoratePosts(ctx, posts); err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// MyPosts returns the member's own posts newest first.
func (service *Service) MyPosts(ctx context.Context, userID int64, limit, offset int) ([]*Post, int, error) {
	posts, total, err := service.posts.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	if err := service.decoratePosts(ctx, posts); err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// PostDetail is a post together with its comment thread.
type PostDetail struct {
	Post     *Post      `json:"post"`
	Comments []*Comment `json:"comments"`
}

// Detail returns one post with its decorated comment thread.
func (service *Service) Detail(ctx context.Context, postID int64) (*PostDetail, error) {
	post, err := service.posts.FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := service.decoratePosts(ctx, []*Post{post}); err != nil {
		return nil, err
	}

	comments, err := service.comments.ListByPost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("social_service_detail_comments_failed: %w", err)
	}
	for _, comment := range comments {
		likes, dislikes, err := service.reactions.Count(ctx, TargetComment, comment.ID)
		if err != nil {
			return nil, fmt.Errorf("social_service_detail_counts_failed: %w", err)
		}
		comment.Likes, comment.Dislikes = likes, dislikes
	}

	return &PostDetail{Post: post, Comments: comments}, nil
}

// DeletePost removes a post the member owns along with its comments and
// every reaction pointing at the post or its comments.
func (service *Service) DeletePost(ctx context.Context, userID, postID int64) error {
	post, err := service.posts.FindByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.UserID != userID {
		return apperr.Forbidden("You can only delete your own posts")
	}

	return service.cascadeDeletePost(ctx, postID)
}

// cascadeDeletePost is the ownership-free deletion shared with the admin
// cascade.
func (service *Service) cascadeDeletePost(ctx context.Context, postID int64) error {
	commentIDs, err := service.comments.ListIDsByPost(ctx, postID)
	if err != nil {
		return fmt.Errorf("social_service_cascade_comments_failed: %w", err)
	}
	for _, commentID := range commentIDs {
		if err := service.reactions.DeleteByTarget(ctx, TargetComment, commentID); err != nil {
			return fmt.Errorf("social_service_cascade_comment_reactions_failed: %w", err)
		}
	}

	if err := service.reactions.DeleteByTarget(ctx, TargetPost, postID); err != nil {
		return fmt.Errorf("social_service_cascade_post_reactions_failed: %w", err)
	}
	if err := service.comments.DeleteByPost(ctx, postID); err != nil {
		return fmt.Errorf("social_service_cascade_comments_delete_failed: %w", err)
	}
	if err := service.posts.Delete(ctx, postID); err != nil {
		return fmt.Errorf("social_service_cascade_post_delete_failed: %w", err)
	}

	return nil
}

func (service *Service) decoratePosts(ctx context.Context, posts []*Post) error {
	for _, post := range posts {
		likes, dislikes, err := service.reactions.Count(ctx, TargetPost, post.ID)
		if err != nil {
			return fmt.Errorf("social_service_decorate_counts_failed: %w", err)
		}
		commentIDs, err := service.comments.ListIDsByPost(ctx, post.ID)
		if err != nil {
			return fmt.Errorf("social_service_decorate_comments_failed: %w", err)
		}
		post.Likes, post.Dislikes, post.Comments = likes, dislikes, len(commentIDs)
	}
	return nil
}

// # Comments

// CommentInput carries a new comment.
type CommentInput struct {
	PostID   int64  `json:"post_id"`
	Nickname string `json:"nickname"`
	Content  string `json:"content"`
}

// AddComment appends a comment to an existing post.
func (service *Service) AddComment(ctx context.Context, userID int64, input CommentInput) (*Comment, error) {
	validator := &validate.Validator{}
	validator.
		Required("content", input.Content).
		MaxLen("content", input.Content, 2000).
		MaxLen("nickname", input.Nickname, 30)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	if _, err := service.posts.FindByID(ctx, input.PostID); err != nil {
		return nil, err
	}

	comment := &Comment{
		PostID:   input.PostID,
		UserID:   userID,
		Nickname: input.Nickname,
		Content:  input.Content,
	}
	if err := service.comments.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("social_service_comment_create_failed: %w", err)
	}

	return comment, nil
}

// DeleteComment removes a comment the member owns along with its reactions.
func (service *Service) DeleteComment(ctx context.Context, userID, commentID int64) error {
	comment, err := service.comments.FindByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.UserID != userID {
		return apperr.Forbidden("You can only delete your own comments")
	}

	if err := service.reactions.DeleteByTarget(ctx, TargetComment, commentID); err != nil {
		return fmt.Errorf("social_service_comment_reactions_failed: %w", err)
	}
	if err := service.comments.Delete(ctx, commentID); err != nil {
		return fmt.Errorf("social_service_comment_delete_failed: %w", err)
	}

	return nil
}

// # Reactions

// ReactionResult is the member's stance and the target's totals after a
// reaction toggle.
type ReactionResult struct {
	Value    ReactionValue `json:"value"`
	Likes    int           `json:"likes"`
	Dislikes int           `json:"dislikes"`
}

// React applies a like or dislike to a target.
//
// # Toggle Semantics
//   - No prior reaction           → the stance is recorded.
//   - Same stance already held    → the reaction toggles off.
//   - Opposite stance held        → the stance is replaced.
func (service *Service) React(ctx context.Context, userID int64, targetType TargetType, targetID int64, value ReactionValue) (*ReactionResult, error) {
	if !targetType.Valid() {
		return nil, apperr.ValidationError("Unknown reaction target type")
	}
	if value != ReactionLike && value != ReactionDislike {
		return nil, apperr.ValidationError("Reaction value must be like or dislike")
	}

	if err := service.checkTarget(ctx, targetType, targetID); err != nil {
		return nil, err
	}

	resulting := value
	existing, err := service.reactions.Find(ctx, userID, targetType, targetID)
	switch {
	case err != nil && apperr.As(err) != nil && apperr.As(err).Code == "NOT_FOUND":
		if err := service.reactions.Create(ctx, &Reaction{
			UserID:     userID,
			TargetType: targetType,
			TargetID:   targetID,
			Value:      value,
		}); err != nil {
			return nil, fmt.Errorf("social_service_reaction_create_failed: %w", err)
		}

	case err != nil:
		return nil, fmt.Errorf("social_service_reaction_find_failed: %w", err)

	case existing.Value == value:
		resulting = ReactionNone
		if err := service.reactions.UpdateValue(ctx, existing.ID, ReactionNone); err != nil {
			return nil, fmt.Errorf("social_service_reaction_toggle_failed: %w", err)
		}

	default:
		if err := service.reactions.UpdateValue(ctx, existing.ID, value); err != nil {
			return nil, fmt.Errorf("social_service_reaction_replace_failed: %w", err)
		}
	}

	likes, dislikes, err := service.reactions.Count(ctx, targetType, targetID)
	if err != nil {
		return nil, fmt.Errorf("social_service_reaction_count_failed: %w", err)
	}

	return &ReactionResult{Value: resulting, Likes: likes, Dislikes: dislikes}, nil
}

// checkTarget verifies the polymorphic edge points at a live entity.
func (service *Service) checkTarget(ctx context.Context, targetType TargetType, targetID int64) error {
	switch targetType {
	case TargetPost:
		_, err := service.posts.FindByID(ctx, targetID)
		return err
	case TargetComment:
		_, err := service.comments.FindByID(ctx, targetID)
		return err
	case TargetArticle:
		exists, err := service.catalog.ArticleExists(ctx, targetID)
		if err != nil {
			return fmt.Errorf("social_service_article_check_failed: %w", err)
		}
		if !exists {
			return apperr.NotFound("Article")
		}
		return nil
	case TargetGood:
		exists, err := service.catalog.GoodExists(ctx, targetID)
		if err != nil {
			return fmt.Errorf("social_service_good_check_failed: %w", err)
		}
		if !exists {
			return apperr.NotFound("Good")
		}
		return nil
	}
	return apperr.ValidationError("Unknown reaction target type")
}

// # Cascade

// PurgeUserData removes the member's posts (with their threads), comments,
// and reactions.
func (service *Service) PurgeUserData(ctx context.Context, userID int64) error {
	postIDs, err := service.posts.ListIDsByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("social_service_purge_posts_failed: %w", err)
	}
	for _, postID := range postIDs {
		if err := service.cascadeDeletePost(ctx, postID); err != nil {
			return err
		}
	}

	if err := service.comments.DeleteByUser(ctx, userID); err != nil {
		return fmt.Errorf("social_service_purge_comments_failed: %w", err)
	}
	if err := service.reactions.DeleteByUser(ctx, userID); err != nil {
		return fmt.Errorf("social_service_purge_reactions_failed: %w", err)
	}

	return nil
}
