// Copyright (c) 2026 Vitalink. All rights reserved.
// Author: dev@vitalink.health

// PostgreSQL implementations of the social storage contracts over the posts,
// comments, and reactions tables.
package social

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vitalink/vitalink/internal/platform/apperr"
)

const postColumns = "id, user_id, nickname, image, title, content, create_date, update_date"

// PostgresPostRepository implements the PostRepository interface using pgx.
type PostgresPostRepository struct {
	pool *pgxpool.Pool
}

// NewPostRepository creates a new PostgreSQL implementation of PostRepository.
func NewPostRepository(pool *pgxpool.Pool) *PostgresPostRepository {
	return &PostgresPostRepository{pool: pool}
}

func scanPost(row pgx.Row) (*Post, error) {
	post := &Post{}
	err := row.Scan(
		&post.ID,
		&post.UserID,
		&post.Nickname,
		&post.Image,
		&post.Title,
		&post.Content,
		&post.CreateDate,
		&post.UpdateDate,
	)
	if err != nil {
		return nil, err
	}
	return post, nil
}

// FindByID retrieves a post by its unique ID.
func (repository *PostgresPostRepository) FindByID(ctx context.Context, id int64) (*Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`

	post, err := scanPost(repository.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Post")
		}
		return nil, fmt.Errorf("postgres_post_repo_find_failed: %w", err)
	}

	return post, nil
}

// Create persists a new post record and assigns the generated ID.
func (repository *PostgresPostRepository) Create(ctx context.Context, post *Post) error {
	const query = `
		INSERT INTO posts (user_id, nickname, image, title, content, create_date, update_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	now := time.Now()
	post.CreateDate = now
	post.UpdateDate = now

	err := repository.pool.QueryRow(ctx, query,
		post.UserID, post.Nickname, post.Image, post.Title, post.Content,
		post.CreateDate, post.UpdateDate,
	).Scan(&post.ID)
	if err != nil {
		return fmt.Errorf("postgres_post_repo_create_failed: %w", err)
	}

	return nil
}

// Update persists changes to an existing post.
func (repository *PostgresPostRepository) Update(ctx context.Context, post *Post) error {
	const query = `
		UPDATE posts
		SET nickname = $2, image = $3, title = $4, content = $5, update_date = $6
		WHERE id = $1`

	post.UpdateDate = time.Now()
	_, err := repository.pool.Exec(ctx, query,
		post.ID, post.Nickname, post.Image, post.Title, post.Content, post.UpdateDate)
	if err != nil {
		return fmt.Errorf("postgres_post_repo_update_failed: %w", err)
	}

	return nil
}

// Delete removes the post row.
func (repository *PostgresPostRepository) Delete(ctx context.Context, postID int64) error {
	_, err := repository.pool.Exec(ctx, "DELETE FROM posts WHERE id = $1", postID)
	if err != nil {
		return fmt.Errorf("postgres_post_repo_delete_failed: %w", err)
	}
	return nil
}

// List returns posts newest first with a total count.
func (repository *PostgresPostRepository) List(ctx context.Context, limit, offset int) ([]*Post, int, error) {
	query := `SELECT ` + postColumns + `
		FROM posts
		ORDER BY create_date DESC
		LIMIT $1 OFFSET $2`

	rows, err := repository.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_post_repo_list_failed: %w", err)
	}
	defer rows.Close()

	posts, err := collectPosts(rows)
	if err != nil {
		return nil, 0, err
	}

	var total int
	if err := repository.pool.QueryRow(ctx, "SELECT count(*) FROM posts").Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_post_repo_count_failed: %w", err)
	}

	return posts, total, nil
}

// ListByUser returns the member's own posts newest first with a total count.
func (repository *PostgresPostRepository) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*Post, int, error) {
	query := `SELECT ` + postColumns + `
		FROM posts
		WHERE user_id = $1
		ORDER BY create_date DESC
		LIMIT $2 OFFSET $3`

	rows, err := repository.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_post_repo_list_by_user_failed: %w", err)
	}
	defer rows.Close()

	posts, err := collectPosts(rows)
	if err != nil {
		return nil, 0, err
	}

	var total int
	if err := repository.pool.QueryRow(ctx,
		"SELECT count(*) FROM posts WHERE user_id = $1", userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_post_repo_count_by_user_failed: %w", err)
	}

	return posts, total, nil
}

// ListIDsByUser returns every post ID the member authored.
func (repository *PostgresPostRepository) ListIDsByUser(ctx context.Context, userID int64) ([]int64, error) {
	rows, err := repository.pool.Query(ctx, "SELECT id FROM posts WHERE user_id = $1", userID)
	if err != nil {
		return nil, fmt.Errorf("postgres_post_repo_ids_failed: %w", err)
	}
	defer rows.Close()

	return collectIDs(rows)
}

func collectPosts(rows pgx.Rows) ([]*Post, error) {
	var posts []*Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres_post_repo_scan_failed: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_post_repo_rows_failed: %w", err)
	}
	return posts, nil
}

func collectIDs(rows pgx.Rows) ([]int64, error) {
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("postgres_social_repo_id_scan_failed: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_social_repo_id_rows_failed: %w", err)
	}
	return ids, nil
}

// ── Comment Repository ───────────────────────────────────────────────────────

const commentColumns = "id, post_id, user_id, nickname, content, create_date"

// PostgresCommentRepository implements the CommentRepository interface.
type PostgresCommentRepository struct {
	pool *pgxpool.Pool
}

// NewCommentRepository creates a new PostgreSQL implementation of CommentRepository.
func NewCommentRepository(pool *pgxpool.Pool) *PostgresCommentRepository {
	return &PostgresCommentRepository{pool: pool}
}

func scanComment(row pgx.Row) (*Comment, error) {
	comment := &Comment{}
	err := row.Scan(
		&comment.ID,
		&comment.PostID,
		&comment.UserID,
		&comment.Nickname,
		&comment.Content,
		&comment.CreateDate,
	)
	if err != nil {
		return nil, err
	}
	return comment, nil
}

// FindByID retrieves a comment by its unique ID.
func (repository *PostgresCommentRepository) FindByID(ctx context.Context, id int64) (*Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments WHERE id = $1`

	comment, err := scanComment(repository.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Comment")
		}
		return nil, fmt.Errorf("postgres_comment_repo_find_failed: %w", err)
	}

	return comment, nil
}

// Create persists a new comment record and assigns the generated ID.
func (repository *PostgresCommentRepository) Create(ctx context.Context, comment *Comment) error {
	const query = `
		INSERT INTO comments (post_id, user_id, nickname, content, create_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	comment.CreateDate = time.Now()

	err := repository.pool.QueryRow(ctx, query,
		comment.PostID, comment.UserID, comment.Nickname, comment.Content, comment.CreateDate,
	).Scan(&comment.ID)
	if err != nil {
		return fmt.Errorf("postgres_comment_repo_create_failed: %w", err)
	}

	return nil
}

// Delete removes one comment row.
func (repository *PostgresCommentRepository) Delete(ctx context.Context, commentID int64) error {
	_, err := repository.pool.Exec(ctx, "DELETE FROM comments WHERE id = $1", commentID)
	if err != nil {
		return fmt.Errorf("postgres_comment_repo_delete_failed: %w", err)
	}
	return nil
}

// ListByPost returns the post's comments oldest first.
func (repository *PostgresCommentRepository) ListByPost(ctx context.Context, postID int64) ([]*Comment, error) {
	query := `SELECT ` + commentColumns + `
		FROM comments
		WHERE post_id = $1
		ORDER BY create_date ASC`

	rows, err := repository.pool.Query(ctx, query, postID)
	if err != nil {
		return nil, fmt.Errorf("postgres_comment_repo_list_failed: %w", err)
	}
	defer rows.Close()

	var comments []*Comment
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres_comment_repo_scan_failed: %w", err)
		}
		comments = append(comments, comment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_comment_repo_rows_failed: %w", err)
	}

	return comments, nil
}

// ListIDsByPost returns every comment ID under the post.
func (repository *PostgresCommentRepository) ListIDsByPost(ctx context.Context, postID int64) ([]int64, error) {
	rows, err := repository.pool.Query(ctx, "SELECT id FROM comments WHERE post_id = $1", postID)
	if err != nil {
		return nil, fmt.Errorf("postgres_comment_repo_ids_failed: %w", err)
	}
	defer rows.Close()

	return collectIDs(rows)
}

// DeleteByPost removes every comment under the post.
func (repository *PostgresCommentRepository) DeleteByPost(ctx context.Context, postID int64) error {
	_, err := repository.pool.Exec(ctx, "DELETE FROM comments WHERE post_id = $1", postID)
	if err != nil {
		return fmt.Errorf("postgres_comment_repo_delete_by_post_failed: %w", err)
	}
	return nil
}

// DeleteByUser removes every comment the member wrote.
func (repository *PostgresCommentRepository) DeleteByUser(ctx context.Context, userID int64) error {
	_, err := repository.pool.Exec(ctx, "DELETE FROM comments WHERE user_id = $1", userID)
	if err != nil {
		return fmt.Errorf("postgres_comment_repo_delete_by_user_failed: %w", err)
	}
	return nil
}

// ── Reaction Repository ──────────────────────────────────────────────────────

// PostgresReactionRepository implements the ReactionRepository interface.
type PostgresReactionRepository struct {
	pool *pgxpool.Pool
}

// NewReactionRepository creates a new PostgreSQL implementation of ReactionRepository.
func NewReactionRepository(pool *pgxpool.Pool) *PostgresReactionRepository {
	return &PostgresReactionRepository{pool: pool}
}

// Find retrieves the member's reaction row on a target.
func (repository *PostgresReactionRepository) Find(ctx context.Context, userID int64, targetType TargetType, targetID int64) (*Reaction, error) {
	const query = `
		SELECT id, user_id, type, relation_id, value, create_date, update_date
		FROM reactions
		WHERE user_id = $1 AND type = $2 AND relation_id = $3`

	reaction := &Reaction{}
	err := repository.pool.QueryRow(ctx, query, userID, targetType, targetID).Scan(
		&reaction.ID,
		&reaction.UserID,
		&reaction.TargetType,
		&reaction.TargetID,
		&reaction.Value,
		&reaction.CreateDate,
		&reaction.UpdateDate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Reaction")
		}
		return nil, fmt.Errorf("postgres_reaction_repo_find_failed: %w", err)
	}

	return reaction, nil
}

// Create persists a new reaction row and assigns the generated ID.
func (repository *PostgresReactionRepository) Create(ctx context.Context, reaction *Reaction) error {
	const query = `
		INSERT INTO reactions (user_id, type, relation_id, value, create_date, update_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	now := time.Now()
	reaction.CreateDate = now
	reaction.UpdateDate = now

	err := repository.pool.QueryRow(ctx, query,
		reaction.UserID, reaction.TargetType, reaction.TargetID, reaction.Value,
		reaction.CreateDate, reaction.UpdateDate,
	).Scan(&reaction.ID)
	if err != nil {
		return fmt.Errorf("postgres_reaction_repo_create_failed: %w", err)
	}

	return nil
}

// UpdateValue changes the stance of an existing reaction row.
func (repository *PostgresReactionRepository) UpdateValue(ctx context.Context, reactionID int64, value ReactionValue) error {
	const query = "UPDATE reactions SET value = $2, update_date = $3 WHERE id = $1"

	_, err := repository.pool.Exec(ctx, query, reactionID, value, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_reaction_repo_update_failed: %w", err)
	}

	return nil
}

// Count returns the live like and dislike totals of a target.
func (repository *PostgresReactionRepository) Count(ctx context.Context, targetType TargetType, targetID int64) (int, int, error) {
	const query = `
		SELECT
			count(*) FILTER (WHERE value = $3),
			count(*) FILTER (WHERE value = $4)
		FROM reactions
		WHERE type = $1 AND relation_id = $2`

	var likes, dislikes int
	err := repository.pool.QueryRow(ctx, query,
		targetType, targetID, ReactionLike, ReactionDislike).Scan(&likes, &dislikes)
	if err != nil {
		return 0, 0, fmt.Errorf("postgres_reaction_repo_count_failed: %w", err)
	}

	return likes, dislikes, nil
}

// DeleteByTarget removes every reaction row pointing at a target.
func (repository *PostgresReactionRepository) DeleteByTarget(ctx context.Context, targetType TargetType, targetID int64) error {
	_, err := repository.pool.Exec(ctx,
		"DELETE FROM reactions WHERE type = $1 AND relation_id = $2", targetType, targetID)
	if err != nil {
		return fmt.Errorf("postgres_reaction_repo_delete_by_target_failed: %w", err)
	}
	return nil
}

// DeleteByUser removes every reaction the member made.
func (repository *PostgresReactionRepository) DeleteByUser(ctx context.Context, userID int64) error {
	_, err := repository.pool.Exec(ctx, "DELETE FROM reactions WHERE user_id = $1", userID)
	if err != nil {
		return fmt.Errorf("postgres_reaction_repo_delete_by_user_failed: %w", err)
	}
	return nil
}
