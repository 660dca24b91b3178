// Copyright (c) 2026 Vitalink. All rights reserved.
// Author: dev@vitalink.health

package cms

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vitalink/vitalink/internal/platform/apperr"
)

// # Articles

const articleColumns = "id, admin_id, banner, caption, title, description, category, show_order, create_date, update_date"

// PostgresArticleRepository implements [ArticleRepository] over the articles
// table.
type PostgresArticleRepository struct {
	pool *pgxpool.Pool
}

// NewArticleRepository constructs a [PostgresArticleRepository].
func NewArticleRepository(pool *pgxpool.Pool) *PostgresArticleRepository {
	return &PostgresArticleRepository{pool: pool}
}

func scanArticle(row pgx.Row) (*Article, error) {
	var article Article
	err := row.Scan(
		&article.ID,
		&article.AdminID,
		&article.Banner,
		&article.Caption,
		&article.Title,
		&article.Description,
		&article.Category,
		&article.ShowOrder,
		&article.CreateDate,
		&article.UpdateDate,
	)
	if err != nil {
		return nil, err
	}
	return &article, nil
}

func (repository *PostgresArticleRepository) FindByID(ctx context.Context, id int64) (*Article, error) {
	const query = "SELECT " + articleColumns + " FROM articles WHERE id = $1"

	article, err := scanArticle(repository.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("Article")
	}
	if err != nil {
		return nil, fmt.Errorf("postgres_article_repo_find_failed: %w", err)
	}

	return article, nil
}

func (repository *PostgresArticleRepository) Exists(ctx context.Context, id int64) (bool, error) {
	const query = "SELECT EXISTS (SELECT 1 FROM articles WHERE id = $1)"

	var exists bool
	if err := repository.pool.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("postgres_article_repo_exists_failed: %w", err)
	}

	return exists, nil
}

func (repository *PostgresArticleRepository) Create(ctx context.Context, article *Article) error {
	const query = `INSERT INTO articles
			(admin_id, banner, caption, title, description, category, show_order, create_date, update_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		RETURNING id`

	now := time.Now()
	err := repository.pool.QueryRow(ctx, query,
		article.AdminID,
		article.Banner,
		article.Caption,
		article.Title,
		article.Description,
		article.Category,
		article.ShowOrder,
		now,
	).Scan(&article.ID)
	if err != nil {
		return fmt.Errorf("postgres_article_repo_create_failed: %w", err)
	}

	article.CreateDate = now
	article.UpdateDate = now
	return nil
}

func (repository *PostgresArticleRepository) Update(ctx context.Context, article *Article) error {
	const query = `UPDATE articles SET
			banner = $2, caption = $3, title = $4, description = $5,
			category = $6, show_order = $7, update_date = $8
		WHERE id = $1`

	tag, err := repository.pool.Exec(ctx, query,
		article.ID,
		article.Banner,
		article.Caption,
		article.Title,
		article.Description,
		article.Category,
		article.ShowOrder,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("postgres_article_repo_update_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Article")
	}

	return nil
}

func (repository *PostgresArticleRepository) Delete(ctx context.Context, id int64) error {
	const query = "DELETE FROM articles WHERE id = $1"

	tag, err := repository.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("postgres_article_repo_delete_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Article")
	}

	return nil
}

func (repository *PostgresArticleRepository) List(ctx context.Context) ([]*Article, error) {
	const query = "SELECT " + articleColumns + " FROM articles ORDER BY show_order ASC"
	return repository.collect(ctx, query)
}

func (repository *PostgresArticleRepository) ListByAdmin(ctx context.Context, adminID int64) ([]*Article, error) {
	const query = "SELECT " + articleColumns + " FROM articles WHERE admin_id = $1 ORDER BY show_order ASC"
	return repository.collect(ctx, query, adminID)
}

func (repository *PostgresArticleRepository) collect(ctx context.Context, query string, args ...any) ([]*Article, error) {
	rows, err := repository.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres_article_repo_list_failed: %w", err)
	}
	defer rows.Close()

	var articles []*Article
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres_article_repo_list_scan_failed: %w", err)
		}
		articles = append(articles, article)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_article_repo_list_rows_failed: %w", err)
	}

	return articles, nil
}

func (repository *PostgresArticleRepository) IncrementOrders(ctx context.Context, from, to int) error {
	const query = `UPDATE articles SET show_order = show_order + 1
		WHERE show_order >= $1 AND show_order < $2`

	if _, err := repository.pool.Exec(ctx, query, from, to); err != nil {
		return fmt.Errorf("postgres_article_repo_increment_failed: %w", err)
	}

	return nil
}

func (repository *PostgresArticleRepository) DecrementOrders(ctx context.Context, from, to int) error {
	const query = `UPDATE articles SET show_order = show_order - 1
		WHERE show_order > $1 AND show_order <= $2`

	if _, err := repository.pool.Exec(ctx, query, from, to); err != nil {
		return fmt.Errorf("postgres_article_repo_decrement_failed: %w", err)
	}

	return nil
}

func (repository *PostgresArticleRepository) MaxOrder(ctx context.Context) (int, error) {
	const query = "SELECT coalesce(max(show_order), 0) FROM articles"

	var max int
	if err := repository.pool.QueryRow(ctx, query).Scan(&max); err != nil {
		return 0, fmt.Errorf("postgres_article_repo_max_order_failed: %w", err)
	}

	return max, nil
}

// # Goods

const goodColumns = "id, admin_id, name, description, image, price, link, create_date, update_date"

// PostgresGoodRepository implements [GoodRepository] over the goods table.
type PostgresGoodRepository struct {
	pool *pgxpool.Pool
}

// NewGoodRepository constructs a [PostgresGoodRepository].
func NewGoodRepository(pool *pgxpool.Pool) *PostgresGoodRepository {
	return &PostgresGoodRepository{pool: pool}
}

func scanGood(row pgx.Row) (*Good, error) {
	var good Good
	err := row.Scan(
		&good.ID,
		&good.AdminID,
		&good.Name,
		&good.Description,
		&good.Image,
		&good.Price,
		&good.Link,
		&good.CreateDate,
		&good.UpdateDate,
	)
	if err != nil {
		return nil, err
	}
	return &good, nil
}

func (repository *PostgresGoodRepository) FindByID(ctx context.Context, id int64) (*Good, error) {
	const query = "SELECT " + goodColumns + " FROM goods WHERE id = $1"

	good, err := scanGood(repository.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("Good")
	}
	if err != nil {
		return nil, fmt.Errorf("postgres_good_repo_find_failed: %w", err)
	}

	return good, nil
}

func (repository *PostgresGoodRepository) Exists(ctx context.Context, id int64) (bool, error) {
	const query = "SELECT EXISTS (SELECT 1 FROM goods WHERE id = $1)"

	var exists bool
	if err := repository.pool.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("postgres_good_repo_exists_failed: %w", err)
	}

	return exists, nil
}

func (repository *PostgresGoodRepository) Create(ctx context.Context, good *Good) error {
	const query = `INSERT INTO goods
			(admin_id, name, description, image, price, link, create_date, update_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		RETURNING id`

	now := time.Now()
	err := repository.pool.QueryRow(ctx, query,
		good.AdminID,
		good.Name,
		good.Description,
		good.Image,
		good.Price,
		good.Link,
		now,
	).Scan(&good.ID)
	if err != nil {
		return fmt.Errorf("postgres_good_repo_create_failed: %w", err)
	}

	good.CreateDate = now
	good.UpdateDate = now
	return nil
}

func (repository *PostgresGoodRepository) Update(ctx context.Context, good *Good) error {
	const query = `UPDATE goods SET
			name = $2, description = $3, image = $4, price = $5, link = $6, update_date = $7
		WHERE id = $1`

	tag, err := repository.pool.Exec(ctx, query,
		good.ID,
		good.Name,
		good.Description,
		good.Image,
		good.Price,
		good.Link,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("postgres_good_repo_update_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Good")
	}

	return nil
}

func (repository *PostgresGoodRepository) Delete(ctx context.Context, id int64) error {
	const query = "DELETE FROM goods WHERE id = $1"

	tag, err := repository.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("postgres_good_repo_delete_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Good")
	}

	return nil
}

func (repository *PostgresGoodRepository) List(ctx context.Context) ([]*Good, error) {
	const query = "SELECT " + goodColumns + " FROM goods ORDER BY id DESC"
	return repository.collect(ctx, query)
}

func (repository *PostgresGoodRepository) ListByAdmin(ctx context.Context, adminID int64) ([]*Good, error) {
	const query = "SELECT " + goodColumns + " FROM goods WHERE admin_id = $1 ORDER BY id DESC"
	return repository.collect(ctx, query, adminID)
}

func (repository *PostgresGoodRepository) collect(ctx context.Context, query string, args ...any) ([]*Good, error) {
	rows, err := repository.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres_good_repo_list_failed: %w", err)
	}
	defer rows.Close()

	var goods []*Good
	for rows.Next() {
		good, err := scanGood(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres_good_repo_list_scan_failed: %w", err)
		}
		goods = append(goods, good)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_good_repo_list_rows_failed: %w", err)
	}

	return goods, nil
}

// # Logo

// PostgresLogoRepository implements [LogoRepository] over the single-row
// logos table.
type PostgresLogoRepository struct {
	pool *pgxpool.Pool
}

// NewLogoRepository constructs a [PostgresLogoRepository].
func NewLogoRepository(pool *pgxpool.Pool) *PostgresLogoRepository {
	return &PostgresLogoRepository{pool: pool}
}

func (repository *PostgresLogoRepository) Get(ctx context.Context) (string, error) {
	const query = "SELECT logo FROM logos WHERE id = 1"

	var logo string
	err := repository.pool.QueryRow(ctx, query).Scan(&logo)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("postgres_logo_repo_get_failed: %w", err)
	}

	return logo, nil
}

func (repository *PostgresLogoRepository) Save(ctx context.Context, logo string) error {
	const query = `INSERT INTO logos (id, logo, create_date, update_date)
		VALUES (1, $1, $2, $2)
		ON CONFLICT (id) DO UPDATE SET logo = $1, update_date = $2`

	if _, err := repository.pool.Exec(ctx, query, logo, time.Now()); err != nil {
		return fmt.Errorf("postgres_logo_repo_save_failed: %w", err)
	}

	return nil
}

// # Categories

// PostgresCategoryRepository implements [CategoryRepository] over the
// categories table.
type PostgresCategoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository constructs a [PostgresCategoryRepository].
func NewCategoryRepository(pool *pgxpool.Pool) *PostgresCategoryRepository {
	return &PostgresCategoryRepository{pool: pool}
}

func (repository *PostgresCategoryRepository) List(ctx context.Context) ([]*Category, error) {
	const query = "SELECT id, title, color FROM categories ORDER BY id ASC"

	rows, err := repository.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("postgres_category_repo_list_failed: %w", err)
	}
	defer rows.Close()

	var categories []*Category
	for rows.Next() {
		var category Category
		if err := rows.Scan(&category.ID, &category.Title, &category.Color); err != nil {
			return nil, fmt.Errorf("postgres_category_repo_list_scan_failed: %w", err)
		}
		categories = append(categories, &category)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_category_repo_list_rows_failed: %w", err)
	}

	return categories, nil
}

func (repository *PostgresCategoryRepository) FindByTitle(ctx context.Context, title string) (*Category, error) {
	const query = "SELECT id, title, color FROM categories WHERE lower(title) = lower($1)"

	var category Category
	err := repository.pool.QueryRow(ctx, query, title).Scan(&category.ID, &category.Title, &category.Color)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("Category")
	}
	if err != nil {
		return nil, fmt.Errorf("postgres_category_repo_find_title_failed: %w", err)
	}

	return &category, nil
}

func (repository *PostgresCategoryRepository) Create(ctx context.Context, category *Category) error {
	const query = "INSERT INTO categories (title, color) VALUES ($1, $2) RETURNING id"

	err := repository.pool.QueryRow(ctx, query, category.Title, category.Color).Scan(&category.ID)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return apperr.Forbidden("This category already exists")
	}
	if err != nil {
		return fmt.Errorf("postgres_category_repo_create_failed: %w", err)
	}

	return nil
}

func (repository *PostgresCategoryRepository) Update(ctx context.Context, category *Category) error {
	const query = "UPDATE categories SET title = $2, color = $3 WHERE id = $1"

	tag, err := repository.pool.Exec(ctx, query, category.ID, category.Title, category.Color)
	if err != nil {
		return fmt.Errorf("postgres_category_repo_update_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Category")
	}

	return nil
}
