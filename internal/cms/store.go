// Copyright (c) 2026 Vitalink. All rights reserved.
// Author: dev@vitalink.health

package cms

import "context"

// ArticleRepository defines the data access contract for articles.
//
// # Order Windows
//
// The two shift methods use deliberately asymmetric bounds so every case of
// the reordering algorithm maps onto exactly one call:
//
//   - IncrementOrders opens room at `from`:   from <= show_order < to
//   - DecrementOrders closes a gap above `from`: from < show_order <= to
type ArticleRepository interface {
	// FindByID returns the article with the given ID.
	//
	// Returns [apperr.NotFound] if the article does not exist.
	FindByID(ctx context.Context, id int64) (*Article, error)

	// Exists reports whether the article exists.
	Exists(ctx context.Context, id int64) (bool, error)

	// Create persists a new article and assigns its ID.
	Create(ctx context.Context, article *Article) error

	// Update persists changes to an existing article.
	Update(ctx context.Context, article *Article) error

	// Delete removes the article row.
	Delete(ctx context.Context, id int64) error

	// List returns every article ordered by show_order ascending.
	List(ctx context.Context) ([]*Article, error)

	// ListByAdmin returns the admin's own articles ordered by show_order.
	ListByAdmin(ctx context.Context, adminID int64) ([]*Article, error)

	// IncrementOrders shifts show_order up by one where
	// from <= show_order < to.
	IncrementOrders(ctx context.Context, from, to int) error

	// DecrementOrders shifts show_order down by one where
	// from < show_order <= to.
	DecrementOrders(ctx context.Context, from, to int) error

	// MaxOrder returns the highest show_order, 0 when no articles exist.
	MaxOrder(ctx context.Context) (int, error)
}

// GoodRepository defines the data access contract for store goods.
type GoodRepository interface {
	// FindByID returns the good with the given ID.
	//
	// Returns [apperr.NotFound] if the good does not exist.
	FindByID(ctx context.Context, id int64) (*Good, error)

	// Exists reports whether the good exists.
	Exists(ctx context.Context, id int64) (bool, error)

	// Create persists a new good and assigns its ID.
	Create(ctx context.Context, good *Good) error

	// Update persists changes to an existing good.
	Update(ctx context.Context, good *Good) error

	// Delete removes the good row.
	Delete(ctx context.Context, id int64) error

	// List returns every good newest first.
	List(ctx context.Context) ([]*Good, error)

	// ListByAdmin returns the admin's own goods newest first.
	ListByAdmin(ctx context.Context, adminID int64) ([]*Good, error)
}

// LogoRepository stores the single app logo URL.
type LogoRepository interface {
	// Get returns the logo URL, or "" when none was ever saved.
	Get(ctx context.Context) (string, error)

	// Save upserts the singleton logo row.
	Save(ctx context.Context, logo string) error
}

// CategoryRepository defines the data access contract for categories.
type CategoryRepository interface {
	// List returns every category ordered by ID.
	List(ctx context.Context) ([]*Category, error)

	// FindByTitle returns the category with the given title.
	//
	// Returns [apperr.NotFound] if the title is unused.
	FindByTitle(ctx context.Context, title string) (*Category, error)

	// Create persists a new category and assigns its ID.
	Create(ctx context.Context, category *Category) error

	// Update persists changes to an existing category.
	Update(ctx context.Context, category *Category) error
}
