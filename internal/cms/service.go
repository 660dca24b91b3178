// Copyright (c) 2026 Vitalink. All rights reserved.
// Author: dev@vitalink.health

package cms

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/vitalink/vitalink/internal/platform/apperr"
	"github.com/vitalink/vitalink/internal/platform/constants"
	"github.com/vitalink/vitalink/internal/platform/validate"
	"github.com/vitalink/vitalink/internal/social"
)

// orderUnbounded is the open upper bound for show_order shift windows.
const orderUnbounded = math.MaxInt32

// Service implements the CMS use cases.
type Service struct {
	articles   ArticleRepository
	goods      GoodRepository
	logo       LogoRepository
	categories CategoryRepository
	reactions  social.ReactionRepository
	cache      Cache
}

// NewService constructs the CMS [Service]. cache may be nil, which disables
// the public content cache.
func NewService(
	articles ArticleRepository,
	goods GoodRepository,
	logo LogoRepository,
	categories CategoryRepository,
	reactions social.ReactionRepository,
	cache Cache,
) *Service {
	return &Service{
		articles:   articles,
		goods:      goods,
		logo:       logo,
		categories: categories,
		reactions:  reactions,
		cache:      cache,
	}
}

// # Articles

// ArticleInput carries an article to save. ID 0 means "create".
type ArticleInput struct {
	ID          int64  `json:"id"`
	Banner      string `json:"banner"`
	Caption     string `json:"caption"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    int64  `json:"category"`
	ShowOrder   int    `json:"show_order"`
}

// SaveArticle creates or updates an article, keeping show_order dense.
//
// # Reordering
//
// A requested show_order of 0 means "append at the end". Any other value
// claims that exact rank: neighbors between the old and new position shift
// by one so no two articles share a rank and no holes appear.
func (service *Service) SaveArticle(ctx context.Context, adminID int64, input ArticleInput) (*Article, error) {
	validator := &validate.Validator{}
	validator.
		Required("banner", input.Banner).
		Required("title", input.Title).
		MaxLen("title", input.Title, 200).
		Required("description", input.Description).
		Custom("show_order", input.ShowOrder < 0, "Must not be negative")
	if err := validator.Err(); err != nil {
		return nil, err
	}

	showOrder := input.ShowOrder
	if showOrder != 0 {
		if input.ID == 0 {
			// Open a slot at the requested rank.
			if err := service.articles.IncrementOrders(ctx, showOrder, orderUnbounded); err != nil {
				return nil, err
			}
		} else {
			origin, err := service.articles.FindByID(ctx, input.ID)
			if err != nil {
				return nil, err
			}
			switch {
			case showOrder > origin.ShowOrder: // moving down
				if err := service.articles.DecrementOrders(ctx, origin.ShowOrder, showOrder); err != nil {
					return nil, err
				}
			case showOrder < origin.ShowOrder: // moving up
				if err := service.articles.IncrementOrders(ctx, showOrder, origin.ShowOrder); err != nil {
					return nil, err
				}
			}
		}
	} else {
		if input.ID != 0 {
			origin, err := service.articles.FindByID(ctx, input.ID)
			if err != nil {
				return nil, err
			}
			if err := service.articles.DecrementOrders(ctx, origin.ShowOrder, orderUnbounded); err != nil {
				return nil, err
			}
		}
		maxOrder, err := service.articles.MaxOrder(ctx)
		if err != nil {
			return nil, err
		}
		showOrder = maxOrder + 1
	}

	article := &Article{
		ID:          input.ID,
		AdminID:     adminID,
		Banner:      input.Banner,
		Caption:     input.Caption,
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
		ShowOrder:   showOrder,
	}
	if input.ID == 0 {
		if err := service.articles.Create(ctx, article); err != nil {
			return nil, err
		}
	} else {
		if err := service.articles.Update(ctx, article); err != nil {
			return nil, err
		}
	}

	service.invalidateArticles(ctx, article.ID)
	return article, nil
}

// DeleteArticle removes an article, closes its rank gap and drops its
// reactions.
func (service *Service) DeleteArticle(ctx context.Context, articleID int64) error {
	origin, err := service.articles.FindByID(ctx, articleID)
	if err != nil {
		return err
	}

	if err := service.articles.Delete(ctx, articleID); err != nil {
		return err
	}
	if err := service.articles.DecrementOrders(ctx, origin.ShowOrder, orderUnbounded); err != nil {
		return err
	}
	if err := service.reactions.DeleteByTarget(ctx, social.TargetArticle, articleID); err != nil {
		return fmt.Errorf("cms_service_article_reactions_failed: %w", err)
	}

	service.invalidateArticles(ctx, articleID)
	return nil
}

// Articles returns every article by rank, decorated with reaction totals.
// Served from the content cache when warm.
func (service *Service) Articles(ctx context.Context) ([]*Article, error) {
	key := constants.RedisPrefixArticles + "all"
	var cached []*Article
	if service.cacheGet(ctx, key, &cached) {
		return cached, nil
	}

	articles, err := service.articles.List(ctx)
	if err != nil {
		return nil, err
	}
	if err := service.decorateArticles(ctx, articles); err != nil {
		return nil, err
	}

	service.cacheSet(ctx, key, articles)
	return articles, nil
}

// Article returns one decorated article.
func (service *Service) Article(ctx context.Context, articleID int64) (*Article, error) {
	key := constants.RedisPrefixArticles + strconv.FormatInt(articleID, 10)
	var cached Article
	if service.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	article, err := service.articles.FindByID(ctx, articleID)
	if err != nil {
		return nil, err
	}
	if err := service.decorateArticles(ctx, []*Article{article}); err != nil {
		return nil, err
	}

	service.cacheSet(ctx, key, article)
	return article, nil
}

// ArticlesByAdmin returns the admin's own articles, uncached.
func (service *Service) ArticlesByAdmin(ctx context.Context, adminID int64) ([]*Article, error) {
	articles, err := service.articles.ListByAdmin(ctx, adminID)
	if err != nil {
		return nil, err
	}
	if err := service.decorateArticles(ctx, articles); err != nil {
		return nil, err
	}
	return articles, nil
}

func (service *Service) decorateArticles(ctx context.Context, articles []*Article) error {
	for _, article := range articles {
		likes, dislikes, err := service.reactions.Count(ctx, social.TargetArticle, article.ID)
		if err != nil {
			return fmt.Errorf("cms_service_article_counts_failed: %w", err)
		}
		article.Likes, article.Dislikes = likes, dislikes
	}
	return nil
}

// # Goods

// GoodInput carries a store good to save. ID 0 means "create".
type GoodInput struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
	Price       float64 `json:"price"`
	Link        string  `json:"link"`
}

// SaveGood creates or updates a store good.
func (service *Service) SaveGood(ctx context.Context, adminID int64, input GoodInput) (*Good, error) {
	validator := &validate.Validator{}
	validator.
		Required("name", input.Name).
		MaxLen("name", input.Name, 200).
		Required("description", input.Description).
		Required("image", input.Image).
		Required("link", input.Link).
		Custom("price", input.Price < 0.01, "Must be at least 0.01")
	if err := validator.Err(); err != nil {
		return nil, err
	}

	good := &Good{
		ID:          input.ID,
		AdminID:     adminID,
		Name:        input.Name,
		Description: input.Description,
		Image:       input.Image,
		Price:       input.Price,
		Link:        input.Link,
	}
	if input.ID == 0 {
		if err := service.goods.Create(ctx, good); err != nil {
			return nil, err
		}
	} else {
		if err := service.goods.Update(ctx, good); err != nil {
			return nil, err
		}
	}

	service.invalidateGoods(ctx, good.ID)
	return good, nil
}

// DeleteGood removes a good and its reactions.
func (service *Service) DeleteGood(ctx context.Context, goodID int64) error {
	if err := service.goods.Delete(ctx, goodID); err != nil {
		return err
	}
	if err := service.reactions.DeleteByTarget(ctx, social.TargetGood, goodID); err != nil {
		return fmt.Errorf("cms_service_good_reactions_failed: %w", err)
	}

	service.invalidateGoods(ctx, goodID)
	return nil
}

// Goods returns the store newest first, decorated with reaction totals.
func (service *Service) Goods(ctx context.Context) ([]*Good, error) {
	key := constants.RedisPrefixGoods + "all"
	var cached []*Good
	if service.cacheGet(ctx, key, &cached) {
		return cached, nil
	}

	goods, err := service.goods.List(ctx)
	if err != nil {
		return nil, err
	}
	if err := service.decorateGoods(ctx, goods); err != nil {
		return nil, err
	}

	service.cacheSet(ctx, key, goods)
	return goods, nil
}

// Good returns one decorated store good.
func (service *Service) Good(ctx context.Context, goodID int64) (*Good, error) {
	key := constants.RedisPrefixGoods + strconv.FormatInt(goodID, 10)
	var cached Good
	if service.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	good, err := service.goods.FindByID(ctx, goodID)
	if err != nil {
		return nil, err
	}
	if err := service.decorateGoods(ctx, []*Good{good}); err != nil {
		return nil, err
	}

	service.cacheSet(ctx, key, good)
	return good, nil
}

// GoodsByAdmin returns the admin's own goods, uncached.
func (service *Service) GoodsByAdmin(ctx context.Context, adminID int64) ([]*Good, error) {
	goods, err := service.goods.ListByAdmin(ctx, adminID)
	if err != nil {
		return nil, err
	}
	if err := service.decorateGoods(ctx, goods); err != nil {
		return nil, err
	}
	return goods, nil
}

func (service *Service) decorateGoods(ctx context.Context, goods []*Good) error {
	for _, good := range goods {
		likes, dislikes, err := service.reactions.Count(ctx, social.TargetGood, good.ID)
		if err != nil {
			return fmt.Errorf("cms_service_good_counts_failed: %w", err)
		}
		good.Likes, good.Dislikes = likes, dislikes
	}
	return nil
}

// # Logo

// Logo returns the app logo URL, "" when unset.
func (service *Service) Logo(ctx context.Context) (string, error) {
	var cached string
	if service.cacheGet(ctx, constants.RedisPrefixLogo, &cached) {
		return cached, nil
	}

	logo, err := service.logo.Get(ctx)
	if err != nil {
		return "", err
	}

	service.cacheSet(ctx, constants.RedisPrefixLogo, logo)
	return logo, nil
}

// SaveLogo replaces the singleton app logo.
func (service *Service) SaveLogo(ctx context.Context, logo string) error {
	validator := &validate.Validator{}
	validator.Required("logo", logo)
	if err := validator.Err(); err != nil {
		return err
	}

	if err := service.logo.Save(ctx, logo); err != nil {
		return err
	}

	service.cacheDelete(ctx, constants.RedisPrefixLogo)
	return nil
}

// # Categories

// CategoryInput carries a category to save. ID 0 means "create".
type CategoryInput struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Color string `json:"color"`
}

// Categories returns every category.
func (service *Service) Categories(ctx context.Context) ([]*Category, error) {
	var cached []*Category
	if service.cacheGet(ctx, constants.RedisPrefixCategories, &cached) {
		return cached, nil
	}

	categories, err := service.categories.List(ctx)
	if err != nil {
		return nil, err
	}

	service.cacheSet(ctx, constants.RedisPrefixCategories, categories)
	return categories, nil
}

// SaveCategory creates or updates a category. Titles are unique.
func (service *Service) SaveCategory(ctx context.Context, input CategoryInput) (*Category, error) {
	validator := &validate.Validator{}
	validator.
		Required("title", input.Title).
		MaxLen("title", input.Title, 50).
		Required("color", input.Color).
		MaxLen("color", input.Color, 20)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	category := &Category{ID: input.ID, Title: input.Title, Color: input.Color}
	if input.ID == 0 {
		existing, err := service.categories.FindByTitle(ctx, input.Title)
		if err == nil && existing != nil {
			return nil, apperr.Forbidden("This category already exists")
		}
		if appErr := apperr.As(err); appErr == nil || appErr.Code != "NOT_FOUND" {
			return nil, fmt.Errorf("cms_service_category_check_failed: %w", err)
		}
		if err := service.categories.Create(ctx, category); err != nil {
			return nil, err
		}
	} else {
		if err := service.categories.Update(ctx, category); err != nil {
			return nil, err
		}
	}

	service.cacheDelete(ctx, constants.RedisPrefixCategories)
	return category, nil
}

// # Catalog Resolver
//
// The feed's polymorphic reactions may point at CMS entities; these checks
// keep that edge honest.

// ArticleExists reports whether the article exists.
func (service *Service) ArticleExists(ctx context.Context, articleID int64) (bool, error) {
	return service.articles.Exists(ctx, articleID)
}

// GoodExists reports whether the good exists.
func (service *Service) GoodExists(ctx context.Context, goodID int64) (bool, error) {
	return service.goods.Exists(ctx, goodID)
}

// # Cache Plumbing

func (service *Service) cacheGet(ctx context.Context, key string, out any) bool {
	if service.cache == nil {
		return false
	}
	payload, ok := service.cache.Get(ctx, key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(payload, out); err != nil {
		// A corrupt entry behaves like a miss and gets overwritten.
		return false
	}
	return true
}

func (service *Service) cacheSet(ctx context.Context, key string, value any) {
	if service.cache == nil {
		return
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	service.cache.Set(ctx, key, payload, constants.PublicCacheTTL)
}

func (service *Service) cacheDelete(ctx context.Context, keys ...string) {
	if service.cache == nil {
		return
	}
	service.cache.Delete(ctx, keys...)
}

func (service *Service) invalidateArticles(ctx context.Context, articleID int64) {
	service.cacheDelete(ctx,
		constants.RedisPrefixArticles+"all",
		constants.RedisPrefixArticles+strconv.FormatInt(articleID, 10),
	)
}

func (service *Service) invalidateGoods(ctx context.Context, goodID int64) {
	service.cacheDelete(ctx,
		constants.RedisPrefixGoods+"all",
		constants.RedisPrefixGoods+strconv.FormatInt(goodID, 10),
	)
}
