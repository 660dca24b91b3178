// Copyright (c) 2026 Vitalink. All rights reserved.
// Author: dev@vitalink.health

package cms

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalink/vitalink/internal/platform/apperr"
	"github.com/vitalink/vitalink/internal/social"
)

type fakeArticleRepo struct {
	nextID   int64
	articles map[int64]*Article
}

func (r *fakeArticleRepo) FindByID(_ context.Context, id int64) (*Article, error) {
	if article, ok := r.articles[id]; ok {
		copied := *article
		return &copied, nil
	}
	return nil, apperr.NotFound("Article")
}

func (r *fakeArticleRepo) Exists(_ context.Context, id int64) (bool, error) {
	_, ok := r.articles[id]
	return ok, nil
}

func (r *fakeArticleRepo) Create(_ context.Context, article *Article) error {
	r.nextID++
	article.ID = r.nextID
	copied := *article
	r.articles[article.ID] = &copied
	return nil
}

func (r *fakeArticleRepo) Update(_ context.Context, article *Article) error {
	if _, ok := r.articles[article.ID]; !ok {
		return apperr.NotFound("Article")
	}
	copied := *article
	r.articles[article.ID] = &copied
	return nil
}

func (r *fakeArticleRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.articles[id]; !ok {
		return apperr.NotFound("Article")
	}
	delete(r.articles, id)
	return nil
}

func (r *fakeArticleRepo) List(context.Context) ([]*Article, error) {
	var articles []*Article
	for _, article := range r.articles {
		copied := *article
		articles = append(articles, &copied)
	}
	sort.Slice(articles, func(i, j int) bool { return articles[i].ShowOrder < articles[j].ShowOrder })
	return articles, nil
}

func (r *fakeArticleRepo) ListByAdmin(ctx context.Context, adminID int64) ([]*Article, error) {
	all, _ := r.List(ctx)
	var articles []*Article
	for _, article := range all {
		if article.AdminID == adminID {
			articles = append(articles, article)
		}
	}
	return articles, nil
}

func (r *fakeArticleRepo) IncrementOrders(_ context.Context, from, to int) error {
	for _, article := range r.articles {
		if article.ShowOrder >= from && article.ShowOrder < to {
			article.ShowOrder++
		}
	}
	return nil
}

func (r *fakeArticleRepo) DecrementOrders(_ context.Context, from, to int) error {
	for _, article := range r.articles {
		if article.ShowOrder > from && article.ShowOrder <= to {
			article.ShowOrder--
		}
	}
	return nil
}

func (r *fakeArticleRepo) MaxOrder(context.Context) (int, error) {
	max := 0
	for _, article := range r.articles {
		if article.ShowOrder > max {
			max = article.ShowOrder
		}
	}
	return max, nil
}

type fakeGoodRepo struct {
	nextID int64
	goods  map[int64]*Good
}

func (r *fakeGoodRepo) FindByID(_ context.Context, id int64) (*Good, error) {
	if good, ok := r.goods[id]; ok {
		copied := *good
		return &copied, nil
	}
	return nil, apperr.NotFound("Good")
}

func (r *fakeGoodRepo) Exists(_ context.Context, id int64) (bool, error) {
	_, ok := r.goods[id]
	return ok, nil
}

func (r *fakeGoodRepo) Create(_ context.Context, good *Good) error {
	r.nextID++
	good.ID = r.nextID
	copied := *good
	r.goods[good.ID] = &copied
	return nil
}

func (r *fakeGoodRepo) Update(_ context.Context, good *Good) error {
	if _, ok := r.goods[good.ID]; !ok {
		return apperr.NotFound("Good")
	}
	copied := *good
	r.goods[good.ID] = &copied
	return nil
}

func (r *fakeGoodRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.goods[id]; !ok {
		return apperr.NotFound("Good")
	}
	delete(r.goods, id)
	return nil
}

func (r *fakeGoodRepo) List(context.Context) ([]*Good, error) {
	var goods []*Good
	for _, good := range r.goods {
		copied := *good
		goods = append(goods, &copied)
	}
	sort.Slice(goods, func(i, j int) bool { return goods[i].ID > goods[j].ID })
	return goods, nil
}

func (r *fakeGoodRepo) ListByAdmin(ctx context.Context, adminID int64) ([]*Good, error) {
	all, _ := r.List(ctx)
	var goods []*Good
	for _, good := range all {
		if good.AdminID == adminID {
			goods = append(goods, good)
		}
	}
	return goods, nil
}

type fakeLogoRepo struct {
	logo string
}

func (r *fakeLogoRepo) Get(context.Context) (string, error) { return r.logo, nil }

func (r *fakeLogoRepo) Save(_ context.Context, logo string) error {
	r.logo = logo
	return nil
}

type fakeCategoryRepo struct {
	nextID     int64
	categories map[int64]*Category
}

func (r *fakeCategoryRepo) List(context.Context) ([]*Category, error) {
	var categories []*Category
	for _, category := range r.categories {
		categories = append(categories, category)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].ID < categories[j].ID })
	return categories, nil
}

func (r *fakeCategoryRepo) FindByTitle(_ context.Context, title string) (*Category, error) {
	for _, category := range r.categories {
		if category.Title == title {
			return category, nil
		}
	}
	return nil, apperr.NotFound("Category")
}

func (r *fakeCategoryRepo) Create(_ context.Context, category *Category) error {
	r.nextID++
	category.ID = r.nextID
	copied := *category
	r.categories[category.ID] = &copied
	return nil
}

func (r *fakeCategoryRepo) Update(_ context.Context, category *Category) error {
	if _, ok := r.categories[category.ID]; !ok {
		return apperr.NotFound("Category")
	}
	copied := *category
	r.categories[category.ID] = &copied
	return nil
}

// fakeReactions implements social.ReactionRepository; only the count and
// target-delete paths matter here.
type fakeReactions struct {
	counts  map[int64]int
	deleted []int64
}

func (r *fakeReactions) Find(context.Context, int64, social.TargetType, int64) (*social.Reaction, error) {
	return nil, apperr.NotFound("Reaction")
}

func (r *fakeReactions) Create(context.Context, *social.Reaction) error { return nil }

func (r *fakeReactions) UpdateValue(context.Context, int64, social.ReactionValue) error { return nil }

func (r *fakeReactions) Count(_ context.Context, _ social.TargetType, targetID int64) (int, int, error) {
	return r.counts[targetID], 0, nil
}

func (r *fakeReactions) DeleteByTarget(_ context.Context, _ social.TargetType, targetID int64) error {
	r.deleted = append(r.deleted, targetID)
	return nil
}

func (r *fakeReactions) DeleteByUser(context.Context, int64) error { return nil }

type fakeCache struct {
	entries map[string][]byte
}

func (c *fakeCache) Get(_ context.Context, key string) ([]byte, bool) {
	payload, ok := c.entries[key]
	return payload, ok
}

func (c *fakeCache) Set(_ context.Context, key string, payload []byte, _ time.Duration) {
	c.entries[key] = payload
}

func (c *fakeCache) Delete(_ context.Context, keys ...string) {
	for _, key := range keys {
		delete(c.entries, key)
	}
}

type cmsFixture struct {
	service   *Service
	articles  *fakeArticleRepo
	goods     *fakeGoodRepo
	logo      *fakeLogoRepo
	reactions *fakeReactions
	cache     *fakeCache
}

func newCMSFixture() *cmsFixture {
	articles := &fakeArticleRepo{articles: map[int64]*Article{}}
	goods := &fakeGoodRepo{goods: map[int64]*Good{}}
	logo := &fakeLogoRepo{}
	categories := &fakeCategoryRepo{categories: map[int64]*Category{}}
	reactions := &fakeReactions{counts: map[int64]int{}}
	cache := &fakeCache{entries: map[string][]byte{}}

	return &cmsFixture{
		service:   NewService(articles, goods, logo, categories, reactions, cache),
		articles:  articles,
		goods:     goods,
		logo:      logo,
		reactions: reactions,
		cache:     cache,
	}
}

func (f *cmsFixture) seedArticle(t *testing.T, title string) *Article {
	t.Helper()
	article, err := f.service.SaveArticle(context.Background(), 1, ArticleInput{
		Banner: "https://cdn.test/banner.png", Title: title, Description: "body",
	})
	require.NoError(t, err)
	return article
}

func (f *cmsFixture) orders(t *testing.T) map[string]int {
	t.Helper()
	orders := map[string]int{}
	for _, article := range f.articles.articles {
		orders[article.Title] = article.ShowOrder
	}
	return orders
}

// ── Article ordering ─────────────────────────────────────────────────────────

func TestSaveArticleAppendsWhenOrderZero(t *testing.T) {
	fixture := newCMSFixture()

	first := fixture.seedArticle(t, "a")
	second := fixture.seedArticle(t, "b")
	third := fixture.seedArticle(t, "c")

	assert.Equal(t, 1, first.ShowOrder)
	assert.Equal(t, 2, second.ShowOrder)
	assert.Equal(t, 3, third.ShowOrder)
}

func TestSaveArticleInsertAtRankShiftsNeighbors(t *testing.T) {
	fixture := newCMSFixture()
	fixture.seedArticle(t, "a")
	fixture.seedArticle(t, "b")
	fixture.seedArticle(t, "c")

	inserted, err := fixture.service.SaveArticle(context.Background(), 1, ArticleInput{
		Banner: "https://cdn.test/banner.png", Title: "x", Description: "body", ShowOrder: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, inserted.ShowOrder)

	assert.Equal(t, map[string]int{"a": 1, "x": 2, "b": 3, "c": 4}, fixture.orders(t))
}

func TestSaveArticleMoveDownShiftsWindow(t *testing.T) {
	fixture := newCMSFixture()
	a := fixture.seedArticle(t, "a")
	fixture.seedArticle(t, "b")
	fixture.seedArticle(t, "c")

	_, err := fixture.service.SaveArticle(context.Background(), 1, ArticleInput{
		ID: a.ID, Banner: "https://cdn.test/banner.png", Title: "a", Description: "body", ShowOrder: 3,
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"b": 1, "c": 2, "a": 3}, fixture.orders(t))
}

func TestSaveArticleMoveUpShiftsWindow(t *testing.T) {
	fixture := newCMSFixture()
	fixture.seedArticle(t, "a")
	fixture.seedArticle(t, "b")
	c := fixture.seedArticle(t, "c")

	_, err := fixture.service.SaveArticle(context.Background(), 1, ArticleInput{
		ID: c.ID, Banner: "https://cdn.test/banner.png", Title: "c", Description: "body", ShowOrder: 1,
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"c": 1, "a": 2, "b": 3}, fixture.orders(t))
}

func TestSaveArticleZeroOrderMovesToEnd(t *testing.T) {
	fixture := newCMSFixture()
	a := fixture.seedArticle(t, "a")
	fixture.seedArticle(t, "b")
	fixture.seedArticle(t, "c")

	updated, err := fixture.service.SaveArticle(context.Background(), 1, ArticleInput{
		ID: a.ID, Banner: "https://cdn.test/banner.png", Title: "a", Description: "body", ShowOrder: 0,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.ShowOrder)

	assert.Equal(t, map[string]int{"b": 1, "c": 2, "a": 3}, fixture.orders(t))
}

func TestDeleteArticleClosesGapAndDropsReactions(t *testing.T) {
	fixture := newCMSFixture()
	fixture.seedArticle(t, "a")
	b := fixture.seedArticle(t, "b")
	fixture.seedArticle(t, "c")

	require.NoError(t, fixture.service.DeleteArticle(context.Background(), b.ID))

	assert.Equal(t, map[string]int{"a": 1, "c": 2}, fixture.orders(t))
	assert.Contains(t, fixture.reactions.deleted, b.ID)
}

// ── Reads & cache ────────────────────────────────────────────────────────────

func TestArticlesDecoratedAndCached(t *testing.T) {
	fixture := newCMSFixture()
	a := fixture.seedArticle(t, "a")
	fixture.reactions.counts[a.ID] = 7

	articles, err := fixture.service.Articles(context.Background())
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, 7, articles[0].Likes)
	assert.NotEmpty(t, fixture.cache.entries)

	// A save invalidates, so the next read sees the new article.
	fixture.seedArticle(t, "b")
	articles, err = fixture.service.Articles(context.Background())
	require.NoError(t, err)
	assert.Len(t, articles, 2)
}

func TestSaveCategoryRejectsDuplicateTitle(t *testing.T) {
	fixture := newCMSFixture()

	_, err := fixture.service.SaveCategory(context.Background(), CategoryInput{Title: "Sleep", Color: "#123456"})
	require.NoError(t, err)

	_, err = fixture.service.SaveCategory(context.Background(), CategoryInput{Title: "Sleep", Color: "#654321"})
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
}

func TestSaveGoodValidatesPrice(t *testing.T) {
	fixture := newCMSFixture()

	_, err := fixture.service.SaveGood(context.Background(), 1, GoodInput{
		Name: "Band", Description: "d", Image: "i", Link: "l", Price: 0,
	})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
}
