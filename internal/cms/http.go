// Copyright (c) 2026 Vitalink. All rights reserved.
// Author: dev@vitalink.health

package cms

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vitalink/vitalink/internal/platform/middleware"
	requestutil "github.com/vitalink/vitalink/internal/platform/request"
	"github.com/vitalink/vitalink/internal/platform/respond"
	"github.com/vitalink/vitalink/internal/platform/sec"
)

// Handler implements the CMS HTTP endpoints.
type Handler struct {
	cmsService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{cmsService: service}
}

// PublicRoutes returns the unauthenticated read-only content routes.
func (handler *Handler) PublicRoutes() chi.Router {
	router := chi.NewRouter()

	router.Get("/article", handler.listArticles)
	router.Get("/article/{id}", handler.articleDetail)
	router.Get("/good", handler.listGoods)
	router.Get("/good/{id}", handler.goodDetail)
	router.Get("/logo", handler.logo)
	router.Get("/category", handler.listCategories)

	return router
}

// AdminRoutes returns the console content-management routes.
func (handler *Handler) AdminRoutes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAdmin(sec.LevelOperator))

	router.Get("/articles", handler.listArticles)
	router.Get("/articles/mine", handler.myArticles)
	router.Get("/articles/{id}", handler.articleDetail)
	router.Post("/articles", handler.saveArticle)
	router.Delete("/articles/{id}", handler.deleteArticle)

	router.Get("/goods", handler.listGoods)
	router.Get("/goods/mine", handler.myGoods)
	router.Get("/goods/{id}", handler.goodDetail)
	router.Post("/goods", handler.saveGood)
	router.Delete("/goods/{id}", handler.deleteGood)

	router.Post("/logo", handler.saveLogo)

	router.Get("/categories", handler.listCategories)
	router.Post("/categories", handler.saveCategory)

	return router
}

// # Articles

func (handler *Handler) listArticles(writer http.ResponseWriter, request *http.Request) {
	articles, err := handler.cmsService.Articles(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, articles)
}

func (handler *Handler) myArticles(writer http.ResponseWriter, request *http.Request) {
	adminID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	articles, err := handler.cmsService.ArticlesByAdmin(request.Context(), adminID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, articles)
}

func (handler *Handler) articleDetail(writer http.ResponseWriter, request *http.Request) {
	articleID, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	article, err := handler.cmsService.Article(request.Context(), articleID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, article)
}

func (handler *Handler) saveArticle(writer http.ResponseWriter, request *http.Request) {
	adminID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input ArticleInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	article, err := handler.cmsService.SaveArticle(request.Context(), adminID, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if input.ID == 0 {
		respond.Created(writer, article)
		return
	}
	respond.OK(writer, article)
}

func (handler *Handler) deleteArticle(writer http.ResponseWriter, request *http.Request) {
	articleID, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.cmsService.DeleteArticle(request.Context(), articleID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]bool{"success": true})
}

// # Goods

func (handler *Handler) listGoods(writer http.ResponseWriter, request *http.Request) {
	goods, err := handler.cmsService.Goods(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, goods)
}

func (handler *Handler) myGoods(writer http.ResponseWriter, request *http.Request) {
	adminID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	goods, err := handler.cmsService.GoodsByAdmin(request.Context(), adminID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, goods)
}

func (handler *Handler) goodDetail(writer http.ResponseWriter, request *http.Request) {
	goodID, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	good, err := handler.cmsService.Good(request.Context(), goodID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, good)
}

func (handler *Handler) saveGood(writer http.ResponseWriter, request *http.Request) {
	adminID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input GoodInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	good, err := handler.cmsService.SaveGood(request.Context(), adminID, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if input.ID == 0 {
		respond.Created(writer, good)
		return
	}
	respond.OK(writer, good)
}

func (handler *Handler) deleteGood(writer http.ResponseWriter, request *http.Request) {
	goodID, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.cmsService.DeleteGood(request.Context(), goodID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]bool{"success": true})
}

// # Logo & Categories

func (handler *Handler) logo(writer http.ResponseWriter, request *http.Request) {
	logo, err := handler.cmsService.Logo(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, map[string]string{"logo": logo})
}

func (handler *Handler) saveLogo(writer http.ResponseWriter, request *http.Request) {
	var input struct {
		Logo string `json:"logo"`
	}
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.cmsService.SaveLogo(request.Context(), input.Logo); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]bool{"success": true})
}

func (handler *Handler) listCategories(writer http.ResponseWriter, request *http.Request) {
	categories, err := handler.cmsService.Categories(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, categories)
}

func (handler *Handler) saveCategory(writer http.ResponseWriter, request *http.Request) {
	var input CategoryInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	category, err := handler.cmsService.SaveCategory(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if input.ID == 0 {
		respond.Created(writer, category)
		return
	}
	respond.OK(writer, category)
}
