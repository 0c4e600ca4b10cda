// Copyright (c) 2026 WebNDB. All rights reserved.
// Author: dev@webndb.app

package chapter

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/webndb/webndb/internal/platform/middleware"
	requestutil "github.com/webndb/webndb/internal/platform/request"
	"github.com/webndb/webndb/internal/platform/respond"
	"github.com/webndb/webndb/internal/platform/sec"
	"github.com/webndb/webndb/pkg/pagination"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the flat /chapters routes.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	// Public
	router.Get("/", handler.searchChapters)
	router.Get("/{id}", handler.getChapter)

	// Contributor and up
	router.Group(func(writeRoute chi.Router) {
		writeRoute.Use(middleware.RequireRole(sec.RoleContributor))

		writeRoute.Post("/", handler.createChapter)
		writeRoute.Patch("/{id}", handler.updateChapter)
		writeRoute.Post("/{id}/releases", handler.addRelease)

		// Moderator strict only
		writeRoute.With(middleware.RequireRole(sec.RoleModerator)).
			Delete("/{id}/releases/{releaseID}", handler.deleteRelease)
	})
}

// ListByNovel handles the novel-scoped, token-paginated chapter listing.
// Mounted under /novels/{id}/chapters.
func (handler *Handler) ListByNovel(writer http.ResponseWriter, request *http.Request) {
	novelID, err := requestutil.Int64Param(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	paginationParams := pagination.FromRequest(request)

	chapters, prevToken, nextToken, err := handler.service.ListByNovel(
		request.Context(), novelID, paginationParams, request.URL.Path)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Query(writer, chapters, prevToken, nextToken)
}

func (handler *Handler) searchChapters(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)
	filter := Filter{Query: request.URL.Query().Get("q")}

	documents, err := handler.service.SearchChapters(request.Context(), filter, paginationParams.PageSize)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Query(writer, documents, "", "")
}

func (handler *Handler) getChapter(writer http.ResponseWriter, request *http.Request) {
	c, err := handler.service.GetChapter(request.Context(), requestutil.Param(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, c)
}

func (handler *Handler) createChapter(writer http.ResponseWriter, request *http.Request) {
	var input CreateInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	c, err := handler.service.CreateChapter(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	writer.Header().Set("Location", "/chapters/"+c.APIID())
	respond.Created(writer, c)
}

func (handler *Handler) updateChapter(writer http.ResponseWriter, request *http.Request) {
	var input PatchInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	c, err := handler.service.PatchChapter(request.Context(), requestutil.Param(request, "id"), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, c)
}

func (handler *Handler) addRelease(writer http.ResponseWriter, request *http.Request) {
	var input ReleaseInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	c, err := handler.service.AddRelease(request.Context(), requestutil.Param(request, "id"), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, c)
}

func (handler *Handler) deleteRelease(writer http.ResponseWriter, request *http.Request) {
	releaseID, err := requestutil.Int64Param(request, "releaseID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.DeleteRelease(request.Context(), requestutil.Param(request, "id"), releaseID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
