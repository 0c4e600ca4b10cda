// Copyright (c) 2026 WebNDB. All rights reserved.
// Author: dev@webndb.app

package novel

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

func (handler *Handler) RegisterRoutes(router chi.Router) {
	// Public
	router.Get("/", handler.listNovels)
	router.Get("/{id}", handler.getNovel)

	// Contributor and up
	router.Group(func(writeRoute chi.Router) {
		writeRoute.Use(middleware.RequireRole(sec.RoleContributor))

		writeRoute.Post("/", handler.createNovel)
		writeRoute.Patch("/{id}", handler.updateNovel)
	})
}

func (handler *Handler) listNovels(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)

	filter := Filter{
		Language: request.URL.Query().Get("lang"),
		Query:    request.URL.Query().Get("q"),
	}

	// Free-text queries go to the search index; everything else pages
	// through storage with opaque tokens.
	if filter.Query != "" {
		documents, err := handler.service.SearchNovels(request.Context(), filter, paginationParams.PageSize)
		if err != nil {
			respond.Error(writer, request, err)
			return
		}
		respond.Query(writer, documents, "", "")
		return
	}

	novels, prevToken, nextToken, err := handler.service.ListNovels(
		request.Context(), filter, paginationParams, request.URL.Path)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Query(writer, novels, prevToken, nextToken)
}

func (handler *Handler) getNovel(writer http.ResponseWriter, request *http.Request) {
	novelID, err := requestutil.Int64Param(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	n, err := handler.service.GetNovel(request.Context(), novelID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, n)
}

func (handler *Handler) createNovel(writer http.ResponseWriter, request *http.Request) {
	var input CreateInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	n, err := handler.service.CreateNovel(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	writer.Header().Set("Location", "/novels/"+n.APIID())
	respond.Created(writer, n)
}

func (handler *Handler) updateNovel(writer http.ResponseWriter, request *http.Request) {
	novelID, err := requestutil.Int64Param(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input PatchInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	n, err := handler.service.PatchNovel(request.Context(), novelID, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, n)
}
