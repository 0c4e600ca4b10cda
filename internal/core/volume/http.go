// Copyright (c) 2026 WebNDB. All rights reserved.
// Author: dev@webndb.app

package volume

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

// RegisterRoutes mounts the flat /volumes routes.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	// Public
	router.Get("/", handler.searchVolumes)
	router.Get("/{id}", handler.getVolume)

	// Contributor and up
	router.Group(func(writeRoute chi.Router) {
		writeRoute.Use(middleware.RequireRole(sec.RoleContributor))

		writeRoute.Post("/", handler.createVolume)
		writeRoute.Patch("/{id}", handler.updateVolume)
	})
}

// ListByNovel handles the novel-scoped, token-paginated volume listing.
// Mounted under /novels/{id}/volumes.
func (handler *Handler) ListByNovel(writer http.ResponseWriter, request *http.Request) {
	novelID, err := requestutil.Int64Param(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	paginationParams := pagination.FromRequest(request)

	volumes, prevToken, nextToken, err := handler.service.ListByNovel(
		request.Context(), novelID, paginationParams, request.URL.Path)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Query(writer, volumes, prevToken, nextToken)
}

func (handler *Handler) searchVolumes(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)
	filter := Filter{Query: request.URL.Query().Get("q")}

	documents, err := handler.service.SearchVolumes(request.Context(), filter, paginationParams.PageSize)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Query(writer, documents, "", "")
}

func (handler *Handler) getVolume(writer http.ResponseWriter, request *http.Request) {
	v, err := handler.service.GetVolume(request.Context(), requestutil.Param(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, v)
}

func (handler *Handler) createVolume(writer http.ResponseWriter, request *http.Request) {
	var input CreateInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	v, err := handler.service.CreateVolume(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	writer.Header().Set("Location", "/volumes/"+v.APIID())
	respond.Created(writer, v)
}

func (handler *Handler) updateVolume(writer http.ResponseWriter, request *http.Request) {
	var input PatchInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	v, err := handler.service.PatchVolume(request.Context(), requestutil.Param(request, "id"), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, v)
}
