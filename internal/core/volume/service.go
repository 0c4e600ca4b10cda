// Copyright (c) 2026 WebNDB. All rights reserved.
// Author: dev@webndb.app

package volume

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/meilisearch/meilisearch-go"

	"github.com/webndb/webndb/internal/platform/apperr"
	"github.com/webndb/webndb/internal/platform/constants"
	"github.com/webndb/webndb/internal/platform/meili"
	"github.com/webndb/webndb/internal/platform/validate"
	"github.com/webndb/webndb/pkg/keyset"
	"github.com/webndb/webndb/pkg/pagetoken"
	"github.com/webndb/webndb/pkg/pagination"
)

type Service struct {
	repo   Repository
	search *meili.Client
	codec  *pagetoken.Codec
	logger *slog.Logger

	defaultPageSize int
	maxPageSize     int
}

func NewService(repo Repository, search *meili.Client, codec *pagetoken.Codec, logger *slog.Logger, defaultPageSize, maxPageSize int) *Service {
	return &Service{
		repo:            repo,
		search:          search,
		codec:           codec,
		logger:          logger,
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
	}
}

// orderColumns is the stable, unique ordering behind volume pagination:
// volume_order with the surrogate key as tie-breaker.
func orderColumns() []keyset.Column {
	return []keyset.Column{
		{Name: "v.volume_order", Cast: "smallint"},
		{Name: "v.volume_id", Cast: "bigint"},
	}
}

func (service *Service) CreateVolume(context context.Context, input CreateInput) (*Volume, error) {
	if err := validateTitles(input.Titles, true); err != nil {
		return nil, err
	}

	validator := &validate.Validator{}
	if input.VolumeOrder != nil {
		validator.Range(FieldVolumeOrder, *input.VolumeOrder, 1, constants.VolumeOrderMax)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	v, err := service.repo.CreateVolume(context, input.NovelID, input.VolumeOrder, input.Titles)
	if err != nil {
		return nil, err
	}

	if err := service.mirror(v); err != nil {
		service.logger.Error("volume_mirror_failed",
			slog.String("volume_id", v.APIID()), slog.String("error", err.Error()))
	}

	service.logger.Info("volume_created",
		slog.String("volume_id", v.APIID()), slog.Int("volume_order", v.VolumeOrder))
	return v, nil
}

func (service *Service) GetVolume(context context.Context, apiID string) (*Volume, error) {
	novelID, volumeID, err := ParseAPIID(apiID)
	if err != nil {
		return nil, err
	}
	return service.repo.GetVolume(context, novelID, volumeID)
}

func (service *Service) PatchVolume(context context.Context, apiID string, input PatchInput) (*Volume, error) {
	novelID, volumeID, err := ParseAPIID(apiID)
	if err != nil {
		return nil, err
	}

	v, err := service.repo.GetVolume(context, novelID, volumeID)
	if err != nil {
		return nil, err
	}

	var newOrder *int
	if input.VolumeOrder.IsPresent() {
		order, ok := input.VolumeOrder.Value()
		if !ok {
			return nil, validate.RequiredError(FieldVolumeOrder, "volume_order cannot be null")
		}

		validator := &validate.Validator{}
		validator.Range(FieldVolumeOrder, order, 1, constants.VolumeOrderMax)
		if err := validator.Err(); err != nil {
			return nil, err
		}
		newOrder = &order
	}

	var titles []Title
	if input.Titles.IsPresent() {
		if input.Titles.IsNull() {
			return nil, validate.RequiredError(FieldTitles, "A volume must have at least one title")
		}
		titles, _ = input.Titles.Value()
		if err := validateTitles(titles, true); err != nil {
			return nil, err
		}
	}

	if err := service.repo.UpdateVolume(context, v, newOrder, titles); err != nil {
		return nil, err
	}

	if err := service.mirror(v); err != nil {
		service.logger.Error("volume_mirror_failed",
			slog.String("volume_id", v.APIID()), slog.String("error", err.Error()))
	}

	service.logger.Info("volume_updated",
		slog.String("volume_id", v.APIID()), slog.Int("volume_order", v.VolumeOrder))
	return v, nil
}

/*
ListByNovel returns one page of a novel's volumes plus prev/next tokens.

Parameters:
  - context: context.Context
  - novelID: int64 (owning novel)
  - params: pagination.Params (raw client page size and token)
  - path: string (logical endpoint path bound into tokens)

Returns:
  - []*Volume: the page items in volume_order
  - string: prev page token, "" when there is no previous page
  - string: next page token, "" when there is no next page
*/
func (service *Service) ListByNovel(context context.Context, novelID int64, params pagination.Params, path string) ([]*Volume, string, string, error) {
	filter := Filter{}
	fingerprint := pagetoken.Fingerprint(filter.Expr(), path)

	seek, err := service.codec.Decode(fingerprint, params.PageToken)
	if err != nil {
		if errors.Is(err, pagetoken.ErrInvalidPageToken) {
			return nil, "", "", apperr.InvalidPageToken()
		}
		return nil, "", "", err
	}

	query := keyset.Query{
		Columns:  orderColumns(),
		Seek:     seek,
		PageSize: pagination.EffectivePageSize(params.PageSize, service.defaultPageSize, service.maxPageSize),
	}

	page, err := service.repo.ListByNovel(context, novelID, query)
	if err != nil {
		return nil, "", "", err
	}

	prev, next, err := service.codec.ResponseTokens(filter.Expr(), path, page.Paging)
	if err != nil {
		return nil, "", "", err
	}
	return page.Items, prev, next, nil
}

// SearchVolumes routes a free-text query to the search index.
func (service *Service) SearchVolumes(context context.Context, filter Filter, pageSize int) ([]Document, error) {
	size := pagination.EffectivePageSize(pageSize, service.defaultPageSize, service.maxPageSize)

	response, err := service.search.Search(constants.IndexVolumes, filter.Query, &meilisearch.SearchRequest{
		Limit: int64(size),
	})
	if err != nil {
		return nil, apperr.Internal(err)
	}

	documents := make([]Document, 0, len(response.Hits))
	for _, hit := range response.Hits {
		raw, err := json.Marshal(hit)
		if err != nil {
			continue
		}
		var document Document
		if err := json.Unmarshal(raw, &document); err != nil {
			continue
		}
		documents = append(documents, document)
	}
	return documents, nil
}

// # Validation

func validateTitles(titles []Title, required bool) error {
	validator := &validate.Validator{}

	if required && len(titles) == 0 {
		validator.Custom(FieldTitles, true, "A volume must have at least one title")
	}

	seen := make(map[string]bool, len(titles))
	for _, title := range titles {
		validator.OneOf(FieldTitleLang, title.Lang, constants.Languages...)
		validator.Required(FieldTitleTitle, title.Title).
			MaxLen(FieldTitleTitle, title.Title, constants.VolumeTitleMax)
		if title.Latin != nil {
			validator.MaxLen(FieldTitleLatin, *title.Latin, constants.VolumeTitleMax)
		}

		if seen[title.Lang] {
			validator.Custom(FieldTitleLang, true,
				fmt.Sprintf("Language '%s' is used by more than one title but only one title per language is allowed", title.Lang))
		}
		seen[title.Lang] = true
	}

	return validator.Err()
}
