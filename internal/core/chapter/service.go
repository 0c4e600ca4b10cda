// Copyright (c) 2026 WebNDB. All rights reserved.
// Author: dev@webndb.app

package chapter

import (
	"context"
	"encoding/json"
	"errors"
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

// orderColumns is the stable, unique ordering behind chapter pagination:
// chapter_order with the surrogate key as tie-breaker.
func orderColumns() []keyset.Column {
	return []keyset.Column{
		{Name: "c.chapter_order", Cast: "smallint"},
		{Name: "c.chapter_id", Cast: "bigint"},
	}
}

func (service *Service) CreateChapter(context context.Context, input CreateInput) (*Chapter, error) {
	validator := &validate.Validator{}
	if input.ChapterOrder != nil {
		validator.Range(FieldChapterOrder, *input.ChapterOrder, 1, constants.ChapterOrderMax)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	c, err := service.repo.CreateChapter(context, input.NovelID, input.VolumeID, input.ChapterOrder)
	if err != nil {
		return nil, err
	}

	if err := service.mirror(c); err != nil {
		service.logger.Error("chapter_mirror_failed",
			slog.String("chapter_id", c.APIID()), slog.String("error", err.Error()))
	}

	service.logger.Info("chapter_created",
		slog.String("chapter_id", c.APIID()), slog.Int("chapter_order", c.ChapterOrder))
	return c, nil
}

func (service *Service) GetChapter(context context.Context, apiID string) (*Chapter, error) {
	novelID, chapterID, err := ParseAPIID(apiID)
	if err != nil {
		return nil, err
	}
	return service.repo.GetChapter(context, novelID, chapterID)
}

func (service *Service) PatchChapter(context context.Context, apiID string, input PatchInput) (*Chapter, error) {
	novelID, chapterID, err := ParseAPIID(apiID)
	if err != nil {
		return nil, err
	}

	c, err := service.repo.GetChapter(context, novelID, chapterID)
	if err != nil {
		return nil, err
	}

	var newOrder *int
	if input.ChapterOrder.IsPresent() {
		order, ok := input.ChapterOrder.Value()
		if !ok {
			return nil, validate.RequiredError(FieldChapterOrder, "chapter_order cannot be null")
		}

		validator := &validate.Validator{}
		validator.Range(FieldChapterOrder, order, 1, constants.ChapterOrderMax)
		if err := validator.Err(); err != nil {
			return nil, err
		}
		newOrder = &order
	}

	var volume VolumeChange
	if input.VolumeID.IsPresent() {
		volume.Set = true
		if value, ok := input.VolumeID.Value(); ok {
			volume.VolumeID = &value
		}
	}

	if err := service.repo.UpdateChapter(context, c, newOrder, volume); err != nil {
		return nil, err
	}

	if err := service.mirror(c); err != nil {
		service.logger.Error("chapter_mirror_failed",
			slog.String("chapter_id", c.APIID()), slog.String("error", err.Error()))
	}

	service.logger.Info("chapter_updated",
		slog.String("chapter_id", c.APIID()), slog.Int("chapter_order", c.ChapterOrder))
	return c, nil
}

// ListByNovel returns one page of a novel's chapters plus prev/next tokens.
func (service *Service) ListByNovel(context context.Context, novelID int64, params pagination.Params, path string) ([]*Chapter, string, string, error) {
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

// SearchChapters routes a free-text query to the search index.
func (service *Service) SearchChapters(context context.Context, filter Filter, pageSize int) ([]Document, error) {
	size := pagination.EffectivePageSize(pageSize, service.defaultPageSize, service.maxPageSize)

	response, err := service.search.Search(constants.IndexChapters, filter.Query, &meilisearch.SearchRequest{
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

// # Releases

func (service *Service) AddRelease(context context.Context, apiID string, input ReleaseInput) (*Chapter, error) {
	novelID, chapterID, err := ParseAPIID(apiID)
	if err != nil {
		return nil, err
	}

	validator := &validate.Validator{}
	validator.OneOf(FieldReleaseLang, input.Lang, constants.Languages...)
	validator.Required(FieldReleaseTitle, input.Title).
		MaxLen(FieldReleaseTitle, input.Title, constants.ReleaseTitleMax)
	if input.Latin != nil {
		validator.MaxLen(FieldReleaseLatin, *input.Latin, constants.ReleaseTitleMax)
	}
	validator.Custom(FieldReleaseDate, input.ReleaseDate.IsZero(), "release_date is required")
	if err := validator.Err(); err != nil {
		return nil, err
	}

	// The chapter must exist before the release is attached; this also
	// rejects identifiers pairing a chapter with the wrong novel.
	c, err := service.repo.GetChapter(context, novelID, chapterID)
	if err != nil {
		return nil, err
	}

	release := &Release{
		ReleaseDate: input.ReleaseDate,
		Lang:        input.Lang,
		Official:    input.Official,
		Title:       input.Title,
		Latin:       input.Latin,
	}
	if err := service.repo.AddRelease(context, novelID, chapterID, release); err != nil {
		return nil, err
	}
	c.Releases = append(c.Releases, *release)

	if err := service.mirror(c); err != nil {
		service.logger.Error("chapter_mirror_failed",
			slog.String("chapter_id", c.APIID()), slog.String("error", err.Error()))
	}

	service.logger.Info("release_created",
		slog.String("chapter_id", c.APIID()), slog.Int64("release_id", release.ReleaseID))
	return c, nil
}

func (service *Service) DeleteRelease(context context.Context, apiID string, releaseID int64) error {
	novelID, chapterID, err := ParseAPIID(apiID)
	if err != nil {
		return err
	}

	if err := service.repo.DeleteRelease(context, novelID, releaseID); err != nil {
		return err
	}

	// Re-mirror so the index drops the deleted release.
	if c, err := service.repo.GetChapter(context, novelID, chapterID); err == nil {
		if err := service.mirror(c); err != nil {
			service.logger.Error("chapter_mirror_failed",
				slog.String("chapter_id", c.APIID()), slog.String("error", err.Error()))
		}
	}

	service.logger.Warn("release_deleted",
		slog.Int64("novel_id", novelID), slog.Int64("release_id", releaseID))
	return nil
}
