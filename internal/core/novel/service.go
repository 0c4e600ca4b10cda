// Copyright (c) 2026 WebNDB. All rights reserved.
// Author: dev@webndb.app

package novel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"

	"github.com/webndb/webndb/internal/platform/apperr"
	"github.com/webndb/webndb/internal/platform/constants"
	"github.com/webndb/webndb/internal/platform/meili"
	"github.com/webndb/webndb/internal/platform/validate"
	"github.com/webndb/webndb/pkg/keyset"
	"github.com/webndb/webndb/pkg/pagetoken"
	"github.com/webndb/webndb/pkg/pagination"
	"github.com/webndb/webndb/pkg/slug"
)

type Service struct {
	repo   Repository
	cache  *redis.Client
	search *meili.Client
	codec  *pagetoken.Codec
	logger *slog.Logger

	defaultPageSize int
	maxPageSize     int
}

func NewService(repo Repository, cache *redis.Client, search *meili.Client, codec *pagetoken.Codec, logger *slog.Logger, defaultPageSize, maxPageSize int) *Service {
	return &Service{
		repo:            repo,
		cache:           cache,
		search:          search,
		codec:           codec,
		logger:          logger,
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
	}
}

// orderColumns is the stable, unique ordering behind novel pagination.
func orderColumns() []keyset.Column {
	return []keyset.Column{{Name: "n.novel_id", Cast: "bigint"}}
}

func (service *Service) CreateNovel(context context.Context, input CreateInput) (*Novel, error) {
	if err := validateTitles(input.Titles, true); err != nil {
		return nil, err
	}
	if err := validateScalars(input.OriginalLanguage, input.Description); err != nil {
		return nil, err
	}

	n := &Novel{
		OriginalLanguage: input.OriginalLanguage,
		Description:      input.Description,
		Slug:             slugFromTitles(input.Titles),
		Titles:           input.Titles,
	}

	if err := service.repo.CreateNovel(context, n); err != nil {
		return nil, err
	}

	if err := service.mirror(n); err != nil {
		service.logger.Error("novel_mirror_failed",
			slog.Int64("novel_id", n.NovelID), slog.String("error", err.Error()))
	}

	service.logger.Info("novel_created", slog.Int64("novel_id", n.NovelID))
	return n, nil
}

// GetNovel serves reads through the cache; storage is only hit on a miss.
func (service *Service) GetNovel(context context.Context, novelID int64) (*Novel, error) {
	if cached := service.fromCache(context, novelID); cached != nil {
		return cached, nil
	}

	n, err := service.repo.GetNovel(context, novelID)
	if err != nil {
		return nil, err
	}

	service.toCache(context, n)
	return n, nil
}

func (service *Service) PatchNovel(context context.Context, novelID int64, input PatchInput) (*Novel, error) {
	n, err := service.repo.GetNovel(context, novelID)
	if err != nil {
		return nil, err
	}

	if input.OriginalLanguage.IsPresent() {
		if value, ok := input.OriginalLanguage.Value(); ok {
			n.OriginalLanguage = &value
		} else {
			n.OriginalLanguage = nil
		}
	}
	if input.Description.IsPresent() {
		if value, ok := input.Description.Value(); ok {
			n.Description = &value
		} else {
			n.Description = nil
		}
	}
	if err := validateScalars(n.OriginalLanguage, n.Description); err != nil {
		return nil, err
	}

	var titles []Title
	if input.Titles.IsPresent() {
		if input.Titles.IsNull() {
			return nil, validate.RequiredError(FieldTitles, "A novel must have at least one title")
		}
		titles, _ = input.Titles.Value()
		if err := validateTitles(titles, true); err != nil {
			return nil, err
		}
		n.Slug = slugFromTitles(titles)
	}

	if err := service.repo.UpdateNovel(context, n, titles); err != nil {
		return nil, err
	}

	service.evict(context, novelID)

	if err := service.mirror(n); err != nil {
		service.logger.Error("novel_mirror_failed",
			slog.Int64("novel_id", n.NovelID), slog.String("error", err.Error()))
	}

	service.logger.Info("novel_updated", slog.Int64("novel_id", n.NovelID))
	return n, nil
}

/*
ListNovels returns one page of novels plus opaque prev/next tokens.

Description: The supplied page token is validated against the fingerprint of
the current filter and path, so a token issued for one listing cannot be
replayed against another.

Parameters:
  - context: context.Context
  - filter: Filter (language restriction; Query must be empty here)
  - params: pagination.Params (raw client page size and token)
  - path: string (logical endpoint path bound into tokens)

Returns:
  - []*Novel: the page items in logical order
  - string: prev page token, "" when there is no previous page
  - string: next page token, "" when there is no next page
*/
func (service *Service) ListNovels(context context.Context, filter Filter, params pagination.Params, path string) ([]*Novel, string, string, error) {
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

	page, err := service.repo.ListNovels(context, filter, query)
	if err != nil {
		return nil, "", "", err
	}

	prev, next, err := service.codec.ResponseTokens(filter.Expr(), path, page.Paging)
	if err != nil {
		return nil, "", "", err
	}
	return page.Items, prev, next, nil
}

// SearchNovels routes a free-text query to the search index.
func (service *Service) SearchNovels(context context.Context, filter Filter, pageSize int) ([]Document, error) {
	size := pagination.EffectivePageSize(pageSize, service.defaultPageSize, service.maxPageSize)

	response, err := service.search.Search(constants.IndexNovels, filter.Query, &meilisearch.SearchRequest{
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

// # Cache

func cacheKey(novelID int64) string {
	return constants.RedisPrefixNovel + strconv.FormatInt(novelID, 10)
}

func (service *Service) fromCache(context context.Context, novelID int64) *Novel {
	if service.cache == nil {
		return nil
	}

	payload, err := service.cache.Get(context, cacheKey(novelID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			service.logger.Debug("novel_cache_read_failed", slog.String("error", err.Error()))
		}
		return nil
	}

	var n Novel
	if err := json.Unmarshal(payload, &n); err != nil {
		return nil
	}
	return &n
}

func (service *Service) toCache(context context.Context, n *Novel) {
	if service.cache == nil {
		return
	}

	payload, err := json.Marshal(n)
	if err != nil {
		return
	}
	if err := service.cache.Set(context, cacheKey(n.NovelID), payload, constants.RedisNovelTTL).Err(); err != nil {
		service.logger.Debug("novel_cache_write_failed", slog.String("error", err.Error()))
	}
}

func (service *Service) evict(context context.Context, novelID int64) {
	if service.cache == nil {
		return
	}
	if err := service.cache.Del(context, cacheKey(novelID)).Err(); err != nil {
		service.logger.Debug("novel_cache_evict_failed", slog.String("error", err.Error()))
	}
}

// # Validation

func validateScalars(originalLanguage, description *string) error {
	validator := &validate.Validator{}

	if originalLanguage != nil {
		validator.OneOf(FieldOriginalLanguage, *originalLanguage, constants.Languages...)
	}
	if description != nil {
		validator.MaxLen(FieldDescription, *description, constants.NovelDescriptionMax)
	}

	return validator.Err()
}

// validateTitles enforces the shared title rules: at least one title when
// required, one title per language, known languages, bounded lengths.
func validateTitles(titles []Title, required bool) error {
	validator := &validate.Validator{}

	if required && len(titles) == 0 {
		validator.Custom(FieldTitles, true, "A novel must have at least one title")
	}

	seen := make(map[string]bool, len(titles))
	for _, title := range titles {
		validator.OneOf(FieldTitleLang, title.Lang, constants.Languages...)
		validator.Required(FieldTitleTitle, title.Title).
			MaxLen(FieldTitleTitle, title.Title, constants.NovelTitleMax)
		if title.Latin != nil {
			validator.MaxLen(FieldTitleLatin, *title.Latin, constants.NovelTitleMax)
		}

		if seen[title.Lang] {
			validator.Custom(FieldTitleLang, true,
				fmt.Sprintf("Language '%s' is used by more than one title but only one title per language is allowed", title.Lang))
		}
		seen[title.Lang] = true
	}

	return validator.Err()
}

// slugFromTitles derives the novel slug from its preferred title: the first
// official title wins, falling back to the first title overall. Latin
// spellings slugify better than original scripts, so they take precedence.
func slugFromTitles(titles []Title) string {
	if len(titles) == 0 {
		return ""
	}

	preferred := titles[0]
	for _, title := range titles {
		if title.Official {
			preferred = title
			break
		}
	}

	if preferred.Latin != nil && *preferred.Latin != "" {
		return slug.From(*preferred.Latin)
	}
	return slug.From(preferred.Title)
}
