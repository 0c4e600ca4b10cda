// Copyright (c) 2026 WebNDB. All rights reserved.
// Author: dev@webndb.app

package novel_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webndb/webndb/internal/core/novel"
	"github.com/webndb/webndb/internal/platform/apperr"
	"github.com/webndb/webndb/pkg/keyset"
	"github.com/webndb/webndb/pkg/optional"
	"github.com/webndb/webndb/pkg/pagetoken"
	"github.com/webndb/webndb/pkg/pagination"
	"github.com/webndb/webndb/pkg/pointer"
)

// fakeRepository is an in-memory Repository for service tests.
type fakeRepository struct {
	novels map[int64]*novel.Novel
	nextID int64

	listPage keyset.Page[*novel.Novel]
	listErr  error
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{novels: make(map[int64]*novel.Novel), nextID: 1}
}

func (repository *fakeRepository) CreateNovel(_ context.Context, n *novel.Novel) error {
	n.NovelID = repository.nextID
	repository.nextID++

	clone := *n
	repository.novels[n.NovelID] = &clone
	return nil
}

func (repository *fakeRepository) GetNovel(_ context.Context, novelID int64) (*novel.Novel, error) {
	n, ok := repository.novels[novelID]
	if !ok {
		return nil, apperr.NotFound("Novel")
	}
	clone := *n
	return &clone, nil
}

func (repository *fakeRepository) UpdateNovel(_ context.Context, n *novel.Novel, titles []novel.Title) error {
	stored, ok := repository.novels[n.NovelID]
	if !ok {
		return apperr.NotFound("Novel")
	}
	*stored = *n
	if titles != nil {
		stored.Titles = titles
	}
	return nil
}

func (repository *fakeRepository) ListNovels(_ context.Context, _ novel.Filter, _ keyset.Query) (keyset.Page[*novel.Novel], error) {
	return repository.listPage, repository.listErr
}

func newTestService(t *testing.T, repository novel.Repository) *novel.Service {
	t.Helper()

	codec, err := pagetoken.NewCodec(make([]byte, 32), 72*time.Hour)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return novel.NewService(repository, nil, nil, codec, logger, 10, 1000)
}

func officialTitle(lang, title string) novel.Title {
	return novel.Title{Lang: lang, Official: true, Title: title}
}

/*
TestService_CreateNovel covers creation validation and slug derivation.
*/
func TestService_CreateNovel(t *testing.T) {
	t.Parallel()

	t.Run("creates_with_slug_from_official_latin", func(t *testing.T) {
		repository := newFakeRepository()
		service := newTestService(t, repository)

		input := novel.CreateInput{
			OriginalLanguage: pointer.To("ko"),
			Titles: []novel.Title{
				{Lang: "en", Title: "The Tower"},
				{Lang: "ko", Official: true, Title: "탑", Latin: pointer.To("Tap Ollagagi")},
			},
		}

		created, err := service.CreateNovel(context.Background(), input)
		require.NoError(t, err)
		assert.Equal(t, int64(1), created.NovelID)
		assert.Equal(t, "tap-ollagagi", created.Slug)
	})

	t.Run("rejects_missing_titles", func(t *testing.T) {
		service := newTestService(t, newFakeRepository())

		_, err := service.CreateNovel(context.Background(), novel.CreateInput{})
		require.Error(t, err)

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "VALIDATION_ERROR", ae.Code)
		assert.Equal(t, novel.FieldTitles, ae.Details[0].Field)
	})

	t.Run("rejects_duplicate_title_language", func(t *testing.T) {
		service := newTestService(t, newFakeRepository())

		_, err := service.CreateNovel(context.Background(), novel.CreateInput{
			Titles: []novel.Title{
				officialTitle("en", "First"),
				{Lang: "en", Title: "Second"},
			},
		})
		require.Error(t, err)

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Contains(t, ae.Details[0].Message, "more than one title")
	})

	t.Run("rejects_unknown_language", func(t *testing.T) {
		service := newTestService(t, newFakeRepository())

		_, err := service.CreateNovel(context.Background(), novel.CreateInput{
			OriginalLanguage: pointer.To("fr"),
			Titles:           []novel.Title{officialTitle("en", "Title")},
		})
		require.Error(t, err)

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, novel.FieldOriginalLanguage, ae.Details[0].Field)
	})
}

/*
TestService_PatchNovel covers the tri-state patch semantics: absent fields
stay untouched, explicit nulls clear, and null titles are rejected.
*/
func TestService_PatchNovel(t *testing.T) {
	t.Parallel()

	seed := func(t *testing.T) (*novel.Service, *fakeRepository, int64) {
		t.Helper()
		repository := newFakeRepository()
		service := newTestService(t, repository)

		created, err := service.CreateNovel(context.Background(), novel.CreateInput{
			Description: pointer.To("old description"),
			Titles:      []novel.Title{officialTitle("en", "Original Title")},
		})
		require.NoError(t, err)
		return service, repository, created.NovelID
	}

	t.Run("absent_fields_untouched", func(t *testing.T) {
		service, _, novelID := seed(t)

		patched, err := service.PatchNovel(context.Background(), novelID, novel.PatchInput{})
		require.NoError(t, err)
		require.NotNil(t, patched.Description)
		assert.Equal(t, "old description", *patched.Description)
	})

	t.Run("explicit_null_clears_description", func(t *testing.T) {
		service, _, novelID := seed(t)

		patched, err := service.PatchNovel(context.Background(), novelID, novel.PatchInput{
			Description: optional.Null[string](),
		})
		require.NoError(t, err)
		assert.Nil(t, patched.Description)
	})

	t.Run("null_titles_rejected", func(t *testing.T) {
		service, _, novelID := seed(t)

		_, err := service.PatchNovel(context.Background(), novelID, novel.PatchInput{
			Titles: optional.Null[[]novel.Title](),
		})
		require.Error(t, err)

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "VALIDATION_ERROR", ae.Code)
	})

	t.Run("new_titles_rederive_slug", func(t *testing.T) {
		service, _, novelID := seed(t)

		patched, err := service.PatchNovel(context.Background(), novelID, novel.PatchInput{
			Titles: optional.Present([]novel.Title{officialTitle("en", "Renamed Title")}),
		})
		require.NoError(t, err)
		assert.Equal(t, "renamed-title", patched.Slug)
	})

	t.Run("unknown_novel", func(t *testing.T) {
		service, _, _ := seed(t)

		_, err := service.PatchNovel(context.Background(), 9999, novel.PatchInput{})
		require.Error(t, err)

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "NOT_FOUND", ae.Code)
	})
}

/*
TestService_ListNovels exercises the page-token round trip against the
listing fingerprint.
*/
func TestService_ListNovels(t *testing.T) {
	t.Parallel()

	t.Run("rejects_foreign_token", func(t *testing.T) {
		service := newTestService(t, newFakeRepository())

		_, _, _, err := service.ListNovels(context.Background(), novel.Filter{},
			pagination.Params{PageToken: "not-a-token"}, "/novels")
		require.Error(t, err)

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "INVALID_PAGE_TOKEN", ae.Code)
	})

	t.Run("issues_next_token_when_more_pages", func(t *testing.T) {
		repository := newFakeRepository()
		repository.listPage = keyset.Page[*novel.Novel]{
			Items: []*novel.Novel{{NovelID: 1}, {NovelID: 2}},
			Paging: keyset.Paging{
				HasNext:      true,
				BookmarkNext: &keyset.Bookmark{Values: []string{"2"}},
			},
		}
		service := newTestService(t, repository)

		items, prev, next, err := service.ListNovels(context.Background(), novel.Filter{},
			pagination.Params{}, "/novels")
		require.NoError(t, err)
		assert.Len(t, items, 2)
		assert.Empty(t, prev)
		assert.NotEmpty(t, next)
	})

	t.Run("last_sentinel_accepted", func(t *testing.T) {
		repository := newFakeRepository()
		repository.listPage = keyset.Page[*novel.Novel]{
			Items: []*novel.Novel{{NovelID: 7}},
		}
		service := newTestService(t, repository)

		items, _, next, err := service.ListNovels(context.Background(), novel.Filter{},
			pagination.Params{PageToken: pagetoken.Last}, "/novels")
		require.NoError(t, err)
		assert.Len(t, items, 1)
		assert.Empty(t, next)
	})
}
