// Copyright (c) 2026 WebNDB. All rights reserved.
// Author: dev@webndb.app

package chapter_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webndb/webndb/internal/core/chapter"
	"github.com/webndb/webndb/internal/platform/apperr"
	"github.com/webndb/webndb/pkg/keyset"
	"github.com/webndb/webndb/pkg/optional"
	"github.com/webndb/webndb/pkg/pagetoken"
	"github.com/webndb/webndb/pkg/pointer"
)

/*
TestChapter_MarshalJSON checks that the wire representation carries the
composite chapter_id instead of the surrogate key.
*/
func TestChapter_MarshalJSON(t *testing.T) {
	t.Parallel()

	c := &chapter.Chapter{
		ChapterID:    9,
		NovelID:      42,
		VolumeID:     pointer.To(int64(7)),
		ChapterOrder: 12,
	}

	payload, err := json.Marshal(c)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(payload, &decoded))

	assert.Equal(t, "42-9", decoded["chapter_id"])
	assert.Equal(t, "42", decoded["novel_id"])
	assert.Equal(t, float64(12), decoded["chapter_order"])
}

/*
TestParseAPIID checks decomposition of the public composite identifier.
*/
func TestParseAPIID(t *testing.T) {
	t.Parallel()

	novelID, chapterID, err := chapter.ParseAPIID("42-9")
	require.NoError(t, err)
	assert.Equal(t, int64(42), novelID)
	assert.Equal(t, int64(9), chapterID)

	for _, apiID := range []string{"", "42", "a-9", "42-b"} {
		_, _, err := chapter.ParseAPIID(apiID)
		require.Error(t, err, apiID)

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "VALIDATION_ERROR", ae.Code)
	}
}

// fakeRepository is an in-memory Repository for service tests.
type fakeRepository struct {
	chapters map[int64]*chapter.Chapter
	nextID   int64

	lastVolumeChange chapter.VolumeChange
	releaseSeq       int64
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{chapters: make(map[int64]*chapter.Chapter), nextID: 1}
}

func (repository *fakeRepository) GetChapter(_ context.Context, novelID, chapterID int64) (*chapter.Chapter, error) {
	c, ok := repository.chapters[chapterID]
	if !ok || c.NovelID != novelID {
		return nil, apperr.NotFound("Chapter")
	}
	clone := *c
	return &clone, nil
}

func (repository *fakeRepository) CreateChapter(_ context.Context, novelID int64, volumeID *int64, desiredOrder *int) (*chapter.Chapter, error) {
	order := int(repository.nextID)
	if desiredOrder != nil {
		order = *desiredOrder
	}
	c := &chapter.Chapter{
		ChapterID:    repository.nextID,
		NovelID:      novelID,
		VolumeID:     volumeID,
		ChapterOrder: order,
	}
	repository.chapters[c.ChapterID] = c
	repository.nextID++

	clone := *c
	return &clone, nil
}

func (repository *fakeRepository) UpdateChapter(_ context.Context, c *chapter.Chapter, newOrder *int, volume chapter.VolumeChange) error {
	repository.lastVolumeChange = volume

	stored, ok := repository.chapters[c.ChapterID]
	if !ok {
		return apperr.NotFound("Chapter")
	}
	if newOrder != nil {
		stored.ChapterOrder = *newOrder
		c.ChapterOrder = *newOrder
	}
	if volume.Set {
		stored.VolumeID = volume.VolumeID
		c.VolumeID = volume.VolumeID
	}
	return nil
}

func (repository *fakeRepository) ListByNovel(_ context.Context, _ int64, _ keyset.Query) (keyset.Page[*chapter.Chapter], error) {
	return keyset.Page[*chapter.Chapter]{}, nil
}

func (repository *fakeRepository) AddRelease(_ context.Context, novelID, chapterID int64, release *chapter.Release) error {
	c, ok := repository.chapters[chapterID]
	if !ok || c.NovelID != novelID {
		return apperr.NotFound("Chapter")
	}

	repository.releaseSeq++
	release.ReleaseID = repository.releaseSeq
	c.Releases = append(c.Releases, *release)
	return nil
}

func (repository *fakeRepository) DeleteRelease(_ context.Context, novelID, releaseID int64) error {
	for _, c := range repository.chapters {
		if c.NovelID != novelID {
			continue
		}
		for index, release := range c.Releases {
			if release.ReleaseID == releaseID {
				c.Releases = append(c.Releases[:index], c.Releases[index+1:]...)
				return nil
			}
		}
	}
	return apperr.NotFound("Release")
}

func newTestService(t *testing.T, repository chapter.Repository) *chapter.Service {
	t.Helper()

	codec, err := pagetoken.NewCodec(make([]byte, 32), 72*time.Hour)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return chapter.NewService(repository, nil, codec, logger, 10, 1000)
}

/*
TestService_CreateChapter covers order validation on creation.
*/
func TestService_CreateChapter(t *testing.T) {
	t.Parallel()

	t.Run("appends_without_order", func(t *testing.T) {
		service := newTestService(t, newFakeRepository())

		created, err := service.CreateChapter(context.Background(), chapter.CreateInput{NovelID: 42})
		require.NoError(t, err)
		assert.Equal(t, "42-1", created.APIID())
	})

	t.Run("rejects_out_of_range_order", func(t *testing.T) {
		service := newTestService(t, newFakeRepository())

		_, err := service.CreateChapter(context.Background(), chapter.CreateInput{
			NovelID:      42,
			ChapterOrder: pointer.To(10001),
		})
		require.Error(t, err)

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, chapter.FieldChapterOrder, ae.Details[0].Field)
	})
}

/*
TestService_PatchChapter covers the tri-state volume assignment: absent
leaves the volume, a value reassigns, and explicit null detaches.
*/
func TestService_PatchChapter(t *testing.T) {
	t.Parallel()

	seed := func(t *testing.T) (*chapter.Service, *fakeRepository, string) {
		t.Helper()
		repository := newFakeRepository()
		service := newTestService(t, repository)

		created, err := service.CreateChapter(context.Background(), chapter.CreateInput{
			NovelID:  42,
			VolumeID: pointer.To(int64(7)),
		})
		require.NoError(t, err)
		return service, repository, created.APIID()
	}

	t.Run("absent_volume_untouched", func(t *testing.T) {
		service, repository, apiID := seed(t)

		patched, err := service.PatchChapter(context.Background(), apiID, chapter.PatchInput{})
		require.NoError(t, err)
		assert.False(t, repository.lastVolumeChange.Set)
		require.NotNil(t, patched.VolumeID)
		assert.Equal(t, int64(7), *patched.VolumeID)
	})

	t.Run("null_volume_detaches", func(t *testing.T) {
		service, repository, apiID := seed(t)

		patched, err := service.PatchChapter(context.Background(), apiID, chapter.PatchInput{
			VolumeID: optional.Null[int64](),
		})
		require.NoError(t, err)
		assert.True(t, repository.lastVolumeChange.Set)
		assert.Nil(t, repository.lastVolumeChange.VolumeID)
		assert.Nil(t, patched.VolumeID)
	})

	t.Run("volume_reassigned", func(t *testing.T) {
		service, _, apiID := seed(t)

		patched, err := service.PatchChapter(context.Background(), apiID, chapter.PatchInput{
			VolumeID: optional.Present(int64(8)),
		})
		require.NoError(t, err)
		require.NotNil(t, patched.VolumeID)
		assert.Equal(t, int64(8), *patched.VolumeID)
	})

	t.Run("null_order_rejected", func(t *testing.T) {
		service, _, apiID := seed(t)

		_, err := service.PatchChapter(context.Background(), apiID, chapter.PatchInput{
			ChapterOrder: optional.Null[int](),
		})
		require.Error(t, err)

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "VALIDATION_ERROR", ae.Code)
	})
}

/*
TestService_Releases covers release attachment and removal.
*/
func TestService_Releases(t *testing.T) {
	t.Parallel()

	seed := func(t *testing.T) (*chapter.Service, *fakeRepository, string) {
		t.Helper()
		repository := newFakeRepository()
		service := newTestService(t, repository)

		created, err := service.CreateChapter(context.Background(), chapter.CreateInput{NovelID: 42})
		require.NoError(t, err)
		return service, repository, created.APIID()
	}

	validRelease := func() chapter.ReleaseInput {
		return chapter.ReleaseInput{
			ReleaseDate: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
			Lang:        "en",
			Official:    true,
			Title:       "Chapter 1: Beginnings",
		}
	}

	t.Run("add_release", func(t *testing.T) {
		service, _, apiID := seed(t)

		c, err := service.AddRelease(context.Background(), apiID, validRelease())
		require.NoError(t, err)
		require.Len(t, c.Releases, 1)
		assert.Equal(t, int64(1), c.Releases[0].ReleaseID)
		assert.Equal(t, "Chapter 1: Beginnings", c.Releases[0].Title)
	})

	t.Run("rejects_zero_release_date", func(t *testing.T) {
		service, _, apiID := seed(t)

		input := validRelease()
		input.ReleaseDate = time.Time{}

		_, err := service.AddRelease(context.Background(), apiID, input)
		require.Error(t, err)

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, chapter.FieldReleaseDate, ae.Details[0].Field)
	})

	t.Run("rejects_unknown_language", func(t *testing.T) {
		service, _, apiID := seed(t)

		input := validRelease()
		input.Lang = "xx"

		_, err := service.AddRelease(context.Background(), apiID, input)
		require.Error(t, err)

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, chapter.FieldReleaseLang, ae.Details[0].Field)
	})

	t.Run("rejects_wrong_novel_pairing", func(t *testing.T) {
		service, _, _ := seed(t)

		_, err := service.AddRelease(context.Background(), "41-1", validRelease())
		require.Error(t, err)

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "NOT_FOUND", ae.Code)
	})

	t.Run("delete_release", func(t *testing.T) {
		service, repository, apiID := seed(t)

		c, err := service.AddRelease(context.Background(), apiID, validRelease())
		require.NoError(t, err)

		err = service.DeleteRelease(context.Background(), apiID, c.Releases[0].ReleaseID)
		require.NoError(t, err)
		assert.Empty(t, repository.chapters[1].Releases)
	})

	t.Run("delete_unknown_release", func(t *testing.T) {
		service, _, apiID := seed(t)

		err := service.DeleteRelease(context.Background(), apiID, 999)
		require.Error(t, err)

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "NOT_FOUND", ae.Code)
	})
}
