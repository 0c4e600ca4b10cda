// Copyright (c) 2026 WebNDB. All rights reserved.
// Author: dev@webndb.app

package volume_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webndb/webndb/internal/core/volume"
	"github.com/webndb/webndb/internal/platform/apperr"
	"github.com/webndb/webndb/pkg/keyset"
	"github.com/webndb/webndb/pkg/optional"
	"github.com/webndb/webndb/pkg/pagetoken"
	"github.com/webndb/webndb/pkg/pagination"
	"github.com/webndb/webndb/pkg/pointer"
)

func paginationParams(token string) pagination.Params {
	return pagination.Params{PageToken: token}
}

/*
TestParseAPIID checks decomposition of the public composite identifier.
*/
func TestParseAPIID(t *testing.T) {
	t.Parallel()

	t.Run("valid", func(t *testing.T) {
		novelID, volumeID, err := volume.ParseAPIID("42-7")
		require.NoError(t, err)
		assert.Equal(t, int64(42), novelID)
		assert.Equal(t, int64(7), volumeID)
	})

	tests := []struct {
		name  string
		apiID string
	}{
		{"no_separator", "427"},
		{"empty", ""},
		{"non_numeric_novel", "abc-7"},
		{"non_numeric_volume", "42-xyz"},
		{"trailing_separator", "42-"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := volume.ParseAPIID(tt.apiID)
			require.Error(t, err)

			ae := apperr.As(err)
			require.NotNil(t, ae)
			assert.Equal(t, "VALIDATION_ERROR", ae.Code)
			assert.Equal(t, volume.FieldVolumeID, ae.Details[0].Field)
		})
	}
}

/*
TestVolume_MarshalJSON checks that the wire representation carries the
composite volume_id instead of the surrogate key.
*/
func TestVolume_MarshalJSON(t *testing.T) {
	t.Parallel()

	v := &volume.Volume{
		VolumeID:    7,
		NovelID:     42,
		VolumeOrder: 3,
		Titles:      []volume.Title{{Lang: "en", Title: "Volume Three"}},
	}

	payload, err := json.Marshal(v)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(payload, &decoded))

	assert.Equal(t, "42-7", decoded["volume_id"])
	assert.Equal(t, "42", decoded["novel_id"])
	assert.Equal(t, float64(3), decoded["volume_order"])
}

// fakeRepository is an in-memory Repository for service tests.
type fakeRepository struct {
	volumes map[int64]*volume.Volume
	nextID  int64

	lastDesiredOrder *int
	lastNewOrder     *int
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{volumes: make(map[int64]*volume.Volume), nextID: 1}
}

func (repository *fakeRepository) GetVolume(_ context.Context, novelID, volumeID int64) (*volume.Volume, error) {
	v, ok := repository.volumes[volumeID]
	if !ok || v.NovelID != novelID {
		return nil, apperr.NotFound("Volume")
	}
	clone := *v
	return &clone, nil
}

func (repository *fakeRepository) CreateVolume(_ context.Context, novelID int64, desiredOrder *int, titles []volume.Title) (*volume.Volume, error) {
	repository.lastDesiredOrder = desiredOrder

	order := int(repository.nextID)
	if desiredOrder != nil {
		order = *desiredOrder
	}
	v := &volume.Volume{
		VolumeID:    repository.nextID,
		NovelID:     novelID,
		VolumeOrder: order,
		Titles:      titles,
	}
	repository.volumes[v.VolumeID] = v
	repository.nextID++

	clone := *v
	return &clone, nil
}

func (repository *fakeRepository) UpdateVolume(_ context.Context, v *volume.Volume, newOrder *int, titles []volume.Title) error {
	repository.lastNewOrder = newOrder

	stored, ok := repository.volumes[v.VolumeID]
	if !ok {
		return apperr.NotFound("Volume")
	}
	if newOrder != nil {
		stored.VolumeOrder = *newOrder
		v.VolumeOrder = *newOrder
	}
	if titles != nil {
		stored.Titles = titles
		v.Titles = titles
	}
	return nil
}

func (repository *fakeRepository) ListByNovel(_ context.Context, _ int64, _ keyset.Query) (keyset.Page[*volume.Volume], error) {
	return keyset.Page[*volume.Volume]{}, nil
}

func newTestService(t *testing.T, repository volume.Repository) *volume.Service {
	t.Helper()

	codec, err := pagetoken.NewCodec(make([]byte, 32), 72*time.Hour)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return volume.NewService(repository, nil, codec, logger, 10, 1000)
}

/*
TestService_CreateVolume covers order validation on creation.
*/
func TestService_CreateVolume(t *testing.T) {
	t.Parallel()

	t.Run("appends_without_order", func(t *testing.T) {
		repository := newFakeRepository()
		service := newTestService(t, repository)

		created, err := service.CreateVolume(context.Background(), volume.CreateInput{
			NovelID: 42,
			Titles:  []volume.Title{{Lang: "en", Title: "Volume One"}},
		})
		require.NoError(t, err)
		assert.Equal(t, "42-1", created.APIID())
		assert.Nil(t, repository.lastDesiredOrder)
	})

	t.Run("rejects_out_of_range_order", func(t *testing.T) {
		service := newTestService(t, newFakeRepository())

		_, err := service.CreateVolume(context.Background(), volume.CreateInput{
			NovelID:     42,
			VolumeOrder: pointer.To(101),
			Titles:      []volume.Title{{Lang: "en", Title: "Volume"}},
		})
		require.Error(t, err)

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, volume.FieldVolumeOrder, ae.Details[0].Field)
	})

	t.Run("rejects_missing_titles", func(t *testing.T) {
		service := newTestService(t, newFakeRepository())

		_, err := service.CreateVolume(context.Background(), volume.CreateInput{NovelID: 42})
		require.Error(t, err)

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, volume.FieldTitles, ae.Details[0].Field)
	})
}

/*
TestService_PatchVolume covers the tri-state patch semantics.
*/
func TestService_PatchVolume(t *testing.T) {
	t.Parallel()

	seed := func(t *testing.T) (*volume.Service, *fakeRepository, string) {
		t.Helper()
		repository := newFakeRepository()
		service := newTestService(t, repository)

		created, err := service.CreateVolume(context.Background(), volume.CreateInput{
			NovelID: 42,
			Titles:  []volume.Title{{Lang: "en", Title: "Volume One"}},
		})
		require.NoError(t, err)
		return service, repository, created.APIID()
	}

	t.Run("absent_order_leaves_position", func(t *testing.T) {
		service, repository, apiID := seed(t)

		_, err := service.PatchVolume(context.Background(), apiID, volume.PatchInput{
			Titles: optional.Present([]volume.Title{{Lang: "en", Title: "Renamed"}}),
		})
		require.NoError(t, err)
		assert.Nil(t, repository.lastNewOrder)
	})

	t.Run("order_forwarded_to_storage", func(t *testing.T) {
		service, repository, apiID := seed(t)

		patched, err := service.PatchVolume(context.Background(), apiID, volume.PatchInput{
			VolumeOrder: optional.Present(5),
		})
		require.NoError(t, err)
		require.NotNil(t, repository.lastNewOrder)
		assert.Equal(t, 5, *repository.lastNewOrder)
		assert.Equal(t, 5, patched.VolumeOrder)
	})

	t.Run("null_order_rejected", func(t *testing.T) {
		service, _, apiID := seed(t)

		_, err := service.PatchVolume(context.Background(), apiID, volume.PatchInput{
			VolumeOrder: optional.Null[int](),
		})
		require.Error(t, err)

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "VALIDATION_ERROR", ae.Code)
	})

	t.Run("malformed_id", func(t *testing.T) {
		service, _, _ := seed(t)

		_, err := service.PatchVolume(context.Background(), "not-an-id", volume.PatchInput{})
		require.Error(t, err)

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "VALIDATION_ERROR", ae.Code)
	})

	t.Run("unknown_volume", func(t *testing.T) {
		service, _, _ := seed(t)

		_, err := service.PatchVolume(context.Background(), "42-999", volume.PatchInput{})
		require.Error(t, err)

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "NOT_FOUND", ae.Code)
	})
}

/*
TestService_ListByNovel checks token validation against the listing path.
*/
func TestService_ListByNovel(t *testing.T) {
	t.Parallel()

	service := newTestService(t, newFakeRepository())

	_, _, _, err := service.ListByNovel(context.Background(), 42,
		paginationParams("garbage"), "/novels/42/volumes")
	require.Error(t, err)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "INVALID_PAGE_TOKEN", ae.Code)

	_, _, _, err = service.ListByNovel(context.Background(), 42,
		paginationParams(pagetoken.Last), "/novels/42/volumes")
	require.NoError(t, err)
}
