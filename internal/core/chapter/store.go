// Copyright (c) 2026 WebNDB. All rights reserved.
// Author: dev@webndb.app

package chapter

import (
	"context"

	"github.com/webndb/webndb/pkg/keyset"
)

// VolumeChange carries a tri-state volume assignment for updates:
// Set=false keeps the current volume, Set=true with a nil VolumeID detaches
// the chapter, Set=true with a value reattaches it.
type VolumeChange struct {
	Set      bool
	VolumeID *int64
}

type Repository interface {
	// GetChapter loads a chapter with its releases, addressed by the
	// (novel, chapter) pair.
	GetChapter(context context.Context, novelID, chapterID int64) (*Chapter, error)

	// CreateChapter inserts a chapter at the desired order (nil appends),
	// shifting siblings and updating the novel's ordering record in one
	// transaction.
	CreateChapter(context context.Context, novelID int64, volumeID *int64, desiredOrder *int) (*Chapter, error)

	// UpdateChapter moves the chapter to newOrder (nil leaves it) and
	// applies the volume change, in one transaction.
	UpdateChapter(context context.Context, c *Chapter, newOrder *int, volume VolumeChange) error

	// ListByNovel fetches one keyset page of a novel's chapters ordered by
	// chapter_order.
	ListByNovel(context context.Context, novelID int64, query keyset.Query) (keyset.Page[*Chapter], error)

	// AddRelease inserts a release for the chapter.
	AddRelease(context context.Context, novelID, chapterID int64, release *Release) error

	// DeleteRelease removes a release from the chapter.
	DeleteRelease(context context.Context, novelID, releaseID int64) error
}
