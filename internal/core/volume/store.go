// Copyright (c) 2026 WebNDB. All rights reserved.
// Author: dev@webndb.app

package volume

import (
	"context"

	"github.com/webndb/webndb/pkg/keyset"
)

type Repository interface {
	// GetVolume loads a volume with its titles, addressed by the
	// (novel, volume) pair.
	GetVolume(context context.Context, novelID, volumeID int64) (*Volume, error)

	// CreateVolume inserts a volume at the desired order (nil appends),
	// shifting siblings and updating the novel's ordering record in one
	// transaction.
	CreateVolume(context context.Context, novelID int64, desiredOrder *int, titles []Title) (*Volume, error)

	// UpdateVolume moves the volume to newOrder (nil leaves it) and, when
	// titles is non-nil, replaces the title collection, in one transaction.
	UpdateVolume(context context.Context, v *Volume, newOrder *int, titles []Title) error

	// ListByNovel fetches one keyset page of a novel's volumes ordered by
	// volume_order.
	ListByNovel(context context.Context, novelID int64, query keyset.Query) (keyset.Page[*Volume], error)
}
