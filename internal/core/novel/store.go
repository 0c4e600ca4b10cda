// Copyright (c) 2026 WebNDB. All rights reserved.
// Author: dev@webndb.app

package novel

import (
	"context"

	"github.com/webndb/webndb/pkg/keyset"
)

type Repository interface {
	// CreateNovel inserts the novel, its titles, and both of its ordering
	// records in one transaction.
	CreateNovel(context context.Context, n *Novel) error

	// GetNovel loads a novel with its titles.
	GetNovel(context context.Context, novelID int64) (*Novel, error)

	// UpdateNovel rewrites the novel's scalar columns and, when titles is
	// non-nil, replaces the whole title collection, in one transaction.
	UpdateNovel(context context.Context, n *Novel, titles []Title) error

	// ListNovels fetches one keyset page of novels ordered by novel_id.
	ListNovels(context context.Context, filter Filter, query keyset.Query) (keyset.Page[*Novel], error)
}
