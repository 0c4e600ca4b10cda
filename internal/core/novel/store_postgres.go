// Copyright (c) 2026 WebNDB. All rights reserved.
// Author: dev@webndb.app

/*
Package novel provides the PostgreSQL implementation for novel data access.

Novels are the aggregate root of the catalog: creating one atomically
provisions the ordering bookkeeping for its volumes and chapters, and the
title collection is always written as a whole inside the owning transaction.
*/
package novel

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/webndb/webndb/internal/ordering"
	"github.com/webndb/webndb/internal/platform/database/schema"
	"github.com/webndb/webndb/internal/platform/dberr"
	"github.com/webndb/webndb/pkg/keyset"
	"github.com/webndb/webndb/pkg/slice"
)

// # PostgreSQL Repository

// novelRepository implements the [Repository] interface using pgx.
type novelRepository struct {
	pool            *pgxpool.Pool
	volumeOrdering  ordering.Store
	chapterOrdering ordering.Store
}

// NewRepository constructs a PostgreSQL backed novel store. The two ordering
// stores provision the per-novel bookkeeping rows at creation time.
func NewRepository(pool *pgxpool.Pool, volumeOrdering, chapterOrdering ordering.Store) Repository {
	return &novelRepository{
		pool:            pool,
		volumeOrdering:  volumeOrdering,
		chapterOrdering: chapterOrdering,
	}
}

/*
CreateNovel inserts a novel plus its titles and ordering records.

Description: Everything happens in one transaction so a novel can never
exist without its ordering bookkeeping.

Parameters:
  - context: context.Context
  - n: *Novel (titles already validated; NovelID is assigned here)

Returns:
  - error: wrapped storage error on failure
*/
func (repository *novelRepository) CreateNovel(context context.Context, n *Novel) error {
	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return fmt.Errorf("postgres: failed to begin transaction: %w", err)
	}
	defer transaction.Rollback(context)

	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s)
		VALUES ($1, $2, $3)
		RETURNING %s
	`,
		schema.Novel.Table,
		schema.Novel.OriginalLanguage,
		schema.Novel.Description,
		schema.Novel.Slug,
		schema.Novel.NovelID,
	)

	err = transaction.QueryRow(context, query,
		n.OriginalLanguage, n.Description, n.Slug,
	).Scan(&n.NovelID)
	if err != nil {
		return dberr.Wrap(fmt.Errorf("postgres: failed to insert novel: %w", err), "create novel")
	}

	if err := repository.insertTitles(context, transaction, n.NovelID, n.Titles); err != nil {
		return err
	}

	// Ordering bookkeeping is provisioned together with the novel itself.
	if err := repository.volumeOrdering.InitRecord(context, transaction, n.NovelID); err != nil {
		return err
	}
	if err := repository.chapterOrdering.InitRecord(context, transaction, n.NovelID); err != nil {
		return err
	}

	if err := transaction.Commit(context); err != nil {
		return dberr.Wrap(fmt.Errorf("postgres: failed to commit novel: %w", err), "create novel")
	}
	return nil
}

func (repository *novelRepository) GetNovel(context context.Context, novelID int64) (*Novel, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s
		FROM %s
		WHERE %s = $1
	`,
		schema.Novel.NovelID,
		schema.Novel.OriginalLanguage,
		schema.Novel.Description,
		schema.Novel.Slug,
		schema.Novel.Table,
		schema.Novel.NovelID,
	)

	var n Novel
	err := repository.pool.QueryRow(context, query, novelID).Scan(
		&n.NovelID,
		&n.OriginalLanguage,
		&n.Description,
		&n.Slug,
	)
	if err != nil {
		return nil, dberr.Wrap(fmt.Errorf("postgres: failed to get novel: %w", err), "get novel")
	}

	titlesByNovel, err := repository.loadTitles(context, []int64{novelID})
	if err != nil {
		return nil, err
	}
	n.Titles = titlesByNovel[novelID]

	return &n, nil
}

func (repository *novelRepository) UpdateNovel(context context.Context, n *Novel, titles []Title) error {
	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return fmt.Errorf("postgres: failed to begin transaction: %w", err)
	}
	defer transaction.Rollback(context)

	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4
		WHERE %s = $1
	`,
		schema.Novel.Table,
		schema.Novel.OriginalLanguage,
		schema.Novel.Description,
		schema.Novel.Slug,
		schema.Novel.NovelID,
	)

	tag, err := transaction.Exec(context, query,
		n.NovelID, n.OriginalLanguage, n.Description, n.Slug,
	)
	if err != nil {
		return dberr.Wrap(fmt.Errorf("postgres: failed to update novel: %w", err), "update novel")
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}

	// The title collection is replaced wholesale: delete then reinsert.
	if titles != nil {
		deleteQuery := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`,
			schema.NovelTitle.Table, schema.NovelTitle.NovelID)
		if _, err := transaction.Exec(context, deleteQuery, n.NovelID); err != nil {
			return dberr.Wrap(fmt.Errorf("postgres: failed to clear novel titles: %w", err), "update novel")
		}
		if err := repository.insertTitles(context, transaction, n.NovelID, titles); err != nil {
			return err
		}
		n.Titles = titles
	}

	if err := transaction.Commit(context); err != nil {
		return dberr.Wrap(fmt.Errorf("postgres: failed to commit novel update: %w", err), "update novel")
	}
	return nil
}

/*
ListNovels retrieves one keyset page of novels.

Description: Seeks past the decoded bookmark using a tuple comparison on
the ordering columns, fetches one lookahead row, then hydrates titles for
the page in a single extra round-trip.

Parameters:
  - context: context.Context
  - filter: Filter (original-language restriction)
  - query: keyset.Query (ordering columns, seek position, page size)

Returns:
  - keyset.Page[*Novel]: the page with prev/next bookmarks
  - error: wrapped storage error on failure
*/
func (repository *novelRepository) ListNovels(context context.Context, filter Filter, query keyset.Query) (keyset.Page[*Novel], error) {
	var queryBuilder strings.Builder
	var args []any

	queryBuilder.WriteString(fmt.Sprintf(`
		SELECT n.%s, n.%s, n.%s, n.%s
		FROM %s n
		WHERE TRUE
	`,
		schema.Novel.NovelID,
		schema.Novel.OriginalLanguage,
		schema.Novel.Description,
		schema.Novel.Slug,
		schema.Novel.Table,
	))

	if filter.Language != "" {
		args = append(args, filter.Language)
		queryBuilder.WriteString(fmt.Sprintf(" AND n.%s = $%d", schema.Novel.OriginalLanguage, len(args)))
	}

	seek, seekArgs, err := query.SeekPredicate(len(args) + 1)
	if err != nil {
		return keyset.Page[*Novel]{}, dberr.Wrap(err, "list novels")
	}
	if seek != "" {
		queryBuilder.WriteString(" AND " + seek)
		args = append(args, seekArgs...)
	}

	queryBuilder.WriteString(" ORDER BY " + query.OrderBy())
	args = append(args, query.Limit())
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d", len(args)))

	rows, err := repository.pool.Query(context, queryBuilder.String(), args...)
	if err != nil {
		return keyset.Page[*Novel]{}, dberr.Wrap(fmt.Errorf("postgres: failed to list novels: %w", err), "list novels")
	}
	defer rows.Close()

	var novels []*Novel
	var keys [][]string
	for rows.Next() {
		var n Novel
		err := rows.Scan(&n.NovelID, &n.OriginalLanguage, &n.Description, &n.Slug)
		if err != nil {
			return keyset.Page[*Novel]{}, dberr.Wrap(fmt.Errorf("postgres: failed to scan novel: %w", err), "list novels")
		}
		novels = append(novels, &n)
		keys = append(keys, []string{strconv.FormatInt(n.NovelID, 10)})
	}
	if err := rows.Err(); err != nil {
		return keyset.Page[*Novel]{}, dberr.Wrap(fmt.Errorf("postgres: novel rows failed: %w", err), "list novels")
	}

	page := keyset.Resolve(novels, keys, query)

	ids := slice.Map(page.Items, func(n *Novel) int64 { return n.NovelID })
	titlesByNovel, err := repository.loadTitles(context, ids)
	if err != nil {
		return keyset.Page[*Novel]{}, err
	}
	for _, n := range page.Items {
		n.Titles = titlesByNovel[n.NovelID]
	}

	return page, nil
}

// # Title Hydration

func (repository *novelRepository) insertTitles(context context.Context, transaction pgx.Tx, novelID int64, titles []Title) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5)
	`,
		schema.NovelTitle.Table,
		schema.NovelTitle.NovelID,
		schema.NovelTitle.Lang,
		schema.NovelTitle.Official,
		schema.NovelTitle.Title,
		schema.NovelTitle.Latin,
	)

	batch := &pgx.Batch{}
	for _, title := range titles {
		batch.Queue(query, novelID, title.Lang, title.Official, title.Title, title.Latin)
	}

	results := transaction.SendBatch(context, batch)
	defer results.Close()
	for range titles {
		if _, err := results.Exec(); err != nil {
			return dberr.Wrap(fmt.Errorf("postgres: failed to insert novel title: %w", err), "insert titles")
		}
	}
	return nil
}

func (repository *novelRepository) loadTitles(context context.Context, novelIDs []int64) (map[int64][]Title, error) {
	if len(novelIDs) == 0 {
		return map[int64][]Title{}, nil
	}

	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = ANY($1)
		ORDER BY %s, %s
	`,
		schema.NovelTitle.NovelID,
		schema.NovelTitle.Lang,
		schema.NovelTitle.Official,
		schema.NovelTitle.Title,
		schema.NovelTitle.Latin,
		schema.NovelTitle.Table,
		schema.NovelTitle.NovelID,
		schema.NovelTitle.Official,
		schema.NovelTitle.Lang,
	)

	rows, err := repository.pool.Query(context, query, novelIDs)
	if err != nil {
		return nil, dberr.Wrap(fmt.Errorf("postgres: failed to load novel titles: %w", err), "load titles")
	}
	defer rows.Close()

	titles := make(map[int64][]Title)
	for rows.Next() {
		var novelID int64
		var title Title
		err := rows.Scan(&novelID, &title.Lang, &title.Official, &title.Title, &title.Latin)
		if err != nil {
			return nil, dberr.Wrap(fmt.Errorf("postgres: failed to scan novel title: %w", err), "load titles")
		}
		titles[novelID] = append(titles[novelID], title)
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(fmt.Errorf("postgres: novel title rows failed: %w", err), "load titles")
	}
	return titles, nil
}
