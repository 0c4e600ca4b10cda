// Copyright (c) 2026 WebNDB. All rights reserved.
// Author: dev@webndb.app

/*
Package volume provides the PostgreSQL implementation for volume data access.

Every write that touches volume_order goes through the ordering engine under
the novel's ordering lock, so the dense 1..N order of a novel's volumes
survives concurrent inserts and moves.
*/
package volume

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

// volumeRepository implements the [Repository] interface using pgx.
type volumeRepository struct {
	pool   *pgxpool.Pool
	engine *ordering.Engine
}

// NewRepository constructs a PostgreSQL backed volume store.
func NewRepository(pool *pgxpool.Pool, engine *ordering.Engine) Repository {
	return &volumeRepository{pool: pool, engine: engine}
}

func (repository *volumeRepository) GetVolume(context context.Context, novelID, volumeID int64) (*Volume, error) {
	// novel_id is redundant for lookup but rejects identifiers that pair a
	// volume with the wrong novel.
	query := fmt.Sprintf(`
		SELECT %s, %s, %s
		FROM %s
		WHERE %s = $1 AND %s = $2
	`,
		schema.Volume.VolumeID,
		schema.Volume.NovelID,
		schema.Volume.VolumeOrder,
		schema.Volume.Table,
		schema.Volume.NovelID,
		schema.Volume.VolumeID,
	)

	var v Volume
	err := repository.pool.QueryRow(context, query, novelID, volumeID).Scan(
		&v.VolumeID, &v.NovelID, &v.VolumeOrder,
	)
	if err != nil {
		return nil, dberr.Wrap(fmt.Errorf("postgres: failed to get volume: %w", err), "get volume")
	}

	titles, err := repository.loadTitles(context, novelID, []int64{volumeID})
	if err != nil {
		return nil, err
	}
	v.Titles = titles[volumeID]

	return &v, nil
}

/*
CreateVolume inserts a volume and assigns its order atomically.

Description: The novel's ordering record is locked first; a desired order
inside the occupied range displaces siblings through one bulk shift before
the new row is written.

Parameters:
  - context: context.Context
  - novelID: int64 (owning novel)
  - desiredOrder: *int (nil appends at the end)
  - titles: []Title (validated collection, written in the same transaction)

Returns:
  - *Volume: the created volume with its assigned order
  - error: CapacityExceeded, NotFound, or wrapped storage error
*/
func (repository *volumeRepository) CreateVolume(ctx context.Context, novelID int64, desiredOrder *int, titles []Title) (*Volume, error) {
	transaction, err := repository.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to begin transaction: %w", err)
	}
	defer transaction.Rollback(ctx)

	insertQuery := fmt.Sprintf(`
		INSERT INTO %s (%s, %s)
		VALUES ($1, $2)
		RETURNING %s
	`,
		schema.Volume.Table,
		schema.Volume.NovelID,
		schema.Volume.VolumeOrder,
		schema.Volume.VolumeID,
	)

	volumeID, assignedOrder, err := repository.engine.Insert(ctx, transaction, novelID, desiredOrder,
		func(ctx context.Context, transaction pgx.Tx, rank int) (int64, error) {
			var id int64
			err := transaction.QueryRow(ctx, insertQuery, novelID, rank).Scan(&id)
			if err != nil {
				return 0, dberr.Wrap(fmt.Errorf("postgres: failed to insert volume: %w", err), "create volume")
			}
			return id, nil
		})
	if err != nil {
		return nil, err
	}

	if err := repository.insertTitles(ctx, transaction, novelID, volumeID, titles); err != nil {
		return nil, err
	}

	if err := transaction.Commit(ctx); err != nil {
		return nil, dberr.Wrap(fmt.Errorf("postgres: failed to commit volume: %w", err), "create volume")
	}

	return &Volume{
		VolumeID:    volumeID,
		NovelID:     novelID,
		VolumeOrder: assignedOrder,
		Titles:      titles,
	}, nil
}

func (repository *volumeRepository) UpdateVolume(context context.Context, v *Volume, newOrder *int, titles []Title) error {
	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return fmt.Errorf("postgres: failed to begin transaction: %w", err)
	}
	defer transaction.Rollback(context)

	if newOrder != nil && *newOrder != v.VolumeOrder {
		assignedOrder, err := repository.engine.Move(context, transaction, v.NovelID, v.VolumeID, v.VolumeOrder, *newOrder)
		if err != nil {
			return err
		}
		v.VolumeOrder = assignedOrder
	}

	if titles != nil {
		deleteQuery := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`,
			schema.VolumeTitle.Table, schema.VolumeTitle.NovelID, schema.VolumeTitle.VolumeID)
		if _, err := transaction.Exec(context, deleteQuery, v.NovelID, v.VolumeID); err != nil {
			return dberr.Wrap(fmt.Errorf("postgres: failed to clear volume titles: %w", err), "update volume")
		}
		if err := repository.insertTitles(context, transaction, v.NovelID, v.VolumeID, titles); err != nil {
			return err
		}
		v.Titles = titles
	}

	if err := transaction.Commit(context); err != nil {
		return dberr.Wrap(fmt.Errorf("postgres: failed to commit volume update: %w", err), "update volume")
	}
	return nil
}

func (repository *volumeRepository) ListByNovel(context context.Context, novelID int64, query keyset.Query) (keyset.Page[*Volume], error) {
	var queryBuilder strings.Builder
	args := []any{novelID}

	queryBuilder.WriteString(fmt.Sprintf(`
		SELECT v.%s, v.%s, v.%s
		FROM %s v
		WHERE v.%s = $1
	`,
		schema.Volume.VolumeID,
		schema.Volume.NovelID,
		schema.Volume.VolumeOrder,
		schema.Volume.Table,
		schema.Volume.NovelID,
	))

	seek, seekArgs, err := query.SeekPredicate(len(args) + 1)
	if err != nil {
		return keyset.Page[*Volume]{}, dberr.Wrap(err, "list volumes")
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
		return keyset.Page[*Volume]{}, dberr.Wrap(fmt.Errorf("postgres: failed to list volumes: %w", err), "list volumes")
	}
	defer rows.Close()

	var volumes []*Volume
	var keys [][]string
	for rows.Next() {
		var v Volume
		if err := rows.Scan(&v.VolumeID, &v.NovelID, &v.VolumeOrder); err != nil {
			return keyset.Page[*Volume]{}, dberr.Wrap(fmt.Errorf("postgres: failed to scan volume: %w", err), "list volumes")
		}
		volumes = append(volumes, &v)
		keys = append(keys, []string{
			strconv.Itoa(v.VolumeOrder),
			strconv.FormatInt(v.VolumeID, 10),
		})
	}
	if err := rows.Err(); err != nil {
		return keyset.Page[*Volume]{}, dberr.Wrap(fmt.Errorf("postgres: volume rows failed: %w", err), "list volumes")
	}

	page := keyset.Resolve(volumes, keys, query)

	ids := slice.Map(page.Items, func(v *Volume) int64 { return v.VolumeID })
	titles, err := repository.loadTitles(context, novelID, ids)
	if err != nil {
		return keyset.Page[*Volume]{}, err
	}
	for _, v := range page.Items {
		v.Titles = titles[v.VolumeID]
	}

	return page, nil
}

// # Title Hydration

func (repository *volumeRepository) insertTitles(context context.Context, transaction pgx.Tx, novelID, volumeID int64, titles []Title) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		schema.VolumeTitle.Table,
		schema.VolumeTitle.VolumeID,
		schema.VolumeTitle.NovelID,
		schema.VolumeTitle.Lang,
		schema.VolumeTitle.Official,
		schema.VolumeTitle.Title,
		schema.VolumeTitle.Latin,
	)

	batch := &pgx.Batch{}
	for _, title := range titles {
		batch.Queue(query, volumeID, novelID, title.Lang, title.Official, title.Title, title.Latin)
	}

	results := transaction.SendBatch(context, batch)
	defer results.Close()
	for range titles {
		if _, err := results.Exec(); err != nil {
			return dberr.Wrap(fmt.Errorf("postgres: failed to insert volume title: %w", err), "insert titles")
		}
	}
	return nil
}

func (repository *volumeRepository) loadTitles(context context.Context, novelID int64, volumeIDs []int64) (map[int64][]Title, error) {
	if len(volumeIDs) == 0 {
		return map[int64][]Title{}, nil
	}

	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1 AND %s = ANY($2)
		ORDER BY %s, %s
	`,
		schema.VolumeTitle.VolumeID,
		schema.VolumeTitle.Lang,
		schema.VolumeTitle.Official,
		schema.VolumeTitle.Title,
		schema.VolumeTitle.Latin,
		schema.VolumeTitle.Table,
		schema.VolumeTitle.NovelID,
		schema.VolumeTitle.VolumeID,
		schema.VolumeTitle.Official,
		schema.VolumeTitle.Lang,
	)

	rows, err := repository.pool.Query(context, query, novelID, volumeIDs)
	if err != nil {
		return nil, dberr.Wrap(fmt.Errorf("postgres: failed to load volume titles: %w", err), "load titles")
	}
	defer rows.Close()

	titles := make(map[int64][]Title)
	for rows.Next() {
		var volumeID int64
		var title Title
		if err := rows.Scan(&volumeID, &title.Lang, &title.Official, &title.Title, &title.Latin); err != nil {
			return nil, dberr.Wrap(fmt.Errorf("postgres: failed to scan volume title: %w", err), "load titles")
		}
		titles[volumeID] = append(titles[volumeID], title)
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(fmt.Errorf("postgres: volume title rows failed: %w", err), "load titles")
	}
	return titles, nil
}
