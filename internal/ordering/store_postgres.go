// Copyright (c) 2026 WebNDB. All rights reserved.
// Author: dev@webndb.app

package ordering

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/webndb/webndb/internal/platform/database/schema"
	"github.com/webndb/webndb/internal/platform/dberr"
)

// # PostgreSQL Store

// Tables binds the store to one child kind: the bookkeeping table plus the
// child table carrying the rank column.
type Tables struct {
	Ordering   schema.OrderingTable
	ChildTable string
	ChildID    string
	ChildRank  string
}

// VolumeTables configures the store for volume ordering.
func VolumeTables() Tables {
	return Tables{
		Ordering:   schema.VolumeOrdering,
		ChildTable: schema.Volume.Table,
		ChildID:    schema.Volume.VolumeID,
		ChildRank:  schema.Volume.VolumeOrder,
	}
}

// ChapterTables configures the store for chapter ordering.
func ChapterTables() Tables {
	return Tables{
		Ordering:   schema.ChapterOrdering,
		ChildTable: schema.Chapter.Table,
		ChildID:    schema.Chapter.ChapterID,
		ChildRank:  schema.Chapter.ChapterOrder,
	}
}

// postgresStore implements the [Store] interface using pgx.
type postgresStore struct {
	tables Tables
}

// NewPostgresStore constructs a PostgreSQL backed ordering store.
func NewPostgresStore(tables Tables) Store {
	return &postgresStore{tables: tables}
}

func (store *postgresStore) InitRecord(ctx context.Context, tx pgx.Tx, novelID int64) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s)
		VALUES ($1, 1, '{}')
	`,
		store.tables.Ordering.Table,
		store.tables.Ordering.NovelID,
		store.tables.Ordering.NextOrder,
		store.tables.Ordering.Ordering,
	)

	if _, err := tx.Exec(ctx, query, novelID); err != nil {
		return dberr.Wrap(fmt.Errorf("postgres: failed to init %s: %w", store.tables.Ordering.Table, err), "init ordering")
	}
	return nil
}

// LockRecord takes FOR UPDATE on the single bookkeeping row, which is the
// serialization point for all ordering mutations of the parent.
func (store *postgresStore) LockRecord(ctx context.Context, tx pgx.Tx, novelID int64) (Record, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s
		FROM %s
		WHERE %s = $1
		FOR UPDATE
	`,
		store.tables.Ordering.NextOrder,
		store.tables.Ordering.Ordering,
		store.tables.Ordering.Table,
		store.tables.Ordering.NovelID,
	)

	var record Record
	err := tx.QueryRow(ctx, query, novelID).Scan(&record.NextRank, &record.Order)
	if err != nil {
		return Record{}, dberr.Wrap(fmt.Errorf("postgres: failed to lock %s: %w", store.tables.Ordering.Table, err), "lock ordering")
	}
	return record, nil
}

func (store *postgresStore) SaveRecord(ctx context.Context, tx pgx.Tx, novelID int64, record Record) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3
		WHERE %s = $1
	`,
		store.tables.Ordering.Table,
		store.tables.Ordering.NextOrder,
		store.tables.Ordering.Ordering,
		store.tables.Ordering.NovelID,
	)

	if _, err := tx.Exec(ctx, query, novelID, record.NextRank, record.Order); err != nil {
		return dberr.Wrap(fmt.Errorf("postgres: failed to save %s: %w", store.tables.Ordering.Table, err), "save ordering")
	}
	return nil
}

// ShiftRanks moves a whole rank range in one set-based statement. The new
// ranks are computed from the pre-update snapshot, and the uniqueness
// constraint on (novel_id, rank) is deferred to commit, so the statement
// cannot collide with itself.
func (store *postgresStore) ShiftRanks(ctx context.Context, tx pgx.Tx, novelID int64, shift Shift) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = %s + $4
		WHERE %s = $1 AND %s BETWEEN $2 AND $3
	`,
		store.tables.ChildTable,
		store.tables.ChildRank,
		store.tables.ChildRank,
		store.tables.Ordering.NovelID,
		store.tables.ChildRank,
	)

	if _, err := tx.Exec(ctx, query, novelID, shift.FromRank, shift.ToRank, shift.Delta); err != nil {
		return dberr.Wrap(fmt.Errorf("postgres: failed to shift %s ranks: %w", store.tables.ChildTable, err), "shift ranks")
	}
	return nil
}

func (store *postgresStore) SetRank(ctx context.Context, tx pgx.Tx, novelID, childID int64, rank int) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $3
		WHERE %s = $1 AND %s = $2
	`,
		store.tables.ChildTable,
		store.tables.ChildRank,
		store.tables.Ordering.NovelID,
		store.tables.ChildID,
	)

	tag, err := tx.Exec(ctx, query, novelID, childID, rank)
	if err != nil {
		return dberr.Wrap(fmt.Errorf("postgres: failed to set %s rank: %w", store.tables.ChildTable, err), "set rank")
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}
