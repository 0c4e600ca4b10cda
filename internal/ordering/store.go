// Copyright (c) 2026 WebNDB. All rights reserved.
// Author: dev@webndb.app

package ordering

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Record is the locked state of a parent's ordering bookkeeping row.
type Record struct {
	// NextRank is the next unused rank for the parent.
	NextRank int
	// Order is the rank-sorted child id list.
	Order []int64
}

// Store is the transactional storage contract of the engine. Every method
// operates inside the caller-supplied transaction; nothing commits here.
type Store interface {
	// InitRecord creates the parent's ordering row with NextRank 1 and an
	// empty order list.
	InitRecord(ctx context.Context, tx pgx.Tx, novelID int64) error

	// LockRecord reads the parent's ordering row under a row lock held until
	// the transaction ends, serializing concurrent mutations of the parent.
	LockRecord(ctx context.Context, tx pgx.Tx, novelID int64) (Record, error)

	// SaveRecord writes the parent's ordering row back.
	SaveRecord(ctx context.Context, tx pgx.Tx, novelID int64, record Record) error

	// ShiftRanks applies one set-based rank update to the parent's children.
	ShiftRanks(ctx context.Context, tx pgx.Tx, novelID int64, shift Shift) error

	// SetRank rewrites a single child's rank.
	SetRank(ctx context.Context, tx pgx.Tx, novelID, childID int64, rank int) error
}
