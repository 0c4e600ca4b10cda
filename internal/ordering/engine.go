// Copyright (c) 2026 WebNDB. All rights reserved.
// Author: dev@webndb.app

package ordering

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/webndb/webndb/internal/platform/apperr"
)

// # Ordering Engine

// ChildInserter writes the new child row at the given rank inside the
// engine's transaction and returns the child's id.
type ChildInserter func(ctx context.Context, tx pgx.Tx, rank int) (int64, error)

// Engine applies rank-preserving inserts and moves for one child kind.
// All mutations of a parent run under the lock on its ordering record, so
// the dense-rank invariant holds at every commit boundary.
type Engine struct {
	store    Store
	resource string
	maxRank  int
}

/*
NewEngine constructs an ordering engine.

Parameters:
  - store: the transactional ordering store.
  - resource: the child kind name used in capacity errors (e.g. "Novel").
  - maxRank: the highest rank a child may occupy.

Returns:
  - *Engine: the engine.
*/
func NewEngine(store Store, resource string, maxRank int) *Engine {
	return &Engine{store: store, resource: resource, maxRank: maxRank}
}

// InitParent creates the parent's ordering record. Called in the same
// transaction that creates the parent itself.
func (engine *Engine) InitParent(ctx context.Context, tx pgx.Tx, novelID int64) error {
	return engine.store.InitRecord(ctx, tx, novelID)
}

/*
NextRank reads the parent's next unused rank under the ordering lock.

Parameters:
  - ctx: request context.
  - tx: the enclosing transaction.
  - novelID: the parent id.

Returns:
  - int: the next unused rank.
  - error: NotFound when the parent has no ordering record.
*/
func (engine *Engine) NextRank(ctx context.Context, tx pgx.Tx, novelID int64) (int, error) {
	record, err := engine.store.LockRecord(ctx, tx, novelID)
	if err != nil {
		return 0, err
	}
	return record.NextRank, nil
}

/*
Insert adds a new child at the desired rank, shifting siblings as needed.

The parent's ordering record is locked first; the lock is held until the
enclosing transaction ends, so concurrent inserts and moves on the same
parent serialize. When a shift is needed it runs as one bulk UPDATE before
the child row is written.

Parameters:
  - ctx: request context.
  - tx: the enclosing transaction.
  - novelID: the parent id.
  - desired: the requested rank, nil to append at the end.
  - insert: writes the child row at the assigned rank.

Returns:
  - int64: the new child's id.
  - int: the rank it was assigned.
  - error: CapacityExceeded when the parent is full; NotFound for an
    unknown parent.
*/
func (engine *Engine) Insert(ctx context.Context, tx pgx.Tx, novelID int64, desired *int, insert ChildInserter) (int64, int, error) {
	record, err := engine.store.LockRecord(ctx, tx, novelID)
	if err != nil {
		return 0, 0, err
	}

	plan, err := PlanInsert(record.NextRank, desired, engine.maxRank)
	if err != nil {
		if errors.Is(err, ErrCapacityExceeded) {
			return 0, 0, apperr.CapacityExceeded(engine.resource, engine.maxRank)
		}
		return 0, 0, err
	}

	if plan.Shift != nil {
		if err := engine.store.ShiftRanks(ctx, tx, novelID, *plan.Shift); err != nil {
			return 0, 0, err
		}
	}

	childID, err := insert(ctx, tx, plan.Rank)
	if err != nil {
		return 0, 0, err
	}

	record.Order = insertID(record.Order, plan.Rank, childID)
	record.NextRank++
	if err := engine.store.SaveRecord(ctx, tx, novelID, record); err != nil {
		return 0, 0, err
	}

	return childID, plan.Rank, nil
}

/*
Move relocates an existing child to a new rank.

The destination is clamped to the highest occupied rank. A move onto the
child's own rank is a no-op and issues no writes beyond the lock. Otherwise
the displaced range shifts in one bulk UPDATE and the moved child takes the
vacated slot last.

Parameters:
  - ctx: request context.
  - tx: the enclosing transaction.
  - novelID: the parent id.
  - childID: the child being moved.
  - oldRank: the child's current rank.
  - newRank: the requested destination.

Returns:
  - int: the rank the child ends up at.
  - error: NotFound for an unknown parent or child.
*/
func (engine *Engine) Move(ctx context.Context, tx pgx.Tx, novelID, childID int64, oldRank, newRank int) (int, error) {
	record, err := engine.store.LockRecord(ctx, tx, novelID)
	if err != nil {
		return 0, err
	}

	plan := PlanMove(record.NextRank, oldRank, newRank)
	if plan.NoOp {
		return plan.NewRank, nil
	}

	if err := engine.store.ShiftRanks(ctx, tx, novelID, *plan.Shift); err != nil {
		return 0, err
	}
	if err := engine.store.SetRank(ctx, tx, novelID, childID, plan.NewRank); err != nil {
		return 0, err
	}

	record.Order = moveID(record.Order, oldRank, plan.NewRank, childID)
	if err := engine.store.SaveRecord(ctx, tx, novelID, record); err != nil {
		return 0, err
	}

	return plan.NewRank, nil
}
