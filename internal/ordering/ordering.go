// Copyright (c) 2026 WebNDB. All rights reserved.
// Author: dev@webndb.app

/*
Package ordering maintains a dense, gap-free rank (1..N) for the children of
a parent entity — volumes of a novel, chapters of a novel — under inserts at
arbitrary positions and arbitrary reorders.

# Model

Each parent owns one ordering record holding next_order (the next unused
rank, starting at 1) and an explicit rank-sorted array of child ids, kept
redundantly for audit. The children themselves carry the rank column under a
uniqueness constraint on (novel_id, rank).

# Approach

Rank maintenance is split into a pure planner and a storage layer. The
planner ([PlanInsert], [PlanMove]) decides which contiguous rank range must
shift and by how much; the store applies each shift as a single set-based
UPDATE over the range. Per-row loops are never used: a bulk UPDATE computes
every new rank from the pre-update snapshot, and the uniqueness constraint
is deferred to commit so transient collisions inside the statement cannot
fail it.

Concurrent mutations of the same parent are serialized by locking the
parent's ordering record (SELECT ... FOR UPDATE) for the duration of the
transaction. Serialization failures surface as retryable conflicts rather
than being retried internally.
*/
package ordering

import "errors"

// ErrCapacityExceeded is returned by the planner when an insert would need a
// rank beyond the configured maximum. The engine maps it to a domain error
// naming the resource.
var ErrCapacityExceeded = errors.New("ordering: maximum rank reached")

// Shift is one set-based rank update: add Delta to the rank of every child
// whose rank lies in [FromRank, ToRank].
type Shift struct {
	FromRank int
	ToRank   int
	Delta    int
}

// InsertPlan is the outcome of planning an insert.
type InsertPlan struct {
	// Rank is the position the new child takes.
	Rank int
	// Shift, when non-nil, must be applied before the child row is written.
	Shift *Shift
}

// MovePlan is the outcome of planning a move.
type MovePlan struct {
	// NewRank is the clamped destination.
	NewRank int
	// Shift, when non-nil, must be applied before the moved child's rank is
	// rewritten, so the vacated slot is filled last.
	Shift *Shift
	// NoOp marks a move that changes nothing; no writes may be issued.
	NoOp bool
}

/*
PlanInsert decides the rank for a new child and the shift that frees it.

A missing or too-large desired rank appends at the end (rank = nextRank),
which needs no shift. A desired rank inside the occupied range takes that
slot and pushes every child at or after it one rank up.

Parameters:
  - nextRank: the parent's next unused rank.
  - desired: the requested rank, nil to append.
  - maxRank: the capacity bound on ranks.

Returns:
  - InsertPlan: the rank to assign and the shift to apply first.
  - error: [ErrCapacityExceeded] when the parent is full.
*/
func PlanInsert(nextRank int, desired *int, maxRank int) (InsertPlan, error) {
	if nextRank > maxRank {
		return InsertPlan{}, ErrCapacityExceeded
	}

	rank := nextRank
	if desired != nil && *desired < nextRank {
		rank = *desired
		if rank < 1 {
			rank = 1
		}
	}

	plan := InsertPlan{Rank: rank}
	if rank < nextRank {
		plan.Shift = &Shift{FromRank: rank, ToRank: nextRank - 1, Delta: 1}
	}
	return plan, nil
}

/*
PlanMove decides the shift that relocates an existing child.

The destination is clamped to the highest occupied rank (nextRank-1): a move
never creates a new slot. Moving earlier pushes the range [newRank, oldRank)
up by one; moving later pulls (oldRank, newRank] down by one. A move that
lands on its own rank is a no-op.

Parameters:
  - nextRank: the parent's next unused rank.
  - oldRank: the child's current rank.
  - newRank: the requested destination.

Returns:
  - MovePlan: the clamped destination and the shift to apply first.
*/
func PlanMove(nextRank, oldRank, newRank int) MovePlan {
	if newRank > nextRank-1 {
		newRank = nextRank - 1
	}
	if newRank < 1 {
		newRank = 1
	}

	if newRank == oldRank {
		return MovePlan{NewRank: newRank, NoOp: true}
	}

	plan := MovePlan{NewRank: newRank}
	if newRank < oldRank {
		plan.Shift = &Shift{FromRank: newRank, ToRank: oldRank - 1, Delta: 1}
	} else {
		plan.Shift = &Shift{FromRank: oldRank + 1, ToRank: newRank, Delta: -1}
	}
	return plan
}

// insertID places id at 1-based position rank within order, growing it by one.
func insertID(order []int64, rank int, id int64) []int64 {
	index := rank - 1
	if index > len(order) {
		index = len(order)
	}

	result := make([]int64, 0, len(order)+1)
	result = append(result, order[:index]...)
	result = append(result, id)
	result = append(result, order[index:]...)
	return result
}

// moveID removes id's current position and reinserts it at 1-based newRank.
func moveID(order []int64, oldRank, newRank int, id int64) []int64 {
	index := oldRank - 1
	if index < 0 || index >= len(order) || order[index] != id {
		// The array fell out of sync with the rank column; rebuild from the
		// authoritative ranks by locating the id directly.
		index = -1
		for i, existing := range order {
			if existing == id {
				index = i
				break
			}
		}
		if index == -1 {
			return insertID(order, newRank, id)
		}
	}

	without := make([]int64, 0, len(order)-1)
	without = append(without, order[:index]...)
	without = append(without, order[index+1:]...)
	return insertID(without, newRank, id)
}
