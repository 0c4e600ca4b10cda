// Copyright (c) 2026 WebNDB. All rights reserved.
// Author: dev@webndb.app

/*
Package keyset implements seek-based (keyset) pagination over SQL queries.

# Why keyset instead of OFFSET?

OFFSET pagination degrades linearly with page depth and skews under
concurrent writes. Keyset pagination seeks directly to the last-seen row
using a tuple comparison on the ordering columns, so every page costs the
same and rows are never skipped or repeated when neighbors are inserted.

# Requirements

The ordering must be stable and total: the column list must end with a
unique column (typically the primary key) so that no two rows compare equal.
All columns share one scan direction.

# Usage

A store builds its SQL with [Query.SeekPredicate], [Query.OrderBy], and
[Query.Limit], scans up to PageSize+1 rows together with their key tuples,
and hands both to [Resolve] to obtain the trimmed window, the
HasPrevious/HasNext flags, and the derived prev/next bookmarks.
*/
package keyset

import (
	"fmt"
	"strings"
)

// Column is one ordering column of a keyset query.
type Column struct {
	// Name is the (optionally qualified) SQL column name.
	Name string
	// Cast is the SQL type the seek parameters are cast to (e.g. "bigint").
	// Bookmark values travel as strings, so the cast restores the storage type.
	Cast string
}

// Bookmark is an opaque position within an ordered result set: the key tuple
// of a boundary row plus the direction the next scan should take from it.
//
// Bookmarks are never exposed raw; the cursor codec wraps them into
// encrypted page tokens.
type Bookmark struct {
	// Values holds one serialized value per ordering column.
	Values []string `json:"v"`
	// Reverse marks a backward scan (towards the start of the result set).
	Reverse bool `json:"r"`
}

// Seek describes where a page fetch starts.
//
// The zero value means "from the start" (first page). Last means "from the
// end" (explicit last-page request). Otherwise Bookmark positions the scan.
type Seek struct {
	Last     bool
	Bookmark *Bookmark
}

// Query describes one keyset-paginated fetch.
type Query struct {
	// Columns is the stable, unique-suffixed ordering.
	Columns []Column
	// Desc inverts the logical ordering of the whole column list.
	Desc bool
	// Seek is the decoded page position.
	Seek Seek
	// PageSize is the number of rows the caller wants back.
	PageSize int
}

// Backward reports whether the physical scan runs against the logical order.
// This is the case for an explicit last-page request and for "previous page"
// bookmarks.
func (q Query) Backward() bool {
	if q.Seek.Last {
		return true
	}
	return q.Seek.Bookmark != nil && q.Seek.Bookmark.Reverse
}

// scanDesc reports whether the emitted ORDER BY is descending.
func (q Query) scanDesc() bool {
	return q.Desc != q.Backward()
}

// OrderBy renders the ORDER BY column list for the physical scan,
// flipping direction for backward scans.
func (q Query) OrderBy() string {
	direction := "ASC"
	if q.scanDesc() {
		direction = "DESC"
	}

	parts := make([]string, len(q.Columns))
	for i, column := range q.Columns {
		parts[i] = column.Name + " " + direction
	}
	return strings.Join(parts, ", ")
}

// SeekPredicate renders the tuple-comparison WHERE fragment that positions
// the scan just past the bookmarked row, along with its bind arguments.
//
// Placeholders are numbered starting at firstArg. An empty fragment means the
// scan starts at the physical beginning (first page or last-page seek).
func (q Query) SeekPredicate(firstArg int) (string, []any, error) {
	bookmark := q.Seek.Bookmark
	if bookmark == nil {
		return "", nil, nil
	}
	if len(bookmark.Values) != len(q.Columns) {
		return "", nil, fmt.Errorf("keyset: bookmark has %d values for %d ordering columns",
			len(bookmark.Values), len(q.Columns))
	}

	comparator := ">"
	if q.scanDesc() {
		comparator = "<"
	}

	names := make([]string, len(q.Columns))
	placeholders := make([]string, len(q.Columns))
	args := make([]any, len(q.Columns))
	for i, column := range q.Columns {
		names[i] = column.Name
		placeholders[i] = fmt.Sprintf("$%d", firstArg+i)
		if column.Cast != "" {
			placeholders[i] += "::" + column.Cast
		}
		args[i] = bookmark.Values[i]
	}

	fragment := fmt.Sprintf("(%s) %s (%s)",
		strings.Join(names, ", "), comparator, strings.Join(placeholders, ", "))
	return fragment, args, nil
}

// Limit is the row count to fetch: one extra row acts as the lookahead that
// detects whether more rows exist past the window.
func (q Query) Limit() int {
	return q.PageSize + 1
}

// Paging carries the window metadata shared by all page shapes.
type Paging struct {
	HasPrevious bool
	HasNext     bool

	// BookmarkPrevious/BookmarkNext are only set when the corresponding
	// direction has more rows; their absence is meaningful.
	BookmarkPrevious *Bookmark
	BookmarkNext     *Bookmark
}

// Page is one resolved window of rows plus its paging metadata.
type Page[T any] struct {
	Items []T
	Paging
}

// Resolve turns raw scanned rows into a logical page.
//
// items and keys are parallel slices in physical scan order: keys[i] holds
// the serialized ordering-column values of items[i]. Both may contain the
// lookahead row, which Resolve trims.
func Resolve[T any](items []T, keys [][]string, q Query) Page[T] {
	lookahead := len(items) > q.PageSize
	if lookahead {
		items = items[:q.PageSize]
		keys = keys[:q.PageSize]
	}

	// Backward scans deliver rows in flipped order; restore logical order.
	if q.Backward() {
		reverse(items)
		reverse(keys)
	}

	page := Page[T]{Items: items}

	switch {
	case q.Seek.Last:
		page.HasPrevious = lookahead
	case q.Seek.Bookmark == nil:
		page.HasNext = lookahead
	case q.Seek.Bookmark.Reverse:
		// Arrived via a prev token: the bookmarked row is still after us.
		page.HasNext = true
		page.HasPrevious = lookahead
	default:
		// Arrived via a next token: the bookmarked row is still before us.
		page.HasPrevious = true
		page.HasNext = lookahead
	}

	if len(items) > 0 {
		if page.HasPrevious {
			page.BookmarkPrevious = &Bookmark{Values: keys[0], Reverse: true}
		}
		if page.HasNext {
			page.BookmarkNext = &Bookmark{Values: keys[len(keys)-1]}
		}
	}

	return page
}

func reverse[T any](s []T) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
