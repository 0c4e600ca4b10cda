// Copyright (c) 2026 WebNDB. All rights reserved.
// Author: dev@webndb.app

package keyset_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webndb/webndb/pkg/keyset"
)

var orderColumns = []keyset.Column{
	{Name: "v.volume_order", Cast: "smallint"},
	{Name: "v.id", Cast: "bigint"},
}

func rows(n int, start int) ([]int, [][]string) {
	items := make([]int, 0, n)
	keys := make([][]string, 0, n)
	for i := 0; i < n; i++ {
		value := start + i
		items = append(items, value)
		keys = append(keys, []string{itoa(value), itoa(value * 100)})
	}
	return items, keys
}

func itoa(n int) string {
	return string(rune('0' + n))
}

func TestQueryOrderByFlipsForBackwardScan(t *testing.T) {
	t.Parallel()

	forward := keyset.Query{Columns: orderColumns, PageSize: 10}
	assert.Equal(t, "v.volume_order ASC, v.id ASC", forward.OrderBy())

	last := keyset.Query{Columns: orderColumns, PageSize: 10, Seek: keyset.Seek{Last: true}}
	assert.Equal(t, "v.volume_order DESC, v.id DESC", last.OrderBy())

	prev := keyset.Query{
		Columns:  orderColumns,
		PageSize: 10,
		Seek:     keyset.Seek{Bookmark: &keyset.Bookmark{Values: []string{"5", "500"}, Reverse: true}},
	}
	assert.Equal(t, "v.volume_order DESC, v.id DESC", prev.OrderBy())
}

func TestQuerySeekPredicate(t *testing.T) {
	t.Parallel()

	t.Run("no bookmark yields empty predicate", func(t *testing.T) {
		t.Parallel()

		q := keyset.Query{Columns: orderColumns, PageSize: 10}

		fragment, args, err := q.SeekPredicate(1)
		require.NoError(t, err)
		assert.Empty(t, fragment)
		assert.Empty(t, args)
	})

	t.Run("forward bookmark compares greater with casts", func(t *testing.T) {
		t.Parallel()

		q := keyset.Query{
			Columns:  orderColumns,
			PageSize: 10,
			Seek:     keyset.Seek{Bookmark: &keyset.Bookmark{Values: []string{"5", "500"}}},
		}

		fragment, args, err := q.SeekPredicate(2)
		require.NoError(t, err)
		assert.Equal(t, "(v.volume_order, v.id) > ($2::smallint, $3::bigint)", fragment)
		assert.Equal(t, []any{"5", "500"}, args)
	})

	t.Run("reverse bookmark compares less", func(t *testing.T) {
		t.Parallel()

		q := keyset.Query{
			Columns:  orderColumns,
			PageSize: 10,
			Seek:     keyset.Seek{Bookmark: &keyset.Bookmark{Values: []string{"5", "500"}, Reverse: true}},
		}

		fragment, _, err := q.SeekPredicate(1)
		require.NoError(t, err)
		assert.Equal(t, "(v.volume_order, v.id) < ($1::smallint, $2::bigint)", fragment)
	})

	t.Run("value count mismatch errors", func(t *testing.T) {
		t.Parallel()

		q := keyset.Query{
			Columns:  orderColumns,
			PageSize: 10,
			Seek:     keyset.Seek{Bookmark: &keyset.Bookmark{Values: []string{"5"}}},
		}

		_, _, err := q.SeekPredicate(1)
		require.Error(t, err)
	})
}

func TestResolveFirstPage(t *testing.T) {
	t.Parallel()

	q := keyset.Query{Columns: orderColumns, PageSize: 3}

	t.Run("with lookahead", func(t *testing.T) {
		t.Parallel()

		items, keys := rows(4, 1)
		page := keyset.Resolve(items, keys, q)

		assert.Equal(t, []int{1, 2, 3}, page.Items)
		assert.False(t, page.HasPrevious)
		assert.True(t, page.HasNext)
		assert.Nil(t, page.BookmarkPrevious)
		require.NotNil(t, page.BookmarkNext)
		assert.Equal(t, keys[2], page.BookmarkNext.Values)
		assert.False(t, page.BookmarkNext.Reverse)
	})

	t.Run("everything fits", func(t *testing.T) {
		t.Parallel()

		items, keys := rows(2, 1)
		page := keyset.Resolve(items, keys, q)

		assert.Equal(t, []int{1, 2}, page.Items)
		assert.False(t, page.HasPrevious)
		assert.False(t, page.HasNext)
		assert.Nil(t, page.BookmarkPrevious)
		assert.Nil(t, page.BookmarkNext)
	})
}

func TestResolveLastPage(t *testing.T) {
	t.Parallel()

	q := keyset.Query{Columns: orderColumns, PageSize: 3, Seek: keyset.Seek{Last: true}}

	// Physical scan order is reversed: rows 6,5,4 plus lookahead 3.
	items := []int{6, 5, 4, 3}
	keys := [][]string{{"6", "f"}, {"5", "e"}, {"4", "d"}, {"3", "c"}}

	page := keyset.Resolve(items, keys, q)

	assert.Equal(t, []int{4, 5, 6}, page.Items)
	assert.True(t, page.HasPrevious)
	assert.False(t, page.HasNext)
	require.NotNil(t, page.BookmarkPrevious)
	assert.Equal(t, []string{"4", "d"}, page.BookmarkPrevious.Values)
	assert.True(t, page.BookmarkPrevious.Reverse)
	assert.Nil(t, page.BookmarkNext)
}

func TestResolveMiddlePageForward(t *testing.T) {
	t.Parallel()

	q := keyset.Query{
		Columns:  orderColumns,
		PageSize: 2,
		Seek:     keyset.Seek{Bookmark: &keyset.Bookmark{Values: []string{"2", "b"}}},
	}

	items, keys := rows(3, 3)
	page := keyset.Resolve(items, keys, q)

	assert.Equal(t, []int{3, 4}, page.Items)
	assert.True(t, page.HasPrevious)
	assert.True(t, page.HasNext)
	require.NotNil(t, page.BookmarkPrevious)
	assert.True(t, page.BookmarkPrevious.Reverse)
	require.NotNil(t, page.BookmarkNext)
}

func TestResolveMiddlePageBackward(t *testing.T) {
	t.Parallel()

	q := keyset.Query{
		Columns:  orderColumns,
		PageSize: 2,
		Seek:     keyset.Seek{Bookmark: &keyset.Bookmark{Values: []string{"5", "e"}, Reverse: true}},
	}

	// Scanning backwards from row 5: physical order 4,3 then lookahead 2.
	items := []int{4, 3, 2}
	keys := [][]string{{"4", "d"}, {"3", "c"}, {"2", "b"}}

	page := keyset.Resolve(items, keys, q)

	assert.Equal(t, []int{3, 4}, page.Items)
	assert.True(t, page.HasPrevious)
	assert.True(t, page.HasNext)
}

func TestResolveEmptyResult(t *testing.T) {
	t.Parallel()

	q := keyset.Query{Columns: orderColumns, PageSize: 5}
	page := keyset.Resolve[int](nil, nil, q)

	assert.Empty(t, page.Items)
	assert.False(t, page.HasPrevious)
	assert.False(t, page.HasNext)
	assert.Nil(t, page.BookmarkPrevious)
	assert.Nil(t, page.BookmarkNext)
}
