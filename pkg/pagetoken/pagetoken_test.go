// Copyright (c) 2026 WebNDB. All rights reserved.
// Author: dev@webndb.app

package pagetoken

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webndb/webndb/pkg/keyset"
)

func newTestCodec(t *testing.T, ttl time.Duration) *Codec {
	t.Helper()

	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}

	codec, err := NewCodec(key, ttl)
	require.NoError(t, err)
	return codec
}

func TestNewCodecRejectsShortKey(t *testing.T) {
	t.Parallel()

	_, err := NewCodec([]byte("too short"), time.Hour)
	require.Error(t, err)
}

func TestCodecRoundTrip(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t, time.Hour)
	fingerprint := Fingerprint(`{"language":"en"}`, "/novels/7/volumes")
	bookmark := keyset.Bookmark{Values: []string{"3", "42"}, Reverse: true}

	token, err := codec.Encode(fingerprint, bookmark)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	seek, err := codec.Decode(fingerprint, token)
	require.NoError(t, err)
	require.NotNil(t, seek.Bookmark)
	assert.Equal(t, bookmark, *seek.Bookmark)
	assert.False(t, seek.Last)
}

func TestCodecSentinels(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t, time.Hour)
	fingerprint := Fingerprint("{}", "/novels")

	seek, err := codec.Decode(fingerprint, "")
	require.NoError(t, err)
	assert.False(t, seek.Last)
	assert.Nil(t, seek.Bookmark)

	seek, err = codec.Decode(fingerprint, Last)
	require.NoError(t, err)
	assert.True(t, seek.Last)
	assert.Nil(t, seek.Bookmark)
}

// The "last" sentinel carries no position, so it stays valid even when the
// request it is replayed against differs from the one that produced it.
func TestLastSentinelIgnoresFingerprint(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t, time.Hour)

	seek, err := codec.Decode(Fingerprint(`{"language":"ja"}`, "/novels/9/chapters"), Last)
	require.NoError(t, err)
	assert.True(t, seek.Last)
}

func TestCodecRejectsForeignToken(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t, time.Hour)
	bookmark := keyset.Bookmark{Values: []string{"3", "42"}}

	token, err := codec.Encode(Fingerprint(`{"language":"en"}`, "/novels/7/volumes"), bookmark)
	require.NoError(t, err)

	t.Run("different filter", func(t *testing.T) {
		t.Parallel()

		_, err := codec.Decode(Fingerprint(`{"language":"ja"}`, "/novels/7/volumes"), token)
		assert.ErrorIs(t, err, ErrInvalidPageToken)
	})

	t.Run("different path", func(t *testing.T) {
		t.Parallel()

		_, err := codec.Decode(Fingerprint(`{"language":"en"}`, "/novels/8/volumes"), token)
		assert.ErrorIs(t, err, ErrInvalidPageToken)
	})
}

func TestCodecRejectsGarbage(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t, time.Hour)
	fingerprint := Fingerprint("{}", "/novels")

	for _, token := range []string{"not base64 !!!", "YWJjZA", "bGFzdA"} {
		_, err := codec.Decode(fingerprint, token)
		assert.ErrorIs(t, err, ErrInvalidPageToken, "token %q", token)
	}
}

func TestCodecRejectsTampering(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t, time.Hour)
	fingerprint := Fingerprint("{}", "/novels")

	token, err := codec.Encode(fingerprint, keyset.Bookmark{Values: []string{"1", "2"}})
	require.NoError(t, err)

	mutated := []byte(token)
	if mutated[len(mutated)-1] == 'A' {
		mutated[len(mutated)-1] = 'B'
	} else {
		mutated[len(mutated)-1] = 'A'
	}

	_, err = codec.Decode(fingerprint, string(mutated))
	assert.ErrorIs(t, err, ErrInvalidPageToken)
}

func TestCodecRejectsExpiredToken(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t, 72*time.Hour)
	fingerprint := Fingerprint("{}", "/novels")

	issued := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	codec.now = func() time.Time { return issued }

	token, err := codec.Encode(fingerprint, keyset.Bookmark{Values: []string{"1", "2"}})
	require.NoError(t, err)

	codec.now = func() time.Time { return issued.Add(71 * time.Hour) }
	_, err = codec.Decode(fingerprint, token)
	require.NoError(t, err)

	codec.now = func() time.Time { return issued.Add(73 * time.Hour) }
	_, err = codec.Decode(fingerprint, token)
	assert.ErrorIs(t, err, ErrInvalidPageToken)
}

func TestResponseTokens(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t, time.Hour)

	t.Run("middle page issues both", func(t *testing.T) {
		t.Parallel()

		paging := keyset.Paging{
			HasPrevious:      true,
			HasNext:          true,
			BookmarkPrevious: &keyset.Bookmark{Values: []string{"3", "30"}, Reverse: true},
			BookmarkNext:     &keyset.Bookmark{Values: []string{"4", "40"}},
		}

		prev, next, err := codec.ResponseTokens("{}", "/novels", paging)
		require.NoError(t, err)
		assert.NotEmpty(t, prev)
		assert.NotEmpty(t, next)

		fingerprint := Fingerprint("{}", "/novels")
		seek, err := codec.Decode(fingerprint, prev)
		require.NoError(t, err)
		require.NotNil(t, seek.Bookmark)
		assert.True(t, seek.Bookmark.Reverse)

		seek, err = codec.Decode(fingerprint, next)
		require.NoError(t, err)
		require.NotNil(t, seek.Bookmark)
		assert.False(t, seek.Bookmark.Reverse)
	})

	t.Run("boundary pages omit tokens", func(t *testing.T) {
		t.Parallel()

		prev, next, err := codec.ResponseTokens("{}", "/novels", keyset.Paging{})
		require.NoError(t, err)
		assert.Empty(t, prev)
		assert.Empty(t, next)
	})
}

func TestFingerprintIsStable(t *testing.T) {
	t.Parallel()

	first := Fingerprint(`{"language":"en"}`, "/novels")
	second := Fingerprint(`{"language":"en"}`, "/novels")
	assert.Equal(t, first, second)

	assert.NotEqual(t, first, Fingerprint(`{"language":"ko"}`, "/novels"))
	assert.NotEqual(t, first, Fingerprint(`{"language":"en"}`, "/novels/1/volumes"))
}
