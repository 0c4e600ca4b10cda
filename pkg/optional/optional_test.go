// Copyright (c) 2026 WebNDB. All rights reserved.
// Author: dev@webndb.app

package optional_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webndb/webndb/pkg/optional"
)

type patchPayload struct {
	Description optional.Field[string] `json:"description"`
	Order       optional.Field[int]    `json:"order"`
}

func TestFieldUnmarshal(t *testing.T) {
	t.Parallel()

	t.Run("absent key", func(t *testing.T) {
		t.Parallel()

		var payload patchPayload
		require.NoError(t, json.Unmarshal([]byte(`{}`), &payload))

		assert.False(t, payload.Description.IsPresent())
		assert.False(t, payload.Description.IsNull())
		_, ok := payload.Description.Value()
		assert.False(t, ok)
	})

	t.Run("explicit null", func(t *testing.T) {
		t.Parallel()

		var payload patchPayload
		require.NoError(t, json.Unmarshal([]byte(`{"description":null}`), &payload))

		assert.True(t, payload.Description.IsPresent())
		assert.True(t, payload.Description.IsNull())
		_, ok := payload.Description.Value()
		assert.False(t, ok)
	})

	t.Run("value", func(t *testing.T) {
		t.Parallel()

		var payload patchPayload
		require.NoError(t, json.Unmarshal([]byte(`{"description":"dark fantasy","order":3}`), &payload))

		description, ok := payload.Description.Value()
		require.True(t, ok)
		assert.Equal(t, "dark fantasy", description)

		order, ok := payload.Order.Value()
		require.True(t, ok)
		assert.Equal(t, 3, order)
	})

	t.Run("type mismatch errors", func(t *testing.T) {
		t.Parallel()

		var payload patchPayload
		require.Error(t, json.Unmarshal([]byte(`{"order":"three"}`), &payload))
	})
}

func TestFieldMarshal(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(optional.Present("hello"))
	require.NoError(t, err)
	assert.JSONEq(t, `"hello"`, string(data))

	data, err = json.Marshal(optional.Null[string]())
	require.NoError(t, err)
	assert.JSONEq(t, `null`, string(data))
}
