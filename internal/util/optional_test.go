package util_test

import (
	"encoding/json"
	"testing"

	"socialite/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionalJSON(t *testing.T) {
	type payload struct {
		Name util.Optional[string] `json:"name"`
	}

	t.Run("absent_field_stays_unset", func(t *testing.T) {
		var p payload
		require.NoError(t, json.Unmarshal([]byte(`{}`), &p))
		assert.False(t, p.Name.IsSet)
	})

	t.Run("null_stays_unset", func(t *testing.T) {
		var p payload
		require.NoError(t, json.Unmarshal([]byte(`{"name":null}`), &p))
		assert.False(t, p.Name.IsSet)
	})

	t.Run("value_is_set", func(t *testing.T) {
		var p payload
		require.NoError(t, json.Unmarshal([]byte(`{"name":"alice"}`), &p))
		assert.True(t, p.Name.IsSet)
		assert.Equal(t, "alice", p.Name.Val)
	})

	t.Run("unset_marshals_to_null", func(t *testing.T) {
		out, err := json.Marshal(payload{})
		require.NoError(t, err)
		assert.JSONEq(t, `{"name":null}`, string(out))
	})
}

func TestOptionalSQL(t *testing.T) {
	t.Run("unset_is_null", func(t *testing.T) {
		v, err := util.None[string]().Value()
		require.NoError(t, err)
		assert.Nil(t, v)
	})

	t.Run("set_passes_value", func(t *testing.T) {
		v, err := util.Some("hello").Value()
		require.NoError(t, err)
		assert.Equal(t, "hello", v)
	})

	t.Run("scan_null", func(t *testing.T) {
		var o util.Optional[string]
		require.NoError(t, o.Scan(nil))
		assert.False(t, o.IsSet)
	})

	t.Run("scan_value", func(t *testing.T) {
		var o util.Optional[string]
		require.NoError(t, o.Scan("hello"))
		assert.True(t, o.IsSet)
		assert.Equal(t, "hello", o.Val)
	})
}

func TestUnwrapOr(t *testing.T) {
	assert.Equal(t, "fallback", util.None[string]().UnwrapOr("fallback"))
	assert.Equal(t, "set", util.Some("set").UnwrapOr("fallback"))
}
