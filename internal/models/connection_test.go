package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruthyTable(t *testing.T) {
	truthy := []any{true, 1, int64(2), uint(3), 0.5, "x", []string{}, map[string]any{}}
	for _, v := range truthy {
		assert.True(t, Truthy(v), "expected %#v to be truthy", v)
	}

	falsy := []any{nil, false, 0, int64(0), uint(0), 0.0, float32(0), ""}
	for _, v := range falsy {
		assert.False(t, Truthy(v), "expected %#v to be falsy", v)
	}
}

func TestNewConnectionNormalisesActive(t *testing.T) {
	cases := map[string]struct {
		input any
		want  bool
	}{
		"bool true":    {true, true},
		"bool false":   {false, false},
		"nil":          {nil, false},
		"zero":         {0, false},
		"one":          {1, true},
		"empty string": {"", false},
		"string":       {"yes", true},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			conn := NewConnection("ibkr", "broker", tc.input, nil, nil)
			assert.Equal(t, tc.want, conn.Active)
		})
	}
}

func TestNewConnectionDefaultsExtraToAbsent(t *testing.T) {
	conn := NewConnection("ibkr", "broker", true, nil, nil)
	require.Nil(t, conn.Extra)

	// Absent, not an empty mapping: the wire shape omits the field entirely.
	data, err := json.Marshal(conn)
	require.NoError(t, err)
	require.NotContains(t, string(data), `"extra"`)
}

func TestConnectionFromRecordFixedPolicies(t *testing.T) {
	conn := ConnectionFromRecord(map[string]any{
		"name":   "ibkr",
		"type":   "broker",
		"active": true,
		"model":  "growth",
		"extra":  map[string]any{"tag": "x"},
	})

	assert.Equal(t, "ibkr", conn.Name)
	assert.Equal(t, "broker", conn.Type)
	require.NotNil(t, conn.Model)
	assert.Equal(t, "growth", *conn.Model)

	// The record's own active value is ignored and extra is always dropped.
	assert.False(t, conn.Active)
	assert.Nil(t, conn.Extra)
}

func TestConnectionFromRecordToleratesMissingKeys(t *testing.T) {
	conn := ConnectionFromRecord(map[string]any{"name": "ibkr", "type": "broker"})

	assert.Equal(t, "ibkr", conn.Name)
	assert.Nil(t, conn.Model)
	assert.False(t, conn.Active)

	empty := ConnectionFromRecord(map[string]any{})
	assert.Equal(t, Connection{}, empty)
}

func TestConnectionFromRecordIgnoresWrongTypes(t *testing.T) {
	conn := ConnectionFromRecord(map[string]any{
		"name":  42,
		"type":  "broker",
		"model": nil,
	})

	assert.Equal(t, "", conn.Name)
	assert.Equal(t, "broker", conn.Type)
	assert.Nil(t, conn.Model)
}

func TestIdenticalInputsProduceEqualDescriptors(t *testing.T) {
	model := "growth"
	first := NewConnection("ibkr", "broker", 1, &model, map[string]any{"tag": "x"})
	second := NewConnection("ibkr", "broker", true, &model, map[string]any{"tag": "x"})

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.JSONEq(t, string(a), string(b))
}

func TestTypedRoundTripThroughWireShape(t *testing.T) {
	model := "growth"
	original := NewConnection("ibkr", "broker", true, &model, map[string]any{"region": "us"})

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded Connection
	require.NoError(t, json.Unmarshal(data, &decoded))

	rebuilt := NewConnection(decoded.Name, decoded.Type, decoded.Active, decoded.Model, decoded.Extra)
	assert.Equal(t, original.Name, rebuilt.Name)
	assert.Equal(t, original.Type, rebuilt.Type)
	assert.Equal(t, original.Active, rebuilt.Active)
	assert.Equal(t, *original.Model, *rebuilt.Model)
	assert.Equal(t, original.Extra, rebuilt.Extra)
}

func TestWireShapeEncodesAbsentModelAsNull(t *testing.T) {
	conn := NewConnection("ibkr", "broker", false, nil, nil)

	data, err := json.Marshal(conn)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"ibkr","type":"broker","active":false,"model":null}`, string(data))
}
