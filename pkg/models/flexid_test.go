package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexIDUnmarshal(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected FlexID
	}{
		{"string id", `"42"`, "42"},
		{"number id", `42`, "42"},
		{"float id from sloppy serializer", `42.0`, "42"},
		{"negative number", `-1`, "-1"},
		{"null", `null`, ""},
		{"empty string", `""`, ""},
		{"alphanumeric string", `"rec-123"`, "rec-123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var id FlexID
			require.NoError(t, json.Unmarshal([]byte(tt.input), &id))
			assert.Equal(t, tt.expected, id)
		})
	}
}

func TestFlexIDNumberAndStringCompareEqual(t *testing.T) {
	var fromNumber, fromString FlexID
	require.NoError(t, json.Unmarshal([]byte(`123`), &fromNumber))
	require.NoError(t, json.Unmarshal([]byte(`"123"`), &fromString))
	assert.Equal(t, fromString, fromNumber)
}

func TestFlexIDMarshalAlwaysString(t *testing.T) {
	data, err := json.Marshal(FlexID("42"))
	require.NoError(t, err)
	assert.Equal(t, `"42"`, string(data))
}

func TestFlexIDSentinels(t *testing.T) {
	assert.True(t, FlexID("-1").IsSentinel())
	assert.True(t, FlexID("0").IsSentinel())
	assert.True(t, FlexID("").IsSentinel())
	assert.False(t, FlexID("1").IsSentinel())
	assert.False(t, FlexID("00").IsSentinel())
}

func TestFlexIDScan(t *testing.T) {
	var id FlexID
	require.NoError(t, id.Scan(int64(42)))
	assert.Equal(t, FlexID("42"), id)
	require.NoError(t, id.Scan("abc"))
	assert.Equal(t, FlexID("abc"), id)
	require.NoError(t, id.Scan([]byte("7")))
	assert.Equal(t, FlexID("7"), id)
	require.NoError(t, id.Scan(nil))
	assert.Equal(t, FlexID(""), id)
	require.Error(t, id.Scan(3.5i))
}
