package behavior

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var at = time.Date(2026, 3, 14, 9, 26, 53, 589_000_000, time.UTC)

func TestFormatTimestamp(t *testing.T) {
	assert.Equal(t, "2026-03-14T09:26:53.589Z", FormatTimestamp(at))

	local := at.In(time.FixedZone("UTC+6", 6*60*60))
	assert.Equal(t, "2026-03-14T09:26:53.589Z", FormatTimestamp(local))
}

func TestEventWireFields(t *testing.T) {
	tests := []struct {
		name   string
		event  Event
		fields []string
	}{
		{
			name:   "uv carries only common fields",
			event:  NewUV("u1", "p", at),
			fields: []string{"behavior", "userId", "projectName", "timestamp"},
		},
		{
			name:   "pv keeps empty referrer",
			event:  NewPV("u1", "p", at, "https://example.com/", "", 1),
			fields: []string{"behavior", "userId", "projectName", "timestamp", "pageUrl", "referrer", "pv"},
		},
		{
			name:   "click",
			event:  NewClick("u1", "p", at, "BUTTON", "buy", "https://example.com/", "https://example.com/"),
			fields: []string{"behavior", "userId", "projectName", "timestamp", "element", "action", "pageUrl", "referrer"},
		},
		{
			name:   "dwell",
			event:  NewDwell("u1", "p", at, "https://example.com/", 1500),
			fields: []string{"behavior", "userId", "projectName", "timestamp", "pageUrl", "dwellTime"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := json.Marshal(tt.event)
			require.NoError(t, err)

			var decoded map[string]any
			require.NoError(t, json.Unmarshal(raw, &decoded))

			assert.Len(t, decoded, len(tt.fields))
			for _, f := range tt.fields {
				assert.Contains(t, decoded, f)
			}
			assert.Equal(t, string(tt.event.Behavior), decoded["behavior"])
		})
	}
}

func TestKindValid(t *testing.T) {
	assert.True(t, KindUV.Valid())
	assert.True(t, KindDwell.Valid())
	assert.False(t, Kind("scroll").Valid())
	assert.False(t, Kind("").Valid())
}
