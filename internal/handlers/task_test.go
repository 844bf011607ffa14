package handlers

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/schedulr/apiserver/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrictBool(t *testing.T) {
	tests := []struct {
		raw  string
		want *bool
	}{
		{"true", boolPtr(true)},
		{" false ", boolPtr(false)},
		{`"true"`, nil},
		{"1", nil},
		{"null", nil},
		{"", nil},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, strictBool(json.RawMessage(tt.raw)))
		})
	}
}

func TestParseDueDate(t *testing.T) {
	t.Run("missing null and blank clear the date", func(t *testing.T) {
		for _, raw := range []string{"", "null", `""`, `"  "`} {
			got, err := parseDueDate(json.RawMessage(raw))
			require.NoError(t, err, raw)
			assert.Nil(t, got, raw)
		}
	})

	t.Run("accepted layouts", func(t *testing.T) {
		for raw, want := range map[string]time.Time{
			`"2026-05-01T09:30:00.000Z"`:  time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC),
			`"2026-05-01T18:30:00+09:00"`: time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC),
			`"2026-05-01T09:30"`:          time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC),
			`"2026-05-01"`:                time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
			`1767225600000`:               time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			`1767225600000.9`:             time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		} {
			got, err := parseDueDate(json.RawMessage(raw))
			require.NoError(t, err, raw)
			require.NotNil(t, got, raw)
			assert.True(t, want.Equal(*got), raw)
			assert.Equal(t, time.UTC, got.Location(), raw)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		for _, raw := range []string{`"next tuesday"`, `true`, `{}`, `[2026]`} {
			_, err := parseDueDate(json.RawMessage(raw))

			var validationErr *services.ValidationError
			require.ErrorAs(t, err, &validationErr, raw)
			assert.Equal(t, "Invalid due date", validationErr.Message)
		}
	})
}

func TestUpdateTaskRequest_EpochMillisDueDate(t *testing.T) {
	var req UpdateTaskRequest
	require.NoError(t, json.Unmarshal([]byte(`{"dueDate":1767225600000}`), &req))

	patch, err := req.toPatch()

	require.NoError(t, err)
	require.NotNil(t, patch.DueDate)
	assert.True(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Equal(*patch.DueDate))
}

func TestUpdateTaskRequest_ToPatch(t *testing.T) {
	var req UpdateTaskRequest
	require.NoError(t, json.Unmarshal([]byte(`{"text":"","completed":"true","priority":"High"}`), &req))

	patch, err := req.toPatch()

	require.NoError(t, err)
	require.NotNil(t, patch.Text)
	assert.Equal(t, "", *patch.Text)
	assert.Nil(t, patch.Completed)
	assert.Nil(t, patch.DueDate)
	require.NotNil(t, patch.Priority)
	assert.EqualValues(t, "High", *patch.Priority)
}

func boolPtr(v bool) *bool { return &v }
