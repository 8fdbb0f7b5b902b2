package iproxy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePlanMessage(t *testing.T) {
	plan, expires, err := parsePlanMessage("BigDaddy Pro active till 01.01.2025")
	require.NoError(t, err)
	assert.Equal(t, "BigDaddy Pro", plan)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), expires)
}

func TestParsePlanMessageMissingMarker(t *testing.T) {
	_, _, err := parsePlanMessage("BigDaddy Pro")
	assert.Error(t, err)
}

func TestParsePlanMessageMalformedDate(t *testing.T) {
	_, _, err := parsePlanMessage("BigDaddy Pro active till someday")
	assert.Error(t, err)
}

func TestParseNameLabel(t *testing.T) {
	tests := []struct {
		label   string
		name    string
		expires time.Time
	}{
		{
			label:   "Office phone - 31/12/2024",
			name:    "Office phone",
			expires: time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
		},
		{
			label: "Office phone",
			name:  "Office phone",
		},
		{
			// The date part is stripped even when it does not parse.
			label: "Office phone - soon",
			name:  "Office phone",
		},
		{
			label:   "Two - dashes - 01/02/2026",
			name:    "Two - dashes",
			expires: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tc := range tests {
		name, expires := parseNameLabel(tc.label)
		assert.Equal(t, tc.name, name, tc.label)
		assert.Equal(t, tc.expires, expires, tc.label)
	}
}
