package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("mat-khau-bi-mat")
	require.NoError(t, err)
	assert.NotEqual(t, "mat-khau-bi-mat", hash)

	assert.True(t, CheckPassword(hash, "mat-khau-bi-mat"))
	assert.False(t, CheckPassword(hash, "sai-mat-khau"))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-08-31")
	require.NoError(t, err)
	assert.Equal(t, 2026, d.Year())
	assert.Equal(t, time.August, d.Month())
	assert.Equal(t, 31, d.Day())

	// Full timestamps are accepted and truncated to the calendar date.
	d, err = ParseDate("2026-08-31T14:30:00+07:00")
	require.NoError(t, err)
	assert.Equal(t, 31, d.Day())
	assert.Zero(t, d.Hour())

	_, err = ParseDate("31/08/2026")
	assert.Error(t, err)
}

func TestEndOfDay(t *testing.T) {
	d := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	end := EndOfDay(d)
	assert.Equal(t, 23, end.Hour())
	assert.Equal(t, 59, end.Minute())
	assert.Equal(t, 31, end.Day())
}
