package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPluralizePoints(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{1, "поинт"},
		{21, "поинт"},
		{101, "поинт"},
		{2, "поинта"},
		{3, "поинта"},
		{4, "поинта"},
		{22, "поинта"},
		{0, "поинтов"},
		{5, "поинтов"},
		{11, "поинтов"},
		{12, "поинтов"},
		{14, "поинтов"},
		{111, "поинтов"},
		{100, "поинтов"},
		{-1, "поинт"},
		{-5, "поинтов"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, PluralizePoints(tt.n), "n=%d", tt.n)
	}
}

func TestFormatPoints(t *testing.T) {
	assert.Equal(t, "3 поинта", FormatPoints(3))
	assert.Equal(t, "1 поинт", FormatPoints(1))
	assert.Equal(t, "10 поинтов", FormatPoints(10))
}

func TestMidnight(t *testing.T) {
	loc := time.FixedZone("MSK", 3*60*60)
	ts := time.Date(2026, 8, 30, 18, 45, 12, 999, loc)

	got := Midnight(ts)

	assert.Equal(t, time.Date(2026, 8, 30, 0, 0, 0, 0, loc), got)
}

func TestSameDay(t *testing.T) {
	utc := time.UTC
	morning := time.Date(2026, 8, 30, 9, 0, 0, 0, utc)
	evening := time.Date(2026, 8, 30, 23, 59, 0, 0, utc)
	nextDay := time.Date(2026, 8, 31, 0, 0, 1, 0, utc)

	assert.True(t, SameDay(morning, evening))
	assert.False(t, SameDay(morning, nextDay))

	// Второй аргумент приводится к поясу первого
	msk := time.FixedZone("MSK", 3*60*60)
	lateUTC := time.Date(2026, 8, 30, 22, 30, 0, 0, utc) // в Москве уже 31-е
	mskDay := time.Date(2026, 8, 31, 10, 0, 0, 0, msk)
	assert.True(t, SameDay(mskDay, lateUTC))
}
