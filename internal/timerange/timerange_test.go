package timerange

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayKey(t *testing.T) {
	// 2026-10-12 понедельник
	monday := time.Date(2026, time.October, 12, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 7; i++ {
		day := monday.AddDate(0, 0, i)
		key := DayKey(day)
		assert.Equal(t, i+1, key, day.Weekday().String())
		assert.NotZero(t, key)
	}

	sunday := time.Date(2026, time.October, 18, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, Sunday, DayKey(sunday))
}

func TestRangesOverlap(t *testing.T) {
	at := func(h, m int) time.Time {
		return time.Date(2026, time.October, 12, h, m, 0, 0, time.UTC)
	}

	tests := []struct {
		name                   string
		aStart, aEnd, bStart, bEnd time.Time
		want                   bool
	}{
		{"inside", at(10, 0), at(11, 0), at(9, 0), at(17, 0), true},
		{"partial", at(10, 0), at(11, 0), at(10, 30), at(11, 30), true},
		{"touching end", at(10, 0), at(11, 0), at(11, 0), at(12, 0), false},
		{"touching start", at(11, 0), at(12, 0), at(10, 0), at(11, 0), false},
		{"disjoint", at(8, 0), at(9, 0), at(10, 0), at(11, 0), false},
		{"zero length inside", at(10, 30), at(10, 30), at(10, 0), at(11, 0), false},
		{"both zero length", at(10, 0), at(10, 0), at(10, 0), at(10, 0), false},
		{"inverted", at(11, 0), at(10, 0), at(10, 0), at(11, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RangesOverlap(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd))
			assert.Equal(t, tt.want, RangesOverlap(tt.bStart, tt.bEnd, tt.aStart, tt.aEnd))
		})
	}
}

func TestDurationMinutes(t *testing.T) {
	start := time.Date(2026, time.October, 12, 9, 0, 0, 0, time.UTC)

	minutes, ok := DurationMinutes(start, start.Add(90*time.Minute))
	require.True(t, ok)
	assert.Equal(t, 90, minutes)

	minutes, ok = DurationMinutes(start, start)
	assert.False(t, ok)
	assert.Zero(t, minutes)

	minutes, ok = DurationMinutes(start, start.Add(-time.Minute))
	assert.False(t, ok)
	assert.Zero(t, minutes)
}

func TestWeekStart(t *testing.T) {
	want := time.Date(2026, time.October, 12, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 7; i++ {
		day := want.AddDate(0, 0, i).Add(15 * time.Hour)
		assert.True(t, want.Equal(WeekStart(day)), day.String())
	}
}

func TestParseClock(t *testing.T) {
	c, err := ParseClock("09:30")
	require.NoError(t, err)
	assert.Equal(t, Clock(570), c)
	assert.Equal(t, "09:30", c.String())

	end, err := ParseClock("24:00")
	require.NoError(t, err)
	assert.Equal(t, EndOfDay, end)
	assert.Equal(t, "24:00", end.String())
	assert.False(t, end.Valid())
	assert.True(t, end.ValidEnd())

	for _, bad := range []string{"", "9", "24:01", "25:00", "12:60", "ab:cd", "12:5"} {
		_, err := ParseClock(bad)
		assert.Error(t, err, bad)
	}
}

func TestClockOnAndOf(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*60*60)
	date := time.Date(2026, time.October, 14, 0, 0, 0, 0, loc)

	ts := MustClock(17, 15).On(date)
	assert.Equal(t, 17, ts.Hour())
	assert.Equal(t, 15, ts.Minute())
	assert.Equal(t, loc, ts.Location())
	assert.Equal(t, MustClock(17, 15), ClockOf(ts))
}

func TestClockJSON(t *testing.T) {
	var payload struct {
		Start Clock `json:"start"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"start":"08:05"}`), &payload))
	assert.Equal(t, MustClock(8, 5), payload.Start)

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"start":"08:05"}`, string(out))
}

func TestClockEndOfDayOn(t *testing.T) {
	date := time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC)
	got := EndOfDay.On(date)
	assert.True(t, got.Equal(date.AddDate(0, 0, 1)), got.String())
}
