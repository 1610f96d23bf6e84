package handlers

import (
	"testing"
	"time"

	"github.com/Freeeeeet/signbridge/internal/controller/keyboard"
	"github.com/Freeeeeet/signbridge/internal/model"
	"github.com/Freeeeeet/signbridge/internal/timerange"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAvailabilityInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
		days  []int
		start timerange.Clock
		end   timerange.Clock
	}{
		{"list", "1,3,5 09:00-17:00", []int{1, 3, 5}, timerange.MustClock(9, 0), timerange.MustClock(17, 0)},
		{"range", "1-5 08:30-12:00", []int{1, 2, 3, 4, 5}, timerange.MustClock(8, 30), timerange.MustClock(12, 0)},
		{"duplicates and order", "7,1,1 10:00-11:00", []int{1, 7}, timerange.MustClock(10, 0), timerange.MustClock(11, 0)},
		{"extra spaces", "  6   13:00-18:45 ", []int{6}, timerange.MustClock(13, 0), timerange.MustClock(18, 45)},
		{"until midnight", "5 18:00-24:00", []int{5}, timerange.MustClock(18, 0), timerange.EndOfDay},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAvailabilityInput(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.days, got.Days)
			assert.Equal(t, tt.start, got.Start)
			assert.Equal(t, tt.end, got.End)
		})
	}
}

func TestParseAvailabilityInput_Errors(t *testing.T) {
	for _, input := range []string{
		"",
		"1,3,5",
		"0 09:00-17:00",
		"8 09:00-17:00",
		"5-1 09:00-17:00",
		"mon 09:00-17:00",
		"1 0900-1700",
		"1 17:00-09:00",
		"1 09:00-09:00",
		"1 25:00-26:00",
		"1 24:00-24:00",
		", 09:00-17:00",
	} {
		_, err := ParseAvailabilityInput(input)
		assert.Error(t, err, input)
	}
}

func TestWeekKeyboard(t *testing.T) {
	slots := []*model.AvailabilitySlot{
		{DayID: 1}, {DayID: 2}, {DayID: 3}, {DayID: 4}, {DayID: 5},
	}

	kb := WeekKeyboard(slots, 2)
	require.Len(t, kb.InlineKeyboard, 3)
	assert.Len(t, kb.InlineKeyboard[0], 4)
	assert.Equal(t, keyboard.Data(keyboard.DeleteDay, 5), kb.InlineKeyboard[1][0].CallbackData)

	nav := kb.InlineKeyboard[2]
	assert.Equal(t, keyboard.Data(keyboard.ShowWeek, 1), nav[0].CallbackData)
	assert.Equal(t, keyboard.Data(keyboard.ShowWeek, 0), nav[1].CallbackData)
	assert.Equal(t, keyboard.Data(keyboard.ShowWeek, 3), nav[2].CallbackData)

	assert.Len(t, WeekKeyboard(nil, 0).InlineKeyboard, 1)
}

func TestFormatRequest(t *testing.T) {
	sydney := time.FixedZone("AEDT", 11*60*60)
	hospital := "St Vincent's"
	note := "Кардиолог, второй этаж"

	req := &model.Request{
		ID:   30,
		Note: &note,
		Appointment: &model.Appointment{
			StartTime:    time.Date(2026, 10, 18, 23, 0, 0, 0, time.UTC),
			EndTime:      time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC),
			HospitalName: &hospital,
		},
	}

	text := FormatRequest(req, sydney)
	assert.Contains(t, text, "Запрос #30")
	assert.Contains(t, text, "Понедельник, 19.10.2026 10:00-11:00")
	assert.Contains(t, text, hospital)
	assert.Contains(t, text, note)
	assert.Contains(t, text, "AEDT")
}

func TestRespondResult(t *testing.T) {
	url := "https://meet.google.com/abc"
	appt := &model.Appointment{
		StartTime:  time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC),
		EndTime:    time.Date(2026, 10, 19, 11, 0, 0, 0, time.UTC),
		MeetingURL: &url,
	}

	assert.Contains(t, RespondResult(appt, true, time.UTC), url)
	assert.Equal(t, "🚫 Запрос отклонён.", RespondResult(appt, false, time.UTC))
}

func TestClampOffset(t *testing.T) {
	assert.Equal(t, int64(3), clampOffset(3))
	assert.Equal(t, int64(weekOffsetLimit), clampOffset(1000))
	assert.Equal(t, int64(-weekOffsetLimit), clampOffset(-1000))
}
