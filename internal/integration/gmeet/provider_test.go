package gmeet

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Freeeeeet/signbridge/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/api/calendar/v3"
)

func TestCreateMeeting(t *testing.T) {
	var sent *calendar.Event
	var sentCalendar string

	p := &Provider{
		calendarID: "clinic@example.com",
		logger:     zap.NewNop(),
		insert: func(_ context.Context, calendarID string, event *calendar.Event) (*calendar.Event, error) {
			sent, sentCalendar = event, calendarID
			out := *event
			out.Id = "evt1"
			out.HangoutLink = "https://meet.google.com/abc-defg-hij"
			return &out, nil
		},
	}

	start := time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)
	url, err := p.CreateMeeting(context.Background(), service.MeetingRequest{
		Title:     "Interpreting session #1",
		Start:     start,
		End:       start.Add(time.Hour),
		Attendees: []string{"deaf@example.com", "interp@example.com"},
	})
	require.NoError(t, err)
	assert.Equal(t, "https://meet.google.com/abc-defg-hij", url)

	require.NotNil(t, sent)
	assert.Equal(t, "clinic@example.com", sentCalendar)
	assert.Equal(t, "2026-10-19T10:00:00Z", sent.Start.DateTime)
	assert.Equal(t, "2026-10-19T11:00:00Z", sent.End.DateTime)
	assert.Len(t, sent.Attendees, 2)
	require.NotNil(t, sent.ConferenceData)
	assert.Equal(t, "hangoutsMeet", sent.ConferenceData.CreateRequest.ConferenceSolutionKey.Type)
	assert.NotEmpty(t, sent.ConferenceData.CreateRequest.RequestId)
}

func TestCreateMeeting_Errors(t *testing.T) {
	failing := &Provider{logger: zap.NewNop(), insert: func(context.Context, string, *calendar.Event) (*calendar.Event, error) {
		return nil, errors.New("quota exceeded")
	}}
	_, err := failing.CreateMeeting(context.Background(), service.MeetingRequest{})
	assert.ErrorContains(t, err, "quota exceeded")

	noLink := &Provider{logger: zap.NewNop(), insert: func(_ context.Context, _ string, e *calendar.Event) (*calendar.Event, error) {
		return e, nil
	}}
	_, err = noLink.CreateMeeting(context.Background(), service.MeetingRequest{})
	assert.ErrorContains(t, err, "no meet link")
}

func TestMeetLink_FallsBackToEntryPoint(t *testing.T) {
	event := &calendar.Event{ConferenceData: &calendar.ConferenceData{EntryPoints: []*calendar.EntryPoint{
		{EntryPointType: "phone", Uri: "tel:+61-2-0000"},
		{EntryPointType: "video", Uri: "https://meet.google.com/xyz"},
	}}}
	assert.Equal(t, "https://meet.google.com/xyz", meetLink(event))
	assert.Empty(t, meetLink(nil))
}

func TestNewProvider_MissingFile(t *testing.T) {
	_, err := NewProvider(context.Background(), "/nonexistent/creds.json", "primary", zap.NewNop())
	assert.ErrorContains(t, err, "read google credentials")
}

func TestDisabled(t *testing.T) {
	url, err := Disabled{}.CreateMeeting(context.Background(), service.MeetingRequest{})
	assert.NoError(t, err)
	assert.Empty(t, url)
}
