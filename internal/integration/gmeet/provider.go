package gmeet

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/Freeeeeet/signbridge/internal/service"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

type insertFunc func(ctx context.Context, calendarID string, event *calendar.Event) (*calendar.Event, error)

// Provider создаёт события в Google Calendar с конференцией Google Meet
type Provider struct {
	insert     insertFunc
	calendarID string
	logger     *zap.Logger
}

// NewProvider авторизуется сервисным аккаунтом из credentialsFile
func NewProvider(ctx context.Context, credentialsFile, calendarID string, logger *zap.Logger) (*Provider, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read google credentials: %w", err)
	}

	creds, err := google.CredentialsFromJSON(ctx, data, calendar.CalendarEventsScope)
	if err != nil {
		return nil, fmt.Errorf("parse google credentials: %w", err)
	}

	svc, err := calendar.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}

	logger.Info("Google Meet provider configured", zap.String("calendar_id", calendarID))

	return &Provider{
		insert: func(ctx context.Context, calendarID string, event *calendar.Event) (*calendar.Event, error) {
			return svc.Events.Insert(calendarID, event).
				ConferenceDataVersion(1).
				SendUpdates("all").
				Context(ctx).
				Do()
		},
		calendarID: calendarID,
		logger:     logger,
	}, nil
}

// CreateMeeting создаёт событие и возвращает ссылку на Meet
func (p *Provider) CreateMeeting(ctx context.Context, req service.MeetingRequest) (string, error) {
	created, err := p.insert(ctx, p.calendarID, buildEvent(req))
	if err != nil {
		return "", fmt.Errorf("insert calendar event: %w", err)
	}

	link := meetLink(created)
	if link == "" {
		return "", errors.New("calendar event has no meet link")
	}

	p.logger.Info("Meeting created",
		zap.String("event_id", created.Id),
		zap.String("title", req.Title),
	)
	return link, nil
}

func buildEvent(req service.MeetingRequest) *calendar.Event {
	attendees := make([]*calendar.EventAttendee, 0, len(req.Attendees))
	for _, email := range req.Attendees {
		attendees = append(attendees, &calendar.EventAttendee{Email: email})
	}

	return &calendar.Event{
		Summary:   req.Title,
		Start:     &calendar.EventDateTime{DateTime: req.Start.Format(time.RFC3339)},
		End:       &calendar.EventDateTime{DateTime: req.End.Format(time.RFC3339)},
		Attendees: attendees,
		ConferenceData: &calendar.ConferenceData{
			CreateRequest: &calendar.CreateConferenceRequest{
				RequestId:             uuid.NewString(),
				ConferenceSolutionKey: &calendar.ConferenceSolutionKey{Type: "hangoutsMeet"},
			},
		},
	}
}

func meetLink(event *calendar.Event) string {
	if event == nil {
		return ""
	}
	if event.HangoutLink != "" {
		return event.HangoutLink
	}
	if event.ConferenceData != nil {
		for _, ep := range event.ConferenceData.EntryPoints {
			if ep.EntryPointType == "video" {
				return ep.Uri
			}
		}
	}
	return ""
}

// Disabled провайдер без интеграции, встреча остаётся без ссылки
type Disabled struct{}

func (Disabled) CreateMeeting(context.Context, service.MeetingRequest) (string, error) {
	return "", nil
}
