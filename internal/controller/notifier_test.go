package controller

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Freeeeeet/signbridge/internal/model"
	"github.com/Freeeeeet/signbridge/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSender struct {
	sent []*bot.SendMessageParams
	err  error
}

func (f *fakeSender) SendMessage(_ context.Context, params *bot.SendMessageParams) (*models.Message, error) {
	f.sent = append(f.sent, params)
	if f.err != nil {
		return nil, f.err
	}
	return &models.Message{}, nil
}

type fakeUsers map[int64]*model.User

func (f fakeUsers) GetByID(_ context.Context, id int64) (*model.User, error) {
	return f[id], nil
}

func tgID(v int64) *int64 { return &v }

func newNotifierFixture() (*TelegramNotifier, *fakeSender) {
	users := fakeUsers{
		1: {ID: 1, TelegramID: tgID(1001)},
		2: {ID: 2, TelegramID: tgID(2002)},
		3: {ID: 3},
	}
	sender := &fakeSender{}
	return NewTelegramNotifier(sender, users, time.UTC, zap.NewNop()), sender
}

func sampleEvent(t service.EventType) service.Event {
	start := time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)
	return service.Event{
		Type:          t,
		AppointmentID: 5,
		RequestID:     9,
		DeafUserID:    1,
		InterpreterID: 2,
		Start:         start,
		End:           start.Add(time.Hour),
	}
}

func TestTelegramNotifier_RequestCreatedGoesToInterpreter(t *testing.T) {
	n, sender := newNotifierFixture()

	require.NoError(t, n.Notify(context.Background(), sampleEvent(service.EventRequestCreated)))

	require.Len(t, sender.sent, 1)
	assert.Equal(t, int64(2002), sender.sent[0].ChatID)
	assert.Contains(t, sender.sent[0].Text, "19.10.2026 10:00-11:00")
	assert.NotNil(t, sender.sent[0].ReplyMarkup)
}

func TestTelegramNotifier_AcceptedGoesToDeafUser(t *testing.T) {
	n, sender := newNotifierFixture()

	require.NoError(t, n.Notify(context.Background(), sampleEvent(service.EventRequestAccepted)))

	require.Len(t, sender.sent, 1)
	assert.Equal(t, int64(1001), sender.sent[0].ChatID)
}

func TestTelegramNotifier_CancelledSkipsActor(t *testing.T) {
	n, sender := newNotifierFixture()
	e := sampleEvent(service.EventAppointmentCancelled)
	e.ActorID = 1

	require.NoError(t, n.Notify(context.Background(), e))

	require.Len(t, sender.sent, 1)
	assert.Equal(t, int64(2002), sender.sent[0].ChatID)
}

func TestTelegramNotifier_SkipsUsersWithoutTelegram(t *testing.T) {
	n, sender := newNotifierFixture()
	e := sampleEvent(service.EventRequestAccepted)
	e.DeafUserID = 3

	require.NoError(t, n.Notify(context.Background(), e))
	assert.Empty(t, sender.sent)

	e.DeafUserID = 42
	require.NoError(t, n.Notify(context.Background(), e))
	assert.Empty(t, sender.sent)
}

func TestTelegramNotifier_SendError(t *testing.T) {
	n, sender := newNotifierFixture()
	sender.err = errors.New("chat not found")

	err := n.Notify(context.Background(), sampleEvent(service.EventRequestRejected))
	assert.ErrorContains(t, err, "chat not found")
}

func TestTelegramNotifier_UnknownEventIgnored(t *testing.T) {
	n, sender := newNotifierFixture()

	require.NoError(t, n.Notify(context.Background(), sampleEvent("something.else")))
	assert.Empty(t, sender.sent)
}
