package service

import (
	"testing"
	"time"

	"github.com/Freeeeeet/signbridge/internal/model"
	"github.com/Freeeeeet/signbridge/internal/timerange"
	"go.uber.org/zap"
)

// Четверг 15.10.2026, следующий понедельник 19.10.2026
var (
	testNow    = time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	nextMonday = time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
)

func at(day time.Time, hour, minute int) time.Time {
	return timerange.MustClock(hour, minute).On(day)
}

func mustClock(s string) timerange.Clock {
	c, err := timerange.ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

type testEnv struct {
	db           *memDB
	notifier     *recordingNotifier
	validator    *BookingValidator
	availability *AvailabilityService
	matching     *MatchingService
	appointments *AppointmentService
	interpreters *InterpreterService
	users        *UserService

	deaf        *model.User
	interpreter *model.User
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := zap.NewNop()
	db := newMemDB()
	db.now = testNow

	validator := NewBookingValidator(fakeAvailability{db}, fakeAppointments{db}, time.UTC, logger)
	notifier := &recordingNotifier{}

	appointments := NewAppointmentService(
		fakeAppointments{db},
		fakeRequests{db},
		fakeRatings{db},
		fakeUsers{db},
		validator,
		LifecycleConfig{RequestTTL: 24 * time.Hour, ReviewWindow: 5 * 24 * time.Hour},
		logger,
	).WithNotifier(notifier)
	appointments.now = func() time.Time { return db.now }

	matching := NewMatchingService(fakeInterpreters{db}, validator, 5, logger)
	matching.now = func() time.Time { return db.now }

	env := &testEnv{
		db:           db,
		notifier:     notifier,
		validator:    validator,
		availability: NewAvailabilityService(fakeAvailability{db}, fakeUsers{db}, logger),
		matching:     matching,
		appointments: appointments,
		interpreters: NewInterpreterService(fakeInterpreters{db}, fakeUsers{db}, logger),
		users:        NewUserService(fakeUsers{db}, logger),
	}
	env.deaf = db.addUser(model.UserRoleDeaf)
	env.interpreter = db.addUser(model.UserRoleInterpreter)
	return env
}

// mondayShift рабочий день 09:00-17:00 по понедельникам
func (e *testEnv) mondayShift(interpreterID int64) {
	e.db.setSlot(interpreterID, timerange.Monday, timerange.MustClock(9, 0), timerange.MustClock(17, 0))
}

func (e *testEnv) approved(interpreterID int64, start, end time.Time) *model.Appointment {
	id := interpreterID
	return e.db.addAppointment(model.Appointment{
		DeafUserID:    e.deaf.ID,
		InterpreterID: &id,
		StartTime:     start,
		EndTime:       end,
		Status:        model.AppointmentStatusApproved,
	})
}
