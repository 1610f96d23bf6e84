package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/Freeeeeet/signbridge/internal/model"
	"github.com/Freeeeeet/signbridge/internal/repository"
	"github.com/Freeeeeet/signbridge/internal/repository/base"
	"github.com/Freeeeeet/signbridge/internal/timerange"
)

var errStoreDown = errors.New("connection refused")

// memDB общее in-memory состояние для фейковых хранилищ
type memDB struct {
	mu       sync.Mutex
	nextID   int64
	users    map[int64]*model.User
	slots    map[int64]map[int]*model.AvailabilitySlot
	appts    map[int64]*model.Appointment
	reqs     map[int64]*model.Request
	ratings  []*model.Rating
	profiles map[int64]*model.InterpreterProfile
	fail     error
	now      time.Time
}

func newMemDB() *memDB {
	return &memDB{
		users:    map[int64]*model.User{},
		slots:    map[int64]map[int]*model.AvailabilitySlot{},
		appts:    map[int64]*model.Appointment{},
		reqs:     map[int64]*model.Request{},
		profiles: map[int64]*model.InterpreterProfile{},
	}
}

func (db *memDB) id() int64 {
	db.nextID++
	return db.nextID
}

func (db *memDB) addUser(role model.UserRole) *model.User {
	db.mu.Lock()
	defer db.mu.Unlock()
	u := &model.User{ID: db.id(), Role: role, FirstName: string(role)}
	db.users[u.ID] = u
	return u
}

func (db *memDB) setSlot(interpreterID int64, day int, start, end timerange.Clock) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.slots[interpreterID] == nil {
		db.slots[interpreterID] = map[int]*model.AvailabilitySlot{}
	}
	db.slots[interpreterID][day] = &model.AvailabilitySlot{
		ID: db.id(), InterpreterID: interpreterID, DayID: day, StartTime: start, EndTime: end,
	}
}

func (db *memDB) addAppointment(a model.Appointment) *model.Appointment {
	db.mu.Lock()
	defer db.mu.Unlock()
	a.ID = db.id()
	db.appts[a.ID] = &a
	cp := a
	return &cp
}

func (db *memDB) occupies(a *model.Appointment, interpreterID int64) bool {
	switch a.Status {
	case model.AppointmentStatusApproved:
		return a.InterpreterID != nil && *a.InterpreterID == interpreterID
	case model.AppointmentStatusPending:
		for _, r := range db.reqs {
			if r.AppointmentID == a.ID && r.InterpreterID == interpreterID && r.IsPending() {
				return true
			}
		}
	}
	return false
}

func (db *memDB) overlaps(interpreterID int64, start, end time.Time, excludeID int64) bool {
	for _, a := range db.appts {
		if a.ID != excludeID && a.StartTime.Before(end) && a.EndTime.After(start) && db.occupies(a, interpreterID) {
			return true
		}
	}
	return false
}

func (db *memDB) insertRequest(req *model.Request) error {
	for _, r := range db.reqs {
		if r.AppointmentID == req.AppointmentID && r.InterpreterID == req.InterpreterID {
			return base.ErrDuplicate
		}
	}
	req.ID = db.id()
	req.CreatedAt = db.now
	cp := *req
	db.reqs[req.ID] = &cp
	return nil
}

func copyAppt(a *model.Appointment) *model.Appointment {
	if a == nil {
		return nil
	}
	cp := *a
	return &cp
}

// users

type fakeUsers struct{ db *memDB }

func (f fakeUsers) Create(_ context.Context, user *model.User) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if f.db.fail != nil {
		return f.db.fail
	}
	user.ID = f.db.id()
	cp := *user
	f.db.users[user.ID] = &cp
	return nil
}

func (f fakeUsers) GetByTelegramID(_ context.Context, telegramID int64) (*model.User, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if f.db.fail != nil {
		return nil, f.db.fail
	}
	for _, u := range f.db.users {
		if u.TelegramID != nil && *u.TelegramID == telegramID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f fakeUsers) GetByID(_ context.Context, id int64) (*model.User, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if f.db.fail != nil {
		return nil, f.db.fail
	}
	u, ok := f.db.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (f fakeUsers) Update(_ context.Context, user *model.User) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if f.db.fail != nil {
		return f.db.fail
	}
	cp := *user
	f.db.users[user.ID] = &cp
	return nil
}

// availability

type fakeAvailability struct{ db *memDB }

func (f fakeAvailability) GetByInterpreterID(_ context.Context, interpreterID int64) ([]*model.AvailabilitySlot, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if f.db.fail != nil {
		return nil, f.db.fail
	}
	var slots []*model.AvailabilitySlot
	for _, s := range f.db.slots[interpreterID] {
		cp := *s
		slots = append(slots, &cp)
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].DayID < slots[j].DayID })
	return slots, nil
}

func (f fakeAvailability) GetDay(_ context.Context, interpreterID int64, dayID int) (*model.AvailabilitySlot, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if f.db.fail != nil {
		return nil, f.db.fail
	}
	s, ok := f.db.slots[interpreterID][dayID]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (f fakeAvailability) UpsertDays(_ context.Context, interpreterID int64, dayIDs []int, start, end timerange.Clock) ([]*model.AvailabilitySlot, error) {
	f.db.mu.Lock()
	if f.db.fail != nil {
		f.db.mu.Unlock()
		return nil, f.db.fail
	}
	f.db.mu.Unlock()

	var out []*model.AvailabilitySlot
	for _, d := range dayIDs {
		f.db.setSlot(interpreterID, d, start, end)
		s, _ := f.GetDay(context.Background(), interpreterID, d)
		out = append(out, s)
	}
	return out, nil
}

func (f fakeAvailability) DeleteDay(_ context.Context, interpreterID int64, dayID int) (bool, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if f.db.fail != nil {
		return false, f.db.fail
	}
	if _, ok := f.db.slots[interpreterID][dayID]; !ok {
		return false, nil
	}
	delete(f.db.slots[interpreterID], dayID)
	return true, nil
}

// appointments

type fakeAppointments struct{ db *memDB }

func (f fakeAppointments) Create(_ context.Context, appt *model.Appointment) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if f.db.fail != nil {
		return f.db.fail
	}
	appt.ID = f.db.id()
	f.db.appts[appt.ID] = copyAppt(appt)
	return nil
}

func (f fakeAppointments) CreateWithRequest(_ context.Context, appt *model.Appointment, req *model.Request) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if f.db.fail != nil {
		return f.db.fail
	}
	if f.db.overlaps(req.InterpreterID, appt.StartTime, appt.EndTime, 0) {
		return repository.ErrOverlap
	}
	appt.ID = f.db.id()
	f.db.appts[appt.ID] = copyAppt(appt)
	req.AppointmentID = appt.ID
	return f.db.insertRequest(req)
}

func (f fakeAppointments) AddRequest(_ context.Context, appt *model.Appointment, req *model.Request) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if f.db.fail != nil {
		return f.db.fail
	}
	if f.db.overlaps(req.InterpreterID, appt.StartTime, appt.EndTime, appt.ID) {
		return repository.ErrOverlap
	}
	req.AppointmentID = appt.ID
	return f.db.insertRequest(req)
}

func (f fakeAppointments) GetByID(_ context.Context, id int64) (*model.Appointment, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if f.db.fail != nil {
		return nil, f.db.fail
	}
	return copyAppt(f.db.appts[id]), nil
}

func (f fakeAppointments) filter(keep func(a *model.Appointment) bool) []*model.Appointment {
	var out []*model.Appointment
	for _, a := range f.db.appts {
		if keep(a) {
			out = append(out, copyAppt(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out
}

func (f fakeAppointments) ListOccupying(_ context.Context, interpreterID int64, from, to time.Time) ([]*model.Appointment, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if f.db.fail != nil {
		return nil, f.db.fail
	}
	return f.filter(func(a *model.Appointment) bool {
		return a.StartTime.Before(to) && a.EndTime.After(from) && f.db.occupies(a, interpreterID)
	}), nil
}

func (f fakeAppointments) ListByDeafUser(_ context.Context, deafUserID int64) ([]*model.Appointment, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	return f.filter(func(a *model.Appointment) bool { return a.DeafUserID == deafUserID }), nil
}

func (f fakeAppointments) ListByInterpreter(_ context.Context, interpreterID int64, from, to time.Time) ([]*model.Appointment, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	return f.filter(func(a *model.Appointment) bool {
		return a.InterpreterID != nil && *a.InterpreterID == interpreterID && a.StartTime.Before(to) && a.EndTime.After(from)
	}), nil
}

func (f fakeAppointments) ListReviewable(_ context.Context, deafUserID int64, since, now time.Time) ([]*model.Appointment, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	rated := map[int64]bool{}
	for _, r := range f.db.ratings {
		if r.RaterID == deafUserID {
			rated[r.AppointmentID] = true
		}
	}
	return f.filter(func(a *model.Appointment) bool {
		return a.DeafUserID == deafUserID &&
			a.InterpreterID != nil &&
			(a.Status == model.AppointmentStatusApproved || a.Status == model.AppointmentStatusCompleted) &&
			!a.EndTime.Before(since) && !a.EndTime.After(now) &&
			!rated[a.ID]
	}), nil
}

func (f fakeAppointments) answer(requestID int64, accept bool, at time.Time) (*model.Appointment, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if f.db.fail != nil {
		return nil, f.db.fail
	}
	req, ok := f.db.reqs[requestID]
	if !ok || !req.IsPending() {
		return nil, nil
	}
	appt := f.db.appts[req.AppointmentID]
	if appt == nil || appt.Status != model.AppointmentStatusPending {
		return nil, nil
	}
	if accept && !appt.StartTime.After(at) {
		return nil, nil
	}

	now := f.db.now
	req.IsAccepted = &accept
	req.RespondedAt = &now
	if accept {
		appt.Status = model.AppointmentStatusApproved
		id := req.InterpreterID
		appt.InterpreterID = &id
	} else {
		appt.Status = model.AppointmentStatusRejected
	}
	for _, r := range f.db.reqs {
		if r.AppointmentID == appt.ID && r.ID != req.ID && r.IsPending() {
			r.IsExpired = true
		}
	}
	return copyAppt(appt), nil
}

func (f fakeAppointments) AcceptRequest(_ context.Context, requestID int64, now time.Time) (*model.Appointment, error) {
	return f.answer(requestID, true, now)
}

func (f fakeAppointments) RejectRequest(_ context.Context, requestID int64) (*model.Appointment, error) {
	return f.answer(requestID, false, time.Time{})
}

func (f fakeAppointments) Cancel(_ context.Context, id int64) (*model.Appointment, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	appt := f.db.appts[id]
	if appt == nil || !appt.IsActive() {
		return nil, nil
	}
	appt.Status = model.AppointmentStatusCancelled
	for _, r := range f.db.reqs {
		if r.AppointmentID == id && r.IsPending() {
			r.IsExpired = true
		}
	}
	return copyAppt(appt), nil
}

func (f fakeAppointments) SetMeeting(_ context.Context, id int64, meetingURL, chatRoomID *string) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	appt := f.db.appts[id]
	if appt == nil {
		return errors.New("appointment not found")
	}
	appt.MeetingURL = meetingURL
	appt.ChatRoomID = chatRoomID
	return nil
}

func (f fakeAppointments) CompleteEnded(_ context.Context, now time.Time) ([]*model.Appointment, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []*model.Appointment
	for _, a := range f.db.appts {
		if a.Status == model.AppointmentStatusApproved && !a.EndTime.After(now) {
			a.Status = model.AppointmentStatusCompleted
			out = append(out, copyAppt(a))
		}
	}
	return out, nil
}

func (f fakeAppointments) RejectWithoutLiveRequests(_ context.Context, ids []int64) ([]*model.Appointment, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []*model.Appointment
	for _, id := range ids {
		a := f.db.appts[id]
		if a == nil || a.Status != model.AppointmentStatusPending {
			continue
		}
		live := false
		for _, r := range f.db.reqs {
			if r.AppointmentID == id && r.IsPending() {
				live = true
			}
		}
		if !live {
			a.Status = model.AppointmentStatusRejected
			out = append(out, copyAppt(a))
		}
	}
	return out, nil
}

// requests

type fakeRequests struct{ db *memDB }

func (f fakeRequests) GetByID(_ context.Context, id int64) (*model.Request, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if f.db.fail != nil {
		return nil, f.db.fail
	}
	r, ok := f.db.reqs[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (f fakeRequests) ListByAppointment(_ context.Context, appointmentID int64) ([]*model.Request, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []*model.Request
	for _, r := range f.db.reqs {
		if r.AppointmentID == appointmentID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f fakeRequests) ListPendingByInterpreter(_ context.Context, interpreterID int64) ([]*model.Request, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []*model.Request
	for _, r := range f.db.reqs {
		a := f.db.appts[r.AppointmentID]
		if r.InterpreterID == interpreterID && r.IsPending() && a != nil && a.Status == model.AppointmentStatusPending {
			cp := *r
			cp.Appointment = copyAppt(a)
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f fakeRequests) ExpireStale(_ context.Context, cutoff, now time.Time) ([]*model.Request, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if f.db.fail != nil {
		return nil, f.db.fail
	}
	var out []*model.Request
	for _, r := range f.db.reqs {
		a := f.db.appts[r.AppointmentID]
		if r.IsPending() && (r.CreatedAt.Before(cutoff) || !a.StartTime.After(now)) {
			r.IsExpired = true
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ratings

type fakeRatings struct{ db *memDB }

func (f fakeRatings) Create(_ context.Context, rating *model.Rating) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, r := range f.db.ratings {
		if r.AppointmentID == rating.AppointmentID && r.RaterID == rating.RaterID {
			return base.ErrDuplicate
		}
	}
	rating.ID = f.db.id()
	cp := *rating
	f.db.ratings = append(f.db.ratings, &cp)
	return nil
}

func (f fakeRatings) HasRated(_ context.Context, appointmentID, raterID int64) (bool, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, r := range f.db.ratings {
		if r.AppointmentID == appointmentID && r.RaterID == raterID {
			return true, nil
		}
	}
	return false, nil
}

// interpreters

type fakeInterpreters struct{ db *memDB }

func (f fakeInterpreters) FindCandidates(_ context.Context, c model.SearchCriteria) ([]*model.InterpreterProfile, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if f.db.fail != nil {
		return nil, f.db.fail
	}
	var out []*model.InterpreterProfile
	for _, p := range f.db.profiles {
		if p.HasSpecialisation(c.SpecialisationID) && p.HasLanguage(c.LanguageID) && p.Location == c.Location {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f fakeInterpreters) GetProfile(_ context.Context, interpreterID int64) (*model.InterpreterProfile, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	p, ok := f.db.profiles[interpreterID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (f fakeInterpreters) SetQualifications(_ context.Context, interpreterID int64, specialisations, languages []int64) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	p, ok := f.db.profiles[interpreterID]
	if !ok {
		p = &model.InterpreterProfile{User: *f.db.users[interpreterID]}
		f.db.profiles[interpreterID] = p
	}
	p.Specialisations = specialisations
	p.Languages = languages
	return nil
}

func (f fakeInterpreters) ListSpecialisations(context.Context) ([]model.Specialisation, error) {
	return []model.Specialisation{{ID: 1, Name: "Medical"}}, nil
}

func (f fakeInterpreters) ListLanguages(context.Context) ([]model.Language, error) {
	return []model.Language{{ID: 1, Name: "Auslan"}}, nil
}

// recordingNotifier запоминает доставленные события
type recordingNotifier struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (n *recordingNotifier) Notify(_ context.Context, e Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
	return n.err
}

func (n *recordingNotifier) types() []EventType {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]EventType, len(n.events))
	for i, e := range n.events {
		out[i] = e.Type
	}
	return out
}

type stubMeetings struct {
	url string
	err error
}

func (s stubMeetings) CreateMeeting(context.Context, MeetingRequest) (string, error) {
	return s.url, s.err
}

type stubRooms struct{ room string }

func (s stubRooms) ProvisionRoom(context.Context, int64, int64) (string, error) {
	return s.room, nil
}
