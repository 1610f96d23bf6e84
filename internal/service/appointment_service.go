package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Freeeeeet/signbridge/internal/model"
	"github.com/Freeeeeet/signbridge/internal/repository"
	"github.com/Freeeeeet/signbridge/internal/repository/base"
	"go.uber.org/zap"
)

const (
	DefaultRequestTTL   = 24 * time.Hour
	DefaultReviewWindow = 5 * 24 * time.Hour
)

// LifecycleConfig сроки жизненного цикла встречи
type LifecycleConfig struct {
	RequestTTL   time.Duration // сколько запрос ждёт ответа переводчика
	ReviewWindow time.Duration // сколько после окончания встречи можно оставить оценку
}

// BookInput запись к конкретному переводчику
type BookInput struct {
	DeafUserID    int64     `json:"-"`
	InterpreterID int64     `json:"interpreter_id"`
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	HospitalName  *string   `json:"hospital_name,omitempty"`
	Note          *string   `json:"note,omitempty"`
}

// AppointmentInput встреча без переводчика
type AppointmentInput struct {
	DeafUserID   int64     `json:"-"`
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	HospitalName *string   `json:"hospital_name,omitempty"`
	Note         *string   `json:"note,omitempty"`
}

type AppointmentService struct {
	appointments AppointmentStore
	requests     RequestStore
	ratings      RatingStore
	users        UserStore
	validator    *BookingValidator
	meetings     MeetingProvider
	rooms        RoomProvisioner
	notifier     Notifier
	cfg          LifecycleConfig
	logger       *zap.Logger
	now          func() time.Time
}

func NewAppointmentService(
	appointments AppointmentStore,
	requests RequestStore,
	ratings RatingStore,
	users UserStore,
	validator *BookingValidator,
	cfg LifecycleConfig,
	logger *zap.Logger,
) *AppointmentService {
	if cfg.RequestTTL <= 0 {
		cfg.RequestTTL = DefaultRequestTTL
	}
	if cfg.ReviewWindow <= 0 {
		cfg.ReviewWindow = DefaultReviewWindow
	}
	return &AppointmentService{
		appointments: appointments,
		requests:     requests,
		ratings:      ratings,
		users:        users,
		validator:    validator,
		notifier:     noopNotifier{},
		cfg:          cfg,
		logger:       logger,
		now:          time.Now,
	}
}

// WithMeetings подключает провайдеры видеовстреч и чатов
func (s *AppointmentService) WithMeetings(meetings MeetingProvider, rooms RoomProvisioner) *AppointmentService {
	s.meetings = meetings
	s.rooms = rooms
	return s
}

// WithNotifier подключает доставку событий
func (s *AppointmentService) WithNotifier(n Notifier) *AppointmentService {
	if n != nil {
		s.notifier = n
	}
	return s
}

// Book создаёт встречу и сразу отправляет запрос переводчику.
// Вставка условная: если время уже занято, возвращается ErrDoubleBooked.
func (s *AppointmentService) Book(ctx context.Context, in BookInput) (*model.Appointment, *model.Request, error) {
	if in.InterpreterID <= 0 {
		return nil, nil, invalid("interpreter_id", "is required")
	}
	if err := s.validateWindow(in.Start, in.End); err != nil {
		return nil, nil, err
	}
	if err := s.requireRole(ctx, in.DeafUserID, model.UserRoleDeaf); err != nil {
		return nil, nil, err
	}
	if err := s.requireRole(ctx, in.InterpreterID, model.UserRoleInterpreter); err != nil {
		return nil, nil, err
	}

	verdict, err := s.validator.IsBookable(ctx, in.InterpreterID, in.Start, in.End)
	if err != nil {
		return nil, nil, err
	}
	if !verdict.Bookable {
		return nil, nil, verdict.Err()
	}

	appt := &model.Appointment{
		DeafUserID:   in.DeafUserID,
		StartTime:    in.Start,
		EndTime:      in.End,
		HospitalName: in.HospitalName,
		Status:       model.AppointmentStatusPending,
		Note:         in.Note,
	}
	req := &model.Request{
		InterpreterID: in.InterpreterID,
		Note:          in.Note,
	}

	if err := s.appointments.CreateWithRequest(ctx, appt, req); err != nil {
		return nil, nil, s.mapWriteErr("book appointment", err)
	}

	s.logger.Info("Appointment booked",
		zap.Int64("appointment_id", appt.ID),
		zap.Int64("request_id", req.ID),
		zap.Int64("deaf_user_id", appt.DeafUserID),
		zap.Int64("interpreter_id", req.InterpreterID),
		zap.Time("start", appt.StartTime),
	)

	s.notify(ctx, EventRequestCreated, appt, req, 0)
	return appt, req, nil
}

// CreateAppointment создаёт встречу без переводчика
func (s *AppointmentService) CreateAppointment(ctx context.Context, in AppointmentInput) (*model.Appointment, error) {
	if err := s.validateWindow(in.Start, in.End); err != nil {
		return nil, err
	}
	if err := s.requireRole(ctx, in.DeafUserID, model.UserRoleDeaf); err != nil {
		return nil, err
	}

	appt := &model.Appointment{
		DeafUserID:   in.DeafUserID,
		StartTime:    in.Start,
		EndTime:      in.End,
		HospitalName: in.HospitalName,
		Status:       model.AppointmentStatusPending,
		Note:         in.Note,
	}
	if err := s.appointments.Create(ctx, appt); err != nil {
		return nil, storeErr("create appointment", err)
	}

	s.logger.Info("Appointment created",
		zap.Int64("appointment_id", appt.ID),
		zap.Int64("deaf_user_id", appt.DeafUserID),
	)

	return appt, nil
}

// CreateRequest отправляет запрос переводчику по существующей ожидающей встрече
func (s *AppointmentService) CreateRequest(ctx context.Context, userID, appointmentID, interpreterID int64, note *string) (*model.Request, error) {
	appt, err := s.getAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if appt.DeafUserID != userID {
		return nil, fmt.Errorf("appointment %d: %w", appointmentID, ErrForbidden)
	}
	if appt.Status != model.AppointmentStatusPending {
		return nil, fmt.Errorf("appointment %d is %s: %w", appointmentID, appt.Status, ErrInvalidTransition)
	}
	if !appt.StartTime.After(s.now()) {
		return nil, invalid("start", "appointment has already started")
	}
	if err := s.requireRole(ctx, interpreterID, model.UserRoleInterpreter); err != nil {
		return nil, err
	}

	existing, err := s.requests.ListByAppointment(ctx, appointmentID)
	if err != nil {
		return nil, storeErr("list requests", err)
	}
	for _, r := range existing {
		if r.InterpreterID == interpreterID {
			return nil, fmt.Errorf("interpreter %d already requested: %w", interpreterID, ErrConflict)
		}
	}

	verdict, err := s.validator.IsBookable(ctx, interpreterID, appt.StartTime, appt.EndTime)
	if err != nil {
		return nil, err
	}
	if !verdict.Bookable {
		return nil, verdict.Err()
	}

	req := &model.Request{InterpreterID: interpreterID, Note: note}
	if err := s.appointments.AddRequest(ctx, appt, req); err != nil {
		return nil, s.mapWriteErr("create request", err)
	}

	s.logger.Info("Request created",
		zap.Int64("appointment_id", appt.ID),
		zap.Int64("request_id", req.ID),
		zap.Int64("interpreter_id", interpreterID),
	)

	s.notify(ctx, EventRequestCreated, appt, req, userID)
	return req, nil
}

// Respond ответ переводчика на запрос.
// При принятии встреча подтверждается, создаются видеовстреча и чат.
// Уже начавшуюся встречу принять нельзя. При отказе встреча отклоняется.
// В обоих случаях остальные запросы по встрече истекают.
func (s *AppointmentService) Respond(ctx context.Context, requestID, interpreterID int64, accept bool) (*model.Appointment, error) {
	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, storeErr("get request", err)
	}
	if req == nil {
		return nil, fmt.Errorf("request %d: %w", requestID, ErrNotFound)
	}
	if req.InterpreterID != interpreterID {
		return nil, fmt.Errorf("request %d: %w", requestID, ErrForbidden)
	}
	if !req.IsPending() {
		return nil, fmt.Errorf("request %d already answered or expired: %w", requestID, ErrInvalidTransition)
	}

	var appt *model.Appointment
	if accept {
		appt, err = s.appointments.AcceptRequest(ctx, requestID, s.now())
	} else {
		appt, err = s.appointments.RejectRequest(ctx, requestID)
	}
	if err != nil {
		return nil, storeErr("respond to request", err)
	}
	if appt == nil {
		return nil, fmt.Errorf("request %d: %w", requestID, ErrInvalidTransition)
	}

	s.logger.Info("Request answered",
		zap.Int64("request_id", requestID),
		zap.Int64("appointment_id", appt.ID),
		zap.Int64("interpreter_id", interpreterID),
		zap.Bool("accepted", accept),
	)

	if accept {
		s.provisionMeeting(ctx, appt, interpreterID)
		s.notify(ctx, EventRequestAccepted, appt, req, interpreterID)
	} else {
		s.notify(ctx, EventRequestRejected, appt, req, interpreterID)
	}

	return appt, nil
}

// ExpireStale гасит запросы без ответа дольше RequestTTL или по начавшимся встречам.
// Ожидающие встречи без живых запросов отклоняются.
func (s *AppointmentService) ExpireStale(ctx context.Context, now time.Time) (int, error) {
	expired, err := s.requests.ExpireStale(ctx, now.Add(-s.cfg.RequestTTL), now)
	if err != nil {
		return 0, storeErr("expire requests", err)
	}
	if len(expired) == 0 {
		return 0, nil
	}

	ids := make([]int64, 0, len(expired))
	seen := make(map[int64]bool, len(expired))
	for _, r := range expired {
		if !seen[r.AppointmentID] {
			seen[r.AppointmentID] = true
			ids = append(ids, r.AppointmentID)
		}
	}

	rejected, err := s.appointments.RejectWithoutLiveRequests(ctx, ids)
	if err != nil {
		return len(expired), storeErr("reject orphaned appointments", err)
	}

	byID := make(map[int64]*model.Appointment, len(rejected))
	for _, a := range rejected {
		byID[a.ID] = a
	}
	for _, r := range expired {
		appt := byID[r.AppointmentID]
		if appt == nil {
			if appt, err = s.appointments.GetByID(ctx, r.AppointmentID); err != nil || appt == nil {
				continue
			}
			byID[appt.ID] = appt
		}
		s.notify(ctx, EventRequestExpired, appt, r, 0)
	}

	s.logger.Info("Stale requests expired",
		zap.Int("requests", len(expired)),
		zap.Int("appointments_rejected", len(rejected)),
	)

	return len(expired), nil
}

// CompleteElapsed завершает подтверждённые встречи, время которых прошло
func (s *AppointmentService) CompleteElapsed(ctx context.Context, now time.Time) (int, error) {
	completed, err := s.appointments.CompleteEnded(ctx, now)
	if err != nil {
		return 0, storeErr("complete appointments", err)
	}

	for _, a := range completed {
		s.notify(ctx, EventAppointmentCompleted, a, nil, 0)
	}

	if len(completed) > 0 {
		s.logger.Info("Appointments completed", zap.Int("count", len(completed)))
	}

	return len(completed), nil
}

// Cancel отменяет встречу. Может глухой пользователь или переводчик встречи.
func (s *AppointmentService) Cancel(ctx context.Context, appointmentID, userID int64) (*model.Appointment, error) {
	appt, err := s.getAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	allowed, err := s.isParticipant(ctx, appt, userID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, fmt.Errorf("appointment %d: %w", appointmentID, ErrForbidden)
	}
	if !appt.IsActive() {
		return nil, fmt.Errorf("appointment %d is %s: %w", appointmentID, appt.Status, ErrInvalidTransition)
	}

	cancelled, err := s.appointments.Cancel(ctx, appointmentID)
	if err != nil {
		return nil, storeErr("cancel appointment", err)
	}
	if cancelled == nil {
		return nil, fmt.Errorf("appointment %d: %w", appointmentID, ErrInvalidTransition)
	}

	s.logger.Info("Appointment cancelled",
		zap.Int64("appointment_id", appointmentID),
		zap.Int64("by_user_id", userID),
	)

	s.notify(ctx, EventAppointmentCancelled, cancelled, nil, userID)
	return cancelled, nil
}

// ListReviewable встречи, которые пользователь может оценить сейчас
func (s *AppointmentService) ListReviewable(ctx context.Context, deafUserID int64) ([]*model.Appointment, error) {
	now := s.now()
	appts, err := s.appointments.ListReviewable(ctx, deafUserID, now.Add(-s.cfg.ReviewWindow), now)
	if err != nil {
		return nil, storeErr("list reviewable", err)
	}
	return appts, nil
}

// Rate сохраняет оценку переводчика за встречу
func (s *AppointmentService) Rate(ctx context.Context, appointmentID, raterID int64, score int, comment string) (*model.Rating, error) {
	if score < model.MinRatingScore || score > model.MaxRatingScore {
		return nil, invalid("score", "must be between %d and %d", model.MinRatingScore, model.MaxRatingScore)
	}

	appt, err := s.getAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if appt.DeafUserID != raterID {
		return nil, fmt.Errorf("appointment %d: %w", appointmentID, ErrForbidden)
	}
	if appt.InterpreterID == nil {
		return nil, fmt.Errorf("appointment %d has no interpreter: %w", appointmentID, ErrInvalidTransition)
	}

	now := s.now()
	reviewable := appt.Status == model.AppointmentStatusCompleted ||
		(appt.Status == model.AppointmentStatusApproved && appt.HasEnded(now))
	if !reviewable {
		return nil, fmt.Errorf("appointment %d is %s: %w", appointmentID, appt.Status, ErrInvalidTransition)
	}
	if now.Sub(appt.EndTime) > s.cfg.ReviewWindow {
		return nil, fmt.Errorf("appointment %d: %w", appointmentID, ErrReviewWindowClosed)
	}

	rating := &model.Rating{
		AppointmentID: appointmentID,
		RaterID:       raterID,
		InterpreterID: *appt.InterpreterID,
		Score:         score,
		Comment:       comment,
	}
	if err := s.ratings.Create(ctx, rating); err != nil {
		if errors.Is(err, base.ErrDuplicate) {
			return nil, fmt.Errorf("appointment %d: %w", appointmentID, ErrAlreadyRated)
		}
		return nil, storeErr("create rating", err)
	}

	s.logger.Info("Interpreter rated",
		zap.Int64("appointment_id", appointmentID),
		zap.Int64("interpreter_id", rating.InterpreterID),
		zap.Int("score", score),
	)

	return rating, nil
}

// Get возвращает встречу, если пользователь её участник
func (s *AppointmentService) Get(ctx context.Context, appointmentID, userID int64) (*model.Appointment, error) {
	appt, err := s.getAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	allowed, err := s.isParticipant(ctx, appt, userID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, fmt.Errorf("appointment %d: %w", appointmentID, ErrForbidden)
	}
	return appt, nil
}

// ListForDeafUser все встречи пользователя, новые первыми
func (s *AppointmentService) ListForDeafUser(ctx context.Context, deafUserID int64) ([]*model.Appointment, error) {
	appts, err := s.appointments.ListByDeafUser(ctx, deafUserID)
	if err != nil {
		return nil, storeErr("list appointments", err)
	}
	return appts, nil
}

// ListForInterpreter встречи переводчика в диапазоне [from, to)
func (s *AppointmentService) ListForInterpreter(ctx context.Context, interpreterID int64, from, to time.Time) ([]*model.Appointment, error) {
	appts, err := s.appointments.ListByInterpreter(ctx, interpreterID, from, to)
	if err != nil {
		return nil, storeErr("list interpreter appointments", err)
	}
	return appts, nil
}

// PendingRequests запросы, ожидающие ответа переводчика
func (s *AppointmentService) PendingRequests(ctx context.Context, interpreterID int64) ([]*model.Request, error) {
	reqs, err := s.requests.ListPendingByInterpreter(ctx, interpreterID)
	if err != nil {
		return nil, storeErr("list pending requests", err)
	}
	return reqs, nil
}

func (s *AppointmentService) validateWindow(start, end time.Time) error {
	if start.IsZero() {
		return invalid("start", "is required")
	}
	if end.IsZero() {
		return invalid("end", "is required")
	}
	if !end.After(start) {
		return invalid("end", "must be after start")
	}
	if !start.After(s.now()) {
		return invalid("start", "must be in the future")
	}
	return nil
}

func (s *AppointmentService) requireRole(ctx context.Context, userID int64, role model.UserRole) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return storeErr("get user", err)
	}
	if user == nil {
		return fmt.Errorf("user %d: %w", userID, ErrNotFound)
	}
	if user.Role != role {
		return fmt.Errorf("user %d is not %s: %w", userID, role, ErrForbidden)
	}
	return nil
}

func (s *AppointmentService) getAppointment(ctx context.Context, id int64) (*model.Appointment, error) {
	appt, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr("get appointment", err)
	}
	if appt == nil {
		return nil, fmt.Errorf("appointment %d: %w", id, ErrNotFound)
	}
	return appt, nil
}

// isParticipant глухой пользователь, закреплённый переводчик или переводчик с живым запросом
func (s *AppointmentService) isParticipant(ctx context.Context, appt *model.Appointment, userID int64) (bool, error) {
	if appt.DeafUserID == userID {
		return true, nil
	}
	if appt.InterpreterID != nil && *appt.InterpreterID == userID {
		return true, nil
	}

	reqs, err := s.requests.ListByAppointment(ctx, appt.ID)
	if err != nil {
		return false, storeErr("list requests", err)
	}
	for _, r := range reqs {
		if r.InterpreterID == userID && r.IsPending() {
			return true, nil
		}
	}
	return false, nil
}

func (s *AppointmentService) mapWriteErr(op string, err error) error {
	switch {
	case errors.Is(err, repository.ErrOverlap):
		return fmt.Errorf("%s: %w", op, ErrDoubleBooked)
	case errors.Is(err, base.ErrDuplicate):
		return fmt.Errorf("%s: %w", op, ErrConflict)
	}
	return storeErr(op, err)
}

// provisionMeeting создаёт видеовстречу и чат. Ошибки провайдеров только логируются.
func (s *AppointmentService) provisionMeeting(ctx context.Context, appt *model.Appointment, interpreterID int64) {
	if s.meetings == nil && s.rooms == nil {
		return
	}

	var meetingURL, roomID *string

	if s.meetings != nil {
		var attendees []string
		for _, id := range []int64{appt.DeafUserID, interpreterID} {
			if u, err := s.users.GetByID(ctx, id); err == nil && u != nil && u.Email != "" {
				attendees = append(attendees, u.Email)
			}
		}

		url, err := s.meetings.CreateMeeting(ctx, MeetingRequest{
			Title:     fmt.Sprintf("Interpreting session #%d", appt.ID),
			Start:     appt.StartTime,
			End:       appt.EndTime,
			Attendees: attendees,
		})
		if err != nil {
			s.logger.Warn("Failed to create meeting",
				zap.Int64("appointment_id", appt.ID),
				zap.Error(err),
			)
		} else if url != "" {
			meetingURL = &url
		}
	}

	if s.rooms != nil {
		room, err := s.rooms.ProvisionRoom(ctx, appt.DeafUserID, interpreterID)
		if err != nil {
			s.logger.Warn("Failed to provision chat room",
				zap.Int64("appointment_id", appt.ID),
				zap.Error(err),
			)
		} else {
			roomID = &room
		}
	}

	if meetingURL == nil && roomID == nil {
		return
	}

	if err := s.appointments.SetMeeting(ctx, appt.ID, meetingURL, roomID); err != nil {
		s.logger.Warn("Failed to save meeting details",
			zap.Int64("appointment_id", appt.ID),
			zap.Error(err),
		)
		return
	}
	appt.MeetingURL = meetingURL
	appt.ChatRoomID = roomID
}

func (s *AppointmentService) notify(ctx context.Context, typ EventType, appt *model.Appointment, req *model.Request, actorID int64) {
	event := Event{
		Type:          typ,
		AppointmentID: appt.ID,
		DeafUserID:    appt.DeafUserID,
		ActorID:       actorID,
		Start:         appt.StartTime,
		End:           appt.EndTime,
		OccurredAt:    s.now(),
	}
	if appt.InterpreterID != nil {
		event.InterpreterID = *appt.InterpreterID
	}
	if req != nil {
		event.RequestID = req.ID
		event.InterpreterID = req.InterpreterID
	}

	if err := s.notifier.Notify(ctx, event); err != nil {
		s.logger.Warn("Failed to deliver event",
			zap.String("type", string(typ)),
			zap.Int64("appointment_id", appt.ID),
			zap.Error(err),
		)
	}
}
