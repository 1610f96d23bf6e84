package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/Freeeeeet/signbridge/internal/model"
	"github.com/Freeeeeet/signbridge/internal/service"
	"github.com/gin-gonic/gin"
)

type bookBody struct {
	InterpreterID int64     `json:"interpreter_id"` // 0 = встреча без переводчика
	Start         time.Time `json:"start" binding:"required"`
	End           time.Time `json:"end" binding:"required"`
	HospitalName  *string   `json:"hospital_name"`
	Note          *string   `json:"note"`
}

type requestBody struct {
	InterpreterID int64   `json:"interpreter_id" binding:"required"`
	Note          *string `json:"note"`
}

type respondBody struct {
	Accept *bool `json:"accept" binding:"required"`
}

type ratingBody struct {
	Score   int    `json:"score" binding:"required"`
	Comment string `json:"comment"`
}

// POST /api/appointments
func (h *Handler) Book(c *gin.Context) {
	var body bookBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.badRequest(c, "body", err)
		return
	}
	ctx := c.Request.Context()

	if body.InterpreterID == 0 {
		appt, err := h.appointments.CreateAppointment(ctx, service.AppointmentInput{
			DeafUserID:   currentUser(c),
			Start:        body.Start,
			End:          body.End,
			HospitalName: body.HospitalName,
			Note:         body.Note,
		})
		if err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"appointment": appt})
		return
	}

	appt, req, err := h.appointments.Book(ctx, service.BookInput{
		DeafUserID:    currentUser(c),
		InterpreterID: body.InterpreterID,
		Start:         body.Start,
		End:           body.End,
		HospitalName:  body.HospitalName,
		Note:          body.Note,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"appointment": appt, "request": req})
}

// POST /api/appointments/:id/requests
func (h *Handler) CreateRequest(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var body requestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.badRequest(c, "body", err)
		return
	}

	req, err := h.appointments.CreateRequest(c.Request.Context(), currentUser(c), id, body.InterpreterID, body.Note)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, req)
}

// POST /api/requests/:id/respond
func (h *Handler) Respond(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var body respondBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.badRequest(c, "body", err)
		return
	}

	appt, err := h.appointments.Respond(c.Request.Context(), id, currentUser(c), *body.Accept)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, appt)
}

// GET /api/requests
func (h *Handler) PendingRequests(c *gin.Context) {
	reqs, err := h.appointments.PendingRequests(c.Request.Context(), currentUser(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	if reqs == nil {
		reqs = []*model.Request{}
	}
	c.JSON(http.StatusOK, reqs)
}

// POST /api/appointments/:id/cancel
func (h *Handler) Cancel(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	appt, err := h.appointments.Cancel(c.Request.Context(), id, currentUser(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, appt)
}

// GET /api/appointments/:id
func (h *Handler) GetAppointment(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	appt, err := h.appointments.Get(c.Request.Context(), id, currentUser(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, appt)
}

// GET /api/appointments?from=YYYY-MM-DD&to=YYYY-MM-DD
// Для переводчика диапазон по умолчанию неделя назад и четыре вперёд.
func (h *Handler) ListAppointments(c *gin.Context) {
	ctx := c.Request.Context()
	userID := currentUser(c)

	user, err := h.users.GetByID(ctx, userID)
	if err != nil {
		h.fail(c, err)
		return
	}
	if user == nil {
		h.fail(c, service.ErrNotFound)
		return
	}

	var appts []*model.Appointment
	if user.IsInterpreter() {
		today := time.Now().In(h.loc)
		from, ok := h.dateQuery(c, "from", today.AddDate(0, 0, -7))
		if !ok {
			return
		}
		to, ok := h.dateQuery(c, "to", today.AddDate(0, 0, 28))
		if !ok {
			return
		}
		appts, err = h.appointments.ListForInterpreter(ctx, userID, from, to)
	} else {
		appts, err = h.appointments.ListForDeafUser(ctx, userID)
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	if appts == nil {
		appts = []*model.Appointment{}
	}
	c.JSON(http.StatusOK, appts)
}

// GET /api/appointments/reviewable
func (h *Handler) ListReviewable(c *gin.Context) {
	appts, err := h.appointments.ListReviewable(c.Request.Context(), currentUser(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	if appts == nil {
		appts = []*model.Appointment{}
	}
	c.JSON(http.StatusOK, appts)
}

// POST /api/appointments/:id/rating
func (h *Handler) Rate(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var body ratingBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.badRequest(c, "body", err)
		return
	}

	rating, err := h.appointments.Rate(c.Request.Context(), id, currentUser(c), body.Score, body.Comment)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, rating)
}

func (h *Handler) dateQuery(c *gin.Context, name string, def time.Time) (time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	t, err := time.ParseInLocation(time.DateOnly, raw, h.loc)
	if err != nil {
		h.badRequest(c, name, errors.New("expected YYYY-MM-DD"))
		return time.Time{}, false
	}
	return t, true
}
