package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Freeeeeet/signbridge/internal/model"
	"github.com/Freeeeeet/signbridge/internal/timerange"
	"github.com/gin-gonic/gin"
)

type availabilityBody struct {
	Days  []int           `json:"days" binding:"required,min=1"`
	Start timerange.Clock `json:"start"`
	End   timerange.Clock `json:"end"`
}

type qualificationsBody struct {
	Specialisations []int64 `json:"specialisations" binding:"required,min=1"`
	Languages       []int64 `json:"languages" binding:"required,min=1"`
}

func (h *Handler) pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		h.badRequest(c, name, errors.New("must be a positive integer"))
		return 0, false
	}
	return id, true
}

// GET /api/interpreters/:id
func (h *Handler) GetProfile(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	profile, err := h.interpreters.GetProfile(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// GET /api/interpreters/:id/availability
func (h *Handler) GetAvailability(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	slots, err := h.availability.GetAvailability(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	if slots == nil {
		slots = []*model.AvailabilitySlot{}
	}
	c.JSON(http.StatusOK, slots)
}

// GET /api/interpreters/:id/calendar?week=YYYY-MM-DD
// GET /api/interpreters/:id/calendar?from=YYYY-MM-DD&to=YYYY-MM-DD (обе даты включительно)
func (h *Handler) WeekCalendar(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	if c.Query("from") != "" || c.Query("to") != "" {
		h.rangeCalendar(c, id)
		return
	}

	date := time.Now().In(h.loc)
	if week := c.Query("week"); week != "" {
		parsed, err := time.ParseInLocation(time.DateOnly, week, h.loc)
		if err != nil {
			h.badRequest(c, "week", errors.New("expected YYYY-MM-DD"))
			return
		}
		date = parsed
	}

	events, err := h.availability.WeekEvents(c.Request.Context(), id, date)
	if err != nil {
		h.fail(c, err)
		return
	}
	if events == nil {
		events = []model.CalendarEvent{}
	}
	c.JSON(http.StatusOK, gin.H{
		"week_start": timerange.WeekStart(date).Format(time.DateOnly),
		"events":     events,
	})
}

func (h *Handler) rangeCalendar(c *gin.Context, id int64) {
	from, ok := h.requiredDate(c, "from")
	if !ok {
		return
	}
	to, ok := h.requiredDate(c, "to")
	if !ok {
		return
	}

	events, err := h.availability.RangeEvents(c.Request.Context(), id, from, to.AddDate(0, 0, 1))
	if err != nil {
		h.fail(c, err)
		return
	}
	if events == nil {
		events = []model.CalendarEvent{}
	}
	c.JSON(http.StatusOK, gin.H{
		"from":   from.Format(time.DateOnly),
		"to":     to.Format(time.DateOnly),
		"events": events,
	})
}

// GET /api/interpreters/:id/open?date=YYYY-MM-DD
func (h *Handler) OpenOn(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	date, ok := h.requiredDate(c, "date")
	if !ok {
		return
	}

	slot, open, err := h.availability.IsWeekdayOpen(c.Request.Context(), id, date)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"date": date.Format(time.DateOnly),
		"open": open,
		"slot": slot,
	})
}

func (h *Handler) requiredDate(c *gin.Context, name string) (time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		h.badRequest(c, name, errors.New("is required"))
		return time.Time{}, false
	}
	parsed, err := time.ParseInLocation(time.DateOnly, raw, h.loc)
	if err != nil {
		h.badRequest(c, name, errors.New("expected YYYY-MM-DD"))
		return time.Time{}, false
	}
	return parsed, true
}

// PUT /api/interpreters/me/availability
func (h *Handler) ApplyAvailability(c *gin.Context) {
	var body availabilityBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.badRequest(c, "body", err)
		return
	}

	slots, err := h.availability.ApplyAvailability(c.Request.Context(), currentUser(c), body.Days, body.Start, body.End)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, slots)
}

// DELETE /api/interpreters/me/availability/:day
func (h *Handler) DeleteAvailability(c *gin.Context) {
	day, err := strconv.Atoi(c.Param("day"))
	if err != nil {
		h.badRequest(c, "day", errors.New("must be a number from 1 to 7"))
		return
	}
	if err := h.availability.DeleteAvailability(c.Request.Context(), currentUser(c), day); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// PUT /api/interpreters/me/qualifications
func (h *Handler) SetQualifications(c *gin.Context) {
	var body qualificationsBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.badRequest(c, "body", err)
		return
	}

	userID := currentUser(c)
	if err := h.interpreters.SetQualifications(c.Request.Context(), userID, body.Specialisations, body.Languages); err != nil {
		h.fail(c, err)
		return
	}

	profile, err := h.interpreters.GetProfile(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// POST /api/search
func (h *Handler) Search(c *gin.Context) {
	var criteria model.SearchCriteria
	if err := c.ShouldBindJSON(&criteria); err != nil {
		h.badRequest(c, "body", err)
		return
	}

	profiles, err := h.matching.Search(c.Request.Context(), criteria)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"interpreters": profiles})
}

// GET /api/specialisations
func (h *Handler) ListSpecialisations(c *gin.Context) {
	items, err := h.interpreters.ListSpecialisations(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	if items == nil {
		items = []model.Specialisation{}
	}
	c.JSON(http.StatusOK, items)
}

// GET /api/languages
func (h *Handler) ListLanguages(c *gin.Context) {
	items, err := h.interpreters.ListLanguages(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	if items == nil {
		items = []model.Language{}
	}
	c.JSON(http.StatusOK, items)
}
