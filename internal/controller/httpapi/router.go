package httpapi

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter собирает маршруты API
func NewRouter(h *Handler, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.Use(RequireUser())
	{
		api.GET("/interpreters/:id/availability", h.GetAvailability)
		api.GET("/interpreters/:id/calendar", h.WeekCalendar)
		api.GET("/interpreters/:id/open", h.OpenOn)
		api.GET("/interpreters/:id", h.GetProfile)

		me := api.Group("/interpreters/me")
		me.PUT("/availability", h.ApplyAvailability)
		me.DELETE("/availability/:day", h.DeleteAvailability)
		me.PUT("/qualifications", h.SetQualifications)

		api.GET("/specialisations", h.ListSpecialisations)
		api.GET("/languages", h.ListLanguages)
		api.POST("/search", h.Search)

		api.POST("/appointments", h.Book)
		api.GET("/appointments", h.ListAppointments)
		api.GET("/appointments/reviewable", h.ListReviewable)
		api.GET("/appointments/:id", h.GetAppointment)
		api.POST("/appointments/:id/requests", h.CreateRequest)
		api.POST("/appointments/:id/cancel", h.Cancel)
		api.POST("/appointments/:id/rating", h.Rate)

		api.GET("/requests", h.PendingRequests)
		api.POST("/requests/:id/respond", h.Respond)
	}

	return r
}
