package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ringside/boxclub-api/internal/service"
	appErrors "github.com/ringside/boxclub-api/pkg/errors"
	"github.com/ringside/boxclub-api/pkg/response"
)

// ClassHandler exposes class template and calendar endpoints.
type ClassHandler struct {
	classes *service.ClassService
	roster  *service.RosterService
}

// NewClassHandler constructs ClassHandler.
func NewClassHandler(classes *service.ClassService, roster *service.RosterService) *ClassHandler {
	return &ClassHandler{classes: classes, roster: roster}
}

// Create stores a class template.
func (h *ClassHandler) Create(c *gin.Context) {
	var req service.CreateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	class, err := h.classes.Create(c.Request.Context(), actorFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, class)
}

// Get returns one class template.
func (h *ClassHandler) Get(c *gin.Context) {
	class, err := h.classes.Get(c.Request.Context(), actorFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, class, nil)
}

// List returns a gym's class templates.
func (h *ClassHandler) List(c *gin.Context) {
	classes, err := h.classes.ListByGym(c.Request.Context(), actorFromContext(c), c.Query("gym_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, classes, nil)
}

// Delete removes a class template.
func (h *ClassHandler) Delete(c *gin.Context) {
	if err := h.classes.Delete(c.Request.Context(), actorFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Calendar materializes class sessions in a date window.
func (h *ClassHandler) Calendar(c *gin.Context) {
	req := service.CalendarRequest{
		GymID:   c.Query("gym_id"),
		ClassID: c.Query("class_id"),
		From:    c.Query("from"),
		To:      c.Query("to"),
	}
	occurrences, err := h.classes.Calendar(c.Request.Context(), actorFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, occurrences, nil)
}

// Enroll adds a boxer to the class roster.
func (h *ClassHandler) Enroll(c *gin.Context) {
	var req struct {
		BoxerID string `json:"boxer_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.roster.Enroll(c.Request.Context(), actorFromContext(c), service.EnrollRequest{
		ClassID: c.Param("id"),
		BoxerID: req.BoxerID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	if result.Created {
		response.Created(c, result)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Unenroll removes a boxer from the class roster.
func (h *ClassHandler) Unenroll(c *gin.Context) {
	err := h.roster.Unenroll(c.Request.Context(), actorFromContext(c), service.EnrollRequest{
		ClassID: c.Param("id"),
		BoxerID: c.Param("boxerId"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Roster returns the class roster.
func (h *ClassHandler) Roster(c *gin.Context) {
	entries, err := h.roster.Roster(c.Request.Context(), actorFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}
