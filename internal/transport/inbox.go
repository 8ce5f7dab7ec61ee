package transport

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "go-dental-review/internal/errors"
)

func (h *Handler) listNotifications(c *gin.Context) {
	user := sessionUser(c)
	unreadOnly := c.Query("unread") == "true"

	notifications, err := h.inbox.ListForUser(c.Request.Context(), user.ID, unreadOnly)
	if err != nil {
		respondAppError(c, err)
		return
	}
	unread, err := h.inbox.UnreadCount(c.Request.Context(), user.ID)
	if err != nil {
		respondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"notifications": notifications,
		"unread_count":  unread,
	})
}

func (h *Handler) markNotificationRead(c *gin.Context) {
	if err := h.inbox.MarkRead(c.Request.Context(), c.Param("id")); err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "read"})
}

func (h *Handler) markAllNotificationsRead(c *gin.Context) {
	user := sessionUser(c)
	if err := h.inbox.MarkAllRead(c.Request.Context(), user.ID); err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "read"})
}

type bookRequest struct {
	SlotID string `json:"slot_id" binding:"required"`
	Note   string `json:"note,omitempty"`
}

func (h *Handler) availableDates(c *gin.Context) {
	dates, err := h.scheduler.AvailableDates(c.Request.Context())
	if err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"dates": dates})
}

func (h *Handler) availableSlots(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		respondAppError(c, apperrors.NewInvalidInputError("date query parameter is required", nil))
		return
	}

	slots, err := h.scheduler.AvailableSlots(c.Request.Context(), date)
	if err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"slots": slots})
}

func (h *Handler) listAppointments(c *gin.Context) {
	user := sessionUser(c)
	appointments, err := h.scheduler.ListForUser(c.Request.Context(), user.ID)
	if err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"appointments": appointments})
}

func (h *Handler) bookAppointment(c *gin.Context) {
	user := sessionUser(c)

	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request format", err)
		return
	}

	appt, err := h.scheduler.Book(c.Request.Context(), req.SlotID, user.ID, req.Note)
	if err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, appt)
}

func (h *Handler) cancelAppointment(c *gin.Context) {
	user := sessionUser(c)
	appt, err := h.scheduler.Cancel(c.Request.Context(), c.Param("id"), user.ID)
	if err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, appt)
}
