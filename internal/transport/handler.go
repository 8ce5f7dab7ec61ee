// Package transport exposes the review workflow over HTTP.
package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"go-dental-review/internal/appointment"
	"go-dental-review/internal/config"
	apperrors "go-dental-review/internal/errors"
	"go-dental-review/internal/identity"
	"go-dental-review/internal/logger"
	"go-dental-review/internal/notify"
	"go-dental-review/internal/service"
	"go-dental-review/internal/storage"
	"go-dental-review/internal/workflow"
	"go-dental-review/pkg/models"
)

// Handler bundles the collaborators the HTTP routes orchestrate.
type Handler struct {
	pipeline  *service.Pipeline
	workflow  *workflow.Workflow
	identity  *identity.Service
	inbox     *notify.Inbox
	scheduler *appointment.Scheduler
	fetcher   storage.PayloadFetcher
	cfg       *config.Config
}

// NewHandler builds the gin router with all routes registered.
func NewHandler(
	pipeline *service.Pipeline,
	wf *workflow.Workflow,
	id *identity.Service,
	inbox *notify.Inbox,
	scheduler *appointment.Scheduler,
	fetcher storage.PayloadFetcher,
	cfg *config.Config,
) http.Handler {
	h := &Handler{
		pipeline:  pipeline,
		workflow:  wf,
		identity:  id,
		inbox:     inbox,
		scheduler: scheduler,
		fetcher:   fetcher,
		cfg:       cfg,
	}

	r := gin.Default()
	r.Use(
		requestSizeLimiter(cfg.MaxRequestBodySize),
		errorHandler(),
	)

	r.GET("/health", healthCheck)

	r.POST("/auth/register", h.register)
	r.POST("/auth/login", h.login)

	authed := r.Group("/", h.requireSession())
	{
		authed.POST("/auth/logout", h.logout)
		authed.GET("/auth/me", h.currentUser)
		authed.PATCH("/auth/me", h.updateProfile)

		authed.POST("/images", h.uploadImage)
		authed.GET("/images", h.listImages)
		authed.GET("/images/:id", h.getImage)
		authed.DELETE("/images/:id", h.deleteImage)

		authed.GET("/analyses/:id", h.getAnalysis)
		authed.GET("/trend", h.getTrend)

		authed.GET("/reviews/pending", h.listPendingReviews)
		authed.POST("/analyses/:id/review", h.submitReview)

		authed.GET("/notifications", h.listNotifications)
		authed.POST("/notifications/:id/read", h.markNotificationRead)
		authed.POST("/notifications/read-all", h.markAllNotificationsRead)

		authed.GET("/appointments/dates", h.availableDates)
		authed.GET("/appointments/slots", h.availableSlots)
		authed.GET("/appointments", h.listAppointments)
		authed.POST("/appointments", h.bookAppointment)
		authed.POST("/appointments/:id/cancel", h.cancelAppointment)
	}

	return r
}

// ErrorResponse is the JSON shape of every error reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "available",
		"version": "1.0.0",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// Middleware and helper functions
func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last()
			respondError(c, determineStatusCode(err), "request processing failed", err)
		}
	}
}

func determineStatusCode(err error) int {
	if appErr, ok := err.(*apperrors.AppError); ok {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, code int, message string, err error) {
	logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"message":     message,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	}).Error("Request failed")

	c.AbortWithStatusJSON(code, ErrorResponse{
		Error:   http.StatusText(code),
		Message: fmt.Sprintf("%s: %v", message, err),
	})
}

// respondAppError replies with the status code carried by the error
// itself, falling back to 500 for unexpected error values.
func respondAppError(c *gin.Context, err error) {
	code := apperrors.GetStatusCode(err)
	msg := err.Error()
	if appErr, ok := err.(*apperrors.AppError); ok {
		msg = appErr.Message
	}

	logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
	}).Error("Request failed")

	c.AbortWithStatusJSON(code, ErrorResponse{
		Error:   http.StatusText(code),
		Message: msg,
	})
}

func sessionUser(c *gin.Context) *models.User {
	v, ok := c.Get(contextUserKey)
	if !ok {
		return nil
	}
	u, _ := v.(*models.User)
	return u
}
