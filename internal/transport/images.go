package transport

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	apperrors "go-dental-review/internal/errors"
	"go-dental-review/internal/logger"
	"go-dental-review/internal/trend"
	"go-dental-review/internal/workflow"
	"go-dental-review/pkg/models"
)

type uploadRequest struct {
	FileName string `json:"file_name"`
	Data     string `json:"data,omitempty"` // base64 payload
	URL      string `json:"url,omitempty"`  // fetched server-side
}

type reviewRequest struct {
	Outcome models.AnalysisStatus `json:"outcome" binding:"required"`
	Notes   string                `json:"notes,omitempty"`
}

func validatePayloadURL(imageURL string) error {
	parsedURL, err := url.Parse(imageURL)
	if err != nil {
		return apperrors.NewInvalidInputError("invalid URL format", err)
	}
	if parsedURL.Host == "" {
		return apperrors.NewInvalidInputError("URL must have a valid host", nil)
	}
	return nil
}

// uploadImage accepts an inline base64 payload or a URL to fetch,
// stores it, and runs the full quality/analysis pipeline before
// answering.
func (h *Handler) uploadImage(c *gin.Context) {
	user := sessionUser(c)

	var req uploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request format", err)
		return
	}
	if req.Data == "" && req.URL == "" {
		respondAppError(c, apperrors.NewInvalidInputError("either data or url is required", nil))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.AnalysisTimeout)
	defer cancel()

	var payload []byte
	contentType := "application/octet-stream"
	if req.Data != "" {
		decoded, err := base64.StdEncoding.DecodeString(req.Data)
		if err != nil {
			respondAppError(c, apperrors.NewInvalidInputError("data is not valid base64", err))
			return
		}
		payload = decoded
	} else {
		if err := validatePayloadURL(req.URL); err != nil {
			respondAppError(c, err)
			return
		}
		data, ct, err := h.fetcher.FetchPayload(ctx, req.URL)
		if err != nil {
			var fetchErr *apperrors.AppError
			if errors.Is(err, context.DeadlineExceeded) {
				fetchErr = apperrors.NewTimeoutError("image fetch timeout", err)
			} else {
				fetchErr = apperrors.NewNetworkError("failed to fetch image", err)
			}
			respondAppError(c, fetchErr)
			return
		}
		payload = data
		if ct != "" {
			contentType = ct
		}
	}

	img, err := h.pipeline.Submit(ctx, user.ID, user.Name, req.FileName, payload, contentType)
	if err != nil {
		respondAppError(c, err)
		return
	}

	res := h.pipeline.RunSync(ctx, img.ID)
	if res.Err != nil {
		respondAppError(c, res.Err)
		return
	}

	logger.WithFields(logrus.Fields{
		"image_id": res.Image.ID,
		"user_id":  user.ID,
		"status":   res.Image.Status,
	}).Info("Image upload processed")

	c.JSON(http.StatusCreated, gin.H{
		"image":    res.Image,
		"analysis": res.Analysis,
		"risk":     res.Risk,
	})
}

func (h *Handler) listImages(c *gin.Context) {
	user := sessionUser(c)
	images, err := h.workflow.ListImagesForUser(c.Request.Context(), h.targetUserID(c, user))
	if err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"images": images})
}

func (h *Handler) getImage(c *gin.Context) {
	img, err := h.workflow.GetImage(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondAppError(c, err)
		return
	}
	if !h.mayAccess(c, img.UserID) {
		return
	}
	c.JSON(http.StatusOK, img)
}

func (h *Handler) deleteImage(c *gin.Context) {
	imageID := c.Param("id")
	// Ownership is checked only when the record still exists; deleting
	// an absent id stays idempotent.
	if img, err := h.workflow.GetImage(c.Request.Context(), imageID); err == nil {
		if !h.mayAccess(c, img.UserID) {
			return
		}
	}

	if err := h.workflow.DeleteImage(c.Request.Context(), imageID); err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": imageID})
}

func (h *Handler) getAnalysis(c *gin.Context) {
	analysis, err := h.workflow.GetAnalysis(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondAppError(c, err)
		return
	}
	if !h.mayAccess(c, analysis.UserID) {
		return
	}
	c.JSON(http.StatusOK, analysis)
}

// getTrend reports health direction and the chart series for a user's
// analysis history.
func (h *Handler) getTrend(c *gin.Context) {
	user := sessionUser(c)
	history, err := h.workflow.HistoryForUser(c.Request.Context(), h.targetUserID(c, user))
	if err != nil {
		respondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"trend": trend.AnalyzeTrend(history),
		"chart": trend.ChartSeries(history),
	})
}

func (h *Handler) listPendingReviews(c *gin.Context) {
	if !h.requireDoctor(c) {
		return
	}
	pending, err := h.workflow.ListPendingReviews(c.Request.Context())
	if err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pending": pending})
}

func (h *Handler) submitReview(c *gin.Context) {
	if !h.requireDoctor(c) {
		return
	}
	user := sessionUser(c)

	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request format", err)
		return
	}

	analysis, _, err := h.workflow.ApplyReview(c.Request.Context(), workflow.ReviewRequest{
		AnalysisID:   c.Param("id"),
		ReviewerID:   user.ID,
		ReviewerName: user.Name,
		Outcome:      req.Outcome,
		Notes:        req.Notes,
	})
	if err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, analysis)
}

// targetUserID lets doctors inspect another user via the user_id query
// parameter; patients always see their own records.
func (h *Handler) targetUserID(c *gin.Context, user *models.User) string {
	if user.Type == models.UserDoctor {
		if target := c.Query("user_id"); target != "" {
			return target
		}
	}
	return user.ID
}

// mayAccess enforces that patients only touch their own records.
// Doctors may access everything.
func (h *Handler) mayAccess(c *gin.Context, ownerID string) bool {
	user := sessionUser(c)
	if user.Type == models.UserDoctor || user.ID == ownerID {
		return true
	}
	respondAppError(c, apperrors.NewUnauthorizedError("record belongs to another user", nil))
	return false
}

func (h *Handler) requireDoctor(c *gin.Context) bool {
	if sessionUser(c).Type == models.UserDoctor {
		return true
	}
	respondAppError(c, apperrors.NewUnauthorizedError("doctor account required", nil))
	return false
}
