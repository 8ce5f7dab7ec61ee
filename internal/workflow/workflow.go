// Package workflow owns the image/analysis record pair lifecycle:
// state transitions, their validation, and the notification events
// transitions give rise to.
//
// Image records move uploaded -> quality_passed | quality_failed ->
// analyzed (analyzed is reachable only from quality_passed). The
// analysis record created at the analyzed transition moves
// pending_review -> reviewed | follow_up_scheduled. quality_failed
// ends the image path; no analysis record is ever created for it.
package workflow

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	apperrors "go-dental-review/internal/errors"
	"go-dental-review/internal/logger"
	"go-dental-review/internal/notify"
	"go-dental-review/internal/repository"
	"go-dental-review/pkg/format"
	"go-dental-review/pkg/models"
)

// Workflow applies lifecycle operations to record pairs. Every
// operation is atomic per pair: validation happens before any write,
// and a failed operation leaves all touched records unchanged.
type Workflow struct {
	images     *repository.Collection[models.ImageRecord]
	analyses   *repository.Collection[models.AnalysisRecord]
	dispatcher notify.Dispatcher
	pairs      *keyedMutex
	now        func() time.Time
	newID      func() string
}

// New creates a workflow over the given repositories. The dispatcher
// may be nil; emitted events are still returned to the caller.
func New(repos *repository.Repositories, dispatcher notify.Dispatcher) *Workflow {
	return &Workflow{
		images:     repos.Images,
		analyses:   repos.Analyses,
		dispatcher: dispatcher,
		pairs:      newKeyedMutex(),
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// ReviewRequest is the single typed form of a review submission.
type ReviewRequest struct {
	AnalysisID   string
	ReviewerID   string
	ReviewerName string
	Outcome      models.AnalysisStatus
	Notes        string
}

// CreateImage registers an uploaded image in the workflow. The record
// starts in the uploaded state and is owned by the workflow from here.
func (w *Workflow) CreateImage(ctx context.Context, userID, userName, payloadRef, fileName string, fileSize int64) (models.ImageRecord, error) {
	if userID == "" {
		return models.ImageRecord{}, apperrors.NewInvalidInputError("missing owning user", nil)
	}
	if payloadRef == "" {
		return models.ImageRecord{}, apperrors.NewInvalidInputError("missing image payload reference", nil)
	}

	rec := models.ImageRecord{
		ID:         w.newID(),
		UserID:     userID,
		UserName:   userName,
		PayloadRef: payloadRef,
		FileName:   fileName,
		FileSize:   fileSize,
		UploadedAt: w.now().UTC(),
		Status:     models.ImageUploaded,
	}
	if err := w.images.Insert(ctx, rec); err != nil {
		return models.ImageRecord{}, apperrors.NewInternalError("failed to store image record", err)
	}

	logger.WithFields(logrus.Fields{
		"image_id": rec.ID,
		"user_id":  rec.UserID,
	}).Info("Image record created")
	return rec, nil
}

// SubmitQuality attaches a quality result and moves the image to
// quality_passed or quality_failed. Re-submission overwrites the prior
// result, last write wins: the quality result is advisory, not
// authoritative history. An analyzed image keeps its status; its
// analysis record already exists and must stay the only one.
func (w *Workflow) SubmitQuality(ctx context.Context, imageID string, result models.QualityResult) (models.ImageRecord, error) {
	w.pairs.lock(imageID)
	defer w.pairs.unlock(imageID)

	var updated models.ImageRecord
	err := w.images.Update(ctx, imageID, func(img *models.ImageRecord) error {
		q := result
		img.QualityCheck = &q
		if img.Status != models.ImageAnalyzed {
			if result.Passed {
				img.Status = models.ImageQualityPassed
			} else {
				img.Status = models.ImageQualityFailed
			}
		}
		updated = *img
		return nil
	})
	if err == repository.ErrNotFound {
		return models.ImageRecord{}, apperrors.NewNotFoundError(fmt.Sprintf("image %s not found", imageID), err)
	}
	if err != nil {
		return models.ImageRecord{}, apperrors.NewInternalError("failed to update image record", err)
	}

	logger.WithFields(logrus.Fields{
		"image_id": imageID,
		"passed":   result.Passed,
		"status":   updated.Status,
	}).Info("Quality result submitted")
	return updated, nil
}

// RecordAnalysis creates the pending_review analysis record for a
// quality_passed image, links the pair bidirectionally and moves the
// image to analyzed. A high risk tier emits one high_risk_alert event
// to the owning user.
func (w *Workflow) RecordAnalysis(ctx context.Context, imageID string, findings []models.Finding, riskResult models.RiskResult) (*models.AnalysisRecord, []models.NotificationEvent, error) {
	w.pairs.lock(imageID)
	defer w.pairs.unlock(imageID)

	img, err := w.images.Find(ctx, imageID)
	if err == repository.ErrNotFound {
		return nil, nil, apperrors.NewNotFoundError(fmt.Sprintf("image %s not found", imageID), err)
	}
	if err != nil {
		return nil, nil, apperrors.NewInternalError("failed to read image record", err)
	}
	if img.Status != models.ImageQualityPassed {
		return nil, nil, apperrors.NewInvalidStateError(
			fmt.Sprintf("image %s is %s, analysis requires quality_passed", imageID, img.Status), nil)
	}

	if findings == nil {
		findings = []models.Finding{}
	}
	analysis := models.AnalysisRecord{
		ID:             w.newID(),
		ImageID:        imageID,
		UserID:         img.UserID,
		UserName:       img.UserName,
		Findings:       findings,
		RiskScore:      riskResult.Score,
		RiskTier:       riskResult.Tier,
		Recommendation: riskResult.Recommendation,
		Status:         models.AnalysisPendingReview,
		CreatedAt:      w.now().UTC(),
	}

	if err := w.analyses.Insert(ctx, analysis); err != nil {
		return nil, nil, apperrors.NewInternalError("failed to store analysis record", err)
	}
	err = w.images.Update(ctx, imageID, func(rec *models.ImageRecord) error {
		rec.AnalysisID = analysis.ID
		rec.Status = models.ImageAnalyzed
		return nil
	})
	if err != nil {
		// Unlink so no orphan analysis survives a failed image update.
		if _, delErr := w.analyses.Delete(ctx, analysis.ID); delErr != nil {
			logger.WithError(delErr).WithField("analysis_id", analysis.ID).
				Error("Failed to roll back analysis record")
		}
		return nil, nil, apperrors.NewInternalError("failed to link analysis to image", err)
	}

	var events []models.NotificationEvent
	if riskResult.Tier == models.RiskHigh {
		events = append(events, models.NotificationEvent{
			Kind:      models.EventHighRiskAlert,
			UserID:    img.UserID,
			RelatedID: analysis.ID,
			Priority:  models.PriorityHigh,
			Title:     "High-risk findings detected",
			Message: fmt.Sprintf("The image you uploaded at %s shows a high-risk condition. Please see a dentist as soon as possible.",
				format.DateTime(analysis.CreatedAt)),
		})
	}
	w.dispatch(ctx, events)

	logger.WithFields(logrus.Fields{
		"image_id":    imageID,
		"analysis_id": analysis.ID,
		"risk_tier":   riskResult.Tier,
		"findings":    len(findings),
	}).Info("Analysis recorded")
	return &analysis, events, nil
}

// ApplyReview sets the reviewer fields and moves the analysis to the
// requested outcome. Re-review of an already-reviewed record is
// permitted and overwrites the reviewer fields; the record stays in
// whichever outcome the latest review chose. A reviewed outcome emits
// one review_completed event to the analysis's owning user.
func (w *Workflow) ApplyReview(ctx context.Context, req ReviewRequest) (*models.AnalysisRecord, []models.NotificationEvent, error) {
	if req.Outcome != models.AnalysisReviewed && req.Outcome != models.AnalysisFollowUpScheduled {
		return nil, nil, apperrors.NewInvalidInputError(
			fmt.Sprintf("invalid review outcome %q", req.Outcome), nil)
	}
	if req.ReviewerID == "" {
		return nil, nil, apperrors.NewInvalidInputError("missing reviewer id", nil)
	}

	analysis, err := w.analyses.Find(ctx, req.AnalysisID)
	if err == repository.ErrNotFound {
		return nil, nil, apperrors.NewNotFoundError(fmt.Sprintf("analysis %s not found", req.AnalysisID), err)
	}
	if err != nil {
		return nil, nil, apperrors.NewInternalError("failed to read analysis record", err)
	}

	w.pairs.lock(analysis.ImageID)
	defer w.pairs.unlock(analysis.ImageID)

	reviewedAt := w.now().UTC()
	var updated models.AnalysisRecord
	err = w.analyses.Update(ctx, req.AnalysisID, func(a *models.AnalysisRecord) error {
		a.ReviewerID = req.ReviewerID
		a.ReviewerName = req.ReviewerName
		a.ReviewedAt = &reviewedAt
		a.ReviewerNotes = req.Notes
		a.Status = req.Outcome
		updated = *a
		return nil
	})
	if err == repository.ErrNotFound {
		return nil, nil, apperrors.NewNotFoundError(fmt.Sprintf("analysis %s not found", req.AnalysisID), err)
	}
	if err != nil {
		return nil, nil, apperrors.NewInternalError("failed to update analysis record", err)
	}

	var events []models.NotificationEvent
	if req.Outcome == models.AnalysisReviewed {
		events = append(events, models.NotificationEvent{
			Kind:      models.EventReviewCompleted,
			UserID:    updated.UserID,
			RelatedID: updated.ID,
			Priority:  models.PriorityMedium,
			Title:     "Review completed",
			Message: fmt.Sprintf("Your oral health analysis report has been reviewed by %s. See the report for details.",
				req.ReviewerName),
		})
	}
	w.dispatch(ctx, events)

	logger.WithFields(logrus.Fields{
		"analysis_id": req.AnalysisID,
		"reviewer_id": req.ReviewerID,
		"outcome":     req.Outcome,
	}).Info("Review applied")
	return &updated, events, nil
}

// DeleteImage removes the image record and cascades to its linked
// analysis. Idempotent: deleting an absent id is a no-op.
func (w *Workflow) DeleteImage(ctx context.Context, imageID string) error {
	w.pairs.lock(imageID)
	defer w.pairs.unlock(imageID)

	if _, err := w.analyses.DeleteWhere(ctx, func(a *models.AnalysisRecord) bool {
		return a.ImageID == imageID
	}); err != nil {
		return apperrors.NewInternalError("failed to delete analysis records", err)
	}
	removed, err := w.images.Delete(ctx, imageID)
	if err != nil {
		return apperrors.NewInternalError("failed to delete image record", err)
	}

	if removed {
		logger.WithField("image_id", imageID).Info("Image deleted")
	}
	return nil
}

// ListPendingReviews returns every pending_review analysis, high risk
// tier first and newest first within the remainder.
func (w *Workflow) ListPendingReviews(ctx context.Context) ([]models.AnalysisRecord, error) {
	pending, err := w.analyses.Filter(ctx, func(a *models.AnalysisRecord) bool {
		return a.Status == models.AnalysisPendingReview
	})
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list analyses", err)
	}

	sort.SliceStable(pending, func(i, j int) bool {
		hi, hj := pending[i].RiskTier == models.RiskHigh, pending[j].RiskTier == models.RiskHigh
		if hi != hj {
			return hi
		}
		return pending[i].CreatedAt.After(pending[j].CreatedAt)
	})
	return pending, nil
}

// GetImage returns one image record.
func (w *Workflow) GetImage(ctx context.Context, imageID string) (*models.ImageRecord, error) {
	img, err := w.images.Find(ctx, imageID)
	if err == repository.ErrNotFound {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("image %s not found", imageID), err)
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to read image record", err)
	}
	return img, nil
}

// GetAnalysis returns one analysis record.
func (w *Workflow) GetAnalysis(ctx context.Context, analysisID string) (*models.AnalysisRecord, error) {
	analysis, err := w.analyses.Find(ctx, analysisID)
	if err == repository.ErrNotFound {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("analysis %s not found", analysisID), err)
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to read analysis record", err)
	}
	return analysis, nil
}

// ListImagesForUser returns a user's images, newest first.
func (w *Workflow) ListImagesForUser(ctx context.Context, userID string) ([]models.ImageRecord, error) {
	images, err := w.images.Filter(ctx, func(r *models.ImageRecord) bool {
		return r.UserID == userID
	})
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list image records", err)
	}
	sort.SliceStable(images, func(i, j int) bool {
		return images[i].UploadedAt.After(images[j].UploadedAt)
	})
	return images, nil
}

// HistoryForUser returns a user's analyses in chronological order
// (oldest first), the shape the trend analyzer consumes.
func (w *Workflow) HistoryForUser(ctx context.Context, userID string) ([]models.AnalysisRecord, error) {
	history, err := w.analyses.Filter(ctx, func(a *models.AnalysisRecord) bool {
		return a.UserID == userID
	})
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list analysis records", err)
	}
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].CreatedAt.Before(history[j].CreatedAt)
	})
	return history, nil
}

func (w *Workflow) dispatch(ctx context.Context, events []models.NotificationEvent) {
	if w.dispatcher == nil {
		return
	}
	for _, e := range events {
		w.dispatcher.Emit(ctx, e)
	}
}
