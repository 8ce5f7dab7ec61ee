package workflow

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	apperrors "go-dental-review/internal/errors"
	"go-dental-review/internal/notify"
	"go-dental-review/internal/repository"
	"go-dental-review/internal/store"
	"go-dental-review/pkg/models"
)

func newTestWorkflow(t *testing.T) (*Workflow, *notify.CaptureDispatcher) {
	t.Helper()
	capture := notify.NewCaptureDispatcher()
	repos := repository.New(store.NewMemoryStore())
	return New(repos, capture), capture
}

func passedQuality() models.QualityResult {
	return models.QualityResult{
		Passed:       true,
		OverallScore: 85,
		Clarity:      80,
		Brightness:   models.BrightnessGood,
		Angle:        models.AngleAppropriate,
	}
}

func failedQuality() models.QualityResult {
	return models.QualityResult{
		Passed:     false,
		Clarity:    50,
		Brightness: models.BrightnessTooDark,
		Angle:      models.AngleAppropriate,
	}
}

func mustCreateImage(t *testing.T, w *Workflow) models.ImageRecord {
	t.Helper()
	img, err := w.CreateImage(context.Background(), "user-1", "Pat", "payload-ref", "teeth.jpg", 1024)
	if err != nil {
		t.Fatalf("CreateImage() error = %v", err)
	}
	return img
}

func mustAnalyze(t *testing.T, w *Workflow, imageID string, risk models.RiskResult) *models.AnalysisRecord {
	t.Helper()
	if _, err := w.SubmitQuality(context.Background(), imageID, passedQuality()); err != nil {
		t.Fatalf("SubmitQuality() error = %v", err)
	}
	analysis, _, err := w.RecordAnalysis(context.Background(), imageID,
		[]models.Finding{{ID: "f1", Type: models.FindingCaries, Confidence: 80}}, risk)
	if err != nil {
		t.Fatalf("RecordAnalysis() error = %v", err)
	}
	return analysis
}

func TestCreateImage_Validation(t *testing.T) {
	w, _ := newTestWorkflow(t)
	ctx := context.Background()

	if _, err := w.CreateImage(ctx, "", "Pat", "ref", "a.jpg", 1); !apperrors.IsType(err, apperrors.ErrorTypeInvalidInput) {
		t.Errorf("missing user error = %v, want invalid_input", err)
	}
	if _, err := w.CreateImage(ctx, "user-1", "Pat", "", "a.jpg", 1); !apperrors.IsType(err, apperrors.ErrorTypeInvalidInput) {
		t.Errorf("missing payload ref error = %v, want invalid_input", err)
	}

	img := mustCreateImage(t, w)
	if img.Status != models.ImageUploaded {
		t.Errorf("Status = %v, want uploaded", img.Status)
	}
	if img.ID == "" {
		t.Error("image id is empty")
	}
}

func TestSubmitQuality_Transitions(t *testing.T) {
	w, _ := newTestWorkflow(t)
	ctx := context.Background()

	if _, err := w.SubmitQuality(ctx, "nope", passedQuality()); !apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
		t.Errorf("unknown image error = %v, want not_found", err)
	}

	img := mustCreateImage(t, w)
	updated, err := w.SubmitQuality(ctx, img.ID, failedQuality())
	if err != nil {
		t.Fatalf("SubmitQuality() error = %v", err)
	}
	if updated.Status != models.ImageQualityFailed {
		t.Errorf("Status = %v, want quality_failed", updated.Status)
	}
	if updated.QualityCheck == nil || updated.QualityCheck.Passed {
		t.Errorf("QualityCheck = %+v, want stored failed result", updated.QualityCheck)
	}

	// Re-submission overwrites, last write wins.
	updated, err = w.SubmitQuality(ctx, img.ID, passedQuality())
	if err != nil {
		t.Fatalf("SubmitQuality() retry error = %v", err)
	}
	if updated.Status != models.ImageQualityPassed {
		t.Errorf("Status after retry = %v, want quality_passed", updated.Status)
	}
	if updated.QualityCheck == nil || !updated.QualityCheck.Passed {
		t.Errorf("QualityCheck after retry = %+v, want passed result", updated.QualityCheck)
	}
}

func TestSubmitQuality_KeepsAnalyzedStatus(t *testing.T) {
	w, _ := newTestWorkflow(t)
	ctx := context.Background()

	img := mustCreateImage(t, w)
	first := mustAnalyze(t, w, img.ID, models.RiskResult{Score: 2, Tier: models.RiskLow})

	updated, err := w.SubmitQuality(ctx, img.ID, passedQuality())
	if err != nil {
		t.Fatalf("SubmitQuality() error = %v", err)
	}
	if updated.Status != models.ImageAnalyzed {
		t.Errorf("Status = %v, want analyzed", updated.Status)
	}
	if updated.QualityCheck == nil || !updated.QualityCheck.Passed {
		t.Errorf("QualityCheck = %+v, want overwritten passed result", updated.QualityCheck)
	}

	if _, _, err := w.RecordAnalysis(ctx, img.ID, nil, models.RiskResult{Score: 1, Tier: models.RiskLow}); !apperrors.IsType(err, apperrors.ErrorTypeInvalidState) {
		t.Errorf("repeat RecordAnalysis() error = %v, want invalid_state", err)
	}

	records, err := w.analyses.Filter(ctx, func(a *models.AnalysisRecord) bool {
		return a.ImageID == img.ID
	})
	if err != nil {
		t.Fatalf("Filter() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("analysis records = %d, want 1", len(records))
	}
	if records[0].ID != first.ID {
		t.Errorf("analysis id = %s, want %s", records[0].ID, first.ID)
	}
}

func TestRecordAnalysis_RequiresQualityPassed(t *testing.T) {
	w, _ := newTestWorkflow(t)
	ctx := context.Background()

	if _, _, err := w.RecordAnalysis(ctx, "nope", nil, models.RiskResult{}); !apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
		t.Errorf("unknown image error = %v, want not_found", err)
	}

	img := mustCreateImage(t, w)
	if _, _, err := w.RecordAnalysis(ctx, img.ID, nil, models.RiskResult{}); !apperrors.IsType(err, apperrors.ErrorTypeInvalidState) {
		t.Errorf("uploaded image error = %v, want invalid_state", err)
	}

	if _, err := w.SubmitQuality(ctx, img.ID, failedQuality()); err != nil {
		t.Fatalf("SubmitQuality() error = %v", err)
	}
	if _, _, err := w.RecordAnalysis(ctx, img.ID, nil, models.RiskResult{}); !apperrors.IsType(err, apperrors.ErrorTypeInvalidState) {
		t.Errorf("quality_failed image error = %v, want invalid_state", err)
	}

	// A rejected transition leaves the record unchanged.
	got, err := w.GetImage(ctx, img.ID)
	if err != nil {
		t.Fatalf("GetImage() error = %v", err)
	}
	if got.Status != models.ImageQualityFailed || got.AnalysisID != "" {
		t.Errorf("record after rejected transition = %+v", got)
	}
}

func TestRecordAnalysis_LinksPair(t *testing.T) {
	w, _ := newTestWorkflow(t)
	ctx := context.Background()

	img := mustCreateImage(t, w)
	analysis := mustAnalyze(t, w, img.ID, models.RiskResult{Score: 2.4, Tier: models.RiskLow})

	if analysis.Status != models.AnalysisPendingReview {
		t.Errorf("Status = %v, want pending_review", analysis.Status)
	}
	if analysis.ImageID != img.ID {
		t.Errorf("ImageID = %q, want %q", analysis.ImageID, img.ID)
	}
	if analysis.UserID != img.UserID {
		t.Errorf("UserID = %q, want owner %q", analysis.UserID, img.UserID)
	}

	linked, err := w.GetImage(ctx, img.ID)
	if err != nil {
		t.Fatalf("GetImage() error = %v", err)
	}
	if linked.Status != models.ImageAnalyzed || linked.AnalysisID != analysis.ID {
		t.Errorf("image after analysis = %+v, want analyzed and linked", linked)
	}

	// Second analysis of the same image is rejected: it is analyzed now.
	if _, _, err := w.RecordAnalysis(ctx, img.ID, nil, models.RiskResult{}); !apperrors.IsType(err, apperrors.ErrorTypeInvalidState) {
		t.Errorf("second analysis error = %v, want invalid_state", err)
	}
}

func TestRecordAnalysis_HighRiskEmitsOneAlert(t *testing.T) {
	w, capture := newTestWorkflow(t)

	img := mustCreateImage(t, w)
	analysis := mustAnalyze(t, w, img.ID, models.RiskResult{Score: 8.5, Tier: models.RiskHigh})

	events := capture.Events()
	if len(events) != 1 {
		t.Fatalf("captured %d events, want 1", len(events))
	}
	e := events[0]
	if e.Kind != models.EventHighRiskAlert {
		t.Errorf("Kind = %v, want high_risk_alert", e.Kind)
	}
	if e.UserID != img.UserID {
		t.Errorf("UserID = %q, want owner %q", e.UserID, img.UserID)
	}
	if e.RelatedID != analysis.ID {
		t.Errorf("RelatedID = %q, want %q", e.RelatedID, analysis.ID)
	}
	if e.Priority != models.PriorityHigh {
		t.Errorf("Priority = %v, want high", e.Priority)
	}
}

func TestRecordAnalysis_LowAndMediumEmitNothing(t *testing.T) {
	for _, tier := range []models.RiskTier{models.RiskLow, models.RiskMedium} {
		w, capture := newTestWorkflow(t)
		img := mustCreateImage(t, w)
		mustAnalyze(t, w, img.ID, models.RiskResult{Score: 4, Tier: tier})

		if got := capture.Events(); len(got) != 0 {
			t.Errorf("tier %v emitted %d events, want 0", tier, len(got))
		}
	}
}

func TestApplyReview(t *testing.T) {
	w, capture := newTestWorkflow(t)
	ctx := context.Background()

	img := mustCreateImage(t, w)
	analysis := mustAnalyze(t, w, img.ID, models.RiskResult{Score: 2, Tier: models.RiskLow})

	_, _, err := w.ApplyReview(ctx, ReviewRequest{
		AnalysisID: analysis.ID, ReviewerID: "doc-1", Outcome: models.AnalysisStatus("bogus"),
	})
	if !apperrors.IsType(err, apperrors.ErrorTypeInvalidInput) {
		t.Errorf("bogus outcome error = %v, want invalid_input", err)
	}

	_, _, err = w.ApplyReview(ctx, ReviewRequest{
		AnalysisID: "nope", ReviewerID: "doc-1", Outcome: models.AnalysisReviewed,
	})
	if !apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
		t.Errorf("unknown analysis error = %v, want not_found", err)
	}

	reviewed, events, err := w.ApplyReview(ctx, ReviewRequest{
		AnalysisID:   analysis.ID,
		ReviewerID:   "doc-1",
		ReviewerName: "Dr. Zhang",
		Outcome:      models.AnalysisReviewed,
		Notes:        "looks clean",
	})
	if err != nil {
		t.Fatalf("ApplyReview() error = %v", err)
	}
	if reviewed.Status != models.AnalysisReviewed {
		t.Errorf("Status = %v, want reviewed", reviewed.Status)
	}
	if reviewed.ReviewerID != "doc-1" || reviewed.ReviewerNotes != "looks clean" {
		t.Errorf("reviewer fields = %+v", reviewed)
	}
	if reviewed.ReviewedAt == nil {
		t.Error("ReviewedAt is nil")
	}
	if len(events) != 1 || events[0].Kind != models.EventReviewCompleted {
		t.Fatalf("events = %+v, want one review_completed", events)
	}
	if events[0].UserID != img.UserID {
		t.Errorf("event UserID = %q, want owner %q", events[0].UserID, img.UserID)
	}
	if got := capture.Events(); len(got) != 1 {
		t.Errorf("dispatched %d events, want 1", len(got))
	}
}

func TestApplyReview_FollowUpEmitsNothing(t *testing.T) {
	w, capture := newTestWorkflow(t)
	ctx := context.Background()

	img := mustCreateImage(t, w)
	analysis := mustAnalyze(t, w, img.ID, models.RiskResult{Score: 6, Tier: models.RiskMedium})

	updated, events, err := w.ApplyReview(ctx, ReviewRequest{
		AnalysisID: analysis.ID, ReviewerID: "doc-1", Outcome: models.AnalysisFollowUpScheduled,
	})
	if err != nil {
		t.Fatalf("ApplyReview() error = %v", err)
	}
	if updated.Status != models.AnalysisFollowUpScheduled {
		t.Errorf("Status = %v, want follow_up_scheduled", updated.Status)
	}
	if len(events) != 0 {
		t.Errorf("events = %+v, want none", events)
	}
	if got := capture.Events(); len(got) != 0 {
		t.Errorf("dispatched %d events, want 0", len(got))
	}
}

func TestApplyReview_ReReviewOverwrites(t *testing.T) {
	w, _ := newTestWorkflow(t)
	ctx := context.Background()

	img := mustCreateImage(t, w)
	analysis := mustAnalyze(t, w, img.ID, models.RiskResult{Score: 2, Tier: models.RiskLow})

	if _, _, err := w.ApplyReview(ctx, ReviewRequest{
		AnalysisID: analysis.ID, ReviewerID: "doc-1", ReviewerName: "Dr. Zhang",
		Outcome: models.AnalysisReviewed, Notes: "first pass",
	}); err != nil {
		t.Fatalf("first review error = %v", err)
	}

	second, _, err := w.ApplyReview(ctx, ReviewRequest{
		AnalysisID: analysis.ID, ReviewerID: "doc-2", ReviewerName: "Dr. Li",
		Outcome: models.AnalysisFollowUpScheduled, Notes: "needs a closer look",
	})
	if err != nil {
		t.Fatalf("second review error = %v", err)
	}
	if second.ReviewerID != "doc-2" || second.Status != models.AnalysisFollowUpScheduled {
		t.Errorf("second review = %+v, want doc-2 follow_up_scheduled", second)
	}
	if second.ReviewerNotes != "needs a closer look" {
		t.Errorf("ReviewerNotes = %q", second.ReviewerNotes)
	}
}

func TestDeleteImage_CascadesAndIsIdempotent(t *testing.T) {
	w, _ := newTestWorkflow(t)
	ctx := context.Background()

	img := mustCreateImage(t, w)
	analysis := mustAnalyze(t, w, img.ID, models.RiskResult{Score: 2, Tier: models.RiskLow})

	if err := w.DeleteImage(ctx, img.ID); err != nil {
		t.Fatalf("DeleteImage() error = %v", err)
	}
	if _, err := w.GetImage(ctx, img.ID); !apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
		t.Errorf("GetImage after delete = %v, want not_found", err)
	}
	if _, err := w.GetAnalysis(ctx, analysis.ID); !apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
		t.Errorf("GetAnalysis after delete = %v, want not_found", err)
	}

	// Deleting again, or deleting something that never existed, is fine.
	if err := w.DeleteImage(ctx, img.ID); err != nil {
		t.Errorf("second DeleteImage() error = %v", err)
	}
	if err := w.DeleteImage(ctx, "never-existed"); err != nil {
		t.Errorf("DeleteImage(unknown) error = %v", err)
	}
}

func TestListPendingReviews_Ordering(t *testing.T) {
	w, _ := newTestWorkflow(t)
	ctx := context.Background()

	base := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	tick := 0
	w.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	// Created in order: low, high, medium, high. The high pair must
	// come first, newest high first, then the rest newest first.
	var ids []string
	for _, tier := range []models.RiskTier{models.RiskLow, models.RiskHigh, models.RiskMedium, models.RiskHigh} {
		img := mustCreateImage(t, w)
		analysis := mustAnalyze(t, w, img.ID, models.RiskResult{Score: 5, Tier: tier})
		ids = append(ids, analysis.ID)
	}

	pending, err := w.ListPendingReviews(ctx)
	if err != nil {
		t.Fatalf("ListPendingReviews() error = %v", err)
	}
	if len(pending) != 4 {
		t.Fatalf("len(pending) = %d, want 4", len(pending))
	}

	want := []string{ids[3], ids[1], ids[2], ids[0]}
	for i, p := range pending {
		if p.ID != want[i] {
			t.Errorf("pending[%d] = %s (tier %s), want %s", i, p.ID, p.RiskTier, want[i])
		}
	}

	// A reviewed analysis leaves the queue.
	if _, _, err := w.ApplyReview(ctx, ReviewRequest{
		AnalysisID: ids[3], ReviewerID: "doc-1", Outcome: models.AnalysisReviewed,
	}); err != nil {
		t.Fatalf("ApplyReview() error = %v", err)
	}
	pending, err = w.ListPendingReviews(ctx)
	if err != nil {
		t.Fatalf("ListPendingReviews() error = %v", err)
	}
	if len(pending) != 3 || pending[0].ID != ids[1] {
		t.Errorf("pending after review = %d entries, first %s", len(pending), pending[0].ID)
	}
}

func TestUserViews(t *testing.T) {
	w, _ := newTestWorkflow(t)
	ctx := context.Background()

	base := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	tick := 0
	w.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	var imageIDs, analysisIDs []string
	for i := 0; i < 3; i++ {
		img := mustCreateImage(t, w)
		analysis := mustAnalyze(t, w, img.ID, models.RiskResult{Score: float64(i), Tier: models.RiskLow})
		imageIDs = append(imageIDs, img.ID)
		analysisIDs = append(analysisIDs, analysis.ID)
	}

	images, err := w.ListImagesForUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListImagesForUser() error = %v", err)
	}
	if len(images) != 3 || images[0].ID != imageIDs[2] || images[2].ID != imageIDs[0] {
		t.Errorf("images not newest first: %v", []string{images[0].ID, images[1].ID, images[2].ID})
	}

	history, err := w.HistoryForUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("HistoryForUser() error = %v", err)
	}
	if len(history) != 3 || history[0].ID != analysisIDs[0] || history[2].ID != analysisIDs[2] {
		t.Errorf("history not oldest first: %v", []string{history[0].ID, history[1].ID, history[2].ID})
	}

	if got, err := w.ListImagesForUser(ctx, "someone-else"); err != nil || len(got) != 0 {
		t.Errorf("ListImagesForUser(other) = %d entries, err %v", len(got), err)
	}
}

func TestDeleteRace_NeverLeavesOrphanAnalysis(t *testing.T) {
	w, _ := newTestWorkflow(t)
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		img := mustCreateImage(t, w)
		if _, err := w.SubmitQuality(ctx, img.ID, passedQuality()); err != nil {
			t.Fatalf("SubmitQuality() error = %v", err)
		}

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _, _ = w.RecordAnalysis(ctx, img.ID, nil, models.RiskResult{Tier: models.RiskLow})
		}()
		go func() {
			defer wg.Done()
			_ = w.DeleteImage(ctx, img.ID)
		}()
		wg.Wait()

		// Whatever interleaving happened, clean up and verify no
		// analysis points at a missing image.
		if err := w.DeleteImage(ctx, img.ID); err != nil {
			t.Fatalf("final DeleteImage() error = %v", err)
		}
		orphans, err := w.analyses.Filter(ctx, func(a *models.AnalysisRecord) bool {
			return a.ImageID == img.ID
		})
		if err != nil {
			t.Fatalf("Filter() error = %v", err)
		}
		if len(orphans) != 0 {
			t.Fatalf("iteration %d: %d orphan analyses for deleted image", i, len(orphans))
		}
	}
}

func ExampleWorkflow_ListPendingReviews() {
	repos := repository.New(store.NewMemoryStore())
	w := New(repos, nil)
	ctx := context.Background()

	img, _ := w.CreateImage(ctx, "user-1", "Pat", "ref", "teeth.jpg", 1024)
	w.SubmitQuality(ctx, img.ID, models.QualityResult{Passed: true, Brightness: models.BrightnessGood, Angle: models.AngleAppropriate})
	w.RecordAnalysis(ctx, img.ID, nil, models.RiskResult{Score: 8.5, Tier: models.RiskHigh})

	pending, _ := w.ListPendingReviews(ctx)
	fmt.Println(len(pending), pending[0].RiskTier)
	// Output: 1 high
}
