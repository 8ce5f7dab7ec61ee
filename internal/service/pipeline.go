package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"go-dental-review/internal/detector"
	apperrors "go-dental-review/internal/errors"
	"go-dental-review/internal/logger"
	"go-dental-review/internal/quality"
	"go-dental-review/internal/risk"
	"go-dental-review/internal/storage"
	"go-dental-review/internal/workflow"
	"go-dental-review/pkg/models"
)

// Result is the outcome of one pipeline run over an uploaded image.
// Analysis and Risk are nil when the quality gate failed the image.
type Result struct {
	Image    models.ImageRecord
	Analysis *models.AnalysisRecord
	Risk     *models.RiskResult
	Events   []models.NotificationEvent
	Err      error
}

// Pipeline drives an uploaded image through the quality gate, the
// anomaly detector and the risk scorer, recording each step against
// the workflow.
type Pipeline struct {
	workflow  *workflow.Workflow
	evaluator quality.Evaluator
	detector  detector.Detector
	payloads  storage.PayloadStore
	pool      *WorkerPool
	timeout   time.Duration
}

// NewPipeline creates a pipeline. The worker pool must be started by
// the caller; timeout bounds each analysis run.
func NewPipeline(wf *workflow.Workflow, eval quality.Evaluator, det detector.Detector, payloads storage.PayloadStore, pool *WorkerPool, timeout time.Duration) *Pipeline {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Pipeline{
		workflow:  wf,
		evaluator: eval,
		detector:  det,
		payloads:  payloads,
		pool:      pool,
		timeout:   timeout,
	}
}

// Submit saves the payload and registers the image record. Analysis is
// a separate step so a caller can surface the upload before results
// arrive.
func (p *Pipeline) Submit(ctx context.Context, userID, userName, fileName string, data []byte, contentType string) (models.ImageRecord, error) {
	if len(data) == 0 {
		return models.ImageRecord{}, apperrors.NewInvalidInputError("empty image payload", nil)
	}

	ref, err := p.payloads.Save(ctx, data, contentType)
	if err != nil {
		return models.ImageRecord{}, apperrors.NewInternalError("failed to store image payload", err)
	}

	img, err := p.workflow.CreateImage(ctx, userID, userName, ref, fileName, int64(len(data)))
	if err != nil {
		if delErr := p.payloads.Delete(ctx, ref); delErr != nil {
			logger.WithError(delErr).WithField("payload_ref", ref).Error("Failed to clean up orphaned payload")
		}
		return models.ImageRecord{}, err
	}
	return img, nil
}

// Run schedules an analysis of the image on the worker pool. done is
// invoked with the result when the run finishes; it may be nil.
func (p *Pipeline) Run(imageID string, done func(Result)) {
	p.pool.Submit(func() {
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		defer cancel()

		res := p.process(ctx, imageID)
		if done != nil {
			done(res)
		}
	})
}

// RunSync runs the analysis on the worker pool and blocks for the
// result.
func (p *Pipeline) RunSync(ctx context.Context, imageID string) Result {
	ch := make(chan Result, 1)
	p.Run(imageID, func(r Result) { ch <- r })

	select {
	case <-ctx.Done():
		return Result{Err: apperrors.NewTimeoutError("analysis did not complete in time", ctx.Err())}
	case res := <-ch:
		return res
	}
}

func (p *Pipeline) process(ctx context.Context, imageID string) Result {
	img, err := p.workflow.GetImage(ctx, imageID)
	if err != nil {
		return Result{Err: err}
	}

	payload, err := p.payloads.Load(ctx, img.PayloadRef)
	if err != nil {
		return Result{Image: *img, Err: apperrors.NewInternalError("failed to load image payload", err)}
	}

	qr, err := p.evaluator.Evaluate(payload)
	if err != nil {
		return Result{Image: *img, Err: err}
	}
	updated, err := p.workflow.SubmitQuality(ctx, imageID, qr)
	if err != nil {
		return Result{Image: *img, Err: err}
	}
	if !qr.Passed {
		logger.WithFields(logrus.Fields{
			"image_id": imageID,
			"score":    qr.OverallScore,
		}).Info("Image rejected by quality gate")
		return Result{Image: updated}
	}

	findings, err := p.detector.Detect(payload)
	if err != nil {
		return Result{Image: updated, Err: err}
	}
	riskResult := risk.Score(findings)

	analysis, events, err := p.workflow.RecordAnalysis(ctx, imageID, findings, riskResult)
	if err != nil {
		return Result{Image: updated, Err: err}
	}

	img2, err := p.workflow.GetImage(ctx, imageID)
	if err == nil {
		updated = *img2
	}

	logger.WithFields(logrus.Fields{
		"image_id":    imageID,
		"analysis_id": analysis.ID,
		"risk_tier":   riskResult.Tier,
	}).Info("Analysis pipeline completed")
	return Result{Image: updated, Analysis: analysis, Risk: &riskResult, Events: events}
}
