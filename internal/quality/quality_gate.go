// Package quality implements the pre-analysis quality gate: it scores
// an uploaded image on clarity, brightness and framing angle and
// decides whether the image is fit for anomaly detection.
package quality

import (
	"math"
	"math/rand"
	"sync"
	"time"

	apperrors "go-dental-review/internal/errors"
	"go-dental-review/pkg/models"
)

// Evaluator produces a quality verdict for an opaque image payload.
// The simulated evaluator stands in for a real vision model; any
// implementation of this contract is substitutable.
type Evaluator interface {
	Evaluate(payload []byte) (models.QualityResult, error)
}

const clarityPassThreshold = 70

// Compose builds the full QualityResult from the three sub-checks.
// Pass requires clarity >= 70, good brightness and an appropriate
// angle; the overall score is the rounded mean of the sub-scores.
func Compose(clarity int, brightness models.Brightness, angle models.Angle, at time.Time) models.QualityResult {
	brightnessScore := 85
	switch brightness {
	case models.BrightnessTooDark:
		brightnessScore = 40
	case models.BrightnessTooBright:
		brightnessScore = 45
	}

	angleScore := 90
	if angle == models.AngleNeedsAdjustment {
		angleScore = 55
	}

	passed := clarity >= clarityPassThreshold &&
		brightness == models.BrightnessGood &&
		angle == models.AngleAppropriate

	overall := int(math.Round(float64(clarity+brightnessScore+angleScore) / 3))

	return models.QualityResult{
		Passed:          passed,
		OverallScore:    overall,
		Clarity:         clarity,
		Brightness:      brightness,
		BrightnessScore: brightnessScore,
		Angle:           angle,
		AngleScore:      angleScore,
		Suggestions:     suggestions(clarity, brightness, angle),
		Timestamp:       at,
	}
}

// suggestions lists improvement hints for the failed sub-checks in a
// fixed order: clarity, brightness, angle.
func suggestions(clarity int, brightness models.Brightness, angle models.Angle) []string {
	var out []string
	if clarity < clarityPassThreshold {
		out = append(out, "Keep the lens clean and hold the camera steady")
	}
	switch brightness {
	case models.BrightnessTooDark:
		out = append(out, "Lighting is insufficient; retake in a brighter spot or turn on the flash")
	case models.BrightnessTooBright:
		out = append(out, "Lighting is too strong; avoid direct light sources")
	}
	if angle == models.AngleNeedsAdjustment {
		out = append(out, "Adjust the shooting angle and keep the lens parallel to the teeth")
	}
	if len(out) == 0 {
		out = append(out, "Image quality is good and ready for analysis")
	}
	return out
}

// SimulatedEvaluator draws sub-check outcomes from a seeded random
// source, reproducing the reference model's score distributions:
// clarity 70-94, dark/bright tails at 15% each, off-angle at 20%.
type SimulatedEvaluator struct {
	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

// NewSimulatedEvaluator creates a simulated evaluator. A zero seed
// selects a time-based seed.
func NewSimulatedEvaluator(seed int64) *SimulatedEvaluator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &SimulatedEvaluator{
		rng: rand.New(rand.NewSource(seed)),
		now: time.Now,
	}
}

// Evaluate scores the payload. The only failure mode is a missing
// payload, rejected with an invalid input error.
func (e *SimulatedEvaluator) Evaluate(payload []byte) (models.QualityResult, error) {
	if len(payload) == 0 {
		return models.QualityResult{}, apperrors.NewInvalidInputError("missing image payload", nil)
	}

	e.mu.Lock()
	clarity := e.rng.Intn(25) + 70

	brightness := models.BrightnessGood
	switch b := e.rng.Float64(); {
	case b < 0.15:
		brightness = models.BrightnessTooDark
	case b > 0.85:
		brightness = models.BrightnessTooBright
	}

	angle := models.AngleAppropriate
	if e.rng.Float64() <= 0.2 {
		angle = models.AngleNeedsAdjustment
	}
	e.mu.Unlock()

	return Compose(clarity, brightness, angle, e.now().UTC()), nil
}

// FixedEvaluator returns a canned result, for tests and fixtures.
type FixedEvaluator struct {
	Result models.QualityResult
	Err    error
}

func (e *FixedEvaluator) Evaluate(payload []byte) (models.QualityResult, error) {
	if len(payload) == 0 {
		return models.QualityResult{}, apperrors.NewInvalidInputError("missing image payload", nil)
	}
	if e.Err != nil {
		return models.QualityResult{}, e.Err
	}
	return e.Result, nil
}
