package models

import "time"

// Brightness classifies the lighting of an image.
type Brightness string

const (
	BrightnessTooDark   Brightness = "too_dark"
	BrightnessGood      Brightness = "good"
	BrightnessTooBright Brightness = "too_bright"
)

// Angle classifies the framing of an image.
type Angle string

const (
	AngleAppropriate     Angle = "appropriate"
	AngleNeedsAdjustment Angle = "needs_adjustment"
)

// QualityResult is the outcome of the pre-analysis quality gate.
// Immutable once produced; attached to exactly one image record.
type QualityResult struct {
	Passed          bool       `json:"passed"`
	OverallScore    int        `json:"overall_score"`
	Clarity         int        `json:"clarity"`
	Brightness      Brightness `json:"brightness"`
	BrightnessScore int        `json:"brightness_score"`
	Angle           Angle      `json:"angle"`
	AngleScore      int        `json:"angle_score"`
	Suggestions     []string   `json:"suggestions"`
	Timestamp       time.Time  `json:"timestamp"`
}
