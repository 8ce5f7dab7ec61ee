package quality

import (
	"strings"
	"testing"
	"time"

	apperrors "go-dental-review/internal/errors"
	"go-dental-review/pkg/models"
)

func TestCompose(t *testing.T) {
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		clarity     int
		brightness  models.Brightness
		angle       models.Angle
		wantPassed  bool
		wantOverall int
	}{
		{
			name:        "all sub-checks good passes",
			clarity:     75,
			brightness:  models.BrightnessGood,
			angle:       models.AngleAppropriate,
			wantPassed:  true,
			wantOverall: 83, // (75+85+90)/3
		},
		{
			name:        "clarity at threshold still passes",
			clarity:     70,
			brightness:  models.BrightnessGood,
			angle:       models.AngleAppropriate,
			wantPassed:  true,
			wantOverall: 82,
		},
		{
			name:        "clarity below threshold fails",
			clarity:     69,
			brightness:  models.BrightnessGood,
			angle:       models.AngleAppropriate,
			wantPassed:  false,
			wantOverall: 81,
		},
		{
			name:        "dark image fails despite clarity",
			clarity:     94,
			brightness:  models.BrightnessTooDark,
			angle:       models.AngleAppropriate,
			wantPassed:  false,
			wantOverall: 75, // (94+40+90)/3 = 74.67
		},
		{
			name:        "off angle fails",
			clarity:     80,
			brightness:  models.BrightnessGood,
			angle:       models.AngleNeedsAdjustment,
			wantPassed:  false,
			wantOverall: 73, // (80+85+55)/3
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compose(tt.clarity, tt.brightness, tt.angle, at)

			if got.Passed != tt.wantPassed {
				t.Errorf("Passed = %v, want %v", got.Passed, tt.wantPassed)
			}
			if got.OverallScore != tt.wantOverall {
				t.Errorf("OverallScore = %d, want %d", got.OverallScore, tt.wantOverall)
			}
			if got.Timestamp != at {
				t.Errorf("Timestamp = %v, want %v", got.Timestamp, at)
			}
			if len(got.Suggestions) == 0 {
				t.Error("Suggestions must never be empty")
			}
		})
	}
}

func TestCompose_SuggestionOrder(t *testing.T) {
	// All three sub-checks fail: suggestions come out clarity,
	// brightness, angle.
	got := Compose(50, models.BrightnessTooDark, models.AngleNeedsAdjustment, time.Now())

	if len(got.Suggestions) != 3 {
		t.Fatalf("len(Suggestions) = %d, want 3", len(got.Suggestions))
	}
	if !strings.Contains(got.Suggestions[0], "lens clean") {
		t.Errorf("Suggestions[0] = %q, want clarity hint first", got.Suggestions[0])
	}
	if !strings.Contains(got.Suggestions[1], "Lighting") {
		t.Errorf("Suggestions[1] = %q, want brightness hint second", got.Suggestions[1])
	}
	if !strings.Contains(got.Suggestions[2], "angle") {
		t.Errorf("Suggestions[2] = %q, want angle hint third", got.Suggestions[2])
	}
}

func TestCompose_PassingSuggestion(t *testing.T) {
	got := Compose(85, models.BrightnessGood, models.AngleAppropriate, time.Now())

	if len(got.Suggestions) != 1 {
		t.Fatalf("len(Suggestions) = %d, want 1", len(got.Suggestions))
	}
	if got.Suggestions[0] != "Image quality is good and ready for analysis" {
		t.Errorf("Suggestions[0] = %q", got.Suggestions[0])
	}
}

func TestSimulatedEvaluator_ScoreRanges(t *testing.T) {
	e := NewSimulatedEvaluator(42)
	payload := []byte("fake image bytes")

	for i := 0; i < 200; i++ {
		got, err := e.Evaluate(payload)
		if err != nil {
			t.Fatalf("Evaluate() error = %v", err)
		}

		if got.Clarity < 70 || got.Clarity > 94 {
			t.Fatalf("Clarity = %d, want 70..94", got.Clarity)
		}
		switch got.Brightness {
		case models.BrightnessGood, models.BrightnessTooDark, models.BrightnessTooBright:
		default:
			t.Fatalf("unexpected Brightness %q", got.Brightness)
		}
		if got.Passed && (got.Brightness != models.BrightnessGood || got.Angle != models.AngleAppropriate) {
			t.Fatalf("passed result with failing sub-check: %+v", got)
		}
	}
}

func TestSimulatedEvaluator_EmptyPayload(t *testing.T) {
	e := NewSimulatedEvaluator(1)

	_, err := e.Evaluate(nil)
	if err == nil {
		t.Fatal("Evaluate(nil) error = nil, want invalid input")
	}
	if !apperrors.IsType(err, apperrors.ErrorTypeInvalidInput) {
		t.Errorf("error type = %v, want invalid_input", err)
	}
}

func TestSimulatedEvaluator_SameSeedSameSequence(t *testing.T) {
	a := NewSimulatedEvaluator(7)
	b := NewSimulatedEvaluator(7)
	payload := []byte("x")

	for i := 0; i < 20; i++ {
		ra, _ := a.Evaluate(payload)
		rb, _ := b.Evaluate(payload)
		if ra.Clarity != rb.Clarity || ra.Brightness != rb.Brightness || ra.Angle != rb.Angle {
			t.Fatalf("sequence diverged at %d: %+v vs %+v", i, ra, rb)
		}
	}
}
