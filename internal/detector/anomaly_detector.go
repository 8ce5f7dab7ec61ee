// Package detector produces typed, confidence-scored clinical findings
// from an opaque image payload. The simulated detector reproduces the
// reference model's category rules; a real model or an annotated
// fixture can replace it behind the same contract.
package detector

import (
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "go-dental-review/internal/errors"
	"go-dental-review/pkg/models"
)

// Detector turns an image payload into zero or more findings.
type Detector interface {
	Detect(payload []byte) ([]models.Finding, error)
}

// SimulatedDetector evaluates five independent clinical categories
// against a seeded random source. Caries may contribute 1-3 findings
// per pass; every other category contributes at most one.
type SimulatedDetector struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulatedDetector creates a simulated detector. A zero seed
// selects a time-based seed.
func NewSimulatedDetector(seed int64) *SimulatedDetector {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &SimulatedDetector{rng: rand.New(rand.NewSource(seed))}
}

// Detect runs every category rule independently. Finding ids are
// globally unique. Order is insertion order and carries no meaning.
func (d *SimulatedDetector) Detect(payload []byte) ([]models.Finding, error) {
	if len(payload) == 0 {
		return nil, apperrors.NewInvalidInputError("missing image payload", nil)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	findings := []models.Finding{}

	// Caries, 40% inclusion, 1-3 findings.
	if d.rng.Float64() > 0.6 {
		count := d.rng.Intn(3) + 1
		for i := 0; i < count; i++ {
			severity := models.SeverityModerate
			if d.rng.Float64() <= 0.5 {
				severity = models.SeveritySevere
			}
			findings = append(findings, models.Finding{
				ID:          uuid.NewString(),
				Type:        models.FindingCaries,
				Confidence:  d.rng.Intn(35) + 60,
				Location:    d.pick(toothSites),
				Severity:    severity,
				Description: "Possible cavity or demineralization on the tooth surface",
			})
		}
	}

	// Calculus, 50% inclusion.
	if d.rng.Float64() > 0.5 {
		findings = append(findings, models.Finding{
			ID:          uuid.NewString(),
			Type:        models.FindingCalculus,
			Confidence:  d.rng.Intn(30) + 55,
			Location:    d.pick(gumRegions),
			Severity:    models.SeverityMild,
			Description: "Mineralized deposits along the gum line or between teeth",
		})
	}

	// Gingivitis, 30% inclusion.
	if d.rng.Float64() > 0.7 {
		severity := models.SeverityModerate
		if d.rng.Float64() > 0.6 {
			severity = models.SeverityMild
		}
		findings = append(findings, models.Finding{
			ID:          uuid.NewString(),
			Type:        models.FindingGingivitis,
			Confidence:  d.rng.Intn(25) + 65,
			Location:    locationGingiva,
			Severity:    severity,
			Description: "Gum tissue appears red, swollen or discolored",
		})
	}

	// Discoloration, 35% inclusion.
	if d.rng.Float64() > 0.65 {
		findings = append(findings, models.Finding{
			ID:          uuid.NewString(),
			Type:        models.FindingDiscoloration,
			Confidence:  d.rng.Intn(30) + 50,
			Location:    d.pick(toothSites),
			Severity:    models.SeverityMild,
			Description: "Uneven coloring or pigment deposits on the tooth surface",
		})
	}

	// Recession, 20% inclusion.
	if d.rng.Float64() > 0.8 {
		severity := models.SeverityModerate
		if d.rng.Float64() <= 0.5 {
			severity = models.SeveritySevere
		}
		findings = append(findings, models.Finding{
			ID:          uuid.NewString(),
			Type:        models.FindingRecession,
			Confidence:  d.rng.Intn(28) + 60,
			Location:    d.pick(toothSites),
			Severity:    severity,
			Description: "Root exposure with receding gum height",
		})
	}

	return findings, nil
}

func (d *SimulatedDetector) pick(catalog []string) string {
	return catalog[d.rng.Intn(len(catalog))]
}

// FixtureDetector returns canned findings, for tests.
type FixtureDetector struct {
	Findings []models.Finding
	Err      error
}

func (d *FixtureDetector) Detect(payload []byte) ([]models.Finding, error) {
	if len(payload) == 0 {
		return nil, apperrors.NewInvalidInputError("missing image payload", nil)
	}
	if d.Err != nil {
		return nil, d.Err
	}
	return d.Findings, nil
}
