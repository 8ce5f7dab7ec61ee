package models

// FindingType is the clinical category of a detected anomaly.
type FindingType string

const (
	FindingCaries        FindingType = "caries"
	FindingCalculus      FindingType = "calculus"
	FindingGingivitis    FindingType = "gingivitis"
	FindingDiscoloration FindingType = "discoloration"
	FindingRecession     FindingType = "recession"
)

// Severity grades a single finding.
type Severity string

const (
	SeverityMild     Severity = "mild"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
)

// Finding is a single detected clinical abnormality.
type Finding struct {
	ID          string      `json:"id"`
	Type        FindingType `json:"type"`
	Confidence  int         `json:"confidence"` // 0-100
	Location    string      `json:"location"`
	Severity    Severity    `json:"severity"`
	Description string      `json:"description"`
}
