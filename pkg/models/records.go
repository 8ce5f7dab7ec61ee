package models

import "time"

// ImageStatus is the lifecycle state of an uploaded image.
type ImageStatus string

const (
	ImageUploaded      ImageStatus = "uploaded"
	ImageQualityPassed ImageStatus = "quality_passed"
	ImageQualityFailed ImageStatus = "quality_failed"
	ImageAnalyzed      ImageStatus = "analyzed"
)

// AnalysisStatus is the lifecycle state of an analysis record.
type AnalysisStatus string

const (
	AnalysisPendingReview     AnalysisStatus = "pending_review"
	AnalysisReviewed          AnalysisStatus = "reviewed"
	AnalysisFollowUpScheduled AnalysisStatus = "follow_up_scheduled"
)

// ImageRecord is an uploaded image moving through the review workflow.
// It is owned by the workflow once created and mutated only through
// workflow operations.
type ImageRecord struct {
	ID           string         `json:"id"`
	UserID       string         `json:"user_id"`
	UserName     string         `json:"user_name"`
	PayloadRef   string         `json:"payload_ref"`
	FileName     string         `json:"file_name,omitempty"`
	FileSize     int64          `json:"file_size,omitempty"`
	UploadedAt   time.Time      `json:"uploaded_at"`
	QualityCheck *QualityResult `json:"quality_check,omitempty"`
	AnalysisID   string         `json:"analysis_id,omitempty"`
	Status       ImageStatus    `json:"status"`
}

// AnalysisRecord holds the findings and risk assessment for one image.
// An image has at most one analysis record.
type AnalysisRecord struct {
	ID             string         `json:"id"`
	ImageID        string         `json:"image_id"`
	UserID         string         `json:"user_id"`
	UserName       string         `json:"user_name"`
	Findings       []Finding      `json:"findings"`
	RiskScore      float64        `json:"risk_score"`
	RiskTier       RiskTier       `json:"risk_tier"`
	Recommendation string         `json:"recommendation"`
	Status         AnalysisStatus `json:"status"`
	ReviewerID     string         `json:"reviewer_id,omitempty"`
	ReviewerName   string         `json:"reviewer_name,omitempty"`
	ReviewedAt     *time.Time     `json:"reviewed_at,omitempty"`
	ReviewerNotes  string         `json:"reviewer_notes,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}

// UserType distinguishes patients from reviewing doctors.
type UserType string

const (
	UserPatient UserType = "patient"
	UserDoctor  UserType = "doctor"
)

// User is an account known to the identity collaborator.
type User struct {
	ID           string    `json:"id"`
	Type         UserType  `json:"type"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Phone        string    `json:"phone,omitempty"`
	Specialty    string    `json:"specialty,omitempty"`
	Hospital     string    `json:"hospital,omitempty"`
	RegisteredAt time.Time `json:"registered_at"`
	LastLoginAt  time.Time `json:"last_login_at"`
}

// Notification is the stored form of a dispatched event, with read
// bookkeeping for the inbox views.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Kind      EventKind `json:"kind"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	RelatedID string    `json:"related_id,omitempty"`
	Priority  Priority  `json:"priority"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// AppointmentStatus is the lifecycle state of a booked appointment.
type AppointmentStatus string

const (
	AppointmentConfirmed AppointmentStatus = "confirmed"
	AppointmentCompleted AppointmentStatus = "completed"
	AppointmentCancelled AppointmentStatus = "cancelled"
)

// AppointmentSlot is one bookable half-hour with a doctor.
type AppointmentSlot struct {
	ID         string `json:"id"`
	Date       string `json:"date"` // YYYY-MM-DD
	Time       string `json:"time"` // HH:MM
	DoctorID   string `json:"doctor_id"`
	DoctorName string `json:"doctor_name"`
	Specialty  string `json:"specialty,omitempty"`
	Hospital   string `json:"hospital,omitempty"`
	Booked     bool   `json:"booked"`
	PatientID  string `json:"patient_id,omitempty"`
}

// Appointment is a confirmed booking of a slot.
type Appointment struct {
	ID         string            `json:"id"`
	SlotID     string            `json:"slot_id"`
	PatientID  string            `json:"patient_id"`
	DoctorID   string            `json:"doctor_id"`
	DoctorName string            `json:"doctor_name"`
	Date       string            `json:"date"`
	Time       string            `json:"time"`
	Hospital   string            `json:"hospital,omitempty"`
	Status     AppointmentStatus `json:"status"`
	CreatedAt  time.Time         `json:"created_at"`
	Note       string            `json:"note,omitempty"`
}
