// Package appointment books follow-up visits against doctor slot
// calendars.
package appointment

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	apperrors "go-dental-review/internal/errors"
	"go-dental-review/internal/logger"
	"go-dental-review/internal/notify"
	"go-dental-review/internal/repository"
	"go-dental-review/pkg/models"
)

const (
	scheduleDays = 14
	dateLayout   = "2006-01-02"
)

// Half-hour slot starts: a morning block and an afternoon block.
var slotTimes = []string{
	"09:00", "09:30", "10:00", "10:30", "11:00", "11:30",
	"14:00", "14:30", "15:00", "15:30", "16:00", "16:30",
}

// Scheduler owns the slot calendar and the bookings made against it.
type Scheduler struct {
	slots        *repository.Collection[models.AppointmentSlot]
	appointments *repository.Collection[models.Appointment]
	dispatcher   notify.Dispatcher

	mu    sync.Mutex // serializes Book/Cancel slot claims
	rng   *rand.Rand
	now   func() time.Time
	newID func() string
}

// New creates a scheduler. The dispatcher may be nil. seed drives the
// pre-booked fraction of the generated calendar.
func New(repos *repository.Repositories, dispatcher notify.Dispatcher, seed int64) *Scheduler {
	return &Scheduler{
		slots:        repos.Slots,
		appointments: repos.Appointments,
		dispatcher:   dispatcher,
		rng:          rand.New(rand.NewSource(seed)),
		now:          time.Now,
		newID:        uuid.NewString,
	}
}

// EnsureCalendar generates the next two weeks of slots for the given
// doctors if the calendar is empty. Sundays carry no slots, and about
// a third of the generated slots start out taken.
func (s *Scheduler) EnsureCalendar(ctx context.Context, doctors []models.User) error {
	existing, err := s.slots.List(ctx)
	if err != nil {
		return apperrors.NewInternalError("failed to read slot calendar", err)
	}
	if len(existing) > 0 {
		return nil
	}

	start := s.now()
	var generated int
	for day := 1; day <= scheduleDays; day++ {
		date := start.AddDate(0, 0, day)
		if date.Weekday() == time.Sunday {
			continue
		}
		for _, doctor := range doctors {
			for _, at := range slotTimes {
				slot := models.AppointmentSlot{
					ID:         s.newID(),
					Date:       date.Format(dateLayout),
					Time:       at,
					DoctorID:   doctor.ID,
					DoctorName: doctor.Name,
					Specialty:  doctor.Specialty,
					Hospital:   doctor.Hospital,
					Booked:     s.rng.Float64() < 0.3,
				}
				if err := s.slots.Insert(ctx, slot); err != nil {
					return apperrors.NewInternalError("failed to store slot", err)
				}
				generated++
			}
		}
	}

	logger.WithFields(logrus.Fields{
		"slots":   generated,
		"doctors": len(doctors),
	}).Info("Appointment calendar generated")
	return nil
}

// AvailableDates returns the dates that still have at least one open
// slot, ascending.
func (s *Scheduler) AvailableDates(ctx context.Context) ([]string, error) {
	open, err := s.slots.Filter(ctx, func(sl *models.AppointmentSlot) bool {
		return !sl.Booked
	})
	if err != nil {
		return nil, apperrors.NewInternalError("failed to read slot calendar", err)
	}

	seen := make(map[string]bool)
	var dates []string
	for _, sl := range open {
		if !seen[sl.Date] {
			seen[sl.Date] = true
			dates = append(dates, sl.Date)
		}
	}
	sort.Strings(dates)
	return dates, nil
}

// AvailableSlots returns the open slots on a date, ordered by time
// then doctor name.
func (s *Scheduler) AvailableSlots(ctx context.Context, date string) ([]models.AppointmentSlot, error) {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return nil, apperrors.NewInvalidInputError(fmt.Sprintf("invalid date %q, want YYYY-MM-DD", date), err)
	}

	open, err := s.slots.Filter(ctx, func(sl *models.AppointmentSlot) bool {
		return sl.Date == date && !sl.Booked
	})
	if err != nil {
		return nil, apperrors.NewInternalError("failed to read slot calendar", err)
	}

	sort.SliceStable(open, func(i, j int) bool {
		if open[i].Time != open[j].Time {
			return open[i].Time < open[j].Time
		}
		return open[i].DoctorName < open[j].DoctorName
	})
	return open, nil
}

// Book claims a slot for the patient. A slot already taken yields a
// conflict; a successful booking emits one appointment_confirmed
// event to the patient.
func (s *Scheduler) Book(ctx context.Context, slotID, patientID, note string) (models.Appointment, error) {
	if patientID == "" {
		return models.Appointment{}, apperrors.NewInvalidInputError("missing patient id", nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var slot models.AppointmentSlot
	err := s.slots.Update(ctx, slotID, func(sl *models.AppointmentSlot) error {
		if sl.Booked {
			return apperrors.NewConflictError(fmt.Sprintf("slot %s is already booked", slotID), nil)
		}
		sl.Booked = true
		sl.PatientID = patientID
		slot = *sl
		return nil
	})
	if err == repository.ErrNotFound {
		return models.Appointment{}, apperrors.NewNotFoundError(fmt.Sprintf("slot %s not found", slotID), err)
	}
	if err != nil {
		if _, ok := err.(*apperrors.AppError); ok {
			return models.Appointment{}, err
		}
		return models.Appointment{}, apperrors.NewInternalError("failed to claim slot", err)
	}

	appt := models.Appointment{
		ID:         s.newID(),
		SlotID:     slot.ID,
		PatientID:  patientID,
		DoctorID:   slot.DoctorID,
		DoctorName: slot.DoctorName,
		Date:       slot.Date,
		Time:       slot.Time,
		Hospital:   slot.Hospital,
		Status:     models.AppointmentConfirmed,
		CreatedAt:  s.now().UTC(),
		Note:       note,
	}
	if err := s.appointments.Insert(ctx, appt); err != nil {
		// Release the slot so a failed booking does not block it.
		relErr := s.slots.Update(ctx, slotID, func(sl *models.AppointmentSlot) error {
			sl.Booked = false
			sl.PatientID = ""
			return nil
		})
		if relErr != nil {
			logger.WithError(relErr).WithField("slot_id", slotID).Error("Failed to release slot after booking failure")
		}
		return models.Appointment{}, apperrors.NewInternalError("failed to store appointment", err)
	}

	if s.dispatcher != nil {
		s.dispatcher.Emit(ctx, models.NotificationEvent{
			Kind:      models.EventAppointmentConfirmed,
			UserID:    patientID,
			RelatedID: appt.ID,
			Priority:  models.PriorityMedium,
			Title:     "Appointment confirmed",
			Message: fmt.Sprintf("Your appointment with %s on %s at %s is confirmed.",
				appt.DoctorName, appt.Date, appt.Time),
		})
	}

	logger.WithFields(logrus.Fields{
		"appointment_id": appt.ID,
		"slot_id":        slotID,
		"patient_id":     patientID,
	}).Info("Appointment booked")
	return appt, nil
}

// Cancel marks the appointment cancelled and reopens its slot. Only
// the booking patient may cancel.
func (s *Scheduler) Cancel(ctx context.Context, appointmentID, patientID string) (models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var cancelled models.Appointment
	err := s.appointments.Update(ctx, appointmentID, func(a *models.Appointment) error {
		if a.PatientID != patientID {
			return apperrors.NewUnauthorizedError("appointment belongs to another patient", nil)
		}
		if a.Status == models.AppointmentCancelled {
			return apperrors.NewInvalidStateError("appointment is already cancelled", nil)
		}
		a.Status = models.AppointmentCancelled
		cancelled = *a
		return nil
	})
	if err == repository.ErrNotFound {
		return models.Appointment{}, apperrors.NewNotFoundError(fmt.Sprintf("appointment %s not found", appointmentID), err)
	}
	if err != nil {
		if _, ok := err.(*apperrors.AppError); ok {
			return models.Appointment{}, err
		}
		return models.Appointment{}, apperrors.NewInternalError("failed to cancel appointment", err)
	}

	err = s.slots.Update(ctx, cancelled.SlotID, func(sl *models.AppointmentSlot) error {
		sl.Booked = false
		sl.PatientID = ""
		return nil
	})
	if err != nil && err != repository.ErrNotFound {
		return models.Appointment{}, apperrors.NewInternalError("failed to release slot", err)
	}

	logger.WithFields(logrus.Fields{
		"appointment_id": appointmentID,
		"slot_id":        cancelled.SlotID,
	}).Info("Appointment cancelled")
	return cancelled, nil
}

// ListForUser returns a patient's appointments, soonest visit first.
func (s *Scheduler) ListForUser(ctx context.Context, patientID string) ([]models.Appointment, error) {
	appts, err := s.appointments.Filter(ctx, func(a *models.Appointment) bool {
		return a.PatientID == patientID
	})
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list appointments", err)
	}
	sort.SliceStable(appts, func(i, j int) bool {
		if appts[i].Date != appts[j].Date {
			return appts[i].Date < appts[j].Date
		}
		return appts[i].Time < appts[j].Time
	})
	return appts, nil
}
