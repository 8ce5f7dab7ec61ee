package repository

import (
	"go-dental-review/internal/store"
	"go-dental-review/pkg/models"
)

// Repositories bundles the typed collections the application works
// with, all backed by the same store.
type Repositories struct {
	Users         *Collection[models.User]
	Images        *Collection[models.ImageRecord]
	Analyses      *Collection[models.AnalysisRecord]
	Notifications *Collection[models.Notification]
	Appointments  *Collection[models.Appointment]
	Slots         *Collection[models.AppointmentSlot]
}

// New wires one typed collection per logical store collection.
func New(s store.Store) *Repositories {
	return &Repositories{
		Users:         NewCollection(s, store.CollectionUsers, func(u *models.User) string { return u.ID }),
		Images:        NewCollection(s, store.CollectionImages, func(r *models.ImageRecord) string { return r.ID }),
		Analyses:      NewCollection(s, store.CollectionAnalyses, func(a *models.AnalysisRecord) string { return a.ID }),
		Notifications: NewCollection(s, store.CollectionNotifications, func(n *models.Notification) string { return n.ID }),
		Appointments:  NewCollection(s, store.CollectionAppointments, func(a *models.Appointment) string { return a.ID }),
		Slots:         NewCollection(s, store.CollectionSlots, func(sl *models.AppointmentSlot) string { return sl.ID }),
	}
}
