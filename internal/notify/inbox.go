package notify

import (
	"context"
	"time"

	"github.com/google/uuid"

	apperrors "go-dental-review/internal/errors"
	"go-dental-review/internal/logger"
	"go-dental-review/internal/repository"
	"go-dental-review/pkg/models"
)

// Inbox persists dispatched events as per-user notifications and keeps
// the read/unread bookkeeping the notification views need. It doubles
// as a Dispatcher so it can sit in the workflow fan-out.
type Inbox struct {
	notifications *repository.Collection[models.Notification]
	now           func() time.Time
}

func NewInbox(notifications *repository.Collection[models.Notification]) *Inbox {
	return &Inbox{notifications: notifications, now: time.Now}
}

func (i *Inbox) Name() string { return "inbox_dispatcher" }

// Emit stores the event as an unread notification for its target user.
func (i *Inbox) Emit(ctx context.Context, event models.NotificationEvent) {
	n := models.Notification{
		ID:        uuid.NewString(),
		UserID:    event.UserID,
		Kind:      event.Kind,
		Title:     event.Title,
		Message:   event.Message,
		RelatedID: event.RelatedID,
		Priority:  event.Priority,
		CreatedAt: i.now().UTC(),
	}
	if err := i.notifications.Insert(ctx, n); err != nil {
		logger.WithError(err).WithField("user_id", event.UserID).
			Error("Failed to store notification")
	}
}

// ListForUser returns the user's notifications, newest first.
func (i *Inbox) ListForUser(ctx context.Context, userID string, unreadOnly bool) ([]models.Notification, error) {
	items, err := i.notifications.Filter(ctx, func(n *models.Notification) bool {
		return n.UserID == userID && (!unreadOnly || !n.Read)
	})
	if err != nil {
		return nil, err
	}
	// Insertion order is oldest first; reverse for the inbox view.
	for l, r := 0, len(items)-1; l < r; l, r = l+1, r-1 {
		items[l], items[r] = items[r], items[l]
	}
	return items, nil
}

// MarkRead flags one notification as read.
func (i *Inbox) MarkRead(ctx context.Context, notificationID string) error {
	err := i.notifications.Update(ctx, notificationID, func(n *models.Notification) error {
		n.Read = true
		return nil
	})
	if err == repository.ErrNotFound {
		return apperrors.NewNotFoundError("notification not found", err)
	}
	return err
}

// MarkAllRead flags every notification of the user as read.
func (i *Inbox) MarkAllRead(ctx context.Context, userID string) error {
	items, err := i.notifications.Filter(ctx, func(n *models.Notification) bool {
		return n.UserID == userID && !n.Read
	})
	if err != nil {
		return err
	}
	for _, n := range items {
		if err := i.MarkRead(ctx, n.ID); err != nil {
			return err
		}
	}
	return nil
}

// UnreadCount reports how many unread notifications the user has.
func (i *Inbox) UnreadCount(ctx context.Context, userID string) (int, error) {
	items, err := i.ListForUser(ctx, userID, true)
	if err != nil {
		return 0, err
	}
	return len(items), nil
}
