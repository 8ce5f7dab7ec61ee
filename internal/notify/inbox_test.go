package notify

import (
	"context"
	"testing"

	apperrors "go-dental-review/internal/errors"
	"go-dental-review/internal/repository"
	"go-dental-review/internal/store"
	"go-dental-review/pkg/models"
)

func newTestInbox() *Inbox {
	repos := repository.New(store.NewMemoryStore())
	return NewInbox(repos.Notifications)
}

func event(userID, title string) models.NotificationEvent {
	return models.NotificationEvent{
		Kind:     models.EventHighRiskAlert,
		UserID:   userID,
		Priority: models.PriorityHigh,
		Title:    title,
		Message:  "message",
	}
}

func TestInbox_EmitAndList(t *testing.T) {
	inbox := newTestInbox()
	ctx := context.Background()

	inbox.Emit(ctx, event("user-1", "first"))
	inbox.Emit(ctx, event("user-1", "second"))
	inbox.Emit(ctx, event("user-2", "other user"))

	items, err := inbox.ListForUser(ctx, "user-1", false)
	if err != nil {
		t.Fatalf("ListForUser() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(items))
	}
	// Newest first.
	if items[0].Title != "second" || items[1].Title != "first" {
		t.Errorf("order = [%s %s], want newest first", items[0].Title, items[1].Title)
	}
	for _, n := range items {
		if n.Read {
			t.Errorf("notification %q starts read", n.Title)
		}
		if n.ID == "" {
			t.Error("notification has empty id")
		}
	}
}

func TestInbox_ReadBookkeeping(t *testing.T) {
	inbox := newTestInbox()
	ctx := context.Background()

	inbox.Emit(ctx, event("user-1", "a"))
	inbox.Emit(ctx, event("user-1", "b"))

	count, err := inbox.UnreadCount(ctx, "user-1")
	if err != nil || count != 2 {
		t.Fatalf("UnreadCount() = (%d, %v), want (2, nil)", count, err)
	}

	items, _ := inbox.ListForUser(ctx, "user-1", false)
	if err := inbox.MarkRead(ctx, items[0].ID); err != nil {
		t.Fatalf("MarkRead() error = %v", err)
	}

	unread, err := inbox.ListForUser(ctx, "user-1", true)
	if err != nil {
		t.Fatalf("ListForUser(unread) error = %v", err)
	}
	if len(unread) != 1 || unread[0].ID == items[0].ID {
		t.Errorf("unread = %d entries, want only the unseen one", len(unread))
	}

	if err := inbox.MarkAllRead(ctx, "user-1"); err != nil {
		t.Fatalf("MarkAllRead() error = %v", err)
	}
	count, _ = inbox.UnreadCount(ctx, "user-1")
	if count != 0 {
		t.Errorf("UnreadCount after MarkAllRead = %d, want 0", count)
	}
}

func TestInbox_MarkReadUnknownID(t *testing.T) {
	inbox := newTestInbox()

	err := inbox.MarkRead(context.Background(), "missing")
	if !apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
		t.Errorf("MarkRead(missing) error = %v, want not_found", err)
	}
}
