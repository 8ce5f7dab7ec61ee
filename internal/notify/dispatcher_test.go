package notify

import (
	"context"
	"sync"
	"testing"

	"go-dental-review/pkg/models"
)

type panicDispatcher struct{}

func (panicDispatcher) Emit(ctx context.Context, event models.NotificationEvent) {
	panic("dispatcher exploded")
}
func (panicDispatcher) Name() string { return "panic_dispatcher" }

func TestMultiDispatcher_FansOutToAll(t *testing.T) {
	a := NewCaptureDispatcher()
	b := NewCaptureDispatcher()
	m := NewMultiDispatcher(a, b)

	m.Emit(context.Background(), models.NotificationEvent{Kind: models.EventReviewCompleted, UserID: "u"})

	if len(a.Events()) != 1 || len(b.Events()) != 1 {
		t.Errorf("events = (%d, %d), want (1, 1)", len(a.Events()), len(b.Events()))
	}
}

func TestMultiDispatcher_PanicDoesNotTakeOthersDown(t *testing.T) {
	capture := NewCaptureDispatcher()
	m := NewMultiDispatcher(panicDispatcher{}, capture)

	m.Emit(context.Background(), models.NotificationEvent{Kind: models.EventHighRiskAlert, UserID: "u"})

	if got := capture.Events(); len(got) != 1 {
		t.Errorf("captured %d events, want 1 despite sibling panic", len(got))
	}
}

func TestMultiDispatcher_Subscribe(t *testing.T) {
	m := NewMultiDispatcher()
	late := NewCaptureDispatcher()

	m.Emit(context.Background(), models.NotificationEvent{Kind: models.EventReviewCompleted})
	m.Subscribe(late)
	m.Emit(context.Background(), models.NotificationEvent{Kind: models.EventReviewCompleted})

	if got := late.Events(); len(got) != 1 {
		t.Errorf("late subscriber saw %d events, want 1", len(got))
	}
}

func TestCaptureDispatcher_ConcurrentEmit(t *testing.T) {
	capture := NewCaptureDispatcher()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			capture.Emit(context.Background(), models.NotificationEvent{Kind: models.EventHighRiskAlert})
		}()
	}
	wg.Wait()

	if got := capture.Events(); len(got) != 50 {
		t.Errorf("captured %d events, want 50", len(got))
	}
}
