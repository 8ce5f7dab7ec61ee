// Package notify is the outbound notification boundary. The workflow
// emits events here fire-and-forget; no return value flows back into
// the core.
package notify

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"go-dental-review/internal/logger"
	"go-dental-review/pkg/models"
)

// Dispatcher receives workflow-emitted notification events.
type Dispatcher interface {
	Emit(ctx context.Context, event models.NotificationEvent)
	Name() string
}

// LoggingDispatcher writes every event to the structured log.
type LoggingDispatcher struct {
	log *logrus.Logger
}

// NewLoggingDispatcher creates a dispatcher backed by the given logger,
// or the package logger when nil.
func NewLoggingDispatcher(log *logrus.Logger) *LoggingDispatcher {
	if log == nil {
		log = logger.Logger
	}
	return &LoggingDispatcher{log: log}
}

func (d *LoggingDispatcher) Emit(ctx context.Context, event models.NotificationEvent) {
	fields := logrus.Fields{
		"kind":       event.Kind,
		"user_id":    event.UserID,
		"related_id": event.RelatedID,
		"priority":   event.Priority,
	}
	switch event.Kind {
	case models.EventHighRiskAlert:
		d.log.WithFields(fields).Warn("High risk alert emitted")
	default:
		d.log.WithFields(fields).Info("Notification emitted")
	}
}

func (d *LoggingDispatcher) Name() string { return "logging_dispatcher" }

// MultiDispatcher fans an event out to several dispatchers
// concurrently. A panicking dispatcher is logged and does not take the
// others down.
type MultiDispatcher struct {
	mu          sync.RWMutex
	dispatchers []Dispatcher
}

func NewMultiDispatcher(dispatchers ...Dispatcher) *MultiDispatcher {
	return &MultiDispatcher{dispatchers: dispatchers}
}

// Subscribe adds a dispatcher to the fan-out set.
func (m *MultiDispatcher) Subscribe(d Dispatcher) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dispatchers = append(m.dispatchers, d)
}

func (m *MultiDispatcher) Emit(ctx context.Context, event models.NotificationEvent) {
	m.mu.RLock()
	targets := make([]Dispatcher, len(m.dispatchers))
	copy(targets, m.dispatchers)
	m.mu.RUnlock()

	var wg sync.WaitGroup
	for _, d := range targets {
		wg.Add(1)
		go func(d Dispatcher) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					logger.WithField("dispatcher", d.Name()).
						WithField("panic", r).
						Error("Dispatcher panicked while handling event")
				}
			}()
			d.Emit(ctx, event)
		}(d)
	}
	wg.Wait()
}

func (m *MultiDispatcher) Name() string { return "multi_dispatcher" }

// CaptureDispatcher records events for test assertions.
type CaptureDispatcher struct {
	mu     sync.Mutex
	events []models.NotificationEvent
}

func NewCaptureDispatcher() *CaptureDispatcher {
	return &CaptureDispatcher{}
}

func (d *CaptureDispatcher) Emit(ctx context.Context, event models.NotificationEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
}

func (d *CaptureDispatcher) Name() string { return "capture_dispatcher" }

// Events returns a copy of everything captured so far.
func (d *CaptureDispatcher) Events() []models.NotificationEvent {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]models.NotificationEvent, len(d.events))
	copy(out, d.events)
	return out
}
