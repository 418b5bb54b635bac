package observer

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"go-kyc-intake/pkg/report"
)

// EventType represents the type of verification event
type EventType string

const (
	// VerificationStarted when a submission enters the pipeline
	VerificationStarted EventType = "verification_started"
	// VerificationCompleted when a submission was scored
	VerificationCompleted EventType = "verification_completed"
	// VerificationFailed when a submission could not be processed
	VerificationFailed EventType = "verification_failed"
)

// VerificationEvent describes one lifecycle transition of a submission.
type VerificationEvent struct {
	EventType    EventType     `json:"event_type"`
	Timestamp    time.Time     `json:"timestamp"`
	RequestID    string        `json:"request_id"`
	DocumentType string        `json:"document_type"`
	Score        int           `json:"score,omitempty"`
	Status       report.Status `json:"status,omitempty"`
	Elapsed      time.Duration `json:"elapsed,omitempty"`
	ErrorMessage string        `json:"error_message,omitempty"`
}

// Observer defines the interface for event observers
type Observer interface {
	OnEvent(ctx context.Context, event VerificationEvent)
	GetObserverName() string
}

// Subject defines the interface for event publishers
type Subject interface {
	Subscribe(observer Observer)
	NotifyObservers(ctx context.Context, event VerificationEvent)
}

// Publisher is the default Subject implementation.
type Publisher struct {
	mu        sync.RWMutex
	observers []Observer
}

// NewPublisher creates an empty publisher.
func NewPublisher() *Publisher {
	return &Publisher{}
}

// Subscribe registers an observer.
func (p *Publisher) Subscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, observer)
}

// NotifyObservers delivers the event to every registered observer, in order.
func (p *Publisher) NotifyObservers(ctx context.Context, event VerificationEvent) {
	p.mu.RLock()
	observers := make([]Observer, len(p.observers))
	copy(observers, p.observers)
	p.mu.RUnlock()

	for _, o := range observers {
		o.OnEvent(ctx, event)
	}
}

// LoggingObserver logs verification events
type LoggingObserver struct {
	logger *logrus.Logger
}

// NewLoggingObserver creates a new logging observer
func NewLoggingObserver(logger *logrus.Logger) Observer {
	return &LoggingObserver{logger: logger}
}

// OnEvent handles verification events by logging them
func (o *LoggingObserver) OnEvent(ctx context.Context, event VerificationEvent) {
	fields := logrus.Fields{
		"event_type":    event.EventType,
		"request_id":    event.RequestID,
		"document_type": event.DocumentType,
	}
	if event.Elapsed > 0 {
		fields["elapsed_ms"] = event.Elapsed.Milliseconds()
	}
	if event.ErrorMessage != "" {
		fields["error"] = event.ErrorMessage
	}

	switch event.EventType {
	case VerificationStarted:
		o.logger.WithFields(fields).Info("Verification started")
	case VerificationCompleted:
		fields["score"] = event.Score
		fields["status"] = event.Status
		o.logger.WithFields(fields).Info("Verification completed")
	case VerificationFailed:
		o.logger.WithFields(fields).Error("Verification failed")
	default:
		o.logger.WithFields(fields).Info("Verification event occurred")
	}
}

// GetObserverName returns the observer name
func (o *LoggingObserver) GetObserverName() string {
	return "logging_observer"
}

// CounterObserver keeps in-memory counts of verification outcomes, exposed
// for health reporting.
type CounterObserver struct {
	mu        sync.Mutex
	started   int64
	failed    int64
	byStatus  map[report.Status]int64
	completed int64
}

// NewCounterObserver creates a counter observer.
func NewCounterObserver() *CounterObserver {
	return &CounterObserver{byStatus: make(map[report.Status]int64)}
}

// OnEvent updates the counters.
func (o *CounterObserver) OnEvent(ctx context.Context, event VerificationEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	switch event.EventType {
	case VerificationStarted:
		o.started++
	case VerificationCompleted:
		o.completed++
		o.byStatus[event.Status]++
	case VerificationFailed:
		o.failed++
	}
}

// GetObserverName returns the observer name
func (o *CounterObserver) GetObserverName() string {
	return "counter_observer"
}

// Snapshot returns the current counter values.
func (o *CounterObserver) Snapshot() map[string]int64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	snapshot := map[string]int64{
		"started":   o.started,
		"completed": o.completed,
		"failed":    o.failed,
	}
	for status, n := range o.byStatus {
		snapshot["status_"+string(status)] = n
	}
	return snapshot
}
