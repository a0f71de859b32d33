// Package service provides the activity registry service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	eventqueue "github.com/okian/mergington/internal/adapters/mq/queue"
	workerpool "github.com/okian/mergington/internal/adapters/mq/worker"
	"github.com/okian/mergington/internal/adapters/repository"
	"github.com/okian/mergington/internal/domain/journal"
	"github.com/okian/mergington/internal/domain/model"
	"github.com/okian/mergington/internal/domain/seed"
	"github.com/okian/mergington/internal/domain/types"
	"github.com/okian/mergington/pkg/logger"
	"github.com/okian/mergington/pkg/metrics"
	"github.com/okian/mergington/pkg/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const recentChangesInStats = 10

// Service owns the activity registry and the roster change pipeline.
type Service struct {
	mu sync.RWMutex

	// Core components
	registry   repository.Store
	eventQueue *eventqueue.InMemoryQueue
	workerPool *workerpool.Pool
	journal    *journal.Journal

	// Configuration
	dataset         seed.Dataset
	enforceCapacity bool
	workerCount     int
	queueSize       int
	journalSize     int

	// State
	started bool

	logger logger.Logger
	tracer trace.Tracer
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithSeed sets the dataset the registry starts from.
func WithSeed(ds seed.Dataset) Option {
	return func(s *Service) {
		if len(ds) > 0 {
			s.dataset = ds
		}
	}
}

// WithCapacityEnforcement rejects signups to full activities.
func WithCapacityEnforcement(enabled bool) Option {
	return func(s *Service) {
		s.enforceCapacity = enabled
	}
}

// WithWorkerCount sets the number of roster change workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the roster change queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithJournalSize sets how many roster changes are kept for /stats.
func WithJournalSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.journalSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTracer sets the tracer used for operation spans.
func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// New constructs a Service. The registry is loaded from the seed right away
// and is readable and writable before Start.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: runtime.NumCPU(),
		queueSize:   1024,
		journalSize: 50,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.dataset == nil {
		s.dataset = seed.Default()
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("activities")
	}
	if s.tracer == nil {
		s.tracer = tracing.Tracer()
	}

	records := make([]repository.Record, 0, len(s.dataset))
	for name, a := range s.dataset {
		records = append(records, repository.Record{
			Name:            name,
			Description:     a.Description,
			Schedule:        a.Schedule,
			MaxParticipants: a.MaxParticipants,
			Participants:    a.Participants,
		})
	}
	s.registry = repository.NewMemoryStore(records, repository.WithCapacityEnforcement(s.enforceCapacity))
	s.journal = journal.New(journal.WithCapacity(s.journalSize))
	return s
}

// Start launches the roster change pipeline.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.logger.Info(ctx, "starting activities service...")

	s.eventQueue = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))
	s.workerPool = workerpool.NewPool(s.workerCount, s.eventQueue, s.journal)
	// Workers outlive the start-up context; Stop ends them by closing the queue.
	s.workerPool.Start(context.WithoutCancel(ctx))

	s.started = true
	s.logger.Info(ctx, "activities service started",
		logger.Int("activities", s.registry.Count(ctx)),
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Bool("enforceCapacity", s.enforceCapacity),
	)
	return nil
}

// Stop drains the roster change pipeline. The registry stays usable.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping activities service...")

	if err := s.workerPool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "roster workers did not drain", logger.Error(err))
	}

	s.started = false
	s.logger.Info(ctx, "activities service stopped",
		logger.Int64("rosterChanges", s.journal.Total()),
	)
}

// ListActivities returns every activity keyed by name.
func (s *Service) ListActivities(ctx context.Context) map[string]types.Activity {
	_, span := s.tracer.Start(ctx, "activities.list")
	defer span.End()

	records := s.registry.List(ctx)
	out := make(map[string]types.Activity, len(records))
	for _, r := range records {
		out[r.Name] = types.Activity{
			Description:     r.Description,
			Schedule:        r.Schedule,
			MaxParticipants: r.MaxParticipants,
			Participants:    r.Participants,
		}
	}
	span.SetAttributes(attribute.Int("activities.count", len(out)))
	return out
}

// Signup adds email to the roster of activity.
func (s *Service) Signup(ctx context.Context, activity, email string) (string, error) {
	ctx, span := s.tracer.Start(ctx, "activities.signup",
		trace.WithAttributes(attribute.String("activity", activity)))
	defer span.End()

	enrolled, err := s.registry.Signup(ctx, activity, email)
	if err != nil {
		s.reject(ctx, span, "signup", activity, err)
		return "", fmt.Errorf("signup for %q: %w", activity, err)
	}

	metrics.RecordSignup()
	span.SetAttributes(attribute.String("outcome", "signed_up"), attribute.Int("enrolled", enrolled))
	s.publish(ctx, model.NewRosterEvent(model.ChangeSignup, activity, email, enrolled))
	return fmt.Sprintf("Signed up %s for %s", email, activity), nil
}

// Remove deletes email from the roster of activity.
func (s *Service) Remove(ctx context.Context, activity, email string) (string, error) {
	ctx, span := s.tracer.Start(ctx, "activities.remove",
		trace.WithAttributes(attribute.String("activity", activity)))
	defer span.End()

	enrolled, err := s.registry.Remove(ctx, activity, email)
	if err != nil {
		s.reject(ctx, span, "remove", activity, err)
		return "", fmt.Errorf("remove from %q: %w", activity, err)
	}

	metrics.RecordRemoval()
	span.SetAttributes(attribute.String("outcome", "removed"), attribute.Int("enrolled", enrolled))
	s.publish(ctx, model.NewRosterEvent(model.ChangeRemoval, activity, email, enrolled))
	return fmt.Sprintf("Removed %s from %s", email, activity), nil
}

// RecentChanges returns up to n roster changes, newest first.
func (s *Service) RecentChanges(n int) []model.RosterEvent {
	return s.journal.Recent(n)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]any{
		"started":         s.started,
		"activities":      s.registry.Count(ctx),
		"participants":    s.registry.Participants(ctx),
		"workerCount":     s.workerCount,
		"queueSize":       s.queueSize,
		"enforceCapacity": s.enforceCapacity,
		"rosterChanges":   s.journal.Total(),
		"recentChanges":   s.journal.Recent(recentChangesInStats),
	}

	if s.started {
		stats["queueLength"] = s.eventQueue.Len(ctx)
		stats["processed"] = s.workerPool.Processed()
	}
	return stats
}

// publish hands ev to the pipeline. It never blocks and never fails the caller.
func (s *Service) publish(ctx context.Context, ev model.RosterEvent) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		// Without workers the journal is written inline.
		_ = s.journal.Record(ctx, ev)
		return
	}
	if !s.eventQueue.Enqueue(ctx, ev) {
		s.logger.Warn(ctx, "roster change dropped",
			logger.String("event_id", ev.ID),
			logger.String("activity", ev.Activity),
		)
	}
}

func (s *Service) reject(ctx context.Context, span trace.Span, op, activity string, err error) {
	reason := rejectionReason(err)
	metrics.RecordRejection(op, reason)
	span.SetAttributes(attribute.String("outcome", reason))
	span.SetStatus(codes.Error, err.Error())
	s.logger.Debug(ctx, "roster operation rejected",
		logger.String("operation", op),
		logger.String("activity", activity),
		logger.String("reason", reason),
	)
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, repository.ErrActivityNotFound):
		return "not_found"
	case errors.Is(err, repository.ErrAlreadySignedUp):
		return "already_signed_up"
	case errors.Is(err, repository.ErrNotSignedUp):
		return "not_signed_up"
	case errors.Is(err, repository.ErrActivityFull):
		return "activity_full"
	default:
		return "internal_error"
	}
}
