package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kbmproject/kbm-backend/internal/domain"
)

// DefaultWriteTimeout bounds the audit write after the business commit.
const DefaultWriteTimeout = 5 * time.Second

// UnitOfWork is a batch of tracked entity mutations that commits atomically.
type UnitOfWork interface {
	ID() string
	Entries() []domain.TrackedEntry
	Commit(ctx context.Context) error
}

// TrackingUnitOfWork is a UnitOfWork that entities are registered with.
type TrackingUnitOfWork interface {
	UnitOfWork
	Add(e domain.Entity, p domain.Persister)
	Track(e domain.Entity, p domain.Persister)
	Remove(e domain.Entity, p domain.Persister)
}

// UnitOfWorkFactory starts a new unit of work per operation.
type UnitOfWorkFactory func() TrackingUnitOfWork

// Store persists audit records.
type Store interface {
	Append(ctx context.Context, records []domain.AuditRecord) error
}

// Config controls auditing.
type Config struct {
	Enabled      bool
	WriteTimeout time.Duration
}

// CommitResult describes a successful CommitWithAudit.
type CommitResult struct {
	UnitOfWorkID string
	Records      []domain.AuditRecord
}

// Option configures a Sink.
type Option func(*Sink)

// WithClock sets the clock used to timestamp change records.
func WithClock(clock func() time.Time) Option {
	return func(s *Sink) { s.differ = NewDiffer(clock) }
}

// WithIDGenerator sets the audit record id generator.
func WithIDGenerator(fn func() uuid.UUID) Option {
	return func(s *Sink) { s.newID = fn }
}

// WithFailureHook is called with the number of records lost on every failed audit write.
func WithFailureHook(fn func(pending int)) Option {
	return func(s *Sink) { s.onFailure = fn }
}

// Sink commits units of work and records their changes.
type Sink struct {
	log          *slog.Logger
	store        Store
	differ       *Differ
	newID        func() uuid.UUID
	enabled      bool
	writeTimeout time.Duration
	onFailure    func(pending int)
}

// NewSink creates a Sink writing to store.
func NewSink(logger *slog.Logger, store Store, cfg Config, opts ...Option) *Sink {
	s := &Sink{
		log:          logger.With("component", "audit"),
		store:        store,
		differ:       NewDiffer(nil),
		newID:        uuid.New,
		enabled:      cfg.Enabled,
		writeTimeout: cfg.WriteTimeout,
	}
	if s.writeTimeout <= 0 {
		s.writeTimeout = DefaultWriteTimeout
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CommitWithAudit commits uow and then appends one audit record per changed
// entity. The two writes are not atomic: when the audit write fails after a
// successful commit the error wraps ErrAuditIncomplete and carries the
// unwritten records.
func (s *Sink) CommitWithAudit(ctx context.Context, uow UnitOfWork) (CommitResult, error) {
	result := CommitResult{UnitOfWorkID: uow.ID()}

	if err := ctx.Err(); err != nil {
		return result, &CommitError{Stage: StageBusiness, UnitOfWorkID: uow.ID(), Err: err}
	}

	// Entries must be read before Commit accepts the changes.
	changes := s.differ.Diff(uow.Entries())

	if err := uow.Commit(ctx); err != nil {
		return result, &CommitError{Stage: StageBusiness, UnitOfWorkID: uow.ID(), Err: err}
	}

	if !s.enabled || len(changes) == 0 {
		return result, nil
	}

	records := make([]domain.AuditRecord, len(changes))
	for i, c := range changes {
		records[i] = domain.NewAuditRecord(s.newID(), uow.ID(), c)
	}

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.writeTimeout)
	defer cancel()

	if err := s.store.Append(writeCtx, records); err != nil {
		s.reportLost(ctx, uow.ID(), records, err)
		return result, &CommitError{
			Stage:        StageAudit,
			UnitOfWorkID: uow.ID(),
			Pending:      records,
			Err:          err,
		}
	}

	result.Records = records
	return result, nil
}

func (s *Sink) reportLost(ctx context.Context, uowID string, records []domain.AuditRecord, err error) {
	for _, r := range records {
		changes, _ := r.Changes.Marshal()
		s.log.ErrorContext(ctx, "audit record not persisted",
			slog.String("unit_of_work_id", uowID),
			slog.String("record_id", r.ID.String()),
			slog.String("table", r.TableName),
			slog.String("entity_key", r.EntityKey),
			slog.String("action", r.Action.String()),
			slog.String("changes", string(changes)),
			slog.String("error", err.Error()),
		)
	}
	if s.onFailure != nil {
		s.onFailure(len(records))
	}
}
