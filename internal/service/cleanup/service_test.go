package cleanup

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kbmproject/kbm-backend/internal/adapter/postgres"
	"github.com/kbmproject/kbm-backend/internal/audit"
	"github.com/kbmproject/kbm-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

var fixedNow = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

type inlineTx struct{}

func (inlineTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type persisted struct {
	State  domain.EntityState
	Entity domain.Entity
}

type userRepoMock struct {
	DeletedBeforeFunc func(ctx context.Context, cutoff time.Time) ([]domain.User, error)

	mu      sync.Mutex
	persist []persisted
}

func (m *userRepoMock) DeletedBefore(ctx context.Context, cutoff time.Time) ([]domain.User, error) {
	return m.DeletedBeforeFunc(ctx, cutoff)
}

func (m *userRepoMock) Persist(ctx context.Context, state domain.EntityState, e domain.Entity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.persist = append(m.persist, persisted{state, e})
	return nil
}

type orgRepoMock struct {
	DeletedBeforeFunc func(ctx context.Context, cutoff time.Time) ([]domain.Organization, error)

	mu      sync.Mutex
	persist []persisted
}

func (m *orgRepoMock) DeletedBefore(ctx context.Context, cutoff time.Time) ([]domain.Organization, error) {
	return m.DeletedBeforeFunc(ctx, cutoff)
}

func (m *orgRepoMock) Persist(ctx context.Context, state domain.EntityState, e domain.Entity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.persist = append(m.persist, persisted{state, e})
	return nil
}

type auditRepoMock struct {
	DeleteBeforeFunc func(ctx context.Context, cutoff time.Time) (int64, error)
	records          []domain.AuditRecord
}

func (m *auditRepoMock) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return m.DeleteBeforeFunc(ctx, cutoff)
}

func (m *auditRepoMock) Append(ctx context.Context, records []domain.AuditRecord) error {
	m.records = append(m.records, records...)
	return nil
}

func newTestService(users *userRepoMock, orgs *orgRepoMock, auditLog *auditRepoMock, cfg Config) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sink := audit.NewSink(logger, auditLog, audit.Config{Enabled: true})
	newUOW := func() audit.TrackingUnitOfWork { return postgres.NewUnitOfWork(inlineTx{}) }
	svc := NewService(logger, users, orgs, auditLog, newUOW, sink, cfg)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func deletedAt(t time.Time) *time.Time { return &t }

// ---------------------------------------------------------------------------
// Run tests
// ---------------------------------------------------------------------------

func TestService_Run_PurgesAndAudits(t *testing.T) {
	t.Parallel()

	old := fixedNow.AddDate(0, 0, -60)
	users := &userRepoMock{
		DeletedBeforeFunc: func(ctx context.Context, cutoff time.Time) ([]domain.User, error) {
			assert.Equal(t, fixedNow.AddDate(0, 0, -30), cutoff)
			return []domain.User{{ID: uuid.New(), Username: "gone", DeletedAt: deletedAt(old)}}, nil
		},
	}
	orgs := &orgRepoMock{
		DeletedBeforeFunc: func(ctx context.Context, cutoff time.Time) ([]domain.Organization, error) {
			return []domain.Organization{{ID: uuid.New(), Name: "Gone Inc", DeletedAt: deletedAt(old)}}, nil
		},
	}
	auditLog := &auditRepoMock{}
	svc := newTestService(users, orgs, auditLog, Config{Retention: 30 * 24 * time.Hour})

	res, err := svc.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, Result{Users: 1, Organizations: 1}, res)

	require.Len(t, users.persist, 1)
	assert.Equal(t, domain.EntityStateDeleted, users.persist[0].State)
	require.Len(t, orgs.persist, 1)
	assert.Equal(t, domain.EntityStateDeleted, orgs.persist[0].State)

	require.Len(t, auditLog.records, 2)
	for _, r := range auditLog.records {
		assert.Equal(t, domain.AuditActionDeleted, r.Action)
		assert.NotEmpty(t, r.Changes)
	}
}

func TestService_Run_NothingToPurge(t *testing.T) {
	t.Parallel()

	users := &userRepoMock{
		DeletedBeforeFunc: func(ctx context.Context, cutoff time.Time) ([]domain.User, error) { return nil, nil },
	}
	orgs := &orgRepoMock{
		DeletedBeforeFunc: func(ctx context.Context, cutoff time.Time) ([]domain.Organization, error) { return nil, nil },
	}
	auditLog := &auditRepoMock{
		DeleteBeforeFunc: func(ctx context.Context, cutoff time.Time) (int64, error) {
			assert.Equal(t, fixedNow.Add(-time.Hour), cutoff)
			return 7, nil
		},
	}
	svc := newTestService(users, orgs, auditLog, Config{Retention: time.Hour, AuditRetention: time.Hour})

	res, err := svc.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, Result{AuditRecords: 7}, res)
	assert.Empty(t, auditLog.records)
}

func TestService_Run_LookupFails(t *testing.T) {
	t.Parallel()

	users := &userRepoMock{
		DeletedBeforeFunc: func(ctx context.Context, cutoff time.Time) ([]domain.User, error) {
			return nil, errors.New("db down")
		},
	}
	svc := newTestService(users, &orgRepoMock{}, &auditRepoMock{}, Config{Retention: time.Hour})

	_, err := svc.Run(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "users")
}
