package audit

import (
	"context"
	"sync"

	"github.com/kbmproject/kbm-backend/internal/domain"
)

// unitOfWorkMock is a mock implementation of UnitOfWork.
type unitOfWorkMock struct {
	IDFunc      func() string
	EntriesFunc func() []domain.TrackedEntry
	CommitFunc  func(ctx context.Context) error

	mu    sync.Mutex
	calls struct {
		Commit []struct{ Ctx context.Context }
	}
}

func (m *unitOfWorkMock) ID() string {
	if m.IDFunc == nil {
		return "uow-test"
	}
	return m.IDFunc()
}

func (m *unitOfWorkMock) Entries() []domain.TrackedEntry {
	if m.EntriesFunc == nil {
		return nil
	}
	return m.EntriesFunc()
}

func (m *unitOfWorkMock) Commit(ctx context.Context) error {
	m.mu.Lock()
	m.calls.Commit = append(m.calls.Commit, struct{ Ctx context.Context }{ctx})
	m.mu.Unlock()
	if m.CommitFunc == nil {
		return nil
	}
	return m.CommitFunc(ctx)
}

func (m *unitOfWorkMock) CommitCalls() []struct{ Ctx context.Context } {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls.Commit
}

// storeMock is a mock implementation of Store.
type storeMock struct {
	AppendFunc func(ctx context.Context, records []domain.AuditRecord) error

	mu    sync.Mutex
	calls struct {
		Append []struct {
			Ctx     context.Context
			Records []domain.AuditRecord
		}
	}
}

func (m *storeMock) Append(ctx context.Context, records []domain.AuditRecord) error {
	m.mu.Lock()
	m.calls.Append = append(m.calls.Append, struct {
		Ctx     context.Context
		Records []domain.AuditRecord
	}{ctx, records})
	m.mu.Unlock()
	if m.AppendFunc == nil {
		return nil
	}
	return m.AppendFunc(ctx, records)
}

func (m *storeMock) AppendCalls() []struct {
	Ctx     context.Context
	Records []domain.AuditRecord
} {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls.Append
}
