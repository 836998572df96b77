package organization

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/kbmproject/kbm-backend/internal/domain"
	"github.com/kbmproject/kbm-backend/internal/query"
)

var _ orgRepo = &orgRepoMock{}

type orgRepoMock struct {
	GetByIDFunc    func(ctx context.Context, id uuid.UUID) (*domain.Organization, error)
	NameExistsFunc func(ctx context.Context, name string, exclude *uuid.UUID) (bool, error)
	ActiveFunc     func() query.Collection[domain.Organization]
	PersistFunc    func(ctx context.Context, state domain.EntityState, e domain.Entity) error

	calls struct {
		NameExists []struct {
			Name    string
			Exclude *uuid.UUID
		}
		Persist []struct {
			State  domain.EntityState
			Entity domain.Entity
		}
	}
	lockNameExists sync.RWMutex
	lockPersist    sync.RWMutex
}

func (mock *orgRepoMock) GetByID(ctx context.Context, id uuid.UUID) (*domain.Organization, error) {
	if mock.GetByIDFunc == nil {
		panic("orgRepoMock.GetByIDFunc: method is nil but orgRepo.GetByID was just called")
	}
	return mock.GetByIDFunc(ctx, id)
}

func (mock *orgRepoMock) NameExists(ctx context.Context, name string, exclude *uuid.UUID) (bool, error) {
	if mock.NameExistsFunc == nil {
		panic("orgRepoMock.NameExistsFunc: method is nil but orgRepo.NameExists was just called")
	}
	mock.lockNameExists.Lock()
	mock.calls.NameExists = append(mock.calls.NameExists, struct {
		Name    string
		Exclude *uuid.UUID
	}{Name: name, Exclude: exclude})
	mock.lockNameExists.Unlock()
	return mock.NameExistsFunc(ctx, name, exclude)
}

func (mock *orgRepoMock) NameExistsCalls() []struct {
	Name    string
	Exclude *uuid.UUID
} {
	mock.lockNameExists.RLock()
	defer mock.lockNameExists.RUnlock()
	return mock.calls.NameExists
}

func (mock *orgRepoMock) Active() query.Collection[domain.Organization] {
	if mock.ActiveFunc == nil {
		panic("orgRepoMock.ActiveFunc: method is nil but orgRepo.Active was just called")
	}
	return mock.ActiveFunc()
}

func (mock *orgRepoMock) Persist(ctx context.Context, state domain.EntityState, e domain.Entity) error {
	mock.lockPersist.Lock()
	mock.calls.Persist = append(mock.calls.Persist, struct {
		State  domain.EntityState
		Entity domain.Entity
	}{State: state, Entity: e})
	mock.lockPersist.Unlock()
	if mock.PersistFunc == nil {
		return nil
	}
	return mock.PersistFunc(ctx, state, e)
}

func (mock *orgRepoMock) PersistCalls() []struct {
	State  domain.EntityState
	Entity domain.Entity
} {
	mock.lockPersist.RLock()
	defer mock.lockPersist.RUnlock()
	return mock.calls.Persist
}

// auditStoreMock records appended audit records.
type auditStoreMock struct {
	mu      sync.Mutex
	records []domain.AuditRecord
}

func (mock *auditStoreMock) Append(ctx context.Context, records []domain.AuditRecord) error {
	mock.mu.Lock()
	mock.records = append(mock.records, records...)
	mock.mu.Unlock()
	return nil
}

func (mock *auditStoreMock) Records() []domain.AuditRecord {
	mock.mu.Lock()
	defer mock.mu.Unlock()
	return mock.records
}
