package user

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/kbmproject/kbm-backend/internal/domain"
	"github.com/kbmproject/kbm-backend/internal/query"
)

var _ userRepo = &userRepoMock{}

type userRepoMock struct {
	GetByIDFunc              func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	ExistsByUsernameFunc     func(ctx context.Context, username string, exclude *uuid.UUID) (bool, error)
	ExistsByEmailFunc        func(ctx context.Context, email string, exclude *uuid.UUID) (bool, error)
	ActiveFunc               func() query.Collection[domain.User]
	ActiveInOrganizationFunc func(orgID uuid.UUID) query.Collection[domain.User]
	PersistFunc              func(ctx context.Context, state domain.EntityState, e domain.Entity) error

	calls struct {
		GetByID []struct {
			Ctx context.Context
			ID  uuid.UUID
		}
		ExistsByUsername []struct {
			Username string
			Exclude  *uuid.UUID
		}
		ExistsByEmail []struct {
			Email   string
			Exclude *uuid.UUID
		}
		ActiveInOrganization []struct {
			OrgID uuid.UUID
		}
		Persist []struct {
			State  domain.EntityState
			Entity domain.Entity
		}
	}
	lockGetByID              sync.RWMutex
	lockExistsByUsername     sync.RWMutex
	lockExistsByEmail        sync.RWMutex
	lockActiveInOrganization sync.RWMutex
	lockPersist              sync.RWMutex
}

func (mock *userRepoMock) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if mock.GetByIDFunc == nil {
		panic("userRepoMock.GetByIDFunc: method is nil but userRepo.GetByID was just called")
	}
	mock.lockGetByID.Lock()
	mock.calls.GetByID = append(mock.calls.GetByID, struct {
		Ctx context.Context
		ID  uuid.UUID
	}{Ctx: ctx, ID: id})
	mock.lockGetByID.Unlock()
	return mock.GetByIDFunc(ctx, id)
}

func (mock *userRepoMock) GetByIDCalls() []struct {
	Ctx context.Context
	ID  uuid.UUID
} {
	mock.lockGetByID.RLock()
	defer mock.lockGetByID.RUnlock()
	return mock.calls.GetByID
}

func (mock *userRepoMock) ExistsByUsername(ctx context.Context, username string, exclude *uuid.UUID) (bool, error) {
	if mock.ExistsByUsernameFunc == nil {
		panic("userRepoMock.ExistsByUsernameFunc: method is nil but userRepo.ExistsByUsername was just called")
	}
	mock.lockExistsByUsername.Lock()
	mock.calls.ExistsByUsername = append(mock.calls.ExistsByUsername, struct {
		Username string
		Exclude  *uuid.UUID
	}{Username: username, Exclude: exclude})
	mock.lockExistsByUsername.Unlock()
	return mock.ExistsByUsernameFunc(ctx, username, exclude)
}

func (mock *userRepoMock) ExistsByUsernameCalls() []struct {
	Username string
	Exclude  *uuid.UUID
} {
	mock.lockExistsByUsername.RLock()
	defer mock.lockExistsByUsername.RUnlock()
	return mock.calls.ExistsByUsername
}

func (mock *userRepoMock) ExistsByEmail(ctx context.Context, email string, exclude *uuid.UUID) (bool, error) {
	if mock.ExistsByEmailFunc == nil {
		panic("userRepoMock.ExistsByEmailFunc: method is nil but userRepo.ExistsByEmail was just called")
	}
	mock.lockExistsByEmail.Lock()
	mock.calls.ExistsByEmail = append(mock.calls.ExistsByEmail, struct {
		Email   string
		Exclude *uuid.UUID
	}{Email: email, Exclude: exclude})
	mock.lockExistsByEmail.Unlock()
	return mock.ExistsByEmailFunc(ctx, email, exclude)
}

func (mock *userRepoMock) ExistsByEmailCalls() []struct {
	Email   string
	Exclude *uuid.UUID
} {
	mock.lockExistsByEmail.RLock()
	defer mock.lockExistsByEmail.RUnlock()
	return mock.calls.ExistsByEmail
}

func (mock *userRepoMock) Active() query.Collection[domain.User] {
	if mock.ActiveFunc == nil {
		panic("userRepoMock.ActiveFunc: method is nil but userRepo.Active was just called")
	}
	return mock.ActiveFunc()
}

func (mock *userRepoMock) ActiveInOrganization(orgID uuid.UUID) query.Collection[domain.User] {
	if mock.ActiveInOrganizationFunc == nil {
		panic("userRepoMock.ActiveInOrganizationFunc: method is nil but userRepo.ActiveInOrganization was just called")
	}
	mock.lockActiveInOrganization.Lock()
	mock.calls.ActiveInOrganization = append(mock.calls.ActiveInOrganization, struct {
		OrgID uuid.UUID
	}{OrgID: orgID})
	mock.lockActiveInOrganization.Unlock()
	return mock.ActiveInOrganizationFunc(orgID)
}

func (mock *userRepoMock) ActiveInOrganizationCalls() []struct{ OrgID uuid.UUID } {
	mock.lockActiveInOrganization.RLock()
	defer mock.lockActiveInOrganization.RUnlock()
	return mock.calls.ActiveInOrganization
}

func (mock *userRepoMock) Persist(ctx context.Context, state domain.EntityState, e domain.Entity) error {
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

func (mock *userRepoMock) PersistCalls() []struct {
	State  domain.EntityState
	Entity domain.Entity
} {
	mock.lockPersist.RLock()
	defer mock.lockPersist.RUnlock()
	return mock.calls.Persist
}

var _ orgRepo = &orgRepoMock{}

type orgRepoMock struct {
	GetByIDFunc func(ctx context.Context, id uuid.UUID) (*domain.Organization, error)

	calls struct {
		GetByID []struct {
			ID uuid.UUID
		}
	}
	lockGetByID sync.RWMutex
}

func (mock *orgRepoMock) GetByID(ctx context.Context, id uuid.UUID) (*domain.Organization, error) {
	if mock.GetByIDFunc == nil {
		panic("orgRepoMock.GetByIDFunc: method is nil but orgRepo.GetByID was just called")
	}
	mock.lockGetByID.Lock()
	mock.calls.GetByID = append(mock.calls.GetByID, struct{ ID uuid.UUID }{ID: id})
	mock.lockGetByID.Unlock()
	return mock.GetByIDFunc(ctx, id)
}

func (mock *orgRepoMock) GetByIDCalls() []struct{ ID uuid.UUID } {
	mock.lockGetByID.RLock()
	defer mock.lockGetByID.RUnlock()
	return mock.calls.GetByID
}

// auditStoreMock records appended audit records.
type auditStoreMock struct {
	AppendFunc func(ctx context.Context, records []domain.AuditRecord) error

	mu      sync.Mutex
	records []domain.AuditRecord
}

func (mock *auditStoreMock) Append(ctx context.Context, records []domain.AuditRecord) error {
	if mock.AppendFunc != nil {
		if err := mock.AppendFunc(ctx, records); err != nil {
			return err
		}
	}
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
