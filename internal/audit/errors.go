package audit

import (
	"errors"
	"fmt"

	"github.com/kbmproject/kbm-backend/internal/domain"
)

var (
	// ErrBusinessWrite means the unit of work was not committed; nothing was persisted.
	ErrBusinessWrite = errors.New("business write failed")
	// ErrAuditIncomplete means business data was committed but its audit records were not.
	ErrAuditIncomplete = errors.New("audit write incomplete")
)

// Stage identifies which write of a commit failed.
type Stage string

const (
	StageBusiness Stage = "business"
	StageAudit    Stage = "audit"
)

// CommitError reports a failed CommitWithAudit.
type CommitError struct {
	Stage        Stage
	UnitOfWorkID string
	// Pending holds the audit records that were not persisted.
	Pending []domain.AuditRecord
	Err     error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("commit %s: %s stage: %v", e.UnitOfWorkID, e.Stage, e.Err)
}

func (e *CommitError) Unwrap() []error {
	if e.Stage == StageAudit {
		return []error{ErrAuditIncomplete, e.Err}
	}
	return []error{ErrBusinessWrite, e.Err}
}
