package domain

import (
	"time"

	"github.com/google/uuid"
)

// TableOrganizations is the table organizations are stored in.
const TableOrganizations = "organizations"

// Organization groups users.
type Organization struct {
	ID        uuid.UUID
	Name      string
	Address   *string
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// IsDeleted returns true if the organization has been soft-deleted.
func (o *Organization) IsDeleted() bool {
	return o.DeletedAt != nil
}

// SoftDelete marks the organization deleted at now.
func (o *Organization) SoftDelete(now time.Time) {
	o.DeletedAt = &now
	o.UpdatedAt = now
}

func (o *Organization) EntityTable() string { return TableOrganizations }

func (o *Organization) EntityKey() string {
	if o.ID == uuid.Nil {
		return ""
	}
	return o.ID.String()
}

// AuditFields omits updated_at; the audit record carries its own timestamp.
func (o *Organization) AuditFields() FieldSet {
	return FieldSet{
		"id":         UUIDValue(o.ID),
		"name":       StringValue(o.Name),
		"address":    OptionalString(o.Address),
		"created_at": TimeValue(o.CreatedAt),
		"deleted_at": OptionalTime(o.DeletedAt),
	}
}
