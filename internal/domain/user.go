package domain

import (
	"time"

	"github.com/google/uuid"
)

// TableUsers is the table users are stored in.
const TableUsers = "users"

// User is a directory user, optionally attached to one organization.
type User struct {
	ID             uuid.UUID
	Name           string
	Username       string
	Email          string
	OrganizationID *uuid.UUID
	CreatedAt      time.Time
	UpdatedAt      time.Time
	DeletedAt      *time.Time
}

// IsDeleted returns true if the user has been soft-deleted.
func (u *User) IsDeleted() bool {
	return u.DeletedAt != nil
}

// SoftDelete marks the user deleted at now.
func (u *User) SoftDelete(now time.Time) {
	u.DeletedAt = &now
	u.UpdatedAt = now
}

func (u *User) EntityTable() string { return TableUsers }

func (u *User) EntityKey() string {
	if u.ID == uuid.Nil {
		return ""
	}
	return u.ID.String()
}

// AuditFields omits updated_at; the audit record carries its own timestamp.
func (u *User) AuditFields() FieldSet {
	return FieldSet{
		"id":              UUIDValue(u.ID),
		"name":            StringValue(u.Name),
		"username":        StringValue(u.Username),
		"email":           StringValue(u.Email),
		"organization_id": OptionalUUID(u.OrganizationID),
		"created_at":      TimeValue(u.CreatedAt),
		"deleted_at":      OptionalTime(u.DeletedAt),
	}
}
