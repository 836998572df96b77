package domain

import "strings"

// EntityState is the lifecycle state of an entity within a unit of work.
type EntityState string

const (
	EntityStateUnchanged EntityState = "UNCHANGED"
	EntityStateAdded     EntityState = "ADDED"
	EntityStateModified  EntityState = "MODIFIED"
	EntityStateDeleted   EntityState = "DELETED"
)

func (s EntityState) String() string { return string(s) }

func (s EntityState) IsValid() bool {
	switch s {
	case EntityStateUnchanged, EntityStateAdded, EntityStateModified, EntityStateDeleted:
		return true
	}
	return false
}

// AuditAction returns the audit action recorded for the state.
// Unchanged entities have no action.
func (s EntityState) AuditAction() (AuditAction, bool) {
	switch s {
	case EntityStateAdded:
		return AuditActionAdded, true
	case EntityStateModified:
		return AuditActionModified, true
	case EntityStateDeleted:
		return AuditActionDeleted, true
	}
	return "", false
}

// AuditAction represents the kind of mutation recorded in the audit log.
// Values are the upper-case names of the lifecycle states they record.
type AuditAction string

const (
	AuditActionAdded    AuditAction = "ADDED"
	AuditActionModified AuditAction = "MODIFIED"
	AuditActionDeleted  AuditAction = "DELETED"
)

func (a AuditAction) String() string { return string(a) }

func (a AuditAction) IsValid() bool {
	switch a {
	case AuditActionAdded, AuditActionModified, AuditActionDeleted:
		return true
	}
	return false
}

// SortDirection is the ordering direction of a query.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

func (d SortDirection) String() string { return string(d) }

// ParseSortDirection returns SortDesc only for a case-insensitive "desc";
// anything else, including the empty string, is ascending.
func ParseSortDirection(s string) SortDirection {
	if strings.EqualFold(s, string(SortDesc)) {
		return SortDesc
	}
	return SortAsc
}
