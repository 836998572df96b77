package domain

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
)

// TableAuditLogs is the table audit records are stored in.
const TableAuditLogs = "audit_logs"

// FieldChange is the before/after pair of a single field.
// A nil side means the field was absent on that side.
type FieldChange struct {
	Old *Value `json:"old,omitempty"`
	New *Value `json:"new,omitempty"`
}

// Equal reports whether both sides match by presence and value.
func (c FieldChange) Equal(o FieldChange) bool {
	return sideEqual(c.Old, o.Old) && sideEqual(c.New, o.New)
}

func sideEqual(a, b *Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

// FieldChanges maps field names to their changes.
type FieldChanges map[string]FieldChange

// Fields returns the changed field names in ascending order.
func (c FieldChanges) Fields() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Equal reports structural equality of two change maps.
func (c FieldChanges) Equal(o FieldChanges) bool {
	if len(c) != len(o) {
		return false
	}
	for name, change := range c {
		other, ok := o[name]
		if !ok || !change.Equal(other) {
			return false
		}
	}
	return true
}

// Marshal serializes the map to JSON. Keys are emitted in sorted order,
// so structurally equal maps always produce identical bytes.
// An empty map serializes to nil (stored as SQL NULL).
func (c FieldChanges) Marshal() ([]byte, error) {
	if len(c) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(map[string]FieldChange(c))
	if err != nil {
		return nil, fmt.Errorf("marshal field changes: %w", err)
	}
	return data, nil
}

// UnmarshalFieldChanges reconstructs a map serialized by Marshal.
// Empty input yields a nil map.
func UnmarshalFieldChanges(data []byte) (FieldChanges, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	var out map[string]FieldChange
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("unmarshal field changes: %w", err)
	}
	return FieldChanges(out), nil
}

// ChangeRecord describes one entity's mutation within a committed unit of work.
type ChangeRecord struct {
	EntityTable string
	EntityKey   string
	Action      AuditAction
	OccurredAt  time.Time
	Changes     FieldChanges
}

// AuditRecord is the durable form of a ChangeRecord.
type AuditRecord struct {
	ID           uuid.UUID
	UnitOfWorkID string
	TableName    string
	EntityKey    string
	Action       AuditAction
	Timestamp    time.Time
	Changes      FieldChanges
}

// NewAuditRecord assigns an identity to a change record.
func NewAuditRecord(id uuid.UUID, unitOfWorkID string, c ChangeRecord) AuditRecord {
	return AuditRecord{
		ID:           id,
		UnitOfWorkID: unitOfWorkID,
		TableName:    c.EntityTable,
		EntityKey:    c.EntityKey,
		Action:       c.Action,
		Timestamp:    c.OccurredAt,
		Changes:      c.Changes,
	}
}

// AuditFilter narrows audit history to one table and/or entity key.
type AuditFilter struct {
	TableName string
	EntityKey string
}
