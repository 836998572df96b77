package query

import (
	"cmp"
	"strings"
	"time"

	"github.com/kbmproject/kbm-backend/internal/domain"
)

// Policies of the directory's entity types.
var (
	UserPolicy = MustPolicy(domain.TableUsers, "id",
		func(u domain.User) string { return u.ID.String() },
		stringColumn("username", "username", true, true, func(u domain.User) string { return u.Username }),
		stringColumn("name", "name", true, true, func(u domain.User) string { return u.Name }),
		stringColumn("email", "email", true, true, func(u domain.User) string { return u.Email }),
		timeColumn("created_at", "created_at", func(u domain.User) time.Time { return u.CreatedAt }),
		timeColumn("updated_at", "updated_at", func(u domain.User) time.Time { return u.UpdatedAt }),
	)

	OrganizationPolicy = MustPolicy(domain.TableOrganizations, "id",
		func(o domain.Organization) string { return o.ID.String() },
		stringColumn("name", "name", true, true, func(o domain.Organization) string { return o.Name }),
		Column[domain.Organization]{
			Name:       "address",
			SQL:        "address",
			Orderable:  true,
			Filterable: true,
			Compare: func(a, b domain.Organization) int {
				return compareOptional(a.Address, b.Address)
			},
			Text: func(o domain.Organization) (string, bool) {
				if o.Address == nil {
					return "", false
				}
				return *o.Address, true
			},
		},
		timeColumn("created_at", "created_at", func(o domain.Organization) time.Time { return o.CreatedAt }),
		timeColumn("updated_at", "updated_at", func(o domain.Organization) time.Time { return o.UpdatedAt }),
	)

	// Audit records have no separate creation time; created_at orders by timestamp.
	AuditPolicy = MustPolicy(domain.TableAuditLogs, "id",
		func(r domain.AuditRecord) string { return r.ID.String() },
		timeColumn("timestamp", `"timestamp"`, func(r domain.AuditRecord) time.Time { return r.Timestamp }),
		stringColumn("table_name", "table_name", true, true, func(r domain.AuditRecord) string { return r.TableName }),
		stringColumn("action", "action", true, true, func(r domain.AuditRecord) string { return r.Action.String() }),
		stringColumn("entity_key", "entity_key", false, true, func(r domain.AuditRecord) string { return r.EntityKey }),
		timeColumn("created_at", `"timestamp"`, func(r domain.AuditRecord) time.Time { return r.Timestamp }),
	)
)

// DefaultRegistry holds every policy above.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(UserPolicy, OrganizationPolicy, AuditPolicy)
	if err != nil {
		panic(err)
	}
	return r
}

func stringColumn[T any](name, sql string, orderable, filterable bool, get func(T) string) Column[T] {
	c := Column[T]{
		Name:       name,
		SQL:        sql,
		Orderable:  orderable,
		Filterable: filterable,
		Compare:    func(a, b T) int { return strings.Compare(get(a), get(b)) },
	}
	if filterable {
		c.Text = func(v T) (string, bool) { return get(v), true }
	}
	return c
}

func timeColumn[T any](name, sql string, get func(T) time.Time) Column[T] {
	return Column[T]{
		Name:      name,
		SQL:       sql,
		Orderable: true,
		Compare:   func(a, b T) int { return get(a).Compare(get(b)) },
	}
}

// compareOptional orders nil after any value, as Postgres does for ASC.
func compareOptional[V cmp.Ordered](a, b *V) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return cmp.Compare(*a, *b)
}
