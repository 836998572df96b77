package grpcapi

import (
	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/kbmproject/kbm-backend/internal/domain"
	"github.com/kbmproject/kbm-backend/internal/query"
	"github.com/kbmproject/kbm-backend/internal/rpc"
)

func parseID(field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, status.Errorf(codes.InvalidArgument, "invalid %s", field)
	}
	return id, nil
}

func toQuerySpec(p rpc.QueryParams) domain.QuerySpec {
	return domain.QuerySpec{
		Search:    p.QueryString,
		OrderBy:   p.OrderBy,
		Direction: p.Direction,
		Page:      p.Page,
		PageSize:  p.PageSize,
	}
}

func toPageInfo[T any](p rpc.QueryParams, res query.Result[T]) rpc.PageInfo {
	return rpc.PageInfo{
		Page:      p.Page,
		PageSize:  p.PageSize,
		Total:     res.Total,
		OrderBy:   res.OrderColumn,
		Direction: res.Direction.String(),
	}
}

func toUser(u *domain.User) *rpc.User {
	out := &rpc.User{
		ID:        u.ID.String(),
		Name:      u.Name,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
	if u.OrganizationID != nil {
		id := u.OrganizationID.String()
		out.OrganizationID = &id
	}
	return out
}

func toUsers(users []domain.User) []rpc.User {
	out := make([]rpc.User, len(users))
	for i := range users {
		out[i] = *toUser(&users[i])
	}
	return out
}

func toOrganization(o *domain.Organization) *rpc.Organization {
	return &rpc.Organization{
		ID:        o.ID.String(),
		Name:      o.Name,
		Address:   o.Address,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}

func toOrganizations(orgs []domain.Organization) []rpc.Organization {
	out := make([]rpc.Organization, len(orgs))
	for i := range orgs {
		out[i] = *toOrganization(&orgs[i])
	}
	return out
}

func toAuditRecords(records []domain.AuditRecord) []rpc.AuditRecord {
	out := make([]rpc.AuditRecord, len(records))
	for i, r := range records {
		out[i] = rpc.AuditRecord{
			ID:           r.ID.String(),
			UnitOfWorkID: r.UnitOfWorkID,
			TableName:    r.TableName,
			EntityKey:    r.EntityKey,
			Action:       r.Action.String(),
			Timestamp:    r.Timestamp,
			Changes:      r.Changes,
		}
	}
	return out
}
