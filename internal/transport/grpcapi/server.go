// Package grpcapi serves the directory services over gRPC.
package grpcapi

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/kbmproject/kbm-backend/internal/domain"
	"github.com/kbmproject/kbm-backend/internal/query"
	"github.com/kbmproject/kbm-backend/internal/rpc"
	"github.com/kbmproject/kbm-backend/internal/service/organization"
	"github.com/kbmproject/kbm-backend/internal/service/user"
)

type userService interface {
	Create(ctx context.Context, input user.CreateUserInput) (uuid.UUID, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.User, error)
	Query(ctx context.Context, spec domain.QuerySpec) (query.Result[domain.User], error)
	QueryForOrganization(ctx context.Context, orgID uuid.UUID, spec domain.QuerySpec) (query.Result[domain.User], error)
	Update(ctx context.Context, input user.UpdateUserInput) (*domain.User, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	AssociateToOrganization(ctx context.Context, userID, orgID uuid.UUID) (bool, error)
	DisassociateFromOrganization(ctx context.Context, userID uuid.UUID) (bool, error)
}

type organizationService interface {
	Create(ctx context.Context, input organization.CreateOrganizationInput) (uuid.UUID, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Organization, error)
	Query(ctx context.Context, spec domain.QuerySpec) (query.Result[domain.Organization], error)
	Update(ctx context.Context, input organization.UpdateOrganizationInput) (*domain.Organization, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

type historyService interface {
	Query(ctx context.Context, filter domain.AuditFilter, spec domain.QuerySpec) (query.Result[domain.AuditRecord], error)
}

var _ rpc.DirectoryServer = (*Server)(nil)

// Server implements rpc.DirectoryServer on top of the services.
// Errors are returned as domain errors; the error interceptor converts them.
type Server struct {
	users   userService
	orgs    organizationService
	history historyService
	log     *slog.Logger
}

// NewServer creates a Server.
func NewServer(users userService, orgs organizationService, history historyService, logger *slog.Logger) *Server {
	return &Server{
		users:   users,
		orgs:    orgs,
		history: history,
		log:     logger.With("handler", "grpc"),
	}
}

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

func (s *Server) GetUser(ctx context.Context, req *rpc.GetByIDRequest) (*rpc.User, error) {
	id, err := parseID("id", req.ID)
	if err != nil {
		return nil, err
	}
	u, err := s.users.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return toUser(u), nil
}

func (s *Server) CreateUser(ctx context.Context, req *rpc.CreateUserRequest) (*rpc.CreateResponse, error) {
	id, err := s.users.Create(ctx, user.CreateUserInput{
		Name:     req.Name,
		Username: req.Username,
		Email:    req.Email,
	})
	if err != nil {
		return nil, err
	}
	return &rpc.CreateResponse{ID: id.String()}, nil
}

func (s *Server) QueryUsers(ctx context.Context, req *rpc.QueryUsersRequest) (*rpc.QueryUsersResponse, error) {
	res, err := s.users.Query(ctx, toQuerySpec(req.QueryParams))
	if err != nil {
		return nil, err
	}
	return &rpc.QueryUsersResponse{
		PageInfo: toPageInfo(req.QueryParams, res),
		Users:    toUsers(res.Items),
	}, nil
}

func (s *Server) UpdateUser(ctx context.Context, req *rpc.UpdateUserRequest) (*rpc.User, error) {
	id, err := parseID("id", req.ID)
	if err != nil {
		return nil, err
	}
	u, err := s.users.Update(ctx, user.UpdateUserInput{
		ID:       id,
		Name:     req.Name,
		Username: req.Username,
		Email:    req.Email,
	})
	if err != nil {
		return nil, err
	}
	return toUser(u), nil
}

func (s *Server) DeleteUser(ctx context.Context, req *rpc.GetByIDRequest) (*rpc.SuccessResponse, error) {
	id, err := parseID("id", req.ID)
	if err != nil {
		return nil, err
	}
	ok, err := s.users.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	return &rpc.SuccessResponse{Success: ok}, nil
}

func (s *Server) AssociateUser(ctx context.Context, req *rpc.AssociateUserRequest) (*rpc.SuccessResponse, error) {
	userID, err := parseID("user_id", req.UserID)
	if err != nil {
		return nil, err
	}
	orgID, err := parseID("organization_id", req.OrganizationID)
	if err != nil {
		return nil, err
	}
	ok, err := s.users.AssociateToOrganization(ctx, userID, orgID)
	if err != nil {
		return nil, err
	}
	return &rpc.SuccessResponse{Success: ok}, nil
}

func (s *Server) DisassociateUser(ctx context.Context, req *rpc.DisassociateUserRequest) (*rpc.SuccessResponse, error) {
	userID, err := parseID("user_id", req.UserID)
	if err != nil {
		return nil, err
	}
	ok, err := s.users.DisassociateFromOrganization(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &rpc.SuccessResponse{Success: ok}, nil
}

func (s *Server) QueryOrganizationUsers(ctx context.Context, req *rpc.QueryOrganizationUsersRequest) (*rpc.QueryUsersResponse, error) {
	orgID, err := parseID("organization_id", req.OrganizationID)
	if err != nil {
		return nil, err
	}
	res, err := s.users.QueryForOrganization(ctx, orgID, toQuerySpec(req.QueryParams))
	if err != nil {
		return nil, err
	}
	return &rpc.QueryUsersResponse{
		PageInfo: toPageInfo(req.QueryParams, res),
		Users:    toUsers(res.Items),
	}, nil
}

// ---------------------------------------------------------------------------
// Organizations
// ---------------------------------------------------------------------------

func (s *Server) GetOrganization(ctx context.Context, req *rpc.GetByIDRequest) (*rpc.Organization, error) {
	id, err := parseID("id", req.ID)
	if err != nil {
		return nil, err
	}
	org, err := s.orgs.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return toOrganization(org), nil
}

func (s *Server) CreateOrganization(ctx context.Context, req *rpc.CreateOrganizationRequest) (*rpc.CreateResponse, error) {
	id, err := s.orgs.Create(ctx, organization.CreateOrganizationInput{
		Name:    req.Name,
		Address: req.Address,
	})
	if err != nil {
		return nil, err
	}
	return &rpc.CreateResponse{ID: id.String()}, nil
}

func (s *Server) QueryOrganizations(ctx context.Context, req *rpc.QueryOrganizationsRequest) (*rpc.QueryOrganizationsResponse, error) {
	res, err := s.orgs.Query(ctx, toQuerySpec(req.QueryParams))
	if err != nil {
		return nil, err
	}
	return &rpc.QueryOrganizationsResponse{
		PageInfo:      toPageInfo(req.QueryParams, res),
		Organizations: toOrganizations(res.Items),
	}, nil
}

func (s *Server) UpdateOrganization(ctx context.Context, req *rpc.UpdateOrganizationRequest) (*rpc.Organization, error) {
	id, err := parseID("id", req.ID)
	if err != nil {
		return nil, err
	}
	org, err := s.orgs.Update(ctx, organization.UpdateOrganizationInput{
		ID:      id,
		Name:    req.Name,
		Address: req.Address,
	})
	if err != nil {
		return nil, err
	}
	return toOrganization(org), nil
}

func (s *Server) DeleteOrganization(ctx context.Context, req *rpc.GetByIDRequest) (*rpc.SuccessResponse, error) {
	id, err := parseID("id", req.ID)
	if err != nil {
		return nil, err
	}
	ok, err := s.orgs.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	return &rpc.SuccessResponse{Success: ok}, nil
}

// ---------------------------------------------------------------------------
// Audit log
// ---------------------------------------------------------------------------

func (s *Server) QueryAuditLog(ctx context.Context, req *rpc.QueryAuditLogRequest) (*rpc.QueryAuditLogResponse, error) {
	res, err := s.history.Query(ctx,
		domain.AuditFilter{TableName: req.TableName, EntityKey: req.EntityKey},
		toQuerySpec(req.QueryParams),
	)
	if err != nil {
		return nil, err
	}
	return &rpc.QueryAuditLogResponse{
		PageInfo: toPageInfo(req.QueryParams, res),
		Records:  toAuditRecords(res.Items),
	}, nil
}
