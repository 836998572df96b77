package rest

import (
	"context"

	"github.com/kbmproject/kbm-backend/internal/rpc"
)

// directoryMock implements directory. Unset funcs panic when called.
type directoryMock struct {
	GetUserFunc                func(ctx context.Context, req *rpc.GetByIDRequest) (*rpc.User, error)
	CreateUserFunc             func(ctx context.Context, req *rpc.CreateUserRequest) (*rpc.CreateResponse, error)
	QueryUsersFunc             func(ctx context.Context, req *rpc.QueryUsersRequest) (*rpc.QueryUsersResponse, error)
	UpdateUserFunc             func(ctx context.Context, req *rpc.UpdateUserRequest) (*rpc.User, error)
	DeleteUserFunc             func(ctx context.Context, req *rpc.GetByIDRequest) (*rpc.SuccessResponse, error)
	AssociateUserFunc          func(ctx context.Context, req *rpc.AssociateUserRequest) (*rpc.SuccessResponse, error)
	DisassociateUserFunc       func(ctx context.Context, req *rpc.DisassociateUserRequest) (*rpc.SuccessResponse, error)
	QueryOrganizationUsersFunc func(ctx context.Context, req *rpc.QueryOrganizationUsersRequest) (*rpc.QueryUsersResponse, error)
	GetOrganizationFunc        func(ctx context.Context, req *rpc.GetByIDRequest) (*rpc.Organization, error)
	CreateOrganizationFunc     func(ctx context.Context, req *rpc.CreateOrganizationRequest) (*rpc.CreateResponse, error)
	QueryOrganizationsFunc     func(ctx context.Context, req *rpc.QueryOrganizationsRequest) (*rpc.QueryOrganizationsResponse, error)
	UpdateOrganizationFunc     func(ctx context.Context, req *rpc.UpdateOrganizationRequest) (*rpc.Organization, error)
	DeleteOrganizationFunc     func(ctx context.Context, req *rpc.GetByIDRequest) (*rpc.SuccessResponse, error)
	QueryAuditLogFunc          func(ctx context.Context, req *rpc.QueryAuditLogRequest) (*rpc.QueryAuditLogResponse, error)
}

func (m *directoryMock) GetUser(ctx context.Context, req *rpc.GetByIDRequest) (*rpc.User, error) {
	return m.GetUserFunc(ctx, req)
}

func (m *directoryMock) CreateUser(ctx context.Context, req *rpc.CreateUserRequest) (*rpc.CreateResponse, error) {
	return m.CreateUserFunc(ctx, req)
}

func (m *directoryMock) QueryUsers(ctx context.Context, req *rpc.QueryUsersRequest) (*rpc.QueryUsersResponse, error) {
	return m.QueryUsersFunc(ctx, req)
}

func (m *directoryMock) UpdateUser(ctx context.Context, req *rpc.UpdateUserRequest) (*rpc.User, error) {
	return m.UpdateUserFunc(ctx, req)
}

func (m *directoryMock) DeleteUser(ctx context.Context, req *rpc.GetByIDRequest) (*rpc.SuccessResponse, error) {
	return m.DeleteUserFunc(ctx, req)
}

func (m *directoryMock) AssociateUser(ctx context.Context, req *rpc.AssociateUserRequest) (*rpc.SuccessResponse, error) {
	return m.AssociateUserFunc(ctx, req)
}

func (m *directoryMock) DisassociateUser(ctx context.Context, req *rpc.DisassociateUserRequest) (*rpc.SuccessResponse, error) {
	return m.DisassociateUserFunc(ctx, req)
}

func (m *directoryMock) QueryOrganizationUsers(ctx context.Context, req *rpc.QueryOrganizationUsersRequest) (*rpc.QueryUsersResponse, error) {
	return m.QueryOrganizationUsersFunc(ctx, req)
}

func (m *directoryMock) GetOrganization(ctx context.Context, req *rpc.GetByIDRequest) (*rpc.Organization, error) {
	return m.GetOrganizationFunc(ctx, req)
}

func (m *directoryMock) CreateOrganization(ctx context.Context, req *rpc.CreateOrganizationRequest) (*rpc.CreateResponse, error) {
	return m.CreateOrganizationFunc(ctx, req)
}

func (m *directoryMock) QueryOrganizations(ctx context.Context, req *rpc.QueryOrganizationsRequest) (*rpc.QueryOrganizationsResponse, error) {
	return m.QueryOrganizationsFunc(ctx, req)
}

func (m *directoryMock) UpdateOrganization(ctx context.Context, req *rpc.UpdateOrganizationRequest) (*rpc.Organization, error) {
	return m.UpdateOrganizationFunc(ctx, req)
}

func (m *directoryMock) DeleteOrganization(ctx context.Context, req *rpc.GetByIDRequest) (*rpc.SuccessResponse, error) {
	return m.DeleteOrganizationFunc(ctx, req)
}

func (m *directoryMock) QueryAuditLog(ctx context.Context, req *rpc.QueryAuditLogRequest) (*rpc.QueryAuditLogResponse, error) {
	return m.QueryAuditLogFunc(ctx, req)
}
