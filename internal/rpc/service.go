package rpc

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "kbm.directory.v1.Directory"

// Method names of the directory service.
const (
	MethodGetUser                = "GetUser"
	MethodCreateUser             = "CreateUser"
	MethodQueryUsers             = "QueryUsers"
	MethodUpdateUser             = "UpdateUser"
	MethodDeleteUser             = "DeleteUser"
	MethodAssociateUser          = "AssociateUser"
	MethodDisassociateUser       = "DisassociateUser"
	MethodQueryOrganizationUsers = "QueryOrganizationUsers"
	MethodGetOrganization        = "GetOrganization"
	MethodCreateOrganization     = "CreateOrganization"
	MethodQueryOrganizations     = "QueryOrganizations"
	MethodUpdateOrganization     = "UpdateOrganization"
	MethodDeleteOrganization     = "DeleteOrganization"
	MethodQueryAuditLog          = "QueryAuditLog"
)

// FullMethod returns the gRPC path of method.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// DirectoryServer is implemented by the gRPC server.
type DirectoryServer interface {
	GetUser(ctx context.Context, req *GetByIDRequest) (*User, error)
	CreateUser(ctx context.Context, req *CreateUserRequest) (*CreateResponse, error)
	QueryUsers(ctx context.Context, req *QueryUsersRequest) (*QueryUsersResponse, error)
	UpdateUser(ctx context.Context, req *UpdateUserRequest) (*User, error)
	DeleteUser(ctx context.Context, req *GetByIDRequest) (*SuccessResponse, error)
	AssociateUser(ctx context.Context, req *AssociateUserRequest) (*SuccessResponse, error)
	DisassociateUser(ctx context.Context, req *DisassociateUserRequest) (*SuccessResponse, error)
	QueryOrganizationUsers(ctx context.Context, req *QueryOrganizationUsersRequest) (*QueryUsersResponse, error)

	GetOrganization(ctx context.Context, req *GetByIDRequest) (*Organization, error)
	CreateOrganization(ctx context.Context, req *CreateOrganizationRequest) (*CreateResponse, error)
	QueryOrganizations(ctx context.Context, req *QueryOrganizationsRequest) (*QueryOrganizationsResponse, error)
	UpdateOrganization(ctx context.Context, req *UpdateOrganizationRequest) (*Organization, error)
	DeleteOrganization(ctx context.Context, req *GetByIDRequest) (*SuccessResponse, error)

	QueryAuditLog(ctx context.Context, req *QueryAuditLogRequest) (*QueryAuditLogResponse, error)
}

// RegisterDirectoryServer registers srv with registrar.
func RegisterDirectoryServer(registrar grpc.ServiceRegistrar, srv DirectoryServer) {
	EnsureCodec()
	registrar.RegisterService(&ServiceDesc, srv)
}

// ServiceDesc describes the directory service. Messages travel as JSON.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DirectoryServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(MethodGetUser, DirectoryServer.GetUser),
		unary(MethodCreateUser, DirectoryServer.CreateUser),
		unary(MethodQueryUsers, DirectoryServer.QueryUsers),
		unary(MethodUpdateUser, DirectoryServer.UpdateUser),
		unary(MethodDeleteUser, DirectoryServer.DeleteUser),
		unary(MethodAssociateUser, DirectoryServer.AssociateUser),
		unary(MethodDisassociateUser, DirectoryServer.DisassociateUser),
		unary(MethodQueryOrganizationUsers, DirectoryServer.QueryOrganizationUsers),
		unary(MethodGetOrganization, DirectoryServer.GetOrganization),
		unary(MethodCreateOrganization, DirectoryServer.CreateOrganization),
		unary(MethodQueryOrganizations, DirectoryServer.QueryOrganizations),
		unary(MethodUpdateOrganization, DirectoryServer.UpdateOrganization),
		unary(MethodDeleteOrganization, DirectoryServer.DeleteOrganization),
		unary(MethodQueryAuditLog, DirectoryServer.QueryAuditLog),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "kbm/directory/v1/directory.json",
}

// unary adapts a typed DirectoryServer method to a grpc.MethodDesc,
// running it through the server's interceptor chain when one is set.
func unary[Req, Resp any](method string, call func(DirectoryServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	fullMethod := FullMethod(method)
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(DirectoryServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(DirectoryServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}
