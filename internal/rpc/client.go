package rpc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/connectivity"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
)

// RequestIDHeader is the metadata key carrying the caller's request id.
const RequestIDHeader = "x-request-id"

// DefaultTimeout bounds calls whose context has no deadline.
const DefaultTimeout = 30 * time.Second

var _ DirectoryServer = (*Client)(nil)

// Client calls the directory service over one gRPC connection.
type Client struct {
	conn    *grpc.ClientConn
	timeout time.Duration
}

// NewClient connects to target (host:port) without TLS.
func NewClient(target string, timeout time.Duration, opts ...grpc.DialOption) (*Client, error) {
	EnsureCodec()

	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(CodecName)),
	}, opts...)

	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, fmt.Errorf("dial directory service: %w", err)
	}
	return &Client{conn: conn, timeout: timeout}, nil
}

// Close releases the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Ping waits until the connection is ready or ctx expires.
func (c *Client) Ping(ctx context.Context) error {
	c.conn.Connect()
	for {
		state := c.conn.GetState()
		switch state {
		case connectivity.Ready:
			return nil
		case connectivity.Shutdown:
			return errors.New("directory connection closed")
		}
		if !c.conn.WaitForStateChange(ctx, state) {
			return fmt.Errorf("directory not ready (%s): %w", state, ctx.Err())
		}
	}
}

// WithRequestID attaches a request id to outgoing calls made with ctx.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if requestID == "" {
		return ctx
	}
	return metadata.AppendToOutgoingContext(ctx, RequestIDHeader, requestID)
}

func (c *Client) invoke(ctx context.Context, method string, in, out any) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	return c.conn.Invoke(ctx, FullMethod(method), in, out)
}

func call[Resp any](ctx context.Context, c *Client, method string, in any) (*Resp, error) {
	out := new(Resp)
	if err := c.invoke(ctx, method, in, out); err != nil {
		return nil, err
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

func (c *Client) GetUser(ctx context.Context, req *GetByIDRequest) (*User, error) {
	return call[User](ctx, c, MethodGetUser, req)
}

func (c *Client) CreateUser(ctx context.Context, req *CreateUserRequest) (*CreateResponse, error) {
	return call[CreateResponse](ctx, c, MethodCreateUser, req)
}

func (c *Client) QueryUsers(ctx context.Context, req *QueryUsersRequest) (*QueryUsersResponse, error) {
	return call[QueryUsersResponse](ctx, c, MethodQueryUsers, req)
}

func (c *Client) UpdateUser(ctx context.Context, req *UpdateUserRequest) (*User, error) {
	return call[User](ctx, c, MethodUpdateUser, req)
}

func (c *Client) DeleteUser(ctx context.Context, req *GetByIDRequest) (*SuccessResponse, error) {
	return call[SuccessResponse](ctx, c, MethodDeleteUser, req)
}

func (c *Client) AssociateUser(ctx context.Context, req *AssociateUserRequest) (*SuccessResponse, error) {
	return call[SuccessResponse](ctx, c, MethodAssociateUser, req)
}

func (c *Client) DisassociateUser(ctx context.Context, req *DisassociateUserRequest) (*SuccessResponse, error) {
	return call[SuccessResponse](ctx, c, MethodDisassociateUser, req)
}

func (c *Client) QueryOrganizationUsers(ctx context.Context, req *QueryOrganizationUsersRequest) (*QueryUsersResponse, error) {
	return call[QueryUsersResponse](ctx, c, MethodQueryOrganizationUsers, req)
}

// ---------------------------------------------------------------------------
// Organizations
// ---------------------------------------------------------------------------

func (c *Client) GetOrganization(ctx context.Context, req *GetByIDRequest) (*Organization, error) {
	return call[Organization](ctx, c, MethodGetOrganization, req)
}

func (c *Client) CreateOrganization(ctx context.Context, req *CreateOrganizationRequest) (*CreateResponse, error) {
	return call[CreateResponse](ctx, c, MethodCreateOrganization, req)
}

func (c *Client) QueryOrganizations(ctx context.Context, req *QueryOrganizationsRequest) (*QueryOrganizationsResponse, error) {
	return call[QueryOrganizationsResponse](ctx, c, MethodQueryOrganizations, req)
}

func (c *Client) UpdateOrganization(ctx context.Context, req *UpdateOrganizationRequest) (*Organization, error) {
	return call[Organization](ctx, c, MethodUpdateOrganization, req)
}

func (c *Client) DeleteOrganization(ctx context.Context, req *GetByIDRequest) (*SuccessResponse, error) {
	return call[SuccessResponse](ctx, c, MethodDeleteOrganization, req)
}

// ---------------------------------------------------------------------------
// Audit log
// ---------------------------------------------------------------------------

func (c *Client) QueryAuditLog(ctx context.Context, req *QueryAuditLogRequest) (*QueryAuditLogResponse, error) {
	return call[QueryAuditLogResponse](ctx, c, MethodQueryAuditLog, req)
}
