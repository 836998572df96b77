package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kbmproject/kbm-backend/internal/rpc"
	"github.com/kbmproject/kbm-backend/internal/transport/problem"
	"github.com/kbmproject/kbm-backend/pkg/ctxutil"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// directory is the remote directory service.
type directory interface {
	GetUser(ctx context.Context, req *rpc.GetByIDRequest) (*rpc.User, error)
	CreateUser(ctx context.Context, req *rpc.CreateUserRequest) (*rpc.CreateResponse, error)
	QueryUsers(ctx context.Context, req *rpc.QueryUsersRequest) (*rpc.QueryUsersResponse, error)
	UpdateUser(ctx context.Context, req *rpc.UpdateUserRequest) (*rpc.User, error)
	DeleteUser(ctx context.Context, req *rpc.GetByIDRequest) (*rpc.SuccessResponse, error)
	AssociateUser(ctx context.Context, req *rpc.AssociateUserRequest) (*rpc.SuccessResponse, error)
	DisassociateUser(ctx context.Context, req *rpc.DisassociateUserRequest) (*rpc.SuccessResponse, error)
	QueryOrganizationUsers(ctx context.Context, req *rpc.QueryOrganizationUsersRequest) (*rpc.QueryUsersResponse, error)

	GetOrganization(ctx context.Context, req *rpc.GetByIDRequest) (*rpc.Organization, error)
	CreateOrganization(ctx context.Context, req *rpc.CreateOrganizationRequest) (*rpc.CreateResponse, error)
	QueryOrganizations(ctx context.Context, req *rpc.QueryOrganizationsRequest) (*rpc.QueryOrganizationsResponse, error)
	UpdateOrganization(ctx context.Context, req *rpc.UpdateOrganizationRequest) (*rpc.Organization, error)
	DeleteOrganization(ctx context.Context, req *rpc.GetByIDRequest) (*rpc.SuccessResponse, error)

	QueryAuditLog(ctx context.Context, req *rpc.QueryAuditLogRequest) (*rpc.QueryAuditLogResponse, error)
}

// Gateway forwards the public HTTP API to the directory service.
type Gateway struct {
	dir directory
	log *slog.Logger
}

// NewGateway creates a Gateway.
func NewGateway(dir directory, logger *slog.Logger) *Gateway {
	return &Gateway{dir: dir, log: logger.With("component", "gateway")}
}

// Routes mounts the API under r.
func (h *Gateway) Routes(r chi.Router) {
	r.Route("/user", func(r chi.Router) {
		r.Get("/{id}", h.GetUser)
		r.Post("/create", h.CreateUser)
		r.Post("/query", h.QueryUsers)
		r.Put("/update", h.UpdateUser)
		r.Delete("/{id}", h.DeleteUser)
		r.Put("/associate", h.AssociateUser)
		r.Put("/disassociate", h.DisassociateUser)
		r.Post("/organization/query", h.QueryOrganizationUsers)
	})
	r.Route("/organization", func(r chi.Router) {
		r.Get("/{id}", h.GetOrganization)
		r.Post("/create", h.CreateOrganization)
		r.Post("/query", h.QueryOrganizations)
		r.Put("/update", h.UpdateOrganization)
		r.Delete("/{id}", h.DeleteOrganization)
	})
	r.Post("/audit/query", h.QueryAuditLog)
}

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

func (h *Gateway) GetUser(w http.ResponseWriter, r *http.Request) {
	forward(h, w, r, h.dir.GetUser, pathID(r))
}

func (h *Gateway) CreateUser(w http.ResponseWriter, r *http.Request) {
	forwardBody(h, w, r, h.dir.CreateUser)
}

func (h *Gateway) QueryUsers(w http.ResponseWriter, r *http.Request) {
	forwardBody(h, w, r, h.dir.QueryUsers)
}

func (h *Gateway) UpdateUser(w http.ResponseWriter, r *http.Request) {
	forwardBody(h, w, r, h.dir.UpdateUser)
}

func (h *Gateway) DeleteUser(w http.ResponseWriter, r *http.Request) {
	forward(h, w, r, h.dir.DeleteUser, pathID(r))
}

func (h *Gateway) AssociateUser(w http.ResponseWriter, r *http.Request) {
	forwardBody(h, w, r, h.dir.AssociateUser)
}

func (h *Gateway) DisassociateUser(w http.ResponseWriter, r *http.Request) {
	forwardBody(h, w, r, h.dir.DisassociateUser)
}

func (h *Gateway) QueryOrganizationUsers(w http.ResponseWriter, r *http.Request) {
	forwardBody(h, w, r, h.dir.QueryOrganizationUsers)
}

// ---------------------------------------------------------------------------
// Organizations
// ---------------------------------------------------------------------------

func (h *Gateway) GetOrganization(w http.ResponseWriter, r *http.Request) {
	forward(h, w, r, h.dir.GetOrganization, pathID(r))
}

func (h *Gateway) CreateOrganization(w http.ResponseWriter, r *http.Request) {
	forwardBody(h, w, r, h.dir.CreateOrganization)
}

func (h *Gateway) QueryOrganizations(w http.ResponseWriter, r *http.Request) {
	forwardBody(h, w, r, h.dir.QueryOrganizations)
}

func (h *Gateway) UpdateOrganization(w http.ResponseWriter, r *http.Request) {
	forwardBody(h, w, r, h.dir.UpdateOrganization)
}

func (h *Gateway) DeleteOrganization(w http.ResponseWriter, r *http.Request) {
	forward(h, w, r, h.dir.DeleteOrganization, pathID(r))
}

// ---------------------------------------------------------------------------
// Audit log
// ---------------------------------------------------------------------------

func (h *Gateway) QueryAuditLog(w http.ResponseWriter, r *http.Request) {
	forwardBody(h, w, r, h.dir.QueryAuditLog)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// forward calls fn with the request id propagated and writes its response.
func forward[Req, Resp any](h *Gateway, w http.ResponseWriter, r *http.Request, fn func(context.Context, *Req) (*Resp, error), req *Req) {
	ctx := rpc.WithRequestID(r.Context(), ctxutil.RequestIDFromCtx(r.Context()))
	resp, err := fn(ctx, req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// forwardBody decodes the JSON body into a new Req and forwards it.
func forwardBody[Req, Resp any](h *Gateway, w http.ResponseWriter, r *http.Request, fn func(context.Context, *Req) (*Resp, error)) {
	req := new(Req)
	if err := decodeJSON(w, r, req); err != nil {
		problem.Error(w, r, http.StatusBadRequest, err.Error())
		return
	}
	forward(h, w, r, fn, req)
}

func pathID(r *http.Request) *rpc.GetByIDRequest {
	return &rpc.GetByIDRequest{ID: chi.URLParam(r, "id")}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return fmt.Errorf("invalid request body: %w", err)
	}
	if dec.More() {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}
