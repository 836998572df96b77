package rpc

import (
	"time"

	"github.com/kbmproject/kbm-backend/internal/domain"
)

// QueryParams selects one page of a collection.
type QueryParams struct {
	QueryString string `json:"query_string,omitempty"`
	OrderBy     string `json:"order_by,omitempty"`
	Direction   string `json:"direction,omitempty"`
	Page        int    `json:"page"`
	PageSize    int    `json:"page_size"`
}

// PageInfo describes the page returned by a query.
type PageInfo struct {
	Page      int    `json:"page"`
	PageSize  int    `json:"page_size"`
	Total     int    `json:"total"`
	OrderBy   string `json:"order_by"`
	Direction string `json:"direction"`
}

// GetByIDRequest addresses one entity.
type GetByIDRequest struct {
	ID string `json:"id"`
}

// CreateResponse carries the id of a created entity.
type CreateResponse struct {
	ID string `json:"id"`
}

// SuccessResponse reports whether a mutation found its target.
type SuccessResponse struct {
	Success bool `json:"success"`
}

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

type User struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	OrganizationID *string   `json:"organization_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type CreateUserRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// UpdateUserRequest leaves nil fields unchanged. Email is required.
type UpdateUserRequest struct {
	ID       string  `json:"id"`
	Name     *string `json:"name,omitempty"`
	Username *string `json:"username,omitempty"`
	Email    string  `json:"email"`
}

type QueryUsersRequest struct {
	QueryParams
}

type QueryOrganizationUsersRequest struct {
	OrganizationID string `json:"organization_id"`
	QueryParams
}

type QueryUsersResponse struct {
	PageInfo
	Users []User `json:"users"`
}

type AssociateUserRequest struct {
	UserID         string `json:"user_id"`
	OrganizationID string `json:"organization_id"`
}

type DisassociateUserRequest struct {
	UserID string `json:"user_id"`
}

// ---------------------------------------------------------------------------
// Organizations
// ---------------------------------------------------------------------------

type Organization struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   *string   `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateOrganizationRequest struct {
	Name    string  `json:"name"`
	Address *string `json:"address,omitempty"`
}

// UpdateOrganizationRequest leaves a nil Address unchanged.
type UpdateOrganizationRequest struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Address *string `json:"address,omitempty"`
}

type QueryOrganizationsRequest struct {
	QueryParams
}

type QueryOrganizationsResponse struct {
	PageInfo
	Organizations []Organization `json:"organizations"`
}

// ---------------------------------------------------------------------------
// Audit log
// ---------------------------------------------------------------------------

type AuditRecord struct {
	ID           string              `json:"id"`
	UnitOfWorkID string              `json:"unit_of_work_id"`
	TableName    string              `json:"table_name"`
	EntityKey    string              `json:"entity_key"`
	Action       string              `json:"action"`
	Timestamp    time.Time           `json:"timestamp"`
	Changes      domain.FieldChanges `json:"changes,omitempty"`
}

type QueryAuditLogRequest struct {
	TableName string `json:"table_name,omitempty"`
	EntityKey string `json:"entity_key,omitempty"`
	QueryParams
}

type QueryAuditLogResponse struct {
	PageInfo
	Records []AuditRecord `json:"records"`
}
