package schemas

import (
	"github.com/golang-jwt/jwt/v5"

	"account-core/internal/goerrors"
)

// ErrorDTO is a struct that represents an error response
// Error is the custom error, see CustomError
type ErrorDTO struct {
	Error goerrors.CustomError `json:"error"`
}

// AccountDTO is the only projection of a user that leaves the core.
// Password hashes and keys are never part of it.
type AccountDTO struct {
	ID        int64   `json:"id"`
	Email     string  `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

// NewAccountDTO projects a user onto an AccountDTO.
func NewAccountDTO(u *User) *AccountDTO {
	return &AccountDTO{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

// AdminAccountDTO is the account view of the admin routes. It adds the held authorities.
type AdminAccountDTO struct {
	AccountDTO
	Authorities []string `json:"authorities"`
}

// PendingAccount is returned by a successful registration.
// Authority is the role granted at creation.
type PendingAccount struct {
	Account   AccountDTO `json:"account"`
	Authority string     `json:"authority"`
	Activated bool       `json:"activated"`
}

// TokenDTO is a struct that represents a token response
// Token is the JWT session token
type TokenDTO struct {
	Token string `json:"token"`
}

// MessageDTO carries a short confirmation message.
type MessageDTO struct {
	Message string `json:"message"`
}

// VerificationDTO answers the session verification routes.
type VerificationDTO struct {
	Valid bool `json:"valid"`
}

// MetadataDTO describes the running API.
type MetadataDTO struct {
	ApiVersion string `json:"apiVersion"`
	ApiName    string `json:"apiName"`
}

// SessionClaims is the payload of a session token.
type SessionClaims struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// PaginatedResponse is a struct that represents a paginated response
// Records is the records of the response
// Pagination is the pagination of the response
type PaginatedResponse struct {
	Records    interface{} `json:"records"`
	Pagination Pagination  `json:"pagination"`
}

// Pagination is a struct that represents a pagination
// Offset is the given offset of the pagination
// Limit is the given limit of the pagination
// Records is the total records of the pagination
type Pagination struct {
	Offset  int `json:"offset"`
	Limit   int `json:"limit"`
	Records int `json:"records"`
}
