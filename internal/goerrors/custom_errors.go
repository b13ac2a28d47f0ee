package goerrors

import (
	"errors"
	"net/http"
)

// CustomError is the error body returned to clients.
// Code is a stable identifier, Message a human readable explanation.
type CustomError struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

var (
	BadRequest = &CustomError{
		Message: "The request body is invalid. Please check the request body and try again.",
		Code:    "ERR-001",
	}
	EmailTaken = &CustomError{
		Message: "The email is already taken. Please try another email.",
		Code:    "ERR-002",
	}
	AccountNotFound = &CustomError{
		Message: "The account was not found. Please check the request and try again.",
		Code:    "ERR-004",
	}
	InvalidCredentials = &CustomError{
		Message: "The credentials are invalid. Please check the credentials and try again.",
		Code:    "ERR-008",
	}
	KeyNotFound = &CustomError{
		Message: "The key is invalid or has already been used.",
		Code:    "ERR-009",
	}
	InvalidToken = &CustomError{
		Message: "The token is invalid. Please login again.",
		Code:    "ERR-010",
	}
	TokenExpired = &CustomError{
		Message: "The token has expired. Please login again.",
		Code:    "ERR-011",
	}
	Forbidden = &CustomError{
		Message: "The account is not allowed to perform this operation.",
		Code:    "ERR-013",
	}
	Unauthorized = &CustomError{
		Message: "The request is unauthorized. Please login to your account.",
		Code:    "ERR-014",
	}
	EmailUnreachable = &CustomError{
		Message: "The email is unreachable. Please check the email and try again.",
		Code:    "ERR-015",
	}
	DatabaseError = &CustomError{
		Message: "A database error occurred. Please try again later.",
		Code:    "ERR-016",
	}
	EmailNotSent = &CustomError{
		Message: "The email could not be sent. Please try again later.",
		Code:    "ERR-017",
	}
	InternalServerError = &CustomError{
		Message: "An internal server error occurred. Please try again later.",
		Code:    "ERR-018",
	}
)

// HTTPError maps an error kind returned by the core to the custom error and status code
// sent to the client. Directory failures are database errors, anything unclassified is internal.
func HTTPError(err error) (*CustomError, int) {
	switch {
	case errors.Is(err, ErrInvalidPassword):
		return BadRequest, http.StatusBadRequest
	case errors.Is(err, ErrInvalidCredentials):
		return InvalidCredentials, http.StatusUnauthorized
	case errors.Is(err, ErrTokenExpired):
		return TokenExpired, http.StatusUnauthorized
	case errors.Is(err, ErrInvalidToken):
		return InvalidToken, http.StatusUnauthorized
	case errors.Is(err, ErrUnauthorized):
		return Forbidden, http.StatusForbidden
	case errors.Is(err, ErrConflict):
		return EmailTaken, http.StatusConflict
	case errors.Is(err, ErrNotFound):
		return AccountNotFound, http.StatusNotFound
	case errors.Is(err, ErrDependencyFailure):
		return EmailNotSent, http.StatusBadGateway
	case errors.Is(err, ErrPersistence):
		return DatabaseError, http.StatusInternalServerError
	default:
		return InternalServerError, http.StatusInternalServerError
	}
}
