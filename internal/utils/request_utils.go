package utils

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"account-core/internal/goerrors"
	"account-core/internal/schemas"
)

var errMissingBearer = errors.New("missing or malformed authorization header")

// WriteAndLogResponse encodes the response object to JSON and writes it to the HTTP response
// with the provided status code.
func WriteAndLogResponse(c *gin.Context, response interface{}, statusCode int) {
	LogMessageWithFields(c, "info", "Returning response")
	c.JSON(statusCode, response)
}

// WriteAndLogError logs the provided error and sends an error response with the specified status code and error details.
func WriteAndLogError(c *gin.Context, customErr *goerrors.CustomError, statusCode int, err error) {
	LogMessageWithFieldsAndError(c, "error", "Error occurred", err)
	LogMessageWithFields(c, "error", "Returning "+customErr.Code+" / "+customErr.Message)
	errorDto := &schemas.ErrorDTO{
		Error: *customErr,
	}
	c.AbortWithStatusJSON(statusCode, errorDto)
}

// WriteAndLogCoreError maps an error returned by the account core to its custom error and status.
func WriteAndLogCoreError(c *gin.Context, err error) {
	customErr, statusCode := goerrors.HTTPError(err)
	WriteAndLogError(c, customErr, statusCode, err)
}

// ExtractBearerToken returns the token of an "Authorization: Bearer <token>" header.
func ExtractBearerToken(c *gin.Context) (string, error) {
	header := c.GetHeader("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", errMissingBearer
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", errMissingBearer
	}
	return token, nil
}
