// package utils provides utility functions to support various operations within the application.
package utils

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"

	"github.com/gin-gonic/gin"

	"account-core/internal/goerrors"
	"account-core/internal/schemas"
)

// ParsePaginationParams extracts the 'offset' and 'limit' parameters from the request's query parameters.
// It provides default values and ensures that the returned values are non-negative.
func ParsePaginationParams(c *gin.Context) (int, int) {
	offset, err := strconv.Atoi(c.DefaultQuery(OffsetParamKey, "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	limit, err := strconv.Atoi(c.DefaultQuery(LimitParamKey, "10"))
	if err != nil {
		limit = 10
	}
	if limit < 0 {
		limit = 0
	}

	return offset, limit
}

// SendPaginatedResponse wraps one page of records with its pagination details.
// The records are expected to be already limited to the requested window.
func SendPaginatedResponse(c *gin.Context, records interface{}, offset, limit, totalRecords int) {
	if v := reflect.ValueOf(records); v.Kind() != reflect.Slice {
		WriteAndLogError(c, goerrors.BadRequest, http.StatusBadRequest, errors.New("records not a valid list"))
		return
	}

	paginatedResponse := schemas.PaginatedResponse{
		Records: records,
		Pagination: schemas.Pagination{
			Offset:  offset,
			Limit:   limit,
			Records: totalRecords,
		},
	}

	WriteAndLogResponse(c, paginatedResponse, http.StatusOK)
}
