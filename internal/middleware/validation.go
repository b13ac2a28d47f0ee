package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"account-core/internal/goerrors"
	"account-core/internal/utils"
)

// ValidateAndSanitizeStruct binds the JSON body into a fresh T, sanitizes and validates it
// and stores the result under utils.SanitizedPayloadKey.
func ValidateAndSanitizeStruct[T any]() gin.HandlerFunc {
	return func(c *gin.Context) {
		obj := new(T)
		if err := c.ShouldBindJSON(obj); err != nil {
			utils.WriteAndLogError(c, goerrors.BadRequest, http.StatusBadRequest, err)
			return
		}

		validator := utils.GetValidator()
		if err := validator.SanitizeData(obj); err != nil {
			utils.WriteAndLogError(c, goerrors.BadRequest, http.StatusBadRequest, err)
			return
		}

		if err := validator.Validate.Struct(obj); err != nil {
			utils.WriteAndLogError(c, goerrors.BadRequest, http.StatusBadRequest, err)
			return
		}

		c.Set(utils.SanitizedPayloadKey.String(), obj)
		c.Next()
	}
}

// SanitizedPayload returns the payload stored by ValidateAndSanitizeStruct.
func SanitizedPayload[T any](c *gin.Context) *T {
	value, _ := c.Get(utils.SanitizedPayloadKey.String())
	payload, _ := value.(*T)
	return payload
}
