package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"account-core/internal/goerrors"
	"account-core/internal/schemas"
	"account-core/internal/utils"
)

// AdminVerifier resolves a session token to the claims of an admin session.
type AdminVerifier interface {
	VerifyAdminSession(ctx context.Context, token string) (*schemas.SessionClaims, error)
}

// RequireBearerToken aborts requests without a bearer token and stores the token under utils.TokenKey.
// Validating the token is left to the service operation.
func RequireBearerToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := utils.ExtractBearerToken(c)
		if err != nil {
			utils.WriteAndLogError(c, goerrors.Unauthorized, http.StatusUnauthorized, err)
			return
		}

		c.Set(utils.TokenKey.String(), token)
		c.Next()
	}
}

// RequireAdmin only lets admin sessions through and stores their claims under utils.ClaimsKey.
// It expects RequireBearerToken to run first.
func RequireAdmin(verifier AdminVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := verifier.VerifyAdminSession(c.Request.Context(), c.GetString(utils.TokenKey.String()))
		if err != nil {
			utils.WriteAndLogCoreError(c, err)
			return
		}

		c.Set(utils.ClaimsKey.String(), claims)
		c.Next()
	}
}
