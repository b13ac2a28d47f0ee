package managers

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	log "github.com/sirupsen/logrus"

	"account-core/internal/goerrors"
	"account-core/internal/schemas"
)

type JWTMgr interface {
	GenerateClaims(id int64, email string) *schemas.SessionClaims
	GenerateJWT(claims *schemas.SessionClaims) (string, error)
	ValidateJWT(tokenString string) (*schemas.SessionClaims, error)
}

// JWTManager issues and validates HS256 session tokens signed with a shared secret.
// Validation is stateless: nothing about issued tokens is stored.
type JWTManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTManager creates a JWTManager. A zero ttl issues tokens without an exp claim.
func NewJWTManager(secret []byte, issuer string, ttl time.Duration) JWTMgr {
	log.Info("Initializing JWT manager")
	return &JWTManager{
		secret: secret,
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// GenerateClaims generates the session claims for the given account.
func (jm *JWTManager) GenerateClaims(id int64, email string) *schemas.SessionClaims {
	now := jm.now()
	claims := &schemas.SessionClaims{
		ID:    id,
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   jm.issuer,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if jm.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(jm.ttl))
	}
	return claims
}

// GenerateJWT signs the given claims.
func (jm *JWTManager) GenerateJWT(claims *schemas.SessionClaims) (string, error) {
	if claims == nil {
		return "", errors.New("claims must not be nil")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(jm.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateJWT checks the signature and expiry of the given token and returns its claims.
// Failures are reported as goerrors.ErrTokenMalformed, goerrors.ErrTokenInvalidSignature or
// goerrors.ErrTokenExpired, all of which wrap goerrors.ErrInvalidToken.
func (jm *JWTManager) ValidateJWT(tokenString string) (*schemas.SessionClaims, error) {
	claims := &schemas.SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return jm.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(jm.now),
	)

	if err != nil {
		return nil, classifyTokenError(err)
	}

	if !token.Valid {
		return nil, goerrors.ErrTokenInvalidSignature
	}

	return claims, nil
}

func classifyTokenError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return goerrors.ErrTokenMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return goerrors.ErrTokenInvalidSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return goerrors.ErrTokenExpired
	default:
		return fmt.Errorf("%w: %v", goerrors.ErrInvalidToken, err)
	}
}
