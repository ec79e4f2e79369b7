package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/campus-resource-booking/internal/pkg/apperror"
	"github.com/nekogravitycat/campus-resource-booking/internal/pkg/response"
)

var (
	ErrMissingHeader = apperror.New(http.StatusUnauthorized, "missing Authorization header")
	ErrBadHeader     = apperror.New(http.StatusUnauthorized, "invalid Authorization header format")
	ErrExpiredToken  = apperror.New(http.StatusUnauthorized, "invalid or expired token")
)

// IdentityCheck runs after the token is accepted. A non-nil error aborts
// the request with that error.
type IdentityCheck func(c *gin.Context, userID string) error

// AuthRequired validates the bearer token, runs checks, and stores the caller identity.
func AuthRequired(jwtManager *JWTManager, checks ...IdentityCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abort(c, ErrMissingHeader)
			return
		}

		scheme, tokenStr, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "bearer") || tokenStr == "" {
			abort(c, ErrBadHeader)
			return
		}

		claims, err := jwtManager.ParseAndValidate(strings.TrimSpace(tokenStr))
		if err != nil {
			abort(c, ErrExpiredToken)
			return
		}

		for _, check := range checks {
			if err := check(c, claims.UserID); err != nil {
				abort(c, err)
				return
			}
		}

		SetIdentity(c, claims.UserID, claims.Role)
		c.Next()
	}
}

func abort(c *gin.Context, err error) {
	response.Error(c, err)
	c.Abort()
}
