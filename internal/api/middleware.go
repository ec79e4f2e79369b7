package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nekogravitycat/campus-resource-booking/internal/auth"
	"github.com/nekogravitycat/campus-resource-booking/internal/pkg/apperror"
	"github.com/nekogravitycat/campus-resource-booking/internal/pkg/response"
	"github.com/nekogravitycat/campus-resource-booking/internal/user"
)

var (
	ErrUnauthorized  = apperror.New(http.StatusUnauthorized, "unauthorized")
	ErrAdminRequired = apperror.New(http.StatusForbidden, "forbidden: admin access required")
)

// RequireAdmin re-reads the caller from the database so that a demoted or
// deactivated admin loses access before the token expires.
// It MUST be used after auth.AuthRequired middleware.
func RequireAdmin(userService user.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := auth.GetUserID(c)
		if userID == "" {
			response.Error(c, ErrUnauthorized)
			c.Abort()
			return
		}

		u, err := userService.GetByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				err = ErrUnauthorized
			}
			response.Error(c, err)
			c.Abort()
			return
		}

		if !u.IsActive || !u.IsAdmin() {
			response.Error(c, ErrAdminRequired)
			c.Abort()
			return
		}

		auth.SetIdentity(c, u.ID, string(u.Role))
		c.Next()
	}
}

// ActiveUser rejects tokens of users that were deactivated or removed after
// the token was issued.
func ActiveUser(userService user.Service) auth.IdentityCheck {
	return func(c *gin.Context, userID string) error {
		u, err := userService.GetByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				return ErrUnauthorized
			}
			return err
		}
		if !u.IsActive {
			return user.ErrInactiveUser
		}
		return nil
	}
}

// RequestLogger writes one structured line per request.
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if uid := auth.GetUserID(c); uid != "" {
			fields = append(fields, zap.String("user_id", uid))
		}

		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			log.Error("request", fields...)
		case status >= http.StatusBadRequest:
			log.Warn("request", fields...)
		default:
			log.Info("request", fields...)
		}
	}
}

// Recovery turns panics into a logged 500.
func Recovery(log *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Error("panic recovered",
			zap.Any("panic", recovered),
			zap.String("path", c.Request.URL.Path),
			zap.Stack("stack"),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.ErrorResponse{Error: "internal server error"})
	})
}

// Health answers liveness checks.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
