package user

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/campus-resource-booking/internal/auth"
	"github.com/nekogravitycat/campus-resource-booking/internal/pkg/apperror"
)

var (
	ErrNotFound           = apperror.New(http.StatusNotFound, "user not found")
	ErrEmailAlreadyUsed   = apperror.New(http.StatusConflict, "email already used")
	ErrInvalidCredentials = apperror.New(http.StatusUnauthorized, "invalid email or password")
	ErrInactiveUser       = apperror.New(http.StatusForbidden, "user is inactive")
	ErrEmailRequired      = apperror.New(http.StatusBadRequest, "email is required")
	ErrNameRequired       = apperror.New(http.StatusBadRequest, "name is required")
	ErrPasswordTooShort   = apperror.New(http.StatusBadRequest, "password must be at least 8 characters")
	ErrInvalidRole        = apperror.New(http.StatusBadRequest, "role must be user or admin")
)

type Role string

const (
	RoleUser  Role = auth.RoleUser
	RoleAdmin Role = auth.RoleAdmin
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User is a campus account: a student or staff member, or an administrator.
type User struct {
	ID           string // UUID
	Email        string
	PasswordHash string
	Name         string
	Phone        string
	Department   string
	Role         Role
	IsActive     bool
	CreatedAt    time.Time
	LastLoginAt  *time.Time
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// UserFilter defines filter options for listing users.
type UserFilter struct {
	Email    string
	Name     string
	Role     string
	IsActive *bool // nil = any

	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
