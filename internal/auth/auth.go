package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type ServiceAPI interface {
	Authenticate(dto LoginDTO) (AuthTokens, error)
	RefreshTokens(refreshToken string) (AuthTokens, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	GetIdentity(ctx context.Context, employeeCode string) (*Identity, error)
}

type RepositoryAPI interface {
	GetCredentials(employeeCode string) (passwordHash string, err error)
	GetIdentity(ctx context.Context, employeeCode string) (*Identity, error)
	GetGrantedPermissions(ctx context.Context, employeeCode string) ([]string, error)
}

type TokenGeneratorAPI interface {
	GenerateAccessToken(identity *Identity) (token string, err error)
	GenerateRefreshToken(identity *Identity) (token string, err error)
	ValidateToken(tokenString string) (*Claims, error)
}

// Identity is the resolved per-request caller: who they are, the role baked
// into their session, where they sit in the org, and their explicit
// permission grants. The authorization core trusts this object and rejects
// disabled accounts.
type Identity struct {
	ID           int64    `json:"id"`
	EmployeeCode string   `json:"employee_code"`
	FullName     string   `json:"full_name"`
	Role         Role     `json:"role"`
	Department   string   `json:"department"`
	BranchCode   string   `json:"branch_code"`
	IsActive     bool     `json:"is_active"`
	Permissions  []string `json:"permissions,omitempty"`
}

// EffectivePermissions is the role-implied set union the explicit grants.
func (i *Identity) EffectivePermissions() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, p := range ImpliedPermissions(i.Role) {
		if _, ok := seen[p]; !ok {
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}
	for _, p := range i.Permissions {
		if _, ok := seen[p]; !ok {
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}
	return out
}

func (i *Identity) HasPermission(permission string) bool {
	for _, p := range i.EffectivePermissions() {
		if p == permission {
			return true
		}
	}
	return false
}

func (i *Identity) HasAnyPermission(permissions []string) bool {
	for _, required := range permissions {
		if i.HasPermission(required) {
			return true
		}
	}
	return false
}

func (i *Identity) IsAdministrator() bool {
	return i.Role == RoleAdministrator
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Claims carries the identity fields every request needs without a DB
// round-trip. Role is immutable for the token's lifetime.
type Claims struct {
	EmployeeCode string `json:"employee_code"`
	Role         string `json:"role"`
	jwt.RegisteredClaims
}

type JWTTokenGenerator struct {
	AccessTokenSecret  []byte
	RefreshTokenSecret []byte
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
}

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrUserInactive       = errors.New("user is disabled")
)

func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
