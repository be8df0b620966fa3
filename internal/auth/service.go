package auth

import (
	"context"
	"strings"
	"time"

	"github.com/nexusmarket/backend/internal/users"
	"github.com/nexusmarket/backend/pkg/auth"
	"github.com/nexusmarket/backend/pkg/config"
	"github.com/nexusmarket/backend/pkg/db"
	"github.com/nexusmarket/backend/pkg/db/models"
	"github.com/nexusmarket/backend/pkg/enums"
	pkgerrors "github.com/nexusmarket/backend/pkg/errors"
	"github.com/nexusmarket/backend/pkg/ids"
	"github.com/nexusmarket/backend/pkg/security"
)

const minPasswordLength = 6

type tokenRevoker interface {
	RevokeToken(ctx context.Context, jti string, ttl time.Duration) error
}

// RegisterInput is a new account request. An empty role registers a customer;
// admin accounts cannot be self-registered.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Role     enums.UserRole
}

type LoginInput struct {
	Email    string
	Password string
}

// Session is a logged-in account plus its bearer token.
type Session struct {
	User  *models.User
	Token string
}

// Service handles account registration and credential-based sessions.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*Session, error)
	Login(ctx context.Context, input LoginInput) (*Session, error)
	Me(ctx context.Context, userID string) (*models.User, error)
	Logout(ctx context.Context, claims *auth.AccessTokenClaims) error
}

type service struct {
	repo    *users.Repository
	revoker tokenRevoker
	jwtCfg  config.JWTConfig
	pwCfg   config.PasswordConfig
	now     func() time.Time
}

func NewService(repo *users.Repository, revoker tokenRevoker, jwtCfg config.JWTConfig, pwCfg config.PasswordConfig) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "auth: user repository is required")
	}
	if revoker == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "auth: token revoker is required")
	}
	return &service{
		repo:    repo,
		revoker: revoker,
		jwtCfg:  jwtCfg,
		pwCfg:   pwCfg,
		now:     time.Now,
	}, nil
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*Session, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	name := strings.TrimSpace(input.Name)
	role := input.Role
	if role == "" {
		role = enums.RoleCustomer
	}

	switch {
	case email == "" || !strings.Contains(email, "@"):
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "a valid email is required")
	case name == "":
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	case len(input.Password) < minPasswordLength:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 6 characters")
	case role == enums.RoleAdmin:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "admin accounts cannot be self-registered")
	case !role.IsValid():
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}

	hash, err := security.HashPassword(input.Password, s.pwCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user := &models.User{
		UserID:       ids.NewUserID(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         role,
	}
	if _, err := s.repo.Create(ctx, user); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: create user")
	}

	return s.sessionFor(user)
}

func (s *service) Login(ctx context.Context, input LoginInput) (*Session, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and password are required")
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load user")
	}

	ok, err := security.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	return s.sessionFor(user)
}

func (s *service) Me(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load user")
	}
	return user, nil
}

// Logout revokes the presented token for the remainder of its lifetime.
func (s *service) Logout(ctx context.Context, claims *auth.AccessTokenClaims) error {
	if claims == nil || claims.ID == "" {
		return nil
	}
	ttl := s.jwtCfg.TokenTTL()
	if claims.ExpiresAt != nil {
		if remaining := time.Until(claims.ExpiresAt.Time); remaining > 0 {
			ttl = remaining
		}
	}
	if err := s.revoker.RevokeToken(ctx, claims.ID, ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis: revoke token")
	}
	return nil
}

func (s *service) sessionFor(user *models.User) (*Session, error) {
	token, err := auth.MintAccessToken(s.jwtCfg, s.now(), auth.AccessTokenPayload{
		UserID: user.UserID,
		Role:   user.Role,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint token")
	}
	return &Session{User: user, Token: token}, nil
}
