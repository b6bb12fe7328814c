package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rakapradana/kasirpoint-backend/pkg/config"
	"github.com/rakapradana/kasirpoint-backend/pkg/db/models"
	pkgerrors "github.com/rakapradana/kasirpoint-backend/pkg/errors"
	"github.com/rakapradana/kasirpoint-backend/pkg/security"
)

// Claims is the JWT payload issued to a cashier session.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Service manages cashier accounts and login sessions.
type Service interface {
	ValidateCashier(ctx context.Context, id uuid.UUID) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, string, error)
	Register(ctx context.Context, email, password, fullName, role string) (*models.User, error)
	ParseToken(token string) (*Claims, error)
}

type service struct {
	repo   Repository
	jwtCfg config.JWTConfig
	pwCfg  config.PasswordConfig
	now    func() time.Time
}

// NewService builds the user service.
func NewService(repo Repository, jwtCfg config.JWTConfig, pwCfg config.PasswordConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if strings.TrimSpace(jwtCfg.Secret) == "" {
		return nil, fmt.Errorf("jwt secret required")
	}
	return &service{repo: repo, jwtCfg: jwtCfg, pwCfg: pwCfg, now: time.Now}, nil
}

// ValidateCashier confirms the cashier exists and can ring sales.
func (s *service) ValidateCashier(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cashier id is required")
	}
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cashier not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cashier")
	}
	if !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cashier account is disabled")
	}
	return user, nil
}

// Authenticate verifies credentials and issues a signed session token.
func (s *service) Authenticate(ctx context.Context, email, password string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "email and password are required")
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	if !user.IsActive {
		return nil, "", pkgerrors.New(pkgerrors.CodeForbidden, "account is disabled")
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return nil, "", pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "sign token")
	}

	if err := s.repo.TouchLastLogin(ctx, user.ID); err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record login")
	}

	return user, token, nil
}

// Register creates a cashier account with a hashed password.
func (s *service) Register(ctx context.Context, email, password, fullName, role string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if len(password) < 8 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}
	if strings.TrimSpace(fullName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "full name is required")
	}
	if role == "" {
		role = "cashier"
	}

	hash, err := security.HashPassword(password, s.pwCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		FullName:     strings.TrimSpace(fullName),
		Role:         role,
		IsActive:     true,
	}
	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
	}
	return created, nil
}

// ParseToken validates a session token and returns its claims.
func (s *service) ParseToken(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return []byte(s.jwtCfg.Secret), nil
	}, jwt.WithIssuer(s.jwtCfg.Issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token")
	}
	if !parsed.Valid {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid token")
	}
	return claims, nil
}

func (s *service) issueToken(user *models.User) (string, error) {
	now := s.now()
	claims := Claims{
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			Issuer:    s.jwtCfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtCfg.Expiration())),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtCfg.Secret))
}
