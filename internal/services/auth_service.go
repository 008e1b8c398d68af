package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"sitebackend/internal/domain"
	"sitebackend/internal/domain/models"
	"sitebackend/internal/repositories"
	"sitebackend/internal/utils"
	"sitebackend/internal/validation"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type AdminStore interface {
	GetByEmail(ctx context.Context, email string) (models.AdminUser, error)
	Upsert(ctx context.Context, u models.AdminUser) error
}

// Claims is the admin session payload.
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

type AuthService struct {
	Admins    AdminStore
	Secret    []byte
	TTL       time.Duration
	Validator *validation.Validator
	Now       func() time.Time
}

type LoginResult struct {
	Token     string                `json:"token"`
	ExpiresAt time.Time             `json:"expires_at"`
	User      domain.RequestContext `json:"user"`
}

var errBadCredentials = domain.UnauthorizedError{Msg: "invalid email or password"}

func (s AuthService) now() time.Time { return clock(s.Now) }

func (s AuthService) Login(ctx context.Context, req models.LoginRequest) (LoginResult, error) {
	v := s.Validator
	if v == nil {
		v = validation.New(s.Now)
	}
	if err := v.Struct(req); err != nil {
		return LoginResult{}, err
	}

	u, err := s.Admins.GetByEmail(ctx, req.Email)
	if errors.Is(err, repositories.ErrNotFound) {
		return LoginResult{}, errBadCredentials
	}
	if err != nil {
		return LoginResult{}, storeErr(ctx, "auth", "login", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		utils.LogCtx(ctx, "auth", "login", "rejected email="+u.Email)
		return LoginResult{}, errBadCredentials
	}

	token, exp, err := s.Issue(u)
	if err != nil {
		return LoginResult{}, domain.InternalError{Err: err}
	}
	utils.LogCtx(ctx, "auth", "login", "admin_id="+u.ID)
	return LoginResult{
		Token:     token,
		ExpiresAt: exp,
		User:      domain.RequestContext{UserID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role},
	}, nil
}

// Issue signs an HS256 session token for u.
func (s AuthService) Issue(u models.AdminUser) (string, time.Time, error) {
	ttl := s.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	now := s.now()
	exp := now.Add(ttl)
	claims := Claims{
		Email: u.Email,
		Name:  u.Name,
		Role:  u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// Parse validates a session token and returns the caller identity.
func (s AuthService) Parse(token string) (domain.RequestContext, error) {
	claims := &Claims{}
	keyFunc := func(*jwt.Token) (any, error) { return s.Secret, nil }
	parsed, err := jwt.ParseWithClaims(strings.TrimSpace(token), claims, keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return domain.RequestContext{}, domain.UnauthorizedError{Msg: "invalid session", Err: err}
	}
	return domain.RequestContext{UserID: claims.Subject, Name: claims.Name, Email: claims.Email, Role: claims.Role}, nil
}

// SeedAdmin creates or refreshes the bootstrap admin account.
func (s AuthService) SeedAdmin(ctx context.Context, email, password, name string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	if strings.TrimSpace(name) == "" {
		name = "Administrator"
	}
	id := uuid.NewString()
	if existing, err := s.Admins.GetByEmail(ctx, email); err == nil {
		id = existing.ID
	}
	if err := s.Admins.Upsert(ctx, models.AdminUser{
		ID: id, Name: name, Email: email, PasswordHash: string(hash), Role: domain.RoleAdmin,
	}); err != nil {
		return err
	}
	utils.LogEvent("", "auth", "seed_admin", "email="+email)
	return nil
}
