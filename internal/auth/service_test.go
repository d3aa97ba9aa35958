package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgAuth "github.com/partshub/autospares-backend/pkg/auth"
	"github.com/partshub/autospares-backend/pkg/config"
	"github.com/partshub/autospares-backend/pkg/db/models"
	"github.com/partshub/autospares-backend/pkg/enums"
	pkgerrors "github.com/partshub/autospares-backend/pkg/errors"
	"github.com/partshub/autospares-backend/pkg/security"
)

func TestServiceLoginCustomer(t *testing.T) {
	password := "customer-secret"
	user := &models.User{
		ID:           uuid.New(),
		Email:        "customer@example.com",
		Username:     "customer",
		PasswordHash: mustHashPassword(t, password),
		FirstName:    "First",
		LastName:     "Customer",
		Role:         enums.ActorRoleCustomer,
		IsActive:     true,
	}
	cfg := testJWTConfig()

	svc, sessions := buildTestService(t, user, cfg)

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    "Customer@Example.com",
		Password: password,
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := pkgAuth.ParseAccessToken(cfg, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.UserID != user.ID {
		t.Fatalf("expected user id claim %s, got %s", user.ID, claims.UserID)
	}
	if claims.Role != enums.ActorRoleCustomer {
		t.Fatalf("expected customer role claim, got %s", claims.Role)
	}
	if claims.ID == "" {
		t.Fatalf("expected jti claim to be set")
	}
	if sessions.generatedFor != claims.ID {
		t.Fatalf("expected session keyed by jti %s, got %s", claims.ID, sessions.generatedFor)
	}
	if resp.RefreshToken == "" {
		t.Fatalf("expected refresh token to be set")
	}
	if user.LastLoginAt == nil {
		t.Fatalf("expected last login to be recorded")
	}
}

func TestServiceLoginRoleCarriedInClaims(t *testing.T) {
	password := "staff-secret"
	user := &models.User{
		ID:           uuid.New(),
		Email:        "admin@example.com",
		Username:     "admin",
		PasswordHash: mustHashPassword(t, password),
		Role:         enums.ActorRoleStoreAdmin,
		IsActive:     true,
	}
	cfg := testJWTConfig()

	svc, _ := buildTestService(t, user, cfg)

	resp, err := svc.Login(context.Background(), LoginRequest{Email: user.Email, Password: password})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	claims, err := pkgAuth.ParseAccessToken(cfg, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.Role != enums.ActorRoleStoreAdmin {
		t.Fatalf("expected store_admin role claim, got %s", claims.Role)
	}
}

func TestServiceLoginBadPassword(t *testing.T) {
	user := &models.User{
		ID:           uuid.New(),
		Email:        "customer@example.com",
		PasswordHash: mustHashPassword(t, "right-password"),
		Role:         enums.ActorRoleCustomer,
		IsActive:     true,
	}

	svc, _ := buildTestService(t, user, testJWTConfig())

	_, err := svc.Login(context.Background(), LoginRequest{Email: user.Email, Password: "wrong-password"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
}

func TestServiceLoginInactiveAccount(t *testing.T) {
	password := "customer-secret"
	user := &models.User{
		ID:           uuid.New(),
		Email:        "disabled@example.com",
		PasswordHash: mustHashPassword(t, password),
		Role:         enums.ActorRoleCustomer,
		IsActive:     false,
	}

	svc, _ := buildTestService(t, user, testJWTConfig())

	_, err := svc.Login(context.Background(), LoginRequest{Email: user.Email, Password: password})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
}

func TestServiceLogout(t *testing.T) {
	svc, sessions := buildTestService(t, nil, testJWTConfig())

	if err := svc.Logout(context.Background(), "access-id-1"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if sessions.revoked != "access-id-1" {
		t.Fatalf("expected session access-id-1 revoked, got %q", sessions.revoked)
	}

	err := svc.Logout(context.Background(), "  ")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized for blank access id, got %v", err)
	}
}

func TestNewSessionKeyFitsCartColumn(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		key := NewSessionKey()
		if len(key) == 0 || len(key) > 40 {
			t.Fatalf("session key length %d out of range", len(key))
		}
		if seen[key] {
			t.Fatalf("duplicate session key %s", key)
		}
		seen[key] = true
	}
}

func buildTestService(t *testing.T, user *models.User, jwtCfg config.JWTConfig) (Service, *stubSessionManager) {
	t.Helper()

	sessions := &stubSessionManager{refreshToken: "refresh-token"}
	svc, err := NewService(ServiceParams{
		UserRepo:       stubUserRepo{user: user},
		SessionManager: sessions,
		JWTConfig:      jwtCfg,
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc, sessions
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "secret",
		Issuer:            "autospares",
		ExpirationMinutes: 30,
	}
}

func mustHashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return hash
}

type stubUserRepo struct {
	user *models.User
}

func (s stubUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if s.user == nil || s.user.Email != email {
		return nil, gormNotFound()
	}
	return s.user, nil
}

func (s stubUserRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	if s.user != nil && s.user.ID == id {
		s.user.LastLoginAt = &at
	}
	return nil
}

type stubSessionManager struct {
	refreshToken string
	generatedFor string
	revoked      string
}

func (s *stubSessionManager) Generate(ctx context.Context, accessID string) (string, error) {
	s.generatedFor = accessID
	return s.refreshToken, nil
}

func (s *stubSessionManager) Revoke(ctx context.Context, accessID string) error {
	s.revoked = accessID
	return nil
}

func gormNotFound() error {
	return gorm.ErrRecordNotFound
}
