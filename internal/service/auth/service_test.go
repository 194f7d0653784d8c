package auth

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/csms-go/csms/internal/domain"
	"github.com/csms-go/csms/internal/mocks"
)

func newTestLogger() *zap.Logger {
	logger, _ := zap.NewDevelopment()
	return logger
}

func hashed(password string) string {
	h, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(h)
}

func TestLoginSuccess(t *testing.T) {
	ctx := context.Background()
	user := &domain.User{ID: "user-123", TenantID: "tenant-a", Username: "alice", PasswordHash: hashed("secret123"), Status: domain.UserStatusActive}

	repo := &mocks.MockUserRepository{
		FindByUsernameFunc: func(ctx context.Context, username string) (*domain.User, error) {
			return user, nil
		},
	}
	svc := NewService(repo, mocks.NewMockCache(), "test-secret", newTestLogger())

	access, refresh, err := svc.Login(ctx, "tenant-a", "alice", "secret123")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if access == "" || refresh == "" {
		t.Fatal("expected non-empty access and refresh tokens")
	}
}

func TestLoginWrongTenantRejected(t *testing.T) {
	ctx := context.Background()
	user := &domain.User{ID: "user-123", TenantID: "tenant-a", Username: "alice", PasswordHash: hashed("secret123")}

	repo := &mocks.MockUserRepository{
		FindByUsernameFunc: func(ctx context.Context, username string) (*domain.User, error) {
			return user, nil
		},
	}
	svc := NewService(repo, mocks.NewMockCache(), "test-secret", newTestLogger())

	if _, _, err := svc.Login(ctx, "tenant-b", "alice", "secret123"); err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginWrongPasswordRejected(t *testing.T) {
	ctx := context.Background()
	user := &domain.User{ID: "user-123", TenantID: "tenant-a", Username: "alice", PasswordHash: hashed("correct")}

	repo := &mocks.MockUserRepository{
		FindByUsernameFunc: func(ctx context.Context, username string) (*domain.User, error) {
			return user, nil
		},
	}
	svc := NewService(repo, mocks.NewMockCache(), "test-secret", newTestLogger())

	if _, _, err := svc.Login(ctx, "tenant-a", "alice", "wrong"); err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginLockedAccountRejected(t *testing.T) {
	ctx := context.Background()
	locked := time.Now().Add(time.Hour)
	user := &domain.User{ID: "user-123", TenantID: "tenant-a", Username: "alice", PasswordHash: hashed("secret123"), LockedUntil: &locked}

	repo := &mocks.MockUserRepository{
		FindByUsernameFunc: func(ctx context.Context, username string) (*domain.User, error) {
			return user, nil
		},
	}
	svc := NewService(repo, mocks.NewMockCache(), "test-secret", newTestLogger())

	if _, _, err := svc.Login(ctx, "tenant-a", "alice", "secret123"); err != ErrAccountLocked {
		t.Fatalf("expected ErrAccountLocked, got %v", err)
	}
}

func TestRegisterHashesPassword(t *testing.T) {
	ctx := context.Background()
	var saved *domain.User
	repo := &mocks.MockUserRepository{
		SaveFunc: func(ctx context.Context, u *domain.User) error {
			saved = u
			return nil
		},
	}
	svc := NewService(repo, mocks.NewMockCache(), "test-secret", newTestLogger())

	newUser := &domain.User{ID: "new-user", TenantID: "tenant-a", Username: "bob"}
	if err := svc.Register(ctx, newUser, "hunter2"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if saved == nil {
		t.Fatal("expected user to be saved")
	}
	if saved.PasswordHash == "hunter2" {
		t.Error("password must be hashed, not stored in plain text")
	}
	if saved.Status != domain.UserStatusActive {
		t.Errorf("expected default status Active, got %q", saved.Status)
	}
}

func TestValidateTokenRoundTrip(t *testing.T) {
	ctx := context.Background()
	user := &domain.User{ID: "user-123", TenantID: "tenant-a", Username: "alice", PasswordHash: hashed("secret123")}

	repo := &mocks.MockUserRepository{
		FindByUsernameFunc: func(ctx context.Context, username string) (*domain.User, error) { return user, nil },
		FindByIDFunc:       func(ctx context.Context, id string) (*domain.User, error) { return user, nil },
	}
	svc := NewService(repo, mocks.NewMockCache(), "test-secret", newTestLogger())

	access, _, err := svc.Login(ctx, "tenant-a", "alice", "secret123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	got, err := svc.ValidateToken(ctx, access)
	if err != nil {
		t.Fatalf("expected valid token, got %v", err)
	}
	if got.ID != "user-123" {
		t.Errorf("expected user-123, got %s", got.ID)
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc := NewService(&mocks.MockUserRepository{}, mocks.NewMockCache(), "test-secret", newTestLogger())
	if _, err := svc.ValidateToken(context.Background(), "not-a-jwt"); err == nil {
		t.Fatal("expected error for malformed token")
	}
}

func TestRefreshTokenIssuesNewAccessToken(t *testing.T) {
	ctx := context.Background()
	user := &domain.User{ID: "user-123", TenantID: "tenant-a", Username: "alice", PasswordHash: hashed("secret123")}

	repo := &mocks.MockUserRepository{
		FindByUsernameFunc: func(ctx context.Context, username string) (*domain.User, error) { return user, nil },
		FindByIDFunc:       func(ctx context.Context, id string) (*domain.User, error) { return user, nil },
	}
	svc := NewService(repo, mocks.NewMockCache(), "test-secret", newTestLogger())

	_, refresh, err := svc.Login(ctx, "tenant-a", "alice", "secret123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	newAccess, err := svc.RefreshToken(ctx, refresh)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if newAccess == "" {
		t.Error("expected a new access token")
	}
}

func TestRefreshTokenRejectsAccessToken(t *testing.T) {
	ctx := context.Background()
	user := &domain.User{ID: "user-123", TenantID: "tenant-a", Username: "alice", PasswordHash: hashed("secret123")}

	repo := &mocks.MockUserRepository{
		FindByUsernameFunc: func(ctx context.Context, username string) (*domain.User, error) { return user, nil },
	}
	svc := NewService(repo, mocks.NewMockCache(), "test-secret", newTestLogger())

	access, _, err := svc.Login(ctx, "tenant-a", "alice", "secret123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if _, err := svc.RefreshToken(ctx, access); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestLogoutBlacklistsToken(t *testing.T) {
	ctx := context.Background()
	user := &domain.User{ID: "user-123", TenantID: "tenant-a", Username: "alice", PasswordHash: hashed("secret123")}

	repo := &mocks.MockUserRepository{
		FindByUsernameFunc: func(ctx context.Context, username string) (*domain.User, error) { return user, nil },
		FindByIDFunc:       func(ctx context.Context, id string) (*domain.User, error) { return user, nil },
	}
	svc := NewService(repo, mocks.NewMockCache(), "test-secret", newTestLogger())

	access, _, err := svc.Login(ctx, "tenant-a", "alice", "secret123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if err := svc.Logout(ctx, access, time.Now().Add(accessTokenTTL)); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if _, err := svc.ValidateToken(ctx, access); err != ErrInvalidToken {
		t.Fatalf("expected blacklisted token to be rejected, got %v", err)
	}
}
