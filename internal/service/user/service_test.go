package user

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/csms-go/csms/internal/domain"
	"github.com/csms-go/csms/internal/mocks"
)

func newTestLogger() *zap.Logger {
	logger, _ := zap.NewDevelopment()
	return logger
}

func TestCreateHashesPasswordAndDefaultsStatus(t *testing.T) {
	var saved *domain.User
	users := &mocks.MockUserRepository{
		SaveFunc: func(ctx context.Context, u *domain.User) error {
			saved = u
			return nil
		},
	}
	svc := NewService(users, &mocks.MockRoleRepository{}, &mocks.MockAuthTokenRepository{}, newTestLogger())

	u := &domain.User{ID: "user-1", Username: "alice"}
	if err := svc.Create(context.Background(), u, "s3cret-pass"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved == nil {
		t.Fatal("expected user to be saved")
	}
	if saved.Status != domain.UserStatusActive {
		t.Errorf("expected default status ACTIVE, got %s", saved.Status)
	}
	if saved.PasswordHash == "" || saved.PasswordHash == "s3cret-pass" {
		t.Errorf("expected password to be hashed, got %q", saved.PasswordHash)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(saved.PasswordHash), []byte("s3cret-pass")); err != nil {
		t.Errorf("expected stored hash to match password: %v", err)
	}
	if saved.Audit.CreatedAt.IsZero() || saved.Audit.UpdatedAt.IsZero() {
		t.Error("expected audit timestamps to be set")
	}
}

func TestCreatePreservesExplicitStatus(t *testing.T) {
	var saved *domain.User
	users := &mocks.MockUserRepository{
		SaveFunc: func(ctx context.Context, u *domain.User) error {
			saved = u
			return nil
		},
	}
	svc := NewService(users, &mocks.MockRoleRepository{}, &mocks.MockAuthTokenRepository{}, newTestLogger())

	u := &domain.User{ID: "user-2", Username: "bob", Status: domain.UserStatusBlocked}
	if err := svc.Create(context.Background(), u, "pw"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved.Status != domain.UserStatusBlocked {
		t.Errorf("expected explicit status preserved, got %s", saved.Status)
	}
}

func TestGetAndFindByUsernamePassThrough(t *testing.T) {
	users := &mocks.MockUserRepository{
		FindByIDFunc: func(ctx context.Context, id string) (*domain.User, error) {
			return &domain.User{ID: id}, nil
		},
		FindByUsernameFunc: func(ctx context.Context, username string) (*domain.User, error) {
			return &domain.User{Username: username}, nil
		},
	}
	svc := NewService(users, &mocks.MockRoleRepository{}, &mocks.MockAuthTokenRepository{}, newTestLogger())

	got, err := svc.Get(context.Background(), "user-1")
	if err != nil || got.ID != "user-1" {
		t.Errorf("expected user-1, got %+v err=%v", got, err)
	}

	byName, err := svc.FindByUsername(context.Background(), "alice")
	if err != nil || byName.Username != "alice" {
		t.Errorf("expected alice, got %+v err=%v", byName, err)
	}
}

func TestCreateRoleStampsAudit(t *testing.T) {
	var saved *domain.Role
	roles := &mocks.MockRoleRepository{
		SaveFunc: func(ctx context.Context, r *domain.Role) error {
			saved = r
			return nil
		},
	}
	svc := NewService(&mocks.MockUserRepository{}, roles, &mocks.MockAuthTokenRepository{}, newTestLogger())

	r := &domain.Role{ID: "role-1", Name: "operator"}
	if err := svc.CreateRole(context.Background(), r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved.Audit.CreatedAt.IsZero() || saved.Audit.UpdatedAt.IsZero() {
		t.Error("expected audit timestamps to be set")
	}
}

func TestListRolesPassesThrough(t *testing.T) {
	roles := &mocks.MockRoleRepository{
		FindAllFunc: func(ctx context.Context) ([]domain.Role, error) {
			return []domain.Role{{ID: "role-1"}, {ID: "role-2"}}, nil
		},
	}
	svc := NewService(&mocks.MockUserRepository{}, roles, &mocks.MockAuthTokenRepository{}, newTestLogger())

	list, err := svc.ListRoles(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("expected 2 roles, got %d", len(list))
	}
}

func TestIssueTokenActivatesAndStampsAudit(t *testing.T) {
	var saved *domain.AuthToken
	tokens := &mocks.MockAuthTokenRepository{
		SaveFunc: func(ctx context.Context, token *domain.AuthToken) error {
			saved = token
			return nil
		},
	}
	svc := NewService(&mocks.MockUserRepository{}, &mocks.MockRoleRepository{}, tokens, newTestLogger())

	tok := &domain.AuthToken{ID: "token-1", UserID: "user-1", TokenType: domain.TokenTypeRFID, TokenValue: "ABC123"}
	if err := svc.IssueToken(context.Background(), tok); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !saved.Active {
		t.Error("expected token to be activated")
	}
	if saved.Audit.CreatedAt.IsZero() || saved.Audit.UpdatedAt.IsZero() {
		t.Error("expected audit timestamps to be set")
	}
}

func TestListTokensByUserPassesThrough(t *testing.T) {
	var gotUserID string
	tokens := &mocks.MockAuthTokenRepository{
		FindByUserFunc: func(ctx context.Context, userID string) ([]domain.AuthToken, error) {
			gotUserID = userID
			return []domain.AuthToken{{ID: "token-1"}, {ID: "token-2"}}, nil
		},
	}
	svc := NewService(&mocks.MockUserRepository{}, &mocks.MockRoleRepository{}, tokens, newTestLogger())

	list, err := svc.ListTokensByUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotUserID != "user-1" {
		t.Errorf("expected lookup for user-1, got %s", gotUserID)
	}
	if len(list) != 2 {
		t.Errorf("expected 2 tokens, got %d", len(list))
	}
}
