package user

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/csms-go/csms/internal/domain"
	"github.com/csms-go/csms/internal/ports"
)

// Service administers tenant-scoped users and roles. Token issuance belongs
// to the auth service; this one persists the records auth reads.
type Service struct {
	users  ports.UserRepository
	roles  ports.RoleRepository
	tokens ports.AuthTokenRepository
	log    *zap.Logger
}

func NewService(users ports.UserRepository, roles ports.RoleRepository, tokens ports.AuthTokenRepository, log *zap.Logger) ports.UserService {
	return &Service{users: users, roles: roles, tokens: tokens, log: log}
}

func (s *Service) Create(ctx context.Context, u *domain.User, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	now := time.Now()
	u.Audit.CreatedAt = now
	u.Audit.UpdatedAt = now
	if u.Status == "" {
		u.Status = domain.UserStatusActive
	}
	return s.users.Save(ctx, u)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.users.FindByID(ctx, id)
}

func (s *Service) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.users.FindByUsername(ctx, username)
}

func (s *Service) CreateRole(ctx context.Context, r *domain.Role) error {
	now := time.Now()
	r.Audit.CreatedAt = now
	r.Audit.UpdatedAt = now
	return s.roles.Save(ctx, r)
}

func (s *Service) ListRoles(ctx context.Context) ([]domain.Role, error) {
	return s.roles.FindAll(ctx)
}

// IssueToken registers a physical/virtual credential (RFID, NFC, idTag...)
// for a user, active by default.
func (s *Service) IssueToken(ctx context.Context, t *domain.AuthToken) error {
	now := time.Now()
	t.Audit.CreatedAt = now
	t.Audit.UpdatedAt = now
	t.Active = true
	return s.tokens.Save(ctx, t)
}

func (s *Service) ListTokensByUser(ctx context.Context, userID string) ([]domain.AuthToken, error) {
	return s.tokens.FindByUser(ctx, userID)
}
