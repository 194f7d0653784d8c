package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/csms-go/csms/internal/domain"
	"github.com/csms-go/csms/internal/ports"
)

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour
	blacklistPrefix = "auth:blacklist:"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountLocked      = errors.New("account locked")
	ErrInvalidToken       = errors.New("invalid token")
)

// Service issues and validates bearer JWTs, tenant-scoped per spec §4.1/§6.
// Revocation is tracked in cache rather than the repository: a logged-out
// token's jti is blacklisted until its own expiry, the same pattern the
// teacher uses for device status invalidation.
type Service struct {
	users     ports.UserRepository
	cache     ports.Cache
	jwtSecret []byte
	log       *zap.Logger
}

func NewService(users ports.UserRepository, cache ports.Cache, jwtSecret string, log *zap.Logger) ports.AuthService {
	return &Service{users: users, cache: cache, jwtSecret: []byte(jwtSecret), log: log}
}

type claims struct {
	jwt.RegisteredClaims
	TenantID string `json:"tenant_id"`
	Role     string `json:"role,omitempty"`
	Typ      string `json:"typ"`
}

func (s *Service) Login(ctx context.Context, tenantID, username, password string) (string, string, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return "", "", err
	}
	if user == nil || user.TenantID != tenantID {
		return "", "", ErrInvalidCredentials
	}
	if user.IsLocked(time.Now()) {
		return "", "", ErrAccountLocked
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", "", ErrInvalidCredentials
	}

	access, err := s.sign(user, accessTokenTTL, "access")
	if err != nil {
		return "", "", err
	}
	refresh, err := s.sign(user, refreshTokenTTL, "refresh")
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func (s *Service) Register(ctx context.Context, u *domain.User, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	if u.Status == "" {
		u.Status = domain.UserStatusActive
	}
	now := time.Now()
	u.Audit.CreatedAt = now
	u.Audit.UpdatedAt = now
	return s.users.Save(ctx, u)
}

func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.parse(refreshToken)
	if err != nil {
		return "", err
	}
	if claims.Typ != "refresh" {
		return "", ErrInvalidToken
	}
	if s.blacklisted(ctx, claims.ID) {
		return "", ErrInvalidToken
	}

	user, err := s.users.FindByID(ctx, claims.Subject)
	if err != nil || user == nil {
		return "", ErrInvalidToken
	}
	return s.sign(user, accessTokenTTL, "access")
}

func (s *Service) ValidateToken(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.parse(token)
	if err != nil {
		return nil, err
	}
	if claims.Typ != "access" {
		return nil, ErrInvalidToken
	}
	if s.blacklisted(ctx, claims.ID) {
		return nil, ErrInvalidToken
	}
	return s.users.FindByID(ctx, claims.Subject)
}

func (s *Service) Logout(ctx context.Context, token string, expiresAt time.Time) error {
	claims, err := s.parse(token)
	if err != nil {
		return err
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return s.cache.Set(ctx, blacklistPrefix+claims.ID, "1", ttl)
}

func (s *Service) blacklisted(ctx context.Context, jti string) bool {
	if jti == "" || s.cache == nil {
		return false
	}
	v, err := s.cache.Get(ctx, blacklistPrefix+jti)
	return err == nil && v != ""
}

func (s *Service) sign(user *domain.User, ttl time.Duration, typ string) (string, error) {
	now := time.Now()
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ID:        user.ID + ":" + typ + ":" + now.Format(time.RFC3339Nano),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		TenantID: user.TenantID,
		Typ:      typ,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return token.SignedString(s.jwtSecret)
}

func (s *Service) parse(tokenStr string) (*claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &claims{}, func(t *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	c, ok := parsed.Claims.(*claims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return c, nil
}
