package postgres

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/csms-go/csms/internal/domain"
	"github.com/csms-go/csms/internal/ports"
)

type UserRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewUserRepository(db *gorm.DB, log *zap.Logger) ports.UserRepository {
	return &UserRepository{db: db, log: log}
}

func (r *UserRepository) Save(ctx context.Context, u *domain.User) error {
	if err := r.db.WithContext(ctx).Save(u).Error; err != nil {
		r.log.Error("failed to save user", zap.String("user_id", u.ID), zap.Error(err))
		return err
	}
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).First(&u, "username = ?", username).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).First(&u, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

type RoleRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewRoleRepository(db *gorm.DB, log *zap.Logger) ports.RoleRepository {
	return &RoleRepository{db: db, log: log}
}

func (r *RoleRepository) Save(ctx context.Context, role *domain.Role) error {
	return r.db.WithContext(ctx).Save(role).Error
}

func (r *RoleRepository) FindByID(ctx context.Context, id string) (*domain.Role, error) {
	var role domain.Role
	err := r.db.WithContext(ctx).First(&role, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *RoleRepository) FindByName(ctx context.Context, name string) (*domain.Role, error) {
	var role domain.Role
	err := r.db.WithContext(ctx).First(&role, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *RoleRepository) FindAll(ctx context.Context) ([]domain.Role, error) {
	var roles []domain.Role
	err := r.db.WithContext(ctx).Find(&roles).Error
	return roles, err
}

type AuthTokenRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewAuthTokenRepository(db *gorm.DB, log *zap.Logger) ports.AuthTokenRepository {
	return &AuthTokenRepository{db: db, log: log}
}

func (r *AuthTokenRepository) Save(ctx context.Context, t *domain.AuthToken) error {
	return r.db.WithContext(ctx).Save(t).Error
}

func (r *AuthTokenRepository) FindByValue(ctx context.Context, value string) (*domain.AuthToken, error) {
	var t domain.AuthToken
	err := r.db.WithContext(ctx).First(&t, "token_value = ?", value).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *AuthTokenRepository) FindByUser(ctx context.Context, userID string) ([]domain.AuthToken, error) {
	var tokens []domain.AuthToken
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&tokens).Error
	return tokens, err
}
