package tenant

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/csms-go/csms/internal/domain"
	"github.com/csms-go/csms/internal/ports"
)

var (
	ErrTenantNotFound = errors.New("tenant not found")
	ErrInvalidTenant  = errors.New("tenant is not usable")
)

// Service administers tenants and doubles as the tenant.Registry consulted
// by the OCPP handshake and HTTP middleware: a small in-memory code/domain
// index is kept alongside the repository so every connection doesn't round
// trip to Postgres, refreshed on every Create/Save.
type Service struct {
	repo ports.TenantRepository
	log  *zap.Logger

	mu           sync.RWMutex
	codeIndex    map[string]string
	domainIndex  map[string]string
}

func NewService(repo ports.TenantRepository, log *zap.Logger) *Service {
	s := &Service{
		repo:        repo,
		log:         log,
		codeIndex:   make(map[string]string),
		domainIndex: make(map[string]string),
	}
	s.warm(context.Background())
	return s
}

func (s *Service) warm(ctx context.Context) {
	tenants, err := s.repo.FindAll(ctx)
	if err != nil {
		s.log.Warn("failed to warm tenant index", zap.Error(err))
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range tenants {
		s.codeIndex[t.Code] = t.ID
		if t.Config.CustomDomain != "" {
			s.domainIndex[t.Config.CustomDomain] = t.ID
		}
	}
}

func (s *Service) index(t *domain.Tenant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codeIndex[t.Code] = t.ID
	if t.Config.CustomDomain != "" {
		s.domainIndex[t.Config.CustomDomain] = t.ID
	}
}

// ResolveCode implements tenant.Registry.
func (s *Service) ResolveCode(code string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.codeIndex[code]
	return id, ok
}

// ResolveCustomDomain implements tenant.Registry.
func (s *Service) ResolveCustomDomain(host string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.domainIndex[host]
	return id, ok
}

func (s *Service) Create(ctx context.Context, t *domain.Tenant) error {
	now := time.Now()
	t.Audit.CreatedAt = now
	t.Audit.UpdatedAt = now
	t.Active = true
	if err := s.repo.Save(ctx, t); err != nil {
		return err
	}
	s.index(t)
	return nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Tenant, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrTenantNotFound
	}
	return t, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Tenant, error) {
	return s.repo.FindAll(ctx)
}

func (s *Service) Suspend(ctx context.Context, id, reason string) error {
	t, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	t.Suspend(reason)
	t.Audit.UpdatedAt = time.Now()
	return s.repo.Save(ctx, t)
}

func (s *Service) Reactivate(ctx context.Context, id string) error {
	t, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	t.Reactivate()
	t.Audit.UpdatedAt = time.Now()
	return s.repo.Save(ctx, t)
}

func (s *Service) ValidateCurrent(ctx context.Context, tenantID string) error {
	t, err := s.repo.FindByID(ctx, tenantID)
	if err != nil {
		return err
	}
	if t == nil || !t.IsUsable() {
		return ErrInvalidTenant
	}
	return nil
}
