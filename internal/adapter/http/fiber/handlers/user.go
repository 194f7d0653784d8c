package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/csms-go/csms/internal/domain"
	"github.com/csms-go/csms/internal/ports"
	"github.com/csms-go/csms/internal/tenant"
)

// UserHandler is thin tenant-scoped CRUD over users/roles (SPEC_FULL §7
// supplemented feature — permission *checking* stays out of scope).
type UserHandler struct {
	service ports.UserService
	log     *zap.Logger
}

func NewUserHandler(service ports.UserService, log *zap.Logger) *UserHandler {
	return &UserHandler{service: service, log: log}
}

type createUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

func (h *UserHandler) Create(c *fiber.Ctx) error {
	tenantID, _ := tenant.FromContext(c.UserContext())

	var req createUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	u := &domain.User{
		TenantID: tenantID,
		Username: req.Username,
		Email:    req.Email,
		Name:     req.Name,
	}
	if err := h.service.Create(c.UserContext(), u, req.Password); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(u)
}

func (h *UserHandler) Get(c *fiber.Ctx) error {
	u, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if u == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user not found"})
	}
	return c.JSON(u)
}

func (h *UserHandler) CreateRole(c *fiber.Ctx) error {
	tenantID, _ := tenant.FromContext(c.UserContext())

	var r domain.Role
	if err := c.BodyParser(&r); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	r.TenantID = tenantID

	if err := h.service.CreateRole(c.UserContext(), &r); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(r)
}

func (h *UserHandler) ListRoles(c *fiber.Ctx) error {
	roles, err := h.service.ListRoles(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(roles)
}

type issueTokenRequest struct {
	UserID     string           `json:"user_id"`
	TokenType  domain.TokenType `json:"token_type"`
	TokenValue string           `json:"token_value"`
}

func (h *UserHandler) IssueToken(c *fiber.Ctx) error {
	tenantID, _ := tenant.FromContext(c.UserContext())

	var req issueTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	t := &domain.AuthToken{
		TenantID:   tenantID,
		UserID:     req.UserID,
		TokenType:  req.TokenType,
		TokenValue: req.TokenValue,
	}
	if err := h.service.IssueToken(c.UserContext(), t); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(t)
}

func (h *UserHandler) ListTokens(c *fiber.Ctx) error {
	tokens, err := h.service.ListTokensByUser(c.UserContext(), c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(tokens)
}
