package resolver

import (
	"errors"

	"user-import/core/logger"
	"user-import/core/reconcile"
	"user-import/feature/userimport/store"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the resolver read surface.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the resolver routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/resolvers")
	group.Get("/", h.HandleListResolvers)
	group.Get("/:group/:resolver", h.HandleGetResolver)
	group.Get("/:group/:resolver/users", h.HandleListUsers)
	group.Get("/:group/:resolver/users/:username", h.HandleGetUser)
	group.Post("/:group/:resolver/check", h.HandleCheckPassword)
}

// CheckRequest is the body of a password check.
type CheckRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func namespace(c *fiber.Ctx) reconcile.Namespace {
	return reconcile.Namespace{GroupID: c.Params("group"), Resolver: c.Params("resolver")}
}

// HandleListResolvers lists every imported resolver.
// @Summary List Resolvers
// @Description List the resolvers created by user imports.
// @Tags resolvers
// @Produce json
// @Success 200 {array} store.ResolverDefinition "Resolvers"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /resolvers [get]
func (h *Handler) HandleListResolvers(c *fiber.Ctx) error {
	defs, err := h.service.Resolvers(c.UserContext())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(defs)
}

// HandleGetResolver returns one resolver with its row count.
// @Summary Get Resolver
// @Description Get the definition and the number of rows of a resolver.
// @Tags resolvers
// @Produce json
// @Param group path string true "Import group"
// @Param resolver path string true "Resolver name"
// @Success 200 {object} Info "Resolver"
// @Failure 404 {object} map[string]string "Not Found"
// @Router /resolvers/{group}/{resolver} [get]
func (h *Handler) HandleGetResolver(c *fiber.Ctx) error {
	info, err := h.service.Resolver(c.UserContext(), namespace(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(info)
}

// HandleListUsers lists the users of a resolver.
// @Summary List Users
// @Description List users whose username matches a wildcard pattern ('*' matches anything).
// @Tags resolvers
// @Produce json
// @Param group path string true "Import group"
// @Param resolver path string true "Resolver name"
// @Param username query string false "Username pattern" default(*)
// @Success 200 {array} models.Record "Users"
// @Router /resolvers/{group}/{resolver}/users [get]
func (h *Handler) HandleListUsers(c *fiber.Ctx) error {
	users, err := h.service.Users(c.UserContext(), namespace(c), c.Query("username", "*"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(users)
}

// HandleGetUser looks up one user by username.
// @Summary Get User
// @Tags resolvers
// @Produce json
// @Param group path string true "Import group"
// @Param resolver path string true "Resolver name"
// @Param username path string true "Username"
// @Success 200 {object} models.Record "User"
// @Failure 404 {object} map[string]string "Not Found"
// @Router /resolvers/{group}/{resolver}/users/{username} [get]
func (h *Handler) HandleGetUser(c *fiber.Ctx) error {
	user, err := h.service.User(c.UserContext(), namespace(c), c.Params("username"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(user)
}

// HandleCheckPassword verifies a user's password.
// @Summary Check Password
// @Description Verify a password against the stored bcrypt hash.
// @Tags resolvers
// @Accept json
// @Produce json
// @Param group path string true "Import group"
// @Param resolver path string true "Resolver name"
// @Param body body CheckRequest true "Credentials"
// @Success 200 {object} map[string]bool "Result"
// @Failure 422 {object} map[string]string "Unsupported hash"
// @Router /resolvers/{group}/{resolver}/check [post]
func (h *Handler) HandleCheckPassword(c *fiber.Ctx) error {
	var req CheckRequest
	if err := c.BodyParser(&req); err != nil || req.Username == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "username and password are required",
		})
	}

	ok, err := h.service.CheckPassword(c.UserContext(), namespace(c), req.Username, req.Password)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"valid": ok})
}

func (h *Handler) fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ErrUnsupportedHash):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	default:
		logger.WithRayID(h.service.logger, c).Error("Resolver request failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}
