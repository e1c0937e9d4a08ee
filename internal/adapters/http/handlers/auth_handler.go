package handlers

import (
	"errors"
	"strings"

	"join-finance-api/internal/adapters/persistence/models"
	"join-finance-api/internal/core/domain"
	"join-finance-api/internal/core/services"
	"join-finance-api/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// LoginRequest represents login request body
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login handles user login
// @Summary Login user
// @Description Authenticate user and return a session token with profile
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Login credentials"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	// Validate required fields
	if req.Username == "" {
		return response.BadRequest(c, "Username is required")
	}
	if req.Password == "" {
		return response.BadRequest(c, "Password is required")
	}

	input := &services.LoginInput{
		Username: strings.TrimSpace(req.Username),
		Password: req.Password,
	}

	result, err := h.authService.Login(c.Context(), input)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			// Deliberately generic: never hint which field was wrong
			return response.Unauthorized(c, "Invalid username or password")
		}
		return response.InternalServerError(c, "Internal server error")
	}

	return response.Success(c, "Login successful", fiber.Map{
		"token":   result.Token,
		"profile": result.Profile,
	})
}

// GetProfile returns the authenticated user's profile
// @Summary Get profile
// @Description Return the profile of the authenticated user
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /auth/profile [get]
func (h *AuthHandler) GetProfile(c *fiber.Ctx) error {
	user, ok := c.Locals("currentUser").(*models.User)
	if !ok {
		return response.Forbidden(c, "User not found or inactive")
	}

	return response.Success(c, "Profile retrieved successfully", fiber.Map{
		"profile": user.ToProfileResponse(),
	})
}

// AuthMe returns the current user's profile resolved from the token
// @Summary Current user profile
// @Description Return the profile for the user identified by the token
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /auth/authme [get]
func (h *AuthHandler) AuthMe(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Access token is required")
	}

	profile, err := h.authService.GetProfile(c.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return response.NotFound(c, "User not found or inactive")
		}
		return response.InternalServerError(c, "Internal server error")
	}

	return response.Success(c, "Profile retrieved successfully", fiber.Map{
		"profile": profile,
	})
}

// Logout acknowledges logout. Tokens are stateless, so removal happens
// client-side.
// @Summary Logout
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	return response.Success(c, "Logout successful", nil)
}
