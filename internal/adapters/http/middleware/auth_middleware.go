package middleware

import (
	"errors"

	"join-finance-api/internal/adapters/persistence/repositories"
	"join-finance-api/internal/config"
	"join-finance-api/internal/pkg/jwt"
	"join-finance-api/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// AuthMiddleware creates authentication middleware. It validates the
// bearer token on the Authorization header and stores the claims in the
// request context.
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accessToken := jwt.FromHeader(c.Get("Authorization"))

		if accessToken == "" {
			return response.Unauthorized(c, "Access token is required")
		}

		claims, err := jwt.ValidateToken(accessToken, cfg.JWT.Secret)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return response.Unauthorized(c, "Token has expired")
			}
			return response.Unauthorized(c, "Invalid token")
		}

		// Set user info in context
		c.Locals("userID", claims.UserID)
		c.Locals("username", claims.Username)
		c.Locals("role", claims.Role)

		return c.Next()
	}
}

// RequireActiveUser confirms the token's user still exists and is active
// before the handler runs. A token outliving its account must not grant
// access.
func RequireActiveUser(userRepo repositories.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals("userID").(uint)
		if !ok {
			return response.Unauthorized(c, "Access token is required")
		}

		user, err := userRepo.GetActiveWithProfileByID(c.Context(), userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.Forbidden(c, "User not found or inactive")
			}
			return response.InternalServerError(c, "Database error")
		}

		c.Locals("currentUser", user)
		return c.Next()
	}
}
