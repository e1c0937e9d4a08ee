package services

import (
	"context"
	"errors"
	"log"

	"join-finance-api/internal/adapters/persistence/models"
	"join-finance-api/internal/adapters/persistence/repositories"
	"join-finance-api/internal/config"
	"join-finance-api/internal/core/domain"
	"join-finance-api/internal/pkg/jwt"
	"join-finance-api/internal/pkg/password"

	"gorm.io/gorm"
)

// AuthService handles authentication business logic
type AuthService struct {
	userRepo repositories.UserRepository
	cfg      *config.Config
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo repositories.UserRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		cfg:      cfg,
	}
}

// LoginInput represents login input
type LoginInput struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginResult represents a successful authentication
type LoginResult struct {
	Token   string                  `json:"token"`
	Profile *models.ProfileResponse `json:"profile"`
}

// Login authenticates a user and issues a session token. Unknown
// usernames, inactive accounts and wrong passwords all collapse to
// ErrInvalidCredentials so callers cannot tell which field was wrong.
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*LoginResult, error) {
	user, err := s.userRepo.GetActiveWithProfileByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !password.Verify(input.Password, user.Password) {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := jwt.GenerateToken(
		user.ID,
		user.Username,
		user.Role,
		s.cfg.JWT.Secret,
		s.cfg.JWT.ExpiresHours,
	)
	if err != nil {
		return nil, err
	}

	log.Printf("✅ User logged in: %s", user.Username)

	return &LoginResult{
		Token:   token,
		Profile: user.ToProfileResponse(),
	}, nil
}

// GetProfile returns the full profile of an active user
func (s *AuthService) GetProfile(ctx context.Context, userID uint) (*models.ProfileResponse, error) {
	user, err := s.userRepo.GetActiveWithProfileByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	return user.ToProfileResponse(), nil
}

// ValidateAccessToken validates an access token
func (s *AuthService) ValidateAccessToken(accessToken string) (*jwt.Claims, error) {
	return jwt.ValidateToken(accessToken, s.cfg.JWT.Secret)
}
