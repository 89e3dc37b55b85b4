package services

import (
	"context"
	"errors"
	"fmt"

	"occupancy_backend/internal/models"
	"occupancy_backend/internal/repositories"
	"occupancy_backend/pkg/utils"

	"golang.org/x/crypto/bcrypt"
)

// --- Custom Service Errors ---
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrTokenGeneration    = errors.New("failed to generate token")
)

// defaultRoleClaim is used when a user has no role assigned.
const defaultRoleClaim = "default"

// --- AuthService Interface ---
type AuthService interface {
	LoginUser(ctx context.Context, creds models.Credentials) (*models.LoginResponse, error)
	GetUserProfile(ctx context.Context, userID int64) (*models.User, error)
}

// --- authService Implementation ---
type authService struct {
	authRepo repositories.AuthRepository
	tokens   *utils.TokenManager
}

// NewAuthService creates a new instance of AuthService.
func NewAuthService(authRepo repositories.AuthRepository, tokens *utils.TokenManager) AuthService {
	return &authService{authRepo: authRepo, tokens: tokens}
}

// LoginUser handles user login and token generation.
func (s *authService) LoginUser(ctx context.Context, creds models.Credentials) (*models.LoginResponse, error) {
	user, storedHashedPassword, err := s.authRepo.FindUserByUsername(ctx, creds.Username)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login attempt failed: %w", err)
	}

	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(storedHashedPassword), []byte(creds.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	role := user.RoleName()
	if role == "" {
		role = defaultRoleClaim
	}
	accessToken, expiresAt, err := s.tokens.GenerateAccessToken(user.ID, user.Username, role)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenGeneration, err)
	}

	user.PasswordHash = ""
	return &models.LoginResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
		User:        user,
	}, nil
}

// GetUserProfile retrieves a user's profile by their ID.
func (s *authService) GetUserProfile(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.authRepo.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to retrieve user profile: %w", err)
	}
	user.PasswordHash = ""
	return user, nil
}
