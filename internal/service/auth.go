package service

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"volunhub-backend/internal/domain"
	"volunhub-backend/internal/repository"
	"volunhub-backend/internal/security"
)

type authService struct {
	userRepo repository.UserRepository
	tokens   security.TokenManager
}

func NewAuthService(userRepo repository.UserRepository, tokens security.TokenManager) AuthService {
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
	}
}

// Signup registers a new volunteer account. Managers and admins are
// provisioned out of band.
func (s *authService) Signup(ctx context.Context, input SignupInput) (*domain.User, error) {
	if input.FullName == "" {
		return nil, domain.Validation("FULL_NAME_REQUIRED", "full name is required")
	}
	if !strings.Contains(input.Email, "@") {
		return nil, domain.Validation("INVALID_EMAIL", "a valid email address is required")
	}
	if len(input.Password) < 8 {
		return nil, domain.Validation("PASSWORD_TOO_SHORT", "password must be at least 8 characters")
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.Conflict("EMAIL_ALREADY_EXISTS", "a user with this email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Role:         domain.RoleVolunteer,
		FullName:     input.FullName,
		Email:        input.Email,
		PhoneNumber:  input.PhoneNumber,
		PasswordHash: string(hash),
		Status:       domain.UserStatusActive,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (string, string, *domain.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return "", "", nil, domain.Unauthenticated("INVALID_CREDENTIALS", "invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", "", nil, domain.Unauthenticated("INVALID_CREDENTIALS", "invalid email or password")
	}
	if user.Status == domain.UserStatusLocked {
		return "", "", nil, domain.Forbidden("ACCOUNT_LOCKED", "this account has been locked")
	}

	access, err := s.tokens.GenerateAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		return "", "", nil, err
	}
	refresh, err := s.tokens.GenerateRefreshToken(user.ID, user.Email)
	if err != nil {
		return "", "", nil, err
	}
	return access, refresh, user, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	claims, err := s.tokens.ValidateToken(refreshToken)
	if err != nil {
		return "", "", domain.Unauthenticated("INVALID_REFRESH_TOKEN", "refresh token is invalid or expired")
	}
	if claims.Type != security.TokenTypeRefresh {
		return "", "", domain.Unauthenticated("INVALID_REFRESH_TOKEN", "a refresh token is required")
	}

	// Re-load the user so a role change or account lock takes effect on the
	// next refresh.
	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return "", "", domain.Unauthenticated("INVALID_REFRESH_TOKEN", "refresh token is invalid or expired")
	}
	if user.Status == domain.UserStatusLocked {
		return "", "", domain.Forbidden("ACCOUNT_LOCKED", "this account has been locked")
	}

	access, err := s.tokens.GenerateAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		return "", "", err
	}
	refresh, err := s.tokens.GenerateRefreshToken(user.ID, user.Email)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}
