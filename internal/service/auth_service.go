package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"taskboard-api/internal/auth"
	"taskboard-api/internal/domain"
	"taskboard-api/internal/dto"
	"taskboard-api/internal/repository"
	"taskboard-api/internal/response"
)

// TokenIssuer mints access tokens. *auth.TokenManager satisfies it.
type TokenIssuer interface {
	Issue(userID uuid.UUID) (string, time.Time, error)
}

// AuthService defines the interface for account business logic
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.TokenResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Me(ctx context.Context, callerID uuid.UUID) (*dto.UserResponse, error)
	ListUsers(ctx context.Context, filters *dto.UserFilters) ([]*dto.UserResponse, error)
}

const defaultUserListLimit = 50

type authServiceImpl struct {
	userRepo repository.UserRepository
	tokens   TokenIssuer
	logger   *zap.Logger
}

// NewAuthService creates a new instance of AuthService
func NewAuthService(userRepo repository.UserRepository, tokens TokenIssuer, logger *zap.Logger) AuthService {
	return &authServiceImpl{userRepo: userRepo, tokens: tokens, logger: logger}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an account and signs the new user in
func (s *authServiceImpl) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.TokenResponse, error) {
	email := normalizeEmail(req.Email)
	name := strings.TrimSpace(req.Name)
	if email == "" || name == "" {
		return nil, response.NewAppError(response.ErrCodeValidation, "Email and name are required", "")
	}

	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return nil, response.NewAppError(response.ErrCodeAlreadyExists, "Email is already registered", "")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to check email", err.Error())
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeValidation, "Password cannot be used", err.Error())
	}

	user := &domain.User{Email: email, Name: name, PasswordHash: hash}
	if err := s.userRepo.Create(ctx, user); err != nil {
		s.logger.Error("Failed to create user", zap.String("email", email), zap.Error(err))
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to create user", err.Error())
	}

	s.logger.Info("User registered", zap.String("user_id", user.ID.String()))
	return s.issue(user)
}

// Login exchanges credentials for an access token. Unknown email and wrong
// password produce the same error.
func (s *authServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	invalid := response.NewAppError(response.ErrCodeUnauthorized, "Invalid email or password", "")

	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invalid
		}
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to load user", err.Error())
	}
	if err := auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
		return nil, invalid
	}
	return s.issue(user)
}

// Me returns the caller's account
func (s *authServiceImpl) Me(ctx context.Context, callerID uuid.UUID) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, callerID)
	if err != nil {
		return nil, repoError(err, "User not found", "Failed to load user")
	}
	resp := toUserResponse(user)
	return &resp, nil
}

// ListUsers returns accounts for member pickers. Password hashes never leave
// the repository layer.
func (s *authServiceImpl) ListUsers(ctx context.Context, filters *dto.UserFilters) ([]*dto.UserResponse, error) {
	limit := defaultUserListLimit
	query := ""
	if filters != nil {
		query = filters.Query
		if filters.Limit > 0 {
			limit = filters.Limit
		}
	}

	users, err := s.userRepo.Search(ctx, query, limit)
	if err != nil {
		s.logger.Error("Failed to list users", zap.Error(err))
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to list users", err.Error())
	}

	result := make([]*dto.UserResponse, 0, len(users))
	for _, user := range users {
		resp := toUserResponse(user)
		result = append(result, &resp)
	}
	return result, nil
}

func (s *authServiceImpl) issue(user *domain.User) (*dto.TokenResponse, error) {
	token, expiresAt, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to issue token", err.Error())
	}
	return &dto.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
		User:        toUserResponse(user),
	}, nil
}
