package services

import (
	"context"
	"errors"

	"idle-resource-hub/internal/adapters/persistence/models"
	"idle-resource-hub/internal/adapters/persistence/repositories"
	"idle-resource-hub/internal/pkg/password"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Auth errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserInactive       = errors.New("user account is inactive")
)

// Login failure reasons stored on login attempts
const (
	failureUnknownUser   = "unknown_user"
	failureBadPassword   = "invalid_password"
	failureInactiveUser  = "inactive_user"
	failureSessionCreate = "session_error"
)

// AuthService handles authentication business logic
type AuthService struct {
	userRepo repositories.UserRepository
	sessions *SessionService
	log      *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo repositories.UserRepository, sessions *SessionService, log *zap.Logger) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		sessions: sessions,
		log:      log,
	}
}

// LoginInput represents login input
type LoginInput struct {
	Username   string `json:"username" validate:"required"`
	Password   string `json:"password" validate:"required"`
	RememberMe bool   `json:"rememberMe"`
}

// ClientInfo identifies where a request came from
type ClientInfo struct {
	IPAddress string
	UserAgent string
}

// AuthResponse represents authentication response
type AuthResponse struct {
	User *models.UserResponse `json:"user"`
	*SessionTokens
}

// ValidateResponse describes a valid session
type ValidateResponse struct {
	Valid        bool                 `json:"valid"`
	SessionID    string               `json:"sessionId"`
	User         *models.UserResponse `json:"user"`
	ExpiresAt    string               `json:"expiresAt"`
	LastActivity string               `json:"lastActivity"`
}

// Login authenticates a user and opens a session
func (s *AuthService) Login(ctx context.Context, input *LoginInput, client ClientInfo) (*AuthResponse, error) {
	// 1. Find user by username or email
	user, err := s.userRepo.GetByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.recordAttempt(ctx, input.Username, client, failureUnknownUser)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	// 2. Verify password
	if !password.Verify(input.Password, user.Password) {
		s.recordAttempt(ctx, input.Username, client, failureBadPassword)
		return nil, ErrInvalidCredentials
	}

	// 3. Check if user is active
	if !user.IsActive {
		s.recordAttempt(ctx, input.Username, client, failureInactiveUser)
		return nil, ErrUserInactive
	}

	// 4. Open session
	tokens, err := s.sessions.CreateSession(ctx, user, client.IPAddress, client.UserAgent, input.RememberMe)
	if err != nil {
		s.recordAttempt(ctx, input.Username, client, failureSessionCreate)
		return nil, err
	}

	// 5. Stamp login
	now := s.sessions.now()
	if err := s.userRepo.RecordLogin(ctx, user.ID, now); err != nil {
		s.log.Warn("failed to record login", zap.Uint("userId", user.ID), zap.Error(err))
	}
	user.LastLoginAt = &now
	s.recordAttempt(ctx, input.Username, client, "")

	s.log.Info("✅ User logged in",
		zap.String("username", user.Username),
		zap.Bool("rememberMe", input.RememberMe),
	)

	return &AuthResponse{User: user.ToResponse(), SessionTokens: tokens}, nil
}

// Logout revokes the caller's session
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessions.RevokeSession(ctx, sessionID); err != nil {
		return err
	}
	s.log.Info("✅ User logged out", zap.String("sessionId", sessionID))
	return nil
}

// Validate resolves an access token into its session
func (s *AuthService) Validate(ctx context.Context, accessToken string) (*ValidateResponse, error) {
	session, err := s.sessions.ValidateSession(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	return &ValidateResponse{
		Valid:        true,
		SessionID:    session.SessionID,
		User:         session.User.ToResponse(),
		ExpiresAt:    session.ExpiresAt().Format(timeLayout),
		LastActivity: session.LastActivity.Format(timeLayout),
	}, nil
}

// Refresh issues a new access token from a refresh token
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*SessionTokens, error) {
	return s.sessions.RefreshSession(ctx, refreshToken)
}

// CleanupSessions purges old and expired sessions
func (s *AuthService) CleanupSessions(ctx context.Context, daysOld int) (*CleanupResult, error) {
	return s.sessions.CleanupExpiredSessions(ctx, daysOld)
}

// GetUserByID gets a user by ID
func (s *AuthService) GetUserByID(ctx context.Context, userID uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// recordAttempt stores a login attempt; failures are only logged
func (s *AuthService) recordAttempt(ctx context.Context, username string, client ClientInfo, failure string) {
	attempt := &models.LoginAttempt{
		Username:      truncate(username, 100),
		IPAddress:     client.IPAddress,
		UserAgent:     truncate(client.UserAgent, 255),
		Success:       failure == "",
		FailureReason: failure,
	}
	if err := s.userRepo.CreateLoginAttempt(ctx, attempt); err != nil {
		s.log.Warn("failed to record login attempt", zap.String("username", username), zap.Error(err))
	}
}
