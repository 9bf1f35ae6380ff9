package services

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"idle-resource-hub/internal/adapters/persistence/models"
	"idle-resource-hub/internal/adapters/persistence/repositories"
	"idle-resource-hub/internal/core/domain"
	"idle-resource-hub/internal/pkg/ids"
	"idle-resource-hub/internal/pkg/password"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrSessionNotFound is returned for every session failure: unknown token,
// invalid session, expired session, inactive user.
var ErrSessionNotFound = fmt.Errorf("session %w", domain.ErrNotFound)

const timeLayout = time.RFC3339

// SessionService issues and validates opaque session tokens
type SessionService struct {
	repo        repositories.SessionRepository
	accessTTL   time.Duration
	rememberTTL time.Duration
	log         *zap.Logger
	now         func() time.Time
}

// NewSessionService creates a new session service
func NewSessionService(repo repositories.SessionRepository, accessTTL, rememberTTL time.Duration, log *zap.Logger) *SessionService {
	return &SessionService{
		repo:        repo,
		accessTTL:   accessTTL,
		rememberTTL: rememberTTL,
		log:         log,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// SessionTokens are returned once, at creation; only their hashes are stored
type SessionTokens struct {
	SessionID    string    `json:"sessionId"`
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken,omitempty"`
	TokenType    string    `json:"tokenType"`
	ExpiresIn    int       `json:"expiresIn"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// CleanupResult counts the rows touched by a cleanup run
type CleanupResult struct {
	Deleted     int64 `json:"deleted"`
	Invalidated int64 `json:"invalidated"`
}

func (s *SessionService) ttl(rememberMe bool) time.Duration {
	if rememberMe {
		return s.rememberTTL
	}
	return s.accessTTL
}

// CreateSession issues a new access/refresh token pair for user
func (s *SessionService) CreateSession(ctx context.Context, user *models.User, ip, userAgent string, rememberMe bool) (*SessionTokens, error) {
	accessToken, err := password.GenerateToken()
	if err != nil {
		return nil, err
	}
	refreshToken, err := password.GenerateToken()
	if err != nil {
		return nil, err
	}

	now := s.now()
	session := &models.UserSession{
		SessionID:        ids.NewUUID(),
		UserID:           user.ID,
		AccessTokenHash:  password.HashToken(accessToken),
		RefreshTokenHash: password.HashToken(refreshToken),
		IsValid:          true,
		ExpiresIn:        int(s.ttl(rememberMe).Seconds()),
		CreatedTime:      now,
		LastActivity:     now,
		IPAddress:        ip,
		UserAgent:        truncate(userAgent, 255),
		RememberMe:       rememberMe,
	}
	if err := s.repo.Create(ctx, session); err != nil {
		return nil, err
	}

	return &SessionTokens{
		SessionID:    session.SessionID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    session.ExpiresIn,
		ExpiresAt:    session.ExpiresAt(),
	}, nil
}

// ValidateSession resolves an access token to its session and user
func (s *SessionService) ValidateSession(ctx context.Context, accessToken string) (*models.UserSession, error) {
	session, err := s.repo.GetValidByAccessHash(ctx, hashOrEmpty(accessToken))
	if err != nil {
		return nil, s.lookupFailed(err)
	}

	now := s.now()
	if session.IsExpired(now) || !session.User.IsActive {
		if err := s.repo.Invalidate(ctx, session.SessionID); err != nil {
			return nil, err
		}
		return nil, ErrSessionNotFound
	}

	if err := s.repo.UpdateFields(ctx, session.SessionID, map[string]interface{}{
		"last_activity": now,
	}); err != nil {
		return nil, err
	}
	session.LastActivity = now
	return session, nil
}

// RefreshSession issues a new access token; the refresh token is not rotated.
// A remember-me session restarts its lifetime on refresh.
func (s *SessionService) RefreshSession(ctx context.Context, refreshToken string) (*SessionTokens, error) {
	session, err := s.repo.GetValidByRefreshHash(ctx, hashOrEmpty(refreshToken))
	if err != nil {
		return nil, s.lookupFailed(err)
	}

	now := s.now()
	if (!session.RememberMe && session.IsExpired(now)) || !session.User.IsActive {
		if err := s.repo.Invalidate(ctx, session.SessionID); err != nil {
			return nil, err
		}
		return nil, ErrSessionNotFound
	}

	accessToken, err := password.GenerateToken()
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{
		"access_token_hash": password.HashToken(accessToken),
		"last_activity":     now,
	}
	if session.RememberMe {
		fields["created_time"] = now
		session.CreatedTime = now
	}
	if err := s.repo.UpdateFields(ctx, session.SessionID, fields); err != nil {
		return nil, err
	}

	return &SessionTokens{
		SessionID:   session.SessionID,
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   session.ExpiresIn,
		ExpiresAt:   session.ExpiresAt(),
	}, nil
}

// RevokeSession invalidates a session and blanks its token hashes
func (s *SessionService) RevokeSession(ctx context.Context, sessionID string) error {
	if _, err := s.repo.GetByID(ctx, sessionID); err != nil {
		return s.lookupFailed(err)
	}
	return s.repo.Revoke(ctx, sessionID)
}

// CleanupExpiredSessions deletes invalid or old rows, then invalidates
// still-valid sessions whose lifetime has passed
func (s *SessionService) CleanupExpiredSessions(ctx context.Context, daysOld int) (*CleanupResult, error) {
	if daysOld < 1 {
		daysOld = 1
	}
	now := s.now()

	deleted, err := s.repo.DeleteInvalidOrCreatedBefore(ctx, now.AddDate(0, 0, -daysOld))
	if err != nil {
		return nil, err
	}

	minTTL := s.accessTTL
	if s.rememberTTL < minTTL {
		minTTL = s.rememberTTL
	}
	candidates, err := s.repo.ListValidCreatedBefore(ctx, now.Add(-minTTL))
	if err != nil {
		return nil, err
	}

	var expired []string
	for _, session := range candidates {
		if session.IsExpired(now) {
			expired = append(expired, session.SessionID)
		}
	}
	invalidated, err := s.repo.InvalidateByIDs(ctx, expired)
	if err != nil {
		return nil, err
	}

	s.log.Info("session cleanup completed",
		zap.Int64("deleted", deleted),
		zap.Int64("invalidated", invalidated),
	)
	return &CleanupResult{Deleted: deleted, Invalidated: invalidated}, nil
}

func (s *SessionService) lookupFailed(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrSessionNotFound
	}
	return err
}

func hashOrEmpty(token string) string {
	if token == "" {
		return ""
	}
	return password.HashToken(token)
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
