package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"idle-resource-hub/internal/adapters/persistence/models"
	"idle-resource-hub/internal/adapters/persistence/repositories"
	"idle-resource-hub/internal/pkg/password"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type authFixture struct {
	db       *gorm.DB
	auth     *AuthService
	sessions *SessionService
	clock    time.Time
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	db := newTestDB(t)
	f := &authFixture{db: db, clock: time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)}

	f.sessions = NewSessionService(repositories.NewSessionRepository(db), time.Hour, 7*24*time.Hour, zap.NewNop())
	f.sessions.now = func() time.Time { return f.clock }
	f.auth = NewAuthService(repositories.NewUserRepository(db), f.sessions, zap.NewNop())
	return f
}

func (f *authFixture) addUser(t *testing.T, username string, active bool) *models.User {
	t.Helper()
	hash, err := password.HashWithCost("Secret123!", 4)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	user := &models.User{Username: username, Email: username + "@example.com", Password: hash, Role: "MANAGER"}
	if err := f.db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	if !active {
		if err := f.db.Model(user).Update("is_active", false).Error; err != nil {
			t.Fatalf("failed to deactivate user: %v", err)
		}
	}
	return user
}

func TestLogin_RejectsBadCredentials(t *testing.T) {
	f := newAuthFixture(t)
	f.addUser(t, "mika", true)
	f.addUser(t, "sleepy", false)
	ctx := context.Background()

	if _, err := f.auth.Login(ctx, &LoginInput{Username: "mika", Password: "wrong"}, ClientInfo{}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected invalid credentials for a bad password, got %v", err)
	}
	if _, err := f.auth.Login(ctx, &LoginInput{Username: "nobody", Password: "Secret123!"}, ClientInfo{}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected invalid credentials for an unknown user, got %v", err)
	}
	if _, err := f.auth.Login(ctx, &LoginInput{Username: "sleepy", Password: "Secret123!"}, ClientInfo{}); !errors.Is(err, ErrUserInactive) {
		t.Errorf("expected inactive user error, got %v", err)
	}

	var attempts int64
	f.db.Model(&models.LoginAttempt{}).Where("success = ?", false).Count(&attempts)
	if attempts != 3 {
		t.Errorf("expected 3 failed attempts recorded, got %d", attempts)
	}
}

func TestSession_Lifecycle(t *testing.T) {
	f := newAuthFixture(t)
	f.addUser(t, "mika", true)
	ctx := context.Background()

	login, err := f.auth.Login(ctx, &LoginInput{Username: "mika", Password: "Secret123!"}, ClientInfo{IPAddress: "10.0.0.1"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if login.AccessToken == "" || login.RefreshToken == "" {
		t.Fatal("expected both tokens on login")
	}
	if login.ExpiresIn != 3600 {
		t.Errorf("expected 3600 second lifetime, got %d", login.ExpiresIn)
	}

	valid, err := f.auth.Validate(ctx, login.AccessToken)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if valid.SessionID != login.SessionID || valid.User.Username != "mika" {
		t.Errorf("expected session %s for mika, got %s for %s", login.SessionID, valid.SessionID, valid.User.Username)
	}

	refreshed, err := f.auth.Refresh(ctx, login.RefreshToken)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if refreshed.AccessToken == login.AccessToken {
		t.Error("expected a new access token")
	}
	if _, err := f.auth.Validate(ctx, login.AccessToken); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected the replaced access token to fail, got %v", err)
	}
	if _, err := f.auth.Validate(ctx, refreshed.AccessToken); err != nil {
		t.Errorf("expected the new access token to validate, got %v", err)
	}

	if err := f.auth.Logout(ctx, login.SessionID); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if _, err := f.auth.Validate(ctx, refreshed.AccessToken); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected revoked session to fail, got %v", err)
	}
	if _, err := f.auth.Refresh(ctx, login.RefreshToken); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected refresh of a revoked session to fail, got %v", err)
	}
}

func TestSession_ExpiresAfterLifetime(t *testing.T) {
	f := newAuthFixture(t)
	f.addUser(t, "mika", true)
	ctx := context.Background()

	login, err := f.auth.Login(ctx, &LoginInput{Username: "mika", Password: "Secret123!"}, ClientInfo{})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	f.clock = f.clock.Add(time.Hour + time.Minute)
	if _, err := f.auth.Validate(ctx, login.AccessToken); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected expired session, got %v", err)
	}
	if _, err := f.auth.Refresh(ctx, login.RefreshToken); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected refresh of an expired session to fail, got %v", err)
	}
}

func TestSession_RememberMeRefreshExtends(t *testing.T) {
	f := newAuthFixture(t)
	f.addUser(t, "mika", true)
	ctx := context.Background()

	short, err := f.auth.Login(ctx, &LoginInput{Username: "mika", Password: "Secret123!"}, ClientInfo{})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if short.ExpiresIn != 3600 {
		t.Errorf("expected expiresIn 3600, got %d", short.ExpiresIn)
	}

	login, err := f.auth.Login(ctx, &LoginInput{Username: "mika", Password: "Secret123!", RememberMe: true}, ClientInfo{})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if login.ExpiresIn != 604800 {
		t.Errorf("expected expiresIn 604800, got %d", login.ExpiresIn)
	}

	f.clock = f.clock.Add(6 * 24 * time.Hour)
	refreshed, err := f.auth.Refresh(ctx, login.RefreshToken)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if refreshed.ExpiresIn != 604800 {
		t.Errorf("expected refreshed expiresIn 604800, got %d", refreshed.ExpiresIn)
	}
	want := f.clock.Add(7 * 24 * time.Hour)
	if !refreshed.ExpiresAt.Equal(want) {
		t.Errorf("expected expiry %s, got %s", want, refreshed.ExpiresAt)
	}
}

func TestLogin_TruncatesUserAgentOnRuneBoundary(t *testing.T) {
	f := newAuthFixture(t)
	f.addUser(t, "mika", true)

	agent := strings.Repeat("a", 254) + "é"
	login, err := f.auth.Login(context.Background(), &LoginInput{Username: "mika", Password: "Secret123!"}, ClientInfo{UserAgent: agent})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	var session models.UserSession
	if err := f.db.Where("session_id = ?", login.SessionID).First(&session).Error; err != nil {
		t.Fatalf("failed to load session: %v", err)
	}
	if !utf8.ValidString(session.UserAgent) {
		t.Errorf("expected valid UTF-8 user agent, got %q", session.UserAgent)
	}
	if len(session.UserAgent) != 254 {
		t.Errorf("expected 254 bytes, got %d", len(session.UserAgent))
	}
	if got := truncate("héllo", 2); got != "h" {
		t.Errorf("expected %q, got %q", "h", got)
	}
}

func TestCleanupExpiredSessions(t *testing.T) {
	f := newAuthFixture(t)
	f.addUser(t, "mika", true)
	ctx := context.Background()

	revoked, err := f.auth.Login(ctx, &LoginInput{Username: "mika", Password: "Secret123!"}, ClientInfo{})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if _, err := f.auth.Login(ctx, &LoginInput{Username: "mika", Password: "Secret123!"}, ClientInfo{}); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if err := f.auth.Logout(ctx, revoked.SessionID); err != nil {
		t.Fatalf("logout failed: %v", err)
	}

	f.clock = f.clock.Add(2 * time.Hour)
	result, err := f.auth.CleanupSessions(ctx, 30)
	if err != nil {
		t.Fatalf("cleanup failed: %v", err)
	}
	if result.Deleted != 1 {
		t.Errorf("expected 1 deleted session, got %d", result.Deleted)
	}
	if result.Invalidated != 1 {
		t.Errorf("expected 1 invalidated session, got %d", result.Invalidated)
	}
}
