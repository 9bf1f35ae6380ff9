package repositories

import (
	"context"
	"time"

	"idle-resource-hub/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// sessionRepository implements SessionRepository interface
type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

// Create creates a new session
func (r *sessionRepository) Create(ctx context.Context, session *models.UserSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

// GetByID gets a session by its id
func (r *sessionRepository) GetByID(ctx context.Context, sessionID string) (*models.UserSession, error) {
	var session models.UserSession
	err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// GetValidByAccessHash gets a valid session by access token hash
func (r *sessionRepository) GetValidByAccessHash(ctx context.Context, hash string) (*models.UserSession, error) {
	return r.getValidBy(ctx, "access_token_hash", hash)
}

// GetValidByRefreshHash gets a valid session by refresh token hash
func (r *sessionRepository) GetValidByRefreshHash(ctx context.Context, hash string) (*models.UserSession, error) {
	return r.getValidBy(ctx, "refresh_token_hash", hash)
}

func (r *sessionRepository) getValidBy(ctx context.Context, column, hash string) (*models.UserSession, error) {
	if hash == "" {
		return nil, gorm.ErrRecordNotFound
	}
	var session models.UserSession
	err := r.db.WithContext(ctx).
		Preload("User").
		Where(column+" = ?", hash).
		Where("is_valid = ?", true).
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// UpdateFields updates selected columns of a session
func (r *sessionRepository) UpdateFields(ctx context.Context, sessionID string, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&models.UserSession{}).
		Where("session_id = ?", sessionID).
		Updates(fields).Error
}

// Invalidate marks a session invalid and keeps its hashes
func (r *sessionRepository) Invalidate(ctx context.Context, sessionID string) error {
	return r.db.WithContext(ctx).
		Model(&models.UserSession{}).
		Where("session_id = ?", sessionID).
		Update("is_valid", false).Error
}

// Revoke marks a session invalid and blanks both token hashes
func (r *sessionRepository) Revoke(ctx context.Context, sessionID string) error {
	return r.db.WithContext(ctx).
		Model(&models.UserSession{}).
		Where("session_id = ?", sessionID).
		Updates(map[string]interface{}{
			"is_valid":           false,
			"access_token_hash":  "",
			"refresh_token_hash": "",
		}).Error
}

// DeleteInvalidOrCreatedBefore deletes invalid sessions and sessions older than cutoff
func (r *sessionRepository) DeleteInvalidOrCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("is_valid = ? OR created_time < ?", false, cutoff).
		Delete(&models.UserSession{})
	return result.RowsAffected, result.Error
}

// ListValidCreatedBefore lists still-valid sessions created before cutoff (cleanup job)
func (r *sessionRepository) ListValidCreatedBefore(ctx context.Context, cutoff time.Time) ([]*models.UserSession, error) {
	var sessions []*models.UserSession
	err := r.db.WithContext(ctx).
		Where("is_valid = ?", true).
		Where("created_time < ?", cutoff).
		Find(&sessions).Error
	return sessions, err
}

// InvalidateByIDs marks the given sessions invalid
func (r *sessionRepository) InvalidateByIDs(ctx context.Context, sessionIDs []string) (int64, error) {
	if len(sessionIDs) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Model(&models.UserSession{}).
		Where("session_id IN ?", sessionIDs).
		Update("is_valid", false)
	return result.RowsAffected, result.Error
}
