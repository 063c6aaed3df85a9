package session

import (
	"context"
	"fmt"
	"time"

	"storefront-service/internal/model"
	"storefront-service/prometheus"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBStore keeps sessions in the sessions table
type DBStore struct {
	db  *gorm.DB
	ttl time.Duration
	log *zap.Logger
	now func() time.Time
}

// NewDBStore creates a database-backed Store
func NewDBStore(db *gorm.DB, ttl time.Duration, log *zap.Logger) *DBStore {
	return &DBStore{
		db:  db,
		ttl: ttl,
		log: log.Named("session"),
		now: time.Now,
	}
}

func (s *DBStore) Create(ctx context.Context) (string, error) {
	defer prometheus.TrackDBOperation("session_create")(time.Now())

	row := model.Session{
		Token:     NewToken(),
		ExpiresAt: s.now().Add(s.ttl),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	return row.Token, nil
}

func (s *DBStore) Exists(ctx context.Context, token string) (bool, error) {
	defer prometheus.TrackDBOperation("session_lookup")(time.Now())

	var count int64
	err := s.db.WithContext(ctx).
		Model(&model.Session{}).
		Where("token = ? AND expires_at > ?", token, s.now()).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("lookup session: %w", err)
	}
	return count > 0, nil
}

// PurgeExpired deletes expired sessions and returns how many were removed.
// Carts keyed by those tokens are left alone.
func (s *DBStore) PurgeExpired(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("expires_at <= ?", s.now()).
		Delete(&model.Session{})
	if result.Error != nil {
		return 0, fmt.Errorf("purge sessions: %w", result.Error)
	}
	s.log.Info("Expired sessions purged", zap.Int64("count", result.RowsAffected))
	return result.RowsAffected, nil
}
