package session

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/session"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStoreはセッションをsession_recordsに永続化する。
type GormStore struct {
	db *gorm.DB
}

// DI
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Load(ctx context.Context, id string) (*session.Session, error) {
	var rec model.SessionRecord
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repo.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return session.Decode(rec.ID, []byte(rec.Data))
}

// Saveはupsert。新規セッションと既存の更新を区別しない。
func (s *GormStore) Save(ctx context.Context, sess *session.Session) error {
	data, err := sess.Encode()
	if err != nil {
		return err
	}

	rec := model.SessionRecord{
		ID:   sess.ID,
		Data: string(data),
	}

	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
		}).
		Create(&rec).Error
}
