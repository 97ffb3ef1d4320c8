package dao

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrSessionKeyExists = errors.New("session public key already exists")
	ErrSessionNotFound  = errors.New("session not found")
)

type Session struct {
	ID string `gorm:"primaryKey;type:varchar(36)"`

	AccountID string `gorm:"index"`
	PublicKey string `gorm:"unique;not null"`
	SealedKey []byte `gorm:"not null"`

	// Comma separated, as the wallet reports them in all_keys.
	FullAccessKeys string
	Balance        string
	Status         string `gorm:"not null"`
	UserAgent      string

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type SessionDAO struct {
	db *gorm.DB
}

func NewSessionDAO(db *gorm.DB) *SessionDAO {
	return &SessionDAO{
		db: db,
	}
}

func (d *SessionDAO) Insert(ctx context.Context, session Session) (Session, error) {
	result := d.db.WithContext(ctx).Create(&session)
	if result.Error != nil {
		var err *pgconn.PgError
		if errors.As(result.Error, &err) &&
			err.Code == pgerrcode.UniqueViolation &&
			strings.Contains(err.Message, `unique constraint "uni_sessions_public_key"`) {
			return Session{}, ErrSessionKeyExists
		}

		return Session{}, result.Error
	}

	return session, nil
}

func (d *SessionDAO) FindByID(ctx context.Context, id string) (Session, error) {
	var session Session

	result := d.db.WithContext(ctx).First(&session, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Session{}, ErrSessionNotFound
		}

		return Session{}, result.Error
	}

	return session, nil
}

func (d *SessionDAO) Update(ctx context.Context, session Session) (Session, error) {
	result := d.db.WithContext(ctx).Model(&Session{ID: session.ID}).Select("*").Omit("created_at").Updates(&session)
	if result.Error != nil {
		return Session{}, result.Error
	}
	if result.RowsAffected == 0 {
		return Session{}, ErrSessionNotFound
	}

	return session, nil
}

// DeleteStale removes sessions in status that were started before the cutoff.
func (d *SessionDAO) DeleteStale(ctx context.Context, status string, before time.Time) (int64, error) {
	result := d.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", status, before).
		Delete(&Session{})
	if result.Error != nil {
		return 0, result.Error
	}

	return result.RowsAffected, nil
}
