package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrActivityNotFound = errors.New("activity not found")

type Activity struct {
	ID uint `gorm:"primaryKey"`

	AccountID       string `gorm:"index;not null"`
	Type            string `gorm:"not null"`
	TokenID         string `gorm:"index;not null"`
	Price           string
	TransactionHash string
	WalletURL       string
	Mock            bool `gorm:"not null;default:false"`

	CreatedAt time.Time `gorm:"not null"`
}

type ActivityDAO struct {
	db *gorm.DB
}

func NewActivityDAO(db *gorm.DB) *ActivityDAO {
	return &ActivityDAO{
		db: db,
	}
}

func (d *ActivityDAO) Insert(ctx context.Context, activity Activity) (Activity, error) {
	result := d.db.WithContext(ctx).Create(&activity)
	if result.Error != nil {
		return Activity{}, result.Error
	}

	return activity, nil
}

// FindByAccount returns the newest activities first.
func (d *ActivityDAO) FindByAccount(ctx context.Context, accountID string, limit int) ([]Activity, error) {
	var activities []Activity

	result := d.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&activities)
	if result.Error != nil {
		return nil, result.Error
	}

	return activities, nil
}

func (d *ActivityDAO) FindByToken(ctx context.Context, tokenID string) ([]Activity, error) {
	var activities []Activity

	result := d.db.WithContext(ctx).
		Where("token_id = ?", tokenID).
		Order("created_at ASC, id ASC").
		Find(&activities)
	if result.Error != nil {
		return nil, result.Error
	}

	return activities, nil
}

// FindPending returns the newest activity of the kind that is still waiting
// for the wallet to sign it.
func (d *ActivityDAO) FindPending(ctx context.Context, accountID, typ, tokenID string) (Activity, error) {
	var activity Activity

	result := d.db.WithContext(ctx).
		Where("account_id = ? AND type = ? AND token_id = ?", accountID, typ, tokenID).
		Where("wallet_url <> '' AND transaction_hash = ''").
		Order("created_at DESC, id DESC").
		First(&activity)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Activity{}, ErrActivityNotFound
		}

		return Activity{}, result.Error
	}

	return activity, nil
}

func (d *ActivityDAO) FindByTransaction(ctx context.Context, txHash string) ([]Activity, error) {
	var activities []Activity

	result := d.db.WithContext(ctx).
		Where("transaction_hash = ?", txHash).
		Order("id ASC").
		Find(&activities)
	if result.Error != nil {
		return nil, result.Error
	}

	return activities, nil
}

// SetTransaction records the hash of the transaction the wallet signed.
func (d *ActivityDAO) SetTransaction(ctx context.Context, id uint, txHash string) (Activity, error) {
	result := d.db.WithContext(ctx).
		Model(&Activity{ID: id}).
		Update("transaction_hash", txHash)
	if result.Error != nil {
		return Activity{}, result.Error
	}
	if result.RowsAffected == 0 {
		return Activity{}, ErrActivityNotFound
	}

	var activity Activity
	if err := d.db.WithContext(ctx).First(&activity, id).Error; err != nil {
		return Activity{}, err
	}

	return activity, nil
}
