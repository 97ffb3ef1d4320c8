package repository

import (
	"context"
	"fmt"

	"github.com/near-nft/marketplace/internal/domain"
	"github.com/near-nft/marketplace/internal/repository/dao"
)

var ErrActivityNotFound = dao.ErrActivityNotFound

type ActivityDAO interface {
	Insert(ctx context.Context, activity dao.Activity) (dao.Activity, error)
	FindByAccount(ctx context.Context, accountID string, limit int) ([]dao.Activity, error)
	FindByToken(ctx context.Context, tokenID string) ([]dao.Activity, error)
	FindPending(ctx context.Context, accountID, typ, tokenID string) (dao.Activity, error)
	FindByTransaction(ctx context.Context, txHash string) ([]dao.Activity, error)
	SetTransaction(ctx context.Context, id uint, txHash string) (dao.Activity, error)
}

type ActivityRepository struct {
	dao ActivityDAO
}

func NewActivityRepository(dao ActivityDAO) *ActivityRepository {
	return &ActivityRepository{
		dao: dao,
	}
}

func (r *ActivityRepository) Create(ctx context.Context, activity domain.Activity) (domain.Activity, error) {
	created, err := r.dao.Insert(ctx, dao.Activity{
		AccountID:       activity.AccountID,
		Type:            string(activity.Type),
		TokenID:         activity.TokenID,
		Price:           activity.Price,
		TransactionHash: activity.TransactionHash,
		WalletURL:       activity.WalletURL,
		Mock:            activity.Mock,
	})
	if err != nil {
		return domain.Activity{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *ActivityRepository) FindByAccount(ctx context.Context, accountID string, limit int) ([]domain.Activity, error) {
	found, err := r.dao.FindByAccount(ctx, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByAccount -> %w", err)
	}

	return r.listToDomain(found), nil
}

func (r *ActivityRepository) FindByToken(ctx context.Context, tokenID string) ([]domain.Activity, error) {
	found, err := r.dao.FindByToken(ctx, tokenID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByToken -> %w", err)
	}

	return r.listToDomain(found), nil
}

func (r *ActivityRepository) FindPending(ctx context.Context, accountID string, typ domain.ActivityType, tokenID string) (domain.Activity, error) {
	found, err := r.dao.FindPending(ctx, accountID, string(typ), tokenID)
	if err != nil {
		return domain.Activity{}, fmt.Errorf("r.dao.FindPending -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *ActivityRepository) FindByTransaction(ctx context.Context, txHash string) ([]domain.Activity, error) {
	found, err := r.dao.FindByTransaction(ctx, txHash)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByTransaction -> %w", err)
	}

	return r.listToDomain(found), nil
}

// Confirm attaches the signed transaction to an activity that was waiting
// for wallet approval.
func (r *ActivityRepository) Confirm(ctx context.Context, id uint, txHash string) (domain.Activity, error) {
	updated, err := r.dao.SetTransaction(ctx, id, txHash)
	if err != nil {
		return domain.Activity{}, fmt.Errorf("r.dao.SetTransaction -> %w", err)
	}

	return r.daoToDomain(updated), nil
}

func (r *ActivityRepository) listToDomain(list []dao.Activity) []domain.Activity {
	out := make([]domain.Activity, 0, len(list))
	for _, a := range list {
		out = append(out, r.daoToDomain(a))
	}

	return out
}

func (r *ActivityRepository) daoToDomain(a dao.Activity) domain.Activity {
	return domain.Activity{
		ID:              a.ID,
		AccountID:       a.AccountID,
		Type:            domain.ActivityType(a.Type),
		TokenID:         a.TokenID,
		Price:           a.Price,
		TransactionHash: a.TransactionHash,
		WalletURL:       a.WalletURL,
		Mock:            a.Mock,
		CreatedAt:       a.CreatedAt,
	}
}
