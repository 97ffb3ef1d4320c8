package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/near-nft/marketplace/internal/domain"
	"github.com/near-nft/marketplace/internal/near"
	"github.com/near-nft/marketplace/internal/repository"
)

var (
	ErrActivityNotFound   = repository.ErrActivityNotFound
	ErrForeignTransaction = errors.New("transaction is not a marketplace call signed by the account")
)

// TxStatusReader looks up the outcome of a transaction that was signed
// elsewhere, typically in the wallet.
type TxStatusReader interface {
	TxStatus(ctx context.Context, txHash, senderID string) (*near.FinalExecutionOutcome, error)
}

type PendingActivityRepository interface {
	Create(ctx context.Context, activity domain.Activity) (domain.Activity, error)
	FindPending(ctx context.Context, accountID string, typ domain.ActivityType, tokenID string) (domain.Activity, error)
	FindByTransaction(ctx context.Context, txHash string) ([]domain.Activity, error)
	Confirm(ctx context.Context, id uint, txHash string) (domain.Activity, error)
}

var calledActivities = map[string]domain.ActivityType{
	"nft_mint":         domain.ActivityMint,
	"buy_nft":          domain.ActivityBuy,
	"add_to_cart":      domain.ActivityCartAdd,
	"remove_from_cart": domain.ActivityCartRemove,
}

// TxService settles the activities that waited for wallet approval once
// the wallet redirects back with the signed transaction hashes.
type TxService struct {
	rpc        TxStatusReader
	activities PendingActivityRepository
	events     EventPublisher
	contractID string
	now        func() time.Time
}

func NewTxService(rpc TxStatusReader, activities PendingActivityRepository, events EventPublisher, contractID string) *TxService {
	return &TxService{
		rpc:        rpc,
		activities: activities,
		events:     events,
		contractID: contractID,
		now:        time.Now,
	}
}

// Confirm checks each transaction on chain and records its marketplace
// calls. Transactions seen before are returned as they were stored and not
// announced again.
func (s *TxService) Confirm(ctx context.Context, accountID string, hashes []string) ([]domain.Activity, error) {
	confirmed := make([]domain.Activity, 0, len(hashes))
	for _, hash := range hashes {
		known, err := s.activities.FindByTransaction(ctx, hash)
		if err != nil {
			return nil, fmt.Errorf("s.activities.FindByTransaction -> %w", err)
		}
		if len(known) > 0 {
			confirmed = append(confirmed, known...)
			continue
		}

		outcome, err := s.rpc.TxStatus(ctx, hash, accountID)
		if err != nil {
			return nil, fmt.Errorf("s.rpc.TxStatus -> %w", err)
		}
		if outcome.Transaction.SignerID != accountID || outcome.Transaction.ReceiverID != s.contractID {
			return nil, fmt.Errorf("%w: %s", ErrForeignTransaction, hash)
		}

		calls, err := outcome.FunctionCalls()
		if err != nil {
			return nil, fmt.Errorf("outcome.FunctionCalls -> %w", err)
		}
		for _, call := range calls {
			activity, ok, err := s.settle(ctx, accountID, hash, call)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}

			confirmed = append(confirmed, activity)
			if s.events != nil {
				s.events.Publish(activity.Event())
			}
		}
	}

	return confirmed, nil
}

// settle attaches hash to the pending activity of the call, or records a
// new one when the call was not started through this API.
func (s *TxService) settle(ctx context.Context, accountID, hash string, call near.CalledFunction) (domain.Activity, bool, error) {
	typ, ok := calledActivities[call.MethodName]
	if !ok {
		return domain.Activity{}, false, nil
	}

	var args struct {
		TokenID string `json:"token_id"`
		Price   string `json:"price"`
	}
	if err := json.Unmarshal(call.Args, &args); err != nil || args.TokenID == "" {
		zap.L().Warn("skipping call without token id", zap.String("tx", hash), zap.String("method", call.MethodName))
		return domain.Activity{}, false, nil
	}

	pending, err := s.activities.FindPending(ctx, accountID, typ, args.TokenID)
	switch {
	case err == nil:
		confirmed, err := s.activities.Confirm(ctx, pending.ID, hash)
		if err != nil {
			return domain.Activity{}, false, fmt.Errorf("s.activities.Confirm -> %w", err)
		}

		return confirmed, true, nil
	case !errors.Is(err, ErrActivityNotFound):
		return domain.Activity{}, false, fmt.Errorf("s.activities.FindPending -> %w", err)
	}

	activity := domain.Activity{
		AccountID:       accountID,
		Type:            typ,
		TokenID:         args.TokenID,
		Price:           calledPrice(typ, args.Price, call),
		TransactionHash: hash,
		CreatedAt:       s.now(),
	}
	created, err := s.activities.Create(ctx, activity)
	if err != nil {
		return domain.Activity{}, false, fmt.Errorf("s.activities.Create -> %w", err)
	}

	return created, true, nil
}

// calledPrice is the listing price for a mint and the attached deposit for
// a purchase, in NEAR.
func calledPrice(typ domain.ActivityType, yocto string, call near.CalledFunction) string {
	switch typ {
	case domain.ActivityMint:
		if price, err := near.FormatNearAmount(yocto); err == nil {
			return price
		}
	case domain.ActivityBuy:
		return near.FormatYocto(call.Deposit)
	}

	return ""
}
