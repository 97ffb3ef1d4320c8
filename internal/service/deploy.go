package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/near-nft/marketplace/internal/domain"
	"github.com/near-nft/marketplace/internal/near"
	"github.com/near-nft/marketplace/internal/repository"
)

// ContractAccount is the contract's own account, holding a full-access key.
type ContractAccount interface {
	repository.Caller
	DeployContract(ctx context.Context, code []byte) (*near.FinalExecutionOutcome, error)
}

type DeployService struct {
	repo NFTRepository
	gas  uint64
}

func NewDeployService(repo NFTRepository, gas uint64) *DeployService {
	return &DeployService{
		repo: repo,
		gas:  gas,
	}
}

func (s *DeployService) Deploy(ctx context.Context, account ContractAccount, code []byte) (string, error) {
	if len(code) == 0 {
		return "", errors.New("contract code is empty")
	}

	outcome, err := account.DeployContract(ctx, code)
	if err != nil {
		return "", fmt.Errorf("account.DeployContract -> %w", err)
	}

	zap.L().Info("contract deployed",
		zap.String("account_id", account.AccountID()),
		zap.String("transaction_hash", outcome.Transaction.Hash),
		zap.Int("size", len(code)))

	return outcome.Transaction.Hash, nil
}

// Initialize calls new(owner_id). A contract that is already initialized
// counts as success, so running it twice is harmless.
func (s *DeployService) Initialize(ctx context.Context, account repository.Caller, ownerID string) (domain.TxResult, error) {
	if ownerID == "" {
		ownerID = account.AccountID()
	}

	res, err := s.repo.Initialize(ctx, account, ownerID, s.gas)
	if err != nil {
		if errors.Is(err, ErrAlreadyInitialized) || near.IsAlreadyInitialized(err) {
			zap.L().Info("contract already initialized", zap.String("contract_id", s.repo.ContractID()))
			return domain.TxResult{Mock: s.repo.IsMock()}, nil
		}

		return domain.TxResult{}, fmt.Errorf("s.repo.Initialize -> %w", err)
	}

	zap.L().Info("contract initialized",
		zap.String("contract_id", s.repo.ContractID()),
		zap.String("owner_id", ownerID),
		zap.String("transaction_hash", res.TransactionHash),
		zap.Strings("logs", res.Logs))

	return res, nil
}

func (s *DeployService) DeployAndInitialize(ctx context.Context, account ContractAccount, code []byte, ownerID string) (domain.TxResult, error) {
	if _, err := s.Deploy(ctx, account, code); err != nil {
		return domain.TxResult{}, err
	}

	return s.Initialize(ctx, account, ownerID)
}
