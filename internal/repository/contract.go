package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/near-nft/marketplace/internal/config"
	"github.com/near-nft/marketplace/internal/repository/dao"
)

// OpenContract picks the contract backend for the configured mock-data
// mode. In fallback mode the deployed contract is checked with a one-token
// listing and the sample data is served when that check fails.
func OpenContract(ctx context.Context, conf *config.NearConfig, rpc dao.Viewer) (ContractDAO, error) {
	live := dao.NewContractDAO(rpc, conf.ContractID)

	switch conf.MockData {
	case config.MockDataOff, "":
		return live, nil
	case config.MockDataOn:
		zap.L().Warn("serving sample tokens instead of the contract", zap.String("contract_id", conf.ContractID))
		return sampleContract(conf.ContractID), nil
	case config.MockDataFallback:
		if _, err := live.NFTTokens(ctx, 0, 1); err != nil {
			zap.L().Warn("contract unreachable, serving sample tokens",
				zap.String("contract_id", conf.ContractID), zap.Error(err))
			return sampleContract(conf.ContractID), nil
		}

		return live, nil
	}

	return nil, fmt.Errorf("unknown mock data mode %q", conf.MockData)
}

func sampleContract(contractID string) *dao.MemoryContractDAO {
	store := dao.NewMemoryContractDAO(contractID)
	store.Seed(dao.SampleTokens()...)

	return store
}
