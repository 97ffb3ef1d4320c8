package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/near-nft/marketplace/internal/config"
	"github.com/near-nft/marketplace/internal/domain"
	"github.com/near-nft/marketplace/internal/near"
	"github.com/near-nft/marketplace/internal/pinning"
	"github.com/near-nft/marketplace/internal/repository"
	"github.com/near-nft/marketplace/internal/repository/dao"
	"github.com/near-nft/marketplace/internal/service"
)

// run executes one nftctl invocation against the given memory contract.
func run(t *testing.T, contract *dao.MemoryContractDAO, args ...string) (*cli, string, error) {
	t.Helper()

	var out bytes.Buffer
	c := newCLI(&out)
	c.keys = near.NewFileKeyStore(t.TempDir())
	if contract != nil {
		c.openContract = func(context.Context, *config.NearConfig, dao.Viewer) (repository.ContractDAO, error) {
			return contract, nil
		}
	}

	root := c.rootCmd()
	root.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "missing.yml")}, args...))
	root.SetOut(&out)
	root.SetErr(&out)
	err := root.ExecuteContext(context.Background())

	return c, out.String(), err
}

func TestTokens_SampleData(t *testing.T) {
	_, out, err := run(t, nil, "--mock-data", "on", "tokens")
	require.NoError(t, err)

	var tokens []domain.Token
	require.NoError(t, json.Unmarshal([]byte(out), &tokens))
	assert.Len(t, tokens, len(dao.SampleTokens()))
	assert.Equal(t, "1.5", tokens[0].Price)
}

func TestTokens_InvalidOwner(t *testing.T) {
	_, _, err := run(t, dao.NewMemoryContractDAO("nft.testnet"), "tokens", "--owner", "Not An Account")
	assert.ErrorIs(t, err, near.ErrInvalidAccountID)
}

func TestInit_Twice(t *testing.T) {
	contract := dao.NewMemoryContractDAO("nft.testnet")

	_, out, err := run(t, contract, "--contract", "nft.testnet", "init")
	require.NoError(t, err)

	var first domain.TxResult
	require.NoError(t, json.Unmarshal([]byte(out), &first))
	assert.NotEmpty(t, first.TransactionHash)
	assert.True(t, first.Mock)

	_, out, err = run(t, contract, "--contract", "nft.testnet", "init")
	require.NoError(t, err)

	var second domain.TxResult
	require.NoError(t, json.Unmarshal([]byte(out), &second))
	assert.Empty(t, second.TransactionHash)
}

func TestMint_ThenListByOwner(t *testing.T) {
	contract := dao.NewMemoryContractDAO("nft.testnet")
	contract.Seed()

	_, out, err := run(t, contract,
		"--contract", "nft.testnet",
		"mint",
		"--title", "Sunset",
		"--media", "https://example.com/sunset.png",
		"--price", "2.5",
		"--token-id", "sunset-1",
		"--owner", "alice.testnet",
	)
	require.NoError(t, err)

	var minted domain.MintResult
	require.NoError(t, json.Unmarshal([]byte(out), &minted))
	assert.Equal(t, "sunset-1", minted.Token.TokenID)
	assert.Equal(t, "alice.testnet", minted.Token.OwnerID)
	assert.Equal(t, "2.5", minted.Token.Price)

	_, out, err = run(t, contract, "tokens", "--owner", "alice.testnet")
	require.NoError(t, err)

	var tokens []domain.Token
	require.NoError(t, json.Unmarshal([]byte(out), &tokens))
	require.Len(t, tokens, 1)
	assert.Equal(t, "sunset-1", tokens[0].TokenID)
}

func TestMint_MissingFields(t *testing.T) {
	contract := dao.NewMemoryContractDAO("nft.testnet")
	contract.Seed()

	_, _, err := run(t, contract, "mint", "--title", "Sunset")
	assert.Error(t, err)
}

func TestMint_MediaAndImageExclusive(t *testing.T) {
	_, _, err := run(t, dao.NewMemoryContractDAO("nft.testnet"),
		"mint", "--title", "x", "--price", "1", "--media", "https://example.com/a.png", "--image", "a.png")
	assert.Error(t, err)
}

func TestCart(t *testing.T) {
	contract := dao.NewMemoryContractDAO("nft.testnet")
	contract.Seed(dao.SampleTokens()...)

	_, out, err := run(t, contract, "cart", "bob.testnet")
	require.NoError(t, err)
	assert.JSONEq(t, "[]", out)

	_, _, err = run(t, contract, "cart")
	assert.Error(t, err)
}

func TestPrice(t *testing.T) {
	contract := dao.NewMemoryContractDAO("nft.testnet")
	contract.Seed(dao.SampleTokens()...)

	_, out, err := run(t, contract, "price", "token-2")
	require.NoError(t, err)
	assert.Equal(t, "2.5\n", out)

	_, _, err = run(t, contract, "price", "missing")
	assert.ErrorIs(t, err, service.ErrTokenNotFound)
}

func TestDeploy_RefusesMockData(t *testing.T) {
	_, _, err := run(t, dao.NewMemoryContractDAO("nft.testnet"), "deploy")
	assert.ErrorIs(t, err, errMockDeploy)
}

func TestUpload_MissingCredentials(t *testing.T) {
	t.Setenv("PINATA_API_KEY", "")
	t.Setenv("PINATA_API_SECRET", "")

	path := filepath.Join(t.TempDir(), "cat.png")
	require.NoError(t, os.WriteFile(path, []byte("png"), 0o600))

	_, _, err := run(t, nil, "upload", path)
	assert.ErrorIs(t, err, pinning.ErrMissingCredentials)
}

func TestSetup_FlagsOverrideConfig(t *testing.T) {
	c, _, err := run(t, dao.NewMemoryContractDAO("market.near"),
		"--network", "mainnet",
		"--contract", "market.near",
		"--gas", "100",
		"cart", "bob.near",
	)
	require.NoError(t, err)

	assert.Equal(t, "mainnet", c.conf.Near.NetworkID)
	assert.Equal(t, "https://rpc.mainnet.near.org", c.conf.Near.NodeURL)
	assert.Equal(t, "market.near", c.conf.Near.ContractID)
	assert.Equal(t, uint64(100), c.conf.Near.Gas)
	assert.Equal(t, config.DefaultMintDeposit, c.conf.Near.MintDeposit)
}

func TestSetup_InvalidMockData(t *testing.T) {
	_, _, err := run(t, nil, "--mock-data", "sometimes", "tokens")
	assert.ErrorContains(t, err, "--mock-data")
}
