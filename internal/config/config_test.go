package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
api:
  port: "9090"
  token_ttl: 2h
near:
  network_id: mainnet
  contract_id: market.near
  mock_data: fallback
`)

	conf, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", conf.API.Port)
	assert.Equal(t, 2*time.Hour, conf.API.TokenTTL)
	assert.Equal(t, "market.near", conf.Near.ContractID)
	assert.Equal(t, MockDataFallback, conf.Near.MockData)
	assert.Equal(t, "https://rpc.mainnet.near.org", conf.Near.NodeURL)
	assert.Equal(t, "https://mainnet.mynearwallet.com", conf.Near.WalletURL)
	assert.Equal(t, DefaultGas, conf.Near.Gas)
	assert.Equal(t, DefaultMintDeposit, conf.Near.MintDeposit)
	assert.Equal(t, "https://gateway.pinata.cloud", conf.Pinata.GatewayURL)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	conf, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	require.NoError(t, err)

	assert.Equal(t, DefaultNetworkID, conf.Near.NetworkID)
	assert.Equal(t, DefaultContractID, conf.Near.ContractID)
	assert.Equal(t, "https://rpc.testnet.near.org", conf.Near.NodeURL)
	assert.Equal(t, MockDataOff, conf.Near.MockData)
	assert.Equal(t, DefaultListLimit, conf.Near.ListLimit)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("NEAR_CONTRACT_ID", "env.testnet")
	t.Setenv("API_PORT", "7070")

	conf, err := Load(writeConfig(t, "near:\n  contract_id: file.testnet\n"))
	require.NoError(t, err)

	assert.Equal(t, "env.testnet", conf.Near.ContractID)
	assert.Equal(t, "7070", conf.API.Port)
}

func TestLoad_InvalidMockData(t *testing.T) {
	_, err := Load(writeConfig(t, "near:\n  mock_data: sometimes\n"))
	assert.Error(t, err)
}

func TestPostgresConfig_DSN(t *testing.T) {
	c := &PostgresConfig{Host: "db", Port: "5432", User: "u", Password: "p", DB: "nft", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=nft sslmode=disable", c.DSN())
}

func TestAPIConfig_RequireSecrets(t *testing.T) {
	conf, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	require.NoError(t, err)

	err = conf.API.RequireSecrets()
	assert.ErrorIs(t, err, ErrMissingSecret)
	assert.ErrorContains(t, err, "api.jwt_signing_key, api.session_secret")

	conf.API.JWTSigningKey = "k"
	err = conf.API.RequireSecrets()
	assert.ErrorIs(t, err, ErrMissingSecret)
	assert.NotContains(t, err.Error(), "jwt_signing_key")

	conf.API.SessionSecret = "s"
	assert.NoError(t, conf.API.RequireSecrets())
}
