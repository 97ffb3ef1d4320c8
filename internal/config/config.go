package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

const (
	DefaultNetworkID   = "testnet"
	DefaultContractID  = "nft-final.kumkum.testnet"
	DefaultGas         = uint64(300_000_000_000_000) // 300 TGas
	DefaultMintDeposit = "0.1"
	DefaultWASMPath    = "./res/nft_contract.wasm"
	DefaultCredentials = "~/.near-credentials"
	DefaultListLimit   = uint64(100)
)

// Mock data modes.
const (
	MockDataOff      = "off"
	MockDataOn       = "on"
	MockDataFallback = "fallback"
)

type AppConfig struct {
	API      *APIConfig      `mapstructure:"api"`
	Gin      *GinConfig      `mapstructure:"gin"`
	Postgres *PostgresConfig `mapstructure:"postgres"`
	Near     *NearConfig     `mapstructure:"near"`
	Pinata   *PinataConfig   `mapstructure:"pinata"`
}

type APIConfig struct {
	Environment        string        `mapstructure:"environment"`
	LogLevel           string        `mapstructure:"log_level"`
	Port               string        `mapstructure:"port"`
	BaseURL            string        `mapstructure:"base_url"`
	AllowedCORSDomains []string      `mapstructure:"allowed_cors_domains"`
	JWTSigningKey      string        `mapstructure:"jwt_signing_key"`
	TokenTTL           time.Duration `mapstructure:"token_ttl"`
	SessionSecret      string        `mapstructure:"session_secret"`
}

type GinConfig struct {
	Mode string `mapstructure:"mode"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DB       string `mapstructure:"db"`
	SSLMode  string `mapstructure:"sslmode"`
}

type NearConfig struct {
	NetworkID      string        `mapstructure:"network_id"`
	NodeURL        string        `mapstructure:"node_url"`
	ContractID     string        `mapstructure:"contract_id"`
	WalletURL      string        `mapstructure:"wallet_url"`
	HelperURL      string        `mapstructure:"helper_url"`
	ExplorerURL    string        `mapstructure:"explorer_url"`
	AppName        string        `mapstructure:"app_name"`
	CredentialsDir string        `mapstructure:"credentials_dir"`
	WASMPath       string        `mapstructure:"wasm_path"`
	Gas            uint64        `mapstructure:"gas"`
	MintDeposit    string        `mapstructure:"mint_deposit"`
	ListLimit      uint64        `mapstructure:"list_limit"`
	MockData       string        `mapstructure:"mock_data"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

type PinataConfig struct {
	APIKey     string        `mapstructure:"api_key"`
	APISecret  string        `mapstructure:"api_secret"`
	Endpoint   string        `mapstructure:"endpoint"`
	GatewayURL string        `mapstructure:"gateway_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

var ErrMissingSecret = errors.New("missing secret")

// RequireSecrets fails when the JWT signing key or the key sealing secret is
// empty; the API server refuses to start without both.
func (c *APIConfig) RequireSecrets() error {
	var missing []string
	if c.JWTSigningKey == "" {
		missing = append(missing, "api.jwt_signing_key")
	}
	if c.SessionSecret == "" {
		missing = append(missing, "api.session_secret")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingSecret, strings.Join(missing, ", "))
	}

	return nil
}

func (c *PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DB, c.SSLMode,
	)
}

// Load reads the config file at path, applies defaults and lets environment
// variables override any key (near.contract_id -> NEAR_CONTRACT_ID).
// A missing file is not an error; defaults and env still apply.
func Load(path string) (*AppConfig, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("v.ReadInConfig -> %w", err)
		}
	}

	return unmarshal(v)
}

// Watch reloads the file at path whenever it changes and hands the new
// config to onChange. Invalid edits are reported through onErr and skipped.
func Watch(path string, onChange func(*AppConfig), onErr func(error)) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.ReadInConfig(); err != nil {
		onErr(fmt.Errorf("v.ReadInConfig -> %w", err))
		return
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		conf, err := unmarshal(v)
		if err != nil {
			onErr(err)
			return
		}
		onChange(conf)
	})
	v.WatchConfig()
}

func unmarshal(v *viper.Viper) (*AppConfig, error) {
	conf := &AppConfig{}
	if err := v.Unmarshal(conf); err != nil {
		return nil, fmt.Errorf("v.Unmarshal -> %w", err)
	}

	if conf.Near.NodeURL == "" {
		conf.Near.NodeURL = fmt.Sprintf("https://rpc.%s.near.org", conf.Near.NetworkID)
	}
	if conf.Near.WalletURL == "" {
		conf.Near.WalletURL = fmt.Sprintf("https://%s.mynearwallet.com", conf.Near.NetworkID)
	}
	if conf.Near.HelperURL == "" {
		conf.Near.HelperURL = fmt.Sprintf("https://helper.%s.near.org", conf.Near.NetworkID)
	}
	if conf.Near.ExplorerURL == "" {
		conf.Near.ExplorerURL = fmt.Sprintf("https://explorer.%s.near.org", conf.Near.NetworkID)
	}

	switch conf.Near.MockData {
	case MockDataOff, MockDataOn, MockDataFallback:
	default:
		return nil, fmt.Errorf("invalid near.mock_data %q", conf.Near.MockData)
	}

	return conf, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.environment", "development")
	v.SetDefault("api.log_level", "info")
	v.SetDefault("api.port", "8080")
	v.SetDefault("api.base_url", "localhost:8080")
	v.SetDefault("api.allowed_cors_domains", []string{"http://localhost:3000"})
	v.SetDefault("api.jwt_signing_key", "")
	v.SetDefault("api.token_ttl", 24*time.Hour)
	v.SetDefault("api.session_secret", "")

	v.SetDefault("gin.mode", "debug")

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", "5432")
	v.SetDefault("postgres.user", "postgres")
	v.SetDefault("postgres.password", "postgres")
	v.SetDefault("postgres.db", "nft_marketplace")
	v.SetDefault("postgres.sslmode", "disable")

	v.SetDefault("near.network_id", DefaultNetworkID)
	v.SetDefault("near.node_url", "")
	v.SetDefault("near.contract_id", DefaultContractID)
	v.SetDefault("near.wallet_url", "")
	v.SetDefault("near.helper_url", "")
	v.SetDefault("near.explorer_url", "")
	v.SetDefault("near.app_name", "NEAR NFT App")
	v.SetDefault("near.credentials_dir", DefaultCredentials)
	v.SetDefault("near.wasm_path", DefaultWASMPath)
	v.SetDefault("near.gas", DefaultGas)
	v.SetDefault("near.mint_deposit", DefaultMintDeposit)
	v.SetDefault("near.list_limit", DefaultListLimit)
	v.SetDefault("near.mock_data", MockDataOff)
	v.SetDefault("near.request_timeout", 30*time.Second)

	v.SetDefault("pinata.api_key", "")
	v.SetDefault("pinata.api_secret", "")
	v.SetDefault("pinata.endpoint", "https://api.pinata.cloud")
	v.SetDefault("pinata.gateway_url", "https://gateway.pinata.cloud")
	v.SetDefault("pinata.timeout", 60*time.Second)
}
