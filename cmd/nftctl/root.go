package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/near-nft/marketplace/internal/config"
	"github.com/near-nft/marketplace/internal/logger"
	"github.com/near-nft/marketplace/internal/near"
	"github.com/near-nft/marketplace/internal/pinning"
	"github.com/near-nft/marketplace/internal/repository"
	"github.com/near-nft/marketplace/internal/repository/dao"
	"github.com/near-nft/marketplace/internal/service"
)

const defaultConfigPath = "./cmd/app/config.yml"

// cli holds the flags and the clients built from them once config is loaded.
type cli struct {
	configPath  string
	network     string
	node        string
	contract    string
	credentials string
	gas         uint64
	mockData    string
	signerID    string
	verbose     bool

	conf *config.AppConfig
	rpc  *near.Client
	keys near.KeyStore
	out  io.Writer

	openContract func(ctx context.Context, conf *config.NearConfig, rpc dao.Viewer) (repository.ContractDAO, error)
	contractDAO  repository.ContractDAO
}

func newRootCmd(out io.Writer) *cobra.Command {
	return newCLI(out).rootCmd()
}

func newCLI(out io.Writer) *cli {
	return &cli{
		out:          out,
		openContract: repository.OpenContract,
	}
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "nftctl",
		Short: "Deploy, initialize and use the NFT marketplace contract",
		Long: `nftctl talks to the marketplace contract directly, signing with keys
from the near-cli credentials directory (see "near login").

Defaults come from the app config; flags override them.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd)
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			_ = zap.L().Sync()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", defaultConfigPath, "config file")
	flags.StringVar(&c.network, "network", config.DefaultNetworkID, "NEAR network id")
	flags.StringVar(&c.node, "node", "", "RPC node URL (default https://rpc.<network>.near.org)")
	flags.StringVar(&c.contract, "contract", config.DefaultContractID, "contract account id")
	flags.StringVar(&c.credentials, "credentials", config.DefaultCredentials, "near-cli credentials directory")
	flags.Uint64Var(&c.gas, "gas", config.DefaultGas, "gas attached to change calls")
	flags.StringVar(&c.mockData, "mock-data", config.MockDataOff, "off, on or fallback")
	flags.StringVar(&c.signerID, "account", "", "signing account (default the contract account)")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		c.deployCmd(),
		c.initCmd(),
		c.mintCmd(),
		c.tokensCmd(),
		c.cartCmd(),
		c.priceCmd(),
		c.uploadCmd(),
	)

	return root
}

// setup loads the config and applies the flags the user actually set.
func (c *cli) setup(cmd *cobra.Command) error {
	conf, err := config.Load(c.configPath)
	if err != nil {
		return fmt.Errorf("config.Load -> %w", err)
	}

	if err = logger.Init(conf.API.Environment); err != nil {
		return fmt.Errorf("logger.Init -> %w", err)
	}
	lvl := conf.API.LogLevel
	if c.verbose {
		lvl = "debug"
	}
	if err = logger.SetLevel(lvl); err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("network") {
		conf.Near.NetworkID = c.network
		if !flags.Changed("node") {
			conf.Near.NodeURL = fmt.Sprintf("https://rpc.%s.near.org", c.network)
		}
	}
	if flags.Changed("node") {
		conf.Near.NodeURL = c.node
	}
	if flags.Changed("contract") {
		conf.Near.ContractID = c.contract
	}
	if flags.Changed("credentials") {
		conf.Near.CredentialsDir = c.credentials
	}
	if flags.Changed("gas") {
		conf.Near.Gas = c.gas
	}
	if flags.Changed("mock-data") {
		switch c.mockData {
		case config.MockDataOff, config.MockDataOn, config.MockDataFallback:
			conf.Near.MockData = c.mockData
		default:
			return fmt.Errorf("invalid --mock-data %q", c.mockData)
		}
	}

	if err = near.ValidateAccountID(conf.Near.ContractID); err != nil {
		return err
	}

	c.conf = conf
	c.rpc = near.NewClient(conf.Near.NodeURL, conf.Near.NetworkID, conf.Near.RequestTimeout)
	if c.keys == nil {
		c.keys = near.NewFileKeyStore(conf.Near.CredentialsDir)
	}

	zap.L().Debug("nftctl configured",
		zap.String("network_id", conf.Near.NetworkID),
		zap.String("node_url", conf.Near.NodeURL),
		zap.String("contract_id", conf.Near.ContractID),
		zap.String("mock_data", conf.Near.MockData))

	return nil
}

func (c *cli) contractRepo(ctx context.Context) (*repository.NFTRepository, error) {
	if c.contractDAO == nil {
		contract, err := c.openContract(ctx, c.conf.Near, c.rpc)
		if err != nil {
			return nil, err
		}
		c.contractDAO = contract
	}

	return repository.NewNFTRepository(c.contractDAO), nil
}

func (c *cli) marketService(ctx context.Context) (*service.MarketService, error) {
	repo, err := c.contractRepo(ctx)
	if err != nil {
		return nil, err
	}

	// Nothing is recorded or broadcast outside the API server.
	return service.NewMarketService(repo, nil, nil, c.conf.Near), nil
}

func (c *cli) mediaService() *service.MediaService {
	return service.NewMediaService(pinning.NewPinataClient(c.conf.Pinata))
}

// signer loads the key of --account, or of the contract account. Mock data
// never signs anything, so a missing key is fine there.
func (c *cli) signer(mock bool) (*near.Account, error) {
	accountID := c.signerID
	if accountID == "" {
		accountID = c.conf.Near.ContractID
	}

	account, err := near.LoadAccount(c.rpc, c.keys, c.conf.Near.NetworkID, accountID)
	if err != nil {
		if mock && errors.Is(err, near.ErrKeyNotFound) {
			return near.NewAccount(c.rpc, accountID, near.KeyPair{}), nil
		}
		return nil, fmt.Errorf("near.LoadAccount -> %w", err)
	}

	return account, nil
}

func (c *cli) print(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}
