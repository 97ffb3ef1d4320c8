package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/near-nft/marketplace/internal/service"
)

var errMockDeploy = errors.New("deploy needs a live network, run it with --mock-data off")

func (c *cli) deployCmd() *cobra.Command {
	var (
		wasmPath string
		ownerID  string
	)

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Deploy the contract WASM to the contract account and initialize it",
		Long: `Deploys the compiled contract to the contract account, signed with its
full-access key, then calls new(owner_id). An already initialized contract
is left as it is.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			repo, err := c.contractRepo(cmd.Context())
			if err != nil {
				return err
			}
			if repo.IsMock() {
				return errMockDeploy
			}

			if wasmPath == "" {
				wasmPath = c.conf.Near.WASMPath
			}
			code, err := os.ReadFile(wasmPath)
			if err != nil {
				return fmt.Errorf("os.ReadFile -> %w", err)
			}

			account, err := c.signer(false)
			if err != nil {
				return err
			}

			res, err := service.NewDeployService(repo, c.conf.Near.Gas).DeployAndInitialize(cmd.Context(), account, code, ownerID)
			if err != nil {
				return err
			}

			return c.print(res)
		},
	}

	cmd.Flags().StringVar(&wasmPath, "wasm", "", "contract WASM (default near.wasm_path)")
	cmd.Flags().StringVar(&ownerID, "owner", "", "contract owner (default the signing account)")

	return cmd
}

func (c *cli) initCmd() *cobra.Command {
	var ownerID string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the deployed contract",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			repo, err := c.contractRepo(cmd.Context())
			if err != nil {
				return err
			}

			account, err := c.signer(repo.IsMock())
			if err != nil {
				return err
			}

			res, err := service.NewDeployService(repo, c.conf.Near.Gas).Initialize(cmd.Context(), account, ownerID)
			if err != nil {
				return err
			}

			return c.print(res)
		},
	}

	cmd.Flags().StringVar(&ownerID, "owner", "", "contract owner (default the signing account)")

	return cmd
}
