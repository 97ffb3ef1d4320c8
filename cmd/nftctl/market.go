package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/near-nft/marketplace/internal/domain"
	"github.com/near-nft/marketplace/internal/near"
)

func (c *cli) mintCmd() *cobra.Command {
	var (
		in        domain.MintInput
		imagePath string
	)

	cmd := &cobra.Command{
		Use:   "mint",
		Short: "Mint a token priced in NEAR",
		Example: `  nftctl mint --title "Sunset" --image ./sunset.png --price 1.5
  nftctl mint --title "Sunset" --media https://example.com/sunset.png --price 1.5 --owner alice.testnet`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if in.Media == "" && imagePath != "" {
				url, err := c.upload(cmd, imagePath)
				if err != nil {
					return err
				}
				in.Media = url
			}

			market, err := c.marketService(cmd.Context())
			if err != nil {
				return err
			}

			account, err := c.signer(market.IsMock())
			if err != nil {
				return err
			}

			res, err := market.Mint(cmd.Context(), account, in)
			if err != nil {
				return err
			}
			for _, line := range res.Logs {
				zap.L().Info("contract log", zap.String("token_id", res.Token.TokenID), zap.String("log", line))
			}

			return c.print(res)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&in.Title, "title", "", "token title")
	flags.StringVar(&in.Description, "description", "", "token description")
	flags.StringVar(&in.Media, "media", "", "media URL")
	flags.StringVar(&imagePath, "image", "", "image to pin to IPFS and use as media")
	flags.StringVar(&in.Price, "price", "", "price in NEAR")
	flags.StringVar(&in.OwnerID, "owner", "", "token owner (default the signing account)")
	flags.StringVar(&in.TokenID, "token-id", "", "token id (default token-<unix ms>)")
	cmd.MarkFlagsMutuallyExclusive("media", "image")

	return cmd
}

func (c *cli) tokensCmd() *cobra.Command {
	var ownerID string

	cmd := &cobra.Command{
		Use:   "tokens",
		Short: "List tokens, optionally only those of one owner",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if ownerID != "" {
				if err := near.ValidateAccountID(ownerID); err != nil {
					return err
				}
			}

			market, err := c.marketService(cmd.Context())
			if err != nil {
				return err
			}

			return c.print(market.ListTokens(cmd.Context(), ownerID))
		},
	}

	cmd.Flags().StringVar(&ownerID, "owner", "", "owner account id")

	return cmd
}

func (c *cli) cartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cart <account>",
		Short: "Show the cart of an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := near.ValidateAccountID(args[0]); err != nil {
				return err
			}

			market, err := c.marketService(cmd.Context())
			if err != nil {
				return err
			}

			return c.print(market.Cart(cmd.Context(), args[0]))
		},
	}
}

func (c *cli) priceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "price <token-id>",
		Short: "Show the sale price of a token in NEAR",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			market, err := c.marketService(cmd.Context())
			if err != nil {
				return err
			}

			price, err := market.Price(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(c.out, price)
			return err
		},
	}
}

func (c *cli) uploadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file>",
		Short: "Pin an image to IPFS through Pinata and print its gateway URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url, err := c.upload(cmd, args[0])
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(c.out, url)
			return err
		},
	}
}

func (c *cli) upload(cmd *cobra.Command, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("os.Open -> %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("f.Stat -> %w", err)
	}
	if info.IsDir() {
		return "", errors.New(path + " is a directory")
	}

	return c.mediaService().Upload(cmd.Context(), path, info.Size(), f)
}
