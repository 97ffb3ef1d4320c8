package dao

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/near-nft/marketplace/internal/near"
)

type fakeCaller struct {
	accountID string
	calls     []near.FunctionCallAction
}

func (c *fakeCaller) AccountID() string {
	return c.accountID
}

func (c *fakeCaller) FunctionCall(_ context.Context, _ string, call near.FunctionCallAction) (near.Submission, error) {
	c.calls = append(c.calls, call)
	outcome := &near.FinalExecutionOutcome{}
	outcome.Transaction.Hash = "hash-" + call.MethodName

	return near.Submission{Outcome: outcome}, nil
}

func seededStore() *MemoryContractDAO {
	d := NewMemoryContractDAO("nft.testnet")
	d.Seed(SampleTokens()...)

	return d
}

func TestMemoryContract_New(t *testing.T) {
	ctx := context.Background()
	d := NewMemoryContractDAO("nft.testnet")
	owner := &fakeCaller{accountID: "nft.testnet"}

	_, err := d.NFTMint(ctx, owner, MintArgs{TokenID: "a", TokenOwnerID: "x.testnet", Price: "1"}, CallOptions{})
	assert.ErrorIs(t, err, ErrNotInitialized)

	_, err = d.New(ctx, owner, "nft.testnet", CallOptions{})
	require.NoError(t, err)

	_, err = d.New(ctx, owner, "nft.testnet", CallOptions{})
	assert.ErrorIs(t, err, ErrAlreadyInitialized)
	assert.True(t, near.IsAlreadyInitialized(err))
}

func TestMemoryContract_Mint(t *testing.T) {
	ctx := context.Background()
	d := seededStore()
	minter := &fakeCaller{accountID: "artist.testnet"}

	args := MintArgs{
		TokenID:       "token-99",
		TokenOwnerID:  "artist.testnet",
		TokenMetadata: TokenMetadata{Title: strPtr("Sunset")},
		Price:         "1000000000000000000000000",
	}
	sub, err := d.NFTMint(ctx, minter, args, CallOptions{})
	require.NoError(t, err)
	assert.NotEmpty(t, sub.TransactionHash())

	_, err = d.NFTMint(ctx, minter, args, CallOptions{})
	assert.ErrorIs(t, err, ErrTokenExists)

	args.TokenID = "token-100"
	args.Price = "1.5"
	_, err = d.NFTMint(ctx, minter, args, CallOptions{})
	assert.ErrorIs(t, err, near.ErrInvalidAmount)

	owned, err := d.NFTTokensForOwner(ctx, "artist.testnet")
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.Equal(t, "Sunset", *owned[0].Metadata.Title)

	all, err := d.NFTTokens(ctx, 0, 100)
	require.NoError(t, err)
	assert.Len(t, all, 4)
	assert.Equal(t, "token-99", all[3].TokenID)
}

func TestMemoryContract_NFTTokensPaging(t *testing.T) {
	ctx := context.Background()
	d := seededStore()

	page, err := d.NFTTokens(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "token-2", page[0].TokenID)

	page, err = d.NFTTokens(ctx, 10, 5)
	require.NoError(t, err)
	assert.Empty(t, page)
}

func TestMemoryContract_Buy(t *testing.T) {
	ctx := context.Background()
	d := seededStore()
	buyer := &fakeCaller{accountID: "buyer.testnet"}
	price, _ := new(big.Int).SetString("1500000000000000000000000", 10)

	_, err := d.BuyNFT(ctx, buyer, "missing", CallOptions{Deposit: price})
	assert.ErrorIs(t, err, ErrTokenNotFound)

	_, err = d.BuyNFT(ctx, buyer, "token-1", CallOptions{Deposit: big.NewInt(1)})
	assert.ErrorIs(t, err, ErrInsufficientDeposit)

	_, err = d.BuyNFT(ctx, buyer, "token-1", CallOptions{Deposit: price})
	require.NoError(t, err)

	token, err := d.NFTToken(ctx, "token-1")
	require.NoError(t, err)
	assert.Equal(t, "buyer.testnet", token.OwnerID)
	assert.Equal(t, "1500000000000000000000000", token.Price)

	_, err = d.BuyNFT(ctx, buyer, "token-1", CallOptions{Deposit: price})
	assert.ErrorIs(t, err, ErrOwnToken)

	sellerTokens, err := d.NFTTokensForOwner(ctx, "ariftest1.testnet")
	require.NoError(t, err)
	assert.Len(t, sellerTokens, 2)

	buyerTokens, err := d.NFTTokensForOwner(ctx, "buyer.testnet")
	require.NoError(t, err)
	assert.Len(t, buyerTokens, 1)
}

func TestMemoryContract_Cart(t *testing.T) {
	ctx := context.Background()
	d := seededStore()
	shopper := &fakeCaller{accountID: "shopper.testnet"}

	before, err := d.GetCart(ctx, "shopper.testnet")
	require.NoError(t, err)
	assert.Empty(t, before)

	_, err = d.AddToCart(ctx, shopper, "token-2", CallOptions{})
	require.NoError(t, err)
	_, err = d.AddToCart(ctx, shopper, "token-2", CallOptions{})
	require.NoError(t, err)

	cart, err := d.GetCart(ctx, "shopper.testnet")
	require.NoError(t, err)
	assert.Equal(t, []CartItem{{TokenID: "token-2", Price: "2500000000000000000000000"}}, cart)

	_, err = d.AddToCart(ctx, shopper, "missing", CallOptions{})
	assert.ErrorIs(t, err, ErrTokenNotFound)

	_, err = d.RemoveFromCart(ctx, shopper, "token-2", CallOptions{})
	require.NoError(t, err)
	_, err = d.RemoveFromCart(ctx, shopper, "never-added", CallOptions{})
	require.NoError(t, err)

	after, err := d.GetCart(ctx, "shopper.testnet")
	require.NoError(t, err)
	assert.Empty(t, after)
}

func TestMemoryContract_Listing(t *testing.T) {
	ctx := context.Background()
	d := seededStore()
	_, err := d.NFTMint(ctx, &fakeCaller{accountID: "a.testnet"}, MintArgs{TokenID: "plain", TokenOwnerID: "a.testnet", Price: "5"}, CallOptions{})
	require.NoError(t, err)

	listing, err := d.GetNFTListing(ctx, "token-3")
	require.NoError(t, err)
	assert.Equal(t, Listing{OwnerID: "ariftest1.testnet", Title: "Digital Artwork #3", Price: "3000000000000000000000000"}, listing)

	listing, err = d.GetNFTListing(ctx, "plain")
	require.NoError(t, err)
	assert.Equal(t, "Untitled", listing.Title)

	price, err := d.GetNFTPrice(ctx, "plain")
	require.NoError(t, err)
	assert.Equal(t, "5", price)

	_, err = d.GetNFTListing(ctx, "missing")
	assert.ErrorIs(t, err, ErrTokenNotFound)
}
