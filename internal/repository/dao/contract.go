package dao

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/near-nft/marketplace/internal/near"
)

var (
	ErrTokenNotFound       = errors.New("token not found")
	ErrTokenExists         = errors.New("token with this id already exists")
	ErrOwnToken            = errors.New("cannot buy your own NFT")
	ErrInsufficientDeposit = errors.New("attached deposit is less than the NFT price")
	ErrAlreadyInitialized  = errors.New("the contract has already been initialized")
	ErrNotInitialized      = errors.New("the contract is not initialized")
)

// Caller signs contract calls on behalf of an account: *near.Account for
// local keys, *near.WalletAccount for web sessions.
type Caller interface {
	AccountID() string
	FunctionCall(ctx context.Context, contractID string, call near.FunctionCallAction) (near.Submission, error)
}

type Viewer interface {
	CallFunction(ctx context.Context, contractID, method string, args any) ([]byte, error)
}

type CallOptions struct {
	Gas     uint64
	Deposit *big.Int
}

// TokenMetadata fields are optional on chain and serialize as null when unset.
type TokenMetadata struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Media       *string `json:"media"`
}

// Token as stored by the contract. Price is a yoctoNEAR decimal string.
type Token struct {
	TokenID  string        `json:"token_id"`
	OwnerID  string        `json:"owner_id"`
	Metadata TokenMetadata `json:"metadata"`
	Price    string        `json:"price"`
}

type CartItem struct {
	TokenID string `json:"token_id"`
	Price   string `json:"price"`
}

// Listing is the (owner_id, title, price) tuple of get_nft_listing.
type Listing struct {
	OwnerID string
	Title   string
	Price   string
}

func (l *Listing) UnmarshalJSON(b []byte) error {
	var tuple []string
	if err := json.Unmarshal(b, &tuple); err != nil {
		return err
	}
	if len(tuple) != 3 {
		return fmt.Errorf("listing has %d fields", len(tuple))
	}
	l.OwnerID, l.Title, l.Price = tuple[0], tuple[1], tuple[2]

	return nil
}

type MintArgs struct {
	TokenID       string        `json:"token_id"`
	TokenOwnerID  string        `json:"token_owner_id"`
	TokenMetadata TokenMetadata `json:"token_metadata"`
	Price         string        `json:"price"`
}

type tokenIDArgs struct {
	TokenID string `json:"token_id"`
}

type accountIDArgs struct {
	AccountID string `json:"account_id"`
}

type ownerIDArgs struct {
	OwnerID string `json:"owner_id"`
}

// ContractDAO reaches the marketplace contract through NEAR RPC.
type ContractDAO struct {
	rpc        Viewer
	contractID string
}

func NewContractDAO(rpc Viewer, contractID string) *ContractDAO {
	return &ContractDAO{
		rpc:        rpc,
		contractID: contractID,
	}
}

func (d *ContractDAO) ContractID() string {
	return d.contractID
}

func (d *ContractDAO) IsMock() bool {
	return false
}

func (d *ContractDAO) view(ctx context.Context, method string, args, out any) error {
	raw, err := d.rpc.CallFunction(ctx, d.contractID, method, args)
	if err != nil {
		return contractErr(err)
	}

	if err = json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("json.Unmarshal %s -> %w", method, err)
	}

	return nil
}

func (d *ContractDAO) call(ctx context.Context, caller Caller, method string, args any, opts CallOptions) (near.Submission, error) {
	action, err := near.NewFunctionCall(method, args, opts.Gas, opts.Deposit)
	if err != nil {
		return near.Submission{}, err
	}

	sub, err := caller.FunctionCall(ctx, d.contractID, action)
	if err != nil {
		return sub, contractErr(err)
	}

	return sub, nil
}

func (d *ContractDAO) New(ctx context.Context, caller Caller, ownerID string, opts CallOptions) (near.Submission, error) {
	return d.call(ctx, caller, "new", ownerIDArgs{OwnerID: ownerID}, opts)
}

func (d *ContractDAO) NFTMint(ctx context.Context, caller Caller, args MintArgs, opts CallOptions) (near.Submission, error) {
	return d.call(ctx, caller, "nft_mint", args, opts)
}

func (d *ContractDAO) BuyNFT(ctx context.Context, caller Caller, tokenID string, opts CallOptions) (near.Submission, error) {
	return d.call(ctx, caller, "buy_nft", tokenIDArgs{TokenID: tokenID}, opts)
}

func (d *ContractDAO) AddToCart(ctx context.Context, caller Caller, tokenID string, opts CallOptions) (near.Submission, error) {
	return d.call(ctx, caller, "add_to_cart", tokenIDArgs{TokenID: tokenID}, opts)
}

func (d *ContractDAO) RemoveFromCart(ctx context.Context, caller Caller, tokenID string, opts CallOptions) (near.Submission, error) {
	return d.call(ctx, caller, "remove_from_cart", tokenIDArgs{TokenID: tokenID}, opts)
}

func (d *ContractDAO) NFTTokens(ctx context.Context, fromIndex, limit uint64) ([]Token, error) {
	var tokens []Token
	err := d.view(ctx, "nft_tokens", map[string]uint64{"from_index": fromIndex, "limit": limit}, &tokens)

	return tokens, err
}

func (d *ContractDAO) NFTTokensForOwner(ctx context.Context, accountID string) ([]Token, error) {
	var tokens []Token
	err := d.view(ctx, "nft_tokens_for_owner", accountIDArgs{AccountID: accountID}, &tokens)

	return tokens, err
}

// NFTToken returns ErrTokenNotFound when the contract answers null.
func (d *ContractDAO) NFTToken(ctx context.Context, tokenID string) (Token, error) {
	var token *Token
	if err := d.view(ctx, "nft_token", tokenIDArgs{TokenID: tokenID}, &token); err != nil {
		return Token{}, err
	}
	if token == nil {
		return Token{}, ErrTokenNotFound
	}

	return *token, nil
}

func (d *ContractDAO) GetAllListedNFTs(ctx context.Context) ([]string, error) {
	var ids []string
	err := d.view(ctx, "get_all_listed_nfts", nil, &ids)

	return ids, err
}

func (d *ContractDAO) GetCart(ctx context.Context, accountID string) ([]CartItem, error) {
	var items []CartItem
	err := d.view(ctx, "get_cart", accountIDArgs{AccountID: accountID}, &items)

	return items, err
}

func (d *ContractDAO) GetNFTPrice(ctx context.Context, tokenID string) (string, error) {
	var price *string
	if err := d.view(ctx, "get_nft_price", tokenIDArgs{TokenID: tokenID}, &price); err != nil {
		return "", err
	}
	if price == nil {
		return "", ErrTokenNotFound
	}

	return *price, nil
}

func (d *ContractDAO) GetNFTListing(ctx context.Context, tokenID string) (Listing, error) {
	var listing *Listing
	if err := d.view(ctx, "get_nft_listing", tokenIDArgs{TokenID: tokenID}, &listing); err != nil {
		return Listing{}, err
	}
	if listing == nil {
		return Listing{}, ErrTokenNotFound
	}

	return *listing, nil
}

// contractPanics maps the contract's assertion messages to sentinel errors.
var contractPanics = []struct {
	message string
	err     error
}{
	{"token not found", ErrTokenNotFound},
	{"token with id already exists", ErrTokenExists},
	{"cannot buy your own nft", ErrOwnToken},
	{"attached deposit is less than", ErrInsufficientDeposit},
}

func contractErr(err error) error {
	if near.IsAlreadyInitialized(err) {
		return fmt.Errorf("%w: %w", ErrAlreadyInitialized, err)
	}

	msg := strings.ToLower(err.Error())
	for _, p := range contractPanics {
		if strings.Contains(msg, p.message) {
			return fmt.Errorf("%w: %w", p.err, err)
		}
	}

	return err
}
