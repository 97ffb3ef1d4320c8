package dao

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/google/uuid"

	"github.com/near-nft/marketplace/internal/near"
)

// MemoryContractDAO serves the marketplace from memory with the contract's
// rules. It backs mock-data mode and tests.
type MemoryContractDAO struct {
	mu          sync.RWMutex
	contractID  string
	initialized bool
	ownerID     string
	order       []string
	tokens      map[string]Token
	byOwner     map[string][]string
	carts       map[string][]CartItem
}

func NewMemoryContractDAO(contractID string) *MemoryContractDAO {
	return &MemoryContractDAO{
		contractID: contractID,
		tokens:     make(map[string]Token),
		byOwner:    make(map[string][]string),
		carts:      make(map[string][]CartItem),
	}
}

func strPtr(s string) *string {
	return &s
}

// SampleTokens are the tokens a mock marketplace starts with. Prices are in
// yoctoNEAR.
func SampleTokens() []Token {
	return []Token{
		{
			TokenID: "token-1",
			OwnerID: "ariftest1.testnet",
			Metadata: TokenMetadata{
				Title:       strPtr("Digital Artwork #1"),
				Description: strPtr("A beautiful digital artwork"),
				Media:       strPtr("https://picsum.photos/id/237/200/300"),
			},
			Price: "1500000000000000000000000",
		},
		{
			TokenID: "token-2",
			OwnerID: "ariftest1.testnet",
			Metadata: TokenMetadata{
				Title:       strPtr("Digital Artwork #2"),
				Description: strPtr("Another amazing digital artwork"),
				Media:       strPtr("https://picsum.photos/id/238/200/300"),
			},
			Price: "2500000000000000000000000",
		},
		{
			TokenID: "token-3",
			OwnerID: "ariftest1.testnet",
			Metadata: TokenMetadata{
				Title:       strPtr("Digital Artwork #3"),
				Description: strPtr("A masterpiece digital artwork"),
				Media:       strPtr("https://picsum.photos/id/239/200/300"),
			},
			Price: "3000000000000000000000000",
		},
	}
}

// Seed initializes the store if needed and inserts tokens, skipping ids
// that already exist.
func (d *MemoryContractDAO) Seed(tokens ...Token) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.initialized {
		d.initialized = true
		d.ownerID = d.contractID
	}
	for _, t := range tokens {
		if _, ok := d.tokens[t.TokenID]; ok {
			continue
		}
		d.insert(t)
	}
}

func (d *MemoryContractDAO) ContractID() string {
	return d.contractID
}

func (d *MemoryContractDAO) IsMock() bool {
	return true
}

func (d *MemoryContractDAO) insert(t Token) {
	d.tokens[t.TokenID] = t
	d.order = append(d.order, t.TokenID)
	d.byOwner[t.OwnerID] = append(d.byOwner[t.OwnerID], t.TokenID)
}

func mockSubmission(signerID string) near.Submission {
	outcome := &near.FinalExecutionOutcome{}
	outcome.Transaction.Hash = "mock-" + uuid.NewString()
	outcome.Transaction.SignerID = signerID

	return near.Submission{Outcome: outcome}
}

func (d *MemoryContractDAO) New(_ context.Context, caller Caller, ownerID string, _ CallOptions) (near.Submission, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.initialized {
		return near.Submission{}, ErrAlreadyInitialized
	}
	d.initialized = true
	d.ownerID = ownerID

	return mockSubmission(caller.AccountID()), nil
}

func (d *MemoryContractDAO) NFTMint(_ context.Context, caller Caller, args MintArgs, _ CallOptions) (near.Submission, error) {
	if _, ok := new(big.Int).SetString(args.Price, 10); !ok {
		return near.Submission{}, fmt.Errorf("%w: price %q", near.ErrInvalidAmount, args.Price)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.initialized {
		return near.Submission{}, ErrNotInitialized
	}
	if _, ok := d.tokens[args.TokenID]; ok {
		return near.Submission{}, ErrTokenExists
	}

	d.insert(Token{
		TokenID:  args.TokenID,
		OwnerID:  args.TokenOwnerID,
		Metadata: args.TokenMetadata,
		Price:    args.Price,
	})

	return mockSubmission(caller.AccountID()), nil
}

func (d *MemoryContractDAO) BuyNFT(_ context.Context, caller Caller, tokenID string, opts CallOptions) (near.Submission, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	token, ok := d.tokens[tokenID]
	if !ok {
		return near.Submission{}, ErrTokenNotFound
	}

	buyerID := caller.AccountID()
	sellerID := token.OwnerID
	if buyerID == sellerID {
		return near.Submission{}, ErrOwnToken
	}

	price, _ := new(big.Int).SetString(token.Price, 10)
	deposit := opts.Deposit
	if deposit == nil {
		deposit = new(big.Int)
	}
	if price != nil && deposit.Cmp(price) < 0 {
		return near.Submission{}, ErrInsufficientDeposit
	}

	token.OwnerID = buyerID
	d.tokens[tokenID] = token
	d.byOwner[sellerID] = without(d.byOwner[sellerID], tokenID)
	d.byOwner[buyerID] = append(d.byOwner[buyerID], tokenID)

	return mockSubmission(buyerID), nil
}

func without(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}

	return out
}

func (d *MemoryContractDAO) AddToCart(_ context.Context, caller Caller, tokenID string, _ CallOptions) (near.Submission, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	token, ok := d.tokens[tokenID]
	if !ok {
		return near.Submission{}, ErrTokenNotFound
	}

	accountID := caller.AccountID()
	for _, item := range d.carts[accountID] {
		if item.TokenID == tokenID {
			return mockSubmission(accountID), nil
		}
	}
	d.carts[accountID] = append(d.carts[accountID], CartItem{TokenID: tokenID, Price: token.Price})

	return mockSubmission(accountID), nil
}

func (d *MemoryContractDAO) RemoveFromCart(_ context.Context, caller Caller, tokenID string, _ CallOptions) (near.Submission, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	accountID := caller.AccountID()
	if cart, ok := d.carts[accountID]; ok {
		kept := cart[:0]
		for _, item := range cart {
			if item.TokenID != tokenID {
				kept = append(kept, item)
			}
		}
		d.carts[accountID] = kept
	}

	return mockSubmission(accountID), nil
}

func (d *MemoryContractDAO) NFTTokens(_ context.Context, fromIndex, limit uint64) ([]Token, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	tokens := []Token{}
	for i := fromIndex; i < uint64(len(d.order)) && uint64(len(tokens)) < limit; i++ {
		tokens = append(tokens, d.tokens[d.order[i]])
	}

	return tokens, nil
}

func (d *MemoryContractDAO) NFTTokensForOwner(_ context.Context, accountID string) ([]Token, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	tokens := []Token{}
	for _, id := range d.byOwner[accountID] {
		if t, ok := d.tokens[id]; ok {
			tokens = append(tokens, t)
		}
	}

	return tokens, nil
}

func (d *MemoryContractDAO) NFTToken(_ context.Context, tokenID string) (Token, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	t, ok := d.tokens[tokenID]
	if !ok {
		return Token{}, ErrTokenNotFound
	}

	return t, nil
}

func (d *MemoryContractDAO) GetAllListedNFTs(_ context.Context) ([]string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return append([]string{}, d.order...), nil
}

func (d *MemoryContractDAO) GetCart(_ context.Context, accountID string) ([]CartItem, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return append([]CartItem{}, d.carts[accountID]...), nil
}

func (d *MemoryContractDAO) GetNFTPrice(ctx context.Context, tokenID string) (string, error) {
	t, err := d.NFTToken(ctx, tokenID)
	if err != nil {
		return "", err
	}

	return t.Price, nil
}

func (d *MemoryContractDAO) GetNFTListing(ctx context.Context, tokenID string) (Listing, error) {
	t, err := d.NFTToken(ctx, tokenID)
	if err != nil {
		return Listing{}, err
	}

	title := "Untitled"
	if t.Metadata.Title != nil {
		title = *t.Metadata.Title
	}

	return Listing{OwnerID: t.OwnerID, Title: title, Price: t.Price}, nil
}
