package repository

import (
	"context"
	"fmt"
	"math/big"

	"github.com/near-nft/marketplace/internal/domain"
	"github.com/near-nft/marketplace/internal/near"
	"github.com/near-nft/marketplace/internal/repository/dao"
)

var (
	ErrTokenNotFound       = dao.ErrTokenNotFound
	ErrTokenExists         = dao.ErrTokenExists
	ErrOwnToken            = dao.ErrOwnToken
	ErrInsufficientDeposit = dao.ErrInsufficientDeposit
	ErrAlreadyInitialized  = dao.ErrAlreadyInitialized
	ErrNotInitialized      = dao.ErrNotInitialized
)

// Caller is re-exported so services do not import dao.
type Caller = dao.Caller

// ContractDAO is implemented by dao.ContractDAO (live) and
// dao.MemoryContractDAO (mock data).
type ContractDAO interface {
	ContractID() string
	IsMock() bool

	New(ctx context.Context, caller dao.Caller, ownerID string, opts dao.CallOptions) (near.Submission, error)
	NFTMint(ctx context.Context, caller dao.Caller, args dao.MintArgs, opts dao.CallOptions) (near.Submission, error)
	BuyNFT(ctx context.Context, caller dao.Caller, tokenID string, opts dao.CallOptions) (near.Submission, error)
	AddToCart(ctx context.Context, caller dao.Caller, tokenID string, opts dao.CallOptions) (near.Submission, error)
	RemoveFromCart(ctx context.Context, caller dao.Caller, tokenID string, opts dao.CallOptions) (near.Submission, error)

	NFTTokens(ctx context.Context, fromIndex, limit uint64) ([]dao.Token, error)
	NFTTokensForOwner(ctx context.Context, accountID string) ([]dao.Token, error)
	NFTToken(ctx context.Context, tokenID string) (dao.Token, error)
	GetAllListedNFTs(ctx context.Context) ([]string, error)
	GetCart(ctx context.Context, accountID string) ([]dao.CartItem, error)
	GetNFTPrice(ctx context.Context, tokenID string) (string, error)
	GetNFTListing(ctx context.Context, tokenID string) (dao.Listing, error)
}

// NFTRepository converts between the contract's yoctoNEAR strings and the
// NEAR amounts the rest of the app works with.
type NFTRepository struct {
	dao ContractDAO
}

func NewNFTRepository(dao ContractDAO) *NFTRepository {
	return &NFTRepository{
		dao: dao,
	}
}

func (r *NFTRepository) ContractID() string {
	return r.dao.ContractID()
}

func (r *NFTRepository) IsMock() bool {
	return r.dao.IsMock()
}

func (r *NFTRepository) Initialize(ctx context.Context, caller Caller, ownerID string, gas uint64) (domain.TxResult, error) {
	sub, err := r.dao.New(ctx, caller, ownerID, dao.CallOptions{Gas: gas})
	if err != nil {
		return domain.TxResult{}, fmt.Errorf("r.dao.New -> %w", err)
	}

	return r.txResult(sub), nil
}

func (r *NFTRepository) Mint(ctx context.Context, caller Caller, in domain.MintInput, gas uint64, deposit *big.Int) (domain.MintResult, error) {
	yocto, err := near.ParseNearAmount(in.Price)
	if err != nil {
		return domain.MintResult{}, fmt.Errorf("near.ParseNearAmount -> %w", err)
	}

	sub, err := r.dao.NFTMint(ctx, caller, dao.MintArgs{
		TokenID:      in.TokenID,
		TokenOwnerID: in.OwnerID,
		TokenMetadata: dao.TokenMetadata{
			Title:       &in.Title,
			Description: &in.Description,
			Media:       &in.Media,
		},
		Price: yocto.String(),
	}, dao.CallOptions{Gas: gas, Deposit: deposit})
	if err != nil {
		return domain.MintResult{}, fmt.Errorf("r.dao.NFTMint -> %w", err)
	}

	return domain.MintResult{
		Token: domain.Token{
			TokenID: in.TokenID,
			OwnerID: in.OwnerID,
			Metadata: domain.TokenMetadata{
				Title:       in.Title,
				Description: in.Description,
				Media:       in.Media,
			},
			Price: near.FormatYocto(yocto),
		},
		TxResult: r.txResult(sub),
	}, nil
}

// Buy attaches price (in NEAR) as the deposit.
func (r *NFTRepository) Buy(ctx context.Context, caller Caller, tokenID, price string, gas uint64) (domain.TxResult, error) {
	deposit, err := near.ParseNearAmount(price)
	if err != nil {
		return domain.TxResult{}, fmt.Errorf("near.ParseNearAmount -> %w", err)
	}

	sub, err := r.dao.BuyNFT(ctx, caller, tokenID, dao.CallOptions{Gas: gas, Deposit: deposit})
	if err != nil {
		return domain.TxResult{}, fmt.Errorf("r.dao.BuyNFT -> %w", err)
	}

	return r.txResult(sub), nil
}

func (r *NFTRepository) AddToCart(ctx context.Context, caller Caller, tokenID string, gas uint64) (domain.TxResult, error) {
	sub, err := r.dao.AddToCart(ctx, caller, tokenID, dao.CallOptions{Gas: gas})
	if err != nil {
		return domain.TxResult{}, fmt.Errorf("r.dao.AddToCart -> %w", err)
	}

	return r.txResult(sub), nil
}

func (r *NFTRepository) RemoveFromCart(ctx context.Context, caller Caller, tokenID string, gas uint64) (domain.TxResult, error) {
	sub, err := r.dao.RemoveFromCart(ctx, caller, tokenID, dao.CallOptions{Gas: gas})
	if err != nil {
		return domain.TxResult{}, fmt.Errorf("r.dao.RemoveFromCart -> %w", err)
	}

	return r.txResult(sub), nil
}

func (r *NFTRepository) FindAll(ctx context.Context, fromIndex, limit uint64) ([]domain.Token, error) {
	found, err := r.dao.NFTTokens(ctx, fromIndex, limit)
	if err != nil {
		return nil, fmt.Errorf("r.dao.NFTTokens -> %w", err)
	}

	return r.tokensToDomain(found), nil
}

func (r *NFTRepository) FindByOwner(ctx context.Context, accountID string) ([]domain.Token, error) {
	found, err := r.dao.NFTTokensForOwner(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.NFTTokensForOwner -> %w", err)
	}

	return r.tokensToDomain(found), nil
}

func (r *NFTRepository) FindByID(ctx context.Context, tokenID string) (domain.Token, error) {
	found, err := r.dao.NFTToken(ctx, tokenID)
	if err != nil {
		return domain.Token{}, fmt.Errorf("r.dao.NFTToken -> %w", err)
	}

	return r.tokenToDomain(found), nil
}

func (r *NFTRepository) ListedIDs(ctx context.Context) ([]string, error) {
	ids, err := r.dao.GetAllListedNFTs(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.GetAllListedNFTs -> %w", err)
	}

	return ids, nil
}

func (r *NFTRepository) Cart(ctx context.Context, accountID string) ([]domain.CartItem, error) {
	found, err := r.dao.GetCart(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.GetCart -> %w", err)
	}

	items := make([]domain.CartItem, 0, len(found))
	for _, item := range found {
		items = append(items, domain.CartItem{
			TokenID: item.TokenID,
			Price:   formatPrice(item.Price),
		})
	}

	return items, nil
}

func (r *NFTRepository) Listing(ctx context.Context, tokenID string) (domain.TokenListing, error) {
	found, err := r.dao.GetNFTListing(ctx, tokenID)
	if err != nil {
		return domain.TokenListing{}, fmt.Errorf("r.dao.GetNFTListing -> %w", err)
	}

	return domain.TokenListing{
		TokenID: tokenID,
		OwnerID: found.OwnerID,
		Title:   found.Title,
		Price:   formatPrice(found.Price),
	}, nil
}

func (r *NFTRepository) Price(ctx context.Context, tokenID string) (string, error) {
	price, err := r.dao.GetNFTPrice(ctx, tokenID)
	if err != nil {
		return "", fmt.Errorf("r.dao.GetNFTPrice -> %w", err)
	}

	return formatPrice(price), nil
}

func (r *NFTRepository) txResult(sub near.Submission) domain.TxResult {
	res := domain.TxResult{
		TransactionHash: sub.TransactionHash(),
		WalletURL:       sub.WalletURL,
		Mock:            r.dao.IsMock(),
	}
	if sub.Outcome != nil {
		res.Logs = sub.Outcome.Logs()
	}

	return res
}

func (r *NFTRepository) tokensToDomain(tokens []dao.Token) []domain.Token {
	out := make([]domain.Token, 0, len(tokens))
	for _, t := range tokens {
		out = append(out, r.tokenToDomain(t))
	}

	return out
}

func (r *NFTRepository) tokenToDomain(t dao.Token) domain.Token {
	return domain.Token{
		TokenID: t.TokenID,
		OwnerID: t.OwnerID,
		Metadata: domain.TokenMetadata{
			Title:       deref(t.Metadata.Title),
			Description: deref(t.Metadata.Description),
			Media:       deref(t.Metadata.Media),
		},
		Price: formatPrice(t.Price),
	}
}

// formatPrice leaves values it cannot read untouched.
func formatPrice(yocto string) string {
	if yocto == "" {
		return "0"
	}

	price, err := near.FormatNearAmount(yocto)
	if err != nil {
		return yocto
	}

	return price
}

func deref(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}
