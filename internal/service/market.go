package service

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/near-nft/marketplace/internal/config"
	"github.com/near-nft/marketplace/internal/domain"
	"github.com/near-nft/marketplace/internal/near"
	"github.com/near-nft/marketplace/internal/repository"
)

var (
	ErrTokenNotFound       = repository.ErrTokenNotFound
	ErrTokenExists         = repository.ErrTokenExists
	ErrOwnToken            = repository.ErrOwnToken
	ErrInsufficientDeposit = repository.ErrInsufficientDeposit
	ErrAlreadyInitialized  = repository.ErrAlreadyInitialized
	ErrInvalidPrice        = near.ErrInvalidAmount
	ErrMintFieldsRequired  = errors.New("Title, Image, and Price are required")
	ErrTokenNotForSale     = errors.New("token has no price")
	ErrTokenIDRequired     = errors.New("token id is required")
)

const fetchConcurrency = 8

// Caller signs contract calls: a session's wallet account or a CLI account.
type Caller = repository.Caller

type NFTRepository interface {
	ContractID() string
	IsMock() bool
	Initialize(ctx context.Context, caller repository.Caller, ownerID string, gas uint64) (domain.TxResult, error)
	Mint(ctx context.Context, caller repository.Caller, in domain.MintInput, gas uint64, deposit *big.Int) (domain.MintResult, error)
	Buy(ctx context.Context, caller repository.Caller, tokenID, price string, gas uint64) (domain.TxResult, error)
	AddToCart(ctx context.Context, caller repository.Caller, tokenID string, gas uint64) (domain.TxResult, error)
	RemoveFromCart(ctx context.Context, caller repository.Caller, tokenID string, gas uint64) (domain.TxResult, error)
	FindAll(ctx context.Context, fromIndex, limit uint64) ([]domain.Token, error)
	FindByOwner(ctx context.Context, accountID string) ([]domain.Token, error)
	FindByID(ctx context.Context, tokenID string) (domain.Token, error)
	ListedIDs(ctx context.Context) ([]string, error)
	Cart(ctx context.Context, accountID string) ([]domain.CartItem, error)
	Listing(ctx context.Context, tokenID string) (domain.TokenListing, error)
	Price(ctx context.Context, tokenID string) (string, error)
}

type ActivityRepository interface {
	Create(ctx context.Context, activity domain.Activity) (domain.Activity, error)
	FindByAccount(ctx context.Context, accountID string, limit int) ([]domain.Activity, error)
	FindByToken(ctx context.Context, tokenID string) ([]domain.Activity, error)
}

// EventPublisher receives an event after every recorded activity.
type EventPublisher interface {
	Publish(event domain.Event)
}

type MarketService struct {
	repo       NFTRepository
	activities ActivityRepository
	events     EventPublisher
	conf       *config.NearConfig
	now        func() time.Time
}

func NewMarketService(repo NFTRepository, activities ActivityRepository, events EventPublisher, conf *config.NearConfig) *MarketService {
	return &MarketService{
		repo:       repo,
		activities: activities,
		events:     events,
		conf:       conf,
		now:        time.Now,
	}
}

func (s *MarketService) IsMock() bool {
	return s.repo.IsMock()
}

func (s *MarketService) ContractID() string {
	return s.repo.ContractID()
}

// Mint creates a token owned by in.OwnerID, or by the caller when empty.
// The configured mint deposit and gas are attached.
func (s *MarketService) Mint(ctx context.Context, caller repository.Caller, in domain.MintInput) (domain.MintResult, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Media = strings.TrimSpace(in.Media)
	in.Price = strings.TrimSpace(in.Price)
	if in.Title == "" || in.Media == "" || in.Price == "" {
		return domain.MintResult{}, ErrMintFieldsRequired
	}
	price, err := near.ParseNearAmount(in.Price)
	if err != nil {
		return domain.MintResult{}, err
	}
	// Buy refuses unpriced tokens, so a zero price would never sell.
	if price.Sign() == 0 {
		return domain.MintResult{}, fmt.Errorf("%w: price must be above zero", ErrInvalidPrice)
	}

	if in.TokenID == "" {
		in.TokenID = "token-" + strconv.FormatInt(s.now().UnixMilli(), 10)
	}
	if in.OwnerID == "" {
		in.OwnerID = caller.AccountID()
	}

	deposit, err := near.ParseNearAmount(s.conf.MintDeposit)
	if err != nil {
		return domain.MintResult{}, fmt.Errorf("mint deposit %q -> %w", s.conf.MintDeposit, err)
	}

	minted, err := s.repo.Mint(ctx, caller, in, s.conf.Gas, deposit)
	if err != nil {
		return domain.MintResult{}, fmt.Errorf("s.repo.Mint -> %w", err)
	}

	s.record(ctx, caller.AccountID(), domain.ActivityMint, minted.Token.TokenID, minted.Token.Price, minted.TxResult)

	return minted, nil
}

// ListTokens never fails: with an account id it lists that account's tokens,
// otherwise the first page of all tokens, falling back to the listed ids
// fetched one by one. Anything that still fails yields an empty list.
func (s *MarketService) ListTokens(ctx context.Context, accountID string) []domain.Token {
	if accountID != "" {
		tokens, err := s.repo.FindByOwner(ctx, accountID)
		if err != nil {
			zap.L().Warn("listing tokens for owner failed", zap.String("account_id", accountID), zap.Error(err))
			return []domain.Token{}
		}

		return tokens
	}

	tokens, err := s.repo.FindAll(ctx, 0, s.conf.ListLimit)
	if err == nil {
		return tokens
	}
	zap.L().Warn("listing all tokens failed, fetching listed ids", zap.Error(err))

	tokens, err = s.fetchListed(ctx)
	if err != nil {
		zap.L().Warn("fetching listed tokens failed", zap.Error(err))
		return []domain.Token{}
	}

	return tokens
}

func (s *MarketService) fetchListed(ctx context.Context) ([]domain.Token, error) {
	ids, err := s.repo.ListedIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.ListedIDs -> %w", err)
	}

	found := make([]*domain.Token, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			token, err := s.repo.FindByID(gctx, id)
			if err != nil {
				zap.L().Debug("skipping listed token", zap.String("token_id", id), zap.Error(err))
				return nil
			}
			found[i] = &token

			return nil
		})
	}
	_ = g.Wait()

	tokens := make([]domain.Token, 0, len(ids))
	for _, t := range found {
		if t != nil {
			tokens = append(tokens, *t)
		}
	}

	return tokens, nil
}

func (s *MarketService) Token(ctx context.Context, tokenID string) (domain.Token, error) {
	token, err := s.repo.FindByID(ctx, tokenID)
	if err != nil {
		return domain.Token{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return token, nil
}

func (s *MarketService) Listing(ctx context.Context, tokenID string) (domain.TokenListing, error) {
	listing, err := s.repo.Listing(ctx, tokenID)
	if err != nil {
		return domain.TokenListing{}, fmt.Errorf("s.repo.Listing -> %w", err)
	}

	return listing, nil
}

// Price reads the token's sale price, in NEAR, straight from the contract.
func (s *MarketService) Price(ctx context.Context, tokenID string) (string, error) {
	price, err := s.repo.Price(ctx, tokenID)
	if err != nil {
		return "", fmt.Errorf("s.repo.Price -> %w", err)
	}

	return price, nil
}

// Buy attaches the token's current price as deposit.
func (s *MarketService) Buy(ctx context.Context, caller repository.Caller, tokenID string) (domain.TxResult, error) {
	if tokenID == "" {
		return domain.TxResult{}, ErrTokenIDRequired
	}

	token, err := s.repo.FindByID(ctx, tokenID)
	if err != nil {
		return domain.TxResult{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}
	if token.OwnerID == caller.AccountID() {
		return domain.TxResult{}, ErrOwnToken
	}
	if token.Price == "" || token.Price == "0" {
		return domain.TxResult{}, ErrTokenNotForSale
	}

	res, err := s.repo.Buy(ctx, caller, tokenID, token.Price, s.conf.Gas)
	if err != nil {
		return domain.TxResult{}, fmt.Errorf("s.repo.Buy -> %w", err)
	}

	s.record(ctx, caller.AccountID(), domain.ActivityBuy, tokenID, token.Price, res)

	return res, nil
}

func (s *MarketService) AddToCart(ctx context.Context, caller repository.Caller, tokenID string) (domain.TxResult, error) {
	if tokenID == "" {
		return domain.TxResult{}, ErrTokenIDRequired
	}

	res, err := s.repo.AddToCart(ctx, caller, tokenID, s.conf.Gas)
	if err != nil {
		return domain.TxResult{}, fmt.Errorf("s.repo.AddToCart -> %w", err)
	}

	s.record(ctx, caller.AccountID(), domain.ActivityCartAdd, tokenID, "", res)

	return res, nil
}

func (s *MarketService) RemoveFromCart(ctx context.Context, caller repository.Caller, tokenID string) (domain.TxResult, error) {
	if tokenID == "" {
		return domain.TxResult{}, ErrTokenIDRequired
	}

	res, err := s.repo.RemoveFromCart(ctx, caller, tokenID, s.conf.Gas)
	if err != nil {
		return domain.TxResult{}, fmt.Errorf("s.repo.RemoveFromCart -> %w", err)
	}

	s.record(ctx, caller.AccountID(), domain.ActivityCartRemove, tokenID, "", res)

	return res, nil
}

// Cart returns an empty cart when the contract cannot be read.
func (s *MarketService) Cart(ctx context.Context, accountID string) []domain.CartItem {
	items, err := s.repo.Cart(ctx, accountID)
	if err != nil {
		zap.L().Warn("fetching cart failed", zap.String("account_id", accountID), zap.Error(err))
		return []domain.CartItem{}
	}

	return items
}

func (s *MarketService) Activity(ctx context.Context, accountID string, limit int) ([]domain.Activity, error) {
	activities, err := s.activities.FindByAccount(ctx, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("s.activities.FindByAccount -> %w", err)
	}

	return activities, nil
}

func (s *MarketService) TokenHistory(ctx context.Context, tokenID string) ([]domain.Activity, error) {
	activities, err := s.activities.FindByToken(ctx, tokenID)
	if err != nil {
		return nil, fmt.Errorf("s.activities.FindByToken -> %w", err)
	}

	return activities, nil
}

// record stores the activity and announces it. The contract call already
// happened, so failures here are only logged.
func (s *MarketService) record(ctx context.Context, accountID string, typ domain.ActivityType, tokenID, price string, res domain.TxResult) {
	activity := domain.Activity{
		AccountID:       accountID,
		Type:            typ,
		TokenID:         tokenID,
		Price:           price,
		TransactionHash: res.TransactionHash,
		WalletURL:       res.WalletURL,
		Mock:            res.Mock,
		CreatedAt:       s.now(),
	}

	if s.activities != nil {
		created, err := s.activities.Create(ctx, activity)
		if err != nil {
			zap.L().Error("recording activity failed", zap.String("type", string(typ)), zap.String("token_id", tokenID), zap.Error(err))
		} else {
			activity = created
		}
	}

	if s.events != nil {
		s.events.Publish(activity.Event())
	}
}
