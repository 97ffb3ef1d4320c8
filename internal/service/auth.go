package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/near-nft/marketplace/internal/domain"
	"github.com/near-nft/marketplace/internal/near"
	"github.com/near-nft/marketplace/internal/repository"
)

var (
	ErrSessionNotFound   = repository.ErrSessionNotFound
	ErrSessionNotPending = errors.New("sign-in already completed or cancelled")
	ErrSessionInactive   = errors.New("session is not signed in")
	ErrKeyMismatch       = errors.New("public key does not match the sign-in request")
	ErrKeyNotAdded       = errors.New("sign-in key is not an access key of the account")
	ErrInvalidAccountID  = near.ErrInvalidAccountID
)

type SessionRepository interface {
	Create(ctx context.Context, session domain.Session) (domain.Session, error)
	FindByID(ctx context.Context, id string) (domain.Session, error)
	Update(ctx context.Context, session domain.Session) (domain.Session, error)
	PurgePending(ctx context.Context, before time.Time) (int64, error)
}

// AuthService signs accounts in through the NEAR wallet. Each session gets
// its own function-call key, which the wallet adds to the account.
type AuthService struct {
	repo      SessionRepository
	rpc       near.RPC
	wallet    *near.WalletConnection
	publicURL string
}

// NewAuthService takes publicURL, the address the wallet redirects back to.
func NewAuthService(repo SessionRepository, rpc near.RPC, wallet *near.WalletConnection, publicURL string) *AuthService {
	return &AuthService{
		repo:      repo,
		rpc:       rpc,
		wallet:    wallet,
		publicURL: strings.TrimRight(publicURL, "/"),
	}
}

func (s *AuthService) callbackURL(sessionID string, failed bool) string {
	q := url.Values{}
	q.Set("session_id", sessionID)
	if failed {
		q.Set("failed", "true")
	}

	return s.publicURL + "/api/v1/auth/callback?" + q.Encode()
}

// SignIn starts a pending session and returns the wallet URL the user has
// to visit to approve it.
func (s *AuthService) SignIn(ctx context.Context, userAgent string) (domain.Session, string, error) {
	kp, err := near.GenerateKeyPair()
	if err != nil {
		return domain.Session{}, "", fmt.Errorf("near.GenerateKeyPair -> %w", err)
	}

	session, err := s.repo.Create(ctx, domain.Session{
		ID:        uuid.NewString(),
		PublicKey: kp.PublicKey().String(),
		SecretKey: kp.String(),
		Status:    domain.SessionPending,
		UserAgent: userAgent,
	})
	if err != nil {
		return domain.Session{}, "", fmt.Errorf("s.repo.Create -> %w", err)
	}

	walletURL := s.wallet.SignInURL(kp.PublicKey(), s.callbackURL(session.ID, false), s.callbackURL(session.ID, true))

	return session, walletURL, nil
}

// CompleteSignIn handles the wallet's success redirect.
func (s *AuthService) CompleteSignIn(ctx context.Context, sessionID, accountID, publicKey, allKeys string) (domain.Session, error) {
	session, err := s.repo.FindByID(ctx, sessionID)
	if err != nil {
		return domain.Session{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}
	if session.Status != domain.SessionPending {
		return domain.Session{}, ErrSessionNotPending
	}
	if err = near.ValidateAccountID(accountID); err != nil {
		return domain.Session{}, err
	}
	if publicKey != session.PublicKey {
		return domain.Session{}, ErrKeyMismatch
	}
	if err = s.verifyKey(ctx, accountID, publicKey); err != nil {
		return domain.Session{}, err
	}

	keys := make([]string, 0)
	for _, pk := range near.ParseAllKeys(allKeys) {
		keys = append(keys, pk.String())
	}

	session.AccountID = accountID
	session.FullAccessKeys = keys
	session.Status = domain.SessionActive
	session.Balance = s.balance(ctx, accountID)

	updated, err := s.repo.Update(ctx, session)
	if err != nil {
		return domain.Session{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	return updated, nil
}

// verifyKey checks on chain that the wallet added the session key to
// accountID as a function-call key for the contract. The redirect alone
// proves nothing: anyone can call it with any account_id.
func (s *AuthService) verifyKey(ctx context.Context, accountID, publicKey string) error {
	pk, err := near.ParsePublicKey(publicKey)
	if err != nil {
		return fmt.Errorf("near.ParsePublicKey -> %w", err)
	}

	access, err := s.rpc.ViewAccessKey(ctx, accountID, pk)
	if err != nil {
		var rpcErr *near.RPCError
		if errors.As(err, &rpcErr) && (rpcErr.Cause.Name == "UNKNOWN_ACCESS_KEY" || rpcErr.Cause.Name == "UNKNOWN_ACCOUNT") {
			return fmt.Errorf("%w: %w", ErrKeyNotAdded, err)
		}
		return fmt.Errorf("s.rpc.ViewAccessKey -> %w", err)
	}

	perm, ok := access.FunctionCall()
	if !ok || perm.ReceiverID != s.wallet.ContractID() {
		return fmt.Errorf("%w: key is not limited to %s", ErrKeyNotAdded, s.wallet.ContractID())
	}

	return nil
}

// FailSignIn handles the wallet's failure redirect.
func (s *AuthService) FailSignIn(ctx context.Context, sessionID string) error {
	session, err := s.repo.FindByID(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("s.repo.FindByID -> %w", err)
	}
	if session.Status != domain.SessionPending {
		return ErrSessionNotPending
	}

	return s.close(ctx, session)
}

func (s *AuthService) SignOut(ctx context.Context, sessionID string) error {
	session, err := s.repo.FindByID(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return s.close(ctx, session)
}

func (s *AuthService) close(ctx context.Context, session domain.Session) error {
	session.Status = domain.SessionSignedOut
	session.SecretKey = ""
	session.Balance = ""
	session.FullAccessKeys = nil

	if _, err := s.repo.Update(ctx, session); err != nil {
		return fmt.Errorf("s.repo.Update -> %w", err)
	}

	return nil
}

func (s *AuthService) activeSession(ctx context.Context, sessionID string) (domain.Session, error) {
	session, err := s.repo.FindByID(ctx, sessionID)
	if err != nil {
		return domain.Session{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}
	if !session.IsActive() {
		return domain.Session{}, ErrSessionInactive
	}

	return session, nil
}

// CurrentUser returns the signed-in account, refreshing its balance when
// refresh is set.
func (s *AuthService) CurrentUser(ctx context.Context, sessionID string, refresh bool) (domain.User, error) {
	session, err := s.activeSession(ctx, sessionID)
	if err != nil {
		return domain.User{}, err
	}

	if refresh {
		session.Balance = s.balance(ctx, session.AccountID)
		if session, err = s.repo.Update(ctx, session); err != nil {
			return domain.User{}, fmt.Errorf("s.repo.Update -> %w", err)
		}
	}

	return session.User(), nil
}

// Caller returns the account that signs contract calls for the session.
func (s *AuthService) Caller(ctx context.Context, sessionID string) (Caller, error) {
	session, err := s.activeSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	kp, err := near.ParseKeyPair(session.SecretKey)
	if err != nil {
		return nil, fmt.Errorf("near.ParseKeyPair -> %w", err)
	}

	return near.NewWalletAccount(
		s.rpc,
		s.wallet,
		session.AccountID,
		kp,
		near.ParseAllKeys(strings.Join(session.FullAccessKeys, ",")),
		s.txCallbackURL(session.AccountID),
	), nil
}

// txCallbackURL is where the wallet returns after signing, with the
// transaction hashes appended.
func (s *AuthService) txCallbackURL(accountID string) string {
	q := url.Values{}
	q.Set("account_id", accountID)

	return s.publicURL + "/api/v1/tx/callback?" + q.Encode()
}

// PurgePending removes sign-ins older than maxAge that were never completed.
func (s *AuthService) PurgePending(ctx context.Context, maxAge time.Duration) (int64, error) {
	n, err := s.repo.PurgePending(ctx, time.Now().Add(-maxAge))
	if err != nil {
		return 0, fmt.Errorf("s.repo.PurgePending -> %w", err)
	}

	return n, nil
}

// balance is best effort: an unreachable node leaves it at "0".
func (s *AuthService) balance(ctx context.Context, accountID string) string {
	view, err := near.NewAccount(s.rpc, accountID, near.KeyPair{}).State(ctx)
	if err != nil {
		zap.L().Warn("fetching account balance failed", zap.String("account_id", accountID), zap.Error(err))
		return "0"
	}

	amount, err := view.Balance()
	if err != nil {
		zap.L().Warn("reading account balance failed", zap.String("account_id", accountID), zap.Error(err))
		return "0"
	}

	return near.FormatYocto(amount)
}
