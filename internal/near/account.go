package near

import (
	"context"
	"fmt"
)

// RPC is the part of *Client an Account needs.
type RPC interface {
	ViewAccount(ctx context.Context, accountID string) (AccountView, error)
	ViewAccessKey(ctx context.Context, accountID string, pk PublicKey) (AccessKeyView, error)
	BroadcastTxCommit(ctx context.Context, st SignedTransaction) (*FinalExecutionOutcome, error)
}

// Submission is the result of submitting a call. Exactly one of Outcome and
// WalletURL is set: either the transaction was signed and executed, or it
// has to be approved in the wallet first.
type Submission struct {
	Outcome   *FinalExecutionOutcome
	WalletURL string
}

func (s Submission) TransactionHash() string {
	if s.Outcome == nil {
		return ""
	}

	return s.Outcome.Transaction.Hash
}

// Account signs transactions for accountID with a locally held key.
type Account struct {
	rpc       RPC
	accountID string
	key       KeyPair
}

func NewAccount(rpc RPC, accountID string, key KeyPair) *Account {
	return &Account{
		rpc:       rpc,
		accountID: accountID,
		key:       key,
	}
}

// LoadAccount reads the signing key of accountID from a key store.
func LoadAccount(rpc RPC, ks KeyStore, networkID, accountID string) (*Account, error) {
	key, err := ks.GetKey(networkID, accountID)
	if err != nil {
		return nil, fmt.Errorf("ks.GetKey -> %w", err)
	}

	return NewAccount(rpc, accountID, key), nil
}

func (a *Account) AccountID() string {
	return a.accountID
}

func (a *Account) PublicKey() PublicKey {
	return a.key.PublicKey()
}

func (a *Account) State(ctx context.Context) (AccountView, error) {
	view, err := a.rpc.ViewAccount(ctx, a.accountID)
	if err != nil {
		return AccountView{}, fmt.Errorf("a.rpc.ViewAccount -> %w", err)
	}

	return view, nil
}

func (a *Account) FunctionCall(ctx context.Context, contractID string, call FunctionCallAction) (Submission, error) {
	outcome, err := a.SignAndSend(ctx, contractID, call)
	if err != nil {
		return Submission{Outcome: outcome}, err
	}

	return Submission{Outcome: outcome}, nil
}

// DeployContract replaces the code of the account's own contract. State is
// kept; the WASM decides whether it is still readable.
func (a *Account) DeployContract(ctx context.Context, code []byte) (*FinalExecutionOutcome, error) {
	return a.SignAndSend(ctx, a.accountID, DeployContractAction{Code: code})
}

func (a *Account) SignAndSend(ctx context.Context, receiverID string, actions ...Action) (*FinalExecutionOutcome, error) {
	tx, err := buildTransaction(ctx, a.rpc, a.accountID, a.key.PublicKey(), receiverID, actions)
	if err != nil {
		return nil, err
	}

	outcome, err := a.rpc.BroadcastTxCommit(ctx, tx.Sign(a.key))
	if err != nil {
		return outcome, fmt.Errorf("a.rpc.BroadcastTxCommit -> %w", err)
	}

	return outcome, nil
}

// buildTransaction fetches the key's nonce and a recent block hash, both
// of which come back from a single view_access_key query.
func buildTransaction(ctx context.Context, rpc RPC, signerID string, pk PublicKey, receiverID string, actions []Action) (Transaction, error) {
	access, err := rpc.ViewAccessKey(ctx, signerID, pk)
	if err != nil {
		return Transaction{}, fmt.Errorf("rpc.ViewAccessKey -> %w", err)
	}

	blockHash, err := DecodeBlockHash(access.BlockHash)
	if err != nil {
		return Transaction{}, fmt.Errorf("DecodeBlockHash -> %w", err)
	}

	return Transaction{
		SignerID:   signerID,
		PublicKey:  pk,
		Nonce:      access.Nonce + 1,
		ReceiverID: receiverID,
		BlockHash:  blockHash,
		Actions:    actions,
	}, nil
}
