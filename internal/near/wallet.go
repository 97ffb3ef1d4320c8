package near

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"
)

// WalletConnection builds the redirect URLs of a hosted NEAR wallet.
type WalletConnection struct {
	walletURL  string
	contractID string
	appName    string
}

func NewWalletConnection(walletURL, contractID, appName string) *WalletConnection {
	return &WalletConnection{
		walletURL:  strings.TrimRight(walletURL, "/"),
		contractID: contractID,
		appName:    appName,
	}
}

func (w *WalletConnection) ContractID() string {
	return w.contractID
}

// SignInURL asks the wallet to add pk as a function-call key limited to the
// contract, then redirect to successURL with account_id, public_key and
// all_keys in the query.
func (w *WalletConnection) SignInURL(pk PublicKey, successURL, failureURL string) string {
	q := url.Values{}
	q.Set("success_url", successURL)
	q.Set("failure_url", failureURL)
	q.Set("contract_id", w.contractID)
	q.Set("public_key", pk.String())
	if w.appName != "" {
		q.Set("title", w.appName)
	}

	return w.walletURL + "/login/?" + q.Encode()
}

// SignTransactionsURL hands unsigned transactions to the wallet for approval.
func (w *WalletConnection) SignTransactionsURL(txs []Transaction, callbackURL string) string {
	encoded := make([]string, 0, len(txs))
	for _, tx := range txs {
		encoded = append(encoded, base64.StdEncoding.EncodeToString(tx.Serialize()))
	}

	q := url.Values{}
	q.Set("transactions", strings.Join(encoded, ","))
	if callbackURL != "" {
		q.Set("callbackUrl", callbackURL)
	}

	return w.walletURL + "/sign?" + q.Encode()
}

// ParseAllKeys parses the comma separated all_keys value of a sign-in
// redirect. Unparseable entries are skipped.
func ParseAllKeys(s string) []PublicKey {
	var keys []PublicKey
	for _, part := range strings.Split(s, ",") {
		pk, err := ParsePublicKey(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		keys = append(keys, pk)
	}

	return keys
}

// WalletAccount is the account of a signed-in web session. It holds the
// function-call key created at sign-in and the wallet's full-access public
// keys reported in the sign-in redirect.
type WalletAccount struct {
	local          *Account
	rpc            RPC
	wallet         *WalletConnection
	fullAccessKeys []PublicKey
	callbackURL    string
}

func NewWalletAccount(rpc RPC, wallet *WalletConnection, accountID string, localKey KeyPair, fullAccessKeys []PublicKey, callbackURL string) *WalletAccount {
	return &WalletAccount{
		local:          NewAccount(rpc, accountID, localKey),
		rpc:            rpc,
		wallet:         wallet,
		fullAccessKeys: fullAccessKeys,
		callbackURL:    callbackURL,
	}
}

func (a *WalletAccount) AccountID() string {
	return a.local.AccountID()
}

// FunctionCall signs calls the local key is allowed to make: no deposit and
// addressed to the sign-in contract. Anything else is serialized for a
// full-access key and returned as a wallet approval URL.
func (a *WalletAccount) FunctionCall(ctx context.Context, contractID string, call FunctionCallAction) (Submission, error) {
	if !call.HasDeposit() && contractID == a.wallet.ContractID() && !a.local.key.IsZero() {
		return a.local.FunctionCall(ctx, contractID, call)
	}

	tx, err := a.walletTransaction(ctx, contractID, call)
	if err != nil {
		return Submission{}, err
	}

	return Submission{WalletURL: a.wallet.SignTransactionsURL([]Transaction{tx}, a.callbackURL)}, nil
}

func (a *WalletAccount) walletTransaction(ctx context.Context, receiverID string, actions ...Action) (Transaction, error) {
	for _, pk := range a.fullAccessKeys {
		access, err := a.rpc.ViewAccessKey(ctx, a.AccountID(), pk)
		if err != nil || !access.IsFullAccess() {
			continue
		}

		blockHash, err := DecodeBlockHash(access.BlockHash)
		if err != nil {
			return Transaction{}, fmt.Errorf("DecodeBlockHash -> %w", err)
		}

		return Transaction{
			SignerID:   a.AccountID(),
			PublicKey:  pk,
			Nonce:      access.Nonce + 1,
			ReceiverID: receiverID,
			BlockHash:  blockHash,
			Actions:    actions,
		}, nil
	}

	return Transaction{}, fmt.Errorf("%w for %s", ErrNoFullAccessKey, a.AccountID())
}
