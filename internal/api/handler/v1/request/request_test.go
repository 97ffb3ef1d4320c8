package request

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMintRequest_Validate(t *testing.T) {
	tests := []struct {
		name     string
		req      MintRequest
		hasImage bool
		wantErr  string
	}{
		{name: "image upload", req: MintRequest{Title: "Sunset", Price: "1.5"}, hasImage: true},
		{name: "media url", req: MintRequest{Title: "Sunset", Price: "2", Media: "https://x/y.png", OwnerID: "bob.testnet", TokenID: "token-1"}},
		{name: "no image", req: MintRequest{Title: "Sunset", Price: "1"}, wantErr: "Title, Image, and Price are required"},
		{name: "blank title", req: MintRequest{Title: "  ", Price: "1"}, hasImage: true, wantErr: "Title, Image, and Price are required"},
		{name: "zero price", req: MintRequest{Title: "a", Price: "0.0"}, hasImage: true, wantErr: "price: " + errInvalidPrice.Error() + "."},
		{name: "negative price", req: MintRequest{Title: "a", Price: "-1"}, hasImage: true, wantErr: "price: " + errInvalidPrice.Error() + "."},
		{name: "too precise", req: MintRequest{Title: "a", Price: "0." + strings.Repeat("0", 24) + "1"}, hasImage: true, wantErr: "price: " + errInvalidPrice.Error() + "."},
		{name: "bad owner", req: MintRequest{Title: "a", Price: "1", OwnerID: "Bob..testnet"}, hasImage: true, wantErr: "owner_id: " + errInvalidAccountID.Error() + "."},
		{name: "bad token id", req: MintRequest{Title: "a", Price: "1", TokenID: "-x"}, hasImage: true, wantErr: "token_id: " + errInvalidTokenID.Error() + "."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate(tt.hasImage)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}

func TestValidateAccountID(t *testing.T) {
	for _, id := range []string{"alice.testnet", "nft-final.kumkum.testnet", "a1", "my_app.near"} {
		assert.NoError(t, ValidateAccountID(id), id)
	}
	for _, id := range []string{"", "a", "Alice.testnet", "alice..testnet", ".alice", "alice-", strings.Repeat("a", 65)} {
		assert.Error(t, ValidateAccountID(id), id)
	}
}

func TestCallbackRequest_Validate(t *testing.T) {
	ok := CallbackRequest{
		SessionID: "9b2f5c1e-3a4d-4f6b-8c7d-1e2f3a4b5c6d",
		AccountID: "alice.testnet",
		PublicKey: "ed25519:abc",
	}
	assert.NoError(t, ok.Validate())

	failed := CallbackRequest{SessionID: ok.SessionID, Failed: true}
	assert.NoError(t, failed.Validate())

	missing := CallbackRequest{SessionID: ok.SessionID}
	assert.Error(t, missing.Validate())

	badSession := ok
	badSession.SessionID = "not-a-uuid"
	assert.Error(t, badSession.Validate())
}

func TestCartRequest_Validate(t *testing.T) {
	assert.NoError(t, (&CartRequest{TokenID: "token-1"}).Validate())
	assert.Error(t, (&CartRequest{}).Validate())
}

func TestTxCallbackRequest_Validate(t *testing.T) {
	hash := "6zgh2u9DqHHiXzdy9ouTP7oGky2T4nugqzqt9wJZwNFm"
	tests := []struct {
		name    string
		req     TxCallbackRequest
		wantErr string
	}{
		{name: "one hash", req: TxCallbackRequest{AccountID: "alice.testnet", TransactionHashes: hash}},
		{name: "two hashes", req: TxCallbackRequest{AccountID: "alice.testnet", TransactionHashes: hash + "," + hash}},
		{name: "rejected", req: TxCallbackRequest{AccountID: "alice.testnet", ErrorCode: "userRejected"}},
		{name: "no hashes", req: TxCallbackRequest{AccountID: "alice.testnet"}, wantErr: "transactionHashes: cannot be blank."},
		{name: "bad hash", req: TxCallbackRequest{AccountID: "alice.testnet", TransactionHashes: hash + ",0OIl"}, wantErr: "transactionHashes: " + errInvalidTxHash.Error() + "."},
		{name: "trailing comma", req: TxCallbackRequest{AccountID: "alice.testnet", TransactionHashes: hash + ","}, wantErr: "transactionHashes: " + errInvalidTxHash.Error() + "."},
		{name: "bad account", req: TxCallbackRequest{AccountID: "Alice", TransactionHashes: hash}, wantErr: "account_id: " + errInvalidAccountID.Error() + "."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.wantErr)
		})
	}

	req := TxCallbackRequest{TransactionHashes: "a,b"}
	assert.Equal(t, []string{"a", "b"}, req.Hashes())
}
