package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestActivity_IsValid(t *testing.T) {
	valid := Activity{AccountID: "buyer.testnet", Type: ActivityBuy, TokenID: "token-1"}
	assert.True(t, valid.IsValid())

	noAccount := Activity{Type: ActivityBuy, TokenID: "token-1"}
	assert.False(t, noAccount.IsValid())

	unknown := Activity{AccountID: "buyer.testnet", Type: "refund", TokenID: "token-1"}
	assert.False(t, unknown.IsValid())
}

func TestActivity_Event(t *testing.T) {
	now := time.Now()
	a := Activity{
		AccountID: "buyer.testnet",
		Type:      ActivityBuy,
		TokenID:   "token-1",
		Price:     "1.5",
		WalletURL: "https://wallet.testnet.near.org/sign?transactions=x",
		CreatedAt: now,
	}

	e := a.Event()
	assert.Equal(t, EventBought, e.Type)
	assert.Equal(t, "token-1", e.TokenID)
	assert.True(t, e.Pending)
	assert.Equal(t, now, e.Timestamp)

	a.TransactionHash = "HASH"
	assert.False(t, a.Event().Pending)
}

func TestSession_IsActive(t *testing.T) {
	assert.True(t, Session{Status: SessionActive, AccountID: "a.testnet"}.IsActive())
	assert.False(t, Session{Status: SessionPending, AccountID: "a.testnet"}.IsActive())
	assert.False(t, Session{Status: SessionActive}.IsActive())
}
