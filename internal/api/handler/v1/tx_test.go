package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/near-nft/marketplace/internal/api/handler/v1/response"
	"github.com/near-nft/marketplace/internal/domain"
	"github.com/near-nft/marketplace/internal/near"
	"github.com/near-nft/marketplace/internal/service"
)

const (
	buyTxHash    = "6zgh2u9DqHHiXzdy9ouTP7oGky2T4nugqzqt9wJZwNFm"
	failedTxHash = "9zgh2u9DqHHiXzdy9ouTP7oGky2T4nugqzqt9wJZwNFm"
	otherTxHash  = "4zgh2u9DqHHiXzdy9ouTP7oGky2T4nugqzqt9wJZwNFm"
)

type fakeTx struct {
	calls [][]string
}

func (f *fakeTx) Confirm(_ context.Context, accountID string, hashes []string) ([]domain.Activity, error) {
	f.calls = append(f.calls, hashes)

	switch hashes[0] {
	case failedTxHash:
		return nil, &near.ExecutionError{TransactionHash: failedTxHash, Failure: json.RawMessage(`{"ActionError":{}}`)}
	case otherTxHash:
		return nil, service.ErrForeignTransaction
	}

	return []domain.Activity{{
		ID:              1,
		AccountID:       accountID,
		Type:            domain.ActivityBuy,
		TokenID:         "token-1",
		TransactionHash: hashes[0],
		WalletURL:       "https://testnet.mynearwallet.com/sign?transactions=x",
	}}, nil
}

func newTxRouter(svc TxService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/tx/callback", NewTxHandler(svc).HandleTxCallback)

	return r
}

func TestTxHandler_Callback(t *testing.T) {
	svc := &fakeTx{}
	r := newTxRouter(svc)

	w := serve(r, http.MethodGet, "/tx/callback?account_id=buyer.testnet&transactionHashes="+buyTxHash, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var activities []domain.Activity
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &activities))
	require.Len(t, activities, 1)
	assert.Equal(t, buyTxHash, activities[0].TransactionHash)
	assert.False(t, activities[0].Event().Pending)
	assert.Equal(t, [][]string{{buyTxHash}}, svc.calls)

	tests := []struct {
		name     string
		query    string
		wantCode int
		wantText string
	}{
		{name: "rejected", query: "account_id=buyer.testnet&errorCode=userRejected", wantCode: http.StatusBadRequest, wantText: "transaction was rejected in the wallet: userRejected"},
		{name: "missing account", query: "transactionHashes=" + buyTxHash, wantCode: http.StatusBadRequest},
		{name: "bad hash", query: "account_id=buyer.testnet&transactionHashes=0x12", wantCode: http.StatusBadRequest},
		{name: "foreign transaction", query: "account_id=buyer.testnet&transactionHashes=" + otherTxHash, wantCode: http.StatusBadRequest, wantText: service.ErrForeignTransaction.Error()},
		{name: "failed on chain", query: "account_id=buyer.testnet&transactionHashes=" + failedTxHash, wantCode: http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(r, http.MethodGet, "/tx/callback?"+tt.query, "")
			assert.Equal(t, tt.wantCode, w.Code, w.Body.String())
			if tt.wantText != "" {
				var e response.Err
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e))
				assert.Equal(t, tt.wantText, e.ErrorText)
			}
		})
	}
	assert.Len(t, svc.calls, 3)
}
