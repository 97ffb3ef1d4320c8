package near

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeNode answers JSON-RPC requests with handler(method, params).
func fakeNode(t *testing.T, handler func(method string, params json.RawMessage) (any, *RPCError)) *Client {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string          `json:"method"`
			Params json.RawMessage `json:"params"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		result, rpcErr := handler(req.Method, req.Params)
		body := map[string]any{"jsonrpc": "2.0", "id": "dontcare"}
		if rpcErr != nil {
			body["error"] = rpcErr
		} else {
			body["result"] = result
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)

	return NewClient(srv.URL, "testnet", 5*time.Second)
}

func byteInts(s string) []int {
	out := make([]int, len(s))
	for i := range s {
		out[i] = int(s[i])
	}

	return out
}

func TestClient_CallFunction(t *testing.T) {
	c := fakeNode(t, func(method string, params json.RawMessage) (any, *RPCError) {
		assert.Equal(t, "query", method)

		var p map[string]string
		require.NoError(t, json.Unmarshal(params, &p))
		assert.Equal(t, "call_function", p["request_type"])
		assert.Equal(t, "final", p["finality"])
		assert.Equal(t, "nft.testnet", p["account_id"])
		assert.Equal(t, "get_cart", p["method_name"])

		args, err := base64.StdEncoding.DecodeString(p["args_base64"])
		require.NoError(t, err)
		assert.JSONEq(t, `{"account_id":"buyer.testnet"}`, string(args))

		return map[string]any{"result": byteInts(`[["token-1","1500"]]`), "logs": []string{}, "block_height": 1}, nil
	})

	got, err := c.CallFunction(context.Background(), "nft.testnet", "get_cart", map[string]string{"account_id": "buyer.testnet"})
	require.NoError(t, err)
	assert.Equal(t, `[["token-1","1500"]]`, string(got))
}

func TestClient_CallFunction_ContractPanic(t *testing.T) {
	c := fakeNode(t, func(string, json.RawMessage) (any, *RPCError) {
		return map[string]any{"error": "wasm execution failed with error: Token not found", "logs": []string{}}, nil
	})

	_, err := c.CallFunction(context.Background(), "nft.testnet", "nft_token", nil)

	var contractErr *ContractError
	require.ErrorAs(t, err, &contractErr)
	assert.Equal(t, "nft_token", contractErr.Method)
	assert.Contains(t, contractErr.Message, "Token not found")
}

func TestClient_RPCError(t *testing.T) {
	c := fakeNode(t, func(string, json.RawMessage) (any, *RPCError) {
		e := &RPCError{Name: "HANDLER_ERROR", Code: -32000, Message: "Server error"}
		e.Cause.Name = "UNKNOWN_ACCOUNT"
		return nil, e
	})

	_, err := c.ViewAccount(context.Background(), "ghost.testnet")

	var rpcErr *RPCError
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, "UNKNOWN_ACCOUNT", rpcErr.Cause.Name)
}

func TestClient_ViewAccountAndAccessKey(t *testing.T) {
	c := fakeNode(t, func(method string, params json.RawMessage) (any, *RPCError) {
		var p map[string]string
		require.NoError(t, json.Unmarshal(params, &p))

		switch p["request_type"] {
		case "view_account":
			return map[string]any{"amount": "2500000000000000000000000", "locked": "0", "storage_usage": 100}, nil
		case "view_access_key":
			return map[string]any{"nonce": 7, "permission": "FullAccess", "block_hash": base58.Encode(make([]byte, 32))}, nil
		}
		return nil, &RPCError{Message: "unexpected"}
	})

	view, err := c.ViewAccount(context.Background(), "buyer.testnet")
	require.NoError(t, err)
	balance, err := view.Balance()
	require.NoError(t, err)
	assert.Equal(t, "2.5", FormatYocto(balance))

	kp, err := GenerateKeyPair()
	require.NoError(t, err)
	access, err := c.ViewAccessKey(context.Background(), "buyer.testnet", kp.PublicKey())
	require.NoError(t, err)
	assert.Equal(t, uint64(7), access.Nonce)
	assert.True(t, access.IsFullAccess())
	_, ok := access.FunctionCall()
	assert.False(t, ok)

	state, err := NewAccount(c, "buyer.testnet", KeyPair{}).State(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(100), state.StorageUsage)
}

func TestAccessKeyView_FunctionCall(t *testing.T) {
	view := AccessKeyView{Permission: json.RawMessage(
		`{"FunctionCall":{"allowance":"250000000000000000000000","receiver_id":"nft.testnet","method_names":[]}}`)}

	perm, ok := view.FunctionCall()
	require.True(t, ok)
	assert.False(t, view.IsFullAccess())
	assert.Equal(t, "nft.testnet", perm.ReceiverID)
	require.NotNil(t, perm.Allowance)
	assert.Equal(t, "250000000000000000000000", *perm.Allowance)

	_, ok = AccessKeyView{}.FunctionCall()
	assert.False(t, ok)
}

func TestAccount_FunctionCall(t *testing.T) {
	kp, err := GenerateKeyPair()
	require.NoError(t, err)

	var broadcast []byte
	c := fakeNode(t, func(method string, params json.RawMessage) (any, *RPCError) {
		switch method {
		case "query":
			return map[string]any{"nonce": 10, "permission": "FullAccess", "block_hash": base58.Encode(make([]byte, 32))}, nil
		case "broadcast_tx_commit":
			var p []string
			require.NoError(t, json.Unmarshal(params, &p))
			require.Len(t, p, 1)
			decoded, decodeErr := base64.StdEncoding.DecodeString(p[0])
			require.NoError(t, decodeErr)
			broadcast = decoded

			ok := base64.StdEncoding.EncodeToString([]byte(`""`))
			return map[string]any{
				"status":      map[string]any{"SuccessValue": ok},
				"transaction": map[string]any{"hash": "HASH", "signer_id": "owner.testnet"},
				"transaction_outcome": map[string]any{
					"id":      "HASH",
					"outcome": map[string]any{"logs": []string{"minted"}, "gas_burnt": 1},
				},
			}, nil
		}
		return nil, &RPCError{Message: "unexpected " + method}
	})

	call, err := NewFunctionCall("add_to_cart", map[string]string{"token_id": "token-1"}, 100, nil)
	require.NoError(t, err)

	sub, err := NewAccount(c, "owner.testnet", kp).FunctionCall(context.Background(), "nft.testnet", call)
	require.NoError(t, err)
	assert.Equal(t, "HASH", sub.TransactionHash())
	assert.Empty(t, sub.WalletURL)
	assert.Equal(t, []string{"minted"}, sub.Outcome.Logs())

	require.NotEmpty(t, broadcast)
	assert.Equal(t, "owner.testnet", string(broadcast[4:4+len("owner.testnet")]))
	nonceAt := 4 + len("owner.testnet") + 33
	assert.Equal(t, byte(11), broadcast[nonceAt])
}

func TestClient_BroadcastFailure(t *testing.T) {
	kp, err := GenerateKeyPair()
	require.NoError(t, err)

	c := fakeNode(t, func(method string, _ json.RawMessage) (any, *RPCError) {
		if method == "query" {
			return map[string]any{"nonce": 1, "permission": "FullAccess", "block_hash": base58.Encode(make([]byte, 32))}, nil
		}
		return map[string]any{
			"status": map[string]any{"Failure": map[string]any{"ActionError": map[string]any{
				"kind": map[string]any{"FunctionCallError": map[string]any{"ExecutionError": "Smart contract panicked: Already initialized"}},
			}}},
			"transaction": map[string]any{"hash": "FAILED"},
		}, nil
	})

	call, err := NewFunctionCall("new", map[string]string{"owner_id": "nft.testnet"}, 100, nil)
	require.NoError(t, err)

	_, err = NewAccount(c, "nft.testnet", kp).SignAndSend(context.Background(), "nft.testnet", call)

	var execErr *ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, "FAILED", execErr.TransactionHash)
	assert.True(t, IsAlreadyInitialized(err))
}

func TestClient_TxStatus(t *testing.T) {
	args := base64.StdEncoding.EncodeToString([]byte(`{"token_id":"token-1"}`))
	c := fakeNode(t, func(method string, params json.RawMessage) (any, *RPCError) {
		assert.Equal(t, "tx", method)

		var p []string
		require.NoError(t, json.Unmarshal(params, &p))
		assert.Equal(t, []string{"HASH", "buyer.testnet"}, p)

		return map[string]any{
			"status": map[string]any{"SuccessValue": ""},
			"transaction": map[string]any{
				"hash":        "HASH",
				"signer_id":   "buyer.testnet",
				"receiver_id": "nft.testnet",
				"actions": []any{
					"CreateAccount",
					map[string]any{"FunctionCall": map[string]any{
						"method_name": "buy_nft",
						"args":        args,
						"gas":         300000000000000,
						"deposit":     "1500000000000000000000000",
					}},
				},
			},
			"receipts_outcome": []any{
				map[string]any{"id": "R1", "outcome": map[string]any{"logs": []string{"sold token-1"}}},
			},
		}, nil
	})

	outcome, err := c.TxStatus(context.Background(), "HASH", "buyer.testnet")
	require.NoError(t, err)
	assert.Equal(t, "nft.testnet", outcome.Transaction.ReceiverID)
	assert.Equal(t, []string{"sold token-1"}, outcome.Logs())

	calls, err := outcome.FunctionCalls()
	require.NoError(t, err)
	require.Len(t, calls, 1)
	assert.Equal(t, "buy_nft", calls[0].MethodName)
	assert.JSONEq(t, `{"token_id":"token-1"}`, string(calls[0].Args))
	assert.Equal(t, "1.5", FormatYocto(calls[0].Deposit))
}
