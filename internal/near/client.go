package near

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"github.com/go-resty/resty/v2"
)

const finalityFinal = "final"

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      string `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *RPCError       `json:"error"`
}

type queryResult struct {
	BlockHeight uint64 `json:"block_height"`
	BlockHash   string `json:"block_hash"`
}

type callFunctionResult struct {
	queryResult
	Result []byte   `json:"-"`
	Logs   []string `json:"logs"`
	Error  string   `json:"error,omitempty"`
}

// UnmarshalJSON decodes "result" from the JSON array of byte values the node
// sends, which encoding/json would otherwise expect as base64.
func (r *callFunctionResult) UnmarshalJSON(b []byte) error {
	type alias callFunctionResult
	var raw struct {
		alias
		Result []int `json:"result"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	*r = callFunctionResult(raw.alias)
	r.Result = make([]byte, len(raw.Result))
	for i, v := range raw.Result {
		r.Result[i] = byte(v)
	}

	return nil
}

type AccountView struct {
	Amount        string `json:"amount"`
	Locked        string `json:"locked"`
	CodeHash      string `json:"code_hash"`
	StorageUsage  uint64 `json:"storage_usage"`
	StoragePaidAt uint64 `json:"storage_paid_at"`
	BlockHeight   uint64 `json:"block_height"`
	BlockHash     string `json:"block_hash"`
}

func (v AccountView) Balance() (*big.Int, error) {
	amount, ok := new(big.Int).SetString(v.Amount, 10)
	if !ok {
		return nil, fmt.Errorf("%w: account amount %q", ErrInvalidAmount, v.Amount)
	}

	return amount, nil
}

type AccessKeyView struct {
	Nonce       uint64          `json:"nonce"`
	Permission  json.RawMessage `json:"permission"`
	BlockHeight uint64          `json:"block_height"`
	BlockHash   string          `json:"block_hash"`
}

// IsFullAccess reports whether the permission is the string "FullAccess"
// rather than a FunctionCall object.
func (v AccessKeyView) IsFullAccess() bool {
	var s string
	return json.Unmarshal(v.Permission, &s) == nil && s == "FullAccess"
}

type FunctionCallPermission struct {
	Allowance   *string  `json:"allowance"`
	ReceiverID  string   `json:"receiver_id"`
	MethodNames []string `json:"method_names"`
}

// FunctionCall returns the permission of a function-call key. ok is false
// for full-access keys and unreadable permissions.
func (v AccessKeyView) FunctionCall() (perm FunctionCallPermission, ok bool) {
	var p struct {
		FunctionCall *FunctionCallPermission `json:"FunctionCall"`
	}
	if json.Unmarshal(v.Permission, &p) != nil || p.FunctionCall == nil {
		return FunctionCallPermission{}, false
	}

	return *p.FunctionCall, true
}

type ExecutionStatus struct {
	SuccessValue     *string         `json:"SuccessValue,omitempty"`
	SuccessReceiptID *string         `json:"SuccessReceiptId,omitempty"`
	Failure          json.RawMessage `json:"Failure,omitempty"`
}

type FinalExecutionOutcome struct {
	Status      ExecutionStatus `json:"status"`
	Transaction struct {
		Hash       string            `json:"hash"`
		SignerID   string            `json:"signer_id"`
		ReceiverID string            `json:"receiver_id"`
		Actions    []json.RawMessage `json:"actions"`
	} `json:"transaction"`
	TransactionOutcome struct {
		ID      string `json:"id"`
		Outcome struct {
			Logs     []string `json:"logs"`
			GasBurnt uint64   `json:"gas_burnt"`
		} `json:"outcome"`
	} `json:"transaction_outcome"`
	ReceiptsOutcome []struct {
		ID      string `json:"id"`
		Outcome struct {
			Logs []string `json:"logs"`
		} `json:"outcome"`
	} `json:"receipts_outcome"`
}

// Logs gathers the logs of the transaction and all of its receipts.
func (o *FinalExecutionOutcome) Logs() []string {
	logs := append([]string{}, o.TransactionOutcome.Outcome.Logs...)
	for _, r := range o.ReceiptsOutcome {
		logs = append(logs, r.Outcome.Logs...)
	}

	return logs
}

// CalledFunction is a FunctionCall action as the node reports it.
type CalledFunction struct {
	MethodName string
	Args       []byte
	Deposit    *big.Int
}

// FunctionCalls decodes the FunctionCall actions of the transaction. Other
// actions are skipped.
func (o *FinalExecutionOutcome) FunctionCalls() ([]CalledFunction, error) {
	calls := make([]CalledFunction, 0, len(o.Transaction.Actions))
	for _, raw := range o.Transaction.Actions {
		var action struct {
			FunctionCall *struct {
				MethodName string `json:"method_name"`
				Args       string `json:"args"`
				Deposit    string `json:"deposit"`
			} `json:"FunctionCall"`
		}
		// Actions without arguments, like "CreateAccount", are plain strings.
		if json.Unmarshal(raw, &action) != nil || action.FunctionCall == nil {
			continue
		}

		args, err := base64.StdEncoding.DecodeString(action.FunctionCall.Args)
		if err != nil {
			return nil, fmt.Errorf("base64 args of %s -> %w", action.FunctionCall.MethodName, err)
		}
		deposit, ok := new(big.Int).SetString(action.FunctionCall.Deposit, 10)
		if !ok {
			deposit = new(big.Int)
		}

		calls = append(calls, CalledFunction{
			MethodName: action.FunctionCall.MethodName,
			Args:       args,
			Deposit:    deposit,
		})
	}

	return calls, nil
}

// Client talks to a NEAR node over JSON-RPC.
type Client struct {
	http      *resty.Client
	networkID string
}

func NewClient(nodeURL, networkID string, timeout time.Duration) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(nodeURL).
			SetTimeout(timeout).
			SetHeader("Content-Type", "application/json"),
		networkID: networkID,
	}
}

func (c *Client) NetworkID() string {
	return c.networkID
}

func (c *Client) call(ctx context.Context, method string, params, result any) error {
	var out rpcResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(rpcRequest{JSONRPC: "2.0", ID: "dontcare", Method: method, Params: params}).
		SetResult(&out).
		SetError(&out).
		Post("")
	if err != nil {
		return fmt.Errorf("c.http.Post %s -> %w", method, err)
	}

	if out.Error != nil {
		return out.Error
	}
	if resp.IsError() {
		return fmt.Errorf("rpc %s: http status %d", method, resp.StatusCode())
	}

	if result != nil {
		if err = json.Unmarshal(out.Result, result); err != nil {
			return fmt.Errorf("json.Unmarshal %s result -> %w", method, err)
		}
	}

	return nil
}

// CallFunction runs a view method and returns its raw JSON return value.
func (c *Client) CallFunction(ctx context.Context, contractID, method string, args any) ([]byte, error) {
	encoded := []byte("{}")
	if args != nil {
		var err error
		if encoded, err = json.Marshal(args); err != nil {
			return nil, fmt.Errorf("json.Marshal -> %w", err)
		}
	}

	var res callFunctionResult
	err := c.call(ctx, "query", map[string]any{
		"request_type": "call_function",
		"finality":     finalityFinal,
		"account_id":   contractID,
		"method_name":  method,
		"args_base64":  base64.StdEncoding.EncodeToString(encoded),
	}, &res)
	if err != nil {
		return nil, err
	}
	if res.Error != "" {
		return nil, &ContractError{Method: method, Message: res.Error}
	}

	return res.Result, nil
}

func (c *Client) ViewAccount(ctx context.Context, accountID string) (AccountView, error) {
	var view AccountView
	err := c.call(ctx, "query", map[string]any{
		"request_type": "view_account",
		"finality":     finalityFinal,
		"account_id":   accountID,
	}, &view)
	if err != nil {
		return AccountView{}, err
	}

	return view, nil
}

func (c *Client) ViewAccessKey(ctx context.Context, accountID string, pk PublicKey) (AccessKeyView, error) {
	var view AccessKeyView
	err := c.call(ctx, "query", map[string]any{
		"request_type": "view_access_key",
		"finality":     finalityFinal,
		"account_id":   accountID,
		"public_key":   pk.String(),
	}, &view)
	if err != nil {
		return AccessKeyView{}, err
	}

	return view, nil
}

// BroadcastTxCommit sends a signed transaction and waits for its final
// outcome. A Failure status is returned as *ExecutionError along with the
// outcome.
func (c *Client) BroadcastTxCommit(ctx context.Context, st SignedTransaction) (*FinalExecutionOutcome, error) {
	var outcome FinalExecutionOutcome
	encoded := base64.StdEncoding.EncodeToString(st.Serialize())
	if err := c.call(ctx, "broadcast_tx_commit", []string{encoded}, &outcome); err != nil {
		return nil, err
	}

	return checkOutcome(&outcome, st.HashString())
}

func (c *Client) TxStatus(ctx context.Context, txHash, senderID string) (*FinalExecutionOutcome, error) {
	var outcome FinalExecutionOutcome
	if err := c.call(ctx, "tx", []string{txHash, senderID}, &outcome); err != nil {
		return nil, err
	}

	return checkOutcome(&outcome, txHash)
}

func checkOutcome(outcome *FinalExecutionOutcome, hash string) (*FinalExecutionOutcome, error) {
	if outcome.Transaction.Hash == "" {
		outcome.Transaction.Hash = hash
	}
	if len(outcome.Status.Failure) > 0 {
		return outcome, &ExecutionError{TransactionHash: outcome.Transaction.Hash, Failure: outcome.Status.Failure}
	}

	return outcome, nil
}
