package near

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	ErrInvalidAccountID = errors.New("invalid account id")
	ErrNoFullAccessKey  = errors.New("no full access key to sign with")
)

// RPCError is the error object of a JSON-RPC response.
type RPCError struct {
	Name    string          `json:"name"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
	Cause   struct {
		Name string          `json:"name"`
		Info json.RawMessage `json:"info,omitempty"`
	} `json:"cause"`
}

func (e *RPCError) Error() string {
	var b strings.Builder
	b.WriteString("rpc error")
	if e.Cause.Name != "" {
		b.WriteString(" " + e.Cause.Name)
	} else if e.Name != "" {
		b.WriteString(" " + e.Name)
	}
	if e.Message != "" {
		b.WriteString(": " + e.Message)
	}
	if len(e.Data) > 0 {
		b.WriteString(": " + string(e.Data))
	}
	if len(e.Cause.Info) > 0 {
		b.WriteString(": " + string(e.Cause.Info))
	}

	return b.String()
}

// ContractError is a panic raised by a view call, reported by the node in
// the query result rather than as an RPC error.
type ContractError struct {
	Method  string
	Message string
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("contract view %s failed: %s", e.Method, e.Message)
}

// ExecutionError is a transaction whose final status is Failure.
type ExecutionError struct {
	TransactionHash string
	Failure         json.RawMessage
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("transaction %s failed: %s", e.TransactionHash, string(e.Failure))
}

// IsAlreadyInitialized reports whether err is the contract refusing a second
// `new` call. Contracts phrase it differently ("Already initialized",
// "The contract has already been initialized"), so only the common
// substring is matched.
func IsAlreadyInitialized(err error) bool {
	if err == nil {
		return false
	}

	return strings.Contains(strings.ToLower(err.Error()), "already initialized") ||
		strings.Contains(strings.ToLower(err.Error()), "already been initialized")
}

var accountIDPattern = regexp.MustCompile(`^(([a-z\d]+[-_])*[a-z\d]+\.)*([a-z\d]+[-_])*[a-z\d]+$`)

func ValidateAccountID(accountID string) error {
	if len(accountID) < 2 || len(accountID) > 64 || !accountIDPattern.MatchString(accountID) {
		return fmt.Errorf("%w: %q", ErrInvalidAccountID, accountID)
	}

	return nil
}
