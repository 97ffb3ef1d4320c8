package near

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/mr-tron/base58"
)

// Action enum indices of the NEAR protocol.
const (
	actionCreateAccount byte = iota
	actionDeployContract
	actionFunctionCall
)

type Action interface {
	encode(w *borshWriter)
}

type DeployContractAction struct {
	Code []byte
}

func (a DeployContractAction) encode(w *borshWriter) {
	w.u8(actionDeployContract)
	w.bytes(a.Code)
}

type FunctionCallAction struct {
	MethodName string
	Args       []byte
	Gas        uint64
	Deposit    *big.Int
}

func (a FunctionCallAction) encode(w *borshWriter) {
	w.u8(actionFunctionCall)
	w.string(a.MethodName)
	w.bytes(a.Args)
	w.u64(a.Gas)
	w.u128(a.Deposit)
}

// HasDeposit reports whether the call attaches any yoctoNEAR.
func (a FunctionCallAction) HasDeposit() bool {
	return a.Deposit != nil && a.Deposit.Sign() > 0
}

// NewFunctionCall JSON-encodes args; nil args become "{}".
func NewFunctionCall(method string, args any, gas uint64, deposit *big.Int) (FunctionCallAction, error) {
	encoded := []byte("{}")
	if args != nil {
		var err error
		encoded, err = json.Marshal(args)
		if err != nil {
			return FunctionCallAction{}, fmt.Errorf("json.Marshal -> %w", err)
		}
	}
	if deposit == nil {
		deposit = new(big.Int)
	}

	return FunctionCallAction{
		MethodName: method,
		Args:       encoded,
		Gas:        gas,
		Deposit:    deposit,
	}, nil
}

type Transaction struct {
	SignerID   string
	PublicKey  PublicKey
	Nonce      uint64
	ReceiverID string
	BlockHash  [32]byte
	Actions    []Action
}

func (tx Transaction) encode(w *borshWriter) {
	w.string(tx.SignerID)
	w.publicKey(tx.PublicKey)
	w.u64(tx.Nonce)
	w.string(tx.ReceiverID)
	w.fixed(tx.BlockHash[:])
	w.u32(uint32(len(tx.Actions)))
	for _, a := range tx.Actions {
		a.encode(w)
	}
}

func (tx Transaction) Serialize() []byte {
	w := &borshWriter{}
	tx.encode(w)

	return w.buf
}

// Hash is the sha256 of the borsh encoding; it is what gets signed and what
// explorers show base58-encoded.
func (tx Transaction) Hash() [32]byte {
	return sha256.Sum256(tx.Serialize())
}

type SignedTransaction struct {
	Transaction Transaction
	Signature   []byte
}

func (tx Transaction) Sign(kp KeyPair) SignedTransaction {
	hash := tx.Hash()

	return SignedTransaction{
		Transaction: tx,
		Signature:   kp.Sign(hash[:]),
	}
}

func (st SignedTransaction) Serialize() []byte {
	w := &borshWriter{}
	st.Transaction.encode(w)
	w.u8(KeyTypeED25519)
	w.fixed(st.Signature)

	return w.buf
}

func (st SignedTransaction) HashString() string {
	hash := st.Transaction.Hash()

	return base58.Encode(hash[:])
}

// DecodeBlockHash decodes the base58 block hash returned by RPC queries.
func DecodeBlockHash(s string) ([32]byte, error) {
	var out [32]byte

	raw, err := base58.Decode(s)
	if err != nil {
		return out, fmt.Errorf("base58.Decode -> %w", err)
	}
	if len(raw) != len(out) {
		return out, fmt.Errorf("block hash is %d bytes", len(raw))
	}
	copy(out[:], raw)

	return out, nil
}
