package request

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
)

// TxCallbackRequest is the query string the wallet appends after the user
// approved or rejected transactions.
type TxCallbackRequest struct {
	AccountID         string `json:"account_id" form:"account_id"`
	TransactionHashes string `json:"transactionHashes" form:"transactionHashes"`
	ErrorCode         string `json:"errorCode" form:"errorCode"`
	ErrorMessage      string `json:"errorMessage" form:"errorMessage"`
}

func (req *TxCallbackRequest) Rejected() bool {
	return req.ErrorCode != ""
}

func (req *TxCallbackRequest) Hashes() []string {
	if req.TransactionHashes == "" {
		return nil
	}

	return strings.Split(req.TransactionHashes, ",")
}

func (req *TxCallbackRequest) Validate() error {
	if req.Rejected() {
		return validation.ValidateStruct(
			req,
			validation.Field(&req.AccountID, validation.Required, isAccountID),
		)
	}

	return validation.ValidateStruct(
		req,
		validation.Field(&req.AccountID, validation.Required, isAccountID),
		validation.Field(&req.TransactionHashes, validation.Required, validation.By(func(interface{}) error {
			for _, hash := range req.Hashes() {
				if err := validation.Validate(hash, validation.Required, isTxHash); err != nil {
					return errInvalidTxHash
				}
			}

			return nil
		})),
	)
}
