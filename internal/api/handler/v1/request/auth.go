package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// CallbackRequest is the query string the wallet redirects back with.
type CallbackRequest struct {
	SessionID string `json:"session_id" form:"session_id"`
	AccountID string `json:"account_id" form:"account_id"`
	PublicKey string `json:"public_key" form:"public_key"`
	AllKeys   string `json:"all_keys" form:"all_keys"`
	Failed    bool   `json:"failed" form:"failed"`
}

func (req *CallbackRequest) Validate() error {
	if req.Failed {
		return validation.ValidateStruct(
			req,
			validation.Field(&req.SessionID, validation.Required, is.UUID),
		)
	}

	return validation.ValidateStruct(
		req,
		validation.Field(&req.SessionID, validation.Required, is.UUID),
		validation.Field(&req.AccountID, validation.Required, isAccountID),
		validation.Field(&req.PublicKey, validation.Required),
	)
}
