package request

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
)

var errMintFieldsRequired = errors.New("Title, Image, and Price are required")

// MintRequest is the multipart mint form. The image is either uploaded as
// the "image" file or given as an existing URL in media.
type MintRequest struct {
	TokenID     string `json:"token_id" form:"token_id"`
	OwnerID     string `json:"owner_id" form:"owner_id"`
	Title       string `json:"title" form:"title"`
	Description string `json:"description" form:"description"`
	Media       string `json:"media" form:"media"`
	Price       string `json:"price" form:"price"`
}

func (req *MintRequest) Validate(hasImage bool) error {
	req.Title = strings.TrimSpace(req.Title)
	req.Price = strings.TrimSpace(req.Price)
	req.Media = strings.TrimSpace(req.Media)
	if req.Title == "" || req.Price == "" || (req.Media == "" && !hasImage) {
		return errMintFieldsRequired
	}

	return validation.ValidateStruct(
		req,
		validation.Field(&req.TokenID, isTokenID),
		validation.Field(&req.OwnerID, isAccountID),
		validation.Field(&req.Title, validation.Length(1, 200)),
		validation.Field(&req.Description, validation.Length(0, 2000)),
		validation.Field(&req.Media, validation.Length(0, 2048)),
		validation.Field(&req.Price, isPrice),
	)
}

type CartRequest struct {
	TokenID string `json:"token_id"`
}

func (req *CartRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.TokenID, validation.Required, isTokenID),
	)
}

// ValidateAccountID checks an account id taken from a path or query.
func ValidateAccountID(accountID string) error {
	return validation.Validate(accountID, validation.Required, isAccountID)
}

func ValidateTokenID(tokenID string) error {
	return validation.Validate(tokenID, validation.Required, isTokenID)
}
