package response

import (
	"github.com/near-nft/marketplace/internal/domain"
)

type SignInResponse struct {
	SessionID string `json:"session_id"`
	WalletURL string `json:"wallet_url"`
}

type LoginResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}
