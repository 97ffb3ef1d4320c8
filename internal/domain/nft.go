package domain

type TokenMetadata struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Media       string `json:"media"`
}

// Token prices are NEAR decimal strings ("1.5").
type Token struct {
	TokenID  string        `json:"token_id"`
	OwnerID  string        `json:"owner_id"`
	Metadata TokenMetadata `json:"metadata"`
	Price    string        `json:"price"`
}

type TokenListing struct {
	TokenID string `json:"token_id"`
	OwnerID string `json:"owner_id"`
	Title   string `json:"title"`
	Price   string `json:"price"`
}

type CartItem struct {
	TokenID string `json:"token_id"`
	Price   string `json:"price"`
}

// TxResult describes what happened to a state-changing call. WalletURL is
// set when the account's wallet has to approve the transaction first.
type TxResult struct {
	TransactionHash string   `json:"transaction_hash,omitempty"`
	WalletURL       string   `json:"wallet_url,omitempty"`
	Mock            bool     `json:"mock,omitempty"`
	Logs            []string `json:"logs,omitempty"`
}

func (r TxResult) NeedsApproval() bool {
	return r.WalletURL != ""
}

type MintInput struct {
	TokenID     string
	OwnerID     string
	Title       string
	Description string
	Media       string
	Price       string
}

type MintResult struct {
	Token Token `json:"token"`
	TxResult
}
