package response

type StatusResponse struct {
	NetworkID   string `json:"network_id"`
	ContractID  string `json:"contract_id"`
	WalletURL   string `json:"wallet_url"`
	HelperURL   string `json:"helper_url"`
	ExplorerURL string `json:"explorer_url"`
	MockData    bool   `json:"mock_data"`
}

type PriceResponse struct {
	TokenID string `json:"token_id"`
	Price   string `json:"price"`
}

type MediaResponse struct {
	URL string `json:"url"`
}
