package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/near-nft/marketplace/internal/api/handler/v1/response"
	"github.com/near-nft/marketplace/internal/config"
)

type StatusHandler struct {
	conf *config.NearConfig
	svc  MarketService
}

func NewStatusHandler(conf *config.NearConfig, svc MarketService) *StatusHandler {
	return &StatusHandler{
		conf: conf,
		svc:  svc,
	}
}

// HandleStatus godoc
// @Summary      Network and contract in use
// @Description  mock_data is true while the marketplace is served from built-in sample data instead of the contract.
// @Tags         health
// @Produce      json
// @Success      200  {object}  response.StatusResponse
// @Router       /status [get]
func (h *StatusHandler) HandleStatus(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, response.StatusResponse{
		NetworkID:   h.conf.NetworkID,
		ContractID:  h.svc.ContractID(),
		WalletURL:   h.conf.WalletURL,
		HelperURL:   h.conf.HelperURL,
		ExplorerURL: h.conf.ExplorerURL,
		MockData:    h.svc.IsMock(),
	})
}
