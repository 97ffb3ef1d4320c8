package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/near-nft/marketplace/internal/api/handler/v1/request"
	"github.com/near-nft/marketplace/internal/api/handler/v1/response"
	"github.com/near-nft/marketplace/internal/domain"
	"github.com/near-nft/marketplace/internal/near"
	"github.com/near-nft/marketplace/internal/service"
)

var errTxRejected = errors.New("transaction was rejected in the wallet")

type TxService interface {
	Confirm(ctx context.Context, accountID string, hashes []string) ([]domain.Activity, error)
}

type TxHandler struct {
	svc TxService
}

func NewTxHandler(svc TxService) *TxHandler {
	return &TxHandler{
		svc: svc,
	}
}

// HandleTxCallback godoc
// @Summary      Wallet transaction redirect target
// @Description  The wallet returns here after signing a mint or a purchase. The signed transactions are looked up on chain and the activities waiting for them are confirmed.
// @Tags         activity
// @Produce      json
// @Param        account_id         query     string  true   "account that signed"
// @Param        transactionHashes  query     string  false  "comma separated transaction hashes"
// @Param        errorCode          query     string  false  "set when the user rejected the transactions"
// @Success      200                {array}   domain.Activity
// @Failure      400                {object}  response.Err
// @Failure      409                {object}  response.Err
// @Failure      502                {object}  response.Err
// @Router       /tx/callback [get]
func (h *TxHandler) HandleTxCallback(ctx *gin.Context) {
	var req request.TxCallbackRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if req.Rejected() {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("%w: %s", errTxRejected, req.ErrorCode)))
		return
	}

	activities, err := h.svc.Confirm(ctx.Request.Context(), req.AccountID, req.Hashes())
	if err != nil {
		response.RenderErr(ctx, txErr(fmt.Errorf("v1.HandleTxCallback -> h.svc.Confirm -> %w", err)))
		return
	}

	ctx.JSON(http.StatusOK, activities)
}

func txErr(err error) *response.Err {
	var execErr *near.ExecutionError

	switch {
	case errors.Is(err, service.ErrForeignTransaction):
		return response.ErrBadRequest(service.ErrForeignTransaction)
	case errors.As(err, &execErr):
		return response.ErrConflict(execErr)
	}

	return marketErr(err, "")
}
