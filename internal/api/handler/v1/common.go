package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/near-nft/marketplace/internal/api/handler/v1/response"
	"github.com/near-nft/marketplace/internal/api/middleware"
	"github.com/near-nft/marketplace/internal/domain"
	"github.com/near-nft/marketplace/internal/near"
	"github.com/near-nft/marketplace/internal/service"
)

// SessionService is what handlers need to resolve the signed-in account.
type SessionService interface {
	CurrentUser(ctx context.Context, sessionID string, refresh bool) (domain.User, error)
	Caller(ctx context.Context, sessionID string) (service.Caller, error)
}

// HandleHealthcheck godoc
// @Summary      Health check
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       / [get]
func HandleHealthcheck(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func getUserFromContext(ctx *gin.Context, svc SessionService) (domain.User, *response.Err) {
	sessionID := ctx.GetString(middleware.ContextKeySessionID)
	if sessionID == "" {
		return domain.User{}, response.ErrUnauthorized(service.ErrSessionInactive)
	}

	user, err := svc.CurrentUser(ctx.Request.Context(), sessionID, false)
	if err != nil {
		return domain.User{}, sessionErr(fmt.Errorf("getUserFromContext -> svc.CurrentUser -> %w", err))
	}

	return user, nil
}

func getCallerFromContext(ctx *gin.Context, svc SessionService) (service.Caller, *response.Err) {
	sessionID := ctx.GetString(middleware.ContextKeySessionID)
	if sessionID == "" {
		return nil, response.ErrUnauthorized(service.ErrSessionInactive)
	}

	caller, err := svc.Caller(ctx.Request.Context(), sessionID)
	if err != nil {
		return nil, sessionErr(fmt.Errorf("getCallerFromContext -> svc.Caller -> %w", err))
	}

	return caller, nil
}

func sessionErr(err error) *response.Err {
	if errors.Is(err, service.ErrSessionNotFound) || errors.Is(err, service.ErrSessionInactive) {
		return response.ErrUnauthorized(service.ErrSessionInactive)
	}

	return response.ErrInternalServerError(err)
}

// marketErr maps marketplace and chain errors to responses.
func marketErr(err error, tokenID string) *response.Err {
	var (
		rpcErr      *near.RPCError
		contractErr *near.ContractError
		execErr     *near.ExecutionError
	)

	switch {
	case errors.Is(err, service.ErrTokenNotFound):
		return response.ErrNotFound("token", "id", tokenID)
	case errors.Is(err, service.ErrTokenExists):
		return response.ErrConflict(service.ErrTokenExists)
	case errors.Is(err, service.ErrOwnToken):
		return response.ErrPermissionDenied(service.ErrOwnToken)
	case errors.Is(err, service.ErrTokenNotForSale):
		return response.ErrBadRequest(service.ErrTokenNotForSale)
	case errors.Is(err, service.ErrInsufficientDeposit):
		return response.ErrBadRequest(service.ErrInsufficientDeposit)
	case errors.Is(err, service.ErrInvalidPrice):
		return response.ErrBadRequest(service.ErrInvalidPrice)
	case errors.Is(err, service.ErrMintFieldsRequired):
		return response.ErrBadRequest(service.ErrMintFieldsRequired)
	case errors.Is(err, service.ErrTokenIDRequired):
		return response.ErrBadRequest(service.ErrTokenIDRequired)
	case errors.Is(err, near.ErrNoFullAccessKey):
		return response.ErrPermissionDenied(near.ErrNoFullAccessKey)
	case errors.As(err, &rpcErr), errors.As(err, &contractErr), errors.As(err, &execErr):
		return response.ErrBadGateway(err)
	}

	return response.ErrInternalServerError(err)
}

// renderTx answers 202 when the wallet still has to approve the call.
func renderTx(ctx *gin.Context, status int, body any, res domain.TxResult) {
	if res.NeedsApproval() {
		status = http.StatusAccepted
	}

	ctx.JSON(status, body)
}
