package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/near-nft/marketplace/internal/api/handler/v1/request"
	"github.com/near-nft/marketplace/internal/api/handler/v1/response"
	"github.com/near-nft/marketplace/internal/api/middleware"
	"github.com/near-nft/marketplace/internal/config"
	"github.com/near-nft/marketplace/internal/domain"
	"github.com/near-nft/marketplace/internal/pkg/jwthelper"
	"github.com/near-nft/marketplace/internal/service"
)

var errSignInCancelled = errors.New("sign-in was cancelled in the wallet")

type AuthService interface {
	SessionService
	SignIn(ctx context.Context, userAgent string) (domain.Session, string, error)
	CompleteSignIn(ctx context.Context, sessionID, accountID, publicKey, allKeys string) (domain.Session, error)
	FailSignIn(ctx context.Context, sessionID string) error
	SignOut(ctx context.Context, sessionID string) error
}

type AuthHandler struct {
	conf *config.APIConfig
	svc  AuthService
}

func NewAuthHandler(conf *config.APIConfig, svc AuthService) *AuthHandler {
	return &AuthHandler{
		conf: conf,
		svc:  svc,
	}
}

// HandleSignIn godoc
// @Summary      Start a wallet sign-in
// @Description  Creates a pending session and returns the wallet URL that approves its access key. With redirect=true the client is sent straight to the wallet.
// @Tags         auth
// @Produce      json
// @Param        redirect  query     bool  false  "redirect to the wallet"
// @Success      200       {object}  response.SignInResponse
// @Success      302
// @Failure      500       {object}  response.Err
// @Router       /auth/signin [post]
func (h *AuthHandler) HandleSignIn(ctx *gin.Context) {
	session, walletURL, err := h.svc.SignIn(ctx.Request.Context(), ctx.Request.UserAgent())
	if err != nil {
		err = fmt.Errorf("v1.HandleSignIn -> h.svc.SignIn -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	if redirect, _ := strconv.ParseBool(ctx.Query("redirect")); redirect {
		ctx.Redirect(http.StatusFound, walletURL)
		return
	}

	ctx.JSON(http.StatusOK, response.SignInResponse{
		SessionID: session.ID,
		WalletURL: walletURL,
	})
}

// HandleCallback godoc
// @Summary      Wallet sign-in redirect target
// @Tags         auth
// @Produce      json
// @Param        session_id  query     string  true   "session id"
// @Param        account_id  query     string  false  "signed-in account"
// @Param        public_key  query     string  false  "approved access key"
// @Param        all_keys    query     string  false  "the account's full-access keys"
// @Param        failed      query     bool    false  "set on the failure redirect"
// @Success      200         {object}  response.LoginResponse
// @Failure      400         {object}  response.Err
// @Failure      401         {object}  response.Err
// @Failure      500         {object}  response.Err
// @Router       /auth/callback [get]
func (h *AuthHandler) HandleCallback(ctx *gin.Context) {
	var req request.CallbackRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if req.Failed {
		if err := h.svc.FailSignIn(ctx.Request.Context(), req.SessionID); err != nil {
			response.RenderErr(ctx, callbackErr(fmt.Errorf("v1.HandleCallback -> h.svc.FailSignIn -> %w", err), req.SessionID))
			return
		}

		response.RenderErr(ctx, response.ErrUnauthorized(errSignInCancelled))
		return
	}

	session, err := h.svc.CompleteSignIn(ctx.Request.Context(), req.SessionID, req.AccountID, req.PublicKey, req.AllKeys)
	if err != nil {
		response.RenderErr(ctx, callbackErr(fmt.Errorf("v1.HandleCallback -> h.svc.CompleteSignIn -> %w", err), req.SessionID))
		return
	}

	token, err := jwthelper.GenerateToken([]byte(h.conf.JWTSigningKey), session.ID, ctx.Request.UserAgent(), h.conf.TokenTTL)
	if err != nil {
		err = fmt.Errorf("v1.HandleCallback -> jwthelper.GenerateToken -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.LoginResponse{
		Token: token,
		User:  session.User(),
	})
}

func callbackErr(err error, sessionID string) *response.Err {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		return response.ErrNotFound("session", "id", sessionID)
	case errors.Is(err, service.ErrSessionNotPending):
		return response.ErrConflict(service.ErrSessionNotPending)
	case errors.Is(err, service.ErrKeyMismatch):
		return response.ErrUnauthorized(service.ErrKeyMismatch)
	case errors.Is(err, service.ErrKeyNotAdded):
		return response.ErrUnauthorized(service.ErrKeyNotAdded)
	case errors.Is(err, service.ErrInvalidAccountID):
		return response.ErrBadRequest(service.ErrInvalidAccountID)
	}

	return response.ErrInternalServerError(err)
}

// HandleMe godoc
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Param        refresh  query     bool  false  "refresh the balance from the network"
// @Success      200      {object}  domain.User
// @Failure      401      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /auth/me [get]
// @Security BearerAuth
func (h *AuthHandler) HandleMe(ctx *gin.Context) {
	refresh, _ := strconv.ParseBool(ctx.Query("refresh"))

	user, err := h.svc.CurrentUser(ctx.Request.Context(), ctx.GetString(middleware.ContextKeySessionID), refresh)
	if err != nil {
		response.RenderErr(ctx, sessionErr(fmt.Errorf("v1.HandleMe -> h.svc.CurrentUser -> %w", err)))
		return
	}

	ctx.JSON(http.StatusOK, user)
}

// HandleSignOut godoc
// @Summary      Sign out
// @Tags         auth
// @Success      204
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /auth/signout [post]
// @Security BearerAuth
func (h *AuthHandler) HandleSignOut(ctx *gin.Context) {
	if err := h.svc.SignOut(ctx.Request.Context(), ctx.GetString(middleware.ContextKeySessionID)); err != nil {
		response.RenderErr(ctx, sessionErr(fmt.Errorf("v1.HandleSignOut -> h.svc.SignOut -> %w", err)))
		return
	}

	ctx.Status(http.StatusNoContent)
}
