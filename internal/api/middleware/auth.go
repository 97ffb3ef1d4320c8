package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/near-nft/marketplace/internal/api/handler/v1/response"
	"github.com/near-nft/marketplace/internal/pkg/jwthelper"
)

// ContextKeySessionID holds the wallet session id of a verified request.
const ContextKeySessionID = "session_id"

var errMissingToken = errors.New("missing bearer token")

type Authenticator struct {
	key []byte
}

func NewAuthenticator(signingKey string) *Authenticator {
	return &Authenticator{
		key: []byte(signingKey),
	}
}

// VerifyJWT reads the token from the Authorization header, or from the
// token query parameter for websocket upgrades where browsers cannot set
// headers.
func (a *Authenticator) VerifyJWT() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token := bearerToken(ctx)
		if token == "" {
			response.RenderErr(ctx, response.ErrUnauthorized(errMissingToken))
			return
		}

		claims, err := jwthelper.ParseToken(a.key, token, ctx.Request.UserAgent())
		if err != nil {
			response.RenderErr(ctx, response.ErrInvalidToken(err))
			return
		}

		ctx.Set(ContextKeySessionID, claims.SessionID)
		ctx.Next()
	}
}

func bearerToken(ctx *gin.Context) string {
	header := ctx.GetHeader("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	if ctx.IsWebsocket() {
		return ctx.Query("token")
	}

	return ""
}
