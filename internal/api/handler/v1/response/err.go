package response

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var errNetworkCall = errors.New("the NEAR network call failed")

// Err is the JSON body of every error response.
type Err struct {
	HTTPStatusCode int    `json:"-"`
	StatusText     string `json:"status_text"`
	ErrorText      string `json:"error_text,omitempty"`
}

func (e *Err) Error() string {
	return fmt.Sprintf("%d %s: %s", e.HTTPStatusCode, e.StatusText, e.ErrorText)
}

func RenderErr(ctx *gin.Context, e *Err) {
	ctx.AbortWithStatusJSON(e.HTTPStatusCode, e)
}

func newErr(status int, err error) *Err {
	e := &Err{
		HTTPStatusCode: status,
		StatusText:     http.StatusText(status),
	}
	if err != nil {
		e.ErrorText = err.Error()
	}

	return e
}

func ErrBadRequest(err error) *Err {
	return newErr(http.StatusBadRequest, err)
}

func ErrUnauthorized(err error) *Err {
	return newErr(http.StatusUnauthorized, err)
}

func ErrInvalidToken(err error) *Err {
	return newErr(http.StatusUnauthorized, err)
}

func ErrPermissionDenied(err error) *Err {
	return newErr(http.StatusForbidden, err)
}

func ErrNotFound(resource, field string, value any) *Err {
	return newErr(http.StatusNotFound, fmt.Errorf("%s with %s %v not found", resource, field, value))
}

func ErrConflict(err error) *Err {
	return newErr(http.StatusConflict, err)
}

// ErrBadGateway reports a failure of the NEAR node or the contract. The
// detail is logged, clients only see that the chain call failed.
func ErrBadGateway(err error) *Err {
	zap.L().Warn("upstream call failed", zap.Error(err))

	return newErr(http.StatusBadGateway, errNetworkCall)
}

func ErrServiceUnavailable(err error) *Err {
	return newErr(http.StatusServiceUnavailable, err)
}

func ErrInternalServerError(err error) *Err {
	zap.L().Error("internal server error", zap.Error(err))

	return newErr(http.StatusInternalServerError, nil)
}
