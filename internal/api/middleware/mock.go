package middleware

import (
	"github.com/gin-gonic/gin"
)

const MockDataHeader = "X-Mock-Data"

// MockData marks every response while the marketplace is served from mock
// data instead of the deployed contract.
func MockData(isMock func() bool) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if isMock() {
			ctx.Header(MockDataHeader, "true")
		}
		ctx.Next()
	}
}
