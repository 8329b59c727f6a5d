package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	nethttp "net/http"

	"github.com/daffahilmyf/creature-catalog/internal/transport/http/response"
	"github.com/gin-gonic/gin"
)

const (
	IdempotencyKeyCtx  = "idempotency_key"
	IdempotencyHashCtx = "idempotency_hash"
)

// Idempotency records the Idempotency-Key header and a hash of the request body
// for the handler. Without a key the request passes through unless required is set.
func Idempotency(required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		idempotencyKey := c.GetHeader("Idempotency-Key")
		if idempotencyKey == "" {
			idempotencyKey = c.GetHeader("X-Idempotency-Key")
		}
		if idempotencyKey == "" {
			if required {
				response.RespondError(c, nethttp.StatusBadRequest, "idempotency key is required")
				c.Abort()
				return
			}
			c.Set(IdempotencyKeyCtx, "")
			c.Set(IdempotencyHashCtx, "")
			c.Next()
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			response.RespondError(c, nethttp.StatusBadRequest, "invalid request body")
			c.Abort()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewBuffer(body))
		sum := sha256.Sum256(body)
		c.Set(IdempotencyKeyCtx, idempotencyKey)
		c.Set(IdempotencyHashCtx, hex.EncodeToString(sum[:]))

		c.Next()
	}
}
