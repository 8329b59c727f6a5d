package middleware

import (
	"fmt"
	nethttp "net/http"

	"github.com/daffahilmyf/creature-catalog/internal/transport/http/response"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Recovery turns a panic into the standard 500 envelope. The panic value is
// only returned to clients when exposeDetails is set.
func Recovery(log *logrus.Logger, exposeDetails bool) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered any) {
		log.WithFields(logrus.Fields{
			"panic":      recovered,
			"path":       c.Request.URL.Path,
			"request_id": c.GetString(RequestIDKey),
		}).Error("panic recovered")

		message := response.InternalErrorMessage
		if exposeDetails {
			message = fmt.Sprint(recovered)
		}
		response.RespondError(c, nethttp.StatusInternalServerError, message)
		c.Abort()
	})
}
