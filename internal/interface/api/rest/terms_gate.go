package rest

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"filevault-api/internal/application/ports"
	"filevault-api/internal/interface/api/rest/middleware"
)

// requireTerms runs after AuthMiddleware and answers 403 until the caller accepted the current
// terms of use.
func requireTerms(terms ports.TermsService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := middleware.ActorID(c)
		if !ok {
			unauthorized(c)
			return
		}
		if err := terms.CheckTermsAccepted(c.Request.Context(), actor); err != nil {
			abortWithError(c, logger, "CheckTermsAccepted", "failed to check the terms of use", err)
			return
		}
		c.Next()
	}
}
