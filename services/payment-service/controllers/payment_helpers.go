package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/scholarpress/journal-backend/services/common/errors"
	"github.com/scholarpress/journal-backend/services/common/logger"
	"go.uber.org/zap"
)

// respondError writes the failure envelope. Create-order reports under
// "error", the verification endpoints under "message".
func (pc *PaymentController) respondError(c *gin.Context, appErr *apperrors.Error, field string) {
	log := logger.WithRequest(pc.logger, c)
	if appErr.Code >= http.StatusInternalServerError {
		log.Error(appErr.Message, zap.String("kind", string(appErr.Kind)), zap.Error(appErr.Err))
	} else {
		log.Warn(appErr.Message, zap.String("kind", string(appErr.Kind)))
	}
	c.JSON(appErr.Code, gin.H{"success": false, field: appErr.Message})
}
