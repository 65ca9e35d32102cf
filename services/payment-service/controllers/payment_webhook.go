package controllers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/scholarpress/journal-backend/services/payment-service/models"
	"go.uber.org/zap"
)

const (
	maxWebhookBodyBytes = 1 << 20

	signatureHeader = "X-Razorpay-Signature"
	eventIDHeader   = "X-Razorpay-Event-Id"
)

// Webhook handles POST /api/payments/webhook. The body is read raw and
// never bound, so the signature is checked over the bytes Razorpay sent.
func (pc *PaymentController) Webhook(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBodyBytes+1))
	if err != nil {
		pc.logger.Warn("Failed to read webhook body", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Failed to read request body"})
		return
	}
	if len(body) > maxWebhookBodyBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"success": false, "message": "Payload too large"})
		return
	}

	delivery := models.NewWebhookDelivery(body, c.GetHeader(signatureHeader), c.GetHeader(eventIDHeader))
	outcome, appErr := pc.paymentService.HandleWebhook(c.Request.Context(), delivery)
	if appErr != nil {
		pc.respondError(c, appErr, "message")
		return
	}

	switch {
	case outcome.Ignored:
		resp := gin.H{"success": true, "ignored": true}
		if outcome.Reason != "" {
			resp["reason"] = outcome.Reason
		}
		c.JSON(http.StatusOK, resp)
	case !outcome.Updated:
		c.JSON(http.StatusOK, gin.H{"success": true, "updated": false, "reason": outcome.Reason})
	default:
		c.JSON(http.StatusOK, gin.H{"success": true, "updated": true, "paperId": outcome.PaperID})
	}
}
