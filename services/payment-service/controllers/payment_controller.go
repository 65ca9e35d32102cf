package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/scholarpress/journal-backend/services/payment-service/models"
	"github.com/scholarpress/journal-backend/services/payment-service/services"
	"go.uber.org/zap"
)

// PaymentController handles the checkout and webhook endpoints.
type PaymentController struct {
	paymentService services.PaymentService
	logger         *zap.Logger
}

func NewPaymentController(svc services.PaymentService, logger *zap.Logger) *PaymentController {
	return &PaymentController{paymentService: svc, logger: logger}
}

// GetKey handles GET /api/payments/key
func (pc *PaymentController) GetKey(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"key": pc.paymentService.KeyID()})
}

// CreateOrder handles POST /api/payments/create-order
func (pc *PaymentController) CreateOrder(c *gin.Context) {
	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request", "details": err.Error()})
		return
	}

	order, appErr := pc.paymentService.CreateOrder(c.Request.Context(), &req)
	if appErr != nil {
		pc.respondError(c, appErr, "error")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "order": order})
}

// VerifyPayment handles POST /api/payments/verify-payment
func (pc *PaymentController) VerifyPayment(c *gin.Context) {
	var req models.VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Missing payment verification fields"})
		return
	}

	result, appErr := pc.paymentService.VerifyPayment(c.Request.Context(), &req)
	if appErr != nil {
		pc.respondError(c, appErr, "message")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   services.MsgVerified,
		"orderId":   result.OrderID,
		"paymentId": result.PaymentID,
	})
}
