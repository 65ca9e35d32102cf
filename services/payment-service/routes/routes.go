package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/scholarpress/journal-backend/services/payment-service/controllers"
)

// RegisterPaymentRoutes mounts the payment API. limit guards the
// client-facing endpoints only; the webhook is authenticated by signature
// and must not be throttled when Razorpay retries in bursts.
func RegisterPaymentRoutes(r *gin.Engine, pc *controllers.PaymentController, hc *controllers.HealthController, limit gin.HandlerFunc) {
	api := r.Group("/api")
	api.GET("/health", hc.Health)

	payments := api.Group("/payments")
	payments.GET("/key", pc.GetKey)
	payments.POST("/webhook", pc.Webhook)

	client := payments.Group("")
	if limit != nil {
		client.Use(limit)
	}
	client.POST("/create-order", pc.CreateOrder)
	client.POST("/verify-payment", pc.VerifyPayment)
}
