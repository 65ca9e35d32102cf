package models

// VerifyPaymentRequest is what the checkout widget hands back to the client
// after a successful payment.
type VerifyPaymentRequest struct {
	OrderID   string `json:"razorpayOrderId" binding:"required"`
	PaymentID string `json:"razorpayPaymentId" binding:"required"`
	Signature string `json:"razorpaySignature" binding:"required"`
	PaperID   FlexID `json:"paperId"`
}

type VerifyPaymentResult struct {
	OrderID   string
	PaymentID string
	PaperID   string
}
