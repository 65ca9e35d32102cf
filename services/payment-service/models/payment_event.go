package models

import "time"

const (
	PaymentEventSucceeded = "payment_succeeded"

	SourceWebhook            = "webhook"
	SourceClientVerification = "client_verification"
)

// PaymentEvent is published to SNS once a paper has been marked paid so
// that notification and admin workflows can react.
type PaymentEvent struct {
	EventID   string    `json:"event_id"`
	Type      string    `json:"type"`
	Source    string    `json:"source"`
	PaperID   string    `json:"paper_id"`
	OrderID   string    `json:"order_id,omitempty"`
	PaymentID string    `json:"payment_id,omitempty"`
	Amount    int64     `json:"amount,omitempty"`   // minor units
	Currency  string    `json:"currency,omitempty"` // "INR"
	Timestamp time.Time `json:"timestamp"`
}
