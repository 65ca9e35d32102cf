package models

import (
	"encoding/json"
	"sync"
)

const (
	EventPaymentCaptured   = "payment.captured"
	EventPaymentAuthorized = "payment.authorized"
)

// WebhookEvent is the parsed form of a provider notification. Only the
// fields this service reads are mapped.
type WebhookEvent struct {
	Entity    string         `json:"entity"`
	AccountID string         `json:"account_id"`
	Event     string         `json:"event"`
	Contains  []string       `json:"contains"`
	Payload   WebhookPayload `json:"payload"`
	CreatedAt int64          `json:"created_at"`
}

// IsPaymentSuccess reports whether the event confirms money has moved.
func (e *WebhookEvent) IsPaymentSuccess() bool {
	return e.Event == EventPaymentCaptured || e.Event == EventPaymentAuthorized
}

type WebhookPayload struct {
	Payment     *PaymentEnvelope     `json:"payment,omitempty"`
	Order       *OrderEnvelope       `json:"order,omitempty"`
	PaymentLink *PaymentLinkEnvelope `json:"payment_link,omitempty"`
}

type PaymentEnvelope struct {
	Entity PaymentEntity `json:"entity"`
}

type PaymentEntity struct {
	ID       string `json:"id"`
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
	Method   string `json:"method"`
	Notes    Notes  `json:"notes"`
}

type OrderEnvelope struct {
	Entity Order `json:"entity"`
}

type PaymentLinkEnvelope struct {
	Entity PaymentLinkEntity `json:"entity"`
}

type PaymentLinkEntity struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	ReferenceID string `json:"reference_id"`
	Notes       Notes  `json:"notes"`
}

// WebhookDelivery carries the exact bytes received together with the
// headers needed to authenticate them. The signature is always checked
// against Body; Event parses it at most once.
type WebhookDelivery struct {
	Body      []byte
	Signature string
	EventID   string

	once  sync.Once
	event *WebhookEvent
	err   error
}

func NewWebhookDelivery(body []byte, signature, eventID string) *WebhookDelivery {
	return &WebhookDelivery{Body: body, Signature: signature, EventID: eventID}
}

// Event returns the parsed body. It must only be called after the
// signature has been verified.
func (d *WebhookDelivery) Event() (*WebhookEvent, error) {
	d.once.Do(func() {
		var evt WebhookEvent
		if err := json.Unmarshal(d.Body, &evt); err != nil {
			d.err = err
			return
		}
		d.event = &evt
	})
	return d.event, d.err
}
