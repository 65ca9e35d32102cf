package models

// Order is the provider-side order as returned by the orders API. It is
// never persisted by this service.
type Order struct {
	ID         string `json:"id"`
	Entity     string `json:"entity,omitempty"`
	Amount     int64  `json:"amount"`
	AmountPaid int64  `json:"amount_paid"`
	AmountDue  int64  `json:"amount_due"`
	Currency   string `json:"currency"`
	Receipt    string `json:"receipt"`
	Status     string `json:"status,omitempty"`
	Attempts   int    `json:"attempts"`
	Notes      Notes  `json:"notes"`
	CreatedAt  int64  `json:"created_at,omitempty"`
}

// OrderRequest is the body sent to the provider. Amount is in minor units.
type OrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes"`
}

// CreateOrderRequest is the client request. Amount is in major units and
// falls back to the platform fee when omitted.
type CreateOrderRequest struct {
	PaperID FlexID `json:"paperId"`
	Amount  *int64 `json:"amount"`
}
