package providers

import (
	"context"

	"github.com/scholarpress/journal-backend/services/payment-service/models"
)

// OrderProvider is the payment provider's order API.
type OrderProvider interface {
	// CreateOrder registers an order for the given amount (minor units)
	// and returns the provider's order.
	CreateOrder(ctx context.Context, req models.OrderRequest) (*models.Order, error)

	// KeyID is the public key the checkout widget is opened with.
	KeyID() string
}
