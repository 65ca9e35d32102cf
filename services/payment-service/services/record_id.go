package services

import "github.com/scholarpress/journal-backend/services/payment-service/models"

// recordIDSource is one place a webhook may carry the paper id.
type recordIDSource struct {
	name  string
	notes func(p *models.WebhookPayload) models.Notes
}

// recordIDSources are tried in order; the first non-empty paperId wins.
var recordIDSources = []recordIDSource{
	{
		name: "payment",
		notes: func(p *models.WebhookPayload) models.Notes {
			if p.Payment == nil {
				return nil
			}
			return p.Payment.Entity.Notes
		},
	},
	{
		name: "order",
		notes: func(p *models.WebhookPayload) models.Notes {
			if p.Order == nil {
				return nil
			}
			return p.Order.Entity.Notes
		},
	},
	{
		name: "payment_link",
		notes: func(p *models.WebhookPayload) models.Notes {
			if p.PaymentLink == nil {
				return nil
			}
			return p.PaymentLink.Entity.Notes
		},
	},
}

// ExtractRecordID returns the paper id carried by the event and the entity
// it was found on. Both are empty when no source carries one.
func ExtractRecordID(evt *models.WebhookEvent) (paperID, source string) {
	if evt == nil {
		return "", ""
	}
	for _, src := range recordIDSources {
		if id := src.notes(&evt.Payload).Get(models.PaperIDNote); id != "" {
			return id, src.name
		}
	}
	return "", ""
}
