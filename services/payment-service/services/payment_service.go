package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	aws_pkg "github.com/scholarpress/journal-backend/pkg/aws"
	apperrors "github.com/scholarpress/journal-backend/services/common/errors"
	"github.com/scholarpress/journal-backend/services/payment-service/models"
	"github.com/scholarpress/journal-backend/services/payment-service/providers"
	"github.com/scholarpress/journal-backend/services/payment-service/repository"
	"go.uber.org/zap"
)

const (
	MsgOrderFailed          = "Failed to create Razorpay order"
	MsgVerified             = "Payment verified successfully"
	MsgInvalidSignature     = "Invalid signature. Payment verification failed."
	MsgVerifiedNotRecorded  = "Payment verified but failed to update paper status in database"
	MsgWebhookSecretMissing = "Webhook secret is not configured"
	MsgMissingSignature     = "Missing x-razorpay-signature header"
	MsgInvalidWebhook       = "Invalid webhook signature"
	MsgDatabaseMissing      = "Database not configured"
	MsgUpdateFailed         = "Failed to update payment status"

	ReasonPaperIDMissing   = "paperId missing"
	ReasonMalformedPayload = "malformed payload"

	// maxReceiptLen is Razorpay's limit on the order receipt field.
	maxReceiptLen = 40
)

var errStoreNotConfigured = errors.New("record store not configured")

// WebhookOutcome is the acknowledged result of a verified delivery.
type WebhookOutcome struct {
	Ignored   bool
	Updated   bool
	Duplicate bool
	Reason    string
	PaperID   string
}

type PaymentService interface {
	KeyID() string
	StoreConfigured() bool
	CreateOrder(ctx context.Context, req *models.CreateOrderRequest) (*models.Order, *apperrors.Error)
	VerifyPayment(ctx context.Context, req *models.VerifyPaymentRequest) (*models.VerifyPaymentResult, *apperrors.Error)
	HandleWebhook(ctx context.Context, delivery *models.WebhookDelivery) (*WebhookOutcome, *apperrors.Error)
}

// Options carries the secrets and limits the service is built with.
type Options struct {
	KeySecret       string
	WebhookSecret   string
	DefaultAmount   int64 // major units
	Currency        string
	ProviderTimeout time.Duration
	StoreTimeout    time.Duration
	SNSTopicARN     string
}

type paymentServiceImpl struct {
	provider  providers.OrderProvider
	repo      repository.PaperRepository
	receipts  repository.WebhookReceiptStore
	snsClient aws_pkg.SNSPublisher
	opts      Options
	logger    *zap.Logger
}

// NewPaymentService wires the service. repo, receipts and snsClient may be
// nil: without repo every write path fails with a configuration error,
// without receipts duplicates are simply rewritten, without snsClient no
// events are published.
func NewPaymentService(
	provider providers.OrderProvider,
	repo repository.PaperRepository,
	receipts repository.WebhookReceiptStore,
	snsClient aws_pkg.SNSPublisher,
	opts Options,
	logger *zap.Logger,
) PaymentService {
	if opts.ProviderTimeout <= 0 {
		opts.ProviderTimeout = 5 * time.Second
	}
	if opts.StoreTimeout <= 0 {
		opts.StoreTimeout = 5 * time.Second
	}
	if opts.DefaultAmount <= 0 {
		opts.DefaultAmount = 150
	}
	if opts.Currency == "" {
		opts.Currency = "INR"
	}
	return &paymentServiceImpl{
		provider:  provider,
		repo:      repo,
		receipts:  receipts,
		snsClient: snsClient,
		opts:      opts,
		logger:    logger,
	}
}

func (s *paymentServiceImpl) KeyID() string {
	if s.provider == nil {
		return ""
	}
	return s.provider.KeyID()
}

func (s *paymentServiceImpl) StoreConfigured() bool { return s.repo != nil }

// CreateOrder registers a provider order for the paper's submission fee.
func (s *paymentServiceImpl) CreateOrder(ctx context.Context, req *models.CreateOrderRequest) (*models.Order, *apperrors.Error) {
	paperID := req.PaperID.String()
	if paperID == "" {
		return nil, apperrors.Validation("paperId is required", nil)
	}

	amount := s.opts.DefaultAmount
	if req.Amount != nil {
		amount = *req.Amount
	}
	if amount <= 0 {
		return nil, apperrors.Validation("amount must be a positive number", nil)
	}

	receipt := "receipt_paper_" + paperID
	if len(receipt) > maxReceiptLen {
		receipt = receipt[:maxReceiptLen]
	}

	callCtx, cancel := context.WithTimeout(ctx, s.opts.ProviderTimeout)
	defer cancel()

	order, err := s.provider.CreateOrder(callCtx, models.OrderRequest{
		Amount:   amount * 100,
		Currency: s.opts.Currency,
		Receipt:  receipt,
		Notes:    map[string]string{models.PaperIDNote: paperID},
	})
	if err != nil {
		s.logger.Error("CreateOrder failed", zap.String("paper_id", paperID), zap.Error(err))
		return nil, apperrors.Dependency(MsgOrderFailed, err)
	}
	if order == nil {
		return nil, apperrors.Dependency(MsgOrderFailed, errors.New("provider returned no order"))
	}

	s.logger.Info("Order created",
		zap.String("paper_id", paperID),
		zap.String("order_id", order.ID),
		zap.Int64("amount", order.Amount),
	)
	return order, nil
}

// VerifyPayment authenticates the checkout callback and marks the paper
// paid when one is named.
func (s *paymentServiceImpl) VerifyPayment(ctx context.Context, req *models.VerifyPaymentRequest) (*models.VerifyPaymentResult, *apperrors.Error) {
	if s.opts.KeySecret == "" {
		return nil, apperrors.Configuration("Payment verification is not configured", nil)
	}
	if req.OrderID == "" || req.PaymentID == "" || req.Signature == "" {
		return nil, apperrors.Validation("razorpayOrderId, razorpayPaymentId and razorpaySignature are required", nil)
	}
	if !VerifyPaymentSignature(s.opts.KeySecret, req.OrderID, req.PaymentID, req.Signature) {
		s.logger.Warn("Payment signature mismatch", zap.String("order_id", req.OrderID))
		return nil, apperrors.Authentication(MsgInvalidSignature, nil)
	}

	result := &models.VerifyPaymentResult{
		OrderID:   req.OrderID,
		PaymentID: req.PaymentID,
		PaperID:   req.PaperID.String(),
	}
	if result.PaperID == "" {
		return result, nil
	}

	if err := s.markPaid(ctx, result.PaperID); err != nil {
		s.logger.Error("Verified payment not recorded",
			zap.String("paper_id", result.PaperID),
			zap.String("order_id", req.OrderID),
			zap.Error(err),
		)
		return nil, apperrors.Dependency(MsgVerifiedNotRecorded, err)
	}

	s.publishEvent(ctx, models.PaymentEvent{
		EventID:   uuid.NewString(),
		Type:      models.PaymentEventSucceeded,
		Source:    models.SourceClientVerification,
		PaperID:   result.PaperID,
		OrderID:   req.OrderID,
		PaymentID: req.PaymentID,
		Timestamp: time.Now(),
	})
	return result, nil
}

// HandleWebhook authenticates a delivery and applies it. Only outcomes the
// provider should not retry come back without an error.
func (s *paymentServiceImpl) HandleWebhook(ctx context.Context, delivery *models.WebhookDelivery) (*WebhookOutcome, *apperrors.Error) {
	if s.opts.WebhookSecret == "" {
		return nil, apperrors.Configuration(MsgWebhookSecretMissing, nil)
	}
	if delivery.Signature == "" {
		return nil, apperrors.Authentication(MsgMissingSignature, nil)
	}
	if !VerifyWebhookSignature(s.opts.WebhookSecret, delivery.Body, delivery.Signature) {
		s.logger.Warn("Webhook signature mismatch", zap.String("event_id", delivery.EventID))
		return nil, apperrors.Authentication(MsgInvalidWebhook, nil)
	}

	evt, err := delivery.Event()
	if err != nil {
		s.logger.Warn("Verified webhook body is not valid JSON", zap.String("event_id", delivery.EventID), zap.Error(err))
		return &WebhookOutcome{Ignored: true, Reason: ReasonMalformedPayload}, nil
	}
	if !evt.IsPaymentSuccess() {
		s.logger.Debug("Ignoring webhook event", zap.String("event", evt.Event))
		return &WebhookOutcome{Ignored: true}, nil
	}

	paperID, source := ExtractRecordID(evt)
	if paperID == "" {
		s.logger.Warn("Webhook carries no paperId",
			zap.String("event", evt.Event),
			zap.String("event_id", delivery.EventID),
			zap.Strings("contains", evt.Contains),
		)
		return &WebhookOutcome{Reason: ReasonPaperIDMissing}, nil
	}

	if s.repo == nil {
		return nil, apperrors.Configuration(MsgDatabaseMissing, errStoreNotConfigured)
	}

	if s.seen(ctx, delivery.EventID) {
		s.logger.Info("Duplicate webhook delivery", zap.String("event_id", delivery.EventID), zap.String("paper_id", paperID))
		return &WebhookOutcome{Updated: true, Duplicate: true, PaperID: paperID}, nil
	}

	if err := s.markPaid(ctx, paperID); err != nil {
		s.logger.Error("Webhook payment status update failed",
			zap.String("paper_id", paperID),
			zap.String("event_id", delivery.EventID),
			zap.Error(err),
		)
		return nil, apperrors.Dependency(MsgUpdateFailed, err)
	}

	s.remember(ctx, delivery.EventID)
	s.logger.Info("Paper marked paid from webhook",
		zap.String("paper_id", paperID),
		zap.String("source", source),
		zap.String("event", evt.Event),
	)

	event := models.PaymentEvent{
		EventID:   uuid.NewString(),
		Type:      models.PaymentEventSucceeded,
		Source:    models.SourceWebhook,
		PaperID:   paperID,
		Timestamp: time.Now(),
	}
	if p := evt.Payload.Payment; p != nil {
		event.OrderID = p.Entity.OrderID
		event.PaymentID = p.Entity.ID
		event.Amount = p.Entity.Amount
		event.Currency = p.Entity.Currency
	}
	s.publishEvent(ctx, event)

	return &WebhookOutcome{Updated: true, PaperID: paperID}, nil
}

// markPaid writes paid within the store timeout. A paper that does not
// exist is logged and treated as done so the provider stops retrying.
func (s *paymentServiceImpl) markPaid(ctx context.Context, paperID string) error {
	if s.repo == nil {
		return errStoreNotConfigured
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.opts.StoreTimeout)
	defer cancel()

	err := s.repo.UpdatePaymentStatus(storeCtx, paperID, models.PaymentStatusPaid)
	if errors.Is(err, repository.ErrPaperNotFound) {
		s.logger.Warn("Paid write matched no paper", zap.String("paper_id", paperID))
		return nil
	}
	if err != nil {
		return fmt.Errorf("update payment status: %w", err)
	}
	return nil
}

func (s *paymentServiceImpl) seen(ctx context.Context, eventID string) bool {
	if s.receipts == nil || eventID == "" {
		return false
	}
	seen, err := s.receipts.Seen(ctx, eventID)
	if err != nil {
		s.logger.Warn("Webhook receipt lookup failed", zap.String("event_id", eventID), zap.Error(err))
		return false
	}
	return seen
}

func (s *paymentServiceImpl) remember(ctx context.Context, eventID string) {
	if s.receipts == nil || eventID == "" {
		return
	}
	if err := s.receipts.Remember(ctx, eventID); err != nil {
		s.logger.Warn("Failed to record webhook receipt", zap.String("event_id", eventID), zap.Error(err))
	}
}

// publishEvent marshals an event and publishes it to SNS (non-fatal on error).
func (s *paymentServiceImpl) publishEvent(ctx context.Context, event models.PaymentEvent) {
	if s.snsClient == nil || s.opts.SNSTopicARN == "" {
		return
	}
	b, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("Failed to marshal SNS event", zap.Error(err))
		return
	}

	pubCtx, cancel := context.WithTimeout(ctx, s.opts.ProviderTimeout)
	defer cancel()
	if err := s.snsClient.Publish(pubCtx, s.opts.SNSTopicARN, b); err != nil {
		s.logger.Error("Failed to publish SNS event", zap.String("paper_id", event.PaperID), zap.Error(err))
		return
	}
	s.logger.Info("Published SNS event", zap.String("topic", s.opts.SNSTopicARN), zap.String("type", event.Type))
}
