package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/scholarpress/journal-backend/services/payment-service/controllers"
	"github.com/scholarpress/journal-backend/services/payment-service/models"
	"github.com/scholarpress/journal-backend/services/payment-service/repository"
	"github.com/scholarpress/journal-backend/services/payment-service/routes"
	"github.com/scholarpress/journal-backend/services/payment-service/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	keySecret     = "key_secret"
	webhookSecret = "whsec_test"
)

// ---- fakes ----

type fakeProvider struct {
	order *models.Order
	err   error
	last  models.OrderRequest
}

func (f *fakeProvider) CreateOrder(_ context.Context, req models.OrderRequest) (*models.Order, error) {
	f.last = req
	return f.order, f.err
}

func (f *fakeProvider) KeyID() string { return "rzp_test_key" }

type fakeRepo struct {
	mu       sync.Mutex
	statuses map[string]models.PaymentStatus
	writes   int
	err      error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{statuses: map[string]models.PaymentStatus{}}
}

func (f *fakeRepo) UpdatePaymentStatus(_ context.Context, paperID string, status models.PaymentStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.writes++
	if status != models.PaymentStatusPaid && f.statuses[paperID] == models.PaymentStatusPaid {
		return nil
	}
	f.statuses[paperID] = status
	return nil
}

// ---- helpers ----

func setupRouter(provider *fakeProvider, repo repository.PaperRepository, opts services.Options) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	svc := services.NewPaymentService(provider, repo, nil, nil, opts, zap.NewNop())
	pc := controllers.NewPaymentController(svc, zap.NewNop())
	hc := controllers.NewHealthController(svc.StoreConfigured)
	routes.RegisterPaymentRoutes(r, pc, hc, nil)
	return r
}

func defaultOptions() services.Options {
	return services.Options{
		KeySecret:       keySecret,
		WebhookSecret:   webhookSecret,
		DefaultAmount:   150,
		Currency:        "INR",
		ProviderTimeout: time.Second,
		StoreTimeout:    time.Second,
	}
}

func doJSON(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func postWebhook(r http.Handler, body []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/payments/webhook", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set("X-Razorpay-Signature", signature)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func sign(secret string, body []byte) string {
	return services.ComputeSignature(secret, body)
}

// ---- key / health ----

func TestGetKey(t *testing.T) {
	r := setupRouter(&fakeProvider{}, nil, defaultOptions())
	w := doJSON(r, http.MethodGet, "/api/payments/key", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "rzp_test_key", decode(t, w)["key"])
}

func TestHealth(t *testing.T) {
	r := setupRouter(&fakeProvider{}, nil, defaultOptions())
	w := doJSON(r, http.MethodGet, "/api/health", nil)
	resp := decode(t, w)
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, false, resp["databaseConfigured"])

	r = setupRouter(&fakeProvider{}, newFakeRepo(), defaultOptions())
	w = doJSON(r, http.MethodGet, "/api/health", nil)
	assert.Equal(t, true, decode(t, w)["databaseConfigured"])
}

// ---- create-order ----

func TestCreateOrder_Success(t *testing.T) {
	provider := &fakeProvider{order: &models.Order{ID: "order_1", Amount: 15000, Currency: "INR"}}
	r := setupRouter(provider, nil, defaultOptions())

	w := doJSON(r, http.MethodPost, "/api/payments/create-order", map[string]interface{}{"paperId": 7})

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.Equal(t, true, resp["success"])
	order := resp["order"].(map[string]interface{})
	assert.Equal(t, "order_1", order["id"])
	assert.EqualValues(t, 15000, provider.last.Amount)
	assert.Equal(t, "receipt_paper_7", provider.last.Receipt)
}

func TestCreateOrder_ProviderFailure(t *testing.T) {
	r := setupRouter(&fakeProvider{err: errors.New("boom")}, nil, defaultOptions())

	w := doJSON(r, http.MethodPost, "/api/payments/create-order", map[string]interface{}{"paperId": "p1"})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decode(t, w)
	assert.Equal(t, false, resp["success"])
	assert.Equal(t, services.MsgOrderFailed, resp["error"])
}

func TestCreateOrder_InvalidBody(t *testing.T) {
	r := setupRouter(&fakeProvider{}, nil, defaultOptions())
	req := httptest.NewRequest(http.MethodPost, "/api/payments/create-order", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, decode(t, w)["success"])
}

// ---- verify-payment ----

func verifyBody(signature string) map[string]interface{} {
	return map[string]interface{}{
		"razorpayOrderId":   "order_1",
		"razorpayPaymentId": "pay_1",
		"razorpaySignature": signature,
		"paperId":           "p1",
	}
}

func TestVerifyPayment_Success(t *testing.T) {
	repo := newFakeRepo()
	r := setupRouter(&fakeProvider{}, repo, defaultOptions())

	w := doJSON(r, http.MethodPost, "/api/payments/verify-payment", verifyBody(sign(keySecret, []byte("order_1|pay_1"))))

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, services.MsgVerified, resp["message"])
	assert.Equal(t, "order_1", resp["orderId"])
	assert.Equal(t, "pay_1", resp["paymentId"])
	assert.Equal(t, models.PaymentStatusPaid, repo.statuses["p1"])
}

func TestVerifyPayment_BadSignature(t *testing.T) {
	repo := newFakeRepo()
	r := setupRouter(&fakeProvider{}, repo, defaultOptions())

	w := doJSON(r, http.MethodPost, "/api/payments/verify-payment", verifyBody(sign("nope", []byte("order_1|pay_1"))))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode(t, w)
	assert.Equal(t, false, resp["success"])
	assert.Equal(t, services.MsgInvalidSignature, resp["message"])
	assert.Zero(t, repo.writes)
}

func TestVerifyPayment_StoreFailure(t *testing.T) {
	repo := newFakeRepo()
	repo.err = errors.New("db down")
	r := setupRouter(&fakeProvider{}, repo, defaultOptions())

	w := doJSON(r, http.MethodPost, "/api/payments/verify-payment", verifyBody(sign(keySecret, []byte("order_1|pay_1"))))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, services.MsgVerifiedNotRecorded, decode(t, w)["message"])
}

func TestVerifyPayment_MissingFields(t *testing.T) {
	r := setupRouter(&fakeProvider{}, newFakeRepo(), defaultOptions())

	w := doJSON(r, http.MethodPost, "/api/payments/verify-payment", map[string]interface{}{"razorpayOrderId": "order_1"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, decode(t, w)["success"])
}

// ---- webhook ----

func webhookBody(event, notesLocation string) []byte {
	var payload string
	switch notesLocation {
	case "payment":
		payload = `{"payment":{"entity":{"id":"pay_1","order_id":"order_1","notes":{"paperId":"p1"}}}}`
	case "order":
		payload = `{"payment":{"entity":{"id":"pay_1","notes":[]}},"order":{"entity":{"id":"order_1","notes":{"paperId":"p1"}}}}`
	case "payment_link":
		payload = `{"payment_link":{"entity":{"id":"plink_1","notes":{"paperId":"p1"}}}}`
	default:
		payload = `{"payment":{"entity":{"id":"pay_1","notes":[]}}}`
	}
	return []byte(`{"entity":"event","event":"` + event + `","payload":` + payload + `}`)
}

func TestWebhook_Scenarios(t *testing.T) {
	captured := webhookBody("payment.captured", "payment")

	tests := []struct {
		name       string
		opts       func(o *services.Options)
		noStore    bool
		storeErr   error
		body       []byte
		signature  func(body []byte) string
		wantStatus int
		want       map[string]interface{}
		wantPaid   bool
	}{
		{
			name:       "secret unset",
			opts:       func(o *services.Options) { o.WebhookSecret = "" },
			body:       captured,
			signature:  func(b []byte) string { return sign(webhookSecret, b) },
			wantStatus: http.StatusInternalServerError,
			want:       map[string]interface{}{"success": false, "message": services.MsgWebhookSecretMissing},
		},
		{
			name:       "missing signature",
			body:       captured,
			signature:  func([]byte) string { return "" },
			wantStatus: http.StatusBadRequest,
			want:       map[string]interface{}{"success": false, "message": services.MsgMissingSignature},
		},
		{
			name:       "signed with key secret",
			body:       captured,
			signature:  func(b []byte) string { return sign(keySecret, b) },
			wantStatus: http.StatusBadRequest,
			want:       map[string]interface{}{"success": false, "message": services.MsgInvalidWebhook},
		},
		{
			name:       "ignored event",
			body:       webhookBody("order.paid", "payment"),
			signature:  func(b []byte) string { return sign(webhookSecret, b) },
			wantStatus: http.StatusOK,
			want:       map[string]interface{}{"success": true, "ignored": true},
		},
		{
			name:       "paperId missing",
			body:       webhookBody("payment.captured", ""),
			signature:  func(b []byte) string { return sign(webhookSecret, b) },
			wantStatus: http.StatusOK,
			want:       map[string]interface{}{"success": true, "updated": false, "reason": services.ReasonPaperIDMissing},
		},
		{
			name:       "store not configured",
			noStore:    true,
			body:       captured,
			signature:  func(b []byte) string { return sign(webhookSecret, b) },
			wantStatus: http.StatusInternalServerError,
			want:       map[string]interface{}{"success": false, "message": services.MsgDatabaseMissing},
		},
		{
			name:       "store failure",
			storeErr:   errors.New("timeout"),
			body:       captured,
			signature:  func(b []byte) string { return sign(webhookSecret, b) },
			wantStatus: http.StatusInternalServerError,
			want:       map[string]interface{}{"success": false, "message": services.MsgUpdateFailed},
		},
		{
			name:       "captured via payment notes",
			body:       captured,
			signature:  func(b []byte) string { return sign(webhookSecret, b) },
			wantStatus: http.StatusOK,
			want:       map[string]interface{}{"success": true, "updated": true, "paperId": "p1"},
			wantPaid:   true,
		},
		{
			name:       "authorized via order notes",
			body:       webhookBody("payment.authorized", "order"),
			signature:  func(b []byte) string { return sign(webhookSecret, b) },
			wantStatus: http.StatusOK,
			want:       map[string]interface{}{"success": true, "updated": true, "paperId": "p1"},
			wantPaid:   true,
		},
		{
			name:       "captured via payment link notes",
			body:       webhookBody("payment.captured", "payment_link"),
			signature:  func(b []byte) string { return sign(webhookSecret, b) },
			wantStatus: http.StatusOK,
			want:       map[string]interface{}{"success": true, "updated": true, "paperId": "p1"},
			wantPaid:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := defaultOptions()
			if tt.opts != nil {
				tt.opts(&opts)
			}
			repo := newFakeRepo()
			repo.err = tt.storeErr
			var store repository.PaperRepository = repo
			if tt.noStore {
				store = nil
			}
			r := setupRouter(&fakeProvider{}, store, opts)

			w := postWebhook(r, tt.body, tt.signature(tt.body))

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.want, decode(t, w))
			if tt.wantPaid {
				assert.Equal(t, models.PaymentStatusPaid, repo.statuses["p1"])
			} else {
				assert.Empty(t, repo.statuses)
			}
		})
	}
}

func TestWebhook_DuplicateDeliveryIsIdempotent(t *testing.T) {
	repo := newFakeRepo()
	r := setupRouter(&fakeProvider{}, repo, defaultOptions())
	body := webhookBody("payment.captured", "payment")

	first := postWebhook(r, body, sign(webhookSecret, body))
	second := postWebhook(r, body, sign(webhookSecret, body))

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, first.Code, second.Code)
	assert.Equal(t, decode(t, first), decode(t, second))
	assert.Equal(t, models.PaymentStatusPaid, repo.statuses["p1"])
}

func TestWebhook_ReformattedBodyRejected(t *testing.T) {
	repo := newFakeRepo()
	r := setupRouter(&fakeProvider{}, repo, defaultOptions())

	body := webhookBody("payment.captured", "payment")
	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &parsed))
	reencoded, err := json.MarshalIndent(parsed, "", "  ")
	require.NoError(t, err)

	w := postWebhook(r, reencoded, sign(webhookSecret, body))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, repo.statuses)
}

func TestWebhook_PayloadTooLarge(t *testing.T) {
	r := setupRouter(&fakeProvider{}, newFakeRepo(), defaultOptions())
	body := bytes.Repeat([]byte("a"), (1<<20)+1)

	w := postWebhook(r, body, sign(webhookSecret, body))

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestWebhook_CapturedMarksPaperPaid(t *testing.T) {
	repo := newFakeRepo()
	r := setupRouter(&fakeProvider{}, repo, defaultOptions())
	body := []byte(`{"event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_9","notes":{"paperId":"42"}}}}}`)

	w := postWebhook(r, body, sign(webhookSecret, body))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]interface{}{"success": true, "updated": true, "paperId": "42"}, decode(t, w))
	assert.Equal(t, models.PaymentStatusPaid, repo.statuses["42"])
}

func TestWebhook_FailedPaymentNeverMutates(t *testing.T) {
	repo := newFakeRepo()
	r := setupRouter(&fakeProvider{}, repo, defaultOptions())
	body := []byte(`{"event":"payment.failed","payload":{"payment":{"entity":{"id":"pay_9","notes":{"paperId":"42"}}},"order":{"entity":{"notes":{"paperId":"42"}}}}}`)

	w := postWebhook(r, body, sign(webhookSecret, body))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["ignored"])
	assert.Zero(t, repo.writes)
}
