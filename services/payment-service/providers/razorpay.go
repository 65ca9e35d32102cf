package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/scholarpress/journal-backend/services/payment-service/models"
)

const DefaultRazorpayBaseURL = "https://api.razorpay.com"

// ErrMissingCredentials is returned when an order is requested without a
// key pair configured.
var ErrMissingCredentials = errors.New("razorpay credentials are not configured")

// APIError is a non-2xx answer from the Razorpay API.
type APIError struct {
	StatusCode  int
	Code        string
	Description string
}

func (e *APIError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("razorpay API error (status %d, %s): %s", e.StatusCode, e.Code, e.Description)
	}
	return fmt.Sprintf("razorpay API error (status %d)", e.StatusCode)
}

// RazorpayProvider implements OrderProvider using the Razorpay REST API.
type RazorpayProvider struct {
	keyID      string
	keySecret  string
	baseURL    string
	httpClient *http.Client
}

// NewRazorpayProvider creates a provider. An empty baseURL means the live
// API; timeout bounds every call regardless of the caller's context.
func NewRazorpayProvider(keyID, keySecret, baseURL string, timeout time.Duration) *RazorpayProvider {
	if baseURL == "" {
		baseURL = DefaultRazorpayBaseURL
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &RazorpayProvider{
		keyID:     keyID,
		keySecret: keySecret,
		baseURL:   strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (r *RazorpayProvider) KeyID() string { return r.keyID }

type razorpayErrorResponse struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// CreateOrder posts to /v1/orders.
func (r *RazorpayProvider) CreateOrder(ctx context.Context, req models.OrderRequest) (*models.Order, error) {
	if r.keyID == "" || r.keySecret == "" {
		return nil, ErrMissingCredentials
	}

	var order models.Order
	if err := r.doRequest(ctx, http.MethodPost, "/v1/orders", req, &order); err != nil {
		return nil, fmt.Errorf("razorpay CreateOrder: %w", err)
	}
	if order.ID == "" {
		return nil, fmt.Errorf("razorpay CreateOrder: response carried no order id")
	}
	return &order, nil
}

func (r *RazorpayProvider) doRequest(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.SetBasicAuth(r.keyID, r.keySecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http do: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var parsed razorpayErrorResponse
		if json.Unmarshal(respBytes, &parsed) == nil {
			apiErr.Code = parsed.Error.Code
			apiErr.Description = parsed.Error.Description
		}
		return apiErr
	}

	if out != nil {
		if err := json.Unmarshal(respBytes, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
