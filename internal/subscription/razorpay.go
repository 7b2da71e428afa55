package subscription

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Razorpay implements Provider against the Razorpay Orders API using basic
// auth with the key pair.
type Razorpay struct {
	KeyID     string
	KeySecret string
	BaseURL   string
	Client    *http.Client
}

// NewRazorpay constructs a Razorpay provider. baseURL defaults to the public
// API host when empty.
func NewRazorpay(keyID, keySecret, baseURL string) *Razorpay {
	if baseURL == "" {
		baseURL = "https://api.razorpay.com"
	}
	return &Razorpay{
		KeyID:     keyID,
		KeySecret: keySecret,
		BaseURL:   baseURL,
		Client:    &http.Client{Timeout: 15 * time.Second},
	}
}

type razorpayOrderRequest struct {
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
	Receipt        string `json:"receipt"`
	PaymentCapture int    `json:"payment_capture"`
}

type razorpayOrderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Error    *struct {
		Description string `json:"description"`
	} `json:"error,omitempty"`
}

// CreateOrder opens a capture-on-payment order denominated in paise.
func (p *Razorpay) CreateOrder(ctx context.Context, amountPaise int64, receipt string) (*Order, error) {
	body, err := json.Marshal(razorpayOrderRequest{
		Amount:         amountPaise,
		Currency:       "INR",
		Receipt:        receipt,
		PaymentCapture: 1,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(p.KeyID, p.KeySecret)

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("razorpay request: %w", err)
	}
	defer resp.Body.Close()

	var order razorpayOrderResponse
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, fmt.Errorf("razorpay response: %w", err)
	}
	if order.Error != nil {
		return nil, fmt.Errorf("razorpay: %s", order.Error.Description)
	}
	if order.ID == "" {
		return nil, fmt.Errorf("razorpay: empty order id, status %d", resp.StatusCode)
	}

	return &Order{
		OrderID:  order.ID,
		Amount:   amountPaise,
		Currency: "INR",
		KeyID:    p.KeyID,
	}, nil
}
