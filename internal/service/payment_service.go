package service

import (
	"context"
	"course_market_backend/internal/config"
	"fmt"
	"net/url"

	"github.com/go-resty/resty/v2"
)

// CheckoutSession is the provider's view of one payment attempt. Amounts are
// minor currency units. Metadata carries whatever was attached at session
// creation; fulfillment trusts only what it can verify against it.
type CheckoutSession struct {
	ID              string            `json:"id"`
	PaymentStatus   string            `json:"payment_status"`
	AmountTotal     int64             `json:"amount_total"`
	PaymentIntentID string            `json:"payment_intent"`
	URL             string            `json:"url"`
	Metadata        map[string]string `json:"metadata"`
}

// Paid reports whether the provider has confirmed the charge.
func (s *CheckoutSession) Paid() bool {
	return s.PaymentStatus == "paid"
}

type CheckoutLine struct {
	Name   string
	Amount int64 // minor units
}

type CreateSessionRequest struct {
	Lines    []CheckoutLine
	Currency string
	Metadata map[string]string
}

// PaymentGateway is the boundary to the external payment processor. The rest
// of the service treats a retrieved session as the single source of payment
// truth.
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, req CreateSessionRequest) (*CheckoutSession, error)
	RetrieveSession(ctx context.Context, sessionID string) (*CheckoutSession, error)
}

// PaymentService talks to the provider's Stripe-style form-encoded REST API.
type PaymentService struct {
	client *resty.Client
	cfg    *config.PaymentConfig
}

func NewPaymentService(cfg *config.PaymentConfig) *PaymentService {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetAuthToken(cfg.SecretKey)

	return &PaymentService{client: client, cfg: cfg}
}

func (s *PaymentService) CreateCheckoutSession(ctx context.Context, req CreateSessionRequest) (*CheckoutSession, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("success_url", s.cfg.SuccessURL)
	form.Set("cancel_url", s.cfg.CancelURL)

	currency := req.Currency
	if currency == "" {
		currency = s.cfg.Currency
	}

	for i, line := range req.Lines {
		prefix := fmt.Sprintf("line_items[%d]", i)
		form.Set(prefix+"[price_data][currency]", currency)
		form.Set(prefix+"[price_data][product_data][name]", line.Name)
		form.Set(prefix+"[price_data][unit_amount]", fmt.Sprintf("%d", line.Amount))
		form.Set(prefix+"[quantity]", "1")
	}

	for k, v := range req.Metadata {
		form.Set(fmt.Sprintf("metadata[%s]", k), v)
	}

	var session CheckoutSession
	resp, err := s.client.R().
		SetContext(ctx).
		SetFormDataFromValues(form).
		SetResult(&session).
		Post("/v1/checkout/sessions")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("payment provider returned %s", resp.Status())
	}

	return &session, nil
}

func (s *PaymentService) RetrieveSession(ctx context.Context, sessionID string) (*CheckoutSession, error) {
	var session CheckoutSession
	resp, err := s.client.R().
		SetContext(ctx).
		SetResult(&session).
		Get("/v1/checkout/sessions/" + url.PathEscape(sessionID))
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("payment provider returned %s", resp.Status())
	}

	return &session, nil
}
