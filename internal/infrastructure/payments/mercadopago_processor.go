package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"tripmarket/internal/usecase/interfaces"

	"github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/mperror"
	"github.com/mercadopago/sdk-go/pkg/payment"
	"github.com/mercadopago/sdk-go/pkg/refund"
)

var ErrMissingMercadoPagoAccessToken = errors.New("missing MERCADOPAGO_ACCESS_TOKEN")
var ErrProcessorNotConfigured = errors.New("mercado pago processor not configured")

// paymentsAPI and refundsAPI are the slices of the SDK clients the processor
// uses. The compile-time assertions below pin the SDK signatures, so an SDK
// contract change fails the build here instead of at runtime.
type paymentsAPI interface {
	Create(ctx context.Context, request payment.Request) (*payment.Response, error)
}

type refundsAPI interface {
	CreatePartialRefund(ctx context.Context, paymentID int, amount float64) (*refund.Response, error)
}

var _ paymentsAPI = (payment.Client)(nil)
var _ refundsAPI = (refund.Client)(nil)

// MercadoPagoProcessor implements the payment processor port on top of the
// Mercado Pago SDK. Amounts arrive as integer cents and are converted to the
// provider's decimal units only here, at the outermost edge.
//
// Mock mode (PAYMENT_PROCESSOR_MOCK / MERCADOPAGO_MOCK) returns synthetic
// references without touching the network, which keeps local and CI runs
// hermetic the same way the billing gateway mock did.
type MercadoPagoProcessor struct {
	payments      paymentsAPI
	refunds       refundsAPI
	webhookSecret string
	mockMode      bool
}

var _ interfaces.IPaymentProcessor = (*MercadoPagoProcessor)(nil)

func NewMercadoPagoProcessor(accessToken string) (*MercadoPagoProcessor, error) {
	secret := os.Getenv("MERCADOPAGO_WEBHOOK_SECRET")

	if isProcessorMockEnabled() {
		log.Printf("[payment][processor] mock mode enabled")
		return &MercadoPagoProcessor{mockMode: true, webhookSecret: secret}, nil
	}

	if accessToken == "" {
		log.Printf("[payment][processor] missing MERCADOPAGO_ACCESS_TOKEN")
		return nil, ErrMissingMercadoPagoAccessToken
	}

	cfg, err := config.New(accessToken)
	if err != nil {
		log.Printf("[payment][processor] failed creating sdk config err=%v", err)
		return nil, err
	}
	log.Printf("[payment][processor] Mercado Pago client initialized")

	return &MercadoPagoProcessor{
		payments:      payment.NewClient(cfg),
		refunds:       refund.NewClient(cfg),
		webhookSecret: secret,
	}, nil
}

// CreateOrder opens a payment for the booking total and returns the provider's
// payment id as the order reference.
func (p *MercadoPagoProcessor) CreateOrder(ctx context.Context, idempotencyKey string, amountCents int64, metadata map[string]string) (string, error) {
	if p.mockMode {
		ref := "mock-order-" + strconv.FormatInt(time.Now().UTC().UnixNano(), 10)
		log.Printf("[payment][processor] mock order created ref=%s amount_cents=%d", ref, amountCents)
		return ref, nil
	}
	if p.payments == nil {
		return "", ErrProcessorNotConfigured
	}

	md := make(map[string]any, len(metadata)+1)
	for k, v := range metadata {
		md[k] = v
	}
	md["idempotency_key"] = idempotencyKey

	req := payment.Request{
		TransactionAmount: centsToUnits(amountCents),
		Description:       "trip booking " + metadata["booking_id"],
		Metadata:          md,
	}

	resp, err := p.payments.Create(ctx, req)
	if err != nil {
		log.Printf("[payment][processor] order create failed amount_cents=%d err=%v", amountCents, err)
		return "", wrapProcessorError(err)
	}
	log.Printf("[payment][processor] order created ref=%d status=%s", resp.ID, resp.Status)
	return fmt.Sprintf("%d", resp.ID), nil
}

// CreateRefund issues a (possibly partial) refund against a captured payment
// and returns the provider's refund reference.
func (p *MercadoPagoProcessor) CreateRefund(ctx context.Context, idempotencyKey, paymentRef string, amountCents int64) (string, error) {
	if p.mockMode {
		ref := "mock-refund-" + strconv.FormatInt(time.Now().UTC().UnixNano(), 10)
		log.Printf("[payment][processor] mock refund created ref=%s payment_ref=%s amount_cents=%d key=%s", ref, paymentRef, amountCents, idempotencyKey)
		return ref, nil
	}
	if p.refunds == nil {
		return "", ErrProcessorNotConfigured
	}

	paymentID, err := strconv.Atoi(paymentRef)
	if err != nil {
		return "", &interfaces.ProcessorError{
			StatusCode: http.StatusBadRequest,
			Code:       "invalid_payment_ref",
			Message:    "payment reference is not a Mercado Pago payment id: " + paymentRef,
		}
	}

	resp, err := p.refunds.CreatePartialRefund(ctx, paymentID, centsToUnits(amountCents))
	if err != nil {
		log.Printf("[payment][processor] refund create failed payment_ref=%s amount_cents=%d err=%v", paymentRef, amountCents, err)
		return "", wrapProcessorError(err)
	}
	log.Printf("[payment][processor] refund created ref=%d payment_ref=%s", resp.ID, paymentRef)
	return fmt.Sprintf("%d", resp.ID), nil
}

// VerifyWebhookSignature checks the HMAC-SHA256 hex signature of the raw
// webhook body against the configured secret. With no secret configured every
// webhook is rejected; unauthenticated confirmation of money movement is never
// acceptable.
func (p *MercadoPagoProcessor) VerifyWebhookSignature(payload []byte, signature string) bool {
	if p.webhookSecret == "" {
		log.Printf("[payment][processor] webhook secret not configured, rejecting webhook")
		return false
	}
	signature = strings.TrimSpace(signature)
	if signature == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(p.webhookSecret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(signature)))
}

// centsToUnits converts integer cents to the provider's decimal amount. This
// is the only place in the service where money becomes floating point.
func centsToUnits(cents int64) float64 {
	return float64(cents) / 100
}

func wrapProcessorError(err error) error {
	// The SDK surfaces HTTP failures as *mperror.ResponseError carrying the
	// upstream status code; anything else is treated as transport-level and
	// retryable.
	var mpErr *mperror.ResponseError
	if errors.As(err, &mpErr) {
		return &interfaces.ProcessorError{StatusCode: mpErr.StatusCode, Code: "provider_error", Message: err.Error()}
	}
	return &interfaces.ProcessorError{StatusCode: http.StatusBadGateway, Code: "provider_unreachable", Message: err.Error()}
}

func isProcessorMockEnabled() bool {
	for _, key := range []string{"PAYMENT_PROCESSOR_MOCK", "MERCADOPAGO_MOCK"} {
		v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
		switch v {
		case "1", "true", "yes", "on", "mock":
			return true
		}
	}
	return false
}
