package payments

import (
	"context"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/paymentintent"
)

// StripeProcessor drives Stripe payment intents. Every call runs under a
// bounded timeout; a timed-out operation is reported as failed, never retried.
type StripeProcessor struct {
	timeout time.Duration
}

func NewStripeProcessor(secretKey string, timeout time.Duration) *StripeProcessor {
	stripe.Key = secretKey
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &StripeProcessor{timeout: timeout}
}

func (sp *StripeProcessor) CreateIntent(ctx context.Context, amount float64, currency string, metadata map[string]string) (*Intent, error) {
	ctx, cancel := context.WithTimeout(ctx, sp.timeout)
	defer cancel()

	params := &stripe.PaymentIntentParams{
		Params:   stripe.Params{Context: ctx},
		Amount:   stripe.Int64(toMinorUnits(amount)),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %v", err)
	}

	return &Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       IntentStatus(pi.Status),
	}, nil
}

func (sp *StripeProcessor) RetrieveIntent(ctx context.Context, id string) (*Intent, error) {
	ctx, cancel := context.WithTimeout(ctx, sp.timeout)
	defer cancel()

	pi, err := paymentintent.Get(id, &stripe.PaymentIntentParams{
		Params: stripe.Params{Context: ctx},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve payment intent: %v", err)
	}

	return &Intent{
		ID:     pi.ID,
		Status: IntentStatus(pi.Status),
	}, nil
}

// Stripe amounts are integer minor units (cents for most currencies).
func toMinorUnits(amount float64) int64 {
	return int64(amount*100 + 0.5)
}
