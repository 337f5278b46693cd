package integrations

import (
	"context"
	"errors"
	"fmt"

	"github.com/coffeevibes888/rentflowhq-sub016/internal/utils"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/transfer"
)

// RefundTransferer moves refund money to the tenant and returns a provider reference.
type RefundTransferer interface {
	Transfer(ctx context.Context, amountCents int64, destination, idempotencyKey string) (string, error)
}

type stripeTransferer struct{}

// NewStripeTransferer sets the global Stripe key and returns a transferer backed
// by Stripe Connect transfers.
func NewStripeTransferer(secretKey string) RefundTransferer {
	stripe.Key = secretKey
	return &stripeTransferer{}
}

func (t *stripeTransferer) Transfer(ctx context.Context, amountCents int64, destination, idempotencyKey string) (string, error) {
	if destination == "" {
		return "", errors.New("stripe transfer requires a destination account")
	}
	params := &stripe.TransferParams{
		Amount:      stripe.Int64(amountCents),
		Currency:    stripe.String(string(stripe.CurrencyUSD)),
		Destination: stripe.String(destination),
	}
	params.AddMetadata("purpose", "deposit_refund")
	params.SetIdempotencyKey(idempotencyKey)

	tr, err := transfer.New(params)
	if err != nil {
		if stripeErr, ok := err.(*stripe.Error); ok {
			utils.Logger.WithError(err).Errorf("Stripe transfer failed: code=%s", stripeErr.Code)
		}
		return "", fmt.Errorf("stripe transfer: %w", err)
	}
	return tr.ID, nil
}

// NoopTransferer records nothing and returns an empty reference.
type NoopTransferer struct{}

func (NoopTransferer) Transfer(context.Context, int64, string, string) (string, error) {
	return "", nil
}
