package payment

import (
	"context"
	"strconv"
	"strings"

	"shopverse/internal/usecase"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// Stripe Hosted Checkout のゲートウェイ実装。
type StripeGateway struct {
	api *client.API
}

// キーが未設定かプレースホルダなら nil を返す（シミュレーション決済になる）。
func NewStripeGateway(secretKey string) *StripeGateway {
	if secretKey == "" || strings.Contains(secretKey, "placeholder") {
		return nil
	}

	api := &client.API{}
	api.Init(secretKey, nil)

	return &StripeGateway{api: api}
}

func (g *StripeGateway) CreateSession(ctx context.Context, in usecase.CheckoutSessionInput) (usecase.CheckoutSession, error) {
	lines := make([]*stripe.CheckoutSessionLineItemParams, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String("usd"),
				UnitAmount: stripe.Int64(l.UnitAmountCents),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(l.Name),
				},
			},
			Quantity: stripe.Int64(l.Quantity),
		})
	}

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(in.SuccessURL),
		CancelURL:  stripe.String(in.CancelURL),
		LineItems:  lines,
	}
	params.Context = ctx
	params.SetIdempotencyKey(uuid.NewString())
	params.AddMetadata("order_number", in.OrderNumber)
	params.AddMetadata("user_id", strconv.FormatInt(in.UserID, 10))

	s, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return usecase.CheckoutSession{}, err
	}

	return usecase.CheckoutSession{
		ID:  s.ID,
		URL: s.URL,
	}, nil
}
