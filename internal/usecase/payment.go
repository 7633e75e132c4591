package usecase

import (
	"context"
	"fmt"
	"time"

	"shopverse/internal/domain/model"
)

// ホスト型チェックアウトを作る外部ゲートウェイの約束。
// 実装は internal/infra/payment。
type CardGateway interface {
	CreateSession(ctx context.Context, in CheckoutSessionInput) (CheckoutSession, error)
}

type CheckoutSessionLine struct {
	Name            string
	UnitAmountCents int64
	Quantity        int64
}

type CheckoutSessionInput struct {
	OrderNumber string
	UserID      int64
	Lines       []CheckoutSessionLine
	SuccessURL  string
	CancelURL   string
}

type CheckoutSession struct {
	ID  string
	URL string
}

// クライアントに返す決済指示。
type PaymentDirective struct {
	Provider    string `json:"provider"`
	SessionID   string `json:"session_id,omitempty"`
	RedirectURL string `json:"redirect_url,omitempty"`
	ClientID    string `json:"client_id,omitempty"`
	OrderNumber string `json:"order_number,omitempty"`
	Simulated   bool   `json:"simulated,omitempty"`
	Message     string `json:"message,omitempty"`
}

type PaymentRequest struct {
	OrderNumber string
	UserID      int64
	Lines       []CheckoutSessionLine
}

// 決済方法ごとの振り分け。
// 注文がDBに確定した後にだけ呼ぶこと。ゲートウェイの失敗は
// シミュレーション応答に落とすだけで、注文は絶対に巻き戻さない。
type PaymentDispatcher struct {
	gateway        CardGateway
	walletClientID string
	frontendURL    string
	gatewayTimeout time.Duration
}

func NewPaymentDispatcher(gateway CardGateway, walletClientID string, frontendURL string) *PaymentDispatcher {
	return &PaymentDispatcher{
		gateway:        gateway,
		walletClientID: walletClientID,
		frontendURL:    frontendURL,
		gatewayTimeout: 10 * time.Second,
	}
}

// 注文作成時の支払いステータス（方法ごとに決まる）。
// wallet-redirect はクライアント側のキャプチャを楽観的に信用して
// AUTHORIZED で作る。
// TODO: wallet-redirect はサーバ側でキャプチャ確認してから
// AUTHORIZED にする。
func InitialPaymentStatus(method model.PaymentMethod) model.PaymentStatus {
	if method == model.PaymentMethodWalletRedirect {
		return model.PaymentStatusAuthorized
	}
	return model.PaymentStatusPending
}

func (d *PaymentDispatcher) Dispatch(ctx context.Context, method model.PaymentMethod, req PaymentRequest) *PaymentDirective {
	switch method {
	case model.PaymentMethodCardGateway:
		return d.dispatchCard(ctx, req)

	case model.PaymentMethodWalletRedirect:
		return &PaymentDirective{
			Provider:    string(model.PaymentMethodWalletRedirect),
			ClientID:    d.walletClientID,
			OrderNumber: req.OrderNumber,
			Message:     "capture the payment with the wallet client SDK",
		}

	case model.PaymentMethodPayOnDelivery:
		//外部呼び出しなし。支払いは配達時に精算。
		return nil
	}

	return nil
}

func (d *PaymentDispatcher) dispatchCard(ctx context.Context, req PaymentRequest) *PaymentDirective {
	if d.gateway == nil {
		return &PaymentDirective{
			Provider:  string(model.PaymentMethodCardGateway),
			Simulated: true,
			Message:   "card gateway is not configured; using simulated payment",
		}
	}

	ctx, cancel := context.WithTimeout(ctx, d.gatewayTimeout)
	defer cancel()

	session, err := d.gateway.CreateSession(ctx, CheckoutSessionInput{
		OrderNumber: req.OrderNumber,
		UserID:      req.UserID,
		Lines:       req.Lines,
		SuccessURL:  fmt.Sprintf("%s/checkout/success?order=%s", d.frontendURL, req.OrderNumber),
		CancelURL:   fmt.Sprintf("%s/checkout/cancel?order=%s", d.frontendURL, req.OrderNumber),
	})
	if err != nil {
		//ゲートウェイ障害。注文は生きたまま、シミュレーションに降格。
		return &PaymentDirective{
			Provider:  string(model.PaymentMethodCardGateway),
			Simulated: true,
			Message:   "card gateway is unavailable; using simulated payment",
		}
	}

	return &PaymentDirective{
		Provider:    string(model.PaymentMethodCardGateway),
		SessionID:   session.ID,
		RedirectURL: session.URL,
	}
}
