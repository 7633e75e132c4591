package usecase

import (
	"context"
	"encoding/json"
	"net/http"

	repo "shopverse/internal/repository"
)

type OrderUsecase struct {
	orders     repo.OrderRepository
	orderItems repo.OrderItemRepository
	insights   *InsightAggregator
}

func NewOrderUsecase(orders repo.OrderRepository, orderItems repo.OrderItemRepository, insights *InsightAggregator) *OrderUsecase {
	return &OrderUsecase{orders: orders, orderItems: orderItems, insights: insights}
}

type OrderItemDTO struct {
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	ProductSlug string `json:"product_slug"`
	PriceCents  int64  `json:"price_cents"`
	Quantity    int64  `json:"quantity"`
	ImageURL    string `json:"image_url,omitempty"`
}

type OrderSummaryDTO struct {
	OrderNumber    string `json:"order_number"`
	Status         string `json:"status"`
	PaymentStatus  string `json:"payment_status"`
	PaymentMethod  string `json:"payment_method"`
	ShippingStatus string `json:"shipping_status"`
	TotalCents     int64  `json:"total_cents"`
	ItemCount      int    `json:"item_count"`
	CreatedAt      string `json:"created_at"`
}

type OrderDetailDTO struct {
	OrderNumber    string          `json:"order_number"`
	Status         string          `json:"status"`
	PaymentStatus  string          `json:"payment_status"`
	PaymentMethod  string          `json:"payment_method"`
	ShippingStatus string          `json:"shipping_status"`
	SubtotalCents  int64           `json:"subtotal_cents"`
	TaxCents       int64           `json:"tax_cents"`
	ShippingCents  int64           `json:"shipping_cents"`
	TotalCents     int64           `json:"total_cents"`
	Items          []OrderItemDTO  `json:"items"`
	Address        json.RawMessage `json:"address"`
	CreatedAt      string          `json:"created_at"`
}

type OrderListOutput struct {
	Orders     []OrderSummaryDTO `json:"orders"`
	Pagination PaginationDTO     `json:"pagination"`
}

func (u *OrderUsecase) ListMyOrders(ctx context.Context, userID int64, page, limit int) (OrderListOutput, error) {
	if userID <= 0 {
		return OrderListOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 10
	}

	orders, total, err := u.orders.ListByUserID(ctx, userID, page, limit)
	if err != nil {
		return OrderListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	out := OrderListOutput{
		Orders: make([]OrderSummaryDTO, 0, len(orders)),
		Pagination: PaginationDTO{
			Page:       page,
			PageSize:   limit,
			Total:      total,
			TotalPages: (total + int64(limit) - 1) / int64(limit),
		},
	}
	for _, o := range orders {
		items, err := u.orderItems.ListByOrderID(ctx, o.ID)
		if err != nil {
			return OrderListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		out.Orders = append(out.Orders, OrderSummaryDTO{
			OrderNumber:    o.OrderNumber,
			Status:         string(o.Status),
			PaymentStatus:  string(o.PaymentStatus),
			PaymentMethod:  string(o.PaymentMethod),
			ShippingStatus: string(o.ShippingStatus),
			TotalCents:     o.TotalCents,
			ItemCount:      len(items),
			CreatedAt:      o.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	return out, nil
}

func (u *OrderUsecase) GetOrderByNumber(ctx context.Context, userID int64, orderNumber string) (OrderDetailDTO, error) {
	if userID <= 0 {
		return OrderDetailDTO{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	o, err := u.orders.FindByNumberAndUser(ctx, orderNumber, userID)
	if err == repo.ErrNotFound {
		return OrderDetailDTO{}, NewHTTPError(http.StatusNotFound, "order not found")
	}
	if err != nil {
		return OrderDetailDTO{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	items, err := u.orderItems.ListByOrderID(ctx, o.ID)
	if err != nil {
		return OrderDetailDTO{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	itemDTOs := make([]OrderItemDTO, 0, len(items))
	for _, it := range items {
		itemDTOs = append(itemDTOs, OrderItemDTO{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			ProductSlug: it.ProductSlug,
			PriceCents:  it.PriceCents,
			Quantity:    it.Quantity,
			ImageURL:    it.ImageURL,
		})
	}

	//スナップショットはJSONのまま返す（生成時に凍結済み）
	address := json.RawMessage(o.AddressSnapshot)
	if !json.Valid(address) {
		address = json.RawMessage("null")
	}

	return OrderDetailDTO{
		OrderNumber:    o.OrderNumber,
		Status:         string(o.Status),
		PaymentStatus:  string(o.PaymentStatus),
		PaymentMethod:  string(o.PaymentMethod),
		ShippingStatus: string(o.ShippingStatus),
		SubtotalCents:  o.SubtotalCents,
		TaxCents:       o.TaxCents,
		ShippingCents:  o.ShippingCents,
		TotalCents:     o.TotalCents,
		Items:          itemDTOs,
		Address:        address,
		CreatedAt:      o.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}, nil
}

// 追跡。追跡IDのない注文は404。外部プロキシの失敗はUNKNOWNに落とす。
func (u *OrderUsecase) TrackOrder(ctx context.Context, userID int64, orderNumber string) (ShippingProgress, error) {
	if userID <= 0 {
		return ShippingProgress{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderNumber == "" {
		return ShippingProgress{}, NewHTTPError(http.StatusBadRequest, "orderNumber is required")
	}

	o, err := u.orders.FindByNumberAndUser(ctx, orderNumber, userID)
	if err == repo.ErrNotFound {
		return ShippingProgress{}, NewHTTPError(http.StatusNotFound, "no tracking available")
	}
	if err != nil {
		return ShippingProgress{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if o.ShippingTrackingID == "" {
		return ShippingProgress{}, NewHTTPError(http.StatusNotFound, "no tracking available")
	}

	return u.insights.ShippingProgress(ctx, o.ShippingTrackingID), nil
}
