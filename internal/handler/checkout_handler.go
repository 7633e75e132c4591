package handler

import (
	"net/http"

	"shopverse/internal/config"
	"shopverse/internal/domain/model"
	"shopverse/internal/middleware"
	"shopverse/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /checkoutのHTTP。注文確定と決済ディスパッチの入口。
type CheckoutHandler struct {
	uc *usecase.CheckoutUsecase
}

// DI
func NewCheckoutHandler(uc *usecase.CheckoutUsecase) *CheckoutHandler {
	return &CheckoutHandler{uc: uc}
}

type CheckoutItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

type ShippingAddressRequest struct {
	FullName   string `json:"full_name"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	Phone      string `json:"phone"`
}

type CheckoutRequest struct {
	Items []CheckoutItemRequest `json:"items"`

	//保存済み住所のIDか、入力住所のどちらか一方
	AddressID       *int64                  `json:"address_id"`
	ShippingAddress *ShippingAddressRequest `json:"shipping_address"`

	PaymentMethod string `json:"payment_method"`
}

func (h *CheckoutHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	e.POST("/checkout", h.placeOrder, middleware.RequireSession(cfg))
}

func (h *CheckoutHandler) placeOrder(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid checkout payload"})
	}

	items := make([]usecase.CheckoutItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, usecase.CheckoutItemInput{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
		})
	}

	//address_id優先。どちらも無ければusecase側で400。
	var address usecase.AddressSelection
	switch {
	case req.AddressID != nil:
		address = usecase.SavedAddress{AddressID: *req.AddressID}
	case req.ShippingAddress != nil:
		address = usecase.InlineAddress{
			FullName:   req.ShippingAddress.FullName,
			Line1:      req.ShippingAddress.Line1,
			Line2:      req.ShippingAddress.Line2,
			City:       req.ShippingAddress.City,
			State:      req.ShippingAddress.State,
			PostalCode: req.ShippingAddress.PostalCode,
			Country:    req.ShippingAddress.Country,
			Phone:      req.ShippingAddress.Phone,
		}
	}

	out, err := h.uc.PlaceOrder(c.Request().Context(), userID, usecase.PlaceOrderInput{
		Items:         items,
		Address:       address,
		PaymentMethod: model.PaymentMethod(req.PaymentMethod),
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}
