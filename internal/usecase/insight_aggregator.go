package usecase

import (
	"context"
	"fmt"
	"strings"

	"shopverse/internal/infra/external"
)

// 外部インサイトAPIの約束（実装は internal/infra/external）。
type InsightsAPI interface {
	SearchProducts(ctx context.Context, query string, limit int) ([]external.InsightProduct, error)
	ProductByID(ctx context.Context, id int64) (external.InsightProduct, error)
	ProductsByCategory(ctx context.Context, category string, limit int) ([]external.InsightProduct, error)
	CartByID(ctx context.Context, trackingID string) (external.InsightCart, error)
}

type ExternalReview struct {
	Rating   float64 `json:"rating"`
	Comment  string  `json:"comment"`
	Reviewer string  `json:"reviewer"`
	Date     string  `json:"date,omitempty"`
}

type ExternalRecommendation struct {
	ID     int64   `json:"id"`
	Title  string  `json:"title"`
	Image  string  `json:"image"`
	Price  float64 `json:"price"`
	Rating float64 `json:"rating"`
}

type ShippingCheckpoint struct {
	Label  string `json:"label"`
	Detail string `json:"detail"`
}

type ShippingProgress struct {
	Status      string               `json:"status"`
	Summary     string               `json:"summary"`
	Checkpoints []ShippingCheckpoint `json:"checkpoints"`
}

// 外部インサイトの集約。
// 外部サービスが落ちていても呼び出し元にエラーは返さない。
// 失敗は常に空の結果に変換する。
type InsightAggregator struct {
	api InsightsAPI
}

func NewInsightAggregator(api InsightsAPI) *InsightAggregator {
	return &InsightAggregator{api: api}
}

// 商品名で外部レビューとおすすめを引く。失敗は空。
func (a *InsightAggregator) ProductInsights(ctx context.Context, productName string) ([]ExternalReview, []ExternalRecommendation) {
	reviews := []ExternalReview{}
	recs := []ExternalRecommendation{}

	if a.api == nil {
		return reviews, recs
	}

	candidates, err := a.api.SearchProducts(ctx, productName, 5)
	if err != nil || len(candidates) == 0 {
		return reviews, recs
	}

	product, err := a.api.ProductByID(ctx, candidates[0].ID)
	if err != nil {
		return reviews, recs
	}

	for _, r := range product.Reviews {
		reviews = append(reviews, ExternalReview{
			Rating:   r.Rating,
			Comment:  r.Comment,
			Reviewer: r.ReviewerName,
			Date:     r.Date,
		})
	}

	related, err := a.api.ProductsByCategory(ctx, product.Category, 6)
	if err != nil {
		return reviews, recs
	}

	for _, item := range related {
		if item.ID == product.ID {
			continue
		}
		image := item.Thumbnail
		if image == "" && len(item.Images) > 0 {
			image = item.Images[0]
		}
		recs = append(recs, ExternalRecommendation{
			ID:     item.ID,
			Title:  item.Title,
			Image:  image,
			Price:  item.Price,
			Rating: item.Rating,
		})
		if len(recs) == 4 {
			break
		}
	}

	return reviews, recs
}

// 配送ステータス。実キャリア連携ではなく、代用データセットの
// 数量フィールドからの擬似ステータス。失敗は UNKNOWN。
func (a *InsightAggregator) ShippingProgress(ctx context.Context, trackingID string) ShippingProgress {
	unknown := ShippingProgress{
		Status:      "UNKNOWN",
		Summary:     "Tracking information is currently unavailable. Please try again later.",
		Checkpoints: []ShippingCheckpoint{},
	}

	if a.api == nil {
		return unknown
	}

	cart, err := a.api.CartByID(ctx, trackingID)
	if err != nil {
		return unknown
	}

	status := "DELIVERED"
	switch {
	case cart.TotalQuantity < 5:
		status = "CREATED"
	case cart.TotalQuantity < 10:
		status = "IN_TRANSIT"
	case cart.TotalQuantity < 12:
		status = "OUT_FOR_DELIVERY"
	}

	checkpoints := make([]ShippingCheckpoint, 0, len(cart.Products))
	for i, p := range cart.Products {
		checkpoints = append(checkpoints, ShippingCheckpoint{
			Label:  fmt.Sprintf("Checkpoint %d", i+1),
			Detail: fmt.Sprintf("%s staged - quantity %d", p.Title, p.Quantity),
		})
	}

	return ShippingProgress{
		Status: status,
		Summary: fmt.Sprintf("Your shipment containing %d items is currently %s.",
			cart.TotalProducts, strings.ToLower(strings.ReplaceAll(status, "_", " "))),
		Checkpoints: checkpoints,
	}
}
