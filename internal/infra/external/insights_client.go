package external

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// 外部の商品インサイトAPI（DummyJSON互換）のクライアント。
// 呼び出しは全てベストエフォート。タイムアウトはクライアント全体で固定。
type InsightsClient struct {
	baseURL string
	client  *http.Client
}

func NewInsightsClient(baseURL string, timeout time.Duration) *InsightsClient {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &InsightsClient{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

type InsightReview struct {
	Rating       float64 `json:"rating"`
	Comment      string  `json:"comment"`
	ReviewerName string  `json:"reviewerName"`
	Date         string  `json:"date"`
}

type InsightProduct struct {
	ID        int64           `json:"id"`
	Title     string          `json:"title"`
	Price     float64         `json:"price"`
	Rating    float64         `json:"rating"`
	Category  string          `json:"category"`
	Brand     string          `json:"brand"`
	Images    []string        `json:"images"`
	Thumbnail string          `json:"thumbnail"`
	Quantity  int64           `json:"quantity"`
	Reviews   []InsightReview `json:"reviews"`
}

// 配送ステータスの代用データ（カートAPIの数量を流用）
type InsightCart struct {
	ID            int64            `json:"id"`
	Products      []InsightProduct `json:"products"`
	Total         float64          `json:"total"`
	TotalProducts int64            `json:"totalProducts"`
	TotalQuantity int64            `json:"totalQuantity"`
}

func (c *InsightsClient) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("insights api: unexpected status %d for %s", resp.StatusCode, path)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *InsightsClient) SearchProducts(ctx context.Context, query string, limit int) ([]InsightProduct, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("limit", strconv.Itoa(limit))

	var body struct {
		Products []InsightProduct `json:"products"`
	}
	if err := c.getJSON(ctx, "/products/search", q, &body); err != nil {
		return nil, err
	}
	return body.Products, nil
}

func (c *InsightsClient) ProductByID(ctx context.Context, id int64) (InsightProduct, error) {
	var p InsightProduct
	if err := c.getJSON(ctx, fmt.Sprintf("/products/%d", id), nil, &p); err != nil {
		return InsightProduct{}, err
	}
	return p, nil
}

func (c *InsightsClient) ProductsByCategory(ctx context.Context, category string, limit int) ([]InsightProduct, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))

	var body struct {
		Products []InsightProduct `json:"products"`
	}
	if err := c.getJSON(ctx, "/products/category/"+url.PathEscape(category), q, &body); err != nil {
		return nil, err
	}
	return body.Products, nil
}

func (c *InsightsClient) CartByID(ctx context.Context, trackingID string) (InsightCart, error) {
	var cart InsightCart
	if err := c.getJSON(ctx, "/carts/"+url.PathEscape(trackingID), nil, &cart); err != nil {
		return InsightCart{}, err
	}
	return cart, nil
}
