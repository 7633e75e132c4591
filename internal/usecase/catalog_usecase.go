package usecase

import (
	"context"
	"net/http"

	"shopverse/internal/domain/model"
	repo "shopverse/internal/repository"
)

// 公開カタログ（一覧・詳細）。詳細は内部レビューと
// 外部インサイトを混ぜて返す。
type CatalogUsecase struct {
	products   repo.ProductRepository
	categories repo.CategoryRepository
	brands     repo.BrandRepository
	reviews    repo.ReviewRepository
	insights   *InsightAggregator
}

func NewCatalogUsecase(
	products repo.ProductRepository,
	categories repo.CategoryRepository,
	brands repo.BrandRepository,
	reviews repo.ReviewRepository,
	insights *InsightAggregator,
) *CatalogUsecase {
	return &CatalogUsecase{
		products:   products,
		categories: categories,
		brands:     brands,
		reviews:    reviews,
		insights:   insights,
	}
}

type ListProductsInput struct {
	Page          int
	Limit         int
	Search        string
	CategorySlug  string
	BrandSlug     string
	MinPriceCents *int64
	MaxPriceCents *int64
	MinRating     *float64
	Sort          string
}

type ProductCardDTO struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Slug       string  `json:"slug"`
	PriceCents int64   `json:"price_cents"`
	Rating     float64 `json:"rating"`
	Brand      string  `json:"brand"`
	Category   string  `json:"category"`
	Image      string  `json:"image,omitempty"`
	Inventory  int64   `json:"inventory"`
}

type PaginationDTO struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
}

type FacetDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type ListProductsOutput struct {
	Products   []ProductCardDTO `json:"products"`
	Pagination PaginationDTO    `json:"pagination"`
	Categories []FacetDTO       `json:"categories"`
	Brands     []FacetDTO       `json:"brands"`
}

type ReviewDTO struct {
	ID        int64  `json:"id"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
	Reviewer  string `json:"reviewer"`
	CreatedAt string `json:"created_at"`
}

type RecommendationDTO struct {
	ID         int64   `json:"id"`
	Title      string  `json:"title"`
	Slug       string  `json:"slug,omitempty"`
	PriceCents int64   `json:"price_cents,omitempty"`
	Price      float64 `json:"price,omitempty"`
	Rating     float64 `json:"rating"`
	Brand      string  `json:"brand,omitempty"`
	Image      string  `json:"image,omitempty"`
	External   bool    `json:"external,omitempty"`
}

type ProductDetailOutput struct {
	Product         model.Product       `json:"product"`
	Reviews         []ReviewDTO         `json:"reviews"`
	ExternalReviews []ExternalReview    `json:"external_reviews"`
	Recommendations []RecommendationDTO `json:"recommendations"`
}

func (u *CatalogUsecase) ListProducts(ctx context.Context, in ListProductsInput) (ListProductsOutput, error) {
	if in.Page <= 0 {
		in.Page = 1
	}
	if in.Limit <= 0 || in.Limit > 48 {
		in.Limit = 16
	}

	items, total, err := u.products.ListPublic(ctx, repo.ProductListQuery{
		Page:          in.Page,
		Limit:         in.Limit,
		Search:        in.Search,
		CategorySlug:  in.CategorySlug,
		BrandSlug:     in.BrandSlug,
		MinPriceCents: in.MinPriceCents,
		MaxPriceCents: in.MaxPriceCents,
		MinRating:     in.MinRating,
		Sort:          in.Sort,
	})
	if err != nil {
		return ListProductsOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	categories, err := u.categories.List(ctx)
	if err != nil {
		return ListProductsOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	brands, err := u.brands.List(ctx)
	if err != nil {
		return ListProductsOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	cards := make([]ProductCardDTO, 0, len(items))
	for i := range items {
		cards = append(cards, toProductCard(&items[i]))
	}

	totalPages := (total + int64(in.Limit) - 1) / int64(in.Limit)
	if totalPages < 1 {
		totalPages = 1
	}

	catFacets := make([]FacetDTO, 0, len(categories))
	for _, c := range categories {
		catFacets = append(catFacets, FacetDTO{ID: c.ID, Name: c.Name, Slug: c.Slug})
	}
	brandFacets := make([]FacetDTO, 0, len(brands))
	for _, b := range brands {
		brandFacets = append(brandFacets, FacetDTO{ID: b.ID, Name: b.Name, Slug: b.Slug})
	}

	return ListProductsOutput{
		Products: cards,
		Pagination: PaginationDTO{
			Page:       in.Page,
			PageSize:   in.Limit,
			Total:      total,
			TotalPages: totalPages,
		},
		Categories: catFacets,
		Brands:     brandFacets,
	}, nil
}

// 商品詳細。内部おすすめは必ず計算し、外部のおすすめをその後ろに繋ぐ。
// 外部サービスが全滅していても詳細は普通に返る。
func (u *CatalogUsecase) GetProductDetail(ctx context.Context, slug string) (ProductDetailOutput, error) {
	p, err := u.products.FindBySlug(ctx, slug)
	if err == repo.ErrNotFound {
		return ProductDetailOutput{}, NewHTTPError(http.StatusNotFound, "product not found")
	}
	if err != nil {
		return ProductDetailOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	reviews, err := u.reviews.ListByProductID(ctx, p.ID)
	if err != nil {
		return ProductDetailOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	reviewDTOs := make([]ReviewDTO, 0, len(reviews))
	for _, rv := range reviews {
		reviewDTOs = append(reviewDTOs, ReviewDTO{
			ID:        rv.ID,
			Rating:    rv.Rating,
			Comment:   rv.Comment,
			Reviewer:  rv.Reviewer,
			CreatedAt: rv.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	//内部おすすめ：同カテゴリ、自分を除く、レーティング降順、4件まで
	related, err := u.products.ListByCategory(ctx, p.CategoryID, p.ID, 4)
	if err != nil {
		return ProductDetailOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	externalReviews, externalRecs := u.insights.ProductInsights(ctx, p.Name)

	recs := make([]RecommendationDTO, 0, len(related)+len(externalRecs))
	for i := range related {
		rp := &related[i]
		image := ""
		if len(rp.Images) > 0 {
			image = rp.Images[0].URL
		}
		recs = append(recs, RecommendationDTO{
			ID:         rp.ID,
			Title:      rp.Name,
			Slug:       rp.Slug,
			PriceCents: rp.PriceCents,
			Rating:     rp.Rating,
			Brand:      rp.Brand.Name,
			Image:      image,
		})
	}
	for _, er := range externalRecs {
		recs = append(recs, RecommendationDTO{
			ID:       er.ID,
			Title:    er.Title,
			Price:    er.Price,
			Rating:   er.Rating,
			Image:    er.Image,
			External: true,
		})
	}

	return ProductDetailOutput{
		Product:         p,
		Reviews:         reviewDTOs,
		ExternalReviews: externalReviews,
		Recommendations: recs,
	}, nil
}

func toProductCard(p *model.Product) ProductCardDTO {
	image := ""
	if len(p.Images) > 0 {
		image = p.Images[0].URL
	}
	return ProductCardDTO{
		ID:         p.ID,
		Name:       p.Name,
		Slug:       p.Slug,
		PriceCents: p.PriceCents,
		Rating:     p.Rating,
		Brand:      p.Brand.Name,
		Category:   p.Category.Name,
		Image:      image,
		Inventory:  p.Inventory,
	}
}
