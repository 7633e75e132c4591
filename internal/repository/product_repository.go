package repository

import (
	"context"
	"errors"

	"shopverse/internal/domain/model"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate record")
)

// 公開カタログの一覧検索
type ProductListQuery struct {
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

// 商品の永続化（保存・取得）だけを約束。
type ProductRepository interface {
	ListPublic(ctx context.Context, q ProductListQuery) ([]model.Product, int64, error)
	FindByID(ctx context.Context, id int64) (model.Product, error)
	FindBySlug(ctx context.Context, slug string) (model.Product, error)

	//チェックアウトで使う。対象商品を1回の読みでまとめて取る。
	FindByIDs(ctx context.Context, ids []int64) ([]model.Product, error)

	//同カテゴリのおすすめ（自分自身を除く、レーティング降順）
	ListByCategory(ctx context.Context, categoryID int64, excludeID int64, limit int) ([]model.Product, error)

	//レビュー投稿時の平均レーティング反映
	UpdateRating(ctx context.Context, productID int64, rating float64) error
}
