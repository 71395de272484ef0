package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

// 一覧検索
type ProductListQuery struct {
	Page         int
	Limit        int
	Q            string
	CategorySlug string
}

// カタログの問い合わせ（価格・在庫・公開状態の正）。
type ProductRepository interface {
	ListAvailable(ctx context.Context, q ProductListQuery) ([]model.Product, int64, error)
	FindByID(ctx context.Context, id int64) (model.Product, error)
	FindBySlug(ctx context.Context, slug string) (model.Product, error)

	//カート再照合用。1クエリでまとめて引く。
	ListByIDs(ctx context.Context, ids []int64) (map[int64]model.Product, error)

	ListVariants(ctx context.Context, productID int64) ([]model.ProductVariant, error)
}

type CategoryRepository interface {
	List(ctx context.Context) ([]model.Category, error)
	FindBySlug(ctx context.Context, slug string) (model.Category, error)
}
