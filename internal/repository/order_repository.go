package repository

import (
	"context"

	"app/internal/domain/model"
)

// 注文台帳。1回の決済結果につき1行を追記するだけで、
// 更新やマージはしない（管理画面のステータス変更は対象外）。
type OrderRepository interface {
	//注文と明細を同一トランザクションで作成する
	CreateWithItems(ctx context.Context, order model.Order, items []model.OrderItem) (model.Order, error)

	FindByID(ctx context.Context, orderID int64) (model.Order, error)

	//相関トークンでの検索（コールバック再読み込みの重複ガード）
	FindByAuthority(ctx context.Context, authority string) (model.Order, bool, error)

	ListItemsByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error)
	List(ctx context.Context, page int, limit int) ([]model.Order, int64, error)
}
