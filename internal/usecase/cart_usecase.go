package usecase

import (
	"context"
	"net/http"
	"strconv"

	"app/internal/cart"
	repo "app/internal/repository"
	"app/internal/session"
)

// CartUsecaseはセッションカートとカタログの橋渡し。
// カタログ側のドリフト（価格変更・削除・在庫変動）でcheckoutを
// 落とさないよう、読み出しのたびに防御的に再照合する。
type CartUsecase struct {
	productRepo repo.ProductRepository
}

func NewCartUsecase(productRepo repo.ProductRepository) *CartUsecase {
	return &CartUsecase{productRepo: productRepo}
}

type CartLineResponse struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	Price     int64  `json:"price"`
	Quantity  int64  `json:"quantity"`
	LineTotal int64  `json:"line_total"`
}

type CartResponse struct {
	Items         []CartLineResponse `json:"items"`
	LineCount     int                `json:"line_count"`
	TotalQuantity int64              `json:"total_quantity"`
	TotalPrice    int64              `json:"total_price"`
}

type AddCartInput struct {
	ProductID int64
	Quantity  int64
	//trueなら数量を上書き、falseなら加算
	UpdateQuantity bool
}

// GetCartはカートをカタログと突き合わせて返す。
// 参照商品は1クエリでまとめて引き、解決できない明細は
// 表示からは外す（ストレージからは消さない）。
func (u *CartUsecase) GetCart(ctx context.Context, sess *session.Session) (CartResponse, error) {
	c := cart.Load(sess)

	ids := c.ProductIDs()
	products, err := u.productRepo.ListByIDs(ctx, ids)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	items := make([]CartLineResponse, 0, len(ids))
	for _, id := range ids {
		p, ok := products[id]
		if !ok {
			//商品が消えた明細はスキップ
			continue
		}
		line, ok := c.Line(id)
		if !ok {
			continue
		}
		price, err := strconv.ParseInt(line.Price, 10, 64)
		if err != nil {
			continue
		}
		items = append(items, CartLineResponse{
			ProductID: id,
			Name:      p.Name,
			Slug:      p.Slug,
			Price:     price,
			Quantity:  line.Quantity,
			LineTotal: price * line.Quantity,
		})
	}

	return CartResponse{
		Items:         items,
		LineCount:     c.LineCount(),
		TotalQuantity: c.TotalQuantity(),
		TotalPrice:    c.TotalPrice(),
	}, nil
}

// AddToCartはカートに追加。数量は1〜10。
func (u *CartUsecase) AddToCart(ctx context.Context, sess *session.Session, in AddCartInput) (CartResponse, error) {
	if in.ProductID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	if in.Quantity < 1 || in.Quantity > 10 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "quantity must be between 1 and 10")
	}

	p, err := u.productRepo.FindByID(ctx, in.ProductID)
	if err == repo.ErrNotFound {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "product not found")
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	c := cart.Load(sess)
	if err := c.Add(p, in.Quantity, in.UpdateQuantity); err == cart.ErrInsufficientStock {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "insufficient stock: only "+strconv.FormatInt(p.Stock, 10)+" left")
	} else if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "cart error")
	}

	return u.GetCart(ctx, sess)
}

// UpdateQuantityは既存明細の数量を上書きする
func (u *CartUsecase) UpdateQuantity(ctx context.Context, sess *session.Session, productID int64, quantity int64) (CartResponse, error) {
	c := cart.Load(sess)
	if _, ok := c.Line(productID); !ok {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "not in cart")
	}
	return u.AddToCart(ctx, sess, AddCartInput{
		ProductID:      productID,
		Quantity:       quantity,
		UpdateQuantity: true,
	})
}

// RemoveFromCartは明細を消す。商品がカタログから消えていても消せる。
func (u *CartUsecase) RemoveFromCart(ctx context.Context, sess *session.Session, productID int64) (CartResponse, error) {
	if productID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	cart.Load(sess).Remove(productID)
	return u.GetCart(ctx, sess)
}

// CleanInvalidは不正キーの掃除を明示的に実行する
func (u *CartUsecase) CleanInvalid(ctx context.Context, sess *session.Session) (CartResponse, error) {
	c := cart.Load(sess)
	if c.CleanInvalid() > 0 {
		c.Save()
	}
	return u.GetCart(ctx, sess)
}

// ClearCartはカートを空にする
func (u *CartUsecase) ClearCart(ctx context.Context, sess *session.Session) (CartResponse, error) {
	cart.Load(sess).Clear()
	return u.GetCart(ctx, sess)
}
