package cart

import (
	"errors"
	"sort"
	"strconv"

	"app/internal/domain/model"
	"app/internal/session"
)

// セッション内のカートのキー
const SessionKey = "cart"

// 在庫を超える数量
var ErrInsufficientStock = errors.New("insufficient stock")

// カート明細。価格は追加時点のスナップショットを文字列で持ち、
// 以後のカタログ価格変更には追随しない（再追加で更新される）。
type Line struct {
	Quantity int64  `json:"quantity"`
	Price    string `json:"price"`
	Name     string `json:"name"`
}

// Cartはセッションに保持する商品ID→明細のマップ。
type Cart struct {
	sess  *session.Session
	lines map[string]Line
}

// Loadはセッションからカートを読み出す。
// 整数として解釈できないキーは落とし、落としたときだけ保存し直す。
func Load(sess *session.Session) *Cart {
	var lines map[string]Line
	ok, err := sess.Get(SessionKey, &lines)
	if err != nil || !ok || lines == nil {
		lines = map[string]Line{}
	}

	c := &Cart{sess: sess, lines: lines}
	if c.CleanInvalid() > 0 {
		c.save()
	}
	return c
}

// 不正なキーを削除して件数を返す
func (c *Cart) CleanInvalid() int {
	removed := 0
	for key := range c.lines {
		if _, err := strconv.ParseInt(key, 10, 64); err != nil {
			delete(c.lines, key)
			removed++
		}
	}
	return removed
}

// Addは商品をカートへ入れる。
// updateQuantityがtrueなら数量を上書き、falseなら加算。
// 初めての商品は数量0の明細を作ってから価格・名前をスナップショットする。
func (c *Cart) Add(p model.Product, quantity int64, updateQuantity bool) error {
	key := strconv.FormatInt(p.ID, 10)
	line, ok := c.lines[key]
	if !ok {
		line = Line{
			Quantity: 0,
			Price:    strconv.FormatInt(p.Price, 10),
			Name:     p.Name,
		}
	}

	//加算後の数量で在庫を見る
	next := quantity
	if !updateQuantity {
		next = line.Quantity + quantity
	}
	if next > p.Stock {
		return ErrInsufficientStock
	}

	line.Quantity = next
	c.lines[key] = line
	c.save()
	return nil
}

// Removeは明細を削除。存在したときだけ保存する。
func (c *Cart) Remove(productID int64) {
	key := strconv.FormatInt(productID, 10)
	if _, ok := c.lines[key]; !ok {
		return
	}
	delete(c.lines, key)
	c.save()
}

// 明細を1件返す
func (c *Cart) Line(productID int64) (Line, bool) {
	line, ok := c.lines[strconv.FormatInt(productID, 10)]
	return line, ok
}

// ProductIDsは解決すべき商品IDを昇順で返す
func (c *Cart) ProductIDs() []int64 {
	ids := make([]int64, 0, len(c.lines))
	for key := range c.lines {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// TotalQuantityは全明細の数量合計。
// 商品がもうカタログに無い明細も含める。
func (c *Cart) TotalQuantity() int64 {
	var total int64
	for _, line := range c.lines {
		total += line.Quantity
	}
	return total
}

// TotalPriceは単価×数量の合計。
// 価格が読めない明細は全体を失敗させずにスキップする。
func (c *Cart) TotalPrice() int64 {
	var total int64
	for _, line := range c.lines {
		price, err := strconv.ParseInt(line.Price, 10, 64)
		if err != nil {
			continue
		}
		total += price * line.Quantity
	}
	return total
}

// LineCountは明細数（数量合計ではない）
func (c *Cart) LineCount() int {
	return len(c.lines)
}

// Clearはカートをセッションから取り除く
func (c *Cart) Clear() {
	c.lines = map[string]Line{}
	c.sess.Delete(SessionKey)
}

func (c *Cart) save() {
	//Setが失敗するのはmarshal不能のときだけで、Lineは常にmarshal可能
	_ = c.sess.Set(SessionKey, c.lines)
}

// Saveは外から整理した結果を永続化するときに使う
func (c *Cart) Save() {
	c.save()
}
