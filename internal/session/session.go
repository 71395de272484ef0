package session

import (
	"context"
	"encoding/json"
)

// Sessionはリクエストに紐づくキー付き状態。
// 暗黙のグローバルにはせず、cart/checkoutの各操作へ明示的に渡す。
// 変更はdirtyフラグで追跡し、dirtyなセッションだけ永続化する。
type Session struct {
	ID     string
	values map[string]json.RawMessage
	dirty  bool
}

// Newは空のセッションを作る
func New(id string) *Session {
	return &Session{
		ID:     id,
		values: map[string]json.RawMessage{},
	}
}

// Decodeは保存済みデータからセッションを復元する
func Decode(id string, data []byte) (*Session, error) {
	s := New(id)
	if len(data) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(data, &s.values); err != nil {
		return nil, err
	}
	return s, nil
}

// キーの値をdstへ読み出す。キーが無ければfalse。
func (s *Session) Get(key string, dst any) (bool, error) {
	raw, ok := s.values[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, err
	}
	return true, nil
}

// キーへ値を保存してdirtyにする
func (s *Session) Set(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.values[key] = raw
	s.dirty = true
	return nil
}

// キーを削除。存在した場合だけdirtyにする。
func (s *Session) Delete(key string) {
	if _, ok := s.values[key]; !ok {
		return
	}
	delete(s.values, key)
	s.dirty = true
}

func (s *Session) Has(key string) bool {
	_, ok := s.values[key]
	return ok
}

// MarkDirtyは保存を強制したいときに使う
func (s *Session) MarkDirty() {
	s.dirty = true
}

func (s *Session) Dirty() bool {
	return s.dirty
}

// Encodeは永続化用のJSONを返す
func (s *Session) Encode() ([]byte, error) {
	return json.Marshal(s.values)
}

// Storeはセッションの永続化だけを約束
type Store interface {
	Load(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
}
