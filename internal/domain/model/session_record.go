package model

import "time"

// セッションの永続化行。DataはキーごとのJSON値。
type SessionRecord struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	Data      string    `gorm:"type:text;not null" json:"-"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
