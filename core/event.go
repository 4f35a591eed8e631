package core

import "time"

// EventType 是用户行为事件的类型。
type EventType string

const (
	EventView      EventType = "VIEW"
	EventFavorite  EventType = "FAVORITE"
	EventUnfavorite EventType = "UNFAVORITE"
	EventSearch    EventType = "SEARCH"
	EventClick     EventType = "CLICK"
	EventShare     EventType = "SHARE"
	EventContact   EventType = "CONTACT"
	EventPurchase  EventType = "PURCHASE"
	EventRate      EventType = "RATE"
	EventComment   EventType = "COMMENT"
)

// InteractionEvent 是一条用户-商品交互记录。
//
// 设计要点：
//  - 只追加，写入后不可变；由交互采集方负责落库，本引擎只读
//  - ProductID 可为空（例如 SEARCH 事件没有关联商品），画像/相似度计算时跳过
//  - Value 是自由文本（搜索词、评分值等），引擎不解析其语义
type InteractionEvent struct {
	UserID    string    `json:"user_id"`
	ProductID string    `json:"product_id,omitempty"`
	Type      EventType `json:"type"`
	Value     string    `json:"value,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// HasProduct 判断事件是否关联到具体商品。
func (e *InteractionEvent) HasProduct() bool {
	return e != nil && e.ProductID != ""
}
