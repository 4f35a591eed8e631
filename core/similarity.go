package core

import "time"

// UserSimilarity 是一条有向的用户相似度记录。
//
// Score 按 Jaccard 计算，数学上是对称的；存储按 (UserID, OtherID) 有向 key，
// 重建时两个方向都会落盘（见 similarity 包），查询只走 (UserID, *) 方向。
// 只有 Score 超过保留阈值（默认 0.1）的记录才会写入。
type UserSimilarity struct {
	UserID         string    `json:"user_id"`
	OtherID        string    `json:"other_id"`
	Score          float64   `json:"score"`
	LastCalculated time.Time `json:"last_calculated"`
}
