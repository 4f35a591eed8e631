package core

import "time"

// BoostType 是付费推广的档位类型。
type BoostType string

const (
	BoostFeatured  BoostType = "FEATURED"  // 首页推荐位
	BoostSponsored BoostType = "SPONSORED" // 赞助
	BoostUrgent    BoostType = "URGENT"    // 急售
	BoostPremium   BoostType = "PREMIUM"   // 高级
	BoostTrending  BoostType = "TRENDING"  // 趋势
)

// ProductBoost 是一条时间盒推广记录：在 [StartTime, EndTime) 内生效，
// Level 决定推广强度（注入策略据此复制或加分）。
type ProductBoost struct {
	ProductID string    `json:"product_id"`
	Type      BoostType `json:"type"`
	Level     int       `json:"level"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// CurrentlyActive 判断推广在 now 时刻是否生效：
// Active 标志为 true 且 now ∈ [StartTime, EndTime)。
func (b *ProductBoost) CurrentlyActive(now time.Time) bool {
	if b == nil || !b.Active {
		return false
	}
	return !now.Before(b.StartTime) && now.Before(b.EndTime)
}

// Expired 判断推广是否已过期（EndTime 之后）。
func (b *ProductBoost) Expired(now time.Time) bool {
	return b != nil && !now.Before(b.EndTime)
}
