package core

// Product 是商品目录的只读投影，只保留打分需要的属性。
// 完整的商品数据（图片、描述、表单字段等）由目录服务持有，本引擎不关心。
type Product struct {
	ID            string  `json:"id"`
	CategoryKey   string  `json:"category_key"`
	Brand         string  `json:"brand,omitempty"`
	Condition     string  `json:"condition,omitempty"`
	Price         float64 `json:"price"`
	City          string  `json:"city,omitempty"`
	FavoriteCount int     `json:"favorite_count"`
	IsActive      bool    `json:"is_active"`
}
