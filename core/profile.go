package core

import "time"

// UserProfile 是用户偏好画像：从交互历史整体聚合出的加权偏好。
//
// 一句话定义：画像 = 内容召回的"查询向量"
//
// 设计要点：
//  维度              作用
//  CategoryWeights   类目偏好计数，内容打分主信号
//  BrandWeights      品牌偏好计数
//  ConditionWeights  成色偏好计数
//  PriceMin/PriceMax 历史交互价格区间（软约束，超出只降权不排除）
//  Locations         偏好城市集合
//
// 画像每次整体重建（不做增量更新），新画像整体覆盖旧画像，不保留历史。
// 用户没有任何可解析交互时不产出画像，调用方走 Fallback。
type UserProfile struct {
	UserID string `json:"user_id"`

	// 偏好计数（key -> 出现次数）
	CategoryWeights  map[string]int `json:"category_weights"`
	BrandWeights     map[string]int `json:"brand_weights"`
	ConditionWeights map[string]int `json:"condition_weights"`

	// 价格区间；HasPriceRange 为 false 时两者无意义
	PriceMin      float64 `json:"price_min"`
	PriceMax      float64 `json:"price_max"`
	HasPriceRange bool    `json:"has_price_range"`

	// 偏好城市集合
	Locations map[string]struct{} `json:"locations"`

	// 元数据
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUserProfile 创建一个空画像。
func NewUserProfile(userID string) *UserProfile {
	return &UserProfile{
		UserID:           userID,
		CategoryWeights:  make(map[string]int),
		BrandWeights:     make(map[string]int),
		ConditionWeights: make(map[string]int),
		Locations:        make(map[string]struct{}),
		UpdatedAt:        time.Now(),
	}
}

// AddSample 把一个商品的属性计入画像（重建时逐条累积）。
func (p *UserProfile) AddSample(prod *Product) {
	if prod == nil {
		return
	}
	if prod.CategoryKey != "" {
		p.CategoryWeights[prod.CategoryKey]++
	}
	if prod.Brand != "" {
		p.BrandWeights[prod.Brand]++
	}
	if prod.Condition != "" {
		p.ConditionWeights[prod.Condition]++
	}
	if !p.HasPriceRange {
		p.PriceMin = prod.Price
		p.PriceMax = prod.Price
		p.HasPriceRange = true
	} else {
		if prod.Price < p.PriceMin {
			p.PriceMin = prod.Price
		}
		if prod.Price > p.PriceMax {
			p.PriceMax = prod.Price
		}
	}
	if prod.City != "" {
		if p.Locations == nil {
			p.Locations = make(map[string]struct{})
		}
		p.Locations[prod.City] = struct{}{}
	}
}

// Empty 判断画像是否没有任何信号（没有可解析交互时的结果）。
func (p *UserProfile) Empty() bool {
	if p == nil {
		return true
	}
	return len(p.CategoryWeights) == 0 &&
		len(p.BrandWeights) == 0 &&
		len(p.ConditionWeights) == 0 &&
		!p.HasPriceRange &&
		len(p.Locations) == 0
}

// PrefersCity 判断城市是否在偏好集合中。
func (p *UserProfile) PrefersCity(city string) bool {
	if p == nil || city == "" {
		return false
	}
	_, ok := p.Locations[city]
	return ok
}

// InPriceRange 判断价格是否落在偏好区间内（闭区间）。
func (p *UserProfile) InPriceRange(price float64) bool {
	if p == nil || !p.HasPriceRange {
		return false
	}
	return price >= p.PriceMin && price <= p.PriceMax
}
