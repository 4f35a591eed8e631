// Package similarity 实现用户两两相似度的计算与全量重建。
package similarity

// Jaccard 计算两个商品集合的 Jaccard 系数：|交集| / |并集|。
// 并集为空（两个用户都没有交互）时定义为 0.0。
// 结果对称：Jaccard(a, b) == Jaccard(b, a)。
func Jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0.0
	}

	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}

	intersection := 0
	for id := range small {
		if _, ok := large[id]; ok {
			intersection++
		}
	}

	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0.0
	}
	return float64(intersection) / float64(union)
}
