package curves

import (
	"fmt"
	"sort"
)

// Key 曲线关键帧
type Key struct {
	Time  float64 `yaml:"time"`
	Value float64 `yaml:"value"`
}

// KeyframeCurve 分段线性关键帧曲线
//
// 第一个关键帧之前取首值，最后一个之后取末值。
type KeyframeCurve struct {
	keys []Key
}

// NewKeyframeCurve 创建关键帧曲线
//
// 参数：
//   - keys: 至少一个关键帧，时间不可重复；顺序任意
//
// 返回：
//   - *KeyframeCurve: 按时间排序后的曲线
//   - error: 关键帧为空或时间重复
func NewKeyframeCurve(keys []Key) (*KeyframeCurve, error) {
	if len(keys) == 0 {
		return nil, fmt.Errorf("keyframe curve needs at least one key")
	}
	sorted := make([]Key, len(keys))
	copy(sorted, keys)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Time < sorted[j].Time })
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Time == sorted[i-1].Time {
			return nil, fmt.Errorf("duplicate key time %.3f", sorted[i].Time)
		}
	}
	return &KeyframeCurve{keys: sorted}, nil
}

// Evaluate 实现 Curve
func (c *KeyframeCurve) Evaluate(t float64) float64 {
	keys := c.keys
	if t <= keys[0].Time {
		return keys[0].Value
	}
	last := keys[len(keys)-1]
	if t >= last.Time {
		return last.Value
	}
	// 第一个时间大于 t 的关键帧
	i := sort.Search(len(keys), func(i int) bool { return keys[i].Time > t })
	a, b := keys[i-1], keys[i]
	f := (t - a.Time) / (b.Time - a.Time)
	return a.Value + (b.Value-a.Value)*f
}

// Duration 最后一个关键帧的时间
func (c *KeyframeCurve) Duration() float64 {
	return c.keys[len(c.keys)-1].Time
}
