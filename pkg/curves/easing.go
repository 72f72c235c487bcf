package curves

import "math"

// EasingFunc 把归一化时间 t∈[0,1] 映射为进度
type EasingFunc func(t float64) float64

// Linear 线性
func Linear(t float64) float64 {
	return t
}

// EaseOutQuad 二次缓出
func EaseOutQuad(t float64) float64 {
	return 1 - (1-t)*(1-t)
}

// EaseInQuad 二次缓入
func EaseInQuad(t float64) float64 {
	return t * t
}

// EaseOutCubic 三次缓出：开始快、结束慢
func EaseOutCubic(t float64) float64 {
	return 1 - math.Pow(1-t, 3)
}

// EaseInCubic 三次缓入
func EaseInCubic(t float64) float64 {
	return t * t * t
}

// EaseInOutCubic 三次缓入缓出
func EaseInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - math.Pow(-2*t+2, 3)/2
}

// EaseOutExpo 指数缓出
func EaseOutExpo(t float64) float64 {
	if t >= 1 {
		return 1
	}
	return 1 - math.Pow(2, -10*t)
}

var easings = map[string]EasingFunc{
	"linear":         Linear,
	"easeInQuad":     EaseInQuad,
	"easeOutQuad":    EaseOutQuad,
	"easeInCubic":    EaseInCubic,
	"easeOutCubic":   EaseOutCubic,
	"easeInOutCubic": EaseInOutCubic,
	"easeOutExpo":    EaseOutExpo,
}

// LookupEasing 按名称查找缓动函数
func LookupEasing(name string) (EasingFunc, bool) {
	fn, ok := easings[name]
	return fn, ok
}

// EasingCurve 在 Duration 秒内从 From 缓动到 To
type EasingCurve struct {
	Ease     EasingFunc
	Duration float64
	From, To float64
}

// Evaluate 实现 Curve
func (c *EasingCurve) Evaluate(t float64) float64 {
	if c.Duration <= 0 {
		return c.To
	}
	n := t / c.Duration
	if n < 0 {
		n = 0
	} else if n > 1 {
		n = 1
	}
	return c.From + (c.To-c.From)*c.Ease(n)
}
