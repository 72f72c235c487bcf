package utils

import "math"

// Vec3 三维向量（世界坐标，Z 轴向上）
//
// 坐标约定：yaw=0 时前方为 +X，右方为 +Y。
type Vec3 struct {
	X, Y, Z float64
}

// Add 向量加法
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// Sub 向量减法
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

// Scale 数乘
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Dot 点积
func (v Vec3) Dot(o Vec3) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

// Cross 叉积
func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		X: v.Y*o.Z - v.Z*o.Y,
		Y: v.Z*o.X - v.X*o.Z,
		Z: v.X*o.Y - v.Y*o.X,
	}
}

// Length 向量长度
func (v Vec3) Length() float64 {
	return math.Sqrt(v.Dot(v))
}

// Length2D 水平面（XY）上的长度
func (v Vec3) Length2D() float64 {
	return math.Hypot(v.X, v.Y)
}

// Normalize 返回单位向量；零向量原样返回
func (v Vec3) Normalize() Vec3 {
	l := v.Length()
	if l == 0 {
		return v
	}
	return v.Scale(1 / l)
}

// Distance 两点距离
func (v Vec3) Distance(o Vec3) float64 {
	return v.Sub(o).Length()
}

// RotateAngleAxis 将向量绕单位轴 axis 旋转 angleDeg 度（Rodrigues 公式）
func (v Vec3) RotateAngleAxis(angleDeg float64, axis Vec3) Vec3 {
	k := axis.Normalize()
	rad := angleDeg * math.Pi / 180
	cos, sin := math.Cos(rad), math.Sin(rad)
	return v.Scale(cos).
		Add(k.Cross(v).Scale(sin)).
		Add(k.Scale(k.Dot(v) * (1 - cos)))
}

// LerpVec3 在 a、b 之间线性插值
func LerpVec3(a, b Vec3, t float64) Vec3 {
	return Vec3{
		X: Lerp(a.X, b.X, t),
		Y: Lerp(a.Y, b.Y, t),
		Z: Lerp(a.Z, b.Z, t),
	}
}

// UpVector 世界向上方向
var UpVector = Vec3{Z: 1}

// ForwardFromRotation 由 yaw/pitch（角度）计算前方向量
func ForwardFromRotation(yawDeg, pitchDeg float64) Vec3 {
	yaw := yawDeg * math.Pi / 180
	pitch := pitchDeg * math.Pi / 180
	return Vec3{
		X: math.Cos(pitch) * math.Cos(yaw),
		Y: math.Cos(pitch) * math.Sin(yaw),
		Z: math.Sin(pitch),
	}
}

// RightFromYaw 由 yaw（角度）计算水平右方向量
func RightFromYaw(yawDeg float64) Vec3 {
	yaw := yawDeg * math.Pi / 180
	return Vec3{X: -math.Sin(yaw), Y: math.Cos(yaw)}
}

// NormalizeAxis 将角度规范到 (-180, 180]
func NormalizeAxis(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg <= -180 {
		deg += 360
	} else if deg > 180 {
		deg -= 360
	}
	return deg
}

// FInterpTo 以恒定速率将 current 平滑插值到 target
//
// 与帧率无关的指数趋近：每帧移动剩余距离的 deltaTime*speed（上限为全部）。
// speed <= 0 时直接返回 target。
func FInterpTo(current, target, deltaTime, speed float64) float64 {
	if speed <= 0 {
		return target
	}
	dist := target - current
	if dist*dist < 1e-8 {
		return target
	}
	step := deltaTime * speed
	if step > 1 {
		step = 1
	}
	return current + dist*step
}

// MapRangeClamped 将 value 从 [inMin, inMax] 映射到 [outMin, outMax]，结果被限制在输出区间内
func MapRangeClamped(value, inMin, inMax, outMin, outMax float64) float64 {
	if inMax == inMin {
		if value >= inMax {
			return outMax
		}
		return outMin
	}
	t := Clamp((value-inMin)/(inMax-inMin), 0, 1)
	return Lerp(outMin, outMax, t)
}

// Clamp 将 v 限制在 [lo, hi]
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Lerp 线性插值
// 在 a 和 b 之间根据 t 插值
// t=0 返回 a，t=1 返回 b
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
