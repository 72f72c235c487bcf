package game

import (
	"github.com/decker502/shooter/pkg/ecs"
	"github.com/decker502/shooter/pkg/utils"
)

// 本文件定义战斗核心依赖的外部协作者接口。
// 核心只消费这些接口的结果（命中实体 + 命中点）或发出请求（冲量、特效、动画），
// 不关心它们如何被执行。

// TraceResult 射线检测结果
type TraceResult struct {
	Hit    bool
	Entity ecs.EntityID // 命中的实体；命中静态几何时为 ecs.InvalidEntity
	Point  utils.Vec3
}

// Scene 场景/物理协作者
type Scene interface {
	// TraceFromViewpoint 从观察者视点沿准星方向检测，最远 length
	TraceFromViewpoint(viewer ecs.EntityID, length float64) TraceResult
	// TraceSegment 检测 start 到 end 的线段，忽略 ignore 实体
	TraceSegment(start, end utils.Vec3, ignore ecs.EntityID) TraceResult
	// SocketLocation 返回实体上某个挂点的世界坐标
	SocketLocation(entity ecs.EntityID, socket string) (utils.Vec3, bool)
	// ApplyImpulse 请求对实体施加冲量
	ApplyImpulse(entity ecs.EntityID, impulse utils.Vec3)
	// SetUpright 请求将实体的姿态扶正（pitch/roll 归零，保持 yaw）
	SetUpright(entity ecs.EntityID)
}

// EffectKind 特效/音效类型
type EffectKind int

const (
	EffectMuzzleFlash EffectKind = iota
	EffectImpact
	EffectBeam
	EffectFireSound
	EffectEquipSound
	EffectPickupSound
)

// String 返回特效名称（用于日志和调试输出）
func (k EffectKind) String() string {
	switch k {
	case EffectMuzzleFlash:
		return "MuzzleFlash"
	case EffectImpact:
		return "Impact"
	case EffectBeam:
		return "Beam"
	case EffectFireSound:
		return "FireSound"
	case EffectEquipSound:
		return "EquipSound"
	case EffectPickupSound:
		return "PickupSound"
	default:
		return "Unknown"
	}
}

// WidgetInfo 拾取提示面板显示的数据
type WidgetInfo struct {
	Name        string
	Count       int
	ActiveStars []bool
}

// Presenter 表现层协作者，所有调用都是"发出即忘"
type Presenter interface {
	ShowPickupWidget(entity ecs.EntityID, info WidgetInfo)
	HidePickupWidget(entity ecs.EntityID)
	PlayEffect(kind EffectKind, at utils.Vec3)
	PlayAnimation(montageID, sectionID string)
}

// CurveSampler 曲线采样协作者：elapsed 秒 -> 标量，纯函数
type CurveSampler interface {
	Sample(curveID string, t float64) float64
}

// NopPresenter 丢弃所有表现请求
type NopPresenter struct{}

func (NopPresenter) ShowPickupWidget(ecs.EntityID, WidgetInfo) {}
func (NopPresenter) HidePickupWidget(ecs.EntityID)             {}
func (NopPresenter) PlayEffect(EffectKind, utils.Vec3)         {}
func (NopPresenter) PlayAnimation(string, string)              {}
