package components

import (
	"github.com/decker502/shooter/pkg/ecs"
	"github.com/decker502/shooter/pkg/game"
	"github.com/decker502/shooter/pkg/utils"
)

// ItemInterpComponent 物品飞向镜头时的插值参数
//
// 除 Timer 外，所有字段都在插值开始时捕获一次，之后保持不变。
type ItemInterpComponent struct {
	IsInterping bool

	// Viewer 提供实时目标点的角色（弱引用）
	Viewer ecs.EntityID

	StartLocation utils.Vec3
	// 物品与目标点的水平偏移，随进度收敛到零
	OffsetX float64
	OffsetY float64
	// YawOffset = 物品 yaw - 观察者 yaw
	YawOffset float64

	Timer game.TimerHandle
}
