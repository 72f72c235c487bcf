package components

import "github.com/decker502/shooter/pkg/ecs"

// ItemTraceComponent 角色对可拾取物品的扫描状态
//
// TraceHitItem 和 TraceHitItemLastFrame 都是弱引用，使用前必须检查实体是否存在。
type ItemTraceComponent struct {
	// OverlappedItemCount >= 0；大于 0 时每帧执行扫描
	OverlappedItemCount int
	ShouldTraceForItems bool

	TraceHitItem          ecs.EntityID
	TraceHitItemLastFrame ecs.EntityID

	TraceLength float64
}
