package systems

import (
	"github.com/decker502/shooter/pkg/components"
	"github.com/decker502/shooter/pkg/ecs"
	"github.com/decker502/shooter/pkg/game"
	"github.com/decker502/shooter/pkg/logger"
	"github.com/rs/zerolog"
)

// ItemTraceSystem 维护角色周围的物品计数，并在计数大于 0 时每帧用准星射线寻找目标物品
//
// 目标变化时隐藏旧目标的提示、显示新目标的提示；目标不变时不产生任何通知。
type ItemTraceSystem struct {
	entityManager *ecs.EntityManager
	scene         game.Scene
	items         *ItemSystem
	log           zerolog.Logger
}

// NewItemTraceSystem 创建物品扫描系统
func NewItemTraceSystem(em *ecs.EntityManager, scene game.Scene, items *ItemSystem) *ItemTraceSystem {
	return &ItemTraceSystem{
		entityManager: em,
		scene:         scene,
		items:         items,
		log:           logger.For("ItemTraceSystem"),
	}
}

// IncrementOverlappedItemCount 调整角色的重叠物品计数（下限为 0），并据此开关扫描
func (s *ItemTraceSystem) IncrementOverlappedItemCount(character ecs.EntityID, delta int) {
	trace, ok := ecs.GetComponent[*components.ItemTraceComponent](s.entityManager, character)
	if !ok {
		return
	}
	if trace.OverlappedItemCount+delta <= 0 {
		trace.OverlappedItemCount = 0
		trace.ShouldTraceForItems = false
	} else {
		trace.OverlappedItemCount += delta
		trace.ShouldTraceForItems = true
	}
}

// OnItemSphereOverlap 物品范围球与角色开始重叠
func (s *ItemTraceSystem) OnItemSphereOverlap(item, other ecs.EntityID) {
	if !s.entityManager.EntityExists(other) {
		return
	}
	if !ecs.HasComponent[*components.ItemTraceComponent](s.entityManager, other) {
		return
	}
	s.IncrementOverlappedItemCount(other, 1)
}

// OnItemSphereEndOverlap 物品范围球与角色结束重叠
func (s *ItemTraceSystem) OnItemSphereEndOverlap(item, other ecs.EntityID) {
	if !s.entityManager.EntityExists(other) {
		return
	}
	if !ecs.HasComponent[*components.ItemTraceComponent](s.entityManager, other) {
		return
	}
	s.IncrementOverlappedItemCount(other, -1)
}

// TraceHitItem 返回角色当前瞄准的物品；物品已不存在时返回 ecs.InvalidEntity
func (s *ItemTraceSystem) TraceHitItem(character ecs.EntityID) ecs.EntityID {
	trace, ok := ecs.GetComponent[*components.ItemTraceComponent](s.entityManager, character)
	if !ok || !s.entityManager.EntityExists(trace.TraceHitItem) {
		return ecs.InvalidEntity
	}
	return trace.TraceHitItem
}

// ClearTraceHitItems 清除当前与上一帧的目标（装备武器后调用）
func (s *ItemTraceSystem) ClearTraceHitItems(character ecs.EntityID) {
	if trace, ok := ecs.GetComponent[*components.ItemTraceComponent](s.entityManager, character); ok {
		trace.TraceHitItem = ecs.InvalidEntity
		trace.TraceHitItemLastFrame = ecs.InvalidEntity
	}
}

// Update 为所有角色执行一次扫描
func (s *ItemTraceSystem) Update(deltaTime float64) {
	for _, id := range ecs.GetEntitiesWith1[*components.ItemTraceComponent](s.entityManager) {
		s.TraceForItems(id)
	}
}

// TraceForItems 解析角色当前瞄准的物品并更新提示面板
func (s *ItemTraceSystem) TraceForItems(character ecs.EntityID) {
	trace, ok := ecs.GetComponent[*components.ItemTraceComponent](s.entityManager, character)
	if !ok {
		return
	}

	last := trace.TraceHitItemLastFrame

	if !trace.ShouldTraceForItems {
		trace.TraceHitItem = ecs.InvalidEntity
		if last != ecs.InvalidEntity {
			s.items.HideWidget(last)
			trace.TraceHitItemLastFrame = ecs.InvalidEntity
		}
		return
	}

	current := ecs.InvalidEntity
	if s.scene != nil {
		hit := s.scene.TraceFromViewpoint(character, trace.TraceLength)
		if hit.Hit && s.isTargetable(hit.Entity) {
			current = hit.Entity
		}
	}
	trace.TraceHitItem = current

	if current != ecs.InvalidEntity {
		s.items.ShowWidget(current)
	}
	if last != ecs.InvalidEntity && last != current {
		s.items.HideWidget(last)
	}
	if current != last {
		s.log.Debug().
			Uint64("character", uint64(character)).
			Uint64("from", uint64(last)).
			Uint64("to", uint64(current)).
			Msg("trace target changed")
	}
	trace.TraceHitItemLastFrame = current
}

// isTargetable 只有处于 Pickup 状态且碰撞盒开启的物品可以成为目标
func (s *ItemTraceSystem) isTargetable(id ecs.EntityID) bool {
	state, ok := s.items.GetItemState(id)
	if !ok || state != components.ItemStatePickup {
		return false
	}
	collision, ok := ecs.GetComponent[*components.ItemCollisionComponent](s.entityManager, id)
	return ok && collision.Traceable()
}
