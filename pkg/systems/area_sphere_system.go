package systems

import (
	"github.com/decker502/shooter/pkg/components"
	"github.com/decker502/shooter/pkg/ecs"
)

type overlapPair struct {
	item      ecs.EntityID
	character ecs.EntityID
}

// AreaSphereSystem 检测物品范围球与角色的进入/离开，转发给 ItemTraceSystem
//
// 范围球关闭（物品被拾取、下落）或物品被销毁都按"离开"处理。
type AreaSphereSystem struct {
	entityManager *ecs.EntityManager
	trace         *ItemTraceSystem
	overlapping   map[overlapPair]struct{}
}

// NewAreaSphereSystem 创建范围球检测系统
func NewAreaSphereSystem(em *ecs.EntityManager, trace *ItemTraceSystem) *AreaSphereSystem {
	return &AreaSphereSystem{
		entityManager: em,
		trace:         trace,
		overlapping:   make(map[overlapPair]struct{}),
	}
}

// Update 重新计算所有重叠关系
func (s *AreaSphereSystem) Update(deltaTime float64) {
	items := ecs.GetEntitiesWith2[*components.ItemCollisionComponent, *components.TransformComponent](s.entityManager)
	characters := ecs.GetEntitiesWith2[*components.ItemTraceComponent, *components.TransformComponent](s.entityManager)

	inside := make(map[overlapPair]struct{})
	for _, item := range items {
		if !s.entityManager.EntityExists(item) {
			continue
		}
		collision, _ := ecs.GetComponent[*components.ItemCollisionComponent](s.entityManager, item)
		if !collision.AreaSphereEnabled {
			continue
		}
		itemTransform, _ := ecs.GetComponent[*components.TransformComponent](s.entityManager, item)

		for _, character := range characters {
			if !s.entityManager.EntityExists(character) {
				continue
			}
			charTransform, _ := ecs.GetComponent[*components.TransformComponent](s.entityManager, character)
			if itemTransform.Location.Sub(charTransform.Location).Length2D() <= collision.SphereRadius {
				inside[overlapPair{item: item, character: character}] = struct{}{}
			}
		}
	}

	// 先处理离开再处理进入，使同一帧内计数不会短暂越界
	for pair := range s.overlapping {
		if _, still := inside[pair]; !still {
			s.trace.OnItemSphereEndOverlap(pair.item, pair.character)
		}
	}
	for pair := range inside {
		if _, was := s.overlapping[pair]; !was {
			s.trace.OnItemSphereOverlap(pair.item, pair.character)
		}
	}
	s.overlapping = inside
}

// OverlapCount 当前重叠的物品-角色对数量
func (s *AreaSphereSystem) OverlapCount() int {
	return len(s.overlapping)
}
