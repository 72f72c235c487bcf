package systems

import (
	"math/rand/v2"
	"time"

	"github.com/decker502/shooter/pkg/components"
	"github.com/decker502/shooter/pkg/ecs"
	"github.com/decker502/shooter/pkg/game"
	"github.com/decker502/shooter/pkg/logger"
	"github.com/decker502/shooter/pkg/utils"
	"github.com/rs/zerolog"
)

// 抛出方向：右方向绕竖直轴随机旋转的角度范围（度）
const (
	ThrowAngleMin = 15.0
	ThrowAngleMax = 45.0
)

// WeaponSystem 管理武器被丢弃后的抛出与沉降
type WeaponSystem struct {
	entityManager *ecs.EntityManager
	timers        *game.TimerManager
	scene         game.Scene
	items         *ItemSystem
	rng           *rand.Rand
	log           zerolog.Logger
}

// NewWeaponSystem 创建武器系统
func NewWeaponSystem(em *ecs.EntityManager, timers *game.TimerManager, scene game.Scene, items *ItemSystem) *WeaponSystem {
	seed := uint64(time.Now().UnixNano())
	return &WeaponSystem{
		entityManager: em,
		timers:        timers,
		scene:         scene,
		items:         items,
		rng:           rand.New(rand.NewPCG(seed, seed>>1)),
		log:           logger.For("WeaponSystem"),
	}
}

// SetRand 替换随机源（测试中使用固定种子）
func (s *WeaponSystem) SetRand(r *rand.Rand) {
	s.rng = r
}

// ThrowDirection 计算抛出方向：武器右方向绕竖直轴旋转 angleDeg
func ThrowDirection(yawDeg, angleDeg float64) utils.Vec3 {
	return utils.RightFromYaw(yawDeg).RotateAngleAxis(angleDeg, utils.UpVector)
}

// ThrowWeapon 把武器扶正后沿随机方向施加冲量，并在 ThrowWeaponTime 后结束下落
//
// 返回 false 表示实体不存在或不是武器。
func (s *WeaponSystem) ThrowWeapon(id ecs.EntityID) bool {
	if !s.entityManager.EntityExists(id) {
		return false
	}
	weapon, ok := ecs.GetComponent[*components.WeaponComponent](s.entityManager, id)
	if !ok {
		return false
	}
	transform, ok := ecs.GetComponent[*components.TransformComponent](s.entityManager, id)
	if !ok {
		return false
	}

	transform.Pitch = 0
	transform.Roll = 0

	angle := ThrowAngleMin + s.rng.Float64()*(ThrowAngleMax-ThrowAngleMin)
	impulse := ThrowDirection(transform.Yaw, angle).Scale(weapon.ThrowImpulse)
	if s.scene != nil {
		s.scene.ApplyImpulse(id, impulse)
	}

	weapon.IsFalling = true
	s.timers.SetTimer(&weapon.ThrowTimer, id, weapon.ThrowWeaponTime, false, func() {
		s.StopFalling(id)
	})

	s.log.Debug().Uint64("weapon", uint64(id)).Float64("angle", angle).Msg("weapon thrown")
	return true
}

// StopFalling 沉降结束：武器回到 Pickup 状态，可以再次被拾取
func (s *WeaponSystem) StopFalling(id ecs.EntityID) {
	if !s.entityManager.EntityExists(id) {
		return
	}
	weapon, ok := ecs.GetComponent[*components.WeaponComponent](s.entityManager, id)
	if !ok {
		return
	}
	weapon.IsFalling = false
	s.timers.ClearTimer(&weapon.ThrowTimer)

	// 下落期间可能已被重新装备（例如被别的角色捡起），只处理仍在下落的武器
	if state, ok := s.items.GetItemState(id); ok && state == components.ItemStateFalling {
		s.items.SetItemState(id, components.ItemStatePickup)
	}
}

// Update 下落中的武器每帧保持直立
func (s *WeaponSystem) Update(deltaTime float64) {
	entities := ecs.GetEntitiesWith2[*components.WeaponComponent, *components.ItemComponent](s.entityManager)
	for _, id := range entities {
		weapon, _ := ecs.GetComponent[*components.WeaponComponent](s.entityManager, id)
		item, _ := ecs.GetComponent[*components.ItemComponent](s.entityManager, id)
		if !weapon.IsFalling || item.State != components.ItemStateFalling {
			continue
		}
		if s.scene != nil {
			s.scene.SetUpright(id)
		}
	}
}
