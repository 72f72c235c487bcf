package systems

import (
	"github.com/decker502/shooter/pkg/components"
	"github.com/decker502/shooter/pkg/config"
	"github.com/decker502/shooter/pkg/ecs"
	"github.com/decker502/shooter/pkg/game"
	"github.com/decker502/shooter/pkg/utils"
)

// CrosshairSystem 计算准星扩散
//
// 每个分量独立地以各自速率插值到目标值，然后合成：
//
//	spread = base + velocity + inAir - aim + shooting
//
// 结果限制在 [0, MaxSpread]。
type CrosshairSystem struct {
	entityManager *ecs.EntityManager
	timers        *game.TimerManager
	config        config.CrosshairConfig
}

// NewCrosshairSystem 创建准星系统
func NewCrosshairSystem(em *ecs.EntityManager, timers *game.TimerManager, cfg config.CrosshairConfig) *CrosshairSystem {
	return &CrosshairSystem{
		entityManager: em,
		timers:        timers,
		config:        cfg,
	}
}

// SetConfig 热重载时替换参数
func (s *CrosshairSystem) SetConfig(cfg config.CrosshairConfig) {
	s.config = cfg
}

// Update 为所有带准星的角色重新计算扩散
func (s *CrosshairSystem) Update(deltaTime float64) {
	for _, id := range ecs.GetEntitiesWith1[*components.CrosshairComponent](s.entityManager) {
		s.CalculateCrosshairSpread(id, deltaTime)
	}
}

// CalculateCrosshairSpread 重新计算单个角色的准星扩散
func (s *CrosshairSystem) CalculateCrosshairSpread(id ecs.EntityID, deltaTime float64) {
	crosshair, ok := ecs.GetComponent[*components.CrosshairComponent](s.entityManager, id)
	if !ok {
		return
	}
	cfg := s.config

	crosshair.BaseFactor = cfg.Base

	if movement, ok := ecs.GetComponent[*components.MovementComponent](s.entityManager, id); ok {
		maxSpeed := movement.MaxWalkSpeed
		if maxSpeed <= 0 {
			maxSpeed = cfg.MaxWalkSpeed
		}
		crosshair.VelocityFactor = utils.MapRangeClamped(movement.Velocity.Length2D(), 0, maxSpeed, 0, 1)

		if movement.IsFalling {
			crosshair.InAirFactor = utils.FInterpTo(crosshair.InAirFactor, cfg.InAirTarget, deltaTime, cfg.InAirRate)
		} else {
			crosshair.InAirFactor = utils.FInterpTo(crosshair.InAirFactor, 0, deltaTime, cfg.LandRate)
		}
	}

	aiming := false
	if aim, ok := ecs.GetComponent[*components.AimComponent](s.entityManager, id); ok {
		aiming = aim.IsAiming
	}
	if aiming {
		crosshair.AimFactor = utils.FInterpTo(crosshair.AimFactor, cfg.AimTarget, deltaTime, cfg.AimRate)
	} else {
		crosshair.AimFactor = utils.FInterpTo(crosshair.AimFactor, 0, deltaTime, cfg.AimRate)
	}

	if crosshair.FiringBullet {
		crosshair.ShootingFactor = utils.FInterpTo(crosshair.ShootingFactor, cfg.ShootTarget, deltaTime, cfg.ShootRate)
	} else {
		crosshair.ShootingFactor = utils.FInterpTo(crosshair.ShootingFactor, 0, deltaTime, cfg.ShootRate)
	}

	spread := crosshair.BaseFactor +
		crosshair.VelocityFactor +
		crosshair.InAirFactor -
		crosshair.AimFactor +
		crosshair.ShootingFactor
	crosshair.SpreadMultiplier = utils.Clamp(spread, 0, cfg.MaxSpread)
}

// StartCrosshairBulletFire 射击后"射击"分量保持 ShootTimeDuration 秒
//
// 连续射击会重置计时器。
func (s *CrosshairSystem) StartCrosshairBulletFire(id ecs.EntityID) {
	crosshair, ok := ecs.GetComponent[*components.CrosshairComponent](s.entityManager, id)
	if !ok {
		return
	}
	crosshair.FiringBullet = true
	s.timers.SetTimer(&crosshair.ShootTimer, id, crosshair.ShootTimeDuration, false, func() {
		s.FinishCrosshairBulletFire(id)
	})
}

// FinishCrosshairBulletFire 射击分量开始衰减
func (s *CrosshairSystem) FinishCrosshairBulletFire(id ecs.EntityID) {
	if !s.entityManager.EntityExists(id) {
		return
	}
	if crosshair, ok := ecs.GetComponent[*components.CrosshairComponent](s.entityManager, id); ok {
		crosshair.FiringBullet = false
	}
}
