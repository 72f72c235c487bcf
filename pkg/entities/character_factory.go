package entities

import (
	"github.com/decker502/shooter/pkg/components"
	"github.com/decker502/shooter/pkg/config"
	"github.com/decker502/shooter/pkg/ecs"
	"github.com/decker502/shooter/pkg/utils"
)

// DefaultEyeHeight 镜头相对角色原点的高度
const DefaultEyeHeight = 70.0

// NewCharacterEntity 创建玩家角色
//
// 角色带有镜头、运动、瞄准、战斗、准星与物品扫描组件；弹药库存按配置初始化。
// 默认武器不在这里创建，由场景调用 SpawnDefaultWeapon 后装备。
func NewCharacterEntity(em *ecs.EntityManager, cfg *config.ShooterConfig, location utils.Vec3, yaw float64) ecs.EntityID {
	id := em.CreateEntity()

	em.AddComponent(id, components.NewTransformComponent(location, yaw))
	em.AddComponent(id, &components.ViewerComponent{
		CameraLocation:  location.Add(utils.Vec3{Z: DefaultEyeHeight}),
		Yaw:             yaw,
		EyeHeight:       DefaultEyeHeight,
		InterpDistance:  cfg.Items.CameraInterpDistance,
		InterpElevation: cfg.Items.CameraInterpElevation,
	})
	em.AddComponent(id, &components.MovementComponent{
		MaxWalkSpeed: cfg.Crosshair.MaxWalkSpeed,
	})

	aim := cfg.Aim
	em.AddComponent(id, &components.AimComponent{
		DefaultFOV:            aim.DefaultFOV,
		ZoomedFOV:             aim.ZoomedFOV,
		CurrentFOV:            aim.DefaultFOV,
		ZoomInterpSpeed:       aim.ZoomInterpSpeed,
		HipTurnRate:           aim.HipTurnRate,
		HipLookUpRate:         aim.HipLookUpRate,
		AimingTurnRate:        aim.AimingTurnRate,
		AimingLookUpRate:      aim.AimingLookUpRate,
		BaseTurnRate:          aim.BaseTurnRate,
		BaseLookUpRate:        aim.BaseLookUpRate,
		MouseHipTurnRate:      aim.MouseHipTurnRate,
		MouseHipLookUpRate:    aim.MouseHipLookUpRate,
		MouseAimingTurnRate:   aim.MouseAimingTurnRate,
		MouseAimingLookUpRate: aim.MouseAimingLookUpRate,
	})

	combat := components.NewCombatComponent(cfg.Combat.AutomaticFireRate)
	combat.AutoFireEnabled = cfg.Combat.AutoFire
	combat.TraceLength = cfg.Combat.TraceLength
	for name, n := range cfg.Ammo.Starting {
		if a, ok := components.ParseAmmoType(name); ok {
			combat.AmmoInventory[a] = n
		}
	}
	em.AddComponent(id, combat)

	em.AddComponent(id, &components.CrosshairComponent{
		BaseFactor:        cfg.Crosshair.Base,
		SpreadMultiplier:  cfg.Crosshair.Base,
		ShootTimeDuration: cfg.Combat.ShootTimeDuration,
	})
	em.AddComponent(id, &components.ItemTraceComponent{
		TraceLength: cfg.Combat.TraceLength,
	})
	return id
}
