package systems

import (
	"github.com/decker502/shooter/pkg/components"
	"github.com/decker502/shooter/pkg/ecs"
	"github.com/decker502/shooter/pkg/game"
	"github.com/decker502/shooter/pkg/utils"
)

// 视角俯仰限制（度）
const (
	minPitch = -80.0
	maxPitch = 80.0
)

// AimSystem 处理瞄准缩放与视角输入
type AimSystem struct {
	entityManager *ecs.EntityManager
	settings      *game.SettingsManager // 可为 nil
}

// NewAimSystem 创建瞄准系统
func NewAimSystem(em *ecs.EntityManager, settings *game.SettingsManager) *AimSystem {
	return &AimSystem{entityManager: em, settings: settings}
}

// AimingButtonPressed 开始瞄准
func (s *AimSystem) AimingButtonPressed(id ecs.EntityID) {
	if aim, ok := ecs.GetComponent[*components.AimComponent](s.entityManager, id); ok {
		aim.IsAiming = true
	}
}

// AimingButtonReleased 停止瞄准
func (s *AimSystem) AimingButtonReleased(id ecs.EntityID) {
	if aim, ok := ecs.GetComponent[*components.AimComponent](s.entityManager, id); ok {
		aim.IsAiming = false
	}
}

// Update 镜头跟随角色，插值 FOV 并切换视角速率
func (s *AimSystem) Update(deltaTime float64) {
	for _, id := range ecs.GetEntitiesWith2[*components.ViewerComponent, *components.TransformComponent](s.entityManager) {
		viewer, _ := ecs.GetComponent[*components.ViewerComponent](s.entityManager, id)
		transform, _ := ecs.GetComponent[*components.TransformComponent](s.entityManager, id)
		viewer.CameraLocation = transform.Location.Add(utils.Vec3{Z: viewer.EyeHeight})
	}

	for _, id := range ecs.GetEntitiesWith1[*components.AimComponent](s.entityManager) {
		aim, _ := ecs.GetComponent[*components.AimComponent](s.entityManager, id)

		target := aim.DefaultFOV
		if aim.IsAiming {
			target = aim.ZoomedFOV
		}
		aim.CurrentFOV = utils.FInterpTo(aim.CurrentFOV, target, deltaTime, aim.ZoomInterpSpeed)

		if aim.IsAiming {
			aim.BaseTurnRate = aim.AimingTurnRate
			aim.BaseLookUpRate = aim.AimingLookUpRate
		} else {
			aim.BaseTurnRate = aim.HipTurnRate
			aim.BaseLookUpRate = aim.HipLookUpRate
		}
	}
}

// mouseScale 返回鼠标输入的倍率（瞄准/腰射 × 玩家灵敏度）
func (s *AimSystem) mouseScale(aim *components.AimComponent, turn bool) float64 {
	var scale, sensitivity float64
	switch {
	case aim.IsAiming && turn:
		scale = aim.MouseAimingTurnRate
	case aim.IsAiming:
		scale = aim.MouseAimingLookUpRate
	case turn:
		scale = aim.MouseHipTurnRate
	default:
		scale = aim.MouseHipLookUpRate
	}

	sensitivity = 1
	if s.settings != nil {
		if aim.IsAiming {
			sensitivity = s.settings.GetSettings().MouseAimingSensitivity
		} else {
			sensitivity = s.settings.GetSettings().MouseHipSensitivity
		}
	}
	return scale * sensitivity
}

// Turn 鼠标水平输入（度）
func (s *AimSystem) Turn(id ecs.EntityID, value float64) {
	aim, ok := ecs.GetComponent[*components.AimComponent](s.entityManager, id)
	if !ok {
		return
	}
	s.addYaw(id, value*s.mouseScale(aim, true))
}

// LookUp 鼠标竖直输入（度，正值向上）
func (s *AimSystem) LookUp(id ecs.EntityID, value float64) {
	aim, ok := ecs.GetComponent[*components.AimComponent](s.entityManager, id)
	if !ok {
		return
	}
	if s.settings != nil && s.settings.GetSettings().InvertLookUp {
		value = -value
	}
	s.addPitch(id, value*s.mouseScale(aim, false))
}

// TurnAtRate 键盘/手柄水平输入，rate 为归一化输入 [-1, 1]
func (s *AimSystem) TurnAtRate(id ecs.EntityID, rate, deltaTime float64) {
	aim, ok := ecs.GetComponent[*components.AimComponent](s.entityManager, id)
	if !ok {
		return
	}
	s.addYaw(id, rate*aim.BaseTurnRate*deltaTime)
}

// LookUpAtRate 键盘/手柄竖直输入，rate 为归一化输入 [-1, 1]
func (s *AimSystem) LookUpAtRate(id ecs.EntityID, rate, deltaTime float64) {
	aim, ok := ecs.GetComponent[*components.AimComponent](s.entityManager, id)
	if !ok {
		return
	}
	s.addPitch(id, rate*aim.BaseLookUpRate*deltaTime)
}

func (s *AimSystem) addYaw(id ecs.EntityID, delta float64) {
	viewer, ok := ecs.GetComponent[*components.ViewerComponent](s.entityManager, id)
	if !ok {
		return
	}
	viewer.Yaw = utils.NormalizeAxis(viewer.Yaw + delta)
	if transform, ok := ecs.GetComponent[*components.TransformComponent](s.entityManager, id); ok {
		transform.Yaw = viewer.Yaw
	}
}

func (s *AimSystem) addPitch(id ecs.EntityID, delta float64) {
	viewer, ok := ecs.GetComponent[*components.ViewerComponent](s.entityManager, id)
	if !ok {
		return
	}
	viewer.Pitch = utils.Clamp(viewer.Pitch+delta, minPitch, maxPitch)
}
