package components

import "github.com/decker502/shooter/pkg/game"

// CrosshairComponent 准星扩散的各分量
//
// 每帧由 CrosshairSystem 独立插值各分量，再合成 SpreadMultiplier。
type CrosshairComponent struct {
	SpreadMultiplier float64

	BaseFactor     float64
	VelocityFactor float64
	InAirFactor    float64
	AimFactor      float64
	ShootingFactor float64

	// FiringBullet 在每次成功射击后保持 ShootTimeDuration 秒
	FiringBullet      bool
	ShootTimeDuration float64
	ShootTimer        game.TimerHandle
}
