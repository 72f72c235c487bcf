package components

import "github.com/decker502/shooter/pkg/utils"

// ViewerComponent 角色的镜头
type ViewerComponent struct {
	CameraLocation utils.Vec3
	Yaw            float64
	Pitch          float64
	// EyeHeight 镜头相对角色位置的高度；AimSystem 每帧据此跟随角色
	EyeHeight float64

	// 物品飞向镜头时，目标点位于镜头前 InterpDistance、上方 InterpElevation 处
	InterpDistance  float64
	InterpElevation float64
}

// MovementComponent 角色运动状态（由外部运动模拟写入）
type MovementComponent struct {
	Velocity     utils.Vec3
	IsFalling    bool
	MaxWalkSpeed float64
}

// AimComponent 瞄准与视角灵敏度
type AimComponent struct {
	IsAiming bool

	DefaultFOV      float64
	ZoomedFOV       float64
	CurrentFOV      float64
	ZoomInterpSpeed float64

	// 手柄/键盘视角速率（度/秒）
	HipTurnRate      float64
	HipLookUpRate    float64
	AimingTurnRate   float64
	AimingLookUpRate float64
	BaseTurnRate     float64
	BaseLookUpRate   float64

	// 鼠标灵敏度倍率
	MouseHipTurnRate      float64
	MouseHipLookUpRate    float64
	MouseAimingTurnRate   float64
	MouseAimingLookUpRate float64
}
