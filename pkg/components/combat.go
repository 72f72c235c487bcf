package components

import (
	"github.com/decker502/shooter/pkg/ecs"
	"github.com/decker502/shooter/pkg/game"
)

// CombatState 战斗状态，三者互斥
type CombatState int

const (
	CombatStateUnoccupied     CombatState = iota // 只有此状态下可以开火或换弹
	CombatStateFireInProgress                    // 射击间隔内
	CombatStateReloading
)

// String 返回状态名称
func (s CombatState) String() string {
	switch s {
	case CombatStateUnoccupied:
		return "Unoccupied"
	case CombatStateFireInProgress:
		return "FireInProgress"
	case CombatStateReloading:
		return "Reloading"
	default:
		return "Unknown"
	}
}

// CombatComponent 角色的战斗控制数据
//
// EquippedWeapon 由角色独占；同一时刻最多一把。
type CombatComponent struct {
	State          CombatState
	EquippedWeapon ecs.EntityID

	// AmmoInventory 的键在初始化时固定为 AllAmmoTypes
	AmmoInventory map[AmmoType]int

	FireButtonPressed bool
	AutoFireEnabled   bool
	AutomaticFireRate float64
	AutoFireTimer     game.TimerHandle

	// 挂点与动画标识
	HandSocket     string
	HipFireMontage string
	ReloadMontage  string
	BarrelSocket   string
	TraceLength    float64 // 射击射线的最远距离
}

// NewCombatComponent 创建空手、无弹药的战斗组件
func NewCombatComponent(fireRate float64) *CombatComponent {
	c := &CombatComponent{
		State:             CombatStateUnoccupied,
		AutoFireEnabled:   true,
		AutomaticFireRate: fireRate,
		AmmoInventory:     make(map[AmmoType]int, len(AllAmmoTypes)),
		HandSocket:        "RightHandSocket",
		HipFireMontage:    "HipFireMontage",
		ReloadMontage:     "ReloadMontage",
		BarrelSocket:      "BarrelSocket",
		TraceLength:       50000,
	}
	for _, a := range AllAmmoTypes {
		c.AmmoInventory[a] = 0
	}
	return c
}
