package components

import "github.com/decker502/shooter/pkg/game"

// WeaponType 武器类型
type WeaponType int

const (
	WeaponTypeSubmachineGun WeaponType = iota
	WeaponTypeAssaultRifle
)

// String 返回武器类型名称
func (w WeaponType) String() string {
	switch w {
	case WeaponTypeSubmachineGun:
		return "SubmachineGun"
	case WeaponTypeAssaultRifle:
		return "AssaultRifle"
	default:
		return "Unknown"
	}
}

// ParseWeaponType 从配置字符串解析武器类型
func ParseWeaponType(s string) (WeaponType, bool) {
	switch s {
	case "SubmachineGun", "smg":
		return WeaponTypeSubmachineGun, true
	case "AssaultRifle", "ar":
		return WeaponTypeAssaultRifle, true
	}
	return WeaponTypeSubmachineGun, false
}

// AmmoType 弹药类型，同时是弹药库存的键
type AmmoType int

const (
	AmmoType9mm AmmoType = iota
	AmmoTypeAR
)

// AllAmmoTypes 库存初始化时的全部键
var AllAmmoTypes = []AmmoType{AmmoType9mm, AmmoTypeAR}

// String 返回弹药类型名称
func (a AmmoType) String() string {
	switch a {
	case AmmoType9mm:
		return "9mm"
	case AmmoTypeAR:
		return "AR"
	default:
		return "Unknown"
	}
}

// ParseAmmoType 从配置字符串解析弹药类型
func ParseAmmoType(s string) (AmmoType, bool) {
	for _, a := range AllAmmoTypes {
		if a.String() == s {
			return a, true
		}
	}
	return AmmoType9mm, false
}

// WeaponComponent 武器专用数据（物品种类为 ItemKindWeapon 时存在）
//
// 不变量：0 <= AmmoCount <= MagazineCapacity
type WeaponComponent struct {
	AmmoCount        int
	MagazineCapacity int
	WeaponType       WeaponType
	AmmoType         AmmoType

	// 交给动画层的标识，核心不解释其含义
	ReloadMontageSection string
	ClipBoneName         string

	// IsFalling 仅在被丢弃后的沉降期间为 true
	IsFalling       bool
	ThrowWeaponTime float64
	ThrowImpulse    float64
	ThrowTimer      game.TimerHandle

	// MovingClip 换弹动画中弹匣是否在手上
	MovingClip bool
}

// HasAmmo 弹匣中是否还有子弹
func (w *WeaponComponent) HasAmmo() bool {
	return w.AmmoCount > 0
}

// IsFull 弹匣是否已满
func (w *WeaponComponent) IsFull() bool {
	return w.AmmoCount >= w.MagazineCapacity
}

// DecrementAmmo 消耗一发子弹，弹药为 0 时保持为 0
func (w *WeaponComponent) DecrementAmmo() {
	if w.AmmoCount <= 0 {
		w.AmmoCount = 0
		return
	}
	w.AmmoCount--
}

// ReloadAmmo 向弹匣装入 amount 发子弹
//
// 调用方必须保证 AmmoCount+amount <= MagazineCapacity，否则 panic。
func (w *WeaponComponent) ReloadAmmo(amount int) {
	if amount < 0 || w.AmmoCount+amount > w.MagazineCapacity {
		violate("WeaponComponent.ReloadAmmo",
			"ammo %d + %d exceeds magazine capacity %d", w.AmmoCount, amount, w.MagazineCapacity)
	}
	w.AmmoCount += amount
}
