package entities

import (
	"fmt"

	"github.com/decker502/shooter/pkg/components"
	"github.com/decker502/shooter/pkg/config"
	"github.com/decker502/shooter/pkg/ecs"
	"github.com/decker502/shooter/pkg/utils"
)

// 挂点名
const (
	BarrelSocket    = "BarrelSocket"
	RightHandSocket = "RightHandSocket"
)

// addItemComponents 添加所有物品共有的组件，物品处于 Pickup 状态
func addItemComponents(em *ecs.EntityManager, id ecs.EntityID, item *components.ItemComponent, items config.ItemsConfig, location utils.Vec3, yaw float64) {
	item.ZCurve = items.ZCurve
	item.ScaleCurve = items.ScaleCurve
	item.InterpDuration = items.InterpDuration

	em.AddComponent(id, components.NewTransformComponent(location, yaw))
	em.AddComponent(id, item)
	// 与 Pickup 状态一致：范围球与碰撞盒开启，提示面板等待准星扫描
	em.AddComponent(id, &components.ItemCollisionComponent{
		MeshVisible:         true,
		AreaSphereEnabled:   true,
		CollisionBoxEnabled: true,
		SphereRadius:        items.SphereRadius,
	})
	em.AddComponent(id, &components.ItemInterpComponent{})
}

// NewItemEntity 创建普通物品（被拾取后直接吸收）
//
// 参数:
//   - em: EntityManager 实例
//   - name: 提示面板上显示的名称
//   - rarity: 稀有度
//   - items: 物品插值配置
//   - location: 世界坐标
//
// 返回: 创建的实体ID
func NewItemEntity(em *ecs.EntityManager, name string, rarity components.ItemRarity, items config.ItemsConfig, location utils.Vec3) ecs.EntityID {
	id := em.CreateEntity()
	addItemComponents(em, id, components.NewItemComponent(name, components.ItemKindGeneric, rarity), items, location, 0)
	return id
}

// NewAmmoEntity 创建弹药拾取物
func NewAmmoEntity(em *ecs.EntityManager, ammo components.AmmoType, amount int, items config.ItemsConfig, location utils.Vec3) ecs.EntityID {
	id := em.CreateEntity()
	item := components.NewItemComponent(ammo.String()+" Ammo", components.ItemKindAmmo, components.RarityCommon)
	item.Count = amount
	addItemComponents(em, id, item, items, location, 0)
	em.AddComponent(id, &components.AmmoComponent{AmmoType: ammo, Amount: amount})
	return id
}

// NewWeaponEntity 按武器配置创建武器实体（Pickup 状态）
//
// 返回:
//   - ecs.EntityID: 创建的实体ID
//   - error: 配置中的武器类型、弹药类型或稀有度无法识别
func NewWeaponEntity(em *ecs.EntityManager, w config.WeaponConfig, items config.ItemsConfig, location utils.Vec3, yaw float64) (ecs.EntityID, error) {
	weaponType, ok := components.ParseWeaponType(w.WeaponType)
	if !ok {
		return ecs.InvalidEntity, fmt.Errorf("%w: unknown weapon type %q", config.ErrInvalidWeapon, w.WeaponType)
	}
	ammoType, ok := components.ParseAmmoType(w.AmmoType)
	if !ok {
		return ecs.InvalidEntity, fmt.Errorf("%w: unknown ammo type %q", config.ErrInvalidWeapon, w.AmmoType)
	}
	rarity := components.RarityCommon
	if w.Rarity != "" {
		if rarity, ok = components.ParseItemRarity(w.Rarity); !ok {
			return ecs.InvalidEntity, fmt.Errorf("%w: unknown rarity %q", config.ErrInvalidWeapon, w.Rarity)
		}
	}
	if w.AmmoCount < 0 || w.AmmoCount > w.MagazineCapacity {
		return ecs.InvalidEntity, fmt.Errorf("%w: ammo %d outside [0, %d]", config.ErrInvalidWeapon, w.AmmoCount, w.MagazineCapacity)
	}

	id := em.CreateEntity()
	item := components.NewItemComponent(w.Name, components.ItemKindWeapon, rarity)
	addItemComponents(em, id, item, items, location, yaw)
	em.AddComponent(id, &components.WeaponComponent{
		AmmoCount:            w.AmmoCount,
		MagazineCapacity:     w.MagazineCapacity,
		WeaponType:           weaponType,
		AmmoType:             ammoType,
		ReloadMontageSection: w.ReloadSection,
		ClipBoneName:         w.ClipBone,
		ThrowWeaponTime:      w.ThrowWeaponTime,
		ThrowImpulse:         w.ThrowImpulse,
	})
	return id, nil
}

// SpawnDefaultWeapon 创建配置中的默认武器
func SpawnDefaultWeapon(em *ecs.EntityManager, cfg *config.ShooterConfig, location utils.Vec3) (ecs.EntityID, error) {
	w, err := cfg.Weapon(cfg.Combat.DefaultWeapon)
	if err != nil {
		return ecs.InvalidEntity, err
	}
	return NewWeaponEntity(em, w, cfg.Items, location, 0)
}
