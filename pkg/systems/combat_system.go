package systems

import (
	"github.com/decker502/shooter/pkg/components"
	"github.com/decker502/shooter/pkg/ecs"
	"github.com/decker502/shooter/pkg/game"
	"github.com/decker502/shooter/pkg/logger"
	"github.com/decker502/shooter/pkg/utils"
	"github.com/rs/zerolog"
)

// 开火动画与弹匣动画的段落名
const (
	StartFireSection = "StartFire"
	beamOvershoot    = 1.25 // 枪口二次检测时延长到准星命中点之后
)

// CombatSystem 角色的战斗控制器：装备、开火、换弹、拾取
//
// 状态机：
//
//	Unoccupied --开火(有弹)--> FireInProgress --射速计时器--> Unoccupied
//	Unoccupied --换弹(有备弹且未满)--> Reloading --FinishReloading--> Unoccupied
//
// 只有 Unoccupied 时才能开始开火或换弹，其余请求被静默拒绝（返回 false）。
type CombatSystem struct {
	entityManager *ecs.EntityManager
	timers        *game.TimerManager
	scene         game.Scene
	presenter     game.Presenter

	items     *ItemSystem
	weapons   *WeaponSystem
	crosshair *CrosshairSystem
	trace     *ItemTraceSystem

	settings *game.SettingsManager // 可为 nil
	journal  *game.CombatJournal   // 可为 nil

	log zerolog.Logger
}

// NewCombatSystem 创建战斗系统，并把自身注册为物品插值结束的接收者
func NewCombatSystem(
	em *ecs.EntityManager,
	timers *game.TimerManager,
	scene game.Scene,
	presenter game.Presenter,
	items *ItemSystem,
	weapons *WeaponSystem,
	crosshair *CrosshairSystem,
	trace *ItemTraceSystem,
) *CombatSystem {
	if presenter == nil {
		presenter = game.NopPresenter{}
	}
	s := &CombatSystem{
		entityManager: em,
		timers:        timers,
		scene:         scene,
		presenter:     presenter,
		items:         items,
		weapons:       weapons,
		crosshair:     crosshair,
		trace:         trace,
		log:           logger.For("CombatSystem"),
	}
	items.SetPickupHandler(s.GetPickupItem)
	return s
}

// SetSettings 设置玩家偏好（连发开关）
func (s *CombatSystem) SetSettings(settings *game.SettingsManager) {
	s.settings = settings
}

// SetJournal 设置战斗日志
func (s *CombatSystem) SetJournal(journal *game.CombatJournal) {
	s.journal = journal
}

func (s *CombatSystem) record(ev game.CombatEvent) {
	if err := s.journal.Record(ev); err != nil {
		s.log.Warn().Err(err).Str("kind", ev.Kind).Msg("failed to record combat event")
	}
}

// combat 返回角色的战斗组件；角色不存在时返回 nil
func (s *CombatSystem) combat(character ecs.EntityID) *components.CombatComponent {
	if !s.entityManager.EntityExists(character) {
		return nil
	}
	c, _ := ecs.GetComponent[*components.CombatComponent](s.entityManager, character)
	return c
}

// equippedWeapon 返回装备中的武器组件；没有装备时返回 nil
func (s *CombatSystem) equippedWeapon(c *components.CombatComponent) *components.WeaponComponent {
	if c == nil || !s.entityManager.EntityExists(c.EquippedWeapon) {
		return nil
	}
	w, _ := ecs.GetComponent[*components.WeaponComponent](s.entityManager, c.EquippedWeapon)
	return w
}

// GetCombatState 返回角色的战斗状态
func (s *CombatSystem) GetCombatState(character ecs.EntityID) components.CombatState {
	if c := s.combat(character); c != nil {
		return c.State
	}
	return components.CombatStateUnoccupied
}

// EquippedWeapon 返回装备中的武器实体；没有时返回 ecs.InvalidEntity
func (s *CombatSystem) EquippedWeapon(character ecs.EntityID) ecs.EntityID {
	c := s.combat(character)
	if c == nil || !s.entityManager.EntityExists(c.EquippedWeapon) {
		return ecs.InvalidEntity
	}
	return c.EquippedWeapon
}

// InitializeAmmoMap 设置弹药库存；库存的键固定为全部弹药类型
func (s *CombatSystem) InitializeAmmoMap(character ecs.EntityID, starting map[components.AmmoType]int) {
	c := s.combat(character)
	if c == nil {
		return
	}
	c.AmmoInventory = make(map[components.AmmoType]int, len(components.AllAmmoTypes))
	for _, a := range components.AllAmmoTypes {
		n := starting[a]
		if n < 0 {
			n = 0
		}
		c.AmmoInventory[a] = n
	}
}

// AmmoInInventory 返回某种弹药的库存数量
func (s *CombatSystem) AmmoInInventory(character ecs.EntityID, ammo components.AmmoType) int {
	if c := s.combat(character); c != nil {
		return c.AmmoInventory[ammo]
	}
	return 0
}

// WeaponHasAmmo 装备的武器弹匣中是否有子弹
func (s *CombatSystem) WeaponHasAmmo(character ecs.EntityID) bool {
	w := s.equippedWeapon(s.combat(character))
	return w != nil && w.HasAmmo()
}

// CarryingAmmo 库存中是否有装备武器所用的弹药
func (s *CombatSystem) CarryingAmmo(character ecs.EntityID) bool {
	c := s.combat(character)
	w := s.equippedWeapon(c)
	if w == nil {
		return false
	}
	return c.AmmoInventory[w.AmmoType] > 0
}

// FireButtonPressed 按下开火键
func (s *CombatSystem) FireButtonPressed(character ecs.EntityID) {
	c := s.combat(character)
	if c == nil {
		return
	}
	c.FireButtonPressed = true
	s.FireWeapon(character)
}

// FireButtonReleased 松开开火键
func (s *CombatSystem) FireButtonReleased(character ecs.EntityID) {
	if c := s.combat(character); c != nil {
		c.FireButtonPressed = false
	}
}

// FireWeapon 开火一次
//
// 前置条件：装备了武器、弹匣有弹、状态为 Unoccupied。
// 不满足时返回 false，状态与弹药都不变。
func (s *CombatSystem) FireWeapon(character ecs.EntityID) bool {
	c := s.combat(character)
	weapon := s.equippedWeapon(c)
	if weapon == nil {
		return false
	}
	if c.State != components.CombatStateUnoccupied {
		s.log.Debug().Uint64("character", uint64(character)).Stringer("state", c.State).Msg("fire rejected")
		return false
	}
	if !weapon.HasAmmo() {
		return false
	}

	muzzle := s.muzzleLocation(c)
	s.presenter.PlayEffect(game.EffectFireSound, muzzle)
	s.sendBullet(character, c, muzzle)
	s.presenter.PlayAnimation(c.HipFireMontage, StartFireSection)
	s.crosshair.StartCrosshairBulletFire(character)

	weapon.DecrementAmmo()
	s.startFireTimer(character, c)

	s.record(game.CombatEvent{Kind: "fire", Entity: uint64(c.EquippedWeapon), Ammo: weapon.AmmoCount})
	return true
}

// muzzleLocation 枪口位置：优先使用武器的枪口挂点
func (s *CombatSystem) muzzleLocation(c *components.CombatComponent) utils.Vec3 {
	if s.scene != nil {
		if loc, ok := s.scene.SocketLocation(c.EquippedWeapon, c.BarrelSocket); ok {
			return loc
		}
	}
	if t, ok := ecs.GetComponent[*components.TransformComponent](s.entityManager, c.EquippedWeapon); ok {
		return t.Location
	}
	return utils.Vec3{}
}

// sendBullet 播放枪口火焰，并在弹道终点播放命中特效
func (s *CombatSystem) sendBullet(character ecs.EntityID, c *components.CombatComponent, muzzle utils.Vec3) {
	s.presenter.PlayEffect(game.EffectMuzzleFlash, muzzle)

	end, ok := s.GetBeamEndLocation(character, muzzle)
	if !ok {
		return
	}
	s.presenter.PlayEffect(game.EffectImpact, end)
	s.presenter.PlayEffect(game.EffectBeam, end)
}

// GetBeamEndLocation 计算弹道终点
//
// 先从准星检测；命中则以命中点为暂定终点，否则取射线末端。
// 再从枪口向暂定终点（略微延长）检测，枪口到准星之间的遮挡物优先。
func (s *CombatSystem) GetBeamEndLocation(character ecs.EntityID, muzzle utils.Vec3) (utils.Vec3, bool) {
	if s.scene == nil {
		return utils.Vec3{}, false
	}
	c := s.combat(character)
	viewer, ok := ecs.GetComponent[*components.ViewerComponent](s.entityManager, character)
	if c == nil || !ok {
		return utils.Vec3{}, false
	}

	end := viewer.CameraLocation.Add(utils.ForwardFromRotation(viewer.Yaw, viewer.Pitch).Scale(c.TraceLength))
	if hit := s.scene.TraceFromViewpoint(character, c.TraceLength); hit.Hit {
		end = hit.Point
	}

	extended := muzzle.Add(end.Sub(muzzle).Scale(beamOvershoot))
	if hit := s.scene.TraceSegment(muzzle, extended, c.EquippedWeapon); hit.Hit {
		end = hit.Point
	}
	return end, true
}

// startFireTimer 进入 FireInProgress，AutomaticFireRate 秒后回到 Unoccupied
func (s *CombatSystem) startFireTimer(character ecs.EntityID, c *components.CombatComponent) {
	c.State = components.CombatStateFireInProgress
	s.timers.SetTimer(&c.AutoFireTimer, character, c.AutomaticFireRate, false, func() {
		s.AutoFireReset(character)
	})
}

// autoFireEnabled 连发开关：玩家偏好优先
func (s *CombatSystem) autoFireEnabled(c *components.CombatComponent) bool {
	if s.settings != nil {
		return s.settings.GetSettings().AutoFire
	}
	return c.AutoFireEnabled
}

// AutoFireReset 射速计时结束
//
// 回到 Unoccupied；若弹匣有弹且开火键仍按住则继续开火，弹匣打空则自动换弹。
func (s *CombatSystem) AutoFireReset(character ecs.EntityID) {
	c := s.combat(character)
	if c == nil || c.State != components.CombatStateFireInProgress {
		return
	}
	c.State = components.CombatStateUnoccupied

	if s.WeaponHasAmmo(character) {
		if c.FireButtonPressed && s.autoFireEnabled(c) {
			s.FireWeapon(character)
		}
		return
	}
	s.ReloadWeapon(character)
}

// ReloadButtonPressed 按下换弹键
func (s *CombatSystem) ReloadButtonPressed(character ecs.EntityID) {
	s.ReloadWeapon(character)
}

// ReloadWeapon 开始换弹
//
// 前置条件：状态为 Unoccupied、装备了武器、弹匣未满、库存中有对应弹药。
func (s *CombatSystem) ReloadWeapon(character ecs.EntityID) bool {
	c := s.combat(character)
	weapon := s.equippedWeapon(c)
	if weapon == nil || c.State != components.CombatStateUnoccupied {
		return false
	}
	if weapon.IsFull() || !s.CarryingAmmo(character) {
		return false
	}

	c.State = components.CombatStateReloading
	s.presenter.PlayAnimation(c.ReloadMontage, weapon.ReloadMontageSection)

	s.log.Debug().Uint64("character", uint64(character)).Msg("reload started")
	s.record(game.CombatEvent{Kind: "reload_start", Entity: uint64(c.EquippedWeapon), Ammo: weapon.AmmoCount})
	return true
}

// GrabClip 换弹动画：手抓住弹匣
//
// 只在 Reloading 状态生效；换弹被打断后迟到的通知不会影响新装备的武器。
func (s *CombatSystem) GrabClip(character ecs.EntityID) {
	c := s.combat(character)
	if c == nil || c.State != components.CombatStateReloading {
		return
	}
	if w := s.equippedWeapon(c); w != nil {
		w.MovingClip = true
	}
}

// ReleaseClip 换弹动画：弹匣装回武器
func (s *CombatSystem) ReleaseClip(character ecs.EntityID) {
	c := s.combat(character)
	if c == nil || c.State != components.CombatStateReloading {
		return
	}
	if w := s.equippedWeapon(c); w != nil {
		w.MovingClip = false
	}
}

// FinishReloading 换弹动画结束：从库存补满弹匣
//
// 补充量 = min(弹匣空位, 库存)。不在 Reloading 状态时（例如换弹中武器被丢弃）为空操作。
func (s *CombatSystem) FinishReloading(character ecs.EntityID) {
	c := s.combat(character)
	if c == nil || c.State != components.CombatStateReloading {
		return
	}
	c.State = components.CombatStateUnoccupied

	weapon := s.equippedWeapon(c)
	if weapon == nil {
		return
	}
	weapon.MovingClip = false

	carried := c.AmmoInventory[weapon.AmmoType]
	if carried <= 0 {
		return
	}
	amount := weapon.MagazineCapacity - weapon.AmmoCount
	if carried < amount {
		amount = carried
	}
	weapon.ReloadAmmo(amount)
	c.AmmoInventory[weapon.AmmoType] = carried - amount

	s.log.Info().
		Uint64("character", uint64(character)).
		Int("ammo", weapon.AmmoCount).
		Int("inventory", c.AmmoInventory[weapon.AmmoType]).
		Msg("reload finished")
	s.record(game.CombatEvent{Kind: "reload_finish", Entity: uint64(c.EquippedWeapon), Ammo: weapon.AmmoCount})
}

// EquipWeapon 装备武器
//
// 角色已持有武器时返回 false（请使用 SwapWeapon），保证同一时刻最多一把装备中的武器。
func (s *CombatSystem) EquipWeapon(character, weaponID ecs.EntityID) bool {
	c := s.combat(character)
	if c == nil || !s.entityManager.EntityExists(weaponID) {
		return false
	}
	if !ecs.HasComponent[*components.WeaponComponent](s.entityManager, weaponID) {
		return false
	}
	if s.entityManager.EntityExists(c.EquippedWeapon) {
		return false
	}

	c.EquippedWeapon = weaponID
	if w, ok := ecs.GetComponent[*components.WeaponComponent](s.entityManager, weaponID); ok {
		w.IsFalling = false
		s.timers.ClearTimer(&w.ThrowTimer)
	}
	s.items.SetItemState(weaponID, components.ItemStateEquipped)
	s.attachWeapon(character, c)

	if t, ok := ecs.GetComponent[*components.TransformComponent](s.entityManager, weaponID); ok {
		s.presenter.PlayEffect(game.EffectEquipSound, t.Location)
	}
	s.log.Info().Uint64("character", uint64(character)).Uint64("weapon", uint64(weaponID)).Msg("weapon equipped")
	s.record(game.CombatEvent{Kind: "equip", Entity: uint64(weaponID)})
	return true
}

// DropWeapon 丢弃装备的武器：进入 Falling 并被抛出
func (s *CombatSystem) DropWeapon(character ecs.EntityID) bool {
	c := s.combat(character)
	if c == nil || !s.entityManager.EntityExists(c.EquippedWeapon) {
		return false
	}
	weaponID := c.EquippedWeapon
	c.EquippedWeapon = ecs.InvalidEntity

	// 换弹中途丢弃：之后到来的 FinishReloading 不再生效
	if c.State == components.CombatStateReloading {
		c.State = components.CombatStateUnoccupied
	}
	if w, ok := ecs.GetComponent[*components.WeaponComponent](s.entityManager, weaponID); ok {
		w.MovingClip = false
	}

	s.items.SetItemState(weaponID, components.ItemStateFalling)
	s.weapons.ThrowWeapon(weaponID)

	s.log.Info().Uint64("character", uint64(character)).Uint64("weapon", uint64(weaponID)).Msg("weapon dropped")
	s.record(game.CombatEvent{Kind: "drop", Entity: uint64(weaponID)})
	return true
}

// DropButtonPressed 按下丢弃键
func (s *CombatSystem) DropButtonPressed(character ecs.EntityID) {
	s.DropWeapon(character)
}

// SwapWeapon 丢弃当前武器并装备 weaponToSwap
func (s *CombatSystem) SwapWeapon(character, weaponToSwap ecs.EntityID) bool {
	if s.combat(character) == nil || !s.entityManager.EntityExists(weaponToSwap) {
		return false
	}
	if !ecs.HasComponent[*components.WeaponComponent](s.entityManager, weaponToSwap) {
		return false
	}
	s.DropWeapon(character)
	if !s.EquipWeapon(character, weaponToSwap) {
		return false
	}
	if s.trace != nil {
		s.trace.ClearTraceHitItems(character)
	}
	return true
}

// SelectButtonPressed 按下拾取键：当前瞄准的物品开始飞向镜头
func (s *CombatSystem) SelectButtonPressed(character ecs.EntityID) {
	if s.trace == nil {
		return
	}
	item := s.trace.TraceHitItem(character)
	if item == ecs.InvalidEntity {
		return
	}
	if !s.items.StartItemCurve(item, character) {
		return
	}
	if t, ok := ecs.GetComponent[*components.TransformComponent](s.entityManager, item); ok {
		s.presenter.PlayEffect(game.EffectPickupSound, t.Location)
	}
	s.record(game.CombatEvent{Kind: "select", Entity: uint64(item)})
}

// SelectButtonReleased 松开拾取键
func (s *CombatSystem) SelectButtonReleased(character ecs.EntityID) {}

// GetPickupItem 物品插值结束：武器与当前武器交换，弹药并入库存，其它物品直接吸收
func (s *CombatSystem) GetPickupItem(character, item ecs.EntityID) {
	if !s.entityManager.EntityExists(item) {
		return
	}
	if s.combat(character) == nil {
		// 接收者已不存在，物品回到世界中
		s.items.SetItemState(item, components.ItemStatePickup)
		return
	}

	if ecs.HasComponent[*components.WeaponComponent](s.entityManager, item) {
		s.SwapWeapon(character, item)
		return
	}
	if ecs.HasComponent[*components.AmmoComponent](s.entityManager, item) {
		s.PickupAmmo(character, item)
		return
	}

	s.log.Info().Uint64("character", uint64(character)).Uint64("item", uint64(item)).Msg("item absorbed")
	s.record(game.CombatEvent{Kind: "absorb", Entity: uint64(item)})
	s.entityManager.DestroyEntity(item)
}

// PickupAmmo 把弹药拾取物并入库存并销毁它
//
// 装备中的武器弹匣为空且弹药类型一致时立即换弹。
func (s *CombatSystem) PickupAmmo(character, item ecs.EntityID) {
	c := s.combat(character)
	ammo, ok := ecs.GetComponent[*components.AmmoComponent](s.entityManager, item)
	if c == nil || !ok {
		return
	}
	c.AmmoInventory[ammo.AmmoType] += ammo.Amount

	if w := s.equippedWeapon(c); w != nil && w.AmmoType == ammo.AmmoType && !w.HasAmmo() {
		s.ReloadWeapon(character)
	}

	s.log.Info().
		Uint64("character", uint64(character)).
		Stringer("ammo", ammo.AmmoType).
		Int("amount", ammo.Amount).
		Msg("ammo picked up")
	s.record(game.CombatEvent{Kind: "ammo", Entity: uint64(item), Ammo: ammo.Amount, Detail: ammo.AmmoType.String()})
	s.entityManager.DestroyEntity(item)
}

// attachWeapon 把武器放到角色手部挂点，朝向与镜头一致
func (s *CombatSystem) attachWeapon(character ecs.EntityID, c *components.CombatComponent) {
	weaponTransform, ok := ecs.GetComponent[*components.TransformComponent](s.entityManager, c.EquippedWeapon)
	if !ok {
		return
	}
	charTransform, ok := ecs.GetComponent[*components.TransformComponent](s.entityManager, character)
	if !ok {
		return
	}

	loc := charTransform.Location
	if s.scene != nil {
		if socket, ok := s.scene.SocketLocation(character, c.HandSocket); ok {
			loc = socket
		}
	}
	weaponTransform.Location = loc
	weaponTransform.Yaw = charTransform.Yaw
	if viewer, ok := ecs.GetComponent[*components.ViewerComponent](s.entityManager, character); ok {
		weaponTransform.Yaw = viewer.Yaw
	}
	weaponTransform.Pitch = 0
	weaponTransform.Roll = 0
	weaponTransform.Scale = 1
}

// Update 装备中的武器跟随角色
func (s *CombatSystem) Update(deltaTime float64) {
	for _, id := range ecs.GetEntitiesWith1[*components.CombatComponent](s.entityManager) {
		c := s.combat(id)
		if c == nil || !s.entityManager.EntityExists(c.EquippedWeapon) {
			continue
		}
		s.attachWeapon(id, c)
	}
}
