package systems

import (
	"github.com/decker502/shooter/pkg/components"
	"github.com/decker502/shooter/pkg/ecs"
	"github.com/decker502/shooter/pkg/game"
	"github.com/decker502/shooter/pkg/logger"
	"github.com/decker502/shooter/pkg/utils"
	"github.com/rs/zerolog"
)

// PickupHandler 物品插值结束后通知持有者接收物品
type PickupHandler func(character, item ecs.EntityID)

// ItemSystem 管理可拾取物品的状态机与飞向镜头的插值
//
// 状态转换只能通过 SetItemState 完成，它同时更新 ItemCollisionComponent，
// 保证"状态"与"碰撞/可见性开关"始终一致。
type ItemSystem struct {
	entityManager *ecs.EntityManager
	timers        *game.TimerManager
	curves        game.CurveSampler
	presenter     game.Presenter
	onPickedUp    PickupHandler
	log           zerolog.Logger
}

// NewItemSystem 创建物品系统
//
// 参数：
//   - em: 实体管理器
//   - timers: 计时器（插值结束回调）
//   - curves: 曲线采样器，提供插值进度与缩放
//   - presenter: 拾取提示面板的显示/隐藏
func NewItemSystem(em *ecs.EntityManager, timers *game.TimerManager, curves game.CurveSampler, presenter game.Presenter) *ItemSystem {
	if presenter == nil {
		presenter = game.NopPresenter{}
	}
	return &ItemSystem{
		entityManager: em,
		timers:        timers,
		curves:        curves,
		presenter:     presenter,
		log:           logger.For("ItemSystem"),
	}
}

// SetPickupHandler 设置插值结束时的接收者回调（通常是 CombatSystem.GetPickupItem）
func (s *ItemSystem) SetPickupHandler(fn PickupHandler) {
	s.onPickedUp = fn
}

// GetItemState 返回物品状态；实体不存在时 ok 为 false
func (s *ItemSystem) GetItemState(id ecs.EntityID) (components.ItemState, bool) {
	item, ok := ecs.GetComponent[*components.ItemComponent](s.entityManager, id)
	if !ok || !s.entityManager.EntityExists(id) {
		return components.ItemStatePickup, false
	}
	return item.State, true
}

// SetItemState 切换物品状态并应用该状态的属性
//
// 返回 false 表示实体不存在或不是物品。
func (s *ItemSystem) SetItemState(id ecs.EntityID, state components.ItemState) bool {
	if !s.entityManager.EntityExists(id) {
		return false
	}
	item, ok := ecs.GetComponent[*components.ItemComponent](s.entityManager, id)
	if !ok {
		return false
	}

	prev := item.State
	item.State = state
	s.applyStateProperties(id, state)

	s.log.Debug().
		Uint64("item", uint64(id)).
		Stringer("from", prev).
		Stringer("to", state).
		Msg("item state changed")
	return true
}

// applyStateProperties 按状态设置可见性、物理与碰撞开关
func (s *ItemSystem) applyStateProperties(id ecs.EntityID, state components.ItemState) {
	collision, ok := ecs.GetComponent[*components.ItemCollisionComponent](s.entityManager, id)
	if !ok {
		return
	}

	// 除 Pickup 外提示面板一律隐藏；Pickup 状态下由准星扫描决定显示
	s.HideWidget(id)

	switch state {
	case components.ItemStatePickup:
		collision.MeshVisible = true
		collision.SimulatePhysics = false
		collision.AreaSphereEnabled = true
		collision.CollisionBoxEnabled = true
	case components.ItemStateEquipInterping:
		collision.MeshVisible = true
		collision.SimulatePhysics = false
		collision.AreaSphereEnabled = false
		collision.CollisionBoxEnabled = false
	case components.ItemStatePickedUp:
		collision.MeshVisible = false
		collision.SimulatePhysics = false
		collision.AreaSphereEnabled = false
		collision.CollisionBoxEnabled = false
	case components.ItemStateEquipped:
		collision.MeshVisible = true
		collision.SimulatePhysics = false
		collision.AreaSphereEnabled = false
		collision.CollisionBoxEnabled = false
	case components.ItemStateFalling:
		collision.MeshVisible = true
		collision.SimulatePhysics = true
		collision.AreaSphereEnabled = false
		collision.CollisionBoxEnabled = false
	}
}

// ShowWidget 显示物品的拾取提示；已显示时不重复通知
func (s *ItemSystem) ShowWidget(id ecs.EntityID) {
	if !s.entityManager.EntityExists(id) {
		return
	}
	collision, ok := ecs.GetComponent[*components.ItemCollisionComponent](s.entityManager, id)
	if !ok || collision.WidgetVisible {
		return
	}
	collision.WidgetVisible = true

	info := game.WidgetInfo{}
	if item, ok := ecs.GetComponent[*components.ItemComponent](s.entityManager, id); ok {
		info.Name = item.Name
		info.Count = item.Count
		info.ActiveStars = append([]bool(nil), item.ActiveStars...)
	}
	s.presenter.ShowPickupWidget(id, info)
}

// HideWidget 隐藏物品的拾取提示；已隐藏或实体不存在时为空操作
func (s *ItemSystem) HideWidget(id ecs.EntityID) {
	if !s.entityManager.EntityExists(id) {
		return
	}
	collision, ok := ecs.GetComponent[*components.ItemCollisionComponent](s.entityManager, id)
	if !ok || !collision.WidgetVisible {
		return
	}
	collision.WidgetVisible = false
	s.presenter.HidePickupWidget(id)
}

// SetRarity 设置物品稀有度（重新计算星级）
func (s *ItemSystem) SetRarity(id ecs.EntityID, rarity components.ItemRarity) bool {
	item, ok := ecs.GetComponent[*components.ItemComponent](s.entityManager, id)
	if !ok {
		return false
	}
	item.SetRarity(rarity)
	return true
}

// InterpTargetLocation 物品飞向的目标点：镜头前方 InterpDistance、上方 InterpElevation
func (s *ItemSystem) InterpTargetLocation(viewer ecs.EntityID) (utils.Vec3, bool) {
	v, ok := ecs.GetComponent[*components.ViewerComponent](s.entityManager, viewer)
	if !ok || !s.entityManager.EntityExists(viewer) {
		return utils.Vec3{}, false
	}
	forward := utils.ForwardFromRotation(v.Yaw, v.Pitch)
	return v.CameraLocation.
		Add(forward.Scale(v.InterpDistance)).
		Add(utils.UpVector.Scale(v.InterpElevation)), true
}

// StartItemCurve 开始把物品插值到 viewer 的镜头前
//
// 只有 Pickup 状态的物品可以开始插值；其它状态返回 false 且不产生任何副作用。
// 起点、yaw 偏移与水平偏移在此捕获一次，插值期间保持不变。
func (s *ItemSystem) StartItemCurve(id, viewer ecs.EntityID) bool {
	if !s.entityManager.EntityExists(id) {
		return false
	}
	item, ok := ecs.GetComponent[*components.ItemComponent](s.entityManager, id)
	if !ok || item.State != components.ItemStatePickup {
		return false
	}
	transform, ok := ecs.GetComponent[*components.TransformComponent](s.entityManager, id)
	if !ok {
		return false
	}
	interp, ok := ecs.GetComponent[*components.ItemInterpComponent](s.entityManager, id)
	if !ok {
		return false
	}
	viewerComp, ok := ecs.GetComponent[*components.ViewerComponent](s.entityManager, viewer)
	if !ok {
		return false
	}
	target, ok := s.InterpTargetLocation(viewer)
	if !ok {
		return false
	}

	interp.Viewer = viewer
	interp.StartLocation = transform.Location
	interp.OffsetX = transform.Location.X - target.X
	interp.OffsetY = transform.Location.Y - target.Y
	interp.YawOffset = utils.NormalizeAxis(transform.Yaw - viewerComp.Yaw)
	interp.IsInterping = true

	s.SetItemState(id, components.ItemStateEquipInterping)

	s.timers.SetTimer(&interp.Timer, id, item.InterpDuration, false, func() {
		s.FinishInterping(id)
	})

	s.log.Debug().Uint64("item", uint64(id)).Uint64("viewer", uint64(viewer)).Msg("item interp started")
	return true
}

// interpProgress 在 elapsed 处采样进度曲线
func (s *ItemSystem) interpProgress(item *components.ItemComponent, elapsed float64) float64 {
	if s.curves == nil || item.ZCurve == "" {
		if item.InterpDuration <= 0 {
			return 1
		}
		return utils.Clamp(elapsed/item.InterpDuration, 0, 1)
	}
	return s.curves.Sample(item.ZCurve, elapsed)
}

// interpLocation 计算进度 p 时的位置
func interpLocation(interp *components.ItemInterpComponent, target utils.Vec3, p float64) utils.Vec3 {
	return utils.Vec3{
		X: target.X + interp.OffsetX*(1-p),
		Y: target.Y + interp.OffsetY*(1-p),
		Z: utils.Lerp(interp.StartLocation.Z, target.Z, p),
	}
}

// Update 推进所有正在插值的物品
func (s *ItemSystem) Update(deltaTime float64) {
	entities := ecs.GetEntitiesWith3[
		*components.ItemComponent,
		*components.ItemInterpComponent,
		*components.TransformComponent,
	](s.entityManager)

	for _, id := range entities {
		if !s.entityManager.EntityExists(id) {
			continue
		}
		interp, _ := ecs.GetComponent[*components.ItemInterpComponent](s.entityManager, id)
		if !interp.IsInterping {
			continue
		}
		s.tickInterp(id)
	}
}

func (s *ItemSystem) tickInterp(id ecs.EntityID) {
	item, _ := ecs.GetComponent[*components.ItemComponent](s.entityManager, id)
	interp, _ := ecs.GetComponent[*components.ItemInterpComponent](s.entityManager, id)
	transform, _ := ecs.GetComponent[*components.TransformComponent](s.entityManager, id)

	target, ok := s.InterpTargetLocation(interp.Viewer)
	if !ok {
		// 观察者已消失：放弃插值，物品留在原地可再次拾取
		s.log.Warn().Uint64("item", uint64(id)).Msg("interp viewer gone, aborting")
		s.abortInterp(id)
		return
	}

	elapsed := s.timers.GetTimerElapsed(interp.Timer)
	if elapsed < 0 {
		return
	}

	p := s.interpProgress(item, elapsed)
	transform.Location = interpLocation(interp, target, p)

	if viewer, ok := ecs.GetComponent[*components.ViewerComponent](s.entityManager, interp.Viewer); ok {
		transform.Yaw = utils.NormalizeAxis(viewer.Yaw + interp.YawOffset)
	}
	if item.ScaleCurve != "" && s.curves != nil {
		transform.Scale = s.curves.Sample(item.ScaleCurve, elapsed)
	}
}

func (s *ItemSystem) abortInterp(id ecs.EntityID) {
	interp, ok := ecs.GetComponent[*components.ItemInterpComponent](s.entityManager, id)
	if !ok {
		return
	}
	s.timers.ClearTimer(&interp.Timer)
	interp.IsInterping = false
	interp.Viewer = ecs.InvalidEntity
	if transform, ok := ecs.GetComponent[*components.TransformComponent](s.entityManager, id); ok {
		transform.Scale = 1
	}
	s.SetItemState(id, components.ItemStatePickup)
}

// FinishInterping 插值计时结束：物品到达目标点，进入 PickedUp 并交给持有者
//
// 物品在此之前被销毁时为空操作。
func (s *ItemSystem) FinishInterping(id ecs.EntityID) {
	if !s.entityManager.EntityExists(id) {
		return
	}
	interp, ok := ecs.GetComponent[*components.ItemInterpComponent](s.entityManager, id)
	if !ok || !interp.IsInterping {
		return
	}

	viewer := interp.Viewer
	target, ok := s.InterpTargetLocation(viewer)
	if !ok {
		s.abortInterp(id)
		return
	}

	if transform, ok := ecs.GetComponent[*components.TransformComponent](s.entityManager, id); ok {
		transform.Location = interpLocation(interp, target, 1)
		transform.Scale = 1
	}
	interp.IsInterping = false
	interp.Timer = game.TimerHandle{}

	s.SetItemState(id, components.ItemStatePickedUp)
	s.log.Debug().Uint64("item", uint64(id)).Uint64("viewer", uint64(viewer)).Msg("item interp finished")

	if s.onPickedUp != nil {
		s.onPickedUp(viewer, id)
	}
}
