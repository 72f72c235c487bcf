package systems

import (
	"math/rand/v2"

	"github.com/decker502/shooter/pkg/components"
	"github.com/decker502/shooter/pkg/config"
	"github.com/decker502/shooter/pkg/curves"
	"github.com/decker502/shooter/pkg/ecs"
	"github.com/decker502/shooter/pkg/entities"
	"github.com/decker502/shooter/pkg/game"
	"github.com/decker502/shooter/pkg/utils"
)

// fakeScene 记录所有场景请求，射线结果由测试预先设置
type fakeScene struct {
	viewHit  map[ecs.EntityID]game.TraceResult
	segHit   game.TraceResult
	sockets  map[string]utils.Vec3
	impulses map[ecs.EntityID][]utils.Vec3
	upright  map[ecs.EntityID]int
}

func newFakeScene() *fakeScene {
	return &fakeScene{
		viewHit:  make(map[ecs.EntityID]game.TraceResult),
		sockets:  make(map[string]utils.Vec3),
		impulses: make(map[ecs.EntityID][]utils.Vec3),
		upright:  make(map[ecs.EntityID]int),
	}
}

func (f *fakeScene) aimAt(viewer, item ecs.EntityID) {
	f.viewHit[viewer] = game.TraceResult{Hit: true, Entity: item}
}

func (f *fakeScene) TraceFromViewpoint(viewer ecs.EntityID, length float64) game.TraceResult {
	return f.viewHit[viewer]
}

func (f *fakeScene) TraceSegment(start, end utils.Vec3, ignore ecs.EntityID) game.TraceResult {
	return f.segHit
}

func (f *fakeScene) SocketLocation(entity ecs.EntityID, socket string) (utils.Vec3, bool) {
	loc, ok := f.sockets[socket]
	return loc, ok
}

func (f *fakeScene) ApplyImpulse(entity ecs.EntityID, impulse utils.Vec3) {
	f.impulses[entity] = append(f.impulses[entity], impulse)
}

func (f *fakeScene) SetUpright(entity ecs.EntityID) {
	f.upright[entity]++
}

type widgetCall struct {
	show   bool
	entity ecs.EntityID
}

type animCall struct {
	montage, section string
}

// fakePresenter 按顺序记录表现请求
type fakePresenter struct {
	widgets []widgetCall
	effects []game.EffectKind
	anims   []animCall
}

func (p *fakePresenter) ShowPickupWidget(entity ecs.EntityID, info game.WidgetInfo) {
	p.widgets = append(p.widgets, widgetCall{show: true, entity: entity})
}

func (p *fakePresenter) HidePickupWidget(entity ecs.EntityID) {
	p.widgets = append(p.widgets, widgetCall{show: false, entity: entity})
}

func (p *fakePresenter) PlayEffect(kind game.EffectKind, at utils.Vec3) {
	p.effects = append(p.effects, kind)
}

func (p *fakePresenter) PlayAnimation(montageID, sectionID string) {
	p.anims = append(p.anims, animCall{montage: montageID, section: sectionID})
}

func (p *fakePresenter) countEffect(kind game.EffectKind) int {
	n := 0
	for _, k := range p.effects {
		if k == kind {
			n++
		}
	}
	return n
}

// combatRig 组装一套完整的战斗系统
type combatRig struct {
	em        *ecs.EntityManager
	timers    *game.TimerManager
	scene     *fakeScene
	presenter *fakePresenter
	lib       *curves.Library
	cfg       *config.ShooterConfig

	items     *ItemSystem
	weapons   *WeaponSystem
	crosshair *CrosshairSystem
	trace     *ItemTraceSystem
	area      *AreaSphereSystem
	combat    *CombatSystem

	character ecs.EntityID
}

func newCombatRig() *combatRig {
	r := &combatRig{
		em:        ecs.NewEntityManager(),
		scene:     newFakeScene(),
		presenter: &fakePresenter{},
		lib:       curves.NewLibrary(),
		cfg:       config.DefaultShooterConfig(),
	}
	if err := r.cfg.BuildCurves(r.lib); err != nil {
		panic(err)
	}
	r.timers = game.NewTimerManager(r.em)
	r.items = NewItemSystem(r.em, r.timers, r.lib, r.presenter)
	r.weapons = NewWeaponSystem(r.em, r.timers, r.scene, r.items)
	r.weapons.SetRand(rand.New(rand.NewPCG(1, 2)))
	r.crosshair = NewCrosshairSystem(r.em, r.timers, r.cfg.Crosshair)
	r.trace = NewItemTraceSystem(r.em, r.scene, r.items)
	r.area = NewAreaSphereSystem(r.em, r.trace)
	r.combat = NewCombatSystem(r.em, r.timers, r.scene, r.presenter, r.items, r.weapons, r.crosshair, r.trace)
	r.character = entities.NewCharacterEntity(r.em, r.cfg, utils.Vec3{}, 0)
	return r
}

// spawnWeapon 按配置名创建武器
func (r *combatRig) spawnWeapon(name string, loc utils.Vec3) ecs.EntityID {
	w, err := r.cfg.Weapon(name)
	if err != nil {
		panic(err)
	}
	id, err := entities.NewWeaponEntity(r.em, w, r.cfg.Items, loc, 0)
	if err != nil {
		panic(err)
	}
	return id
}

// equipDefault 创建并装备默认冲锋枪
func (r *combatRig) equipDefault() ecs.EntityID {
	id := r.spawnWeapon("smg", utils.Vec3{})
	if !r.combat.EquipWeapon(r.character, id) {
		panic("equip failed")
	}
	return id
}

// step 按场景顺序推进一帧
func (r *combatRig) step(dt float64) {
	r.timers.Advance(dt)
	r.combat.Update(dt)
	r.crosshair.Update(dt)
	r.area.Update(dt)
	r.trace.Update(dt)
	r.items.Update(dt)
	r.weapons.Update(dt)
	r.em.RemoveMarkedEntities()
}

// frames 以固定 dt 推进 n 帧
func (r *combatRig) frames(n int, dt float64) {
	for i := 0; i < n; i++ {
		r.step(dt)
	}
}

func (r *combatRig) weapon(id ecs.EntityID) *components.WeaponComponent {
	w, _ := ecs.GetComponent[*components.WeaponComponent](r.em, id)
	return w
}

func (r *combatRig) state(id ecs.EntityID) components.ItemState {
	s, _ := r.items.GetItemState(id)
	return s
}
