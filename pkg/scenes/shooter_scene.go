package scenes

import (
	"fmt"
	"math"

	"github.com/decker502/shooter/pkg/components"
	"github.com/decker502/shooter/pkg/config"
	"github.com/decker502/shooter/pkg/curves"
	"github.com/decker502/shooter/pkg/ecs"
	"github.com/decker502/shooter/pkg/entities"
	"github.com/decker502/shooter/pkg/game"
	"github.com/decker502/shooter/pkg/logger"
	"github.com/decker502/shooter/pkg/physics"
	"github.com/decker502/shooter/pkg/systems"
	"github.com/decker502/shooter/pkg/utils"
	"github.com/rs/zerolog"
)

// 靶场参数
const (
	DefaultArenaHalfSize = 1500.0
	wallThickness        = 10.0
	itemBodyRadius       = 20.0
	jumpSpeed            = 420.0
	characterGravity     = -980.0
)

// 挂点的局部偏移
var (
	handSocketOffset   = utils.Vec3{X: 30, Y: 15, Z: 50}
	barrelSocketOffset = utils.Vec3{X: 45, Z: 5}
)

// Input 一帧的玩家输入，由窗口层或测试填写
//
// *Pressed/*Released 是边沿事件，只在发生的那一帧为 true。
type Input struct {
	MoveForward float64 // [-1, 1]
	MoveRight   float64 // [-1, 1]
	TurnRate    float64 // 键盘转向 [-1, 1]
	LookUpRate  float64
	MouseDX     float64 // 鼠标位移（度）
	MouseDY     float64
	Jump        bool

	FirePressed    bool
	FireReleased   bool
	AimPressed     bool
	AimReleased    bool
	ReloadPressed  bool
	SelectPressed  bool
	SelectReleased bool
	DropPressed    bool
}

// Options 靶场创建参数
type Options struct {
	Config   *config.ShooterConfig // nil 时使用默认配置
	Settings *game.SettingsManager // 可为 nil
	Journal  *game.CombatJournal   // 可为 nil
	// ArenaHalfSize 正方形场地的半边长；<= 0 时使用默认值
	ArenaHalfSize float64
	// Empty 为 true 时不摆放默认物品（测试与回放使用）
	Empty bool
}

// ShooterScene 射击靶场：一个玩家、若干可拾取的武器与弹药
//
// 实现 game.Stage 与 game.Saveable。
type ShooterScene struct {
	em        *ecs.EntityManager
	timers    *game.TimerManager
	world     *physics.World
	curves    *curves.Library
	cfg       *config.ShooterConfig
	settings  *game.SettingsManager
	journal   *game.CombatJournal
	presenter *scenePresenter

	items     *systems.ItemSystem
	weapons   *systems.WeaponSystem
	crosshair *systems.CrosshairSystem
	trace     *systems.ItemTraceSystem
	area      *systems.AreaSphereSystem
	combat    *systems.CombatSystem
	aim       *systems.AimSystem

	player    ecs.EntityID
	halfSize  float64
	walls     [][2]utils.Vec3
	input     Input
	velocityZ float64

	log zerolog.Logger
}

// NewShooterScene 创建靶场并为玩家装备默认武器
func NewShooterScene(opts Options) (*ShooterScene, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultShooterConfig()
	}
	halfSize := opts.ArenaHalfSize
	if halfSize <= 0 {
		halfSize = DefaultArenaHalfSize
	}

	em := ecs.NewEntityManager()
	s := &ShooterScene{
		em:       em,
		timers:   game.NewTimerManager(em),
		world:    physics.NewWorld(em),
		curves:   curves.NewLibrary(),
		cfg:      cfg,
		settings: opts.Settings,
		journal:  opts.Journal,
		halfSize: halfSize,
		log:      logger.For("ShooterScene"),
	}
	if err := cfg.BuildCurves(s.curves); err != nil {
		return nil, fmt.Errorf("build curves: %w", err)
	}
	s.presenter = newScenePresenter(s)

	s.items = systems.NewItemSystem(em, s.timers, s.curves, s.presenter)
	s.weapons = systems.NewWeaponSystem(em, s.timers, s.world, s.items)
	s.crosshair = systems.NewCrosshairSystem(em, s.timers, cfg.Crosshair)
	s.trace = systems.NewItemTraceSystem(em, s.world, s.items)
	s.area = systems.NewAreaSphereSystem(em, s.trace)
	s.combat = systems.NewCombatSystem(em, s.timers, s.world, s.presenter, s.items, s.weapons, s.crosshair, s.trace)
	s.combat.SetSettings(opts.Settings)
	s.combat.SetJournal(opts.Journal)
	s.aim = systems.NewAimSystem(em, opts.Settings)

	s.buildWalls()

	s.player = entities.NewCharacterEntity(em, cfg, utils.Vec3{}, 0)
	s.world.SetSocket(s.player, entities.RightHandSocket, handSocketOffset)

	if cfg.Combat.DefaultWeapon != "" {
		weapon, err := s.SpawnWeapon(cfg.Combat.DefaultWeapon, utils.Vec3{}, 0)
		if err != nil {
			return nil, err
		}
		s.combat.EquipWeapon(s.player, weapon)
	}

	if !opts.Empty {
		if err := s.populate(); err != nil {
			return nil, err
		}
	}

	s.log.Info().
		Uint64("player", uint64(s.player)).
		Float64("halfSize", halfSize).
		Int("entities", em.EntityCount()).
		Msg("shooter scene created")
	return s, nil
}

func (s *ShooterScene) buildWalls() {
	h := s.halfSize
	corners := []utils.Vec3{{X: -h, Y: -h}, {X: h, Y: -h}, {X: h, Y: h}, {X: -h, Y: h}}
	for i := range corners {
		a, b := corners[i], corners[(i+1)%len(corners)]
		s.world.AddWall(a, b, wallThickness)
		s.walls = append(s.walls, [2]utils.Vec3{a, b})
	}
}

// populate 摆放默认的可拾取物：配置中的其它武器、两种弹药、一件普通物品
func (s *ShooterScene) populate() error {
	angle := 0.0
	for _, name := range s.cfg.WeaponNames() {
		if name == s.cfg.Combat.DefaultWeapon {
			continue
		}
		loc := utils.ForwardFromRotation(angle, 0).Scale(400)
		if _, err := s.SpawnWeapon(name, loc, angle+90); err != nil {
			return err
		}
		angle += 60
	}
	s.SpawnAmmo(components.AmmoType9mm, 30, utils.Vec3{X: 250, Y: -300})
	s.SpawnAmmo(components.AmmoTypeAR, 60, utils.Vec3{X: -250, Y: 300})
	s.SpawnItem("Scope", components.RarityLegendary, utils.Vec3{X: -400, Y: -200})
	return nil
}

// SpawnWeapon 按配置名生成武器并登记刚体与枪口挂点
func (s *ShooterScene) SpawnWeapon(name string, location utils.Vec3, yaw float64) (ecs.EntityID, error) {
	w, err := s.cfg.Weapon(name)
	if err != nil {
		return ecs.InvalidEntity, err
	}
	id, err := entities.NewWeaponEntity(s.em, w, s.cfg.Items, location, yaw)
	if err != nil {
		return ecs.InvalidEntity, err
	}
	s.world.AddItemBody(id, itemBodyRadius)
	s.world.SetSocket(id, entities.BarrelSocket, barrelSocketOffset)
	return id, nil
}

// SpawnAmmo 生成弹药拾取物
func (s *ShooterScene) SpawnAmmo(ammo components.AmmoType, amount int, location utils.Vec3) ecs.EntityID {
	id := entities.NewAmmoEntity(s.em, ammo, amount, s.cfg.Items, location)
	s.world.AddItemBody(id, itemBodyRadius)
	return id
}

// SpawnItem 生成普通物品
func (s *ShooterScene) SpawnItem(name string, rarity components.ItemRarity, location utils.Vec3) ecs.EntityID {
	id := entities.NewItemEntity(s.em, name, rarity, s.cfg.Items, location)
	s.world.AddItemBody(id, itemBodyRadius)
	return id
}

// ApplyConfig 热重载：替换曲线与准星参数
//
// 已生成的武器保留原有数值，新生成的武器使用新配置。
func (s *ShooterScene) ApplyConfig(cfg *config.ShooterConfig) error {
	if cfg == nil {
		return fmt.Errorf("apply config: nil config")
	}
	if err := cfg.BuildCurves(s.curves); err != nil {
		return fmt.Errorf("apply config: %w", err)
	}
	s.crosshair.SetConfig(cfg.Crosshair)
	s.cfg = cfg
	s.log.Info().Strs("weapons", cfg.WeaponNames()).Msg("config applied")
	return nil
}

// SetInput 设置下一帧的输入
func (s *ShooterScene) SetInput(in Input) {
	s.input = in
}

// Update 实现 game.Stage
func (s *ShooterScene) Update(deltaTime float64) {
	s.applyInput(deltaTime)
	s.input = Input{}

	s.timers.Advance(deltaTime)
	s.journal.Tick(deltaTime)

	s.move(deltaTime)
	s.aim.Update(deltaTime)
	s.combat.Update(deltaTime)
	s.crosshair.Update(deltaTime)
	s.area.Update(deltaTime)
	s.trace.Update(deltaTime)
	s.items.Update(deltaTime)
	s.weapons.Update(deltaTime)
	s.world.Step(deltaTime)
	s.presenter.tick(deltaTime)

	s.em.RemoveMarkedEntities()
}

func (s *ShooterScene) applyInput(deltaTime float64) {
	in := s.input
	p := s.player

	if in.AimPressed {
		s.aim.AimingButtonPressed(p)
	}
	if in.AimReleased {
		s.aim.AimingButtonReleased(p)
	}
	if in.MouseDX != 0 {
		s.aim.Turn(p, in.MouseDX)
	}
	if in.MouseDY != 0 {
		s.aim.LookUp(p, in.MouseDY)
	}
	if in.TurnRate != 0 {
		s.aim.TurnAtRate(p, in.TurnRate, deltaTime)
	}
	if in.LookUpRate != 0 {
		s.aim.LookUpAtRate(p, in.LookUpRate, deltaTime)
	}

	if movement, ok := ecs.GetComponent[*components.MovementComponent](s.em, p); ok {
		viewer, _ := ecs.GetComponent[*components.ViewerComponent](s.em, p)
		dir := utils.ForwardFromRotation(viewer.Yaw, 0).Scale(in.MoveForward).
			Add(utils.RightFromYaw(viewer.Yaw).Scale(in.MoveRight))
		if dir.Length2D() > 1 {
			dir = dir.Normalize()
		}
		movement.Velocity.X = dir.X * movement.MaxWalkSpeed
		movement.Velocity.Y = dir.Y * movement.MaxWalkSpeed
		if in.Jump && !movement.IsFalling {
			movement.IsFalling = true
			s.velocityZ = jumpSpeed
		}
	}

	if in.FirePressed {
		s.combat.FireButtonPressed(p)
	}
	if in.FireReleased {
		s.combat.FireButtonReleased(p)
	}
	if in.ReloadPressed {
		s.combat.ReloadButtonPressed(p)
	}
	if in.SelectPressed {
		s.combat.SelectButtonPressed(p)
	}
	if in.SelectReleased {
		s.combat.SelectButtonReleased(p)
	}
	if in.DropPressed {
		s.combat.DropButtonPressed(p)
	}
}

// move 积分玩家位置，限制在场地内
func (s *ShooterScene) move(deltaTime float64) {
	transform, ok := ecs.GetComponent[*components.TransformComponent](s.em, s.player)
	if !ok {
		return
	}
	movement, _ := ecs.GetComponent[*components.MovementComponent](s.em, s.player)

	limit := s.halfSize - wallThickness
	transform.Location.X = utils.Clamp(transform.Location.X+movement.Velocity.X*deltaTime, -limit, limit)
	transform.Location.Y = utils.Clamp(transform.Location.Y+movement.Velocity.Y*deltaTime, -limit, limit)

	if movement.IsFalling {
		s.velocityZ += characterGravity * deltaTime
		transform.Location.Z += s.velocityZ * deltaTime
		if transform.Location.Z <= 0 {
			transform.Location.Z = 0
			s.velocityZ = 0
			movement.IsFalling = false
		}
	}
	movement.Velocity.Z = s.velocityZ
}

// SaveOnExit 实现 game.Saveable：保存玩家设置并关闭战斗日志
func (s *ShooterScene) SaveOnExit() bool {
	ok := true
	if s.settings != nil {
		if err := s.settings.Save(); err != nil {
			s.log.Error().Err(err).Msg("failed to save settings")
			ok = false
		}
	}
	if err := s.journal.Close(); err != nil {
		s.log.Error().Err(err).Msg("failed to close combat journal")
		ok = false
	}
	return ok
}

// HUD 界面上显示的战斗信息
type HUD struct {
	WeaponName string
	Ammo       int
	Magazine   int
	Carried    int
	AmmoType   string
	State      components.CombatState
	Spread     float64
	FOV        float64
	Target     string
	Animation  string

	// ReloadRemaining 换弹动画剩余时间（秒）；未在换弹时为 0
	ReloadRemaining float64
}

// HUD 汇总玩家当前的战斗信息
func (s *ShooterScene) HUD() HUD {
	hud := HUD{
		State:     s.combat.GetCombatState(s.player),
		Animation: s.presenter.lastAnimation,
	}
	if weapon := s.combat.EquippedWeapon(s.player); weapon != ecs.InvalidEntity {
		item, _ := ecs.GetComponent[*components.ItemComponent](s.em, weapon)
		w, _ := ecs.GetComponent[*components.WeaponComponent](s.em, weapon)
		hud.WeaponName = item.Name
		hud.Ammo = w.AmmoCount
		hud.Magazine = w.MagazineCapacity
		hud.AmmoType = w.AmmoType.String()
		hud.Carried = s.combat.AmmoInInventory(s.player, w.AmmoType)
	}
	if c, ok := ecs.GetComponent[*components.CrosshairComponent](s.em, s.player); ok {
		hud.Spread = c.SpreadMultiplier
	}
	if a, ok := ecs.GetComponent[*components.AimComponent](s.em, s.player); ok {
		hud.FOV = a.CurrentFOV
	}
	if hud.State == components.CombatStateReloading {
		if remaining := s.timers.GetTimerRemaining(s.presenter.finishTimer); remaining > 0 {
			hud.ReloadRemaining = remaining
		}
	}
	if target := s.trace.TraceHitItem(s.player); target != ecs.InvalidEntity {
		if item, ok := ecs.GetComponent[*components.ItemComponent](s.em, target); ok {
			hud.Target = item.Name
		}
	}
	return hud
}

// EntityManager 返回实体管理器
func (s *ShooterScene) EntityManager() *ecs.EntityManager { return s.em }

// Player 返回玩家实体
func (s *ShooterScene) Player() ecs.EntityID { return s.player }

// Combat 返回战斗系统
func (s *ShooterScene) Combat() *systems.CombatSystem { return s.combat }

// Items 返回物品系统
func (s *ShooterScene) Items() *systems.ItemSystem { return s.items }

// World 返回物理世界
func (s *ShooterScene) World() *physics.World { return s.world }

// Config 返回当前配置
func (s *ShooterScene) Config() *config.ShooterConfig { return s.cfg }

// Effects 返回正在显示的特效
func (s *ShooterScene) Effects() []EffectInstance { return s.presenter.effects }

// VisibleWidgets 返回当前显示拾取提示的物品
func (s *ShooterScene) VisibleWidgets() map[ecs.EntityID]game.WidgetInfo {
	return s.presenter.widgets
}

// FaceTowards 让玩家镜头朝向世界中的某一点（水平面）
func (s *ShooterScene) FaceTowards(target utils.Vec3) {
	viewer, ok := ecs.GetComponent[*components.ViewerComponent](s.em, s.player)
	if !ok {
		return
	}
	transform, _ := ecs.GetComponent[*components.TransformComponent](s.em, s.player)
	d := target.Sub(transform.Location)
	viewer.Yaw = math.Atan2(d.Y, d.X) * 180 / math.Pi
	viewer.Pitch = 0
	transform.Yaw = viewer.Yaw
}

// reloadMontage 玩家换弹动画 ID
func reloadMontage(s *ShooterScene) string {
	if c, ok := ecs.GetComponent[*components.CombatComponent](s.em, s.player); ok {
		return c.ReloadMontage
	}
	return ""
}
