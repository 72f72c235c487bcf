package scenes

import (
	"bytes"
	"testing"

	"github.com/decker502/shooter/pkg/components"
	"github.com/decker502/shooter/pkg/config"
	"github.com/decker502/shooter/pkg/ecs"
	"github.com/decker502/shooter/pkg/game"
	"github.com/decker502/shooter/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dt = 1.0 / 60

func newTestScene(t *testing.T) *ShooterScene {
	t.Helper()
	s, err := NewShooterScene(Options{Empty: true})
	require.NoError(t, err)
	return s
}

func run(s *ShooterScene, seconds float64) {
	frames := int(seconds/dt + 0.5)
	for i := 0; i < frames; i++ {
		s.Update(dt)
	}
}

func TestShooterScene_StartsArmed(t *testing.T) {
	s := newTestScene(t)
	hud := s.HUD()

	assert.Equal(t, "Default SMG", hud.WeaponName)
	assert.Equal(t, 30, hud.Ammo)
	assert.Equal(t, 85, hud.Carried)
	assert.Equal(t, components.CombatStateUnoccupied, hud.State)
}

func TestShooterScene_PopulatesArena(t *testing.T) {
	s, err := NewShooterScene(Options{})
	require.NoError(t, err)

	weapons := ecs.GetEntitiesWith1[*components.WeaponComponent](s.EntityManager())
	ammo := ecs.GetEntitiesWith1[*components.AmmoComponent](s.EntityManager())
	assert.Len(t, weapons, 2)
	assert.Len(t, ammo, 2)
	for _, id := range weapons {
		assert.True(t, s.World().HasBody(id))
	}
}

func TestShooterScene_FireAndReloadThroughMontage(t *testing.T) {
	s := newTestScene(t)

	for i := 0; i < 5; i++ {
		s.SetInput(Input{FirePressed: true})
		s.Update(dt)
		s.SetInput(Input{FireReleased: true})
		run(s, 0.15)
	}
	require.Equal(t, 25, s.HUD().Ammo)

	s.SetInput(Input{ReloadPressed: true})
	s.Update(dt)
	assert.Equal(t, components.CombatStateReloading, s.HUD().State)
	assert.Equal(t, "ReloadMontage/Reload_SMG", s.HUD().Animation)

	// 动画结束前弹匣不变
	run(s, 0.5)
	assert.Equal(t, 25, s.HUD().Ammo)
	assert.InDelta(t, ReloadFinishTime-0.5, s.HUD().ReloadRemaining, 2*dt)

	run(s, 0.8)
	hud := s.HUD()
	assert.Equal(t, 30, hud.Ammo)
	assert.Equal(t, 80, hud.Carried)
	assert.Equal(t, components.CombatStateUnoccupied, hud.State)
	assert.Zero(t, hud.ReloadRemaining)
}

func TestShooterScene_DropCancelsReloadNotifies(t *testing.T) {
	s := newTestScene(t)
	s.SetInput(Input{FirePressed: true})
	s.Update(dt)
	s.SetInput(Input{FireReleased: true})
	run(s, 0.15)

	s.SetInput(Input{ReloadPressed: true})
	s.Update(dt)
	require.Equal(t, components.CombatStateReloading, s.HUD().State)

	s.SetInput(Input{DropPressed: true})
	s.Update(dt)
	assert.False(t, s.timers.IsTimerActive(s.presenter.grabTimer))
	assert.False(t, s.timers.IsTimerActive(s.presenter.releaseTimer))
	assert.False(t, s.timers.IsTimerActive(s.presenter.finishTimer))

	ar, err := s.SpawnWeapon("ar", utils.Vec3{X: 60}, 0)
	require.NoError(t, err)
	require.True(t, s.Combat().EquipWeapon(s.Player(), ar))

	// 越过原换弹动画的 GrabClip 与 FinishReloading 时间点
	run(s, 1.2)
	weapon, ok := ecs.GetComponent[*components.WeaponComponent](s.EntityManager(), ar)
	require.True(t, ok)
	assert.False(t, weapon.MovingClip)
	assert.Equal(t, components.CombatStateUnoccupied, s.HUD().State)
	assert.Equal(t, weapon.MagazineCapacity, s.HUD().Ammo)
}

func TestShooterScene_FireProducesEffects(t *testing.T) {
	s := newTestScene(t)
	s.SetInput(Input{FirePressed: true})
	s.Update(dt)

	kinds := map[game.EffectKind]bool{}
	for _, e := range s.Effects() {
		kinds[e.Kind] = true
	}
	assert.True(t, kinds[game.EffectMuzzleFlash])
	assert.True(t, kinds[game.EffectBeam])
	assert.True(t, kinds[game.EffectImpact])

	s.SetInput(Input{FireReleased: true})
	run(s, 0.5)
	assert.Empty(t, s.Effects())
}

func TestShooterScene_PickupWeaponWithPhysicsTrace(t *testing.T) {
	s := newTestScene(t)
	smg := s.Combat().EquippedWeapon(s.Player())
	ar, err := s.SpawnWeapon("ar", utils.Vec3{X: 120}, 0)
	require.NoError(t, err)

	s.FaceTowards(utils.Vec3{X: 120})
	s.Update(dt)
	require.Equal(t, "Assault Rifle", s.HUD().Target)
	require.Contains(t, s.VisibleWidgets(), ar)

	s.SetInput(Input{SelectPressed: true})
	s.Update(dt)
	state, _ := s.Items().GetItemState(ar)
	assert.Equal(t, components.ItemStateEquipInterping, state)
	assert.NotContains(t, s.VisibleWidgets(), ar)

	run(s, 0.8)
	assert.Equal(t, ar, s.Combat().EquippedWeapon(s.Player()))
	assert.Equal(t, "Assault Rifle", s.HUD().WeaponName)
	assert.Equal(t, 120, s.HUD().Carried)

	// 被换下的冲锋枪被抛出并最终可以再次拾取
	run(s, 1.0)
	state, _ = s.Items().GetItemState(smg)
	assert.Equal(t, components.ItemStatePickup, state)
	transform, _ := ecs.GetComponent[*components.TransformComponent](s.EntityManager(), smg)
	assert.Greater(t, transform.Location.Length2D(), 40.0)
	assert.Equal(t, 0.0, transform.Pitch)
}

func TestShooterScene_PickupAmmo(t *testing.T) {
	s := newTestScene(t)
	ammo := s.SpawnAmmo(components.AmmoType9mm, 30, utils.Vec3{X: 100, Y: 20})
	s.FaceTowards(utils.Vec3{X: 100, Y: 20})
	s.Update(dt)

	s.SetInput(Input{SelectPressed: true})
	run(s, 1.0)

	assert.False(t, s.EntityManager().EntityExists(ammo))
	assert.Equal(t, 115, s.HUD().Carried)
	assert.False(t, s.World().HasBody(ammo))
}

func TestShooterScene_DropAndJump(t *testing.T) {
	s := newTestScene(t)
	s.SetInput(Input{DropPressed: true})
	s.Update(dt)
	assert.Equal(t, ecs.InvalidEntity, s.Combat().EquippedWeapon(s.Player()))

	s.SetInput(Input{Jump: true})
	s.Update(dt)
	movement, _ := ecs.GetComponent[*components.MovementComponent](s.EntityManager(), s.Player())
	assert.True(t, movement.IsFalling)

	run(s, 0.3)
	assert.Greater(t, s.HUD().Spread, 0.5, "in-air spread")

	run(s, 1.5)
	assert.False(t, movement.IsFalling)
}

func TestShooterScene_MovementStaysInArena(t *testing.T) {
	s, err := NewShooterScene(Options{Empty: true, ArenaHalfSize: 200})
	require.NoError(t, err)

	for i := 0; i < 120; i++ {
		s.SetInput(Input{MoveForward: 1, MoveRight: 1})
		s.Update(dt)
	}
	transform, _ := ecs.GetComponent[*components.TransformComponent](s.EntityManager(), s.Player())
	assert.LessOrEqual(t, transform.Location.X, 190.0)
	assert.LessOrEqual(t, transform.Location.Y, 190.0)
}

func TestShooterScene_ApplyConfig(t *testing.T) {
	s := newTestScene(t)
	cfg := config.DefaultShooterConfig()
	cfg.Crosshair.Base = 1.25

	require.NoError(t, s.ApplyConfig(cfg))
	s.Update(dt)
	assert.InDelta(t, 1.25, s.HUD().Spread, 1e-9)
	assert.Same(t, cfg, s.Config())

	assert.Error(t, s.ApplyConfig(nil))
}

func TestShooterScene_SaveOnExit(t *testing.T) {
	var buf bytes.Buffer
	journal, err := game.NewCombatJournal(&buf)
	require.NoError(t, err)
	settings, err := game.NewSettingsManager(nil)
	require.NoError(t, err)

	s, err := NewShooterScene(Options{Empty: true, Journal: journal, Settings: settings})
	require.NoError(t, err)
	s.SetInput(Input{FirePressed: true, FireReleased: true})
	s.Update(dt)

	assert.True(t, s.SaveOnExit())
	events, err := game.ReadCombatJournal(&buf)
	require.NoError(t, err)
	require.NotEmpty(t, events)
	assert.Equal(t, "equip", events[0].Kind)
	assert.Equal(t, "fire", events[len(events)-1].Kind)
}

func TestShooterScene_ImplementsStage(t *testing.T) {
	var stage game.Stage = newTestScene(t)
	_, ok := stage.(game.Saveable)
	assert.True(t, ok)
}
