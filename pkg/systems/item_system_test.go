package systems

import (
	"testing"

	"github.com/decker502/shooter/pkg/components"
	"github.com/decker502/shooter/pkg/ecs"
	"github.com/decker502/shooter/pkg/entities"
	"github.com/decker502/shooter/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemSystem_StateProperties(t *testing.T) {
	tests := []struct {
		state                           components.ItemState
		mesh, physics, sphere, collider bool
	}{
		{components.ItemStatePickup, true, false, true, true},
		{components.ItemStateEquipInterping, true, false, false, false},
		{components.ItemStatePickedUp, false, false, false, false},
		{components.ItemStateEquipped, true, false, false, false},
		{components.ItemStateFalling, true, true, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			r := newCombatRig()
			id := r.spawnWeapon("smg", utils.Vec3{X: 40})
			r.items.ShowWidget(id)

			require.True(t, r.items.SetItemState(id, tt.state))
			collision, _ := ecs.GetComponent[*components.ItemCollisionComponent](r.em, id)
			assert.Equal(t, tt.mesh, collision.MeshVisible, "mesh")
			assert.Equal(t, tt.physics, collision.SimulatePhysics, "physics")
			assert.Equal(t, tt.sphere, collision.AreaSphereEnabled, "area sphere")
			assert.Equal(t, tt.collider, collision.CollisionBoxEnabled, "collision box")
			assert.False(t, collision.WidgetVisible, "state change hides the widget")
			assert.Equal(t, tt.state, r.state(id))
		})
	}
}

func TestItemSystem_SetItemStateMissingEntity(t *testing.T) {
	r := newCombatRig()
	assert.False(t, r.items.SetItemState(ecs.EntityID(999), components.ItemStateFalling))
	assert.False(t, r.items.SetItemState(r.character, components.ItemStateFalling), "character is not an item")
}

func TestItemSystem_WidgetIdempotent(t *testing.T) {
	r := newCombatRig()
	id := r.spawnWeapon("ar", utils.Vec3{X: 40})

	r.items.ShowWidget(id)
	r.items.ShowWidget(id)
	r.items.HideWidget(id)
	r.items.HideWidget(id)

	assert.Equal(t, []widgetCall{{show: true, entity: id}, {show: false, entity: id}}, r.presenter.widgets)
}

func TestItemSystem_SetRarity(t *testing.T) {
	r := newCombatRig()
	id := entities.NewItemEntity(r.em, "Scope", components.RarityDamaged, r.cfg.Items, utils.Vec3{})

	require.True(t, r.items.SetRarity(id, components.RarityRare))
	item, _ := ecs.GetComponent[*components.ItemComponent](r.em, id)
	assert.Equal(t, []bool{true, true, true, true, false}, item.ActiveStars)
	assert.False(t, r.items.SetRarity(r.character, components.RarityRare))
}

func TestItemSystem_InterpTarget(t *testing.T) {
	r := newCombatRig()
	target, ok := r.items.InterpTargetLocation(r.character)
	require.True(t, ok)

	// 镜头在 (0,0,70)，朝 +X：前方 250，上方 65
	assert.InDelta(t, 250, target.X, 1e-9)
	assert.InDelta(t, 0, target.Y, 1e-9)
	assert.InDelta(t, 135, target.Z, 1e-9)
}

func TestItemSystem_StartItemCurveOnlyFromPickup(t *testing.T) {
	for _, state := range []components.ItemState{
		components.ItemStateEquipInterping,
		components.ItemStatePickedUp,
		components.ItemStateEquipped,
		components.ItemStateFalling,
	} {
		t.Run(state.String(), func(t *testing.T) {
			r := newCombatRig()
			id := r.spawnWeapon("smg", utils.Vec3{X: 100})
			r.items.SetItemState(id, state)
			calls := len(r.presenter.widgets)

			assert.False(t, r.items.StartItemCurve(id, r.character))
			assert.Equal(t, state, r.state(id))
			assert.Len(t, r.presenter.widgets, calls)
			assert.Zero(t, r.timers.ActiveCount())
		})
	}
}

func TestItemSystem_InterpolationReachesTarget(t *testing.T) {
	r := newCombatRig()
	id := r.spawnWeapon("smg", utils.Vec3{X: 100, Y: 30})

	var picked []ecs.EntityID
	r.items.SetPickupHandler(func(character, item ecs.EntityID) {
		assert.Equal(t, r.character, character)
		picked = append(picked, item)
	})

	require.True(t, r.items.StartItemCurve(id, r.character))
	require.Equal(t, components.ItemStateEquipInterping, r.state(id))

	transform, _ := ecs.GetComponent[*components.TransformComponent](r.em, id)
	lastZ, lastX := transform.Location.Z, transform.Location.X
	for i := 0; i < 13; i++ {
		r.timers.Advance(frameDT)
		r.items.Update(frameDT)
		require.Equal(t, components.ItemStateEquipInterping, r.state(id), "frame %d", i)
		assert.GreaterOrEqual(t, transform.Location.Z, lastZ, "z must rise monotonically")
		assert.GreaterOrEqual(t, transform.Location.X, lastX, "x must approach the target")
		lastZ, lastX = transform.Location.Z, transform.Location.X
	}
	assert.Empty(t, picked)

	for i := 0; i < 3; i++ {
		r.timers.Advance(frameDT)
		r.items.Update(frameDT)
	}

	assert.Equal(t, []ecs.EntityID{id}, picked)
	assert.Equal(t, components.ItemStatePickedUp, r.state(id))
	assert.InDelta(t, 250, transform.Location.X, 1e-9)
	assert.InDelta(t, 0, transform.Location.Y, 1e-9)
	assert.InDelta(t, 135, transform.Location.Z, 1e-9)
	assert.Equal(t, 1.0, transform.Scale)
}

func TestItemSystem_YawFollowsViewer(t *testing.T) {
	r := newCombatRig()
	id := r.spawnWeapon("smg", utils.Vec3{X: 100})
	transform, _ := ecs.GetComponent[*components.TransformComponent](r.em, id)
	transform.Yaw = 30

	require.True(t, r.items.StartItemCurve(id, r.character))
	viewer, _ := ecs.GetComponent[*components.ViewerComponent](r.em, r.character)
	viewer.Yaw = 45

	r.timers.Advance(frameDT)
	r.items.Update(frameDT)
	assert.InDelta(t, 75, transform.Yaw, 1e-9)
}

func TestItemSystem_DestroyedDuringInterp(t *testing.T) {
	r := newCombatRig()
	id := r.spawnWeapon("smg", utils.Vec3{X: 100})
	called := false
	r.items.SetPickupHandler(func(character, item ecs.EntityID) { called = true })

	require.True(t, r.items.StartItemCurve(id, r.character))
	r.timers.Advance(frameDT)
	r.items.Update(frameDT)

	r.em.DestroyEntity(id)
	r.em.RemoveMarkedEntities()

	assert.NotPanics(t, func() {
		for i := 0; i < 20; i++ {
			r.timers.Advance(frameDT)
			r.items.Update(frameDT)
		}
		r.items.FinishInterping(id)
	})
	assert.False(t, called)
	assert.Zero(t, r.timers.ActiveCount())
}

func TestItemSystem_ViewerGoneAbortsInterp(t *testing.T) {
	r := newCombatRig()
	id := r.spawnWeapon("smg", utils.Vec3{X: 100})

	require.True(t, r.items.StartItemCurve(id, r.character))
	r.em.DestroyEntity(r.character)

	r.items.Update(frameDT)
	assert.Equal(t, components.ItemStatePickup, r.state(id))
	interp, _ := ecs.GetComponent[*components.ItemInterpComponent](r.em, id)
	assert.False(t, interp.IsInterping)
}
