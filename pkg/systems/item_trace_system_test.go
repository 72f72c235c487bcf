package systems

import (
	"testing"

	"github.com/decker502/shooter/pkg/components"
	"github.com/decker502/shooter/pkg/ecs"
	"github.com/decker502/shooter/pkg/game"
	"github.com/decker502/shooter/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func traceOf(r *combatRig) *components.ItemTraceComponent {
	c, _ := ecs.GetComponent[*components.ItemTraceComponent](r.em, r.character)
	return c
}

func TestItemTrace_OverlapCountFloor(t *testing.T) {
	r := newCombatRig()

	r.trace.IncrementOverlappedItemCount(r.character, -1)
	assert.Equal(t, 0, traceOf(r).OverlappedItemCount)
	assert.False(t, traceOf(r).ShouldTraceForItems)

	r.trace.IncrementOverlappedItemCount(r.character, 1)
	r.trace.IncrementOverlappedItemCount(r.character, 1)
	assert.Equal(t, 2, traceOf(r).OverlappedItemCount)
	assert.True(t, traceOf(r).ShouldTraceForItems)

	r.trace.IncrementOverlappedItemCount(r.character, -1)
	assert.True(t, traceOf(r).ShouldTraceForItems)
	r.trace.IncrementOverlappedItemCount(r.character, -5)
	assert.Equal(t, 0, traceOf(r).OverlappedItemCount)
	assert.False(t, traceOf(r).ShouldTraceForItems)
}

func TestItemTrace_OverlapIgnoresNonCharacters(t *testing.T) {
	r := newCombatRig()
	other := r.spawnWeapon("smg", utils.Vec3{})

	r.trace.OnItemSphereOverlap(other, other)
	r.trace.OnItemSphereOverlap(other, r.character)
	assert.Equal(t, 1, traceOf(r).OverlappedItemCount)

	r.trace.OnItemSphereEndOverlap(other, r.character)
	assert.Equal(t, 0, traceOf(r).OverlappedItemCount)
}

func TestItemTrace_SwitchTargetsNotifiesOnce(t *testing.T) {
	r := newCombatRig()
	a := r.spawnWeapon("smg", utils.Vec3{X: 100})
	b := r.spawnWeapon("ar", utils.Vec3{X: 100, Y: 40})
	r.trace.IncrementOverlappedItemCount(r.character, 2)

	r.scene.aimAt(r.character, a)
	r.trace.TraceForItems(r.character)
	r.trace.TraceForItems(r.character)
	require.Equal(t, []widgetCall{{show: true, entity: a}}, r.presenter.widgets)

	r.scene.aimAt(r.character, b)
	r.trace.TraceForItems(r.character)
	r.trace.TraceForItems(r.character)

	assert.Equal(t, []widgetCall{
		{show: true, entity: a},
		{show: true, entity: b},
		{show: false, entity: a},
	}, r.presenter.widgets)
	assert.Equal(t, b, r.trace.TraceHitItem(r.character))
}

func TestItemTrace_LookAwayHidesWidget(t *testing.T) {
	r := newCombatRig()
	a := r.spawnWeapon("smg", utils.Vec3{X: 100})
	r.trace.IncrementOverlappedItemCount(r.character, 1)

	r.scene.aimAt(r.character, a)
	r.trace.TraceForItems(r.character)
	r.scene.viewHit[r.character] = game.TraceResult{Hit: true, Point: utils.Vec3{X: 900}}
	r.trace.TraceForItems(r.character)

	assert.Equal(t, []widgetCall{{show: true, entity: a}, {show: false, entity: a}}, r.presenter.widgets)
	assert.Equal(t, ecs.InvalidEntity, r.trace.TraceHitItem(r.character))
}

func TestItemTrace_StopTracingHidesLastTarget(t *testing.T) {
	r := newCombatRig()
	a := r.spawnWeapon("smg", utils.Vec3{X: 100})
	r.trace.IncrementOverlappedItemCount(r.character, 1)
	r.scene.aimAt(r.character, a)
	r.trace.TraceForItems(r.character)

	r.trace.IncrementOverlappedItemCount(r.character, -1)
	r.trace.TraceForItems(r.character)
	r.trace.TraceForItems(r.character)

	assert.Equal(t, []widgetCall{{show: true, entity: a}, {show: false, entity: a}}, r.presenter.widgets)
	assert.Equal(t, ecs.InvalidEntity, traceOf(r).TraceHitItemLastFrame)
}

func TestItemTrace_OnlyPickupItemsAreTargets(t *testing.T) {
	r := newCombatRig()
	a := r.spawnWeapon("smg", utils.Vec3{X: 100})
	r.items.SetItemState(a, components.ItemStateFalling)
	r.trace.IncrementOverlappedItemCount(r.character, 1)
	r.scene.aimAt(r.character, a)

	r.trace.TraceForItems(r.character)
	assert.Empty(t, r.presenter.widgets)
	assert.Equal(t, ecs.InvalidEntity, r.trace.TraceHitItem(r.character))
}

func TestItemTrace_CollisionBoxDisabledIsNotTarget(t *testing.T) {
	r := newCombatRig()
	a := r.spawnWeapon("smg", utils.Vec3{X: 100})
	collision, ok := ecs.GetComponent[*components.ItemCollisionComponent](r.em, a)
	require.True(t, ok)
	require.True(t, collision.Traceable())
	collision.CollisionBoxEnabled = false

	r.trace.IncrementOverlappedItemCount(r.character, 1)
	r.scene.aimAt(r.character, a)
	r.trace.TraceForItems(r.character)
	assert.Equal(t, ecs.InvalidEntity, r.trace.TraceHitItem(r.character))

	collision.CollisionBoxEnabled = true
	r.trace.TraceForItems(r.character)
	assert.Equal(t, a, r.trace.TraceHitItem(r.character))
}

func TestItemTrace_DestroyedTarget(t *testing.T) {
	r := newCombatRig()
	a := r.spawnWeapon("smg", utils.Vec3{X: 100})
	r.trace.IncrementOverlappedItemCount(r.character, 1)
	r.scene.aimAt(r.character, a)
	r.trace.TraceForItems(r.character)

	r.em.DestroyEntity(a)
	r.em.RemoveMarkedEntities()

	assert.Equal(t, ecs.InvalidEntity, r.trace.TraceHitItem(r.character))
	assert.NotPanics(t, func() { r.trace.TraceForItems(r.character) })
}
