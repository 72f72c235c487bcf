package physics

import (
	"testing"

	"github.com/decker502/shooter/pkg/components"
	"github.com/decker502/shooter/pkg/ecs"
	"github.com/decker502/shooter/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newItem(em *ecs.EntityManager, at utils.Vec3) (ecs.EntityID, *components.TransformComponent, *components.ItemCollisionComponent) {
	id := em.CreateEntity()
	transform := components.NewTransformComponent(at, 0)
	collision := &components.ItemCollisionComponent{CollisionBoxEnabled: true, AreaSphereEnabled: true}
	em.AddComponent(id, transform)
	em.AddComponent(id, collision)
	return id, transform, collision
}

func newViewer(em *ecs.EntityManager) ecs.EntityID {
	id := em.CreateEntity()
	em.AddComponent(id, components.NewTransformComponent(utils.Vec3{}, 0))
	em.AddComponent(id, &components.ViewerComponent{})
	return id
}

func TestTraceFromViewpoint_HitsItem(t *testing.T) {
	em := ecs.NewEntityManager()
	world := NewWorld(em)
	item, _, _ := newItem(em, utils.Vec3{X: 300})
	world.AddItemBody(item, 20)
	viewer := newViewer(em)

	hit := world.TraceFromViewpoint(viewer, 1000)
	require.True(t, hit.Hit)
	assert.Equal(t, item, hit.Entity)
	assert.InDelta(t, 280, hit.Point.X, 0.5)
}

func TestTraceFromViewpoint_CollisionDisabled(t *testing.T) {
	em := ecs.NewEntityManager()
	world := NewWorld(em)
	item, _, collision := newItem(em, utils.Vec3{X: 300})
	world.AddItemBody(item, 20)
	viewer := newViewer(em)

	collision.CollisionBoxEnabled = false
	assert.False(t, world.TraceFromViewpoint(viewer, 1000).Hit)

	collision.CollisionBoxEnabled = true
	assert.True(t, world.TraceFromViewpoint(viewer, 1000).Hit)
}

func TestTraceSegment_WallAndIgnore(t *testing.T) {
	em := ecs.NewEntityManager()
	world := NewWorld(em)
	world.AddWall(utils.Vec3{X: 500, Y: -100}, utils.Vec3{X: 500, Y: 100}, 1)
	item, _, _ := newItem(em, utils.Vec3{X: 200})
	world.AddItemBody(item, 20)

	hit := world.TraceSegment(utils.Vec3{}, utils.Vec3{X: 1000}, item)
	require.True(t, hit.Hit)
	assert.Equal(t, ecs.InvalidEntity, hit.Entity)
	assert.InDelta(t, 499, hit.Point.X, 0.5)

	// 忽略后过滤器必须恢复
	assert.Equal(t, item, world.TraceSegment(utils.Vec3{}, utils.Vec3{X: 1000}, ecs.InvalidEntity).Entity)
}

func TestTraceFromViewpoint_NoViewer(t *testing.T) {
	em := ecs.NewEntityManager()
	world := NewWorld(em)
	assert.False(t, world.TraceFromViewpoint(em.CreateEntity(), 1000).Hit)
}

func TestApplyImpulse_MovesSimulatedBody(t *testing.T) {
	em := ecs.NewEntityManager()
	world := NewWorld(em)
	item, transform, collision := newItem(em, utils.Vec3{Z: 50})
	world.AddItemBody(item, 10)

	collision.SimulatePhysics = true
	world.ApplyImpulse(item, utils.Vec3{X: 5000, Z: 1000})
	for i := 0; i < 10; i++ {
		world.Step(1.0 / 60)
	}

	assert.Greater(t, transform.Location.X, 0.0)
	assert.GreaterOrEqual(t, transform.Location.Z, 0.0)
	assert.NotZero(t, transform.Roll, "impulse makes the body tumble")

	world.SetUpright(item)
	assert.True(t, transform.IsUpright())
}

func TestStep_PinsBodyWhenPhysicsOff(t *testing.T) {
	em := ecs.NewEntityManager()
	world := NewWorld(em)
	item, transform, _ := newItem(em, utils.Vec3{X: 10})
	world.AddItemBody(item, 10)

	world.ApplyImpulse(item, utils.Vec3{X: 5000})
	world.Step(0.1)
	assert.Equal(t, 10.0, transform.Location.X)

	transform.Location.X = 40
	world.Step(0.1)
	assert.Equal(t, 40.0, transform.Location.X)
}

func TestStep_FallingSettlesOnGround(t *testing.T) {
	em := ecs.NewEntityManager()
	world := NewWorld(em)
	item, transform, collision := newItem(em, utils.Vec3{Z: 100})
	world.AddItemBody(item, 10)
	collision.SimulatePhysics = true

	for i := 0; i < 600; i++ {
		world.Step(1.0 / 60)
	}
	assert.Equal(t, 0.0, transform.Location.Z)
	assert.True(t, world.IsResting(item))
}

func TestStep_PrunesDestroyedEntities(t *testing.T) {
	em := ecs.NewEntityManager()
	world := NewWorld(em)
	item, _, _ := newItem(em, utils.Vec3{})
	world.AddItemBody(item, 10)
	require.True(t, world.HasBody(item))

	em.DestroyEntity(item)
	world.Step(0.016)
	assert.False(t, world.HasBody(item))
}

func TestSocketLocation(t *testing.T) {
	em := ecs.NewEntityManager()
	world := NewWorld(em)
	id := em.CreateEntity()
	em.AddComponent(id, components.NewTransformComponent(utils.Vec3{X: 100}, 90))
	world.SetSocket(id, "BarrelSocket", utils.Vec3{X: 50, Z: 10})

	loc, ok := world.SocketLocation(id, "BarrelSocket")
	require.True(t, ok)
	assert.InDelta(t, 100, loc.X, 1e-9)
	assert.InDelta(t, 50, loc.Y, 1e-9)
	assert.InDelta(t, 10, loc.Z, 1e-9)

	_, ok = world.SocketLocation(id, "Missing")
	assert.False(t, ok)
}
