package physics

import (
	"math"

	"github.com/decker502/shooter/pkg/components"
	"github.com/decker502/shooter/pkg/ecs"
	"github.com/decker502/shooter/pkg/game"
	"github.com/decker502/shooter/pkg/logger"
	"github.com/decker502/shooter/pkg/utils"
	"github.com/jakecoffman/cp"
	"github.com/rs/zerolog"
)

// 碰撞类别
const (
	categoryWall uint = 1 << iota
	categoryItem
)

// 默认物理参数（世界单位为厘米）
const (
	DefaultGravityZ   = -980.0
	DefaultItemMass   = 10.0
	DefaultDamping    = 0.25 // 每秒保留的水平速度比例
	DefaultTumbleRate = 360.0
	groundZ           = 0.0
)

var (
	wallFilter     = cp.NewShapeFilter(cp.NO_GROUP, categoryWall, cp.ALL_CATEGORIES)
	itemFilter     = cp.NewShapeFilter(cp.NO_GROUP, categoryItem, categoryWall)
	disabledFilter = cp.NewShapeFilter(cp.NO_GROUP, 0, 0)
	queryFilter    = cp.NewShapeFilter(cp.NO_GROUP, cp.ALL_CATEGORIES, categoryWall|categoryItem)
)

// body 一个受物理模拟的物品
type body struct {
	body   *cp.Body
	shape  *cp.Shape
	mass   float64
	radius float64
	// 竖直方向单独积分（水平面由 Chipmunk 模拟）
	velZ float64
	// 翻滚角速度（度/秒），SetUpright 清零
	tumble float64
	// traceable 碰撞盒是否开启
	traceable bool
}

// World 基于 Chipmunk 的俯视角场景协作者
//
// 水平面（XY）的运动、碰撞与射线检测由 cp.Space 完成，
// 高度（Z）按简单抛体积分，落地后停止。
// 物品在 SimulatePhysics 关闭时被钉在 TransformComponent 的位置上。
type World struct {
	entityManager *ecs.EntityManager
	space         *cp.Space

	bodies        map[ecs.EntityID]*body
	shapeToEntity map[*cp.Shape]ecs.EntityID
	sockets       map[ecs.EntityID]map[string]utils.Vec3

	gravityZ float64
	log      zerolog.Logger
}

// NewWorld 创建物理世界
func NewWorld(em *ecs.EntityManager) *World {
	space := cp.NewSpace()
	space.Iterations = 10
	space.SetGravity(cp.Vector{}) // 俯视角：重力只作用于 Z
	space.SetDamping(DefaultDamping)

	return &World{
		entityManager: em,
		space:         space,
		bodies:        make(map[ecs.EntityID]*body),
		shapeToEntity: make(map[*cp.Shape]ecs.EntityID),
		sockets:       make(map[ecs.EntityID]map[string]utils.Vec3),
		gravityZ:      DefaultGravityZ,
		log:           logger.For("PhysicsWorld"),
	}
}

// AddWall 添加一段静态墙体
func (w *World) AddWall(a, b utils.Vec3, thickness float64) {
	seg := cp.NewSegment(w.space.StaticBody, toCP(a), toCP(b), thickness)
	seg.SetElasticity(0.4)
	seg.SetFriction(0.8)
	seg.SetFilter(wallFilter)
	w.space.AddShape(seg)
}

// AddItemBody 为物品实体注册一个圆形刚体
//
// 参数：
//   - id: 物品实体，必须带有 TransformComponent
//   - radius: 碰撞半径
func (w *World) AddItemBody(id ecs.EntityID, radius float64) {
	transform, ok := ecs.GetComponent[*components.TransformComponent](w.entityManager, id)
	if !ok {
		w.log.Warn().Uint64("entity", uint64(id)).Msg("item has no transform, body not created")
		return
	}
	w.RemoveBody(id)

	cpBody := cp.NewBody(DefaultItemMass, cp.MomentForCircle(DefaultItemMass, 0, radius, cp.Vector{}))
	cpBody.SetPosition(toCP(transform.Location))
	cpBody.SetAngle(transform.Yaw * math.Pi / 180)
	w.space.AddBody(cpBody)

	shape := cp.NewCircle(cpBody, radius, cp.Vector{})
	shape.SetElasticity(0.3)
	shape.SetFriction(0.7)
	shape.SetFilter(itemFilter)
	w.space.AddShape(shape)

	w.bodies[id] = &body{body: cpBody, shape: shape, mass: DefaultItemMass, radius: radius, traceable: true}
	w.shapeToEntity[shape] = id
}

// RemoveBody 移除实体的刚体（若存在）
func (w *World) RemoveBody(id ecs.EntityID) {
	b, ok := w.bodies[id]
	if !ok {
		return
	}
	delete(w.shapeToEntity, b.shape)
	w.space.RemoveShape(b.shape)
	w.space.RemoveBody(b.body)
	delete(w.bodies, id)
}

// HasBody 实体是否注册了刚体
func (w *World) HasBody(id ecs.EntityID) bool {
	_, ok := w.bodies[id]
	return ok
}

// SetSocket 登记实体上的挂点（局部坐标，随实体 yaw 旋转）
func (w *World) SetSocket(id ecs.EntityID, name string, local utils.Vec3) {
	m, ok := w.sockets[id]
	if !ok {
		m = make(map[string]utils.Vec3)
		w.sockets[id] = m
	}
	m[name] = local
}

// Step 推进物理模拟并把结果写回 TransformComponent
func (w *World) Step(deltaTime float64) {
	w.pruneDestroyed()

	// 关闭物理的物品钉在变换位置上；碰撞盒关闭的物品不响应射线
	for id, b := range w.bodies {
		transform, _ := ecs.GetComponent[*components.TransformComponent](w.entityManager, id)
		collision, _ := ecs.GetComponent[*components.ItemCollisionComponent](w.entityManager, id)

		if transform != nil && (collision == nil || !collision.SimulatePhysics) {
			b.body.SetPosition(toCP(transform.Location))
			b.body.SetVelocityVector(cp.Vector{})
			b.body.SetAngularVelocity(0)
			b.velZ = 0
			b.tumble = 0
		}
	}

	w.syncFilters()
	if deltaTime > 0 {
		w.space.Step(deltaTime)
	}

	for id, b := range w.bodies {
		collision, _ := ecs.GetComponent[*components.ItemCollisionComponent](w.entityManager, id)
		if collision == nil || !collision.SimulatePhysics {
			continue
		}
		transform, ok := ecs.GetComponent[*components.TransformComponent](w.entityManager, id)
		if !ok {
			continue
		}

		pos := b.body.Position()
		transform.Location.X = pos.X
		transform.Location.Y = pos.Y
		transform.Yaw = utils.NormalizeAxis(b.body.Angle() * 180 / math.Pi)

		// 竖直抛体
		if transform.Location.Z > groundZ || b.velZ > 0 {
			b.velZ += w.gravityZ * deltaTime
			transform.Location.Z += b.velZ * deltaTime
			if transform.Location.Z <= groundZ {
				transform.Location.Z = groundZ
				b.velZ = 0
			}
		}
		if b.tumble != 0 {
			transform.Roll = utils.NormalizeAxis(transform.Roll + b.tumble*deltaTime)
		}
	}
}

// IsResting 物品是否已落地且水平速度很小
func (w *World) IsResting(id ecs.EntityID) bool {
	b, ok := w.bodies[id]
	if !ok {
		return true
	}
	transform, ok := ecs.GetComponent[*components.TransformComponent](w.entityManager, id)
	if !ok {
		return true
	}
	v := b.body.Velocity()
	return transform.Location.Z <= groundZ && math.Hypot(v.X, v.Y) < 1
}

// syncFilters 按物品当前的碰撞盒开关更新射线过滤
func (w *World) syncFilters() {
	for id, b := range w.bodies {
		collision, _ := ecs.GetComponent[*components.ItemCollisionComponent](w.entityManager, id)
		b.traceable = collision != nil && collision.CollisionBoxEnabled && w.entityManager.EntityExists(id)
		b.applyFilter()
	}
}

func (w *World) pruneDestroyed() {
	for id := range w.bodies {
		if !w.entityManager.EntityExists(id) {
			w.RemoveBody(id)
			delete(w.sockets, id)
		}
	}
}

// TraceFromViewpoint 实现 game.Scene
//
// 从观察者镜头沿其朝向检测；观察者必须带有 ViewerComponent。
func (w *World) TraceFromViewpoint(viewer ecs.EntityID, length float64) game.TraceResult {
	v, ok := ecs.GetComponent[*components.ViewerComponent](w.entityManager, viewer)
	if !ok {
		return game.TraceResult{}
	}
	start := v.CameraLocation
	end := start.Add(utils.ForwardFromRotation(v.Yaw, v.Pitch).Scale(length))
	return w.TraceSegment(start, end, viewer)
}

// TraceSegment 实现 game.Scene
func (w *World) TraceSegment(start, end utils.Vec3, ignore ecs.EntityID) game.TraceResult {
	a, b := toCP(start), toCP(end)
	if a.X == b.X && a.Y == b.Y {
		return game.TraceResult{}
	}

	w.syncFilters()
	ignored, hasIgnored := w.bodies[ignore]
	if hasIgnored {
		ignored.shape.SetFilter(disabledFilter)
	}
	info := w.space.SegmentQueryFirst(a, b, 0, queryFilter)
	if hasIgnored {
		ignored.applyFilter()
	}

	if info.Shape == nil {
		return game.TraceResult{}
	}
	point := utils.LerpVec3(start, end, info.Alpha)
	return game.TraceResult{
		Hit:    true,
		Entity: w.shapeToEntity[info.Shape],
		Point:  point,
	}
}

// SocketLocation 实现 game.Scene
func (w *World) SocketLocation(entity ecs.EntityID, socket string) (utils.Vec3, bool) {
	transform, ok := ecs.GetComponent[*components.TransformComponent](w.entityManager, entity)
	if !ok {
		return utils.Vec3{}, false
	}
	local, ok := w.sockets[entity][socket]
	if !ok {
		return utils.Vec3{}, false
	}
	offset := local.RotateAngleAxis(transform.Yaw, utils.UpVector)
	return transform.Location.Add(offset), true
}

// ApplyImpulse 实现 game.Scene
//
// 水平分量交给 Chipmunk，在刚体边缘施加以产生旋转；竖直分量直接换算为速度。
func (w *World) ApplyImpulse(entity ecs.EntityID, impulse utils.Vec3) {
	b, ok := w.bodies[entity]
	if !ok {
		w.log.Debug().Uint64("entity", uint64(entity)).Msg("impulse on entity without body ignored")
		return
	}
	pos := b.body.Position()
	// 偏离质心施加，使武器在地面上旋转
	lever := cp.Vector{X: -impulse.Y, Y: impulse.X}.Normalize().Mult(b.radius * 0.5)
	b.body.ApplyImpulseAtWorldPoint(cp.Vector{X: impulse.X, Y: impulse.Y}, pos.Add(lever))
	b.velZ += impulse.Z / b.mass
	b.tumble = DefaultTumbleRate
}

// SetUpright 实现 game.Scene：pitch/roll 归零，保留 yaw
func (w *World) SetUpright(entity ecs.EntityID) {
	if transform, ok := ecs.GetComponent[*components.TransformComponent](w.entityManager, entity); ok {
		transform.Pitch = 0
		transform.Roll = 0
	}
	if b, ok := w.bodies[entity]; ok {
		b.tumble = 0
	}
}

func (b *body) applyFilter() {
	if b.traceable {
		b.shape.SetFilter(itemFilter)
	} else {
		b.shape.SetFilter(disabledFilter)
	}
}

func toCP(v utils.Vec3) cp.Vector {
	return cp.Vector{X: v.X, Y: v.Y}
}
