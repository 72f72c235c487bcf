package components

// ItemCollisionComponent 物品的可见性与碰撞开关
//
// 这些属性由物品状态派生，外部渲染/物理层只读取它们。
type ItemCollisionComponent struct {
	WidgetVisible       bool // 拾取提示面板
	MeshVisible         bool
	SimulatePhysics     bool
	AreaSphereEnabled   bool // 触发角色 overlap 计数的范围球
	CollisionBoxEnabled bool // 响应准星射线的碰撞盒
	SphereRadius        float64
}

// Traceable 物品当前能否被准星射线选中
func (c *ItemCollisionComponent) Traceable() bool {
	return c.CollisionBoxEnabled
}
