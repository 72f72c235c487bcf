package components

import "github.com/decker502/shooter/pkg/utils"

// TransformComponent 实体在世界中的位置、朝向和缩放
//
// 角度单位为度。Yaw=0 朝向 +X。
type TransformComponent struct {
	Location utils.Vec3
	Yaw      float64
	Pitch    float64
	Roll     float64
	Scale    float64 // 统一缩放，1.0 为原始大小
}

// NewTransformComponent 以给定位置创建变换，缩放为 1
func NewTransformComponent(location utils.Vec3, yaw float64) *TransformComponent {
	return &TransformComponent{Location: location, Yaw: yaw, Scale: 1}
}

// IsUpright pitch 和 roll 是否都为零
func (t *TransformComponent) IsUpright() bool {
	return t.Pitch == 0 && t.Roll == 0
}
