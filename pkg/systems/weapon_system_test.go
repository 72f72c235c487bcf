package systems

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/decker502/shooter/pkg/components"
	"github.com/decker502/shooter/pkg/ecs"
	"github.com/decker502/shooter/pkg/utils"
)

// angleFromRight 返回 v 相对 yaw 右方向绕竖直轴的夹角（度）
func angleFromRight(yaw float64, v utils.Vec3) float64 {
	right := utils.RightFromYaw(yaw)
	n := v.Normalize()
	cos := utils.Clamp(right.Dot(n), -1, 1)
	return math.Acos(cos) * 180 / math.Pi
}

func TestThrowDirection(t *testing.T) {
	tests := []struct {
		yaw, angle float64
	}{
		{0, 0},
		{0, 15},
		{90, 30},
		{-45, 45},
	}
	for _, tt := range tests {
		dir := ThrowDirection(tt.yaw, tt.angle)
		if math.Abs(dir.Length()-1) > 1e-9 {
			t.Errorf("yaw %v angle %v: expected unit vector, got length %v", tt.yaw, tt.angle, dir.Length())
		}
		if math.Abs(dir.Z) > 1e-9 {
			t.Errorf("yaw %v angle %v: throw direction must stay horizontal, got z=%v", tt.yaw, tt.angle, dir.Z)
		}
		if got := angleFromRight(tt.yaw, dir); math.Abs(got-tt.angle) > 1e-6 {
			t.Errorf("yaw %v: expected %v degrees from right, got %v", tt.yaw, tt.angle, got)
		}
	}
}

func TestThrowWeapon_AngleInRange(t *testing.T) {
	for seed := uint64(0); seed < 20; seed++ {
		r := newCombatRig()
		r.weapons.SetRand(rand.New(rand.NewPCG(seed, seed+7)))
		id := r.spawnWeapon("smg", utils.Vec3{})
		transform, _ := ecs.GetComponent[*components.TransformComponent](r.em, id)
		transform.Yaw = float64(seed) * 17
		transform.Pitch = 20
		transform.Roll = -10

		if !r.weapons.ThrowWeapon(id) {
			t.Fatalf("seed %d: ThrowWeapon failed", seed)
		}
		if transform.Pitch != 0 || transform.Roll != 0 {
			t.Errorf("seed %d: weapon not set upright before throw", seed)
		}

		impulses := r.scene.impulses[id]
		if len(impulses) != 1 {
			t.Fatalf("seed %d: expected 1 impulse, got %d", seed, len(impulses))
		}
		if got := impulses[0].Length(); math.Abs(got-5000) > 1e-6 {
			t.Errorf("seed %d: expected impulse magnitude 5000, got %v", seed, got)
		}
		angle := angleFromRight(transform.Yaw, impulses[0])
		if angle < ThrowAngleMin-1e-6 || angle > ThrowAngleMax+1e-6 {
			t.Errorf("seed %d: throw angle %v outside [%v, %v]", seed, angle, ThrowAngleMin, ThrowAngleMax)
		}
	}
}

func TestThrowWeapon_NotAWeapon(t *testing.T) {
	r := newCombatRig()
	if r.weapons.ThrowWeapon(r.character) {
		t.Error("characters cannot be thrown")
	}
	if r.weapons.ThrowWeapon(ecs.EntityID(12345)) {
		t.Error("missing entity cannot be thrown")
	}
}

func TestStopFalling_ReturnsToPickup(t *testing.T) {
	r := newCombatRig()
	id := r.spawnWeapon("smg", utils.Vec3{})
	r.items.SetItemState(id, components.ItemStateFalling)
	r.weapons.ThrowWeapon(id)

	// 0.65 秒：仍在下落
	for i := 0; i < 13; i++ {
		r.timers.Advance(frameDT)
	}
	if s := r.state(id); s != components.ItemStateFalling {
		t.Fatalf("Expected Falling before ThrowWeaponTime, got %v", s)
	}

	for i := 0; i < 3; i++ {
		r.timers.Advance(frameDT)
	}
	if s := r.state(id); s != components.ItemStatePickup {
		t.Errorf("Expected Pickup after ThrowWeaponTime, got %v", s)
	}
	if r.weapon(id).IsFalling {
		t.Error("IsFalling should be cleared")
	}
}

func TestStopFalling_IgnoresReequippedWeapon(t *testing.T) {
	r := newCombatRig()
	id := r.spawnWeapon("smg", utils.Vec3{})
	r.items.SetItemState(id, components.ItemStateFalling)
	r.weapons.ThrowWeapon(id)

	r.items.SetItemState(id, components.ItemStateEquipped)
	r.weapons.StopFalling(id)

	if s := r.state(id); s != components.ItemStateEquipped {
		t.Errorf("Expected Equipped to be kept, got %v", s)
	}
}

func TestWeaponSystem_UprightOnlyWhileFalling(t *testing.T) {
	r := newCombatRig()
	falling := r.spawnWeapon("smg", utils.Vec3{})
	resting := r.spawnWeapon("ar", utils.Vec3{X: 300})
	r.items.SetItemState(falling, components.ItemStateFalling)
	r.weapons.ThrowWeapon(falling)

	r.weapons.Update(frameDT)
	r.weapons.Update(frameDT)

	if r.scene.upright[falling] != 2 {
		t.Errorf("Expected 2 upright requests, got %d", r.scene.upright[falling])
	}
	if r.scene.upright[resting] != 0 {
		t.Errorf("resting weapon must not be touched, got %d", r.scene.upright[resting])
	}
}
