package entities

import (
	"errors"
	"testing"

	"github.com/decker502/shooter/pkg/components"
	"github.com/decker502/shooter/pkg/config"
	"github.com/decker502/shooter/pkg/ecs"
	"github.com/decker502/shooter/pkg/utils"
)

func TestSpawnDefaultWeapon(t *testing.T) {
	em := ecs.NewEntityManager()
	cfg := config.DefaultShooterConfig()

	id, err := SpawnDefaultWeapon(em, cfg, utils.Vec3{X: 10})
	if err != nil {
		t.Fatalf("SpawnDefaultWeapon failed: %v", err)
	}

	weapon, ok := ecs.GetComponent[*components.WeaponComponent](em, id)
	if !ok {
		t.Fatal("weapon component missing")
	}
	if weapon.AmmoCount != 30 || weapon.MagazineCapacity != 30 {
		t.Errorf("Expected 30/30, got %d/%d", weapon.AmmoCount, weapon.MagazineCapacity)
	}
	if weapon.ReloadMontageSection != "Reload_SMG" || weapon.ClipBoneName != "smg_clip" {
		t.Errorf("unexpected animation ids %q %q", weapon.ReloadMontageSection, weapon.ClipBoneName)
	}
	if weapon.AmmoType != components.AmmoType9mm {
		t.Errorf("Expected 9mm, got %v", weapon.AmmoType)
	}

	item, _ := ecs.GetComponent[*components.ItemComponent](em, id)
	if item.State != components.ItemStatePickup || item.Kind != components.ItemKindWeapon {
		t.Errorf("Expected Pickup weapon, got %v kind %v", item.State, item.Kind)
	}
	if item.InterpDuration != 0.7 || item.ZCurve != "itemZ" {
		t.Errorf("interp config not applied: %v %q", item.InterpDuration, item.ZCurve)
	}

	collision, _ := ecs.GetComponent[*components.ItemCollisionComponent](em, id)
	if !collision.CollisionBoxEnabled || !collision.AreaSphereEnabled || collision.WidgetVisible {
		t.Errorf("Pickup properties not applied: %+v", collision)
	}
}

func TestNewWeaponEntity_InvalidConfig(t *testing.T) {
	em := ecs.NewEntityManager()
	items := config.DefaultShooterConfig().Items

	tests := []struct {
		name string
		w    config.WeaponConfig
	}{
		{"unknown weapon type", config.WeaponConfig{WeaponType: "rocket", AmmoType: "9mm", MagazineCapacity: 1}},
		{"unknown ammo type", config.WeaponConfig{WeaponType: "smg", AmmoType: "12ga", MagazineCapacity: 1}},
		{"ammo above capacity", config.WeaponConfig{WeaponType: "smg", AmmoType: "9mm", MagazineCapacity: 1, AmmoCount: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewWeaponEntity(em, tt.w, items, utils.Vec3{}, 0)
			if !errors.Is(err, config.ErrInvalidWeapon) {
				t.Errorf("Expected ErrInvalidWeapon, got %v", err)
			}
		})
	}
	if em.EntityCount() != 0 {
		t.Errorf("invalid configs must not create entities, got %d", em.EntityCount())
	}
}

func TestNewAmmoEntity(t *testing.T) {
	em := ecs.NewEntityManager()
	id := NewAmmoEntity(em, components.AmmoTypeAR, 40, config.DefaultShooterConfig().Items, utils.Vec3{})

	ammo, ok := ecs.GetComponent[*components.AmmoComponent](em, id)
	if !ok || ammo.Amount != 40 || ammo.AmmoType != components.AmmoTypeAR {
		t.Fatalf("unexpected ammo component %+v", ammo)
	}
	item, _ := ecs.GetComponent[*components.ItemComponent](em, id)
	if item.Kind != components.ItemKindAmmo || item.Count != 40 {
		t.Errorf("unexpected item %+v", item)
	}
}

func TestNewCharacterEntity(t *testing.T) {
	em := ecs.NewEntityManager()
	cfg := config.DefaultShooterConfig()
	id := NewCharacterEntity(em, cfg, utils.Vec3{X: 5}, 90)

	combat, ok := ecs.GetComponent[*components.CombatComponent](em, id)
	if !ok {
		t.Fatal("combat component missing")
	}
	if combat.AmmoInventory[components.AmmoType9mm] != 85 || combat.AmmoInventory[components.AmmoTypeAR] != 120 {
		t.Errorf("unexpected inventory %v", combat.AmmoInventory)
	}
	if combat.EquippedWeapon != ecs.InvalidEntity {
		t.Error("character must start unarmed")
	}

	viewer, _ := ecs.GetComponent[*components.ViewerComponent](em, id)
	if viewer.Yaw != 90 || viewer.InterpDistance != 250 || viewer.InterpElevation != 65 {
		t.Errorf("unexpected viewer %+v", viewer)
	}
	for _, has := range []bool{
		ecs.HasComponent[*components.CrosshairComponent](em, id),
		ecs.HasComponent[*components.ItemTraceComponent](em, id),
		ecs.HasComponent[*components.AimComponent](em, id),
		ecs.HasComponent[*components.MovementComponent](em, id),
	} {
		if !has {
			t.Error("character is missing a component")
		}
	}
}
