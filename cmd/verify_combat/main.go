package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/decker502/shooter/pkg/components"
	"github.com/decker502/shooter/pkg/config"
	"github.com/decker502/shooter/pkg/ecs"
	"github.com/decker502/shooter/pkg/game"
	"github.com/decker502/shooter/pkg/logger"
	"github.com/decker502/shooter/pkg/scenes"
	"github.com/decker502/shooter/pkg/utils"
	"github.com/rs/zerolog"
)

const dt = 1.0 / 60

var (
	configPath  = flag.String("config", "data/shooter.yaml", "射击配置文件")
	journalPath = flag.String("journal", "", "把验证过程写入战斗日志")
	verbose     = flag.Bool("verbose", false, "显示详细调试信息")
)

// scenario 一个无界面的验证场景
type scenario struct {
	name string
	run  func(s *scenes.ShooterScene) error
}

func step(s *scenes.ShooterScene, in scenes.Input) {
	s.SetInput(in)
	s.Update(dt)
}

func wait(s *scenes.ShooterScene, seconds float64) {
	for i := 0; i < int(seconds/dt+0.5); i++ {
		s.Update(dt)
	}
}

func expect(cond bool, format string, args ...any) error {
	if !cond {
		return fmt.Errorf(format, args...)
	}
	return nil
}

func itemState(s *scenes.ShooterScene, id ecs.EntityID) components.ItemState {
	state, _ := s.Items().GetItemState(id)
	return state
}

var scenarios = []scenario{
	{
		name: "单发射击消耗弹药",
		run: func(s *scenes.ShooterScene) error {
			for i := 0; i < 5; i++ {
				step(s, scenes.Input{FirePressed: true})
				step(s, scenes.Input{FireReleased: true})
				wait(s, 0.15)
			}
			return expect(s.HUD().Ammo == 25, "ammo = %d, want 25", s.HUD().Ammo)
		},
	},
	{
		name: "换弹中拒绝开火，动画结束后补满",
		run: func(s *scenes.ShooterScene) error {
			step(s, scenes.Input{FirePressed: true, FireReleased: true})
			wait(s, 0.2)
			step(s, scenes.Input{ReloadPressed: true})
			if err := expect(s.HUD().State == components.CombatStateReloading, "state = %v", s.HUD().State); err != nil {
				return err
			}
			before := s.HUD().Ammo
			step(s, scenes.Input{FirePressed: true, FireReleased: true})
			if err := expect(s.HUD().Ammo == before, "fired while reloading"); err != nil {
				return err
			}
			wait(s, scenes.ReloadFinishTime+0.1)
			hud := s.HUD()
			return expect(hud.Ammo == 30 && hud.Carried == 84, "ammo %d carried %d, want 30/84", hud.Ammo, hud.Carried)
		},
	},
	{
		name: "按住开火键连发，打空自动换弹",
		run: func(s *scenes.ShooterScene) error {
			carried := s.HUD().Carried
			step(s, scenes.Input{FirePressed: true})
			for i := 0; i < int(5.0/dt) && s.HUD().State != components.CombatStateReloading; i++ {
				step(s, scenes.Input{})
			}
			hud := s.HUD()
			if err := expect(hud.State == components.CombatStateReloading && hud.Ammo == 0 && hud.Carried == carried,
				"state %v ammo %d carried %d, want Reloading 0/%d", hud.State, hud.Ammo, hud.Carried, carried); err != nil {
				return err
			}
			step(s, scenes.Input{FireReleased: true})
			wait(s, scenes.ReloadFinishTime+0.1)
			hud = s.HUD()
			want := carried - hud.Magazine
			return expect(hud.State == components.CombatStateUnoccupied && hud.Ammo == hud.Magazine && hud.Carried == want,
				"state %v ammo %d/%d carried %d, want Unoccupied full and %d carried", hud.State, hud.Ammo, hud.Magazine, hud.Carried, want)
		},
	},
	{
		name: "拾取武器并交换",
		run: func(s *scenes.ShooterScene) error {
			old := s.Combat().EquippedWeapon(s.Player())
			ar, err := s.SpawnWeapon("ar", utils.Vec3{X: 120}, 0)
			if err != nil {
				return err
			}
			s.FaceTowards(utils.Vec3{X: 120})
			step(s, scenes.Input{})
			if err := expect(s.HUD().Target != "", "nothing targeted"); err != nil {
				return err
			}
			step(s, scenes.Input{SelectPressed: true})
			wait(s, 1.0)
			if err := expect(s.Combat().EquippedWeapon(s.Player()) == ar, "ar not equipped"); err != nil {
				return err
			}
			wait(s, 1.0)
			return expect(itemState(s, old) == components.ItemStatePickup, "old weapon state %v", itemState(s, old))
		},
	},
	{
		name: "丢弃武器：下落后可再次拾取",
		run: func(s *scenes.ShooterScene) error {
			weapon := s.Combat().EquippedWeapon(s.Player())
			step(s, scenes.Input{DropPressed: true})
			if err := expect(itemState(s, weapon) == components.ItemStateFalling, "state %v", itemState(s, weapon)); err != nil {
				return err
			}
			wait(s, 1.0)
			return expect(itemState(s, weapon) == components.ItemStatePickup, "state %v", itemState(s, weapon))
		},
	},
	{
		name: "拾取弹药并入库存",
		run: func(s *scenes.ShooterScene) error {
			ammo := s.SpawnAmmo(components.AmmoType9mm, 30, utils.Vec3{X: 100, Y: 20})
			s.FaceTowards(utils.Vec3{X: 100, Y: 20})
			step(s, scenes.Input{})
			step(s, scenes.Input{SelectPressed: true})
			wait(s, 1.0)
			if err := expect(!s.EntityManager().EntityExists(ammo), "ammo pickup not consumed"); err != nil {
				return err
			}
			return expect(s.HUD().Carried == 115, "carried %d, want 115", s.HUD().Carried)
		},
	},
}

func main() {
	flag.Parse()

	level := zerolog.WarnLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	logger.NewConsole(os.Stderr, logger.LevelFromEnv(level))

	cfg, err := config.LoadShooterConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠️  %v，使用默认配置\n", err)
		cfg = config.DefaultShooterConfig()
	}

	var journal *game.CombatJournal
	if *journalPath != "" {
		if journal, err = game.OpenCombatJournal(*journalPath); err != nil {
			fmt.Fprintf(os.Stderr, "❌ %v\n", err)
			os.Exit(1)
		}
		defer journal.Close()
	}

	fmt.Println("=== 战斗流程验证 ===")
	failed := 0
	for i, sc := range scenarios {
		s, err := scenes.NewShooterScene(scenes.Options{Config: cfg, Journal: journal, Empty: true})
		if err == nil {
			err = sc.run(s)
		}
		if err != nil {
			failed++
			fmt.Printf("[%d] ❌ %s: %v\n", i+1, sc.name, err)
			continue
		}
		fmt.Printf("[%d] ✅ %s\n", i+1, sc.name)
	}

	fmt.Printf("\n通过 %d/%d\n", len(scenarios)-failed, len(scenarios))
	if failed > 0 {
		if journal != nil {
			_ = journal.Close()
		}
		os.Exit(1)
	}
}
