package scenes

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/decker502/shooter/pkg/components"
	"github.com/decker502/shooter/pkg/ecs"
	"github.com/decker502/shooter/pkg/entities"
	"github.com/decker502/shooter/pkg/game"
	"github.com/decker502/shooter/pkg/utils"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// 俯视图比例：像素/世界单位
const pixelsPerUnit = 0.35

var (
	colorBackground = color.RGBA{R: 28, G: 30, B: 34, A: 255}
	colorWall       = color.RGBA{R: 140, G: 140, B: 150, A: 255}
	colorPlayer     = color.RGBA{R: 80, G: 170, B: 255, A: 255}
	colorCrosshair  = color.RGBA{R: 255, G: 255, B: 255, A: 220}
	colorBeam       = color.RGBA{R: 255, G: 220, B: 120, A: 200}
	colorImpact     = color.RGBA{R: 255, G: 120, B: 60, A: 255}
	colorAmmo       = color.RGBA{R: 200, G: 200, B: 90, A: 255}

	rarityColors = map[components.ItemRarity]color.RGBA{
		components.RarityDamaged:   {R: 120, G: 110, B: 100, A: 255},
		components.RarityCommon:    {R: 200, G: 200, B: 200, A: 255},
		components.RarityUncommon:  {R: 90, G: 200, B: 90, A: 255},
		components.RarityRare:      {R: 80, G: 130, B: 255, A: 255},
		components.RarityLegendary: {R: 255, G: 170, B: 40, A: 255},
	}
)

// Draw 实现 game.Stage：以玩家为中心的俯视图
func (s *ShooterScene) Draw(screen *ebiten.Image) {
	screen.Fill(colorBackground)

	playerTransform, ok := ecs.GetComponent[*components.TransformComponent](s.em, s.player)
	if !ok {
		return
	}
	bounds := screen.Bounds()
	cx, cy := float32(bounds.Dx())/2, float32(bounds.Dy())/2
	toScreen := func(v utils.Vec3) (float32, float32) {
		return cx + float32((v.X-playerTransform.Location.X)*pixelsPerUnit),
			cy + float32((v.Y-playerTransform.Location.Y)*pixelsPerUnit)
	}

	for _, w := range s.walls {
		ax, ay := toScreen(w[0])
		bx, by := toScreen(w[1])
		vector.StrokeLine(screen, ax, ay, bx, by, float32(wallThickness*pixelsPerUnit*2), colorWall, true)
	}

	s.drawItems(screen, toScreen)
	s.drawPlayer(screen, toScreen, playerTransform)
	s.drawEffects(screen, toScreen, playerTransform)
	s.drawWidgets(screen, toScreen)
	s.drawHUD(screen)
}

func (s *ShooterScene) drawItems(screen *ebiten.Image, toScreen func(utils.Vec3) (float32, float32)) {
	for _, id := range ecs.GetEntitiesWith3[
		*components.ItemComponent,
		*components.ItemCollisionComponent,
		*components.TransformComponent,
	](s.em) {
		item, _ := ecs.GetComponent[*components.ItemComponent](s.em, id)
		collision, _ := ecs.GetComponent[*components.ItemCollisionComponent](s.em, id)
		transform, _ := ecs.GetComponent[*components.TransformComponent](s.em, id)
		if !collision.MeshVisible {
			continue
		}

		x, y := toScreen(transform.Location)
		// 高度用半径表现：飞向镜头或被抛起时变大
		r := float32((itemBodyRadius + transform.Location.Z*0.1) * pixelsPerUnit * transform.Scale)
		clr := rarityColors[item.Rarity]
		if item.Kind == components.ItemKindAmmo {
			clr = colorAmmo
		}
		vector.DrawFilledCircle(screen, x, y, r, clr, true)

		if item.Kind == components.ItemKindWeapon {
			dir := utils.ForwardFromRotation(transform.Yaw, 0)
			vector.StrokeLine(screen, x, y, x+float32(dir.X)*r*2, y+float32(dir.Y)*r*2, 2, clr, true)
		}
	}
}

func (s *ShooterScene) drawPlayer(screen *ebiten.Image, toScreen func(utils.Vec3) (float32, float32), transform *components.TransformComponent) {
	x, y := toScreen(transform.Location)
	vector.DrawFilledCircle(screen, x, y, float32(30*pixelsPerUnit), colorPlayer, true)

	viewer, ok := ecs.GetComponent[*components.ViewerComponent](s.em, s.player)
	if !ok {
		return
	}
	if settings := s.settings; settings != nil && !settings.GetSettings().ShowCrosshair {
		return
	}

	// 准星画在前方固定距离，四条短线的间距随扩散变化
	forward := utils.ForwardFromRotation(viewer.Yaw, 0)
	right := utils.RightFromYaw(viewer.Yaw)
	aimPoint := transform.Location.Add(forward.Scale(600))
	ax, ay := toScreen(aimPoint)

	spread := 1.0
	if c, ok := ecs.GetComponent[*components.CrosshairComponent](s.em, s.player); ok {
		spread = c.SpreadMultiplier
	}
	gap := float32(6 + spread*12)
	const length = 8
	for _, d := range []utils.Vec3{forward, forward.Scale(-1), right, right.Scale(-1)} {
		dx, dy := float32(d.X), float32(d.Y)
		vector.StrokeLine(screen, ax+dx*gap, ay+dy*gap, ax+dx*(gap+length), ay+dy*(gap+length), 2, colorCrosshair, true)
	}
}

func (s *ShooterScene) drawEffects(screen *ebiten.Image, toScreen func(utils.Vec3) (float32, float32), transform *components.TransformComponent) {
	origin := transform.Location
	if weapon := s.combat.EquippedWeapon(s.player); weapon != ecs.InvalidEntity {
		if loc, ok := s.world.SocketLocation(weapon, entities.BarrelSocket); ok {
			origin = loc
		}
	}
	ox, oy := toScreen(origin)

	for _, e := range s.presenter.effects {
		x, y := toScreen(e.At)
		switch e.Kind {
		case game.EffectBeam:
			vector.StrokeLine(screen, ox, oy, x, y, 1.5, colorBeam, true)
		case game.EffectImpact:
			vector.DrawFilledCircle(screen, x, y, 4, colorImpact, true)
		case game.EffectMuzzleFlash:
			vector.DrawFilledCircle(screen, x, y, 6, colorBeam, true)
		}
	}
}

func (s *ShooterScene) drawWidgets(screen *ebiten.Image, toScreen func(utils.Vec3) (float32, float32)) {
	if s.settings != nil && !s.settings.GetSettings().ShowPickupWidget {
		return
	}
	for id, info := range s.presenter.widgets {
		transform, ok := ecs.GetComponent[*components.TransformComponent](s.em, id)
		if !ok {
			continue
		}
		x, y := toScreen(transform.Location)
		var stars strings.Builder
		for _, on := range info.ActiveStars {
			if on {
				stars.WriteByte('*')
			} else {
				stars.WriteByte('.')
			}
		}
		label := fmt.Sprintf("%s x%d\n%s", info.Name, info.Count, stars.String())
		ebitenutil.DebugPrintAt(screen, label, int(x)+12, int(y)-30)
	}
}

func (s *ShooterScene) drawHUD(screen *ebiten.Image) {
	hud := s.HUD()
	lines := []string{
		fmt.Sprintf("Weapon: %s", hud.WeaponName),
		fmt.Sprintf("Ammo: %d/%d  %s carried: %d", hud.Ammo, hud.Magazine, hud.AmmoType, hud.Carried),
		hudStateLine(hud),
		fmt.Sprintf("Spread: %.2f  FOV: %.0f", hud.Spread, math.Round(hud.FOV)),
	}
	if hud.Target != "" {
		lines = append(lines, "Target: "+hud.Target+"  [E] pick up")
	}
	if hud.Animation != "" {
		lines = append(lines, "Anim: "+hud.Animation)
	}
	ebitenutil.DebugPrint(screen, strings.Join(lines, "\n"))
}

func hudStateLine(hud HUD) string {
	if hud.ReloadRemaining > 0 {
		return fmt.Sprintf("State: %s (%.1fs)", hud.State, hud.ReloadRemaining)
	}
	return fmt.Sprintf("State: %s", hud.State)
}
