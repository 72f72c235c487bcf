package scenes

import (
	"github.com/decker502/shooter/pkg/components"
	"github.com/decker502/shooter/pkg/ecs"
	"github.com/decker502/shooter/pkg/game"
	"github.com/decker502/shooter/pkg/logger"
	"github.com/decker502/shooter/pkg/utils"
	"github.com/rs/zerolog"
)

// 换弹动画中各通知点的时间（秒，从动画开始计）
const (
	ReloadGrabClipTime    = 0.3
	ReloadReleaseClipTime = 0.9
	ReloadFinishTime      = 1.1
)

// effectLifetime 特效在屏幕上停留的时间
const effectLifetime = 0.15

// EffectInstance 正在显示的特效
type EffectInstance struct {
	Kind game.EffectKind
	At   utils.Vec3
	TTL  float64
}

// scenePresenter 实现 game.Presenter
//
// 记录拾取提示与特效供 Draw 使用，并充当动画驱动：
// 换弹动画开始后按固定时间点回调 GrabClip/ReleaseClip/FinishReloading。
type scenePresenter struct {
	scene *ShooterScene

	widgets map[ecs.EntityID]game.WidgetInfo
	effects []EffectInstance
	// lastAnimation HUD 上显示的最近一段动画
	lastAnimation string

	grabTimer    game.TimerHandle
	releaseTimer game.TimerHandle
	finishTimer  game.TimerHandle

	log zerolog.Logger
}

func newScenePresenter(scene *ShooterScene) *scenePresenter {
	return &scenePresenter{
		scene:   scene,
		widgets: make(map[ecs.EntityID]game.WidgetInfo),
		log:     logger.For("ScenePresenter"),
	}
}

func (p *scenePresenter) ShowPickupWidget(entity ecs.EntityID, info game.WidgetInfo) {
	p.widgets[entity] = info
}

func (p *scenePresenter) HidePickupWidget(entity ecs.EntityID) {
	delete(p.widgets, entity)
}

func (p *scenePresenter) PlayEffect(kind game.EffectKind, at utils.Vec3) {
	p.effects = append(p.effects, EffectInstance{Kind: kind, At: at, TTL: effectLifetime})
}

func (p *scenePresenter) PlayAnimation(montageID, sectionID string) {
	p.lastAnimation = montageID + "/" + sectionID
	p.log.Debug().Str("montage", montageID).Str("section", sectionID).Msg("play animation")

	if montageID != reloadMontage(p.scene) {
		return
	}
	s := p.scene
	player := s.player
	s.timers.SetTimer(&p.grabTimer, player, ReloadGrabClipTime, false, func() {
		s.combat.GrabClip(player)
	})
	s.timers.SetTimer(&p.releaseTimer, player, ReloadReleaseClipTime, false, func() {
		s.combat.ReleaseClip(player)
	})
	s.timers.SetTimer(&p.finishTimer, player, ReloadFinishTime, false, func() {
		s.combat.FinishReloading(player)
	})
}

// stopReloadNotifies 取消尚未触发的换弹通知
func (p *scenePresenter) stopReloadNotifies() {
	p.scene.timers.ClearTimer(&p.grabTimer)
	p.scene.timers.ClearTimer(&p.releaseTimer)
	p.scene.timers.ClearTimer(&p.finishTimer)
}

// tick 淘汰过期特效；换弹被打断时停止动画通知
func (p *scenePresenter) tick(deltaTime float64) {
	if p.scene.combat.GetCombatState(p.scene.player) != components.CombatStateReloading {
		p.stopReloadNotifies()
	}

	live := p.effects[:0]
	for _, e := range p.effects {
		e.TTL -= deltaTime
		if e.TTL > 0 {
			live = append(live, e)
		}
	}
	p.effects = live

	for id := range p.widgets {
		if !p.scene.em.EntityExists(id) {
			delete(p.widgets, id)
		}
	}
}
