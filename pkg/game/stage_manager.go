package game

import (
	"errors"
	"fmt"

	"github.com/decker502/shooter/pkg/logger"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog"
)

// ErrNoStageFactory 未设置关卡工厂
var ErrNoStageFactory = errors.New("stage factory not set")

// StageFactory 按名称创建关卡，避免 game 包依赖具体关卡实现
type StageFactory func(name string) (Stage, error)

// StageManager 管理当前运行的关卡，同一时刻只有一个关卡被更新和绘制
type StageManager struct {
	current     Stage
	currentName string
	factory     StageFactory
	log         zerolog.Logger
}

// NewStageManager 创建没有活动关卡的管理器
func NewStageManager() *StageManager {
	return &StageManager{log: logger.For("StageManager")}
}

// SetStageFactory 设置关卡工厂
func (sm *StageManager) SetStageFactory(factory StageFactory) {
	sm.factory = factory
}

// SwitchTo 切换到 stage；旧关卡若实现 Saveable 会先保存
func (sm *StageManager) SwitchTo(name string, stage Stage) {
	if sm.current != nil && sm.current != stage {
		sm.saveCurrent()
	}
	sm.current = stage
	sm.currentName = name
}

// Current 返回当前关卡及其名称；没有时返回 nil
func (sm *StageManager) Current() (Stage, string) {
	return sm.current, sm.currentName
}

// Load 用工厂创建并切换到 name 关卡
//
// 失败时保持当前关卡不变。
func (sm *StageManager) Load(name string) error {
	if sm.factory == nil {
		return ErrNoStageFactory
	}
	stage, err := sm.factory(name)
	if err != nil {
		sm.log.Error().Err(err).Str("stage", name).Msg("failed to create stage")
		return fmt.Errorf("load stage %q: %w", name, err)
	}
	sm.SwitchTo(name, stage)
	sm.log.Info().Str("stage", name).Msg("stage loaded")
	return nil
}

// SaveOnExit 保存当前关卡（若支持）
func (sm *StageManager) SaveOnExit() bool {
	return sm.saveCurrent()
}

func (sm *StageManager) saveCurrent() bool {
	s, ok := sm.current.(Saveable)
	if !ok {
		return true
	}
	if !s.SaveOnExit() {
		sm.log.Warn().Str("stage", sm.currentName).Msg("stage failed to save on exit")
		return false
	}
	return true
}

// Update 更新当前关卡
func (sm *StageManager) Update(deltaTime float64) {
	if sm.current != nil {
		sm.current.Update(deltaTime)
	}
}

// Draw 绘制当前关卡
func (sm *StageManager) Draw(screen *ebiten.Image) {
	if sm.current != nil {
		sm.current.Draw(screen)
	}
}
