package game

import (
	"fmt"

	"github.com/decker502/shooter/pkg/logger"
	"github.com/quasilyte/gdata/v2"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// ControlSettings 玩家偏好设置
//
// 只保存操作偏好（灵敏度、连发、准星显示），不保存战斗进度。
type ControlSettings struct {
	// 鼠标灵敏度倍率，分别作用于腰射与瞄准时的视角速率
	MouseHipSensitivity    float64 `yaml:"mouseHipSensitivity"`    // 0.1 ~ 5.0
	MouseAimingSensitivity float64 `yaml:"mouseAimingSensitivity"` // 0.1 ~ 5.0
	InvertLookUp           bool    `yaml:"invertLookUp"`

	AutoFire         bool `yaml:"autoFire"`         // 按住开火键持续射击
	ShowCrosshair    bool `yaml:"showCrosshair"`    // 显示准星
	ShowPickupWidget bool `yaml:"showPickupWidget"` // 显示拾取提示
}

// DefaultSettings 返回默认设置
func DefaultSettings() *ControlSettings {
	return &ControlSettings{
		MouseHipSensitivity:    1.0,
		MouseAimingSensitivity: 0.6,
		InvertLookUp:           false,
		AutoFire:               true,
		ShowCrosshair:          true,
		ShowPickupWidget:       true,
	}
}

// 灵敏度范围
const (
	minSensitivity = 0.1
	maxSensitivity = 5.0
)

// SettingsManager 设置管理器
// 负责偏好设置的加载、保存和内存管理
type SettingsManager struct {
	gdataManager *gdata.Manager   // gdata 跨平台存储管理器，可为 nil（降级模式）
	settings     *ControlSettings // 当前设置
	log          zerolog.Logger
}

// 存储路径常量
const (
	settingsObject   = "settings"
	settingsProperty = "controls"
)

// NewSettingsManager 创建新的设置管理器实例
//
// 参数：
//   - gdataManager: gdata 跨平台存储管理器，可为 nil（降级模式，仅内存设置）
//
// 返回：
//   - *SettingsManager: 设置管理器实例
//   - error: 保留；加载失败只记录警告并回退到默认设置
func NewSettingsManager(gdataManager *gdata.Manager) (*SettingsManager, error) {
	sm := &SettingsManager{
		gdataManager: gdataManager,
		settings:     DefaultSettings(),
		log:          logger.For("SettingsManager"),
	}

	if err := sm.Load(); err != nil {
		sm.log.Warn().Err(err).Msg("failed to load settings, using defaults")
	}

	return sm, nil
}

// Load 从 gdata 加载设置
//
// 如果 gdataManager 为 nil 或文件不存在，使用默认设置
//
// 返回：
//   - error: 如果反序列化失败返回错误
func (sm *SettingsManager) Load() error {
	if sm.gdataManager == nil {
		sm.settings = DefaultSettings()
		return nil
	}

	if !sm.gdataManager.ObjectPropExists(settingsObject, settingsProperty) {
		sm.settings = DefaultSettings()
		return nil
	}

	data, err := sm.gdataManager.LoadObjectProp(settingsObject, settingsProperty)
	if err != nil {
		sm.settings = DefaultSettings()
		return fmt.Errorf("failed to load settings: %w", err)
	}

	// 从默认值开始解码，旧版本文件中缺失的字段保持默认
	loaded := DefaultSettings()
	if err := yaml.Unmarshal(data, loaded); err != nil {
		sm.settings = DefaultSettings()
		return fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	loaded.MouseHipSensitivity = clampSensitivity(loaded.MouseHipSensitivity)
	loaded.MouseAimingSensitivity = clampSensitivity(loaded.MouseAimingSensitivity)

	sm.settings = loaded
	sm.log.Debug().Msg("settings loaded")
	return nil
}

// Save 保存设置到 gdata
//
// 如果 gdataManager 为 nil，返回 nil（降级模式，不报错）
func (sm *SettingsManager) Save() error {
	if sm.gdataManager == nil {
		return nil
	}

	data, err := yaml.Marshal(sm.settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := sm.gdataManager.SaveObjectProp(settingsObject, settingsProperty, data); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	sm.log.Debug().Msg("settings saved")
	return nil
}

// GetSettings 获取当前设置
func (sm *SettingsManager) GetSettings() *ControlSettings {
	return sm.settings
}

// SetMouseHipSensitivity 设置腰射灵敏度（限制在 0.1 ~ 5.0）
//
// 注意：仅修改内存中的设置，需调用 Save() 方法持久化
func (sm *SettingsManager) SetMouseHipSensitivity(v float64) {
	sm.settings.MouseHipSensitivity = clampSensitivity(v)
}

// SetMouseAimingSensitivity 设置瞄准灵敏度（限制在 0.1 ~ 5.0）
func (sm *SettingsManager) SetMouseAimingSensitivity(v float64) {
	sm.settings.MouseAimingSensitivity = clampSensitivity(v)
}

// SetInvertLookUp 设置是否反转上下视角
func (sm *SettingsManager) SetInvertLookUp(invert bool) {
	sm.settings.InvertLookUp = invert
}

// SetAutoFire 设置连发开关
func (sm *SettingsManager) SetAutoFire(enabled bool) {
	sm.settings.AutoFire = enabled
}

// SetShowCrosshair 设置准星显示
func (sm *SettingsManager) SetShowCrosshair(enabled bool) {
	sm.settings.ShowCrosshair = enabled
}

// SetShowPickupWidget 设置拾取提示显示
func (sm *SettingsManager) SetShowPickupWidget(enabled bool) {
	sm.settings.ShowPickupWidget = enabled
}

func clampSensitivity(v float64) float64 {
	if v < minSensitivity {
		return minSensitivity
	}
	if v > maxSensitivity {
		return maxSensitivity
	}
	return v
}
