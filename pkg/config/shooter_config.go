package config

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// 配置错误
var (
	// ErrUnknownCurve 配置引用了未定义的曲线
	ErrUnknownCurve = errors.New("unknown curve")
	// ErrInvalidWeapon 武器配置不满足弹药不变量或引用了未知武器
	ErrInvalidWeapon = errors.New("invalid weapon")
)

// ShooterConfig 战斗核心的全部可调参数
//
// 配置文件位置: data/shooter.yaml
type ShooterConfig struct {
	Combat    CombatConfig            `yaml:"combat"`
	Crosshair CrosshairConfig         `yaml:"crosshair"`
	Aim       AimConfig               `yaml:"aim"`
	Items     ItemsConfig             `yaml:"items"`
	Weapons   map[string]WeaponConfig `yaml:"weapons"`
	Curves    map[string]CurveConfig  `yaml:"curves"`
	Ammo      AmmoConfig              `yaml:"ammo"`
}

// CombatConfig 射击与换弹参数
type CombatConfig struct {
	// AutomaticFireRate 两发之间的间隔（秒）
	AutomaticFireRate float64 `yaml:"automaticFireRate"`
	// ShootTimeDuration 每次射击后准星"射击"分量保持的时间（秒）
	ShootTimeDuration float64 `yaml:"shootTimeDuration"`
	TraceLength       float64 `yaml:"traceLength"`
	AutoFire          bool    `yaml:"autoFire"`
	// DefaultWeapon 角色初始化时生成并装备的武器（weapons 中的键）
	DefaultWeapon string `yaml:"defaultWeapon"`
}

// CrosshairConfig 准星扩散各分量的目标值与插值速率
type CrosshairConfig struct {
	Base         float64 `yaml:"base"`
	MaxSpread    float64 `yaml:"maxSpread"`
	MaxWalkSpeed float64 `yaml:"maxWalkSpeed"`
	InAirTarget  float64 `yaml:"inAirTarget"`
	InAirRate    float64 `yaml:"inAirRate"`
	LandRate     float64 `yaml:"landRate"`
	AimTarget    float64 `yaml:"aimTarget"`
	AimRate      float64 `yaml:"aimRate"`
	ShootTarget  float64 `yaml:"shootTarget"`
	ShootRate    float64 `yaml:"shootRate"`
}

// AimConfig 瞄准镜头参数
type AimConfig struct {
	DefaultFOV            float64 `yaml:"defaultFOV"`
	ZoomedFOV             float64 `yaml:"zoomedFOV"`
	ZoomInterpSpeed       float64 `yaml:"zoomInterpSpeed"`
	BaseTurnRate          float64 `yaml:"baseTurnRate"`
	BaseLookUpRate        float64 `yaml:"baseLookUpRate"`
	HipTurnRate           float64 `yaml:"hipTurnRate"`
	HipLookUpRate         float64 `yaml:"hipLookUpRate"`
	AimingTurnRate        float64 `yaml:"aimingTurnRate"`
	AimingLookUpRate      float64 `yaml:"aimingLookUpRate"`
	MouseHipTurnRate      float64 `yaml:"mouseHipTurnRate"`
	MouseHipLookUpRate    float64 `yaml:"mouseHipLookUpRate"`
	MouseAimingTurnRate   float64 `yaml:"mouseAimingTurnRate"`
	MouseAimingLookUpRate float64 `yaml:"mouseAimingLookUpRate"`
}

// ItemsConfig 物品拾取插值参数
type ItemsConfig struct {
	InterpDuration        float64 `yaml:"interpDuration"`
	CameraInterpDistance  float64 `yaml:"cameraInterpDistance"`
	CameraInterpElevation float64 `yaml:"cameraInterpElevation"`
	ZCurve                string  `yaml:"zCurve"`
	ScaleCurve            string  `yaml:"scaleCurve"`
	SphereRadius          float64 `yaml:"sphereRadius"`
}

// WeaponConfig 单种武器的定义
type WeaponConfig struct {
	Name             string  `yaml:"name"`
	WeaponType       string  `yaml:"weaponType"`
	AmmoType         string  `yaml:"ammoType"`
	Rarity           string  `yaml:"rarity"`
	AmmoCount        int     `yaml:"ammoCount"`
	MagazineCapacity int     `yaml:"magazineCapacity"`
	ReloadSection    string  `yaml:"reloadSection"`
	ClipBone         string  `yaml:"clipBone"`
	ThrowWeaponTime  float64 `yaml:"throwWeaponTime"`
	ThrowImpulse     float64 `yaml:"throwImpulse"`
}

// CurveKey 关键帧
type CurveKey struct {
	Time  float64 `yaml:"time"`
	Value float64 `yaml:"value"`
}

// CurveConfig 曲线定义；Keys、Easing、Script 三选一
type CurveConfig struct {
	Keys     []CurveKey `yaml:"keys,omitempty"`
	Easing   string     `yaml:"easing,omitempty"`
	Duration float64    `yaml:"duration,omitempty"`
	From     float64    `yaml:"from,omitempty"`
	To       *float64   `yaml:"to,omitempty"`
	Script   string     `yaml:"script,omitempty"`
}

// AmmoConfig 弹药库存初始值，键为弹药类型名
type AmmoConfig struct {
	Starting map[string]int `yaml:"starting"`
}

// DefaultShooterConfig 返回内置默认配置
func DefaultShooterConfig() *ShooterConfig {
	one := 1.0
	return &ShooterConfig{
		Combat: CombatConfig{
			AutomaticFireRate: 0.1,
			ShootTimeDuration: 0.05,
			TraceLength:       50000,
			AutoFire:          true,
			DefaultWeapon:     "smg",
		},
		Crosshair: CrosshairConfig{
			Base:         0.5,
			MaxSpread:    3.0,
			MaxWalkSpeed: 600,
			InAirTarget:  2.25,
			InAirRate:    2.25,
			LandRate:     30,
			AimTarget:    0.6,
			AimRate:      30,
			ShootTarget:  0.3,
			ShootRate:    60,
		},
		Aim: AimConfig{
			DefaultFOV:            90,
			ZoomedFOV:             35,
			ZoomInterpSpeed:       20,
			BaseTurnRate:          45,
			BaseLookUpRate:        45,
			HipTurnRate:           90,
			HipLookUpRate:         90,
			AimingTurnRate:        20,
			AimingLookUpRate:      20,
			MouseHipTurnRate:      1.0,
			MouseHipLookUpRate:    1.0,
			MouseAimingTurnRate:   0.6,
			MouseAimingLookUpRate: 0.6,
		},
		Items: ItemsConfig{
			InterpDuration:        0.7,
			CameraInterpDistance:  250,
			CameraInterpElevation: 65,
			ZCurve:                "itemZ",
			ScaleCurve:            "itemScale",
			SphereRadius:          150,
		},
		Weapons: map[string]WeaponConfig{
			"smg": {
				Name:             "Default SMG",
				WeaponType:       "SubmachineGun",
				AmmoType:         "9mm",
				Rarity:           "Common",
				AmmoCount:        30,
				MagazineCapacity: 30,
				ReloadSection:    "Reload_SMG",
				ClipBone:         "smg_clip",
				ThrowWeaponTime:  0.7,
				ThrowImpulse:     5000,
			},
			"ar": {
				Name:             "Assault Rifle",
				WeaponType:       "AssaultRifle",
				AmmoType:         "AR",
				Rarity:           "Rare",
				AmmoCount:        30,
				MagazineCapacity: 30,
				ReloadSection:    "Reload_AR",
				ClipBone:         "ar_clip",
				ThrowWeaponTime:  0.7,
				ThrowImpulse:     5000,
			},
		},
		Curves: map[string]CurveConfig{
			"itemZ": {Easing: "easeOutCubic", Duration: 0.7, To: &one},
			"itemScale": {Keys: []CurveKey{
				{Time: 0, Value: 1},
				{Time: 0.35, Value: 1.25},
				{Time: 0.7, Value: 0.6},
			}},
		},
		Ammo: AmmoConfig{
			Starting: map[string]int{"9mm": 85, "AR": 120},
		},
	}
}

// LoadShooterConfig 加载战斗配置
//
// 读取 YAML 后先用内置 JSON Schema 校验文档结构，再解码到结构体并执行 Validate。
// 文件中缺省的字段保留默认值。
//
// 参数:
//   - path: 配置文件路径（如 "data/shooter.yaml"）
//
// 返回:
//   - *ShooterConfig: 加载成功后的配置
//   - error: 读取、校验或解析失败
func LoadShooterConfig(path string) (*ShooterConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read shooter config: %w", err)
	}
	return ParseShooterConfig(data)
}

// ParseShooterConfig 从内存中的 YAML 解析配置
func ParseShooterConfig(data []byte) (*ShooterConfig, error) {
	if err := validateSchema(data); err != nil {
		return nil, fmt.Errorf("shooter config schema: %w", err)
	}

	config := DefaultShooterConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse shooter config: %w", err)
	}
	config.applyWeaponDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shooter config: %w", err)
	}
	return config, nil
}

// Validate 验证配置有效性
//
// 检查：
//   - 所有时长为正
//   - 每把武器满足 0 <= ammoCount <= magazineCapacity
//   - 默认武器存在
//   - 物品引用的曲线已定义
func (c *ShooterConfig) Validate() error {
	if c.Combat.AutomaticFireRate <= 0 {
		return fmt.Errorf("automaticFireRate must be positive, got %.3f", c.Combat.AutomaticFireRate)
	}
	if c.Combat.ShootTimeDuration <= 0 {
		return fmt.Errorf("shootTimeDuration must be positive, got %.3f", c.Combat.ShootTimeDuration)
	}
	if c.Items.InterpDuration <= 0 {
		return fmt.Errorf("items.interpDuration must be positive, got %.3f", c.Items.InterpDuration)
	}
	if c.Crosshair.MaxSpread <= 0 {
		return fmt.Errorf("crosshair.maxSpread must be positive, got %.3f", c.Crosshair.MaxSpread)
	}

	for _, name := range c.WeaponNames() {
		w := c.Weapons[name]
		if w.MagazineCapacity <= 0 {
			return fmt.Errorf("%w %q: magazineCapacity must be positive", ErrInvalidWeapon, name)
		}
		if w.AmmoCount < 0 || w.AmmoCount > w.MagazineCapacity {
			return fmt.Errorf("%w %q: ammoCount %d outside [0, %d]",
				ErrInvalidWeapon, name, w.AmmoCount, w.MagazineCapacity)
		}
		if w.ThrowWeaponTime <= 0 {
			return fmt.Errorf("%w %q: throwWeaponTime must be positive", ErrInvalidWeapon, name)
		}
	}
	if c.Combat.DefaultWeapon != "" {
		if _, ok := c.Weapons[c.Combat.DefaultWeapon]; !ok {
			return fmt.Errorf("%w: default weapon %q not defined", ErrInvalidWeapon, c.Combat.DefaultWeapon)
		}
	}

	for _, ref := range []string{c.Items.ZCurve, c.Items.ScaleCurve} {
		if ref == "" {
			continue
		}
		if _, ok := c.Curves[ref]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownCurve, ref)
		}
	}
	for id, cc := range c.Curves {
		if err := cc.validate(); err != nil {
			return fmt.Errorf("curve %q: %w", id, err)
		}
	}

	for ammo, n := range c.Ammo.Starting {
		if n < 0 {
			return fmt.Errorf("starting ammo %q must not be negative, got %d", ammo, n)
		}
	}
	return nil
}

func (cc CurveConfig) validate() error {
	kinds := 0
	if len(cc.Keys) > 0 {
		kinds++
	}
	if cc.Easing != "" {
		kinds++
	}
	if cc.Script != "" {
		kinds++
	}
	if kinds != 1 {
		return fmt.Errorf("exactly one of keys, easing, script must be set")
	}
	return nil
}

// applyWeaponDefaults 为文件中省略的武器字段填充默认值
func (c *ShooterConfig) applyWeaponDefaults() {
	for name, w := range c.Weapons {
		if w.Name == "" {
			w.Name = name
		}
		if w.Rarity == "" {
			w.Rarity = "Common"
		}
		if w.ThrowWeaponTime == 0 {
			w.ThrowWeaponTime = 0.7
		}
		if w.ThrowImpulse == 0 {
			w.ThrowImpulse = 5000
		}
		c.Weapons[name] = w
	}
}

// WeaponNames 返回排序后的武器键
func (c *ShooterConfig) WeaponNames() []string {
	names := make([]string, 0, len(c.Weapons))
	for name := range c.Weapons {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Weapon 按键取武器配置
func (c *ShooterConfig) Weapon(name string) (WeaponConfig, error) {
	w, ok := c.Weapons[name]
	if !ok {
		return WeaponConfig{}, fmt.Errorf("%w: %q", ErrInvalidWeapon, name)
	}
	return w, nil
}
