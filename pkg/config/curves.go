package config

import (
	"fmt"

	"github.com/decker502/shooter/pkg/curves"
)

// BuildCurve 根据配置构造曲线
func (cc CurveConfig) BuildCurve() (curves.Curve, error) {
	if err := cc.validate(); err != nil {
		return nil, err
	}

	switch {
	case len(cc.Keys) > 0:
		keys := make([]curves.Key, len(cc.Keys))
		for i, k := range cc.Keys {
			keys[i] = curves.Key{Time: k.Time, Value: k.Value}
		}
		return curves.NewKeyframeCurve(keys)

	case cc.Easing != "":
		ease, ok := curves.LookupEasing(cc.Easing)
		if !ok {
			return nil, fmt.Errorf("unknown easing %q", cc.Easing)
		}
		to := 1.0
		if cc.To != nil {
			to = *cc.To
		}
		return &curves.EasingCurve{Ease: ease, Duration: cc.Duration, From: cc.From, To: to}, nil

	default:
		return curves.NewScriptCurve(cc.Script)
	}
}

// BuildCurves 把配置中的全部曲线注册到曲线库
//
// 任一曲线构造失败都会返回错误，此时曲线库可能已被部分更新。
func (c *ShooterConfig) BuildCurves(lib *curves.Library) error {
	for id, cc := range c.Curves {
		curve, err := cc.BuildCurve()
		if err != nil {
			return fmt.Errorf("curve %q: %w", id, err)
		}
		lib.Register(id, curve)
	}
	return nil
}
