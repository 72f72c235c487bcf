package curves

import (
	"fmt"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
)

// ScriptCurve 由 tengo 表达式定义的曲线
//
// 脚本读取全局变量 t（秒），把结果写入 out，例如：
//
//	math := import("math")
//	out = math.sin(t * math.pi / 1.4)
type ScriptCurve struct {
	source   string
	compiled *tengo.Compiled
}

// NewScriptCurve 编译脚本；脚本只编译一次，之后每次采样只更新 t 并运行
func NewScriptCurve(source string) (*ScriptCurve, error) {
	script := tengo.NewScript([]byte(source))
	if err := script.Add("t", 0.0); err != nil {
		return nil, fmt.Errorf("declare t: %w", err)
	}
	if err := script.Add("out", 0.0); err != nil {
		return nil, fmt.Errorf("declare out: %w", err)
	}
	script.SetImports(stdlib.GetModuleMap("math"))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("compile curve script: %w", err)
	}
	return &ScriptCurve{source: source, compiled: compiled}, nil
}

// Eval 在 t 处运行脚本
func (c *ScriptCurve) Eval(t float64) (float64, error) {
	if err := c.compiled.Set("t", t); err != nil {
		return 0, err
	}
	if err := c.compiled.Run(); err != nil {
		return 0, fmt.Errorf("run curve script: %w", err)
	}
	return c.compiled.Get("out").Float(), nil
}

// Evaluate 实现 Curve；脚本运行出错时返回 0
func (c *ScriptCurve) Evaluate(t float64) float64 {
	v, err := c.Eval(t)
	if err != nil {
		return 0
	}
	return v
}
