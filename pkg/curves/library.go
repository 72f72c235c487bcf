package curves

import (
	"errors"
	"fmt"
	"sync"

	"github.com/decker502/shooter/pkg/logger"
	"github.com/rs/zerolog"
)

// ErrUnknownCurve 曲线 ID 未注册
var ErrUnknownCurve = errors.New("unknown curve")

// Curve 单变量曲线：elapsed 秒 -> 标量
type Curve interface {
	Evaluate(t float64) float64
}

// CurveFunc 让普通函数实现 Curve
type CurveFunc func(t float64) float64

// Evaluate 实现 Curve
func (f CurveFunc) Evaluate(t float64) float64 { return f(t) }

// Library 按 ID 注册的曲线集合，实现 game.CurveSampler
//
// 配置热重载时会整体替换曲线，因此内部加读写锁。
type Library struct {
	mu     sync.RWMutex
	curves map[string]Curve
	missed map[string]bool
	log    zerolog.Logger
}

// NewLibrary 创建空曲线库
func NewLibrary() *Library {
	return &Library{
		curves: make(map[string]Curve),
		missed: make(map[string]bool),
		log:    logger.For("CurveLibrary"),
	}
}

// Register 注册或替换曲线
func (l *Library) Register(id string, c Curve) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.curves[id] = c
	delete(l.missed, id)
}

// Has 曲线是否已注册
func (l *Library) Has(id string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.curves[id]
	return ok
}

// Lookup 返回曲线，未注册时返回 ErrUnknownCurve
func (l *Library) Lookup(id string) (Curve, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	c, ok := l.curves[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCurve, id)
	}
	return c, nil
}

// Sample 实现 game.CurveSampler
//
// 未注册的曲线返回 t 本身（等价于线性），并且每个 ID 只警告一次。
func (l *Library) Sample(curveID string, t float64) float64 {
	l.mu.RLock()
	c, ok := l.curves[curveID]
	l.mu.RUnlock()
	if ok {
		return c.Evaluate(t)
	}

	l.mu.Lock()
	if !l.missed[curveID] {
		l.missed[curveID] = true
		l.log.Warn().Str("curve", curveID).Msg("curve not registered, sampling linearly")
	}
	l.mu.Unlock()
	return t
}
