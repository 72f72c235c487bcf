package game

import (
	"github.com/decker502/shooter/pkg/ecs"
	"github.com/decker502/shooter/pkg/logger"
	"github.com/rs/zerolog"
)

// TimerHandle 计时器句柄
//
// 零值表示"没有计时器"。句柄只是一个编号：计时器结束或被清除后，
// 旧句柄上的所有查询都返回未激活。
type TimerHandle struct {
	id uint64
}

// IsValid 句柄是否曾被分配
func (h TimerHandle) IsValid() bool {
	return h.id != 0
}

// TimerCallback 计时器到期回调
type TimerCallback func()

type timerEntry struct {
	id       uint64
	owner    ecs.EntityID
	duration float64
	elapsed  float64
	loop     bool
	callback TimerCallback
}

// TimerManager 帧驱动的一次性/循环计时器
//
// 所有回调都只在 Advance 中触发（即帧边界），不存在并发。
// 计时器可以绑定一个所属实体：到期时若该实体已不存在，回调被静默丢弃。
type TimerManager struct {
	entityManager *ecs.EntityManager
	nextID        uint64
	timers        map[uint64]*timerEntry
	order         []uint64 // 创建顺序，保证同帧内回调顺序确定
	log           zerolog.Logger
}

// NewTimerManager 创建计时器管理器
//
// 参数：
//   - em: 用于检查所属实体是否仍存活；可为 nil（不做存活检查）
func NewTimerManager(em *ecs.EntityManager) *TimerManager {
	return &TimerManager{
		entityManager: em,
		timers:        make(map[uint64]*timerEntry),
		log:           logger.For("TimerManager"),
	}
}

// Schedule 创建新的计时器并返回句柄
//
// 参数：
//   - owner: 所属实体，ecs.InvalidEntity 表示不绑定
//   - duration: 时长（秒），<= 0 时不创建计时器并返回零值句柄
//   - repeating: 是否循环
//   - cb: 到期回调
func (tm *TimerManager) Schedule(owner ecs.EntityID, duration float64, repeating bool, cb TimerCallback) TimerHandle {
	if duration <= 0 || cb == nil {
		return TimerHandle{}
	}
	tm.nextID++
	entry := &timerEntry{
		id:       tm.nextID,
		owner:    owner,
		duration: duration,
		loop:     repeating,
		callback: cb,
	}
	tm.timers[entry.id] = entry
	tm.order = append(tm.order, entry.id)
	return TimerHandle{id: entry.id}
}

// Cancel 取消计时器；对已失效的句柄调用是安全的
func (tm *TimerManager) Cancel(h TimerHandle) {
	if !h.IsValid() {
		return
	}
	delete(tm.timers, h.id)
}

// SetTimer 以覆盖方式设置计时器
//
// 如果 handle 指向的计时器仍在运行，它会先被取消，然后 handle 被改写为新计时器。
// 同一类计时器共用一个 handle 字段即可保证"新计时器替换旧计时器"。
func (tm *TimerManager) SetTimer(handle *TimerHandle, owner ecs.EntityID, duration float64, repeating bool, cb TimerCallback) {
	if handle == nil {
		return
	}
	tm.Cancel(*handle)
	*handle = tm.Schedule(owner, duration, repeating, cb)
}

// ClearTimer 取消 handle 指向的计时器并将其重置为零值
func (tm *TimerManager) ClearTimer(handle *TimerHandle) {
	if handle == nil {
		return
	}
	tm.Cancel(*handle)
	*handle = TimerHandle{}
}

// IsTimerActive 计时器是否仍在运行
func (tm *TimerManager) IsTimerActive(h TimerHandle) bool {
	if !h.IsValid() {
		return false
	}
	_, ok := tm.timers[h.id]
	return ok
}

// GetTimerElapsed 返回计时器已运行的时间（秒）；未激活返回 -1
func (tm *TimerManager) GetTimerElapsed(h TimerHandle) float64 {
	entry, ok := tm.timers[h.id]
	if !h.IsValid() || !ok {
		return -1
	}
	return entry.elapsed
}

// GetTimerRemaining 返回计时器剩余时间（秒）；未激活返回 -1
func (tm *TimerManager) GetTimerRemaining(h TimerHandle) float64 {
	entry, ok := tm.timers[h.id]
	if !h.IsValid() || !ok {
		return -1
	}
	return entry.duration - entry.elapsed
}

// ActiveCount 返回正在运行的计时器数量
func (tm *TimerManager) ActiveCount() int {
	return len(tm.timers)
}

// Advance 推进所有计时器并触发到期回调
//
// 回调中新建的计时器从下一帧开始计时。
// 每个循环计时器每帧最多触发一次，多余的时间保留到下一周期。
func (tm *TimerManager) Advance(deltaTime float64) {
	if len(tm.order) == 0 {
		return
	}

	snapshot := tm.order
	tm.order = make([]uint64, 0, len(snapshot))

	for _, id := range snapshot {
		entry, ok := tm.timers[id]
		if !ok {
			continue // 已取消
		}

		entry.elapsed += deltaTime
		if entry.elapsed < entry.duration {
			tm.order = append(tm.order, id)
			continue
		}

		if entry.owner != ecs.InvalidEntity && tm.entityManager != nil && !tm.entityManager.EntityExists(entry.owner) {
			tm.log.Debug().Uint64("timer", id).Uint64("owner", uint64(entry.owner)).Msg("owner gone, dropping timer")
			delete(tm.timers, id)
			continue
		}

		if entry.loop {
			entry.elapsed -= entry.duration
			if entry.elapsed > entry.duration {
				entry.elapsed = 0
			}
			tm.order = append(tm.order, id)
		} else {
			delete(tm.timers, id)
		}

		entry.callback()
	}

	// 回调期间新建的计时器追加在 tm.order 之后，保持创建顺序
	if len(tm.order) > 0 {
		tm.order = dedupeLive(tm.order, tm.timers)
	}
}

// dedupeLive 去除已失效或重复的编号
func dedupeLive(order []uint64, live map[uint64]*timerEntry) []uint64 {
	seen := make(map[uint64]struct{}, len(order))
	out := order[:0]
	for _, id := range order {
		if _, ok := live[id]; !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
