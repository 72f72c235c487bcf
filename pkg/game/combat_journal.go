package game

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// CombatEvent 战斗日志中的一条记录
type CombatEvent struct {
	Frame  uint64  `json:"frame"`
	Time   float64 `json:"t"`
	Kind   string  `json:"kind"` // fire, reload_start, reload_finish, equip, drop, target, ...
	Entity uint64  `json:"entity,omitempty"`
	State  string  `json:"state,omitempty"`
	Ammo   int     `json:"ammo,omitempty"`
	Detail string  `json:"detail,omitempty"`
}

// CombatJournal 以 zstd 压缩的 JSONL 记录战斗事件，用于回放与调试
//
// 所有方法在 nil 接收者上都是空操作，系统无需判断日志是否开启。
type CombatJournal struct {
	mu     sync.Mutex
	enc    *zstd.Encoder
	w      *bufio.Writer
	closer io.Closer

	frame uint64
	time  float64
	count int
}

// NewCombatJournal 在 w 上创建日志；Close 不会关闭 w
func NewCombatJournal(w io.Writer) (*CombatJournal, error) {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	return &CombatJournal{
		enc: enc,
		w:   bufio.NewWriterSize(enc, 64*1024),
	}, nil
}

// OpenCombatJournal 创建日志文件（必要时创建目录），Close 时关闭文件
func OpenCombatJournal(path string) (*CombatJournal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create journal dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create journal file: %w", err)
	}
	j, err := NewCombatJournal(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	j.closer = f
	return j, nil
}

// Tick 推进帧号与时间戳
func (j *CombatJournal) Tick(deltaTime float64) {
	if j == nil {
		return
	}
	j.mu.Lock()
	j.frame++
	j.time += deltaTime
	j.mu.Unlock()
}

// Record 写入一条事件，帧号与时间由日志填充
func (j *CombatJournal) Record(ev CombatEvent) error {
	if j == nil {
		return nil
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.w == nil {
		return fmt.Errorf("combat journal closed")
	}

	ev.Frame = j.frame
	ev.Time = j.time
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if _, err := j.w.Write(b); err != nil {
		return err
	}
	if err := j.w.WriteByte('\n'); err != nil {
		return err
	}
	j.count++
	return nil
}

// Count 已写入的事件数
func (j *CombatJournal) Count() int {
	if j == nil {
		return 0
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.count
}

// Close 刷新缓冲并结束 zstd 帧
func (j *CombatJournal) Close() error {
	if j == nil {
		return nil
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.w == nil {
		return nil
	}

	var firstErr error
	if err := j.w.Flush(); err != nil {
		firstErr = err
	}
	if err := j.enc.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if j.closer != nil {
		if err := j.closer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	j.w = nil
	j.enc = nil
	return firstErr
}

// ReadCombatJournal 解压并解析全部事件
func ReadCombatJournal(r io.Reader) ([]CombatEvent, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	defer dec.Close()

	var events []CombatEvent
	scanner := bufio.NewScanner(dec)
	for scanner.Scan() {
		var ev CombatEvent
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			return nil, fmt.Errorf("decode event %d: %w", len(events), err)
		}
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read journal: %w", err)
	}
	return events, nil
}
