package config

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceWindow 同一文件在这段时间内没有新事件后才通知
//
// 编辑器保存通常是截断后再写入，只有最后一次事件之后文件内容才完整。
const debounceWindow = 100 * time.Millisecond

// Watcher 监听配置目录中 YAML 文件的变化
//
// Events 发送发生变化的文件路径；调用方负责重新加载。
type Watcher struct {
	watcher *fsnotify.Watcher
	Events  chan string
	Errors  chan error
	settled chan string // 防抖计时器到期的文件路径
	closeCh chan struct{}
	done    chan struct{}
	once    sync.Once
}

// NewWatcher 创建并启动配置监听
//
// 参数:
//   - dirs: 要监听的目录（fsnotify 不递归子目录）
func NewWatcher(dirs ...string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	for _, dir := range dirs {
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return nil, err
		}
	}

	watcher := &Watcher{
		watcher: w,
		Events:  make(chan string, 16),
		Errors:  make(chan error, 1),
		settled: make(chan string, 16),
		closeCh: make(chan struct{}),
		done:    make(chan struct{}),
	}
	go watcher.run()
	return watcher, nil
}

// Close 停止监听；可重复调用
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		<-w.done
		close(w.Events)
		close(w.Errors)
	})
	return err
}

func (w *Watcher) run() {
	defer close(w.done)
	pending := make(map[string]*time.Timer)
	defer func() {
		for _, t := range pending {
			t.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if !isConfigFile(event.Name) {
				continue
			}
			// 每个事件都把到期时间往后推，只在写入平静下来后通知一次
			if t, ok := pending[event.Name]; ok {
				t.Reset(debounceWindow)
				continue
			}
			name := event.Name
			pending[name] = time.AfterFunc(debounceWindow, func() {
				select {
				case w.settled <- name:
				case <-w.closeCh:
				}
			})
		case name := <-w.settled:
			delete(pending, name)
			select {
			case w.Events <- name:
			case <-w.closeCh:
				return
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default: // 上一个错误尚未被读取，丢弃
			}
		case <-w.closeCh:
			return
		}
	}
}

func isConfigFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
