package config

import (
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Holder 持有目前生效的設定，設定檔變更時原子替換
type Holder struct {
	current atomic.Value // holds Config

	mu        sync.Mutex
	listeners []func(Config)
}

// NewHolder 以初始設定建立
func NewHolder(initial Config) *Holder {
	h := &Holder{}
	h.current.Store(initial)
	return h
}

// Get 返回目前設定
func (h *Holder) Get() Config {
	return h.current.Load().(Config)
}

// OnChange 註冊設定更新回呼
func (h *Holder) OnChange(fn func(Config)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.listeners = append(h.listeners, fn)
}

// Replace 替換設定並通知所有回呼
func (h *Holder) Replace(cfg Config) {
	h.current.Store(cfg)

	h.mu.Lock()
	listeners := append([]func(Config){}, h.listeners...)
	h.mu.Unlock()

	for _, fn := range listeners {
		fn(cfg)
	}
}

// Watch 監看設定檔，變更且驗證通過後更新 holder
//
// 沒有設定檔時不監看。驗證失敗的版本會被忽略，保留舊設定。
func (l *Loader) Watch(holder *Holder, log *zap.Logger) {
	if l.ConfigFile() == "" {
		return
	}
	if log == nil {
		log = zap.NewNop()
	}

	l.v.OnConfigChange(func(e fsnotify.Event) {
		updated, err := l.build()
		if err != nil {
			log.Warn("config reload rejected", zap.String("file", e.Name), zap.Error(err))
			return
		}
		holder.Replace(updated)
		log.Info("config reloaded", zap.String("file", e.Name), zap.String("op", e.Op.String()))
	})
	l.v.WatchConfig()
}
