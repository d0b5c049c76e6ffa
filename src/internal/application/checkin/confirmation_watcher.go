package checkin

import (
	"context"
	"time"

	"github.com/jackyeh168/salon_crm/src/internal/domain/checkin"
	"github.com/jackyeh168/salon_crm/src/internal/domain/shared"
	"go.uber.org/zap"
)

// ===========================
// Confirmation Watcher（員工端輪詢）
// ===========================

// 預設節奏
const (
	DefaultPollInterval   = 2 * time.Second
	DefaultTickInterval   = 1 * time.Second
	DefaultConfirmedGrace = 2 * time.Second
)

// StatusFetcher 取得報到碼狀態
type StatusFetcher interface {
	FetchStatus(ctx context.Context, token string) (*VisitTokenStatus, error)
}

// StatusFetcherFunc 讓普通函數滿足 StatusFetcher
type StatusFetcherFunc func(ctx context.Context, token string) (*VisitTokenStatus, error)

// FetchStatus 實現 StatusFetcher
func (f StatusFetcherFunc) FetchStatus(ctx context.Context, token string) (*VisitTokenStatus, error) {
	return f(ctx, token)
}

// WatcherConfig 輪詢設定，零值欄位使用預設
type WatcherConfig struct {
	PollInterval time.Duration
	TickInterval time.Duration
	// ConfirmedGrace 負值表示確認後立即關閉
	ConfirmedGrace time.Duration
}

func (c WatcherConfig) withDefaults() WatcherConfig {
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.TickInterval <= 0 {
		c.TickInterval = DefaultTickInterval
	}
	if c.ConfirmedGrace < 0 {
		c.ConfirmedGrace = 0
	} else if c.ConfirmedGrace == 0 {
		c.ConfirmedGrace = DefaultConfirmedGrace
	}
	return c
}

// WatchUpdate 顯示端收到的狀態變化
type WatchUpdate struct {
	State     checkin.TokenState
	Remaining time.Duration
	// Dismissed 確認後寬限期結束，可關閉畫面
	Dismissed bool
}

// ConfirmationWatcher 等待顧客兌換報到碼
//
// 倒數只依 expiresAt 在本地計算，過期不需要伺服器回應；
// used_at 的變化則靠固定間隔輪詢取得。
type ConfirmationWatcher struct {
	fetcher StatusFetcher
	clock   shared.Clock
	cfg     WatcherConfig
	log     *zap.Logger
}

// NewConfirmationWatcher 創建輪詢器
func NewConfirmationWatcher(fetcher StatusFetcher, clock shared.Clock, cfg WatcherConfig, log *zap.Logger) *ConfirmationWatcher {
	if clock == nil {
		clock = shared.SystemClock{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ConfirmationWatcher{
		fetcher: fetcher,
		clock:   clock,
		cfg:     cfg.withDefaults(),
		log:     log.Named("confirmation_watcher"),
	}
}

// Watch 阻塞直到 confirmed、expired 或 ctx 取消
//
// onUpdate 在每次倒數與狀態變化時被呼叫（同一 goroutine）。
// confirmed 時會再等待寬限期，之後送出 Dismissed 更新。
func (w *ConfirmationWatcher) Watch(
	ctx context.Context,
	token string,
	expiresAt time.Time,
	onUpdate func(WatchUpdate),
) (checkin.TokenState, error) {
	if onUpdate == nil {
		onUpdate = func(WatchUpdate) {}
	}

	remaining := func() time.Duration {
		d := expiresAt.Sub(w.clock.Now())
		if d < 0 {
			return 0
		}
		return d
	}
	expired := func() bool {
		return w.clock.Now().UnixMilli() >= expiresAt.UnixMilli()
	}

	if expired() {
		onUpdate(WatchUpdate{State: checkin.TokenStateExpired})
		return checkin.TokenStateExpired, nil
	}
	onUpdate(WatchUpdate{State: checkin.TokenStateWaiting, Remaining: remaining()})

	poll := time.NewTicker(w.cfg.PollInterval)
	defer poll.Stop()
	tick := time.NewTicker(w.cfg.TickInterval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return checkin.TokenStateWaiting, ctx.Err()

		case <-tick.C:
			if expired() {
				onUpdate(WatchUpdate{State: checkin.TokenStateExpired})
				return checkin.TokenStateExpired, nil
			}
			onUpdate(WatchUpdate{State: checkin.TokenStateWaiting, Remaining: remaining()})

		case <-poll.C:
			status, err := w.fetcher.FetchStatus(ctx, token)
			if err != nil {
				// 暫時性錯誤，下一輪再試
				w.log.Debug("status poll failed", zap.Error(err))
				continue
			}
			switch status.State {
			case checkin.TokenStateConfirmed:
				return w.confirm(ctx, onUpdate)
			case checkin.TokenStateExpired:
				onUpdate(WatchUpdate{State: checkin.TokenStateExpired})
				return checkin.TokenStateExpired, nil
			}
		}
	}
}

func (w *ConfirmationWatcher) confirm(ctx context.Context, onUpdate func(WatchUpdate)) (checkin.TokenState, error) {
	onUpdate(WatchUpdate{State: checkin.TokenStateConfirmed})

	grace := time.NewTimer(w.cfg.ConfirmedGrace)
	defer grace.Stop()
	select {
	case <-ctx.Done():
		return checkin.TokenStateConfirmed, ctx.Err()
	case <-grace.C:
	}

	onUpdate(WatchUpdate{State: checkin.TokenStateConfirmed, Dismissed: true})
	return checkin.TokenStateConfirmed, nil
}
