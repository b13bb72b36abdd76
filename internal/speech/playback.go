package speech

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrWaitTimeout 表示等待朗读完成超过了配置的时限。
var ErrWaitTimeout = errors.New("[speech] 等待朗读完成超时")

// Playback 是一次在播朗读的句柄。
// 播放结束（或失败）时 Done 通道关闭，由完成事件驱动，无需轮询。
type Playback struct {
	id      string
	done    chan struct{}
	cancel  context.CancelFunc
	timeout time.Duration

	mu  sync.Mutex
	err error
}

func newPlayback(cancel context.CancelFunc, timeout time.Duration) *Playback {
	return &Playback{
		id:      uuid.NewString(),
		done:    make(chan struct{}),
		cancel:  cancel,
		timeout: timeout,
	}
}

// ID 返回句柄的唯一标识。
func (p *Playback) ID() string { return p.id }

// Done 返回完成通道，播放结束时关闭。
func (p *Playback) Done() <-chan struct{} { return p.done }

// Err 返回播放结果，完成前返回 nil。
func (p *Playback) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// Cancel 中止这次朗读本身。
func (p *Playback) Cancel() { p.cancel() }

// Wait 阻塞等待播放完成并返回结果。
// ctx 取消只停止等待，不中止播放；配置了超时时限且
// 到期仍未完成时返回 ErrWaitTimeout。
func (p *Playback) Wait(ctx context.Context) error {
	var timeoutCh <-chan time.Time
	if p.timeout > 0 {
		tm := time.NewTimer(p.timeout)
		defer tm.Stop()
		timeoutCh = tm.C
	}

	select {
	case <-p.done:
		return p.Err()
	case <-ctx.Done():
		return ctx.Err()
	case <-timeoutCh:
		return ErrWaitTimeout
	}
}

// finish 记录结果并关闭完成通道，只能调用一次。
func (p *Playback) finish(err error) {
	p.mu.Lock()
	p.err = err
	p.mu.Unlock()
	close(p.done)
}
