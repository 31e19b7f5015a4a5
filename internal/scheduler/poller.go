package scheduler

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/iwtcode/robotDataAgent/internal/domain/models"
	"github.com/iwtcode/robotDataAgent/internal/interfaces"
	"go.uber.org/zap"
)

// TickFunc performs one fetch-and-store cycle.
type TickFunc func(ctx context.Context, tickID string) models.TickReport

// Poller runs a TickFunc on a fixed interval with at most one tick in flight.
// A tick that fires while the previous one is still running is skipped and
// reported to the observers.
//
// Start and Stop are safe for concurrent use and idempotent.
type Poller struct {
	interval  time.Duration
	immediate bool
	tick      TickFunc
	observers []interfaces.TickObserver
	logger    *zap.Logger

	running atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	mu      sync.Mutex
	started bool
	stopped bool
}

func NewPoller(interval time.Duration, immediate bool, tick TickFunc, logger *zap.Logger, observers ...interfaces.TickObserver) *Poller {
	return &Poller{
		interval:  interval,
		immediate: immediate,
		tick:      tick,
		observers: observers,
		logger:    logger.Named("poller"),
	}
}

// Start launches the polling loop and returns immediately. The first tick
// fires after one interval unless the poller was built with immediate set.
// Calling Start after Stop is a no-op.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started || p.stopped {
		p.mu.Unlock()
		return
	}
	p.started = true
	if ctx == nil {
		ctx = context.Background()
	}
	loopCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.wg.Add(1)
	p.mu.Unlock()

	p.logger.Info("poller started",
		zap.Duration("interval", p.interval),
		zap.Bool("immediate", p.immediate),
	)

	go func() {
		defer p.wg.Done()

		if p.immediate {
			p.fire(loopCtx)
		}

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-loopCtx.Done():
				return
			case <-ticker.C:
				p.fire(loopCtx)
			}
		}
	}()
}

// Stop cancels the loop and waits for an in-flight tick to finish.
func (p *Poller) Stop() {
	p.mu.Lock()
	wasRunning := p.started && !p.stopped
	p.stopped = true
	if p.cancel != nil {
		p.cancel()
	}
	p.mu.Unlock()

	p.wg.Wait()

	if wasRunning {
		p.logger.Info("poller stopped")
	}
}

func (p *Poller) fire(ctx context.Context) {
	tickID := uuid.NewString()

	if !p.running.CompareAndSwap(false, true) {
		p.logger.Warn("previous tick still running, skipping",
			zap.String("tick_id", tickID),
		)
		for _, o := range p.observers {
			o.OnSkip(tickID)
		}
		return
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer p.running.Store(false)

		report, ok := p.safeTick(ctx, tickID)
		if !ok {
			return
		}
		// cancelled by Stop: not an outcome of the API or the database
		if ctx.Err() != nil {
			p.logger.Info("tick cancelled by shutdown, result discarded",
				zap.String("tick_id", tickID),
			)
			return
		}
		for _, o := range p.observers {
			o.OnTick(report)
		}
	}()
}

// safeTick runs the tick with panic recovery so one bad cycle does not stop
// the loop.
func (p *Poller) safeTick(ctx context.Context, tickID string) (report models.TickReport, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("tick panic",
				zap.String("tick_id", tickID),
				zap.String("panic", fmt.Sprintf("%v", r)),
				zap.ByteString("stack", debug.Stack()),
			)
			ok = false
		}
	}()
	return p.tick(ctx, tickID), true
}
