package bot

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/panjf2000/ants/v2"
	"github.com/sirupsen/logrus"
)

// DefaultWorkers is the worker pool size when none is configured.
const DefaultWorkers = 16

// UpdateHandler handles one update.
type UpdateHandler interface {
	Handle(ctx context.Context, upd tgbotapi.Update)
}

type queuedUpdate struct {
	ctx context.Context
	upd tgbotapi.Update
}

// Dispatcher runs handlers on a bounded worker pool.
// Updates from the same user are handled one at a time in arrival order;
// different users are served concurrently.
type Dispatcher struct {
	handler UpdateHandler
	pool    *ants.Pool
	logger  logrus.FieldLogger

	mu     sync.Mutex
	queues map[int64][]queuedUpdate
	wg     sync.WaitGroup
}

// NewDispatcher creates a dispatcher with the given number of workers.
func NewDispatcher(handler UpdateHandler, workers int, logger logrus.FieldLogger) (*Dispatcher, error) {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	logger = logger.WithField("component", "dispatcher")

	pool, err := ants.NewPool(workers, ants.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	return &Dispatcher{
		handler: handler,
		pool:    pool,
		logger:  logger,
		queues:  make(map[int64][]queuedUpdate),
	}, nil
}

// Dispatch queues upd behind any pending updates of the same user.
// Handlers run detached from ctx cancellation so a started check always completes.
func (d *Dispatcher) Dispatch(ctx context.Context, upd tgbotapi.Update) error {
	key := userKey(upd)
	item := queuedUpdate{ctx: context.WithoutCancel(ctx), upd: upd}

	d.mu.Lock()
	pending, running := d.queues[key]
	d.queues[key] = append(pending, item)
	if running {
		d.mu.Unlock()
		return nil
	}
	d.wg.Add(1)
	d.mu.Unlock()

	if err := d.pool.Submit(func() { d.drain(key) }); err != nil {
		d.mu.Lock()
		delete(d.queues, key)
		d.mu.Unlock()
		d.wg.Done()
		return fmt.Errorf("submit update %d: %w", upd.UpdateID, err)
	}
	return nil
}

// drain handles the user's queue until it is empty. The map entry exists while a drain runs.
func (d *Dispatcher) drain(key int64) {
	defer d.wg.Done()
	for {
		d.mu.Lock()
		pending := d.queues[key]
		if len(pending) == 0 {
			delete(d.queues, key)
			d.mu.Unlock()
			return
		}
		item := pending[0]
		d.queues[key] = pending[1:]
		d.mu.Unlock()

		d.handle(item)
	}
}

func (d *Dispatcher) handle(item queuedUpdate) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.WithFields(logrus.Fields{
				"update_id": item.upd.UpdateID,
				"panic":     r,
				"stack":     string(debug.Stack()),
			}).Error("handler panicked")
		}
	}()
	d.handler.Handle(item.ctx, item.upd)
}

// Close waits for queued updates to be handled and releases the pool.
func (d *Dispatcher) Close() {
	d.wg.Wait()
	d.pool.Release()
}

// Running returns the number of busy workers.
func (d *Dispatcher) Running() int {
	return d.pool.Running()
}

func userKey(upd tgbotapi.Update) int64 {
	if user := upd.SentFrom(); user != nil {
		return user.ID
	}
	if chat := upd.FromChat(); chat != nil {
		return chat.ID
	}
	return 0
}
