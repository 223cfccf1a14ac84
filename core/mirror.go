package core

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const DefaultMirrorTimeout = 10 * time.Second

type mirrorTask struct {
	op  string
	run func(ctx context.Context) error
}

// mirrorQueue replays local mutations against the remote store on a single worker,
// in submission order. Task results only ever feed the SyncController.
type mirrorQueue struct {
	ctx     context.Context //nolint:containedctx
	cancel  context.CancelFunc
	sync    SyncController
	timeout time.Duration

	mu         sync.Mutex
	tasks      []mirrorTask
	idle       chan struct{}
	idleClosed bool
	wake       chan struct{}
	done       chan struct{}
}

func newMirrorQueue(ctx context.Context, syncCtl SyncController, timeout time.Duration) *mirrorQueue {
	ctx, cancel := context.WithCancel(ctx)

	idle := make(chan struct{})
	close(idle)

	q := &mirrorQueue{
		ctx:        ctx,
		cancel:     cancel,
		sync:       syncCtl,
		timeout:    timeout,
		idle:       idle,
		idleClosed: true,
		wake:       make(chan struct{}, 1),
		done:       make(chan struct{}),
	}

	go q.loop()

	return q
}

func (q *mirrorQueue) enqueue(task mirrorTask) {
	q.mu.Lock()

	// Checked under the lock: the worker's final drain also runs under it.
	if q.ctx.Err() != nil {
		q.mu.Unlock()
		return
	}

	q.tasks = append(q.tasks, task)
	if q.idleClosed {
		q.idle = make(chan struct{})
		q.idleClosed = false
	}
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *mirrorQueue) next() (mirrorTask, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.tasks) == 0 || q.ctx.Err() != nil {
		q.tasks = nil
		if !q.idleClosed {
			close(q.idle)
			q.idleClosed = true
		}

		return mirrorTask{}, false
	}

	task := q.tasks[0]
	q.tasks = q.tasks[1:]

	return task, true
}

func (q *mirrorQueue) loop() {
	defer close(q.done)

	for {
		task, ok := q.next()
		if !ok {
			select {
			case <-q.wake:
				continue
			case <-q.ctx.Done():
				q.next()
				return
			}
		}

		q.execute(task)
	}
}

func (q *mirrorQueue) execute(task mirrorTask) {
	logger := log.Ctx(q.ctx).With().Str("stage", "mirror").Str("component", "event-repository").Str("operation", task.op).Logger()

	// Queued while online, reached after a failure flipped the state.
	if !q.sync.IsOnline() {
		logger.Debug().Msg("offline, mirror dropped")
		return
	}

	ctx, cancel := context.WithTimeout(q.ctx, q.timeout)
	defer cancel()

	err := task.run(ctx)
	observeMirror(task.op, err)

	if err != nil {
		if q.ctx.Err() != nil {
			return
		}

		logger.Warn().Err(err).Msg("remote mirror failed, change kept locally")
		q.sync.RecordFailure(q.ctx, toTransportError(task.op, err))

		return
	}

	logger.Debug().Msg("remote mirror done")
}

// pending reports whether a task is queued or running.
func (q *mirrorQueue) pending() bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	return !q.idleClosed
}

// flush blocks until every queued task has been handled.
func (q *mirrorQueue) flush(ctx context.Context) error {
	q.mu.Lock()
	idle := q.idle
	q.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *mirrorQueue) close() {
	q.cancel()
	<-q.done
}
