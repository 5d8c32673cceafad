// Package dispatch runs every mutation of a room on that room's own
// goroutine, in the order the mutations were submitted. Different rooms run
// independently.
package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/mcoot/dartsync/internal/model"
)

// ErrClosed is returned for work submitted after the dispatcher or the
// room's loop was stopped
var ErrClosed = errors.New("dispatcher closed")

const inboxSize = 64

type job struct {
	ctx  context.Context
	fn   func(ctx context.Context) error
	done chan error
}

type roomLoop struct {
	inbox chan job
	quit  chan struct{}
	done  chan struct{}
}

// Dispatcher owns one loop per active room
type Dispatcher struct {
	mu     sync.Mutex
	loops  map[model.RoomID]*roomLoop
	closed bool
	logger *slog.Logger
}

// New creates a Dispatcher
func New(logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		loops:  make(map[model.RoomID]*roomLoop),
		logger: logger,
	}
}

// Do runs fn on the room's loop and waits for its result. Calls for the same
// room never overlap. If ctx ends while fn is queued, fn is skipped.
func (d *Dispatcher) Do(ctx context.Context, roomID model.RoomID, fn func(ctx context.Context) error) error {
	loop, err := d.loop(roomID)
	if err != nil {
		return err
	}

	j := job{ctx: ctx, fn: fn, done: make(chan error, 1)}
	select {
	case loop.inbox <- j:
	case <-loop.quit:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-j.done:
		return err
	case <-loop.done:
		// The loop may have finished this job just before exiting
		select {
		case err := <-j.done:
			return err
		default:
			return ErrClosed
		}
	}
}

// Stop ends the room's loop once queued work has run. Safe to call from
// inside a job running on that loop.
func (d *Dispatcher) Stop(roomID model.RoomID) {
	d.mu.Lock()
	loop, ok := d.loops[roomID]
	if ok {
		delete(d.loops, roomID)
	}
	d.mu.Unlock()

	if ok {
		close(loop.quit)
		d.logger.Debug("room loop stopped", slog.String("room_id", string(roomID)))
	}
}

// Close stops every loop and waits for them to exit
func (d *Dispatcher) Close() {
	d.mu.Lock()
	d.closed = true
	loops := d.loops
	d.loops = make(map[model.RoomID]*roomLoop)
	d.mu.Unlock()

	for _, loop := range loops {
		close(loop.quit)
	}
	for _, loop := range loops {
		<-loop.done
	}
}

// Len returns the number of running room loops
func (d *Dispatcher) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.loops)
}

func (d *Dispatcher) loop(roomID model.RoomID) (*roomLoop, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil, ErrClosed
	}
	if loop, ok := d.loops[roomID]; ok {
		return loop, nil
	}

	loop := &roomLoop{
		inbox: make(chan job, inboxSize),
		quit:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	d.loops[roomID] = loop
	go d.run(roomID, loop)
	return loop, nil
}

func (d *Dispatcher) run(roomID model.RoomID, loop *roomLoop) {
	defer close(loop.done)
	for {
		select {
		case j := <-loop.inbox:
			d.exec(roomID, j)
		case <-loop.quit:
			// Drain what was queued before the stop so no caller hangs
			for {
				select {
				case j := <-loop.inbox:
					d.exec(roomID, j)
				default:
					return
				}
			}
		}
	}
}

func (d *Dispatcher) exec(roomID model.RoomID, j job) {
	if err := j.ctx.Err(); err != nil {
		j.done <- err
		return
	}
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("panic in room loop",
				slog.String("room_id", string(roomID)),
				slog.Any("panic", r),
			)
			j.done <- errors.New("internal error")
		}
	}()
	j.done <- j.fn(j.ctx)
}
