package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// autosaveTimeout bounds a single background save.
const autosaveTimeout = 30 * time.Second

// autosaver persists snapshots in the background. Pending snapshots
// coalesce: only the newest one is written. A snapshot whose save failed
// stays pending until a newer one replaces it. Saves are serialised by saveMu
// and pending is taken under it, so an older snapshot can never overwrite a
// newer one.
type autosaver struct {
	persister Persister
	log       zerolog.Logger

	mu      sync.Mutex
	pending *Snapshot

	saveMu sync.Mutex

	wake      chan struct{}
	closeChan chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

func newAutosaver(p Persister) *autosaver {
	return &autosaver{
		persister: p,
		log:       zerolog.Nop(),
		wake:      make(chan struct{}, 1),
		closeChan: make(chan struct{}),
	}
}

func (a *autosaver) start() {
	a.wg.Add(1)
	go a.run()
}

// enqueue replaces the pending snapshot and wakes the worker. Never blocks.
func (a *autosaver) enqueue(snap Snapshot) {
	a.mu.Lock()
	a.pending = &snap
	a.mu.Unlock()

	select {
	case a.wake <- struct{}{}:
	default:
	}
}

func (a *autosaver) run() {
	defer a.wg.Done()

	for {
		select {
		case <-a.closeChan:
			return
		case <-a.wake:
			ctx, cancel := context.WithTimeout(context.Background(), autosaveTimeout)
			if err := a.drain(ctx); err != nil {
				a.log.Error().Err(err).Msg("Failed to persist finance state")
			}
			cancel()
		}
	}
}

// drain writes the pending snapshot, if any.
func (a *autosaver) drain(ctx context.Context) error {
	a.saveMu.Lock()
	defer a.saveMu.Unlock()

	a.mu.Lock()
	snap := a.pending
	a.pending = nil
	a.mu.Unlock()

	if snap == nil {
		return nil
	}
	if err := a.persister.Save(ctx, *snap); err != nil {
		a.mu.Lock()
		if a.pending == nil {
			a.pending = snap
		}
		a.mu.Unlock()
		return fmt.Errorf("autosave: %w", err)
	}
	return nil
}

func (a *autosaver) flush(ctx context.Context) error {
	return a.drain(ctx)
}

func (a *autosaver) close(ctx context.Context) error {
	a.closeOnce.Do(func() { close(a.closeChan) })

	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	return a.drain(ctx)
}
