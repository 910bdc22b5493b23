package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// GuestResetter restores a workspace to its demo data
type GuestResetter interface {
	Reset(workspaceID int32)
}

// GuestResetWorker periodically discards whatever demo visitors changed in
// the shared guest workspace
type GuestResetWorker struct {
	resetter    GuestResetter
	workspaceID int32
	logger      zerolog.Logger
	interval    time.Duration
	stopCh      chan struct{}
	doneCh      chan struct{}
	mu          sync.Mutex
	running     bool
	resets      int
}

// DefaultGuestResetInterval is used when the configured interval is not positive
const DefaultGuestResetInterval = time.Hour

func NewGuestResetWorker(resetter GuestResetter, workspaceID int32, logger zerolog.Logger, interval time.Duration) *GuestResetWorker {
	if interval <= 0 {
		interval = DefaultGuestResetInterval
	}
	return &GuestResetWorker{
		resetter:    resetter,
		workspaceID: workspaceID,
		logger:      logger.With().Str("component", "guest_reset_worker").Logger(),
		interval:    interval,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
}

// Start begins the reset loop; calling it twice is a no-op
func (w *GuestResetWorker) Start(ctx context.Context) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	w.logger.Info().
		Dur("interval", w.interval).
		Int32("workspace_id", w.workspaceID).
		Msg("Starting guest reset worker")

	go w.run(ctx)
}

// Stop ends the loop and waits for it to exit
func (w *GuestResetWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh
	w.logger.Info().Msg("Guest reset worker stopped")
}

func (w *GuestResetWorker) run(ctx context.Context) {
	defer close(w.doneCh)
	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.ResetNow()
		}
	}
}

// ResetNow restores the demo data immediately
func (w *GuestResetWorker) ResetNow() {
	start := time.Now()
	w.resetter.Reset(w.workspaceID)

	w.mu.Lock()
	w.resets++
	w.mu.Unlock()

	w.logger.Info().
		Int32("workspace_id", w.workspaceID).
		Dur("elapsed", time.Since(start)).
		Msg("Guest workspace reset")
}

func (w *GuestResetWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// Resets returns how many resets have run
func (w *GuestResetWorker) Resets() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.resets
}
